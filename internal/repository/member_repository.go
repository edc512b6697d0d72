package repository

import (
	"cactus_village_backend/internal/model"
	"errors"

	"gorm.io/gorm"
)

type MemberRepository struct {
	DB *gorm.DB
}

func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{DB: db}
}

func (r *MemberRepository) Create(member *model.Member) error {
	return r.DB.Create(member).Error
}

// FindByID returns (nil, nil) when no member exists with that id.
func (r *MemberRepository) FindByID(id uint) (*model.Member, error) {
	var member model.Member
	err := r.DB.First(&member, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// FindByEmail returns (nil, nil) when no member owns that email.
func (r *MemberRepository) FindByEmail(email string) (*model.Member, error) {
	var member model.Member
	err := r.DB.Where("email = ?", email).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *MemberRepository) Update(member *model.Member) error {
	return r.DB.Save(member).Error
}

// FindAllActive returns all non-deleted members ordered by ascending id.
func (r *MemberRepository) FindAllActive() ([]model.Member, error) {
	var members []model.Member
	err := r.DB.Where("deleted = ?", false).Order("id ASC").Find(&members).Error
	return members, err
}

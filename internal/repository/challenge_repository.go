package repository

import (
	"cactus_village_backend/internal/model"
	"cactus_village_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

type ChallengeRepository struct {
	DB *gorm.DB
}

func NewChallengeRepository(db *gorm.DB) *ChallengeRepository {
	return &ChallengeRepository{DB: db}
}

// Create inserts an in-progress challenge. The duplicate check runs inside a
// transaction so two concurrent enrollments from the same member cannot both
// pass it.
func (r *ChallengeRepository) Create(challenge *model.Challenge) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Challenge{}).
			Where("member_id = ? AND status = ?", challenge.MemberID, model.StatusInProgress).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return util.ErrEnrollDuplicated
		}
		return tx.Create(challenge).Error
	})
}

func (r *ChallengeRepository) Update(challenge *model.Challenge) error {
	return r.DB.Save(challenge).Error
}

// FindActiveByMember returns the member's in-progress challenge, or (nil, nil).
func (r *ChallengeRepository) FindActiveByMember(memberID uint) (*model.Challenge, error) {
	var challenge model.Challenge
	err := r.DB.Where("member_id = ? AND status = ?", memberID, model.StatusInProgress).
		First(&challenge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

// FindLatestByMember returns the member's most recently created challenge by
// descending id, or (nil, nil) when the member never enrolled.
func (r *ChallengeRepository) FindLatestByMember(memberID uint) (*model.Challenge, error) {
	var challenge model.Challenge
	err := r.DB.Where("member_id = ?", memberID).Order("id DESC").First(&challenge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (r *ChallengeRepository) FindAllByMember(memberID uint) ([]model.Challenge, error) {
	var challenges []model.Challenge
	err := r.DB.Where("member_id = ?", memberID).Order("id ASC").Find(&challenges).Error
	return challenges, err
}

// FindAllSuccessOfActiveMembers returns every successful challenge whose owner
// has not been soft-deleted.
func (r *ChallengeRepository) FindAllSuccessOfActiveMembers() ([]model.Challenge, error) {
	var challenges []model.Challenge
	err := r.DB.
		Joins("JOIN members ON members.id = challenges.member_id").
		Where("challenges.status = ? AND members.deleted = ?", model.StatusSuccess, false).
		Order("challenges.id ASC").
		Find(&challenges).Error
	return challenges, err
}

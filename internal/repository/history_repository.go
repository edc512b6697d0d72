package repository

import (
	"cactus_village_backend/internal/model"
	"errors"
	"time"

	"gorm.io/gorm"
)

type HistoryRepository struct {
	DB *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{DB: db}
}

func (r *HistoryRepository) Create(history *model.History) error {
	return r.DB.Create(history).Error
}

// FindAllByChallenge returns the challenge's histories in recorded order.
func (r *HistoryRepository) FindAllByChallenge(challengeID uint) ([]model.History, error) {
	var histories []model.History
	err := r.DB.Where("challenge_id = ?", challengeID).Order("id ASC").Find(&histories).Error
	return histories, err
}

func (r *HistoryRepository) CountByChallenge(challengeID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.History{}).Where("challenge_id = ?", challengeID).Count(&count).Error
	return count, err
}

// FindByChallengeAndDate returns the history written on the given calendar
// day, or (nil, nil) when that day has no entry yet.
func (r *HistoryRepository) FindByChallengeAndDate(challengeID uint, date time.Time) (*model.History, error) {
	startOfDay := model.DateOf(date)
	endOfDay := startOfDay.Add(24 * time.Hour).Add(-1 * time.Nanosecond)

	var history model.History
	err := r.DB.Where("challenge_id = ? AND created_at BETWEEN ? AND ?", challengeID, startOfDay, endOfDay).
		First(&history).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &history, nil
}

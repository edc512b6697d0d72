package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChallengeType string

const (
	ChallengeThanks   ChallengeType = "thanks"
	ChallengeWater    ChallengeType = "water"
	ChallengeExercise ChallengeType = "exercise"
	ChallengeStudy    ChallengeType = "study"
)

// Known reports whether t is one of the enrollable challenge kinds.
func (t ChallengeType) Known() bool {
	switch t {
	case ChallengeThanks, ChallengeWater, ChallengeExercise, ChallengeStudy:
		return true
	}
	return false
}

// TimeExempt challenges can be enrolled without a target time of day.
func (t ChallengeType) TimeExempt() bool {
	return t == ChallengeThanks
}

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusSuccess    Status = "success"
	StatusFail       Status = "fail"
	StatusDeleted    Status = "deleted"
)

// Done reports whether the challenge reached a success/fail terminal state.
func (s Status) Done() bool {
	return s == StatusSuccess || s == StatusFail
}

type Challenge struct {
	BaseModel
	UUID          string        `gorm:"size:36;uniqueIndex" json:"uuid"`
	MemberID      uint          `gorm:"index;not null" json:"memberId"`
	ChallengeType ChallengeType `gorm:"type:varchar(20);not null" json:"challengeType"`
	TargetDate    int           `gorm:"not null" json:"targetDate"` // duration in days
	TargetTime    *string       `gorm:"size:5" json:"targetTime"`   // "HH:MM", nil for time-exempt types
	Status        Status        `gorm:"type:varchar(20);index" json:"status"`
	Notified      bool          `gorm:"default:false" json:"notified"`
	Stamp         int           `gorm:"default:0" json:"stamp"`
}

func (Challenge) TableName() string {
	return "challenges"
}

func (c *Challenge) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == "" {
		c.UUID = uuid.New().String()
	}
	return nil
}

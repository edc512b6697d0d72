package service

import (
	"cactus_village_backend/internal/model"
	"time"
)

// Repository contracts consumed by the services. Find-style methods report a
// miss as (nil, nil) / (0, nil); only infrastructure failures surface as
// errors. Concrete implementations live in internal/repository.

type MemberRepository interface {
	Create(member *model.Member) error
	FindByID(id uint) (*model.Member, error)
	FindByEmail(email string) (*model.Member, error)
	Update(member *model.Member) error
	// FindAllActive returns non-deleted members ordered by ascending id.
	FindAllActive() ([]model.Member, error)
}

type ChallengeRepository interface {
	// Create must reject a second in-progress challenge for the same member
	// with util.ErrEnrollDuplicated, atomically with the insert.
	Create(challenge *model.Challenge) error
	Update(challenge *model.Challenge) error
	FindActiveByMember(memberID uint) (*model.Challenge, error)
	FindLatestByMember(memberID uint) (*model.Challenge, error)
	FindAllByMember(memberID uint) ([]model.Challenge, error)
	FindAllSuccessOfActiveMembers() ([]model.Challenge, error)
}

type HistoryRepository interface {
	Create(history *model.History) error
	FindAllByChallenge(challengeID uint) ([]model.History, error)
	CountByChallenge(challengeID uint) (int64, error)
	FindByChallengeAndDate(challengeID uint, date time.Time) (*model.History, error)
}

type RefreshTokenRepository interface {
	Save(tokenID string, memberID uint) error
	Find(tokenID string) (uint, error)
	Delete(tokenID string) error
	DeleteByMember(memberID uint) error
}

type EmailSender interface {
	Send(to, subject, templateName string, vars map[string]string) error
}

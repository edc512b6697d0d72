package service

import (
	"cactus_village_backend/internal/config"
	"cactus_village_backend/internal/model"
	"cactus_village_backend/internal/util"
	"cactus_village_backend/pkg/logger"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MemberInfo is the profile summary returned on login and "my info". When the
// member has no live challenge, ChallengeType and Status are both "none".
type MemberInfo struct {
	Email         string `json:"email"`
	Username      string `json:"username"`
	ProviderType  string `json:"providerType"`
	ChallengeType string `json:"challengeType"`
	Status        string `json:"status"`
	Progress      int    `json:"progress"`
	ElapsedDays   int    `json:"elapsedDays"`
	TargetDate    int    `json:"targetDate"`
}

func newEmptyMemberInfo(member *model.Member) *MemberInfo {
	info := &MemberInfo{
		Username:      member.Username,
		ProviderType:  string(member.ProviderType),
		ChallengeType: "none",
		Status:        "none",
	}
	if member.Email != nil {
		info.Email = *member.Email
	}
	return info
}

func newMemberInfo(member *model.Member, challenge *model.Challenge, historyCount int) *MemberInfo {
	info := newEmptyMemberInfo(member)
	info.ChallengeType = string(challenge.ChallengeType)
	info.Status = string(challenge.Status)
	info.Progress = historyCount * 100 / challenge.TargetDate
	info.ElapsedDays = daysBetween(challenge.CreatedAt, time.Now()) + 1
	info.TargetDate = challenge.TargetDate
	return info
}

// daysBetween counts whole calendar days from the day of a to the day of b.
// The civil dates are re-anchored in UTC so a DST transition between them
// cannot shorten a day below 24h and skew the count.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	start := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start) / (24 * time.Hour))
}

type MemberService struct {
	MemberRepo    MemberRepository
	ChallengeRepo ChallengeRepository
	HistoryRepo   HistoryRepository
	TokenRepo     RefreshTokenRepository
	Mailer        EmailSender
	Cfg           *config.Hot
}

func NewMemberService(
	memberRepo MemberRepository,
	challengeRepo ChallengeRepository,
	historyRepo HistoryRepository,
	tokenRepo RefreshTokenRepository,
	mailer EmailSender,
	cfg *config.Hot,
) *MemberService {
	return &MemberService{
		MemberRepo:    memberRepo,
		ChallengeRepo: challengeRepo,
		HistoryRepo:   historyRepo,
		TokenRepo:     tokenRepo,
		Mailer:        mailer,
		Cfg:           cfg,
	}
}

func (s *MemberService) Signup(email, username, password string) (*model.Member, error) {
	existing, err := s.MemberRepo.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, util.ErrMemberEmailDuplicated
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	member := &model.Member{
		Email:        &email,
		Username:     username,
		Password:     string(hashed),
		ProviderType: model.ProviderCactus,
	}
	if err := s.MemberRepo.Create(member); err != nil {
		return nil, err
	}
	return member, nil
}

// VerifyPassword authenticates a local credential pair. Every failure mode
// collapses into MEMBER_NOT_MATCH so callers cannot probe which emails exist.
func (s *MemberService) VerifyPassword(email, password string) (*model.Member, error) {
	member, err := s.MemberRepo.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if member == nil || member.Deleted {
		return nil, util.ErrMemberNotMatch
	}
	if err := bcrypt.CompareHashAndPassword([]byte(member.Password), []byte(password)); err != nil {
		return nil, util.ErrMemberNotMatch
	}
	return member, nil
}

// Login verifies the credentials, rotates the member's refresh token and
// issues a fresh access token.
func (s *MemberService) Login(email, password string) (*MemberInfo, string, string, error) {
	member, err := s.VerifyPassword(email, password)
	if err != nil {
		return nil, "", "", err
	}

	// Reuse check: a member holds at most one live refresh token.
	if err := s.TokenRepo.DeleteByMember(member.ID); err != nil {
		return nil, "", "", err
	}

	refreshID := uuid.New().String()
	if err := s.TokenRepo.Save(refreshID, member.ID); err != nil {
		return nil, "", "", err
	}

	jwtCfg := s.Cfg.Load().JWT
	accessToken, err := util.GenerateJWT(member, jwtCfg.Secret, jwtCfg.AccessExpire)
	if err != nil {
		return nil, "", "", err
	}

	info, err := s.MemberInfo(member)
	if err != nil {
		return nil, "", "", err
	}
	return info, accessToken, refreshID, nil
}

func (s *MemberService) Logout(refreshID string) error {
	if refreshID == "" {
		return util.ErrNoAuthentication
	}
	memberID, err := s.TokenRepo.Find(refreshID)
	if err != nil {
		return err
	}
	if memberID == 0 {
		return util.ErrNoAuthentication
	}
	return s.TokenRepo.Delete(refreshID)
}

// Reissue exchanges a live refresh token for a new access token.
func (s *MemberService) Reissue(refreshID string) (string, error) {
	if refreshID == "" {
		return "", util.ErrNoAuthentication
	}
	memberID, err := s.TokenRepo.Find(refreshID)
	if err != nil {
		return "", err
	}
	if memberID == 0 {
		return "", util.ErrNoAuthentication
	}

	member, err := s.FindMember(memberID)
	if err != nil {
		return "", err
	}
	jwtCfg := s.Cfg.Load().JWT
	return util.GenerateJWT(member, jwtCfg.Secret, jwtCfg.AccessExpire)
}

func (s *MemberService) FindMember(id uint) (*model.Member, error) {
	member, err := s.MemberRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, util.ErrMemberNotFound
	}
	return member, nil
}

// MemberInfo builds the profile summary from the member's most recent
// challenge. Deleted or already-notified challenges count as "no challenge".
func (s *MemberService) MemberInfo(member *model.Member) (*MemberInfo, error) {
	challenge, err := s.ChallengeRepo.FindLatestByMember(member.ID)
	if err != nil {
		return nil, err
	}
	if challenge == nil || challenge.Status == model.StatusDeleted || challenge.Notified {
		return newEmptyMemberInfo(member), nil
	}

	count, err := s.HistoryRepo.CountByChallenge(challenge.ID)
	if err != nil {
		return nil, err
	}
	return newMemberInfo(member, challenge, int(count)), nil
}

// Edit updates the profile. Local members must re-verify their current
// password and may also change it; OAuth members may only change the username.
func (s *MemberService) Edit(memberID uint, username, prePassword, newPassword string) (*model.Member, error) {
	member, err := s.FindMember(memberID)
	if err != nil {
		return nil, err
	}

	if member.ProviderType.Local() {
		if member.Email == nil {
			return nil, util.ErrMemberNotMatch
		}
		if _, err := s.VerifyPassword(*member.Email, prePassword); err != nil {
			return nil, err
		}
		member.Username = username
		if newPassword != "" {
			hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
			if err != nil {
				return nil, err
			}
			member.Password = string(hashed)
		}
	} else {
		member.Username = username
	}

	if err := s.MemberRepo.Update(member); err != nil {
		return nil, err
	}
	return member, nil
}

// Delete anonymizes the account rather than removing the row, so uniqueness
// constraints keep holding for future signups. The suffix is deterministic in
// the member id, so two deleted members can never collide.
func (s *MemberService) Delete(memberID uint, refreshID string) error {
	member, err := s.FindMember(memberID)
	if err != nil {
		return err
	}

	if refreshID != "" {
		if err := s.TokenRepo.Delete(refreshID); err != nil {
			return err
		}
	}
	if err := s.TokenRepo.DeleteByMember(memberID); err != nil {
		return err
	}

	suffix := deletedSuffix(member.ID)
	if member.Email != nil {
		anonymized := *member.Email + suffix
		member.Email = &anonymized
	}
	member.Username = member.Username + suffix

	if member.ProviderType.Local() {
		member.ProviderID = nil
	} else if member.ProviderID != nil {
		anonymized := *member.ProviderID + suffix
		member.ProviderID = &anonymized
	}
	member.Deleted = true

	return s.MemberRepo.Update(member)
}

// RecoverPassword replaces the password with a mailed temporary one. A wrong
// username fails identically to an unknown email.
func (s *MemberService) RecoverPassword(email, username string) error {
	member, err := s.MemberRepo.FindByEmail(email)
	if err != nil {
		return err
	}
	if member == nil || member.Deleted || member.Username != username {
		return util.ErrMemberNotFound
	}

	temp := tempPassword()
	hashed, err := bcrypt.GenerateFromPassword([]byte(temp), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	member.Password = string(hashed)
	if err := s.MemberRepo.Update(member); err != nil {
		return err
	}

	vars := map[string]string{
		"username":     username,
		"tempPassword": temp,
	}
	if err := s.Mailer.Send(email, "Your Cactus Village temporary password", "recovery", vars); err != nil {
		// Delivery is not this core's concern.
		logger.Log.Warn("recovery mail dispatch failed", zap.String("email", email), zap.Error(err))
	}
	return nil
}

// tempPassword draws 10 alphanumeric characters from a dash-stripped UUID.
func tempPassword() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:10]
}

func deletedSuffix(memberID uint) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("cactus-member-%d", memberID)))
	return "_" + base64.RawURLEncoding.EncodeToString(sum[:])[:16]
}

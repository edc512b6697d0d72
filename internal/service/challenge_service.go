package service

import (
	"cactus_village_backend/internal/model"
	"cactus_village_backend/internal/util"
	"math/rand"
	"os"
	"sort"
	"strings"
	"time"
)

// rankerSize is the number of leaderboard slots.
const rankerSize = 3

// defaultMessage is shown when the encouragement file cannot be read. The read
// failure never reaches the caller.
const defaultMessage = "Thanks for growing your cactus with us. Keep it up!"

type HistoryInfo struct {
	Day       int     `json:"day"`
	CreatedAt string  `json:"createdAt"`
	Contents  string  `json:"contents"`
	Time      *string `json:"time"`
}

// newHistoryInfos re-numbers histories as sequential days starting at 1, in
// recorded order.
func newHistoryInfos(histories []model.History) []HistoryInfo {
	infos := make([]HistoryInfo, 0, len(histories))
	for i, h := range histories {
		infos = append(infos, HistoryInfo{
			Day:       i + 1,
			CreatedAt: model.DateOf(h.CreatedAt).Format("2006-01-02"),
			Contents:  h.Contents,
			Time:      h.Time,
		})
	}
	return infos
}

type ChallengeRecord struct {
	Index         string        `json:"index"`
	Success       bool          `json:"success"`
	ChallengeType string        `json:"challengeType"`
	TargetDate    int           `json:"targetDate"`
	TargetTime    *string       `json:"targetTime"`
	Histories     []HistoryInfo `json:"histories"`
}

type AllRecords struct {
	TotalDate       int               `json:"totalDate"`
	TotalChallenges int               `json:"totalChallenges"`
	Challenges      []ChallengeRecord `json:"challenges"`
}

type ActiveRecord struct {
	ChallengeType string        `json:"challengeType"`
	TargetDate    int           `json:"targetDate"`
	Progress      int           `json:"progress"`
	Histories     []HistoryInfo `json:"histories"`
}

type Ranker struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Stamps   int    `json:"stamps"`
}

type RankingInfo struct {
	Rankers   []Ranker `json:"rankers"`
	MyRanking *Ranker  `json:"myRanking,omitempty"`
	MyStamps  []int    `json:"myStamps"`
}

type ChallengeService struct {
	ChallengeRepo ChallengeRepository
	HistoryRepo   HistoryRepository
	MemberRepo    MemberRepository
	MessageFile   string
}

func NewChallengeService(
	challengeRepo ChallengeRepository,
	historyRepo HistoryRepository,
	memberRepo MemberRepository,
	messageFile string,
) *ChallengeService {
	return &ChallengeService{
		ChallengeRepo: challengeRepo,
		HistoryRepo:   historyRepo,
		MemberRepo:    memberRepo,
		MessageFile:   messageFile,
	}
}

// Enroll starts a challenge. A member can run only one challenge at a time,
// and every type except the time-exempt one needs a target time of day.
func (s *ChallengeService) Enroll(memberID uint, challengeType string, targetDate int, targetTime *string) (*model.Challenge, error) {
	ct := model.ChallengeType(challengeType)
	if !ct.Known() {
		return nil, util.ErrChallengeTypeUnknown
	}

	active, err := s.ChallengeRepo.FindActiveByMember(memberID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, util.ErrEnrollDuplicated
	}

	if !ct.TimeExempt() && targetTime == nil {
		return nil, util.ErrTargetTimeRequired
	}

	challenge := &model.Challenge{
		MemberID:      memberID,
		ChallengeType: ct,
		TargetDate:    targetDate,
		TargetTime:    targetTime,
		Status:        model.StatusInProgress,
	}
	// The repository re-checks the duplicate inside its transaction, closing
	// the race between concurrent enrollments.
	if err := s.ChallengeRepo.Create(challenge); err != nil {
		return nil, err
	}
	return challenge, nil
}

func (s *ChallengeService) Delete(memberID uint) error {
	challenge, err := s.activeChallenge(memberID)
	if err != nil {
		return err
	}
	challenge.Status = model.StatusDeleted
	return s.ChallengeRepo.Update(challenge)
}

// WriteHistory appends today's entry to the active challenge. One entry per
// calendar day.
func (s *ChallengeService) WriteHistory(memberID uint, contents string, historyTime *string) (*HistoryInfo, error) {
	challenge, err := s.activeChallenge(memberID)
	if err != nil {
		return nil, err
	}

	existing, err := s.HistoryRepo.FindByChallengeAndDate(challenge.ID, time.Now())
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, util.ErrHistoryAlreadyWritten
	}

	history := &model.History{
		ChallengeID: challenge.ID,
		Contents:    contents,
		Time:        historyTime,
	}
	if err := s.HistoryRepo.Create(history); err != nil {
		return nil, err
	}

	count, err := s.HistoryRepo.CountByChallenge(challenge.ID)
	if err != nil {
		return nil, err
	}
	info := &HistoryInfo{
		Day:       int(count),
		CreatedAt: model.DateOf(time.Now()).Format("2006-01-02"),
		Contents:  contents,
		Time:      historyTime,
	}
	return info, nil
}

// AllRecords aggregates the member's finished (success/fail) challenges.
//
// totalDate intentionally mixes two countings: challenges with exactly one
// history contribute their distinct creation days, the rest contribute their
// raw history counts. This reproduces the original day-counting behavior.
func (s *ChallengeService) AllRecords(memberID uint) (*AllRecords, error) {
	all, err := s.ChallengeRepo.FindAllByMember(memberID)
	if err != nil {
		return nil, err
	}

	var done []model.Challenge
	for _, challenge := range all {
		if challenge.Status.Done() {
			done = append(done, challenge)
		}
	}
	if len(done) == 0 {
		return &AllRecords{}, nil
	}

	singleDays := make(map[time.Time]bool)
	sum := 0
	records := make([]ChallengeRecord, 0, len(done))

	for _, challenge := range done {
		histories, err := s.HistoryRepo.FindAllByChallenge(challenge.ID)
		if err != nil {
			return nil, err
		}

		if len(histories) == 1 {
			singleDays[model.DateOf(challenge.CreatedAt)] = true
		} else {
			sum += len(histories)
		}

		records = append(records, ChallengeRecord{
			Index:         challenge.UUID,
			Success:       challenge.Status == model.StatusSuccess,
			ChallengeType: string(challenge.ChallengeType),
			TargetDate:    challenge.TargetDate,
			TargetTime:    challenge.TargetTime,
			Histories:     newHistoryInfos(histories),
		})
	}

	return &AllRecords{
		TotalDate:       len(singleDays) + sum,
		TotalChallenges: len(done),
		Challenges:      records,
	}, nil
}

// ActiveRecord reports the in-progress challenge, or an empty record when
// there is none. Unlike the other challenge operations this never fails on a
// missing challenge.
func (s *ChallengeService) ActiveRecord(memberID uint) (*ActiveRecord, error) {
	challenge, err := s.ChallengeRepo.FindActiveByMember(memberID)
	if err != nil {
		return nil, err
	}
	if challenge == nil {
		return &ActiveRecord{}, nil
	}

	histories, err := s.HistoryRepo.FindAllByChallenge(challenge.ID)
	if err != nil {
		return nil, err
	}

	return &ActiveRecord{
		ChallengeType: string(challenge.ChallengeType),
		TargetDate:    challenge.TargetDate,
		Progress:      len(histories) * 100 / challenge.TargetDate,
		Histories:     newHistoryInfos(histories),
	}, nil
}

// Message picks a random encouragement line for the active challenge. Any
// problem reading the file degrades to the default message.
func (s *ChallengeService) Message(memberID uint) (string, error) {
	if _, err := s.activeChallenge(memberID); err != nil {
		return "", err
	}

	data, err := os.ReadFile(s.MessageFile)
	if err != nil {
		return defaultMessage, nil
	}

	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) == 0 {
		return defaultMessage, nil
	}
	return lines[rand.Intn(len(lines))], nil
}

// rankEntry is one member's success count during ranking.
type rankEntry struct {
	memberID uint
	count    int
}

// Ranking builds the top-3 leaderboard plus the requesting member's own block.
func (s *ChallengeService) Ranking(memberID uint) (*RankingInfo, error) {
	me, err := s.MemberRepo.FindByID(memberID)
	if err != nil {
		return nil, err
	}
	if me == nil {
		return nil, util.ErrMemberNotFound
	}

	successes, err := s.ChallengeRepo.FindAllSuccessOfActiveMembers()
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int)
	for _, challenge := range successes {
		counts[challenge.MemberID]++
	}

	entries := make([]rankEntry, 0, len(counts))
	for id, count := range counts {
		entries = append(entries, rankEntry{memberID: id, count: count})
	}
	// Success count descending; ties broken by ascending member id so the
	// order never depends on map iteration.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].memberID < entries[j].memberID
	})

	members, err := s.MemberRepo.FindAllActive()
	if err != nil {
		return nil, err
	}
	usernames := make(map[uint]string, len(members))
	for _, m := range members {
		usernames[m.ID] = m.Username
	}

	rankers := buildRankers(entries, members, usernames)

	myStamps, err := s.myStamps(memberID)
	if err != nil {
		return nil, err
	}

	return &RankingInfo{
		Rankers:   rankers,
		MyRanking: myRanking(entries, rankers, me, len(myStamps)),
		MyStamps:  myStamps,
	}, nil
}

// buildRankers fills the leaderboard: real candidates first, then non-deleted
// members without a success (ascending id) until the slots run out or every
// member is used. A username already on the board is never added twice.
func buildRankers(entries []rankEntry, members []model.Member, usernames map[uint]string) []Ranker {
	rankers := make([]Ranker, 0, rankerSize)

	for i, entry := range entries {
		if i == rankerSize {
			break
		}
		rankers = append(rankers, Ranker{
			Rank:     i + 1,
			Username: usernames[entry.memberID],
			Stamps:   entry.count,
		})
	}

	for _, member := range members {
		if len(rankers) == rankerSize {
			break
		}
		ranked := false
		for _, ranker := range rankers {
			if ranker.Username == member.Username {
				ranked = true
				break
			}
		}
		if ranked {
			continue
		}
		rankers = append(rankers, Ranker{
			Rank:     len(rankers) + 1,
			Username: member.Username,
			Stamps:   0,
		})
	}

	return rankers
}

// myRanking is nil when the member already appears in the top slots.
func myRanking(entries []rankEntry, rankers []Ranker, me *model.Member, stampCount int) *Ranker {
	for _, ranker := range rankers {
		if ranker.Username == me.Username {
			return nil
		}
	}

	if len(entries) < rankerSize {
		return &Ranker{Rank: rankerSize + 1, Username: me.Username, Stamps: 0}
	}

	rank := len(entries) + 1
	for i, entry := range entries {
		if entry.memberID == me.ID {
			rank = i + 1
			break
		}
	}
	return &Ranker{Rank: rank, Username: me.Username, Stamps: stampCount}
}

// myStamps collects the member's nonzero per-challenge stamp values.
func (s *ChallengeService) myStamps(memberID uint) ([]int, error) {
	challenges, err := s.ChallengeRepo.FindAllByMember(memberID)
	if err != nil {
		return nil, err
	}
	stamps := []int{}
	for _, challenge := range challenges {
		if challenge.Stamp != 0 {
			stamps = append(stamps, challenge.Stamp)
		}
	}
	return stamps, nil
}

// SetNotified marks the member's most recent challenge as notified, hiding it
// from future profile summaries.
func (s *ChallengeService) SetNotified(memberID uint) error {
	challenge, err := s.ChallengeRepo.FindLatestByMember(memberID)
	if err != nil {
		return err
	}
	if challenge == nil {
		return util.ErrChallengeNotFound
	}
	challenge.Notified = true
	return s.ChallengeRepo.Update(challenge)
}

func (s *ChallengeService) activeChallenge(memberID uint) (*model.Challenge, error) {
	challenge, err := s.ChallengeRepo.FindActiveByMember(memberID)
	if err != nil {
		return nil, err
	}
	if challenge == nil {
		return nil, util.ErrChallengeNotFound
	}
	return challenge, nil
}

package service

import (
	"cactus_village_backend/internal/model"
	"cactus_village_backend/internal/util"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type challengeFixture struct {
	members    *fakeMemberRepo
	challenges *fakeChallengeRepo
	histories  *fakeHistoryRepo
	svc        *ChallengeService
}

func newChallengeFixture() *challengeFixture {
	members := newFakeMemberRepo()
	challenges := newFakeChallengeRepo(members)
	histories := newFakeHistoryRepo()
	return &challengeFixture{
		members:    members,
		challenges: challenges,
		histories:  histories,
		svc:        NewChallengeService(challenges, histories, members, "does-not-exist.txt"),
	}
}

func (f *challengeFixture) member(t *testing.T, username string) *model.Member {
	t.Helper()
	email := username + "@example.com"
	member := &model.Member{
		Email:        &email,
		Username:     username,
		ProviderType: model.ProviderCactus,
	}
	require.NoError(t, f.members.Create(member))
	return member
}

func seedTime(daysAgo int) time.Time {
	return time.Now().AddDate(0, 0, -daysAgo)
}

func strPtr(s string) *string { return &s }

func TestEnrollRejectsUnknownType(t *testing.T) {
	f := newChallengeFixture()
	member := f.member(t, "pat")

	_, err := f.svc.Enroll(member.ID, "sleep", 30, strPtr("08:00"))
	assert.ErrorIs(t, err, util.ErrChallengeTypeUnknown)
}

func TestEnrollRequiresTargetTimeExceptThanks(t *testing.T) {
	f := newChallengeFixture()
	member := f.member(t, "pat")

	_, err := f.svc.Enroll(member.ID, "water", 30, nil)
	assert.ErrorIs(t, err, util.ErrTargetTimeRequired)

	challenge, err := f.svc.Enroll(member.ID, "thanks", 30, nil)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, challenge.Status)
	assert.Nil(t, challenge.TargetTime)
}

func TestEnrollSecondActiveChallengeAlwaysFails(t *testing.T) {
	f := newChallengeFixture()
	member := f.member(t, "pat")

	_, err := f.svc.Enroll(member.ID, "water", 30, strPtr("08:00"))
	require.NoError(t, err)

	_, err = f.svc.Enroll(member.ID, "exercise", 14, strPtr("19:00"))
	assert.ErrorIs(t, err, util.ErrEnrollDuplicated)

	// The duplicate check wins even when the request is otherwise invalid.
	_, err = f.svc.Enroll(member.ID, "study", 14, nil)
	assert.ErrorIs(t, err, util.ErrEnrollDuplicated)
}

func TestDeleteMarksActiveChallengeDeleted(t *testing.T) {
	f := newChallengeFixture()
	member := f.member(t, "pat")

	assert.ErrorIs(t, f.svc.Delete(member.ID), util.ErrChallengeNotFound)

	challenge, err := f.svc.Enroll(member.ID, "water", 30, strPtr("08:00"))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(member.ID))
	assert.Equal(t, model.StatusDeleted, challenge.Status)

	// A fresh enrollment is allowed afterwards.
	_, err = f.svc.Enroll(member.ID, "thanks", 7, nil)
	assert.NoError(t, err)
}

func TestWriteHistoryOncePerDay(t *testing.T) {
	f := newChallengeFixture()
	member := f.member(t, "pat")

	_, err := f.svc.WriteHistory(member.ID, "watered", nil)
	assert.ErrorIs(t, err, util.ErrChallengeNotFound)

	_, err = f.svc.Enroll(member.ID, "water", 30, strPtr("08:00"))
	require.NoError(t, err)

	info, err := f.svc.WriteHistory(member.ID, "watered", strPtr("08:05"))
	require.NoError(t, err)
	assert.Equal(t, 1, info.Day)
	assert.Equal(t, "watered", info.Contents)

	_, err = f.svc.WriteHistory(member.ID, "again", nil)
	assert.ErrorIs(t, err, util.ErrHistoryAlreadyWritten)
}

func TestActiveRecordProgress(t *testing.T) {
	f := newChallengeFixture()
	member := f.member(t, "pat")

	// No active challenge yields an empty record, not an error.
	record, err := f.svc.ActiveRecord(member.ID)
	require.NoError(t, err)
	assert.Equal(t, &ActiveRecord{}, record)

	challenge, err := f.svc.Enroll(member.ID, "water", 30, strPtr("08:00"))
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		require.NoError(t, f.histories.Create(&model.History{ChallengeID: challenge.ID, Contents: "watered"}))
	}

	record, err = f.svc.ActiveRecord(member.ID)
	require.NoError(t, err)
	assert.Equal(t, 33, record.Progress) // floor(10/30*100)
	assert.Equal(t, "water", record.ChallengeType)
	assert.Len(t, record.Histories, 10)
	assert.Equal(t, 1, record.Histories[0].Day)
	assert.Equal(t, 10, record.Histories[9].Day)
}

func TestAllRecordsTotalDateMixesCountings(t *testing.T) {
	f := newChallengeFixture()
	member := f.member(t, "pat")

	addDone := func(createdDaysAgo, historyCount int) {
		challenge := &model.Challenge{
			BaseModel:     model.BaseModel{CreatedAt: seedTime(createdDaysAgo)},
			MemberID:      member.ID,
			ChallengeType: model.ChallengeWater,
			TargetDate:    30,
			Status:        model.StatusSuccess,
		}
		require.NoError(t, f.challenges.Create(challenge))
		for i := 0; i < historyCount; i++ {
			require.NoError(t, f.histories.Create(&model.History{ChallengeID: challenge.ID, Contents: "watered"}))
		}
	}

	// Two single-history challenges created on distinct days count one day
	// each; the five-history challenge contributes its raw count.
	addDone(10, 1)
	addDone(5, 1)
	addDone(2, 5)

	records, err := f.svc.AllRecords(member.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, records.TotalDate)
	assert.Equal(t, 3, records.TotalChallenges)
	assert.Len(t, records.Challenges, 3)
}

func TestAllRecordsSingleHistoryChallengesOnSameDayCollapse(t *testing.T) {
	f := newChallengeFixture()
	member := f.member(t, "pat")

	created := seedTime(3)
	for i := 0; i < 2; i++ {
		challenge := &model.Challenge{
			BaseModel:     model.BaseModel{CreatedAt: created},
			MemberID:      member.ID,
			ChallengeType: model.ChallengeThanks,
			TargetDate:    7,
			Status:        model.StatusFail,
		}
		require.NoError(t, f.challenges.Create(challenge))
		require.NoError(t, f.histories.Create(&model.History{ChallengeID: challenge.ID, Contents: "thanks"}))
	}

	records, err := f.svc.AllRecords(member.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, records.TotalDate)
	assert.Equal(t, 2, records.TotalChallenges)
	assert.False(t, records.Challenges[0].Success)
}

func TestAllRecordsSkipsUnfinishedChallenges(t *testing.T) {
	f := newChallengeFixture()
	member := f.member(t, "pat")

	_, err := f.svc.Enroll(member.ID, "water", 30, strPtr("08:00"))
	require.NoError(t, err)

	records, err := f.svc.AllRecords(member.ID)
	require.NoError(t, err)
	assert.Equal(t, &AllRecords{}, records)
}

func TestMessageFallsBackWhenFileMissing(t *testing.T) {
	f := newChallengeFixture()
	member := f.member(t, "pat")

	_, err := f.svc.Message(member.ID)
	assert.ErrorIs(t, err, util.ErrChallengeNotFound)

	_, err = f.svc.Enroll(member.ID, "water", 30, strPtr("08:00"))
	require.NoError(t, err)

	message, err := f.svc.Message(member.ID)
	require.NoError(t, err)
	assert.Equal(t, defaultMessage, message)
}

func TestMessagePicksLineFromFile(t *testing.T) {
	f := newChallengeFixture()
	member := f.member(t, "pat")
	_, err := f.svc.Enroll(member.ID, "water", 30, strPtr("08:00"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "water.txt")
	require.NoError(t, os.WriteFile(path, []byte("first line\n\nsecond line\n"), 0o644))
	f.svc.MessageFile = path

	for i := 0; i < 10; i++ {
		message, err := f.svc.Message(member.ID)
		require.NoError(t, err)
		assert.Contains(t, []string{"first line", "second line"}, message)
	}
}

func TestMessageFallsBackOnBlankFile(t *testing.T) {
	f := newChallengeFixture()
	member := f.member(t, "pat")
	_, err := f.svc.Enroll(member.ID, "water", 30, strPtr("08:00"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "water.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n   \n"), 0o644))
	f.svc.MessageFile = path

	message, err := f.svc.Message(member.ID)
	require.NoError(t, err)
	assert.Equal(t, defaultMessage, message)
}

// addSuccesses gives a member n finished successful challenges.
func (f *challengeFixture) addSuccesses(t *testing.T, memberID uint, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		challenge := &model.Challenge{
			MemberID:      memberID,
			ChallengeType: model.ChallengeWater,
			TargetDate:    30,
			Status:        model.StatusSuccess,
			Stamp:         1,
		}
		require.NoError(t, f.challenges.Create(challenge))
	}
}

func TestRankingTopThreeWithoutPadding(t *testing.T) {
	f := newChallengeFixture()
	a := f.member(t, "alice")
	b := f.member(t, "bob")
	c := f.member(t, "carol")
	d := f.member(t, "dave")
	me := f.member(t, "pat")

	f.addSuccesses(t, a.ID, 5)
	f.addSuccesses(t, b.ID, 3)
	f.addSuccesses(t, c.ID, 2)
	f.addSuccesses(t, d.ID, 1)
	f.addSuccesses(t, me.ID, 4)

	info, err := f.svc.Ranking(me.ID)
	require.NoError(t, err)

	require.Len(t, info.Rankers, 3)
	assert.Equal(t, Ranker{Rank: 1, Username: "alice", Stamps: 5}, info.Rankers[0])
	assert.Equal(t, Ranker{Rank: 2, Username: "pat", Stamps: 4}, info.Rankers[1])
	assert.Equal(t, Ranker{Rank: 3, Username: "bob", Stamps: 3}, info.Rankers[2])

	// Already on the board, so no separate block.
	assert.Nil(t, info.MyRanking)
	assert.Equal(t, []int{1, 1, 1, 1}, info.MyStamps)
}

func TestRankingPadsWithMembersWithoutSuccesses(t *testing.T) {
	f := newChallengeFixture()
	a := f.member(t, "alice")
	f.member(t, "bob")
	f.member(t, "carol")
	me := f.member(t, "pat")

	f.addSuccesses(t, a.ID, 2)

	info, err := f.svc.Ranking(me.ID)
	require.NoError(t, err)

	require.Len(t, info.Rankers, 3)
	assert.Equal(t, Ranker{Rank: 1, Username: "alice", Stamps: 2}, info.Rankers[0])
	// Padding walks active members in id order, skipping alice.
	assert.Equal(t, Ranker{Rank: 2, Username: "bob", Stamps: 0}, info.Rankers[1])
	assert.Equal(t, Ranker{Rank: 3, Username: "carol", Stamps: 0}, info.Rankers[2])

	// Fewer than three real candidates puts everyone else just off the board.
	require.NotNil(t, info.MyRanking)
	assert.Equal(t, Ranker{Rank: 4, Username: "pat", Stamps: 0}, *info.MyRanking)
	assert.Equal(t, []int{}, info.MyStamps)
}

func TestRankingPositionalRankOffTheBoard(t *testing.T) {
	f := newChallengeFixture()
	a := f.member(t, "alice")
	b := f.member(t, "bob")
	c := f.member(t, "carol")
	me := f.member(t, "pat")

	f.addSuccesses(t, a.ID, 5)
	f.addSuccesses(t, b.ID, 4)
	f.addSuccesses(t, c.ID, 3)
	f.addSuccesses(t, me.ID, 2)

	info, err := f.svc.Ranking(me.ID)
	require.NoError(t, err)

	require.Len(t, info.Rankers, 3)
	assert.Equal(t, "alice", info.Rankers[0].Username)

	require.NotNil(t, info.MyRanking)
	assert.Equal(t, 4, info.MyRanking.Rank)
	assert.Equal(t, "pat", info.MyRanking.Username)
	assert.Equal(t, 2, info.MyRanking.Stamps)
	assert.Equal(t, []int{1, 1}, info.MyStamps)
}

func TestRankingTiesBreakByMemberID(t *testing.T) {
	f := newChallengeFixture()
	a := f.member(t, "alice")
	b := f.member(t, "bob")
	c := f.member(t, "carol")
	me := f.member(t, "pat")

	f.addSuccesses(t, a.ID, 2)
	f.addSuccesses(t, b.ID, 2)
	f.addSuccesses(t, c.ID, 2)

	info, err := f.svc.Ranking(me.ID)
	require.NoError(t, err)

	require.Len(t, info.Rankers, 3)
	assert.Equal(t, "alice", info.Rankers[0].Username)
	assert.Equal(t, "bob", info.Rankers[1].Username)
	assert.Equal(t, "carol", info.Rankers[2].Username)
}

func TestRankingIgnoresDeletedMembers(t *testing.T) {
	f := newChallengeFixture()
	ghost := f.member(t, "ghost")
	a := f.member(t, "alice")
	me := f.member(t, "pat")

	f.addSuccesses(t, ghost.ID, 9)
	f.addSuccesses(t, a.ID, 1)
	ghost.Deleted = true
	require.NoError(t, f.members.Update(ghost))

	info, err := f.svc.Ranking(me.ID)
	require.NoError(t, err)

	for _, ranker := range info.Rankers {
		assert.NotEqual(t, "ghost", ranker.Username)
	}
	assert.Equal(t, "alice", info.Rankers[0].Username)
}

func TestRankingUnknownMember(t *testing.T) {
	f := newChallengeFixture()

	_, err := f.svc.Ranking(999)
	assert.ErrorIs(t, err, util.ErrMemberNotFound)
}

func TestSetNotifiedHidesLatestChallenge(t *testing.T) {
	f := newChallengeFixture()
	member := f.member(t, "pat")

	assert.ErrorIs(t, f.svc.SetNotified(member.ID), util.ErrChallengeNotFound)

	challenge, err := f.svc.Enroll(member.ID, "water", 30, strPtr("08:00"))
	require.NoError(t, err)
	challenge.Status = model.StatusSuccess
	require.NoError(t, f.challenges.Update(challenge))

	require.NoError(t, f.svc.SetNotified(member.ID))
	assert.True(t, challenge.Notified)
}

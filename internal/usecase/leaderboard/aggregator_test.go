package leaderboard

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peer-insights/internal/domain"
)

var now = time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)

func TestHelpfulSumsVotes(t *testing.T) {
	in := Input{
		Posts: []domain.Post{{ID: "P1", Category: domain.CategoryAcademic, CreatedAt: now}},
		Replies: []domain.Reply{
			{ID: "R1", PostID: "P1", AuthorID: "U1", AuthorPseudonym: "owl", IsHelpful: 3, CreatedAt: now},
			{ID: "R2", PostID: "P1", AuthorID: "U1", AuthorPseudonym: "owl", IsHelpful: 2, CreatedAt: now},
		},
	}
	entries, err := Build(domain.LeaderboardHelpful, domain.WindowAllTime, in, now)
	require.NoError(t, err)
	assert.Equal(t, []domain.LeaderboardEntry{{UserID: "U1", Pseudonym: "owl", Value: 5, Rank: 1}}, entries)
}

func TestHelpfulOmitsUsersWithoutVotes(t *testing.T) {
	in := Input{Replies: []domain.Reply{
		{AuthorID: "U1", IsHelpful: 0},
		{AuthorID: "U2", IsHelpful: 1},
	}}
	entries, err := Build(domain.LeaderboardHelpful, domain.WindowAllTime, in, now)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "U2", entries[0].UserID)
}

func TestOrphanReplyCountsForEngagedOnly(t *testing.T) {
	var replies []domain.Reply
	for i := 0; i < ExpertThreshold; i++ {
		replies = append(replies, domain.Reply{ID: fmt.Sprintf("R%d", i), PostID: "missing", AuthorID: "U1", CreatedAt: now})
	}
	in := Input{Replies: replies}

	engagedEntries, err := Build(domain.LeaderboardEngaged, domain.WindowAllTime, in, now)
	require.NoError(t, err)
	require.Len(t, engagedEntries, 1)
	assert.Equal(t, ExpertThreshold, engagedEntries[0].Value)

	experts, err := Build(domain.LeaderboardCategoryExpert, domain.WindowAllTime, in, now)
	require.NoError(t, err)
	assert.Empty(t, experts)
}

func expertInput(userReplies map[string]int, category domain.Category) Input {
	in := Input{Posts: []domain.Post{{ID: "P1", Category: category, CreatedAt: now}}}
	for _, user := range []string{"U1", "U2"} {
		for i := 0; i < userReplies[user]; i++ {
			in.Replies = append(in.Replies, domain.Reply{PostID: "P1", AuthorID: user, AuthorPseudonym: "p-" + user, CreatedAt: now})
		}
	}
	return in
}

func TestCategoryExpertThreshold(t *testing.T) {
	in := expertInput(map[string]int{"U1": ExpertThreshold - 1, "U2": ExpertThreshold}, domain.CategoryMentalHealth)
	entries, err := Build(domain.LeaderboardCategoryExpert, domain.WindowAllTime, in, now)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "U2", entries[0].UserID)
	assert.Equal(t, ExpertThreshold, entries[0].Value)
	assert.Equal(t, domain.CategoryMentalHealth, entries[0].Category)
}

func TestCategoryExpertPicksTopCategory(t *testing.T) {
	in := Input{Posts: []domain.Post{
		{ID: "A", Category: domain.CategoryAcademic},
		{ID: "F", Category: domain.CategoryFamilyHome},
	}}
	for i := 0; i < 21; i++ {
		in.Replies = append(in.Replies, domain.Reply{PostID: "F", AuthorID: "U1"})
	}
	for i := 0; i < 25; i++ {
		in.Replies = append(in.Replies, domain.Reply{PostID: "A", AuthorID: "U1"})
	}
	entries, err := Build(domain.LeaderboardCategoryExpert, domain.WindowAllTime, in, now)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.CategoryAcademic, entries[0].Category)
	assert.Equal(t, 25, entries[0].Value)
}

func TestCategoryExpertRejectsUnknownCategory(t *testing.T) {
	in := expertInput(map[string]int{"U1": 1}, domain.Category("astrology"))
	_, err := Build(domain.LeaderboardCategoryExpert, domain.WindowAllTime, in, now)
	require.ErrorIs(t, err, domain.ErrUnknownCategory)
}

func TestStreaksUseLongestPerKnownUser(t *testing.T) {
	in := Input{
		Users: []domain.User{{ID: "U1", Pseudonym: "owl"}, {ID: "U2", Pseudonym: "fox"}, {ID: "U3", Pseudonym: "cat"}},
		Streaks: []domain.StreakRecord{
			{UserID: "U1", LongestStreak: 4},
			{UserID: "U1", LongestStreak: 9},
			{UserID: "U2", LongestStreak: 12},
			{UserID: "U3", LongestStreak: 0},
			{UserID: "ghost", LongestStreak: 50},
		},
	}
	entries, err := Build(domain.LeaderboardStreaks, domain.WindowAllTime, in, now)
	require.NoError(t, err)
	assert.Equal(t, []domain.LeaderboardEntry{
		{UserID: "U2", Pseudonym: "fox", Value: 12, Rank: 1},
		{UserID: "U1", Pseudonym: "owl", Value: 9, Rank: 2},
	}, entries)
}

func TestBadgesJoinPseudonym(t *testing.T) {
	in := Input{
		Users:  []domain.User{{ID: "U1", Pseudonym: "owl"}},
		Badges: []domain.BadgeAward{{UserID: "U1"}, {UserID: "U1"}, {UserID: "U9"}},
	}
	entries, err := Build(domain.LeaderboardBadges, domain.WindowAllTime, in, now)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "owl", entries[0].Pseudonym)
	assert.Equal(t, 2, entries[0].Value)
	assert.Equal(t, anonymousPseudonym, entries[1].Pseudonym)
}

func TestRanksContiguousAndSorted(t *testing.T) {
	in := Input{}
	for i := 0; i < 30; i++ {
		user := fmt.Sprintf("U%d", i%7)
		in.Replies = append(in.Replies, domain.Reply{AuthorID: user, IsHelpful: (i * 3) % 5})
	}
	entries, err := Build(domain.LeaderboardHelpful, domain.WindowAllTime, in, now)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	for i, e := range entries {
		assert.Equal(t, i+1, e.Rank)
		if i > 0 {
			assert.GreaterOrEqual(t, entries[i-1].Value, e.Value)
		}
	}
}

func TestTiesKeepFirstAppearance(t *testing.T) {
	in := Input{Posts: []domain.Post{
		{AuthorID: "B"},
		{AuthorID: "A"},
		{AuthorID: "C"},
		{AuthorID: "C"},
	}}
	entries, err := Build(domain.LeaderboardEngaged, domain.WindowAllTime, in, now)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"C", "B", "A"}, []string{entries[0].UserID, entries[1].UserID, entries[2].UserID})
}

func TestWeeklyWindowFiltersRecords(t *testing.T) {
	in := Input{
		Posts: []domain.Post{
			{AuthorID: "U1", CreatedAt: now.AddDate(0, 0, -2)},
			{AuthorID: "U2", CreatedAt: now.AddDate(0, 0, -10)},
		},
		Replies: []domain.Reply{{AuthorID: "U2", CreatedAt: now.AddDate(0, 0, -8)}},
	}
	weekly, err := Build(domain.LeaderboardEngaged, domain.WindowWeekly, in, now)
	require.NoError(t, err)
	require.Len(t, weekly, 1)
	assert.Equal(t, "U1", weekly[0].UserID)

	monthly, err := Build(domain.LeaderboardEngaged, domain.WindowMonthly, in, now)
	require.NoError(t, err)
	require.Len(t, monthly, 2)
	assert.Equal(t, "U2", monthly[0].UserID)
}

func TestUnknownSelectors(t *testing.T) {
	_, err := Build(domain.LeaderboardCategory("karma"), domain.WindowAllTime, Input{}, now)
	require.ErrorIs(t, err, domain.ErrUnknownLeaderboardCategory)
	_, err = Build(domain.LeaderboardHelpful, domain.TimeWindow("yearly"), Input{}, now)
	require.ErrorIs(t, err, domain.ErrUnknownWindow)
}

func TestBuildIsIdempotent(t *testing.T) {
	in := expertInput(map[string]int{"U1": 25, "U2": 30}, domain.CategoryRelationships)
	for _, c := range []domain.LeaderboardCategory{domain.LeaderboardEngaged, domain.LeaderboardCategoryExpert} {
		first, err := Build(c, domain.WindowAllTime, in, now)
		require.NoError(t, err)
		second, err := Build(c, domain.WindowAllTime, in, now)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestSummarizeUserRank(t *testing.T) {
	entries := []domain.LeaderboardEntry{{UserID: "U1", Rank: 1}, {UserID: "U2", Rank: 2}}
	s := Summarize(domain.LeaderboardHelpful, domain.WindowAllTime, entries, "U2")
	require.NotNil(t, s.UserRank)
	assert.Equal(t, 2, *s.UserRank)
	assert.Equal(t, 2, s.Participants)

	unranked := Summarize(domain.LeaderboardHelpful, domain.WindowAllTime, entries, "U3")
	assert.Nil(t, unranked.UserRank)
}

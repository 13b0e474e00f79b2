package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/checkin"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/shared"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/user"
)

func TestSchoolStats_Aggregates(t *testing.T) {
	repo := newFakeCheckinRepo()
	repo.scopeStats = &checkin.ScopeStats{
		Members:    30,
		TotalMarks: 120,
		ActiveDays: 14,
		PerHabit: []checkin.HabitCount{
			{Key: "lights_off", Count: 50},
			{Key: "water_teeth", Count: 40},
			{Key: "no_cup", Count: 20},
			{Key: "no_bag", Count: 10},
		},
	}
	repo.mostActive = user.Class("6Г")
	repo.mostActiveCount = 33

	handler := NewSchoolStatsHandler(repo, nil, time.UTC)

	result, err := handler.Handle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 30, result.Members)
	assert.Equal(t, 120, result.TotalMarks)
	assert.Equal(t, 14, result.ActiveDays)
	require.Len(t, result.TopHabits, 3, "top is capped at three habits")
	assert.Equal(t, "lights_off", result.TopHabits[0].Key)
	assert.Equal(t, user.Class("6Г"), result.MostActiveClass)
	assert.Equal(t, 33, result.MostActiveCount)
}

func TestSchoolStats_WindowIsSevenDaysIncludingToday(t *testing.T) {
	repo := newFakeCheckinRepo()
	handler := NewSchoolStatsHandler(repo, nil, time.UTC)
	handler.now = func() time.Time {
		return time.Date(2024, 5, 7, 19, 0, 0, 0, time.UTC)
	}

	_, err := handler.Handle(context.Background())
	require.NoError(t, err)

	require.Len(t, repo.lastWindow, 7)
	assert.Equal(t, checkin.Day("2024-05-01"), repo.lastWindow[0])
	assert.Equal(t, checkin.Day("2024-05-07"), repo.lastWindow[6])
}

func TestSchoolStats_EmptySchool(t *testing.T) {
	repo := newFakeCheckinRepo()
	handler := NewSchoolStatsHandler(repo, nil, time.UTC)

	result, err := handler.Handle(context.Background())
	require.NoError(t, err)

	assert.Zero(t, result.TotalMarks)
	assert.Empty(t, result.TopHabits)
	assert.False(t, result.MostActiveClass.IsSet())
	assert.Zero(t, result.MostActiveCount)
}

func TestSchoolStats_CacheHitSkipsStorage(t *testing.T) {
	repo := newFakeCheckinRepo()
	cache := newFakeStatsCache()
	cache.stats = &checkin.ScopeStats{TotalMarks: 99, Members: 10}
	require.NoError(t, cache.SetMostActiveClass(context.Background(), user.Class("6В"), 40))

	handler := NewSchoolStatsHandler(repo, cache, time.UTC)

	result, err := handler.Handle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 99, result.TotalMarks)
	assert.Equal(t, user.Class("6В"), result.MostActiveClass)
	assert.Zero(t, repo.scopeStatsCalls, "cache hit must not touch storage")
	assert.Nil(t, repo.lastWindow)
}

func TestSchoolStats_CacheMissFillsCache(t *testing.T) {
	repo := newFakeCheckinRepo()
	repo.scopeStats = &checkin.ScopeStats{TotalMarks: 5, Members: 3}
	repo.mostActive = user.Class("6Г")
	repo.mostActiveCount = 4
	cache := newFakeStatsCache()

	handler := NewSchoolStatsHandler(repo, cache, time.UTC)

	_, err := handler.Handle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, cache.stats.TotalMarks)
	assert.True(t, cache.hasClass)
	assert.Equal(t, user.Class("6Г"), cache.class)
}

func TestClassStats_RequiresClass(t *testing.T) {
	users := newFakeUserRepo()
	handler := NewClassStatsHandler(users, newFakeCheckinRepo())

	_, err := handler.Handle(context.Background(), ClassStatsQuery{UserID: 1})

	require.Error(t, err)
	assert.True(t, shared.IsNotGrouped(err))
}

func TestClassStats_ScopesToOwnClass(t *testing.T) {
	users := newFakeUserRepo()
	users.classes[user.ID(1)] = user.Class("6В")

	repo := newFakeCheckinRepo()
	repo.scopeStats = &checkin.ScopeStats{Members: 12, TotalMarks: 48, ActiveDays: 6}

	handler := NewClassStatsHandler(users, repo)

	result, err := handler.Handle(context.Background(), ClassStatsQuery{UserID: 1})
	require.NoError(t, err)

	assert.Equal(t, user.Class("6В"), result.Class)
	assert.Equal(t, 12, result.Members)

	class, limited := repo.lastScope.Class()
	require.True(t, limited, "class stats must query a class scope")
	assert.Equal(t, user.Class("6В"), class)
}

func TestMyStats_NoMarks(t *testing.T) {
	handler := NewMyStatsHandler(newFakeCheckinRepo())

	result, err := handler.Handle(context.Background(), MyStatsQuery{UserID: 1})
	require.NoError(t, err)

	assert.Zero(t, result.TotalMarks)
	assert.Empty(t, result.TopHabits)
}

func TestMyStats_TopCapped(t *testing.T) {
	repo := newFakeCheckinRepo()
	repo.userStats = &checkin.UserStats{
		TotalMarks: 20,
		ActiveDays: 8,
		PerHabit: []checkin.HabitCount{
			{Key: "lights_off", Count: 8},
			{Key: "water_teeth", Count: 6},
			{Key: "no_cup", Count: 4},
			{Key: "eco_move", Count: 2},
		},
	}
	handler := NewMyStatsHandler(repo)

	result, err := handler.Handle(context.Background(), MyStatsQuery{UserID: 1})
	require.NoError(t, err)

	assert.Equal(t, 20, result.TotalMarks)
	assert.Equal(t, 8, result.ActiveDays)
	require.Len(t, result.TopHabits, 3)
	assert.Equal(t, "lights_off", result.TopHabits[0].Key)
}

package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/checkin"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/habit"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/shared"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/user"
)

func testCatalog() *habit.Catalog {
	return habit.NewCatalog([]habit.Habit{
		{Key: "lights_off", Title: "💡 Выключаю свет"},
		{Key: "no_cup", Title: "🥤 Без стаканчика"},
	})
}

func toggleCmd(key string) ToggleHabitCommand {
	return ToggleHabitCommand{
		UserID:   user.ID(42),
		Day:      checkin.Day("2024-05-01"),
		HabitKey: key,
	}
}

func TestToggleHabit_SetsAndClears(t *testing.T) {
	repo := newFakeCheckinRepo()
	handler := NewToggleHabitHandler(repo, testCatalog(), nil)
	ctx := context.Background()

	marked, err := handler.Handle(ctx, toggleCmd("lights_off"))
	require.NoError(t, err)
	assert.True(t, marked, "first toggle sets the mark")

	marks, err := repo.DayMarks(ctx, user.ID(42), checkin.Day("2024-05-01"))
	require.NoError(t, err)
	assert.True(t, marks.Has("lights_off"))

	marked, err = handler.Handle(ctx, toggleCmd("lights_off"))
	require.NoError(t, err)
	assert.False(t, marked, "second toggle clears the mark")

	marks, err = repo.DayMarks(ctx, user.ID(42), checkin.Day("2024-05-01"))
	require.NoError(t, err)
	assert.False(t, marks.Has("lights_off"))
}

func TestToggleHabit_IndependentCells(t *testing.T) {
	repo := newFakeCheckinRepo()
	handler := NewToggleHabitHandler(repo, testCatalog(), nil)
	ctx := context.Background()

	_, err := handler.Handle(ctx, toggleCmd("lights_off"))
	require.NoError(t, err)
	_, err = handler.Handle(ctx, toggleCmd("no_cup"))
	require.NoError(t, err)

	// Снятие одной привычки не трогает другую.
	_, err = handler.Handle(ctx, toggleCmd("lights_off"))
	require.NoError(t, err)

	marks, err := repo.DayMarks(ctx, user.ID(42), checkin.Day("2024-05-01"))
	require.NoError(t, err)
	assert.False(t, marks.Has("lights_off"))
	assert.True(t, marks.Has("no_cup"))
}

func TestToggleHabit_UnknownHabit(t *testing.T) {
	handler := NewToggleHabitHandler(newFakeCheckinRepo(), testCatalog(), nil)

	_, err := handler.Handle(context.Background(), toggleCmd("smoking"))

	require.Error(t, err)
	assert.True(t, shared.IsValidation(err))
}

func TestToggleHabit_InvalidCommand(t *testing.T) {
	handler := NewToggleHabitHandler(newFakeCheckinRepo(), testCatalog(), nil)

	tests := []struct {
		name string
		cmd  ToggleHabitCommand
	}{
		{"zero user", ToggleHabitCommand{Day: "2024-05-01", HabitKey: "lights_off"}},
		{"bad day", ToggleHabitCommand{UserID: 1, Day: "01.05.2024", HabitKey: "lights_off"}},
		{"empty habit", ToggleHabitCommand{UserID: 1, Day: "2024-05-01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handler.Handle(context.Background(), tt.cmd)
			assert.True(t, shared.IsValidation(err))
		})
	}
}

func TestToggleHabit_InvalidatesCache(t *testing.T) {
	invalidator := &fakeInvalidator{}
	handler := NewToggleHabitHandler(newFakeCheckinRepo(), testCatalog(), invalidator)

	_, err := handler.Handle(context.Background(), toggleCmd("lights_off"))

	require.NoError(t, err)
	assert.Equal(t, 1, invalidator.calls)
}

func TestToggleHabit_CacheErrorDoesNotFail(t *testing.T) {
	invalidator := &fakeInvalidator{err: errors.New("redis down")}
	handler := NewToggleHabitHandler(newFakeCheckinRepo(), testCatalog(), invalidator)

	marked, err := handler.Handle(context.Background(), toggleCmd("lights_off"))

	require.NoError(t, err)
	assert.True(t, marked)
}

func TestToggleHabit_StorageError(t *testing.T) {
	repo := newFakeCheckinRepo()
	repo.setErr = shared.WrapError("checkin", "SetMark", shared.ErrStorageFault, "insert failed", errors.New("timeout"))
	handler := NewToggleHabitHandler(repo, testCatalog(), nil)

	_, err := handler.Handle(context.Background(), toggleCmd("lights_off"))

	assert.True(t, shared.IsStorageFault(err))
}

package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/checkin"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/habit"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/shared"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/user"
)

func sheetCatalog() *habit.Catalog {
	return habit.NewCatalog([]habit.Habit{
		{Key: "water_teeth", Title: "🚰 Вода"},
		{Key: "lights_off", Title: "💡 Свет"},
		{Key: "no_cup", Title: "🥤 Стаканчик"},
	})
}

func TestCheckinSheet_RequiresClass(t *testing.T) {
	handler := NewCheckinSheetHandler(newFakeUserRepo(), newFakeCheckinRepo(), sheetCatalog())

	_, err := handler.Handle(context.Background(), CheckinSheetQuery{UserID: 1, Day: "2024-05-01"})

	require.Error(t, err)
	assert.True(t, shared.IsNotGrouped(err))
}

func TestCheckinSheet_MarksAndOrder(t *testing.T) {
	users := newFakeUserRepo()
	users.classes[user.ID(1)] = user.Class("6В")

	repo := newFakeCheckinRepo()
	repo.dayMarks = checkin.DaySet{"lights_off": {}, "no_cup": {}}

	handler := NewCheckinSheetHandler(users, repo, sheetCatalog())

	sheet, err := handler.Handle(context.Background(), CheckinSheetQuery{UserID: 1, Day: "2024-05-01"})
	require.NoError(t, err)

	assert.Equal(t, checkin.Day("2024-05-01"), sheet.Day)
	assert.Equal(t, user.Class("6В"), sheet.Class)
	assert.Equal(t, 2, sheet.Marked)

	require.Len(t, sheet.Items, 3, "sheet lists the whole catalog")
	assert.Equal(t, "water_teeth", sheet.Items[0].Habit.Key)
	assert.False(t, sheet.Items[0].Marked)
	assert.True(t, sheet.Items[1].Marked)
	assert.True(t, sheet.Items[2].Marked)
}

func TestCheckinSheet_EmptyDay(t *testing.T) {
	users := newFakeUserRepo()
	users.classes[user.ID(1)] = user.Class("6В")

	handler := NewCheckinSheetHandler(users, newFakeCheckinRepo(), sheetCatalog())

	sheet, err := handler.Handle(context.Background(), CheckinSheetQuery{UserID: 1, Day: "2024-05-01"})
	require.NoError(t, err)

	assert.Zero(t, sheet.Marked)
	for _, item := range sheet.Items {
		assert.False(t, item.Marked)
	}
}

func TestCheckinSheet_InvalidQuery(t *testing.T) {
	handler := NewCheckinSheetHandler(newFakeUserRepo(), newFakeCheckinRepo(), sheetCatalog())

	_, err := handler.Handle(context.Background(), CheckinSheetQuery{UserID: 1, Day: "01.05.2024"})
	assert.True(t, shared.IsValidation(err))

	_, err = handler.Handle(context.Background(), CheckinSheetQuery{Day: "2024-05-01"})
	assert.True(t, shared.IsValidation(err))
}

func TestRequireClass(t *testing.T) {
	users := newFakeUserRepo()
	users.classes[user.ID(5)] = user.Class("6Г")

	class, err := RequireClass(context.Background(), users, user.ID(5))
	require.NoError(t, err)
	assert.Equal(t, user.Class("6Г"), class)

	_, err = RequireClass(context.Background(), users, user.ID(6))
	assert.True(t, shared.IsNotGrouped(err))
}

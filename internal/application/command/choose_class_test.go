package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/shared"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/user"
)

func testClasses() user.Classes {
	return user.NewClasses([]string{"6В", "6Г"})
}

func TestChooseClass_SetsClass(t *testing.T) {
	repo := newFakeUserRepo()
	handler := NewChooseClassHandler(repo, testClasses())
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, user.ID(1), "Маша"))

	err := handler.Handle(ctx, ChooseClassCommand{UserID: 1, Class: "6В"})
	require.NoError(t, err)

	class, ok, err := repo.GetClass(ctx, user.ID(1))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, user.Class("6В"), class)
}

func TestChooseClass_ChangesClass(t *testing.T) {
	repo := newFakeUserRepo()
	handler := NewChooseClassHandler(repo, testClasses())
	ctx := context.Background()

	require.NoError(t, handler.Handle(ctx, ChooseClassCommand{UserID: 1, Class: "6В"}))
	require.NoError(t, handler.Handle(ctx, ChooseClassCommand{UserID: 1, Class: "6Г"}))

	class, ok, err := repo.GetClass(ctx, user.ID(1))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, user.Class("6Г"), class)
}

func TestChooseClass_UnknownClass(t *testing.T) {
	handler := NewChooseClassHandler(newFakeUserRepo(), testClasses())

	err := handler.Handle(context.Background(), ChooseClassCommand{UserID: 1, Class: "7А"})

	require.Error(t, err)
	assert.True(t, shared.IsInvalidGroup(err))
}

func TestChooseClass_RegistersUnknownUser(t *testing.T) {
	// Выбор класса должен работать, даже если /start попал в старый процесс.
	repo := newFakeUserRepo()
	handler := NewChooseClassHandler(repo, testClasses())
	ctx := context.Background()

	err := handler.Handle(ctx, ChooseClassCommand{UserID: 7, Class: "6В"})
	require.NoError(t, err)

	u, err := repo.Get(ctx, user.ID(7))
	require.NoError(t, err)
	assert.Equal(t, user.Class("6В"), u.Class)
}

func TestChooseClass_InvalidCommand(t *testing.T) {
	handler := NewChooseClassHandler(newFakeUserRepo(), testClasses())

	err := handler.Handle(context.Background(), ChooseClassCommand{UserID: 0, Class: "6В"})
	assert.True(t, shared.IsValidation(err))

	err = handler.Handle(context.Background(), ChooseClassCommand{UserID: 1})
	assert.True(t, shared.IsValidation(err))
}

func TestRegisterUser_Idempotent(t *testing.T) {
	repo := newFakeUserRepo()
	handler := NewRegisterUserHandler(repo)
	ctx := context.Background()

	result, err := handler.Handle(ctx, RegisterUserCommand{UserID: 1, DisplayName: "Маша"})
	require.NoError(t, err)
	assert.False(t, result.HasClass)

	require.NoError(t, repo.SetClass(ctx, user.ID(1), user.Class("6В")))

	// Повторный /start не сбрасывает класс.
	result, err = handler.Handle(ctx, RegisterUserCommand{UserID: 1, DisplayName: "Мария"})
	require.NoError(t, err)
	assert.True(t, result.HasClass)
	assert.Equal(t, user.Class("6В"), result.Class)
}

func TestRegisterUser_InvalidID(t *testing.T) {
	handler := NewRegisterUserHandler(newFakeUserRepo())

	_, err := handler.Handle(context.Background(), RegisterUserCommand{UserID: 0})

	assert.True(t, shared.IsValidation(err))
}

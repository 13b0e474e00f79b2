// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"

	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/shared"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER USER COMMAND
// Первый контакт с ботом: регистрирует ученика или обновляет его имя.
// Повторный /start ничего не ломает - операция идемпотентна.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterUserCommand содержит данные первого контакта.
type RegisterUserCommand struct {
	// UserID - идентификатор Telegram.
	UserID user.ID

	// DisplayName - имя из Telegram (может быть пустым).
	DisplayName string
}

// Validate проверяет корректность команды.
func (c *RegisterUserCommand) Validate() error {
	if !c.UserID.IsValid() {
		return errors.New("user_id is required")
	}
	return nil
}

// RegisterUserHandler обрабатывает RegisterUserCommand.
type RegisterUserHandler struct {
	users user.Repository
}

// NewRegisterUserHandler создаёт обработчик.
func NewRegisterUserHandler(users user.Repository) *RegisterUserHandler {
	return &RegisterUserHandler{users: users}
}

// RegisterUserResult - результат регистрации.
type RegisterUserResult struct {
	// Class - текущий класс ученика (пустой, если ещё не выбран).
	Class user.Class

	// HasClass - выбрал ли ученик класс.
	HasClass bool
}

// Handle выполняет команду.
func (h *RegisterUserHandler) Handle(ctx context.Context, cmd RegisterUserCommand) (*RegisterUserResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("user", "Register", shared.ErrInvalidInput, "invalid command", err)
	}

	if err := h.users.Upsert(ctx, cmd.UserID, cmd.DisplayName); err != nil {
		return nil, err
	}

	class, ok, err := h.users.GetClass(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	return &RegisterUserResult{Class: class, HasClass: ok}, nil
}

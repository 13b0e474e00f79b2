package command

import (
	"context"
	"errors"

	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/shared"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHOOSE CLASS COMMAND
// Выбор или смена класса. Класс проверяется по каталогу до записи:
// произвольные callback-данные не должны попадать в базу.
// ══════════════════════════════════════════════════════════════════════════════

// ChooseClassCommand содержит выбор класса.
type ChooseClassCommand struct {
	// UserID - идентификатор Telegram.
	UserID user.ID

	// Class - выбранный класс.
	Class user.Class
}

// Validate проверяет корректность команды.
func (c *ChooseClassCommand) Validate() error {
	if !c.UserID.IsValid() {
		return errors.New("user_id is required")
	}
	if !c.Class.IsSet() {
		return errors.New("class is required")
	}
	return nil
}

// ChooseClassHandler обрабатывает ChooseClassCommand.
type ChooseClassHandler struct {
	users   user.Repository
	classes user.Classes
}

// NewChooseClassHandler создаёт обработчик.
func NewChooseClassHandler(users user.Repository, classes user.Classes) *ChooseClassHandler {
	return &ChooseClassHandler{users: users, classes: classes}
}

// Handle выполняет команду.
// Возвращает ErrInvalidGroup, если класса нет в каталоге.
func (h *ChooseClassHandler) Handle(ctx context.Context, cmd ChooseClassCommand) error {
	if err := cmd.Validate(); err != nil {
		return shared.WrapError("user", "ChooseClass", shared.ErrInvalidInput, "invalid command", err)
	}

	if !h.classes.Contains(cmd.Class) {
		return shared.ErrClassNotInCatalog
	}

	// Регистрация могла не произойти, если бот перезапустили: /start мог
	// попасть в старый процесс. Upsert здесь делает выбор класса самодостаточным.
	if err := h.users.Upsert(ctx, cmd.UserID, ""); err != nil {
		return err
	}

	return h.users.SetClass(ctx, cmd.UserID, cmd.Class)
}

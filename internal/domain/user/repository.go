package user

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// Контракт для работы с хранилищем учеников.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции над учениками.
type Repository interface {
	// Upsert регистрирует ученика или обновляет его имя.
	// Класс и момент первого контакта при повторном вызове не меняются.
	Upsert(ctx context.Context, id ID, displayName string) error

	// SetClass назначает или меняет класс ученика.
	// Возвращает ErrUserNotFound, если ученик не зарегистрирован.
	SetClass(ctx context.Context, id ID, class Class) error

	// GetClass возвращает класс ученика.
	// ok=false, если ученик неизвестен или ещё не выбрал класс.
	GetClass(ctx context.Context, id ID) (class Class, ok bool, err error)

	// Get возвращает ученика по ID.
	// Возвращает ErrUserNotFound, если ученик не найден.
	Get(ctx context.Context, id ID) (*User, error)

	// ListIDs возвращает идентификаторы учеников в заданной области.
	// Порядок стабилен (по возрастанию ID).
	ListIDs(ctx context.Context, scope Scope) ([]ID, error)

	// Count возвращает количество учеников в заданной области.
	// Для области "вся школа" считаются и ученики без класса.
	Count(ctx context.Context, scope Scope) (int, error)
}

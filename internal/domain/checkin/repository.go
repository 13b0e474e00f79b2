package checkin

import (
	"context"

	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// Контракт для работы с хранилищем отметок.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции над отметками и их агрегатами.
type Repository interface {
	// SetMark ставит (present=true) или снимает (present=false) отметку.
	// Идемпотентна в обе стороны: повторный вызов ничего не меняет.
	SetMark(ctx context.Context, id user.ID, day Day, habitKey string, present bool) error

	// DayMarks возвращает ключи привычек, отмеченных учеником за день.
	DayMarks(ctx context.Context, id user.ID, day Day) (DaySet, error)

	// UserStats возвращает агрегаты одного ученика.
	// Для неизвестного ученика или ученика без отметок - нули и пустой срез.
	UserStats(ctx context.Context, id user.ID) (*UserStats, error)

	// ScopeStats возвращает агрегаты по области одним запросом.
	// Для области "вся школа" Members считает всех учеников, включая
	// учеников без класса.
	ScopeStats(ctx context.Context, scope user.Scope) (*ScopeStats, error)

	// MostActiveClass возвращает класс с наибольшим числом отметок за
	// перечисленные дни. Ученики без класса не учитываются. Если отметок
	// нет - пустой класс и ноль. При равенстве побеждает класс,
	// встретившийся первым.
	MostActiveClass(ctx context.Context, days []Day) (user.Class, int, error)
}

// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"

	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/shared"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/user"
)

// RequireClass возвращает класс ученика или ErrNotGrouped.
// Общий страж для чек-ина и классовой статистики.
func RequireClass(ctx context.Context, users user.Repository, id user.ID) (user.Class, error) {
	class, ok, err := users.GetClass(ctx, id)
	if err != nil {
		return user.None, err
	}
	if !ok {
		return user.None, shared.ErrUserHasNoClass
	}
	return class, nil
}

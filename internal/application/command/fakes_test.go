package command

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/checkin"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/shared"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/user"
)

// fakeUserRepo - хранилище учеников в памяти для тестов.
type fakeUserRepo struct {
	users map[user.ID]*user.User

	upsertErr error
	setErr    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[user.ID]*user.User)}
}

func (r *fakeUserRepo) Upsert(ctx context.Context, id user.ID, displayName string) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	if existing, ok := r.users[id]; ok {
		if displayName != "" {
			existing.DisplayName = displayName
		}
		return nil
	}
	r.users[id] = &user.User{ID: id, DisplayName: displayName, JoinedAt: time.Now()}
	return nil
}

func (r *fakeUserRepo) SetClass(ctx context.Context, id user.ID, class user.Class) error {
	if r.setErr != nil {
		return r.setErr
	}
	u, ok := r.users[id]
	if !ok {
		return shared.ErrUserNotFound
	}
	u.Class = class
	return nil
}

func (r *fakeUserRepo) GetClass(ctx context.Context, id user.ID) (user.Class, bool, error) {
	u, ok := r.users[id]
	if !ok || !u.HasClass() {
		return user.None, false, nil
	}
	return u.Class, true, nil
}

func (r *fakeUserRepo) Get(ctx context.Context, id user.ID) (*user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, shared.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) ListIDs(ctx context.Context, scope user.Scope) ([]user.ID, error) {
	ids := make([]user.ID, 0, len(r.users))
	for id, u := range r.users {
		if class, limited := scope.Class(); limited && u.Class != class {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *fakeUserRepo) Count(ctx context.Context, scope user.Scope) (int, error) {
	ids, err := r.ListIDs(ctx, scope)
	return len(ids), err
}

// fakeCheckinRepo - хранилище отметок в памяти для тестов.
type fakeCheckinRepo struct {
	marks map[string]bool // "{user}|{day}|{habit}" -> present

	setErr error
	getErr error
}

func newFakeCheckinRepo() *fakeCheckinRepo {
	return &fakeCheckinRepo{marks: make(map[string]bool)}
}

func markKey(id user.ID, day checkin.Day, habitKey string) string {
	return fmt.Sprintf("%d|%s|%s", id, day, habitKey)
}

func (r *fakeCheckinRepo) SetMark(ctx context.Context, id user.ID, day checkin.Day, habitKey string, present bool) error {
	if r.setErr != nil {
		return r.setErr
	}
	if present {
		r.marks[markKey(id, day, habitKey)] = true
	} else {
		delete(r.marks, markKey(id, day, habitKey))
	}
	return nil
}

func (r *fakeCheckinRepo) DayMarks(ctx context.Context, id user.ID, day checkin.Day) (checkin.DaySet, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	set := make(checkin.DaySet)
	prefix := fmt.Sprintf("%d|%s|", id, day)
	for key := range r.marks {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			set[key[len(prefix):]] = struct{}{}
		}
	}
	return set, nil
}

func (r *fakeCheckinRepo) UserStats(ctx context.Context, id user.ID) (*checkin.UserStats, error) {
	return &checkin.UserStats{}, nil
}

func (r *fakeCheckinRepo) ScopeStats(ctx context.Context, scope user.Scope) (*checkin.ScopeStats, error) {
	return &checkin.ScopeStats{}, nil
}

func (r *fakeCheckinRepo) MostActiveClass(ctx context.Context, days []checkin.Day) (user.Class, int, error) {
	return user.None, 0, nil
}

// fakeInvalidator считает вызовы сброса кэша.
type fakeInvalidator struct {
	calls int
	err   error
}

func (f *fakeInvalidator) Invalidate(ctx context.Context) error {
	f.calls++
	return f.err
}

package query

import (
	"context"
	"errors"
	"time"

	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/checkin"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/user"
)

var errCacheMiss = errors.New("cache miss")

// fakeUserRepo отдаёт классы из заранее заполненной карты.
type fakeUserRepo struct {
	classes map[user.ID]user.Class
	counts  map[user.Class]int

	classErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		classes: make(map[user.ID]user.Class),
		counts:  make(map[user.Class]int),
	}
}

func (r *fakeUserRepo) Upsert(ctx context.Context, id user.ID, displayName string) error {
	return nil
}

func (r *fakeUserRepo) SetClass(ctx context.Context, id user.ID, class user.Class) error {
	r.classes[id] = class
	return nil
}

func (r *fakeUserRepo) GetClass(ctx context.Context, id user.ID) (user.Class, bool, error) {
	if r.classErr != nil {
		return user.None, false, r.classErr
	}
	class, ok := r.classes[id]
	if !ok || !class.IsSet() {
		return user.None, false, nil
	}
	return class, true, nil
}

func (r *fakeUserRepo) Get(ctx context.Context, id user.ID) (*user.User, error) {
	return &user.User{ID: id, Class: r.classes[id], JoinedAt: time.Now()}, nil
}

func (r *fakeUserRepo) ListIDs(ctx context.Context, scope user.Scope) ([]user.ID, error) {
	return nil, nil
}

func (r *fakeUserRepo) Count(ctx context.Context, scope user.Scope) (int, error) {
	if class, limited := scope.Class(); limited {
		return r.counts[class], nil
	}
	total := 0
	for _, n := range r.counts {
		total += n
	}
	return total, nil
}

// fakeCheckinRepo отдаёт заранее сконфигурированные агрегаты и
// записывает аргументы вызовов.
type fakeCheckinRepo struct {
	dayMarks   checkin.DaySet
	userStats  *checkin.UserStats
	scopeStats *checkin.ScopeStats

	mostActive      user.Class
	mostActiveCount int

	scopeStatsCalls int
	lastScope       user.Scope
	lastWindow      []checkin.Day

	err error
}

func newFakeCheckinRepo() *fakeCheckinRepo {
	return &fakeCheckinRepo{
		dayMarks:   make(checkin.DaySet),
		userStats:  &checkin.UserStats{},
		scopeStats: &checkin.ScopeStats{},
	}
}

func (r *fakeCheckinRepo) SetMark(ctx context.Context, id user.ID, day checkin.Day, habitKey string, present bool) error {
	return r.err
}

func (r *fakeCheckinRepo) DayMarks(ctx context.Context, id user.ID, day checkin.Day) (checkin.DaySet, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.dayMarks, nil
}

func (r *fakeCheckinRepo) UserStats(ctx context.Context, id user.ID) (*checkin.UserStats, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.userStats, nil
}

func (r *fakeCheckinRepo) ScopeStats(ctx context.Context, scope user.Scope) (*checkin.ScopeStats, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.scopeStatsCalls++
	r.lastScope = scope
	return r.scopeStats, nil
}

func (r *fakeCheckinRepo) MostActiveClass(ctx context.Context, days []checkin.Day) (user.Class, int, error) {
	if r.err != nil {
		return user.None, 0, r.err
	}
	r.lastWindow = days
	return r.mostActive, r.mostActiveCount, nil
}

// fakeStatsCache - кэш школьных агрегатов в памяти.
type fakeStatsCache struct {
	stats      *checkin.ScopeStats
	class      user.Class
	classCount int
	hasClass   bool

	missErr error // возвращается при пустом кэше
}

func newFakeStatsCache() *fakeStatsCache {
	return &fakeStatsCache{missErr: errCacheMiss}
}

func (c *fakeStatsCache) GetSchoolStats(ctx context.Context) (*checkin.ScopeStats, error) {
	if c.stats == nil {
		return nil, c.missErr
	}
	return c.stats, nil
}

func (c *fakeStatsCache) SetSchoolStats(ctx context.Context, stats *checkin.ScopeStats) error {
	c.stats = stats
	return nil
}

func (c *fakeStatsCache) GetMostActiveClass(ctx context.Context) (user.Class, int, error) {
	if !c.hasClass {
		return user.None, 0, c.missErr
	}
	return c.class, c.classCount, nil
}

func (c *fakeStatsCache) SetMostActiveClass(ctx context.Context, class user.Class, count int) error {
	c.class = class
	c.classCount = count
	c.hasClass = true
	return nil
}

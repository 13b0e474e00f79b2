package query

import (
	"context"
	"time"

	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/checkin"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCHOOL STATS QUERY
// Статистика всей школы плюс самый активный класс за последние 7 дней
// (включая сегодня). Агрегаты дорогие, поэтому закрываются кэшем с
// коротким TTL; без кэша запрос уходит прямо в Postgres.
// ══════════════════════════════════════════════════════════════════════════════

// mostActiveWindowDays - ширина окна "самый активный класс".
const mostActiveWindowDays = 7

// SchoolStatsCache - кэш школьных агрегатов. Любая ошибка чтения
// трактуется как промах.
type SchoolStatsCache interface {
	GetSchoolStats(ctx context.Context) (*checkin.ScopeStats, error)
	SetSchoolStats(ctx context.Context, stats *checkin.ScopeStats) error
	GetMostActiveClass(ctx context.Context) (user.Class, int, error)
	SetMostActiveClass(ctx context.Context, class user.Class, count int) error
}

// SchoolStatsResult - результат запроса.
type SchoolStatsResult struct {
	// Members - всего учеников, включая не выбравших класс.
	Members int

	// TotalMarks - всего отметок по школе.
	TotalMarks int

	// ActiveDays - количество разных дней с отметками.
	ActiveDays int

	// TopHabits - до трёх привычек по убыванию, без нулевых.
	TopHabits []checkin.HabitCount

	// MostActiveClass - класс с наибольшим числом отметок за окно
	// (пустой, если отметок в окне нет).
	MostActiveClass user.Class

	// MostActiveCount - отметок этого класса за окно.
	MostActiveCount int
}

// SchoolStatsHandler обрабатывает запрос школьной статистики.
type SchoolStatsHandler struct {
	checkins checkin.Repository
	cache    SchoolStatsCache // nil, если кэш отключён
	location *time.Location
	now      func() time.Time
}

// NewSchoolStatsHandler создаёт обработчик.
func NewSchoolStatsHandler(checkins checkin.Repository, cache SchoolStatsCache, location *time.Location) *SchoolStatsHandler {
	return &SchoolStatsHandler{
		checkins: checkins,
		cache:    cache,
		location: location,
		now:      time.Now,
	}
}

// Handle выполняет запрос.
func (h *SchoolStatsHandler) Handle(ctx context.Context) (*SchoolStatsResult, error) {
	stats, err := h.schoolStats(ctx)
	if err != nil {
		return nil, err
	}

	mostActive, mostCount, err := h.mostActiveClass(ctx)
	if err != nil {
		return nil, err
	}

	return &SchoolStatsResult{
		Members:         stats.Members,
		TotalMarks:      stats.TotalMarks,
		ActiveDays:      stats.ActiveDays,
		TopHabits:       TopHabits(stats.PerHabit, topHabitsLimit),
		MostActiveClass: mostActive,
		MostActiveCount: mostCount,
	}, nil
}

func (h *SchoolStatsHandler) schoolStats(ctx context.Context) (*checkin.ScopeStats, error) {
	if h.cache != nil {
		if stats, err := h.cache.GetSchoolStats(ctx); err == nil {
			return stats, nil
		}
	}

	stats, err := h.checkins.ScopeStats(ctx, user.ScopeAll())
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		_ = h.cache.SetSchoolStats(ctx, stats)
	}

	return stats, nil
}

func (h *SchoolStatsHandler) mostActiveClass(ctx context.Context) (user.Class, int, error) {
	if h.cache != nil {
		if class, count, err := h.cache.GetMostActiveClass(ctx); err == nil {
			return class, count, nil
		}
	}

	// Окно считается один раз от текущего момента в часовом поясе бота.
	window := checkin.Window(h.now().In(h.location), mostActiveWindowDays)

	class, count, err := h.checkins.MostActiveClass(ctx, window)
	if err != nil {
		return user.None, 0, err
	}

	if h.cache != nil {
		_ = h.cache.SetMostActiveClass(ctx, class, count)
	}

	return class, count, nil
}

// Package habit содержит каталог привычек.
// Каталог фиксирован на время работы процесса и передаётся через конфигурацию.
package habit

// Habit - одна отслеживаемая привычка.
type Habit struct {
	// Key - стабильный ключ, который хранится в базе и в callback-данных.
	Key string

	// Title - текст кнопки и строк статистики.
	Title string
}

// Catalog - упорядоченный каталог привычек с поиском по ключу.
type Catalog struct {
	habits []Habit
	byKey  map[string]Habit
}

// NewCatalog строит каталог, сохраняя порядок привычек.
func NewCatalog(habits []Habit) *Catalog {
	byKey := make(map[string]Habit, len(habits))
	for _, h := range habits {
		byKey[h.Key] = h
	}
	return &Catalog{habits: habits, byKey: byKey}
}

// Habits возвращает привычки в порядке показа.
func (c *Catalog) Habits() []Habit {
	return c.habits
}

// Contains проверяет, что ключ есть в каталоге.
func (c *Catalog) Contains(key string) bool {
	_, ok := c.byKey[key]
	return ok
}

// Title возвращает название привычки по ключу.
func (c *Catalog) Title(key string) (string, bool) {
	h, ok := c.byKey[key]
	return h.Title, ok
}

// Len возвращает размер каталога.
func (c *Catalog) Len() int {
	return len(c.habits)
}

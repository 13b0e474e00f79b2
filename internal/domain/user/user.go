// Package user содержит доменную модель ученика.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package user

import (
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// ID представляет уникальный идентификатор пользователя Telegram.
type ID int64

// IsValid проверяет, что ID положительный.
func (id ID) IsValid() bool {
	return id > 0
}

// Class представляет школьный класс (например, "6В").
// Пустое значение означает, что ученик ещё не выбрал класс.
type Class string

// None - отсутствие класса.
const None Class = ""

// IsSet проверяет, что класс выбран.
func (c Class) IsSet() bool {
	return c != None
}

// String возвращает строковое представление класса.
func (c Class) String() string {
	return string(c)
}

// Classes - каталог допустимых классов в порядке показа.
type Classes []Class

// NewClasses строит каталог из строковых имён.
func NewClasses(names []string) Classes {
	out := make(Classes, 0, len(names))
	for _, n := range names {
		out = append(out, Class(n))
	}
	return out
}

// Contains проверяет, что класс есть в каталоге.
func (cs Classes) Contains(c Class) bool {
	for _, known := range cs {
		if known == c {
			return true
		}
	}
	return false
}

// ══════════════════════════════════════════════════════════════════════════════
// SCOPE
// Типизированный фильтр "вся школа / один класс" для выборок и агрегатов.
// ══════════════════════════════════════════════════════════════════════════════

// Scope задаёт область выборки: вся школа или один класс.
// Нулевое значение означает всю школу.
type Scope struct {
	class *Class
}

// ScopeAll возвращает область "вся школа" (включая учеников без класса).
func ScopeAll() Scope {
	return Scope{}
}

// ScopeClass возвращает область, ограниченную одним классом.
func ScopeClass(c Class) Scope {
	return Scope{class: &c}
}

// Class возвращает класс области и признак, что область ограничена классом.
func (s Scope) Class() (Class, bool) {
	if s.class == nil {
		return None, false
	}
	return *s.class, true
}

// IsAll проверяет, что область - вся школа.
func (s Scope) IsAll() bool {
	return s.class == nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// User представляет ученика, написавшего боту хотя бы раз.
type User struct {
	// ID - идентификатор Telegram.
	ID ID

	// DisplayName - отображаемое имя из Telegram.
	DisplayName string

	// Class - выбранный класс (пустой, пока не выбран).
	Class Class

	// JoinedAt - момент первого контакта с ботом.
	JoinedAt time.Time
}

// HasClass проверяет, что ученик выбрал класс.
func (u *User) HasClass() bool {
	return u.Class.IsSet()
}

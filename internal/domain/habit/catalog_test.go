package habit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHabits() []Habit {
	return []Habit{
		{Key: "water_teeth", Title: "🚰 Выключаю воду при чистке зубов"},
		{Key: "lights_off", Title: "💡 Выключаю свет, выходя из комнаты"},
		{Key: "no_cup", Title: "🥤 Не пью из одноразового стаканчика"},
	}
}

func TestCatalog_PreservesOrder(t *testing.T) {
	catalog := NewCatalog(testHabits())

	habits := catalog.Habits()
	require.Len(t, habits, 3)
	assert.Equal(t, "water_teeth", habits[0].Key)
	assert.Equal(t, "lights_off", habits[1].Key)
	assert.Equal(t, "no_cup", habits[2].Key)
	assert.Equal(t, 3, catalog.Len())
}

func TestCatalog_Contains(t *testing.T) {
	catalog := NewCatalog(testHabits())

	assert.True(t, catalog.Contains("lights_off"))
	assert.False(t, catalog.Contains("smoking"))
	assert.False(t, catalog.Contains(""))
}

func TestCatalog_Title(t *testing.T) {
	catalog := NewCatalog(testHabits())

	title, ok := catalog.Title("lights_off")
	require.True(t, ok)
	assert.Equal(t, "💡 Выключаю свет, выходя из комнаты", title)

	_, ok = catalog.Title("unknown")
	assert.False(t, ok)
}

func TestCatalog_Empty(t *testing.T) {
	catalog := NewCatalog(nil)

	assert.Equal(t, 0, catalog.Len())
	assert.Empty(t, catalog.Habits())
	assert.False(t, catalog.Contains("lights_off"))
}

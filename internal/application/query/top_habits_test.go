package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/checkin"
)

func TestTopHabits(t *testing.T) {
	tests := []struct {
		name  string
		input []checkin.HabitCount
		want  []checkin.HabitCount
	}{
		{
			name:  "empty input",
			input: nil,
			want:  []checkin.HabitCount{},
		},
		{
			name: "fewer than limit",
			input: []checkin.HabitCount{
				{Key: "lights_off", Count: 5},
			},
			want: []checkin.HabitCount{
				{Key: "lights_off", Count: 5},
			},
		},
		{
			name: "truncated to limit",
			input: []checkin.HabitCount{
				{Key: "lights_off", Count: 9},
				{Key: "water_teeth", Count: 7},
				{Key: "no_cup", Count: 4},
				{Key: "no_bag", Count: 2},
			},
			want: []checkin.HabitCount{
				{Key: "lights_off", Count: 9},
				{Key: "water_teeth", Count: 7},
				{Key: "no_cup", Count: 4},
			},
		},
		{
			name: "zeros omitted",
			input: []checkin.HabitCount{
				{Key: "lights_off", Count: 3},
				{Key: "water_teeth", Count: 0},
				{Key: "no_cup", Count: 0},
			},
			want: []checkin.HabitCount{
				{Key: "lights_off", Count: 3},
			},
		},
		{
			name: "all zeros",
			input: []checkin.HabitCount{
				{Key: "lights_off", Count: 0},
				{Key: "water_teeth", Count: 0},
			},
			want: []checkin.HabitCount{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TopHabits(tt.input, 3))
		})
	}
}

package app

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Azamat-Raximov/telegrambot/internal/domain/schedule"
)

func TestRenderDay(t *testing.T) {
	lessons := schedule.DaySchedule{
		{Slot: "1", Subject: "Matematika", Lecturer: "Dotsent X", Room: "5-xona"},
		{Slot: "2", Subject: "Fizika", Lecturer: schedule.FieldUnknown, Room: schedule.FieldUnknown},
	}

	text := RenderDay("911-21", "Monday", lessons)

	assert.Contains(t, text, "911-21")
	assert.Contains(t, text, "Monday")
	assert.Contains(t, text, "Matematika")
	assert.Contains(t, text, "Dotsent X")
	assert.Contains(t, text, "5-xona")
	assert.Contains(t, text, schedule.FieldUnknown)
}

func TestRenderWeekOrdersDays(t *testing.T) {
	week := schedule.WeekSchedule{
		"Wednesday": {{Slot: "1", Subject: "Tarix", Room: "3-xona"}},
		"Monday":    {{Slot: "2", Subject: "Kimyo", Room: "1-xona"}},
	}

	text := RenderWeek("911-21", week)

	monday := strings.Index(text, "MONDAY")
	wednesday := strings.Index(text, "WEDNESDAY")
	assert.GreaterOrEqual(t, monday, 0)
	assert.Greater(t, wednesday, monday)
	assert.NotContains(t, text, "TUESDAY")
}

func TestRenderWeekEmpty(t *testing.T) {
	assert.Equal(t, "Haftalik dars jadvali topilmadi.", RenderWeek("911-21", schedule.WeekSchedule{}))
}

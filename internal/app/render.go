package app

import (
	"fmt"
	"strings"

	"github.com/Azamat-Raximov/telegrambot/internal/domain/schedule"
)

// RenderDay formats one day's lessons as a Markdown message.
func RenderDay(group, day string, lessons schedule.DaySchedule) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 *%s* guruhi uchun *%s* dars jadvali:\n\n", group, day)
	for _, l := range lessons {
		fmt.Fprintf(&b, "⏰ Para: %s\n", l.Slot)
		fmt.Fprintf(&b, "📚 *Fan:* %s\n", l.Subject)
		fmt.Fprintf(&b, "🧑‍🏫 *O'qituvchi:* %s\n", l.Lecturer)
		fmt.Fprintf(&b, "🚪 *Xona:* %s\n", l.Room)
		b.WriteString("--------------------\n")
	}
	return b.String()
}

// RenderNoLessons is the notice for a day the source has nothing for.
func RenderNoLessons(day string) string {
	return fmt.Sprintf("*%s* uchun dars jadvali topilmadi yoki bu kunga darslar yo'q.", day)
}

// RenderWeek formats the whole week, Monday through Saturday.
func RenderWeek(group string, week schedule.WeekSchedule) string {
	if len(week) == 0 {
		return "Haftalik dars jadvali topilmadi."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📅 *%s* guruhi uchun haftalik dars jadvali:\n\n", group)
	for _, day := range schedule.Weekdays {
		lessons := week[day]
		if len(lessons) == 0 {
			continue
		}
		fmt.Fprintf(&b, "--- *%s* ---\n", strings.ToUpper(day))
		for _, l := range lessons {
			fmt.Fprintf(&b, "⏰ %s, %s (%s)\n", l.Slot, l.Subject, l.Room)
		}
		b.WriteString("\n")
	}
	return b.String()
}

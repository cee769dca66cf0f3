package schedule

// FieldUnknown marks a lesson field the extraction heuristics could not
// resolve with confidence.
const FieldUnknown = "N/A"

// Lesson is one class in a group's weekly timetable.
type Lesson struct {
	Slot     string // period label from the table's first column, kept verbatim
	Subject  string
	Lecturer string
	Room     string
}

// DaySchedule lists one weekday's lessons in source-table order.
type DaySchedule []Lesson

// WeekSchedule maps a canonical English weekday name to its lessons.
// A key is present only when at least one lesson parsed for that day; an
// empty map is a valid "no data" result, distinct from a fetch failure.
type WeekSchedule map[string]DaySchedule

// Weekdays is the canonical ordering of the six academic days.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// DayNamesUz translates the timetable site's Uzbek weekday headers.
var DayNamesUz = map[string]string{
	"Dushanba":   "Monday",
	"Seshanba":   "Tuesday",
	"Chorshanba": "Wednesday",
	"Payshanba":  "Thursday",
	"Juma":       "Friday",
	"Shanba":     "Saturday",
}

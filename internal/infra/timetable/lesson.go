package timetable

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Azamat-Raximov/telegrambot/internal/domain/schedule"
)

// noClassMarker flags a cell fragment that is a placeholder, not a lesson.
const noClassMarker = "dars yo'q"

// Lines opening with a lesson-type label are never lecturer candidates.
var lessonTypePrefixes = []string{"amaliyot", "ma'ruza", "laboratoriya"}

var lineBreakRe = regexp.MustCompile(`(?i)<br\s*/?>`)

// ExtractLesson classifies one cell fragment's text lines into subject,
// lecturer and room. Source pages are free-form, so this is an ordered
// decision table, not a grammar:
//
//  1. subject: text of the first <b> element; the first line when there is
//     no <b> or its text is empty.
//  2. room: first line containing "xona" (case-insensitive); "N/A" if none.
//  3. lecturer: first line that is neither the subject line, nor the room
//     line, nor starts with a lesson-type label; "N/A" if none.
//
// Reordering these steps changes the result on ambiguous fragments, so the
// order stays explicit. Ties resolve to the first match.
//
// The second return value is false for fragments with no usable text and
// for "no class" placeholders.
func ExtractLesson(fragmentHTML, slot string) (schedule.Lesson, bool, error) {
	frag, err := goquery.NewDocumentFromReader(strings.NewReader(lineBreakRe.ReplaceAllString(fragmentHTML, "\n")))
	if err != nil {
		return schedule.Lesson{}, false, fmt.Errorf("parse lesson fragment: %w", err)
	}

	var lines []string
	for _, line := range strings.Split(frag.Text(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return schedule.Lesson{}, false, nil
	}
	if strings.Contains(strings.ToLower(strings.Join(lines, " ")), noClassMarker) {
		return schedule.Lesson{}, false, nil
	}

	subject := strings.TrimSpace(frag.Find("b").First().Text())
	if subject == "" {
		subject = lines[0]
	}

	room := schedule.FieldUnknown
	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), "xona") {
			room = line
			break
		}
	}

	lecturer := schedule.FieldUnknown
	for _, line := range lines {
		if line == subject || line == room || hasLessonTypePrefix(line) {
			continue
		}
		lecturer = line
		break
	}

	return schedule.Lesson{Slot: slot, Subject: subject, Lecturer: lecturer, Room: room}, true, nil
}

func hasLessonTypePrefix(line string) bool {
	lower := strings.ToLower(line)
	for _, prefix := range lessonTypePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

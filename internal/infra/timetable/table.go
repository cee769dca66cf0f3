package timetable

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/Azamat-Raximov/telegrambot/internal/domain/schedule"
)

// The site stacks several lessons in one cell separated by <hr>. Raw
// server markup is not normalized, so every serialization of the tag has
// to match.
var hrSplitRe = regexp.MustCompile(`(?i)<hr\s*/?>`)

// ParseWeekSchedule turns the rendered schedule table into a WeekSchedule.
// Fewer than two rows means the site answered with no data, which yields
// an empty schedule rather than an error. A cell fragment that fails to
// parse is logged and skipped; it never aborts the rest of the table.
func ParseWeekSchedule(page []byte, log *logrus.Entry) (schedule.WeekSchedule, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse timetable markup: %w", err)
	}

	week := make(schedule.WeekSchedule)
	rows := doc.Find("tr")
	if rows.Length() < 2 {
		return week, nil
	}

	// Header row: keep only columns whose <th> text is a known weekday.
	// The slot-label column and anything unrecognized drop out here.
	dayColumns := make(map[int]string)
	rows.First().Find("th").Each(func(i int, cell *goquery.Selection) {
		if day, ok := schedule.DayNamesUz[strings.TrimSpace(cell.Text())]; ok {
			dayColumns[i] = day
		}
	})

	rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() <= 1 {
			return
		}
		slot := strings.TrimSpace(cells.First().Text())

		for i, day := range dayColumns {
			if i >= cells.Length() {
				// Truncated row: the missing columns are skipped, not an error.
				continue
			}
			cellHTML, err := goquery.OuterHtml(cells.Eq(i))
			if err != nil {
				log.WithError(err).WithFields(logrus.Fields{"slot": slot, "day": day}).
					Warn("Could not serialize timetable cell, skipping")
				continue
			}
			for _, fragment := range hrSplitRe.Split(cellHTML, -1) {
				lesson, ok, err := ExtractLesson(fragment, slot)
				if err != nil {
					log.WithError(err).WithFields(logrus.Fields{"slot": slot, "day": day}).
						Warn("Unparsable lesson fragment skipped")
					continue
				}
				if ok {
					week[day] = append(week[day], lesson)
				}
			}
		}
	})
	return week, nil
}

package timetable

import (
	"testing"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogEntry() *logrus.Entry {
	log, _ := logrustest.NewNullLogger()
	return log.WithField("component", "test")
}

func TestParseWeekScheduleTwoDays(t *testing.T) {
	page := []byte(`
<table>
  <tr><th>Para</th><th>Dushanba</th><th>Seshanba</th></tr>
  <tr>
    <td>1</td>
    <td><b>Matematika</b><br/>Dotsent X<br/>5-xona</td>
    <td><b>Fizika</b><br/>A. Karimov<br/>3-xona</td>
  </tr>
</table>`)

	week, err := ParseWeekSchedule(page, testLogEntry())
	require.NoError(t, err)

	require.Len(t, week, 2)
	require.Len(t, week["Monday"], 1)
	require.Len(t, week["Tuesday"], 1)

	monday := week["Monday"][0]
	assert.Equal(t, "1", monday.Slot)
	assert.Equal(t, "Matematika", monday.Subject)
	assert.Equal(t, "Dotsent X", monday.Lecturer)
	assert.Equal(t, "5-xona", monday.Room)

	tuesday := week["Tuesday"][0]
	assert.Equal(t, "1", tuesday.Slot)
	assert.Equal(t, "Fizika", tuesday.Subject)
}

func TestParseWeekScheduleStackedLessonsSplitOnHr(t *testing.T) {
	page := []byte(`
<table>
  <tr><th>Para</th><th>Juma</th></tr>
  <tr>
    <td>3</td>
    <td><b>Ingliz tili</b><br/>C. Tosheva<br/>1-xona<hr/><b>Kimyo</b><br/>B. Olimov<br/>2-xona</td>
  </tr>
</table>`)

	week, err := ParseWeekSchedule(page, testLogEntry())
	require.NoError(t, err)

	require.Len(t, week["Friday"], 2)
	assert.Equal(t, "Ingliz tili", week["Friday"][0].Subject)
	assert.Equal(t, "Kimyo", week["Friday"][1].Subject)
	assert.Equal(t, "3", week["Friday"][1].Slot)
}

func TestParseWeekScheduleNoClassCellProducesNoLesson(t *testing.T) {
	page := []byte(`
<table>
  <tr><th>Para</th><th>Shanba</th></tr>
  <tr><td>1</td><td>Dars yo'q</td></tr>
</table>`)

	week, err := ParseWeekSchedule(page, testLogEntry())
	require.NoError(t, err)
	assert.Empty(t, week)
}

func TestParseWeekScheduleTruncatedRow(t *testing.T) {
	page := []byte(`
<table>
  <tr><th>Para</th><th>Dushanba</th><th>Seshanba</th></tr>
  <tr><td>1</td><td><b>Matematika</b><br/>5-xona</td></tr>
</table>`)

	week, err := ParseWeekSchedule(page, testLogEntry())
	require.NoError(t, err)

	// The Tuesday column is missing from the row, which only skips it.
	require.Len(t, week, 1)
	assert.Len(t, week["Monday"], 1)
}

func TestParseWeekScheduleUnknownHeadersDropped(t *testing.T) {
	page := []byte(`
<table>
  <tr><th>Para</th><th>Yakshanba</th><th>Chorshanba</th></tr>
  <tr><td>2</td><td>ignored day</td><td><b>Tarix</b></td></tr>
</table>`)

	week, err := ParseWeekSchedule(page, testLogEntry())
	require.NoError(t, err)

	require.Len(t, week, 1)
	assert.Equal(t, "Tarix", week["Wednesday"][0].Subject)
}

func TestParseWeekScheduleTooFewRowsMeansNoData(t *testing.T) {
	for _, page := range []string{
		`<p>no table here</p>`,
		`<table><tr><th>Para</th><th>Dushanba</th></tr></table>`,
	} {
		week, err := ParseWeekSchedule([]byte(page), testLogEntry())
		require.NoError(t, err, page)
		assert.Empty(t, week, page)
	}
}

func TestParseWeekScheduleEmptyFragmentsSkipped(t *testing.T) {
	page := []byte(`
<table>
  <tr><th>Para</th><th>Payshanba</th></tr>
  <tr><td>1</td><td><hr/><b>Biologiya</b><br/>4-xona<hr/></td></tr>
</table>`)

	week, err := ParseWeekSchedule(page, testLogEntry())
	require.NoError(t, err)

	require.Len(t, week["Thursday"], 1)
	assert.Equal(t, "Biologiya", week["Thursday"][0].Subject)
}

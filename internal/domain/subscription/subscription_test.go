package subscription

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNotifyTime(t *testing.T) {
	cases := []struct {
		in           string
		hour, minute int
	}{
		{"07:00", 7, 0},
		{"7:05", 7, 5},
		{"21:30", 21, 30},
		{"00:00", 0, 0},
		{"23:59", 23, 59},
	}
	for _, c := range cases {
		hour, minute, err := ParseNotifyTime(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.hour, hour, c.in)
		assert.Equal(t, c.minute, minute, c.in)
	}
}

func TestParseNotifyTimeRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "24:00", "12:60", "0700", "ab:cd", "12:5", "later"} {
		_, _, err := ParseNotifyTime(in)
		assert.ErrorIs(t, err, ErrInvalidNotifyTime, in)
	}
}

func TestComplete(t *testing.T) {
	assert.False(t, (&Subscription{}).Complete())
	assert.False(t, (&Subscription{FacultyID: "1"}).Complete())
	assert.True(t, (&Subscription{FacultyID: "1", Group: "911-21"}).Complete())
}

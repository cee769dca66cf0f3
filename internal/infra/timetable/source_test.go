package timetable

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tableFixture = `
<table>
  <tr><th>Para</th><th>Dushanba</th></tr>
  <tr><td>1</td><td><b>Matematika</b><br/>Dotsent X<br/>5-xona</td></tr>
</table>`

const indexFixture = `
<div class="col-md-4"><a class="btn" href="index.php?fak=1">Fizika fakulteti</a></div>
<div class="col-md-4"><a class="btn" href="index.php?fak=2">Tarix fakulteti</a></div>`

func TestWeekScheduleCachesPerKey(t *testing.T) {
	var fetches int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&fetches, 1)
		w.Write([]byte(tableFixture))
	}))
	defer srv.Close()

	source := NewSource(NewClient(srv.URL, time.Second), time.Minute, testLogEntry())

	for i := 0; i < 3; i++ {
		week, err := source.WeekSchedule(context.Background(), "1", "911-21")
		require.NoError(t, err)
		require.Len(t, week["Monday"], 1)
	}
	assert.Equal(t, int64(1), atomic.LoadInt64(&fetches))

	// A different group is a different key.
	_, err := source.WeekSchedule(context.Background(), "1", "101-23")
	require.NoError(t, err)
	assert.Equal(t, int64(2), atomic.LoadInt64(&fetches))
}

func TestWeekScheduleConcurrentCallersShareOneFetch(t *testing.T) {
	var fetches int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&fetches, 1)
		time.Sleep(50 * time.Millisecond) // widen the race window
		w.Write([]byte(tableFixture))
	}))
	defer srv.Close()

	source := NewSource(NewClient(srv.URL, time.Second), time.Minute, testLogEntry())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			week, err := source.WeekSchedule(context.Background(), "1", "911-21")
			assert.NoError(t, err)
			assert.Len(t, week["Monday"], 1)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1), atomic.LoadInt64(&fetches))
}

func TestWeekScheduleRetriesTransportErrors(t *testing.T) {
	var fetches int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&fetches, 1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(tableFixture))
	}))
	defer srv.Close()

	source := NewSource(NewClient(srv.URL, time.Second), time.Minute, testLogEntry())

	week, err := source.WeekSchedule(context.Background(), "1", "911-21")
	require.NoError(t, err)
	assert.Len(t, week["Monday"], 1)
	assert.Equal(t, int64(3), atomic.LoadInt64(&fetches))
}

func TestWeekScheduleGivesUpAfterBoundedRetries(t *testing.T) {
	var fetches int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&fetches, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	source := NewSource(NewClient(srv.URL, time.Second), time.Minute, testLogEntry())

	_, err := source.WeekSchedule(context.Background(), "1", "911-21")
	require.Error(t, err)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.StatusBadGateway, transportErr.StatusCode)
	assert.Equal(t, int64(1+fetchRetries), atomic.LoadInt64(&fetches))

	// Failed fetches are not cached.
	_, err = source.WeekSchedule(context.Background(), "1", "911-21")
	require.Error(t, err)
	assert.Equal(t, int64(2*(1+fetchRetries)), atomic.LoadInt64(&fetches))
}

func TestFacultiesCached(t *testing.T) {
	var fetches int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&fetches, 1)
		w.Write([]byte(indexFixture))
	}))
	defer srv.Close()

	source := NewSource(NewClient(srv.URL, time.Second), time.Minute, testLogEntry())

	for i := 0; i < 2; i++ {
		faculties, err := source.Faculties(context.Background())
		require.NoError(t, err)
		assert.Len(t, faculties, 2)
	}
	assert.Equal(t, int64(1), atomic.LoadInt64(&fetches))

	// RefreshFaculties always goes to the network.
	_, err := source.RefreshFaculties(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), atomic.LoadInt64(&fetches))
}

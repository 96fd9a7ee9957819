package schedule

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harunnryd/planpal/internal/calendar"
	planpalErrors "github.com/harunnryd/planpal/internal/errors"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func clock(hour, minute int) time.Time {
	return time.Date(2025, 7, 10, hour, minute, 0, 0, ist)
}

func TestFindConflict_OverlapRejected(t *testing.T) {
	events := []calendar.Event{{ID: "e1", Summary: "Client call", Start: clock(10, 0), End: clock(11, 0)}}

	got, ok := FindConflict(Window{Start: clock(10, 30), End: clock(11, 30)}, events)
	require.True(t, ok)
	assert.Equal(t, "e1", got.ID)
	assert.Equal(t, "Client call", got.Summary)
}

func TestFindConflict_TouchingAccepted(t *testing.T) {
	events := []calendar.Event{{ID: "e1", Summary: "Lunch", Start: clock(13, 0), End: clock(14, 0)}}

	_, ok := FindConflict(Window{Start: clock(14, 0), End: clock(15, 0)}, events)
	assert.False(t, ok)

	_, ok = FindConflict(Window{Start: clock(12, 0), End: clock(13, 0)}, events)
	assert.False(t, ok)
}

func TestFindConflict_SkipsAllDayAndBrokenEvents(t *testing.T) {
	events := []calendar.Event{
		{ID: "holiday", AllDay: true, Start: clock(0, 0), End: clock(0, 0).AddDate(0, 0, 1)},
		{ID: "no-end", Start: clock(9, 0)},
		{ID: "inverted", Start: clock(12, 0), End: clock(9, 0)},
	}
	_, ok := FindConflict(Window{Start: clock(9, 30), End: clock(10, 30)}, events)
	assert.False(t, ok)
}

func TestFindConflict_ReturnsFirstInOrder(t *testing.T) {
	events := []calendar.Event{
		{ID: "a", Start: clock(9, 0), End: clock(10, 0)},
		{ID: "b", Start: clock(9, 30), End: clock(11, 0)},
	}
	got, ok := FindConflict(Window{Start: clock(9, 45), End: clock(10, 15)}, events)
	require.True(t, ok)
	assert.Equal(t, "a", got.ID)
}

func TestFirstConflict_ComparesInstantsAcrossZones(t *testing.T) {
	// 10:00-11:00 IST is 04:30-05:30 UTC.
	existing := []Window{{Start: clock(10, 0), End: clock(11, 0)}}

	utcCandidate := Window{
		Start: time.Date(2025, 7, 10, 5, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 7, 10, 6, 0, 0, 0, time.UTC),
	}
	_, ok := FirstConflict(utcCandidate, existing)
	assert.True(t, ok)

	utcTouching := Window{
		Start: time.Date(2025, 7, 10, 5, 30, 0, 0, time.UTC),
		End:   time.Date(2025, 7, 10, 6, 30, 0, 0, time.UTC),
	}
	_, ok = FirstConflict(utcTouching, existing)
	assert.False(t, ok)
}

func TestFirstConflict_InvalidCandidate(t *testing.T) {
	existing := []Window{{Start: clock(10, 0), End: clock(11, 0)}}
	_, ok := FirstConflict(Window{Start: clock(10, 30), End: clock(10, 30)}, existing)
	assert.False(t, ok)
	_, ok = FirstConflict(Window{}, existing)
	assert.False(t, ok)
}

func TestFirstConflict_MatchesDisjointnessRule(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	base := clock(0, 0)
	slot := func() Window {
		start := base.Add(time.Duration(rng.Intn(48)) * 15 * time.Minute)
		return Window{Start: start, End: start.Add(time.Duration(1+rng.Intn(8)) * 15 * time.Minute)}
	}

	for i := 0; i < 2000; i++ {
		c, e := slot(), slot()
		disjoint := !c.End.After(e.Start) || !c.Start.Before(e.End)

		_, ok := FirstConflict(c, []Window{e})
		assert.Equal(t, !disjoint, ok, "candidate %v existing %v", c, e)

		_, reverse := FirstConflict(e, []Window{c})
		assert.Equal(t, ok, reverse)
	}
}

func TestWindowValidate(t *testing.T) {
	assert.NoError(t, Window{Start: clock(9, 0), End: clock(10, 0)}.Validate())
	assert.ErrorIs(t, Window{Start: clock(10, 0), End: clock(9, 0)}.Validate(), planpalErrors.ErrInvalidInput)
	assert.ErrorIs(t, Window{Start: clock(10, 0), End: clock(10, 0)}.Validate(), planpalErrors.ErrInvalidInput)
	assert.ErrorIs(t, Window{End: clock(10, 0)}.Validate(), planpalErrors.ErrInvalidInput)
	assert.Equal(t, time.Hour, Window{Start: clock(9, 0), End: clock(10, 0)}.Duration())
}

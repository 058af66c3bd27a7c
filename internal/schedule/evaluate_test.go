package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tazhibayda/linkbio/internal/schedule"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func ts(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

func TestEvaluate_NoWindowFollowsFlag(t *testing.T) {
	for _, active := range []bool{true, false} {
		st := schedule.Evaluate(active, nil, nil, now)
		assert.Equal(t, active, st.Visible)
		assert.False(t, st.Scheduled)
		assert.False(t, st.Expired)
	}
}

func TestEvaluate_FutureScheduleHidesRegardlessOfFlag(t *testing.T) {
	for _, active := range []bool{true, false} {
		st := schedule.Evaluate(active, ts(time.Hour), nil, now)
		assert.True(t, st.Scheduled)
		assert.False(t, st.Visible)
	}
}

func TestEvaluate_PastExpiryHidesRegardlessOfFlagAndSchedule(t *testing.T) {
	for _, scheduledAt := range []*time.Time{nil, ts(-2 * time.Hour), ts(2 * time.Hour)} {
		st := schedule.Evaluate(true, scheduledAt, ts(-time.Hour), now)
		assert.True(t, st.Expired)
		assert.False(t, st.Visible)
	}
}

func TestEvaluate_OpenWindowIsVisible(t *testing.T) {
	st := schedule.Evaluate(true, ts(-time.Hour), ts(time.Hour), now)
	assert.False(t, st.Scheduled)
	assert.False(t, st.Expired)
	assert.True(t, st.Visible)
}

func TestEvaluate_ExpiryBoundaryIsInclusive(t *testing.T) {
	// expires_at <= now counts as expired
	at := now
	st := schedule.Evaluate(true, nil, &at, now)
	assert.True(t, st.Expired)
	assert.False(t, st.Visible)
}

func TestEvaluate_ScheduleBoundaryActivates(t *testing.T) {
	// scheduled_at == now is no longer "in the future"
	at := now
	st := schedule.Evaluate(true, &at, nil, now)
	assert.False(t, st.Scheduled)
	assert.True(t, st.Visible)
}

func TestEvaluate_EqualBoundsExpireImmediately(t *testing.T) {
	at := now.Add(-time.Second)
	st := schedule.Evaluate(true, &at, &at, now)
	assert.False(t, st.Scheduled)
	assert.True(t, st.Expired)
	assert.False(t, st.Visible)
}

func TestEvaluate_FutureScheduleReportedNotExpired(t *testing.T) {
	st := schedule.Evaluate(false, ts(24*365*5*time.Hour), nil, now)
	assert.True(t, st.Scheduled)
	assert.False(t, st.Expired)
	assert.False(t, st.Visible)
}

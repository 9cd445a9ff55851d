package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimer_StopRecordsDuration(t *testing.T) {
	timer := NewTimer()
	time.Sleep(5 * time.Millisecond)
	d := timer.Stop()
	assert.GreaterOrEqual(t, d, 5*time.Millisecond)
	assert.Equal(t, d, timer.Duration())
}

func TestNamedTimer_String(t *testing.T) {
	timer := NewNamedTimer("masks")
	timer.Stop()
	assert.Equal(t, "masks", timer.Name())
	assert.Contains(t, timer.String(), "masks:")
}

func TestStageTimings_RecordAndOrder(t *testing.T) {
	st := NewStageTimings()
	st.Record("stabilize", time.Millisecond)
	st.Record("masks", 2*time.Millisecond)
	st.Record("stabilize", time.Millisecond)

	assert.Equal(t, []string{"stabilize", "masks"}, st.Stages())
	assert.Equal(t, 2*time.Millisecond, st.Get("stabilize"))
	assert.Equal(t, 4*time.Millisecond, st.Total())
}

func TestStageTimings_Time(t *testing.T) {
	st := NewStageTimings()
	ran := false
	st.Time("composite", func() {
		ran = true
		time.Sleep(time.Millisecond)
	})
	assert.True(t, ran)
	assert.Greater(t, st.Get("composite"), time.Duration(0))
}

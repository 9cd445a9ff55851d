package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker_StartsNoTrack(t *testing.T) {
	tr := newTracker(3)
	assert.Equal(t, StateNoTrack, tr.State())
}

func TestTracker_SuccessEntersTracking(t *testing.T) {
	tr := newTracker(3)
	tr.Success()
	assert.Equal(t, StateTracking, tr.State())
}

func TestTracker_NoFaceWithoutPoseDropsToNoTrack(t *testing.T) {
	tr := newTracker(3)
	tr.Success()
	tr.NoFace(false)
	assert.Equal(t, StateNoTrack, tr.State())
}

func TestTracker_NoFaceWithHeldPoseStaysTracking(t *testing.T) {
	tr := newTracker(3)
	tr.Success()
	tr.NoFace(true)
	assert.Equal(t, StateTracking, tr.State())
}

func TestTracker_ConsecutiveFailuresLatchDegraded(t *testing.T) {
	tr := newTracker(3)
	tr.Success()
	tr.Fail()
	tr.Fail()
	assert.Equal(t, StateTracking, tr.State(), "below threshold stays tracking")
	tr.Fail()
	assert.Equal(t, StateDegraded, tr.State())
}

func TestTracker_SuccessClearsFailureCount(t *testing.T) {
	tr := newTracker(3)
	tr.Fail()
	tr.Fail()
	tr.Success()
	tr.Fail()
	tr.Fail()
	assert.NotEqual(t, StateDegraded, tr.State(), "failures must be consecutive")
	tr.Fail()
	assert.Equal(t, StateDegraded, tr.State())
}

func TestTracker_NoFaceClearsFailureCount(t *testing.T) {
	tr := newTracker(3)
	tr.Fail()
	tr.Fail()
	tr.NoFace(false)
	tr.Fail()
	assert.NotEqual(t, StateDegraded, tr.State())
}

func TestTracker_DegradedLatches(t *testing.T) {
	tr := newTracker(2)
	tr.Fail()
	tr.Fail()
	assert.Equal(t, StateDegraded, tr.State())

	// neither a successful detection nor a clean no-face result recovers
	tr.Success()
	assert.Equal(t, StateDegraded, tr.State())
	tr.NoFace(false)
	assert.Equal(t, StateDegraded, tr.State())
}

func TestTracker_ResetIsTheOnlyExitFromDegraded(t *testing.T) {
	tr := newTracker(1)
	tr.Fail()
	assert.Equal(t, StateDegraded, tr.State())

	tr.Reset()
	assert.Equal(t, StateNoTrack, tr.State())
	tr.Success()
	assert.Equal(t, StateTracking, tr.State())
}

func TestNewTracker_NonPositiveThresholdUsesDefault(t *testing.T) {
	tr := newTracker(0)
	for i := 0; i < DefaultFailureThreshold-1; i++ {
		tr.Fail()
	}
	assert.NotEqual(t, StateDegraded, tr.State())
	tr.Fail()
	assert.Equal(t, StateDegraded, tr.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "no_track", StateNoTrack.String())
	assert.Equal(t, "tracking", StateTracking.String())
	assert.Equal(t, "degraded", StateDegraded.String())
	assert.Equal(t, "unknown", State(99).String())
}

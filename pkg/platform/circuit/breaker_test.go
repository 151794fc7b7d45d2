package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBreaker(t *testing.T) {
	t.Run("opens after consecutive failures", func(t *testing.T) {
		b := New("kafka", WithFailureThreshold(2))
		assert.Equal(t, NoChange, b.RecordFailure())
		assert.Equal(t, Opened, b.RecordFailure())
		assert.True(t, b.IsOpen())
		assert.Equal(t, NoChange, b.RecordFailure(), "already open")
	})

	t.Run("a success resets the failure run", func(t *testing.T) {
		b := New("kafka", WithFailureThreshold(2))
		b.RecordFailure()
		b.RecordSuccess()
		assert.Equal(t, NoChange, b.RecordFailure())
		assert.False(t, b.IsOpen())
	})

	t.Run("closes after consecutive successes", func(t *testing.T) {
		b := New("kafka", WithFailureThreshold(1), WithSuccessThreshold(2))
		b.RecordFailure()
		assert.Equal(t, NoChange, b.RecordSuccess())
		b.RecordFailure()
		assert.Equal(t, NoChange, b.RecordSuccess(), "failure restarted the success run")
		assert.Equal(t, Closed, b.RecordSuccess())
		assert.Equal(t, StateClosed, b.State())
		assert.Equal(t, "closed", b.State().String())
	})
}

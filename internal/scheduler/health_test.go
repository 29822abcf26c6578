package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth_SetHealthy(t *testing.T) {
	h := NewHealth()

	h.SetHealthy("test", "all good")

	status, ok := h.Status("test")
	require.True(t, ok)
	assert.True(t, status.Healthy)
	assert.Equal(t, "all good", status.Message)
	assert.Empty(t, status.LastError)
	assert.WithinDuration(t, time.Now(), status.LastCheck, time.Second)
	assert.WithinDuration(t, time.Now(), status.LastSuccess, time.Second)
}

func TestHealth_SetUnhealthy_KeepsLastSuccess(t *testing.T) {
	h := NewHealth()
	clock := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return clock }

	h.SetHealthy("test", "ok")
	clock = clock.Add(time.Minute)
	h.SetUnhealthy("test", assert.AnError)

	status, ok := h.Status("test")
	require.True(t, ok)
	assert.False(t, status.Healthy)
	assert.Equal(t, assert.AnError.Error(), status.LastError)
	assert.Equal(t, clock, status.LastCheck)
	assert.Equal(t, clock.Add(-time.Minute), status.LastSuccess)
}

func TestHealth_Status_NotFound(t *testing.T) {
	h := NewHealth()

	_, ok := h.Status("nonexistent")
	assert.False(t, ok)
}

func TestHealth_Statuses(t *testing.T) {
	h := NewHealth()

	h.SetHealthy("comp1", "ok")
	h.SetHealthy("comp2", "ok")
	h.SetUnhealthy("comp3", assert.AnError)

	statuses := h.Statuses()
	assert.Len(t, statuses, 3)
	assert.True(t, statuses["comp1"].Healthy)
	assert.True(t, statuses["comp2"].Healthy)
	assert.False(t, statuses["comp3"].Healthy)
}

func TestHealth_IsOverallHealthy(t *testing.T) {
	t.Run("all healthy", func(t *testing.T) {
		h := NewHealth()
		h.SetHealthy("comp1", "ok")
		h.SetHealthy("comp2", "ok")

		assert.True(t, h.IsOverallHealthy())
	})

	t.Run("one unhealthy", func(t *testing.T) {
		h := NewHealth()
		h.SetHealthy("comp1", "ok")
		h.SetUnhealthy("comp2", assert.AnError)

		assert.False(t, h.IsOverallHealthy())
	})

	t.Run("empty", func(t *testing.T) {
		h := NewHealth()
		assert.True(t, h.IsOverallHealthy())
	})
}

func TestHealth_Ready(t *testing.T) {
	h := NewHealth()
	assert.False(t, h.Ready())

	h.SetReady(true)
	assert.True(t, h.Ready())
}

package stealth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHumanDelayProfiles(t *testing.T) {
	tests := []struct {
		profile  DelayProfile
		min, max time.Duration
	}{
		{ProfileCautious, 2 * time.Second, 5 * time.Second},
		{ProfileNormal, 500 * time.Millisecond, 2 * time.Second},
		{ProfileAggressive, 200 * time.Millisecond, 800 * time.Millisecond},
		{DelayProfile("bogus"), 500 * time.Millisecond, 2 * time.Second},
	}

	for _, tt := range tests {
		h := NewHumanDelay(tt.profile)
		assert.Equal(t, tt.min, h.MinDelay, "profile %s", tt.profile)
		assert.Equal(t, tt.max, h.MaxDelay, "profile %s", tt.profile)
		for range 100 {
			d := h.NextDelay()
			assert.GreaterOrEqual(t, d, tt.min)
			assert.Less(t, d, tt.max)
		}
	}
}

func TestHumanDelayDegenerateRange(t *testing.T) {
	h := &HumanDelay{MinDelay: time.Second, MaxDelay: time.Second}
	assert.Equal(t, time.Second, h.NextDelay())
}

func TestHumanDelayWaitCancelled(t *testing.T) {
	h := NewHumanDelay(ProfileCautious)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, h.Wait(ctx), context.Canceled)
}

func TestHumanDelayWaitCompletes(t *testing.T) {
	h := &HumanDelay{MinDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	assert.NoError(t, h.Wait(context.Background()))
}

package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aelexs/tokenkit/internal/domain"
	"github.com/aelexs/tokenkit/internal/domain/domaintest"
)

func TestRealClock(t *testing.T) {
	clock := domain.RealClock{}
	before := time.Now()
	got := clock.Now()
	after := time.Now()

	assert.False(t, got.Before(before), "clock.Now() should not be before reference time")
	assert.False(t, got.After(after), "clock.Now() should not be after reference time")
}

func TestFakeClock(t *testing.T) {
	fixedTime := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	t.Run("returns fixed time", func(t *testing.T) {
		clock := domaintest.NewFakeClock(fixedTime)
		assert.True(t, clock.Now().Equal(fixedTime))
	})

	t.Run("advance moves time forward", func(t *testing.T) {
		clock := domaintest.NewFakeClock(fixedTime)
		clock.Advance(90 * time.Second)

		assert.True(t, clock.Now().Equal(fixedTime.Add(90*time.Second)))
	})

	t.Run("set changes time", func(t *testing.T) {
		clock := domaintest.NewFakeClock(fixedTime)
		newTime := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
		clock.Set(newTime)

		assert.True(t, clock.Now().Equal(newTime))
	})
}

func TestFromEpochSeconds(t *testing.T) {
	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		sec  float64
		want time.Time
	}{
		{"whole seconds", float64(base.Unix()), base},
		{"tenths survive", float64(base.Unix()) + 100.9, base.Add(100*time.Second + 900*time.Millisecond)},
		{"milliseconds survive", float64(base.Unix()) + 0.25, base.Add(250 * time.Millisecond)},
		{"before epoch", -1.5, time.Unix(-2, 500_000_000).UTC()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.FromEpochSeconds(tt.sec)

			assert.WithinDuration(t, tt.want, got, time.Microsecond)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inference-sim/devsim/sim/trace"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"minimal", NewConfig(1), false},
		{"seeded and traced", NewConfig(10).WithSeed(3).WithTrace(trace.TraceLevelEmissions), false},
		{"zero cascade limit", NewConfig(0), true},
		{"negative cascade limit", NewConfig(-5), true},
		{"unknown trace level", NewConfig(10).WithTrace("loud"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestConfig_WithSeedCopies(t *testing.T) {
	base := NewConfig(10)
	seeded := base.WithSeed(9)
	assert.Nil(t, base.Seed)
	if assert.NotNil(t, seeded.Seed) {
		assert.Equal(t, int64(9), *seeded.Seed)
	}
}

package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTime_Ordering(t *testing.T) {
	a, b := TimeOf(1), TimeOf(2)
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.True(t, a.Equal(TimeOf(1)))
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 0, b.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
}

func TestTime_AddSub(t *testing.T) {
	start := TimeOf(10)
	later := start.Add(DurationOf(5))
	assert.Equal(t, 15.0, later.Units())
	assert.Equal(t, DurationOf(5), later.Sub(start))
	assert.True(t, start.Add(ZeroDuration).Equal(start))
}

func TestTrigger_Resolve(t *testing.T) {
	now := TimeOf(4)
	tests := []struct {
		name    string
		trigger Trigger
		want    float64
		wantErr bool
	}{
		{"immediately", Immediately(), 4, false},
		{"after zero", After(ZeroDuration), 4, false},
		{"after positive", After(DurationOf(2)), 6, false},
		{"at future", At(TimeOf(9)), 9, false},
		{"at now", At(TimeOf(4)), 4, false},
		{"at past", At(TimeOf(3)), 0, true},
		{"negative delay", After(DurationOf(-1)), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.trigger.Resolve(now)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidSchedule))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Units())
		})
	}
}

func TestTrigger_String(t *testing.T) {
	assert.Equal(t, "immediately", Immediately().String())
	assert.Contains(t, After(DurationOf(2)).String(), "after(")
	assert.Contains(t, At(TimeOf(3)).String(), "at(")
}

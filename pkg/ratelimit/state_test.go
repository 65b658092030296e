package ratelimit

import (
	"testing"
	"time"
)

func TestState_Exhausted(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		state State
		want  bool
	}{
		{
			name:  "quota left",
			state: State{Remaining: 10, ResetAt: now.Add(30 * time.Second)},
			want:  false,
		},
		{
			name:  "no quota before reset",
			state: State{Remaining: 0, ResetAt: now.Add(30 * time.Second)},
			want:  true,
		},
		{
			name:  "no quota after reset",
			state: State{Remaining: 0, ResetAt: now.Add(-time.Second)},
			want:  false,
		},
		{
			name:  "negative remaining",
			state: State{Remaining: -1, ResetAt: now.Add(time.Second)},
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Exhausted(now); got != tt.want {
				t.Errorf("Exhausted() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestState_TimeUntilReset(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	future := State{ResetAt: now.Add(42 * time.Second)}
	if got := future.TimeUntilReset(now); got != 42*time.Second {
		t.Errorf("TimeUntilReset() = %v, want 42s", got)
	}

	past := State{ResetAt: now.Add(-time.Minute)}
	if got := past.TimeUntilReset(now); got != 0 {
		t.Errorf("TimeUntilReset() = %v, want 0", got)
	}
}

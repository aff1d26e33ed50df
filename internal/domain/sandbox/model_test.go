package sandbox

import (
	"testing"
	"time"
)

func TestStatusUsable(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusDraft, true},
		{StatusTested, true},
		{StatusPromoted, false},
		{StatusExpired, false},
	}

	for _, tt := range tests {
		if got := tt.status.Usable(); got != tt.want {
			t.Errorf("Usable(%s) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusDraft, StatusTested, true},
		{StatusDraft, StatusExpired, true},
		{StatusDraft, StatusPromoted, false},
		{StatusTested, StatusPromoted, true},
		{StatusTested, StatusExpired, true},
		{StatusTested, StatusDraft, false},
		{StatusPromoted, StatusExpired, false},
		{StatusExpired, StatusTested, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
			t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
		}
	}
}

func TestStatusIsTerminal(t *testing.T) {
	if StatusDraft.IsTerminal() || StatusTested.IsTerminal() {
		t.Error("non-terminal statuses reported as terminal")
	}
	if !StatusPromoted.IsTerminal() || !StatusExpired.IsTerminal() {
		t.Error("terminal statuses not reported as terminal")
	}
}

func TestSandboxExpired(t *testing.T) {
	now := time.Now().UTC()
	sb := &Sandbox{ExpiresAt: now.Add(30 * time.Minute)}

	if sb.Expired(now) {
		t.Error("sandbox expired before TTL elapsed")
	}
	if !sb.Expired(now.Add(31 * time.Minute)) {
		t.Error("sandbox not expired after TTL elapsed")
	}
}

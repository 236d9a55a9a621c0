package article

import (
	"errors"
	"testing"
	"time"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    Status
		wantErr bool
	}{
		{"pending", StatusPending, false},
		{"Approved", StatusApproved, false},
		{" rejected ", StatusRejected, false},
		{"deleted", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStatus(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStatus(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseStatus(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusPending, false},
		{StatusApproved, StatusRejected, false},
		{StatusApproved, StatusPending, false},
		{StatusRejected, StatusApproved, false},
		{StatusRejected, StatusPending, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("%s.CanTransition(%s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestModerate(t *testing.T) {
	now := time.Date(2025, 2, 14, 10, 0, 0, 0, time.UTC)
	a := &Article{Title: "T", Status: StatusPending}

	err := Moderate(a, Decision{Status: StatusApproved, ModeratorID: "mod-1", Notes: " looks good "}, now)
	if err != nil {
		t.Fatalf("Moderate() error = %v", err)
	}

	if a.Status != StatusApproved {
		t.Errorf("Status = %q, want approved", a.Status)
	}
	if a.ModeratedBy != "mod-1" {
		t.Errorf("ModeratedBy = %q, want mod-1", a.ModeratedBy)
	}
	if a.ModerationNotes != "looks good" {
		t.Errorf("ModerationNotes = %q, want %q", a.ModerationNotes, "looks good")
	}
	if a.ModeratedAt == nil || !a.ModeratedAt.Equal(now) {
		t.Errorf("ModeratedAt = %v, want %v", a.ModeratedAt, now)
	}
	if !a.UpdatedAt.Equal(now) {
		t.Errorf("UpdatedAt = %v, want %v", a.UpdatedAt, now)
	}
}

func TestModerate_TerminalStates(t *testing.T) {
	for _, from := range []Status{StatusApproved, StatusRejected} {
		a := &Article{Status: from}
		err := Moderate(a, Decision{Status: StatusRejected, ModeratorID: "m"}, time.Now())
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Moderate(from %s) error = %v, want ErrInvalidTransition", from, err)
		}
		if a.Status != from {
			t.Errorf("Status = %q, want unchanged %q", a.Status, from)
		}
	}
}

func TestModerate_InvalidDecision(t *testing.T) {
	tests := []struct {
		name     string
		decision Decision
	}{
		{"back to pending", Decision{Status: StatusPending, ModeratorID: "m"}},
		{"unknown status", Decision{Status: "archived", ModeratorID: "m"}},
		{"no moderator", Decision{Status: StatusApproved}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Article{Status: StatusPending}
			err := Moderate(a, tt.decision, time.Now())
			if !IsValidationError(err) {
				t.Errorf("Moderate() error = %v, want validation error", err)
			}
			if a.Status != StatusPending || a.ModeratedAt != nil {
				t.Errorf("article modified on invalid decision: %+v", a)
			}
		})
	}
}

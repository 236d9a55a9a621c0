package article

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status is the moderation state of an article.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ErrInvalidTransition is returned when a moderation decision would move an
// article out of a terminal state or back to pending.
var ErrInvalidTransition = errors.New("invalid status transition")

// ValidStatuses lists the accepted status values.
var ValidStatuses = []Status{StatusPending, StatusApproved, StatusRejected}

// ParseStatus converts a string into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range ValidStatuses {
		if st == valid {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid status: %q (valid: %v)", s, ValidStatuses)
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransition reports whether s may move to next.
// Only pending articles can be decided, and nothing returns to pending.
func (s Status) CanTransition(next Status) bool {
	return s == StatusPending && next.IsTerminal()
}

// Decision is a moderator's verdict on a pending article.
type Decision struct {
	Status      Status `json:"status"`
	ModeratorID string `json:"moderator_id"`
	Notes       string `json:"notes,omitempty"`
}

// Validate checks that the decision is complete.
func (d Decision) Validate() error {
	verr := &ValidationError{}
	if !d.Status.IsTerminal() {
		verr.Invalid = append(verr.Invalid, fmt.Sprintf("status must be %s or %s", StatusApproved, StatusRejected))
	}
	if strings.TrimSpace(d.ModeratorID) == "" {
		verr.Missing = append(verr.Missing, "moderator_id")
	}
	if verr.empty() {
		return nil
	}
	return verr
}

// Moderate applies a decision to a, stamping the moderation fields.
// It returns ErrInvalidTransition if a is not pending.
func Moderate(a *Article, d Decision, now time.Time) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if !a.Status.CanTransition(d.Status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, d.Status)
	}

	a.Status = d.Status
	a.ModeratedBy = strings.TrimSpace(d.ModeratorID)
	if notes := strings.TrimSpace(d.Notes); notes != "" {
		a.ModerationNotes = notes
	}
	at := now.UTC()
	a.ModeratedAt = &at
	a.UpdatedAt = at
	return nil
}

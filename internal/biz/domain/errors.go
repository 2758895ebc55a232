package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidMeridiem signals a 12-hour suffix other than am or pm.
var ErrInvalidMeridiem = errors.New("time doesn't end in am or pm")

// ErrWebhookUnusable signals that the platform returned a webhook without a
// token, so the bot cannot execute it. Fatal for the current rewrite only;
// a later attempt creates a fresh webhook.
var ErrWebhookUnusable = errors.New("webhook has no usable token")

// ErrTimedOut signals that a confirmation wait expired with no matching
// reaction.
var ErrTimedOut = errors.New("confirmation wait timed out")

// MissingTimezoneError reports a user with no stored timezone.
type MissingTimezoneError struct {
	UserID string
}

func (e *MissingTimezoneError) Error() string {
	return fmt.Sprintf("user %s has no timezone set", e.UserID)
}

// BadTimezoneError reports a timezone name the IANA database doesn't know.
type BadTimezoneError struct {
	Name string
}

func (e *BadTimezoneError) Error() string {
	return fmt.Sprintf("unknown timezone %q", e.Name)
}

// InvalidLocalTimeError reports a wall-clock time that doesn't map to
// exactly one instant in the zone on today's date: skipped by a
// spring-forward gap or repeated by a fall-back. Reported, never silently
// resolved to one of the candidates.
type InvalidLocalTimeError struct {
	Zone   string
	Hour   int
	Minute int
}

func (e *InvalidLocalTimeError) Error() string {
	return fmt.Sprintf("%02d:%02d is skipped or repeated in %s today", e.Hour, e.Minute, e.Zone)
}

// ContentLossError wraps a repost failure that happened after the original
// message was already deleted, so the content may now be gone from the
// channel. Escalated above ordinary failures.
type ContentLossError struct {
	Err error
}

func (e *ContentLossError) Error() string {
	return fmt.Sprintf("repost failed after delete, content may be lost: %v", e.Err)
}

func (e *ContentLossError) Unwrap() error { return e.Err }

package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/hourglass-bot/hourglass/internal/biz/domain"
	"github.com/hourglass-bot/hourglass/internal/biz/repo"
)

// TimezoneUsecase resolves users' stored timezones into absolute instants.
type TimezoneUsecase struct {
	timezones repo.TimezoneRepo
	now       func() time.Time
}

// NewTimezoneUsecase creates a timezone usecase. "Today" comes from
// time.Now unless overridden with WithClock.
func NewTimezoneUsecase(timezones repo.TimezoneRepo) *TimezoneUsecase {
	return &TimezoneUsecase{timezones: timezones, now: time.Now}
}

// WithClock overrides the usecase's clock.
func (uc *TimezoneUsecase) WithClock(now func() time.Time) *TimezoneUsecase {
	uc.now = now
	return uc
}

// Location returns the user's stored timezone location, or a
// MissingTimezoneError when none is stored. Callers handling a message
// resolve the location once and reuse it for every token.
func (uc *TimezoneUsecase) Location(ctx context.Context, userID string) (*time.Location, error) {
	name, err := uc.timezones.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get timezone: %w", err)
	}
	if name == "" {
		return nil, &domain.MissingTimezoneError{UserID: userID}
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load location %q: %w", name, err)
	}
	return loc, nil
}

// dstShifts are the offset changes real zones use at a transition.
var dstShifts = []time.Duration{-time.Hour, time.Hour, -30 * time.Minute, 30 * time.Minute}

// Materialize combines today's date in loc with a wall-clock hour and
// minute. A wall time that doesn't map to exactly one instant, skipped by a
// spring-forward gap or repeated by a fall-back, is reported as an
// InvalidLocalTimeError rather than resolved arbitrarily.
func (uc *TimezoneUsecase) Materialize(loc *time.Location, hour, minute int) (time.Time, error) {
	now := uc.now().In(loc)
	t := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, loc)
	if t.Hour() != hour || t.Minute() != minute {
		return time.Time{}, &domain.InvalidLocalTimeError{Zone: loc.String(), Hour: hour, Minute: minute}
	}
	// A fall-back transition repeats the wall clock: shifting the instant by
	// the transition amount lands on the same reading at the other offset.
	for _, shift := range dstShifts {
		alt := t.Add(shift)
		if alt.Hour() == hour && alt.Minute() == minute {
			return time.Time{}, &domain.InvalidLocalTimeError{Zone: loc.String(), Hour: hour, Minute: minute}
		}
	}
	return t, nil
}

// Resolve looks up the user's timezone and materializes hour:minute on
// today's date in it.
func (uc *TimezoneUsecase) Resolve(ctx context.Context, userID string, hour, minute int) (time.Time, error) {
	loc, err := uc.Location(ctx, userID)
	if err != nil {
		return time.Time{}, err
	}
	return uc.Materialize(loc, hour, minute)
}

// Set validates a timezone name against the IANA database and stores it.
func (uc *TimezoneUsecase) Set(ctx context.Context, userID, name string) error {
	if _, err := time.LoadLocation(name); err != nil || name == "" || name == "Local" {
		return &domain.BadTimezoneError{Name: name}
	}
	if err := uc.timezones.Set(ctx, userID, name); err != nil {
		return fmt.Errorf("set timezone: %w", err)
	}
	return nil
}

// CurrentTime returns the current time in the user's stored timezone.
func (uc *TimezoneUsecase) CurrentTime(ctx context.Context, userID string) (time.Time, error) {
	loc, err := uc.Location(ctx, userID)
	if err != nil {
		return time.Time{}, err
	}
	return uc.now().In(loc), nil
}

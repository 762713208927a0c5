/*
resolver.go - Effective rule and settings lookup

PURPOSE:
  Answers "which rule governs this user on this date?" and "how does this
  user's report period close?". Rule resolution returns a tagged Info value
  rather than nil: Valid == false signals "no applicable rule", and the
  breakdown calculator substitutes the system defaults on that branch.

SEE ALSO:
  - attendance/breakdown.go: consumes Info and applies defaults
  - attendance/period.go:    consumes the closing day
*/
package workrule

import (
	"context"
	"time"
)

// Resolver looks up effective rules and user settings.
type Resolver struct {
	rules    Store
	settings SettingsStore
}

func NewResolver(rules Store, settings SettingsStore) *Resolver {
	return &Resolver{rules: rules, settings: settings}
}

// Resolve returns the rule info effective for the user on the given date.
// When no rule's membership period contains the date, the zero Info
// (Valid == false) is returned with no error.
func (r *Resolver) Resolve(ctx context.Context, userID string, date time.Time) (Info, error) {
	rules, err := r.rules.FindByUser(ctx, userID)
	if err != nil {
		return Info{}, err
	}
	for _, rule := range rules {
		if rule.Membership.Contains(date) {
			return Info{
				Standard: rule.StandardDuration(),
				Break:    rule.BreakDuration(),
				Valid:    true,
			}, nil
		}
	}
	return Info{}, nil
}

// UserSettings returns the user's settings, falling back to the system
// defaults when the user has never configured any.
func (r *Resolver) UserSettings(ctx context.Context, userID string) (Settings, error) {
	s, err := r.settings.FindSettings(ctx, userID)
	if err != nil {
		return Settings{}, err
	}
	if s == nil {
		return DefaultSettings(userID), nil
	}
	return *s, nil
}

// ClosingDay returns the day-of-month that closes the user's report period.
func (r *Resolver) ClosingDay(ctx context.Context, userID string) (int, error) {
	s, err := r.UserSettings(ctx, userID)
	if err != nil {
		return 0, err
	}
	return s.ClosingDay, nil
}

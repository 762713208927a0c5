/*
store.go - Persistence interfaces for rules and user settings

PURPOSE:
  Defines the boundary between rule logic and the database. Implementations
  live in store/memory (tests) and store/sqlite (production). Find methods
  return (nil, nil) for absence; missing rows are not errors at this layer.
*/
package workrule

import "context"

// Store persists work rules.
type Store interface {
	// FindByUser returns all rules owned by the user, any order.
	FindByUser(ctx context.Context, userID string) ([]WorkRule, error)

	// FindByID returns the rule or (nil, nil) when absent.
	FindByID(ctx context.Context, id string) (*WorkRule, error)

	SaveRule(ctx context.Context, rule WorkRule) error
	UpdateRule(ctx context.Context, rule WorkRule) error
	DeleteRule(ctx context.Context, id string) error
}

// SettingsStore persists per-user report settings.
type SettingsStore interface {
	// FindSettings returns the user's settings or (nil, nil) when the user
	// has never configured any.
	FindSettings(ctx context.Context, userID string) (*Settings, error)

	SaveSettings(ctx context.Context, s Settings) error
}

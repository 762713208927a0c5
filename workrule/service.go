/*
service.go - Work rule registration, update and deletion

PURPOSE:
  The write side of rule management. Every mutation verifies ownership
  before proceeding, and registration/update run the overlap gate so a
  user's membership periods stay unambiguous. The overlap check and the
  write form one logical unit: nothing is persisted once the check fails.

SEE ALSO:
  - overlap.go: the period overlap predicate
  - store.go:   persistence interfaces
*/
package workrule

import (
	"context"

	"github.com/google/uuid"
)

// Service manages the work rule lifecycle.
type Service struct {
	rules    Store
	settings SettingsStore
}

func NewService(rules Store, settings SettingsStore) *Service {
	return &Service{rules: rules, settings: settings}
}

// Register validates and persists a new rule. Fails with an OverlapError
// when the candidate's membership period overlaps any existing rule of the
// same user.
func (s *Service) Register(ctx context.Context, candidate WorkRule) (*WorkRule, error) {
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.rules.FindByUser(ctx, candidate.UserID)
	if err != nil {
		return nil, err
	}
	if conflict := findOverlap(existing, candidate.Membership, ""); conflict != nil {
		return nil, &OverlapError{
			UserID:        candidate.UserID,
			ConflictingID: conflict.ID,
			Candidate:     candidate.Membership,
			Existing:      conflict.Membership,
		}
	}

	if candidate.ID == "" {
		candidate.ID = uuid.NewString()
	}
	if err := s.rules.SaveRule(ctx, candidate); err != nil {
		return nil, err
	}
	return &candidate, nil
}

// Update replaces an existing rule. The overlap check excludes the rule
// being updated by identity, so a rule may keep (or shrink) its own period.
// requesterID must match the rule's owner.
func (s *Service) Update(ctx context.Context, id, requesterID string, candidate WorkRule) (*WorkRule, error) {
	current, err := s.rules.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrRuleNotFound
	}
	if current.UserID != requesterID {
		return nil, ErrNotOwner
	}

	candidate.ID = id
	candidate.UserID = current.UserID
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.rules.FindByUser(ctx, current.UserID)
	if err != nil {
		return nil, err
	}
	if conflict := findOverlap(existing, candidate.Membership, id); conflict != nil {
		return nil, &OverlapError{
			UserID:        current.UserID,
			ConflictingID: conflict.ID,
			Candidate:     candidate.Membership,
			Existing:      conflict.Membership,
		}
	}

	if err := s.rules.UpdateRule(ctx, candidate); err != nil {
		return nil, err
	}
	return &candidate, nil
}

// Delete removes a rule. Historical reports computed under the rule are
// unaffected.
func (s *Service) Delete(ctx context.Context, id, requesterID string) error {
	current, err := s.rules.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrRuleNotFound
	}
	if current.UserID != requesterID {
		return ErrNotOwner
	}
	return s.rules.DeleteRule(ctx, id)
}

// ListByUser returns all rules owned by the user.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]WorkRule, error) {
	return s.rules.FindByUser(ctx, userID)
}

// SaveSettings validates and persists the user's report settings.
func (s *Service) SaveSettings(ctx context.Context, settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	return s.settings.SaveSettings(ctx, settings)
}

// Package consent gates caregiver data sharing and delivers report e-mails.
package consent

import (
	"context"
	"fmt"

	"github.com/vivabem/vivabem-server/internal/store"
	"go.uber.org/zap"
)

// Service manages consent flags and the sharing decision
type Service struct {
	store  *store.Store
	logger *zap.Logger
}

// NewService creates a new consent service
func NewService(st *store.Store, logger *zap.Logger) *Service {
	return &Service{
		store:  st,
		logger: logger.Named("consent"),
	}
}

// Get returns the actor's consent flags. A user that never decided gets a
// row with both flags off.
func (s *Service) Get(ctx context.Context, actorID string) (*store.Consent, error) {
	consent, err := s.store.GetConsent(actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load consent: %w", err)
	}
	if consent == nil {
		return &store.Consent{UserID: actorID}, nil
	}
	return consent, nil
}

// Update records the actor's consent decision
func (s *Service) Update(ctx context.Context, actorID string, active, dataSharing bool) (*store.Consent, error) {
	consent := &store.Consent{
		UserID:      actorID,
		Active:      active,
		DataSharing: dataSharing,
	}
	if err := s.store.UpsertConsent(consent); err != nil {
		return nil, fmt.Errorf("failed to update consent: %w", err)
	}

	s.logger.Info("Consent updated",
		zap.String("user_id", actorID),
		zap.Bool("active", active),
		zap.Bool("data_sharing", dataSharing),
	)
	return consent, nil
}

// Authorized reports whether the user's report may reach a caregiver: the
// consent row must exist with both flags on and a caregiver with an e-mail
// must be registered. No row means no authorization.
func (s *Service) Authorized(ctx context.Context, userID string) (*store.Caregiver, bool, error) {
	consent, err := s.store.GetConsent(userID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load consent: %w", err)
	}
	if consent == nil || !consent.Active || !consent.DataSharing {
		return nil, false, nil
	}

	caregiver, err := s.store.GetCaregiver(userID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load caregiver: %w", err)
	}
	if caregiver == nil || caregiver.Email == "" {
		return nil, false, nil
	}

	return caregiver, true, nil
}

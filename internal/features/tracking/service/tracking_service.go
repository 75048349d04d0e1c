package service

import (
	"context"
	"fmt"
	"strings"

	"shiptrack/internal/core/logger"
	"shiptrack/internal/features/tracking/domain"
	"shiptrack/internal/features/tracking/ports"

	"go.uber.org/zap"
)

// TrackingService resolves a carrier to its registered provider and runs the
// fetch, normalize and sort flow for a set of tracking numbers.
type TrackingService struct {
	providers map[domain.Carrier]ports.TrackingProvider
	logger    *zap.Logger
}

// NewTrackingService creates a new TrackingService with the given providers.
// A later provider for the same carrier replaces an earlier one.
func NewTrackingService(providers []ports.TrackingProvider) *TrackingService {
	registry := make(map[domain.Carrier]ports.TrackingProvider, len(providers))
	for _, provider := range providers {
		registry[provider.Carrier()] = provider
	}

	return &TrackingService{
		providers: registry,
		logger:    logger.Get(),
	}
}

// TrackByName parses an untrusted carrier name before tracking.
func (s *TrackingService) TrackByName(ctx context.Context, name string, trackingNumbers []string) ([]domain.TrackedPackage, error) {
	carrier, err := domain.ParseCarrier(name)
	if err != nil {
		return nil, err
	}
	return s.Track(ctx, carrier, trackingNumbers)
}

// Track queries the carrier once for all numbers and returns the packages
// sorted by preferred delivery date.
func (s *TrackingService) Track(ctx context.Context, carrier domain.Carrier, trackingNumbers []string) ([]domain.TrackedPackage, error) {
	provider, ok := s.providers[carrier]
	if !ok {
		return nil, fmt.Errorf("%w: no provider registered for %s", domain.ErrCarrierNotSupported, carrier)
	}

	for _, trackingNumber := range trackingNumbers {
		if err := domain.ValidateTrackingNumber(trackingNumber); err != nil {
			return nil, err
		}
	}
	trackingNumbers = uniqueTrackingNumbers(trackingNumbers)

	s.logger.Debug("Tracking packages",
		zap.String("carrier", carrier.String()),
		zap.Int("count", len(trackingNumbers)),
	)

	packages, err := provider.Track(ctx, trackingNumbers)
	if err != nil {
		return nil, fmt.Errorf("failed to get tracking from provider: %w", err)
	}

	domain.SortByPreferredDate(packages)

	s.logger.Info("Tracking completed",
		zap.String("carrier", carrier.String()),
		zap.Int("requested", len(trackingNumbers)),
		zap.Int("reported", len(packages)),
	)

	return packages, nil
}

// uniqueTrackingNumbers drops repeated numbers, ignoring case and keeping the first spelling.
func uniqueTrackingNumbers(trackingNumbers []string) []string {
	if len(trackingNumbers) == 0 {
		return trackingNumbers
	}

	seen := make(map[string]bool, len(trackingNumbers))
	unique := make([]string, 0, len(trackingNumbers))
	for _, trackingNumber := range trackingNumbers {
		key := strings.ToLower(trackingNumber)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, trackingNumber)
	}
	return unique
}

// Carriers lists the carriers with a registered provider.
func (s *TrackingService) Carriers() []domain.Carrier {
	var carriers []domain.Carrier
	for _, carrier := range domain.Carriers() {
		if _, ok := s.providers[carrier]; ok {
			carriers = append(carriers, carrier)
		}
	}
	return carriers
}

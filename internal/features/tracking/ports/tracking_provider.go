package ports

import (
	"context"

	"shiptrack/internal/features/tracking/domain"
)

// TrackingProvider defines the interface for carrier tracking implementations.
type TrackingProvider interface {
	// Carrier returns the carrier this provider handles.
	Carrier() domain.Carrier
	// Track queries the carrier once for all tracking numbers and returns one
	// normalized package per number the carrier reported on, in response order.
	Track(ctx context.Context, trackingNumbers []string) ([]domain.TrackedPackage, error)
}

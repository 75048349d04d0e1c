package adapter

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"shiptrack/internal/core/cache"
	"shiptrack/internal/core/config"
	"shiptrack/internal/core/logger"
	"shiptrack/internal/features/tracking/domain"

	"go.uber.org/zap"
)

// maxResponseBytes caps how much of a carrier response is read.
const maxResponseBytes = 8 << 20

// USPSAdapter tracks packages through the USPS Web Tools TrackV2 API.
type USPSAdapter struct {
	// cfg holds the USPS credentials and endpoint.
	cfg config.USPSConfig
	// zip is the destination zip sent with every tracking entry.
	zip string
	// client is the HTTP client used for API requests.
	client *http.Client
	// annotations attaches user notes to normalized packages.
	annotations domain.Annotations
	// cache optionally stores raw responses.
	cache    cache.Cache
	cacheTTL time.Duration
	refresh  bool
	logger   *zap.Logger
}

// USPSOption customizes a USPSAdapter.
type USPSOption func(*USPSAdapter)

// WithAnnotations attaches user notes to returned packages.
func WithAnnotations(annotations domain.Annotations) USPSOption {
	return func(a *USPSAdapter) {
		a.annotations = annotations
	}
}

// WithCache caches raw responses for ttl. With refresh set, a cached entry is
// dropped before the request so the run always reaches the carrier.
func WithCache(c cache.Cache, ttl time.Duration, refresh bool) USPSOption {
	return func(a *USPSAdapter) {
		a.cache = c
		a.cacheTTL = ttl
		a.refresh = refresh
	}
}

// NewUSPSAdapter creates a new USPSAdapter.
func NewUSPSAdapter(cfg config.USPSConfig, zip string, client *http.Client, opts ...USPSOption) *USPSAdapter {
	a := &USPSAdapter{
		cfg:    cfg,
		zip:    zip,
		client: client,
		logger: logger.Get(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Carrier returns domain.CarrierUSPS.
func (a *USPSAdapter) Carrier() domain.Carrier {
	return domain.CarrierUSPS
}

// Track sends one TrackV2 request for all tracking numbers and normalizes the response.
func (a *USPSAdapter) Track(ctx context.Context, trackingNumbers []string) ([]domain.TrackedPackage, error) {
	payload := a.buildTrackRequest(trackingNumbers)

	body, err := a.fetch(ctx, payload)
	if err != nil {
		return nil, err
	}

	return a.parseResponse(body, trackingNumbers)
}

// fetch returns the raw response body, consulting the cache when one is configured.
func (a *USPSAdapter) fetch(ctx context.Context, payload string) ([]byte, error) {
	key := cacheKey(payload)

	if a.cache != nil {
		if a.refresh {
			if err := a.cache.Delete(ctx, key); err != nil {
				a.logger.Warn("Failed to drop cached usps response", zap.Error(err))
			}
		} else if body, err := a.cache.Get(ctx, key); err == nil {
			a.logger.Debug("Using cached usps response", zap.String("cache_key", key))
			return body, nil
		} else if !errors.Is(err, cache.ErrKeyNotFound) {
			a.logger.Warn("Cache lookup failed", zap.Error(err))
		}
	}

	body, err := a.get(ctx, payload)
	if err != nil {
		return nil, err
	}

	if a.cache != nil {
		if err := a.cache.Set(ctx, key, body, a.cacheTTL); err != nil {
			a.logger.Warn("Failed to cache usps response", zap.Error(err))
		}
	}

	return body, nil
}

// get performs the TrackV2 GET request.
func (a *USPSAdapter) get(ctx context.Context, payload string) ([]byte, error) {
	uri, err := a.trackURL(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("usps API returned status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return body, nil
}

// parseResponse decodes the XML body and normalizes every TrackInfo entry.
func (a *USPSAdapter) parseResponse(body []byte, requested []string) ([]domain.TrackedPackage, error) {
	tree, err := decodeXMLTree(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse usps response: %w", err)
	}

	return a.normalize(tree, requested), nil
}

// normalize maps the decoded tree to domain packages.
// Only a TrackResponse whose TrackInfo is a sequence yields packages; any
// other shape, including a bare TrackInfo object, yields none.
func (a *USPSAdapter) normalize(tree rawNode, requested []string) []domain.TrackedPackage {
	if errNode, ok := tree["Error"].(rawNode); ok {
		a.logger.Warn("USPS returned an error document",
			zap.String("number", errNode.joined("Number")),
			zap.String("description", errNode.joined("Description")),
		)
		return nil
	}

	resp, ok := tree["TrackResponse"].(rawNode)
	if !ok {
		return nil
	}

	infos, ok := resp["TrackInfo"].([]any)
	if !ok {
		return nil
	}

	wanted := make(map[string]bool, len(requested))
	for _, n := range requested {
		wanted[strings.ToLower(n)] = true
	}

	reported := make(map[string]bool, len(infos))
	packages := make([]domain.TrackedPackage, 0, len(infos))
	for _, item := range infos {
		info, ok := item.(rawNode)
		if !ok {
			continue
		}

		trackingNumber := info.attr("ID")
		key := strings.ToLower(trackingNumber)
		if trackingNumber == "" || !wanted[key] {
			a.logger.Warn("Skipping unrequested TrackInfo entry", zap.String("tracking_number", trackingNumber))
			continue
		}
		if reported[key] {
			a.logger.Warn("Skipping repeated TrackInfo entry", zap.String("tracking_number", trackingNumber))
			continue
		}
		reported[key] = true

		if errNode, ok := info.child("Error"); ok {
			a.logger.Warn("USPS reported an error for tracking number",
				zap.String("tracking_number", trackingNumber),
				zap.String("description", errNode.joined("Description")),
			)
		}

		packages = append(packages, a.mapTrackInfo(trackingNumber, info))
	}

	return packages
}

// mapTrackInfo converts a single TrackInfo entry.
func (a *USPSAdapter) mapTrackInfo(trackingNumber string, info rawNode) domain.TrackedPackage {
	p := domain.TrackedPackage{
		Service:               domain.CarrierUSPS,
		TrackingNumber:        trackingNumber,
		TrackingClass:         domain.StripMarkup(info.joined("Class")),
		StatusCategory:        info.joined("StatusCategory"),
		StatusSummary:         info.joined("StatusSummary"),
		ExpectedDeliveryDate:  info.joined("ExpectedDeliveryDate"),
		PredictedDeliveryDate: info.joined("PredictedDeliveryDate"),
		Annotation:            a.annotations.Lookup(trackingNumber),
	}

	if info.has("OriginCity") && info.has("OriginState") {
		p.Origin = info.joined("OriginCity") + ", " + info.joined("OriginState")
	}

	return p
}

// cacheKey derives a stable key from the request payload.
func cacheKey(payload string) string {
	sum := sha256.Sum256([]byte(payload))
	return "usps:" + hex.EncodeToString(sum[:])
}

package handler

import (
	"errors"
	"strings"

	"shiptrack/internal/core/logger"
	"shiptrack/internal/features/tracking/domain"
	"shiptrack/internal/features/tracking/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TrackingHandler handles HTTP requests for tracking operations.
type TrackingHandler struct {
	trackingService *service.TrackingService
}

// NewTrackingHandler creates a new TrackingHandler.
func NewTrackingHandler(trackingService *service.TrackingService) *TrackingHandler {
	return &TrackingHandler{
		trackingService: trackingService,
	}
}

// Register mounts the tracking routes on router.
func (h *TrackingHandler) Register(router fiber.Router) {
	router.Get("/track/:service/:ids?", h.Track)
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// TrackParams echoes the request.
type TrackParams struct {
	Service         string   `json:"service"`
	TrackingNumbers []string `json:"trackingNumbers"`
}

// TrackResponse is the body of a successful lookup.
type TrackResponse struct {
	Params       TrackParams             `json:"params"`
	TrackingData []domain.TrackedPackage `json:"trackingData"`
}

// Track godoc
// @Summary Track packages for one carrier
// @Description Looks up a comma separated list of tracking numbers and returns the normalized records sorted by preferred delivery date
// @Tags tracking
// @Produce json
// @Param service path string true "Carrier name (usps, fedex, ups, dhl)"
// @Param ids path string true "Comma separated tracking numbers"
// @Success 200 {object} TrackResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /track/{service}/{ids} [get]
func (h *TrackingHandler) Track(c *fiber.Ctx) error {
	serviceName := c.Params("service")
	trackingNumbers := splitTrackingNumbers(c.Params("ids"))

	if len(trackingNumbers) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "at least one tracking number is required",
			RayID:   rayID(c),
		})
	}

	packages, err := h.trackingService.TrackByName(c.UserContext(), serviceName, trackingNumbers)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCarrierNotSupported):
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Message: "carrier not supported",
				RayID:   rayID(c),
			})
		case errors.Is(err, domain.ErrInvalidTrackingNumber):
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Message: err.Error(),
				RayID:   rayID(c),
			})
		}

		logger.Get().Error("Tracking request failed",
			zap.String("carrier", serviceName),
			zap.String("ray_id", rayID(c)),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   rayID(c),
		})
	}

	if packages == nil {
		packages = []domain.TrackedPackage{}
	}

	return c.JSON(TrackResponse{
		Params: TrackParams{
			Service:         serviceName,
			TrackingNumbers: trackingNumbers,
		},
		TrackingData: packages,
	})
}

func splitTrackingNumbers(raw string) []string {
	var numbers []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			numbers = append(numbers, part)
		}
	}
	return numbers
}

func rayID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}

package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrInvalidTrackingNumber is returned for tracking numbers that cannot be embedded in a request.
var ErrInvalidTrackingNumber = errors.New("invalid tracking number")

// StatusDelivered is the status category carriers use once a package has arrived.
const StatusDelivered = "Delivered"

var (
	trackingNumberPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	// markupPattern is greedy so inline tags and their content are dropped together.
	markupPattern = regexp.MustCompile(`<.+>`)
)

// deliveryDateLayouts are the formats carriers use for expected and predicted dates.
var deliveryDateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"2006-01-02",
	"01/02/2006",
	time.RFC3339,
}

// Annotation is user supplied metadata attached to a tracking number.
type Annotation struct {
	// Sender is who the package comes from.
	Sender string `json:"sender,omitempty"`
	// Description says what is inside.
	Description string `json:"description,omitempty"`
}

// Annotations looks up notes by tracking number, ignoring case.
type Annotations map[string]Annotation

// NewAnnotations builds a lookup table from raw configuration entries.
func NewAnnotations(entries map[string]Annotation) Annotations {
	a := make(Annotations, len(entries))
	for number, note := range entries {
		a[strings.ToLower(number)] = note
	}
	return a
}

// Lookup returns the note for trackingNumber, or nil.
func (a Annotations) Lookup(trackingNumber string) *Annotation {
	note, ok := a[strings.ToLower(trackingNumber)]
	if !ok {
		return nil
	}
	return &note
}

// TrackedPackage is the normalized status of one tracking number.
type TrackedPackage struct {
	// Service is the carrier that reported the status.
	Service Carrier `json:"service"`
	// TrackingNumber is the carrier-issued identifier.
	TrackingNumber string `json:"tracking_number"`
	// TrackingClass is the shipping class with inline markup removed.
	TrackingClass string `json:"tracking_class"`
	// StatusCategory is the coarse status label, e.g. "Delivered".
	StatusCategory string `json:"status_category"`
	// StatusSummary is the latest free-text status.
	StatusSummary string `json:"status_summary"`
	// ExpectedDeliveryDate is the carrier's string, empty when absent.
	ExpectedDeliveryDate string `json:"expected_delivery_date,omitempty"`
	// PredictedDeliveryDate is the carrier's string, empty when absent.
	PredictedDeliveryDate string `json:"predicted_delivery_date,omitempty"`
	// Origin is "city, state", empty unless both parts were returned.
	Origin string `json:"origin,omitempty"`
	// Annotation is the user's note for this number, if any.
	Annotation *Annotation `json:"annotation,omitempty"`
}

// DateKind tells which carrier date a preferred date came from.
type DateKind string

const (
	// DateNone means neither date was returned.
	DateNone DateKind = ""
	// DatePredicted is the PredictedDeliveryDate.
	DatePredicted DateKind = "Predicted"
	// DateExpected is the ExpectedDeliveryDate.
	DateExpected DateKind = "Expected"
)

// PreferredDateText returns the display date: predicted over expected.
func (p TrackedPackage) PreferredDateText() (string, DateKind) {
	if p.PredictedDeliveryDate != "" {
		return p.PredictedDeliveryDate, DatePredicted
	}
	if p.ExpectedDeliveryDate != "" {
		return p.ExpectedDeliveryDate, DateExpected
	}
	return "", DateNone
}

// PreferredDate parses the display date. ok is false when there is none or it is unparseable.
func (p TrackedPackage) PreferredDate() (date time.Time, ok bool) {
	text, kind := p.PreferredDateText()
	if kind == DateNone {
		return time.Time{}, false
	}
	return ParseDeliveryDate(text)
}

// IsDelivered reports whether the carrier marked the package as delivered.
func (p TrackedPackage) IsDelivered() bool {
	return p.StatusCategory == StatusDelivered
}

// ParseDeliveryDate parses a carrier date in the local timezone.
// Dates carrying their own offset are converted to local time.
func ParseDeliveryDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range deliveryDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t.In(time.Local), true
		}
	}
	return time.Time{}, false
}

// StripMarkup removes angle-bracket-delimited substrings such as "<SUP>&#153;</SUP>".
func StripMarkup(s string) string {
	return markupPattern.ReplaceAllString(s, "")
}

// ValidateTrackingNumber rejects numbers that are not plain alphanumerics.
// Request payloads embed numbers verbatim, so this must run before a request is built.
func ValidateTrackingNumber(trackingNumber string) error {
	if !trackingNumberPattern.MatchString(trackingNumber) {
		return fmt.Errorf("%w: %q", ErrInvalidTrackingNumber, trackingNumber)
	}
	return nil
}

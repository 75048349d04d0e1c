package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func numbers(packages []TrackedPackage) []string {
	out := make([]string, 0, len(packages))
	for _, p := range packages {
		out = append(out, p.TrackingNumber)
	}
	return out
}

// TestSortByPreferredDate_Placement verifies date order with undated packages last in input order (P3).
func TestSortByPreferredDate_Placement(t *testing.T) {
	packages := []TrackedPackage{
		{TrackingNumber: "A"},
		{TrackingNumber: "B", ExpectedDeliveryDate: "2024-03-01"},
		{TrackingNumber: "C"},
		{TrackingNumber: "D", ExpectedDeliveryDate: "2024-02-01"},
	}

	SortByPreferredDate(packages)

	assert.Equal(t, []string{"D", "B", "A", "C"}, numbers(packages))
}

// TestSortByPreferredDate_UsesPredicted verifies that sorting follows the predicted date (P4).
func TestSortByPreferredDate_UsesPredicted(t *testing.T) {
	packages := []TrackedPackage{
		{TrackingNumber: "A", ExpectedDeliveryDate: "2024-04-01", PredictedDeliveryDate: "2024-05-01"},
		{TrackingNumber: "B", ExpectedDeliveryDate: "2024-04-15"},
	}

	SortByPreferredDate(packages)

	assert.Equal(t, []string{"B", "A"}, numbers(packages))
}

// TestSortByPreferredDate_Stable verifies equal dates and unparseable dates keep input order.
func TestSortByPreferredDate_Stable(t *testing.T) {
	packages := []TrackedPackage{
		{TrackingNumber: "A", ExpectedDeliveryDate: "not a date"},
		{TrackingNumber: "B", ExpectedDeliveryDate: "2024-03-01"},
		{TrackingNumber: "C", PredictedDeliveryDate: "March 1, 2024"},
		{TrackingNumber: "D"},
		{TrackingNumber: "E", ExpectedDeliveryDate: "2024-01-01"},
	}

	SortByPreferredDate(packages)

	assert.Equal(t, []string{"E", "B", "C", "A", "D"}, numbers(packages))
}

// TestSortByPreferredDate_Empty verifies that empty input is fine.
func TestSortByPreferredDate_Empty(t *testing.T) {
	var packages []TrackedPackage
	SortByPreferredDate(packages)
	assert.Empty(t, packages)
}

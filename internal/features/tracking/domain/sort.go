package domain

import "slices"

// SortByPreferredDate orders packages by preferred date, earliest first.
// Packages without a parseable date go last. Ties keep their input order.
func SortByPreferredDate(packages []TrackedPackage) {
	slices.SortStableFunc(packages, func(a, b TrackedPackage) int {
		da, okA := a.PreferredDate()
		db, okB := b.PreferredDate()
		switch {
		case !okA && !okB:
			return 0
		case !okA:
			return 1
		case !okB:
			return -1
		}
		return da.Compare(db)
	})
}

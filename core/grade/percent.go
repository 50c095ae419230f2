package grade

import "github.com/volatiletech/null/v8"

// CoursePercent resolves the percent of a course from its grade items.
//
// A supplied override wins outright and no aggregation happens; a non-finite
// one resolves to absent. Otherwise items
// with a positive weight and a valid percent contribute percent*weight/100 and
// the sum is returned as is, not renormalised to the weight entered so far.
// When no item carries a positive weight the plain mean of the valid percents
// is returned instead. No usable item yields an absent percent.
//
// Note: the fallback only triggers when the positive weight total is exactly
// zero; a single weighted item switches the whole course to the weighted sum
// and unweighted items are then ignored.
func CoursePercent(courseID string, items []Item, override null.Float64) null.Float64 {
	if override.Valid {
		if valid(override) {
			return override
		}
		return null.Float64{}
	}

	var (
		matched     int
		totalWeight float64
		weightedSum float64
	)
	for _, it := range items {
		if !it.BelongsTo(courseID) {
			continue
		}
		matched++
		if it.hasWeight() && valid(it.Percent) {
			totalWeight += it.Weight.Float64
			weightedSum += it.Percent.Float64 * (it.Weight.Float64 / 100)
		}
	}
	if matched == 0 {
		return null.Float64{}
	}

	if totalWeight == 0 {
		return averagePercent(courseID, items)
	}
	return null.Float64From(weightedSum)
}

// averagePercent is the unweighted mean of the valid percents of a course.
func averagePercent(courseID string, items []Item) null.Float64 {
	var (
		n   int
		sum float64
	)
	for _, it := range items {
		if it.BelongsTo(courseID) && valid(it.Percent) {
			sum += it.Percent.Float64
			n++
		}
	}
	if n == 0 {
		return null.Float64{}
	}
	return null.Float64From(sum / float64(n))
}

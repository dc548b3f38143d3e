package facts

import (
	"encoding/json"

	"TrueSignal/internal/domain/models"
)

// Trim steps, applied in this order until the record fits.
const (
	StepNews   = "news"
	StepStdDev = "px.std"
	StepLevels = "sr"

	budgetNewsItems = 2
)

// Size returns the serialized length of f in bytes.
func Size(f *models.Facts) int {
	b, err := json.Marshal(f)
	if err != nil {
		return 0
	}
	return len(b)
}

// EnforceBudget trims f in place until it serializes within limit or every
// step has run. Steps that change nothing are not reported, so running it on
// an already compact record is a no-op. It returns the applied steps and the
// final size.
func EnforceBudget(f *models.Facts, limit int) ([]string, int) {
	var steps []string
	size := Size(f)

	if size > limit && len(f.News) > budgetNewsItems {
		f.News = f.News[:budgetNewsItems]
		steps = append(steps, StepNews)
		size = Size(f)
	}
	if size > limit && f.Price.Std != nil {
		f.Price.Std = nil
		steps = append(steps, StepStdDev)
		size = Size(f)
	}
	if size > limit && (len(f.Levels.Sup) > 1 || len(f.Levels.Res) > 1) {
		if len(f.Levels.Sup) > 1 {
			f.Levels.Sup = f.Levels.Sup[:1]
		}
		if len(f.Levels.Res) > 1 {
			f.Levels.Res = f.Levels.Res[:1]
		}
		steps = append(steps, StepLevels)
		size = Size(f)
	}
	return steps, size
}

package features

import "github.com/yourusername/futures-signal/internal/models"

// LabelTargets returns a copy of the bars with TomorrowClose and the binary
// direction Target filled in: 1 when the next day's close is higher, else 0.
// The final bar has no next day and stays unlabeled; it must be excluded
// from any training or evaluation set.
func LabelTargets(bars []models.Bar) []models.Bar {
	labeled := make([]models.Bar, len(bars))
	copy(labeled, bars)
	if n := len(labeled); n > 0 {
		labeled[n-1].TomorrowClose = nil
		labeled[n-1].Target = nil
	}
	for i := 0; i+1 < len(labeled); i++ {
		tomorrow := labeled[i+1].Close
		labeled[i].TomorrowClose = &tomorrow

		target := 0
		if tomorrow > labeled[i].Close {
			target = 1
		}
		labeled[i].Target = &target
	}
	return labeled
}

package mempool

import (
	"errors"
	"fmt"
)

// ErrInvalidFeeEstimates is returned when the API answers with fee figures
// that cannot be used.
var ErrInvalidFeeEstimates = errors.New("invalid fee estimates")

// FeeEstimates represents fee estimates in sat/vB for different
// confirmation targets.
type FeeEstimates struct {
	FastestFee  int64 `json:"fastestFee"`  // Next block
	HalfHourFee int64 `json:"halfHourFee"` // ~3 blocks
	HourFee     int64 `json:"hourFee"`     // ~6 blocks
	EconomyFee  int64 `json:"economyFee"`  // ~12 blocks
	MinimumFee  int64 `json:"minimumFee"`  // Minimum relay fee
}

// Validate rejects negative figures.
func (f *FeeEstimates) Validate() error {
	for name, v := range map[string]int64{
		"fastestFee":  f.FastestFee,
		"halfHourFee": f.HalfHourFee,
		"hourFee":     f.HourFee,
		"economyFee":  f.EconomyFee,
		"minimumFee":  f.MinimumFee,
	} {
		if v < 0 {
			return fmt.Errorf("%w: %s is %d", ErrInvalidFeeEstimates,
				name, v)
		}
	}

	return nil
}

// ForTarget maps a confirmation target in blocks to a sat/vB estimate.
func (f *FeeEstimates) ForTarget(confTarget uint32) int64 {
	switch {
	case confTarget <= 1:
		return f.FastestFee
	case confTarget <= 3:
		return f.HalfHourFee
	case confTarget <= 6:
		return f.HourFee
	case confTarget <= 12:
		return f.EconomyFee
	default:
		return f.MinimumFee
	}
}

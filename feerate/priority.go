package feerate

import "fmt"

// Rate is a fee rate in base units of the fee coin per resource unit, for
// example sat/vbyte or wei/gas.
type Rate uint64

// Level selects how a fee rate is chosen.
type Level uint8

const (
	// LevelRecommended asks the fee source for its default rate.
	LevelRecommended Level = iota

	// LevelLow asks for a slower, cheaper rate.
	LevelLow

	// LevelHigh asks for a faster, more expensive rate.
	LevelHigh

	// LevelCustom uses a caller supplied rate.
	LevelCustom
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelRecommended:
		return "recommended"
	case LevelLow:
		return "low"
	case LevelHigh:
		return "high"
	case LevelCustom:
		return "custom"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(l))
	}
}

// Range is an inclusive range of acceptable custom rates. A zero Max means
// the range has no upper bound.
type Range struct {
	Min Rate
	Max Rate
}

// Contains reports whether r lies inside the range.
func (r Range) Contains(v Rate) bool {
	if v < r.Min {
		return false
	}

	return r.Max == 0 || v <= r.Max
}

// Priority is the user's fee priority choice.
type Priority struct {
	// Level selects the tier.
	Level Level

	// Value is the rate for LevelCustom. Ignored otherwise.
	Value Rate

	// Bounds limits Value for LevelCustom. Ignored otherwise.
	Bounds Range
}

// Recommended returns the default priority.
func Recommended() Priority {
	return Priority{Level: LevelRecommended}
}

// Low returns the economy priority.
func Low() Priority {
	return Priority{Level: LevelLow}
}

// High returns the fast priority.
func High() Priority {
	return Priority{Level: LevelHigh}
}

// Custom returns a priority that uses value directly.
func Custom(value Rate, bounds Range) Priority {
	return Priority{
		Level:  LevelCustom,
		Value:  value,
		Bounds: bounds,
	}
}

// IsCustom reports whether the rate is supplied by the caller.
func (p Priority) IsCustom() bool {
	return p.Level == LevelCustom
}

// Validate checks that the priority is well formed.
func (p Priority) Validate() error {
	switch p.Level {
	case LevelRecommended, LevelLow, LevelHigh:
		return nil

	case LevelCustom:
		if p.Bounds.Max != 0 && p.Bounds.Min > p.Bounds.Max {
			return fmt.Errorf("%w: min %d > max %d", ErrInvalidRange,
				p.Bounds.Min, p.Bounds.Max)
		}
		if !p.Bounds.Contains(p.Value) {
			return fmt.Errorf("%w: %d not in [%d, %d]",
				ErrCustomRateOutOfRange, p.Value, p.Bounds.Min,
				p.Bounds.Max)
		}
		return nil

	default:
		return fmt.Errorf("%w: %v", ErrUnknownPriority, p.Level)
	}
}

// String implements fmt.Stringer.
func (p Priority) String() string {
	if p.IsCustom() {
		return fmt.Sprintf("custom(%d)", p.Value)
	}

	return p.Level.String()
}

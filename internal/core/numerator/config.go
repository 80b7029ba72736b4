// Package numerator provides domain contracts for document auto-numbering.
package numerator

// Strategy defines the numbering generation strategy.
type Strategy int

const (
	// StrategyStrict uses UPDATE ... RETURNING for every number.
	// Guarantees sequential numbers without gaps.
	// Suitable for order numbers that must stay dense and auditable.
	StrategyStrict Strategy = iota

	// StrategyCached allocates ranges of numbers in memory.
	// Much faster, but may produce gaps if application restarts.
	StrategyCached
)

// Reset periods for the sequence counter.
const (
	ResetNever   = "never"
	ResetYearly  = "year"
	ResetMonthly = "month"
)

// Options configuration for number generation.
type Options struct {
	// Strategy to use for number generation
	Strategy Strategy
	// RangeSize is the number of IDs to allocate at once in Cached strategy.
	// Default is 50.
	RangeSize int64
}

// DefaultOptions returns standard options (Strict).
func DefaultOptions() *Options {
	return &Options{
		Strategy: StrategyStrict,
	}
}

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers (e.g., "PO", "SO")
	Prefix string

	// PadWidth is the minimum sequence width (default 4)
	PadWidth int

	// ResetPeriod: ResetNever, ResetYearly or ResetMonthly.
	// The counter is keyed by prefix plus the current period, so a new
	// period starts the sequence over at 1.
	ResetPeriod string
}

// DefaultConfig returns the order-number configuration for a prefix:
// monthly reset, 4-digit sequence, PREFIX-YYYYMM-NNNN.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		PadWidth:    4,
		ResetPeriod: ResetMonthly,
	}
}

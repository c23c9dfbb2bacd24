package matcher

import "fmt"

// Options holds the tunable constants of candidate extraction and matching
type Options struct {
	// Candidate extraction
	MaxScanLines     int
	MinLineLength    int
	MaxLineLength    int
	AddressMinLength int

	// Scoring
	VariationBonus int
	FuzzyFloor     int
}

// DefaultOptions returns the default matching options
func DefaultOptions() Options {
	return Options{
		MaxScanLines:     5,
		MinLineLength:    2,
		MaxLineLength:    30,
		AddressMinLength: 10,
		VariationBonus:   10,
		FuzzyFloor:       80,
	}
}

// Validate checks that the options are usable
func (o Options) Validate() error {
	if o.MaxScanLines <= 0 {
		return fmt.Errorf("max scan lines must be positive (got %d)", o.MaxScanLines)
	}
	if o.MinLineLength < 1 || o.MaxLineLength < o.MinLineLength {
		return fmt.Errorf("line length bounds must satisfy 1 <= min <= max (min=%d, max=%d)", o.MinLineLength, o.MaxLineLength)
	}
	if o.AddressMinLength < 0 {
		return fmt.Errorf("address min length must be >= 0 (got %d)", o.AddressMinLength)
	}
	if o.VariationBonus < 0 || o.VariationBonus > 100 {
		return fmt.Errorf("variation bonus must be within [0,100] (got %d)", o.VariationBonus)
	}
	if o.FuzzyFloor < 0 || o.FuzzyFloor > 100 {
		return fmt.Errorf("fuzzy match floor must be within [0,100] (got %d)", o.FuzzyFloor)
	}
	return nil
}

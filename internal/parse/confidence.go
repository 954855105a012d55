package parse

// Confidence grades how much trust downstream code should place in a
// parsed batch. Each strategy in the chain reports a fixed confidence,
// decreasing with its position: a strict field parse is trustworthy, the
// canonical fallback is a last resort.
type Confidence string

const (
	// ConfidenceHigh means the text matched the requested field format.
	ConfidenceHigh Confidence = "high"

	// ConfidenceGood means the text had usable structure but fields
	// were inferred rather than stated.
	ConfidenceGood Confidence = "good"

	// ConfidenceReplay means a re-requested response parsed where the
	// original did not.
	ConfidenceReplay Confidence = "replay"

	// ConfidenceMinimal means only bare descriptions could be read.
	ConfidenceMinimal Confidence = "minimal"

	// ConfidenceFallback means the canonical generic batch was used.
	ConfidenceFallback Confidence = "fallback"
)

// String returns the confidence as a string.
func (c Confidence) String() string {
	return string(c)
}

// IsValid reports whether c is a known confidence grade.
func (c Confidence) IsValid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceGood, ConfidenceReplay, ConfidenceMinimal, ConfidenceFallback:
		return true
	}
	return false
}

// Degraded reports whether results at this confidence should be flagged
// to the caller. Replay and below mean the first response was unusable.
func (c Confidence) Degraded() bool {
	switch c {
	case ConfidenceReplay, ConfidenceMinimal, ConfidenceFallback:
		return true
	}
	return false
}

// ValidConfidences returns all confidence grades in decreasing order.
func ValidConfidences() []Confidence {
	return []Confidence{
		ConfidenceHigh,
		ConfidenceGood,
		ConfidenceReplay,
		ConfidenceMinimal,
		ConfidenceFallback,
	}
}

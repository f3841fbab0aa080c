package domain

// Progress is a collection progress snapshot. Total is fixed before the first
// tick and Completed grows by one per finished candidate.
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// Percent returns the completion percentage, 0 for the zero-results signal
func (p Progress) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	return float64(p.Completed) / float64(p.Total) * 100
}

// Outcome classifies a ComparisonResult
type Outcome string

const (
	// OutcomeNoMatch means no candidate qualified; the result carries no product
	OutcomeNoMatch Outcome = "no_match"
	// OutcomeNotCheaper means a best candidate was found but it does not beat the source price
	OutcomeNotCheaper Outcome = "not_cheaper"
	// OutcomeCheaper means the best candidate is strictly cheaper than the source
	OutcomeCheaper Outcome = "cheaper"
)

// ComparisonResult is the outcome of one comparison run
type ComparisonResult struct {
	Outcome Outcome  `json:"outcome"`
	Product *Product `json:"product,omitempty"`
}

// NoMatch returns the empty comparison result
func NoMatch() ComparisonResult {
	return ComparisonResult{Outcome: OutcomeNoMatch}
}

// Found reports whether the result carries a best candidate
func (r ComparisonResult) Found() bool {
	return r.Outcome != OutcomeNoMatch && r.Product != nil
}

// FoundCheaper reports whether the best candidate beats the source price
func (r ComparisonResult) FoundCheaper() bool {
	return r.Outcome == OutcomeCheaper && r.Product != nil
}

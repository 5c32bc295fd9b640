package enums

import "fmt"

// QuoteStatus describes the lifecycle state of a quote.
type QuoteStatus string

const (
	QuoteStatusPending QuoteStatus = "PENDING"
	QuoteStatusSent    QuoteStatus = "SENT"
	QuoteStatusWon     QuoteStatus = "WON"
	QuoteStatusLost    QuoteStatus = "LOST"
)

var validQuoteStatuses = []QuoteStatus{
	QuoteStatusPending,
	QuoteStatusSent,
	QuoteStatusWon,
	QuoteStatusLost,
}

// IsValid reports whether the value matches the canonical quote status enum.
func (s QuoteStatus) IsValid() bool {
	for _, candidate := range validQuoteStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status is an end state of the funnel.
func (s QuoteStatus) IsTerminal() bool {
	return s == QuoteStatusWon || s == QuoteStatusLost
}

// ParseQuoteStatus converts the raw string to QuoteStatus.
func ParseQuoteStatus(value string) (QuoteStatus, error) {
	for _, candidate := range validQuoteStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quote status %q", value)
}

// QuoteStatuses returns the canonical status list in funnel order.
func QuoteStatuses() []QuoteStatus {
	out := make([]QuoteStatus, len(validQuoteStatuses))
	copy(out, validQuoteStatuses)
	return out
}

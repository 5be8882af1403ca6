package reporting

import "time"

// TimeRange is a half-open interval [From, To).
type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// CallsSummary aggregates dispatched-call outcomes over a range.
type CallsSummary struct {
	Range TimeRange `json:"range"`

	TotalCalls     int `json:"total_calls"`
	CompletedCalls int `json:"completed_calls"`
	FailedCalls    int `json:"failed_calls"`
}

// SpendSummary aggregates wallet movement over a range. All amounts are
// minor units; debit totals are reported as positive magnitudes.
type SpendSummary struct {
	Range    TimeRange `json:"range"`
	Currency string    `json:"currency"`

	TotalCreditMinor int64 `json:"total_credit_minor"`
	TotalDebitMinor  int64 `json:"total_debit_minor"`
	NetDeltaMinor    int64 `json:"net_delta_minor"`
}

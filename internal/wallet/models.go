package wallet

import "time"

// The business runs a single wallet. Balance is a projection over the
// immutable ledger: no code mutates the balance row without appending a
// ledger entry in the same transaction.

// LedgerEntry is an immutable append-only row. Credits are positive,
// debits negative, in minor units (cents).
type LedgerEntry struct {
	ID          string    `json:"id"`
	Type        EntryType `json:"type"`
	AmountMinor int64     `json:"amount_minor"`
	Currency    string    `json:"currency"`

	// ExternalRef is optional: provider call id, invoice id, etc.
	ExternalRef string `json:"external_ref,omitempty"`

	// IdempotencyKey makes money-posting retries safe. Call-end debits use
	// the provider call id so a re-delivered webhook posts at most once.
	IdempotencyKey string `json:"idempotency_key"`

	CreatedAt time.Time `json:"created_at"`
}

type EntryType string

const (
	EntryTypeCredit EntryType = "credit" // top-up, adjustment
	EntryTypeDebit  EntryType = "debit"  // call charge, fee
)

type Balance struct {
	Currency     string    `json:"currency"`
	BalanceMinor int64     `json:"balance_minor"`
	UpdatedAt    time.Time `json:"updated_at"`
}

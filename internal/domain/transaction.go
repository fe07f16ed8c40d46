package domain

// TransactionType classifies ledger history entries.
type TransactionType string

const (
	TransactionSent     TransactionType = "SENT"
	TransactionReceived TransactionType = "RECEIVED"
	TransactionCoupon   TransactionType = "COUPON"
	TransactionAdBonus  TransactionType = "AD_BONUS"
)

// Transaction is an immutable history record. Timestamp is epoch millis.
type Transaction struct {
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	Amount      float64         `json:"amount"`
	Description string          `json:"description"`
	Timestamp   int64           `json:"timestamp"`
}

// IsCredit reports whether the record increased the account's balance.
func (t Transaction) IsCredit() bool {
	return t.Type == TransactionReceived || t.Type == TransactionCoupon || t.Type == TransactionAdBonus
}

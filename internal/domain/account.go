package domain

// Role determines which screens and capabilities an account sees.
type Role string

const (
	RoleUser     Role = "USER"
	RoleAdmin    Role = "ADMIN"
	RoleSupport  Role = "SUPPORT"
	RoleReceiver Role = "RECEIVER"
)

// Account is one registered participant: identity, balances, progression
// counters, status and transaction history. Mutated in place by the engine
// and never deleted (ban is a flag, not removal).
type Account struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Phone      string  `json:"phone"`
	Email      string  `json:"email"`
	Coins      float64 `json:"coins"`
	AdCoins    float64 `json:"adCoins"`
	Level      int     `json:"level"`
	Invites    int     `json:"invites"`
	TapsToday  int     `json:"tapsToday"`
	IsBanned   bool    `json:"isBanned"`
	Role       Role    `json:"role"`
	ReferralID string  `json:"referralId"`

	// ClaimedCoupons holds the canonical codes already credited to this
	// account, preventing re-redemption.
	ClaimedCoupons      []string `json:"claimedCoupons"`
	TapsSinceLastCoupon int      `json:"tapsSinceLastCoupon"`

	// Transactions is newest-first and append-only.
	Transactions []Transaction `json:"transactions"`
}

// TotalBalance is the spendable sum of both sub-balances.
func (a *Account) TotalBalance() float64 {
	return a.Coins + a.AdCoins
}

// HasClaimedCoupon reports whether code was already credited.
func (a *Account) HasClaimedCoupon(code string) bool {
	for _, c := range a.ClaimedCoupons {
		if c == code {
			return true
		}
	}
	return false
}

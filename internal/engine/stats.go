package engine

import (
	"sort"

	"github.com/ethioska/sqboom/internal/domain"
)

// Stats is the admin dashboard overview.
type Stats struct {
	TotalAccounts int     `json:"total_accounts"`
	ActiveToday   int     `json:"active_today"`
	BannedCount   int     `json:"banned_count"`
	TotalCoins    float64 `json:"total_coins"`
	TotalAdCoins  float64 `json:"total_ad_coins"`
}

// Stats aggregates over USER accounts only; agency accounts are bookkeeping.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	var s Stats
	for _, a := range e.accounts {
		if a.Role != domain.RoleUser {
			continue
		}
		s.TotalAccounts++
		if a.TapsToday > 0 {
			s.ActiveToday++
		}
		if a.IsBanned {
			s.BannedCount++
		}
		s.TotalCoins += a.Coins
		s.TotalAdCoins += a.AdCoins
	}
	return s
}

// TopAccounts returns up to limit accounts ordered by total balance.
func (e *Engine) TopAccounts(limit int) []domain.Account {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]domain.Account, 0, len(e.accounts))
	for _, a := range e.accounts {
		if a.Role == domain.RoleUser && !a.IsBanned {
			out = append(out, cloneAccount(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TotalBalance() > out[j].TotalBalance()
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

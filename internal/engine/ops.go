package engine

import (
	"fmt"
	"strings"

	"github.com/ethioska/sqboom/internal/domain"
	"github.com/ethioska/sqboom/internal/levels"
)

// TapResult is the snapshot returned by a successful tap.
type TapResult struct {
	Coins       float64
	AdCoins     float64
	Level       int
	TapsToday   int
	CoinsPerTap float64
	LeveledUp   bool

	// UnlockedCoupon carries the coupon code exactly once, on the tap that
	// reached the configured threshold.
	UnlockedCoupon string
}

// Tap accrues one tap for the account. It silently no-ops when the account
// is unknown or banned, the daily limit is reached, or the previous tap was
// inside the debounce window.
func (e *Engine) Tap(id string) (TapResult, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a := e.find(id)
	if a == nil || a.IsBanned || a.TapsToday >= e.cfg.DailyTapLimit {
		return TapResult{}, false
	}

	now := e.now()
	if last, ok := e.lastTap[id]; ok && now.Sub(last) < e.cfg.TapDebounce {
		return TapResult{}, false
	}
	e.lastTap[id] = now

	level, ok := levels.Find(a.Level)
	if !ok {
		return TapResult{}, false
	}

	a.Coins += level.CoinsPerTap
	a.TapsToday++
	a.TapsSinceLastCoupon++

	var unlocked string
	if e.coupon.IsEnabled && a.TapsSinceLastCoupon >= e.coupon.RequiredTaps {
		unlocked = e.coupon.Code
		a.TapsSinceLastCoupon = 0
	}

	leveled := e.evaluateLevelUp(a)
	e.persistAccounts()

	return TapResult{
		Coins:          a.Coins,
		AdCoins:        a.AdCoins,
		Level:          a.Level,
		TapsToday:      a.TapsToday,
		CoinsPerTap:    level.CoinsPerTap,
		LeveledUp:      leveled,
		UnlockedCoupon: unlocked,
	}, true
}

// ClaimAdBonus credits the fixed reward to both balances and starts the
// cooldown. Returns false while the cooldown is running.
func (e *Engine) ClaimAdBonus(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	a := e.find(id)
	if a == nil {
		return false
	}

	now := e.now()
	if ready, ok := e.adBonusReady[id]; ok && now.Before(ready) {
		return false
	}

	a.AdCoins += e.cfg.AdBonusCoins
	a.Coins += e.cfg.AdBonusCoins
	a.Transactions = append([]domain.Transaction{{
		ID:          e.newTransactionID("txn_"),
		Type:        domain.TransactionAdBonus,
		Amount:      e.cfg.AdBonusCoins,
		Description: "Claimed Ad Bonus",
		Timestamp:   now.UnixMilli(),
	}}, a.Transactions...)

	e.evaluateLevelUp(a)
	e.adBonusReady[id] = now.Add(e.cfg.AdBonusCooldown)
	e.persistAccounts()
	return true
}

// RedeemCoupon credits the configured reward when the code matches
// case-insensitively and was not claimed before. Redemption is idempotent:
// the second attempt with the same code fails without touching the account.
func (e *Engine) RedeemCoupon(id, code string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.coupon.IsEnabled {
		return false
	}
	a := e.find(id)
	if a == nil {
		return false
	}
	if !strings.EqualFold(strings.TrimSpace(code), e.coupon.Code) {
		return false
	}
	if a.HasClaimedCoupon(e.coupon.Code) {
		return false
	}

	a.Coins += e.coupon.Reward
	a.ClaimedCoupons = append(a.ClaimedCoupons, e.coupon.Code)
	a.Transactions = append([]domain.Transaction{{
		ID:          e.newTransactionID("txn_"),
		Type:        domain.TransactionCoupon,
		Amount:      e.coupon.Reward,
		Description: fmt.Sprintf("Redeemed coupon: %s", e.coupon.Code),
		Timestamp:   e.now().UnixMilli(),
	}}, a.Transactions...)

	e.evaluateLevelUp(a)
	e.persistAccounts()
	return true
}

// Transfer moves amount from sender to recipient, all or nothing. The
// sender's adCoins drain first; the recipient is credited to coins only.
// Both sides get a history record stamped with the same timestamp.
func (e *Engine) Transfer(senderID, recipientID string, amount float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if amount <= 0 || senderID == recipientID {
		return false
	}
	sender := e.find(senderID)
	recipient := e.find(recipientID)
	if sender == nil || recipient == nil {
		return false
	}
	if amount > sender.TotalBalance() {
		return false
	}

	if amount <= sender.AdCoins {
		sender.AdCoins -= amount
	} else {
		fromAd := sender.AdCoins
		sender.AdCoins = 0
		sender.Coins -= amount - fromAd
	}
	recipient.Coins += amount

	ts := e.now().UnixMilli()
	sender.Transactions = append([]domain.Transaction{{
		ID:          e.newTransactionID("txn_sent_"),
		Type:        domain.TransactionSent,
		Amount:      amount,
		Description: fmt.Sprintf("Transferred to ID: %s", recipientID),
		Timestamp:   ts,
	}}, sender.Transactions...)
	recipient.Transactions = append([]domain.Transaction{{
		ID:          e.newTransactionID("txn_received_"),
		Type:        domain.TransactionReceived,
		Amount:      amount,
		Description: fmt.Sprintf("Received from ID: %s", senderID),
		Timestamp:   ts,
	}}, recipient.Transactions...)

	e.evaluateLevelUp(recipient)
	e.persistAccounts()
	return true
}

// ToggleBan flips the ban flag. Balances and history are untouched. The
// engine trusts its caller to have authorized the action.
func (e *Engine) ToggleBan(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	a := e.find(id)
	if a == nil {
		return false
	}
	a.IsBanned = !a.IsBanned
	e.persistAccounts()
	return true
}

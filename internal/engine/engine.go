// Package engine owns the account collection and applies every state
// transition: taps, level-ups, ad bonuses, coupon redemption, transfers,
// bans and registration. All operations are serialized behind one mutex and
// persist synchronously to the key-value store after each change.
package engine

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/ethioska/sqboom/internal/domain"
	"github.com/ethioska/sqboom/internal/kv"
	"github.com/ethioska/sqboom/internal/levels"
	"github.com/ethioska/sqboom/internal/logger"
)

// Config fixes the engine's tunables and the agency allow-list.
type Config struct {
	DailyTapLimit   int
	AdBonusCoins    float64
	AdBonusCooldown time.Duration
	TapDebounce     time.Duration
	PrimaryAgencyID string
	Agencies        []domain.Agency
}

// Engine is the authoritative in-memory state. Callers never receive
// pointers into it; every accessor returns copies.
type Engine struct {
	mu    sync.Mutex
	store kv.Store
	cfg   Config

	accounts []*domain.Account
	platform domain.PlatformSettings
	coupon   domain.CouponSettings

	// Session-scoped timers, not persisted: the tap debounce window and the
	// per-account ad bonus cooldown.
	lastTap      map[string]time.Time
	adBonusReady map[string]time.Time

	now func() time.Time
}

// New loads persisted state from the store. Missing or corrupt blobs fall
// back to the built-in defaults; loading never fails hard.
func New(store kv.Store, cfg Config) *Engine {
	e := &Engine{
		store:        store,
		cfg:          cfg,
		lastTap:      make(map[string]time.Time),
		adBonusReady: make(map[string]time.Time),
		now:          time.Now,
	}
	e.load()
	return e
}

func (e *Engine) load() {
	ctx := context.Background()

	e.accounts = defaultAccounts(e.cfg.Agencies)
	if data, err := e.store.Get(ctx, kv.KeyAccounts); err == nil {
		var accounts []*domain.Account
		if jsonErr := json.Unmarshal(data, &accounts); jsonErr != nil {
			logger.Error("corrupt accounts blob, using defaults", "error", jsonErr)
		} else {
			e.accounts = accounts
		}
	} else if err != kv.ErrNotFound {
		logger.Error("failed to read accounts, using defaults", "error", err)
	}

	e.platform = domain.PlatformSettings{EtbRate: 100}
	if data, err := e.store.Get(ctx, kv.KeyPlatformSettings); err == nil {
		var p domain.PlatformSettings
		if jsonErr := json.Unmarshal(data, &p); jsonErr != nil {
			logger.Error("corrupt platform settings, using defaults", "error", jsonErr)
		} else {
			e.platform = p
		}
	}

	e.coupon = domain.CouponSettings{RequiredTaps: 100}
	if data, err := e.store.Get(ctx, kv.KeyCouponSettings); err == nil {
		var c domain.CouponSettings
		if jsonErr := json.Unmarshal(data, &c); jsonErr != nil {
			logger.Error("corrupt coupon settings, using defaults", "error", jsonErr)
		} else {
			e.coupon = c
		}
	}
}

// defaultAccounts seeds one account per verified agency so transfer targets
// and chat contacts exist on a fresh install.
func defaultAccounts(agencies []domain.Agency) []*domain.Account {
	accounts := make([]*domain.Account, 0, len(agencies))
	for _, a := range agencies {
		accounts = append(accounts, &domain.Account{
			ID:             a.ID,
			Name:           a.Name,
			Email:          a.Email,
			Phone:          a.Phone,
			Level:          1,
			Role:           a.Role,
			ClaimedCoupons: []string{},
			Transactions:   []domain.Transaction{},
		})
	}
	return accounts
}

// persistAccounts writes the full collection. A failed write loses that
// update only; the in-memory state stays authoritative.
func (e *Engine) persistAccounts() {
	data, err := json.Marshal(e.accounts)
	if err != nil {
		logger.Error("failed to marshal accounts", "error", err)
		return
	}
	if err := e.store.Set(context.Background(), kv.KeyAccounts, data); err != nil {
		logger.Error("failed to persist accounts", "error", err)
	}
}

func (e *Engine) persistSettings() {
	ctx := context.Background()
	if data, err := json.Marshal(e.platform); err == nil {
		if err := e.store.Set(ctx, kv.KeyPlatformSettings, data); err != nil {
			logger.Error("failed to persist platform settings", "error", err)
		}
	}
	if data, err := json.Marshal(e.coupon); err == nil {
		if err := e.store.Set(ctx, kv.KeyCouponSettings, data); err != nil {
			logger.Error("failed to persist coupon settings", "error", err)
		}
	}
}

func (e *Engine) find(id string) *domain.Account {
	for _, a := range e.accounts {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func cloneAccount(a *domain.Account) domain.Account {
	out := *a
	out.ClaimedCoupons = append([]string(nil), a.ClaimedCoupons...)
	out.Transactions = append([]domain.Transaction(nil), a.Transactions...)
	return out
}

// evaluateLevelUp advances the account by at most one level. Only the
// immediately-next level is considered; a reward large enough to satisfy
// several thresholds still moves one level per mutation. AGENCY_APPROVAL
// requirements never auto-satisfy. On level-up the coins and invites
// counters reset to zero.
func (e *Engine) evaluateLevelUp(a *domain.Account) bool {
	current, ok := levels.Find(a.Level)
	if !ok {
		return false
	}
	next, ok := levels.Next(current)
	if !ok {
		return false
	}

	met := false
	switch next.Requirement.Type {
	case levels.RequirementCoins:
		met = a.Coins >= next.Requirement.Value
	case levels.RequirementInvites:
		met = float64(a.Invites) >= next.Requirement.Value
	case levels.RequirementAgencyApproval:
	}
	if !met {
		return false
	}

	a.Level++
	a.Coins = 0
	a.Invites = 0
	return true
}

// Account returns a copy of the account, when it exists.
func (e *Engine) Account(id string) (domain.Account, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a := e.find(id)
	if a == nil {
		return domain.Account{}, false
	}
	return cloneAccount(a), true
}

// AccountByEmail resolves an account by case-insensitive email match.
func (e *Engine) AccountByEmail(email string) (domain.Account, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a := e.findByEmail(email)
	if a == nil {
		return domain.Account{}, false
	}
	return cloneAccount(a), true
}

// Accounts returns copies of every account.
func (e *Engine) Accounts() []domain.Account {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.Account, 0, len(e.accounts))
	for _, a := range e.accounts {
		out = append(out, cloneAccount(a))
	}
	return out
}

// Transactions returns up to limit newest-first history records.
func (e *Engine) Transactions(id string, limit int) []domain.Transaction {
	e.mu.Lock()
	defer e.mu.Unlock()
	a := e.find(id)
	if a == nil {
		return nil
	}
	if limit <= 0 || limit > len(a.Transactions) {
		limit = len(a.Transactions)
	}
	return append([]domain.Transaction(nil), a.Transactions[:limit]...)
}

// PlatformSettings returns the current platform configuration.
func (e *Engine) PlatformSettings() domain.PlatformSettings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.platform
}

// CouponSettings returns the current coupon configuration.
func (e *Engine) CouponSettings() domain.CouponSettings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.coupon
}

// UpdateSettings replaces both settings blobs. Authorization is the
// caller's concern.
func (e *Engine) UpdateSettings(platform domain.PlatformSettings, coupon domain.CouponSettings) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.platform = platform
	e.coupon = coupon
	e.persistSettings()
}

// ExchangeRate returns the current coin/ETB rate.
func (e *Engine) ExchangeRate() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.platform.EtbRate
}

// SetExchangeRate updates only the exchange rate; used by the simulated
// market drift.
func (e *Engine) SetExchangeRate(rate float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if rate < 1 {
		rate = 1
	}
	e.platform.EtbRate = rate
	e.persistSettings()
}

// Agencies returns the verified agency allow-list.
func (e *Engine) Agencies() []domain.Agency {
	return append([]domain.Agency(nil), e.cfg.Agencies...)
}

// AdBonusReadyAt reports when the account may claim the ad bonus again.
// The zero time means it is claimable now.
func (e *Engine) AdBonusReadyAt(id string) time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.adBonusReady[id]
}

func (e *Engine) newTransactionID(prefix string) string {
	return prefix + strconv.FormatInt(e.now().UnixMilli(), 10)
}

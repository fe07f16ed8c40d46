package engine

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/ethioska/sqboom/internal/domain"
	"github.com/ethioska/sqboom/internal/kv"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func testConfig() Config {
	return Config{
		DailyTapLimit:   5000,
		AdBonusCoins:    50,
		AdBonusCooldown: time.Hour,
		TapDebounce:     100 * time.Millisecond,
		PrimaryAgencyID: "SQB_AGENCY_01",
		Agencies: []domain.Agency{
			{ID: "SQB_AGENCY_01", Name: "HQ", Email: "admin@sqboom.io", Role: domain.RoleAdmin},
			{ID: "SQB_SUPPORT_01", Name: "Support", Email: "support@sqboom.io", Role: domain.RoleSupport},
		},
	}
}

func newTestEngine(t *testing.T, cfg Config) (*Engine, *fakeClock, kv.Store) {
	t.Helper()
	store := kv.NewMemory()
	e := New(store, cfg)
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	e.now = clk.Now
	return e, clk, store
}

func register(t *testing.T, e *Engine, clk *fakeClock, email string) domain.Account {
	t.Helper()
	// Account ids derive from the clock; keep registrations apart.
	clk.Advance(time.Second)
	a, ok := e.RegisterOrLogin(RegistrationDetails{FullName: "Test User", Email: email, Phone: "+251900000000"})
	if !ok {
		t.Fatalf("registration failed for %s", email)
	}
	return a
}

// tap advances the clock past the debounce window before each tap.
func tap(t *testing.T, e *Engine, clk *fakeClock, id string) (TapResult, bool) {
	t.Helper()
	clk.Advance(200 * time.Millisecond)
	return e.Tap(id)
}

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestTapAccruesCoins(t *testing.T) {
	e, clk, _ := newTestEngine(t, testConfig())
	a := register(t, e, clk, "tapper@example.com")

	res, ok := tap(t, e, clk, a.ID)
	if !ok {
		t.Fatal("tap rejected")
	}
	if !almost(res.Coins, 0.002) {
		t.Fatalf("coins = %v; want 0.002", res.Coins)
	}
	if res.TapsToday != 1 || res.Level != 1 {
		t.Fatalf("tapsToday=%d level=%d; want 1, 1", res.TapsToday, res.Level)
	}

	got, _ := e.Account(a.ID)
	if len(got.Transactions) != 0 {
		t.Fatalf("taps must not write history records, got %d", len(got.Transactions))
	}
}

func TestTapDebounce(t *testing.T) {
	e, clk, _ := newTestEngine(t, testConfig())
	a := register(t, e, clk, "fast@example.com")

	if _, ok := tap(t, e, clk, a.ID); !ok {
		t.Fatal("first tap rejected")
	}
	// Same instant: inside the debounce window.
	if _, ok := e.Tap(a.ID); ok {
		t.Fatal("tap inside debounce window must be dropped")
	}
	clk.Advance(150 * time.Millisecond)
	if _, ok := e.Tap(a.ID); !ok {
		t.Fatal("tap after debounce window rejected")
	}
}

func TestTapDailyLimit(t *testing.T) {
	cfg := testConfig()
	cfg.DailyTapLimit = 3
	e, clk, _ := newTestEngine(t, cfg)
	a := register(t, e, clk, "limited@example.com")

	for i := 0; i < 3; i++ {
		if _, ok := tap(t, e, clk, a.ID); !ok {
			t.Fatalf("tap %d rejected before limit", i+1)
		}
	}
	if _, ok := tap(t, e, clk, a.ID); ok {
		t.Fatal("tap beyond daily limit must be a no-op")
	}

	got, _ := e.Account(a.ID)
	if got.TapsToday != 3 {
		t.Fatalf("tapsToday = %d; want 3", got.TapsToday)
	}
	if !almost(got.Coins, 3*0.002) {
		t.Fatalf("coins = %v; want %v", got.Coins, 3*0.002)
	}
}

func TestTapBannedAndUnknown(t *testing.T) {
	e, clk, _ := newTestEngine(t, testConfig())
	a := register(t, e, clk, "banned@example.com")

	if !e.ToggleBan(a.ID) {
		t.Fatal("ToggleBan failed")
	}
	if _, ok := tap(t, e, clk, a.ID); ok {
		t.Fatal("banned account must not tap")
	}
	if _, ok := tap(t, e, clk, "SQB_MISSING"); ok {
		t.Fatal("unknown account must not tap")
	}
}

func TestCouponUnlockSignal(t *testing.T) {
	e, clk, _ := newTestEngine(t, testConfig())
	e.UpdateSettings(domain.PlatformSettings{EtbRate: 100}, domain.CouponSettings{
		Code: "BOOM24", Reward: 10, RequiredTaps: 2, IsEnabled: true,
	})
	a := register(t, e, clk, "coupon@example.com")

	res, _ := tap(t, e, clk, a.ID)
	if res.UnlockedCoupon != "" {
		t.Fatalf("unexpected unlock on tap 1: %q", res.UnlockedCoupon)
	}
	res, _ = tap(t, e, clk, a.ID)
	if res.UnlockedCoupon != "BOOM24" {
		t.Fatalf("unlock on tap 2 = %q; want BOOM24", res.UnlockedCoupon)
	}
	res, _ = tap(t, e, clk, a.ID)
	if res.UnlockedCoupon != "" {
		t.Fatal("counter must reset after unlock")
	}

	got, _ := e.Account(a.ID)
	if got.TapsSinceLastCoupon != 1 {
		t.Fatalf("tapsSinceLastCoupon = %d; want 1", got.TapsSinceLastCoupon)
	}
}

func TestCouponCounterDoesNotResetWhileDisabled(t *testing.T) {
	e, clk, _ := newTestEngine(t, testConfig())
	a := register(t, e, clk, "idle@example.com")

	for i := 0; i < 5; i++ {
		tap(t, e, clk, a.ID)
	}
	got, _ := e.Account(a.ID)
	if got.TapsSinceLastCoupon != 5 {
		t.Fatalf("tapsSinceLastCoupon = %d; want 5", got.TapsSinceLastCoupon)
	}
}

func TestLevelUpThreshold(t *testing.T) {
	e, clk, _ := newTestEngine(t, testConfig())
	a := register(t, e, clk, "climber@example.com")

	// Just below: level 2 needs 100 coins.
	e.mu.Lock()
	e.find(a.ID).Coins = 99
	e.mu.Unlock()
	res, _ := tap(t, e, clk, a.ID)
	if res.Level != 1 || res.LeveledUp {
		t.Fatalf("level = %d below threshold; want 1", res.Level)
	}

	e.mu.Lock()
	e.find(a.ID).Coins = 99.999
	e.mu.Unlock()
	res, _ = tap(t, e, clk, a.ID)
	if res.Level != 2 || !res.LeveledUp {
		t.Fatalf("level = %d at threshold; want 2", res.Level)
	}
	if res.Coins != 0 {
		t.Fatalf("coins after level-up = %v; want 0", res.Coins)
	}

	got, _ := e.Account(a.ID)
	if got.Invites != 0 {
		t.Fatalf("invites after level-up = %d; want 0", got.Invites)
	}
}

func TestLevelUpDoesNotCascade(t *testing.T) {
	e, clk, _ := newTestEngine(t, testConfig())
	e.UpdateSettings(domain.PlatformSettings{EtbRate: 100}, domain.CouponSettings{
		Code: "MEGA", Reward: 100000, RequiredTaps: 100, IsEnabled: true,
	})
	a := register(t, e, clk, "jackpot@example.com")

	if !e.RedeemCoupon(a.ID, "MEGA") {
		t.Fatal("redeem failed")
	}
	got, _ := e.Account(a.ID)
	if got.Level != 2 {
		t.Fatalf("level = %d after one oversized reward; want exactly 2", got.Level)
	}
}

func TestAgencyApprovalNeverAutoSatisfies(t *testing.T) {
	e, clk, _ := newTestEngine(t, testConfig())
	a := register(t, e, clk, "stalled@example.com")

	e.mu.Lock()
	acc := e.find(a.ID)
	acc.Level = 6
	acc.Coins = 1_000_000
	acc.Invites = 1000
	e.mu.Unlock()

	tap(t, e, clk, a.ID)
	got, _ := e.Account(a.ID)
	if got.Level != 6 {
		t.Fatalf("level = %d; agency approval gate must stall progression at 6", got.Level)
	}
}

func TestInviteCreditAndLevelUp(t *testing.T) {
	e, clk, _ := newTestEngine(t, testConfig())
	inviter := register(t, e, clk, "inviter@example.com")

	e.mu.Lock()
	acc := e.find(inviter.ID)
	acc.Level = 3
	acc.Invites = 4
	e.mu.Unlock()

	clk.Advance(time.Second)
	_, ok := e.RegisterOrLogin(RegistrationDetails{FullName: "Friend", Email: "friend@example.com", ReferralID: inviter.ID})
	if !ok {
		t.Fatal("referral registration failed")
	}

	got, _ := e.Account(inviter.ID)
	if got.Level != 4 {
		t.Fatalf("inviter level = %d; want 4 (5 invites meets the requirement)", got.Level)
	}
	if got.Invites != 0 {
		t.Fatalf("invites after level-up = %d; want 0", got.Invites)
	}
}

func TestAdBonus(t *testing.T) {
	e, clk, _ := newTestEngine(t, testConfig())
	a := register(t, e, clk, "bonus@example.com")

	if !e.ClaimAdBonus(a.ID) {
		t.Fatal("first claim rejected")
	}
	got, _ := e.Account(a.ID)
	if !almost(got.Coins, 50) || !almost(got.AdCoins, 50) {
		t.Fatalf("balances = %v/%v; the bonus credits both; want 50/50", got.Coins, got.AdCoins)
	}
	if len(got.Transactions) != 1 || got.Transactions[0].Type != domain.TransactionAdBonus {
		t.Fatalf("expected one AD_BONUS record, got %+v", got.Transactions)
	}

	// Cooldown running.
	clk.Advance(30 * time.Minute)
	if e.ClaimAdBonus(a.ID) {
		t.Fatal("claim inside cooldown must fail")
	}
	got, _ = e.Account(a.ID)
	if !almost(got.AdCoins, 50) {
		t.Fatalf("adCoins changed on rejected claim: %v", got.AdCoins)
	}

	clk.Advance(31 * time.Minute)
	if !e.ClaimAdBonus(a.ID) {
		t.Fatal("claim after cooldown rejected")
	}
}

func TestRedeemCouponIdempotent(t *testing.T) {
	e, clk, _ := newTestEngine(t, testConfig())
	e.UpdateSettings(domain.PlatformSettings{EtbRate: 100}, domain.CouponSettings{
		Code: "BOOM24", Reward: 25, RequiredTaps: 100, IsEnabled: true,
	})
	a := register(t, e, clk, "redeemer@example.com")

	if !e.RedeemCoupon(a.ID, "  boom24 ") {
		t.Fatal("case-insensitive redeem failed")
	}
	got, _ := e.Account(a.ID)
	if !almost(got.Coins, 25) {
		t.Fatalf("coins = %v; want 25", got.Coins)
	}

	if e.RedeemCoupon(a.ID, "BOOM24") {
		t.Fatal("second redeem of the same code must fail")
	}
	got, _ = e.Account(a.ID)
	if !almost(got.Coins, 25) || len(got.Transactions) != 1 {
		t.Fatalf("repeat redeem mutated the account: coins=%v txs=%d", got.Coins, len(got.Transactions))
	}
}

func TestRedeemCouponRejections(t *testing.T) {
	e, clk, _ := newTestEngine(t, testConfig())
	a := register(t, e, clk, "nobody@example.com")

	if e.RedeemCoupon(a.ID, "ANY") {
		t.Fatal("redeem with coupon system disabled must fail")
	}

	e.UpdateSettings(domain.PlatformSettings{EtbRate: 100}, domain.CouponSettings{
		Code: "REAL", Reward: 5, RequiredTaps: 10, IsEnabled: true,
	})
	if e.RedeemCoupon(a.ID, "WRONG") {
		t.Fatal("wrong code must fail")
	}
	if e.RedeemCoupon("SQB_MISSING", "REAL") {
		t.Fatal("unknown account must fail")
	}
}

func TestTransferDebitOrderAndConservation(t *testing.T) {
	e, clk, _ := newTestEngine(t, testConfig())
	sender := register(t, e, clk, "sender@example.com")
	recipient := register(t, e, clk, "recipient@example.com")

	e.mu.Lock()
	s := e.find(sender.ID)
	s.Coins = 10
	s.AdCoins = 3
	e.mu.Unlock()

	totalBefore := 13.0
	if !e.Transfer(sender.ID, recipient.ID, 5) {
		t.Fatal("transfer rejected")
	}

	gotS, _ := e.Account(sender.ID)
	gotR, _ := e.Account(recipient.ID)
	if !almost(gotS.AdCoins, 0) || !almost(gotS.Coins, 8) {
		t.Fatalf("sender = %v coins / %v adCoins; want 8 / 0 (adCoins drain first)", gotS.Coins, gotS.AdCoins)
	}
	if !almost(gotR.Coins, 5) || !almost(gotR.AdCoins, 0) {
		t.Fatalf("recipient = %v coins / %v adCoins; want 5 / 0", gotR.Coins, gotR.AdCoins)
	}
	if !almost(gotS.TotalBalance()+gotR.TotalBalance(), totalBefore) {
		t.Fatalf("system balance changed: %v; want %v", gotS.TotalBalance()+gotR.TotalBalance(), totalBefore)
	}

	if len(gotS.Transactions) != 1 || gotS.Transactions[0].Type != domain.TransactionSent {
		t.Fatalf("sender history = %+v; want one SENT record", gotS.Transactions)
	}
	if len(gotR.Transactions) != 1 || gotR.Transactions[0].Type != domain.TransactionReceived {
		t.Fatalf("recipient history = %+v; want one RECEIVED record", gotR.Transactions)
	}
	if gotS.Transactions[0].Timestamp != gotR.Transactions[0].Timestamp {
		t.Fatal("paired transfer records must share a timestamp")
	}
}

func TestTransferWithinAdCoins(t *testing.T) {
	e, clk, _ := newTestEngine(t, testConfig())
	sender := register(t, e, clk, "addy@example.com")
	recipient := register(t, e, clk, "peer@example.com")

	e.mu.Lock()
	s := e.find(sender.ID)
	s.Coins = 10
	s.AdCoins = 7
	e.mu.Unlock()

	if !e.Transfer(sender.ID, recipient.ID, 4) {
		t.Fatal("transfer rejected")
	}
	got, _ := e.Account(sender.ID)
	if !almost(got.AdCoins, 3) || !almost(got.Coins, 10) {
		t.Fatalf("sender = %v coins / %v adCoins; want 10 / 3", got.Coins, got.AdCoins)
	}
}

func TestTransferRejections(t *testing.T) {
	e, clk, _ := newTestEngine(t, testConfig())
	sender := register(t, e, clk, "careful@example.com")
	recipient := register(t, e, clk, "target@example.com")

	e.mu.Lock()
	e.find(sender.ID).Coins = 10
	e.mu.Unlock()

	cases := []struct {
		name      string
		from, to  string
		amount    float64
	}{
		{"zero amount", sender.ID, recipient.ID, 0},
		{"negative amount", sender.ID, recipient.ID, -5},
		{"insufficient balance", sender.ID, recipient.ID, 10.01},
		{"unknown recipient", sender.ID, "SQB_MISSING", 1},
		{"unknown sender", "SQB_MISSING", recipient.ID, 1},
		{"self transfer", sender.ID, sender.ID, 1},
	}
	for _, tc := range cases {
		if e.Transfer(tc.from, tc.to, tc.amount) {
			t.Fatalf("%s: transfer must fail", tc.name)
		}
	}

	gotS, _ := e.Account(sender.ID)
	gotR, _ := e.Account(recipient.ID)
	if !almost(gotS.Coins, 10) || len(gotS.Transactions) != 0 || len(gotR.Transactions) != 0 {
		t.Fatal("failed transfers must leave both accounts untouched")
	}
}

func TestRegisterIdempotent(t *testing.T) {
	e, clk, _ := newTestEngine(t, testConfig())
	first := register(t, e, clk, "same@example.com")

	before := len(e.Accounts())
	clk.Advance(time.Second)
	second, ok := e.RegisterOrLogin(RegistrationDetails{FullName: "Other Name", Email: "SAME@Example.COM"})
	if !ok {
		t.Fatal("login failed")
	}
	if second.ID != first.ID {
		t.Fatalf("ids differ: %s vs %s", first.ID, second.ID)
	}
	if got := len(e.Accounts()); got != before {
		t.Fatalf("account count = %d; want %d (no duplicate)", got, before)
	}
	if second.Name != first.Name {
		t.Fatal("login must not mutate the existing account")
	}
}

func TestRegisterAgencyIdentity(t *testing.T) {
	e, clk, _ := newTestEngine(t, testConfig())

	a, ok := e.RegisterOrLogin(RegistrationDetails{FullName: "Boss", Email: "ADMIN@sqboom.io"})
	if !ok {
		t.Fatal("agency registration failed")
	}
	if a.ID != "SQB_AGENCY_01" || a.Role != domain.RoleAdmin {
		t.Fatalf("agency resolution = %s/%s; want SQB_AGENCY_01/ADMIN", a.ID, a.Role)
	}

	// Agency id came from the allow-list; the seeded placeholder is replaced.
	count := 0
	for _, acc := range e.Accounts() {
		if acc.ID == "SQB_AGENCY_01" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("accounts with agency id = %d; want 1", count)
	}

	b := register(t, e, clk, "plain@example.com")
	if b.Role != domain.RoleUser {
		t.Fatalf("role = %s; want USER", b.Role)
	}
	if b.ReferralID != "SQB_AGENCY_01" {
		t.Fatalf("referral = %s; want primary agency default", b.ReferralID)
	}
}

func TestRegisterRejectsEmptyEmail(t *testing.T) {
	e, _, _ := newTestEngine(t, testConfig())
	if _, ok := e.RegisterOrLogin(RegistrationDetails{FullName: "Ghost"}); ok {
		t.Fatal("registration without email must fail")
	}
}

func TestToggleBan(t *testing.T) {
	e, clk, _ := newTestEngine(t, testConfig())
	a := register(t, e, clk, "flagged@example.com")

	e.mu.Lock()
	e.find(a.ID).Coins = 42
	e.mu.Unlock()

	if !e.ToggleBan(a.ID) {
		t.Fatal("ban failed")
	}
	got, _ := e.Account(a.ID)
	if !got.IsBanned || !almost(got.Coins, 42) {
		t.Fatalf("ban must only flip the flag: banned=%v coins=%v", got.IsBanned, got.Coins)
	}

	if !e.ToggleBan(a.ID) {
		t.Fatal("unban failed")
	}
	got, _ = e.Account(a.ID)
	if got.IsBanned {
		t.Fatal("second toggle must unban")
	}

	if e.ToggleBan("SQB_MISSING") {
		t.Fatal("toggling an unknown account must fail")
	}
}

func TestStatePersistsAcrossEngines(t *testing.T) {
	store := kv.NewMemory()
	e := New(store, testConfig())
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	e.now = clk.Now

	a := register(t, e, clk, "durable@example.com")
	tap(t, e, clk, a.ID)
	e.UpdateSettings(domain.PlatformSettings{EtbRate: 120, AdText: "hello"}, domain.CouponSettings{Code: "X", RequiredTaps: 3, IsEnabled: true})

	reloaded := New(store, testConfig())
	got, ok := reloaded.Account(a.ID)
	if !ok {
		t.Fatal("account lost across restart")
	}
	if got.TapsToday != 1 || !almost(got.Coins, 0.002) {
		t.Fatalf("restored account = %+v; want tapsToday 1, coins 0.002", got)
	}
	if reloaded.PlatformSettings().EtbRate != 120 {
		t.Fatalf("platform settings lost: %+v", reloaded.PlatformSettings())
	}
	if !reloaded.CouponSettings().IsEnabled {
		t.Fatal("coupon settings lost")
	}
}

func TestCorruptBlobFallsBackToDefaults(t *testing.T) {
	store := kv.NewMemory()
	ctx := context.Background()
	_ = store.Set(ctx, kv.KeyAccounts, []byte(`{definitely not json`))
	_ = store.Set(ctx, kv.KeyPlatformSettings, []byte(`[42`))

	e := New(store, testConfig())

	if _, ok := e.Account("SQB_AGENCY_01"); !ok {
		t.Fatal("default agency accounts missing after corrupt load")
	}
	if e.PlatformSettings().EtbRate != 100 {
		t.Fatalf("etbRate = %v; want default 100", e.PlatformSettings().EtbRate)
	}
}

func TestBalancesNeverNegative(t *testing.T) {
	e, clk, _ := newTestEngine(t, testConfig())
	sender := register(t, e, clk, "drain@example.com")
	recipient := register(t, e, clk, "sink@example.com")

	e.mu.Lock()
	s := e.find(sender.ID)
	s.Coins = 2
	s.AdCoins = 3
	e.mu.Unlock()

	if !e.Transfer(sender.ID, recipient.ID, 5) {
		t.Fatal("exact-balance transfer rejected")
	}
	got, _ := e.Account(sender.ID)
	if got.Coins < 0 || got.AdCoins < 0 {
		t.Fatalf("negative balance: %v / %v", got.Coins, got.AdCoins)
	}
	if e.Transfer(sender.ID, recipient.ID, 0.01) {
		t.Fatal("transfer from empty balance must fail")
	}
}

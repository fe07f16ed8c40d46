package engine

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/ethioska/sqboom/internal/domain"
	"github.com/ethioska/sqboom/internal/kv"
	"github.com/ethioska/sqboom/internal/logger"
)

// RegistrationDetails is the registration form input.
type RegistrationDetails struct {
	FullName   string
	Phone      string
	Email      string
	ReferralID string
}

// RegisterOrLogin resolves details to an account. A case-insensitive email
// match returns the existing account unchanged (login semantics). Otherwise
// a new account is created: the agency allow-list decides id and role, any
// other email gets a time-derived id and the USER role. The new account's
// referrer defaults to the primary agency.
func (e *Engine) RegisterOrLogin(details RegistrationDetails) (domain.Account, bool) {
	email := strings.TrimSpace(details.Email)
	if email == "" {
		return domain.Account{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if existing := e.findByEmail(email); existing != nil {
		e.rememberLastAccount(existing.ID)
		return cloneAccount(existing), true
	}

	var id string
	role := domain.RoleUser
	for _, agency := range e.cfg.Agencies {
		if strings.EqualFold(agency.Email, email) {
			id = agency.ID
			role = agency.Role
			break
		}
	}
	if id == "" {
		id = generatedID(e.now().UnixMilli())
	}

	referral := details.ReferralID
	if referral == "" {
		referral = e.cfg.PrimaryAgencyID
	}

	account := &domain.Account{
		ID:             id,
		Name:           details.FullName,
		Phone:          details.Phone,
		Email:          email,
		Level:          1,
		Role:           role,
		ReferralID:     referral,
		ClaimedCoupons: []string{},
		Transactions:   []domain.Transaction{},
	}

	// A stale account under an agency id is replaced rather than duplicated.
	kept := e.accounts[:0]
	for _, a := range e.accounts {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	e.accounts = append(kept, account)

	// Registering through an explicit referral credits the inviter.
	if details.ReferralID != "" {
		if inviter := e.find(details.ReferralID); inviter != nil {
			inviter.Invites++
			e.evaluateLevelUp(inviter)
		}
	}

	e.persistAccounts()
	e.rememberLastAccount(id)
	return cloneAccount(account), true
}

func (e *Engine) findByEmail(email string) *domain.Account {
	for _, a := range e.accounts {
		if strings.EqualFold(a.Email, email) {
			return a
		}
	}
	return nil
}

func (e *Engine) rememberLastAccount(id string) {
	data, _ := json.Marshal(id)
	if err := e.store.Set(context.Background(), kv.KeyLastAccountID, data); err != nil {
		logger.Error("failed to persist last account id", "error", err)
	}
}

// generatedID derives an account id from creation time, keeping the last
// six digits of the millisecond clock.
func generatedID(millis int64) string {
	s := strconv.FormatInt(millis, 10)
	if len(s) > 6 {
		s = s[len(s)-6:]
	}
	return "SQB_" + s
}

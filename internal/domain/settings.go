package domain

// PlatformSettings is process-wide configuration, mutable only through the
// admin surface.
type PlatformSettings struct {
	// EtbRate is the exchange rate in coins per ETB.
	EtbRate float64 `json:"etbRate"`
	AdText  string  `json:"adText"`
}

// CouponSettings configures the shared redemption code.
type CouponSettings struct {
	Code         string  `json:"code"`
	Reward       float64 `json:"reward"`
	RequiredTaps int     `json:"requiredTaps"`
	IsEnabled    bool    `json:"isEnabled"`
	Prompt       string  `json:"prompt"`
}

// Theme is the persisted display preference.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Valid reports whether t is one of the two known themes.
func (t Theme) Valid() bool {
	return t == ThemeDark || t == ThemeLight
}

// Package levels holds the static progression table: coins-per-tap rates and
// the requirement gating entry into each level. The table is configuration,
// never mutated at runtime.
package levels

// RequirementType is the kind of gate in front of a level.
type RequirementType string

const (
	// RequirementCoins is met once the account's coins counter reaches the value.
	RequirementCoins RequirementType = "COINS"
	// RequirementInvites is met once the account's invite counter reaches the value.
	RequirementInvites RequirementType = "INVITES"
	// RequirementAgencyApproval never auto-satisfies; progression stalls until
	// external action.
	RequirementAgencyApproval RequirementType = "AGENCY_APPROVAL"
)

// Requirement gates entry into the level it is attached to.
type Requirement struct {
	Type  RequirementType `json:"type"`
	Value float64         `json:"value"`
}

// Level is one progression tier. NextLevel is 0 for the final tier.
// Requirement is what an account on the previous tier must meet to enter.
type Level struct {
	Number      int         `json:"level"`
	CoinsPerTap float64     `json:"ctap"`
	NextLevel   int         `json:"nextLevel"`
	Requirement Requirement `json:"requirement"`
}

// Table is the full ordered level ladder.
var Table = []Level{
	{Number: 1, CoinsPerTap: 0.002, NextLevel: 2},
	{Number: 2, CoinsPerTap: 0.004, NextLevel: 3, Requirement: Requirement{Type: RequirementCoins, Value: 100}},
	{Number: 3, CoinsPerTap: 0.006, NextLevel: 4, Requirement: Requirement{Type: RequirementCoins, Value: 500}},
	{Number: 4, CoinsPerTap: 0.008, NextLevel: 5, Requirement: Requirement{Type: RequirementInvites, Value: 5}},
	{Number: 5, CoinsPerTap: 0.01, NextLevel: 6, Requirement: Requirement{Type: RequirementCoins, Value: 2000}},
	{Number: 6, CoinsPerTap: 0.015, NextLevel: 7, Requirement: Requirement{Type: RequirementInvites, Value: 20}},
	{Number: 7, CoinsPerTap: 0.02, Requirement: Requirement{Type: RequirementAgencyApproval}},
}

// Find returns the level with the given number, or false when it is not in
// the table.
func Find(number int) (Level, bool) {
	for _, l := range Table {
		if l.Number == number {
			return l, true
		}
	}
	return Level{}, false
}

// Next returns the level following l, or false when l is the final tier.
func Next(l Level) (Level, bool) {
	if l.NextLevel == 0 {
		return Level{}, false
	}
	return Find(l.NextLevel)
}

package ogmios

// RewardAccountSummariesParams selects reward accounts by credential. At
// least one of Keys and Scripts must be set.
type RewardAccountSummariesParams struct {
	// Hex-encoded 28-byte verification key hashes or stake addresses
	Keys []string `json:"keys,omitempty" validate:"required_without=Scripts,dive,required"`
	// Hex-encoded 28-byte script hashes
	Scripts []string `json:"scripts,omitempty" validate:"required_without=Keys,dive,required"`
}

type RewardAccountSummary struct {
	Delegate *Delegate  `json:"delegate,omitempty"`
	Rewards  AdaBalance `json:"rewards"`
	Deposit  AdaBalance `json:"deposit"`
}

// Delegate is the stake pool a reward account delegates to.
type Delegate struct {
	ID  string  `json:"id"`
	VRF *string `json:"vrf,omitempty"`
}

// RewardAccountSummaries maps credentials to their summaries.
type RewardAccountSummaries map[string]RewardAccountSummary

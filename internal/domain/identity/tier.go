package identity

// Tier is a user's identity-verification level. Ordering matters: a held
// tier satisfies a requirement iff held >= required.
type Tier int

const (
	TierNone Tier = iota
	TierBasic
	TierVerified
	TierPremium
)

func (t Tier) String() string {
	switch t {
	case TierBasic:
		return "basic"
	case TierVerified:
		return "verified"
	case TierPremium:
		return "premium"
	default:
		return "none"
	}
}

// ParseTier maps the wire representation back to a Tier. Unknown input maps
// to TierNone, the least privileged level.
func ParseTier(s string) Tier {
	switch s {
	case "basic":
		return TierBasic
	case "verified":
		return TierVerified
	case "premium":
		return TierPremium
	default:
		return TierNone
	}
}

// Value bands for tier requirements, in the marketplace's base currency.
const (
	premiumThreshold  = 1_000_000
	verifiedThreshold = 100_000
	basicThreshold    = 10_000
)

// RequiredTier maps an auction's monetary value to the verification tier a
// bidder must hold to participate.
func RequiredTier(value float64) Tier {
	switch {
	case value >= premiumThreshold:
		return TierPremium
	case value >= verifiedThreshold:
		return TierVerified
	case value >= basicThreshold:
		return TierBasic
	default:
		return TierNone
	}
}

// Satisfies reports whether a held tier meets a requirement.
func (t Tier) Satisfies(required Tier) bool {
	return t >= required
}

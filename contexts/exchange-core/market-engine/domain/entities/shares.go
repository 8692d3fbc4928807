package entities

import "math/big"

// PercentBase is the fixed-point scale of one percent. All percentage values
// are integers scaled by this base; sums and comparisons happen in scaled
// integer space, never in floating point.
var PercentBase = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// WholeShare is the scaled representation of 100%.
var WholeShare = new(big.Int).Mul(big.NewInt(100), PercentBase)

// Percent returns n percent as a scaled value.
func Percent(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), PercentBase)
}

// BidShares is the canonical three-way split of a token's sale proceeds.
// A valid set sums exactly to WholeShare.
type BidShares struct {
	Creator   *big.Int
	Owner     *big.Int
	PrevOwner *big.Int
}

// ZeroShares returns an all-zero split, the default for tokens that never had
// shares registered.
func ZeroShares() BidShares {
	return BidShares{
		Creator:   new(big.Int),
		Owner:     new(big.Int),
		PrevOwner: new(big.Int),
	}
}

// Normalized replaces nil percentage fields with zero values so callers can
// do arithmetic without nil checks.
func (s BidShares) Normalized() BidShares {
	return BidShares{
		Creator:   orZero(s.Creator),
		Owner:     orZero(s.Owner),
		PrevOwner: orZero(s.PrevOwner),
	}
}

// Clone returns a deep copy. Stores hand out clones so callers cannot mutate
// registry state through shared big.Int pointers.
func (s BidShares) Clone() BidShares {
	n := s.Normalized()
	return BidShares{
		Creator:   new(big.Int).Set(n.Creator),
		Owner:     new(big.Int).Set(n.Owner),
		PrevOwner: new(big.Int).Set(n.PrevOwner),
	}
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

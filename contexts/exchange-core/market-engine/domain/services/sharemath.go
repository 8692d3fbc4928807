package services

import (
	"math/big"

	"mediex/contexts/exchange-core/market-engine/domain/entities"
)

// SplitShare returns floor(amount * pct / 100%) in scaled integer space.
// Pure and total for any non-negative inputs; the only precision loss is the
// integer floor, so splitting an amount across the three shares can leave a
// remainder of at most two value units.
func SplitShare(pct *big.Int, amount *big.Int) *big.Int {
	if pct == nil || amount == nil || pct.Sign() <= 0 || amount.Sign() <= 0 {
		return new(big.Int)
	}
	out := new(big.Int).Mul(amount, pct)
	return out.Quo(out, entities.WholeShare)
}

// ValidShares reports whether the three percentages sum to exactly 100%.
func ValidShares(shares entities.BidShares) bool {
	n := shares.Normalized()
	if n.Creator.Sign() < 0 || n.Owner.Sign() < 0 || n.PrevOwner.Sign() < 0 {
		return false
	}
	sum := new(big.Int).Add(n.Creator, n.Owner)
	sum.Add(sum, n.PrevOwner)
	return sum.Cmp(entities.WholeShare) == 0
}

// ExceedsWhole reports whether the creator share plus a proposed sell-on
// share overshoots 100%. A bid carrying such a sell-on share would drive the
// owner share negative at the next settlement, so it is rejected up front.
func ExceedsWhole(creator *big.Int, sellOn *big.Int) bool {
	sum := new(big.Int)
	if creator != nil {
		sum.Add(sum, creator)
	}
	if sellOn != nil {
		sum.Add(sum, sellOn)
	}
	return sum.Cmp(entities.WholeShare) > 0
}

// NextShares derives the share split that applies after a sale settles:
// the creator keeps their cut, the sell-on share becomes the previous
// owner's claim on the next resale, and the new owner gets the rest.
func NextShares(current entities.BidShares, sellOn *big.Int) entities.BidShares {
	creator := current.Normalized().Creator
	if sellOn == nil {
		sellOn = new(big.Int)
	}
	owner := new(big.Int).Sub(entities.WholeShare, creator)
	owner.Sub(owner, sellOn)
	return entities.BidShares{
		Creator:   new(big.Int).Set(creator),
		Owner:     owner,
		PrevOwner: new(big.Int).Set(sellOn),
	}
}

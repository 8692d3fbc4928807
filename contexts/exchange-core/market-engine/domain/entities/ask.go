package entities

import (
	"math/big"
	"time"
)

// Ask is the seller-set minimum acceptable price for a token. A zero amount
// means "no ask".
type Ask struct {
	TokenID   uint64
	Amount    *big.Int
	CreatedAt time.Time
}

// Clone returns a deep copy of the ask.
func (a Ask) Clone() Ask {
	out := a
	out.Amount = new(big.Int).Set(orZero(a.Amount))
	return out
}

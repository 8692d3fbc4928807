package entities

import (
	"math/big"
	"strings"
	"time"

	domainerrors "mediex/contexts/exchange-core/market-engine/domain/errors"
)

// Bid is an escrowed offer by one bidder to acquire a token.
// Amount is the nominal bid value; Received is what actually landed in
// custody. The two only differ under a fee-on-transfer settlement asset; for
// the native unit they are equal, but both are carried so settlement always
// disburses from real custody.
type Bid struct {
	TokenID     uint64
	Bidder      string
	Recipient   string
	Amount      *big.Int
	Received    *big.Int
	SellOnShare *big.Int
	CreatedAt   time.Time
}

// NewBid validates bidder, amount and recipient in that order and returns a
// bid with Received initialised to the nominal amount.
func NewBid(
	tokenID uint64,
	bidder string,
	recipient string,
	amount *big.Int,
	sellOnShare *big.Int,
	createdAt time.Time,
) (Bid, error) {
	if strings.TrimSpace(bidder) == "" {
		return Bid{}, domainerrors.ErrInvalidBidder
	}
	if amount == nil || amount.Sign() <= 0 {
		return Bid{}, domainerrors.ErrInvalidAmount
	}
	if strings.TrimSpace(recipient) == "" {
		return Bid{}, domainerrors.ErrInvalidRecipient
	}
	if sellOnShare == nil {
		sellOnShare = new(big.Int)
	}
	return Bid{
		TokenID:     tokenID,
		Bidder:      bidder,
		Recipient:   recipient,
		Amount:      new(big.Int).Set(amount),
		Received:    new(big.Int).Set(amount),
		SellOnShare: new(big.Int).Set(sellOnShare),
		CreatedAt:   createdAt.UTC(),
	}, nil
}

// Clone returns a deep copy of the bid.
func (b Bid) Clone() Bid {
	out := b
	out.Amount = new(big.Int).Set(orZero(b.Amount))
	out.Received = new(big.Int).Set(orZero(b.Received))
	out.SellOnShare = new(big.Int).Set(orZero(b.SellOnShare))
	return out
}

// Matches reports whether the stored bid still equals what the accepting
// caller observed: amount, sell-on share and recipient, field for field.
func (b Bid) Matches(amount *big.Int, sellOnShare *big.Int, recipient string) bool {
	return orZero(b.Amount).Cmp(orZero(amount)) == 0 &&
		orZero(b.SellOnShare).Cmp(orZero(sellOnShare)) == 0 &&
		b.Recipient == recipient
}

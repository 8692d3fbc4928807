package application

import (
	"context"
	"math/big"

	domainerrors "mediex/contexts/exchange-core/market-engine/domain/errors"
	"mediex/contexts/exchange-core/market-engine/domain/services"
)

// ExpectedBid is the bid the accepting caller observed. Settlement aborts
// unless the stored bid still equals it field for field, so a caller can
// never accept a bid that was replaced or withdrawn after they read it.
type ExpectedBid struct {
	Bidder      string
	Recipient   string
	Amount      *big.Int
	SellOnShare *big.Int
}

// AcceptBid settles the named bid against the token.
func (s Service) AcceptBid(ctx context.Context, caller string, tokenID uint64, expected ExpectedBid) error {
	if err := s.authorize(ctx, caller); err != nil {
		return err
	}
	bid, found, err := s.Bids.GetBid(ctx, tokenID, expected.Bidder)
	if err != nil {
		return err
	}
	if !found || bid.Amount == nil || bid.Amount.Sign() == 0 {
		return domainerrors.ErrNoBid
	}
	if !bid.Matches(expected.Amount, expected.SellOnShare, expected.Recipient) {
		return domainerrors.ErrBidMismatch
	}
	if valid, err := s.IsValidBid(ctx, tokenID, bid.Amount); err != nil {
		return err
	} else if !valid {
		return domainerrors.ErrInvalidBid
	}
	return s.finalize(ctx, tokenID, bid.Bidder)
}

// finalize is the settlement engine: it splits the custodied amount, moves
// ownership to the bid recipient, pays the current holder and the creator,
// and rewrites the share split for the next resale cycle. The consumed bid
// leaves the ledger before any funds move. The floor remainder of the split
// stays in custody; the prevOwner percentage is a claim on the next sale,
// never paid out here.
func (s Service) finalize(ctx context.Context, tokenID uint64, bidder string) error {
	logger := ResolveLogger(s.Logger)
	bid, found, err := s.Bids.GetBid(ctx, tokenID, bidder)
	if err != nil {
		return err
	}
	if !found {
		return domainerrors.ErrNoBid
	}
	shares, _, err := s.Shares.GetShares(ctx, tokenID)
	if err != nil {
		return err
	}
	shares = shares.Normalized()

	// Splits come off the custodied amount, not the nominal one, so escrow
	// can never be overdrawn under a fee-on-transfer asset.
	ownerAmount := services.SplitShare(shares.Owner, bid.Received)
	creatorAmount := services.SplitShare(shares.Creator, bid.Received)

	holder, err := s.Registry.OwnerOf(ctx, tokenID)
	if err != nil {
		return err
	}
	creator, err := s.Registry.CreatorOf(ctx, tokenID)
	if err != nil {
		return err
	}

	// The ownership move is the only fallible external call, so it runs
	// before any state mutates: a registry failure aborts with the bid and
	// custody untouched. Payouts still follow the bid deletion.
	if err := s.Registry.TransferOwnership(ctx, tokenID, bid.Recipient); err != nil {
		return err
	}
	if err := s.Bids.DeleteBid(ctx, tokenID, bidder); err != nil {
		return err
	}
	if err := s.Vault.Release(ctx, holder, ownerAmount); err != nil {
		return err
	}
	if err := s.Vault.Release(ctx, creator, creatorAmount); err != nil {
		return err
	}

	next := services.NextShares(shares, bid.SellOnShare)
	if err := s.Shares.PutShares(ctx, tokenID, next); err != nil {
		return err
	}
	if err := s.emitSharesUpdated(ctx, tokenID, next); err != nil {
		return err
	}
	if err := s.appendEvent(ctx, eventBidFinalized, tokenID, map[string]any{
		"token_id":       bid.TokenID,
		"bidder":         bid.Bidder,
		"recipient":      bid.Recipient,
		"amount":         bid.Amount.String(),
		"received":       bid.Received.String(),
		"sell_on_share":  bid.SellOnShare.String(),
		"owner_amount":   ownerAmount.String(),
		"creator_amount": creatorAmount.String(),
		"previous_owner": holder,
	}); err != nil {
		return err
	}

	logger.Info("bid finalized",
		"event", "market_bid_finalized",
		"module", moduleName,
		"layer", "application",
		"token_id", tokenID,
		"bidder", bid.Bidder,
		"recipient", bid.Recipient,
		"owner_amount", ownerAmount.String(),
		"creator_amount", creatorAmount.String(),
		"previous_owner", holder,
	)
	return nil
}

package application

import (
	"context"
	"math/big"

	"mediex/contexts/exchange-core/market-engine/domain/entities"
	domainerrors "mediex/contexts/exchange-core/market-engine/domain/errors"
	"mediex/contexts/exchange-core/market-engine/domain/services"
)

// SetBidInput carries a new bid plus the account the escrow deposit is taken
// from. Spender and bidder usually coincide; they differ when a custodial
// account funds a bid on a bidder's behalf.
type SetBidInput struct {
	Bidder      string
	Recipient   string
	Amount      *big.Int
	SellOnShare *big.Int
	Spender     string
}

// SetBidResult reports the stored bid and whether it auto-matched the ask
// and settled within the same call. SettleErr is set when the bid stored
// successfully but the auto-match settlement attempt failed; the bid stays
// live and can be settled later through an explicit accept.
type SetBidResult struct {
	Bid       entities.Bid
	Settled   bool
	SettleErr error
}

// SetBid places a bid into custody. Any prior live bid by the same bidder is
// withdrawn and refunded before the new one is stored, so one bidder never
// has two amounts in custody for the same token. When the stored bid meets a
// non-zero ask, settlement runs immediately in the same call.
func (s Service) SetBid(ctx context.Context, caller string, tokenID uint64, input SetBidInput) (SetBidResult, error) {
	logger := ResolveLogger(s.Logger)
	if err := s.authorize(ctx, caller); err != nil {
		return SetBidResult{}, err
	}

	shares, _, err := s.Shares.GetShares(ctx, tokenID)
	if err != nil {
		return SetBidResult{}, err
	}
	if services.ExceedsWhole(shares.Normalized().Creator, input.SellOnShare) {
		return SetBidResult{}, domainerrors.ErrInvalidShares
	}

	bid, err := entities.NewBid(tokenID, input.Bidder, input.Recipient, input.Amount, input.SellOnShare, s.now())
	if err != nil {
		return SetBidResult{}, err
	}

	spender := input.Spender
	if spender == "" {
		spender = bid.Bidder
	}

	prior, hadPrior, err := s.Bids.GetBid(ctx, tokenID, bid.Bidder)
	if err != nil {
		return SetBidResult{}, err
	}

	// The new deposit is taken before the prior bid is withdrawn, so a
	// failed deposit aborts with the standing bid untouched. The prior
	// refund still completes before the replacement is stored.
	received, err := s.Vault.Deposit(ctx, spender, bid.Amount)
	if err != nil {
		return SetBidResult{}, err
	}
	bid.Received = new(big.Int).Set(received)

	if hadPrior {
		if err := s.withdrawBid(ctx, prior); err != nil {
			return SetBidResult{}, err
		}
	}

	if err := s.Bids.PutBid(ctx, bid); err != nil {
		return SetBidResult{}, err
	}
	if err := s.appendEvent(ctx, eventBidCreated, tokenID, bidEventData(bid)); err != nil {
		return SetBidResult{}, err
	}
	logger.Info("bid created",
		"event", "market_bid_created",
		"module", moduleName,
		"layer", "application",
		"token_id", tokenID,
		"bidder", bid.Bidder,
		"amount", bid.Amount.String(),
		"received", bid.Received.String(),
		"sell_on_share", bid.SellOnShare.String(),
	)

	// Auto-match is the only path to settlement without an explicit accept.
	// The bid is already committed at this point, so a failure from here on
	// is reported alongside the stored bid instead of unwinding it.
	ask, found, err := s.Asks.GetAsk(ctx, tokenID)
	if err != nil {
		return SetBidResult{Bid: bid, SettleErr: err}, nil
	}
	if found && ask.Amount != nil && ask.Amount.Sign() > 0 && bid.Received.Cmp(ask.Amount) >= 0 {
		if err := s.finalize(ctx, tokenID, bid.Bidder); err != nil {
			logger.Warn("auto-match settlement failed, bid stays open",
				"event", "market_auto_match_failed",
				"module", moduleName,
				"layer", "application",
				"token_id", tokenID,
				"bidder", bid.Bidder,
				"error", err.Error(),
			)
			return SetBidResult{Bid: bid, SettleErr: err}, nil
		}
		return SetBidResult{Bid: bid, Settled: true}, nil
	}
	return SetBidResult{Bid: bid, Settled: false}, nil
}

// RemoveBid withdraws a live bid and refunds the bidder's full custodied
// amount.
func (s Service) RemoveBid(ctx context.Context, caller string, tokenID uint64, bidder string) error {
	if err := s.authorize(ctx, caller); err != nil {
		return err
	}
	bid, found, err := s.Bids.GetBid(ctx, tokenID, bidder)
	if err != nil {
		return err
	}
	if !found {
		return domainerrors.ErrNoBid
	}
	return s.withdrawBid(ctx, bid)
}

// withdrawBid deletes the ledger entry first and only then releases the
// refund. The refund destination may run arbitrary code on receipt, so the
// bid must already be gone when the transfer happens.
func (s Service) withdrawBid(ctx context.Context, bid entities.Bid) error {
	if err := s.Bids.DeleteBid(ctx, bid.TokenID, bid.Bidder); err != nil {
		return err
	}
	if err := s.Vault.Release(ctx, bid.Bidder, bid.Received); err != nil {
		return err
	}
	if err := s.appendEvent(ctx, eventBidRemoved, bid.TokenID, bidEventData(bid)); err != nil {
		return err
	}
	ResolveLogger(s.Logger).Info("bid removed",
		"event", "market_bid_removed",
		"module", moduleName,
		"layer", "application",
		"token_id", bid.TokenID,
		"bidder", bid.Bidder,
		"refunded", bid.Received.String(),
	)
	return nil
}

func bidEventData(bid entities.Bid) map[string]any {
	return map[string]any{
		"token_id":      bid.TokenID,
		"bidder":        bid.Bidder,
		"recipient":     bid.Recipient,
		"amount":        bid.Amount.String(),
		"received":      bid.Received.String(),
		"sell_on_share": bid.SellOnShare.String(),
	}
}

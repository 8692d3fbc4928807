package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"mediex/contexts/exchange-core/market-engine/domain/entities"
	domainerrors "mediex/contexts/exchange-core/market-engine/domain/errors"
	"mediex/contexts/exchange-core/market-engine/domain/services"
	"mediex/contexts/exchange-core/market-engine/ports"
)

const (
	moduleName = "exchange-core/market-engine"

	eventAskCreated    = "market.ask_created"
	eventAskRemoved    = "market.ask_removed"
	eventBidCreated    = "market.bid_created"
	eventBidRemoved    = "market.bid_removed"
	eventSharesUpdated = "market.shares_updated"
	eventBidFinalized  = "market.bid_finalized"
)

// Service is the externally callable market surface. Every mutating
// operation is gated to the single authorized caller bound via Configure;
// reads are open. Operations are all-or-nothing: validations run before any
// state change, and ledger state is always mutated before funds move.
type Service struct {
	Bids     ports.BidLedger
	Asks     ports.AskBoard
	Shares   ports.ShareRegistry
	Binding  ports.BindingStore
	Vault    ports.EscrowVault
	Registry ports.MediaRegistry
	Outbox   ports.OutboxWriter
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Deployer string
	Logger   *slog.Logger
}

// Configure binds the market to its authorized caller. Deployer-only,
// callable exactly once.
func (s Service) Configure(ctx context.Context, caller string, authorizedCaller string) error {
	logger := ResolveLogger(s.Logger)
	if caller != s.Deployer || strings.TrimSpace(caller) == "" {
		return domainerrors.ErrUnauthorized
	}
	if strings.TrimSpace(authorizedCaller) == "" {
		return domainerrors.ErrInvalidConfiguration
	}
	if _, bound, err := s.Binding.GetBinding(ctx); err != nil {
		return err
	} else if bound {
		return domainerrors.ErrAlreadyConfigured
	}
	if err := s.Binding.PutBinding(ctx, authorizedCaller); err != nil {
		return err
	}
	logger.Info("market configured",
		"event", "market_configured",
		"module", moduleName,
		"layer", "application",
		"authorized_caller", authorizedCaller,
	)
	return nil
}

// SetAsk stores the token's asking price. The token must carry a valid share
// split and the price must be non-zero.
func (s Service) SetAsk(ctx context.Context, caller string, tokenID uint64, amount *big.Int) error {
	if err := s.authorize(ctx, caller); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return domainerrors.ErrInvalidAsk
	}
	shares, found, err := s.Shares.GetShares(ctx, tokenID)
	if err != nil {
		return err
	}
	if !found || !services.ValidShares(shares) {
		return domainerrors.ErrInvalidAsk
	}

	ask := entities.Ask{
		TokenID:   tokenID,
		Amount:    new(big.Int).Set(amount),
		CreatedAt: s.now(),
	}
	if err := s.Asks.PutAsk(ctx, ask); err != nil {
		return err
	}
	if err := s.appendEvent(ctx, eventAskCreated, tokenID, map[string]any{
		"token_id": tokenID,
		"amount":   ask.Amount.String(),
	}); err != nil {
		return err
	}

	ResolveLogger(s.Logger).Info("ask created",
		"event", "market_ask_created",
		"module", moduleName,
		"layer", "application",
		"token_id", tokenID,
		"amount", ask.Amount.String(),
	)
	return nil
}

// RemoveAsk clears the stored ask. Removing a token with no ask is a no-op
// that still emits the removal with a zero value, mirroring what was cleared.
func (s Service) RemoveAsk(ctx context.Context, caller string, tokenID uint64) error {
	if err := s.authorize(ctx, caller); err != nil {
		return err
	}
	removed := new(big.Int)
	if ask, found, err := s.Asks.GetAsk(ctx, tokenID); err != nil {
		return err
	} else if found {
		removed = ask.Clone().Amount
	}
	if err := s.Asks.DeleteAsk(ctx, tokenID); err != nil {
		return err
	}
	if err := s.appendEvent(ctx, eventAskRemoved, tokenID, map[string]any{
		"token_id": tokenID,
		"amount":   removed.String(),
	}); err != nil {
		return err
	}

	ResolveLogger(s.Logger).Info("ask removed",
		"event", "market_ask_removed",
		"module", moduleName,
		"layer", "application",
		"token_id", tokenID,
		"amount", removed.String(),
	)
	return nil
}

// SetShares overwrites the token's split. The three percentages must sum to
// exactly 100%; anything else leaves the registry untouched.
func (s Service) SetShares(ctx context.Context, caller string, tokenID uint64, shares entities.BidShares) error {
	if err := s.authorize(ctx, caller); err != nil {
		return err
	}
	if !services.ValidShares(shares) {
		return domainerrors.ErrInvalidShares
	}
	if err := s.Shares.PutShares(ctx, tokenID, shares.Clone()); err != nil {
		return err
	}
	return s.emitSharesUpdated(ctx, tokenID, shares)
}

// CurrentAsk returns the token's asking price, zero when unset.
func (s Service) CurrentAsk(ctx context.Context, tokenID uint64) (*big.Int, error) {
	ask, found, err := s.Asks.GetAsk(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if !found {
		return new(big.Int), nil
	}
	return ask.Clone().Amount, nil
}

// BidFor returns the live bid for (token, bidder).
func (s Service) BidFor(ctx context.Context, tokenID uint64, bidder string) (entities.Bid, bool, error) {
	bid, found, err := s.Bids.GetBid(ctx, tokenID, bidder)
	if err != nil || !found {
		return entities.Bid{}, false, err
	}
	return bid.Clone(), true, nil
}

// SharesFor returns the token's registered split, all-zero when unset.
func (s Service) SharesFor(ctx context.Context, tokenID uint64) (entities.BidShares, bool, error) {
	shares, found, err := s.Shares.GetShares(ctx, tokenID)
	if err != nil {
		return entities.BidShares{}, false, err
	}
	if !found {
		return entities.ZeroShares(), false, nil
	}
	return shares.Clone(), true, nil
}

// IsValidShares reports whether a split sums to exactly 100%.
func (s Service) IsValidShares(shares entities.BidShares) bool {
	return services.ValidShares(shares)
}

// SplitShare exposes the pure split computation.
func (s Service) SplitShare(pct *big.Int, amount *big.Int) *big.Int {
	return services.SplitShare(pct, amount)
}

// IsValidBid reports whether a bid of the given amount could settle against
// the token: non-zero amount and a valid registered share split.
func (s Service) IsValidBid(ctx context.Context, tokenID uint64, amount *big.Int) (bool, error) {
	if amount == nil || amount.Sign() == 0 {
		return false, nil
	}
	shares, found, err := s.Shares.GetShares(ctx, tokenID)
	if err != nil {
		return false, err
	}
	return found && services.ValidShares(shares), nil
}

// EnumerateAsks walks every registry token and returns the ones carrying a
// non-zero ask together with their current holder. Cost is O(tokenCount) per
// call; acceptable while the registry stays small, callers must not treat
// this as a paginated catalog.
func (s Service) EnumerateAsks(ctx context.Context) ([]ports.AskListing, error) {
	count, err := s.Registry.TokenCount(ctx)
	if err != nil {
		return nil, err
	}
	listings := make([]ports.AskListing, 0)
	for tokenID := uint64(0); tokenID < count; tokenID++ {
		ask, found, err := s.Asks.GetAsk(ctx, tokenID)
		if err != nil {
			return nil, err
		}
		if !found || ask.Amount == nil || ask.Amount.Sign() == 0 {
			continue
		}
		owner, err := s.Registry.OwnerOf(ctx, tokenID)
		if err != nil {
			return nil, err
		}
		listings = append(listings, ports.AskListing{
			TokenID:      tokenID,
			Ask:          ask.Clone().Amount,
			CurrentOwner: owner,
		})
	}
	return listings, nil
}

func (s Service) authorize(ctx context.Context, caller string) error {
	bound, found, err := s.Binding.GetBinding(ctx)
	if err != nil {
		return err
	}
	if !found {
		return domainerrors.ErrNotConfigured
	}
	if caller != bound {
		return domainerrors.ErrUnauthorized
	}
	return nil
}

func (s Service) emitSharesUpdated(ctx context.Context, tokenID uint64, shares entities.BidShares) error {
	n := shares.Normalized()
	if err := s.appendEvent(ctx, eventSharesUpdated, tokenID, map[string]any{
		"token_id":        tokenID,
		"creator_share":   n.Creator.String(),
		"owner_share":     n.Owner.String(),
		"prev_owner_share": n.PrevOwner.String(),
	}); err != nil {
		return err
	}
	ResolveLogger(s.Logger).Info("shares updated",
		"event", "market_shares_updated",
		"module", moduleName,
		"layer", "application",
		"token_id", tokenID,
		"creator_share", n.Creator.String(),
		"owner_share", n.Owner.String(),
		"prev_owner_share", n.PrevOwner.String(),
	)
	return nil
}

func (s Service) appendEvent(ctx context.Context, eventType string, tokenID uint64, data map[string]any) error {
	if s.Outbox == nil {
		return nil
	}
	eventID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.Outbox.AppendOutbox(ctx, ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       s.now(),
		SourceService:    "market-engine",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "token_id",
		PartitionKey:     fmt.Sprintf("%d", tokenID),
		Data:             payload,
	})
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

package application_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"mediex/contexts/exchange-core/market-engine/adapters/memory"
	"mediex/contexts/exchange-core/market-engine/application"
	"mediex/contexts/exchange-core/market-engine/domain/entities"
	domainerrors "mediex/contexts/exchange-core/market-engine/domain/errors"
	"mediex/contexts/exchange-core/market-engine/ports"
)

const (
	deployer   = "deployer-1"
	authorized = "market-caller-1"
)

func newTestService(t *testing.T) (application.Service, *memory.Store, *memory.Registry) {
	t.Helper()
	registry := memory.NewRegistry()
	svc, store := newServiceWith(t, registry)
	return svc, store, registry
}

func newServiceWith(t *testing.T, registry ports.MediaRegistry) (application.Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := application.Service{
		Bids:     store,
		Asks:     store,
		Shares:   store,
		Binding:  store,
		Vault:    store,
		Registry: registry,
		Outbox:   store,
		Clock:    store,
		IDGen:    store,
		Deployer: deployer,
	}
	return svc, store
}

// flakyRegistry wraps the in-memory registry with switchable failures so
// settlement paths can be exercised against a misbehaving collaborator.
type flakyRegistry struct {
	*memory.Registry
	failOwnerLookup bool
	failTransfer    bool
}

func (r *flakyRegistry) OwnerOf(ctx context.Context, tokenID uint64) (string, error) {
	if r.failOwnerLookup {
		return "", domainerrors.ErrTokenUnknown
	}
	return r.Registry.OwnerOf(ctx, tokenID)
}

func (r *flakyRegistry) TransferOwnership(ctx context.Context, tokenID uint64, newOwner string) error {
	if r.failTransfer {
		return domainerrors.ErrTokenUnknown
	}
	return r.Registry.TransferOwnership(ctx, tokenID, newOwner)
}

func newConfiguredService(t *testing.T) (application.Service, *memory.Store, *memory.Registry) {
	t.Helper()
	svc, store, registry := newTestService(t)
	if err := svc.Configure(context.Background(), deployer, authorized); err != nil {
		t.Fatalf("configure failed: %v", err)
	}
	return svc, store, registry
}

func standardShares() entities.BidShares {
	return entities.BidShares{
		Creator:   entities.Percent(10),
		Owner:     entities.Percent(90),
		PrevOwner: new(big.Int),
	}
}

func TestConfigureIsDeployerOnlyAndOneShot(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.Configure(ctx, "intruder", authorized); !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for a non-deployer, got %v", err)
	}
	if err := svc.Configure(ctx, deployer, "  "); !errors.Is(err, domainerrors.ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration for a blank caller, got %v", err)
	}
	if err := svc.Configure(ctx, deployer, authorized); err != nil {
		t.Fatalf("configure failed: %v", err)
	}
	if err := svc.Configure(ctx, deployer, "someone-else"); !errors.Is(err, domainerrors.ErrAlreadyConfigured) {
		t.Fatalf("expected already configured on the second call, got %v", err)
	}
}

func TestMutationsRequireConfiguration(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.SetAsk(ctx, authorized, 0, big.NewInt(100)); !errors.Is(err, domainerrors.ErrNotConfigured) {
		t.Fatalf("expected not configured, got %v", err)
	}
	if _, err := svc.SetBid(ctx, authorized, 0, application.SetBidInput{}); !errors.Is(err, domainerrors.ErrNotConfigured) {
		t.Fatalf("expected not configured, got %v", err)
	}
}

func TestMutationsRejectUnboundCallers(t *testing.T) {
	svc, _, registry := newConfiguredService(t)
	ctx := context.Background()
	tokenID := registry.MintToken("creator-1", "owner-1")

	if err := svc.SetShares(ctx, "intruder", tokenID, standardShares()); !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err := svc.RemoveAsk(ctx, deployer, tokenID); !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("the deployer is not the bound caller, got %v", err)
	}
}

func TestSetAskRequiresValidSharesAndNonZeroPrice(t *testing.T) {
	svc, _, registry := newConfiguredService(t)
	ctx := context.Background()
	tokenID := registry.MintToken("creator-1", "owner-1")

	if err := svc.SetAsk(ctx, authorized, tokenID, big.NewInt(100)); !errors.Is(err, domainerrors.ErrInvalidAsk) {
		t.Fatalf("expected invalid ask without registered shares, got %v", err)
	}
	if err := svc.SetShares(ctx, authorized, tokenID, standardShares()); err != nil {
		t.Fatalf("set shares failed: %v", err)
	}
	if err := svc.SetAsk(ctx, authorized, tokenID, big.NewInt(0)); !errors.Is(err, domainerrors.ErrInvalidAsk) {
		t.Fatalf("expected invalid ask for a zero price, got %v", err)
	}
	if err := svc.SetAsk(ctx, authorized, tokenID, big.NewInt(500)); err != nil {
		t.Fatalf("set ask failed: %v", err)
	}
	ask, err := svc.CurrentAsk(ctx, tokenID)
	if err != nil {
		t.Fatalf("current ask failed: %v", err)
	}
	if ask.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("expected ask 500, got %s", ask)
	}
}

func TestSetSharesRejectsBadSplits(t *testing.T) {
	svc, _, registry := newConfiguredService(t)
	tokenID := registry.MintToken("creator-1", "owner-1")

	bad := entities.BidShares{
		Creator: entities.Percent(10),
		Owner:   entities.Percent(80),
	}
	if err := svc.SetShares(context.Background(), authorized, tokenID, bad); !errors.Is(err, domainerrors.ErrInvalidShares) {
		t.Fatalf("expected invalid shares, got %v", err)
	}
	if _, registered, err := svc.SharesFor(context.Background(), tokenID); err != nil || registered {
		t.Fatalf("a rejected split must not register, registered=%v err=%v", registered, err)
	}
}

func TestSetBidRefundThenReplace(t *testing.T) {
	svc, store, registry := newConfiguredService(t)
	ctx := context.Background()
	tokenID := registry.MintToken("creator-1", "owner-1")
	if err := svc.SetShares(ctx, authorized, tokenID, standardShares()); err != nil {
		t.Fatalf("set shares failed: %v", err)
	}
	store.FundAccount("bidder-1", big.NewInt(1000))

	if _, err := svc.SetBid(ctx, authorized, tokenID, application.SetBidInput{
		Bidder:    "bidder-1",
		Recipient: "bidder-1",
		Amount:    big.NewInt(300),
	}); err != nil {
		t.Fatalf("first bid failed: %v", err)
	}
	if got := store.CustodyBalance(); got.Cmp(big.NewInt(300)) != 0 {
		t.Fatalf("expected 300 in custody, got %s", got)
	}

	if _, err := svc.SetBid(ctx, authorized, tokenID, application.SetBidInput{
		Bidder:    "bidder-1",
		Recipient: "bidder-1",
		Amount:    big.NewInt(450),
	}); err != nil {
		t.Fatalf("replacement bid failed: %v", err)
	}

	// Exactly one deposit stays in custody after the replacement.
	if got := store.CustodyBalance(); got.Cmp(big.NewInt(450)) != 0 {
		t.Fatalf("expected 450 in custody after replacement, got %s", got)
	}
	if got := store.BalanceOf("bidder-1"); got.Cmp(big.NewInt(550)) != 0 {
		t.Fatalf("expected bidder balance 550, got %s", got)
	}
	bid, found, err := svc.BidFor(ctx, tokenID, "bidder-1")
	if err != nil || !found {
		t.Fatalf("expected a live bid, found=%v err=%v", found, err)
	}
	if bid.Amount.Cmp(big.NewInt(450)) != 0 {
		t.Fatalf("expected the replacement amount, got %s", bid.Amount)
	}
}

func TestSetBidInsufficientFundsLeavesNoTrace(t *testing.T) {
	svc, store, registry := newConfiguredService(t)
	ctx := context.Background()
	tokenID := registry.MintToken("creator-1", "owner-1")
	store.FundAccount("bidder-1", big.NewInt(100))

	_, err := svc.SetBid(ctx, authorized, tokenID, application.SetBidInput{
		Bidder:    "bidder-1",
		Recipient: "bidder-1",
		Amount:    big.NewInt(300),
	})
	if !errors.Is(err, domainerrors.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if _, found, _ := svc.BidFor(ctx, tokenID, "bidder-1"); found {
		t.Fatalf("a failed deposit must not leave a ledger entry")
	}
	if got := store.CustodyBalance(); got.Sign() != 0 {
		t.Fatalf("custody must stay empty, got %s", got)
	}
}

func TestSetBidFailedReplacementKeepsPriorBid(t *testing.T) {
	svc, store, registry := newConfiguredService(t)
	ctx := context.Background()
	tokenID := registry.MintToken("creator-1", "owner-1")
	store.FundAccount("bidder-1", big.NewInt(300))

	if _, err := svc.SetBid(ctx, authorized, tokenID, application.SetBidInput{
		Bidder:    "bidder-1",
		Recipient: "bidder-1",
		Amount:    big.NewInt(300),
	}); err != nil {
		t.Fatalf("first bid failed: %v", err)
	}

	_, err := svc.SetBid(ctx, authorized, tokenID, application.SetBidInput{
		Bidder:    "bidder-1",
		Recipient: "bidder-1",
		Amount:    big.NewInt(1000),
	})
	if !errors.Is(err, domainerrors.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	// The unfundable replacement must not have touched the standing bid.
	bid, found, err := svc.BidFor(ctx, tokenID, "bidder-1")
	if err != nil || !found {
		t.Fatalf("the prior bid must survive a failed replacement, found=%v err=%v", found, err)
	}
	if bid.Amount.Cmp(big.NewInt(300)) != 0 {
		t.Fatalf("expected the prior amount 300, got %s", bid.Amount)
	}
	if got := store.CustodyBalance(); got.Cmp(big.NewInt(300)) != 0 {
		t.Fatalf("expected the prior custody to stay, got %s", got)
	}
	if got := store.BalanceOf("bidder-1"); got.Sign() != 0 {
		t.Fatalf("no refund must have happened, balance %s", got)
	}
}

func TestAutoMatchFailureLeavesBidOpen(t *testing.T) {
	registry := &flakyRegistry{Registry: memory.NewRegistry()}
	svc, store := newServiceWith(t, registry)
	ctx := context.Background()
	if err := svc.Configure(ctx, deployer, authorized); err != nil {
		t.Fatalf("configure failed: %v", err)
	}
	tokenID := registry.MintToken("creator-1", "owner-1")
	if err := svc.SetShares(ctx, authorized, tokenID, standardShares()); err != nil {
		t.Fatalf("set shares failed: %v", err)
	}
	if err := svc.SetAsk(ctx, authorized, tokenID, big.NewInt(500)); err != nil {
		t.Fatalf("set ask failed: %v", err)
	}
	store.FundAccount("bidder-1", big.NewInt(600))
	registry.failOwnerLookup = true

	result, err := svc.SetBid(ctx, authorized, tokenID, application.SetBidInput{
		Bidder:    "bidder-1",
		Recipient: "bidder-1",
		Amount:    big.NewInt(600),
	})
	if err != nil {
		t.Fatalf("a stored bid must not surface the settlement failure as an error, got %v", err)
	}
	if result.Settled {
		t.Fatalf("the failed match must not report settled")
	}
	if !errors.Is(result.SettleErr, domainerrors.ErrTokenUnknown) {
		t.Fatalf("expected the settlement failure signal, got %v", result.SettleErr)
	}

	// The bid stays live with its custody; an explicit accept can settle it
	// once the registry recovers.
	bid, found, _ := svc.BidFor(ctx, tokenID, "bidder-1")
	if !found || bid.Amount.Cmp(big.NewInt(600)) != 0 {
		t.Fatalf("expected the bid to stay open, found=%v", found)
	}
	if got := store.CustodyBalance(); got.Cmp(big.NewInt(600)) != 0 {
		t.Fatalf("custody must hold the open bid, got %s", got)
	}

	registry.failOwnerLookup = false
	if err := svc.AcceptBid(ctx, authorized, tokenID, application.ExpectedBid{
		Bidder:    "bidder-1",
		Recipient: "bidder-1",
		Amount:    big.NewInt(600),
	}); err != nil {
		t.Fatalf("the recovered registry must allow settlement: %v", err)
	}
	if owner, _ := registry.OwnerOf(ctx, tokenID); owner != "bidder-1" {
		t.Fatalf("expected ownership to move on retry, got %q", owner)
	}
}

func TestAcceptBidTransferFailureChangesNothing(t *testing.T) {
	registry := &flakyRegistry{Registry: memory.NewRegistry()}
	svc, store := newServiceWith(t, registry)
	ctx := context.Background()
	if err := svc.Configure(ctx, deployer, authorized); err != nil {
		t.Fatalf("configure failed: %v", err)
	}
	tokenID := registry.MintToken("creator-1", "owner-1")
	if err := svc.SetShares(ctx, authorized, tokenID, standardShares()); err != nil {
		t.Fatalf("set shares failed: %v", err)
	}
	store.FundAccount("bidder-1", big.NewInt(1000))
	if _, err := svc.SetBid(ctx, authorized, tokenID, application.SetBidInput{
		Bidder:    "bidder-1",
		Recipient: "bidder-1",
		Amount:    big.NewInt(1000),
	}); err != nil {
		t.Fatalf("set bid failed: %v", err)
	}
	registry.failTransfer = true

	err := svc.AcceptBid(ctx, authorized, tokenID, application.ExpectedBid{
		Bidder:    "bidder-1",
		Recipient: "bidder-1",
		Amount:    big.NewInt(1000),
	})
	if !errors.Is(err, domainerrors.ErrTokenUnknown) {
		t.Fatalf("expected the transfer failure to surface, got %v", err)
	}

	// A failed ownership move aborts before any payout or deletion.
	if _, found, _ := svc.BidFor(ctx, tokenID, "bidder-1"); !found {
		t.Fatalf("the bid must survive a failed transfer")
	}
	if got := store.CustodyBalance(); got.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("custody must be untouched, got %s", got)
	}
	if got := store.BalanceOf("owner-1"); got.Sign() != 0 {
		t.Fatalf("the holder must not be paid, got %s", got)
	}
	if got := store.BalanceOf("creator-1"); got.Sign() != 0 {
		t.Fatalf("the creator must not be paid, got %s", got)
	}
	if owner, _ := registry.OwnerOf(ctx, tokenID); owner != "owner-1" {
		t.Fatalf("ownership must not move, got %q", owner)
	}

	registry.failTransfer = false
	if err := svc.AcceptBid(ctx, authorized, tokenID, application.ExpectedBid{
		Bidder:    "bidder-1",
		Recipient: "bidder-1",
		Amount:    big.NewInt(1000),
	}); err != nil {
		t.Fatalf("retry after recovery failed: %v", err)
	}
	if got := store.BalanceOf("owner-1"); got.Cmp(big.NewInt(900)) != 0 {
		t.Fatalf("expected the holder payout on retry, got %s", got)
	}
}

func TestSetBidRejectsExcessiveSellOn(t *testing.T) {
	svc, store, registry := newConfiguredService(t)
	ctx := context.Background()
	tokenID := registry.MintToken("creator-1", "owner-1")
	if err := svc.SetShares(ctx, authorized, tokenID, standardShares()); err != nil {
		t.Fatalf("set shares failed: %v", err)
	}
	store.FundAccount("bidder-1", big.NewInt(1000))

	_, err := svc.SetBid(ctx, authorized, tokenID, application.SetBidInput{
		Bidder:      "bidder-1",
		Recipient:   "bidder-1",
		Amount:      big.NewInt(300),
		SellOnShare: entities.Percent(95),
	})
	if !errors.Is(err, domainerrors.ErrInvalidShares) {
		t.Fatalf("creator 10%% plus sell-on 95%% must be rejected, got %v", err)
	}
}

func TestRemoveBidRefundsInFull(t *testing.T) {
	svc, store, registry := newConfiguredService(t)
	ctx := context.Background()
	tokenID := registry.MintToken("creator-1", "owner-1")
	store.FundAccount("bidder-1", big.NewInt(1000))

	if err := svc.RemoveBid(ctx, authorized, tokenID, "bidder-1"); !errors.Is(err, domainerrors.ErrNoBid) {
		t.Fatalf("expected no bid, got %v", err)
	}

	if _, err := svc.SetBid(ctx, authorized, tokenID, application.SetBidInput{
		Bidder:    "bidder-1",
		Recipient: "bidder-1",
		Amount:    big.NewInt(400),
	}); err != nil {
		t.Fatalf("set bid failed: %v", err)
	}
	if err := svc.RemoveBid(ctx, authorized, tokenID, "bidder-1"); err != nil {
		t.Fatalf("remove bid failed: %v", err)
	}
	if got := store.BalanceOf("bidder-1"); got.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("expected the full balance back, got %s", got)
	}
	if got := store.CustodyBalance(); got.Sign() != 0 {
		t.Fatalf("custody must be empty after the refund, got %s", got)
	}
}

func TestAcceptBidRejectsStaleTerms(t *testing.T) {
	svc, store, registry := newConfiguredService(t)
	ctx := context.Background()
	tokenID := registry.MintToken("creator-1", "owner-1")
	if err := svc.SetShares(ctx, authorized, tokenID, standardShares()); err != nil {
		t.Fatalf("set shares failed: %v", err)
	}
	store.FundAccount("bidder-1", big.NewInt(1000))
	if _, err := svc.SetBid(ctx, authorized, tokenID, application.SetBidInput{
		Bidder:    "bidder-1",
		Recipient: "bidder-1",
		Amount:    big.NewInt(300),
	}); err != nil {
		t.Fatalf("set bid failed: %v", err)
	}

	err := svc.AcceptBid(ctx, authorized, tokenID, application.ExpectedBid{
		Bidder:    "bidder-1",
		Recipient: "bidder-1",
		Amount:    big.NewInt(301),
	})
	if !errors.Is(err, domainerrors.ErrBidMismatch) {
		t.Fatalf("expected bid mismatch, got %v", err)
	}
	if _, found, _ := svc.BidFor(ctx, tokenID, "bidder-1"); !found {
		t.Fatalf("a mismatched accept must leave the bid untouched")
	}
	if got := store.CustodyBalance(); got.Cmp(big.NewInt(300)) != 0 {
		t.Fatalf("custody must be untouched, got %s", got)
	}

	err = svc.AcceptBid(ctx, authorized, tokenID, application.ExpectedBid{
		Bidder: "ghost", Recipient: "ghost", Amount: big.NewInt(300),
	})
	if !errors.Is(err, domainerrors.ErrNoBid) {
		t.Fatalf("expected no bid for an unknown bidder, got %v", err)
	}
}

func TestAcceptBidSettles(t *testing.T) {
	svc, store, registry := newConfiguredService(t)
	ctx := context.Background()
	tokenID := registry.MintToken("creator-1", "owner-1")
	if err := svc.SetShares(ctx, authorized, tokenID, standardShares()); err != nil {
		t.Fatalf("set shares failed: %v", err)
	}
	store.FundAccount("bidder-1", big.NewInt(1000))
	if _, err := svc.SetBid(ctx, authorized, tokenID, application.SetBidInput{
		Bidder:      "bidder-1",
		Recipient:   "recipient-1",
		Amount:      big.NewInt(1000),
		SellOnShare: entities.Percent(20),
	}); err != nil {
		t.Fatalf("set bid failed: %v", err)
	}

	if err := svc.AcceptBid(ctx, authorized, tokenID, application.ExpectedBid{
		Bidder:      "bidder-1",
		Recipient:   "recipient-1",
		Amount:      big.NewInt(1000),
		SellOnShare: entities.Percent(20),
	}); err != nil {
		t.Fatalf("accept bid failed: %v", err)
	}

	if got := store.BalanceOf("owner-1"); got.Cmp(big.NewInt(900)) != 0 {
		t.Fatalf("expected the holder to receive 900, got %s", got)
	}
	if got := store.BalanceOf("creator-1"); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("expected the creator to receive 100, got %s", got)
	}
	owner, err := registry.OwnerOf(ctx, tokenID)
	if err != nil || owner != "recipient-1" {
		t.Fatalf("expected ownership to move to the recipient, got %q err=%v", owner, err)
	}
	if _, found, _ := svc.BidFor(ctx, tokenID, "bidder-1"); found {
		t.Fatalf("the settled bid must leave the ledger")
	}

	shares, registered, err := svc.SharesFor(ctx, tokenID)
	if err != nil || !registered {
		t.Fatalf("shares must stay registered after settlement, err=%v", err)
	}
	if shares.Creator.Cmp(entities.Percent(10)) != 0 ||
		shares.Owner.Cmp(entities.Percent(70)) != 0 ||
		shares.PrevOwner.Cmp(entities.Percent(20)) != 0 {
		t.Fatalf("expected the next split 10/70/20, got %s/%s/%s",
			shares.Creator, shares.Owner, shares.PrevOwner)
	}
}

func TestAutoMatchAtAsk(t *testing.T) {
	svc, store, registry := newConfiguredService(t)
	ctx := context.Background()
	tokenID := registry.MintToken("creator-1", "owner-1")
	if err := svc.SetShares(ctx, authorized, tokenID, standardShares()); err != nil {
		t.Fatalf("set shares failed: %v", err)
	}
	if err := svc.SetAsk(ctx, authorized, tokenID, big.NewInt(500)); err != nil {
		t.Fatalf("set ask failed: %v", err)
	}
	store.FundAccount("bidder-1", big.NewInt(1000))

	result, err := svc.SetBid(ctx, authorized, tokenID, application.SetBidInput{
		Bidder:    "bidder-1",
		Recipient: "bidder-1",
		Amount:    big.NewInt(600),
	})
	if err != nil {
		t.Fatalf("set bid failed: %v", err)
	}
	if !result.Settled {
		t.Fatalf("a bid at or above the ask must settle in the same call")
	}
	owner, _ := registry.OwnerOf(ctx, tokenID)
	if owner != "bidder-1" {
		t.Fatalf("expected the bidder to own the token, got %q", owner)
	}

	// Settlement leaves the ask standing for the next owner to manage.
	ask, err := svc.CurrentAsk(ctx, tokenID)
	if err != nil || ask.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("the ask must survive settlement, got %s err=%v", ask, err)
	}
}

func TestBelowAskDoesNotMatch(t *testing.T) {
	svc, store, registry := newConfiguredService(t)
	ctx := context.Background()
	tokenID := registry.MintToken("creator-1", "owner-1")
	if err := svc.SetShares(ctx, authorized, tokenID, standardShares()); err != nil {
		t.Fatalf("set shares failed: %v", err)
	}
	if err := svc.SetAsk(ctx, authorized, tokenID, big.NewInt(500)); err != nil {
		t.Fatalf("set ask failed: %v", err)
	}
	store.FundAccount("bidder-1", big.NewInt(1000))

	result, err := svc.SetBid(ctx, authorized, tokenID, application.SetBidInput{
		Bidder:    "bidder-1",
		Recipient: "bidder-1",
		Amount:    big.NewInt(499),
	})
	if err != nil {
		t.Fatalf("set bid failed: %v", err)
	}
	if result.Settled {
		t.Fatalf("a bid below the ask must stay open")
	}
	if owner, _ := registry.OwnerOf(ctx, tokenID); owner != "owner-1" {
		t.Fatalf("ownership must not move for an open bid, got %q", owner)
	}
}

func TestResaleCycleLeavesPrevOwnerClaimInCustody(t *testing.T) {
	svc, store, registry := newConfiguredService(t)
	ctx := context.Background()
	tokenID := registry.MintToken("creator-1", "owner-1")
	if err := svc.SetShares(ctx, authorized, tokenID, standardShares()); err != nil {
		t.Fatalf("set shares failed: %v", err)
	}
	store.FundAccount("alice", big.NewInt(1000))
	store.FundAccount("bob", big.NewInt(1000))

	// First sale: alice buys with a 20% sell-on claim.
	if _, err := svc.SetBid(ctx, authorized, tokenID, application.SetBidInput{
		Bidder:      "alice",
		Recipient:   "alice",
		Amount:      big.NewInt(1000),
		SellOnShare: entities.Percent(20),
	}); err != nil {
		t.Fatalf("alice bid failed: %v", err)
	}
	if err := svc.AcceptBid(ctx, authorized, tokenID, application.ExpectedBid{
		Bidder:      "alice",
		Recipient:   "alice",
		Amount:      big.NewInt(1000),
		SellOnShare: entities.Percent(20),
	}); err != nil {
		t.Fatalf("accept alice failed: %v", err)
	}
	if got := store.CustodyBalance(); got.Sign() != 0 {
		t.Fatalf("the first sale disburses fully, custody %s", got)
	}

	// Resale: the split is now 10/70/20, and alice is the holder.
	if _, err := svc.SetBid(ctx, authorized, tokenID, application.SetBidInput{
		Bidder:    "bob",
		Recipient: "bob",
		Amount:    big.NewInt(1000),
	}); err != nil {
		t.Fatalf("bob bid failed: %v", err)
	}
	if err := svc.AcceptBid(ctx, authorized, tokenID, application.ExpectedBid{
		Bidder:    "bob",
		Recipient: "bob",
		Amount:    big.NewInt(1000),
	}); err != nil {
		t.Fatalf("accept bob failed: %v", err)
	}

	if got := store.BalanceOf("alice"); got.Cmp(big.NewInt(700)) != 0 {
		t.Fatalf("alice sells at the 70%% owner share, got %s", got)
	}
	if got := store.BalanceOf("creator-1"); got.Cmp(big.NewInt(200)) != 0 {
		t.Fatalf("the creator collects 10%% of both sales, got %s", got)
	}
	// The 20% prev-owner claim is not disbursed at this settlement.
	if got := store.CustodyBalance(); got.Cmp(big.NewInt(200)) != 0 {
		t.Fatalf("expected the prev-owner claim to stay in custody, got %s", got)
	}
}

func TestIsValidBid(t *testing.T) {
	svc, _, registry := newConfiguredService(t)
	ctx := context.Background()
	tokenID := registry.MintToken("creator-1", "owner-1")

	if valid, err := svc.IsValidBid(ctx, tokenID, big.NewInt(0)); err != nil || valid {
		t.Fatalf("a zero amount is never a valid bid, valid=%v err=%v", valid, err)
	}
	if valid, err := svc.IsValidBid(ctx, tokenID, big.NewInt(100)); err != nil || valid {
		t.Fatalf("a token without shares cannot take a valid bid, valid=%v err=%v", valid, err)
	}
	if err := svc.SetShares(ctx, authorized, tokenID, standardShares()); err != nil {
		t.Fatalf("set shares failed: %v", err)
	}
	if valid, err := svc.IsValidBid(ctx, tokenID, big.NewInt(100)); err != nil || !valid {
		t.Fatalf("expected a valid bid, valid=%v err=%v", valid, err)
	}
}

func TestEnumerateAsks(t *testing.T) {
	svc, _, registry := newConfiguredService(t)
	ctx := context.Background()
	first := registry.MintToken("creator-1", "owner-1")
	registry.MintToken("creator-2", "owner-2")
	third := registry.MintToken("creator-3", "owner-3")

	for _, tokenID := range []uint64{first, third} {
		if err := svc.SetShares(ctx, authorized, tokenID, standardShares()); err != nil {
			t.Fatalf("set shares failed: %v", err)
		}
	}
	if err := svc.SetAsk(ctx, authorized, first, big.NewInt(100)); err != nil {
		t.Fatalf("set ask failed: %v", err)
	}
	if err := svc.SetAsk(ctx, authorized, third, big.NewInt(300)); err != nil {
		t.Fatalf("set ask failed: %v", err)
	}

	listings, err := svc.EnumerateAsks(ctx)
	if err != nil {
		t.Fatalf("enumerate asks failed: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("expected two listings, got %d", len(listings))
	}
	if listings[0].TokenID != first || listings[0].CurrentOwner != "owner-1" {
		t.Fatalf("unexpected first listing: %+v", listings[0])
	}
	if listings[1].TokenID != third || listings[1].Ask.Cmp(big.NewInt(300)) != 0 {
		t.Fatalf("unexpected second listing: %+v", listings[1])
	}
}

func TestRemoveAskIsIdempotent(t *testing.T) {
	svc, _, registry := newConfiguredService(t)
	ctx := context.Background()
	tokenID := registry.MintToken("creator-1", "owner-1")

	if err := svc.RemoveAsk(ctx, authorized, tokenID); err != nil {
		t.Fatalf("removing an absent ask must succeed, got %v", err)
	}
	if err := svc.SetShares(ctx, authorized, tokenID, standardShares()); err != nil {
		t.Fatalf("set shares failed: %v", err)
	}
	if err := svc.SetAsk(ctx, authorized, tokenID, big.NewInt(500)); err != nil {
		t.Fatalf("set ask failed: %v", err)
	}
	if err := svc.RemoveAsk(ctx, authorized, tokenID); err != nil {
		t.Fatalf("remove ask failed: %v", err)
	}
	ask, err := svc.CurrentAsk(ctx, tokenID)
	if err != nil || ask.Sign() != 0 {
		t.Fatalf("expected a zero ask after removal, got %s err=%v", ask, err)
	}
}

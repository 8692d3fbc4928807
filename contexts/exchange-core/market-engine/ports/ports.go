package ports

import (
	"context"
	"math/big"
	"time"

	"mediex/contexts/exchange-core/market-engine/domain/entities"
	contractsv1 "mediex/contracts/gen/events/v1"
)

// BidLedger holds at most one live bid per (token, bidder) pair.
// Reads of absent entries return found=false, never a zeroed bid.
type BidLedger interface {
	GetBid(ctx context.Context, tokenID uint64, bidder string) (entities.Bid, bool, error)
	PutBid(ctx context.Context, bid entities.Bid) error
	DeleteBid(ctx context.Context, tokenID uint64, bidder string) error
}

// AskBoard is the single-slot per-token asking price registry.
type AskBoard interface {
	GetAsk(ctx context.Context, tokenID uint64) (entities.Ask, bool, error)
	PutAsk(ctx context.Context, ask entities.Ask) error
	DeleteAsk(ctx context.Context, tokenID uint64) error
}

// ShareRegistry stores the canonical three-way split per token.
type ShareRegistry interface {
	GetShares(ctx context.Context, tokenID uint64) (entities.BidShares, bool, error)
	PutShares(ctx context.Context, tokenID uint64, shares entities.BidShares) error
}

// BindingStore persists the one-time binding to the authorized caller.
// PutBinding must fail with ErrAlreadyConfigured once a binding exists.
type BindingStore interface {
	GetBinding(ctx context.Context) (string, bool, error)
	PutBinding(ctx context.Context, authorizedCaller string) error
}

// EscrowVault moves native value units between accounts and market custody.
// Deposit returns the amount actually received into custody, which is what
// the ledger records as escrowed.
type EscrowVault interface {
	Deposit(ctx context.Context, from string, amount *big.Int) (*big.Int, error)
	Release(ctx context.Context, to string, amount *big.Int) error
}

// MediaRegistry is the external collaborator that owns token identity and
// ownership records. The market never resolves ownership itself.
type MediaRegistry interface {
	OwnerOf(ctx context.Context, tokenID uint64) (string, error)
	CreatorOf(ctx context.Context, tokenID uint64) (string, error)
	TransferOwnership(ctx context.Context, tokenID uint64, newOwner string) error
	TokenCount(ctx context.Context) (uint64, error)
}

// AskListing is one row of the read-only ask enumeration, cross-queried
// against the media registry for the current holder.
type AskListing struct {
	TokenID      uint64
	Ask          *big.Int
	CurrentOwner string
}

// Clock allows deterministic testing of timestamps.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts event identifier generation.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

// OutboxWriter records an emitted market event for later relay.
type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

// OutboxMessage is a row ready to relay from the module outbox.
type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

// OutboxRepository models worker-side outbox polling/acknowledgement.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

// EventPublisher publishes canonical envelopes to a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

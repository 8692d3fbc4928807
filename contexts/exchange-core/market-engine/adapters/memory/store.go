package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"sync"
	"time"

	"mediex/contexts/exchange-core/market-engine/domain/entities"
	domainerrors "mediex/contexts/exchange-core/market-engine/domain/errors"
	"mediex/contexts/exchange-core/market-engine/ports"

	"github.com/google/uuid"
)

type bidKey struct {
	TokenID uint64
	Bidder  string
}

type outboxRecord struct {
	Message     ports.OutboxMessage
	Status      string
	PublishedAt *time.Time
}

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

// Store is the in-memory implementation of every market-engine port except
// the media registry. One mutex serializes all writers, which also gives the
// single-writer ordering the settlement flow relies on.
type Store struct {
	mu sync.RWMutex

	bids    map[bidKey]entities.Bid
	asks    map[uint64]entities.Ask
	shares  map[uint64]entities.BidShares
	binding string

	balances map[string]*big.Int
	custody  *big.Int

	outbox map[string]outboxRecord
}

func NewStore() *Store {
	return &Store{
		bids:     make(map[bidKey]entities.Bid),
		asks:     make(map[uint64]entities.Ask),
		shares:   make(map[uint64]entities.BidShares),
		balances: make(map[string]*big.Int),
		custody:  new(big.Int),
		outbox:   make(map[string]outboxRecord),
	}
}

func (s *Store) GetBid(_ context.Context, tokenID uint64, bidder string) (entities.Bid, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bid, ok := s.bids[bidKey{TokenID: tokenID, Bidder: bidder}]
	if !ok {
		return entities.Bid{}, false, nil
	}
	return bid.Clone(), true, nil
}

func (s *Store) PutBid(_ context.Context, bid entities.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(bid.Bidder) == "" {
		return domainerrors.ErrInvalidBidder
	}
	s.bids[bidKey{TokenID: bid.TokenID, Bidder: bid.Bidder}] = bid.Clone()
	return nil
}

func (s *Store) DeleteBid(_ context.Context, tokenID uint64, bidder string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.bids, bidKey{TokenID: tokenID, Bidder: bidder})
	return nil
}

func (s *Store) GetAsk(_ context.Context, tokenID uint64) (entities.Ask, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ask, ok := s.asks[tokenID]
	if !ok {
		return entities.Ask{}, false, nil
	}
	return ask.Clone(), true, nil
}

func (s *Store) PutAsk(_ context.Context, ask entities.Ask) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.asks[ask.TokenID] = ask.Clone()
	return nil
}

func (s *Store) DeleteAsk(_ context.Context, tokenID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.asks, tokenID)
	return nil
}

func (s *Store) GetShares(_ context.Context, tokenID uint64) (entities.BidShares, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shares, ok := s.shares[tokenID]
	if !ok {
		return entities.BidShares{}, false, nil
	}
	return shares.Clone(), true, nil
}

func (s *Store) PutShares(_ context.Context, tokenID uint64, shares entities.BidShares) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shares[tokenID] = shares.Clone()
	return nil
}

func (s *Store) GetBinding(_ context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.binding == "" {
		return "", false, nil
	}
	return s.binding, true, nil
}

func (s *Store) PutBinding(_ context.Context, authorizedCaller string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(authorizedCaller) == "" {
		return domainerrors.ErrInvalidConfiguration
	}
	if s.binding != "" {
		return domainerrors.ErrAlreadyConfigured
	}
	s.binding = authorizedCaller
	return nil
}

// FundAccount credits an account's spendable balance. Test and dev wiring
// only; production custody sits behind the postgres adapter.
func (s *Store) FundAccount(account string, amount *big.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	balance, ok := s.balances[account]
	if !ok {
		balance = new(big.Int)
		s.balances[account] = balance
	}
	balance.Add(balance, amount)
}

// BalanceOf returns a copy of the account's spendable balance.
func (s *Store) BalanceOf(account string) *big.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	balance, ok := s.balances[account]
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(balance)
}

// CustodyBalance returns a copy of the market's escrow pool balance.
func (s *Store) CustodyBalance() *big.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return new(big.Int).Set(s.custody)
}

func (s *Store) Deposit(_ context.Context, from string, amount *big.Int) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount == nil || amount.Sign() <= 0 {
		return nil, domainerrors.ErrInvalidAmount
	}
	balance, ok := s.balances[from]
	if !ok || balance.Cmp(amount) < 0 {
		return nil, domainerrors.ErrInsufficientFunds
	}
	balance.Sub(balance, amount)
	s.custody.Add(s.custody, amount)
	return new(big.Int).Set(amount), nil
}

func (s *Store) Release(_ context.Context, to string, amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount == nil || amount.Sign() < 0 {
		return domainerrors.ErrInvalidAmount
	}
	if amount.Sign() == 0 {
		return nil
	}
	if s.custody.Cmp(amount) < 0 {
		return fmt.Errorf("escrow custody short by %s: %w",
			new(big.Int).Sub(amount, s.custody).String(), domainerrors.ErrInsufficientFunds)
	}
	s.custody.Sub(s.custody, amount)
	balance, ok := s.balances[to]
	if !ok {
		balance = new(big.Int)
		s.balances[to] = balance
	}
	balance.Add(balance, amount)
	return nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		return fmt.Errorf("outbox envelope requires an event id")
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	s.outbox[outboxID] = outboxRecord{
		Message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    envelope.EventType,
			PartitionKey: envelope.PartitionKey,
			Payload:      payload,
			CreatedAt:    envelope.OccurredAt.UTC(),
		},
		Status: outboxStatusPending,
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0)
	for _, row := range s.outbox {
		if row.Status == outboxStatusPending {
			items = append(items, row.Message)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].OutboxID < items[j].OutboxID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return fmt.Errorf("outbox row %s not found", outboxID)
	}
	ts := publishedAt.UTC()
	row.Status = outboxStatusPublished
	row.PublishedAt = &ts
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

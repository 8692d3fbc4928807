package postgresadapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"mediex/contexts/exchange-core/market-engine/domain/entities"
	domainerrors "mediex/contexts/exchange-core/market-engine/domain/errors"
	"mediex/contexts/exchange-core/market-engine/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"

	bindingRowID     = "market"
	custodyAccountID = "market:custody"
)

// Repository is the postgres implementation of the market-engine stores.
// Escrow balance moves run inside row-locked transactions so custody and
// account balances never drift apart.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

func (r *Repository) GetBid(ctx context.Context, tokenID uint64, bidder string) (entities.Bid, bool, error) {
	var row marketBidModel
	err := r.db.WithContext(ctx).
		Where("token_id = ? AND bidder = ?", tokenID, bidder).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Bid{}, false, nil
		}
		return entities.Bid{}, false, err
	}
	bid, err := row.toEntity()
	if err != nil {
		return entities.Bid{}, false, err
	}
	return bid, true, nil
}

func (r *Repository) PutBid(ctx context.Context, bid entities.Bid) error {
	row := bidModelFromEntity(bid)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token_id"}, {Name: "bidder"}},
			UpdateAll: true,
		}).
		Create(&row).
		Error
}

func (r *Repository) DeleteBid(ctx context.Context, tokenID uint64, bidder string) error {
	return r.db.WithContext(ctx).
		Where("token_id = ? AND bidder = ?", tokenID, bidder).
		Delete(&marketBidModel{}).
		Error
}

func (r *Repository) GetAsk(ctx context.Context, tokenID uint64) (entities.Ask, bool, error) {
	var row marketAskModel
	err := r.db.WithContext(ctx).
		Where("token_id = ?", tokenID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Ask{}, false, nil
		}
		return entities.Ask{}, false, err
	}
	amount, err := parseAmount(row.Amount)
	if err != nil {
		return entities.Ask{}, false, err
	}
	return entities.Ask{TokenID: row.TokenID, Amount: amount, CreatedAt: row.CreatedAt}, true, nil
}

func (r *Repository) PutAsk(ctx context.Context, ask entities.Ask) error {
	row := marketAskModel{
		TokenID:   ask.TokenID,
		Amount:    amountString(ask.Amount),
		CreatedAt: ask.CreatedAt.UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token_id"}},
			UpdateAll: true,
		}).
		Create(&row).
		Error
}

func (r *Repository) DeleteAsk(ctx context.Context, tokenID uint64) error {
	return r.db.WithContext(ctx).
		Where("token_id = ?", tokenID).
		Delete(&marketAskModel{}).
		Error
}

func (r *Repository) GetShares(ctx context.Context, tokenID uint64) (entities.BidShares, bool, error) {
	var row tokenSharesModel
	err := r.db.WithContext(ctx).
		Where("token_id = ?", tokenID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.BidShares{}, false, nil
		}
		return entities.BidShares{}, false, err
	}
	shares, err := row.toEntity()
	if err != nil {
		return entities.BidShares{}, false, err
	}
	return shares, true, nil
}

func (r *Repository) PutShares(ctx context.Context, tokenID uint64, shares entities.BidShares) error {
	n := shares.Normalized()
	row := tokenSharesModel{
		TokenID:        tokenID,
		CreatorShare:   amountString(n.Creator),
		OwnerShare:     amountString(n.Owner),
		PrevOwnerShare: amountString(n.PrevOwner),
		UpdatedAt:      time.Now().UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token_id"}},
			UpdateAll: true,
		}).
		Create(&row).
		Error
}

func (r *Repository) GetBinding(ctx context.Context) (string, bool, error) {
	var row marketBindingModel
	err := r.db.WithContext(ctx).
		Where("id = ?", bindingRowID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return row.AuthorizedCaller, true, nil
}

func (r *Repository) PutBinding(ctx context.Context, authorizedCaller string) error {
	row := marketBindingModel{
		ID:               bindingRowID,
		AuthorizedCaller: authorizedCaller,
		BoundAt:          time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyConfigured
		}
		return err
	}
	return nil
}

func (r *Repository) Deposit(ctx context.Context, from string, amount *big.Int) (*big.Int, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, domainerrors.ErrInvalidAmount
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := moveBalance(tx, from, custodyAccountID, amount); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(amount), nil
}

func (r *Repository) Release(ctx context.Context, to string, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return domainerrors.ErrInvalidAmount
	}
	if amount.Sign() == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return moveBalance(tx, custodyAccountID, to, amount)
	})
}

// FundAccount credits a spendable balance, used by operational tooling to
// provision accounts.
func (r *Repository) FundAccount(ctx context.Context, account string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return domainerrors.ErrInvalidAmount
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return creditBalance(tx, account, amount)
	})
}

// moveBalance debits one locked account row and credits another within the
// caller's transaction.
func moveBalance(tx *gorm.DB, from string, to string, amount *big.Int) error {
	var fromRow escrowAccountModel
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("account_id = ?", from).
		First(&fromRow).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainerrors.ErrInsufficientFunds
		}
		return err
	}
	balance, err := parseAmount(fromRow.Balance)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return domainerrors.ErrInsufficientFunds
	}
	balance.Sub(balance, amount)
	if err := tx.Model(&escrowAccountModel{}).
		Where("account_id = ?", from).
		Update("balance", amountString(balance)).
		Error; err != nil {
		return err
	}
	return creditBalance(tx, to, amount)
}

func creditBalance(tx *gorm.DB, account string, amount *big.Int) error {
	var row escrowAccountModel
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("account_id = ?", account).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created := escrowAccountModel{AccountID: account, Balance: amountString(amount)}
			return tx.Create(&created).Error
		}
		return err
	}
	balance, err := parseAmount(row.Balance)
	if err != nil {
		return err
	}
	balance.Add(balance, amount)
	return tx.Model(&escrowAccountModel{}).
		Where("account_id = ?", account).
		Update("balance", amountString(balance)).
		Error
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := marshalEnvelope(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     envelope.EventID,
		EventType:    envelope.EventType,
		PartitionKey: envelope.PartitionKey,
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("outbox event %s already recorded", envelope.EventID)
		}
		return err
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      row.Payload,
			CreatedAt:    row.CreatedAt,
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	ts := publishedAt.UTC()
	return r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": &ts,
		}).
		Error
}

func amountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func parseAmount(raw string) (*big.Int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return new(big.Int), nil
	}
	out, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("malformed numeric column value %q", raw)
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

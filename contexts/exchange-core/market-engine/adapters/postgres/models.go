package postgresadapter

import (
	"encoding/json"
	"time"

	"mediex/contexts/exchange-core/market-engine/domain/entities"
	"mediex/contexts/exchange-core/market-engine/ports"
)

type marketBidModel struct {
	TokenID     uint64    `gorm:"column:token_id;primaryKey"`
	Bidder      string    `gorm:"column:bidder;primaryKey"`
	Recipient   string    `gorm:"column:recipient"`
	Amount      string    `gorm:"column:amount;type:numeric(78,0)"`
	Received    string    `gorm:"column:received;type:numeric(78,0)"`
	SellOnShare string    `gorm:"column:sell_on_share;type:numeric(78,0)"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (marketBidModel) TableName() string {
	return "market_bids"
}

func bidModelFromEntity(bid entities.Bid) marketBidModel {
	return marketBidModel{
		TokenID:     bid.TokenID,
		Bidder:      bid.Bidder,
		Recipient:   bid.Recipient,
		Amount:      amountString(bid.Amount),
		Received:    amountString(bid.Received),
		SellOnShare: amountString(bid.SellOnShare),
		CreatedAt:   bid.CreatedAt.UTC(),
	}
}

func (m marketBidModel) toEntity() (entities.Bid, error) {
	amount, err := parseAmount(m.Amount)
	if err != nil {
		return entities.Bid{}, err
	}
	received, err := parseAmount(m.Received)
	if err != nil {
		return entities.Bid{}, err
	}
	sellOn, err := parseAmount(m.SellOnShare)
	if err != nil {
		return entities.Bid{}, err
	}
	return entities.Bid{
		TokenID:     m.TokenID,
		Bidder:      m.Bidder,
		Recipient:   m.Recipient,
		Amount:      amount,
		Received:    received,
		SellOnShare: sellOn,
		CreatedAt:   m.CreatedAt,
	}, nil
}

type marketAskModel struct {
	TokenID   uint64    `gorm:"column:token_id;primaryKey"`
	Amount    string    `gorm:"column:amount;type:numeric(78,0)"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (marketAskModel) TableName() string {
	return "market_asks"
}

type tokenSharesModel struct {
	TokenID        uint64    `gorm:"column:token_id;primaryKey"`
	CreatorShare   string    `gorm:"column:creator_share;type:numeric(78,0)"`
	OwnerShare     string    `gorm:"column:owner_share;type:numeric(78,0)"`
	PrevOwnerShare string    `gorm:"column:prev_owner_share;type:numeric(78,0)"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (tokenSharesModel) TableName() string {
	return "token_shares"
}

func (m tokenSharesModel) toEntity() (entities.BidShares, error) {
	creator, err := parseAmount(m.CreatorShare)
	if err != nil {
		return entities.BidShares{}, err
	}
	owner, err := parseAmount(m.OwnerShare)
	if err != nil {
		return entities.BidShares{}, err
	}
	prevOwner, err := parseAmount(m.PrevOwnerShare)
	if err != nil {
		return entities.BidShares{}, err
	}
	return entities.BidShares{Creator: creator, Owner: owner, PrevOwner: prevOwner}, nil
}

type escrowAccountModel struct {
	AccountID string `gorm:"column:account_id;primaryKey"`
	Balance   string `gorm:"column:balance;type:numeric(78,0)"`
}

func (escrowAccountModel) TableName() string {
	return "escrow_accounts"
}

type marketBindingModel struct {
	ID               string    `gorm:"column:id;primaryKey"`
	AuthorizedCaller string    `gorm:"column:authorized_caller"`
	BoundAt          time.Time `gorm:"column:bound_at"`
}

func (marketBindingModel) TableName() string {
	return "market_binding"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "market_outbox"
}

func marshalEnvelope(envelope ports.EventEnvelope) ([]byte, error) {
	return json.Marshal(envelope)
}

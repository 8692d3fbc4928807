package httpadapter

import (
	"context"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"mediex/contexts/exchange-core/market-engine/application"
	"mediex/contexts/exchange-core/market-engine/domain/entities"
	domainerrors "mediex/contexts/exchange-core/market-engine/domain/errors"
	httptransport "mediex/contexts/exchange-core/market-engine/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) ConfigureHandler(ctx context.Context, caller string, req httptransport.ConfigureRequest) (httptransport.StatusResponse, error) {
	if err := h.Service.Configure(ctx, caller, req.AuthorizedCaller); err != nil {
		return httptransport.StatusResponse{}, err
	}
	return httptransport.StatusResponse{Status: "success"}, nil
}

func (h Handler) SetAskHandler(ctx context.Context, caller string, tokenID uint64, req httptransport.SetAskRequest) (httptransport.AskResponse, error) {
	amount, err := parseValue(req.Amount, domainerrors.ErrInvalidAsk)
	if err != nil {
		return httptransport.AskResponse{}, err
	}
	if err := h.Service.SetAsk(ctx, caller, tokenID, amount); err != nil {
		return httptransport.AskResponse{}, err
	}
	return httptransport.AskResponse{
		Status: "success",
		Data:   httptransport.AskDTO{TokenID: tokenID, Amount: amount.String()},
	}, nil
}

func (h Handler) RemoveAskHandler(ctx context.Context, caller string, tokenID uint64) (httptransport.StatusResponse, error) {
	if err := h.Service.RemoveAsk(ctx, caller, tokenID); err != nil {
		return httptransport.StatusResponse{}, err
	}
	return httptransport.StatusResponse{Status: "success"}, nil
}

func (h Handler) SetBidHandler(ctx context.Context, caller string, tokenID uint64, req httptransport.SetBidRequest) (httptransport.SetBidResponse, error) {
	amount, err := parseValue(req.Amount, domainerrors.ErrInvalidAmount)
	if err != nil {
		return httptransport.SetBidResponse{}, err
	}
	sellOn, err := parseValue(req.SellOnShare, domainerrors.ErrInvalidShares)
	if err != nil {
		return httptransport.SetBidResponse{}, err
	}
	result, err := h.Service.SetBid(ctx, caller, tokenID, application.SetBidInput{
		Bidder:      req.Bidder,
		Recipient:   req.Recipient,
		Amount:      amount,
		SellOnShare: sellOn,
		Spender:     req.Spender,
	})
	if err != nil {
		return httptransport.SetBidResponse{}, err
	}
	resp := httptransport.SetBidResponse{
		Status:  "success",
		Settled: result.Settled,
		Data:    toBidDTO(result.Bid),
	}
	if result.SettleErr != nil {
		resp.SettlementError = result.SettleErr.Error()
	}
	return resp, nil
}

func (h Handler) RemoveBidHandler(ctx context.Context, caller string, tokenID uint64, bidder string) (httptransport.StatusResponse, error) {
	if err := h.Service.RemoveBid(ctx, caller, tokenID, bidder); err != nil {
		return httptransport.StatusResponse{}, err
	}
	return httptransport.StatusResponse{Status: "success"}, nil
}

func (h Handler) AcceptBidHandler(ctx context.Context, caller string, tokenID uint64, req httptransport.AcceptBidRequest) (httptransport.StatusResponse, error) {
	amount, err := parseValue(req.Amount, domainerrors.ErrInvalidAmount)
	if err != nil {
		return httptransport.StatusResponse{}, err
	}
	sellOn, err := parseValue(req.SellOnShare, domainerrors.ErrInvalidShares)
	if err != nil {
		return httptransport.StatusResponse{}, err
	}
	if err := h.Service.AcceptBid(ctx, caller, tokenID, application.ExpectedBid{
		Bidder:      req.Bidder,
		Recipient:   req.Recipient,
		Amount:      amount,
		SellOnShare: sellOn,
	}); err != nil {
		return httptransport.StatusResponse{}, err
	}
	return httptransport.StatusResponse{Status: "success"}, nil
}

func (h Handler) SetSharesHandler(ctx context.Context, caller string, tokenID uint64, req httptransport.SetSharesRequest) (httptransport.SharesResponse, error) {
	shares, err := parseShares(req)
	if err != nil {
		return httptransport.SharesResponse{}, err
	}
	if err := h.Service.SetShares(ctx, caller, tokenID, shares); err != nil {
		return httptransport.SharesResponse{}, err
	}
	return httptransport.SharesResponse{
		Status:     "success",
		Registered: true,
		Data:       toSharesDTO(tokenID, shares),
	}, nil
}

func (h Handler) GetAskHandler(ctx context.Context, tokenID uint64) (httptransport.AskResponse, error) {
	amount, err := h.Service.CurrentAsk(ctx, tokenID)
	if err != nil {
		return httptransport.AskResponse{}, err
	}
	return httptransport.AskResponse{
		Status: "success",
		Data:   httptransport.AskDTO{TokenID: tokenID, Amount: amount.String()},
	}, nil
}

func (h Handler) GetBidHandler(ctx context.Context, tokenID uint64, bidder string) (httptransport.GetBidResponse, error) {
	bid, found, err := h.Service.BidFor(ctx, tokenID, bidder)
	if err != nil {
		return httptransport.GetBidResponse{}, err
	}
	resp := httptransport.GetBidResponse{Status: "success", Found: found}
	if found {
		resp.Data = toBidDTO(bid)
	}
	return resp, nil
}

func (h Handler) GetSharesHandler(ctx context.Context, tokenID uint64) (httptransport.SharesResponse, error) {
	shares, registered, err := h.Service.SharesFor(ctx, tokenID)
	if err != nil {
		return httptransport.SharesResponse{}, err
	}
	return httptransport.SharesResponse{
		Status:     "success",
		Registered: registered,
		Data:       toSharesDTO(tokenID, shares),
	}, nil
}

func (h Handler) ListAsksHandler(ctx context.Context) (httptransport.ListAsksResponse, error) {
	listings, err := h.Service.EnumerateAsks(ctx)
	if err != nil {
		return httptransport.ListAsksResponse{}, err
	}
	resp := httptransport.ListAsksResponse{
		Status: "success",
		Data:   make([]httptransport.AskListingDTO, 0, len(listings)),
	}
	for _, listing := range listings {
		resp.Data = append(resp.Data, httptransport.AskListingDTO{
			TokenID:      listing.TokenID,
			Ask:          listing.Ask.String(),
			CurrentOwner: listing.CurrentOwner,
		})
	}
	return resp, nil
}

func (h Handler) ValidateBidHandler(ctx context.Context, tokenID uint64, rawAmount string) (httptransport.ValidateBidResponse, error) {
	amount, err := parseValue(rawAmount, domainerrors.ErrInvalidAmount)
	if err != nil {
		return httptransport.ValidateBidResponse{}, err
	}
	valid, err := h.Service.IsValidBid(ctx, tokenID, amount)
	if err != nil {
		return httptransport.ValidateBidResponse{}, err
	}
	return httptransport.ValidateBidResponse{Status: "success", Valid: valid}, nil
}

func (h Handler) SplitShareHandler(_ context.Context, rawPct string, rawAmount string) (httptransport.SplitShareResponse, error) {
	pct, err := parseValue(rawPct, domainerrors.ErrInvalidShares)
	if err != nil {
		return httptransport.SplitShareResponse{}, err
	}
	amount, err := parseValue(rawAmount, domainerrors.ErrInvalidAmount)
	if err != nil {
		return httptransport.SplitShareResponse{}, err
	}
	return httptransport.SplitShareResponse{
		Status: "success",
		Amount: h.Service.SplitShare(pct, amount).String(),
	}, nil
}

func toBidDTO(bid entities.Bid) httptransport.BidDTO {
	return httptransport.BidDTO{
		TokenID:     bid.TokenID,
		Bidder:      bid.Bidder,
		Recipient:   bid.Recipient,
		Amount:      bid.Amount.String(),
		Received:    bid.Received.String(),
		SellOnShare: bid.SellOnShare.String(),
		CreatedAt:   bid.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toSharesDTO(tokenID uint64, shares entities.BidShares) httptransport.SharesDTO {
	n := shares.Normalized()
	return httptransport.SharesDTO{
		TokenID:        tokenID,
		CreatorShare:   n.Creator.String(),
		OwnerShare:     n.Owner.String(),
		PrevOwnerShare: n.PrevOwner.String(),
	}
}

func parseShares(req httptransport.SetSharesRequest) (entities.BidShares, error) {
	creator, err := parseValue(req.CreatorShare, domainerrors.ErrInvalidShares)
	if err != nil {
		return entities.BidShares{}, err
	}
	owner, err := parseValue(req.OwnerShare, domainerrors.ErrInvalidShares)
	if err != nil {
		return entities.BidShares{}, err
	}
	prevOwner, err := parseValue(req.PrevOwnerShare, domainerrors.ErrInvalidShares)
	if err != nil {
		return entities.BidShares{}, err
	}
	return entities.BidShares{Creator: creator, Owner: owner, PrevOwner: prevOwner}, nil
}

// parseValue decodes a base-10 scaled integer from the wire. An empty string
// decodes to zero so optional fields stay optional.
func parseValue(raw string, onMalformed error) (*big.Int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return new(big.Int), nil
	}
	out, ok := new(big.Int).SetString(raw, 10)
	if !ok || out.Sign() < 0 {
		return nil, onMalformed
	}
	return out, nil
}

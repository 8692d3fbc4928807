package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type ConfigureRequest struct {
	AuthorizedCaller string `json:"authorized_caller"`
}

type SetAskRequest struct {
	Amount string `json:"amount"`
}

type AskDTO struct {
	TokenID uint64 `json:"token_id"`
	Amount  string `json:"amount"`
}

type AskResponse struct {
	Status string `json:"status"`
	Data   AskDTO `json:"data"`
}

type SetBidRequest struct {
	Bidder      string `json:"bidder"`
	Recipient   string `json:"recipient"`
	Amount      string `json:"amount"`
	SellOnShare string `json:"sell_on_share"`
	Spender     string `json:"spender,omitempty"`
}

type BidDTO struct {
	TokenID     uint64 `json:"token_id"`
	Bidder      string `json:"bidder"`
	Recipient   string `json:"recipient"`
	Amount      string `json:"amount"`
	Received    string `json:"received"`
	SellOnShare string `json:"sell_on_share"`
	CreatedAt   string `json:"created_at"`
}

type SetBidResponse struct {
	Status          string `json:"status"`
	Settled         bool   `json:"settled"`
	SettlementError string `json:"settlement_error,omitempty"`
	Data            BidDTO `json:"data"`
}

type GetBidResponse struct {
	Status string `json:"status"`
	Found  bool   `json:"found"`
	Data   BidDTO `json:"data,omitempty"`
}

type AcceptBidRequest struct {
	Bidder      string `json:"bidder"`
	Recipient   string `json:"recipient"`
	Amount      string `json:"amount"`
	SellOnShare string `json:"sell_on_share"`
}

type SharesDTO struct {
	TokenID        uint64 `json:"token_id"`
	CreatorShare   string `json:"creator_share"`
	OwnerShare     string `json:"owner_share"`
	PrevOwnerShare string `json:"prev_owner_share"`
}

type SetSharesRequest struct {
	CreatorShare   string `json:"creator_share"`
	OwnerShare     string `json:"owner_share"`
	PrevOwnerShare string `json:"prev_owner_share"`
}

type SharesResponse struct {
	Status     string    `json:"status"`
	Registered bool      `json:"registered"`
	Data       SharesDTO `json:"data"`
}

type AskListingDTO struct {
	TokenID      uint64 `json:"token_id"`
	Ask          string `json:"ask"`
	CurrentOwner string `json:"current_owner"`
}

type ListAsksResponse struct {
	Status string          `json:"status"`
	Data   []AskListingDTO `json:"data"`
}

type ValidateBidResponse struct {
	Status string `json:"status"`
	Valid  bool   `json:"valid"`
}

type SplitShareResponse struct {
	Status string `json:"status"`
	Amount string `json:"amount"`
}

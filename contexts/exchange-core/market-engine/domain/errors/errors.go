package errors

import "errors"

var (
	ErrUnauthorized         = errors.New("caller is not authorized for this market operation")
	ErrAlreadyConfigured    = errors.New("market is already bound to an authorized caller")
	ErrNotConfigured        = errors.New("market has no authorized caller bound yet")
	ErrInvalidConfiguration = errors.New("authorized caller identity must not be empty")

	ErrInvalidShares    = errors.New("bid shares must sum to exactly 100 percent")
	ErrInvalidBid       = errors.New("bid is invalid for the token's registered shares")
	ErrInvalidBidder    = errors.New("bidder identity must not be empty")
	ErrInvalidAmount    = errors.New("bid amount must be a positive value")
	ErrInvalidRecipient = errors.New("bid recipient identity must not be empty")
	ErrNoBid            = errors.New("no live bid exists for this token and bidder")
	ErrBidMismatch      = errors.New("stored bid no longer matches the expected bid")
	ErrInvalidAsk       = errors.New("ask requires a non-zero price and valid token shares")

	ErrTokenUnknown      = errors.New("media registry does not know this token")
	ErrInsufficientFunds = errors.New("account balance does not cover the requested amount")
)

package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	marketengine "mediex/contexts/exchange-core/market-engine"
	marketerrors "mediex/contexts/exchange-core/market-engine/domain/errors"
	markethttp "mediex/contexts/exchange-core/market-engine/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "mediex/internal/platform/httpserver/docs"
)

type Server struct {
	mux    *http.ServeMux
	logger *slog.Logger
	addr   string
	market marketengine.Module
}

func New(market marketengine.Module, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:    http.NewServeMux(),
		logger: logger,
		addr:   addr,
		market: market,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the routed mux, used by httptest in black-box tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/market/v1/configure", s.handleConfigure)
	s.mux.HandleFunc("GET /api/market/v1/asks", s.handleListAsks)
	s.mux.HandleFunc("GET /api/market/v1/split", s.handleSplitShare)

	s.mux.HandleFunc("GET /api/market/v1/tokens/{token_id}/ask", s.handleGetAsk)
	s.mux.HandleFunc("PUT /api/market/v1/tokens/{token_id}/ask", s.handleSetAsk)
	s.mux.HandleFunc("DELETE /api/market/v1/tokens/{token_id}/ask", s.handleRemoveAsk)

	s.mux.HandleFunc("PUT /api/market/v1/tokens/{token_id}/bids", s.handleSetBid)
	s.mux.HandleFunc("POST /api/market/v1/tokens/{token_id}/bids/accept", s.handleAcceptBid)
	s.mux.HandleFunc("GET /api/market/v1/tokens/{token_id}/bids/validate", s.handleValidateBid)
	s.mux.HandleFunc("GET /api/market/v1/tokens/{token_id}/bids/{bidder}", s.handleGetBid)
	s.mux.HandleFunc("DELETE /api/market/v1/tokens/{token_id}/bids/{bidder}", s.handleRemoveBid)

	s.mux.HandleFunc("GET /api/market/v1/tokens/{token_id}/shares", s.handleGetShares)
	s.mux.HandleFunc("PUT /api/market/v1/tokens/{token_id}/shares", s.handleSetShares)
}

func (s *Server) handleConfigure(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req markethttp.ConfigureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.market.Handler.ConfigureHandler(r.Context(), caller, req)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetAsk(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	tokenID, ok := parseTokenID(w, r)
	if !ok {
		return
	}
	var req markethttp.SetAskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.market.Handler.SetAskHandler(r.Context(), caller, tokenID, req)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRemoveAsk(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	tokenID, ok := parseTokenID(w, r)
	if !ok {
		return
	}
	resp, err := s.market.Handler.RemoveAskHandler(r.Context(), caller, tokenID)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetAsk(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := parseTokenID(w, r)
	if !ok {
		return
	}
	resp, err := s.market.Handler.GetAskHandler(r.Context(), tokenID)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetBid(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	tokenID, ok := parseTokenID(w, r)
	if !ok {
		return
	}
	var req markethttp.SetBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.market.Handler.SetBidHandler(r.Context(), caller, tokenID, req)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRemoveBid(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	tokenID, ok := parseTokenID(w, r)
	if !ok {
		return
	}
	resp, err := s.market.Handler.RemoveBidHandler(r.Context(), caller, tokenID, r.PathValue("bidder"))
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetBid(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := parseTokenID(w, r)
	if !ok {
		return
	}
	resp, err := s.market.Handler.GetBidHandler(r.Context(), tokenID, r.PathValue("bidder"))
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAcceptBid(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	tokenID, ok := parseTokenID(w, r)
	if !ok {
		return
	}
	var req markethttp.AcceptBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.market.Handler.AcceptBidHandler(r.Context(), caller, tokenID, req)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleValidateBid(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := parseTokenID(w, r)
	if !ok {
		return
	}
	resp, err := s.market.Handler.ValidateBidHandler(r.Context(), tokenID, r.URL.Query().Get("amount"))
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetShares(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	tokenID, ok := parseTokenID(w, r)
	if !ok {
		return
	}
	var req markethttp.SetSharesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.market.Handler.SetSharesHandler(r.Context(), caller, tokenID, req)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetShares(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := parseTokenID(w, r)
	if !ok {
		return
	}
	resp, err := s.market.Handler.GetSharesHandler(r.Context(), tokenID)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListAsks(w http.ResponseWriter, r *http.Request) {
	resp, err := s.market.Handler.ListAsksHandler(r.Context())
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSplitShare(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	resp, err := s.market.Handler.SplitShareHandler(r.Context(), query.Get("pct"), query.Get("amount"))
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func requireCaller(w http.ResponseWriter, r *http.Request) (string, bool) {
	caller := strings.TrimSpace(r.Header.Get("X-Caller-Id"))
	if caller == "" {
		writeMarketError(w, http.StatusUnauthorized, "missing_caller", "X-Caller-Id header is required")
		return "", false
	}
	return caller, true
}

func parseTokenID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	tokenID, err := strconv.ParseUint(r.PathValue("token_id"), 10, 64)
	if err != nil {
		writeMarketError(w, http.StatusBadRequest, "invalid_token_id", "token_id must be an unsigned integer")
		return 0, false
	}
	return tokenID, true
}

func writeMarketDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, marketerrors.ErrUnauthorized):
		writeMarketError(w, http.StatusForbidden, "unauthorized", err.Error())
	case errors.Is(err, marketerrors.ErrNotConfigured):
		writeMarketError(w, http.StatusConflict, "not_configured", err.Error())
	case errors.Is(err, marketerrors.ErrAlreadyConfigured):
		writeMarketError(w, http.StatusConflict, "already_configured", err.Error())
	case errors.Is(err, marketerrors.ErrInvalidConfiguration):
		writeMarketError(w, http.StatusBadRequest, "invalid_configuration", err.Error())
	case errors.Is(err, marketerrors.ErrInvalidShares):
		writeMarketError(w, http.StatusUnprocessableEntity, "invalid_shares", err.Error())
	case errors.Is(err, marketerrors.ErrInvalidBid):
		writeMarketError(w, http.StatusUnprocessableEntity, "invalid_bid", err.Error())
	case errors.Is(err, marketerrors.ErrInvalidAsk):
		writeMarketError(w, http.StatusUnprocessableEntity, "invalid_ask", err.Error())
	case errors.Is(err, marketerrors.ErrInvalidBidder),
		errors.Is(err, marketerrors.ErrInvalidAmount),
		errors.Is(err, marketerrors.ErrInvalidRecipient):
		writeMarketError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, marketerrors.ErrNoBid):
		writeMarketError(w, http.StatusNotFound, "no_bid", err.Error())
	case errors.Is(err, marketerrors.ErrBidMismatch):
		writeMarketError(w, http.StatusConflict, "bid_mismatch", err.Error())
	case errors.Is(err, marketerrors.ErrTokenUnknown):
		writeMarketError(w, http.StatusNotFound, "token_unknown", err.Error())
	case errors.Is(err, marketerrors.ErrInsufficientFunds):
		writeMarketError(w, http.StatusPaymentRequired, "insufficient_funds", err.Error())
	default:
		writeMarketError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeMarketError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, markethttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

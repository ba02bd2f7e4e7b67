package handlers

import (
	"errors"
	"net/http"

	"auctions/internal/auction"
	"auctions/models"

	"github.com/shopspring/decimal"
)

type placeBidRequest struct {
	BidderID int64           `json:"bidderId"`
	Amount   decimal.Decimal `json:"amount"`
}

// PlaceBidHandler обрабатывает POST /api/auctions/{auctionId}/bids.
// Отклонённая ставка возвращает BidResult с минимально допустимой суммой.
func (h *Handler) PlaceBidHandler(w http.ResponseWriter, r *http.Request) {
	auctionID, ok := idParam(r, "auctionId")
	if !ok {
		http.Error(w, "Invalid auctionId", http.StatusBadRequest)
		return
	}

	var req placeBidRequest
	if err := decodeBody(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.BidderID <= 0 {
		http.Error(w, "bidderId must be positive", http.StatusBadRequest)
		return
	}
	if !req.Amount.IsPositive() {
		http.Error(w, "amount must be positive", http.StatusBadRequest)
		return
	}

	res, err := h.Service.PlaceBid(r.Context(), auctionID, req.BidderID, req.Amount)
	var tooLow *auction.BidTooLowError
	var notActive *auction.NotActiveError
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, res)
	case errors.As(err, &tooLow):
		writeJSON(w, http.StatusUnprocessableEntity, models.BidResult{
			Outcome:       models.BidRejected,
			Reason:        err.Error(),
			MinAcceptable: decimal.NewNullDecimal(tooLow.MinAcceptable),
		})
	case errors.As(err, &notActive):
		writeJSON(w, http.StatusConflict, models.BidResult{
			Outcome: models.BidRejected,
			Reason:  err.Error(),
		})
	default:
		writeError(w, err)
	}
}

// GetBidsHandler журнал ставок аукциона
func (h *Handler) GetBidsHandler(w http.ResponseWriter, r *http.Request) {
	auctionID, ok := idParam(r, "auctionId")
	if !ok {
		http.Error(w, "Invalid auctionId", http.StatusBadRequest)
		return
	}

	bids, err := h.Service.ListBids(r.Context(), auctionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bids)
}

func (h *Handler) GetBiddersHandler(w http.ResponseWriter, r *http.Request) {
	auctionID, ok := idParam(r, "auctionId")
	if !ok {
		http.Error(w, "Invalid auctionId", http.StatusBadRequest)
		return
	}

	bidders, err := h.Service.ListBidders(r.Context(), auctionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bidders)
}

type declareWinnerRequest struct {
	BidderID int64 `json:"bidderId"`
}

// DeclareWinnerHandler ручное назначение победителя, только для администратора
func (h *Handler) DeclareWinnerHandler(w http.ResponseWriter, r *http.Request) {
	auctionID, ok := idParam(r, "auctionId")
	if !ok {
		http.Error(w, "Invalid auctionId", http.StatusBadRequest)
		return
	}

	var req declareWinnerRequest
	if err := decodeBody(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.BidderID <= 0 {
		http.Error(w, "bidderId must be positive", http.StatusBadRequest)
		return
	}

	res, err := h.Service.DeclareWinner(r.Context(), auctionID, req.BidderID)
	if errors.Is(err, auction.ErrAlreadyResolved) {
		// текущий итог, чтобы клиент видел, кто уже победил
		writeJSON(w, http.StatusConflict, res)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

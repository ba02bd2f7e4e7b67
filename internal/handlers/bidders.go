package handlers

import (
	"context"
	"net/http"
	"strings"

	"auctions/models"
)

type watchResponse struct {
	AuctionID    int64 `json:"auctionId"`
	WatcherCount int   `json:"watcherCount"`
}

// CreateBidderHandler обрабатывает POST /api/bidders
func (h *Handler) CreateBidderHandler(w http.ResponseWriter, r *http.Request) {
	var b models.Bidder
	if err := decodeBody(w, r, &b); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	b.Name = strings.TrimSpace(b.Name)
	if b.Name == "" || len(b.Name) > 100 {
		http.Error(w, "name is required and max length 100", http.StatusBadRequest)
		return
	}
	if b.UserID <= 0 {
		http.Error(w, "userId must be positive", http.StatusBadRequest)
		return
	}

	if err := h.Service.RegisterBidder(r.Context(), &b); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *Handler) GetBidderHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "bidderId")
	if !ok {
		http.Error(w, "Invalid bidderId", http.StatusBadRequest)
		return
	}

	b, err := h.Service.GetBidder(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// WatchHandler PUT /api/auctions/{auctionId}/watchers/{bidderId}, повторный вызов ничего не меняет
func (h *Handler) WatchHandler(w http.ResponseWriter, r *http.Request) {
	h.watch(w, r, h.Service.Watch)
}

// UnwatchHandler DELETE /api/auctions/{auctionId}/watchers/{bidderId}
func (h *Handler) UnwatchHandler(w http.ResponseWriter, r *http.Request) {
	h.watch(w, r, h.Service.Unwatch)
}

func (h *Handler) watch(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, auctionID, bidderID int64) (int, error)) {
	auctionID, ok := idParam(r, "auctionId")
	if !ok {
		http.Error(w, "Invalid auctionId", http.StatusBadRequest)
		return
	}
	bidderID, ok := idParam(r, "bidderId")
	if !ok {
		http.Error(w, "Invalid bidderId", http.StatusBadRequest)
		return
	}

	n, err := op(r.Context(), auctionID, bidderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, watchResponse{AuctionID: auctionID, WatcherCount: n})
}

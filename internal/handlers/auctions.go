package handlers

import (
	"net/http"

	"auctions/models"
)

// CreateAuctionHandler обрабатывает POST /api/auctions
func (h *Handler) CreateAuctionHandler(w http.ResponseWriter, r *http.Request) {
	var a models.Auction
	if err := decodeBody(w, r, &a); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Service.CreateAuction(r.Context(), &a); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// GetAuctionsHandler список аукционов по возрастанию времени окончания
func (h *Handler) GetAuctionsHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)

	list, err := h.Service.ListAuctions(r.Context(), params.Limit, params.Offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) GetAuctionHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "auctionId")
	if !ok {
		http.Error(w, "Invalid auctionId", http.StatusBadRequest)
		return
	}

	view, err := h.Service.GetAuction(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

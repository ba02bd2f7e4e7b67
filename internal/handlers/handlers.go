package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"auctions/db"
	"auctions/internal/auction"
	"auctions/models"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// AuctionService операции движка, доступные через HTTP (engine.Engine)
type AuctionService interface {
	CreateAuction(ctx context.Context, a *models.Auction) error
	GetAuction(ctx context.Context, id int64) (models.AuctionView, error)
	ListAuctions(ctx context.Context, limit, offset int) ([]models.AuctionView, error)

	PlaceBid(ctx context.Context, auctionID, bidderID int64, amount decimal.Decimal) (models.BidResult, error)
	ListBids(ctx context.Context, auctionID int64) ([]models.Bid, error)
	ListBidders(ctx context.Context, auctionID int64) ([]models.BidderSummary, error)
	DeclareWinner(ctx context.Context, auctionID, bidderID int64) (models.ResolutionResult, error)

	RegisterBidder(ctx context.Context, b *models.Bidder) error
	GetBidder(ctx context.Context, id int64) (*models.Bidder, error)

	Watch(ctx context.Context, auctionID, bidderID int64) (int, error)
	Unwatch(ctx context.Context, auctionID, bidderID int64) (int, error)
}

// EventSource лента событий (events.Bus)
type EventSource interface {
	Since(after uint64, auctionID int64, limit int) []models.Event
	Subscribe(auctionID int64, buffer int) (<-chan models.Event, func())
}

const maxBodySize = 1048576

// Handler оборачивает движок аукционов и ленту событий
type Handler struct {
	Service    AuctionService
	Events     EventSource
	AdminToken string
}

// NewHandler создает новый Handler
func NewHandler(svc AuctionService, events EventSource, adminToken string) *Handler {
	return &Handler{Service: svc, Events: events, AdminToken: adminToken}
}

// PingHandler отвечает "ok" для проверки сервера
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// AdminOnly пропускает запрос только с верным X-Admin-Token.
// Пустой токен в конфигурации закрывает админские маршруты полностью.
func (h *Handler) AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("X-Admin-Token")
		if h.AdminToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(h.AdminToken)) != 1 {
			http.Error(w, "Admin token required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type PaginationParams struct {
	Limit  int
	Offset int
}

// parsePaginationParams парсит limit и offset из query, с дефолтами и ограничениями
func parsePaginationParams(r *http.Request) PaginationParams {
	params := PaginationParams{Limit: 5}

	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 50 {
		params.Limit = l
	}
	if o, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && o >= 0 {
		params.Offset = o
	}
	return params
}

func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// decodeBody читает JSON тело с ограничением размера
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return errors.New("Failed to read request body")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return errors.New("Invalid JSON format")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("WARN: encode response: %v", err)
	}
}

// writeError переводит ошибку движка в HTTP статус
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auction.ErrAuctionNotFound), errors.Is(err, db.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, auction.ErrAuctionNotActive), errors.Is(err, auction.ErrAlreadyResolved):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, auction.ErrNotABidder), errors.Is(err, auction.ErrBidTooLow):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, auction.ErrInvalidAuction):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("ERROR: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

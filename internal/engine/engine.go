// Package engine владеет изменяемым состоянием аукционов: принимает ставки, продлевает,
// определяет победителя. Все изменения одного аукциона идут под его собственной блокировкой.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"auctions/db"
	"auctions/internal/auction"
	"auctions/internal/clock"
	"auctions/internal/metrics"
	"auctions/models"

	"github.com/shopspring/decimal"
)

// Store хранилище аукционов и журнала ставок (db.Storage или memstore.Store)
type Store interface {
	CreateAuction(ctx context.Context, a *models.Auction) error
	GetAuction(ctx context.Context, id int64) (*models.Auction, error)
	ListAuctions(ctx context.Context, limit, offset int) ([]models.Auction, error)
	ListDueAuctions(ctx context.Context, now time.Time) ([]int64, error)

	AppendBid(ctx context.Context, a *models.Auction, b *models.Bid) error
	SaveResolution(ctx context.Context, a *models.Auction) (bool, error)

	ListBids(ctx context.Context, auctionID int64) ([]models.Bid, error)
	BidderHighBid(ctx context.Context, auctionID, bidderID int64) (decimal.NullDecimal, error)
	ListBidderSummaries(ctx context.Context, auctionID int64) ([]models.BidderSummary, error)

	CreateBidder(ctx context.Context, b *models.Bidder) error
	GetBidder(ctx context.Context, id int64) (*models.Bidder, error)
}

// WatcherStore реестр наблюдателей, слабая согласованность
type WatcherStore interface {
	Watch(ctx context.Context, auctionID, bidderID int64) (int, error)
	Unwatch(ctx context.Context, auctionID, bidderID int64) (int, error)
	WatcherCount(ctx context.Context, auctionID int64) (int, error)
}

// Publisher получатель событий движка
type Publisher interface {
	Publish(ev models.Event) models.Event
}

// ErrTimeSourceLost часы недоступны или врут; цикл тиков должен остановиться
var ErrTimeSourceLost = errors.New("time source lost")

type Options struct {
	// TickWorkers сколько аукционов завершается параллельно за один тик
	TickWorkers int
	// ConflictRetries сколько раз пересчитывать ставку после конкурентной записи в журнал
	ConflictRetries uint64
	Metrics         *metrics.Collectors
}

type Engine struct {
	store    Store
	watchers WatcherStore
	clock    clock.TimeSource
	events   Publisher
	locks    *keyedMutex
	metrics  *metrics.Collectors

	tickWorkers     int
	conflictRetries uint64
}

func New(store Store, watchers WatcherStore, clk clock.TimeSource, pub Publisher, opts Options) *Engine {
	if opts.TickWorkers <= 0 {
		opts.TickWorkers = 8
	}
	if opts.ConflictRetries == 0 {
		opts.ConflictRetries = 3
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New(nil)
	}
	return &Engine{
		store:           store,
		watchers:        watchers,
		clock:           clk,
		events:          pub,
		locks:           newKeyedMutex(),
		metrics:         opts.Metrics,
		tickWorkers:     opts.TickWorkers,
		conflictRetries: opts.ConflictRetries,
	}
}

func (e *Engine) now() (time.Time, error) {
	now, err := e.clock.Now()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrTimeSourceLost, err)
	}
	return now, nil
}

func (e *Engine) loadAuction(ctx context.Context, id int64) (*models.Auction, error) {
	a, err := e.store.GetAuction(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, auction.ErrAuctionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load auction %d: %w", id, err)
	}
	return a, nil
}

// CreateAuction принимает запись от продавца/администратора, когда заданы время начала и конца
func (e *Engine) CreateAuction(ctx context.Context, a *models.Auction) error {
	if err := auction.ValidateNew(a); err != nil {
		return err
	}
	if err := e.store.CreateAuction(ctx, a); err != nil {
		return fmt.Errorf("create auction: %w", err)
	}
	log.Printf("INFO: auction %d scheduled %s - %s", a.ID, a.StartTime.Format(time.RFC3339), a.EndTime.Format(time.RFC3339))
	return nil
}

// GetAuction текущее представление аукциона со статусом на момент запроса
func (e *Engine) GetAuction(ctx context.Context, id int64) (models.AuctionView, error) {
	now, err := e.now()
	if err != nil {
		return models.AuctionView{}, err
	}
	a, err := e.loadAuction(ctx, id)
	if err != nil {
		return models.AuctionView{}, err
	}
	return auction.View(a, now, e.watcherCount(ctx, id)), nil
}

func (e *Engine) ListAuctions(ctx context.Context, limit, offset int) ([]models.AuctionView, error) {
	now, err := e.now()
	if err != nil {
		return nil, err
	}
	list, err := e.store.ListAuctions(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list auctions: %w", err)
	}
	views := make([]models.AuctionView, 0, len(list))
	for i := range list {
		views = append(views, auction.View(&list[i], now, e.watcherCount(ctx, list[i].ID)))
	}
	return views, nil
}

// ListBids журнал ставок аукциона в порядке sequence_number
func (e *Engine) ListBids(ctx context.Context, auctionID int64) ([]models.Bid, error) {
	if _, err := e.loadAuction(ctx, auctionID); err != nil {
		return nil, err
	}
	return e.store.ListBids(ctx, auctionID)
}

func (e *Engine) ListBidders(ctx context.Context, auctionID int64) ([]models.BidderSummary, error) {
	if _, err := e.loadAuction(ctx, auctionID); err != nil {
		return nil, err
	}
	return e.store.ListBidderSummaries(ctx, auctionID)
}

func (e *Engine) RegisterBidder(ctx context.Context, b *models.Bidder) error {
	return e.store.CreateBidder(ctx, b)
}

func (e *Engine) GetBidder(ctx context.Context, id int64) (*models.Bidder, error) {
	return e.store.GetBidder(ctx, id)
}

// Watch и Unwatch не берут блокировку аукциона и не влияют на ставки
func (e *Engine) Watch(ctx context.Context, auctionID, bidderID int64) (int, error) {
	if _, err := e.loadAuction(ctx, auctionID); err != nil {
		return 0, err
	}
	return e.watchers.Watch(ctx, auctionID, bidderID)
}

func (e *Engine) Unwatch(ctx context.Context, auctionID, bidderID int64) (int, error) {
	if _, err := e.loadAuction(ctx, auctionID); err != nil {
		return 0, err
	}
	return e.watchers.Unwatch(ctx, auctionID, bidderID)
}

func (e *Engine) watcherCount(ctx context.Context, auctionID int64) int {
	n, err := e.watchers.WatcherCount(ctx, auctionID)
	if err != nil {
		log.Printf("WARN: watcher count for auction %d: %v", auctionID, err)
		return 0
	}
	return n
}

func (e *Engine) publish(ev models.Event) {
	if e.events == nil {
		return
	}
	e.events.Publish(ev)
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"auctions/internal/auction"
	"auctions/models"

	"golang.org/x/sync/errgroup"
)

// DeclareWinner ручное назначение победителя администратором.
// Победителем может стать только участник, сделавший хотя бы одну ставку.
func (e *Engine) DeclareWinner(ctx context.Context, auctionID, bidderID int64) (models.ResolutionResult, error) {
	now, err := e.now()
	if err != nil {
		return models.ResolutionResult{}, err
	}

	unlock := e.locks.Lock(auctionID)
	defer unlock()

	a, err := e.loadAuction(ctx, auctionID)
	if err != nil {
		return models.ResolutionResult{}, err
	}
	if a.Resolved {
		return auction.ResultOf(a), auction.ErrAlreadyResolved
	}

	high, err := e.store.BidderHighBid(ctx, auctionID, bidderID)
	if err != nil {
		return models.ResolutionResult{}, fmt.Errorf("bidder high bid: %w", err)
	}
	res, err := auction.Declare(a, bidderID, high, now)
	if err != nil {
		return res, err
	}

	applied, err := e.store.SaveResolution(ctx, a)
	if err != nil {
		return models.ResolutionResult{}, fmt.Errorf("save resolution: %w", err)
	}
	if !applied {
		if cur, err := e.loadAuction(ctx, auctionID); err == nil {
			return auction.ResultOf(cur), auction.ErrAlreadyResolved
		}
		return models.ResolutionResult{}, auction.ErrAlreadyResolved
	}

	e.resolved(res)
	return res, nil
}

// resolveLocked естественное завершение; вызывается только под блокировкой аукциона.
// false, если итог уже зафиксирован другим процессом.
func (e *Engine) resolveLocked(ctx context.Context, a *models.Auction, now time.Time) (models.ResolutionResult, bool, error) {
	res, err := auction.Resolve(a, now)
	if err != nil {
		return res, false, err
	}
	applied, err := e.store.SaveResolution(ctx, a)
	if err != nil {
		return res, false, fmt.Errorf("save resolution: %w", err)
	}
	if !applied {
		return res, false, nil
	}
	e.resolved(res)
	return res, true, nil
}

func (e *Engine) resolved(res models.ResolutionResult) {
	e.metrics.AuctionsResolved.WithLabelValues(string(res.Outcome)).Inc()
	if res.WinnerID != nil {
		log.Printf("INFO: auction %d resolved %s, winner %d", res.AuctionID, res.Outcome, *res.WinnerID)
	} else {
		log.Printf("INFO: auction %d resolved %s", res.AuctionID, res.Outcome)
	}
	e.publish(models.Event{
		Type:       models.EventAuctionResolved,
		AuctionID:  res.AuctionID,
		Timestamp:  res.ResolvedAt,
		Resolution: &res,
	})
}

// Tick один проход: завершить все аукционы, у которых вышло время.
// Занятый аукцион пропускается, его завершит владелец блокировки или следующий тик.
func (e *Engine) Tick(ctx context.Context) error {
	started := time.Now()
	defer func() { e.metrics.TickDuration.Observe(time.Since(started).Seconds()) }()

	now, err := e.now()
	if err != nil {
		return err
	}

	ids, err := e.store.ListDueAuctions(ctx, now)
	if err != nil {
		e.metrics.TickFailures.Inc()
		return fmt.Errorf("list due auctions: %w", err)
	}

	var g errgroup.Group
	g.SetLimit(e.tickWorkers)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			e.resolveDue(ctx, id, now)
			return nil
		})
	}
	return g.Wait()
}

func (e *Engine) resolveDue(ctx context.Context, id int64, now time.Time) {
	unlock, ok := e.locks.TryLock(id)
	if !ok {
		return
	}
	defer unlock()

	a, err := e.loadAuction(ctx, id)
	if err != nil {
		e.metrics.TickFailures.Inc()
		log.Printf("ERROR: tick load auction %d: %v", id, err)
		return
	}
	if !auction.NeedsResolution(a, now) {
		return
	}
	if _, _, err := e.resolveLocked(ctx, a, now); err != nil {
		e.metrics.TickFailures.Inc()
		log.Printf("ERROR: tick resolve auction %d: %v", id, err)
	}
}

// Run крутит тики до отмены ctx. Потеря источника времени останавливает цикл
// с ошибкой, состояние журнала при этом не трогается.
func (e *Engine) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("INFO: tick loop started (interval: %s)", interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("INFO: tick loop stopped")
			return nil
		case <-ticker.C:
			err := e.Tick(ctx)
			if err == nil {
				continue
			}
			if errors.Is(err, ErrTimeSourceLost) {
				log.Printf("ERROR: %v, halting tick loop", err)
				return err
			}
			log.Printf("WARN: tick failed: %v", err)
		}
	}
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"auctions/db"
	"auctions/internal/auction"
	"auctions/models"

	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
)

// PlaceBid проверяет ставку и, если она проходит, атомарно дописывает её в журнал,
// обновляет лидера и применяет автопродление. Отказ не оставляет никаких следов.
func (e *Engine) PlaceBid(ctx context.Context, auctionID, bidderID int64, amount decimal.Decimal) (models.BidResult, error) {
	now, err := e.now()
	if err != nil {
		return models.BidResult{}, err
	}

	unlock := e.locks.Lock(auctionID)
	defer unlock()

	var (
		a   *models.Auction
		bid *models.Bid
		ext *models.Extension
	)
	backoff := retry.WithMaxRetries(e.conflictRetries, retry.NewConstant(5*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		a, err = e.loadAuction(ctx, auctionID)
		if err != nil {
			return err
		}

		if auction.NeedsResolution(a, now) {
			if _, _, err := e.resolveLocked(ctx, a, now); err != nil {
				log.Printf("ERROR: resolve auction %d on late bid: %v", auctionID, err)
			}
			return &auction.NotActiveError{Status: auction.StatusAt(a, now)}
		}
		if err := auction.ValidateBid(a, amount, now); err != nil {
			return err
		}

		bid = &models.Bid{
			AuctionID:      a.ID,
			BidderID:       bidderID,
			Amount:         amount,
			PlacedAt:       now,
			SequenceNumber: a.BidCount + 1,
		}
		leader := bidderID
		a.CurrentHighBid = decimal.NewNullDecimal(amount)
		a.CurrentHighBidder = &leader
		a.BidCount = bid.SequenceNumber
		ext, _ = auction.ApplyExtension(a, now)

		if err := e.store.AppendBid(ctx, a, bid); err != nil {
			if errors.Is(err, db.ErrConflict) {
				e.metrics.LedgerConflicts.Inc()
				return retry.RetryableError(err)
			}
			return fmt.Errorf("append bid: %w", err)
		}
		return nil
	})
	if err != nil {
		e.metrics.BidsRejected.WithLabelValues(rejectReason(err)).Inc()
		return models.BidResult{}, err
	}

	e.metrics.BidsAccepted.Inc()
	log.Printf("INFO: auction %d bid #%d by %d: %s", a.ID, bid.SequenceNumber, bidderID, amount)
	e.publish(models.Event{Type: models.EventBidPlaced, AuctionID: a.ID, Timestamp: now, Bid: bid})

	if ext != nil {
		e.metrics.AuctionsExtended.Inc()
		log.Printf("INFO: auction %d extended to %s (%d/%d)", a.ID, a.EndTime.Format(time.RFC3339), ext.ExtensionsApplied, ext.MaxExtensions)
		e.publish(models.Event{Type: models.EventAuctionExtended, AuctionID: a.ID, Timestamp: now, Extension: ext})
	}

	return models.BidResult{
		Outcome:        models.BidAccepted,
		MinAcceptable:  decimal.NewNullDecimal(auction.MinAcceptable(a)),
		SequenceNumber: bid.SequenceNumber,
		Bid:            bid,
		EndTime:        a.EndTime,
		Extended:       ext != nil,
	}, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, auction.ErrBidTooLow):
		return "bid_too_low"
	case errors.Is(err, auction.ErrAuctionNotActive):
		return "not_active"
	case errors.Is(err, auction.ErrAuctionNotFound):
		return "not_found"
	default:
		return "error"
	}
}

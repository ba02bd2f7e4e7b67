// Package memstore хранит аукционы и журнал ставок в памяти процесса.
// Семантика совпадает с postgres-хранилищем из пакета db, включая ErrConflict.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"auctions/db"
	"auctions/models"

	"github.com/shopspring/decimal"
)

type Store struct {
	mu       sync.RWMutex
	nextID   int64
	auctions map[int64]*models.Auction
	bids     map[int64][]models.Bid
	bidders  map[int64]*models.Bidder
	lastBid  int64
	lastUser int64
}

func New() *Store {
	return &Store{
		auctions: make(map[int64]*models.Auction),
		bids:     make(map[int64][]models.Bid),
		bidders:  make(map[int64]*models.Bidder),
	}
}

func (s *Store) CreateAuction(_ context.Context, a *models.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	now := time.Now().UTC()
	a.ID = s.nextID
	a.CreatedAt = now
	a.UpdatedAt = now
	stored := cloneAuction(a)
	s.auctions[a.ID] = stored
	return nil
}

func (s *Store) GetAuction(_ context.Context, id int64) (*models.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.auctions[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return cloneAuction(a), nil
}

func (s *Store) ListAuctions(_ context.Context, limit, offset int) ([]models.Auction, error) {
	s.mu.RLock()
	all := make([]models.Auction, 0, len(s.auctions))
	for _, a := range s.auctions {
		all = append(all, *cloneAuction(a))
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].EndTime.Equal(all[j].EndTime) {
			return all[i].ID < all[j].ID
		}
		return all[i].EndTime.Before(all[j].EndTime)
	})
	if offset >= len(all) {
		return []models.Auction{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *Store) ListDueAuctions(_ context.Context, now time.Time) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := []int64{}
	for id, a := range s.auctions {
		if !a.Resolved && !a.EndTime.After(now) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *Store) AppendBid(_ context.Context, a *models.Auction, b *models.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.auctions[a.ID]
	if !ok {
		return db.ErrNotFound
	}
	if cur.Resolved || cur.BidCount != b.SequenceNumber-1 || a.EndTime.Before(cur.EndTime) {
		return db.ErrConflict
	}

	s.lastBid++
	b.ID = s.lastBid
	s.bids[a.ID] = append(s.bids[a.ID], *b)

	cur.CurrentHighBid = a.CurrentHighBid
	cur.CurrentHighBidder = cloneID(a.CurrentHighBidder)
	cur.BidCount = a.BidCount
	cur.EndTime = a.EndTime
	cur.ExtensionsApplied = a.ExtensionsApplied
	cur.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) SaveResolution(_ context.Context, a *models.Auction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.auctions[a.ID]
	if !ok {
		return false, db.ErrNotFound
	}
	if cur.Resolved {
		return false, nil
	}
	cur.Resolved = true
	cur.WinnerID = cloneID(a.WinnerID)
	cur.Outcome = a.Outcome
	if a.ResolvedAt != nil {
		at := *a.ResolvedAt
		cur.ResolvedAt = &at
	}
	cur.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (s *Store) ListBids(_ context.Context, auctionID int64) ([]models.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Bid, len(s.bids[auctionID]))
	copy(out, s.bids[auctionID])
	return out, nil
}

func (s *Store) BidderHighBid(_ context.Context, auctionID, bidderID int64) (decimal.NullDecimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var high decimal.NullDecimal
	for _, b := range s.bids[auctionID] {
		if b.BidderID != bidderID {
			continue
		}
		if !high.Valid || b.Amount.GreaterThan(high.Decimal) {
			high = decimal.NewNullDecimal(b.Amount)
		}
	}
	return high, nil
}

func (s *Store) ListBidderSummaries(_ context.Context, auctionID int64) ([]models.BidderSummary, error) {
	s.mu.RLock()
	byBidder := make(map[int64]*models.BidderSummary)
	for _, b := range s.bids[auctionID] {
		sum, ok := byBidder[b.BidderID]
		if !ok {
			sum = &models.BidderSummary{BidderID: b.BidderID, HighestBidByBidder: b.Amount}
			if p, ok := s.bidders[b.BidderID]; ok {
				sum.UserID = p.UserID
				sum.Name = p.Name
				sum.Email = p.Email
			}
			byBidder[b.BidderID] = sum
		}
		sum.TotalBids++
		if b.Amount.GreaterThan(sum.HighestBidByBidder) {
			sum.HighestBidByBidder = b.Amount
		}
	}
	s.mu.RUnlock()

	out := make([]models.BidderSummary, 0, len(byBidder))
	for _, sum := range byBidder {
		out = append(out, *sum)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].HighestBidByBidder.Equal(out[j].HighestBidByBidder) {
			return out[i].BidderID < out[j].BidderID
		}
		return out[i].HighestBidByBidder.GreaterThan(out[j].HighestBidByBidder)
	})
	return out, nil
}

func (s *Store) CreateBidder(_ context.Context, b *models.Bidder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUser++
	b.ID = s.lastUser
	b.CreatedAt = time.Now().UTC()
	stored := *b
	s.bidders[b.ID] = &stored
	return nil
}

func (s *Store) GetBidder(_ context.Context, id int64) (*models.Bidder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bidders[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	out := *b
	return &out, nil
}

func cloneAuction(a *models.Auction) *models.Auction {
	out := *a
	out.CurrentHighBidder = cloneID(a.CurrentHighBidder)
	out.WinnerID = cloneID(a.WinnerID)
	if a.ResolvedAt != nil {
		at := *a.ResolvedAt
		out.ResolvedAt = &at
	}
	return &out
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

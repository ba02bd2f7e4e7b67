package memstore_test

import (
	"context"
	"testing"
	"time"

	"auctions/db"
	"auctions/internal/memstore"
	"auctions/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, s *memstore.Store) *models.Auction {
	t.Helper()
	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	a := &models.Auction{
		Title:        "Painting",
		StartingBid:  decimal.NewFromInt(10),
		BidIncrement: decimal.NewFromInt(1),
		StartTime:    start,
		EndTime:      start.Add(time.Hour),
	}
	require.NoError(t, s.CreateAuction(context.Background(), a))
	require.NotZero(t, a.ID)
	return a
}

func TestGetAuctionNotFound(t *testing.T) {
	_, err := memstore.New().GetAuction(context.Background(), 42)
	require.ErrorIs(t, err, db.ErrNotFound)
}

func TestAppendBidDetectsStaleSequence(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	a := seed(t, s)

	bidder := int64(5)
	a.CurrentHighBid = decimal.NewNullDecimal(decimal.NewFromInt(10))
	a.CurrentHighBidder = &bidder
	a.BidCount = 1
	bid := &models.Bid{AuctionID: a.ID, BidderID: bidder, Amount: decimal.NewFromInt(10), SequenceNumber: 1}
	require.NoError(t, s.AppendBid(ctx, a, bid))
	require.Equal(t, int64(1), bid.ID)

	stale := &models.Bid{AuctionID: a.ID, BidderID: 6, Amount: decimal.NewFromInt(11), SequenceNumber: 1}
	require.ErrorIs(t, s.AppendBid(ctx, a, stale), db.ErrConflict)

	bids, err := s.ListBids(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, bids, 1)

	stored, err := s.GetAuction(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), stored.BidCount)
	require.Equal(t, bidder, *stored.CurrentHighBidder)
}

func TestSaveResolutionOnlyOnce(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	a := seed(t, s)

	first := int64(1)
	now := a.EndTime
	a.Resolved, a.WinnerID, a.Outcome, a.ResolvedAt = true, &first, models.OutcomeDeclared, &now
	ok, err := s.SaveResolution(ctx, a)
	require.NoError(t, err)
	require.True(t, ok)

	second := int64(2)
	a.WinnerID = &second
	ok, err = s.SaveResolution(ctx, a)
	require.NoError(t, err)
	require.False(t, ok)

	stored, _ := s.GetAuction(ctx, a.ID)
	require.Equal(t, first, *stored.WinnerID)
}

func TestBidderSummaries(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	a := seed(t, s)

	p := &models.Bidder{UserID: 77, Name: "Ann", Email: "ann@example.com"}
	require.NoError(t, s.CreateBidder(ctx, p))

	amounts := []struct {
		bidder int64
		amount int64
	}{{p.ID, 10}, {99, 11}, {p.ID, 15}}
	for i, x := range amounts {
		bidder := x.bidder
		a.CurrentHighBid = decimal.NewNullDecimal(decimal.NewFromInt(x.amount))
		a.CurrentHighBidder = &bidder
		a.BidCount = int64(i + 1)
		require.NoError(t, s.AppendBid(ctx, a, &models.Bid{
			AuctionID: a.ID, BidderID: bidder, Amount: decimal.NewFromInt(x.amount), SequenceNumber: int64(i + 1),
		}))
	}

	sums, err := s.ListBidderSummaries(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, sums, 2)
	require.Equal(t, p.ID, sums[0].BidderID)
	require.Equal(t, "Ann", sums[0].Name)
	require.Equal(t, 2, sums[0].TotalBids)
	require.True(t, decimal.NewFromInt(15).Equal(sums[0].HighestBidByBidder))
	require.Equal(t, int64(99), sums[1].BidderID)

	high, err := s.BidderHighBid(ctx, a.ID, 99)
	require.NoError(t, err)
	require.True(t, high.Valid)
	none, _ := s.BidderHighBid(ctx, a.ID, 1234)
	require.False(t, none.Valid)
}

package auction_test

import (
	"testing"
	"time"

	"auctions/internal/auction"
	"auctions/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newAuction() *models.Auction {
	return &models.Auction{
		ID:           1,
		Title:        "Vintage lamp",
		StartingBid:  decimal.NewFromInt(100),
		BidIncrement: decimal.NewFromInt(10),
		ReservePrice: decimal.NewNullDecimal(decimal.NewFromInt(150)),
		StartTime:    base,
		EndTime:      base.Add(time.Hour),
	}
}

func bidder(id int64) *int64 { return &id }

func TestEvaluate(t *testing.T) {
	a := newAuction()
	a.ExtensionWindow = models.Duration(5 * time.Minute)

	tests := []struct {
		name       string
		now        time.Time
		resolved   bool
		want       models.Status
		endingSoon bool
	}{
		{"before start", base.Add(-time.Second), false, models.StatusUpcoming, false},
		{"at start", base, false, models.StatusActive, false},
		{"inside ending window", base.Add(58 * time.Minute), false, models.StatusActive, true},
		{"at end", base.Add(time.Hour), false, models.StatusEnded, false},
		{"after end", base.Add(2 * time.Hour), false, models.StatusEnded, false},
		{"resolved early", base.Add(time.Minute), true, models.StatusFinalized, false},
		{"resolved after end", base.Add(2 * time.Hour), true, models.StatusFinalized, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := *a
			rec.Resolved = tt.resolved
			phase := auction.Evaluate(&rec, tt.now)
			require.Equal(t, tt.want, phase.Status)
			require.Equal(t, tt.endingSoon, phase.EndingSoon)
		})
	}
}

func TestPhaseDisplayEndingSoon(t *testing.T) {
	a := newAuction()
	a.ExtensionWindow = models.Duration(5 * time.Minute)

	view := auction.View(a, base.Add(57*time.Minute), 3)
	require.Equal(t, models.StatusEndingSoon, view.Status)
	require.True(t, view.EndingSoon)
	require.Equal(t, 3, view.WatcherCount)

	a.ExtensionWindow = 0
	view = auction.View(a, base.Add(59*time.Minute), 0)
	require.Equal(t, models.StatusActive, view.Status)
}

func TestMinAcceptable(t *testing.T) {
	a := newAuction()
	require.True(t, decimal.NewFromInt(100).Equal(auction.MinAcceptable(a)))

	a.CurrentHighBid = decimal.NewNullDecimal(decimal.NewFromInt(110))
	require.True(t, decimal.NewFromInt(120).Equal(auction.MinAcceptable(a)))
}

func TestValidateBid(t *testing.T) {
	a := newAuction()
	now := base.Add(time.Minute)

	err := auction.ValidateBid(a, decimal.NewFromInt(99), now)
	var low *auction.BidTooLowError
	require.ErrorAs(t, err, &low)
	require.ErrorIs(t, err, auction.ErrBidTooLow)
	require.True(t, decimal.NewFromInt(100).Equal(low.MinAcceptable))

	require.NoError(t, auction.ValidateBid(a, decimal.NewFromInt(100), now))

	// резерв выше ставки, но приём ставки от него не зависит
	require.NoError(t, auction.ValidateBid(a, decimal.NewFromInt(120), now))

	for _, at := range []time.Time{base.Add(-time.Minute), base.Add(time.Hour)} {
		err := auction.ValidateBid(a, decimal.NewFromInt(500), at)
		require.ErrorIs(t, err, auction.ErrAuctionNotActive)
	}

	a.Resolved = true
	var notActive *auction.NotActiveError
	require.ErrorAs(t, auction.ValidateBid(a, decimal.NewFromInt(500), now), &notActive)
	require.Equal(t, models.StatusFinalized, notActive.Status)
}

func TestValidateNew(t *testing.T) {
	require.NoError(t, auction.ValidateNew(newAuction()))

	tests := []struct {
		name   string
		mutate func(a *models.Auction)
	}{
		{"empty title", func(a *models.Auction) { a.Title = " " }},
		{"negative starting bid", func(a *models.Auction) { a.StartingBid = decimal.NewFromInt(-1) }},
		{"zero increment", func(a *models.Auction) { a.BidIncrement = decimal.Zero }},
		{"reserve below start", func(a *models.Auction) { a.ReservePrice = decimal.NewNullDecimal(decimal.NewFromInt(50)) }},
		{"end before start", func(a *models.Auction) { a.EndTime = a.StartTime }},
		{"negative max extensions", func(a *models.Auction) { a.MaxExtensions = -1 }},
		{"auto extend without window", func(a *models.Auction) { a.AutoExtend = true }},
		{"engine field preset", func(a *models.Auction) { a.Resolved = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAuction()
			tt.mutate(a)
			require.ErrorIs(t, auction.ValidateNew(a), auction.ErrInvalidAuction)
		})
	}
}

func TestApplyExtension(t *testing.T) {
	a := newAuction()
	a.AutoExtend = true
	a.MaxExtensions = 3
	a.ExtensionWindow = models.Duration(5 * time.Minute)
	a.ExtensionDelta = models.Duration(5 * time.Minute)
	end := a.EndTime

	_, ok := auction.ApplyExtension(a, end.Add(-10*time.Minute))
	require.False(t, ok)

	// ровно на границе окна продления нет
	_, ok = auction.ApplyExtension(a, end.Add(-5*time.Minute))
	require.False(t, ok)

	ext, ok := auction.ApplyExtension(a, end.Add(-2*time.Minute))
	require.True(t, ok)
	require.Equal(t, end, ext.PreviousEndTime)
	require.Equal(t, end.Add(5*time.Minute), a.EndTime)
	require.Equal(t, 1, a.ExtensionsApplied)

	for i := 0; i < 5; i++ {
		auction.ApplyExtension(a, a.EndTime.Add(-time.Second))
	}
	require.Equal(t, 3, a.ExtensionsApplied)
	require.Equal(t, end.Add(15*time.Minute), a.EndTime)
}

func TestApplyExtensionDisabled(t *testing.T) {
	a := newAuction()
	a.ExtensionWindow = models.Duration(5 * time.Minute)
	a.ExtensionDelta = models.Duration(5 * time.Minute)
	a.MaxExtensions = 3
	end := a.EndTime

	_, ok := auction.ApplyExtension(a, end.Add(-time.Minute))
	require.False(t, ok)
	require.Equal(t, end, a.EndTime)
}

func TestResolve(t *testing.T) {
	after := base.Add(time.Hour)

	t.Run("reserve met", func(t *testing.T) {
		a := newAuction()
		a.CurrentHighBid = decimal.NewNullDecimal(decimal.NewFromInt(200))
		a.CurrentHighBidder = bidder(7)

		res, err := auction.Resolve(a, after)
		require.NoError(t, err)
		require.Equal(t, models.OutcomeSold, res.Outcome)
		require.Equal(t, int64(7), *res.WinnerID)
		require.True(t, decimal.NewFromInt(200).Equal(res.WinningBid.Decimal))
		require.True(t, a.Resolved)
	})

	t.Run("reserve not met", func(t *testing.T) {
		a := newAuction()
		a.CurrentHighBid = decimal.NewNullDecimal(decimal.NewFromInt(140))
		a.CurrentHighBidder = bidder(7)

		res, err := auction.Resolve(a, after)
		require.NoError(t, err)
		require.Equal(t, models.OutcomeUnsold, res.Outcome)
		require.Nil(t, res.WinnerID)
	})

	t.Run("no reserve", func(t *testing.T) {
		a := newAuction()
		a.ReservePrice = decimal.NullDecimal{}
		a.CurrentHighBid = decimal.NewNullDecimal(decimal.NewFromInt(100))
		a.CurrentHighBidder = bidder(3)

		res, err := auction.Resolve(a, after)
		require.NoError(t, err)
		require.Equal(t, int64(3), *res.WinnerID)
	})

	t.Run("no bids", func(t *testing.T) {
		a := newAuction()
		res, err := auction.Resolve(a, after)
		require.NoError(t, err)
		require.Equal(t, models.OutcomeUnsold, res.Outcome)
		require.Nil(t, a.WinnerID)
	})

	t.Run("still active", func(t *testing.T) {
		a := newAuction()
		_, err := auction.Resolve(a, base.Add(time.Minute))
		require.ErrorIs(t, err, auction.ErrAuctionNotActive)
		require.False(t, a.Resolved)
	})

	t.Run("twice", func(t *testing.T) {
		a := newAuction()
		a.CurrentHighBid = decimal.NewNullDecimal(decimal.NewFromInt(200))
		a.CurrentHighBidder = bidder(7)
		first, err := auction.Resolve(a, after)
		require.NoError(t, err)

		second, err := auction.Resolve(a, after.Add(time.Second))
		require.ErrorIs(t, err, auction.ErrAlreadyResolved)
		require.Equal(t, first.WinnerID, second.WinnerID)
		require.Equal(t, first.ResolvedAt, second.ResolvedAt)
	})
}

func TestDeclare(t *testing.T) {
	a := newAuction()
	a.CurrentHighBid = decimal.NewNullDecimal(decimal.NewFromInt(120))
	a.CurrentHighBidder = bidder(9)
	now := base.Add(10 * time.Minute)

	_, err := auction.Declare(a, 5, decimal.NullDecimal{}, now)
	require.ErrorIs(t, err, auction.ErrNotABidder)
	require.False(t, a.Resolved)

	res, err := auction.Declare(a, 5, decimal.NewNullDecimal(decimal.NewFromInt(110)), now)
	require.NoError(t, err)
	require.Equal(t, models.OutcomeDeclared, res.Outcome)
	require.Equal(t, int64(5), *res.WinnerID)
	require.True(t, decimal.NewFromInt(110).Equal(res.WinningBid.Decimal))
	require.Equal(t, models.StatusFinalized, auction.StatusAt(a, now))

	_, err = auction.Declare(a, 9, decimal.NewNullDecimal(decimal.NewFromInt(120)), now)
	require.ErrorIs(t, err, auction.ErrAlreadyResolved)
	require.Equal(t, int64(5), *a.WinnerID)

	_, err = auction.Resolve(a, base.Add(2*time.Hour))
	require.ErrorIs(t, err, auction.ErrAlreadyResolved)
	require.Equal(t, int64(5), *a.WinnerID)
}

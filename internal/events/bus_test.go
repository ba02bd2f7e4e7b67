package events_test

import (
	"testing"

	"auctions/internal/events"
	"auctions/models"

	"github.com/stretchr/testify/require"
)

func TestPublishAssignsSequence(t *testing.T) {
	bus := events.NewBus(8)

	first := bus.Publish(models.Event{Type: models.EventBidPlaced, AuctionID: 1})
	second := bus.Publish(models.Event{Type: models.EventAuctionExtended, AuctionID: 1})

	require.Equal(t, uint64(1), first.Seq)
	require.Equal(t, uint64(2), second.Seq)
	require.NotEqual(t, first.ID, second.ID)
	require.Equal(t, uint64(2), bus.LastSeq())
}

func TestSinceFiltersAndLimits(t *testing.T) {
	bus := events.NewBus(8)
	for i := 0; i < 3; i++ {
		bus.Publish(models.Event{Type: models.EventBidPlaced, AuctionID: 1})
		bus.Publish(models.Event{Type: models.EventBidPlaced, AuctionID: 2})
	}

	all := bus.Since(0, 0, 0)
	require.Len(t, all, 6)

	onlyTwo := bus.Since(0, 2, 0)
	require.Len(t, onlyTwo, 3)
	for _, ev := range onlyTwo {
		require.Equal(t, int64(2), ev.AuctionID)
	}

	limited := bus.Since(2, 0, 2)
	require.Len(t, limited, 2)
	require.Equal(t, uint64(3), limited[0].Seq)
	require.Equal(t, uint64(4), limited[1].Seq)
}

func TestRingDropsOldest(t *testing.T) {
	bus := events.NewBus(3)
	for i := 0; i < 5; i++ {
		bus.Publish(models.Event{AuctionID: 1})
	}

	got := bus.Since(0, 0, 0)
	require.Len(t, got, 3)
	require.Equal(t, uint64(3), got[0].Seq)
	require.Equal(t, uint64(5), got[2].Seq)
}

func TestSubscribeReceivesOwnAuction(t *testing.T) {
	bus := events.NewBus(8)
	ch, cancel := bus.Subscribe(1, 4)
	defer cancel()

	bus.Publish(models.Event{Type: models.EventBidPlaced, AuctionID: 2})
	bus.Publish(models.Event{Type: models.EventAuctionResolved, AuctionID: 1})

	ev := <-ch
	require.Equal(t, models.EventAuctionResolved, ev.Type)
	require.Empty(t, ch)
}

func TestSlowSubscriberIsEvicted(t *testing.T) {
	bus := events.NewBus(8)
	ch, cancel := bus.Subscribe(0, 1)

	bus.Publish(models.Event{AuctionID: 1})
	bus.Publish(models.Event{AuctionID: 1})

	_, ok := <-ch
	require.True(t, ok)
	_, ok = <-ch
	require.False(t, ok)

	// отмена после вытеснения не паникует
	cancel()
	cancel()
}

// Package events раздаёт события движка (bid_placed, auction_extended, auction_resolved)
// подписчикам и хранит последние события для опроса.
package events

import (
	"sync"

	"auctions/models"

	"github.com/google/uuid"
)

// Bus in-process шина событий с кольцевым буфером.
// Медленный подписчик не тормозит публикацию: его канал закрывается и он отключается.
type Bus struct {
	mu     sync.Mutex
	seq    uint64
	ring   []models.Event
	head   int
	size   int
	subs   map[int]*subscriber
	nextID int
}

type subscriber struct {
	auctionID int64
	ch        chan models.Event
}

func NewBus(capacity int) *Bus {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Bus{
		ring: make([]models.Event, capacity),
		subs: make(map[int]*subscriber),
	}
}

// Publish присваивает событию id и порядковый номер, сохраняет и рассылает его
func (b *Bus) Publish(ev models.Event) models.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	ev.Seq = b.seq
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}

	idx := (b.head + b.size) % len(b.ring)
	b.ring[idx] = ev
	if b.size < len(b.ring) {
		b.size++
	} else {
		b.head = (b.head + 1) % len(b.ring)
	}

	for id, s := range b.subs {
		if s.auctionID != 0 && s.auctionID != ev.AuctionID {
			continue
		}
		select {
		case s.ch <- ev:
		default:
			close(s.ch)
			delete(b.subs, id)
		}
	}
	return ev
}

// Subscribe подписка на события аукциона; auctionID = 0 подписывает на все.
// Возвращаемая функция отменяет подписку, повторный вызов безопасен.
func (b *Bus) Subscribe(auctionID int64, buffer int) (<-chan models.Event, func()) {
	if buffer <= 0 {
		buffer = 64
	}
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	s := &subscriber{auctionID: auctionID, ch: make(chan models.Event, buffer)}
	b.subs[id] = s
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if cur, ok := b.subs[id]; ok && cur == s {
			close(s.ch)
			delete(b.subs, id)
		}
	}
	return s.ch, cancel
}

// Since события с номером больше after, не более limit штук, в порядке публикации
func (b *Bus) Since(after uint64, auctionID int64, limit int) []models.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]models.Event, 0)
	for i := 0; i < b.size; i++ {
		ev := b.ring[(b.head+i)%len(b.ring)]
		if ev.Seq <= after {
			continue
		}
		if auctionID != 0 && ev.AuctionID != auctionID {
			continue
		}
		out = append(out, ev)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// LastSeq номер последнего опубликованного события
func (b *Bus) LastSeq() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seq
}

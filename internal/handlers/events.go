package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
	subBuffer    = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// GetEventsHandler GET /api/events?after=N&limit=M&auctionId=K, опрос ленты событий
func (h *Handler) GetEventsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var after uint64
	if s := q.Get("after"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			http.Error(w, "Invalid after", http.StatusBadRequest)
			return
		}
		after = v
	}

	var auctionID int64
	if s := q.Get("auctionId"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil || v <= 0 {
			http.Error(w, "Invalid auctionId", http.StatusBadRequest)
			return
		}
		auctionID = v
	}

	limit := 100
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 && l <= 1000 {
		limit = l
	}

	writeJSON(w, http.StatusOK, h.Events.Since(after, auctionID, limit))
}

// StreamEventsHandler GET /api/auctions/{auctionId}/events/ws, события аукциона через websocket.
// Медленный клиент отключается шиной, соединение при этом закрывается.
func (h *Handler) StreamEventsHandler(w http.ResponseWriter, r *http.Request) {
	auctionID, ok := idParam(r, "auctionId")
	if !ok {
		http.Error(w, "Invalid auctionId", http.StatusBadRequest)
		return
	}
	if _, err := h.Service.GetAuction(r.Context(), auctionID); err != nil {
		writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WARN: ws upgrade: %v", err)
		return
	}
	defer conn.Close()

	events, cancel := h.Events.Subscribe(auctionID, subBuffer)
	defer cancel()

	// читаем только ради pong и закрытия соединения клиентом
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case ev, ok := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "subscriber too slow"))
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				log.Printf("ERROR: marshal event %d: %v", ev.Seq, err)
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}

// Package wscounter pushes live global click totals over a WebSocket,
// an alternative to the SSE stream for clients that prefer a socket.
package wscounter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"nhooyr.io/websocket"

	"github.com/playgrove/clickportal/internal/aggregate"
	"github.com/playgrove/clickportal/internal/game"
)

type Handler struct {
	logger  *slog.Logger
	counter aggregate.Counter
	clock   game.Clock
}

func NewHandler(logger *slog.Logger, counter aggregate.Counter, clock game.Clock) *Handler {
	return &Handler{logger: logger, counter: counter, clock: clock}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/counter", h.stream)
	return r
}

type update struct {
	Date  string `json:"date"`
	Total int64  `json:"total"`
}

func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Error("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Minute)
	defer cancel()
	// We never expect client messages; CloseRead cancels ctx when the
	// peer goes away.
	ctx = conn.CloseRead(ctx)

	day := aggregate.DayKey(h.clock.Now())
	updates := make(chan int64, 16)
	unsub, err := h.counter.Subscribe(ctx, day, func(total int64) {
		select {
		case updates <- total:
		default:
		}
	})
	if err != nil {
		h.logger.Warn("counter subscription failed", "key", day, "error", err)
	} else {
		defer unsub()
	}

	total, err := h.counter.Value(ctx, day)
	if err != nil {
		h.logger.Warn("counter read failed", "key", day, "error", err)
		total = 0
	}
	if err := h.send(ctx, conn, update{Date: day, Total: total}); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case total := <-updates:
			if err := h.send(ctx, conn, update{Date: day, Total: total}); err != nil {
				h.logger.Debug("websocket write failed", "error", err)
				return
			}
		}
	}
}

func (h *Handler) send(ctx context.Context, conn *websocket.Conn, u update) error {
	data, _ := json.Marshal(u)
	return conn.Write(ctx, websocket.MessageText, data)
}

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/jonboulle/clockwork"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/playperu/quizshow/internal/eventbus"
)

// handleStream pushes the session's events as Server-Sent Events. The first
// event is always init with the full state. A subscriber that falls behind
// is dropped and has to reconnect.
func handleStream(logger *slog.Logger, keepAlive time.Duration, clock clockwork.Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported", codeInternal)
			return
		}

		s := sessionFrom(r)
		st, sub, err := s.Machine.Subscribe(r.Context())
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		defer sub.Close()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		if err := writeSSE(w, s.Machine.InitEvent(st)); err != nil {
			logger.Debug("stream write failed", "error", err)
			return
		}
		flusher.Flush()

		ping := clock.NewTicker(keepAlive)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-sub.Done():
				logger.Info("stream subscriber dropped", "session", s.Name, "subscriber", sub.ID())
				return
			case e := <-sub.C():
				if err := writeSSE(w, e); err != nil {
					logger.Debug("stream write failed", "error", err)
					return
				}
				flusher.Flush()
			case <-ping.Chan():
				fmt.Fprint(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}

func writeSSE(w http.ResponseWriter, e eventbus.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding event %q: %w", e.Type, err)
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}

// handleWS carries the same stream over a WebSocket, one JSON text frame
// per event. Messages from the client are ignored. Cross-origin upgrades
// are accepted only from hosts matching origins.
func handleWS(logger *slog.Logger, keepAlive time.Duration, clock clockwork.Clock, origins []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := sessionFrom(r)

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: origins,
		})
		if err != nil {
			logger.Warn("websocket accept failed", "origin", r.Header.Get("Origin"), "error", err)
			return
		}
		defer conn.CloseNow()

		ctx := conn.CloseRead(r.Context())

		st, sub, err := s.Machine.Subscribe(ctx)
		if err != nil {
			logger.Error("subscribing", "session", s.Name, "error", err)
			conn.Close(websocket.StatusInternalError, "internal error")
			return
		}
		defer sub.Close()

		if err := writeWS(ctx, conn, s.Machine.InitEvent(st)); err != nil {
			logger.Debug("websocket write failed", "error", err)
			return
		}

		ping := clock.NewTicker(keepAlive)
		defer ping.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-sub.Done():
				logger.Info("stream subscriber dropped", "session", s.Name, "subscriber", sub.ID())
				conn.Close(websocket.StatusTryAgainLater, "subscriber fell behind")
				return
			case e := <-sub.C():
				if err := writeWS(ctx, conn, e); err != nil {
					logger.Debug("websocket write failed", "error", err)
					return
				}
			case <-ping.Chan():
				pctx, cancel := context.WithTimeout(ctx, keepAlive)
				err := conn.Ping(pctx)
				cancel()
				if err != nil {
					logger.Debug("websocket ping failed", "error", err)
					return
				}
			}
		}
	}
}

func writeWS(ctx context.Context, conn *websocket.Conn, e eventbus.Event) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return wsjson.Write(ctx, conn, e)
}

// originPatterns turns CORS origins such as https://host.example:8443 into
// the host patterns the websocket origin check matches against.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			patterns = append(patterns, o)
			continue
		}
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			patterns = append(patterns, o)
			continue
		}
		patterns = append(patterns, u.Host)
	}
	return patterns
}

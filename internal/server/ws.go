package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/hammamikhairi/ottohome/internal/domain"
)

const (
	wsPongWait   = 120 * time.Second
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local assistant, any origin
	},
}

// wsRequest is a client frame. Type is "message", "clear" or "ping".
type wsRequest struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// wsResponse is a server frame. Type is "reply", "cleared", "pong" or "error".
type wsResponse struct {
	Type  string         `json:"type"`
	Reply *replyResponse `json:"reply,omitempty"`
	Error string         `json:"error,omitempty"`
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.sessions.History(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed: %v", err)
		return
	}
	s.handleConn(r.Context(), conn, id)
}

func (s *Server) handleConn(ctx context.Context, conn *websocket.Conn, id string) {
	defer conn.Close()
	s.log.Info("websocket connected: session=%s remote=%s", id, conn.RemoteAddr())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	// Replies and pings share the connection; gorilla allows one writer.
	out := make(chan wsResponse, 8)
	done := make(chan struct{})
	go s.writeLoop(conn, out, done)
	defer func() {
		close(out)
		<-done
	}()

	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("websocket read error: %v", err)
			} else {
				s.log.Info("websocket closed: session=%s", id)
			}
			return
		}

		switch req.Type {
		case "ping":
			out <- wsResponse{Type: "pong"}

		case "clear":
			if err := s.sessions.ClearHistory(ctx, id); err != nil {
				out <- wsResponse{Type: "error", Error: err.Error()}
				if errors.Is(err, domain.ErrSessionNotFound) {
					return
				}
				continue
			}
			out <- wsResponse{Type: "cleared"}

		case "message", "":
			if msg := validateText(req.Text); msg != "" {
				out <- wsResponse{Type: "error", Error: msg}
				continue
			}
			reply, err := s.sessions.Send(ctx, id, req.Text)
			if err != nil {
				out <- wsResponse{Type: "error", Error: err.Error()}
				if errors.Is(err, domain.ErrSessionNotFound) {
					return
				}
				continue
			}
			rr := toReply(reply)
			out <- wsResponse{Type: "reply", Reply: &rr}

		default:
			out <- wsResponse{Type: "error", Error: "unknown message type: " + req.Type}
		}
	}
}

func (s *Server) writeLoop(conn *websocket.Conn, out <-chan wsResponse, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-out:
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(msg); err != nil {
				s.log.Warn("websocket write error: %v", err)
				// Drain so the reader never blocks on a dead writer.
				for range out {
				}
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.log.Debug("websocket ping failed: %v", err)
			}
		}
	}
}

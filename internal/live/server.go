package live

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	maxCommandBytes = 4096
	outboxSize      = 16
	writeTimeout    = 5 * time.Second
)

// Server upgrades HTTP requests to live search connections.
type Server struct {
	searcher Searcher
	debounce time.Duration
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewServer creates a live search server.
func NewServer(searcher Searcher, debounce time.Duration, logger *zap.Logger) *Server {
	return &Server{
		searcher: searcher,
		debounce: debounce,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// ServeHTTP runs one connection until the client goes away.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxCommandBytes)

	outbox := make(chan Message, outboxSize)
	done := make(chan struct{})
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for {
			select {
			case msg := <-outbox:
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteJSON(msg); err != nil {
					s.logger.Debug("live search write failed", zap.Error(err))
					return
				}
			case <-done:
				return
			}
		}
	}()

	send := func(msg Message) {
		select {
		case outbox <- msg:
		case <-done:
		case <-writerDone:
		}
	}

	session := NewSearchSession(s.searcher, s.debounce, send)
	session.Start()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("live search read failed", zap.Error(err))
			}
			break
		}
		var cmd Command
		if err := json.Unmarshal(raw, &cmd); err != nil {
			send(Message{Type: "error", Error: "malformed command"})
			continue
		}
		if err := session.Handle(cmd); err != nil {
			send(Message{Type: "error", Error: err.Error()})
		}
	}

	session.Close()
	close(done)
	<-writerDone
}

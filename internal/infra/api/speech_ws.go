// File: internal/infra/api/speech_ws.go
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"wellness-companion/internal/infra/logging"
	"wellness-companion/internal/infra/speech"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type speechControl struct {
	Type     string `json:"type"` // "start" | "stop" | "abort"
	Format   string `json:"format,omitempty"`
	Language string `json:"language,omitempty"`
}

type speechResult struct {
	Type      string `json:"type"` // "transcript" | "error"
	Text      string `json:"text,omitempty"`
	Message   string `json:"message,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// handleSpeech runs one capture round trip over a WebSocket: a "start"
// control frame, binary audio frames, then "stop". The transcript (or a
// user-facing failure message) is sent back and the socket closes. The
// client drops the text into the message input, so nothing here touches the
// conversation itself.
func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	ctx := logging.WithSessID(r.Context(), sessionID)
	log := logging.With(ctx, s.log)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	var capture *speech.Capture
	defer func() {
		if capture != nil {
			capture.Abort()
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(time.Minute))
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			if capture == nil {
				continue
			}
			if err := capture.Push(data); err != nil {
				s.sendSpeechError(conn, err)
				return
			}

		case websocket.TextMessage:
			var ctl speechControl
			if err := json.Unmarshal(data, &ctl); err != nil {
				continue
			}
			switch ctl.Type {
			case "start":
				capture = s.speech.Start(sessionID, ctl.Format, ctl.Language)
			case "abort":
				if capture != nil {
					capture.Abort()
					capture = nil
				}
				return
			case "stop":
				if capture == nil {
					return
				}
				text, err := capture.Finish(ctx)
				capture = nil
				if err != nil {
					s.sendSpeechError(conn, err)
					return
				}
				_ = conn.WriteJSON(speechResult{
					Type:      "transcript",
					Text:      text,
					Timestamp: time.Now().UnixMilli(),
				})
				return
			}
		}
	}
}

func (s *Server) sendSpeechError(conn *websocket.Conn, err error) {
	msg := speech.UserMessage(err)
	if msg == "" {
		// aborted captures disappear without a word
		return
	}
	_ = conn.WriteJSON(speechResult{
		Type:      "error",
		Message:   msg,
		Timestamp: time.Now().UnixMilli(),
	})
}

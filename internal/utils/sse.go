package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// SSEWriter streams the chat endpoints' server-sent events. Every frame
// carries a JSON payload; the stream ends with a "done" frame so clients
// can tell completion from a dropped connection.
type SSEWriter struct {
	w http.ResponseWriter
}

func NewSSEWriter(w http.ResponseWriter) *SSEWriter {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	return &SSEWriter{w: w}
}

// WriteJSON marshals v and emits it as one named event frame.
func (s *SSEWriter) WriteJSON(event string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal sse payload: %w", err)
	}
	return s.write(event, string(data))
}

func (s *SSEWriter) write(event, data string) error {
	if event != "" {
		if _, err := fmt.Fprintf(s.w, "event: %s\n", event); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return err
	}

	if f, ok := s.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

// Close terminates the stream with the "done" frame.
func (s *SSEWriter) Close() error {
	return s.write("done", "[DONE]")
}

package chat

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"taxfree-engine/internal/models"
)

// EventWriter frames answer chunks as server-sent events.
type EventWriter struct {
	w       io.Writer
	flusher http.Flusher
}

// NewEventWriter sets the event-stream headers and returns a writer for the response.
func NewEventWriter(w http.ResponseWriter) *EventWriter {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	return &EventWriter{w: w, flusher: flusher}
}

// Chunk writes one `data: {"content": ...}` event.
func (e *EventWriter) Chunk(content string) error {
	payload, err := json.Marshal(models.ChatChunk{Content: content})
	if err != nil {
		return fmt.Errorf("failed to marshal chunk: %w", err)
	}
	return e.write(payload)
}

// Error writes a `data: {"error": ...}` event for a failure after streaming started.
func (e *EventWriter) Error(message string) error {
	payload, err := json.Marshal(map[string]string{"error": message})
	if err != nil {
		return fmt.Errorf("failed to marshal error: %w", err)
	}
	return e.write(payload)
}

// Done writes the terminating `data: [DONE]` event.
func (e *EventWriter) Done() error {
	return e.write([]byte("[DONE]"))
}

func (e *EventWriter) write(data []byte) error {
	if _, err := fmt.Fprintf(e.w, "data: %s\n\n", data); err != nil {
		return err
	}
	if e.flusher != nil {
		e.flusher.Flush()
	}
	return nil
}

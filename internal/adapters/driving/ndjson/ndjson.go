// Package ndjson streams progress events as newline-delimited JSON.
package ndjson

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// MediaType is the content type of a progress stream.
const MediaType = "application/x-ndjson"

// flusher is implemented by buffered writers such as http.ResponseWriter.
type flusher interface {
	Flush()
}

// Encoder writes one JSON object per line.
type Encoder struct {
	w   io.Writer
	enc *json.Encoder
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Encoder{w: w, enc: enc}
}

// Encode writes event followed by a newline and flushes the writer if it can.
func (e *Encoder) Encode(event domain.ProgressEvent) error {
	if err := e.enc.Encode(event); err != nil {
		return fmt.Errorf("encode progress event: %w", err)
	}
	if f, ok := e.w.(flusher); ok {
		f.Flush()
	}
	return nil
}

// Stream writes every event of events and returns the terminal one.
// On the first write error cancel is called, so the producer stops work
// for a reader that has gone away; cancel may be nil. The channel is always
// drained so the producer can finish. A stream that closes without a
// terminal event is reported as an error event.
func Stream(w io.Writer, events <-chan domain.ProgressEvent, cancel func()) (domain.ProgressEvent, error) {
	enc := NewEncoder(w)
	var (
		last     domain.ProgressEvent
		writeErr error
	)
	for event := range events {
		last = event
		if writeErr != nil {
			continue
		}
		if writeErr = enc.Encode(event); writeErr != nil && cancel != nil {
			cancel()
		}
	}
	if !last.Status.IsTerminal() {
		last = domain.ErrorEvent(errors.New("progress stream ended unexpectedly"))
		if writeErr == nil {
			writeErr = enc.Encode(last)
		}
	}
	return last, writeErr
}

// Decoder reads progress events line by line.
type Decoder struct {
	scanner *bufio.Scanner
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Decoder{scanner: scanner}
}

// Decode returns the next event. Blank lines are skipped.
// Returns io.EOF when the stream is exhausted.
func (d *Decoder) Decode() (domain.ProgressEvent, error) {
	for d.scanner.Scan() {
		line := d.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event domain.ProgressEvent
		if err := json.Unmarshal(line, &event); err != nil {
			return domain.ProgressEvent{}, fmt.Errorf("decode progress event: %w", err)
		}
		if !event.Status.IsValid() {
			return domain.ProgressEvent{}, fmt.Errorf("decode progress event: unknown status %q", event.Status)
		}
		return event, nil
	}
	if err := d.scanner.Err(); err != nil {
		return domain.ProgressEvent{}, err
	}
	return domain.ProgressEvent{}, io.EOF
}

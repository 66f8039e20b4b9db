package ndjson

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
)

type flushRecorder struct {
	bytes.Buffer
	flushes int
}

func (f *flushRecorder) Flush() { f.flushes++ }

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func feed(events ...domain.ProgressEvent) <-chan domain.ProgressEvent {
	ch := make(chan domain.ProgressEvent, len(events))
	for _, e := range events {
		ch <- e
	}
	close(ch)
	return ch
}

func TestEncode_OneLinePerEvent(t *testing.T) {
	var buf flushRecorder
	enc := NewEncoder(&buf)

	require.NoError(t, enc.Encode(domain.StartingEvent()))
	require.NoError(t, enc.Encode(domain.ProcessingEvent(40)))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"status":"starting","message":"Analyzing PDF structure..."}`, lines[0])
	assert.JSONEq(t, `{"status":"processing","message":"Embedding chunks...","progress":40}`, lines[1])
	assert.Equal(t, 2, buf.flushes)
}

func TestEncode_ZeroProgressIsWritten(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewEncoder(&buf).Encode(domain.ProcessingEvent(0)))

	assert.Contains(t, buf.String(), `"progress":0`)
}

func TestStream_ReturnsTerminal(t *testing.T) {
	var buf bytes.Buffer
	done := domain.ProgressEvent{Status: domain.StatusComplete, Message: domain.MessageComplete, AssistantID: 7}

	last, err := Stream(&buf, feed(domain.StartingEvent(), done), nil)

	require.NoError(t, err)
	assert.Equal(t, done, last)
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))
}

func TestStream_MissingTerminal(t *testing.T) {
	var buf bytes.Buffer

	last, err := Stream(&buf, feed(domain.StartingEvent()), nil)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusError, last.Status)
	assert.Contains(t, buf.String(), `"status":"error"`)
}

func TestStream_DrainsAfterWriteError(t *testing.T) {
	ch := feed(domain.StartingEvent(), domain.ProcessingEvent(50), domain.ErrorEvent(errors.New("boom")))

	last, err := Stream(failingWriter{}, ch, nil)

	require.Error(t, err)
	assert.Equal(t, domain.StatusError, last.Status)
	_, open := <-ch
	assert.False(t, open)
}

// produce emits processing events until ctx is cancelled, then the terminal
// event an ingestion would send, and reports how many events it sent.
func produce(ctx context.Context, total int) (<-chan domain.ProgressEvent, <-chan int) {
	events := make(chan domain.ProgressEvent)
	sent := make(chan int, 1)
	go func() {
		defer close(events)
		n := 0
		for i := 0; i < total; i++ {
			if ctx.Err() != nil {
				break
			}
			events <- domain.ProcessingEvent(i * 100 / total)
			n++
		}
		if err := ctx.Err(); err != nil {
			events <- domain.ErrorEvent(err)
		} else {
			events <- domain.ProgressEvent{Status: domain.StatusComplete, AssistantID: 1}
		}
		sent <- n
	}()
	return events, sent
}

func TestStream_CancelsProducerOnWriteError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, sent := produce(ctx, 100)

	last, err := Stream(failingWriter{}, events, cancel)

	require.Error(t, err)
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.Equal(t, domain.StatusError, last.Status)
	assert.LessOrEqual(t, <-sent, 2, "producer kept working after the reader failed")
}

func TestStream_HealthyWriterDoesNotCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, sent := produce(ctx, 10)
	var buf bytes.Buffer

	last, err := Stream(&buf, events, cancel)

	require.NoError(t, err)
	assert.NoError(t, ctx.Err())
	assert.Equal(t, domain.StatusComplete, last.Status)
	assert.Equal(t, 10, <-sent)
}

func TestDecoder_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	_, err := Stream(&buf, feed(domain.StartingEvent(), domain.ProcessingEvent(100),
		domain.ProgressEvent{Status: domain.StatusComplete, AssistantID: 3}), nil)
	require.NoError(t, err)

	dec := NewDecoder(&buf)
	var got []domain.ProgressStatus
	for {
		event, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		got = append(got, event.Status)
	}

	assert.Equal(t, []domain.ProgressStatus{domain.StatusStarting, domain.StatusProcessing, domain.StatusComplete}, got)
}

func TestDecoder_Errors(t *testing.T) {
	_, err := NewDecoder(strings.NewReader("not json\n")).Decode()
	assert.Error(t, err)

	_, err = NewDecoder(strings.NewReader(`{"status":"paused"}` + "\n")).Decode()
	assert.ErrorContains(t, err, "unknown status")

	event, err := NewDecoder(strings.NewReader("\n\n" + `{"status":"uploading"}` + "\n")).Decode()
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUploading, event.Status)
}

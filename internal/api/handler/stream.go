package handler

import (
	"context"
	"encoding/json"
	"net/http"
)

// frameChunk renders one stream unit as the line `0:<JSON string>\n`. The
// payload is always a JSON-encoded string, never an object; debug markers
// and content chunks share the framing and differ only by a "[DEBUG]"
// prefix in the content.
func frameChunk(chunk string) ([]byte, error) {
	encoded, err := json.Marshal(chunk)
	if err != nil {
		return nil, err
	}

	line := make([]byte, 0, len(encoded)+3)
	line = append(line, '0', ':')
	line = append(line, encoded...)
	line = append(line, '\n')
	return line, nil
}

// streamWriter adapts an http.ResponseWriter into a ports.EmitFunc target,
// flushing after every line so chunks reach the client as they are emitted.
type streamWriter struct {
	ctx context.Context
	w   http.ResponseWriter
	f   http.Flusher
}

func newStreamWriter(ctx context.Context, w http.ResponseWriter) *streamWriter {
	f, _ := w.(http.Flusher)
	return &streamWriter{ctx: ctx, w: w, f: f}
}

// Emit writes one framed chunk. It fails when the caller has disconnected,
// which stops the gate controller from consuming the gateway further.
func (sw *streamWriter) Emit(chunk string) error {
	if err := sw.ctx.Err(); err != nil {
		return err
	}

	line, err := frameChunk(chunk)
	if err != nil {
		return err
	}
	if _, err := sw.w.Write(line); err != nil {
		return err
	}
	if sw.f != nil {
		sw.f.Flush()
	}
	return nil
}

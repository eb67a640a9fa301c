// Package workerpool implements the Worker Pool (C3, spec.md §4.3): a
// fixed-size pool of OS-process-isolated workers, each a re-exec of the
// chmweb binary in its hidden worker mode, communicating over
// length-prefixed msgpack frames on stdin/stdout. Process isolation (not
// goroutines) is load-bearing: a worker that panics on a malformed page
// takes down only itself, and the pool observes that as a clean
// WorkerFailure rather than corrupting shared memory.
package workerpool

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"chmweb/core/chmerr"
)

// Request is one unit of work sent to a worker: Op names the operation
// (e.g. "scan_page") and Payload is its msgpack-encoded, operation-
// specific argument.
type Request struct {
	Op      string
	Payload []byte
}

// frameKind discriminates the three envelope shapes a worker may send
// back for one request: zero or more Warning frames, followed by exactly
// one terminal Result or Error frame (spec.md §4.3, "{result}|{warning}|
// {error} envelopes").
type frameKind string

const (
	frameWarning frameKind = "warning"
	frameResult  frameKind = "result"
	frameError   frameKind = "error"
)

type frame struct {
	Kind    frameKind
	Warning *chmerr.Warning `msgpack:",omitempty"`
	Result  []byte          `msgpack:",omitempty"`
	Err     string          `msgpack:",omitempty"`
}

// writeFrame writes a length-prefixed (uint32 little-endian byte count)
// msgpack-encoded value to w.
func writeFrame(w io.Writer, v any) error {
	body, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("workerpool: encode frame: %w", err)
	}
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(body)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("workerpool: write frame length: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("workerpool: write frame body: %w", err)
	}
	return nil
}

// readFrame reads one length-prefixed msgpack frame from r into v.
func readFrame(r *bufio.Reader, v any) error {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return err // io.EOF propagates as-is: caller classifies it
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return fmt.Errorf("workerpool: read frame body: %w", err)
	}
	return msgpack.Unmarshal(body, v)
}

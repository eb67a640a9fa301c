package workerpool

import (
	"bufio"
	"io"
	"os"

	"chmweb/core/chmerr"
)

// Handler executes one worker-mode request and returns its msgpack-
// encoded result, emitting warnings through emit as it goes. A non-nil
// error is reported to the parent as a terminal Error frame and is
// always treated as fatal by the pool side (spec.md §7: a worker only
// ever reports structural failures this way; everything recoverable is
// a Warning instead).
type Handler func(req Request, emit func(*chmerr.Warning)) ([]byte, error)

// Serve runs the worker-mode request loop: read one Request frame from
// stdin, invoke handler, write back zero or more Warning frames followed
// by exactly one terminal Result or Error frame, repeat until stdin
// closes. It returns nil on a clean EOF (the parent closed our stdin to
// signal shutdown).
func Serve(handler Handler) error {
	in := bufio.NewReader(os.Stdin)
	out := os.Stdout

	for {
		var req Request
		if err := readFrame(in, &req); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		emit := func(w *chmerr.Warning) {
			_ = writeFrame(out, frame{Kind: frameWarning, Warning: w})
		}

		result, err := handler(req, emit)
		if err != nil {
			_ = writeFrame(out, frame{Kind: frameError, Err: err.Error()})
			continue
		}
		_ = writeFrame(out, frame{Kind: frameResult, Result: result})
	}
}

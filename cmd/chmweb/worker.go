package main

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"chmweb/core/chmerr"
	"chmweb/core/model"
	"chmweb/core/pagescan"
	"chmweb/core/workerpool"
)

// opScanPage is the sole worker-mode operation (spec.md §4.3/§4.7): scan
// one page's bytes into a Page Record. The parent reads the bytes (the
// worker process has no filesystem context of its own beyond what it's
// handed), so they travel in the request payload.
const opScanPage = "scan_page"

type scanPageRequest struct {
	ArchiveStem string
	Path        string
	Src         []byte
}

// handleRequest is the workerpool.Handler run inside a --worker-mode
// child process.
func handleRequest(req workerpool.Request, emit func(*chmerr.Warning)) ([]byte, error) {
	switch req.Op {
	case opScanPage:
		var sreq scanPageRequest
		if err := msgpack.Unmarshal(req.Payload, &sreq); err != nil {
			return nil, fmt.Errorf("worker: decode scan_page request: %w", err)
		}
		rec := pagescan.Scan(sreq.ArchiveStem, model.Path(sreq.Path), sreq.Src)
		out, err := msgpack.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("worker: encode page record: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("worker: unknown op %q", req.Op)
	}
}

// Command chmweb converts a Microsoft Compiled HTML Help archive (.chm,
// or a .chw collection alongside its member .chm files) into a
// standalone static website.
//
// Grounded on the teacher's cmd/build/main.go: a thin main() that
// resolves configuration, builds a logger, and delegates to a run()
// that returns an error rather than calling os.Exit itself, so the
// exit-status logic lives in exactly one place.
package main

import (
	"errors"
	"fmt"
	"os"

	"chmweb/core/chmerr"
	"chmweb/core/config"
	"chmweb/core/logging"
	"chmweb/core/workerpool"
)

func main() {
	for _, a := range os.Args[1:] {
		if a == "--worker-mode" {
			if err := workerpool.Serve(handleRequest); err != nil {
				fmt.Fprintf(os.Stderr, "chmweb worker: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	logger := logging.New()

	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "chmweb: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		var fatal *chmerr.FatalError
		if errors.As(err, &fatal) {
			logger.Fatal(fatal)
		}
		fmt.Fprintf(os.Stderr, "chmweb: %v\n", err)
		os.Exit(1)
	}
}

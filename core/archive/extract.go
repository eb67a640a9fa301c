// Package archive wraps the external archive extractor (spec.md §6,
// "Archive extractor") and plans the on-disk layout the three CLI
// invocation shapes require before C6/C8 ever see a byte.
package archive

import (
	"context"
	"fmt"
	"io"
	"os/exec"

	"chmweb/core/chmerr"
)

// DefaultExtractor is the external binary invoked when no --extractor
// flag overrides it: a conventional CHM-archive unpacker from the
// chmlib family, present on the PATH of a host already set up to handle
// .chm/.chw input.
const DefaultExtractor = "extract_chmLib"

// Extract invokes the extractor as a child process against one archive,
// requesting overwrite and silent operation (spec.md §6: "arguments
// include the archive path, an output directory, and flags requesting
// overwrite and silence"). A non-zero exit status is fatal.
func Extract(ctx context.Context, extractorPath, archivePath, outDir string) error {
	if extractorPath == "" {
		extractorPath = DefaultExtractor
	}
	cmd := exec.CommandContext(ctx, extractorPath, archivePath, outDir, "-y", "-s")
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Run(); err != nil {
		return chmerr.NewFatal(chmerr.MalformedBinary,
			fmt.Errorf("extractor %s failed on %s: %w", extractorPath, archivePath, err))
	}
	return nil
}

package workerpool

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"chmweb/core/chmerr"
)

// worker owns one subprocess and the pipe pair used to talk to it. Only
// the Pool.run goroutine started for this worker ever touches
// stdin/stdout, so no locking is needed around them.
type worker struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
}

// spawnWorker starts exePath with args plus the hidden worker-mode flag,
// wiring its stdin/stdout as the frame channel and letting stderr pass
// through for the worker's own progress/panic output. extraEnv, if
// non-nil, is appended to the subprocess's inherited environment (tests
// use this to re-exec the test binary itself as a worker).
func spawnWorker(ctx context.Context, exePath string, args []string, extraEnv []string) (*worker, error) {
	full := append(append([]string{}, args...), "--worker-mode")
	cmd := exec.CommandContext(ctx, exePath, full...)
	cmd.Stderr = os.Stderr
	if extraEnv != nil {
		cmd.Env = append(os.Environ(), extraEnv...)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("workerpool: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("workerpool: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("workerpool: start worker: %w", err)
	}
	return &worker{cmd: cmd, stdin: stdin, stdout: bufio.NewReader(stdout)}, nil
}

// exchange sends one request and reads frames until a terminal Result or
// Error frame arrives, forwarding every Warning frame to warn. A
// transport failure (EOF, malformed frame) is surfaced as a fatal
// chmerr.FatalError carrying chmerr.WorkerFailure, per spec.md §7:
// process death is never degraded to a per-page warning.
func (w *worker) exchange(req Request, warn chmerr.WarningSink) ([]byte, error) {
	if err := writeFrame(w.stdin, req); err != nil {
		return nil, chmerr.NewFatal(chmerr.WorkerFailure, err)
	}
	for {
		var f frame
		if err := readFrame(w.stdout, &f); err != nil {
			return nil, chmerr.NewFatal(chmerr.WorkerFailure, fmt.Errorf("worker exchange: %w", err))
		}
		switch f.Kind {
		case frameWarning:
			if warn != nil && f.Warning != nil {
				warn.Warn(f.Warning)
			}
		case frameResult:
			return f.Result, nil
		case frameError:
			return nil, chmerr.NewFatal(chmerr.WorkerFailure, fmt.Errorf("worker reported error: %s", f.Err))
		default:
			return nil, chmerr.NewFatal(chmerr.WorkerFailure, fmt.Errorf("unknown frame kind %q", f.Kind))
		}
	}
}

// close signals the subprocess to exit by closing its stdin and waits
// for it to terminate.
func (w *worker) close() error {
	_ = w.stdin.Close()
	return w.cmd.Wait()
}

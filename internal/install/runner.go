package install

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

// RunOptions configures an agent launch.
type RunOptions struct {
	Dir    string
	Env    []string
	Stdout io.Writer
	Stderr io.Writer
}

// Runner launches an installed agent binary.
type Runner interface {
	Run(ctx context.Context, command string, args []string, opts RunOptions) error
}

// CmdRunner runs the agent as a child process, relaying its output line by
// line. Cancelling ctx interrupts the child and then kills it after a grace
// period.
type CmdRunner struct {
	GracePeriod time.Duration
}

func (r CmdRunner) Run(ctx context.Context, command string, args []string, opts RunOptions) error {
	cmd := exec.Command(command, args...)
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}
	cmd.Env = append(os.Environ(), opts.Env...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("capture stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("capture stderr: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", command, err)
	}

	var g errgroup.Group
	g.Go(func() error { return relayLines(stdout, orDiscard(opts.Stdout)) })
	g.Go(func() error { return relayLines(stderr, orDiscard(opts.Stderr)) })

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = cmd.Process.Signal(syscall.SIGINT)
			grace := r.GracePeriod
			if grace <= 0 {
				grace = 10 * time.Second
			}
			select {
			case <-done:
			case <-time.After(grace):
				_ = cmd.Process.Kill()
			}
		case <-done:
		}
	}()

	// Pipes must be drained before Wait closes them.
	relayErr := g.Wait()
	waitErr := cmd.Wait()
	close(done)

	if ctx.Err() != nil {
		return nil
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return fmt.Errorf("%s exited with status %d", command, exitErr.ExitCode())
		}
		return fmt.Errorf("wait %s: %w", command, waitErr)
	}
	if relayErr != nil {
		return fmt.Errorf("relay output: %w", relayErr)
	}
	return nil
}

func relayLines(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if _, err := fmt.Fprintln(w, scanner.Text()); err != nil {
			_, _ = io.Copy(io.Discard, r)
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		// Keep draining so the child never blocks on a full pipe.
		_, _ = io.Copy(io.Discard, r)
		return err
	}
	return nil
}

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}

var _ Runner = CmdRunner{}

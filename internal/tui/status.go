package tui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// StatusWriter prints a spinning status line for a single blocking step
// (fetching the release list, downloading one version) without taking over
// the terminal the way a tea.Program does.
type StatusWriter struct {
	w          io.Writer
	frames     []string
	interval   time.Duration
	mu         sync.Mutex
	message    string
	phaseStart time.Time
	done       chan struct{}
	stopped    bool
	wg         sync.WaitGroup
}

// NewStatusWriter starts a background spinner that renders msg to w.
func NewStatusWriter(w io.Writer, msg string) *StatusWriter {
	sw := &StatusWriter{
		w:          w,
		frames:     spinner.Dot.Frames,
		interval:   spinner.Dot.FPS,
		message:    msg,
		phaseStart: time.Now(),
		done:       make(chan struct{}),
	}
	sw.wg.Add(1)
	go sw.loop()
	return sw
}

// Stop clears the status line and stops the spinner. It is safe to call
// more than once.
func (sw *StatusWriter) Stop() {
	sw.mu.Lock()
	if sw.stopped {
		sw.mu.Unlock()
		return
	}
	sw.stopped = true
	sw.mu.Unlock()
	close(sw.done)
	sw.wg.Wait()
	fmt.Fprint(sw.w, "\r\033[K")
}

func (sw *StatusWriter) loop() {
	defer sw.wg.Done()
	tick := 0
	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-sw.done:
			return
		case <-ticker.C:
			sw.mu.Lock()
			msg := sw.message
			start := sw.phaseStart
			sw.mu.Unlock()

			frame := sw.frames[tick%len(sw.frames)]
			tick++
			fmt.Fprintf(sw.w, "\r\033[K%s %s (%s)", frame, msg, formatElapsed(time.Since(start)))
		}
	}
}

func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < 10*time.Second {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}

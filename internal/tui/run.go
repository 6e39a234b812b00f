package tui

import (
	"context"
	"errors"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrCanceled is returned when the user aborts an interactive program.
var ErrCanceled = errors.New("canceled")

// RunWithWork runs model while workFn executes in the background. workFn
// gets a context that is canceled when the user quits the program, and a
// send callback for RowUpdateMsg values. RunWithWork waits for workFn to
// return before it does.
func RunWithWork(ctx context.Context, in io.Reader, out io.Writer, model ProgressModel, workFn func(ctx context.Context, send func(tea.Msg)) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(model, tea.WithInput(in), tea.WithOutput(out), tea.WithContext(ctx))

	var (
		wg      sync.WaitGroup
		workErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		workErr = workFn(ctx, p.Send)
		if workErr != nil {
			p.Send(ErrorMsg{Err: workErr})
			return
		}
		p.Send(WorkDoneMsg{})
	}()

	finalModel, runErr := p.Run()
	cancel()
	wg.Wait()

	if m, ok := finalModel.(ProgressModel); ok {
		if m.Canceled() {
			return ErrCanceled
		}
		if m.Err() != nil {
			return m.Err()
		}
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return runErr
	}
	return workErr
}

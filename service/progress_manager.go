package service

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// isTerminal reports whether w is a terminal outside CI
func isTerminal(w io.Writer) bool {
	if os.Getenv("CI") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// ProgressManagerImpl counts structured methods and draws a bar on
// interactive writers. It is safe for use by the worker pool.
type ProgressManagerImpl struct {
	mu    sync.Mutex
	out   io.Writer
	tty   bool
	bar   *progressbar.ProgressBar
	total int
	done  int
}

// NewProgressManager reports progress to out
func NewProgressManager(out io.Writer) *ProgressManagerImpl {
	if out == nil {
		out = io.Discard
	}
	return &ProgressManagerImpl{out: out, tty: isTerminal(out)}
}

func (pm *ProgressManagerImpl) Initialize(totalMethods int) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.total, pm.done = totalMethods, 0
}

func (pm *ProgressManagerImpl) Start() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if !pm.tty || pm.bar != nil {
		return
	}
	out := pm.out
	pm.bar = progressbar.NewOptions(pm.total,
		progressbar.OptionSetDescription("Structuring"),
		progressbar.OptionSetWriter(out),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("methods"),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(out) }),
	)
}

func (pm *ProgressManagerImpl) Increment() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.done++
	if pm.bar != nil {
		_ = pm.bar.Add(1)
	}
}

// Done is the number of methods finished since Initialize
func (pm *ProgressManagerImpl) Done() int {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return pm.done
}

// Interactive reports whether a bar will be drawn
func (pm *ProgressManagerImpl) Interactive() bool {
	return pm.tty
}

// Complete finishes the bar, or abandons it in place when success is false
func (pm *ProgressManagerImpl) Complete(success bool) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	switch {
	case pm.bar == nil:
	case success:
		_ = pm.bar.Finish()
	default:
		_ = pm.bar.Exit()
	}
}

func (pm *ProgressManagerImpl) Close() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if pm.bar != nil {
		_ = pm.bar.Close()
		pm.bar = nil
	}
}

// noopProgress stands in when the caller passes no progress manager
type noopProgress struct{}

func (noopProgress) Initialize(int) {}
func (noopProgress) Start()         {}
func (noopProgress) Increment()     {}
func (noopProgress) Complete(bool)  {}
func (noopProgress) Close()         {}

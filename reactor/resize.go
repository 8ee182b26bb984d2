package reactor

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// ResizeEvent reports the terminal's new dimensions after a SIGWINCH.
type ResizeEvent struct {
	Rows, Cols int
}

// resizeWaker is signal.Stop-backed: waking means tearing down the signal
// subscription, which unblocks the worker's channel read with a closed
// channel.
type resizeWaker struct {
	sigCh chan os.Signal
	once  *sync.Once
}

func (w resizeWaker) Wake() { w.once.Do(func() { signal.Stop(w.sigCh); close(w.sigCh) }) }

type resizeWorker struct {
	sigCh   chan os.Signal
	queryFn func() (rows, cols int, err error)
}

func (w *resizeWorker) BlockUntilReadyThenDispatch(send func(ResizeEvent)) Continuation {
	_, ok := <-w.sigCh
	if !ok {
		return Stop
	}
	rows, cols, err := w.queryFn()
	if err != nil {
		return Continue
	}
	send(ResizeEvent{Rows: rows, Cols: cols})
	return Continue
}

func (w *resizeWorker) RestartPolicy() RestartPolicy { return DefaultRestartPolicy }

// NewResizeFactory builds a Factory that watches SIGWINCH and reports the
// controlling terminal's size via queryFn (typically term.GetSize on the
// PTY's slave fd or os.Stdout).
func NewResizeFactory(queryFn func() (rows, cols int, err error)) Factory[ResizeEvent] {
	return func() (Worker[ResizeEvent], Waker, error) {
		sigCh := make(chan os.Signal, 4)
		signal.Notify(sigCh, syscall.SIGWINCH)
		return &resizeWorker{sigCh: sigCh, queryFn: queryFn}, resizeWaker{sigCh: sigCh, once: &sync.Once{}}, nil
	}
}

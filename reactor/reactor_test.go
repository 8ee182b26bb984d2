package reactor

import (
	"testing"
	"time"
)

// countWorker emits n events then returns Stop.
type countWorker struct {
	remaining int
}

func (w *countWorker) BlockUntilReadyThenDispatch(send func(int)) Continuation {
	if w.remaining <= 0 {
		return Stop
	}
	send(w.remaining)
	w.remaining--
	return Continue
}

func (w *countWorker) RestartPolicy() RestartPolicy { return DefaultRestartPolicy }

func countFactory(n int) Factory[int] {
	return func() (Worker[int], Waker, error) {
		return &countWorker{remaining: n}, noopWaker{}, nil
	}
}

type noopWaker struct{}

func (noopWaker) Wake() {}

func TestSubscribeReceivesBroadcastEvents(t *testing.T) {
	r := New(countFactory(3))
	sub, err := r.Subscribe()
	if err != nil {
		t.Fatal(err)
	}

	var got []int
	for v := range sub.Events {
		got = append(got, v)
	}
	if len(got) != 3 {
		t.Fatalf("got %v, want 3 events", got)
	}
}

func TestFastPathSubscribeSharesRunningThread(t *testing.T) {
	started := make(chan struct{})
	gate := make(chan struct{})
	factory := func() (Worker[int], Waker, error) {
		// The worker sends a few events and then stays running until gate
		// opens, so the second Subscribe finds the thread alive. A second
		// factory call (the slow path) would close started twice and panic.
		close(started)
		sent := 0
		return workerFunc[int](func(send func(int)) Continuation {
			if sent < 5 {
				sent++
				send(sent)
				return Continue
			}
			<-gate
			return Stop
		}), noopWaker{}, nil
	}
	r := New(Factory[int](factory))

	sub1, err := r.Subscribe()
	if err != nil {
		t.Fatal(err)
	}
	<-started
	time.Sleep(10 * time.Millisecond) // let the worker publish at least one event

	sub2, err := r.Subscribe()
	if err != nil {
		t.Fatal(err)
	}

	close(gate)
	// Draining both proves a single worker thread fans out to two
	// independently-buffered subscriber channels.
	drain(sub1.Events)
	drain(sub2.Events)
}

func drain(ch <-chan int) {
	for range ch {
	}
}

// restartingWorker returns Restart on its first dispatch unless failed is
// already set; after that it sends "recovered" and stops.
type restartingWorker struct {
	failed bool
}

func (w *restartingWorker) BlockUntilReadyThenDispatch(send func(string)) Continuation {
	if !w.failed {
		w.failed = true
		return Restart
	}
	send("recovered")
	return Stop
}

func (w *restartingWorker) RestartPolicy() RestartPolicy {
	return RestartPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond}
}

func TestRestartRecoversAndStops(t *testing.T) {
	calls := 0
	factory := func() (Worker[string], Waker, error) {
		calls++
		// Only the first worker fails; the one the reactor builds after the
		// restart recovers.
		return &restartingWorker{failed: calls > 1}, noopWaker{}, nil
	}
	r := New(Factory[string](factory))
	sub, err := r.Subscribe()
	if err != nil {
		t.Fatal(err)
	}

	var got []string
	for v := range sub.Events {
		got = append(got, v)
	}
	if len(got) != 1 || got[0] != "recovered" {
		t.Fatalf("got %v, want [recovered]", got)
	}
	if !r.Terminated() {
		t.Error("expected reactor to be terminated after Stop")
	}
}

func TestRestartPolicyExhaustionTerminates(t *testing.T) {
	type alwaysRestart struct{}
	factory := func() (Worker[int], Waker, error) {
		return workerFunc[int](func(send func(int)) Continuation {
			return Restart
		}), noopWaker{}, nil
	}
	r := New(Factory[int](factory))
	sub, err := r.Subscribe()
	if err != nil {
		t.Fatal(err)
	}
	for range sub.Events {
	}
	if !r.Terminated() {
		t.Error("expected termination once RestartPolicy is exhausted")
	}
}

// blockingFactory is a worker that sends a fixed number of events and then
// blocks on a gate before returning Stop, giving a test a window to let a
// subscriber fall behind before the producer shuts down.
type blockingFactory struct {
	n    int
	gate chan struct{}
}

func (f *blockingFactory) worker() Factory[int] {
	return func() (Worker[int], Waker, error) {
		sent := 0
		return workerFunc[int](func(send func(int)) Continuation {
			if sent < f.n {
				sent++
				send(sent)
				return Continue
			}
			<-f.gate
			return Stop
		}), noopWaker{}, nil
	}
}

func TestSlowSubscriberReceivesLagged(t *testing.T) {
	gate := make(chan struct{})
	bf := &blockingFactory{n: 32, gate: gate} // more than the subscriber channel's buffer of 16
	r := New(bf.worker())

	sub, err := r.Subscribe()
	if err != nil {
		t.Fatal(err)
	}

	// Don't drain sub.Events at all: let the producer outrun the buffered
	// channel so broadcast falls into its drop path.
	var missed int
	select {
	case missed = <-sub.Lagged:
	case <-time.After(time.Second):
		t.Fatal("expected a Lagged notification for the slow subscriber")
	}
	if missed <= 0 {
		t.Errorf("missed = %d, want > 0", missed)
	}

	close(gate)
	drain(sub.Events)
}

// workerFunc adapts a plain function to the Worker interface for tests
// that don't need per-instance state.
type workerFunc[E any] func(send func(E)) Continuation

func (f workerFunc[E]) BlockUntilReadyThenDispatch(send func(E)) Continuation { return f(send) }
func (f workerFunc[E]) RestartPolicy() RestartPolicy {
	return RestartPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

// Package ptymux multiplexes a child process's pseudo-terminal: it spawns
// the child, streams its output through a vtemu.Emulator, and exposes a
// channel-based event/action interface for a caller to drive input and
// observe output without touching the PTY file descriptor directly.
// spec.md 4.6.
package ptymux

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/creack/pty"
	"golang.org/x/sync/errgroup"

	"github.com/nullterm/tuiengine/screen"
	"github.com/nullterm/tuiengine/vtemu"
	"github.com/nullterm/tuiengine/vtinput"
)

const readBufferSize = 4096

// idleThreshold is how long the child must go without producing output
// before IsIdle reports true.
const idleThreshold = 2 * time.Second

// ReadOnlySession is the minimal handle a caller gets for observing a
// child process: an event receiver and a completion signal.
type ReadOnlySession struct {
	Events <-chan Event
	Done   <-chan ExitStatus

	session *Session
}

// Emulator returns the live VT100 emulator backing the session's visual
// state. Safe to call concurrently with PipeOutput's writes, since
// vtemu.Emulator guards its buffer with its own mutex.
func (s ReadOnlySession) Emulator() *vtemu.Emulator { return s.session.emu }

// IsIdle reports whether the child has produced no output for at least
// idleThreshold.
func (s ReadOnlySession) IsIdle() bool { return s.session.IsIdle() }

// ReadWriteSession adds an input action sender to a ReadOnlySession.
type ReadWriteSession struct {
	ReadOnlySession
	Input chan<- Action
}

// Session owns the PTY master, the child process, and the emulator that
// output is streamed into.
type Session struct {
	ptm *os.File
	cmd *exec.Cmd
	emu *vtemu.Emulator

	mu      sync.Mutex
	lastOut time.Time

	events chan Event
	done   chan ExitStatus
	input  chan Action

	ctx    context.Context
	cancel context.CancelFunc
	eg     *errgroup.Group

	logger *slog.Logger
}

// Config describes how to spawn a session's child process.
type Config struct {
	Command string
	Args    []string
	Env     map[string]string
	Rows    int
	Cols    int
}

// StartReadOnly spawns the child and returns a ReadOnlySession immediately;
// PipeOutput is started on a background goroutine.
func StartReadOnly(cfg Config) (ReadOnlySession, error) {
	s, err := start(cfg)
	if err != nil {
		return ReadOnlySession{}, err
	}
	ro := ReadOnlySession{Events: s.events, Done: s.done, session: s}
	s.eg.Go(func() error { s.pipeOutput(); return nil })
	return ro, nil
}

// StartReadWrite spawns the child and returns a ReadWriteSession with an
// input action loop running alongside the output loop.
func StartReadWrite(cfg Config) (ReadWriteSession, error) {
	s, err := start(cfg)
	if err != nil {
		return ReadWriteSession{}, err
	}
	s.input = make(chan Action, 32)
	ro := ReadOnlySession{Events: s.events, Done: s.done, session: s}
	s.eg.Go(func() error { s.pipeOutput(); return nil })
	s.eg.Go(func() error { s.runInput(); return nil })
	return ReadWriteSession{ReadOnlySession: ro, Input: s.input}, nil
}

func start(cfg Config) (*Session, error) {
	logger := slog.Default()
	cmd := exec.Command(cfg.Command, cfg.Args...)
	if len(cfg.Env) > 0 {
		cmd.Env = mergeEnv(os.Environ(), cfg.Env)
	}
	ptm, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(cfg.Rows), Cols: uint16(cfg.Cols)})
	if err != nil {
		logger.Error("ptymux: failed to spawn child", "command", cfg.Command, "error", err)
		return nil, fmt.Errorf("start command: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	eg, egCtx := errgroup.WithContext(ctx)
	return &Session{
		ptm:    ptm,
		cmd:    cmd,
		emu:    vtemu.New(cfg.Rows, cfg.Cols),
		events: make(chan Event, 64),
		done:   make(chan ExitStatus, 1),
		ctx:    egCtx,
		cancel: cancel,
		eg:     eg,
		logger: logger,
	}, nil
}

// Wait blocks until every session goroutine (output pump, and input loop
// for a read-write session) has returned.
func (s *Session) Wait() error { return s.eg.Wait() }

func mergeEnv(base []string, overrides map[string]string) []string {
	env := make([]string, 0, len(base)+len(overrides))
	for _, e := range base {
		key := e
		for i, c := range e {
			if c == '=' {
				key = e[:i]
				break
			}
		}
		if _, override := overrides[key]; !override {
			env = append(env, e)
		}
	}
	for k, v := range overrides {
		env = append(env, k+"="+v)
	}
	return env
}

// pipeOutput reads child PTY output into the emulator and publishes events
// until the PTY closes, then reports Exit/UnexpectedExit and closes the
// event channel.
func (s *Session) pipeOutput() {
	buf := make([]byte, readBufferSize)
	for {
		n, err := s.ptm.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])

			s.mu.Lock()
			s.lastOut = time.Now()
			s.mu.Unlock()

			s.emu.Write(chunk)
			s.events <- Output{Bytes: chunk}
			for _, osc := range s.emu.Buffer().DrainOSC() {
				s.events <- Osc{Kind: oscKind(osc.Kind), Payload: osc.Payload}
			}
		}
		if err != nil {
			s.finish(err)
			return
		}
	}
}

func oscKind(k screen.OSCKind) OscKind {
	switch k {
	case screen.OSCHyperlink:
		return OscHyperlink
	case screen.OSCWorkingDirectory:
		return OscWorkingDirectory
	case screen.OSCBuildProgress:
		return OscBuildProgress
	default:
		return OscTitle
	}
}

func (s *Session) finish(readErr error) {
	status, waitErr := s.wait()
	switch {
	case waitErr == nil:
		s.events <- Exit{Status: status}
		s.done <- status
	case errors.Is(readErr, io.EOF):
		s.logger.Warn("ptymux: child exited unexpectedly", "error", waitErr)
		s.events <- UnexpectedExit{Reason: waitErr.Error()}
		s.done <- ExitStatus{Code: -1}
	default:
		s.logger.Warn("ptymux: pty read failed", "error", readErr)
		s.events <- UnexpectedExit{Reason: readErr.Error()}
		s.done <- ExitStatus{Code: -1}
	}
	close(s.events)
	close(s.done)
	s.cancel()
}

func (s *Session) wait() (ExitStatus, error) {
	err := s.cmd.Wait()
	if err == nil {
		return ExitStatus{Code: s.cmd.ProcessState.ExitCode()}, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return ExitStatus{Code: exitErr.ExitCode()}, nil
	}
	return ExitStatus{}, err
}

// runInput drains the input action channel, applying each action to the
// PTY or emulator in order until Close, the channel is closed, or the
// session's context is cancelled (e.g. because the output side already
// detected the child exiting).
func (s *Session) runInput() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case a, ok := <-s.input:
			if !ok {
				return
			}
			switch act := a.(type) {
			case Write:
				s.writePTY(act.Bytes)
			case WriteLine:
				s.writePTY(append([]byte(act.Line), '\r'))
			case SendControl:
				s.writePTY([]byte{act.Byte})
			case Resize:
				s.resize(act.Rows, act.Cols)
			case Flush:
				// nothing buffered on this side to flush; acts as a sync point.
			case Close:
				s.ptm.Close()
				return
			}
		}
	}
}

// writePTYTimeout bounds how long a single write may block before the
// session reports WriteError and gives up on it, so a hung child's full
// kernel PTY buffer can't wedge the input loop forever.
const writePTYTimeout = 5 * time.Second

func (s *Session) writePTY(p []byte) {
	type result struct {
		err error
	}
	ch := make(chan result, 1)
	go func() {
		_, err := s.ptm.Write(p)
		ch <- result{err}
	}()
	timer := time.NewTimer(writePTYTimeout)
	defer timer.Stop()
	select {
	case r := <-ch:
		if r.err != nil {
			s.logger.Warn("ptymux: write to child failed", "error", r.err)
			s.events <- WriteError{Err: r.err}
		}
	case <-timer.C:
		s.logger.Warn("ptymux: write to child timed out", "timeout", writePTYTimeout)
		s.events <- WriteError{Err: errWriteTimeout}
	}
}

var errWriteTimeout = errors.New("pty write timed out")

func (s *Session) resize(rows, cols int) {
	s.emu.Resize(rows, cols)
	pty.Setsize(s.ptm, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
}

// IsIdle reports whether the child has produced no output for at least
// idleThreshold.
func (s *Session) IsIdle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.lastOut.IsZero() && time.Since(s.lastOut) > idleThreshold
}

// EncodeKey renders an input event as the deterministic byte sequence a
// real keyboard would produce, for forwarding through a Write action.
// spec.md 4.6's control-character encoding table.
func EncodeKey(ev vtinput.InputEvent) []byte {
	return vtinput.Generate(ev)
}

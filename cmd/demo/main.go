// Command demo spawns a shell in a PTY, drives it through the full
// ptymux -> vtemu -> compositor -> backend pipeline, repaints the host
// terminal on every output chunk, and forwards SIGWINCH size changes to
// the session, until the shell exits.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/nullterm/tuiengine/backend"
	"github.com/nullterm/tuiengine/compositor"
	"github.com/nullterm/tuiengine/ptymux"
	"github.com/nullterm/tuiengine/reactor"
	"github.com/nullterm/tuiengine/screen"
	"github.com/nullterm/tuiengine/units"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}

	rows, cols := 24, 80
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		cols, rows = w, h
	}

	sess, err := ptymux.StartReadWrite(ptymux.Config{Command: shell, Rows: rows, Cols: cols})
	if err != nil {
		logger.Error("failed to start session", "error", err)
		os.Exit(1)
	}

	exec := backend.New(os.Stdout)
	var prev *screen.Buffer

	resizeSub, err := reactor.New(reactor.NewResizeFactory(func() (int, int, error) {
		w, h, err := term.GetSize(int(os.Stdout.Fd()))
		return h, w, err
	}), reactor.WithLogger[reactor.ResizeEvent](logger)).Subscribe()
	if err != nil {
		logger.Warn("resize watcher unavailable", "error", err)
	}
	resize, resizeLagged := resizeSub.Events, resizeSub.Lagged

	done := sess.Done
	for {
		select {
		case ev, ok := <-sess.Events:
			if !ok {
				return
			}
			handleEvent(ev, sess, exec, &prev, logger)
		case rs, ok := <-resize:
			if !ok {
				resize = nil
				continue
			}
			sess.Input <- ptymux.Resize{Rows: rs.Rows, Cols: rs.Cols}
		case missed, ok := <-resizeLagged:
			if !ok {
				resizeLagged = nil
				continue
			}
			logger.Warn("resize watcher fell behind", "missed", missed)
		case status := <-done:
			logger.Info("session exited", "code", status.Code)
			return
		case <-time.After(30 * time.Second):
			// Idle tick: nothing to do, but keeps the select loop
			// responsive to IsIdle()-driven diagnostics if ever added.
		}
	}
}

func handleEvent(ev ptymux.Event, sess ptymux.ReadWriteSession, exec *backend.Executor, prev **screen.Buffer, logger *slog.Logger) {
	switch ev.(type) {
	case ptymux.Output:
		cur := sess.Emulator().Buffer()
		var ops []compositor.Op
		if *prev == nil {
			ops = compositor.FullRender(cur)
		} else {
			ops = compositor.DiffRender(*prev, cur)
		}
		if err := exec.Apply(ops); err != nil {
			logger.Warn("render write failed", "error", err)
		}
		// cur is the emulator's live buffer, so keep a copy of this frame
		// for the next diff instead of the pointer itself.
		snap := screen.NewEmpty(cur.Size())
		for r := 0; r < cur.Rows(); r++ {
			for c := 0; c < cur.Cols(); c++ {
				pos := units.Position{Row: units.RowIndex(r), Col: units.ColIndex(c)}
				pc, _ := cur.GetChar(pos)
				snap.SetChar(pos, pc)
			}
		}
		*prev = snap
	case ptymux.Osc:
		osc := ev.(ptymux.Osc)
		if osc.Kind == ptymux.OscTitle {
			fmt.Fprintf(os.Stderr, "\x1b]0;%s\x07", osc.Payload)
		}
	case ptymux.WriteError:
		we := ev.(ptymux.WriteError)
		logger.Warn("write to child failed", "error", we.Err)
	}
}

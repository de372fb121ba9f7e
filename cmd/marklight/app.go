package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/marklight/marklight/internal/caret"
	"github.com/marklight/marklight/internal/config"
	"github.com/marklight/marklight/internal/doc"
	"github.com/marklight/marklight/internal/editor"
	"github.com/marklight/marklight/internal/input/key"
	"github.com/marklight/marklight/internal/logging"
	"github.com/marklight/marklight/internal/markup"
	"github.com/marklight/marklight/internal/session"
	"github.com/marklight/marklight/internal/surface"
)

// app owns the wiring: config, logging, session store, document, editor,
// and terminal surface.
type app struct {
	cfg        config.Config
	log        *log.Logger
	store      *session.Store
	document   *doc.Document
	filePath   string
	caretStart int // absolute caret offset to restore, from the session
}

func newApp(cfg config.Config, filePath string) (*app, error) {
	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		log:      logger,
		store:    session.NewStore(cfg.Session.Path),
		filePath: filePath,
	}
	if err := a.loadDocument(); err != nil {
		return nil, err
	}
	return a, nil
}

// newLogger builds the app logger. With no log file configured output is
// discarded: stderr belongs to the terminal UI.
func newLogger(cfg config.LoggingConfig) (*log.Logger, error) {
	if cfg.File == "" {
		return logging.New(io.Discard, logging.ParseLevel(cfg.Level)), nil
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return logging.New(f, logging.ParseLevel(cfg.Level)), nil
}

// loadDocument resolves the starting document: an explicit file wins,
// otherwise the saved session, otherwise an empty document.
func (a *app) loadDocument() error {
	if a.filePath != "" {
		data, err := os.ReadFile(a.filePath)
		if err != nil {
			if os.IsNotExist(err) {
				a.document = doc.New()
				return nil
			}
			return fmt.Errorf("open %s: %w", a.filePath, err)
		}
		if filepath.Ext(a.filePath) == ".md" {
			a.document = markup.FromMarkdown(data)
		} else {
			a.document = markup.FromPlainText(string(data))
		}
		return nil
	}

	st, err := a.store.Load()
	switch {
	case err == nil:
		d, herr := markup.Hydrate(st.Markup)
		if herr != nil {
			a.log.Warn("session document unreadable, starting empty", logging.FieldError, herr)
			a.document = doc.New()
			return nil
		}
		a.document = d
		a.filePath = st.Path
		a.caretStart = st.CaretOffset
	case errors.Is(err, session.ErrNoSession):
		a.document = doc.New()
	default:
		a.log.Warn("session load failed, starting empty", logging.FieldError, err)
		a.document = doc.New()
	}
	return nil
}

// Run drives the terminal until quit, then persists state.
func (a *app) Run() error {
	term, err := surface.NewTerminal(a.document)
	if err != nil {
		return err
	}
	if err := term.Init(); err != nil {
		return err
	}
	defer term.Fini()

	ed := editor.New(a.document, term,
		editor.WithDebounceWindow(a.cfg.Editor.DebounceWindow),
		editor.WithLogger(a.log),
	)
	a.restoreCaret(ed)
	ed.Reconcile()

	snapshot := func() session.State {
		var st session.State
		ed.Snapshot(func() {
			st = session.State{
				Path:        a.filePath,
				Markup:      markup.Serialize(a.document),
				CaretOffset: a.caretOffset(ed),
			}
		})
		return st
	}
	var saver *session.Autosaver
	if a.cfg.Session.Autosave {
		saver = session.NewAutosaver(a.store, a.cfg.Session.AutosaveInterval, snapshot,
			session.WithLogger(a.log))
		saver.Start()
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)
	go func() {
		<-signals
		term.Interrupt()
	}()

	term.Render()
	for {
		ev, ok := term.PollKey()
		if !ok || isQuit(ev) {
			break
		}
		ed.HandleKey(ev)
		term.Render()
	}

	ed.Close()
	if saver != nil {
		saver.Stop()
	} else if err := a.store.Save(snapshot()); err != nil {
		a.log.Warn("session save failed", logging.FieldError, err)
	}
	return a.saveFile()
}

func isQuit(ev key.Event) bool {
	return ev.IsRune() && ev.Rune == 'q' && ev.Modifiers.HasCtrl()
}

// restoreCaret places the cursor where the previous run left it, clamped to
// the current document.
func (a *app) restoreCaret(ed *editor.Editor) {
	pos := caret.PositionAt(a.document, a.caretStart)
	if err := ed.Tracker().RestoreAt(a.document, pos); err != nil {
		a.log.Warn("caret restore degraded", logging.FieldError, err)
	}
}

func (a *app) caretOffset(ed *editor.Editor) int {
	pos, ok := ed.Tracker().Current()
	if !ok {
		return 0
	}
	abs, err := caret.AbsoluteOffset(a.document, pos)
	if err != nil {
		return 0
	}
	return abs
}

// saveFile writes the document back to the opened file, if any.
func (a *app) saveFile() error {
	if a.filePath == "" {
		return nil
	}
	var out string
	if filepath.Ext(a.filePath) == ".md" {
		out = markup.ToMarkdown(a.document)
	} else {
		out = markup.ToPlainText(a.document)
	}
	if err := os.WriteFile(a.filePath, []byte(out), 0o644); err != nil {
		return fmt.Errorf("save %s: %w", a.filePath, err)
	}
	return nil
}

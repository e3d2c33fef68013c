// Package editor holds the editing session: the single owner of a template's
// component tree, page grid, variables and selection.
//
// Every mutation runs synchronously against a copy of the document and is
// committed only on success, so a refused operation never leaves a partial
// change behind. Refusals are returned as coded errors from pkg/errors,
// logged at warn level, and reported to the registered editor hooks.
//
// A Session is safe for concurrent use.
package editor

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/drop"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/errors"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/layout"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/observability"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/template"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/typst"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/variables"
)

// Options configures a Session.
type Options struct {
	Logger *log.Logger   // defaults to a discarding logger
	NewID  func() string // component id generator; defaults to UUIDs
}

// Session is an editing session over one template's content.
type Session struct {
	mu       sync.Mutex
	doc      *layout.Document
	vars     *variables.Manager
	resolver *drop.Resolver
	logger   *log.Logger
	selected string
	version  uint64

	markup        string
	markupVersion uint64
	markupValid   bool
}

// New starts a session over a copy of content.
func New(content template.Content, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Session{
		doc:      content.Document(),
		vars:     variables.NewManager(content.Variables),
		resolver: drop.NewResolver(opts.NewID),
		logger:   opts.Logger,
	}
}

// NewEmpty starts a session over [template.DefaultContent].
func NewEmpty(opts Options) *Session {
	return New(template.DefaultContent(), opts)
}

// Version returns a counter that increases with every committed change.
func (s *Session) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Document returns a copy of the current document.
func (s *Session) Document() *layout.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Content returns the persisted form of the session state.
func (s *Session) Content() template.Content {
	s.mu.Lock()
	defer s.mu.Unlock()
	return template.FromDocument(s.doc, s.vars.List())
}

// Load replaces the session state with content. Invalid content is refused
// and the session is left unchanged.
func (s *Session) Load(content template.Content) error {
	start := time.Now()
	if err := content.Validate(); err != nil {
		err = errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid template content")
		s.record("load", "", start, err)
		return err
	}

	s.mu.Lock()
	s.doc = content.Document()
	s.vars = variables.NewManager(content.Variables)
	s.selected = ""
	s.version++
	s.mu.Unlock()

	s.record("load", "", start, nil)
	return nil
}

// Markup returns the Typst markup for the current document. The result is
// cached until the next change.
func (s *Session) Markup() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.markupValid || s.markupVersion != s.version {
		s.markup = typst.Generate(s.doc)
		s.markupVersion = s.version
		s.markupValid = true
	}
	return s.markup
}

// Select marks the component with id as selected. An empty id clears the
// selection.
func (s *Session) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != "" {
		if _, ok := s.doc.Find(id); !ok {
			return errors.New(errors.ErrCodeNotFound, "component %s not found", id)
		}
	}
	s.selected = id
	return nil
}

// Selected returns the selected component id.
func (s *Session) Selected() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected, s.selected != ""
}

// mutate applies fn to a copy of the document and commits it if fn
// succeeds. The selection is cleared if the selected node is gone.
func (s *Session) mutate(op, target string, fn func(d *layout.Document) error) error {
	start := time.Now()

	s.mu.Lock()
	next := s.doc.Clone()
	err := fn(next)
	if err == nil {
		if verr := next.Validate(); verr != nil {
			err = errors.Wrap(errors.ErrCodeInternal, verr, "%s %s would corrupt the document", op, target)
		}
	}
	if err == nil {
		s.doc = next
		s.version++
		if s.selected != "" {
			if _, ok := next.Find(s.selected); !ok {
				s.selected = ""
			}
		}
	}
	s.mu.Unlock()

	s.record(op, target, start, err)
	return err
}

func (s *Session) record(op, target string, start time.Time, err error) {
	elapsed := time.Since(start)
	observability.Editor().OnMutation(context.Background(), op, target, elapsed, err)
	if err != nil {
		s.logger.Warn("refused", "op", op, "target", target, "code", errors.GetCode(err), "reason", errors.UserMessage(err))
		return
	}
	s.logger.Debug("applied", "op", op, "target", target, "duration", elapsed)
}

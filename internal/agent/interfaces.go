// File: internal/agent/interfaces.go
package agent

import (
	"context"

	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/api/schemas"
	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/internal/browser"
	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/internal/executor"
)

// Browser is the page surface the loop observes and catalogs.
type Browser interface {
	Navigate(ctx context.Context, url string) error
	Screenshot(ctx context.Context) ([]byte, error)
	Elements(ctx context.Context) ([]schemas.ElementRecord, error)
	CurrentURL(ctx context.Context) (string, error)
}

// ActionRunner executes a validated batch against the live page.
type ActionRunner interface {
	ExecuteStep(ctx context.Context, actions []schemas.ValidatedAction) executor.StepResult
}

// Recorder persists per-step diagnostics. All methods are fire-and-forget.
type Recorder interface {
	BeginStep(step int)
	RecordJSON(name string, v interface{})
	RecordScreenshot(name string, png []byte)
	RecordNote(text string)
	WriteMeta(v interface{})
}

// nopRecorder is used when artifact persistence is disabled.
type nopRecorder struct{}

func (nopRecorder) BeginStep(int)                  {}
func (nopRecorder) RecordJSON(string, interface{}) {}
func (nopRecorder) RecordScreenshot(string, []byte) {
}
func (nopRecorder) RecordNote(string)     {}
func (nopRecorder) WriteMeta(interface{}) {}

// sessionBrowser adapts a live session plus catalog to the Browser interface.
type sessionBrowser struct {
	session *browser.Session
	catalog *browser.Catalog
}

// NewSessionBrowser wires a chromedp session and its catalog into the shape
// the loop consumes.
func NewSessionBrowser(s *browser.Session, c *browser.Catalog) Browser {
	return &sessionBrowser{session: s, catalog: c}
}

func (b *sessionBrowser) Navigate(ctx context.Context, url string) error {
	return b.session.Navigate(ctx, url)
}

func (b *sessionBrowser) Screenshot(ctx context.Context) ([]byte, error) {
	return b.session.Screenshot(ctx)
}

func (b *sessionBrowser) Elements(ctx context.Context) ([]schemas.ElementRecord, error) {
	return b.catalog.Snapshot(ctx, b.session)
}

func (b *sessionBrowser) CurrentURL(ctx context.Context) (string, error) {
	return b.session.CurrentURL(ctx)
}

// sessionRunner adapts the executor to the ActionRunner interface.
type sessionRunner struct {
	session *browser.Session
	exec    *executor.Executor
}

// NewSessionRunner binds an executor to a live session.
func NewSessionRunner(s *browser.Session, e *executor.Executor) ActionRunner {
	return &sessionRunner{session: s, exec: e}
}

func (r *sessionRunner) ExecuteStep(ctx context.Context, actions []schemas.ValidatedAction) executor.StepResult {
	return r.exec.ExecuteStep(ctx, r.session, actions)
}

// File: internal/browser/session.go
package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/internal/config"
)

// DefaultAllocatorOptions translates the browser configuration into chromedp
// allocator options.
func DefaultAllocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	// Start with chromedp defaults.
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		// Required on hardened systems where the Chrome sandbox cannot start.
		chromedp.NoSandbox,
		// Recommended for stability in containers/headless environments.
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	if cfg.Headless {
		opts = append(opts, chromedp.Headless)
	}
	if cfg.IgnoreTLSErrors {
		opts = append(opts, chromedp.IgnoreCertErrors)
	}
	if cfg.WindowWidth > 0 && cfg.WindowHeight > 0 {
		opts = append(opts, chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight))
	}

	// Add additional flags from the config file's 'args' slice.
	for _, arg := range cfg.Args {
		if !strings.Contains(arg, "=") {
			opts = append(opts, chromedp.Flag(strings.TrimPrefix(arg, "--"), true))
			continue
		}
		parts := strings.SplitN(arg, "=", 2)
		opts = append(opts, chromedp.Flag(strings.TrimPrefix(parts[0], "--"), parts[1]))
	}
	return opts
}

// Session owns a single browser tab for the lifetime of a run. All page
// observation and interaction flows through it.
type Session struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc

	allocCancel context.CancelFunc

	logger *zap.Logger
	cfg    *config.Config
}

// NewSession starts a browser process and connects a fresh tab to it. The
// returned session must be closed by the caller.
func NewSession(parentCtx context.Context, cfg *config.Config, logger *zap.Logger) (*Session, error) {
	sessionID := uuid.New().String()

	opts := DefaultAllocatorOptions(cfg.Browser)
	allocCtx, allocCancel := chromedp.NewExecAllocator(parentCtx, opts...)
	ctx, cancel := chromedp.NewContext(allocCtx)

	s := &Session{
		id:          sessionID,
		ctx:         ctx,
		cancel:      cancel,
		allocCancel: allocCancel,
		logger:      logger.Named("browser").With(zap.String("session_id", sessionID)),
		cfg:         cfg,
	}

	// Launch eagerly so a missing or broken Chrome binary surfaces here
	// rather than on the first navigation.
	launchCtx, launchCancel := context.WithTimeout(ctx, 60*time.Second)
	defer launchCancel()
	if err := chromedp.Run(launchCtx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	s.logger.Info("Browser session started.", zap.Bool("headless", cfg.Browser.Headless))
	return s, nil
}

// ID returns the unique identifier for the session.
func (s *Session) ID() string {
	return s.id
}

// Navigate loads a URL, waits for the document body, then pauses for the
// configured post-load wait so late-mounting UI has a chance to render.
func (s *Session) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, s.cfg.Browser.NavigationTimeout)
	defer cancel()

	s.logger.Info("Navigating.", zap.String("url", url))
	if err := s.runActions(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("failed to navigate to %q: %w", url, err)
	}

	if s.cfg.Browser.PostLoadWait > 0 {
		select {
		case <-time.After(s.cfg.Browser.PostLoadWait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Screenshot captures the current viewport as PNG bytes.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	capture := chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, err = page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormatPng).
			Do(ctx)
		return err
	})
	if err := s.runActions(ctx, capture); err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return buf, nil
}

// CurrentURL reports the location of the active document.
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	var url string
	if err := s.runActions(ctx, chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("failed to read current location: %w", err)
	}
	return url, nil
}

// Evaluate runs a JavaScript expression in the page and unmarshals the result
// into out. Scripts are fixed expressions assembled by this package; page
// content is never interpolated into them as code.
func (s *Session) Evaluate(ctx context.Context, script string, out interface{}) error {
	return s.runActions(ctx, chromedp.Evaluate(script, out))
}

// RunActions executes chromedp actions under both the session lifetime and
// the caller's context.
func (s *Session) RunActions(ctx context.Context, actions ...chromedp.Action) error {
	return s.runActions(ctx, actions...)
}

func (s *Session) runActions(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := CombineContext(s.ctx, ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// Close terminates the tab and the browser process.
func (s *Session) Close() {
	s.logger.Debug("Closing browser session.")
	s.cancel()
	s.allocCancel()
}

// CombineContext creates a context that is canceled when either parent is.
// The derived context carries the chromedp target of parentCtx, so actions run
// against the session's tab while still honoring per-call deadlines.
func CombineContext(parentCtx, secondaryCtx context.Context) (context.Context, context.CancelFunc) {
	combinedCtx, cancel := context.WithCancel(parentCtx)

	go func() {
		select {
		case <-secondaryCtx.Done():
			cancel()
		case <-combinedCtx.Done():
		}
	}()

	return combinedCtx, cancel
}

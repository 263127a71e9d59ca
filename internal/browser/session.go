package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/artefactual-labs/amdriver/internal/common"
)

// Session owns one live browser for the duration of a test. The
// harness never runs operations concurrently against it; all apparent
// concurrency is the remote page mutating its own DOM.
type Session struct {
	allocCtx   context.Context
	browserCtx context.Context
	cleanup    []func() // LIFO
	logger     arbor.ILogger
	timeouts   common.TimeoutConfig
}

// NewSession starts a browser per the configuration and verifies it is
// responsive before returning.
func NewSession(cfg common.BrowserConfig, timeouts common.TimeoutConfig, logger arbor.ILogger) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", cfg.DisableGPU),
		chromedp.Flag("no-sandbox", cfg.NoSandbox),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	s := &Session{
		allocCtx:   allocCtx,
		browserCtx: browserCtx,
		logger:     logger,
		timeouts:   timeouts,
	}
	s.cleanup = append(s.cleanup, cancelAlloc, cancelBrowser)

	// Startup test: an unresponsive browser fails here, not mid-test.
	startCtx, cancel := context.WithTimeout(browserCtx, 30*time.Second)
	defer cancel()
	if err := chromedp.Run(startCtx, chromedp.Navigate("about:blank")); err != nil {
		s.Close()
		return nil, fmt.Errorf("browser failed startup test: %w", err)
	}

	logger.Debug().
		Bool("headless", cfg.Headless).
		Int("width", cfg.WindowWidth).
		Int("height", cfg.WindowHeight).
		Msg("Browser session started")

	return s, nil
}

// Close releases all browser resources in reverse order of
// acquisition, closing every window the session opened.
func (s *Session) Close() {
	if err := chromedp.Cancel(s.browserCtx); err != nil {
		s.logger.Warn().Err(err).Msg("Browser cancel returned error")
	}
	for i := len(s.cleanup) - 1; i >= 0; i-- {
		s.cleanup[i]()
	}
}

// Timeouts exposes the session's wait tuning to collaborators.
func (s *Session) Timeouts() common.TimeoutConfig {
	return s.timeouts
}

// Navigate loads url in the primary window.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.runActions(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// CurrentURL returns the primary window's location.
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	var loc string
	if err := s.runActions(ctx, chromedp.Location(&loc)); err != nil {
		return "", fmt.Errorf("failed to read current URL: %w", err)
	}
	return loc, nil
}

// Click clicks the first element matching the CSS selector.
func (s *Session) Click(ctx context.Context, selector string) error {
	return s.runActions(ctx, chromedp.Click(selector, chromedp.ByQuery))
}

// ClickXPath clicks the first element matching the XPath expression.
func (s *Session) ClickXPath(ctx context.Context, expr string) error {
	return s.runActions(ctx, chromedp.Click(expr, chromedp.BySearch))
}

// SendKeys types text into the element matching the CSS selector.
func (s *Session) SendKeys(ctx context.Context, selector, text string) error {
	return s.runActions(ctx, chromedp.SendKeys(selector, text, chromedp.ByQuery))
}

// SetFileInput attaches a local file to the file input matching the
// CSS selector.
func (s *Session) SetFileInput(ctx context.Context, selector, path string) error {
	return s.runActions(ctx, chromedp.SetUploadFiles(selector, []string{path}, chromedp.ByQuery))
}

// Text returns the trimmed text content of the first matching element.
func (s *Session) Text(ctx context.Context, selector string) (string, error) {
	var text string
	if err := s.runActions(ctx, chromedp.Text(selector, &text, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Snapshot returns the full rendered document as HTML. Locators match
// against this snapshot as pure reads, which sidesteps stale element
// references for everything except clicks.
func (s *Session) Snapshot(ctx context.Context) (string, error) {
	var html string
	if err := s.runActions(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to snapshot document: %w", err)
	}
	return html, nil
}

// Evaluate runs a JavaScript expression in the page, decoding the
// result into res (may be nil).
func (s *Session) Evaluate(ctx context.Context, expr string, res interface{}) error {
	return s.runActions(ctx, chromedp.Evaluate(expr, res))
}

// ReadWindow opens url in a secondary window, returns its rendered
// content, and closes the window before returning. Control stays with
// the primary window throughout; a leaked secondary window would hold
// browser resources for the rest of the test.
func (s *Session) ReadWindow(ctx context.Context, url string) (string, error) {
	tabCtx, cancelTab := chromedp.NewContext(s.browserCtx)
	defer cancelTab()

	runCtx := tabCtx
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithDeadline(tabCtx, deadline)
		defer cancel()
	}

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("failed to read window %s: %w", url, err)
	}
	return html, nil
}

// CaptureWindow runs trigger (typically a click that opens a preview
// in a new window), waits for the new window to appear, reads its
// rendered content, and closes it. The primary window keeps control
// throughout.
func (s *Session) CaptureWindow(ctx context.Context, trigger func() error) (string, error) {
	before, err := chromedp.Targets(s.browserCtx)
	if err != nil {
		return "", fmt.Errorf("failed to list browser targets: %w", err)
	}
	known := make(map[target.ID]bool, len(before))
	for _, info := range before {
		known[info.TargetID] = true
	}

	if err := trigger(); err != nil {
		return "", err
	}

	var opened target.ID
	err = PollUntil(ctx, 250*time.Millisecond, func() (bool, error) {
		infos, err := chromedp.Targets(s.browserCtx)
		if err != nil {
			return false, fmt.Errorf("failed to list browser targets: %w", err)
		}
		for _, info := range infos {
			if info.Type == "page" && !known[info.TargetID] {
				opened = info.TargetID
				return true, nil
			}
		}
		return false, nil
	})
	if err != nil {
		return "", fmt.Errorf("no new window appeared: %w", err)
	}

	tabCtx, cancelTab := chromedp.NewContext(s.browserCtx, chromedp.WithTargetID(opened))
	var html string
	readErr := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	cancelTab()
	// Close the window regardless of the read outcome; a leaked
	// secondary window holds browser resources for the rest of the
	// test.
	if err := s.runActions(ctx, target.CloseTarget(opened)); err != nil {
		s.logger.Warn().Str("target_id", string(opened)).Err(err).Msg("Failed to close captured window")
	}
	if readErr != nil {
		return "", fmt.Errorf("failed to read captured window: %w", readErr)
	}
	return html, nil
}

// CloseExtraWindows closes every page target except the primary
// window. Used at teardown as a belt against windows opened by the
// remote application itself (e.g. metadata previews).
func (s *Session) CloseExtraWindows(ctx context.Context) error {
	infos, err := chromedp.Targets(s.browserCtx)
	if err != nil {
		return fmt.Errorf("failed to list browser targets: %w", err)
	}
	primary := chromedp.FromContext(s.browserCtx).Target.TargetID
	for _, info := range infos {
		if info.Type != "page" || info.TargetID == primary {
			continue
		}
		if err := s.runActions(ctx, target.CloseTarget(info.TargetID)); err != nil {
			s.logger.Warn().
				Str("target_id", string(info.TargetID)).
				Err(err).
				Msg("Failed to close secondary window")
		}
	}
	return nil
}

// runActions runs chromedp actions against the primary window,
// honoring the caller's deadline. chromedp requires its own context
// chain as the run target, so the caller deadline is re-derived.
func (s *Session) runActions(ctx context.Context, actions ...chromedp.Action) error {
	runCtx := s.browserCtx
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithDeadline(s.browserCtx, deadline)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(runCtx, actions...)
}

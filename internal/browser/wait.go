package browser

import (
	"context"
	"errors"
	"time"

	"github.com/chromedp/chromedp"
)

// Condition is a DOM predicate kind for WaitFor.
type Condition int

const (
	// Present waits for the element to exist in the DOM.
	Present Condition = iota
	// Visible waits for the element to exist and be displayed.
	Visible
	// Hidden waits for the element to be absent or not displayed.
	Hidden
)

func (c Condition) String() string {
	switch c {
	case Present:
		return "present"
	case Visible:
		return "visible"
	case Hidden:
		return "hidden"
	}
	return "unknown"
}

// WaitFor blocks until the element matching selector satisfies cond,
// or timeout elapses. A timeout is not an error: the remote UI gives
// no render-timing guarantees, so callers proceed optimistically and
// re-verify the condition downstream. The return value reports whether
// the condition was observed within the timeout.
func (s *Session) WaitFor(ctx context.Context, selector string, cond Condition, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = s.timeouts.Default
	}

	var action chromedp.Action
	switch cond {
	case Visible:
		action = chromedp.WaitVisible(selector, chromedp.ByQuery)
	case Hidden:
		action = chromedp.WaitNotVisible(selector, chromedp.ByQuery)
	default:
		action = chromedp.WaitReady(selector, chromedp.ByQuery)
	}

	waitCtx, cancel := context.WithTimeout(s.browserCtx, timeout)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return false
	}

	if err := chromedp.Run(waitCtx, action); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.Debug().
				Str("selector", selector).
				Str("condition", cond.String()).
				Dur("timeout", timeout).
				Msg("Wait condition not met within timeout")
			return false
		}
		s.logger.Debug().
			Str("selector", selector).
			Str("condition", cond.String()).
			Err(err).
			Msg("Wait condition aborted")
		return false
	}
	return true
}

// WaitForXPath is WaitFor over an XPath locator. Hidden is not
// supported for XPath locators; only Present and Visible are used by
// the tree navigators.
func (s *Session) WaitForXPath(ctx context.Context, expr string, cond Condition, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = s.timeouts.Default
	}

	var action chromedp.Action
	if cond == Visible {
		action = chromedp.WaitVisible(expr, chromedp.BySearch)
	} else {
		action = chromedp.WaitReady(expr, chromedp.BySearch)
	}

	waitCtx, cancel := context.WithTimeout(s.browserCtx, timeout)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return false
	}
	return chromedp.Run(waitCtx, action) == nil
}

// PollUntil re-evaluates fn every interval until it reports done, fn
// fails, or ctx is cancelled. Explicit loop with no recursion: the
// unbounded poll paths (job status, group appearance) run through here
// and rely on the caller's context as the only cap.
func PollUntil(ctx context.Context, interval time.Duration, fn func() (bool, error)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		done, err := fn()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

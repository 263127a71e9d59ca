package nav

import (
	"context"
	"time"

	"github.com/artefactual-labs/amdriver/internal/browser"
)

// Driver is the minimal browser capability the tree navigators need.
// *browser.Session satisfies it via SessionDriver; tests drive the
// navigators with fakes to exercise the retry policy.
type Driver interface {
	// WaitPresent blocks until the locator exists in the DOM or the
	// timeout elapses, reporting whether it was observed.
	WaitPresent(ctx context.Context, loc Locator, timeout time.Duration) bool
	// WaitVisible is WaitPresent with a visibility requirement.
	WaitVisible(ctx context.Context, loc Locator, timeout time.Duration) bool
	// Click clicks the element at the locator.
	Click(ctx context.Context, loc Locator) error
}

// Locator addresses one element either by CSS query or XPath. The two
// file-browser UIs use different identification schemes, so both forms
// are needed.
type Locator struct {
	Query string
	XPath bool
}

// CSS returns a CSS-query locator.
func CSS(query string) Locator { return Locator{Query: query} }

// XPath returns an XPath locator.
func XPath(expr string) Locator { return Locator{Query: expr, XPath: true} }

// SessionDriver adapts a browser session to the Driver interface.
type SessionDriver struct {
	Session *browser.Session
}

func (d SessionDriver) WaitPresent(ctx context.Context, loc Locator, timeout time.Duration) bool {
	if loc.XPath {
		return d.Session.WaitForXPath(ctx, loc.Query, browser.Present, timeout)
	}
	return d.Session.WaitFor(ctx, loc.Query, browser.Present, timeout)
}

func (d SessionDriver) WaitVisible(ctx context.Context, loc Locator, timeout time.Duration) bool {
	if loc.XPath {
		return d.Session.WaitForXPath(ctx, loc.Query, browser.Visible, timeout)
	}
	return d.Session.WaitFor(ctx, loc.Query, browser.Visible, timeout)
}

func (d SessionDriver) Click(ctx context.Context, loc Locator) error {
	if loc.XPath {
		return d.Session.ClickXPath(ctx, loc.Query)
	}
	return d.Session.Click(ctx, loc.Query)
}

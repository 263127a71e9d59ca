package browser

import (
	"strings"
)

// Stale node message fragments surfaced by the DevTools protocol when
// the page's client-side framework repaints the DOM while we hold a
// node reference. The whole operation restarts because partial
// progress is unresumable once the handles are invalidated.
var staleNodeFragments = []string{
	"could not find node",
	"no node with given id found",
	"node with given id does not belong to the document",
	"node resolution failed",
}

// IsStaleNode reports whether err indicates an invalidated DOM node
// reference.
func IsStaleNode(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, fragment := range staleNodeFragments {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

// WithStaleRetry invokes op, restarting it from the beginning whenever
// it fails with a stale node error, unboundedly. Any other failure is
// returned untouched; cancellation must come from a context checked
// inside op.
func WithStaleRetry(op func() error) error {
	for {
		err := op()
		if !IsStaleNode(err) {
			return err
		}
	}
}

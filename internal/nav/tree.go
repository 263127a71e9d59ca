// Package nav implements the incremental path-segment navigation over
// the dashboard's two directory-tree UIs: the transfer source browser
// (label-text/XPath scheme) and the package content browser
// (synthetic-ID scheme). Both retry the entire path on any segment
// failure, bounded at MaxPathTries.
package nav

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
)

// MaxPathTries bounds full-path retries. On a transient segment
// failure the whole path restarts from the root; exceeding the bound
// is terminal.
const MaxPathTries = 5

// segmentWait is how long each segment gets to render before the path
// restarts. Short on purpose: restarting is cheap, and a slow segment
// usually means the click landed on a not-yet-interactive node.
const segmentWait = 1 * time.Second

// hoverSettle compensates for the file browser's hover animations.
const hoverSettle = 250 * time.Millisecond

// PathError is the terminal failure after exhausting path retries.
type PathError struct {
	Path  string
	Tries int
	Last  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("failed to navigate to %s after %d tries: %v", e.Path, e.Tries, e.Last)
}

func (e *PathError) Unwrap() error { return e.Last }

// errSegmentTimeout marks a per-segment render timeout; it triggers a
// full-path restart rather than surfacing to the caller.
type errSegmentTimeout struct {
	segment string
}

func (e errSegmentTimeout) Error() string {
	return fmt.Sprintf("segment %q did not render within %v", e.segment, segmentWait)
}

// splitPath normalizes slashes and splits a tree path into segments.
func splitPath(path string) []string {
	return strings.Split(strings.Trim(path, "/"), "/")
}

// TreeNavigator walks the transfer source browser, whose nodes carry
// no stable identifiers: each segment is matched by label text scoped
// under the already-matched ancestor trail, so a same-named folder in
// a different subtree cannot match.
type TreeNavigator struct {
	Driver Driver
	Logger arbor.ILogger

	// ConfirmSelector is the "Add"/confirm control clicked after the
	// terminal segment.
	ConfirmSelector string
}

// treeSiblingJoin joins per-folder label XPaths according to the DOM
// structure of the tree widget, making the accumulated trail an
// absolute match.
const treeSiblingJoin = "/following-sibling::treeitem/ul/li/"

// labelXPath matches a tree node label containing the folder name.
func labelXPath(folder string) string {
	return fmt.Sprintf(
		"div[contains(@class, 'tree-label') and descendant::span[contains(text(), '%s')]]",
		folder)
}

// expandIconXPath addresses the expand affordance of a matched label.
func expandIconXPath(label string) string {
	return label + "/preceding-sibling::i[@class='tree-branch-head']"
}

// childrenXPath addresses the children container of a matched label.
func childrenXPath(label string) string {
	return label + "/following-sibling::treeitem"
}

// Open walks path from the root and clicks the terminal node, then the
// confirm control. Any segment timeout or click failure restarts the
// entire path, up to MaxPathTries.
func (n *TreeNavigator) Open(ctx context.Context, path string) error {
	var lastErr error
	for try := 1; try <= MaxPathTries; try++ {
		lastErr = n.walk(ctx, path)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		n.Logger.Debug().
			Str("path", path).
			Int("try", try).
			Err(lastErr).
			Msg("Tree navigation failed, retrying full path")
	}
	n.Logger.Warn().
		Str("path", path).
		Int("tries", MaxPathTries).
		Err(lastErr).
		Msg("Tree navigation exhausted retries")
	return &PathError{Path: path, Tries: MaxPathTries, Last: lastErr}
}

func (n *TreeNavigator) walk(ctx context.Context, path string) error {
	segments := splitPath(path)
	trail := make([]string, 0, len(segments))
	for i, folder := range segments {
		isLast := i == len(segments)-1
		label := labelXPath(folder)
		if i == 0 {
			label = "//" + label
		}
		trail = append(trail, label)
		// The joined trail matches folder only under the matched
		// ancestors.
		absolute := strings.Join(trail, treeSiblingJoin)
		if !n.Driver.WaitPresent(ctx, XPath(absolute), segmentWait) {
			return errSegmentTimeout{segment: folder}
		}
		if isLast {
			if err := n.Driver.Click(ctx, XPath(absolute)); err != nil {
				return fmt.Errorf("failed to click %q: %w", folder, err)
			}
			if err := n.Driver.Click(ctx, CSS(n.ConfirmSelector)); err != nil {
				return fmt.Errorf("failed to click confirm control: %w", err)
			}
			return nil
		}
		if err := n.Driver.Click(ctx, XPath(expandIconXPath(absolute))); err != nil {
			return fmt.Errorf("failed to expand %q: %w", folder, err)
		}
		if !n.Driver.WaitVisible(ctx, XPath(childrenXPath(absolute)), segmentWait) {
			return errSegmentTimeout{segment: folder}
		}
	}
	return nil
}

// ExplorerNavigator walks the package content browser, whose nodes
// carry synthetic identifiers built by underscore-joining the path
// from a fixed explorer root.
type ExplorerNavigator struct {
	Driver Driver
	Logger arbor.ILogger

	// Root is the identifier prefix of the explorer's root node.
	Root string
}

// metadataFilePrefix is the reserved filename prefix whose literal dot
// must be rewritten before synthetic-ID lookup: the explorer encodes
// "METS.<uuid>.xml" as "METS__<uuid>.xml" in its node identifiers.
const metadataFilePrefix = "METS."

// explorerNodeID builds the synthetic identifier for the accumulated
// path segments.
func explorerNodeID(trail []string) string {
	return strings.Join(trail, "_")
}

// escapeID escapes literal dots so the identifier survives CSS
// selector parsing.
func escapeID(id string) string {
	return strings.ReplaceAll(id, ".", `\.`)
}

// Open walks path from the explorer root and clicks the terminal
// entry as a file. Retry policy matches TreeNavigator: full-path
// restart, bounded at MaxPathTries.
func (n *ExplorerNavigator) Open(ctx context.Context, path string) error {
	var lastErr error
	for try := 1; try <= MaxPathTries; try++ {
		lastErr = n.walk(ctx, path)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		n.Logger.Debug().
			Str("path", path).
			Int("try", try).
			Err(lastErr).
			Msg("Explorer navigation failed, retrying full path")
	}
	n.Logger.Warn().
		Str("path", path).
		Int("tries", MaxPathTries).
		Err(lastErr).
		Msg("Explorer navigation exhausted retries")
	return &PathError{Path: path, Tries: MaxPathTries, Last: lastErr}
}

func (n *ExplorerNavigator) walk(ctx context.Context, path string) error {
	segments := splitPath(path)
	if last := segments[len(segments)-1]; strings.HasPrefix(last, metadataFilePrefix) {
		segments[len(segments)-1] = "METS__" + last[len(metadataFilePrefix):]
	}
	trail := []string{n.Root}
	for i, segment := range segments {
		isLast := i == len(segments)-1
		trail = append(trail, segment)
		nodeID := explorerNodeID(trail)
		if !n.Driver.WaitPresent(ctx, CSS("#explorer"), segmentWait) {
			return errSegmentTimeout{segment: segment}
		}
		if isLast {
			if err := n.clickEntry(ctx, nodeID, "backbone-file-explorer-directory_entry_name"); err != nil {
				return err
			}
			return nil
		}
		if err := n.clickEntry(ctx, nodeID, "backbone-file-explorer-directory_icon_button"); err != nil {
			return err
		}
		childrenSel := fmt.Sprintf("div#%s + div.backbone-file-explorer-level", escapeID(nodeID))
		if !n.Driver.WaitVisible(ctx, CSS(childrenSel), segmentWait) {
			return errSegmentTimeout{segment: segment}
		}
	}
	return nil
}

// clickEntry clicks the span of class within the explorer node. The
// settle delay compensates for the hover animation that must finish
// before the span is clickable.
func (n *ExplorerNavigator) clickEntry(ctx context.Context, nodeID, class string) error {
	sel := fmt.Sprintf("div#%s span.%s", escapeID(nodeID), class)
	if !n.Driver.WaitPresent(ctx, CSS(sel), segmentWait) {
		return errSegmentTimeout{segment: nodeID}
	}
	time.Sleep(hoverSettle)
	if err := n.Driver.Click(ctx, CSS(sel)); err != nil {
		return fmt.Errorf("failed to click explorer entry %s: %w", nodeID, err)
	}
	return nil
}

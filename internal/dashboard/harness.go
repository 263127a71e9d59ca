// Package dashboard drives a digital-preservation dashboard through a
// live browser session: starting transfers, walking the unit/group/job
// panels, and extracting task tables, normalization reports, and
// archival package metadata for test assertions.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp/kb"
	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/artefactual-labs/amdriver/internal/browser"
	"github.com/artefactual-labs/amdriver/internal/common"
	"github.com/artefactual-labs/amdriver/internal/nav"
	"github.com/artefactual-labs/amdriver/internal/scrape"
)

// DOM selectors for the intake form. Stable as long as the dashboard
// keeps its client-side framework.
const (
	selTransferNameInput  = `input[ng-model="vm.transfer.name"]`
	selTransferSourcePane = `div.transfer-tree-container`
	selAddDirButton       = `button.pull-right[type=submit]`
	selBrowseSourcesBtn   = `button[data-target="#transfer_browse_tree"]`
	selStartTransferBtn   = `button[ng-click="vm.transfer.start()"]`
	selUnitPanel          = `div.sip`
	selRemoveUnitButton   = `div.sip a.btn_remove_sip`
	selRemoveDialog       = `div.ui-dialog`
)

// approveTransferOption is the option value of the "Approve transfer"
// processing choice. Environment-specific but fixed per install.
const approveTransferOption = "6953950b-c101-4f4c-a0c3-0cd0684afe5e"

// explorerRoot is the synthetic identifier of the package content
// browser's root node.
const explorerRoot = "explorer_var_archivematica_sharedDirectory_watchedDirectories"

// Appearance-wait bounds for a freshly started unit: the listing
// re-renders on its own schedule, so we re-scan snapshots on a fixed
// interval up to a generous cap.
const (
	maxUnitAppearWaits = 200
	unitAppearInterval = 500 * time.Millisecond
)

// taskTableSettle absorbs a race where the task detail view briefly
// renders exit codes that have not been written out yet.
const taskTableSettle = 1 * time.Second

// ErrUnitNotFound is returned when a processing unit never appears in
// the listing within the bounded appearance wait.
var ErrUnitNotFound = errors.New("processing unit not found")

// UnitKind selects the listing tab a processing unit lives under.
type UnitKind int

const (
	UnitTransfer UnitKind = iota
	UnitIngest
)

func (k UnitKind) String() string {
	if k == UnitIngest {
		return "ingest"
	}
	return "transfer"
}

// JobResult is a parsed job: its terminal status and the task table
// keyed by file UUID.
type JobResult struct {
	Status string
	Tasks  scrape.TaskTable
}

// snapshotter is the read side of the browser session; tests substitute
// canned snapshots.
type snapshotter interface {
	Snapshot(ctx context.Context) (string, error)
}

// Harness is the public surface of the integration-test driver. One
// harness per test; all operations run on a single logical thread.
type Harness struct {
	sess   *browser.Session
	snap   snapshotter
	urls   URLs
	groups GroupMap
	cfg    *common.Config
	logger arbor.ILogger
}

// NewHarness opens a browser session against the configured dashboard.
// Callers own the returned harness and must Close it at teardown.
func NewHarness(cfg *common.Config, logger arbor.ILogger) (*Harness, error) {
	groups := DefaultGroupMap()
	if cfg.Groups.File != "" {
		loaded, err := LoadGroupMap(cfg.Groups.File)
		if err != nil {
			return nil, err
		}
		groups = loaded
	}

	sess, err := browser.NewSession(cfg.Browser, cfg.Timeouts, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to start browser session: %w", err)
	}

	return &Harness{
		sess:   sess,
		snap:   sess,
		urls:   NewURLs(cfg.Dashboard.BaseURL),
		groups: groups,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Close tears the session down, closing every window it opened.
func (h *Harness) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := h.sess.CloseExtraWindows(ctx); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to close secondary windows at teardown")
	}
	h.sess.Close()
}

// URLs exposes the harness's URL builders.
func (h *Harness) URLs() URLs { return h.urls }

// Login submits the dashboard login form with the configured
// credentials.
func (h *Harness) Login(ctx context.Context) error {
	if err := h.sess.Navigate(ctx, h.urls.Login()); err != nil {
		return err
	}
	h.sess.WaitFor(ctx, "#id_username", browser.Present, 0)
	if err := h.sess.SendKeys(ctx, "#id_username", h.cfg.Dashboard.Username); err != nil {
		return fmt.Errorf("failed to enter username: %w", err)
	}
	if err := h.sess.SendKeys(ctx, "#id_password", h.cfg.Dashboard.Password); err != nil {
		return fmt.Errorf("failed to enter password: %w", err)
	}
	if err := h.sess.Click(ctx, "button"); err != nil {
		return fmt.Errorf("failed to submit login form: %w", err)
	}
	h.logger.Debug().Str("username", h.cfg.Dashboard.Username).Msg("Logged in to dashboard")
	return nil
}

// navigate loads url, recovering once from a session-expiry redirect:
// landing anywhere but the requested URL means the session cookie has
// lapsed, so we log in and try again.
func (h *Harness) navigate(ctx context.Context, url string) error {
	if err := h.sess.Navigate(ctx, url); err != nil {
		return err
	}
	current, err := h.sess.CurrentURL(ctx)
	if err != nil {
		return err
	}
	if current == url {
		return nil
	}
	h.logger.Debug().Str("requested", url).Str("landed", current).Msg("Redirected, re-authenticating")
	if err := h.Login(ctx); err != nil {
		return err
	}
	return h.sess.Navigate(ctx, url)
}

// StartTransfer starts a transfer of the directory at sourcePath under
// name, approves it, and returns the UUID the dashboard assigned. The
// name must be one the dashboard will not alter, because it is the key
// used to re-identify the unit in the listing. If the unit never
// appears within the bounded wait, ErrUnitNotFound is returned and the
// remote state is left as-is for the caller to clean up.
func (h *Harness) StartTransfer(ctx context.Context, sourcePath, name string) (string, error) {
	if err := h.navigateToTransferTab(ctx); err != nil {
		return "", err
	}
	if err := h.sess.SendKeys(ctx, selTransferNameInput, name); err != nil {
		return "", fmt.Errorf("failed to enter transfer name: %w", err)
	}
	if err := h.addTransferDirectory(ctx, sourcePath); err != nil {
		return "", err
	}
	if err := h.sess.Click(ctx, selStartTransferBtn); err != nil {
		return "", fmt.Errorf("failed to click start transfer: %w", err)
	}

	unitUUID, err := h.waitForUnit(ctx, name)
	if err != nil {
		return "", err
	}
	if err := h.approveTransfer(ctx, unitUUID); err != nil {
		return "", err
	}
	h.logger.Info().Str("name", name).Str("uuid", unitUUID).Msg("Transfer started and approved")
	return unitUUID, nil
}

// VerifyTransferTab loads the transfer tab and confirms the intake
// form rendered, as a connectivity smoke check.
func (h *Harness) VerifyTransferTab(ctx context.Context) error {
	if err := h.navigate(ctx, h.urls.Transfer()); err != nil {
		return err
	}
	if !h.sess.WaitFor(ctx, selTransferNameInput, browser.Present, 0) {
		return fmt.Errorf("transfer intake form did not render")
	}
	return nil
}

func (h *Harness) navigateToTransferTab(ctx context.Context) error {
	if err := h.navigate(ctx, h.urls.Transfer()); err != nil {
		return err
	}
	h.sess.WaitFor(ctx, "#transfer-name", browser.Present, 0)
	return nil
}

// addTransferDirectory opens the source browser pane if collapsed and
// walks the tree to sourcePath, clicking its add control.
func (h *Harness) addTransferDirectory(ctx context.Context, sourcePath string) error {
	html, err := h.snap.Snapshot(ctx)
	if err != nil {
		return err
	}
	doc, err := parseSnapshot(html)
	if err != nil {
		return err
	}
	pane := doc.Find(selTransferSourcePane).First()
	if pane.Length() == 0 || isHidden(pane) {
		if err := h.sess.Click(ctx, selBrowseSourcesBtn); err != nil {
			return fmt.Errorf("failed to open source browser: %w", err)
		}
	}
	h.sess.WaitFor(ctx, selTransferSourcePane, browser.Visible, 0)

	tree := &nav.TreeNavigator{
		Driver:          nav.SessionDriver{Session: h.sess},
		Logger:          h.logger,
		ConfirmSelector: selAddDirButton,
	}
	return tree.Open(ctx, sourcePath)
}

// waitForUnit re-scans listing snapshots for a unit named name,
// bounded at maxUnitAppearWaits, and resolves its UUID.
func (h *Harness) waitForUnit(ctx context.Context, name string) (string, error) {
	h.sess.WaitFor(ctx, "div.sip-detail-directory", browser.Present, 0)
	for wait := 0; wait < maxUnitAppearWaits; wait++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		html, err := h.snap.Snapshot(ctx)
		if err != nil {
			return "", err
		}
		doc, err := parseSnapshot(html)
		if err != nil {
			return "", err
		}
		if unitUUID, found := unitByName(doc, name); found {
			if _, err := uuid.Parse(unitUUID); err != nil {
				return "", fmt.Errorf("unit %q resolved to malformed UUID %q: %w", name, unitUUID, err)
			}
			// Give the listing one more repaint before clicking into
			// the fresh panel.
			time.Sleep(unitAppearInterval)
			return unitUUID, nil
		}
		time.Sleep(unitAppearInterval)
	}
	h.logger.Warn().Str("name", name).Int("waits", maxUnitAppearWaits).Msg("Unit never appeared in listing")
	return "", fmt.Errorf("unit %q: %w", name, ErrUnitNotFound)
}

// approveTransfer selects the "Approve transfer" processing choice on
// the unit's panel.
func (h *Harness) approveTransfer(ctx context.Context, unitUUID string) error {
	optionXPath := fmt.Sprintf(
		"//div[contains(@class, 'sip') and descendant::div[@id='sip-row-%s']]//option[@value='%s']",
		unitUUID, approveTransferOption)
	return browser.WithStaleRetry(func() error {
		return h.sess.ClickXPath(ctx, optionXPath)
	})
}

// RemoveAllTransfers removes every unit listed in the transfer tab.
func (h *Harness) RemoveAllTransfers(ctx context.Context) error {
	return h.removeAllUnits(ctx, UnitTransfer)
}

// RemoveAllIngests removes every unit listed in the ingest tab.
func (h *Harness) RemoveAllIngests(ctx context.Context) error {
	return h.removeAllUnits(ctx, UnitIngest)
}

func (h *Harness) unitTabURL(kind UnitKind) string {
	if kind == UnitIngest {
		return h.urls.Ingest()
	}
	return h.urls.Transfer()
}

// removeAllUnits repeatedly removes the topmost listed unit, confirming
// each removal through the modal dialog, until the listing is empty.
func (h *Harness) removeAllUnits(ctx context.Context, kind UnitKind) error {
	if err := h.navigate(ctx, h.unitTabURL(kind)); err != nil {
		return err
	}
	// The listing takes a while server-side on populated installs.
	h.sess.WaitFor(ctx, selUnitPanel, browser.Present, h.cfg.Timeouts.ListingWait)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		html, err := h.snap.Snapshot(ctx)
		if err != nil {
			return err
		}
		doc, err := parseSnapshot(html)
		if err != nil {
			return err
		}
		if !hasUnits(doc) {
			h.logger.Debug().Str("kind", kind.String()).Msg("No units remain")
			return nil
		}
		remaining := doc.Find(selUnitPanel).Length()
		if err := h.removeTopUnit(ctx, remaining); err != nil {
			return err
		}
	}
}

// removeTopUnit clicks the topmost unit's remove control, confirms the
// dialog, and waits for both the dialog and the row to go away.
func (h *Harness) removeTopUnit(ctx context.Context, unitsBefore int) error {
	err := browser.WithStaleRetry(func() error {
		return h.sess.Click(ctx, selRemoveUnitButton)
	})
	if err != nil {
		return fmt.Errorf("failed to click remove on topmost unit: %w", err)
	}
	h.sess.WaitFor(ctx, selRemoveDialog, browser.Present, 0)

	confirmXPath := "//div[contains(@class, 'ui-dialog') and not(contains(@style, 'display: none'))]" +
		"//button[normalize-space(text())='Confirm']"
	err = browser.WithStaleRetry(func() error {
		return h.sess.ClickXPath(ctx, confirmXPath)
	})
	if err != nil {
		return fmt.Errorf("failed to confirm unit removal: %w", err)
	}
	h.sess.WaitFor(ctx, selRemoveDialog, browser.Hidden, 0)

	// Removal is processed server-side; wait for the row to drop out
	// of the listing before targeting the next one.
	waitCtx, cancel := context.WithTimeout(ctx, h.cfg.Timeouts.RemovalWait)
	defer cancel()
	err = browser.PollUntil(waitCtx, h.cfg.Timeouts.PollInterval, func() (bool, error) {
		html, err := h.snap.Snapshot(ctx)
		if err != nil {
			return false, err
		}
		doc, err := parseSnapshot(html)
		if err != nil {
			return false, err
		}
		return doc.Find(selUnitPanel).Length() < unitsBefore, nil
	})
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

// SIPUUID resolves the ingest (SIP) UUID of the unit named
// transferName from the ingest tab.
func (h *Harness) SIPUUID(ctx context.Context, transferName string) (string, error) {
	if err := h.navigate(ctx, h.urls.Ingest()); err != nil {
		return "", err
	}
	return h.waitForUnit(ctx, transferName)
}

// ExposeJob makes the job row for stageName on the given unit visible:
// it polls for the enclosing group panel, expands it if collapsed, and
// waits for the job row to render. It blocks until the row exists or
// ctx is done; the group appears only once the pipeline reaches that
// stage, so the caller's context is the cap.
func (h *Harness) ExposeJob(ctx context.Context, stageName, unitUUID string, kind UnitKind) (string, error) {
	groupName, err := h.groups.Lookup(stageName)
	if err != nil {
		return "", err
	}

	tabURL := h.unitTabURL(kind)
	current, err := h.sess.CurrentURL(ctx)
	if err != nil {
		return "", err
	}
	if current != tabURL {
		if err := h.navigate(ctx, tabURL); err != nil {
			return "", err
		}
	}

	// Wait for the group panel to exist.
	var expanded bool
	err = browser.PollUntil(ctx, h.cfg.Timeouts.PollInterval, func() (bool, error) {
		html, err := h.snap.Snapshot(ctx)
		if err != nil {
			return false, err
		}
		doc, err := parseSnapshot(html)
		if err != nil {
			return false, err
		}
		unit := unitPanel(doc, unitUUID)
		if unit == nil {
			return false, nil
		}
		group := groupSection(unit, groupName)
		if group == nil {
			return false, nil
		}
		expanded = groupExpanded(group)
		return true, nil
	})
	if err != nil {
		return "", fmt.Errorf("group %q for unit %s: %w", groupName, unitUUID, err)
	}

	if !expanded {
		err = browser.WithStaleRetry(func() error {
			return h.sess.ClickXPath(ctx, groupXPath(unitUUID, groupName))
		})
		if err != nil {
			return "", fmt.Errorf("failed to expand group %q: %w", groupName, err)
		}
	}

	// Wait for the job row itself.
	err = browser.PollUntil(ctx, h.cfg.Timeouts.PollInterval, func() (bool, error) {
		html, err := h.snap.Snapshot(ctx)
		if err != nil {
			return false, err
		}
		doc, err := parseSnapshot(html)
		if err != nil {
			return false, err
		}
		_, _, found := findJob(doc, unitUUID, groupName, stageName)
		return found, nil
	})
	if err != nil {
		return "", fmt.Errorf("job %q in group %q: %w", stageName, groupName, err)
	}
	return groupName, nil
}

// JobStatus reads the job row's current status in one snapshot.
// found is false when the row has not rendered.
func (h *Harness) JobStatus(ctx context.Context, stageName, unitUUID string, kind UnitKind) (status string, found bool, err error) {
	groupName, err := h.groups.Lookup(stageName)
	if err != nil {
		return "", false, err
	}
	html, err := h.snap.Snapshot(ctx)
	if err != nil {
		return "", false, err
	}
	doc, err := parseSnapshot(html)
	if err != nil {
		return "", false, err
	}
	status, _, found = findJob(doc, unitUUID, groupName, stageName)
	return status, found, nil
}

// AwaitJobTerminal blocks until the job for stageName reaches a
// terminal status, returning the status and the job's opaque
// identifier. The identifier is read only once terminal, since the UI
// populates it reliably only then. There is no internal cap: the
// pipeline stage finishes or the caller's context expires.
func (h *Harness) AwaitJobTerminal(ctx context.Context, stageName, unitUUID string, kind UnitKind) (status, jobUUID string, err error) {
	groupName, err := h.ExposeJob(ctx, stageName, unitUUID, kind)
	if err != nil {
		return "", "", err
	}
	status, jobUUID, err = h.awaitTerminal(ctx, unitUUID, groupName, stageName)
	if err != nil {
		return "", "", err
	}
	h.logger.Debug().
		Str("stage", stageName).
		Str("unit", unitUUID).
		Str("status", status).
		Str("job", jobUUID).
		Msg("Job reached terminal status")
	return status, jobUUID, nil
}

// awaitTerminal is the pure polling half of AwaitJobTerminal: snapshot,
// match, back off, repeat. Idempotent once the job is terminal.
func (h *Harness) awaitTerminal(ctx context.Context, unitUUID, groupName, stageName string) (status, jobUUID string, err error) {
	err = browser.PollUntil(ctx, h.cfg.Timeouts.PollInterval, func() (bool, error) {
		html, err := h.snap.Snapshot(ctx)
		if err != nil {
			return false, err
		}
		doc, err := parseSnapshot(html)
		if err != nil {
			return false, err
		}
		s, j, found := findJob(doc, unitUUID, groupName, stageName)
		if !found || !IsTerminalStatus(s) {
			return false, nil
		}
		status, jobUUID = s, j
		return true, nil
	})
	return status, jobUUID, err
}

// ParseJob waits for the job to finish and scrapes its full task
// table, following pagination, from the task detail view.
func (h *Harness) ParseJob(ctx context.Context, stageName, unitUUID string, kind UnitKind) (*JobResult, error) {
	status, jobUUID, err := h.AwaitJobTerminal(ctx, stageName, unitUUID, kind)
	if err != nil {
		return nil, err
	}
	time.Sleep(taskTableSettle)

	tasks := make(scrape.TaskTable)
	pageURL := h.urls.Tasks(jobUUID)
	for pageURL != "" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		html, err := h.readTasksPage(ctx, pageURL)
		if err != nil {
			return nil, err
		}
		if err := scrape.ParseTaskTable(html, tasks); err != nil {
			return nil, fmt.Errorf("tasks page %s: %w", pageURL, err)
		}
		next, err := scrape.NextPageURL(html)
		if err != nil {
			return nil, err
		}
		if next == "" {
			break
		}
		pageURL, err = h.urls.Resolve(next)
		if err != nil {
			return nil, err
		}
	}
	return &JobResult{Status: status, Tasks: tasks}, nil
}

// readTasksPage reads the task detail view in a secondary window,
// re-authenticating once if the session lapsed and the login form came
// back instead of the table.
func (h *Harness) readTasksPage(ctx context.Context, pageURL string) (string, error) {
	html, err := h.sess.ReadWindow(ctx, pageURL)
	if err != nil {
		return "", err
	}
	if strings.Contains(html, "id_username") {
		if err := h.Login(ctx); err != nil {
			return "", err
		}
		return h.sess.ReadWindow(ctx, pageURL)
	}
	return html, nil
}

// ParseNormalizationReport waits for the normalization-approval stage
// and scrapes the unit's normalization report. Column keys come from
// the table itself, not a hardcoded list.
func (h *Harness) ParseNormalizationReport(ctx context.Context, sipUUID string) ([]scrape.ReportRow, error) {
	if _, err := h.ExposeJob(ctx, "Approve normalization", sipUUID, UnitIngest); err != nil {
		return nil, err
	}
	if err := h.navigate(ctx, h.urls.NormalizationReport(sipUUID)); err != nil {
		return nil, err
	}
	h.sess.WaitFor(ctx, "table", browser.Present, 0)
	html, err := h.snap.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return scrape.ParseNormalizationReport(html)
}

// METS returns the unit's METS metadata document as XML text. The file
// name is deterministic from the transfer name and SIP UUID; the
// package content browser opens it in a new window, which is read and
// closed before returning. Works only when the processing
// configuration reviews the AIP instead of storing it immediately.
func (h *Harness) METS(ctx context.Context, transferName, sipUUID string) (string, error) {
	if sipUUID == "" {
		resolved, err := h.SIPUUID(ctx, transferName)
		if err != nil {
			return "", err
		}
		sipUUID = resolved
	}
	if err := h.navigate(ctx, h.urls.Ingest()); err != nil {
		return "", err
	}
	if _, err := h.ExposeJob(ctx, "Store AIP  (review)", sipUUID, UnitIngest); err != nil {
		return "", err
	}
	if err := h.navigate(ctx, h.urls.AIPPreview(sipUUID)); err != nil {
		return "", err
	}

	explorer := &nav.ExplorerNavigator{
		Driver: nav.SessionDriver{Session: h.sess},
		Logger: h.logger,
		Root:   explorerRoot,
	}
	metsPath := fmt.Sprintf("storeAIP/%s-%s/METS.%s.xml", transferName, sipUUID, sipUUID)
	html, err := h.sess.CaptureWindow(ctx, func() error {
		return explorer.Open(ctx, metsPath)
	})
	if err != nil {
		return "", fmt.Errorf("failed to read METS for %s: %w", sipUUID, err)
	}
	return html, nil
}

// ChangeNormalizationRuleCommand edits the normalization rule uniquely
// matching searchTerm so that its command is commandName. Behavior is
// undefined when the search matches more than one rule: the first
// match's edit link is followed.
func (h *Harness) ChangeNormalizationRuleCommand(ctx context.Context, searchTerm, commandName string) error {
	if err := h.navigate(ctx, h.urls.NormalizationRules()); err != nil {
		return err
	}
	if err := h.sess.SendKeys(ctx, "#DataTables_Table_0_filter input", searchTerm); err != nil {
		return fmt.Errorf("failed to filter rules: %w", err)
	}
	// Let the table's client-side filter settle on the typed term.
	time.Sleep(500 * time.Millisecond)
	if err := h.sess.ClickXPath(ctx, "//a[normalize-space(text())='Replace']"); err != nil {
		return fmt.Errorf("failed to open rule edit form: %w", err)
	}
	h.sess.WaitFor(ctx, "#id_f-purpose", browser.Present, 0)
	if err := h.sess.Click(ctx, "#id_f-command"); err != nil {
		return fmt.Errorf("failed to focus command field: %w", err)
	}
	if err := h.sess.SendKeys(ctx, "#id_f-command", commandName+kb.Enter); err != nil {
		return fmt.Errorf("failed to set command: %w", err)
	}
	if err := h.sess.Click(ctx, "input[type=submit]"); err != nil {
		return fmt.Errorf("failed to save rule: %w", err)
	}
	h.sess.WaitFor(ctx, "#DataTables_Table_0", browser.Present, 0)
	h.logger.Info().Str("search", searchTerm).Str("command", commandName).Msg("Normalization rule command changed")
	return nil
}

// UploadPolicy uploads the policy document at policyPath through the
// policy-admin form.
func (h *Harness) UploadPolicy(ctx context.Context, policyPath string) error {
	if err := h.navigate(ctx, h.urls.Policies()); err != nil {
		return err
	}
	if err := h.sess.SetFileInput(ctx, "input[name=policy]", policyPath); err != nil {
		return fmt.Errorf("failed to attach policy file: %w", err)
	}
	if err := h.sess.Click(ctx, "input[type=submit]"); err != nil {
		return fmt.Errorf("failed to submit policy upload: %w", err)
	}
	return nil
}

// CreateFirstUser completes the first-run setup form with the
// configured credentials, for fresh installs.
func (h *Harness) CreateFirstUser(ctx context.Context) error {
	if err := h.sess.Navigate(ctx, h.urls.InstallerWelcome()); err != nil {
		return err
	}
	h.sess.WaitFor(ctx, "#id_org_name", browser.Present, 0)
	fields := []struct{ sel, value string }{
		{"#id_org_name", "Test Org Inc."},
		{"#id_org_identifier", "test-org-inc"},
		{"#id_username", h.cfg.Dashboard.Username},
		{"#id_first_name", "Test"},
		{"#id_last_name", "McTest"},
		{"#id_email", "test@example.com"},
		{"#id_password1", h.cfg.Dashboard.Password},
		{"#id_password2", h.cfg.Dashboard.Password},
	}
	for _, f := range fields {
		if err := h.sess.SendKeys(ctx, f.sel, f.value); err != nil {
			return fmt.Errorf("failed to fill %s: %w", f.sel, err)
		}
	}
	return h.sess.Click(ctx, "button")
}

// ParseMediaconchStdout returns the JSON parse of the first
// JSON-parseable line in a task's stdout, or an empty map.
func ParseMediaconchStdout(stdout string) map[string]interface{} {
	for _, line := range strings.Split(stdout, "\n") {
		var parsed map[string]interface{}
		if err := json.Unmarshal([]byte(line), &parsed); err == nil {
			return parsed
		}
	}
	return map[string]interface{}{}
}

// UniqueName suffixes base with a unix timestamp so repeated test runs
// never collide on unit names.
func UniqueName(base string) string {
	return fmt.Sprintf("%s_%d", base, time.Now().Unix())
}

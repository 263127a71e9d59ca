// Package scrape turns the dashboard's semi-structured HTML tables
// into typed records: the per-job task execution log and the
// normalization report.
package scrape

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// TaskRecord is one parsed row-group from a job's task table: a block
// of adjacent rows describing the execution of one file-level task.
type TaskRecord struct {
	TaskUUID string
	FileUUID string
	FileName string
	Client   string
	ExitCode string
	Command  string
	// Arguments is the ordered argument list recovered from the
	// command row.
	Arguments []string
	Stdout    string
	Stderr    string
	// Fields holds every key/value pair from the header row, keys
	// lower-cased with spaces replaced by underscores. The lifted
	// struct fields above are a convenience view over it.
	Fields map[string]string
}

// TaskTable maps file UUID to the task record for that file. Insertion
// order mirrors table order but carries no meaning.
type TaskTable map[string]TaskRecord

type rowKind int

const (
	rowHeader rowKind = iota
	rowCommand
	rowStdout
	rowStderr
)

// classifyRow induces the row kind structurally: a styling class on
// the <tr> marks a header, a distinguishing cell class marks
// stdout/stderr, anything else is the command row.
func classifyRow(row *goquery.Selection) rowKind {
	if class, _ := row.Attr("class"); strings.TrimSpace(class) != "" {
		return rowHeader
	}
	if row.Find("td.stdout").Length() > 0 {
		return rowStdout
	}
	if row.Find("td.stderror").Length() > 0 {
		return rowStderr
	}
	return rowCommand
}

// parseHeaderCell parses the "key: value" pairs of a header row, each
// optionally parenthesized, into a fresh field map. Pairs arrive one
// per line, except adjacent parenthesized pairs which may share a
// line.
func parseHeaderCell(text string) map[string]string {
	fields := make(map[string]string)
	text = strings.ReplaceAll(text, ") (", ")\n(")
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "(")
		line = strings.TrimSuffix(line, ")")
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(parts[0])), " ", "_")
		fields[key] = strings.TrimSpace(parts[1])
	}
	return fields
}

// parseCommandCell splits a command row's "Command: name args" text
// into the command name and its argument list. The argument string's
// outer quotes are stripped and it is split on the literal `" "`
// sequence.
//
// Known limitation: this tokenizer assumes no argument contains a
// literal `" "` except as a separator. The dashboard renders arguments
// that way today; an argument embedding the separator would split
// incorrectly.
func parseCommandCell(text string) (command string, arguments []string) {
	parts := strings.SplitN(strings.TrimSpace(text), ":", 2)
	if len(parts) != 2 {
		return "", nil
	}
	tokens := strings.Fields(parts[1])
	if len(tokens) == 0 {
		return "", nil
	}
	command = tokens[0]
	raw := strings.Join(tokens[1:], " ")
	if raw == "" {
		return command, nil
	}
	raw = strings.TrimPrefix(raw, `"`)
	raw = strings.TrimSuffix(raw, `"`)
	return command, strings.Split(raw, `" "`)
}

// liftKnownFields copies the well-known header keys onto the record's
// typed fields.
func (r *TaskRecord) liftKnownFields() {
	r.TaskUUID = r.Fields["task_uuid"]
	r.FileUUID = r.Fields["file_uuid"]
	r.FileName = r.Fields["file_name"]
	r.Client = r.Fields["client"]
	r.ExitCode = r.Fields["exit_code"]
}

// ParseTaskTable parses one page of a job's task table into records
// keyed by file UUID, merging into out. A record is flushed when the
// next header row arrives; the final record, which has no following
// header, is flushed at end of table.
func ParseTaskTable(html string, out TaskTable) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("failed to parse tasks page: %w", err)
	}
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return fmt.Errorf("tasks page contains no table")
	}

	var current *TaskRecord
	flush := func() {
		if current == nil {
			return
		}
		current.liftKnownFields()
		out[current.FileUUID] = *current
		current = nil
	}

	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		switch classifyRow(row) {
		case rowHeader:
			flush()
			current = &TaskRecord{Fields: parseHeaderCell(row.Find("td").First().Text())}
		case rowCommand:
			if current == nil {
				return
			}
			current.Command, current.Arguments = parseCommandCell(row.Find("td").First().Text())
		case rowStdout:
			if current == nil {
				return
			}
			current.Stdout = strings.TrimSpace(row.Find("pre").First().Text())
		case rowStderr:
			if current == nil {
				return
			}
			current.Stderr = strings.TrimSpace(row.Find("pre").First().Text())
		}
	})
	flush()
	return nil
}

// NextPageURL returns the href of the "Next Page" control, or "" when
// the current page is the last one.
func NextPageURL(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse tasks page: %w", err)
	}
	next := ""
	doc.Find("a.btn").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		if strings.TrimSpace(link.Text()) == "Next Page" {
			next, _ = link.Attr("href")
			return false
		}
		return true
	})
	return next, nil
}

// TaskByFileName returns the first task whose file name matches, or
// nil when absent.
func TaskByFileName(name string, tasks TaskTable) *TaskRecord {
	for _, task := range tasks {
		if task.FileName == name {
			t := task
			return &t
		}
	}
	return nil
}

// Package inbox serves approval inboxes: a list of records pending the
// operator's role, a detail pane for the selected record and the
// verify/approve/reject form driven by an approval workflow.
package inbox

import (
	"context"
	"strings"

	"github.com/odyssey-erp/odyssey-admin/internal/apiclient"
	"github.com/odyssey-erp/odyssey-admin/internal/approval"
	"github.com/odyssey-erp/odyssey-admin/internal/diagnostics"
)

// Column is a list or detail column resolved through fallback keys.
type Column struct {
	Label string
	Keys  []string
}

// Section groups detail fields under a heading.
type Section struct {
	Title  string
	Fields []Column
}

// ListSection renders a nested array of the detail record as a table.
type ListSection struct {
	Title   string
	Key     string
	Columns []Column
}

// Definition configures one inbox.
type Definition struct {
	Module       string
	Title        string
	Path         string
	MOID         int
	RefKeys      []string
	Columns      []Column
	Sections     []Section
	ListSections []ListSection
	Schema       diagnostics.Schema

	Pending  func(ctx context.Context, roleID string) ([]apiclient.Record, error)
	Detail   func(ctx context.Context, ref string) (apiclient.Record, error)
	Workflow *approval.Workflow
}

// RowRef returns the reference of a listed record.
func (d *Definition) RowRef(row apiclient.Record) string {
	return strings.TrimSpace(row.String(d.RefKeys...))
}

func (c Column) value(row apiclient.Record) string {
	for _, key := range c.Keys {
		if v, ok := row.Get(key); ok && v != nil {
			if s := apiclient.FormatValue(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// AllowedActions reads the actions a status lookup grants. Unknown names
// are skipped.
func AllowedActions(rows []apiclient.Record) []approval.Action {
	seen := make(map[approval.Action]bool)
	var out []approval.Action
	for _, row := range rows {
		a, err := approval.ParseAction(row.String("Action", "ActionName", "Status"))
		if err != nil || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out
}

// RemarksHistory folds the remarks lookup into a single "||" history.
func RemarksHistory(rows []apiclient.Record) string {
	var history string
	for _, row := range rows {
		for _, entry := range approval.SplitRemarks(row.String("Remarks", "Remark", "Note")) {
			history = approval.AppendRemark(history, entry)
		}
	}
	return history
}

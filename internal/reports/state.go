// Package reports implements the filter, fetch, summarise and export cycle
// shared by the read-only report pages.
package reports

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-admin/internal/apiclient"
)

// All is the "no constraint" value of optional dropdowns.
const All = "All"

// FilterKind selects the form control of a filter.
type FilterKind string

const (
	FilterDate   FilterKind = "date"
	FilterSelect FilterKind = "select"
	FilterText   FilterKind = "text"
)

// Option is one static dropdown entry.
type Option struct {
	Value string
	Label string
}

// DateRule accepts the value of an HTML date input.
const DateRule = "datetime=2006-01-02"

// Filter describes one input of a report's filter bar.
type Filter struct {
	Name  string
	Label string
	Kind  FilterKind
	// Rules are go-playground/validator tags applied to the trimmed value,
	// e.g. "required,datetime=2006-01-02".
	Rules   string
	Default string
	Options []Option
	// Lookup names a lookup list appended to Options at render time.
	Lookup string
}

// Required reports whether the filter must carry a value.
func (f Filter) Required() bool {
	for _, tag := range strings.Split(f.Rules, ",") {
		if strings.TrimSpace(tag) == "required" {
			return true
		}
	}
	return false
}

// Filters holds the current filter values by name.
type Filters map[string]string

// Get returns the trimmed value of name.
func (f Filters) Get(name string) string {
	return strings.TrimSpace(f[name])
}

func (f Filters) clone() Filters {
	out := make(Filters, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Policy adjusts filters after every change.
type Policy func(Filters) Filters

// State is the immutable page state a reducer step produces.
type State struct {
	Filters  Filters
	Rows     []apiclient.Record
	Loaded   bool
	Error    string
	Selected string
	Detail   []apiclient.Record
}

// ActionKind enumerates reducer actions.
type ActionKind int

const (
	ActionSetFilter ActionKind = iota
	ActionReset
	ActionFetched
	ActionFetchFailed
	ActionSelect
	ActionDetailFetched
	ActionCloseDetail
)

// Action is one reducer input.
type Action struct {
	Kind  ActionKind
	Field string
	Value string
	Rows  []apiclient.Record
	Err   error
}

// Initial returns the state of a page nobody has touched.
func (d *Definition) Initial() State {
	f := make(Filters, len(d.Filters))
	for _, flt := range d.Filters {
		f[flt.Name] = flt.Default
	}
	return State{Filters: d.apply(f)}
}

// Reduce applies a to st and returns the next state. st is not modified.
func (d *Definition) Reduce(st State, a Action) State {
	switch a.Kind {
	case ActionSetFilter:
		if !d.hasFilter(a.Field) {
			return st
		}
		next := st
		next.Filters = st.Filters.clone()
		next.Filters[a.Field] = strings.TrimSpace(a.Value)
		next.Filters = d.apply(next.Filters)
		return next
	case ActionReset:
		return d.Initial()
	case ActionFetched:
		next := st
		next.Rows = a.Rows
		next.Loaded = true
		next.Error = ""
		return next
	case ActionFetchFailed:
		next := st
		next.Rows = nil
		next.Loaded = false
		next.Error = "Failed to load report."
		if a.Err != nil {
			next.Error = a.Err.Error()
		}
		return next
	case ActionSelect:
		next := st
		next.Selected = a.Value
		next.Detail = nil
		return next
	case ActionDetailFetched:
		next := st
		next.Detail = a.Rows
		return next
	case ActionCloseDetail:
		next := st
		next.Selected = ""
		next.Detail = nil
		return next
	}
	return st
}

func (d *Definition) apply(f Filters) Filters {
	if d.Policy == nil {
		return f
	}
	return d.Policy(f.clone())
}

func (d *Definition) hasFilter(name string) bool {
	for _, f := range d.Filters {
		if f.Name == name {
			return true
		}
	}
	return false
}

// MissingFiltersError lists required filters left blank.
type MissingFiltersError struct {
	Labels []string
}

func (e *MissingFiltersError) Error() string {
	return fmt.Sprintf("Please select %s.", strings.Join(e.Labels, ", "))
}

func (e *MissingFiltersError) Unwrap() error { return apiclient.ErrValidation }

// FilterError is a filter combination the backend would reject.
type FilterError struct {
	Message string
}

func (e *FilterError) Error() string { return e.Message }

func (e *FilterError) Unwrap() error { return apiclient.ErrValidation }

var validate = validator.New()

// Validate runs every filter's rules, then the definition's Check. Missing
// required filters are reported together before malformed values.
func (d *Definition) Validate(f Filters) error {
	var (
		missing []string
		invalid []string
	)
	for _, flt := range d.Filters {
		if flt.Rules == "" {
			continue
		}
		err := validate.Var(f.Get(flt.Name), flt.Rules)
		if err == nil {
			continue
		}
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("reports: filter %s rules %q: %w", flt.Name, flt.Rules, err)
		}
		if verrs[0].Tag() == "required" {
			missing = append(missing, flt.Label)
		} else {
			invalid = append(invalid, flt.Label)
		}
	}
	if len(missing) > 0 {
		return &MissingFiltersError{Labels: missing}
	}
	if len(invalid) > 0 {
		return &FilterError{Message: fmt.Sprintf("Please enter a valid %s.", strings.Join(invalid, ", "))}
	}
	if d.Check != nil {
		return d.Check(f)
	}
	return nil
}

// DateRange checks that the from date is not after the to date.
func DateRange(fromField, toField string) func(Filters) error {
	return func(f Filters) error {
		from, okFrom := apiclient.ParseDate(f.Get(fromField))
		to, okTo := apiclient.ParseDate(f.Get(toField))
		if !okFrom || !okTo {
			return &FilterError{Message: "Please enter valid dates."}
		}
		if from.After(to) {
			return &FilterError{Message: "From Date must not be after To Date."}
		}
		return nil
	}
}

// LockWhen forces the locked filters to value whenever field equals trigger.
func LockWhen(field, trigger, value string, locked ...string) Policy {
	return func(f Filters) Filters {
		if f.Get(field) != trigger {
			return f
		}
		for _, name := range locked {
			f[name] = value
		}
		return f
	}
}

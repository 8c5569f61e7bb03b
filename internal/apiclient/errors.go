package apiclient

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNotConfigured is returned when the client has no base URL.
var ErrNotConfigured = errors.New("apiclient: base url not configured")

// Error wraps a failed backend call. Body holds the response payload when the
// backend returned one; otherwise Err carries the transport failure.
type Error struct {
	Method string
	Path   string
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	if e.Body != "" {
		return e.Body
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s %s failed with status %d", e.Method, e.Path, e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

// Kind enumerates backend error classes.
type Kind string

const (
	KindValidation          Kind = "validation"
	KindConstraintViolation Kind = "constraint_violation"
	KindDuplicateKey        Kind = "duplicate_key"
	KindUnknown             Kind = "unknown"
)

// Classification is the typed form of a backend error message.
type Classification struct {
	Kind   Kind
	Column string
	Field  string
	Raw    string
}

var (
	nullColumnPattern = regexp.MustCompile(`(?i)value NULL into column '([^']+)'`)
	nullWordPattern   = regexp.MustCompile(`\bNULL\b`)
	duplicatePattern  = regexp.MustCompile(`(?i)already exists?`)
	labelWordPattern  = regexp.MustCompile(`^[A-Za-z][A-Za-z.]*$`)
)

// duplicateLabels are field names the backend uses in "already exists"
// messages. The longest label found in the message wins.
var duplicateLabels = []string{
	"Mail Id", "Email Id", "Email", "Mobile No", "Mobile Number", "Phone No", "PAN", "PAN Number",
	"Aadhaar", "Aadhaar No", "UAN", "PF No", "Bank Account", "Account No", "IFSC", "Login Id",
	"User Name", "Emp Ref No", "Employee Code", "Invoice No", "Request No", "Ref No",
	"Reference No", "PO No", "Vendor Code", "GST No", "GSTIN",
}

// connectorWords mark a sentence rather than a field label.
var connectorWords = map[string]bool{"with": true, "for": true, "of": true, "the": true, "and": true, "in": true, "on": true, "by": true}

// Classify parses an error returned by the backend. Validation errors raised
// locally are wrapped with ErrValidation by callers and classified first.
func Classify(err error) Classification {
	if err == nil {
		return Classification{}
	}
	if errors.Is(err, ErrValidation) {
		return Classification{Kind: KindValidation, Raw: err.Error()}
	}
	return ClassifyMessage(err.Error())
}

// ErrValidation marks locally detected validation failures.
var ErrValidation = errors.New("validation failed")

// ClassifyMessage classifies a raw backend message.
func ClassifyMessage(raw string) Classification {
	msg := strings.TrimSpace(raw)
	if m := nullColumnPattern.FindStringSubmatch(msg); m != nil {
		return Classification{Kind: KindConstraintViolation, Column: m[1], Raw: msg}
	}
	if nullWordPattern.MatchString(msg) {
		return Classification{Kind: KindConstraintViolation, Raw: msg}
	}
	if strings.Contains(strings.ToLower(msg), "already exist") {
		return Classification{Kind: KindDuplicateKey, Field: duplicateField(msg), Raw: msg}
	}
	return Classification{Kind: KindUnknown, Raw: msg}
}

// duplicateField names the field of a duplicate-key message, or returns ""
// when the text before "already exists" is not a plain field label.
func duplicateField(msg string) string {
	loc := duplicatePattern.FindStringIndex(msg)
	if loc == nil {
		return ""
	}
	prefix := msg[:loc[0]]
	if idx := strings.LastIndexByte(prefix, ':'); idx >= 0 {
		prefix = prefix[idx+1:]
	}
	words := strings.Fields(prefix)
	for len(words) > 0 {
		last := strings.ToLower(words[len(words)-1])
		if last != "is" && last != "are" && last != "was" {
			break
		}
		words = words[:len(words)-1]
	}
	if len(words) == 0 {
		return ""
	}

	best := ""
	padded := " " + strings.ToLower(strings.Join(words, " ")) + " "
	for _, label := range duplicateLabels {
		if len(label) > len(best) && strings.Contains(padded, " "+strings.ToLower(label)+" ") {
			best = label
		}
	}
	if best != "" {
		return best
	}

	if len(words) > 3 {
		return ""
	}
	for _, w := range words {
		if !labelWordPattern.MatchString(w) || connectorWords[strings.ToLower(w)] {
			return ""
		}
	}
	return strings.Join(words, " ")
}

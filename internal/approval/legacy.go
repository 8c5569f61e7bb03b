package approval

import (
	"fmt"
	"strings"

	"github.com/odyssey-erp/odyssey-admin/internal/apiclient"
)

// RemarkSeparator joins entries of a remarks history.
const RemarkSeparator = "||"

// RemarkEntry formats one history entry as "<Role> : <User> : <Comment>".
func RemarkEntry(role, user, comment string) string {
	return fmt.Sprintf("%s : %s : %s", strings.TrimSpace(role), strings.TrimSpace(user), strings.TrimSpace(comment))
}

// AppendRemark appends entry to an existing history. An empty history yields
// the entry alone.
func AppendRemark(existing, entry string) string {
	existing = strings.TrimSpace(existing)
	if existing == "" {
		return entry
	}
	return existing + RemarkSeparator + entry
}

// SplitRemarks breaks a history back into its entries.
func SplitRemarks(history string) []string {
	if strings.TrimSpace(history) == "" {
		return nil
	}
	parts := strings.Split(history, RemarkSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FormatArrayForSP joins the non-empty items with commas and a trailing comma,
// the list encoding the backend's stored procedures parse.
func FormatArrayForSP(items []string) string {
	var b strings.Builder
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			continue
		}
		b.WriteString(item)
		b.WriteByte(',')
	}
	return b.String()
}

// column collects one field from each sub-record.
func column(rows []apiclient.Record, keys ...string) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.String(keys...))
	}
	return out
}

// coalesce returns the first non-blank value among keys. def applies only
// when every key is absent or null; a blank value stays blank.
func coalesce(rec *apiclient.Record, def string, keys ...string) string {
	if rec == nil {
		return def
	}
	blank := false
	for _, key := range keys {
		v, ok := rec.Get(key)
		if !ok || v == nil {
			continue
		}
		if s := apiclient.FormatValue(v); strings.TrimSpace(s) != "" {
			return s
		}
		blank = true
	}
	if blank {
		return ""
	}
	return def
}

// firstNonBlank is for identifiers and history, where a blank value falls
// back to def.
func firstNonBlank(rec *apiclient.Record, def string, keys ...string) string {
	if rec == nil {
		return def
	}
	if v := rec.String(keys...); v != "" {
		return v
	}
	return def
}

// coalesceInt and coalesceFloat follow coalesce: a blank value reads as zero.
func coalesceInt(rec *apiclient.Record, def int64, keys ...string) int64 {
	if rec == nil {
		return def
	}
	blank := false
	for _, key := range keys {
		v, ok := rec.Get(key)
		if !ok || v == nil {
			continue
		}
		if strings.TrimSpace(apiclient.FormatValue(v)) != "" {
			return rec.Int(key)
		}
		blank = true
	}
	if blank {
		return 0
	}
	return def
}

func coalesceFloat(rec *apiclient.Record, def float64, keys ...string) float64 {
	if rec == nil {
		return def
	}
	blank := false
	for _, key := range keys {
		v, ok := rec.Get(key)
		if !ok || v == nil {
			continue
		}
		if strings.TrimSpace(apiclient.FormatValue(v)) != "" {
			return rec.Float(key)
		}
		blank = true
	}
	if blank {
		return 0
	}
	return def
}

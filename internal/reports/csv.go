package reports

import (
	"strings"

	"github.com/odyssey-erp/odyssey-admin/internal/apiclient"
)

// ConvertToCSV renders rows in the export format the finance team's
// spreadsheets expect: the header is the first row's keys, values containing
// a comma are wrapped in double quotes, nothing else is escaped.
func ConvertToCSV(rows []apiclient.Record) string {
	if len(rows) == 0 {
		return ""
	}
	header := rows[0].Keys()
	var b strings.Builder
	writeLine(&b, header)
	cells := make([]string, len(header))
	for _, row := range rows {
		for i, key := range header {
			v, _ := row.Get(key)
			cells[i] = apiclient.FormatValue(v)
		}
		writeLine(&b, cells)
	}
	return b.String()
}

func writeLine(b *strings.Builder, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		if strings.Contains(cell, ",") {
			b.WriteByte('"')
			b.WriteString(cell)
			b.WriteByte('"')
			continue
		}
		b.WriteString(cell)
	}
	b.WriteByte('\n')
}

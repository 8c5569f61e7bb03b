package app

import (
	"log/slog"
	"mime"
)

// Minimal containers ship without /etc/mime.types; the static server and the
// report exports rely on these.
var requiredMimeTypes = map[string]string{
	".css":  "text/css; charset=utf-8",
	".js":   "text/javascript; charset=utf-8",
	".csv":  "text/csv; charset=utf-8",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

func init() {
	for ext, typ := range requiredMimeTypes {
		ensureMimeType(ext, typ)
	}
}

func ensureMimeType(ext, typ string) {
	if mime.TypeByExtension(ext) != "" {
		return
	}
	if err := mime.AddExtensionType(ext, typ); err != nil {
		slog.Default().Warn("register mime type", slog.String("ext", ext), slog.Any("error", err))
	}
}

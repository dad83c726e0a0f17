package app

import (
	"log/slog"
	"mime"
	"sync"
)

// staticTypes must resolve even on hosts without a system mime.types file.
var staticTypes = map[string]string{
	".css": "text/css; charset=utf-8",
	".svg": "image/svg+xml",
}

var registerOnce sync.Once

func registerStaticTypes(logger *slog.Logger) {
	registerOnce.Do(func() {
		for ext, typ := range staticTypes {
			if mime.TypeByExtension(ext) != "" {
				continue
			}
			if err := mime.AddExtensionType(ext, typ); err != nil {
				logger.Warn("register mime type", slog.String("ext", ext), slog.Any("error", err))
			}
		}
	})
}

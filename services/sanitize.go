package services

import (
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

// Dialect selects the filesystem naming rules to sanitize against.
type Dialect string

const (
	DialectWindows Dialect = "windows"
	DialectPOSIX   Dialect = "posix"
)

// CurrentDialect returns the dialect matching the running OS.
func CurrentDialect() Dialect {
	if runtime.GOOS == "windows" {
		return DialectWindows
	}
	return DialectPOSIX
}

// maxFilenameLength is the byte cap applied to sanitized names. The stem is
// truncated, never the extension.
const maxFilenameLength = 255

var windowsInvalidChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// Device names Windows reserves regardless of extension.
var windowsReservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// SanitizeFilename makes a candidate file name safe for the given dialect.
// The result is deterministic: sanitizing the same input twice yields the
// same output.
func SanitizeFilename(name string, dialect Dialect) string {
	var sanitized string

	if dialect == DialectWindows {
		sanitized = windowsInvalidChars.ReplaceAllString(name, "")
		stem := strings.TrimSuffix(sanitized, filepath.Ext(sanitized))
		if windowsReservedNames[strings.ToUpper(stem)] {
			sanitized = "_" + sanitized
		}
	} else {
		sanitized = strings.ReplaceAll(name, "/", "-")
		sanitized = strings.Trim(sanitized, ".")
	}

	sanitized = strings.TrimSpace(sanitized)

	ext := filepath.Ext(sanitized)
	stem := strings.TrimSuffix(sanitized, ext)

	if len(sanitized) > maxFilenameLength {
		stem = stem[:maxFilenameLength-len(ext)]
		sanitized = stem + ext
	}

	if stem == "" {
		sanitized = "audio_file" + ext
	}

	return sanitized
}

package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateTemplateName validates a template name before it is sent to storage.
//
// The rules are conservative:
//   - No empty or whitespace-only names
//   - No control characters
//   - Maximum length of 256 characters
func ValidateTemplateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidName, "template name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidName, "template name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "template name contains invalid control characters")
		}
	}

	return nil
}

// variablePathRegex matches dot-free field references such as "CustomerName"
// or nested references such as "Order.Total".
var variablePathRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// ValidateVariablePath validates a variable path. Paths are stored without
// the leading dot that placeholders add.
func ValidateVariablePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "variable path cannot be empty")
	}

	if strings.HasPrefix(path, ".") {
		return New(ErrCodeInvalidPath, "variable path must not start with a dot: %q", path)
	}

	if !variablePathRegex.MatchString(path) {
		return New(ErrCodeInvalidPath, "invalid variable path: %q", path)
	}

	return nil
}

// hexColorRegex matches #rgb and #rrggbb colors.
var hexColorRegex = regexp.MustCompile(`^#(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// ValidateHexColor validates a text color.
func ValidateHexColor(color string) error {
	if !hexColorRegex.MatchString(color) {
		return New(ErrCodeInvalidInput, "invalid color %q (expected #rgb or #rrggbb)", color)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

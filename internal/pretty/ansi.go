// ANSI escape codes
package pretty

var colorEnabled = true

// SetColorEnabled controls whether ANSI codes are output
func SetColorEnabled(enabled bool) {
	colorEnabled = enabled
}

// GetColorEnabled returns whether ANSI codes are currently enabled
func GetColorEnabled() bool {
	return colorEnabled
}

const resetCode string = "\x1b[0m"
const boldCode string = "\x1b[1m"
const dimCode string = "\x1b[2m"

// Reset returns the reset ANSI code if colors are enabled, empty string otherwise
func Reset() string {
	if colorEnabled {
		return resetCode
	}
	return ""
}

// Bold returns the bold ANSI code if colors are enabled, empty string otherwise
func Bold() string {
	if colorEnabled {
		return boldCode
	}
	return ""
}

// Dim returns the dim ANSI code if colors are enabled, empty string otherwise
func Dim() string {
	if colorEnabled {
		return dimCode
	}
	return ""
}

package cli

import (
	"github.com/fatih/color"
)

// Color schemes for terminal output.
var (
	ColorSection = color.New(color.Bold, color.FgCyan)
	ColorSuccess = color.New(color.FgGreen)
	ColorFailure = color.New(color.FgRed)
	ColorWarning = color.New(color.FgYellow)
)

// SetColor forces color output on or off. fatih/color already disables
// colors when stdout is not a terminal or NO_COLOR is set.
func SetColor(enabled bool) {
	color.NoColor = !enabled
}

// FormatResult returns a colored audit result string.
func FormatResult(result string) string {
	switch result {
	case "success", "passed":
		return ColorSuccess.Sprint(result)
	case "failure", "failed":
		return ColorFailure.Sprint(result)
	default:
		return result
	}
}

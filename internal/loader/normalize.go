// Package loader reads store records from CSV, XLSX, and shapefile inputs.
package loader

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/storemap-cli/internal/model"
)

var folder = cases.Fold()

// NormalizeCategory canonicalizes a category label: trimmed, case-folded,
// inner whitespace collapsed. "  Grocery Store " and "grocery store" count
// as the same category in breakdowns.
func NormalizeCategory(raw string) string {
	folded := folder.String(strings.TrimSpace(raw))
	return strings.Join(strings.Fields(folded), " ")
}

// NormalizeSize maps a raw size label onto the closed SizeClass set.
// Common single-letter and synonym spellings are accepted; anything else
// maps to SizeUnknown.
func NormalizeSize(raw string) model.SizeClass {
	switch folder.String(strings.TrimSpace(raw)) {
	case "small", "s":
		return model.SizeSmall
	case "medium", "m", "mid":
		return model.SizeMedium
	case "large", "l", "big":
		return model.SizeLarge
	}
	return model.SizeUnknown
}

// Title renders a normalized label for display.
func Title(label string) string {
	return cases.Title(language.English).String(label)
}

package table

import (
	"math"
	"strconv"
	"strings"
)

// defaultMissingTokens are the placeholders scraped listings use for an empty
// cell.
var defaultMissingTokens = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "None", "<NA>"}

func isMissingToken(s string, tokens map[string]bool) bool {
	return tokens[strings.TrimSpace(s)]
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// parseNumeric parses s honoring the configured separators. A zero
// DecimalSeparator auto-detects per value: the right-most of ',' and '.'
// is the decimal mark and the other one groups thousands.
func parseNumeric(s string, opt LoadOptions) (float64, bool) {
	raw := strings.ReplaceAll(s, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	auto := dec == 0
	if auto {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0:
			if cpos > dpos {
				dec, thou = ',', '.'
			} else {
				dec, thou = '.', ','
			}
		case cpos >= 0:
			dec = ','
		default:
			dec = '.'
		}
	}
	if thou == 0 && auto {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != 0 && thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// ParseNumber exposes the loader's number parser for coercion steps.
func ParseNumber(s string, opt LoadOptions) (float64, bool) {
	return parseNumeric(s, opt)
}

// uniqueNames renames repeated headers to "name.1", "name.2", ...
func uniqueNames(header []string) []string {
	seen := make(map[string]int, len(header))
	out := make([]string, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = name + "." + strconv.Itoa(n+1)
		} else {
			seen[name] = 0
		}
		out[i] = name
	}
	return out
}

package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var lengthPattern = regexp.MustCompile(`^\s*([0-9]+(?:\.[0-9]+)?)\s*([a-zA-Z]*)\s*$`)

// paperInches holds portrait dimensions in inches.
var paperInches = map[string][2]float64{
	"A3":     {11.69, 16.54},
	"A4":     {8.27, 11.69},
	"A5":     {5.83, 8.27},
	"LETTER": {8.5, 11},
	"LEGAL":  {8.5, 14},
}

// parseLengthInches converts a length such as "10mm" to inches.
// A bare number is in inches.
func parseLengthInches(value string) (float64, error) {
	m := lengthPattern.FindStringSubmatch(value)
	if len(m) != 3 {
		return 0, fmt.Errorf("invalid length %q", value)
	}
	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid length %q: %w", value, err)
	}

	switch unit := strings.ToLower(m[2]); unit {
	case "", "in":
		return amount, nil
	case "cm":
		return amount / 2.54, nil
	case "mm":
		return amount / 25.4, nil
	case "pt":
		return amount / 72.0, nil
	case "px":
		return amount / 96.0, nil
	default:
		return 0, fmt.Errorf("unsupported length unit %q in %q", unit, value)
	}
}

// paperSize returns the portrait dimensions of a named paper format.
func paperSize(name string) ([2]float64, error) {
	d, ok := paperInches[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return d, fmt.Errorf("unsupported paper size %q", name)
	}
	return d, nil
}

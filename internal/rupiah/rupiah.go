// Package rupiah formats prices the way Indonesian users read them.
package rupiah

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Prefix is the currency marker placed before the amount.
const Prefix = "Rp "

// MaxFractionDigits matches the default precision of locale-aware number
// formatting in browsers.
const MaxFractionDigits = 3

var printer = message.NewPrinter(language.Indonesian)

// Format renders a decimal price string with Indonesian digit grouping,
// e.g. "1500000" becomes "Rp 1.500.000" and "1234.5" becomes "Rp 1.234,5".
// An empty price counts as zero; anything unparsable renders as "Rp NaN".
func Format(price string) string {
	s := strings.TrimSpace(price)
	if s == "" {
		return Prefix + "0"
	}
	f, ok := parse(s)
	if !ok {
		return Prefix + "NaN"
	}
	return Prefix + printer.Sprintf("%v", number.Decimal(f, number.MaxFractionDigits(MaxFractionDigits)))
}

// parse reads s the way browsers convert a string to a number: decimal and
// exponent forms, unsigned 0x/0o/0b integers, and the literal "Infinity".
// Go-only spellings such as "Inf", "NaN" and digit underscores are rejected.
func parse(s string) (float64, bool) {
	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X', 'o', 'O', 'b', 'B':
			if strings.Contains(s, "_") {
				return 0, false
			}
			n, err := strconv.ParseUint(s, 0, 64)
			if err != nil {
				return 0, false
			}
			return float64(n), true
		}
	}

	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Overflowing literals such as "1e400" become infinite, like in a browser.
		if errors.Is(err, strconv.ErrRange) {
			return f, true
		}
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Package parse holds the locale-tolerant amount and date parsers used on
// both sides of the reconciliation (PDF text and POP cells).
package parse

import (
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
)

var numberRe = regexp.MustCompile(`[-+]?\d+(?:\.\d+)?`)

// Amount parses a monetary value written in either the Polish
// ("1 000,00", "1.234,56") or the anglophone ("1,234.56") convention.
// The decimal separator is whichever of ',' and '.' occurs last; the other
// one is treated as a thousands separator and stripped.
func Amount(s string) (decimal.Decimal, error) {
	t := strings.ReplaceAll(s, " ", "")
	t = strings.ReplaceAll(t, " ", "")
	t = strings.TrimSpace(t)
	if t == "" {
		return decimal.Decimal{}, eris.New("parse: empty amount")
	}

	comma := strings.LastIndex(t, ",")
	dot := strings.LastIndex(t, ".")
	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			t = strings.ReplaceAll(t, ".", "")
			t = strings.Replace(t, ",", ".", 1)
		} else {
			t = strings.ReplaceAll(t, ",", "")
		}
	case comma >= 0:
		if strings.Count(t, ",") > 1 {
			// multiple commas can only be thousands separators
			t = strings.ReplaceAll(t, ",", "")
		} else {
			t = strings.Replace(t, ",", ".", 1)
		}
	case dot >= 0 && strings.Count(t, ".") > 1:
		t = strings.ReplaceAll(t, ".", "")
	}

	m := numberRe.FindString(t)
	if m == "" {
		return decimal.Decimal{}, eris.Errorf("parse: no numeric value in %q", s)
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Decimal{}, eris.Wrapf(err, "parse: amount %q", s)
	}
	return d, nil
}

var (
	isoDateRe = regexp.MustCompile(`(\d{4})[./-](\d{1,2})[./-](\d{1,2})`)
	euDateRe  = regexp.MustCompile(`(\d{1,2})[./-](\d{1,2})[./-](\d{4})`)
)

// dateLayouts are tried in order for exact parses before the looser regex
// scan kicks in.
var dateLayouts = []string{
	"2006-01-02",
	"2006.01.02",
	"2006/01/02",
	"02.01.2006",
	"02-01-2006",
	"02/01/2006",
	"2 January 2006",
	"Jan 2, 2006",
}

// Date parses a date in any of the common ISO or day-first European
// spellings and returns it in canonical yyyy-mm-dd form.
func Date(s string) (string, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return "", eris.New("parse: empty date")
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, t); err == nil {
			return d.Format("2006-01-02"), nil
		}
	}
	if m := isoDateRe.FindStringSubmatch(t); m != nil {
		return buildDate(m[1], m[2], m[3])
	}
	if m := euDateRe.FindStringSubmatch(t); m != nil {
		// day-first
		return buildDate(m[3], m[2], m[1])
	}
	return "", eris.Errorf("parse: unrecognized date %q", s)
}

// DateIn scans free text for the first date-looking token and canonicalizes
// it. ISO spellings win over day-first ones.
func DateIn(text string) (string, bool) {
	if m := isoDateRe.FindStringSubmatch(text); m != nil {
		if d, err := buildDate(m[1], m[2], m[3]); err == nil {
			return d, true
		}
	}
	if m := euDateRe.FindStringSubmatch(text); m != nil {
		if d, err := buildDate(m[3], m[2], m[1]); err == nil {
			return d, true
		}
	}
	return "", false
}

func buildDate(y, m, d string) (string, error) {
	t, err := time.Parse("2006-1-2", y+"-"+m+"-"+d)
	if err != nil {
		return "", eris.Wrapf(err, "parse: date %s-%s-%s", y, m, d)
	}
	return t.Format("2006-01-02"), nil
}

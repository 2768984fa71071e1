// Package textnorm provides the text normalization and string-similarity
// primitives shared by the indexer and the matcher. All functions are pure;
// identical inputs always yield identical outputs.
package textnorm

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/agext/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	spaceRe      = regexp.MustCompile(`\s+`)
	nonIDRe      = regexp.MustCompile(`[^a-z0-9/]`)
	multiSlashRe = regexp.MustCompile(`/+`)
	legalSuffix  = regexp.MustCompile(`\s+(SP\.?\s*Z\s*O\.?\s*O\.?|S\.?A\.?|LTD\.?|LLC\.?|INC\.?|GMBH)\.?$`)
	nonWordRe    = regexp.MustCompile(`[^\pL\pN\s]`)

	accentStripper = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	// stroked letters carry no combining mark, NFKD leaves them alone
	strokedLetters = strings.NewReplacer("ł", "l", "Ł", "L")
)

// Collapse trims the string and squeezes runs of whitespace (including
// non-breaking spaces) into single spaces.
func Collapse(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// StripAccents removes combining diacritics (ą→a, ż→z after NFKD) and maps
// the stroked ł/Ł, which decomposition alone cannot reach, to l/L.
func StripAccents(s string) string {
	out, _, err := transform.String(accentStripper, s)
	if err != nil {
		out = s
	}
	return strokedLetters.Replace(out)
}

// Fold lower-cases, strips accents and collapses whitespace. This is the
// base normalization applied before any comparison.
func Fold(s string) string {
	return Collapse(StripAccents(strings.ToLower(s)))
}

// NormalizeNumber canonicalizes an invoice number for matching: fold case
// and accents, unify the -, _ and / separators to /, drop everything else,
// and strip leading zeros inside digit segments so FV/007/2024 and
// FV-7-2024 compare equal.
func NormalizeNumber(s string) string {
	return canonicalID(Fold(s))
}

// canonicalID is the shared separator/zero canonicalization applied to both
// invoice numbers and filename stems, so containment checks compare like
// with like.
func canonicalID(t string) string {
	t = strings.NewReplacer("-", "/", "_", "/").Replace(t)
	t = nonIDRe.ReplaceAllString(t, "")
	t = multiSlashRe.ReplaceAllString(t, "/")
	t = strings.Trim(t, "/")
	if t == "" {
		return ""
	}
	segs := strings.Split(t, "/")
	for i, seg := range segs {
		segs[i] = trimLeadingZeros(seg)
	}
	return strings.Join(segs, "/")
}

func trimLeadingZeros(seg string) string {
	if seg == "" || !isDigits(seg) {
		return seg
	}
	trimmed := strings.TrimLeft(seg, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// NormalizeSeller canonicalizes a counterparty name: strip a trailing legal
// form (sp. z o.o., S.A., Ltd, ...), drop punctuation, fold case and accents.
func NormalizeSeller(s string) string {
	t := Collapse(s)
	t = legalSuffix.ReplaceAllString(strings.ToUpper(StripAccents(t)), "")
	t = nonWordRe.ReplaceAllString(t, " ")
	return Collapse(strings.ToLower(t))
}

// FilenameScore scores in [0,100] how strongly a PDF filename points at the
// given invoice number. A filename that embeds the normalized number (with
// any of the /, _ or - separator spellings) scores 100; otherwise the score
// is the edit-distance similarity between the normalized number and the
// normalized filename stem.
func FilenameScore(number, filename string) float64 {
	id := NormalizeNumber(number)
	if id == "" || filename == "" {
		return 0
	}
	stem := Fold(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	flat := canonicalID(stem)
	if strings.Contains(flat, id) {
		return 100
	}
	return levenshtein.Similarity(id, flat, nil) * 100
}

// SellerScore scores in [0,100] how similar two counterparty names are.
// Token order is ignored: both names are tokenized, sorted and rejoined
// before the edit-distance comparison, which keeps "NOWAK Jan" and
// "Jan Nowak" close.
func SellerScore(a, b string) float64 {
	na, nb := NormalizeSeller(a), NormalizeSeller(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 100
	}
	return levenshtein.Similarity(sortTokens(na), sortTokens(nb), nil) * 100
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	// insertion sort keeps this allocation-light for short names
	for i := 1; i < len(tokens); i++ {
		for j := i; j > 0 && tokens[j] < tokens[j-1]; j-- {
			tokens[j], tokens[j-1] = tokens[j-1], tokens[j]
		}
	}
	return strings.Join(tokens, " ")
}

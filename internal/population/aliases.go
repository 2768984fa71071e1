package population

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/auditops/popaudit/internal/textnorm"
)

// Canonical POP fields.
const (
	FieldPositionID   = "position_id"
	FieldNumber       = "number"
	FieldDate         = "date"
	FieldNet          = "net_amount"
	FieldCounterparty = "counterparty"
)

// AliasTable maps canonical fields to the header spellings accepted for
// them. Header resolution happens once at load time against this explicit
// table; nothing is inferred per row.
type AliasTable map[string][]string

// DefaultAliases covers the Polish and English headers seen in client POP
// files.
func DefaultAliases() AliasTable {
	return AliasTable{
		FieldPositionID: {
			"pozycja", "pozycja id", "lp", "id", "position", "position id",
		},
		FieldNumber: {
			"numer", "numer dokumentu", "numer faktury", "nr", "nr dokumentu",
			"faktura", "invoice", "invoice id", "invoice number", "number",
			"document number",
		},
		FieldDate: {
			"data", "data dokumentu", "data wystawienia", "date", "issue date",
			"document date",
		},
		FieldNet: {
			"netto", "kwota netto", "wartosc netto", "wartosc netto dokumentu",
			"razem netto", "net", "net amount", "net value", "total net",
			"amount net",
		},
		FieldCounterparty: {
			"kontrahent", "sprzedawca", "dostawca", "seller", "vendor",
			"supplier", "counterparty", "firma",
		},
	}
}

// LoadAliases reads an alias table override from a YAML file keyed by
// canonical field name. Fields absent from the file keep their defaults.
func LoadAliases(path string) (AliasTable, error) {
	table := DefaultAliases()
	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "population: read aliases %s", path)
	}
	var override AliasTable
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, eris.Wrapf(err, "population: parse aliases %s", path)
	}
	for field, aliases := range override {
		if _, ok := table[field]; !ok {
			return nil, eris.Errorf("population: unknown canonical field %q in %s", field, path)
		}
		table[field] = aliases
	}
	return table, nil
}

// resolve maps a header row to canonical field → column index. Matching is
// exact on the normalized header first, then by substring for composite
// headers like "wartość netto dokumentu (PLN)".
func (t AliasTable) resolve(header []string) map[string]int {
	normed := make([]string, len(header))
	for i, h := range header {
		normed[i] = normHeader(h)
	}

	cols := make(map[string]int, len(t))
	for field, aliases := range t {
		if idx, ok := matchExact(normed, aliases); ok {
			cols[field] = idx
		}
	}
	for field, aliases := range t {
		if _, done := cols[field]; done {
			continue
		}
		if idx, ok := matchContains(normed, aliases); ok {
			cols[field] = idx
		}
	}
	return cols
}

func matchExact(normed []string, aliases []string) (int, bool) {
	for _, a := range aliases {
		for i, h := range normed {
			if h == a {
				return i, true
			}
		}
	}
	return 0, false
}

func matchContains(normed []string, aliases []string) (int, bool) {
	for _, a := range aliases {
		for i, h := range normed {
			if h != "" && contains(h, a) {
				return i, true
			}
		}
	}
	return 0, false
}

func contains(haystack, needle string) bool {
	return len(needle) > 1 && len(haystack) > len(needle) && strings.Contains(haystack, needle)
}

func normHeader(h string) string {
	return textnorm.Fold(strings.ReplaceAll(h, "_", " "))
}

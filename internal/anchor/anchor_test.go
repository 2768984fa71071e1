package anchor

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditops/popaudit/internal/model"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestExtractNet_Labeled(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"razem netto", "pozycje ...\nRazem netto: 1 234,56 PLN\nVAT 283,95", "1234.56"},
		{"suma netto", "SUMA NETTO 999,00", "999"},
		{"wartosc netto", "Wartość ogółem netto 2.500,00", "2500"},
		{"english net amount", "Net amount: 1,234.56 USD", "1234.56"},
		{"bare netto label", "netto 450,00 brutto 553,50", "450"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, src, ok := ExtractNet(tt.text)
			require.True(t, ok)
			assert.Equal(t, model.AmountSourceAnchor, src)
			assert.True(t, got.Equal(dec(tt.want)), "got %s", got)
		})
	}
}

func TestExtractNet_SoleAnchoredAmount(t *testing.T) {
	// no labeled net line, but every anchor keyword points at the same figure
	got, src, ok := ExtractNet("Do zapłaty: 1 234,56 PLN\nrazem 1 234,56")
	require.True(t, ok)
	assert.Equal(t, model.AmountSourceAnchor, src)
	assert.True(t, got.Equal(dec("1234.56")))
}

func TestExtractNet_AmbiguousAnchorsFallThrough(t *testing.T) {
	// distinct anchored figures and no net label: the breakdown is ambiguous,
	// so the amount keeps the untrusted anywhere source
	got, src, ok := ExtractNet("razem 100,00 brutto 123,00")
	require.True(t, ok)
	assert.Equal(t, model.AmountSourceAnywhere, src)
	assert.True(t, got.Equal(dec("100")))
}

func TestExtractNet_AnywhereFallback(t *testing.T) {
	got, src, ok := ExtractNet("pozycja 1 usluga transportowa 1 234,56 za sztuke")
	require.True(t, ok)
	assert.Equal(t, model.AmountSourceAnywhere, src)
	assert.True(t, got.Equal(dec("1234.56")))
}

func TestExtractNet_IgnoresBareIntegers(t *testing.T) {
	// quantities and counts carry no decimal part and must not be taken
	// for a total
	_, _, ok := ExtractNet("ilosc 3 szt, pozycja 12")
	assert.False(t, ok)
}

func TestExtractNet_Empty(t *testing.T) {
	_, _, ok := ExtractNet("")
	assert.False(t, ok)
}

func TestAnchoredAmounts(t *testing.T) {
	amounts := AnchoredAmounts("netto 100,00 vat 23,00 brutto 123,00 nr konta 12")
	require.Len(t, amounts, 3)
	assert.True(t, amounts[0].Equal(dec("100")))
	assert.True(t, amounts[1].Equal(dec("23")))
	assert.True(t, amounts[2].Equal(dec("123")))
}

func TestClassify(t *testing.T) {
	tol := dec("0.01")
	tests := []struct {
		name     string
		pdfNet   string
		src      model.AmountSource
		expected string
		wantOK   bool
		wantCls  model.AmountClass
	}{
		{"anchor exact", "100.00", model.AmountSourceAnchor, "100.00", true, model.AmountStrict},
		{"anchor at tolerance boundary", "100.01", model.AmountSourceAnchor, "100.00", true, model.AmountStrict},
		{"anchor within 1 percent", "100.90", model.AmountSourceAnchor, "100.00", true, model.AmountOKAnchor1p},
		{"anchor beyond 1 percent", "102.00", model.AmountSourceAnchor, "100.00", false, ""},
		{"anywhere within tolerance", "100.00", model.AmountSourceAnywhere, "100.00", true, model.AmountNeedsReview},
		{"anywhere outside tolerance", "100.50", model.AmountSourceAnywhere, "100.00", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, cls := Classify(dec(tt.pdfNet), tt.src, dec(tt.expected), tol)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantCls, cls)
		})
	}
}

func TestClassify_ZeroExpectedNoPercentWindow(t *testing.T) {
	ok, _ := Classify(dec("0.50"), model.AmountSourceAnchor, dec("0"), dec("0.01"))
	assert.False(t, ok)
}

func TestCountsAsOK(t *testing.T) {
	assert.True(t, CountsAsOK(model.AmountStrict))
	assert.True(t, CountsAsOK(model.AmountOKAnchor1p))
	assert.False(t, CountsAsOK(model.AmountNeedsReview))
	assert.False(t, CountsAsOK(""))
}

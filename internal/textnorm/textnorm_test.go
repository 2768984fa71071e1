package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeNumber(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"separators unify", "FV-007_2024", "fv/7/2024"},
		{"leading zeros per segment", "FV/007/2024", "fv/7/2024"},
		{"all-zero segment keeps one", "FV/000/2024", "fv/0/2024"},
		{"mixed alnum segment untouched", "FV/0A7/2024", "fv/0a7/2024"},
		{"noise characters dropped", "FV  nr.: 007 / 2024", "fvnr007/2024"},
		{"accents folded", "FAKTURA Ż/1", "fakturaz/1"},
		{"empty", "", ""},
		{"only separators", "-/_", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeNumber(tt.in))
		})
	}
}

func TestNormalizeNumber_EquivalentSpellings(t *testing.T) {
	assert.Equal(t, NormalizeNumber("FV/007/2024"), NormalizeNumber("fv-7-2024"))
	assert.Equal(t, NormalizeNumber("FV_7_2024"), NormalizeNumber("FV/7/2024"))
	assert.NotEqual(t, NormalizeNumber("FV/7/2024"), NormalizeNumber("FV/8/2024"))
}

func TestFold(t *testing.T) {
	// ł has no NFKD decomposition and needs the explicit stroked mapping
	assert.Equal(t, "zazolc sp. z o.o.", Fold("ZAŻÓŁĆ  Sp. z o.o."))
	assert.Equal(t, "lodz", Fold("ŁÓDŹ"))
	assert.Equal(t, "pawel mlynarski", Fold("Paweł  Młynarski"))
}

func TestNormalizeSeller(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ACME Sp. z o.o.", "acme"},
		{"ACME S.A.", "acme"},
		{"Acme Ltd.", "acme"},
		{"Żelazna Fabryka GmbH", "zelazna fabryka"},
		{"Jan-Nowak, Usterki", "jan nowak usterki"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeSeller(tt.in), tt.in)
	}
}

func TestFilenameScore(t *testing.T) {
	t.Run("embedded number scores 100", func(t *testing.T) {
		assert.Equal(t, 100.0, FilenameScore("FV/7/2024", "FV_7_2024_prefname.pdf"))
		assert.Equal(t, 100.0, FilenameScore("FV/007/2024", "fv-7-2024.pdf"))
	})
	t.Run("zero-padded stem still contains the number", func(t *testing.T) {
		assert.Equal(t, 100.0, FilenameScore("FV/7/2024", "FV_007_2024.pdf"))
	})
	t.Run("unrelated filename scores low", func(t *testing.T) {
		assert.Less(t, FilenameScore("FV/7/2024", "skan_0001.pdf"), 50.0)
	})
	t.Run("empty inputs score zero", func(t *testing.T) {
		assert.Zero(t, FilenameScore("", "a.pdf"))
		assert.Zero(t, FilenameScore("FV/1", ""))
	})
}

func TestSellerScore(t *testing.T) {
	t.Run("identical after normalization", func(t *testing.T) {
		assert.Equal(t, 100.0, SellerScore("ACME Sp. z o.o.", "acme"))
	})
	t.Run("token order ignored", func(t *testing.T) {
		assert.Equal(t, 100.0, SellerScore("Nowak Jan", "Jan Nowak"))
	})
	t.Run("different names score low", func(t *testing.T) {
		assert.Less(t, SellerScore("ACME", "Globex Corporation"), 50.0)
	})
	t.Run("empty side scores zero", func(t *testing.T) {
		assert.Zero(t, SellerScore("", "ACME"))
	})
}

package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmount(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"polish comma", "1234,56", "1234.56"},
		{"polish with spaces", "1 234,56", "1234.56"},
		{"polish with nbsp", "1 234,56", "1234.56"},
		{"polish dot thousands", "1.234,56", "1234.56"},
		{"english comma thousands", "1,234.56", "1234.56"},
		{"plain integer", "1500", "1500"},
		{"multiple commas are thousands", "1,234,567", "1234567"},
		{"multiple dots are thousands", "1.234.567", "1234567"},
		{"negative", "-42,10", "-42.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Amount(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestAmount_Errors(t *testing.T) {
	for _, in := range []string{"", "   ", "abc"} {
		_, err := Amount(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-03-07", "2024-03-07"},
		{"2024.03.07", "2024-03-07"},
		{"2024/03/07", "2024-03-07"},
		{"07.03.2024", "2024-03-07"},
		{"07-03-2024", "2024-03-07"},
		{"07/03/2024", "2024-03-07"},
		{"7.3.2024", "2024-03-07"},
		{"2024-3-7", "2024-03-07"},
	}
	for _, tt := range tests {
		got, err := Date(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestDate_DayFirst(t *testing.T) {
	// 03.04.2024 is the 3rd of April, not the 4th of March
	got, err := Date("03.04.2024")
	require.NoError(t, err)
	assert.Equal(t, "2024-04-03", got)
}

func TestDate_Errors(t *testing.T) {
	for _, in := range []string{"", "not a date", "32.13.2024"} {
		_, err := Date(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestDateIn(t *testing.T) {
	t.Run("iso wins over day-first", func(t *testing.T) {
		got, ok := DateIn("wystawiono 05.02.2024, data sprzedaży 2024-02-01")
		assert.True(t, ok)
		assert.Equal(t, "2024-02-01", got)
	})
	t.Run("day-first fallback", func(t *testing.T) {
		got, ok := DateIn("Data wystawienia: 05.02.2024")
		assert.True(t, ok)
		assert.Equal(t, "2024-02-05", got)
	})
	t.Run("no date", func(t *testing.T) {
		_, ok := DateIn("faktura bez daty")
		assert.False(t, ok)
	})
}

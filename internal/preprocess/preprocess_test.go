package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses spaces", "Total:   100\tEUR", "Total: 100 EUR"},
		{"joins wrapped lines", "Payment is due\nwithin 30 days.", "Payment is due within 30 days."},
		{"keeps paragraph breaks", "Art. 1\n\n\n  \nArt. 2", "Art. 1\n\nArt. 2"},
		{"windows newlines", "a 1\r\n\r\nb 2\r\n", "a 1\n\nb 2"},
		{"trims", "  \n\n x 1 \n\n", "x 1"},
		{"nfc", "Mu\u0308ller", "M\u00fcller"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	in := "Fee:  10 EUR\n\n\nDate:\t1 May 2024"
	once := Normalize(in)
	assert.Equal(t, once, Normalize(once))
}

func TestIsJSON(t *testing.T) {
	assert.True(t, IsJSON([]byte(`  [{"para":[]}]`)))
	assert.True(t, IsJSON([]byte(`{"para":"x"}`)))
	assert.False(t, IsJSON([]byte("Total 100 EUR")))
	assert.False(t, IsJSON([]byte("[1] Total 100 EUR")))
	assert.False(t, IsJSON([]byte(`{"para": [`)))
	assert.False(t, IsJSON([]byte("2024")))
}

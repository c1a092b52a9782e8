package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextFromContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "single Tj",
			content:  "BT /F1 12 Tf 72 720 Td (DECRETO) Tj ET",
			expected: "DECRETO",
		},
		{
			name:     "lines from separate text objects",
			content:  "BT 72 720 Td (LEI N\\272 8.666) Tj ET\nBT 72 700 Td (Art. 1 Esta Lei) Tj ET",
			expected: "LEI Nº 8.666\nArt. 1 Esta Lei",
		},
		{
			name:     "relative moves on the same baseline add a space",
			content:  "BT 72 720 Td (Art.) Tj 30 0 Td (5) Tj ET",
			expected: "Art. 5",
		},
		{
			name:     "T star breaks the line",
			content:  "BT 14 TL 72 720 Td (um) Tj T* (dois) Tj ET",
			expected: "um\ndois",
		},
		{
			name:     "quote operator breaks the line",
			content:  "BT 72 720 Td (um) Tj (dois) ' ET",
			expected: "um\ndois",
		},
		{
			name:     "TJ with kerning and word gap",
			content:  "BT 72 720 Td [(Lic) -20 (ita\\347\\343o) -300 (p\\372blica)] TJ ET",
			expected: "Licitação pública",
		},
		{
			name:     "hex string",
			content:  "BT 72 720 Td <4C4549> Tj ET",
			expected: "LEI",
		},
		{
			name:     "utf16 hex string",
			content:  "BT 72 720 Td <FEFF00C700E3> Tj ET",
			expected: "Çã",
		},
		{
			name:     "escaped and nested parentheses",
			content:  "BT 72 720 Td (inciso \\(I\\) e (II)) Tj ET",
			expected: "inciso (I) e (II)",
		},
		{
			name:     "text matrix sets the baseline",
			content:  "BT 1 0 0 1 72 720 Tm (a) Tj 1 0 0 1 72 700 Tm (b) Tj ET",
			expected: "a\nb",
		},
		{
			name:     "comments and graphics are ignored",
			content:  "% comment\nq 1 0 0 1 0 0 cm 0 0 m 10 10 l S Q\nBT /F1 12 Tf 72 720 Td (texto) Tj ET",
			expected: "texto",
		},
		{
			name:     "inline image skipped",
			content:  "BI /W 2 /H 2 /BPC 8 ID \x00(\xff) Tj EI\nBT 72 720 Td (depois) Tj ET",
			expected: "depois",
		},
		{
			name:     "strings outside text objects ignored",
			content:  "(solto) Tj BT 72 720 Td (dentro) Tj ET",
			expected: "dentro",
		},
		{
			name:     "empty stream",
			content:  "",
			expected: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, textFromContent([]byte(tc.content)))
		})
	}
}

func TestDecodeString(t *testing.T) {
	assert.Equal(t, "Nº", decodeString([]byte{'N', 0xBA}))
	assert.Equal(t, "MARÇO", decodeString([]byte{'M', 'A', 'R', 0xC7, 'O'}))
	assert.Equal(t, "é", decodeString([]byte{0xFE, 0xFF, 0x00, 0xE9}))
}

func TestLexer_OctalAndLineContinuation(t *testing.T) {
	lx := &lexer{data: []byte("(a\\101\\\nb\\n)")}
	tok, ok := lx.next()
	assert.True(t, ok)
	assert.Equal(t, tokString, tok.kind)
	assert.Equal(t, "aAb\n", string(tok.raw))
}

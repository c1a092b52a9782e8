package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()

	require.NotNil(t, theme)
	for name, c := range map[string]string{
		"primary":   string(theme.Primary),
		"secondary": string(theme.Secondary),
		"error":     string(theme.Error),
		"status":    string(theme.StatusBg),
	} {
		assert.NotEmpty(t, c, name)
	}
	assert.NotEqual(t, theme.Primary, theme.Secondary)
	assert.NotEqual(t, theme.Success, theme.Error)
}

func TestNewStyles_NilThemeUsesDefault(t *testing.T) {
	s := NewStyles(nil)

	require.NotNil(t, s)
	assert.Equal(t, DefaultTheme(), s.Theme())
}

func TestStyles_Render(t *testing.T) {
	s := DefaultStyles()

	assert.Contains(t, s.Title.Render("Legislação"), "Legislação")
	assert.Contains(t, s.Source.Render("lei_8666.pdf"), "lei_8666.pdf")
	assert.Contains(t, s.Answer.Render("resposta"), "resposta")
}

package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractNameFragments(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"two names with connector", "Sarah and Tiffany came today", []string{"sarah", "tiffany"}},
		{"contraction leaves no residue", "Emma didn't come", []string{"emma"}},
		{"comma and ampersand split", "Mark Chloe, Leo & Mia as present", []string{"chloe", "leo", "mia"}},
		{"possessive is stripped", "Set Leo's time to 5pm", []string{"leo"}},
		{"diacritics folded", "José vino hoy", []string{"jose"}},
		{"full name stays one fragment", "Sarah Chen attended", []string{"sarah chen"}},
		{"spanish connector", "Sarah y Tiffany vinieron", []string{"sarah", "tiffany"}},
		{"chinese connector", "小美 和 小强 来了", []string{"小美", "小强"}},
		{"number words are stripped", "no one came", nil},
		{"pure command has no names", "mark everyone absent", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractNameFragments(tt.text)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "set leo time to 5pm", normalizeText("Set Leo's time to 5pm!"))
	assert.Equal(t, "a , b", normalizeText("a, b"))
	assert.Equal(t, "jose manana", normalizeText("José mañana"))
}

func TestVerbDetection(t *testing.T) {
	assert.True(t, hasMarkVerb(normalizeText("Sarah came today")))
	assert.True(t, hasMarkVerb(normalizeText("Sarah vino hoy")))
	assert.True(t, hasUnmarkVerb(normalizeText("Emma didn't come")))
	assert.True(t, hasUnmarkVerb(normalizeText("Emma missed her lesson")))
	assert.False(t, hasUnmarkVerb(normalizeText("Sarah came today")))
	assert.False(t, hasMarkVerb(normalizeText("move the lesson to friday")))
}

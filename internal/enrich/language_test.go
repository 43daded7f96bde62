package enrich

import (
	"testing"

	"github.com/pemistahl/lingua-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectLanguage(t *testing.T) {
	detector := NewLanguageDetector(lingua.English, lingua.German)

	codes := detector.Detect("this is clearly a sentence written in the english language")
	require.NotEmpty(t, codes)
	assert.Equal(t, "eng", codes[0])

	codes = detector.Detect("dies ist eindeutig ein satz in deutscher sprache")
	require.NotEmpty(t, codes)
	assert.Equal(t, "deu", codes[0])
}

func TestDetectLanguageEmpty(t *testing.T) {
	detector := NewLanguageDetector(lingua.English, lingua.German)
	assert.Nil(t, detector.Detect("   "))
}

package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"titanic/ml"
)

func TestRenderSurvivedIndonesian(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, Details{
		Prediction:   ml.Prediction{Label: 1, Probabilities: [2]float64{0.166, 0.834}},
		ModelType:    "adaboost",
		ModelVersion: "abc123",
	}, Language("id"))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Klasifikasi Keselamatan Penumpang Titanic")
	assert.Contains(t, out, "Hasil: SELAMAT (Survived)")
	assert.Contains(t, out, "Probabilitas keselamatan")
	assert.NotContains(t, out, "TIDAK")
	assert.NotContains(t, out, "Catatan")
	assert.Contains(t, out, "adaboost")
}

func TestRenderNotSurvivedEnglish(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, Details{
		Prediction: ml.Prediction{Label: 0, Probabilities: [2]float64{0.834, 0.166}},
	}, Language("en-GB"))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Result: NOT SURVIVED")
	assert.Contains(t, out, "Probability of not surviving: 83.4%")
	assert.Contains(t, out, "title and ticket fare")
}

func TestLanguageFallback(t *testing.T) {
	assert.Equal(t, language.English, Language("en"))
	assert.Equal(t, language.Indonesian, Language("id"))
	assert.Equal(t, language.Indonesian, Language("fr"))
	assert.Equal(t, language.Indonesian, Language("not a tag!"))
}

func TestBar(t *testing.T) {
	assert.Equal(t, strings.Repeat("░", 10), Bar(0, 10))
	assert.Equal(t, strings.Repeat("█", 10), Bar(1, 10))
	assert.Equal(t, strings.Repeat("█", 5)+strings.Repeat("░", 5), Bar(0.5, 10))
	assert.Equal(t, strings.Repeat("█", 10), Bar(3, 10))
	assert.Equal(t, 10, len([]rune(Bar(0.33, 10))))
}

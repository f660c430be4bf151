// Package report renders a prediction for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"titanic/ml"
)

const (
	keyTitle        = "Titanic Passenger Survival Classification"
	keySurvived     = "Result: SURVIVED"
	keyNotSurvived  = "Result: NOT SURVIVED"
	keyProbSurvived = "Survival probability: %.1f%%"
	keyProbDied     = "Probability of not surviving: %.1f%%"
	keyCaption      = "Note: the passenger's title and ticket fare weigh heavily on the prediction."
	keyModel        = "Model %s (%s)"
)

func init() {
	id := language.Indonesian
	for key, text := range map[string]string{
		keyTitle:        "Klasifikasi Keselamatan Penumpang Titanic",
		keySurvived:     "Hasil: SELAMAT (Survived)",
		keyNotSurvived:  "Hasil: TIDAK SELAMAT (Not Survived)",
		keyProbSurvived: "Probabilitas keselamatan: %.1f%%",
		keyProbDied:     "Probabilitas tidak selamat: %.1f%%",
		keyCaption:      "Catatan: Faktor gelar penumpang dan harga tiket cukup berpengaruh terhadap hasil prediksi.",
		keyModel:        "Model %s (%s)",
	} {
		if err := message.SetString(id, key, text); err != nil {
			panic(err)
		}
	}
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4A90D9"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4ECDC4"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(0, 1)
)

const barWidth = 30

// Language resolves a config value such as "id" or "en". Unknown tags fall
// back to Indonesian.
func Language(tag string) language.Tag {
	parsed, err := language.Parse(tag)
	if err != nil {
		return language.Indonesian
	}
	base, _ := parsed.Base()
	switch base.String() {
	case "en":
		return language.English
	default:
		return language.Indonesian
	}
}

type Details struct {
	Prediction   ml.Prediction
	ModelType    string
	ModelVersion string
}

func Render(w io.Writer, d Details, lang language.Tag) error {
	p := message.NewPrinter(lang)

	var outcome, probability string
	var chance float64
	var style lipgloss.Style
	if d.Prediction.Survived() {
		chance = d.Prediction.Probabilities[1]
		style = successStyle
		outcome = p.Sprintf(keySurvived)
		probability = p.Sprintf(keyProbSurvived, chance*100)
	} else {
		chance = d.Prediction.Probabilities[0]
		style = errorStyle
		outcome = p.Sprintf(keyNotSurvived)
		probability = p.Sprintf(keyProbDied, chance*100)
	}

	lines := []string{
		titleStyle.Render(p.Sprintf(keyTitle)),
		"",
		style.Render(outcome),
		probability,
		style.Render(Bar(chance, barWidth)),
	}
	if !d.Prediction.Survived() {
		lines = append(lines, subtleStyle.Render(p.Sprintf(keyCaption)))
	}
	if d.ModelType != "" {
		lines = append(lines, subtleStyle.Render(p.Sprintf(keyModel, d.ModelType, d.ModelVersion)))
	}

	_, err := fmt.Fprintln(w, boxStyle.Render(strings.Join(lines, "\n")))
	return err
}

// Bar draws a fixed-width progress bar for a fraction in [0, 1].
func Bar(fraction float64, width int) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(fraction*float64(width) + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

package news

import (
	"testing"

	"TrueSignal/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(ts ...string) []models.RawNewsItem {
	out := make([]models.RawNewsItem, len(ts))
	for i, t := range ts {
		out[i] = models.RawNewsItem{Title: models.FlexString(t)}
	}
	return out
}

func TestSummarize_DedupesPunctuationAndCase(t *testing.T) {
	got := Summarize(titles("Company Beats Estimates!", "company beats estimates"))
	require.Len(t, got, 1)
	assert.Equal(t, "Company Beats Estimates!", got[0].Title)
}

func TestSummarize_RatioBoundaryIsExclusive(t *testing.T) {
	// 20 runes, distance 3: ratio is exactly 0.15 and both survive.
	got := Summarize(titles("abcdefghijklmnopqrst", "xyzdefghijklmnopqrst"))
	assert.Len(t, got, 2)

	// distance 2: ratio 0.10 collapses to one.
	got = Summarize(titles("abcdefghijklmnopqrst", "xycdefghijklmnopqrst"))
	assert.Len(t, got, 1)
}

func TestSummarize_Caps(t *testing.T) {
	in := []string{
		"Apple unveils new headset",
		"Fed holds rates steady",
		"Oil prices slump on supply glut",
		"Chipmaker posts record revenue",
		"Retail sales cool in March",
		"Bank settles probe with regulators",
		"Airline adds transatlantic routes",
		"Streaming service hikes prices",
		"Automaker recalls sedans",
		"Miner expands copper output",
	}
	got := Summarize(titles(in...))
	require.Len(t, got, MaxOutput)
	assert.Equal(t, in[0], got[0].Title)
	assert.Equal(t, in[7], got[7].Title)
}

func TestSummarize_OnlyFirstTwentyConsidered(t *testing.T) {
	in := make([]string, 0, 21)
	for i := 0; i < 20; i++ {
		in = append(in, "same headline repeated")
	}
	in = append(in, "a different headline entirely")
	got := Summarize(titles(in...))
	require.Len(t, got, 1)
	assert.Equal(t, "same headline repeated", got[0].Title)
}

func TestSummarize_FieldFallbacks(t *testing.T) {
	got := Summarize([]models.RawNewsItem{
		{Title: "  ", Headline: "ignored because title is blank"},
		{
			Headline:    "  Acme raises guidance 12%  ",
			Publisher:   "Wire",
			PublishedAt: "2024-05-01",
			Link:        "https://example.com/a",
		},
	})
	require.Len(t, got, 1)
	n := got[0]
	assert.Equal(t, "Acme raises guidance 12%", n.Title)
	assert.Equal(t, "Wire", n.Source)
	assert.Equal(t, "2024-05-01", n.Date)
	assert.Equal(t, "https://example.com/a", n.URL)
	assert.Equal(t, []string{"12%"}, n.Nums)
}

func TestSummarize_EmptyInput(t *testing.T) {
	got := Summarize(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSentiment(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Company beats estimates and raises guidance", models.SentimentPositive},
		{"Company misses and cuts outlook", models.SentimentNegative},
		{"Record quarter but lawsuit looms", models.SentimentMixed},
		{"Company holds annual meeting", models.SentimentNeutral},
		{"Upbeat tone at conference", models.SentimentNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Sentiment(tt.title))
		})
	}
}

func TestExtractNumbers(t *testing.T) {
	assert.Equal(t, []string{"+5.5%", "$1,200", "-3%"}, ExtractNumbers("Shares +5.5% to $1,200 after -3% drop, then 7%"))
	assert.Equal(t, []string{}, ExtractNumbers("no figures here"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "q3 beat raise", Normalize("  Q3: Beat & Raise!!__ "))
	assert.True(t, Similar(Normalize("Company Beats Estimates!"), Normalize("company beats estimates")))
}

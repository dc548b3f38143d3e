package models

// Sentiment labels produced by the headline classifier.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
	SentimentMixed    = "mixed"
)

// NewsItem is one deduplicated, sentiment-tagged digest entry.
type NewsItem struct {
	Title     string   `json:"title" validate:"required"`
	Date      string   `json:"date"`
	Sentiment string   `json:"sentiment" validate:"oneof=positive negative neutral mixed"`
	Source    string   `json:"source"`
	URL       string   `json:"url"`
	Nums      []string `json:"nums" validate:"max=3"`
}

// RawNewsItem is a provider article. Field names vary by source, so several
// aliases are accepted.
type RawNewsItem struct {
	Title       FlexString `json:"title"`
	Headline    FlexString `json:"headline"`
	Source      FlexString `json:"source"`
	Publisher   FlexString `json:"publisher"`
	Date        FlexString `json:"date"`
	PublishedAt FlexString `json:"published_at"`
	Time        FlexString `json:"time"`
	URL         FlexString `json:"url"`
	Link        FlexString `json:"link"`
}

// HeadlineText returns title, falling back to headline.
func (n RawNewsItem) HeadlineText() string {
	return firstNonEmpty(string(n.Title), string(n.Headline))
}

func (n RawNewsItem) SourceText() string {
	return firstNonEmpty(string(n.Source), string(n.Publisher))
}

func (n RawNewsItem) DateText() string {
	return firstNonEmpty(string(n.Date), string(n.PublishedAt), string(n.Time))
}

func (n RawNewsItem) URLText() string {
	return firstNonEmpty(string(n.URL), string(n.Link))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

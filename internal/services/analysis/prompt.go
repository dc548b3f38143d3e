package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"TrueSignal/internal/domain/models"
	"TrueSignal/pkg/util"
	"TrueSignal/pkg/validation"
)

// rawSnippetBytes bounds how much of a rejected output is quoted back.
const rawSnippetBytes = 1200

const schemaOutline = `Output JSON keys:
- schemaVersion:"1.1.0"
- ticker
- decision { ratingLabel, ratingScore, timeHorizon, riskReward }
- entryExit { lastPrice, entry, stop, takeProfits[2], positionSizePct, deltasFromLast { entryPct, stopPct, tp1Pct, tp2Pct } }
- risk { riskScore, invalidation[], volatilityNote }
- signalsTop[3] { name, value, state, comment, asOf? }, signalsMore { trend?, momentum?, volatility?, volume?, others? }
- catalysts[{ type, date, direction?, note }]
- scenarios[1..3] { name, prob, target, triggers[] }
- nextActions[{ id, label, checked }]
- rationale[] (max 5)
- newsDigest[{ title, date, sentiment (positive|negative|neutral|mixed), source, url, nums[] (max 3) }]
- dataFreshness { priceAt, newsWindow {from?, to?}, metricsAsOf }
- legacy { summaryText, newsSummaryText } (optional)
Rules:
- STRICT JSON ONLY. No text outside JSON.
- Types must match exactly. "schemaVersion" MUST be a string equal to "1.1.0".
- "scenarios" MUST have 1-3 items (use Base/Bull/Bear if unsure).
- Prices numeric; percents numeric (no "%" symbol).
- If unknown: still output a safe default that satisfies the schema.
- For legacy.summaryText: a concise, professional 3-6 sentence overview of the company, its business, recent performance and outlook, grounded in the facts provided.`

const summaryInstruction = "INSTRUCTIONS: For the legacy.summaryText field, generate a clear, professional, and insightful 3-6 sentence overview of the company, its business, recent performance, and outlook, using the facts provided."

// PromptInputs are the user-controlled parts of the prompt.
type PromptInputs struct {
	UserQuery   string
	Objective   string
	DetailLevel string
	Timeframe   string
}

// SystemPrompt is the analyst persona plus the output outline.
func SystemPrompt() string {
	return "You are a precise financial analyst. Emit ONLY valid JSON per outline.\n" + schemaOutline
}

// UserPrompt renders the request and the facts as one message.
func UserPrompt(in PromptInputs, f *models.Facts) (string, error) {
	factsJSON, err := json.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("encode facts: %w", err)
	}
	lines := []string{
		"User query: " + quote(in.UserQuery),
		"Objective: " + quote(orDefault(in.Objective, "general")),
		"Detail: " + quote(orDefault(in.DetailLevel, "std")),
		"Timeframe: " + quote(orDefault(in.Timeframe, "1d")),
		"Facts:" + string(factsJSON),
		summaryInstruction,
	}
	return strings.Join(lines, "\n"), nil
}

// RepairHint quotes validation failures and the start of the rejected output.
func RepairHint(issues []validation.Issue, raw string) string {
	return fmt.Sprintf(
		"Your last JSON failed validation: %s. Raw output: %s. Fix STRUCTURE ONLY and re-emit valid JSON.",
		strings.Join(validation.Messages(issues), "; "),
		util.Truncate(raw, rawSnippetBytes),
	)
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

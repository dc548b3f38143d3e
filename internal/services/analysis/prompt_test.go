package analysis

import (
	"strings"
	"testing"

	"TrueSignal/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserPrompt(t *testing.T) {
	p, err := UserPrompt(PromptInputs{UserQuery: `Is "ACME" a buy?`, DetailLevel: "low"}, factsAt(100, 2))
	require.NoError(t, err)

	lines := strings.Split(p, "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, `User query: "Is \"ACME\" a buy?"`, lines[0])
	assert.Equal(t, `Objective: "general"`, lines[1])
	assert.Equal(t, `Detail: "low"`, lines[2])
	assert.Equal(t, `Timeframe: "1d"`, lines[3])
	assert.True(t, strings.HasPrefix(lines[4], `Facts:{"tkr":"ACME"`))
	assert.Contains(t, lines[5], "legacy.summaryText")
}

func TestSystemPrompt(t *testing.T) {
	p := SystemPrompt()
	assert.Contains(t, p, `"schemaVersion" MUST be a string equal to "1.1.0"`)
	assert.Contains(t, p, "scenarios[1..3]")
}

func TestRepairHint(t *testing.T) {
	issues := []validation.Issue{{Path: "newsDigest[0].title", Message: "newsDigest[0].title is required"}}
	h := RepairHint(issues, `{"newsDigest":[{}]}`)
	assert.Contains(t, h, "newsDigest[0].title is required")
	assert.Contains(t, h, `Raw output: {"newsDigest":[{}]}`)
}

package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCompletionJSON(t *testing.T) {
	a := parseCompletion("how do turn signals work", `{
		"answer": "Signal at least 100 feet before turning.",
		"citation": "Uniform Vehicle Code §11-604",
		"tags": ["signals", "turning", "lanes", "safety", "extra"]
	}`)

	assert.Equal(t, "Signal at least 100 feet before turning.", a.Answer)
	assert.Equal(t, "Uniform Vehicle Code §11-604", a.Citation)
	assert.Equal(t, []string{"signals", "turning", "lanes", "safety"}, a.Tags)
}

func TestParseCompletionJSONDefaults(t *testing.T) {
	a := parseCompletion("q", `{"answer": ""}`)

	assert.Equal(t, emptyAnswer, a.Answer)
	assert.Empty(t, a.Citation)
	assert.NotNil(t, a.Tags)
	assert.Empty(t, a.Tags)
}

func TestParseCompletionText(t *testing.T) {
	text := "Come to a complete stop at the line.\n" +
		"Source: State Driver Handbook, Chapter 4\n" +
		"Tags: stop signs, intersections, right of way"

	a := parseCompletion("what do I do at a stop sign", text)

	assert.Equal(t, "Come to a complete stop at the line.", a.Answer)
	assert.Equal(t, "State Driver Handbook, Chapter 4", a.Citation)
	// tags split on commas and whitespace alike
	assert.Equal(t, []string{"stop", "signs", "intersections", "right"}, a.Tags)
}

func TestParseCompletionHashTags(t *testing.T) {
	text := "Keep right except to pass.\nCITATION: Vehicle Code 21654\n#lanes #passing"

	a := parseCompletion("which lane should I drive in", text)

	assert.Equal(t, "Keep right except to pass.", a.Answer)
	assert.Equal(t, "Vehicle Code 21654", a.Citation)
	assert.Equal(t, []string{"lanes", "passing"}, a.Tags)
}

func TestParseCompletionFirstMatchOnly(t *testing.T) {
	text := "Answer body.\nSource: first\nSource: second"

	a := parseCompletion("q", text)

	assert.Equal(t, "first", a.Citation)
	assert.Contains(t, a.Answer, "Source: second")
}

func TestParseCompletionInfersTags(t *testing.T) {
	tests := []struct {
		question string
		want     []string
	}{
		{"Can pedestrians cross anywhere?", []string{"pedestrians", "safety"}},
		{"Is a little alcohol ok?", []string{"DUI", "safety"}},
		{"Passing a school bus on a highway", []string{"school bus", "safety"}},
		{"Roundabout etiquette", []string{"roundabout", "traffic flow"}},
		{"Who can use HOV?", []string{"HOV", "traffic regulations"}},
		{"How do I parallel park?", []string{"driving rules", "traffic regulations"}},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			a := parseCompletion(tt.question, "Plain answer without markers.")
			assert.Equal(t, "Plain answer without markers.", a.Answer)
			assert.Empty(t, a.Citation)
			assert.Equal(t, tt.want, a.Tags)
		})
	}
}

func TestParseCompletionInvalidJSONFallsBackToText(t *testing.T) {
	a := parseCompletion("q", "{not json} Source: somewhere")

	assert.Equal(t, "somewhere", a.Citation)
	assert.Equal(t, "{not json}", a.Answer)
}

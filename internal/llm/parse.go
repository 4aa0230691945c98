package llm

import (
	"encoding/json"
	"strings"
	"unicode"

	"github.com/RichardoC/drivewise/internal/models"
	"github.com/dlclark/regexp2"
)

const (
	maxTags     = 4
	emptyAnswer = "I couldn't generate a proper response at this time."
)

// ECMAScript mode keeps the matching rules the prompts were written against:
// only the first match counts and "." stops at a newline.
var (
	citationPattern = regexp2.MustCompile(`(Source|Citation):\s*(.+?)(?:\n|$)`, regexp2.IgnoreCase|regexp2.ECMAScript)
	tagsPattern     = regexp2.MustCompile(`(?:Tags:|#)(.+?)(?:\n|$)`, regexp2.IgnoreCase|regexp2.ECMAScript)
)

type jsonAnswer struct {
	Answer   string   `json:"answer"`
	Citation string   `json:"citation"`
	Tags     []string `json:"tags"`
}

// parseCompletion turns model output into an Answer. A JSON object is used as is;
// anything else is scraped for a citation line and a tags line.
func parseCompletion(question, completion string) models.Answer {
	if a, ok := parseJSON(completion); ok {
		return a
	}
	return parseText(question, completion)
}

func parseJSON(completion string) (models.Answer, bool) {
	trimmed := strings.TrimSpace(completion)
	if !strings.HasPrefix(trimmed, "{") {
		return models.Answer{}, false
	}
	var ja jsonAnswer
	if err := json.Unmarshal([]byte(trimmed), &ja); err != nil {
		return models.Answer{}, false
	}

	a := models.Answer{
		Answer:   ja.Answer,
		Citation: strings.TrimSpace(ja.Citation),
		Tags:     capTags(ja.Tags),
	}
	if a.Answer == "" {
		a.Answer = emptyAnswer
	}
	return a, true
}

func parseText(question, text string) models.Answer {
	answer := text
	var citation string
	var tags []string

	if m, _ := citationPattern.FindStringMatch(text); m != nil {
		citation = strings.TrimSpace(m.GroupByNumber(2).String())
		answer = strings.TrimSpace(strings.Replace(answer, m.String(), "", 1))
	}

	if m, _ := tagsPattern.FindStringMatch(text); m != nil {
		tags = splitTags(m.GroupByNumber(1).String())
		answer = strings.TrimSpace(strings.Replace(answer, m.String(), "", 1))
	} else {
		tags = inferTags(question)
	}

	return models.Answer{
		Answer:   answer,
		Citation: citation,
		Tags:     capTags(tags),
	}
}

func splitTags(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '#' || unicode.IsSpace(r)
	})
}

func inferTags(question string) []string {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "pedestrian"):
		return []string{"pedestrians", "safety"}
	case strings.Contains(q, "alcohol"):
		return []string{"DUI", "safety"}
	case strings.Contains(q, "school bus"):
		return []string{"school bus", "safety"}
	case strings.Contains(q, "roundabout"):
		return []string{"roundabout", "traffic flow"}
	case strings.Contains(q, "hov"):
		return []string{"HOV", "traffic regulations"}
	default:
		return []string{"driving rules", "traffic regulations"}
	}
}

func capTags(tags []string) []string {
	if len(tags) > maxTags {
		tags = tags[:maxTags]
	}
	return append([]string{}, tags...)
}

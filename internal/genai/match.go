package genai

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"
	"unicode"
)

// MatchResult is the outcome of a resume/job comparison.
type MatchResult struct {
	Score     int      `json:"score"`
	Strengths []string `json:"strengths"`
	Gaps      []string `json:"gaps"`
	// Fallback is set when the model reply could not be parsed and Score
	// comes from keyword overlap.
	Fallback bool `json:"fallback,omitempty"`
}

var jsonObject = regexp.MustCompile(`(?s)\{.*\}`)

// parseMatch reads the model's JSON reply, tolerating markdown fences and
// surrounding prose.
func parseMatch(reply string) (*MatchResult, bool) {
	text := strings.TrimSpace(reply)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")

	var raw struct {
		Score     float64  `json:"score"`
		Strengths []string `json:"strengths"`
		Gaps      []string `json:"gaps"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		obj := jsonObject.FindString(text)
		if obj == "" || json.Unmarshal([]byte(obj), &raw) != nil {
			return nil, false
		}
	}

	res := &MatchResult{
		Score:     clampScore(raw.Score),
		Strengths: raw.Strengths,
		Gaps:      raw.Gaps,
	}
	if res.Strengths == nil {
		res.Strengths = []string{}
	}
	if res.Gaps == nil {
		res.Gaps = []string{}
	}
	return res, true
}

func clampScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(math.Max(0, math.Min(100, v))))
}

// KeywordScore is the percentage (0–100, truncated) of keywords found in
// text, case-insensitively.
func KeywordScore(text string, keywords []string) int {
	if text == "" || len(keywords) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	matched := 0
	for _, k := range keywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			matched++
		}
	}
	return matched * 100 / len(keywords)
}

// Keywords picks distinct words of four or more letters from a free-text
// description.
func Keywords(description string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, w := range strings.FieldsFunc(strings.ToLower(description), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	}) {
		if len([]rune(w)) < 4 || stopwords[w] || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

var stopwords = map[string]bool{
	"with": true, "that": true, "this": true, "will": true, "have": true,
	"from": true, "your": true, "they": true, "their": true, "about": true,
	"work": true, "team": true, "must": true, "should": true, "years": true,
	"experience": true, "ability": true, "strong": true, "including": true,
}

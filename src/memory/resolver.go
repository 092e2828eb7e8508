package memory

import (
	"strings"

	"github.com/relay-agents/relay/src/memory/model"
)

// identityCues mark questions (and their historical twins) that ask about
// identity or occupation; they anchor the pairwise match below.
var identityCues = []string{"name", "who", "role", "what"}

// ResolveAnswer scans a chronological transcript for an earlier answer to the
// current question. Two passes, both on case-insensitive substring tests:
//
// Pass 1 walks adjacent user→assistant pairs; every match replaces the
// candidate, so the most recent matching pair wins. Pass 2 runs only when
// pass 1 found nothing and takes the first standalone assistant turn that
// looks like an answer to the question's kind.
func ResolveAnswer(turns []model.Turn, question string) (string, bool) {
	q := strings.ToLower(question)

	answer := ""
	found := false
	for i := 0; i+1 < len(turns); i++ {
		if turns[i].Role != model.RoleUser || turns[i+1].Role != model.RoleAssistant {
			continue
		}
		if questionsSimilar(q, strings.ToLower(turns[i].Content)) {
			answer = turns[i+1].Content
			found = true
		}
	}
	if found {
		return answer, true
	}

	for _, t := range turns {
		if t.Role != model.RoleAssistant {
			continue
		}
		if answersQuestion(q, t.Content) {
			return t.Content, true
		}
	}
	return "", false
}

func questionsSimilar(current, historical string) bool {
	for _, cue := range identityCues {
		if strings.Contains(current, cue) && strings.Contains(historical, cue) {
			return true
		}
	}
	// Prefix containment catches rephrasings of the same question.
	if len(current) > 10 {
		prefix := current
		if len(prefix) > 15 {
			prefix = prefix[:15]
		}
		if strings.Contains(historical, prefix) {
			return true
		}
	}
	return false
}

func answersQuestion(question, answer string) bool {
	a := strings.ToLower(answer)
	// A question can carry several cues; any clause may admit the answer.
	if strings.Contains(question, "name") && len(answer) < 100 &&
		(strings.Contains(a, "name") || strings.Contains(a, "you are") || strings.Contains(a, "your name")) {
		return true
	}
	if strings.Contains(question, "who") &&
		(strings.Contains(a, "you are") || strings.Contains(a, "you're")) {
		return true
	}
	if strings.Contains(question, "role") &&
		(strings.Contains(a, "role") || strings.Contains(a, "job") ||
			strings.Contains(a, "work") || strings.Contains(a, "position")) {
		return true
	}
	return false
}

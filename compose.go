package relay

import (
	"strings"

	"github.com/relay-agents/relay/src/memory/model"
)

const historyHeader = `=== PREVIOUS CONVERSATION HISTORY ===
The following conversation history is retrieved from the memory store. You MUST prioritize this information and use it to answer questions accurately.`

const historyInstructions = `=== CRITICAL INSTRUCTIONS ===
1. ALWAYS check the conversation history above before generating any answer.
2. If the information exists in the conversation history, use it directly - DO NOT generate new information.
3. For questions about the user (name, role, identity, etc.), extract the exact information from the history.
4. If asked something that was already answered in the history, use that exact answer.
5. Do NOT regenerate information that already exists in the context.
6. Only provide information that is present in the conversation history above.`

// answerPreviewLimit caps how much of a recalled answer is quoted back into
// the override instruction.
const answerPreviewLimit = 200

// ComposePrompt assembles the system prompt for one turn: the agent persona,
// the retrieved transcript (when any), and an override instruction when an
// earlier answer to the current question was found. Pure function.
func ComposePrompt(persona string, history []model.Turn, answer string, answerFound bool) string {
	var sb strings.Builder
	sb.Grow(len(persona) + len(history)*64 + 512)
	sb.WriteString(persona)

	if len(history) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(historyHeader)
		sb.WriteString("\n\n")
		for i, turn := range history {
			if i > 0 {
				sb.WriteString("\n\n")
			}
			if turn.Role == model.RoleUser {
				sb.WriteString("User: ")
			} else {
				sb.WriteString("Assistant: ")
			}
			sb.WriteString(turn.Content)
		}
		sb.WriteString("\n\n")
		sb.WriteString(historyInstructions)
	}

	if answerFound {
		preview := answer
		if len(preview) > answerPreviewLimit {
			preview = preview[:answerPreviewLimit]
		}
		sb.WriteString("\n\n⚠️ IMPORTANT: The answer to this question already exists in the conversation history above. You MUST use that exact answer and NOT generate a new one. The existing answer is: \"")
		sb.WriteString(preview)
		sb.WriteString("...\"")
	}

	return sb.String()
}

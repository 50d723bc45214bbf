// Package prompt assembles the text sent to the completion vendor. The
// output format is fixed: changing any of these strings changes what every
// configured model sees, so the exact bytes are pinned by golden tests.
package prompt

import (
	"strings"

	"character-dialog-service/backend/internal/models"
)

const (
	headerPrefix   = "Ты — персонаж по имени "
	instructions   = "Отвечай на вопросы от лица своего персонажа. Если вопрос не относится к твоей роли, вежливо откажись отвечать.\n"
	historyHeader  = "История диалога:\n"
	questionHeader = "Текущий вопрос:\n"
)

// Build renders the full prompt for one turn: a header naming the
// character, the persona description, the two fixed instruction sentences,
// the prior thread (omitted entirely when empty), and the current question.
// Pure function of its inputs.
func Build(characterName, description string, history []models.HistoryEntry, question string) string {
	var b strings.Builder

	b.WriteString(headerPrefix)
	b.WriteString(characterName)
	b.WriteString(".\n")

	b.WriteString(description)
	b.WriteString("\n")

	b.WriteString(instructions)

	if len(history) > 0 {
		b.WriteString(historyHeader)
		for _, entry := range history {
			b.WriteString(entry.Speaker)
			b.WriteString(": ")
			b.WriteString(entry.Text)
			b.WriteString("\n")
		}
	}

	b.WriteString(questionHeader)
	b.WriteString(question)

	return b.String()
}

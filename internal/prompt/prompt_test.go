package prompt

import (
	"testing"

	"character-dialog-service/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestBuildWithoutHistory(t *testing.T) {
	got := Build("Mira", "a stoic blacksmith", nil, "What do you sell?")

	want := "Ты — персонаж по имени Mira.\n" +
		"a stoic blacksmith\n" +
		"Отвечай на вопросы от лица своего персонажа. Если вопрос не относится к твоей роли, вежливо откажись отвечать.\n" +
		"Текущий вопрос:\n" +
		"What do you sell?"

	assert.Equal(t, want, got)
	// No history section and no stray separators for an empty thread.
	assert.NotContains(t, got, "История диалога:")
}

func TestBuildWithHistory(t *testing.T) {
	history := []models.HistoryEntry{
		{Speaker: "Игрок", Text: "Кто ты?"},
		{Speaker: "Mira", Text: "Я кузнец."},
	}

	got := Build("Mira", "a stoic blacksmith", history, "Что ты продаёшь?")

	want := "Ты — персонаж по имени Mira.\n" +
		"a stoic blacksmith\n" +
		"Отвечай на вопросы от лица своего персонажа. Если вопрос не относится к твоей роли, вежливо откажись отвечать.\n" +
		"История диалога:\n" +
		"Игрок: Кто ты?\n" +
		"Mira: Я кузнец.\n" +
		"Текущий вопрос:\n" +
		"Что ты продаёшь?"

	assert.Equal(t, want, got)
}

func TestBuildIsDeterministic(t *testing.T) {
	history := []models.HistoryEntry{{Speaker: "Игрок", Text: "привет"}}

	first := Build("Боб", "весёлый трактирщик", history, "Что нового?")
	second := Build("Боб", "весёлый трактирщик", history, "Что нового?")

	assert.Equal(t, first, second)
}

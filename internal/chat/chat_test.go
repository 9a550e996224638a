package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppendedTurnsKeepOrder(t *testing.T) {
	t.Parallel()

	s := NewSession("Hei! Spør meg om regnskapet.")
	s.AppendUser("  Hvor mange ubetalte fakturaer?  ")
	s.AppendAssistant("Det er 3 ubetalte fakturaer.")

	log := s.Messages()
	require.Len(t, log, 3) // system + user + assistant
	require.Equal(t, RoleSystem, log[0].Role)
	require.Equal(t, RoleUser, log[1].Role)
	require.Equal(t, "Hvor mange ubetalte fakturaer?", log[1].Content)
	require.Equal(t, RoleAssistant, log[2].Role)
	require.Equal(t, "Det er 3 ubetalte fakturaer.", log[2].Content)
	require.NotEmpty(t, log[1].ID)
}

func TestHistoryFiltersSystemMessages(t *testing.T) {
	t.Parallel()

	s := NewSession("system greeting")

	// the first turn gets empty history: the greeting is system-only
	require.Empty(t, s.History())

	s.AppendUser("first")
	s.AppendAssistant("ok")

	history := s.History()
	require.Len(t, history, 2)
	require.Equal(t, RoleUser, history[0].Role)
	require.Equal(t, "first", history[0].Content)
	require.Equal(t, RoleAssistant, history[1].Role)

	for _, h := range history {
		require.NotEqual(t, RoleSystem, h.Role)
	}
}

func TestOpenAIProviderRequiresKey(t *testing.T) {
	t.Parallel()

	p := NewOpenAIProvider("", "gpt-4o-mini")
	_, err := p.Reply(context.Background(), "hi", nil)
	require.ErrorIs(t, err, ErrNoAPIKey)
}

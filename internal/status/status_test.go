package status

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfidenceBadgeThresholds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		c    float64
		want Light
	}{
		{100, Green},
		{90, Green},
		{89.99, Yellow},
		{75, Yellow},
		{74.99, Red},
		{0, Red},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, ConfidenceBadge(tc.c), "confidence %v", tc.c)
	}

	// green iff c >= 90, never at 85 — the breakdown table is the one
	// with the 85 cut, not this badge
	require.NotEqual(t, Green, ConfidenceBadge(85))
}

func TestBreakdownBadgeThresholds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		c    float64
		want Light
	}{
		{85, Green},
		{84.5, Yellow},
		{70, Yellow},
		{69.9, Orange},
		{50, Orange},
		{49.9, Red},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, BreakdownBadge(tc.c), "confidence %v", tc.c)
	}
}

func TestCountLight(t *testing.T) {
	t.Parallel()

	require.Equal(t, Green, CountLight(0))
	require.Equal(t, Yellow, CountLight(1))
	require.Equal(t, Yellow, CountLight(5))
	require.Equal(t, Red, CountLight(6))
	require.Equal(t, Red, CountLight(40))
}

func TestTaskLight(t *testing.T) {
	t.Parallel()

	require.Equal(t, Green, TaskLight(nil))
	require.Equal(t, Green, TaskLight([]TaskInput{{Priority: "low", Confidence: 10}}))
	require.Equal(t, Yellow, TaskLight([]TaskInput{{Priority: "medium", Confidence: 10}}))
	require.Equal(t, Yellow, TaskLight([]TaskInput{{Priority: "low", Confidence: 61}}))
	require.Equal(t, Red, TaskLight([]TaskInput{{Priority: "high", Confidence: 10}}))
	require.Equal(t, Red, TaskLight([]TaskInput{{Priority: "low", Confidence: 81}}))

	// any red task wins over earlier yellows
	require.Equal(t, Red, TaskLight([]TaskInput{
		{Priority: "medium", Confidence: 50},
		{Priority: "high", Confidence: 10},
	}))

	// boundary values do not escalate
	require.Equal(t, Green, TaskLight([]TaskInput{{Priority: "low", Confidence: 60}}))
	require.Equal(t, Yellow, TaskLight([]TaskInput{{Priority: "low", Confidence: 80}}))
}

func TestBalanced(t *testing.T) {
	t.Parallel()

	require.True(t, Balanced(nil))
	require.True(t, Balanced([]Entry{{Debit: 1000}, {Credit: 1000}}))
	require.True(t, Balanced([]Entry{{Debit: 500}, {Debit: 500}, {Credit: 1000.009}}))
	require.False(t, Balanced([]Entry{{Debit: 1000}, {Credit: 1000.02}}))
	require.False(t, Balanced([]Entry{{Debit: 125.50}}))
}

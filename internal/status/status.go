// Package status holds the threshold rules the console uses to color rows
// and badges. The confidence tables differ between the badge and the
// breakdown view; the cut points carry business meaning and are kept
// separate until product confirms they should converge.
package status

import "math"

// Light is a traffic-light classification.
type Light string

const (
	Green  Light = "green"
	Yellow Light = "yellow"
	Orange Light = "orange"
	Red    Light = "red"
)

// ConfidenceBadge classifies an AI match confidence (0-100) for the
// compact badge: >=90 green, >=75 yellow, else red.
func ConfidenceBadge(c float64) Light {
	switch {
	case c >= 90:
		return Green
	case c >= 75:
		return Yellow
	default:
		return Red
	}
}

// BreakdownBadge classifies confidence for the detailed breakdown view,
// which uses its own table: >=85 green, >=70 yellow, >=50 orange, else red.
func BreakdownBadge(c float64) Light {
	switch {
	case c >= 85:
		return Green
	case c >= 70:
		return Yellow
	case c >= 50:
		return Orange
	default:
		return Red
	}
}

// CountLight classifies an outstanding-item count: 0 green, 1-5 yellow,
// 6 or more red.
func CountLight(n int) Light {
	switch {
	case n == 0:
		return Green
	case n <= 5:
		return Yellow
	default:
		return Red
	}
}

// TaskInput is the subset of a task that drives the per-client light.
type TaskInput struct {
	Priority   string
	Confidence float64
}

// TaskLight reduces a client's tasks to one light: red if any task has
// high priority or confidence above 80; else yellow if any has medium
// priority or confidence above 60; else green.
func TaskLight(tasks []TaskInput) Light {
	light := Green
	for _, t := range tasks {
		if t.Priority == "high" || t.Confidence > 80 {
			return Red
		}
		if t.Priority == "medium" || t.Confidence > 60 {
			light = Yellow
		}
	}
	return light
}

// Entry is a debit/credit pair of one booking line.
type Entry struct {
	Debit  float64
	Credit float64
}

// Balanced reports whether the posting balances within the rounding
// tolerance of 0.01.
func Balanced(entries []Entry) bool {
	var debit, credit float64
	for _, e := range entries {
		debit += e.Debit
		credit += e.Credit
	}
	return math.Abs(debit-credit) < 0.01
}

package compose

import (
	"github.com/ankitni/charchat/internal/transcript"
)

// Stats summarizes the result of window preparation.
//
// Fields:
//   - Total: estimated tokens for the full composed sequence.
//   - Budget: the token budget used.
//   - IncludedGroups / SkippedGroups: history groups kept vs. dropped.
//   - OverBudgetBase: true when the system message plus the new user message
//     alone exceed Budget; they are still included, history is not.
type Stats struct {
	Total          int
	Budget         int
	IncludedGroups int
	SkippedGroups  int
	OverBudgetBase bool
}

// group describes a contiguous span of history [start, end) that is kept or
// dropped as a unit: a user message with its assistant reply, or a trailing
// unpaired message.
type group struct {
	start, end int
}

// groupExchanges groups history into user+assistant pairs. Adjacent messages
// form a pair only when a user message is directly followed by an assistant
// message; anything else stays a singleton so chronology is preserved.
func groupExchanges(history []transcript.Message) []group {
	groups := make([]group, 0, (len(history)+1)/2)
	for i := 0; i < len(history); {
		if history[i].Role == transcript.RoleUser &&
			i+1 < len(history) && history[i+1].Role == transcript.RoleAssistant {
			groups = append(groups, group{start: i, end: i + 2})
			i += 2
			continue
		}
		groups = append(groups, group{start: i, end: i + 1})
		i++
	}
	return groups
}

// windowHistory returns the suffix of history that fits within the token
// budget remaining after the system and new user messages, without splitting
// exchange pairs.
//
// Rules:
//   - Include whole groups scanning newest→oldest while the total fits.
//   - The system and new user messages are never dropped, even over budget.
//   - A non-positive remaining budget keeps no history at all.
func windowHistory(history []transcript.Message, reserved, budget int, c TokenCounter) ([]transcript.Message, Stats) {
	stats := Stats{Budget: budget, Total: reserved}
	if reserved > budget {
		stats.OverBudgetBase = true
		stats.SkippedGroups = len(groupExchanges(history))
		return nil, stats
	}
	if len(history) == 0 {
		return nil, stats
	}

	groups := groupExchanges(history)
	costs := make([]int, len(groups))
	for i, g := range groups {
		cost := 0
		for j := g.start; j < g.end; j++ {
			cost += c.CountMessage(history[j])
		}
		costs[i] = cost
	}

	remaining := budget - reserved
	total := 0
	startIdx := len(groups) // exclusive sentinel, lowered as groups are included
	for gi := len(groups) - 1; gi >= 0; gi-- {
		if total+costs[gi] > remaining {
			break
		}
		total += costs[gi]
		startIdx = gi
	}

	stats.IncludedGroups = len(groups) - startIdx
	stats.SkippedGroups = startIdx
	stats.Total = reserved + total
	if stats.IncludedGroups == 0 {
		return nil, stats
	}
	return history[groups[startIdx].start:], stats
}

package chat

import (
	"github.com/sandevgo/momobot/internal/core"
)

// ContextAssembler turns stored history into the bounded window sent to the
// model. The window always starts with the system turn and ends with the
// current user turn; trimming only ever evicts history between them,
// oldest first.
type ContextAssembler struct {
	counter *TokenCounter
}

func NewContextAssembler(counter *TokenCounter) *ContextAssembler {
	return &ContextAssembler{counter: counter}
}

// Assemble builds [system] + history + [user] and trims it to budget.
// Empty history needs no special case. A window of only system + user is
// returned as-is even when it overflows: there is nothing left to evict and
// the caller must accept the overflow.
func (a *ContextAssembler) Assemble(systemPrompt string, history []core.Turn, userText string, budget int) []core.Turn {
	window := make([]core.Turn, 0, len(history)+2)
	window = append(window, core.Turn{Role: core.RoleSystem, Content: systemPrompt})
	window = append(window, history...)
	window = append(window, core.Turn{Role: core.RoleUser, Content: userText})

	total := a.counter.Count(window)
	if total <= budget {
		return window
	}
	if len(window) <= 2 {
		return window
	}

	// Drop the oldest history turn until the budget holds or history is gone.
	for len(window) > 2 && total > budget {
		evicted := window[1]
		window = append(window[:1], window[2:]...)
		total -= perMessageOverhead + a.counter.tokenize(evicted.Content)
	}

	return window
}

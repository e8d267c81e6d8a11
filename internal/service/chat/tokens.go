package chat

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sandevgo/momobot/internal/core"
)

// Per-message framing cost and per-conversation cost, matching the OpenAI
// guidance for cl100k chat models.
const (
	perMessageOverhead      = 4
	perConversationOverhead = 2
)

var (
	tk     *tiktoken.Tiktoken
	tkOnce sync.Once
)

func getTokenizer() *tiktoken.Tiktoken {
	tkOnce.Do(func() {
		var err error
		tk, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			panic("failed to load tiktoken: " + err.Error())
		}
	})
	return tk
}

// Tokenizer turns content into its token cost.
type Tokenizer func(text string) int

func tiktokenize(text string) int {
	if text == "" {
		return 0
	}
	return len(getTokenizer().Encode(text, nil, nil))
}

// TokenCounter estimates the token cost of a turn list: a fixed overhead per
// turn plus the encoded content length, plus a fixed overhead per list.
// Deterministic, monotonic in content length, no state.
type TokenCounter struct {
	tokenize Tokenizer
}

func NewTokenCounter() *TokenCounter {
	return &TokenCounter{tokenize: tiktokenize}
}

// NewTokenCounterWithTokenizer is the injection point for tests and for
// models with a different vocabulary.
func NewTokenCounterWithTokenizer(t Tokenizer) *TokenCounter {
	return &TokenCounter{tokenize: t}
}

func (c *TokenCounter) Count(turns []core.Turn) int {
	total := perConversationOverhead
	for _, t := range turns {
		total += perMessageOverhead
		total += c.tokenize(t.Content)
	}
	return total
}

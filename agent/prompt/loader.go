package prompt

import (
	_ "embed"
	"strings"
)

//go:embed template/banking.txt
var bankingRaw string

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Banking string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// This is safe to call concurrently; the embed is compile-time, and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Banking: strings.TrimSpace(bankingRaw),
	}
}

package evidence

import (
	"strings"

	"github.com/recaudo/evidence-cli/internal/model"
)

// ParseChannels parses an effective-channels cell into a deduplicated list
// of channel names, preserving first-seen order. Tokens are comma-separated,
// trimmed and uppercased; any token containing "CALL" (the recording variant
// "GRABACION CALL" included) collapses to CALL. An empty cell yields an
// empty list, which callers treat as "skip this customer". Unknown tokens
// pass through as opaque names that never match a resolver.
func ParseChannels(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	seen := make(map[string]bool)
	var channels []string
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.ToUpper(strings.TrimSpace(tok))
		if tok == "" {
			continue
		}
		if strings.Contains(tok, "CALL") {
			tok = string(model.ChannelCall)
		}
		if seen[tok] {
			continue
		}
		seen[tok] = true
		channels = append(channels, tok)
	}
	return channels
}

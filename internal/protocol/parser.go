package protocol

import (
	"fmt"
	"strings"
)

// Command is one parsed line from a TCP client.
type Command struct {
	Name string // "QUERY", "ADVANCE", ecc
	Args []string
}

// Parse splits a raw input line into a Command. Command names are
// case-insensitive; arguments are whitespace-separated (every query
// parameter here is a plain token, so no quoting is needed).
func Parse(raw string) (*Command, error) {
	parts := strings.Fields(strings.TrimSpace(raw))
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	return &Command{
		Name: strings.ToUpper(parts[0]),
		Args: parts[1:],
	}, nil
}

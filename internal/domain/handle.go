package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Handle prefixes used by the canvas
const (
	SourceHandlePrefix = "source"
	TargetHandlePrefix = "target"
)

// ParseHandle parses a handle string such as "source#0" into its index.
// prefix must match the part before '#'.
func ParseHandle(s, prefix string) (int, error) {
	p, n, ok := strings.Cut(s, "#")
	if !ok || p != prefix {
		return 0, fmt.Errorf("%w: %q (want %s#<n>)", ErrInvalidHandle, s, prefix)
	}
	idx, err := strconv.Atoi(n)
	if err != nil || !allDigits(n) {
		return 0, fmt.Errorf("%w: %q (want %s#<n>)", ErrInvalidHandle, s, prefix)
	}
	return idx, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// FormatHandle renders a handle index as "<prefix>#<n>"
func FormatHandle(prefix string, idx int) string {
	return prefix + "#" + strconv.Itoa(idx)
}

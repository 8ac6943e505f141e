package workflows

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ReadAddresses parses one address per line. Blank lines and lines starting
// with '#' are skipped, surrounding whitespace is trimmed and duplicates keep
// their first position.
func ReadAddresses(r io.Reader) ([]string, error) {
	var out []string
	seen := make(map[string]bool)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || seen[line] {
			continue
		}
		seen[line] = true
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read addresses: %w", err)
	}
	return out, nil
}

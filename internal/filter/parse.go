package filter

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

var errEmptyPattern = errors.New("empty pattern")

// LoadFile reads rules from a file and adds them to r.
// Format:
//
//	+ prefix   protect prefix from pruning
//	- pattern  exclude pattern
//	# comment  skipped
//	pattern    no prefix means exclude
func (r *Rules) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open rules file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var addErr error
		switch {
		case strings.HasPrefix(line, "+ "):
			addErr = r.AddProtect(strings.TrimSpace(line[2:]))
		case strings.HasPrefix(line, "- "):
			addErr = r.AddExclude(strings.TrimSpace(line[2:]))
		default:
			addErr = r.AddExclude(line)
		}
		if addErr != nil {
			return fmt.Errorf("rules file %s line %d: %w", path, lineNum, addErr)
		}
	}

	return scanner.Err()
}

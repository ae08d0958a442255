package collector

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"
)

type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

func isMissingCommand(err error) bool {
	return errors.Is(err, exec.ErrNotFound)
}

// parseDumpsys collects the integer "key: value" lines of a dumpsys
// report. Keys are lower-cased; non-numeric values are skipped and the
// first occurrence of a key wins.
func parseDumpsys(out []byte) map[string]int {
	values := make(map[string]int)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		key, val, found := strings.Cut(scanner.Text(), ":")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil || key == "" {
			continue
		}
		if _, seen := values[key]; !seen {
			values[key] = n
		}
	}
	return values
}

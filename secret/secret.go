// Package secret resolves sensitive configuration values without ever
// logging them. It covers the two sourcing styles the deployments use:
// `${VAR}` references inside composite values (a database URL carrying
// `${DB_PASSWORD}`) and file-backed values for container secret mounts.
package secret

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Expand expands environment variable references in s.
//
// Semantics:
//   - `$VAR` and `${VAR}` are expanded via os.ExpandEnv.
//   - A `${VAR}` whose variable is missing from the environment is an
//     error, not an empty string; a silently truncated connection URL is
//     worse than a refusal to start.
//   - `$$` emits a literal `$`.
func Expand(s string) (string, error) {
	const dollarSentinel = "\x00COLLABD_SECRET_DOLLAR\x00"
	s = strings.ReplaceAll(s, "$$", dollarSentinel)

	missing := make(map[string]struct{})
	for _, match := range envVarPattern.FindAllStringSubmatch(s, -1) {
		key := match[1]
		if _, ok := os.LookupEnv(key); !ok {
			missing[key] = struct{}{}
		}
	}
	if len(missing) > 0 {
		keys := make([]string, 0, len(missing))
		for k := range missing {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return "", fmt.Errorf("secret: missing environment variables: %s", strings.Join(keys, ", "))
	}

	s = os.ExpandEnv(s)
	s = strings.ReplaceAll(s, dollarSentinel, "$")
	return s, nil
}

// FromFile reads a secret from path, trimming the trailing newline most
// secret mounts append.
func FromFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("secret: reading %s: %w", path, err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// Value resolves a secret that may be given directly or via a file path.
// A non-empty file path wins; otherwise the direct value is expanded.
func Value(direct, file string) (string, error) {
	if file != "" {
		return FromFile(file)
	}
	return Expand(direct)
}

package domain

import (
	"fmt"
	"os"
	"strings"

	m "tcrun.dev/pkg/tcrun/internal/model"
)

// ParseEnv parses KEY=VALUE entries. A bare KEY inherits the harness's own
// value for that variable.
func ParseEnv(entries []string) ([]m.EnvVar, error) {
	vars := make([]m.EnvVar, 0, len(entries))

	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		key, value, found := strings.Cut(entry, "=")
		key = strings.TrimSpace(key)

		if key == "" || strings.ContainsAny(key, " \t") {
			return nil, m.NewTestingError(m.InvalidTestcase, "", fmt.Errorf("invalid env entry %q", entry))
		}

		vars = append(vars, m.EnvVar{Key: key, Value: value, Inherit: !found})
	}

	return vars, nil
}

// resolveEnv renders vars as KEY=VALUE overrides. Inherited variables that
// are unset in the harness are left out.
func resolveEnv(vars []m.EnvVar) []string {
	out := make([]string, 0, len(vars))

	for _, v := range vars {
		value := v.Value

		if v.Inherit {
			hostValue, ok := os.LookupEnv(v.Key)
			if !ok {
				continue
			}

			value = hostValue
		}

		out = append(out, v.Key+"="+value)
	}

	return out
}

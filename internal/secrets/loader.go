// Package secrets resolves credentials such as API keys, SMTP passwords and
// database URLs from files, inline configuration or the environment.
package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes where a secret may come from. The first configured
// location wins, in the order File, Value, Env.
type Source struct {
	// Name is used in error messages to give more context about the secret.
	Name string
	// File points to a file containing the secret value.
	File string
	// Value is an inline secret value provided via configuration or flags.
	Value string
	// Env names an environment variable holding the secret.
	Env string
}

func (s Source) name() string {
	if name := strings.TrimSpace(s.Name); name != "" {
		return name
	}
	return "secret"
}

// Load returns the trimmed secret. It fails when no location holds a usable
// value or when a configured file cannot be read or is empty.
func Load(src Source) (string, error) {
	secret, err := resolve(src)
	if err != nil {
		return "", err
	}
	if secret == "" {
		hint := ""
		if env := strings.TrimSpace(src.Env); env != "" {
			hint = fmt.Sprintf(" (set %s)", env)
		}
		return "", fmt.Errorf("%s is not configured%s", src.name(), hint)
	}
	return secret, nil
}

// LoadOptional behaves like Load but returns an empty secret without error
// when nothing is configured. A configured file that cannot be read is still
// an error.
func LoadOptional(src Source) (string, error) {
	return resolve(src)
}

func resolve(src Source) (string, error) {
	if file := strings.TrimSpace(src.File); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", src.name(), file, err)
		}
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", src.name(), file)
		}
		return secret, nil
	}

	if secret := strings.TrimSpace(src.Value); secret != "" {
		return secret, nil
	}

	if env := strings.TrimSpace(src.Env); env != "" {
		return strings.TrimSpace(os.Getenv(env)), nil
	}
	return "", nil
}

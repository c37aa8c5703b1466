package transport

import (
	"bufio"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/casperdev-io/jss-client/pkg/jss"
)

// ResolvePassword acquires the API password from whichever input mode the
// config selects: a literal value, an interactive no-echo prompt, or a
// specific line read from a supplied input stream. Fails with
// ErrMissingConfiguration when no mode is selected.
func ResolvePassword(cfg *jss.Config) (string, error) {
	switch {
	case cfg.Password != "":
		return cfg.Password, nil

	case cfg.PromptForPassword:
		return promptPassword(cfg.User, cfg.Server)

	case cfg.PasswordLine > 0:
		return readPasswordLine(cfg)

	default:
		return "", fmt.Errorf("%w: no password source available", jss.ErrMissingConfiguration)
	}
}

func promptPassword(user, server string) (string, error) {
	fmt.Fprintf(os.Stderr, "Enter the password for JSS user %s@%s: ", user, server)

	raw, err := term.ReadPassword(int(syscall.Stdin))

	fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", fmt.Errorf("reading password from terminal: %w", err)
	}

	return string(raw), nil
}

func readPasswordLine(cfg *jss.Config) (string, error) {
	input := cfg.PasswordInput
	if input == nil {
		input = os.Stdin
	}

	scanner := bufio.NewScanner(input)

	for line := 1; scanner.Scan(); line++ {
		if line == cfg.PasswordLine {
			return scanner.Text(), nil
		}
	}

	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading password from input: %w", err)
	}

	return "", fmt.Errorf("%w: input ended before line %d", jss.ErrMissingConfiguration, cfg.PasswordLine)
}

// Package passphrase collects passwords for the stegcrypt command line,
// from the environment first and the controlling terminal otherwise.
package passphrase

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"golang.org/x/term"
)

// EnvVar holds a password that bypasses the interactive prompt.
const EnvVar = "STEGCRYPT_PASSWORD"

// ErrMismatch is returned when the confirmation differs from the password.
var ErrMismatch = errors.New("passwords do not match")

// ErrEmpty is returned when the prompt yields nothing.
var ErrEmpty = errors.New("password cannot be empty")

// Prompter reads passwords. The zero value is not usable; use New.
type Prompter struct {
	out    io.Writer
	getenv func(string) string
	read   func() ([]byte, error)
}

// New returns a Prompter writing prompts to out, usually stderr.
func New(out io.Writer) *Prompter {
	return &Prompter{
		out:    out,
		getenv: os.Getenv,
		read:   readTerminal,
	}
}

// Zero overwrites a byte slice with zeros
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

// Get returns the password from EnvVar, or prompts for it.
func (p *Prompter) Get(prompt string) ([]byte, error) {
	if envPass := p.getenv(EnvVar); envPass != "" {
		return []byte(envPass), nil
	}
	return p.prompt(prompt)
}

// GetWithConfirm is Get with a second prompt that must match the first.
// The environment variable is trusted without confirmation.
func (p *Prompter) GetWithConfirm(prompt, confirmPrompt string) ([]byte, error) {
	if envPass := p.getenv(EnvVar); envPass != "" {
		return []byte(envPass), nil
	}

	password, err := p.prompt(prompt)
	if err != nil {
		return nil, err
	}

	confirm, err := p.prompt(confirmPrompt)
	if err != nil {
		Zero(password)
		return nil, err
	}
	defer Zero(confirm)

	if !bytes.Equal(password, confirm) {
		Zero(password)
		return nil, ErrMismatch
	}
	return password, nil
}

func (p *Prompter) prompt(prompt string) ([]byte, error) {
	fmt.Fprint(p.out, prompt)
	password, err := p.read()
	fmt.Fprintln(p.out)
	if err != nil {
		return nil, err
	}
	if len(password) == 0 {
		return nil, ErrEmpty
	}
	return password, nil
}

func readTerminal() ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		return term.ReadPassword(fd)
	}

	// STDIN is piped, fall back to the controlling terminal
	tty, err := os.Open("/dev/tty")
	if err != nil {
		return nil, fmt.Errorf("cannot read password: STDIN is piped and no terminal is available, set %s", EnvVar)
	}
	defer tty.Close()

	return term.ReadPassword(int(tty.Fd()))
}

package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// stdin and stderr are swapped out in tests.
var (
	stdin  io.Reader = os.Stdin
	stderr io.Writer = os.Stderr
)

// ask prints prompt to stderr and returns one line of input without its
// line ending. EOF after partial input is not an error.
func ask(prompt string) (string, error) {
	fmt.Fprint(stderr, prompt)
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// confirm asks a yes/no question. Anything but "y" or "yes" means no.
func confirm(prompt string) bool {
	answer, err := ask(prompt + " [y/N] ")
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

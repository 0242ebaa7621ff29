package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword
var readPassword = term.ReadPassword

// promptLine prints a prompt and reads one trimmed line of input. A
// partial line before EOF is still returned.
func promptLine(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password from the terminal without echo
func promptPassword(prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// promptFloat reads a line and parses it as a decimal number
func promptFloat(reader *bufio.Reader, prompt string, w io.Writer) (float64, error) {
	line, err := promptLine(reader, prompt, w)
	if err != nil {
		return 0, err
	}
	var v float64
	if _, err := fmt.Sscanf(line, "%g", &v); err != nil {
		return 0, fmt.Errorf("invalid number %q", line)
	}
	return v, nil
}

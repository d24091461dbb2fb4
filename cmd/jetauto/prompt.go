package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
)

var errAborted = errors.New("aborted before start")

// waitForEnter blocks until the operator confirms. On a terminal it shows a
// confirm form; otherwise it reads one line, and end of input counts as
// confirmation.
func waitForEnter(in *os.File, prompt string) error {
	if !isatty.IsTerminal(in.Fd()) && !isatty.IsCygwinTerminal(in.Fd()) {
		return readLine(in, os.Stderr, prompt)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(prompt).
				Affirmative("Begin").
				Negative("").
				Value(new(bool)),
		),
	)
	if err := form.Run(); err != nil {
		return errAborted
	}
	return nil
}

func readLine(r io.Reader, w io.Writer, prompt string) error {
	fmt.Fprintln(w, prompt)
	_, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

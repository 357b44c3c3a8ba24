package repl

import (
	"errors"
	"io"

	"github.com/manifoldco/promptui"
)

// ErrInterrupt is returned by a LineReader when the user presses Ctrl-C at
// the prompt.
var ErrInterrupt = errors.New("interrupted")

// LineReader reads one line of user input. Implementations return
// ErrInterrupt for Ctrl-C and io.EOF for end of input.
type LineReader interface {
	ReadLine() (string, error)
}

// PromptReader reads lines with promptui.
type PromptReader struct {
	prompt promptui.Prompt
}

// NewPromptReader creates a reader with the cyan bold "You:" prompt. Nil
// streams default to the terminal.
func NewPromptReader(in io.ReadCloser, out io.WriteCloser) *PromptReader {
	tmpl := "{{ . | cyan | bold }} "
	return &PromptReader{
		prompt: promptui.Prompt{
			Label: "You:",
			Templates: &promptui.PromptTemplates{
				Prompt:  tmpl,
				Valid:   tmpl,
				Invalid: tmpl,
				Success: tmpl,
			},
			Stdin:  in,
			Stdout: out,
		},
	}
}

// ReadLine implements LineReader.
func (r *PromptReader) ReadLine() (string, error) {
	line, err := r.prompt.Run()
	switch {
	case errors.Is(err, promptui.ErrInterrupt):
		return "", ErrInterrupt
	case errors.Is(err, promptui.ErrEOF):
		return "", io.EOF
	}
	return line, err
}

// Package render writes chat output to the terminal: model replies as
// markdown, failures as highlighted plain text.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// Config controls markdown output.
type Config struct {
	// Style is a glamour standard style name or "auto".
	Style    string
	WordWrap int
	Out      io.Writer
}

// Renderer formats replies, errors and notices for one output stream.
type Renderer struct {
	out    io.Writer
	md     *glamour.TermRenderer
	styles styles
}

type styles struct {
	banner lipgloss.Style
	err    lipgloss.Style
	hint   lipgloss.Style
	notice lipgloss.Style
	label  lipgloss.Style
}

// New builds a renderer. Banner, error and notice colors are detected from
// Out. glamour only detects the terminal on stdout, so "auto" falls back to
// the notty style when Out is any other writer.
func New(cfg Config) (*Renderer, error) {
	if cfg.Out == nil {
		return nil, fmt.Errorf("render: output writer is required")
	}

	var opts []glamour.TermRendererOption
	switch cfg.Style {
	case "", "auto":
		if cfg.Out == os.Stdout {
			opts = append(opts, glamour.WithAutoStyle())
		} else {
			opts = append(opts, glamour.WithStandardStyle("notty"))
		}
	default:
		opts = append(opts, glamour.WithStandardStyle(cfg.Style))
	}
	if cfg.WordWrap > 0 {
		opts = append(opts, glamour.WithWordWrap(cfg.WordWrap))
	}

	md, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("render: failed to create markdown renderer: %w", err)
	}

	lr := lipgloss.NewRenderer(cfg.Out)
	return &Renderer{
		out: cfg.Out,
		md:  md,
		styles: styles{
			banner: lr.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
			err:    lr.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
			hint:   lr.NewStyle().Foreground(lipgloss.Color("242")),
			notice: lr.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
			label:  lr.NewStyle().Foreground(lipgloss.Color("10")),
		},
	}, nil
}

// Markdown renders a model reply.
func (r *Renderer) Markdown(text string) error {
	out, err := r.md.Render(text)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = io.WriteString(r.out, out)
	return err
}

// Error prints a failure message in red bold.
func (r *Renderer) Error(msg string) error {
	return r.line(r.styles.err.Render(msg))
}

// Banner prints the startup banner.
func (r *Renderer) Banner(title, hint string) error {
	return r.line(r.styles.banner.Render(title) + " " + r.styles.hint.Render(hint))
}

// Notice prints yellow bold status text such as the farewell.
func (r *Renderer) Notice(msg string) error {
	return r.line(r.styles.notice.Render(msg))
}

// Model is one entry of a model listing.
type Model struct {
	Name             string
	DisplayName      string
	SupportedMethods []string
}

// Models prints a model listing, each entry followed by a separator.
func (r *Renderer) Models(models []Model) error {
	for _, m := range models {
		lines := []string{
			"  " + r.styles.label.Render("Model:") + " " + m.Name,
			"  " + r.styles.label.Render("Display Name:") + " " + m.DisplayName,
			"  " + r.styles.label.Render("Supported Methods:") + " " + strings.Join(m.SupportedMethods, ", "),
			strings.Repeat("-", 20),
		}
		for _, l := range lines {
			if err := r.line(l); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Renderer) line(s string) error {
	_, err := fmt.Fprintln(r.out, s)
	return err
}

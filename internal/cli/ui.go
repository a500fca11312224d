package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorDim    = lipgloss.Color("240")
)

const (
	iconSuccess = "✓"
	iconWarning = "!"
)

// printer writes status lines to a command's output. Styles are bound to
// the writer so colors drop out when it is not a terminal.
type printer struct {
	w       io.Writer
	ok      lipgloss.Style
	warn    lipgloss.Style
	dim     lipgloss.Style
}

func newPrinter(w io.Writer) *printer {
	r := lipgloss.NewRenderer(w)
	return &printer{
		w:    w,
		ok:   r.NewStyle().Foreground(colorGreen),
		warn: r.NewStyle().Foreground(colorYellow),
		dim:  r.NewStyle().Foreground(colorDim),
	}
}

// success prints a line prefixed with a check mark.
func (p *printer) success(format string, args ...any) {
	fmt.Fprintln(p.w, p.ok.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

// warning prints a highlighted warning line.
func (p *printer) warning(format string, args ...any) {
	fmt.Fprintln(p.w, p.warn.Render(iconWarning)+" "+p.warn.Render(fmt.Sprintf(format, args...)))
}

// detail prints an indented, muted line.
func (p *printer) detail(format string, args ...any) {
	fmt.Fprintln(p.w, "  "+p.dim.Render(fmt.Sprintf(format, args...)))
}

package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Label colors for the row printer.
var (
	methodColor    = color.New(color.FgMagenta, color.Bold)
	successColor   = color.New(color.FgGreen, color.Bold)
	redirectColor  = color.New(color.FgYellow, color.Bold)
	clientErrColor = color.New(color.FgRed, color.Bold)
	errorColor     = color.New(color.FgCyan, color.Bold)
	dimColor       = color.New(color.Faint)
)

// Printer writes one row per proxy event. Rows from concurrent handlers never interleave.
type Printer struct {
	mu      sync.Mutex
	out     io.Writer
	noColor bool
}

func NewPrinter(out io.Writer, noColor bool) *Printer {
	return &Printer{out: out, noColor: noColor}
}

// Row prints "<no>  <label>  <detail>".
func (p *Printer) Row(no uint64, label, detail string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s  %s  %s\n", p.paint(dimColor, fmt.Sprintf("%5d", no)), label, sanitize(detail))
}

// Request prints the start of an exchange.
func (p *Printer) Request(no uint64, method, href string) {
	p.Row(no, p.paint(methodColor, fmt.Sprintf("%-7s", method)), href)
}

// Response prints a completed exchange.
func (p *Printer) Response(no uint64, status int, href string) {
	p.Row(no, p.paint(statusColor(status), fmt.Sprintf("%-7d", status)), href)
}

// Error prints a forward failure.
func (p *Printer) Error(no uint64, detail string) {
	p.Row(no, p.paint(errorColor, fmt.Sprintf("%-7s", "ERROR")), detail)
}

// Println writes a plain line, used for summaries.
func (p *Printer) Println(a ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, a...)
}

func (p *Printer) paint(c *color.Color, s string) string {
	if p.noColor {
		return s
	}
	cc := *c
	cc.EnableColor()
	return cc.Sprint(s)
}

func statusColor(code int) *color.Color {
	switch {
	case code >= 200 && code < 300:
		return successColor
	case code >= 300 && code < 400:
		return redirectColor
	default:
		return clientErrColor
	}
}

// sanitize drops terminal escape sequences from untrusted text.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\x1b' || (r < 0x20 && r != '\n' && r != '\t') || r == 0x7f {
			return -1
		}
		return r
	}, s)
}

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// printer writes the human-readable progress lines. With structured output
// selected only messages sent through always are kept, and they go to
// errOut so stdout stays parseable.
type printer struct {
	out    io.Writer
	errOut io.Writer
	text   bool
}

func newPrinter(out, errOut io.Writer, text bool) *printer {
	return &printer{out: out, errOut: errOut, text: text}
}

var (
	infoColor    = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
)

func (p *printer) info(format string, args ...any) {
	p.colored(infoColor, format, args...)
}

func (p *printer) success(format string, args ...any) {
	p.colored(successColor, format, args...)
}

func (p *printer) warn(format string, args ...any) {
	p.colored(warnColor, format, args...)
}

func (p *printer) plain(format string, args ...any) {
	if !p.text {
		return
	}
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *printer) blank() {
	if p.text {
		fmt.Fprintln(p.out)
	}
}

func (p *printer) always(msg string) {
	if p.text {
		fmt.Fprintln(p.out, msg)
		return
	}
	fmt.Fprintln(p.errOut, msg)
}

func (p *printer) colored(c *color.Color, format string, args ...any) {
	if !p.text {
		return
	}
	_, _ = c.Fprintf(p.out, format+"\n", args...)
}

// renderStructured writes v as indented JSON or YAML. Text format is a
// no-op; callers print their own text.
func renderStructured(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
	}
	return nil
}

func renderResults(w io.Writer, format string, results []driverResult) error {
	if results == nil {
		results = []driverResult{}
	}
	return renderStructured(w, format, results)
}

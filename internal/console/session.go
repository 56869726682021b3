// Package console drives a sheet from a line-oriented command language, used
// both for scripts and for the interactive REPL.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vogtb/go-spreadsheet/internal/config"
	"github.com/vogtb/go-spreadsheet/packages/spreadsheet"
)

const commentPrefix = "#"

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage")
)

const helpText = `set ADDR [TEXT]     write TEXT into a cell (no TEXT empties it)
get ADDR            print the computed value
text ADDR           print the cell text
clear ADDR          clear a cell
refs ADDR           print the cells ADDR reads
deps ADDR           print the cells that read ADDR
size                print the printable size as "rows cols"
print [values|texts]
dump                list every stored cell
stats               print sheet counters
help
`

// Session executes commands against one sheet and writes their output.
type Session struct {
	sheet     *spreadsheet.Sheet
	out       io.Writer
	gatherer  prometheus.Gatherer
	printMode string
	logger    *slog.Logger
}

type Option func(*Session)

// WithGatherer enables the stats command, reading counters from g.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Session) {
		s.gatherer = g
	}
}

// WithPrintMode sets what a bare print shows: config.PrintValues or
// config.PrintTexts.
func WithPrintMode(mode string) Option {
	return func(s *Session) {
		s.printMode = mode
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

func NewSession(sheet *spreadsheet.Sheet, out io.Writer, opts ...Option) *Session {
	s := &Session{
		sheet:     sheet,
		out:       out,
		printMode: config.PrintValues,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sheet returns the sheet the session writes to
func (s *Session) Sheet() *spreadsheet.Sheet {
	return s.sheet
}

// Run executes every line of r and stops at the first failing command. the
// returned error names the line it came from.
func (s *Session) Run(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := s.Exec(scanner.Text()); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	return scanner.Err()
}

// Exec executes a single command line. blank lines and comments are
// ignored.
func (s *Session) Exec(line string) error {
	line = strings.TrimRight(line, "\r\n")
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, commentPrefix) {
		return nil
	}

	// the cell text is everything after the address, spaces included
	command, rest := cutWord(line)
	address, text := cutWord(rest)

	s.logger.Debug("exec", slog.String("command", command), slog.String("address", address))

	switch command {
	case "set":
		if address == "" {
			return usage("set ADDR [TEXT]")
		}
		return s.sheet.Set(address, text)
	case "get":
		return s.withAddress(command, address, text, s.printValue)
	case "text":
		return s.withAddress(command, address, text, s.printText)
	case "clear":
		return s.withAddress(command, address, text, s.sheet.Clear)
	case "refs":
		return s.withAddress(command, address, text, func(address string) error {
			return s.printEdges(address, (*spreadsheet.Cell).References)
		})
	case "deps":
		return s.withAddress(command, address, text, func(address string) error {
			return s.printEdges(address, (*spreadsheet.Cell).Dependents)
		})
	case "size":
		size := s.sheet.PrintableSize()
		_, err := fmt.Fprintf(s.out, "%d %d\n", size.Rows, size.Cols)
		return err
	case "print":
		return s.print(strings.TrimSpace(rest))
	case "dump":
		return s.dump()
	case "stats":
		return s.stats()
	case "help":
		_, err := io.WriteString(s.out, helpText)
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}
}

// cutWord splits off the first whitespace-delimited word of s. leading
// whitespace is skipped and a single separator after the word is dropped,
// so the remainder comes back verbatim.
func cutWord(s string) (word, rest string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	_, size := utf8.DecodeRuneInString(s[i:])
	return s[:i], s[i+size:]
}

func usage(syntax string) error {
	return fmt.Errorf("%w: %s", ErrUsage, syntax)
}

func (s *Session) withAddress(command, address, extra string, fn func(string) error) error {
	if address == "" || strings.TrimSpace(extra) != "" {
		return usage(command + " ADDR")
	}
	return fn(address)
}

func (s *Session) printValue(address string) error {
	value, err := s.sheet.Get(address)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(s.out, spreadsheet.FormatValue(value))
	return err
}

func (s *Session) printText(address string) error {
	cell, err := s.sheet.Cell(address)
	if err != nil {
		return err
	}
	text := ""
	if cell != nil {
		text = cell.Text()
	}
	_, err = fmt.Fprintln(s.out, text)
	return err
}

func (s *Session) printEdges(address string, edges func(*spreadsheet.Cell) []spreadsheet.Position) error {
	cell, err := s.sheet.Cell(address)
	if err != nil {
		return err
	}
	var names []string
	if cell != nil {
		for _, pos := range edges(cell) {
			names = append(names, pos.String())
		}
	}
	_, err = fmt.Fprintln(s.out, strings.Join(names, " "))
	return err
}

func (s *Session) print(mode string) error {
	if mode == "" {
		mode = s.printMode
	}
	switch mode {
	case config.PrintValues:
		return s.sheet.PrintValues(s.out)
	case config.PrintTexts:
		return s.sheet.PrintTexts(s.out)
	default:
		return usage("print [values|texts]")
	}
}

func (s *Session) dump() error {
	for _, cell := range s.sheet.Cells() {
		_, err := fmt.Fprintf(s.out, "%s\t%s\t%s\n",
			cell.Position(), cell.Text(), spreadsheet.FormatValue(cell.Value()))
		if err != nil {
			return err
		}
	}
	return nil
}

// stats prints every counter of the sheet collectors, one sample per line.
func (s *Session) stats() error {
	if s.gatherer == nil {
		return errors.New("stats: metrics are not enabled")
	}

	families, err := s.gatherer.Gather()
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	for _, family := range families {
		if family.GetType() != dto.MetricType_COUNTER {
			continue
		}
		for _, metric := range family.GetMetric() {
			_, err := fmt.Fprintf(s.out, "%s%s %g\n",
				family.GetName(), formatLabels(metric.GetLabel()), metric.GetCounter().GetValue())
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func formatLabels(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(labels))
	for _, label := range labels {
		pairs = append(pairs, fmt.Sprintf("%s=%q", label.GetName(), label.GetValue()))
	}
	return "{" + strings.Join(pairs, ",") + "}"
}

package console

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/vogtb/go-spreadsheet/internal/config"
)

// RunREPL reads commands from the terminal until EOF or "quit". errors from
// commands are printed and the loop goes on.
func RunREPL(session *Session, cfg config.REPLConfig) error {
	cli := liner.NewLiner()
	defer cli.Close()

	cli.SetCtrlCAborts(true)
	cli.SetWordCompleter(completeCommand)

	if cfg.HistoryFile != "" {
		if f, err := os.Open(cfg.HistoryFile); err == nil {
			cli.ReadHistory(f)
			f.Close()
		}
	}

	for {
		line, err := cli.Prompt(cfg.Prompt)
		switch {
		case err == nil:
		case errors.Is(err, liner.ErrPromptAborted):
			// ctrl-c drops the current line
			continue
		case errors.Is(err, io.EOF):
			fmt.Fprintln(session.out)
			return saveHistory(cli, cfg.HistoryFile)
		default:
			return err
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "quit" || trimmed == "exit" {
			return saveHistory(cli, cfg.HistoryFile)
		}
		if trimmed != "" {
			cli.AppendHistory(line)
		}

		if err := session.Exec(line); err != nil {
			fmt.Fprintf(session.out, "error: %v\n", err)
		}
	}
}

func saveHistory(cli *liner.State, path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	defer f.Close()
	_, err = cli.WriteHistory(f)
	return err
}

var commandNames = []string{
	"set", "get", "text", "clear", "refs", "deps",
	"size", "print", "dump", "stats", "help", "quit",
}

// completeCommand completes the command word at the start of the line
func completeCommand(line string, pos int) (head string, completions []string, tail string) {
	head, tail = line[:pos], line[pos:]
	if strings.ContainsAny(head, " \t") {
		return head, nil, tail
	}
	for _, name := range commandNames {
		if strings.HasPrefix(name, head) {
			completions = append(completions, name)
		}
	}
	return "", completions, tail
}

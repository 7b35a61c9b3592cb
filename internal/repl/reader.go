package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

// ErrAborted is returned by a LineReader when the user presses Ctrl+C at
// the prompt.
var ErrAborted = errors.New("prompt aborted")

// LineReader reads one line of input after printing a prompt. It returns
// io.EOF when input ends.
type LineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// LinerReader provides line editing and persistent input history on a
// terminal.
type LinerReader struct {
	line        *liner.State
	historyFile string
}

// NewLinerReader creates a terminal reader. An empty historyFile disables
// history persistence.
func NewLinerReader(historyFile string) *LinerReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	r := &LinerReader{line: line, historyFile: historyFile}
	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
	}
	return r
}

func (r *LinerReader) ReadLine(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", ErrAborted
		}
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// Close writes the input history and restores the terminal.
func (r *LinerReader) Close() error {
	var saveErr error
	if r.historyFile != "" {
		saveErr = r.saveHistory()
	}
	if err := r.line.Close(); err != nil {
		return err
	}
	return saveErr
}

func (r *LinerReader) saveHistory() error {
	if err := os.MkdirAll(filepath.Dir(r.historyFile), 0o700); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}
	f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("opening history file: %w", err)
	}
	defer f.Close()
	if _, err := r.line.WriteHistory(f); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	return nil
}

// PlainReader reads lines from a non-terminal input such as a pipe.
type PlainReader struct {
	sc  *bufio.Scanner
	out io.Writer
}

// NewPlainReader creates a reader over in that echoes prompts to out.
func NewPlainReader(in io.Reader, out io.Writer) *PlainReader {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &PlainReader{sc: sc, out: out}
}

func (r *PlainReader) ReadLine(prompt string) (string, error) {
	if r.out != nil {
		fmt.Fprint(r.out, prompt)
	}
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.sc.Text(), nil
}

func (r *PlainReader) Close() error { return nil }

package console

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/peterh/liner"
)

// IO is what a running program sees of the outside world: one output line
// per print and one input line per read.
type IO interface {
	Output(line string) error
	Input() (string, error)
}

var (
	ErrInputExhausted = errors.New("no more scripted input")
	ErrInterrupted    = errors.New("input interrupted")
)

// Terminal writes to out and reads lines with liner, which edits lines on a
// TTY and falls back to plain reads when stdin is redirected.
type Terminal struct {
	out io.Writer

	once sync.Once
	line *liner.State
}

func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

func (t *Terminal) Output(line string) error {
	_, err := fmt.Fprintln(t.out, line)
	return err
}

func (t *Terminal) Input() (string, error) {
	t.once.Do(func() {
		t.line = liner.NewLiner()
		t.line.SetCtrlCAborts(true)
	})

	s, err := t.line.Prompt("")
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", ErrInterrupted
	}
	if err != nil {
		return "", err
	}
	t.line.AppendHistory(s)
	return s, nil
}

// Close restores the terminal if input was ever read.
func (t *Terminal) Close() error {
	if t.line == nil {
		return nil
	}
	return t.line.Close()
}

// Script replays a fixed input sequence and records every output line.
type Script struct {
	inputs []string
	next   int
	lines  []string
	echo   io.Writer
}

func NewScript(inputs ...string) *Script {
	return &Script{inputs: inputs, lines: []string{}}
}

// ScriptFromText splits text into one input per line.
func ScriptFromText(text string) *Script {
	text = strings.TrimSuffix(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if text == "" {
		return NewScript()
	}
	return NewScript(strings.Split(text, "\n")...)
}

// Echo makes the script also write each output line to w.
func (s *Script) Echo(w io.Writer) *Script {
	s.echo = w
	return s
}

func (s *Script) Output(line string) error {
	s.lines = append(s.lines, line)
	if s.echo != nil {
		if _, err := fmt.Fprintln(s.echo, line); err != nil {
			return err
		}
	}
	return nil
}

func (s *Script) Input() (string, error) {
	if s.next >= len(s.inputs) {
		return "", ErrInputExhausted
	}
	in := s.inputs[s.next]
	s.next++
	return in, nil
}

// Lines returns the output captured so far.
func (s *Script) Lines() []string {
	return s.lines
}

func (s *Script) Remaining() int {
	return len(s.inputs) - s.next
}

package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrInterrupt is returned by ReadLine when the user pressed Ctrl+C.
var ErrInterrupt = errors.New("interrupted")

// LineReader reads one line of user input. It returns io.EOF at end of
// input and ErrInterrupt on Ctrl+C.
type LineReader interface {
	ReadLine(ctx context.Context, prompt string) (string, error)
}

type lineResult struct {
	line string
	err  error
}

// PipeReader reads lines from a non-interactive input. A background
// goroutine scans the input so that a read can be abandoned on interrupt.
type PipeReader struct {
	in         io.Reader
	out        io.Writer
	interrupts <-chan os.Signal
	lines      chan lineResult
	done       chan struct{}
	start      sync.Once
	stop       sync.Once
}

func NewPipeReader(in io.Reader, out io.Writer, interrupts <-chan os.Signal) *PipeReader {
	return &PipeReader{
		in:         in,
		out:        out,
		interrupts: interrupts,
		lines:      make(chan lineResult),
		done:       make(chan struct{}),
	}
}

func (p *PipeReader) scan() {
	defer close(p.lines)
	sc := bufio.NewScanner(p.in)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		select {
		case p.lines <- lineResult{line: sc.Text()}:
		case <-p.done:
			return
		}
	}
	err := sc.Err()
	if err == nil {
		err = io.EOF
	}
	select {
	case p.lines <- lineResult{err: err}:
	case <-p.done:
	}
}

func (p *PipeReader) ReadLine(ctx context.Context, prompt string) (string, error) {
	p.start.Do(func() { go p.scan() })
	fmt.Fprint(p.out, prompt)

	select {
	case r, ok := <-p.lines:
		if !ok {
			return "", io.EOF
		}
		return r.line, r.err
	case <-p.interrupts:
		fmt.Fprintln(p.out)
		return "", ErrInterrupt
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close stops the scanner goroutine once its pending read returns.
func (p *PipeReader) Close() error {
	p.stop.Do(func() { close(p.done) })
	return nil
}

// EditorReader reads lines on a terminal with a single-line editor that
// supports cursor movement and up/down history recall.
type EditorReader struct {
	in      io.Reader
	out     io.Writer
	history *History
}

func NewEditorReader(in io.Reader, out io.Writer, history *History) *EditorReader {
	return &EditorReader{in: in, out: out, history: history}
}

func (e *EditorReader) ReadLine(ctx context.Context, prompt string) (string, error) {
	var past []string
	if e.history != nil {
		past = e.history.Lines()
	}
	p := tea.NewProgram(newLineModel(prompt, past),
		tea.WithContext(ctx),
		tea.WithInput(e.in),
		tea.WithOutput(e.out),
		tea.WithoutSignalHandler(),
	)
	final, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	m := final.(lineModel)
	return m.value, m.err
}

type lineModel struct {
	input   textinput.Model
	history []string
	pos     int
	draft   string
	value   string
	err     error
	done    bool
}

func newLineModel(prompt string, history []string) lineModel {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.CharLimit = 0
	ti.Focus()
	return lineModel{input: ti, history: history, pos: len(history)}
}

func (m lineModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m lineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC:
			m.err = ErrInterrupt
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlD:
			if m.input.Value() == "" {
				m.err = io.EOF
				m.done = true
				return m, tea.Quit
			}
		case tea.KeyEnter:
			m.value = m.input.Value()
			m.done = true
			return m, tea.Quit
		case tea.KeyUp:
			if m.pos > 0 {
				if m.pos == len(m.history) {
					m.draft = m.input.Value()
				}
				m.pos--
				m.input.SetValue(m.history[m.pos])
				m.input.CursorEnd()
			}
			return m, nil
		case tea.KeyDown:
			if m.pos < len(m.history) {
				m.pos++
				if m.pos == len(m.history) {
					m.input.SetValue(m.draft)
				} else {
					m.input.SetValue(m.history[m.pos])
				}
				m.input.CursorEnd()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m lineModel) View() string {
	if m.done {
		return m.input.Prompt + m.input.Value() + "\n"
	}
	return m.input.View()
}

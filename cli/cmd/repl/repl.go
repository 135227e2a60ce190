package repl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/afero"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/run/lang"
	"github.com/ardnew/run/log"
)

// execDoneMsg is sent when a line run with the terminal released returns.
type execDoneMsg struct{}

// editDoneMsg is sent when the editor session on the Runfile ends.
type editDoneMsg struct{ err error }

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help                Print this cruft
  list                List Runfile functions
  call NAME [ARGS]    Call a function as from the command line
  vars                List variables
  dump                Print the session as Runfile source
  edit                Edit the Runfile in $EDITOR
  reload              Reload definitions from the Runfile
  clear               Clear screen
  quit                Exit REPL

Usage:
  Type a Runfile statement to run it: an assignment, a definition,
  a call such as build() or greet(World), or a shell command
  Completions for functions (and variables after $) appear as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Press Esc to toggle between eval and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
//
//nolint:gochecknoglobals
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	signatureStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("3")).
				Bold(true).
				Underline(true)
)

// formatCommand formats the command echo line with prompt and input styled.
func formatCommand(input string) string {
	return promptStyle.Render(evalPrompt) + inputStyle.Render(input)
}

// formatCtrlCommand formats the control command echo line with prompt and input
// styled.
func formatCtrlCommand(input string) string {
	return ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input)
}

// Config configures a REPL.
type Config struct {
	Session *Session
	Shell   string // shown in the banner
	Version string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	FS       afero.Fs // history storage
	CacheDir string   // history directory; empty keeps history in memory
	Editor   string   // editor command for "edit"

	Logger log.Logger
}

// Run loads the session's Runfile and evaluates input until the user exits.
// Problems loading the Runfile are reported as warnings. The interactive
// line editor is used when stdin and stdout are terminals; otherwise input
// is read one line at a time.
func Run(ctx context.Context, cfg Config) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if cfg.Session == nil {
		return ErrNoSession
	}

	if cfg.FS == nil {
		cfg.FS = afero.NewOsFs()
	}

	cfg.Logger.TraceContext(ctx, "repl start",
		slog.String("runfile", cfg.Session.Runfile()),
		slog.String("cache_dir", cfg.CacheDir))

	fmt.Fprintf(cfg.Stdout, "Run Shell %s (%s)\n", cfg.Version, cfg.Shell)
	fmt.Fprint(cfg.Stdout, "Type 'exit' or press Ctrl+D to quit\n\n")

	if err := cfg.Session.Load(ctx); err != nil {
		if errors.Is(err, lang.ErrParse) {
			fmt.Fprintf(cfg.Stderr, "Warning: Error parsing Runfile: %v\n", err)
		} else {
			fmt.Fprintf(cfg.Stderr, "Warning: Error loading Runfile functions: %v\n", err)
		}
	}

	cfg.Session.Status()

	if !IsTerminal(cfg.Stdin, cfg.Stdout) {
		return runLines(ctx, cfg)
	}

	return runProgram(ctx, cfg)
}

// runProgram runs the interactive line editor.
func runProgram(ctx context.Context, cfg Config) error {
	var path string
	if cfg.CacheDir != "" {
		path = filepath.Join(cfg.CacheDir, baseHistory)
	}

	history := NewHistory(cfg.FS, path)
	if err := history.Load(); err != nil {
		fmt.Fprintf(cfg.Stderr, "Warning: could not load history: %v\n", err)
	}

	cfg.Logger.TraceContext(ctx, "repl history loaded",
		slog.Int("entry_count", history.Len()))

	p := tea.NewProgram(
		newModel(ctx, cfg, history),
		tea.WithContext(ctx),
		tea.WithInput(cfg.Stdin),
		tea.WithOutput(cfg.Stdout),
	)

	if runfile := cfg.Session.Runfile(); runfile != "" {
		stop, err := watch(ctx, runfile, p.Send, cfg.Logger)
		if err != nil {
			cfg.Logger.DebugContext(ctx, "runfile watch", slog.Any("error", err))
		} else {
			defer stop()
		}
	}

	if _, err := p.Run(); err != nil {
		return err
	}

	fmt.Fprintln(cfg.Stdout, "Goodbye!")

	return nil
}

const defaultWidth = 80

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	session      *Session
	logger       log.Logger
	history      *History
	historyIdx   int
	editor       string
	stderr       io.Writer
	matches      fuzzy.Matches // current fuzzy match results
	candidates   []string      // backing candidate list
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	quitting     bool
	mode         inputMode
	evalText     string
	evalCursor   int
	ctrlText     string
	ctrlCursor   int
}

func newModel(ctx context.Context, cfg Config, history *History) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		session:    cfg.Session,
		logger:     cfg.Logger,
		history:    history,
		historyIdx: history.Len(),
		editor:     cfg.Editor,
		stderr:     cfg.Stderr,
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeEval,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil

	case execDoneMsg:
		if status := m.session.Status(); !status.Success() {
			return m, tea.Println(
				hintStyle.Render("exit status " + strconv.Itoa(int(status))),
			)
		}

		return m, nil

	case runfileChangedMsg:
		return m, m.reload(false)

	case editDoneMsg:
		switch {
		case errors.Is(msg.err, ErrEditDeclined):
			return m, tea.Println(
				hintStyle.Render("🗴 — edit declined, definitions unchanged"),
			)

		case msg.err != nil:
			return m, tea.Println(errorStyle.Render("🗴 — error: " + msg.err.Error()))
		}

		return m, m.reload(true)
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.hintView())
	b.WriteString("\n")

	return b.String()
}

// hintView renders the line below the input: the history position, a usage
// hint, the definition of the function being called, or the completion
// candidates.
func (m model) hintView() string {
	input := m.input.Value()

	if m.historyIdx < m.history.Len() {
		return hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len()))
	}

	if strings.TrimSpace(input) == "" {
		if m.mode == modeEval {
			return hintStyle.Render("Type a statement or press Esc for commands")
		}

		return hintStyle.Render("Type: " + strings.Join(ctrlCommands, ", ") +
			" (press Esc to return)")
	}

	if !m.tabActive {
		call := detectFunctionCall(input, m.input.Position())
		if m.mode == modeCtrl {
			call = detectCommandCall(m.session, input)
		}

		if hint := signatureHint(m.session, call); hint != "" && len(m.matches) == 0 {
			return hint
		}
	}

	return renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width)
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctxFunc(), "repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)))

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}
		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyPrev(), nil

	case tea.KeyDown:
		return m.historyNext(), nil

	case tea.KeyShiftUp:
		return m.historyPrevInMode(), nil

	case tea.KeyShiftDown:
		return m.historyNextInMode(), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		return m.toggleMode(), nil

	case tea.KeyRunes, tea.KeySpace:
		// Space breaks out of tab-cycling, accepting the candidate.
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// For any other key (backspace, delete, arrows, etc.),
	// update input and recompute matches without auto-confirm.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the tab selection by step through the candidates. A single
// candidate is completed and confirmed immediately.
func (m model) cycle(step int) model {
	n := len(m.matches)
	if n == 0 {
		return m
	}

	if n == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	if m.tabActive {
		m.suggIdx = (m.suggIdx + step + n) % n
	} else {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = n - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word boundaries in the input with
// the given replacement text and repositions the cursor.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	newInput := input[:m.wordStart] + replacement + input[m.wordEnd:]
	newCursor := m.wordStart + len(replacement)

	m.input.SetValue(newInput)
	m.input.SetCursor(newCursor)

	m.wordEnd = newCursor
}

// refreshMatches recomputes fuzzy matches for the current input state.
// When autoConfirm is true it also confirms the completion when exactly one
// candidate remains and the typed word already equals it. Deletions and
// cursor movement pass false so editing never completes unexpectedly.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.evalText, m.evalCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0
	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.DebugContext(m.ctxFunc(), "repl history", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		m.logger.TraceContext(m.ctxFunc(), "repl command", slog.String("input", input))

		return m.executeCommand(input)
	}

	m.logger.TraceContext(m.ctxFunc(), "repl eval", slog.String("input", input))

	echo := tea.Println(formatCommand(input))

	if input == "exit" || input == "quit" {
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)
	}

	return m, tea.Sequence(echo, m.exec(m.session.Eval, input))
}

// exec runs line with fn while the terminal is released, so that commands
// have direct use of it.
func (m model) exec(
	fn func(context.Context, string) error,
	line string,
) tea.Cmd {
	cmd := &execCommand{
		ctx:    m.ctxFunc(),
		fn:     fn,
		line:   line,
		stderr: m.stderr,
	}

	return tea.Exec(cmd, func(error) tea.Msg { return execDoneMsg{} })
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	name, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	echo := tea.Println(formatCtrlCommand(input))

	m.logger.TraceContext(m.ctxFunc(), "repl exec command",
		slog.String("command", name),
		slog.String("args", rest))

	switch name {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage()))

	case "l", "list":
		return m, tea.Sequence(echo, tea.Println(m.listFunctions()))

	case "call":
		if rest == "" {
			return m, tea.Sequence(echo,
				tea.Println(errorStyle.Render("usage: call NAME [ARGS...]")))
		}

		return m, tea.Sequence(echo, m.exec(m.session.Call, rest))

	case "v", "vars":
		return m, tea.Sequence(echo, tea.Println(m.listVariables()))

	case "d", "dump":
		var buf bytes.Buffer
		if err := m.session.Dump(m.ctxFunc(), &buf); err != nil {
			return m, tea.Sequence(echo, tea.Println(errorStyle.Render(err.Error())))
		}

		return m, tea.Sequence(echo, tea.Println(strings.TrimRight(buf.String(), "\n")))

	case "e", "edit":
		return m, tea.Sequence(echo, m.edit())

	case "r", "reload":
		return m, tea.Sequence(echo, m.reload(true))

	case "c", "clear":
		return m, tea.ClearScreen

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + name + " (try 'help')"),
		)
	}
}

func (m model) edit() tea.Cmd {
	path := m.session.Runfile()
	if path == "" {
		return tea.Println(errorStyle.Render("🗴 — error: " + ErrNoRunfile.Error()))
	}

	cmd := &editCommand{
		ctx:    m.ctxFunc(),
		editor: m.editor,
		path:   path,
		logger: m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg { return editDoneMsg{err: err} })
}

// reload applies the Runfile's definitions if it changed. An unchanged
// Runfile is only reported when verbose.
func (m model) reload(verbose bool) tea.Cmd {
	path := m.session.Runfile()
	if path == "" {
		if !verbose {
			return nil
		}

		return tea.Println(errorStyle.Render("🗴 — error: " + ErrNoRunfile.Error()))
	}

	n, changed, err := m.session.Reload(m.ctxFunc())

	switch {
	case err != nil:
		var buf bytes.Buffer

		report(&buf, err)

		return tea.Println(errorStyle.Render(strings.TrimRight(buf.String(), "\n")))

	case changed:
		return tea.Println(resultStyle.Render(fmt.Sprintf(
			"✔ — reloaded %s (%d definitions)", filepath.Base(path), n)))

	case verbose:
		return tea.Println(hintStyle.Render(filepath.Base(path) + " unchanged"))

	default:
		return nil
	}
}

func (m model) listFunctions() string {
	var b strings.Builder

	for _, name := range m.session.Functions() {
		fmt.Fprintf(&b, "  %s %s\n", name, hintStyle.Render(m.session.Preview(name)))
	}

	if b.Len() == 0 {
		return hintStyle.Render("No functions defined.")
	}

	return strings.TrimRight(b.String(), "\n")
}

func (m model) listVariables() string {
	var b strings.Builder

	for _, name := range m.session.Variables() {
		value, _ := m.session.Value(name)
		fmt.Fprintf(&b, "  %s=%s\n", name, resultStyle.Render(value))
	}

	if b.Len() == 0 {
		return hintStyle.Render("No variables defined.")
	}

	return strings.TrimRight(b.String(), "\n")
}

func (m model) historyPrev() model {
	if m.historyIdx > 0 {
		m.historyIdx--
		m = m.recall(m.historyIdx, true)
	}

	return m
}

func (m model) historyNext() model {
	if m.historyIdx < m.history.Len()-1 {
		m.historyIdx++

		return m.recall(m.historyIdx, true)
	}

	m.historyIdx = m.history.Len()
	m.input.SetValue("")
	refreshMatches(&m, false)

	return m
}

func (m model) historyPrevInMode() model {
	for i := m.historyIdx - 1; i >= 0; i-- {
		if entry, err := m.history.Entry(i); err == nil && entry.Mode == m.mode {
			m.historyIdx = i

			return m.recall(i, false)
		}
	}

	return m
}

func (m model) historyNextInMode() model {
	for i := m.historyIdx + 1; i < m.history.Len(); i++ {
		if entry, err := m.history.Entry(i); err == nil && entry.Mode == m.mode {
			m.historyIdx = i

			return m.recall(i, false)
		}
	}

	// Reached end of mode-specific history, clear input
	if m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m
}

// recall places history entry i in the input, switching to its mode when
// switchMode is set.
func (m model) recall(i int, switchMode bool) model {
	entry, err := m.history.Entry(i)
	if err != nil {
		return m
	}

	if switchMode && m.mode != entry.Mode {
		m = m.switchToMode(entry.Mode)
	}

	m.input.SetValue(entry.Line)
	m.input.SetCursor(len(entry.Line))
	refreshMatches(&m, false)

	return m
}

// toggleMode switches between eval and control modes, preserving input state.
func (m model) toggleMode() model {
	if m.mode == modeEval {
		return m.switchToMode(modeCtrl)
	}

	return m.switchToMode(modeEval)
}

// switchToMode switches to the specified mode, preserving input state.
func (m model) switchToMode(mode inputMode) model {
	if m.mode == modeEval {
		m.evalText, m.evalCursor = m.input.Value(), m.input.Position()
	} else {
		m.ctrlText, m.ctrlCursor = m.input.Value(), m.input.Position()
	}

	m.mode = mode
	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
		m.input.SetValue(m.evalText)
		m.input.SetCursor(m.evalCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	refreshMatches(&m, false)

	return m
}

// execCommand implements [tea.ExecCommand] for a line evaluated while the
// terminal is released. Evaluation errors are written to stderr.
type execCommand struct {
	ctx    context.Context
	fn     func(context.Context, string) error
	line   string
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *execCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *execCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *execCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run evaluates the line.
func (c *execCommand) Run() error {
	if err := c.fn(c.ctx, c.line); err != nil && c.stderr != nil {
		report(c.stderr, err)
	}

	return nil
}

package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/postx/internal/i18n"
	"github.com/desertthunder/postx/internal/models"
	"github.com/desertthunder/postx/internal/services"
	"github.com/desertthunder/postx/internal/shared"
	"github.com/desertthunder/postx/internal/tasks"
)

// stepView is the sub-model of one wizard step.
type stepView interface {
	// enter runs when the step becomes current.
	enter() tea.Cmd
	update(msg tea.KeyMsg) tea.Cmd
	// done receives the result of an operation the view started.
	done(r opResult) tea.Cmd
	view() string
	help() []key.Binding
	// capturing reports whether key presses go to a text input.
	capturing() bool
	// canContinue gates the next-step key.
	canContinue() bool
}

// syncer is a view that mirrors store slices into its own widgets.
type syncer interface {
	sync()
}

// Options configures a [Model].
type Options struct {
	Theme Theme
	// Prefs persists the theme. Optional.
	Prefs Preferences
	// Language pins the interface language; empty follows the project language.
	Language    string
	DownloadDir string
	Logger      *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	wizard *tasks.Wizard
	prefs  Preferences
	logger *log.Logger
	tr     *i18n.Translator
	pinned bool

	theme   Theme
	styles  *Palette
	keys    keyMap
	help    help.Model
	spinner spinner.Model

	state       models.ProjectState
	current     models.Step
	views       map[models.Step]stepView
	changes     chan struct{}
	unsubscribe func()

	width    int
	height   int
	busy     op
	started  time.Time
	owner    stepView
	progress tasks.ProgressUpdate
	notice   notice
	showHelp bool

	downloadDir string
	copyText    func(string) error
	now         func() time.Time
}

// NewModel creates a new TUI model driving w.
func NewModel(ctx context.Context, w *tasks.Wizard, opts Options) (*Model, error) {
	lang := opts.Language
	if lang == "" {
		lang = w.Store().State().Settings.Language.Code
	}
	tr, err := i18n.New(lang)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.DownloadDir == "" {
		opts.DownloadDir = "."
	}

	m := &Model{
		ctx:         ctx,
		wizard:      w,
		prefs:       opts.Prefs,
		logger:      shared.WithLogger(logger, "component", "ui"),
		tr:          tr,
		pinned:      opts.Language != "",
		help:        help.New(),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		changes:     make(chan struct{}, 1),
		downloadDir: opts.DownloadDir,
		copyText:    clipboard.WriteAll,
		now:         time.Now,
	}
	m.setTheme(LoadTheme(opts.Prefs, opts.Theme))
	m.keys = newKeyMap(tr)
	m.state = w.Store().State()
	m.current = m.state.CurrentStep
	m.views = map[models.Step]stepView{
		models.StepArticleInput: newArticleView(m),
		models.StepBulletPoints: newBulletsView(m),
		models.StepSlidePreview: newSlidesView(m),
		models.StepLogoUpload:   newAssetView(m, services.AssetLogo),
		models.StepFrameUpload:  newAssetView(m, services.AssetFrame),
		models.StepSocialPosts:  newSocialView(m),
	}
	m.unsubscribe = w.Store().Subscribe(func(models.ProjectState) {
		select {
		case m.changes <- struct{}{}:
		default:
		}
	})
	return m, nil
}

// Close stops observing the store.
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// Theme is the active theme.
func (m *Model) Theme() Theme { return m.theme }

// Init starts observing the store and enters the current step.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForState(), m.active().enter())
}

func (m *Model) active() stepView {
	return m.views[m.current]
}

func (m *Model) t(id string, data map[string]any) string {
	return m.tr.T(id, data)
}

func (m *Model) setTheme(t Theme) {
	m.theme = t
	m.styles = NewPalette(t)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case spinner.TickMsg:
		if m.busy == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m, m.handleMsg(msg)
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) tea.Cmd {
	switch msg.kind {
	case MsgStateChanged:
		return tea.Batch(m.refresh(), m.waitForState())

	case MsgProgressUpdate:
		data := msg.data.(progressData)
		m.progress = data.update
		return waitForProgress(data.ch, data.done)

	case MsgOpDone:
		r := msg.data.(opResult)
		owner := m.owner
		m.busy, m.owner = "", nil
		m.progress = tasks.ProgressUpdate{}
		cmds := []tea.Cmd{m.refresh()}
		if r.err != nil {
			m.reportError(r.op, r.err)
		}
		if r.op == opNewProject {
			m.notice = notice{text: m.t("project_reset", nil)}
		}
		if owner != nil {
			cmds = append(cmds, owner.done(r))
		}
		return tea.Batch(cmds...)

	case MsgAutoAdvanced:
		if err, _ := msg.data.(error); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, shared.ErrStaleWrite) {
			m.reportError("auto_advance", err)
		}
		return m.refresh()

	case MsgNotice:
		m.notice = msg.data.(notice)
	}
	return nil
}

func (m *Model) reportError(o op, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, shared.ErrStaleWrite) {
		m.logger.Debug("operation dropped", "op", o, "error", err)
		return
	}
	m.logger.Error("operation failed", "op", o, "error", err)
	m.notice = notice{text: services.Describe(err), isErr: true}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}
	view := m.active()
	if view.capturing() {
		return view.update(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return tea.Quit
	case key.Matches(msg, m.keys.help):
		m.showHelp = !m.showHelp
		return nil
	case key.Matches(msg, m.keys.theme):
		m.toggleTheme()
		return nil
	case key.Matches(msg, m.keys.newProject):
		return m.run(opNewProject, nil, func(ctx context.Context, _ chan<- tasks.ProgressUpdate) (any, error) {
			m.wizard.NewProject(ctx)
			return nil, nil
		})
	case key.Matches(msg, m.keys.next):
		if m.busy != "" {
			return nil
		}
		if !view.canContinue() {
			return nil
		}
		m.wizard.Store().NextStep()
		return m.refresh()
	case key.Matches(msg, m.keys.prev):
		if m.busy != "" {
			return nil
		}
		m.wizard.Store().PrevStep()
		return m.refresh()
	}
	return view.update(msg)
}

func (m *Model) toggleTheme() {
	m.setTheme(m.theme.Toggle())
	if err := SaveTheme(m.prefs, m.theme); err != nil {
		m.logger.Warn("failed to save theme", "error", err)
	}
	m.notice = notice{text: m.t("theme_switched", map[string]any{"Theme": string(m.theme)})}
}

// refresh re-reads the store, follows the project language and enters a new step.
func (m *Model) refresh() tea.Cmd {
	m.state = m.wizard.Store().State()

	if !m.pinned && m.tr.Language() != m.state.Settings.Language.Short() {
		m.tr.SetLanguage(m.state.Settings.Language.Code)
		m.keys = newKeyMap(m.tr)
	}

	if m.state.CurrentStep != m.current {
		m.current = m.state.CurrentStep
		m.notice = notice{}
		return m.active().enter()
	}
	if s, ok := m.active().(syncer); ok {
		s.sync()
	}
	return nil
}

func (m *Model) waitForState() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.changes:
			return stateChangedMsg()
		case <-m.ctx.Done():
			return nil
		}
	}
}

// run starts fn in the background and streams its progress updates until it finishes.
//
// Only one operation runs at a time; run returns nil while another is in flight.
func (m *Model) run(o op, owner stepView, fn func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (any, error)) tea.Cmd {
	if m.busy != "" {
		return nil
	}
	m.busy, m.owner = o, owner
	m.started = m.now()
	m.progress = tasks.ProgressUpdate{}
	m.notice = notice{}

	ch := make(chan tasks.ProgressUpdate, 50)
	done := make(chan Msg, 1)
	go func() {
		v, err := fn(m.ctx, ch)
		close(ch)
		done <- opDoneMsg(o, v, err)
	}()
	return tea.Batch(m.spinner.Tick, waitForProgress(ch, done))
}

func waitForProgress(ch <-chan tasks.ProgressUpdate, done <-chan Msg) tea.Cmd {
	return func() tea.Msg {
		if update, ok := <-ch; ok {
			return progressUpdateMsg(update, ch, done)
		}
		return <-done
	}
}

// View renders the sidebar, the current step and the status line.
func (m *Model) View() string {
	view := m.active()

	number := int(m.current) + 1
	title := m.styles.title.Render(m.t("step_title", map[string]any{
		"Number": number,
		"Name":   m.t(m.current.MessageID(), nil),
	}))
	main := lipgloss.JoinVertical(lipgloss.Left, title, view.view(), m.renderStatus())

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), main)

	bindings := append(view.help(), m.keys.next, m.keys.prev, m.keys.theme, m.keys.newProject, m.keys.quit)
	helpView := m.help.ShortHelpView(bindings)
	if m.showHelp {
		helpView = m.help.FullHelpView(m.keys.FullHelp())
	}
	return fmt.Sprintf("%s\n\n%s\n\n%s", m.renderHeader(), body, helpView)
}

func (m *Model) renderHeader() string {
	return fmt.Sprintf("%s  %s", m.styles.selected.Render(m.t("app_title", nil)), m.styles.subtitle.Render(m.t("app_tagline", nil)))
}

func (m *Model) renderSidebar() string {
	var b strings.Builder
	for _, s := range models.Steps() {
		name := fmt.Sprintf("%d. %s", int(s)+1, m.t(s.MessageID(), nil))
		switch {
		case s == m.current:
			b.WriteString(m.styles.selected.Render("▸ " + name))
		case s < m.current:
			b.WriteString(m.styles.done.Render("✓ " + name))
		default:
			b.WriteString(m.styles.todo.Render("  " + name))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n" + m.styles.help.Render(string(m.theme)))
	return m.styles.sidebar.Render(b.String())
}

func (m *Model) renderStatus() string {
	var lines []string
	if m.busy != "" {
		msg := m.progress.Message
		if msg == "" {
			msg = m.t("common_loading", nil)
		}
		elapsed := int(m.now().Sub(m.started) / time.Second)
		lines = append(lines, fmt.Sprintf("%s %s (%ds)", m.spinner.View(), msg, elapsed))
	}
	if m.notice.text != "" {
		if m.notice.isErr {
			lines = append(lines, m.styles.err.Render(m.notice.text))
		} else {
			lines = append(lines, m.styles.ok.Render(m.notice.text))
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return "\n" + strings.Join(lines, "\n")
}

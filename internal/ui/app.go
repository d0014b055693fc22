package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/five82/lumen/internal/controller"
	"github.com/five82/lumen/internal/lights"
	"github.com/five82/lumen/internal/logtail"
	"github.com/five82/lumen/internal/prefs"
	"github.com/five82/lumen/internal/view"
)

// Pane identifies a focusable settings pane.
type Pane int

const (
	PaneModes Pane = iota
	PanePresets
	PaneDimmer
	paneCount
)

var paneNames = [...]string{"modes", "presets", "dimmer"}

func (p Pane) String() string {
	if p < 0 || p >= paneCount {
		return ""
	}
	return paneNames[p]
}

// ParsePane maps a saved pane name back to a Pane. Unknown names focus the
// mode buttons.
func ParsePane(name string) Pane {
	for i, n := range paneNames {
		if strings.EqualFold(strings.TrimSpace(name), n) {
			return Pane(i)
		}
	}
	return PaneModes
}

const (
	defaultNoticeTimeout = 4 * time.Second
	logOverlayLines      = 500
	dimmerStep           = 1
	dimmerBigStep        = 10
	compactWidth         = 80
)

// Options configures the UI.
type Options struct {
	Context       context.Context
	Controller    *controller.Controller
	Origin        string   // shown in the header
	Modes         []string // intensity mode buttons
	NoticeTimeout time.Duration
	LogPath       string
	ThemeName     string
	Focus         string
	PrefsPath     string
}

// notice is the failure banner currently on screen.
type notice struct {
	id   int
	text string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx           context.Context
	ctrl          *controller.Controller
	origin        string
	modes         []string
	noticeTimeout time.Duration
	logPath       string
	prefsPath     string
	keys          keyMap

	theme  Theme
	width  int
	height int
	ready  bool
	focus  Pane

	modeCursor   int
	presetCursor int
	cursorsSet   bool

	notice    *notice
	noticeSeq int

	showHelp    bool
	showLogs    bool
	logViewport viewport.Model
	logErr      error

	dimmerBar progress.Model
}

// New creates the Bubble Tea model around ctrl.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	modes := opts.Modes
	if len(modes) == 0 {
		modes = lights.DefaultModes
	}
	noticeTimeout := opts.NoticeTimeout
	if noticeTimeout <= 0 {
		noticeTimeout = defaultNoticeTimeout
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.DefaultTheme
	}

	m := Model{
		ctx:           ctx,
		ctrl:          opts.Controller,
		origin:        opts.Origin,
		modes:         modes,
		noticeTimeout: noticeTimeout,
		logPath:       opts.LogPath,
		prefsPath:     opts.PrefsPath,
		keys:          DefaultKeyMap(),
		theme:         GetTheme(themeName),
		focus:         ParsePane(opts.Focus),
	}
	m.dimmerBar = m.newDimmerBar()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.ctrl.Init()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.logViewport = viewport.New(m.overlayWidth(), m.overlayHeight())
		}
		m.ready = true
		m.resize()
		return m, nil

	case controller.FetchResultMsg:
		cmd := m.ctrl.Update(msg)
		m.syncCursors()
		return m, cmd

	case controller.WriteResultMsg, controller.DimmerSettledMsg:
		return m, m.ctrl.Update(msg)

	case controller.NoticeMsg:
		m.ctrl.Update(msg)
		return m, m.showNotice(describeNotice(msg))

	case noticeExpiredMsg:
		if m.notice != nil && m.notice.id == msg.id {
			m.notice = nil
		}
		return m, nil

	case logsLoadedMsg:
		m.logErr = msg.err
		m.logViewport.SetContent(m.renderLogLines(msg.lines))
		m.logViewport.GotoBottom()
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.showLogs {
		return m.renderLogOverlay()
	}
	return m.renderMain()
}

// Focus returns the focused pane.
func (m Model) Focus() Pane {
	return m.focus
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}
	if m.showLogs {
		return m.handleLogsKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.savePrefs()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.dimmerBar = m.newDimmerBar()
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.ctrl.Refresh()

	case key.Matches(msg, m.keys.Logs):
		m.showLogs = true
		return m, m.loadLogsCmd()

	case key.Matches(msg, m.keys.Tab):
		m.focus = (m.focus + 1) % paneCount
		return m, nil

	case key.Matches(msg, m.keys.ShiftTab):
		m.focus = (m.focus + paneCount - 1) % paneCount
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.notice = nil
		return m, nil
	}

	switch m.focus {
	case PaneModes:
		return m.handleModesKey(msg)
	case PanePresets:
		return m.handlePresetsKey(msg)
	case PaneDimmer:
		return m.handleDimmerKey(msg)
	}
	return m, nil
}

func (m Model) handleModesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Left), key.Matches(msg, m.keys.Up):
		if m.modeCursor > 0 {
			m.modeCursor--
		}
	case key.Matches(msg, m.keys.Right), key.Matches(msg, m.keys.Down):
		if m.modeCursor < len(m.modes)-1 {
			m.modeCursor++
		}
	case key.Matches(msg, m.keys.Apply):
		if m.modeCursor < 0 || m.modeCursor >= len(m.modes) {
			return m, nil
		}
		return m, m.ctrl.Submit(view.ModeIntent(m.modes[m.modeCursor]))
	}
	return m, nil
}

func (m Model) handlePresetsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.viewState()
	if !st.PresetsKnown || len(st.Presets) == 0 {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Left):
		if m.presetCursor > 0 {
			m.presetCursor--
		}
	case key.Matches(msg, m.keys.Down), key.Matches(msg, m.keys.Right):
		if m.presetCursor < len(st.Presets)-1 {
			m.presetCursor++
		}
	case key.Matches(msg, m.keys.Apply):
		if m.presetCursor >= len(st.Presets) {
			m.presetCursor = len(st.Presets) - 1
		}
		return m, m.ctrl.Submit(view.PresetIntent(st.Presets[m.presetCursor].Name))
	}
	return m, nil
}

func (m Model) handleDimmerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.viewState()
	if !st.Dimmer.Known {
		return m, nil
	}
	pos := st.Dimmer.Position
	switch {
	case key.Matches(msg, m.keys.Left), key.Matches(msg, m.keys.Down):
		pos -= dimmerStep
	case key.Matches(msg, m.keys.Right), key.Matches(msg, m.keys.Up):
		pos += dimmerStep
	case key.Matches(msg, m.keys.StepDown):
		pos -= dimmerBigStep
	case key.Matches(msg, m.keys.StepUp):
		pos += dimmerBigStep
	case key.Matches(msg, m.keys.Min):
		pos = 0
	case key.Matches(msg, m.keys.Max):
		pos = view.SliderMax
	default:
		return m, nil
	}
	pos = view.ClampPosition(pos)
	if pos == st.Dimmer.Position {
		return m, nil
	}
	m.ctrl.SlideDimmer(view.LevelForPosition(pos))
	return m, nil
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Logs):
		m.showLogs = false
		return m, nil
	case key.Matches(msg, m.keys.Quit):
		m.savePrefs()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadLogsCmd()
	}
	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	return m, cmd
}

// syncCursors points the cursors at the device's current choices the first
// time they are known, and keeps them in range afterwards.
func (m *Model) syncCursors() {
	st := m.viewState()
	if !m.cursorsSet && (st.ModeKnown || st.PresetKnown) {
		if idx := activeModeIndex(st); idx >= 0 {
			m.modeCursor = idx
		}
		if idx := st.SelectedPreset(); idx >= 0 {
			m.presetCursor = idx
		}
		m.cursorsSet = true
	}
	if m.presetCursor >= len(st.Presets) {
		m.presetCursor = max(len(st.Presets)-1, 0)
	}
}

func (m *Model) showNotice(text string) tea.Cmd {
	m.noticeSeq++
	id := m.noticeSeq
	m.notice = &notice{id: id, text: text}
	return tea.Tick(m.noticeTimeout, func(time.Time) tea.Msg {
		return noticeExpiredMsg{id: id}
	})
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, Focus: m.focus.String()}); err != nil {
		log.Warn().Err(err).Msg("save prefs")
	}
}

func (m Model) viewState() view.State {
	return view.Render(m.ctrl.Display(), m.modes)
}

func (m *Model) resize() {
	m.logViewport.Width = m.overlayWidth()
	m.logViewport.Height = m.overlayHeight()
	m.dimmerBar.Width = max(m.paneWidth()-4, 10)
}

func (m Model) paneWidth() int {
	return max(m.width-2, 20)
}

func (m Model) overlayWidth() int {
	return max(m.width-4, 10)
}

func (m Model) overlayHeight() int {
	// header, command bar, overlay borders
	return max(m.height-5, 3)
}

func (m Model) newDimmerBar() progress.Model {
	bar := progress.New(
		progress.WithSolidFill(m.theme.Accent),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = m.theme.SurfaceAlt
	bar.Width = max(m.paneWidth()-4, 10)
	return bar
}

func (m Model) loadLogsCmd() tea.Cmd {
	path := m.logPath
	return func() tea.Msg {
		if path == "" {
			return logsLoadedMsg{err: errors.New("file logging is disabled")}
		}
		lines, err := logtail.Read(path, logOverlayLines)
		return logsLoadedMsg{lines: lines, err: err}
	}
}

func activeModeIndex(st view.State) int {
	for i, b := range st.Modes {
		if b.Active {
			return i
		}
	}
	return -1
}

// Messages

type noticeExpiredMsg struct{ id int }

type logsLoadedMsg struct {
	lines []string
	err   error
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	opts.Context = ctx

	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	// Send blocks until the event loop reads the message, and a leading-edge
	// debouncer fires from inside Update.
	opts.Controller.SetNotify(func(msg tea.Msg) { go p.Send(msg) })
	defer opts.Controller.Close()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

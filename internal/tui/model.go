// Package tui provides the BubbleTea-based terminal user interface.
package tui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/kmnunley/Soundboard/internal/audio"
	"github.com/kmnunley/Soundboard/internal/config"
	"github.com/kmnunley/Soundboard/internal/library"
	"github.com/kmnunley/Soundboard/internal/model"
)

// Mode represents the current UI mode.
type Mode int

const (
	ModeBoard Mode = iota
	ModeSearch
	ModeCompressor
	ModeHelp
)

// compressorParams are the adjustable rows of the compressor panel, in
// display order.
var compressorParams = []string{
	"Input gain (dB)",
	"Threshold (dB)",
	"Ratio",
	"Attack (ms)",
	"Release (ms)",
	"Makeup gain (dB)",
	"Output ceiling (dB)",
}

// Model is the main TUI model.
type Model struct {
	cfg     *config.Config
	manager *audio.Manager
	library *library.Library

	// Current mode
	mode Mode

	// Components
	list        list.Model
	searchInput textinput.Model

	// State
	clips       []model.SoundClip
	searchQuery string
	paramIndex  int
	width       int
	height      int
	ready       bool

	// Key bindings
	keys KeyMap

	// Status message
	statusMsg string
	statusErr bool

	// Refresh channel subscription
	refreshCh <-chan library.ChangeEvent
}

// clipItem wraps a sound clip for the list component.
type clipItem struct {
	clip model.SoundClip
}

func (i clipItem) Title() string {
	return i.clip.Label
}

func (i clipItem) Description() string {
	group := i.clip.Group
	if group == "" {
		group = "ungrouped"
	}
	return fmt.Sprintf("[%s] %s", group, humanize.Bytes(uint64(i.clip.Size)))
}

func (i clipItem) FilterValue() string {
	return i.clip.Label + " " + i.clip.Group + " " + i.clip.Key
}

// clipDelegate renders list items, dimming grouped clips' metadata line.
type clipDelegate struct {
	list.DefaultDelegate
}

func newClipDelegate() clipDelegate {
	d := list.NewDefaultDelegate()
	return clipDelegate{DefaultDelegate: d}
}

// Render renders a list item, truncating to the available width.
func (d clipDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ci, ok := item.(clipItem)
	if !ok {
		d.DefaultDelegate.Render(w, m, index, item)
		return
	}

	isSelected := index == m.Index()
	itemWidth := m.Width() - d.DefaultDelegate.Styles.NormalTitle.GetHorizontalPadding()

	var titleStyle, descStyle lipgloss.Style
	if isSelected {
		titleStyle = d.DefaultDelegate.Styles.SelectedTitle
		descStyle = d.DefaultDelegate.Styles.SelectedDesc
	} else {
		titleStyle = d.DefaultDelegate.Styles.NormalTitle
		descStyle = d.DefaultDelegate.Styles.NormalDesc
	}

	title := truncate(ci.Title(), itemWidth)
	desc := truncate(ci.Description(), itemWidth)

	fmt.Fprint(w, titleStyle.Render(title))
	fmt.Fprint(w, "\n")
	fmt.Fprint(w, descStyle.Render(desc))
}

// New creates a new TUI model.
func New(cfg *config.Config, manager *audio.Manager, lib *library.Library) Model {
	delegate := newClipDelegate()
	l := list.New(nil, delegate, 0, 0)
	l.Title = "Soundboard"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	searchInput := textinput.New()
	searchInput.Placeholder = "Search..."
	searchInput.CharLimit = 100

	m := Model{
		cfg:         cfg,
		manager:     manager,
		library:     lib,
		mode:        ModeBoard,
		list:        l,
		searchInput: searchInput,
		keys:        DefaultKeyMap(),
	}

	if lib != nil {
		m.refreshCh = lib.Subscribe()
	}

	return m
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadClips,
		m.watchForChanges,
	)
}

// loadClips fetches clips from the library.
func (m Model) loadClips() tea.Msg {
	return loadClipsMsg{}
}

type loadClipsMsg struct{}

// watchForChanges waits for a library change event.
func (m Model) watchForChanges() tea.Msg {
	if m.refreshCh == nil {
		return nil
	}
	<-m.refreshCh
	return refreshMsg{}
}

type refreshMsg struct{}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

type playResultMsg struct {
	label string
	err   error
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		m.list.SetSize(msg.Width, msg.Height-3)
		return m, nil

	case loadClipsMsg:
		m.clips = m.fetchClips()
		m.list.SetItems(m.buildListItems())
		return m, nil

	case refreshMsg:
		m.clips = m.fetchClips()
		m.list.SetItems(m.buildListItems())
		return m, tea.Batch(m.watchForChanges, status("Library updated", false))

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil

	case playResultMsg:
		if msg.err != nil {
			return m, status("Play failed: "+msg.err.Error(), true)
		}
		return m, status("Playing "+msg.label, false)
	}

	// Update child components
	switch m.mode {
	case ModeBoard:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
	case ModeSearch:
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// status wraps a message in a command.
func status(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Search mode owns all printable keys.
	if m.mode == ModeSearch {
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m.handleSearchKey(msg)
	}

	// Global keys
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		if m.mode == ModeHelp {
			m.mode = ModeBoard
		} else {
			m.mode = ModeHelp
		}
		return m, nil
	}

	switch m.mode {
	case ModeBoard:
		return m.handleBoardKey(msg)
	case ModeCompressor:
		return m.handleCompressorKey(msg)
	case ModeHelp:
		if key.Matches(msg, m.keys.Back) {
			m.mode = ModeBoard
		}
		return m, nil
	}

	return m, nil
}

// handleBoardKey handles keys on the board.
func (m Model) handleBoardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Play):
		if item, ok := m.list.SelectedItem().(clipItem); ok {
			return m, m.playClip(item.clip)
		}
		return m, nil

	case key.Matches(msg, m.keys.StopAll):
		m.manager.StopAll()
		return m, status("Stopped all playback", false)

	case key.Matches(msg, m.keys.Overlap):
		overlap := !m.manager.Settings().Overlap
		if err := m.manager.SetOverlap(overlap); err != nil {
			return m, status("Could not save settings: "+err.Error(), true)
		}
		if overlap {
			return m, status("Overlap mode: clips play over each other", false)
		}
		return m, status("Interrupt mode: new clips stop current playback", false)

	case key.Matches(msg, m.keys.SmartMute):
		enabled := !m.manager.Settings().SmartMute
		if err := m.manager.SetSmartMute(enabled); err != nil {
			return m, status("Could not save settings: "+err.Error(), true)
		}
		if enabled {
			return m, status("Smart unmute/remute enabled", false)
		}
		return m, status("Smart unmute/remute disabled", false)

	case key.Matches(msg, m.keys.Compressor):
		m.mode = ModeCompressor
		m.paramIndex = 0
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		return m, m.reloadLibrary()

	case key.Matches(msg, m.keys.Search):
		m.searchInput.SetValue("")
		m.searchQuery = ""
		m.list.SetItems(m.buildListItems())
		m.mode = ModeSearch
		m.searchInput.Focus()
		return m, textinput.Blink
	}

	// Pass to list
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKey handles keys in search mode.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		// Esc exits search mode and clears the query
		m.mode = ModeBoard
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.searchQuery = ""
		m.list.SetItems(m.buildListItems())
		return m, nil

	case tea.KeyEnter:
		// Enter plays the selected match and stays in search mode
		if item, ok := m.list.SelectedItem().(clipItem); ok {
			return m, m.playClip(item.clip)
		}
		return m, nil

	case tea.KeyUp, tea.KeyDown:
		// Allow navigating the matches while searching
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	// Pass to text input
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	// Live filtering: rebuild the list on each keystroke
	m.searchQuery = m.searchInput.Value()
	m.list.SetItems(m.buildListItems())

	return m, cmd
}

// handleCompressorKey handles keys in the compressor panel.
func (m Model) handleCompressorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Compressor):
		m.mode = ModeBoard
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.paramIndex > 0 {
			m.paramIndex--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.paramIndex < len(compressorParams)-1 {
			m.paramIndex++
		}
		return m, nil

	case key.Matches(msg, m.keys.Enable):
		enabled := !m.manager.Settings().Compressor.Enabled
		if err := m.manager.SetCompressorEnabled(enabled); err != nil {
			return m, status("Could not save settings: "+err.Error(), true)
		}
		if enabled {
			return m, status("Compressor enabled", false)
		}
		return m, status("Compressor disabled", false)

	case key.Matches(msg, m.keys.Reset):
		if err := m.manager.ResetCompressor(); err != nil {
			return m, status("Could not save settings: "+err.Error(), true)
		}
		return m, status("Compressor reset to defaults", false)

	case key.Matches(msg, m.keys.Adjust):
		delta := 1.0
		if msg.String() == "left" || msg.String() == "h" {
			delta = -1.0
		}
		return m, m.adjustParam(m.paramIndex, delta)
	}

	return m, nil
}

// adjustParam nudges the selected compressor parameter. Each parameter
// has its own step size.
func (m Model) adjustParam(index int, delta float64) tea.Cmd {
	err := m.manager.UpdateCompressor(func(c *model.CompressorSettings) {
		switch index {
		case 0:
			c.InputGainDB += delta * 0.5
		case 1:
			c.ThresholdDB += delta * 0.5
		case 2:
			c.Ratio += delta * 0.5
		case 3:
			c.AttackMs += delta * 5
		case 4:
			c.ReleaseMs += delta * 10
		case 5:
			c.MakeupGainDB += delta * 0.5
		case 6:
			c.OutputCeilingDB += delta * 0.5
		}
	})
	if err != nil {
		return status("Could not save settings: "+err.Error(), true)
	}
	return nil
}

// playClip plays a clip asynchronously.
func (m Model) playClip(clip model.SoundClip) tea.Cmd {
	manager := m.manager
	return func() tea.Msg {
		_, err := manager.Play(clip.Key, false)
		return playResultMsg{label: clip.Label, err: err}
	}
}

// reloadLibrary rescans the sound directory.
func (m Model) reloadLibrary() tea.Cmd {
	manager := m.manager
	return func() tea.Msg {
		if err := manager.Reload(); err != nil {
			return statusMsg{text: "Reload failed: " + err.Error(), isErr: true}
		}
		return loadClipsMsg{}
	}
}

// fetchClips gets clips from the library, grouped clips first.
func (m Model) fetchClips() []model.SoundClip {
	if m.library != nil {
		return m.library.All()
	}
	return nil
}

// buildListItems creates list items from the current clips.
func (m Model) buildListItems() []list.Item {
	clips := m.clips

	if m.searchQuery != "" {
		var filtered []model.SoundClip
		for _, c := range clips {
			if matchesQuery(c, m.searchQuery) {
				filtered = append(filtered, c)
			}
		}
		clips = filtered
	}

	items := make([]list.Item, len(clips))
	for i, c := range clips {
		items[i] = clipItem{clip: c}
	}
	return items
}

// matchesQuery checks a clip against a search query (case-insensitive,
// label, group and key).
func matchesQuery(c model.SoundClip, query string) bool {
	return containsIgnoreCase(c.Label, query) ||
		containsIgnoreCase(c.Group, query) ||
		containsIgnoreCase(c.Key, query)
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	switch m.mode {
	case ModeBoard:
		return m.viewBoard()
	case ModeSearch:
		return m.viewSearch()
	case ModeCompressor:
		return m.viewCompressor()
	case ModeHelp:
		return m.viewHelp()
	default:
		return ""
	}
}

func (m Model) viewBoard() string {
	var s string
	s += m.list.View()
	s += "\n" + m.modeLine()

	if m.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))
		if m.statusErr {
			statusStyle = statusStyle.Foreground(lipgloss.Color("9"))
		}
		s += "\n" + statusStyle.Render(m.statusMsg)
	} else {
		s += "\n" + m.buildKeybindBar(m.width, "board")
	}

	return s
}

// modeLine summarizes the toggles in one dim line.
func (m Model) modeLine() string {
	s := m.manager.Settings()

	playback := "interrupt"
	if s.Overlap {
		playback = "overlap"
	}
	compressor := "off"
	if s.Compressor.Enabled {
		compressor = "on"
	}
	smartMute := "off"
	if s.SmartMute {
		smartMute = "on"
	}

	line := fmt.Sprintf("playback: %s   compressor: %s   smart mute: %s",
		playback, compressor, smartMute)
	return lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(line)
}

func (m Model) viewSearch() string {
	matchCount := len(m.list.Items())
	countStr := fmt.Sprintf("(%d matches)", matchCount)

	searchBar := "Search: " + m.searchInput.View() + " " +
		lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(countStr)

	return searchBar + "\n" + m.list.View() + "\n" + m.buildKeybindBar(m.width, "search")
}

func (m Model) viewCompressor() string {
	s := m.manager.Settings().Compressor

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8"))

	selectedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10")).
		Bold(true)

	state := "disabled"
	if s.Enabled {
		state = "enabled"
	}

	out := titleStyle.Render("Compressor") + "  " + labelStyle.Render("("+state+")") + "\n\n"

	values := []string{
		fmt.Sprintf("%+.1f", s.InputGainDB),
		fmt.Sprintf("%.1f", s.ThresholdDB),
		fmt.Sprintf("%.1f:1", s.Ratio),
		fmt.Sprintf("%.0f", s.AttackMs),
		fmt.Sprintf("%.0f", s.ReleaseMs),
		fmt.Sprintf("%+.1f", s.MakeupGainDB),
		fmt.Sprintf("%.1f", s.OutputCeilingDB),
	}

	for i, name := range compressorParams {
		row := fmt.Sprintf("  %-22s %10s", name, values[i])
		if i == m.paramIndex {
			out += selectedStyle.Render("▸"+row[1:]) + "\n"
		} else {
			out += row + "\n"
		}
	}

	out += "\n" + labelStyle.Render(
		"Changing a parameter reprocesses clips on next play.")
	out += "\n\n" + m.buildKeybindBar(m.width, "compressor")

	return out
}

func (m Model) viewHelp() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8"))

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	s := titleStyle.Render("Keyboard Shortcuts") + "\n\n"

	s += sectionStyle.Render("Navigation") + "\n"
	s += keyStyle.Render("  j/k, ↑/↓") + "     Move up/down\n"
	s += keyStyle.Render("  g/G") + "          Go to top/bottom\n"
	s += keyStyle.Render("  pgup/pgdn") + "    Page up/down\n"
	s += "\n"

	s += sectionStyle.Render("Playback") + "\n"
	s += keyStyle.Render("  enter/space") + "  Play selected clip\n"
	s += keyStyle.Render("  S") + "            Stop all playback\n"
	s += keyStyle.Render("  m") + "            Toggle overlap/interrupt mode\n"
	s += keyStyle.Render("  u") + "            Toggle smart unmute/remute\n"
	s += "\n"

	s += sectionStyle.Render("Library") + "\n"
	s += keyStyle.Render("  /") + "            Search clips\n"
	s += keyStyle.Render("  r") + "            Reload sound library\n"
	s += "\n"

	s += sectionStyle.Render("Compressor") + "\n"
	s += keyStyle.Render("  c") + "            Open compressor panel\n"
	s += keyStyle.Render("  ←/→, h/l") + "     Adjust selected parameter\n"
	s += keyStyle.Render("  e") + "            Enable/disable compressor\n"
	s += keyStyle.Render("  R") + "            Reset to defaults\n"
	s += "\n"

	s += sectionStyle.Render("General") + "\n"
	s += keyStyle.Render("  ?") + "            Toggle this help\n"
	s += keyStyle.Render("  esc") + "          Back / Cancel\n"
	s += keyStyle.Render("  q") + "            Quit\n"

	s += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(
		"Press ? or esc to return")

	return s
}

// truncate shortens s to the given display width, ellipsized. Width-aware,
// so multi-byte runes are never split.
func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return ansi.Truncate(s, width, "…")
}

// containsIgnoreCase checks if s contains substr (case-insensitive).
func containsIgnoreCase(s, substr string) bool {
	return len(s) >= len(substr) &&
		(s == substr ||
			len(substr) == 0 ||
			findIgnoreCase(s, substr))
}

func findIgnoreCase(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if equalFoldAt(s, i, substr) {
			return true
		}
	}
	return false
}

func equalFoldAt(s string, start int, substr string) bool {
	for j := 0; j < len(substr); j++ {
		c1 := s[start+j]
		c2 := substr[j]
		if c1 == c2 {
			continue
		}
		// Simple ASCII case folding
		if c1 >= 'A' && c1 <= 'Z' {
			c1 += 32
		}
		if c2 >= 'A' && c2 <= 'Z' {
			c2 += 32
		}
		if c1 != c2 {
			return false
		}
	}
	return true
}

// keybind represents a single keybind with priority for the status bar.
type keybind struct {
	key      string
	desc     string
	priority int // lower = more important (shown first)
}

// buildKeybindBar builds a keybind bar that fits within the given width.
// mode determines which keybinds are shown: "board", "search", "compressor"
func (m Model) buildKeybindBar(width int, mode string) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	var binds []keybind

	switch mode {
	case "board":
		binds = []keybind{
			{"q", "quit", 1},
			{"enter", "play", 2},
			{"S", "stop", 3},
			{"?", "help", 4},
			{"/", "search", 5},
			{"m", "mode", 6},
			{"c", "compressor", 7},
			{"u", "smart mute", 8},
			{"r", "reload", 9},
		}
	case "search":
		binds = []keybind{
			{"enter", "play", 1},
			{"esc", "close", 2},
			{"↑/↓", "navigate", 3},
		}
	case "compressor":
		binds = []keybind{
			{"esc", "back", 1},
			{"↑/↓", "select", 2},
			{"←/→", "adjust", 3},
			{"e", "toggle", 4},
			{"R", "reset", 5},
		}
	}

	// Build the bar, adding keybinds until we run out of space
	const separator = "  "
	result := ""
	for _, b := range binds {
		item := keyStyle.Render(b.key) + " " + b.desc
		plainItem := b.key + " " + b.desc
		testLen := len(result) + len(separator) + len(plainItem)
		if result != "" {
			testLen = len(stripANSI(result)) + len(separator) + len(plainItem)
		}

		if width > 0 && testLen > width {
			break
		}
		if result != "" {
			result += separator
		}
		result += item
	}

	return style.Render(result)
}

// stripANSI removes ANSI escape codes for length calculation.
func stripANSI(s string) string {
	result := make([]byte, 0, len(s))
	inEscape := false
	for i := 0; i < len(s); i++ {
		if s[i] == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if s[i] == 'm' {
				inEscape = false
			}
			continue
		}
		result = append(result, s[i])
	}
	return string(result)
}

// RunOptions configures the TUI.
type RunOptions struct {
	Config  *config.Config
	Manager *audio.Manager
	Library *library.Library
	Watcher *library.Watcher
}

// Run starts the TUI with the given options.
func Run(opts RunOptions) error {
	if opts.Watcher != nil {
		if err := opts.Watcher.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to start library watcher: %v\n", err)
		} else {
			defer opts.Watcher.Stop()
		}
	}

	m := New(opts.Config, opts.Manager, opts.Library)
	p := tea.NewProgram(m, tea.WithAltScreen())

	_, err := p.Run()
	return err
}

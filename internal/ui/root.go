package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/stint/internal/app"
	"github.com/dori/stint/internal/db"
	"github.com/dori/stint/internal/model"
	"github.com/dori/stint/internal/tracker"
	"github.com/dori/stint/internal/ui/theme"
)

// RootModel is the main application model
type RootModel struct {
	app    *app.App
	keys   KeyMap
	help   help.Model
	input  textinput.Model
	width  int
	height int

	// Cursor
	projectIdx int
	taskIdx    int

	// Prompts
	inputMode     inputMode
	confirmDelete bool

	helpVisible bool

	// Status message
	statusMsg string
	errorMsg  string
}

// NewRootModel creates a new root model
func NewRootModel(application *app.App) RootModel {
	h := help.New()
	h.ShowAll = false

	ti := textinput.New()
	ti.CharLimit = 128

	m := RootModel{
		app:   application,
		keys:  DefaultKeyMap(),
		help:  h,
		input: ti,
	}
	if !application.Tracker.HasStore() {
		m.statusMsg = "No store open. Press O to create one or o to open one."
	}
	return m
}

// Init starts the display and auto-save timers
func (m RootModel) Init() tea.Cmd {
	return tea.Batch(tickCmd(), autoSaveCmd(m.app.Config.AutoSave))
}

// Update handles messages
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.app.Tracker.Tick()
		return m, tickCmd()

	case autoSaveMsg:
		if err := m.app.Save(context.Background()); err != nil {
			m.errorMsg = err.Error()
			m.app.Notifier.SendSaveFailed(err)
		}
		return m, autoSaveCmd(m.app.Config.AutoSave)

	case tea.KeyMsg:
		// Clear status/error on any keypress
		m.statusMsg = ""
		m.errorMsg = ""

		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		switch {
		case m.inputMode != inputNone:
			return m.updateInput(msg)
		case m.confirmDelete:
			return m.updateConfirm(msg)
		default:
			return m.updateNormal(msg)
		}
	}

	return m, nil
}

func (m RootModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := context.Background()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.helpVisible = !m.helpVisible
		m.help.ShowAll = m.helpVisible

	case key.Matches(msg, m.keys.Up):
		if m.taskIdx > 0 {
			m.taskIdx--
		}

	case key.Matches(msg, m.keys.Down):
		if p := m.currentProject(); p != nil && m.taskIdx < len(p.Tasks)-1 {
			m.taskIdx++
		}

	case key.Matches(msg, m.keys.NextProject):
		if n := len(m.app.Tracker.Projects()); n > 0 {
			m.projectIdx = (m.projectIdx + 1) % n
			m.taskIdx = 0
		}

	case key.Matches(msg, m.keys.PrevProject):
		if n := len(m.app.Tracker.Projects()); n > 0 {
			m.projectIdx = (m.projectIdx - 1 + n) % n
			m.taskIdx = 0
		}

	case key.Matches(msg, m.keys.Start):
		m.startStop(true)

	case key.Matches(msg, m.keys.Stop):
		m.startStop(false)

	case key.Matches(msg, m.keys.Toggle):
		if t := m.currentTask(); t != nil {
			m.startStop(!t.IsRunning())
		}

	case key.Matches(msg, m.keys.NewProject):
		if !m.app.Tracker.HasStore() {
			m.errorMsg = m.describe(tracker.ErrNoStore)
			break
		}
		return m.openInput(inputProject, "")

	case key.Matches(msg, m.keys.NewTask):
		if m.currentProject() == nil {
			m.errorMsg = "Create a project first (P)"
			break
		}
		return m.openInput(inputTask, "")

	case key.Matches(msg, m.keys.Delete):
		if m.currentTask() != nil {
			m.confirmDelete = true
		}

	case key.Matches(msg, m.keys.Save):
		if !m.app.Tracker.HasStore() {
			m.errorMsg = m.describe(tracker.ErrNoStore)
			break
		}
		if err := m.app.Save(ctx); err != nil {
			m.errorMsg = err.Error()
			break
		}
		m.statusMsg = "Saved"

	case key.Matches(msg, m.keys.OpenStore):
		return m.openInput(inputOpenStore, m.storeDir())

	case key.Matches(msg, m.keys.NewStore):
		if m.app.DB == nil {
			return m.openInput(inputNewStore, db.DefaultDBPath())
		}
		return m.openInput(inputNewStore, m.storeDir())

	case key.Matches(msg, m.keys.ThemeCycle):
		next := theme.Next(theme.Current.Theme.Name)
		theme.SetTheme(next)
		if err := m.app.Config.SetTheme(next.Name); err != nil {
			m.app.Logger.Printf("save theme: %v", err)
		}
		m.statusMsg = fmt.Sprintf("Theme: %s", next.Name)
	}

	return m, nil
}

func (m RootModel) openInput(mode inputMode, value string) (tea.Model, tea.Cmd) {
	m.inputMode = mode
	m.input.Placeholder = mode.prompt()
	m.input.SetValue(value)
	m.input.CursorEnd()
	cmd := m.input.Focus()
	return m, cmd
}

func (m RootModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.closeInput()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		mode := m.inputMode
		value := strings.TrimSpace(m.input.Value())
		m.closeInput()
		// An empty answer is a cancel
		if value == "" {
			return m, nil
		}
		m.submit(mode, value)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *RootModel) closeInput() {
	m.inputMode = inputNone
	m.input.Blur()
	m.input.SetValue("")
}

func (m *RootModel) submit(mode inputMode, value string) {
	ctx := context.Background()
	tr := m.app.Tracker

	switch mode {
	case inputProject:
		if _, err := tr.CreateProject(ctx, value); err != nil {
			m.errorMsg = m.describe(err)
			return
		}
		m.projectIdx = len(tr.Projects()) - 1
		m.taskIdx = 0
		m.statusMsg = fmt.Sprintf("Created project %s", value)

	case inputTask:
		p := m.currentProject()
		if p == nil {
			return
		}
		if _, err := tr.CreateTask(ctx, p.Name, value); err != nil {
			m.errorMsg = m.describe(err)
			return
		}
		m.taskIdx = len(p.Tasks) - 1
		m.statusMsg = fmt.Sprintf("Created task %s", value)

	case inputOpenStore, inputNewStore:
		path, err := expandHome(value)
		if err != nil {
			m.errorMsg = err.Error()
			return
		}
		if err := m.app.OpenStore(ctx, path, mode == inputNewStore); err != nil {
			m.errorMsg = m.describe(err)
			return
		}
		m.projectIdx = 0
		m.taskIdx = 0
		m.statusMsg = fmt.Sprintf("Loaded %s", path)
	}
}

func (m RootModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.currentProject()
	t := m.currentTask()
	if p == nil || t == nil {
		m.confirmDelete = false
		return m, nil
	}

	var confirmed bool
	switch {
	case key.Matches(msg, m.keys.Yes):
		confirmed = true
	case key.Matches(msg, m.keys.No):
		confirmed = false
	default:
		return m, nil
	}
	m.confirmDelete = false

	err := m.app.Tracker.DeleteTask(context.Background(), p.Name, t.Name, confirmed)
	switch {
	case errors.Is(err, tracker.ErrNotConfirmed):
		m.statusMsg = fmt.Sprintf("Kept %s", t.Name)
	case err != nil:
		m.errorMsg = m.describe(err)
	default:
		if m.taskIdx >= len(p.Tasks) && m.taskIdx > 0 {
			m.taskIdx--
		}
		m.statusMsg = fmt.Sprintf("Deleted %s", t.Name)
	}
	return m, nil
}

func (m *RootModel) startStop(start bool) {
	p := m.currentProject()
	t := m.currentTask()
	if p == nil || t == nil {
		return
	}

	var err error
	if start {
		_, err = m.app.Tracker.Start(p.Name, t.Name)
	} else {
		_, err = m.app.Tracker.Stop(p.Name, t.Name)
	}
	if err != nil {
		m.errorMsg = m.describe(err)
	}
}

// describe turns tracker errors into status line text
func (m RootModel) describe(err error) string {
	switch {
	case errors.Is(err, tracker.ErrDuplicateName):
		return "That name is already taken"
	case errors.Is(err, tracker.ErrNoStore):
		return "No store open. Press O to create one or o to open one."
	case errors.Is(err, app.ErrStoreLocked):
		return "That store is open in another stint instance"
	case errors.Is(err, app.ErrStoreMissing):
		return "No store at that path. Use O to create one."
	default:
		return err.Error()
	}
}

func (m RootModel) currentProject() *model.Project {
	projects := m.app.Tracker.Projects()
	if len(projects) == 0 {
		return nil
	}
	if m.projectIdx >= len(projects) {
		return projects[len(projects)-1]
	}
	return projects[m.projectIdx]
}

func (m RootModel) currentTask() *model.Task {
	p := m.currentProject()
	if p == nil || len(p.Tasks) == 0 {
		return nil
	}
	if m.taskIdx >= len(p.Tasks) {
		return p.Tasks[len(p.Tasks)-1]
	}
	return p.Tasks[m.taskIdx]
}

func (m RootModel) storeDir() string {
	if m.app.DB == nil {
		return ""
	}
	return filepath.Dir(m.app.DB.Path()) + string(filepath.Separator)
}

// View renders the UI
func (m RootModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())

	// Reserve: 1 line for header + 3 lines for footer
	contentHeight := m.height - 4
	var content string
	if m.helpVisible {
		content = m.help.View(m.keys)
	} else {
		content = m.renderTree()
	}

	contentLines := strings.Count(content, "\n") + 1
	if contentLines < contentHeight {
		content += strings.Repeat("\n", contentHeight-contentLines)
	}
	sections = append(sections, content)
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

// renderHeader renders the title, the store path and the theme
func (m RootModel) renderHeader() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	title := styles.Header.Render("stint")

	subtle := lipgloss.NewStyle().
		Foreground(t.Subtle).
		Padding(0, 1)

	store := "no store"
	if m.app.DB != nil {
		store = m.app.DB.Path()
	}
	leftSide := lipgloss.JoinHorizontal(lipgloss.Center, title, subtle.Render(store))
	rightSide := subtle.Render(fmt.Sprintf("theme: %s", t.Name))

	gap := m.width - lipgloss.Width(leftSide) - lipgloss.Width(rightSide)
	if gap < 0 {
		gap = 0
	}

	return leftSide + strings.Repeat(" ", gap) + rightSide
}

// renderTree renders the project tabs and the current project's tasks
func (m RootModel) renderTree() string {
	styles := theme.Current.Styles
	projects := m.app.Tracker.Projects()

	if len(projects) == 0 {
		return styles.Panel.Render("No projects yet. Press P to create one.")
	}

	current := m.currentProject()

	var tabs []string
	for _, p := range projects {
		label := p.Name
		if p.RunningCount() > 0 {
			label += " ●"
		}
		if p == current {
			tabs = append(tabs, styles.TabActive.Render(label))
		} else {
			tabs = append(tabs, styles.Tab.Render(label))
		}
	}

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")
	b.WriteString(styles.ProjectTotal.Render(
		fmt.Sprintf("Total %s", model.FormatSeconds(current.DisplaySeconds()))))
	b.WriteString("\n\n")

	if len(current.Tasks) == 0 {
		b.WriteString(styles.TaskNormal.Render("No tasks yet. Press a to add one."))
		return b.String()
	}

	selected := m.currentTask()
	nameWidth := 0
	for _, t := range current.Tasks {
		if w := lipgloss.Width(t.Name); w > nameWidth {
			nameWidth = w
		}
	}

	for _, t := range current.Tasks {
		cursor := "  "
		if t == selected {
			cursor = "> "
		}

		state := "  "
		elapsedStyle := styles.Elapsed
		if t.IsRunning() {
			state = "▶ "
			elapsedStyle = styles.ElapsedRunning
		}

		name := t.Name + strings.Repeat(" ", nameWidth-lipgloss.Width(t.Name))
		line := cursor + state + name + "  " + elapsedStyle.Render(model.FormatSeconds(t.DisplaySeconds()))

		switch {
		case t == selected:
			b.WriteString(styles.TaskSelected.Render(line))
		case t.IsRunning():
			b.WriteString(styles.TaskRunning.Render(line))
		default:
			b.WriteString(styles.TaskNormal.Render(line))
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// renderFooter renders the prompt or status line and key hints
func (m RootModel) renderFooter() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	hint := func(k, desc string) string {
		return styles.HelpKey.Render(k) + styles.HelpDesc.Render(" "+desc)
	}
	sep := styles.HelpSeparator.Render(" │ ")

	var lines []string

	switch {
	case m.inputMode != inputNone:
		lines = append(lines, styles.Prompt.Render(m.inputMode.prompt()+": "+m.input.View()))
		lines = append(lines, hint("enter", "confirm")+sep+hint("esc", "cancel"))
		return strings.Join(lines, "\n")

	case m.confirmDelete:
		name := ""
		if task := m.currentTask(); task != nil {
			name = task.Name
		}
		warn := lipgloss.NewStyle().Foreground(t.Warning).Bold(true)
		lines = append(lines, warn.Render(fmt.Sprintf("Really delete %s? Its recorded time is kept in the store.", name)))
		lines = append(lines, hint("y", "delete")+sep+hint("n", "keep"))
		return strings.Join(lines, "\n")
	}

	if m.errorMsg != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(t.Error).Render(m.errorMsg))
	} else if m.statusMsg != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(t.Info).Render(m.statusMsg))
	}

	lines = append(lines,
		hint("space", "start/stop")+sep+
			hint("a", "task")+sep+
			hint("P", "project")+sep+
			hint("d", "delete")+sep+
			hint("←/→", "projects"),
		hint("C-s", "save")+sep+
			hint("o", "open")+sep+
			hint("O", "new store")+sep+
			hint("?", "help")+sep+
			hint("q", "quit"),
	)

	return strings.Join(lines, "\n")
}

// expandHome replaces a leading ~ with the home directory
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

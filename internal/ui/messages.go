package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Messages for the root model

// tickMsg drives the one second display refresh
type tickMsg time.Time

// autoSaveMsg triggers a periodic save
type autoSaveMsg time.Time

// inputMode is what the text prompt is collecting
type inputMode int

const (
	inputNone inputMode = iota
	inputProject
	inputTask
	inputOpenStore
	inputNewStore
)

func (m inputMode) prompt() string {
	switch m {
	case inputProject:
		return "Project name"
	case inputTask:
		return "Task name"
	case inputOpenStore:
		return "Open store file"
	case inputNewStore:
		return "Create store file"
	default:
		return ""
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func autoSaveCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return autoSaveMsg(t)
	})
}

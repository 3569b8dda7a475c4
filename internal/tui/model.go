package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/termplan/internal/constants"
	"github.com/julianstephens/termplan/internal/planner"
	"github.com/julianstephens/termplan/internal/scheduler"
	"github.com/julianstephens/termplan/internal/tui/components/decisions"
	"github.com/julianstephens/termplan/internal/tui/components/plan"
	"github.com/julianstephens/termplan/internal/tui/components/tasklist"
)

type KeyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Generate key.Binding
	Up       key.Binding
	Down     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next view"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous view"),
		),
		Generate: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "generate plan"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

var tabs = []struct {
	title string
	state constants.SessionState
}{
	{"Plan", constants.StatePlan},
	{"Tasks", constants.StateTasks},
	{"Log", constants.StateLog},
}

type Model struct {
	svc           *planner.Service
	gen           *scheduler.Generation
	state         constants.SessionState
	previousState constants.SessionState
	keys          KeyMap
	help          help.Model
	planModel     plan.Model
	taskList      tasklist.Model
	logModel      decisions.Model
	form          *huh.Form
	taskForm      *TaskFormModel
	confirm       *constants.ConfirmationMsg
	titles        map[string]string
	generating    bool
	conflicts     int
	status        string
	err           error
	quitting      bool
	width         int
	height        int
}

// NewModel builds the TUI over svc. Data is loaded by the command Init returns.
func NewModel(svc *planner.Service) Model {
	return Model{
		svc:       svc,
		gen:       &scheduler.Generation{},
		state:     constants.StatePlan,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		planModel: plan.New(0, 0),
		taskList:  tasklist.New(nil, 0, 0),
		logModel:  decisions.New(0, 0),
		titles:    make(map[string]string),
	}
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Generate, m.keys.Quit, m.keys.Help}
	if m.state == constants.StateTasks {
		tk := tasklist.DefaultKeyMap()
		keys = append(keys, tk.Add, tk.Complete, tk.Delete)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Generate, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}

	var actions []key.Binding
	if m.state == constants.StateTasks {
		tk := tasklist.DefaultKeyMap()
		actions = []key.Binding{tk.Add, tk.Complete, tk.Delete, tk.Restore}
	}
	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return loadData(m.svc)
}

package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"go.uber.org/zap"

	"github.com/dosewatch/dosewatch/internal/api"
	"github.com/dosewatch/dosewatch/internal/notify"
	"github.com/dosewatch/dosewatch/internal/reconcile"
	"github.com/dosewatch/dosewatch/internal/registry"
	"github.com/dosewatch/dosewatch/internal/scheduler"
)

type View string

const (
	ViewToday       View = "Today"
	ViewSupplements View = "Supplements"
	ViewChat        View = "Chat"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Today       string
	Supplements string
	Chat        string
	Help        string
	Quit        string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

// ChatEntry is one line in the chat feed. IDs are local; the backend never
// sees them.
type ChatEntry struct {
	ID      string
	Role    string
	Content string
}

type ChatState struct {
	Entries []ChatEntry
	Waiting bool
}

// ChatClient is the slice of the API client the chat view needs.
type ChatClient interface {
	Chat(ctx context.Context, history []api.ChatMessage) (api.ChatMessage, error)
}

type Model struct {
	CurrentView    View
	SelectedDoseID string
	Today          TodayState
	Supplements    SupplementsState
	Chat           ChatState
	Registry       *registry.Registry
	Reconciler     *reconcile.Reconciler
	Planner        *scheduler.Planner
	Engine         *scheduler.Engine
	Palette        CommandPaletteState
	HelpVisible    bool
	Notifications  []notify.Notification
	DesktopEnabled bool
	notifier       notify.Notifier
	chatClient     ChatClient
	Status         StatusBar
	Keys           GlobalKeyMap
	Quitting       bool
	LastError      error
	// Offline marks the registry as backed by a cached snapshot. Toggles are
	// rejected while set; a successful refresh clears it.
	Offline  bool
	StaleDay string
	// Bubble components used for rich TUI controls
	commandInput  textinput.Model
	chatInput     textinput.Model
	syncSpinner   spinner.Model
	helpModel     help.Model
	spinnerActive bool
	log           *zap.Logger
	now           func() time.Time
}

type TodayState struct {
	Cursor int
}

type SupplementsState struct {
	Cursor int
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type DoseDueMsg struct {
	Event scheduler.DoseEvent
}

type ChatReplyMsg struct {
	Reply api.ChatMessage
	Err   error
}

// Deps carries the long-lived collaborators the TUI drives.
type Deps struct {
	Registry   *registry.Registry
	Reconciler *reconcile.Reconciler
	Planner    *scheduler.Planner
	Engine     *scheduler.Engine
	Chat       ChatClient
	Notifier   notify.Notifier
	Logger     *zap.Logger
}

func NewModel() Model {
	m := Model{
		CurrentView: ViewToday,
		Registry:    registry.New(),
		notifier:    notify.Noop{},
		Keys: GlobalKeyMap{
			Today:       "1",
			Supplements: "2",
			Chat:        "3",
			Help:        "?",
			Quit:        "q",
		},
		log: zap.NewNop(),
		now: time.Now,
	}
	m.initBubbleComponents()
	return m
}

func NewModelWithDeps(deps Deps) Model {
	m := NewModel()
	if deps.Registry != nil {
		m.Registry = deps.Registry
	}
	m.Reconciler = deps.Reconciler
	m.Planner = deps.Planner
	m.Engine = deps.Engine
	m.chatClient = deps.Chat
	if deps.Notifier != nil {
		m.notifier = deps.Notifier
	}
	if deps.Logger != nil {
		m.log = deps.Logger
	}
	m.clampCursors()
	return m
}

func NewModelWithRuntime(deps Deps, desktopEnabled bool) Model {
	m := NewModelWithDeps(deps)
	m.DesktopEnabled = desktopEnabled
	return m
}

func (m *Model) initBubbleComponents() {
	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.chatInput = textinput.New()
	m.chatInput.Prompt = "chat> "
	m.chatInput.CharLimit = 512
	m.chatInput.Width = 60

	m.syncSpinner = spinner.New()
	m.syncSpinner.Spinner = spinner.Dot

	m.helpModel = help.New()
}

func (m *Model) notify(title, body, level string) {
	if body == "" {
		return
	}
	n := notify.Notification{
		Title: title,
		Body:  body,
		Level: level,
		At:    m.now(),
	}
	m.Notifications = append(m.Notifications, n)
	if len(m.Notifications) > 40 {
		m.Notifications = m.Notifications[len(m.Notifications)-40:]
	}
	if m.DesktopEnabled && m.notifier != nil {
		_ = m.notifier.Send(n)
	}
}

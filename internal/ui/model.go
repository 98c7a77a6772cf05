package ui

import (
	"reflect"
	"time"

	"github.com/10jschen/matterhorn/internal/chat"
	"github.com/10jschen/matterhorn/internal/logging"
	"github.com/10jschen/matterhorn/internal/logging/events"
	"github.com/10jschen/matterhorn/internal/state"
	"github.com/10jschen/matterhorn/internal/theme"
	"github.com/10jschen/matterhorn/internal/worker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// compose is the in-progress input line for the focused channel, with
// history navigation state. The line is held as runes so editing and the
// cursor always land on character boundaries. histIdx -1 means not
// navigating; draft holds whatever was typed before navigation began.
type compose struct {
	text    []rune
	cursor  int
	histIdx int
	draft   string
}

// Model implements the Bubble Tea model. All application-state mutation
// happens inside Update, which Bubble Tea serializes; the socket listener,
// work queue, and timezone poller only ever feed messages into it.
type Model struct {
	st     *state.AppState
	client chat.Client
	queue  *worker.Queue
	socket *chat.Listener
	tz     <-chan string

	mode    Mode
	compose compose
	spinner spinner.Model

	width  int
	height int

	busyDepth int
	connected bool
	errMsg    string

	typingThrottle *chat.Throttle

	dumpPath string

	locations map[string]*time.Location

	handlers map[reflect.Type]msgHandler

	now func() time.Time
}

// NewModel wires the UI over its collaborators. tz may be nil in tests.
func NewModel(st *state.AppState, client chat.Client, queue *worker.Queue, socket *chat.Listener, tz <-chan string, dumpPath string) *Model {
	m := &Model{
		st:             st,
		client:         client,
		queue:          queue,
		socket:         socket,
		tz:             tz,
		mode:           Main{},
		dumpPath:       dumpPath,
		typingThrottle: chat.NewThrottle(3 * time.Second),
		locations:      make(map[string]*time.Location),
		now:            time.Now,
	}
	m.compose.histIdx = -1
	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot))
	m.registerHandlers()
	return m
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(), m.spinner.Tick}
	if m.socket != nil {
		cmds = append(cmds, waitForSocketEvent(m.socket))
	}
	if m.queue != nil {
		cmds = append(cmds, waitForQueueEvent(m.queue))
	}
	if m.tz != nil {
		cmds = append(cmds, waitForTimezone(m.tz))
	}
	return tea.Batch(cmds...)
}

// Update responds to Bubble Tea messages. It is the single entry point for
// every event and is never re-entrant.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if handler := m.handlerFor(msg); handler != nil {
		return m, handler(msg)
	}
	return m, nil
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(socketEventMsg{}):    m.handleSocketEventMsg,
		reflect.TypeOf(socketDoneMsg{}):     m.handleSocketDoneMsg,
		reflect.TypeOf(queueEventMsg{}):     m.handleQueueEventMsg,
		reflect.TypeOf(queueDoneMsg{}):      m.handleQueueDoneMsg,
		reflect.TypeOf(tzChangedMsg{}):      m.handleTimezoneMsg,
		reflect.TypeOf(displayErrorMsg{}):   m.handleDisplayErrorMsg,
		reflect.TypeOf(tickMsg{}):           m.handleTickMsg,
		reflect.TypeOf(spinner.TickMsg{}):   m.handleSpinnerTick,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if m.handlers == nil {
		return nil
	}
	return m.handlers[reflect.TypeOf(msg)]
}

// setMode performs an explicit mode transition.
func (m *Model) setMode(next Mode) {
	if m.mode != nil && next != nil {
		events.UI.ModeChanged(m.mode.modeTag(), next.modeTag())
	}
	m.mode = next
}

// displayError surfaces a one-line error in the conversation view and logs
// it with the current channel for context.
func (m *Model) displayError(err error) {
	if err == nil {
		return
	}
	m.errMsg = err.Error()
	channel := ""
	if ch, ok := m.st.FocusedChannel(); ok {
		channel = string(ch.Info.ID)
	}
	logging.Errorf("dispatch error (channel=%s): %v", channel, err)
	events.UI.DisplayError(err.Error())
}

// --- message plumbing ---

type socketEventMsg struct {
	event chat.Event
}

type socketDoneMsg struct{}

type queueEventMsg struct {
	event worker.Event
}

type queueDoneMsg struct{}

type tzChangedMsg struct {
	zone string
}

// displayErrorMsg is the internal display-error event.
type displayErrorMsg struct {
	err error
}

type tickMsg time.Time

func waitForSocketEvent(l *chat.Listener) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-l.Events()
		if !ok {
			return socketDoneMsg{}
		}
		return socketEventMsg{event: evt}
	}
}

func waitForQueueEvent(q *worker.Queue) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-q.Events()
		if !ok {
			return queueDoneMsg{}
		}
		return queueEventMsg{event: evt}
	}
}

func waitForTimezone(tz <-chan string) tea.Cmd {
	return func() tea.Msg {
		zone, ok := <-tz
		if !ok {
			return nil
		}
		return tzChangedMsg{zone: zone}
	}
}

// tickCmd drives periodic redraws so typing indicators expire visibly.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	size, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	m.width = size.Width
	m.height = size.Height
	return nil
}

func (m *Model) handleTickMsg(tea.Msg) tea.Cmd {
	return tickCmd()
}

func (m *Model) handleSpinnerTick(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return cmd
}

func (m *Model) handleTimezoneMsg(msg tea.Msg) tea.Cmd {
	change, ok := msg.(tzChangedMsg)
	if !ok {
		return nil
	}
	m.st.Timezone = change.zone
	events.App.TimezoneChanged(change.zone)
	return waitForTimezone(m.tz)
}

func (m *Model) handleDisplayErrorMsg(msg tea.Msg) tea.Cmd {
	display, ok := msg.(displayErrorMsg)
	if !ok {
		return nil
	}
	m.displayError(display.err)
	return nil
}

func (m *Model) handleSocketDoneMsg(tea.Msg) tea.Cmd {
	m.socket = nil
	return nil
}

func (m *Model) handleQueueDoneMsg(tea.Msg) tea.Cmd {
	m.queue = nil
	return nil
}

func (m *Model) handleSocketEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(socketEventMsg)
	if !ok {
		return nil
	}
	m.applySocketEvent(eventMsg.event)
	if m.socket != nil {
		return waitForSocketEvent(m.socket)
	}
	return nil
}

func (m *Model) handleQueueEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(queueEventMsg)
	if !ok {
		return nil
	}
	m.applyQueueEvent(eventMsg.event)
	if m.queue != nil {
		return waitForQueueEvent(m.queue)
	}
	return nil
}

package ui

import (
	"errors"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/10jschen/matterhorn/internal/chat"
	"github.com/10jschen/matterhorn/internal/state"
	"github.com/10jschen/matterhorn/internal/testutil"
	"github.com/10jschen/matterhorn/internal/worker"
	tea "github.com/charmbracelet/bubbletea"
)

var testTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T, client chat.Client, queue *worker.Queue) *Model {
	t.Helper()
	st := state.NewAppState(chat.Session{
		UserID:   "u-self",
		Username: "self",
		TeamID:   "t-1",
		TeamName: "testers",
	})
	st.SetChannels([]chat.Channel{
		{ID: "ch-general", Name: "general", Type: chat.ChannelOpen},
		{ID: "ch-random", Name: "random", Type: chat.ChannelOpen},
	}, nil)
	st.SetUsers([]chat.User{
		{ID: "u-self", Username: "self", Status: chat.StatusOnline},
		{ID: "u-amy", Username: "amy", Status: chat.StatusOnline},
	})
	m := NewModel(st, client, queue, nil, nil, "")
	m.now = func() time.Time { return testTime }
	m.width = 80
	m.height = 24
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m *Model, key tea.KeyMsg) {
	t.Helper()
	m.Update(key)
}

func waitQueueEvent(t *testing.T, q *worker.Queue, want func(worker.Event) bool) worker.Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt, ok := <-q.Events():
			if !ok {
				t.Fatalf("queue closed before expected event")
			}
			if want(evt) {
				return evt
			}
		case <-deadline:
			t.Fatalf("timed out waiting for queue event")
		}
	}
}

func TestComposeTypingAndCursor(t *testing.T) {
	m := newTestModel(t, &testutil.FakeClient{}, nil)
	press(t, m, keyRunes("hi"))
	press(t, m, keyRunes("!"))
	if string(m.compose.text) != "hi!" || m.compose.cursor != 3 {
		t.Fatalf("expected compose hi! cursor 3, got %q cursor %d", string(m.compose.text), m.compose.cursor)
	}
	press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	press(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	if string(m.compose.text) != "h!" || m.compose.cursor != 1 {
		t.Fatalf("expected compose h! cursor 1, got %q cursor %d", string(m.compose.text), m.compose.cursor)
	}
}

func TestComposeEditsMultibyteRunesWhole(t *testing.T) {
	m := newTestModel(t, &testutil.FakeClient{}, nil)
	press(t, m, keyRunes("héllo"))
	for i := 0; i < 4; i++ {
		press(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	}
	if string(m.compose.text) != "h" {
		t.Fatalf("backspace must erase whole runes, got %q", string(m.compose.text))
	}
	if !utf8.ValidString(string(m.compose.text)) {
		t.Fatalf("compose contains invalid UTF-8: %q", string(m.compose.text))
	}

	press(t, m, keyRunes("é"))
	press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	press(t, m, keyRunes("x"))
	if string(m.compose.text) != "hxé" {
		t.Fatalf("cursor must land on rune boundaries, got %q", string(m.compose.text))
	}
}

func TestSubmitComposeSendsAndRecordsHistory(t *testing.T) {
	client := &testutil.FakeClient{}
	queue := worker.NewQueue()
	defer queue.Stop()
	m := newTestModel(t, client, queue)
	ch, _ := m.st.FocusedChannel()
	m.st.SetChannelPosts(ch.Info.ID, nil)

	press(t, m, keyRunes("hello"))
	press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if len(m.compose.text) != 0 {
		t.Fatalf("compose should clear on submit, got %q", string(m.compose.text))
	}
	if got, ok := m.st.History.At(ch.Info.ID, 0); !ok || got != "hello" {
		t.Fatalf("expected history entry hello, got %q ok=%v", got, ok)
	}

	evt := waitQueueEvent(t, queue, func(evt worker.Event) bool {
		done, ok := evt.(worker.Done)
		return ok && done.Name == opSendMessage
	})
	m.applyQueueEvent(evt)
	if _, ok := m.st.Channel(ch.Info.ID); !ok {
		t.Fatalf("channel disappeared")
	}
	if _, found := m.st.PostChannel("sent-hello"); !found {
		t.Fatalf("sent post not applied to state")
	}
}

func TestHistoryNavigationPreservesDraft(t *testing.T) {
	m := newTestModel(t, &testutil.FakeClient{}, nil)
	ch, _ := m.st.FocusedChannel()
	m.st.History.Add(ch.Info.ID, "first")
	m.st.History.Add(ch.Info.ID, "second")

	press(t, m, keyRunes("draft"))
	press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if string(m.compose.text) != "second" {
		t.Fatalf("expected most recent entry, got %q", string(m.compose.text))
	}
	press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if string(m.compose.text) != "first" {
		t.Fatalf("expected older entry, got %q", string(m.compose.text))
	}
	press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if string(m.compose.text) != "first" {
		t.Fatalf("oldest entry should pin, got %q", string(m.compose.text))
	}
	press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if string(m.compose.text) != "draft" {
		t.Fatalf("draft should come back, got %q", string(m.compose.text))
	}
}

func TestChannelSelectCommitFocusesChannel(t *testing.T) {
	m := newTestModel(t, &testutil.FakeClient{}, nil)
	press(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})
	if _, ok := m.mode.(ChannelSelect); !ok {
		t.Fatalf("expected channel-select mode, got %T", m.mode)
	}
	press(t, m, keyRunes("ran"))
	mode := m.mode.(ChannelSelect)
	if len(mode.Matches.Channels) != 1 {
		t.Fatalf("expected one channel match, got %+v", mode.Matches)
	}
	press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if _, ok := m.mode.(Main); !ok {
		t.Fatalf("expected main mode after commit, got %T", m.mode)
	}
	ch, _ := m.st.FocusedChannel()
	if ch.Info.ID != "ch-random" {
		t.Fatalf("expected focus on ch-random, got %s", ch.Info.ID)
	}
}

func TestChannelSelectAmbiguousStays(t *testing.T) {
	m := newTestModel(t, &testutil.FakeClient{}, nil)
	press(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})
	press(t, m, keyRunes("e"))
	mode := m.mode.(ChannelSelect)
	if mode.Matches.Total() < 2 {
		t.Fatalf("fixture should be ambiguous, got %+v", mode.Matches)
	}
	press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if _, ok := m.mode.(ChannelSelect); !ok {
		t.Fatalf("ambiguous commit must stay in channel-select, got %T", m.mode)
	}
	if m.errMsg == "" {
		t.Fatalf("expected disambiguation hint in error line")
	}
}

func TestChannelSelectBackspaceRemovesWholeRune(t *testing.T) {
	m := newTestModel(t, &testutil.FakeClient{}, nil)
	press(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})
	press(t, m, keyRunes("é"))
	press(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	mode, ok := m.mode.(ChannelSelect)
	if !ok {
		t.Fatalf("expected channel-select mode, got %T", m.mode)
	}
	if mode.Input != "" {
		t.Fatalf("expected empty input after backspace, got %q", mode.Input)
	}
	if !utf8.ValidString(mode.Input) {
		t.Fatalf("input contains invalid UTF-8: %q", mode.Input)
	}
}

func TestEscReturnsToMain(t *testing.T) {
	m := newTestModel(t, &testutil.FakeClient{}, nil)
	press(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})
	press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if _, ok := m.mode.(Main); !ok {
		t.Fatalf("expected main mode, got %T", m.mode)
	}
}

func TestSocketPostedAddsToState(t *testing.T) {
	m := newTestModel(t, &testutil.FakeClient{}, nil)
	ch, _ := m.st.FocusedChannel()
	m.st.SetChannelPosts(ch.Info.ID, nil)

	m.applySocketEvent(chat.PostedEvent{Post: chat.Post{
		ID:        "p-1",
		ChannelID: ch.Info.ID,
		UserID:    "u-amy",
		Message:   "hello there",
		CreateAt:  testTime,
	}})
	if _, ok := ch.Post("p-1"); !ok {
		t.Fatalf("posted event did not land in channel")
	}

	// A post for a channel this client does not know is dropped.
	m.applySocketEvent(chat.PostedEvent{Post: chat.Post{
		ID:        "p-2",
		ChannelID: "ch-unknown",
		Message:   "lost",
	}})
	if _, found := m.st.PostChannel("p-2"); found {
		t.Fatalf("unknown-channel post must be dropped")
	}
}

func TestDisconnectedSetsErrorAndConnectClears(t *testing.T) {
	m := newTestModel(t, &testutil.FakeClient{}, nil)
	m.applySocketEvent(chat.DisconnectedEvent{Err: errors.New("broken pipe")})
	if m.connected || m.errMsg == "" {
		t.Fatalf("expected disconnected state with message, got connected=%v err=%q", m.connected, m.errMsg)
	}
	m.applySocketEvent(chat.ConnectedEvent{})
	if !m.connected || m.errMsg != "" {
		t.Fatalf("expected clean connected state, got connected=%v err=%q", m.connected, m.errMsg)
	}
}

func TestQueueBusyIdleDepth(t *testing.T) {
	m := newTestModel(t, &testutil.FakeClient{}, nil)
	m.applyQueueEvent(worker.Busy{Depth: 3})
	if m.busyDepth != 3 {
		t.Fatalf("expected depth 3, got %d", m.busyDepth)
	}
	m.applyQueueEvent(worker.Idle{})
	if m.busyDepth != 0 {
		t.Fatalf("expected idle depth 0, got %d", m.busyDepth)
	}
}

func TestQueueFailureSurfacesError(t *testing.T) {
	m := newTestModel(t, &testutil.FakeClient{}, nil)
	m.applyQueueEvent(worker.Failed{Name: opSendMessage, Err: errors.New("boom")})
	if m.errMsg == "" {
		t.Fatalf("expected failure to surface in error line")
	}
}

func TestFetchJoinableFillsJoinMode(t *testing.T) {
	m := newTestModel(t, &testutil.FakeClient{}, nil)
	m.setMode(JoinChannel{Loading: true})
	m.st.SetJoinable([]chat.Channel{{ID: "ch-new", Name: "newchan", Type: chat.ChannelOpen}})
	m.applyQueueEvent(worker.Done{Name: opFetchJoinable})
	mode, ok := m.mode.(JoinChannel)
	if !ok || mode.Loading {
		t.Fatalf("expected loaded join mode, got %T %+v", m.mode, m.mode)
	}
	if len(mode.Channels) != 1 || mode.Channels[0].ID != "ch-new" {
		t.Fatalf("expected joinable list in mode, got %+v", mode.Channels)
	}
}

func TestFetchJoinableFailureFallsBackToMain(t *testing.T) {
	m := newTestModel(t, &testutil.FakeClient{}, nil)
	m.setMode(JoinChannel{Loading: true})
	m.applyQueueEvent(worker.Failed{Name: opFetchJoinable, Err: errors.New("offline")})
	if _, ok := m.mode.(Main); !ok {
		t.Fatalf("expected fallback to main, got %T", m.mode)
	}
}

func TestTypingEventTracked(t *testing.T) {
	m := newTestModel(t, &testutil.FakeClient{}, nil)
	ch, _ := m.st.FocusedChannel()
	m.applySocketEvent(chat.TypingEvent{UserID: "u-amy", ChannelID: ch.Info.ID})
	active := m.st.Typing.Active(ch.Info.ID, testTime)
	if len(active) != 1 || active[0] != "u-amy" {
		t.Fatalf("expected amy typing, got %v", active)
	}
}

func TestQuitKeyReturnsQuitCommand(t *testing.T) {
	m := newTestModel(t, &testutil.FakeClient{}, nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlQ})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg from ctrl+q")
	}
}

func TestLocationCacheIsPerModel(t *testing.T) {
	m1 := newTestModel(t, &testutil.FakeClient{}, nil)
	m2 := newTestModel(t, &testutil.FakeClient{}, nil)

	m1.st.Timezone = "UTC"
	if got := m1.formatTime(testTime); got != "12:00" {
		t.Fatalf("expected UTC render, got %q", got)
	}
	if _, ok := m1.locations["UTC"]; !ok {
		t.Fatalf("expected m1 to cache the zone lookup")
	}
	if _, ok := m2.locations["UTC"]; ok {
		t.Fatalf("zone cache must not be shared across models")
	}
}

func TestChannelDeletedResetsFocusedMode(t *testing.T) {
	m := newTestModel(t, &testutil.FakeClient{}, nil)
	ch, _ := m.st.FocusedChannel()
	m.setMode(MessageSelect{Selected: "p-1"})
	m.applySocketEvent(chat.ChannelDeletedEvent{ChannelID: ch.Info.ID})
	if _, ok := m.mode.(Main); !ok {
		t.Fatalf("expected main mode after focused channel removal, got %T", m.mode)
	}
	if _, ok := m.st.Channel(ch.Info.ID); ok {
		t.Fatalf("deleted channel still present")
	}
}

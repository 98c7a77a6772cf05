package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/10jschen/matterhorn/internal/chat"
	"github.com/10jschen/matterhorn/internal/testutil"
	tea "github.com/charmbracelet/bubbletea"
)

func seedPosts(t *testing.T, m *Model, messages ...string) chat.ChannelID {
	t.Helper()
	ch, ok := m.st.FocusedChannel()
	if !ok {
		t.Fatalf("no focused channel")
	}
	posts := make([]chat.Post, len(messages))
	for i, message := range messages {
		posts[i] = chat.Post{
			ID:        chat.PostID("p-" + string(rune('a'+i))),
			ChannelID: ch.Info.ID,
			UserID:    "u-amy",
			Message:   message,
			CreateAt:  testTime.Add(time.Duration(i) * time.Minute),
		}
	}
	m.st.SetChannelPosts(ch.Info.ID, posts)
	return ch.Info.ID
}

func TestOpenURLSelectNewestFirstDeduped(t *testing.T) {
	m := newTestModel(t, &testutil.FakeClient{}, nil)
	seedPosts(t, m,
		"see https://example.com/old and https://dup.example.com",
		"nothing here",
		"also https://dup.example.com plus https://example.com/new",
	)
	press(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	mode, ok := m.mode.(UrlSelect)
	if !ok {
		t.Fatalf("expected url-select mode, got %T", m.mode)
	}
	want := []string{
		"https://dup.example.com",
		"https://example.com/new",
		"https://example.com/old",
	}
	if len(mode.URLs) != len(want) {
		t.Fatalf("expected %d urls, got %v", len(want), mode.URLs)
	}
	for i, url := range want {
		if mode.URLs[i] != url {
			t.Fatalf("url %d: expected %s, got %s", i, url, mode.URLs[i])
		}
	}
}

func TestOpenURLSelectNoURLsStaysInMain(t *testing.T) {
	m := newTestModel(t, &testutil.FakeClient{}, nil)
	seedPosts(t, m, "plain text only")
	press(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	if _, ok := m.mode.(Main); !ok {
		t.Fatalf("expected main mode, got %T", m.mode)
	}
}

func TestMessageSelectSkipsDeleted(t *testing.T) {
	m := newTestModel(t, &testutil.FakeClient{}, nil)
	id := seedPosts(t, m, "one", "two", "three")
	m.st.DeletePost("p-b")

	press(t, m, tea.KeyMsg{Type: tea.KeyCtrlX})
	mode, ok := m.mode.(MessageSelect)
	if !ok {
		t.Fatalf("expected message-select mode, got %T", m.mode)
	}
	if mode.Selected != "p-c" {
		t.Fatalf("expected newest post selected, got %s", mode.Selected)
	}
	press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	mode = m.mode.(MessageSelect)
	if mode.Selected != "p-a" {
		t.Fatalf("expected deleted post skipped, got %s", mode.Selected)
	}
	if _, ok := m.st.Channel(id); !ok {
		t.Fatalf("channel disappeared")
	}
}

func TestViewRendersChannelAndMessages(t *testing.T) {
	m := newTestModel(t, &testutil.FakeClient{}, nil)
	seedPosts(t, m, "rendered message body")
	out := m.View()
	if !strings.Contains(out, "general") {
		t.Fatalf("view should show focused channel name:\n%s", out)
	}
	if !strings.Contains(out, "rendered message body") {
		t.Fatalf("view should show the message:\n%s", out)
	}
}

func TestViewShowsBusyIndicator(t *testing.T) {
	m := newTestModel(t, &testutil.FakeClient{}, nil)
	seedPosts(t, m, "hi")
	m.busyDepth = 2
	out := m.View()
	if !strings.Contains(out, "working (2)") {
		t.Fatalf("view should show busy depth:\n%s", out)
	}
}

package state

import (
	"testing"
	"time"

	"github.com/10jschen/matterhorn/internal/chat"
)

func newTestState() *AppState {
	return NewAppState(chat.Session{UserID: "me", Username: "self", TeamID: "t1"})
}

func TestSetChannelsCreatesOnFirstSightAndPrunes(t *testing.T) {
	st := newTestState()
	st.SetChannels([]chat.Channel{
		{ID: "c1", Name: "general", Type: chat.ChannelOpen},
		{ID: "c2", Name: "random", Type: chat.ChannelOpen},
	}, nil)

	if _, ok := st.Channel("c1"); !ok {
		t.Fatalf("expected c1 to exist")
	}
	st.SetChannels([]chat.Channel{
		{ID: "c1", Name: "general", Type: chat.ChannelOpen},
	}, nil)
	if _, ok := st.Channel("c2"); ok {
		t.Fatalf("expected c2 to be pruned")
	}
	if _, ok := st.Names().ChannelID("random"); ok {
		t.Fatalf("expected random to leave the name index")
	}
}

func TestSetChannelsPreservesLoadedContents(t *testing.T) {
	st := newTestState()
	st.SetChannels([]chat.Channel{{ID: "c1", Name: "general", Type: chat.ChannelOpen}}, nil)
	st.SetChannelPosts("c1", []chat.Post{post("p1", baseTime)})

	st.SetChannels([]chat.Channel{{ID: "c1", Name: "general", Type: chat.ChannelOpen}}, nil)
	ch, _ := st.Channel("c1")
	if ch.Info.Load != Loaded || len(ch.Posts) != 1 {
		t.Fatalf("expected loaded contents to survive refresh, got load=%v posts=%d", ch.Info.Load, len(ch.Posts))
	}
}

func TestDirectChannelCounterpartResolution(t *testing.T) {
	st := newTestState()
	st.SetUsers([]chat.User{{ID: "u2", Username: "amy", Status: chat.StatusOnline}})
	st.SetChannels([]chat.Channel{
		{ID: "d1", Name: "me__u2", Type: chat.ChannelDirect},
	}, nil)

	ch, ok := st.Channel("d1")
	if !ok {
		t.Fatalf("expected direct channel")
	}
	if ch.Info.DMUser != "u2" {
		t.Fatalf("expected counterpart u2, got %q", ch.Info.DMUser)
	}
	if label := st.ChannelLabel(ch); label != "amy" {
		t.Fatalf("expected DM label amy, got %q", label)
	}
}

func TestAddPostUnknownChannelDropped(t *testing.T) {
	st := newTestState()
	if st.AddPost(post("p1", baseTime)) {
		t.Fatalf("expected post for unknown channel to be dropped")
	}
}

func TestPostIndexFollowsPostLifecycle(t *testing.T) {
	st := newTestState()
	st.SetChannels([]chat.Channel{{ID: "c1", Name: "general", Type: chat.ChannelOpen}}, nil)
	st.SetChannelPosts("c1", nil)

	if !st.AddPost(post("p1", baseTime)) {
		t.Fatalf("expected post to land")
	}
	if id, ok := st.PostChannel("p1"); !ok || id != "c1" {
		t.Fatalf("expected post index entry, got %q ok=%v", id, ok)
	}

	edited := post("p1", baseTime)
	edited.Message = "edited"
	if !st.EditPost(edited) {
		t.Fatalf("expected edit to land")
	}
	ch, _ := st.Channel("c1")
	if got, _ := ch.Post("p1"); got.Message != "edited" {
		t.Fatalf("expected edited message, got %q", got.Message)
	}

	if !st.DeletePost("p1") {
		t.Fatalf("expected delete to land")
	}
	if got, _ := ch.Post("p1"); !got.Deleted {
		t.Fatalf("expected post marked deleted")
	}
}

func TestEditUnknownPostDropped(t *testing.T) {
	st := newTestState()
	if st.EditPost(post("ghost", baseTime)) {
		t.Fatalf("expected edit of unknown post to be dropped")
	}
	if st.DeletePost("ghost") {
		t.Fatalf("expected delete of unknown post to be dropped")
	}
}

func TestSortedUsersPartitionAndOrder(t *testing.T) {
	st := newTestState()
	st.SetUsers([]chat.User{
		{ID: "u1", Username: "bob", Status: chat.StatusOffline},
		{ID: "u2", Username: "amy", Status: chat.StatusOnline},
		{ID: "u3", Username: "zed", Status: chat.StatusOnline},
	})

	var got []string
	for _, u := range st.SortedUsers() {
		got = append(got, u.Name)
	}
	want := []string{"amy", "zed", "bob"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestSortedUsersUnreadDMFirst(t *testing.T) {
	st := newTestState()
	st.SetUsers([]chat.User{
		{ID: "u2", Username: "amy", Status: chat.StatusOnline},
		{ID: "u3", Username: "zed", Status: chat.StatusOnline},
	})
	st.SetChannels([]chat.Channel{
		{ID: "d1", Name: "me__u3", Type: chat.ChannelDirect, LastPostAt: baseTime.Add(time.Minute)},
	}, []chat.ChannelMember{
		{ChannelID: "d1", UserID: "me", LastViewedAt: baseTime},
	})

	users := st.SortedUsers()
	if users[0].Name != "zed" {
		t.Fatalf("expected zed (unread DM) first, got %q", users[0].Name)
	}
}

func TestSortedUsersExcludesDeleted(t *testing.T) {
	st := newTestState()
	st.SetUsers([]chat.User{
		{ID: "u1", Username: "amy", Status: chat.StatusOnline},
		{ID: "u2", Username: "bob", Status: chat.StatusOnline},
	})
	st.MarkUserDeleted("u2")

	for _, u := range st.SortedUsers() {
		if u.Name == "bob" {
			t.Fatalf("expected deleted user excluded from sorted list")
		}
	}
	if _, ok := st.UserByName("bob"); ok {
		t.Fatalf("expected deleted user out of the name index")
	}
}

func TestHighlightSetTracksAuthoritativeMaps(t *testing.T) {
	st := newTestState()
	st.SetChannels([]chat.Channel{{ID: "c1", Name: "general", Type: chat.ChannelOpen}}, nil)
	st.SetUsers([]chat.User{{ID: "u1", Username: "amy", Status: chat.StatusOnline}})

	set := st.HighlightSet()
	for _, want := range []string{"general", "amy"} {
		if _, ok := set[want]; !ok {
			t.Fatalf("expected %q in highlight set", want)
		}
	}

	st.RemoveChannel("c1")
	set = st.HighlightSet()
	if _, ok := set["general"]; ok {
		t.Fatalf("expected removed channel out of highlight set")
	}
}

func TestFocusCyclesOrderedChannels(t *testing.T) {
	st := newTestState()
	st.SetChannels([]chat.Channel{
		{ID: "c2", Name: "random", Type: chat.ChannelOpen},
		{ID: "c1", Name: "general", Type: chat.ChannelOpen},
	}, nil)

	ch, ok := st.FocusedChannel()
	if !ok || ch.Info.Name != "general" {
		t.Fatalf("expected initial focus on general, got %+v ok=%v", ch, ok)
	}
	st.FocusNext()
	ch, _ = st.FocusedChannel()
	if ch.Info.Name != "random" {
		t.Fatalf("expected focus on random, got %q", ch.Info.Name)
	}
	st.FocusNext()
	ch, _ = st.FocusedChannel()
	if ch.Info.Name != "general" {
		t.Fatalf("expected wrap back to general, got %q", ch.Info.Name)
	}
	st.FocusPrev()
	ch, _ = st.FocusedChannel()
	if ch.Info.Name != "random" {
		t.Fatalf("expected focus back on random, got %q", ch.Info.Name)
	}
}

func TestUpsertUserRenameUpdatesIndex(t *testing.T) {
	st := newTestState()
	st.UpsertUser(chat.User{ID: "u1", Username: "amy", Status: chat.StatusOnline})
	st.UpsertUser(chat.User{ID: "u1", Username: "amelia", Status: chat.StatusOnline})

	if _, ok := st.UserByName("amy"); ok {
		t.Fatalf("expected old username to leave the index")
	}
	u, ok := st.UserByName("amelia")
	if !ok || u.ID != "u1" {
		t.Fatalf("expected rename to land, got %+v ok=%v", u, ok)
	}
}

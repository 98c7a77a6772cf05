package names

import (
	"reflect"
	"testing"
)

func TestAddKeepsNameListSorted(t *testing.T) {
	idx := NewIndex()
	idx.AddChannel("random", "c2")
	idx.AddChannel("general", "c1")
	idx.AddChannel("announcements", "c3")

	want := []string{"announcements", "general", "random"}
	if got := idx.ChannelNames(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected sorted names %v, got %v", want, got)
	}
}

func TestEveryListedNameHasReachableID(t *testing.T) {
	idx := NewIndex()
	ops := []struct {
		add    bool
		name   string
		id     string
	}{
		{true, "general", "c1"},
		{true, "random", "c2"},
		{true, "dev", "c3"},
		{false, "random", ""},
		{true, "random", "c4"},
		{false, "dev", ""},
		{true, "ops", "c5"},
	}
	for _, op := range ops {
		if op.add {
			idx.AddChannel(op.name, op.id)
		} else {
			idx.RemoveChannel(op.name)
		}
	}
	for _, name := range idx.ChannelNames() {
		if _, ok := idx.ChannelID(name); !ok {
			t.Fatalf("listed name %q has no ID mapping", name)
		}
	}
}

func TestDuplicateInsertionSupersedesID(t *testing.T) {
	idx := NewIndex()
	idx.AddChannel("general", "old")
	idx.AddChannel("general", "new")

	if got := idx.ChannelNames(); len(got) != 1 {
		t.Fatalf("expected a single name entry, got %v", got)
	}
	id, ok := idx.ChannelID("general")
	if !ok || id != "new" {
		t.Fatalf("expected superseding ID %q, got %q ok=%v", "new", id, ok)
	}
}

func TestRemoveEvictsNameFromOrderedList(t *testing.T) {
	idx := NewIndex()
	idx.AddUser("amy", "u1")
	idx.AddUser("bob", "u2")
	idx.RemoveUser("amy")

	want := []string{"bob"}
	if got := idx.UserNames(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v after removal, got %v", want, got)
	}
	if _, ok := idx.UserID("amy"); ok {
		t.Fatalf("expected amy mapping to be gone")
	}
}

func TestRemoveUnknownNameIsNoOp(t *testing.T) {
	idx := NewIndex()
	idx.AddChannel("general", "c1")
	idx.RemoveChannel("missing")
	if got := idx.ChannelNames(); len(got) != 1 || got[0] != "general" {
		t.Fatalf("expected general to survive, got %v", got)
	}
}

func TestResolveAmbiguousNameReturnsBothCategories(t *testing.T) {
	idx := NewIndex()
	idx.AddChannel("general", "c1")
	idx.AddUser("general", "u1")

	res := idx.Resolve("general")
	if res.Channel == nil || res.Channel.ID != "c1" {
		t.Fatalf("expected channel match c1, got %+v", res.Channel)
	}
	if res.User == nil || res.User.ID != "u1" {
		t.Fatalf("expected user match u1, got %+v", res.User)
	}
}

func TestResolveSigilRestrictsNamespace(t *testing.T) {
	idx := NewIndex()
	idx.AddChannel("general", "c1")
	idx.AddUser("general", "u1")

	res := idx.Resolve("@general")
	if res.Channel != nil {
		t.Fatalf("expected no channel match for @general, got %+v", res.Channel)
	}
	if res.User == nil || res.User.ID != "u1" {
		t.Fatalf("expected user match u1, got %+v", res.User)
	}

	res = idx.Resolve("~general")
	if res.User != nil {
		t.Fatalf("expected no user match for ~general, got %+v", res.User)
	}
	if res.Channel == nil || res.Channel.ID != "c1" {
		t.Fatalf("expected channel match c1, got %+v", res.Channel)
	}
}

func TestResolveUnknownNameReturnsNoMatch(t *testing.T) {
	idx := NewIndex()
	res := idx.Resolve("ghost")
	if res.Channel != nil || res.User != nil {
		t.Fatalf("expected empty resolution, got %+v", res)
	}
}

func TestRebuildReplacesTableWholesale(t *testing.T) {
	idx := NewIndex()
	idx.AddChannel("stale", "c0")
	idx.RebuildChannels(map[string]string{"general": "c1", "random": "c2"})

	if _, ok := idx.ChannelID("stale"); ok {
		t.Fatalf("expected stale entry to be dropped by rebuild")
	}
	want := []string{"general", "random"}
	if got := idx.ChannelNames(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

package ui

import (
	"fmt"
	"strings"

	"github.com/10jschen/matterhorn/internal/chat"
	"github.com/10jschen/matterhorn/internal/logging/events"
	"github.com/10jschen/matterhorn/internal/state"
	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// handleKeyMsg routes keystrokes. A handful of bindings work everywhere;
// everything else depends on the active mode.
func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch key.String() {
	case "ctrl+q":
		// History persistence happens in app.Run once the program
		// exits, which also covers kills.
		events.App.Shutdown()
		return tea.Quit
	case "f5":
		m.enqueue(m.opRefreshChannels())
		m.enqueue(m.opRefreshUsers())
		return nil
	case "f12":
		m.dumpState()
		return nil
	}

	switch mode := m.mode.(type) {
	case Main:
		return m.keyMain(key)
	case ShowHelp:
		return m.keyShowHelp(mode, key)
	case ChannelSelect:
		return m.keyChannelSelect(mode, key)
	case UrlSelect:
		return m.keyURLSelect(mode, key)
	case LeaveChannelConfirm:
		return m.keyLeaveConfirm(mode, key)
	case DeleteChannelConfirm:
		return m.keyDeleteChannelConfirm(mode, key)
	case JoinChannel:
		return m.keyJoinChannel(mode, key)
	case ChannelScroll:
		return m.keyChannelScroll(mode, key)
	case MessageSelect:
		return m.keyMessageSelect(mode, key)
	case MessageSelectDeleteConfirm:
		return m.keyMessageDeleteConfirm(mode, key)
	case PostListOverlay:
		return m.keyPostList(mode, key)
	case UserListOverlay:
		return m.keyUserList(mode, key)
	case ViewMessage:
		m.setMode(MessageSelect{Selected: mode.Post.ID})
		return nil
	}
	return nil
}

func (m *Model) keyMain(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "enter":
		m.submitCompose()
		return nil
	case "up":
		m.historyOlder()
		return nil
	case "down":
		m.historyNewer()
		return nil
	case "left":
		if m.compose.cursor > 0 {
			m.compose.cursor--
		}
		return nil
	case "right":
		if m.compose.cursor < len(m.compose.text) {
			m.compose.cursor++
		}
		return nil
	case "home", "ctrl+a":
		m.compose.cursor = 0
		return nil
	case "end", "ctrl+e":
		m.compose.cursor = len(m.compose.text)
		return nil
	case "backspace":
		m.composeBackspace()
		return nil
	case "ctrl+u":
		m.compose.text = m.compose.text[m.compose.cursor:]
		m.compose.cursor = 0
		return nil
	case "ctrl+g":
		m.setMode(ChannelSelect{})
		return nil
	case "ctrl+j":
		m.setMode(JoinChannel{Loading: true})
		m.enqueue(m.opFetchJoinable())
		return nil
	case "ctrl+o":
		m.openURLSelect()
		return nil
	case "ctrl+t":
		m.setMode(UserListOverlay{Users: m.st.SortedUsers()})
		return nil
	case "ctrl+x":
		m.openMessageSelect()
		return nil
	case "ctrl+s":
		m.openChannelScroll()
		return nil
	case "ctrl+f":
		m.openMentions()
		return nil
	case "f1":
		m.setMode(ShowHelp{Topic: "main"})
		return nil
	case "ctrl+n":
		m.st.FocusNext()
		m.compose = compose{histIdx: -1}
		m.ensureFocusedLoaded()
		m.noteChannelSwitch()
		return nil
	case "ctrl+p":
		m.st.FocusPrev()
		m.compose = compose{histIdx: -1}
		m.ensureFocusedLoaded()
		m.noteChannelSwitch()
		return nil
	case "ctrl+l":
		if ch, ok := m.st.FocusedChannel(); ok && ch.Info.Type != chat.ChannelDirect {
			m.setMode(LeaveChannelConfirm{Channel: ch.Info.ID})
		}
		return nil
	case "ctrl+d":
		if ch, ok := m.st.FocusedChannel(); ok && ch.Info.Type != chat.ChannelDirect {
			m.setMode(DeleteChannelConfirm{Channel: ch.Info.ID})
		}
		return nil
	}
	if key.Type == tea.KeyRunes || key.Type == tea.KeySpace {
		m.composeInsert(key)
		m.notifyTyping()
	}
	return nil
}

// composeInsert splices typed runes in at the cursor.
func (m *Model) composeInsert(key tea.KeyMsg) {
	runes := key.Runes
	if key.Type == tea.KeySpace {
		runes = []rune{' '}
	}
	c := &m.compose
	text := make([]rune, 0, len(c.text)+len(runes))
	text = append(text, c.text[:c.cursor]...)
	text = append(text, runes...)
	text = append(text, c.text[c.cursor:]...)
	c.text = text
	c.cursor += len(runes)
}

func (m *Model) composeBackspace() {
	c := &m.compose
	if c.cursor == 0 {
		return
	}
	c.text = append(c.text[:c.cursor-1], c.text[c.cursor:]...)
	c.cursor--
}

// submitCompose sends the compose line to the focused channel and records
// it in the input history.
func (m *Model) submitCompose() {
	ch, ok := m.st.FocusedChannel()
	if !ok {
		return
	}
	line := string(m.compose.text)
	if line == "" {
		return
	}
	m.st.History.Add(ch.Info.ID, line)
	m.compose = compose{histIdx: -1}
	events.UI.MessageSent(string(ch.Info.ID))
	m.enqueue(m.opSendMessage(ch.Info.ID, line))
}

// historyOlder walks toward older entries, stashing the live draft on the
// first step so it survives a round trip.
func (m *Model) historyOlder() {
	ch, ok := m.st.FocusedChannel()
	if !ok {
		return
	}
	c := &m.compose
	next := c.histIdx + 1
	line, ok := m.st.History.At(ch.Info.ID, next)
	if !ok {
		return
	}
	if c.histIdx == -1 {
		c.draft = string(c.text)
	}
	c.histIdx = next
	c.text = []rune(line)
	c.cursor = len(c.text)
}

func (m *Model) historyNewer() {
	ch, ok := m.st.FocusedChannel()
	if !ok {
		return
	}
	c := &m.compose
	switch {
	case c.histIdx <= 0:
		if c.histIdx == 0 {
			c.text = []rune(c.draft)
			c.cursor = len(c.text)
			c.histIdx = -1
			c.draft = ""
		}
	default:
		c.histIdx--
		if line, ok := m.st.History.At(ch.Info.ID, c.histIdx); ok {
			c.text = []rune(line)
			c.cursor = len(c.text)
		}
	}
}

// notifyTyping rate-limits the outgoing typing notification.
func (m *Model) notifyTyping() {
	ch, ok := m.st.FocusedChannel()
	if !ok || !m.typingThrottle.Allow() {
		return
	}
	m.enqueue(m.opSendTyping(ch.Info.ID))
}

func (m *Model) noteChannelSwitch() {
	if ch, ok := m.st.FocusedChannel(); ok {
		events.UI.ChannelSwitch(m.st.ChannelLabel(ch))
		m.markViewedIfFocused(ch.Info.ID)
	}
}

func (m *Model) keyShowHelp(mode ShowHelp, key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "esc", "q":
		m.setMode(Main{})
	case "tab":
		m.setMode(ShowHelp{Topic: nextHelpTopic(mode.Topic)})
	}
	return nil
}

func (m *Model) keyChannelSelect(mode ChannelSelect, key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "esc":
		m.setMode(Main{})
		return nil
	case "enter":
		m.commitChannelSelect(mode)
		return nil
	case "backspace":
		if mode.Input == "" {
			return nil
		}
		mode.Input = trimLastRune(mode.Input)
		mode.Matches = computeMatches(m.st.Names(), mode.Input)
		m.setMode(mode)
		return nil
	}
	if key.Type == tea.KeyRunes || key.Type == tea.KeySpace {
		text := string(key.Runes)
		if key.Type == tea.KeySpace {
			text = " "
		}
		mode.Input += text
		mode.Matches = computeMatches(m.st.Names(), mode.Input)
		m.setMode(mode)
	}
	return nil
}

// commitChannelSelect resolves Enter in the switcher. A channel target
// focuses it; a user target opens (or reuses) the direct channel.
func (m *Model) commitChannelSelect(mode ChannelSelect) {
	match, isChannel, ok := commitTarget(mode.Matches, mode.Input)
	if !ok {
		if mode.Matches.Total() > 1 {
			m.errMsg = fmt.Sprintf("%q matches several names, prefix with %c or %c to disambiguate",
				mode.Input, '~', '@')
		}
		return
	}
	events.UI.SelectInput(mode.Input, len(mode.Matches.Channels), len(mode.Matches.Users))
	m.setMode(Main{})
	m.compose = compose{histIdx: -1}
	if isChannel {
		m.st.Focus(chat.ChannelID(match.ID))
		m.ensureFocusedLoaded()
		m.noteChannelSwitch()
		return
	}
	userID := chat.UserID(match.ID)
	for _, id := range m.st.ChannelIDs() {
		ch, ok := m.st.Channel(id)
		if !ok || ch.Info.Type != chat.ChannelDirect {
			continue
		}
		if ch.Info.DMUser == userID {
			m.st.Focus(id)
			m.ensureFocusedLoaded()
			m.noteChannelSwitch()
			return
		}
	}
	m.enqueue(m.opCreateDirect(userID))
}

func (m *Model) keyURLSelect(mode UrlSelect, key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "esc", "q":
		m.setMode(Main{})
	case "up", "k":
		if mode.Cursor > 0 {
			mode.Cursor--
			m.setMode(mode)
		}
	case "down", "j":
		if mode.Cursor < len(mode.URLs)-1 {
			mode.Cursor++
			m.setMode(mode)
		}
	case "enter":
		if mode.Cursor < len(mode.URLs) {
			if err := clipboard.WriteAll(mode.URLs[mode.Cursor]); err != nil {
				m.displayError(fmt.Errorf("copy url: %w", err))
			}
		}
		m.setMode(Main{})
	}
	return nil
}

func (m *Model) keyLeaveConfirm(mode LeaveChannelConfirm, key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "y":
		m.setMode(Main{})
		m.enqueue(m.opLeaveChannel(mode.Channel))
	case "n", "esc":
		m.setMode(Main{})
	}
	return nil
}

func (m *Model) keyDeleteChannelConfirm(mode DeleteChannelConfirm, key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "y":
		m.setMode(Main{})
		m.enqueue(m.opDeleteChannel(mode.Channel))
	case "n", "esc":
		m.setMode(Main{})
	}
	return nil
}

func (m *Model) keyJoinChannel(mode JoinChannel, key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "esc":
		m.setMode(Main{})
		return nil
	case "up":
		if mode.Cursor > 0 {
			mode.Cursor--
			m.setMode(mode)
		}
		return nil
	case "down":
		if mode.Cursor < len(m.filterJoinable(mode))-1 {
			mode.Cursor++
			m.setMode(mode)
		}
		return nil
	case "enter":
		visible := m.filterJoinable(mode)
		if mode.Loading || mode.Cursor >= len(visible) {
			return nil
		}
		m.setMode(Main{})
		m.enqueue(m.opJoinChannel(visible[mode.Cursor].ID))
		return nil
	case "backspace":
		if mode.Filter != "" {
			mode.Filter = trimLastRune(mode.Filter)
			mode.Cursor = 0
			m.setMode(mode)
		}
		return nil
	}
	if key.Type == tea.KeyRunes {
		mode.Filter += string(key.Runes)
		mode.Cursor = 0
		m.setMode(mode)
	}
	return nil
}

func (m *Model) keyChannelScroll(mode ChannelScroll, key tea.KeyMsg) tea.Cmd {
	page := m.height / 2
	if page < 1 {
		page = 10
	}
	switch key.String() {
	case "esc", "q":
		m.setMode(Main{})
	case "up", "k":
		mode.Offset++
		m.setMode(m.clampScroll(mode))
	case "down", "j":
		if mode.Offset > 0 {
			mode.Offset--
			m.setMode(mode)
		} else {
			m.setMode(Main{})
		}
	case "pgup":
		mode.Offset += page
		m.setMode(m.clampScroll(mode))
	case "pgdown":
		mode.Offset -= page
		if mode.Offset <= 0 {
			m.setMode(Main{})
		} else {
			m.setMode(mode)
		}
	case "home":
		if ch, ok := m.st.FocusedChannel(); ok {
			m.setMode(m.clampScroll(ChannelScroll{Offset: len(ch.Posts)}))
		}
	case "end":
		m.setMode(Main{})
	}
	return nil
}

func (m *Model) clampScroll(mode ChannelScroll) ChannelScroll {
	ch, ok := m.st.FocusedChannel()
	if !ok {
		return ChannelScroll{}
	}
	if max := len(ch.Posts); mode.Offset > max {
		mode.Offset = max
	}
	return mode
}

func (m *Model) keyMessageSelect(mode MessageSelect, key tea.KeyMsg) tea.Cmd {
	ch, ok := m.st.FocusedChannel()
	if !ok {
		m.setMode(Main{})
		return nil
	}
	switch key.String() {
	case "esc", "q":
		m.setMode(Main{})
	case "up", "k":
		if id, ok := adjacentPost(ch, mode.Selected, -1); ok {
			m.setMode(MessageSelect{Selected: id})
		}
	case "down", "j":
		if id, ok := adjacentPost(ch, mode.Selected, 1); ok {
			m.setMode(MessageSelect{Selected: id})
		}
	case "d":
		if post, ok := ch.Post(mode.Selected); ok && post.UserID == m.st.Session.UserID {
			m.setMode(MessageSelectDeleteConfirm{Selected: mode.Selected})
		}
	case "v", "enter":
		if post, ok := ch.Post(mode.Selected); ok {
			m.setMode(ViewMessage{Post: post})
		}
	case "y":
		if post, ok := ch.Post(mode.Selected); ok {
			if err := clipboard.WriteAll(post.Message); err != nil {
				m.displayError(fmt.Errorf("copy message: %w", err))
			}
			m.setMode(Main{})
		}
	case "+":
		m.enqueue(m.opAddReaction(mode.Selected, "+1"))
	}
	return nil
}

func (m *Model) keyMessageDeleteConfirm(mode MessageSelectDeleteConfirm, key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "y":
		m.setMode(Main{})
		m.enqueue(m.opDeletePost(mode.Selected))
	case "n", "esc":
		m.setMode(MessageSelect{Selected: mode.Selected})
	}
	return nil
}

func (m *Model) keyPostList(mode PostListOverlay, key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "esc", "q":
		m.setMode(Main{})
	case "up", "k":
		if mode.Cursor > 0 {
			mode.Cursor--
			m.setMode(mode)
		}
	case "down", "j":
		if mode.Cursor < len(mode.Posts)-1 {
			mode.Cursor++
			m.setMode(mode)
		}
	case "enter":
		if mode.Cursor < len(mode.Posts) {
			m.setMode(ViewMessage{Post: mode.Posts[mode.Cursor]})
		}
	}
	return nil
}

func (m *Model) keyUserList(mode UserListOverlay, key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "esc", "q":
		m.setMode(Main{})
	case "up", "k":
		if mode.Cursor > 0 {
			mode.Cursor--
			m.setMode(mode)
		}
	case "down", "j":
		if mode.Cursor < len(mode.Users)-1 {
			mode.Cursor++
			m.setMode(mode)
		}
	case "enter":
		if mode.Cursor < len(mode.Users) {
			user := mode.Users[mode.Cursor]
			m.setMode(Main{})
			m.enqueue(m.opCreateDirect(user.ID))
		}
	}
	return nil
}

// openMessageSelect enters message selection on the newest visible message.
func (m *Model) openMessageSelect() {
	ch, ok := m.st.FocusedChannel()
	if !ok {
		return
	}
	for i := len(ch.Posts) - 1; i >= 0; i-- {
		if !ch.Posts[i].Deleted {
			m.setMode(MessageSelect{Selected: ch.Posts[i].ID})
			return
		}
	}
}

// openMentions lists loaded messages in the focused channel that name this
// user, newest first.
func (m *Model) openMentions() {
	ch, ok := m.st.FocusedChannel()
	if !ok {
		return
	}
	needle := m.st.Session.Username
	var posts []chat.Post
	for i := len(ch.Posts) - 1; i >= 0; i-- {
		post := ch.Posts[i]
		if post.Deleted {
			continue
		}
		if strings.Contains(post.Message, needle) {
			posts = append(posts, post)
		}
	}
	if len(posts) == 0 {
		m.errMsg = "no mentions in this channel"
		return
	}
	m.setMode(PostListOverlay{Title: "Mentions", Posts: posts})
}

func (m *Model) openChannelScroll() {
	if _, ok := m.st.FocusedChannel(); ok {
		m.setMode(ChannelScroll{})
	}
}

// adjacentPost walks from the selected post to its visible neighbour,
// skipping deletions. dir is -1 for older, 1 for newer.
func adjacentPost(ch *state.Channel, from chat.PostID, dir int) (chat.PostID, bool) {
	at := -1
	for i := range ch.Posts {
		if ch.Posts[i].ID == from {
			at = i
			break
		}
	}
	if at < 0 {
		return "", false
	}
	for i := at + dir; i >= 0 && i < len(ch.Posts); i += dir {
		if !ch.Posts[i].Deleted {
			return ch.Posts[i].ID, true
		}
	}
	return "", false
}

// filterJoinable narrows the joinable list by a case-insensitive fuzzy
// match on the channel name.
func (m *Model) filterJoinable(mode JoinChannel) []chat.Channel {
	if mode.Filter == "" {
		return mode.Channels
	}
	var out []chat.Channel
	for _, ch := range mode.Channels {
		if fuzzy.MatchFold(mode.Filter, ch.Name) || fuzzy.MatchFold(mode.Filter, ch.DisplayName) {
			out = append(out, ch)
		}
	}
	return out
}

// trimLastRune removes the final rune, not the final byte, so multibyte
// input erases cleanly.
func trimLastRune(s string) string {
	r := []rune(s)
	return string(r[:len(r)-1])
}

func nextHelpTopic(topic string) string {
	for i, t := range helpTopics {
		if t == topic {
			return helpTopics[(i+1)%len(helpTopics)]
		}
	}
	return helpTopics[0]
}

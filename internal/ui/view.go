package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/10jschen/matterhorn/internal/chat"
	"github.com/10jschen/matterhorn/internal/format/table"
	"github.com/10jschen/matterhorn/internal/names"
	"github.com/10jschen/matterhorn/internal/state"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
)

const sidebarWidth = 22

var helpTopics = []string{"main", "keys"}

var helpText = map[string]string{
	"main": strings.TrimSpace(`
Messages you type go to the focused channel. Press Enter to send.
Channels with new messages are marked with a *. Direct channels are
listed under the regular ones and named after the other person.

Press Tab to see the key bindings.
`),
	"keys": strings.TrimSpace(`
ctrl+g   switch channel or user (prefix ~ or @ to disambiguate)
ctrl+n/p next / previous channel
ctrl+j   browse and join public channels
ctrl+t   user list (Enter opens a direct channel)
ctrl+o   pick a URL from recent messages, Enter copies it
ctrl+x   select a message (v view, y copy, d delete, + react)
ctrl+s   scroll channel history
ctrl+f   list messages mentioning you
ctrl+l   leave the focused channel
ctrl+d   delete the focused channel
up/down  input history
f1       this help
f5       refresh channels and users
f12      dump state to a file
ctrl+q   quit
`),
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 {
		return styles.Loading.Render("starting...")
	}
	body := m.viewBody()
	sidebar := m.viewSidebar()
	main := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, body)
	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteByte('\n')
	b.WriteString(main)
	b.WriteByte('\n')
	b.WriteString(m.viewFooter())
	return b.String()
}

// viewHeader is the top line: channel label, topic, and connection state.
func (m *Model) viewHeader() string {
	left := ""
	if ch, ok := m.st.FocusedChannel(); ok {
		left = m.st.ChannelLabel(ch)
		if ch.Info.Header != "" {
			left += "  " + ch.Info.Header
		}
	}
	right := styles.Error.Render("offline")
	if m.connected {
		right = styles.Info.Render(m.st.Session.TeamName)
	}
	if unread := m.st.UnreadCount(); unread > 0 {
		right = styles.Unread.Render(fmt.Sprintf("%d unread", unread)) + "  " + right
	}
	avail := m.width - lipgloss.Width(right) - 1
	if avail < 0 {
		avail = 0
	}
	left = truncate.StringWithTail(left, uint(avail), "...")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return styles.Header.Render(left) + strings.Repeat(" ", gap) + right
}

// viewSidebar lists channels in display order with unread markers.
func (m *Model) viewSidebar() string {
	focused, hasFocus := m.st.FocusedChannel()
	var lines []string
	for _, id := range m.st.ChannelIDs() {
		ch, ok := m.st.Channel(id)
		if !ok {
			continue
		}
		label := m.st.ChannelLabel(ch)
		marker := "  "
		if ch.HasUnread() {
			marker = styles.Unread.Render("* ")
		}
		line := truncate.String(marker+label, sidebarWidth)
		if hasFocus && focused.Info.ID == id {
			line = styles.SelectedItem.Render(line)
		} else if ch.HasUnread() {
			line = styles.Unread.Render(line)
		} else {
			line = styles.Item.Render(line)
		}
		lines = append(lines, line)
	}
	height := m.bodyHeight()
	for len(lines) < height {
		lines = append(lines, "")
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	col := lipgloss.NewStyle().Width(sidebarWidth).Render(strings.Join(lines, "\n"))
	return col
}

// viewBody renders the conversation, or the active mode's overlay.
func (m *Model) viewBody() string {
	width := m.width - sidebarWidth
	if width < 1 {
		width = 1
	}
	var content string
	switch mode := m.mode.(type) {
	case ShowHelp:
		content = m.viewHelp(mode, width)
	case ChannelSelect:
		content = m.viewChannelSelect(mode, width)
	case UrlSelect:
		content = m.viewURLSelect(mode, width)
	case LeaveChannelConfirm:
		content = m.viewConfirm("Leave this channel? (y/n)", mode.Channel)
	case DeleteChannelConfirm:
		content = m.viewConfirm("Delete this channel? This cannot be undone. (y/n)", mode.Channel)
	case JoinChannel:
		content = m.viewJoinChannel(mode, width)
	case MessageSelectDeleteConfirm:
		content = styles.Error.Render("Delete this message? (y/n)") + "\n\n" +
			m.viewMessages(width, 0, mode.Selected)
	case MessageSelect:
		content = m.viewMessages(width, 0, mode.Selected)
	case ChannelScroll:
		content = m.viewMessages(width, mode.Offset, "")
	case PostListOverlay:
		content = m.viewPostList(mode, width)
	case UserListOverlay:
		content = m.viewUserList(mode, width)
	case ViewMessage:
		content = m.viewSingleMessage(mode, width)
	default:
		content = m.viewMessages(width, 0, "")
	}
	return lipgloss.NewStyle().Width(width).Height(m.bodyHeight()).Render(content)
}

// viewFooter is the compose line plus the status line above it.
func (m *Model) viewFooter() string {
	var b strings.Builder
	status := m.viewStatusLine()
	if status != "" {
		b.WriteString(status)
	}
	b.WriteByte('\n')
	b.WriteString(m.viewCompose())
	return b.String()
}

func (m *Model) viewStatusLine() string {
	var parts []string
	if m.errMsg != "" {
		parts = append(parts, styles.Error.Render(m.errMsg))
	}
	if m.busyDepth > 0 {
		parts = append(parts, m.spinner.View()+" "+styles.Loading.Render(fmt.Sprintf("working (%d)...", m.busyDepth)))
	}
	if typing := m.viewTyping(); typing != "" {
		parts = append(parts, typing)
	}
	return strings.Join(parts, "  ")
}

// viewTyping names users currently typing in the focused channel.
func (m *Model) viewTyping() string {
	ch, ok := m.st.FocusedChannel()
	if !ok {
		return ""
	}
	active := m.st.Typing.Active(ch.Info.ID, m.now())
	if len(active) == 0 {
		return ""
	}
	names := make([]string, 0, len(active))
	for _, id := range active {
		if u, ok := m.st.User(id); ok {
			names = append(names, u.Name)
		}
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)
	verb := "is typing"
	if len(names) > 1 {
		verb = "are typing"
	}
	return styles.Typing.Render(strings.Join(names, ", ") + " " + verb + "...")
}

func (m *Model) viewCompose() string {
	prompt := styles.Prompt.Render("> ")
	c := m.compose
	before := string(c.text[:c.cursor])
	under := " "
	after := ""
	if c.cursor < len(c.text) {
		under = string(c.text[c.cursor])
		after = string(c.text[c.cursor+1:])
	}
	return prompt + before + styles.Cursor.Render(under) + after
}

// viewMessages renders the focused channel's posts, bottom-aligned. offset
// skips that many posts from the bottom; selected marks one post.
func (m *Model) viewMessages(width, offset int, selected chat.PostID) string {
	ch, ok := m.st.FocusedChannel()
	if !ok {
		return styles.Info.Render("No channels. Press ctrl+j to join one.")
	}
	if ch.Info.Load != state.Loaded {
		return styles.Loading.Render("loading messages...")
	}
	end := len(ch.Posts) - offset
	if end < 0 {
		end = 0
	}
	var lines []string
	for _, post := range ch.Posts[:end] {
		lines = append(lines, m.renderPost(post, width, post.ID == selected && selected != "")...)
	}
	height := m.bodyHeight()
	if len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	return strings.Join(lines, "\n")
}

// renderPost formats one post as one or more display lines.
func (m *Model) renderPost(post chat.Post, width int, selected bool) []string {
	stamp := styles.Timestamp.Render(m.formatTime(post.CreateAt))
	author := styles.Author
	if post.UserID == m.st.Session.UserID {
		author = styles.OwnAuthor
	}
	name := string(post.UserID)
	if u, ok := m.st.User(post.UserID); ok {
		name = u.Name
	}
	head := stamp + " " + author.Render(name) + " "
	if selected {
		head = styles.SelectedItem.Render(">") + " " + head
	}
	var body string
	switch {
	case post.Deleted:
		body = styles.DeletedMsg.Render("(message deleted)")
	case post.Pending:
		body = styles.PendingMsg.Render(post.Message)
	default:
		body = m.highlightNames(post.Message)
		if post.UpdateAt.After(post.CreateAt) {
			body += " " + styles.EditedMark.Render("(edited)")
		}
	}
	wrapped := wordwrap.String(head+body, width)
	lines := strings.Split(wrapped, "\n")
	if reactions := renderReactions(post); reactions != "" {
		lines = append(lines, "    "+styles.Reaction.Render(reactions))
	}
	return lines
}

// highlightNames styles tokens that name a known channel or user, so
// sigil-addressed mentions stand out in the flow of a message.
func (m *Model) highlightNames(message string) string {
	known := m.st.HighlightSet()
	fields := strings.Split(message, " ")
	hit := false
	for i, field := range fields {
		if !names.HasChannelSigil(field) && !names.HasUserSigil(field) {
			continue
		}
		token := strings.TrimRight(names.StripSigil(field), ".,:;!?")
		if _, ok := known[token]; ok {
			fields[i] = styles.Unread.Render(field)
			hit = true
		}
	}
	if !hit {
		return styles.Message.Render(message)
	}
	return styles.Message.Render(strings.Join(fields, " "))
}

func renderReactions(post chat.Post) string {
	if len(post.Reactions) == 0 {
		return ""
	}
	counts := make(map[string]int)
	var order []string
	for _, r := range post.Reactions {
		if counts[r.EmojiName] == 0 {
			order = append(order, r.EmojiName)
		}
		counts[r.EmojiName]++
	}
	sort.Strings(order)
	parts := make([]string, 0, len(order))
	for _, emoji := range order {
		parts = append(parts, fmt.Sprintf(":%s: %d", emoji, counts[emoji]))
	}
	return strings.Join(parts, "  ")
}

func (m *Model) viewHelp(mode ShowHelp, width int) string {
	text, ok := helpText[mode.Topic]
	if !ok {
		return styles.Error.Render(fmt.Sprintf("unknown help topic %q", mode.Topic))
	}
	body := styles.OverlayTitle.Render("Help: "+mode.Topic) + "\n\n" +
		wordwrap.String(text, width-4) + "\n\n" +
		styles.Info.Render("Tab next topic, Esc to close")
	return styles.OverlayBorder.Render(body)
}

func (m *Model) viewChannelSelect(mode ChannelSelect, width int) string {
	var b strings.Builder
	b.WriteString(styles.OverlayTitle.Render("Switch to:"))
	b.WriteString(" ")
	b.WriteString(mode.Input)
	b.WriteString(styles.Cursor.Render(" "))
	b.WriteByte('\n')
	writeMatches := func(title string, matches []Match) {
		if len(matches) == 0 {
			return
		}
		b.WriteByte('\n')
		b.WriteString(styles.Header.Render(title))
		b.WriteByte('\n')
		for _, match := range matches {
			b.WriteString("  " + styles.Item.Render(truncate.String(match.Name, uint(width-4))))
			b.WriteByte('\n')
		}
	}
	writeMatches("Channels", mode.Matches.Channels)
	writeMatches("Users", mode.Matches.Users)
	if mode.Input != "" && mode.Matches.Total() == 0 {
		b.WriteString("\n" + styles.Info.Render("no matches"))
	}
	return b.String()
}

func (m *Model) viewURLSelect(mode UrlSelect, width int) string {
	var b strings.Builder
	b.WriteString(styles.OverlayTitle.Render("Open URL (Enter copies):"))
	b.WriteByte('\n')
	for i, url := range mode.URLs {
		line := truncate.StringWithTail(url, uint(width-2), "...")
		if i == mode.Cursor {
			line = styles.SelectedItem.Render(line)
		} else {
			line = styles.Item.Render(line)
		}
		b.WriteString("  " + line + "\n")
	}
	return b.String()
}

func (m *Model) viewConfirm(question string, id chat.ChannelID) string {
	label := string(id)
	if ch, ok := m.st.Channel(id); ok {
		label = m.st.ChannelLabel(ch)
	}
	return styles.OverlayTitle.Render(label) + "\n\n" + styles.Error.Render(question)
}

func (m *Model) viewJoinChannel(mode JoinChannel, width int) string {
	var b strings.Builder
	b.WriteString(styles.OverlayTitle.Render("Join channel:"))
	b.WriteString(" ")
	b.WriteString(mode.Filter)
	b.WriteString(styles.Cursor.Render(" "))
	b.WriteByte('\n')
	if mode.Loading {
		b.WriteString("\n" + styles.Loading.Render("fetching channels..."))
		return b.String()
	}
	visible := m.filterJoinable(mode)
	if len(visible) == 0 {
		b.WriteString("\n" + styles.Info.Render("nothing to join"))
		return b.String()
	}
	rows := make([][]string, len(visible))
	for i, ch := range visible {
		name := ch.DisplayName
		if name == "" {
			name = ch.Name
		}
		rows[i] = []string{name, ch.Header}
	}
	for i, line := range table.Format(rows, []table.Alignment{table.AlignLeft, table.AlignLeft}) {
		line = truncate.StringWithTail(line, uint(width-2), "...")
		if i == mode.Cursor {
			line = styles.SelectedItem.Render(line)
		} else {
			line = styles.Item.Render(line)
		}
		b.WriteString("  " + line + "\n")
	}
	return b.String()
}

func (m *Model) viewPostList(mode PostListOverlay, width int) string {
	var b strings.Builder
	b.WriteString(styles.OverlayTitle.Render(mode.Title))
	b.WriteByte('\n')
	for i, post := range mode.Posts {
		name := string(post.UserID)
		if u, ok := m.st.User(post.UserID); ok {
			name = u.Name
		}
		line := truncate.StringWithTail(name+": "+post.Message, uint(width-2), "...")
		if i == mode.Cursor {
			line = styles.SelectedItem.Render(line)
		} else {
			line = styles.Item.Render(line)
		}
		b.WriteString("  " + line + "\n")
	}
	return b.String()
}

// viewUserList renders the user overlay as a status/name/nickname table.
func (m *Model) viewUserList(mode UserListOverlay, width int) string {
	var b strings.Builder
	b.WriteString(styles.OverlayTitle.Render("Users (Enter opens a direct channel):"))
	b.WriteByte('\n')
	rows := make([][]string, len(mode.Users))
	for i, u := range mode.Users {
		full := strings.TrimSpace(u.FirstName + " " + u.LastName)
		rows[i] = []string{statusGlyph(u.Status), u.Name, full}
	}
	for i, line := range table.Format(rows, []table.Alignment{table.AlignLeft, table.AlignLeft, table.AlignLeft}) {
		line = truncate.StringWithTail(line, uint(width-2), "...")
		if i == mode.Cursor {
			line = styles.SelectedItem.Render(line)
		} else {
			line = statusStyle(mode.Users[i].Status).Render(line)
		}
		b.WriteString("  " + line + "\n")
	}
	return b.String()
}

func (m *Model) viewSingleMessage(mode ViewMessage, width int) string {
	post := mode.Post
	name := string(post.UserID)
	if u, ok := m.st.User(post.UserID); ok {
		name = u.Name
	}
	body := styles.Author.Render(name) + " " + styles.Timestamp.Render(m.formatTime(post.CreateAt)) + "\n\n" +
		wordwrap.String(post.Message, width-4)
	if reactions := renderReactions(post); reactions != "" {
		body += "\n\n" + styles.Reaction.Render(reactions)
	}
	return styles.OverlayBorder.Render(body)
}

func statusGlyph(status chat.UserStatus) string {
	switch status {
	case chat.StatusOnline:
		return "+"
	case chat.StatusAway:
		return "~"
	case chat.StatusDND:
		return "-"
	default:
		return " "
	}
}

func statusStyle(status chat.UserStatus) *lipgloss.Style {
	switch status {
	case chat.StatusOnline:
		return styles.StatusOnline
	case chat.StatusAway:
		return styles.StatusAway
	case chat.StatusDND:
		return styles.StatusDND
	default:
		return styles.StatusOffline
	}
}

// bodyHeight is the rows left between the header and the footer.
func (m *Model) bodyHeight() int {
	h := m.height - 3
	if h < 1 {
		h = 1
	}
	return h
}

// formatTime renders a timestamp in the user's server-side timezone when
// one is known.
func (m *Model) formatTime(t time.Time) string {
	if loc := m.location(); loc != nil {
		t = t.In(loc)
	}
	return t.Format("15:04")
}

// location resolves the current zone name, caching lookups on the model.
// A zone that fails to load caches as nil so it is not retried every frame.
func (m *Model) location() *time.Location {
	zone := m.st.Timezone
	if zone == "" {
		return nil
	}
	if loc, ok := m.locations[zone]; ok {
		return loc
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		loc = nil
	}
	m.locations[zone] = loc
	return loc
}

package ui

import "regexp"

var urlPattern = regexp.MustCompile(`https?://[^\s<>"')]+`)

// openURLSelect collects URLs from the focused channel's loaded messages,
// newest first, and enters the picker. No URLs means no mode change.
func (m *Model) openURLSelect() {
	ch, ok := m.st.FocusedChannel()
	if !ok {
		return
	}
	seen := make(map[string]bool)
	var urls []string
	for i := len(ch.Posts) - 1; i >= 0; i-- {
		post := ch.Posts[i]
		if post.Deleted {
			continue
		}
		for _, url := range urlPattern.FindAllString(post.Message, -1) {
			if seen[url] {
				continue
			}
			seen[url] = true
			urls = append(urls, url)
		}
	}
	if len(urls) == 0 {
		return
	}
	m.setMode(UrlSelect{URLs: urls})
}

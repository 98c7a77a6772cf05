package theme

import "github.com/charmbracelet/lipgloss"

// Styles describes reusable Lip Gloss styles shared across the UI.
type Styles struct {
	Header        *lipgloss.Style
	Footer        *lipgloss.Style
	Error         *lipgloss.Style
	Info          *lipgloss.Style
	Loading       *lipgloss.Style
	Author        *lipgloss.Style
	OwnAuthor     *lipgloss.Style
	Timestamp     *lipgloss.Style
	Message       *lipgloss.Style
	DeletedMsg    *lipgloss.Style
	PendingMsg    *lipgloss.Style
	EditedMark    *lipgloss.Style
	Reaction      *lipgloss.Style
	Unread        *lipgloss.Style
	Typing        *lipgloss.Style
	Prompt        *lipgloss.Style
	Cursor        *lipgloss.Style
	Item          *lipgloss.Style
	SelectedItem  *lipgloss.Style
	OverlayTitle  *lipgloss.Style
	OverlayBorder *lipgloss.Style
	StatusOnline  *lipgloss.Style
	StatusAway    *lipgloss.Style
	StatusDND     *lipgloss.Style
	StatusOffline *lipgloss.Style
}

var defaultStyles = Styles{
	Header: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true),
	),
	Footer: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	Error: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	),
	Info: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	Loading: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Italic(true),
	),
	Author: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
	),
	OwnAuthor: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true),
	),
	Timestamp: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	),
	Message: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
	),
	DeletedMsg: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
	),
	PendingMsg: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true),
	),
	EditedMark: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
	),
	Reaction: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("178")),
	),
	Unread: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
	),
	Typing: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
	),
	Prompt: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true),
	),
	Cursor: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("33")),
	),
	Item: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	SelectedItem: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")).Bold(true),
	),
	OverlayTitle: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true),
	),
	OverlayBorder: ptr(
		lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1),
	),
	StatusOnline: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
	),
	StatusAway: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("178")),
	),
	StatusDND: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
	),
	StatusOffline: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	),
}

// Default exposes the standard style set used across the application.
func Default() *Styles {
	return &defaultStyles
}

func ptr(style lipgloss.Style) *lipgloss.Style {
	return &style
}

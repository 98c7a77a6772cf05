package chat

import (
	"encoding/json"
	"fmt"
)

// Event is the typed union of everything the socket listener can deliver.
// Lifecycle events (connected/disconnected) share the stream with domain
// events so the consumer sees a single ordered sequence.
type Event interface {
	eventName() string
}

// ConnectedEvent is emitted after the websocket handshake succeeds.
type ConnectedEvent struct{}

// DisconnectedEvent is emitted when the socket drops; the listener keeps
// reconnecting in the background.
type DisconnectedEvent struct {
	Err error
}

// PostedEvent carries a newly created post.
type PostedEvent struct {
	Post Post
}

// PostEditedEvent carries the updated body of an existing post.
type PostEditedEvent struct {
	Post Post
}

// PostDeletedEvent identifies a removed post.
type PostDeletedEvent struct {
	Post Post
}

// ChannelCreatedEvent announces a channel this user can now see.
type ChannelCreatedEvent struct {
	ChannelID ChannelID
	TeamID    TeamID
}

// ChannelDeletedEvent announces a channel removal.
type ChannelDeletedEvent struct {
	ChannelID ChannelID
}

// ChannelViewedEvent reports that this user viewed a channel, possibly from
// another client.
type ChannelViewedEvent struct {
	ChannelID ChannelID
}

// DirectAddedEvent announces a new direct-message channel.
type DirectAddedEvent struct {
	ChannelID ChannelID
}

// UserAddedEvent reports a user joining a channel.
type UserAddedEvent struct {
	UserID    UserID
	ChannelID ChannelID
}

// UserRemovedEvent reports a user leaving or being removed from a channel.
type UserRemovedEvent struct {
	UserID    UserID
	ChannelID ChannelID
}

// NewUserEvent announces an account created on the server.
type NewUserEvent struct {
	UserID UserID
}

// UserUpdatedEvent carries refreshed profile fields for a known user.
type UserUpdatedEvent struct {
	User User
}

// StatusChangeEvent reports a presence change.
type StatusChangeEvent struct {
	UserID UserID
	Status UserStatus
}

// TypingEvent reports that a user is typing in a channel.
type TypingEvent struct {
	UserID    UserID
	ChannelID ChannelID
}

// ReactionAddedEvent reports an emoji reaction attached to a post.
type ReactionAddedEvent struct {
	Reaction Reaction
}

// ReactionRemovedEvent reports an emoji reaction removed from a post.
type ReactionRemovedEvent struct {
	Reaction Reaction
}

// PreferenceChangedEvent carries updated user preferences.
type PreferenceChangedEvent struct {
	Preferences []Preference
}

func (ConnectedEvent) eventName() string         { return "connected" }
func (DisconnectedEvent) eventName() string      { return "disconnected" }
func (PostedEvent) eventName() string            { return "posted" }
func (PostEditedEvent) eventName() string        { return "post_edited" }
func (PostDeletedEvent) eventName() string       { return "post_deleted" }
func (ChannelCreatedEvent) eventName() string    { return "channel_created" }
func (ChannelDeletedEvent) eventName() string    { return "channel_deleted" }
func (ChannelViewedEvent) eventName() string     { return "channel_viewed" }
func (DirectAddedEvent) eventName() string       { return "direct_added" }
func (UserAddedEvent) eventName() string         { return "user_added" }
func (UserRemovedEvent) eventName() string       { return "user_removed" }
func (NewUserEvent) eventName() string           { return "new_user" }
func (UserUpdatedEvent) eventName() string       { return "user_updated" }
func (StatusChangeEvent) eventName() string      { return "status_change" }
func (TypingEvent) eventName() string            { return "typing" }
func (ReactionAddedEvent) eventName() string     { return "reaction_added" }
func (ReactionRemovedEvent) eventName() string   { return "reaction_removed" }
func (PreferenceChangedEvent) eventName() string { return "preferences_changed" }

// EventName reports the wire name of an event, for trace logging.
func EventName(evt Event) string {
	if evt == nil {
		return ""
	}
	return evt.eventName()
}

// frame is the raw wire shape of a websocket push.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Seq   int64           `json:"seq"`
}

// ignoredEvents lists server pushes this client deliberately does not act
// on. They decode successfully and are dropped without logging noise.
var ignoredEvents = map[string]struct{}{
	"hello":                      {},
	"ephemeral_message":          {},
	"emoji_added":                {},
	"license_changed":            {},
	"config_changed":             {},
	"plugin_enabled":             {},
	"plugin_disabled":            {},
	"plugin_statuses_changed":    {},
	"role_updated":               {},
	"memberrole_updated":         {},
	"leave_team":                 {},
	"update_team":                {},
	"delete_team":                {},
	"sidebar_category_created":   {},
	"sidebar_category_updated":   {},
	"sidebar_category_deleted":   {},
	"thread_updated":             {},
	"thread_follow_changed":      {},
	"thread_read_changed":        {},
	"channel_member_updated":     {},
	"channel_scheme_updated":     {},
	"group_added":                {},
	"post_unread":                {},
	"response":                   {},
	"authentication_challenge":   {},
	"dialog_opened":              {},
	"open_dialog":                {},
	"received_notification_ack":  {},
	"channel_bookmark_created":   {},
	"channel_bookmark_updated":   {},
	"channel_bookmark_deleted":   {},
	"channel_bookmark_sorted":    {},
	"multiple_channels_viewed":   {},
	"first_admin_visit_marked":   {},
	"persistent_notification":    {},
	"hosted_customer_signup":     {},
	"user_activation_status":     {},
	"cloud_payment_status_check": {},
}

// decodeFrame parses one websocket frame into a typed event. The second
// return is false when the frame is an ignored or unknown event type; the
// error is non-nil only for payloads that fail to decode.
func decodeFrame(raw []byte) (Event, bool, error) {
	var f frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, false, fmt.Errorf("decode frame: %w", err)
	}
	if _, skip := ignoredEvents[f.Event]; skip {
		return nil, false, nil
	}
	decode := func(v interface{}) error {
		if len(f.Data) == 0 {
			return nil
		}
		if err := json.Unmarshal(f.Data, v); err != nil {
			return fmt.Errorf("decode %s data: %w", f.Event, err)
		}
		return nil
	}
	switch f.Event {
	case "posted":
		var d struct {
			Post Post `json:"post"`
		}
		if err := decode(&d); err != nil {
			return nil, false, err
		}
		return PostedEvent{Post: d.Post}, true, nil
	case "post_edited":
		var d struct {
			Post Post `json:"post"`
		}
		if err := decode(&d); err != nil {
			return nil, false, err
		}
		return PostEditedEvent{Post: d.Post}, true, nil
	case "post_deleted":
		var d struct {
			Post Post `json:"post"`
		}
		if err := decode(&d); err != nil {
			return nil, false, err
		}
		return PostDeletedEvent{Post: d.Post}, true, nil
	case "channel_created":
		var d struct {
			ChannelID ChannelID `json:"channel_id"`
			TeamID    TeamID    `json:"team_id"`
		}
		if err := decode(&d); err != nil {
			return nil, false, err
		}
		return ChannelCreatedEvent{ChannelID: d.ChannelID, TeamID: d.TeamID}, true, nil
	case "channel_deleted", "channel_converted":
		var d struct {
			ChannelID ChannelID `json:"channel_id"`
		}
		if err := decode(&d); err != nil {
			return nil, false, err
		}
		return ChannelDeletedEvent{ChannelID: d.ChannelID}, true, nil
	case "channel_viewed":
		var d struct {
			ChannelID ChannelID `json:"channel_id"`
		}
		if err := decode(&d); err != nil {
			return nil, false, err
		}
		return ChannelViewedEvent{ChannelID: d.ChannelID}, true, nil
	case "direct_added", "group_added_to_channel":
		var d struct {
			ChannelID ChannelID `json:"channel_id"`
		}
		if err := decode(&d); err != nil {
			return nil, false, err
		}
		return DirectAddedEvent{ChannelID: d.ChannelID}, true, nil
	case "user_added":
		var d struct {
			UserID    UserID    `json:"user_id"`
			ChannelID ChannelID `json:"channel_id"`
		}
		if err := decode(&d); err != nil {
			return nil, false, err
		}
		return UserAddedEvent{UserID: d.UserID, ChannelID: d.ChannelID}, true, nil
	case "user_removed":
		var d struct {
			UserID    UserID    `json:"user_id"`
			ChannelID ChannelID `json:"channel_id"`
		}
		if err := decode(&d); err != nil {
			return nil, false, err
		}
		return UserRemovedEvent{UserID: d.UserID, ChannelID: d.ChannelID}, true, nil
	case "new_user":
		var d struct {
			UserID UserID `json:"user_id"`
		}
		if err := decode(&d); err != nil {
			return nil, false, err
		}
		return NewUserEvent{UserID: d.UserID}, true, nil
	case "user_updated":
		var d struct {
			User User `json:"user"`
		}
		if err := decode(&d); err != nil {
			return nil, false, err
		}
		return UserUpdatedEvent{User: d.User}, true, nil
	case "status_change":
		var d struct {
			UserID UserID     `json:"user_id"`
			Status UserStatus `json:"status"`
		}
		if err := decode(&d); err != nil {
			return nil, false, err
		}
		return StatusChangeEvent{UserID: d.UserID, Status: d.Status}, true, nil
	case "typing":
		var d struct {
			UserID    UserID    `json:"user_id"`
			ChannelID ChannelID `json:"channel_id"`
		}
		if err := decode(&d); err != nil {
			return nil, false, err
		}
		return TypingEvent{UserID: d.UserID, ChannelID: d.ChannelID}, true, nil
	case "reaction_added":
		var d struct {
			Reaction Reaction `json:"reaction"`
		}
		if err := decode(&d); err != nil {
			return nil, false, err
		}
		return ReactionAddedEvent{Reaction: d.Reaction}, true, nil
	case "reaction_removed":
		var d struct {
			Reaction Reaction `json:"reaction"`
		}
		if err := decode(&d); err != nil {
			return nil, false, err
		}
		return ReactionRemovedEvent{Reaction: d.Reaction}, true, nil
	case "preferences_changed", "preferences_deleted":
		var d struct {
			Preferences []Preference `json:"preferences"`
		}
		if err := decode(&d); err != nil {
			return nil, false, err
		}
		return PreferenceChangedEvent{Preferences: d.Preferences}, true, nil
	}
	// Unknown event types are dropped, not errors: newer servers emit
	// pushes older clients have never heard of.
	return nil, false, nil
}

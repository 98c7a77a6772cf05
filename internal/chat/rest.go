package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const apiPrefix = "/api/v4"

// REST talks to the chat server's HTTP API. It implements Client once
// Login has succeeded and a token is held.
type REST struct {
	base  string
	http  *http.Client
	token string
}

// NewREST creates a client for the given base URL, e.g.
// https://chat.example.com.
func NewREST(base string) *REST {
	return &REST{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// apiError is a non-2xx response body.
type apiError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server error %d", e.StatusCode)
}

// Login authenticates and selects the named team. The returned session's
// token is retained for subsequent calls.
func (c *REST) Login(ctx context.Context, team, username, password string) (Session, error) {
	body := map[string]string{"login_id": username, "password": password}
	req, err := c.newRequest(ctx, http.MethodPost, "/users/login", body)
	if err != nil {
		return Session{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Session{}, classifyDialError(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		return Session{}, &ConnError{Kind: ConnLogin, Err: errors.New("invalid username or password")}
	}
	if resp.StatusCode >= 300 {
		return Session{}, &ConnError{Kind: ConnAuth, Err: readError(resp)}
	}
	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return Session{}, &ConnError{Kind: ConnAuth, Err: fmt.Errorf("decode login response: %w", err)}
	}
	c.token = resp.Header.Get("Token")
	if c.token == "" {
		return Session{}, &ConnError{Kind: ConnAuth, Err: errors.New("server returned no session token")}
	}

	var teams []struct {
		ID   TeamID `json:"id"`
		Name string `json:"name"`
	}
	if err := c.get(ctx, "/users/me/teams", &teams); err != nil {
		return Session{}, &ConnError{Kind: ConnAuth, Err: err}
	}
	if len(teams) == 0 {
		return Session{}, ErrNoTeam
	}
	session := Session{UserID: user.ID, Username: user.Username, Token: c.token}
	for _, t := range teams {
		if team == "" || strings.EqualFold(t.Name, team) {
			session.TeamID = t.ID
			session.TeamName = t.Name
			return session, nil
		}
	}
	return Session{}, &ConnError{Kind: ConnAuth, Err: fmt.Errorf("not a member of team %q", team)}
}

// WebsocketURL derives the event-stream endpoint from the base URL.
func (c *REST) WebsocketURL() string {
	u := c.base + apiPrefix + "/websocket"
	if strings.HasPrefix(u, "https://") {
		return "wss://" + strings.TrimPrefix(u, "https://")
	}
	return "ws://" + strings.TrimPrefix(u, "http://")
}

// Token exposes the session token for the websocket listener.
func (c *REST) Token() string { return c.token }

func (c *REST) SendMessage(ctx context.Context, channel ChannelID, message string) (Post, error) {
	var post Post
	body := map[string]string{"channel_id": string(channel), "message": message}
	err := c.post(ctx, "/posts", body, &post)
	return post, err
}

func (c *REST) FetchChannels(ctx context.Context) ([]Channel, []ChannelMember, error) {
	var channels []Channel
	if err := c.get(ctx, "/users/me/channels", &channels); err != nil {
		return nil, nil, err
	}
	var members []ChannelMember
	if err := c.get(ctx, "/users/me/channels/members", &members); err != nil {
		return nil, nil, err
	}
	return channels, members, nil
}

func (c *REST) FetchUsers(ctx context.Context) ([]User, error) {
	var all []User
	for page := 0; ; page++ {
		var batch []User
		path := fmt.Sprintf("/users?page=%d&per_page=200", page)
		if err := c.get(ctx, path, &batch); err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < 200 {
			return all, nil
		}
	}
}

func (c *REST) FetchPosts(ctx context.Context, channel ChannelID) ([]Post, error) {
	var posts []Post
	err := c.get(ctx, "/channels/"+url.PathEscape(string(channel))+"/posts", &posts)
	return posts, err
}

func (c *REST) FetchJoinable(ctx context.Context) ([]Channel, error) {
	var channels []Channel
	err := c.get(ctx, "/channels/public", &channels)
	return channels, err
}

func (c *REST) JoinChannel(ctx context.Context, channel ChannelID) (Channel, error) {
	var joined Channel
	err := c.post(ctx, "/channels/"+url.PathEscape(string(channel))+"/members", nil, &joined)
	return joined, err
}

func (c *REST) CreateDirect(ctx context.Context, user UserID) (Channel, error) {
	var created Channel
	err := c.post(ctx, "/channels/direct", []UserID{user}, &created)
	return created, err
}

func (c *REST) LeaveChannel(ctx context.Context, channel ChannelID) error {
	return c.delete(ctx, "/channels/"+url.PathEscape(string(channel))+"/members/me")
}

func (c *REST) DeleteChannel(ctx context.Context, channel ChannelID) error {
	return c.delete(ctx, "/channels/"+url.PathEscape(string(channel)))
}

func (c *REST) DeletePost(ctx context.Context, post PostID) error {
	return c.delete(ctx, "/posts/"+url.PathEscape(string(post)))
}

func (c *REST) AddReaction(ctx context.Context, post PostID, emoji string) error {
	body := map[string]string{"post_id": string(post), "emoji_name": emoji}
	return c.post(ctx, "/reactions", body, nil)
}

func (c *REST) SendTyping(ctx context.Context, channel ChannelID) error {
	body := map[string]string{"channel_id": string(channel)}
	return c.post(ctx, "/users/me/typing", body, nil)
}

func (c *REST) MarkViewed(ctx context.Context, channel ChannelID) error {
	body := map[string]string{"channel_id": string(channel)}
	return c.post(ctx, "/channels/members/me/view", body, nil)
}

func (c *REST) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *REST) post(ctx context.Context, path string, in, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, in, out)
}

func (c *REST) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *REST) do(ctx context.Context, method, path string, in, out interface{}) error {
	req, err := c.newRequest(ctx, method, path, in)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return readError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *REST) newRequest(ctx context.Context, method, path string, in interface{}) (*http.Request, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s request: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+apiPrefix+path, body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func readError(resp *http.Response) error {
	apiErr := &apiError{StatusCode: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil && len(data) > 0 {
		var decoded apiError
		if json.Unmarshal(data, &decoded) == nil && decoded.Message != "" {
			apiErr.Message = decoded.Message
		}
	}
	return apiErr
}

// classifyDialError sorts transport-level login failures into the kinds the
// startup loop distinguishes.
func classifyDialError(err error) error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &ConnError{Kind: ConnResolve, Err: err}
	}
	return &ConnError{Kind: ConnRefused, Err: err}
}

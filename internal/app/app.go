package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/10jschen/matterhorn/internal/chat"
	"github.com/10jschen/matterhorn/internal/logging"
	"github.com/10jschen/matterhorn/internal/logging/events"
	"github.com/10jschen/matterhorn/internal/state"
	"github.com/10jschen/matterhorn/internal/ui"
	"github.com/10jschen/matterhorn/internal/worker"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// Config describes user-provided application options.
type Config struct {
	ServerURL   string
	Team        string
	Username    string
	Password    string
	HistoryPath string
	DumpPath    string
}

const (
	loginAttempts    = 3
	transientRetries = 5
	timezonePoll     = time.Minute
)

// Run logs in and executes the Bubble Tea program until the user quits.
func Run(cfg Config) error {
	client := chat.NewREST(cfg.ServerURL)
	session, err := login(client, cfg)
	if err != nil {
		return err
	}
	events.App.LoggedIn(session.Username, session.TeamName)

	st := state.NewAppState(session)
	if history, err := state.LoadHistory(cfg.HistoryPath); err != nil {
		logging.Errorf("load history: %v", err)
	} else {
		st.History = history
	}

	queue := worker.NewQueue()
	defer queue.Stop()
	socket := chat.NewListener(client.WebsocketURL(), client.Token())
	defer socket.Stop()

	tzCtx, tzStop := context.WithCancel(context.Background())
	defer tzStop()
	tz := watchTimezone(tzCtx)

	model := ui.NewModel(st, client, queue, socket, tz, cfg.DumpPath)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	if saveErr := st.History.Save(cfg.HistoryPath); saveErr != nil {
		logging.Errorf("save history: %v", saveErr)
	}
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// login authenticates against the server. Credential failures re-prompt on
// the terminal a few times; unreachable-server failures back off and retry;
// a user with no team is fatal.
func login(client *chat.REST, cfg Config) (chat.Session, error) {
	password := cfg.Password
	backoff := time.Second
	attempts := 0
	for {
		if password == "" {
			var err error
			password, err = promptPassword(cfg.Username)
			if err != nil {
				return chat.Session{}, err
			}
		}
		events.App.LoginAttempt(cfg.ServerURL, cfg.Team)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		session, err := client.Login(ctx, cfg.Team, cfg.Username, password)
		cancel()
		if err == nil {
			return session, nil
		}
		if errors.Is(err, chat.ErrNoTeam) {
			return chat.Session{}, err
		}
		connErr, ok := chat.AsConnError(err)
		if !ok {
			return chat.Session{}, err
		}
		events.App.LoginFailed(connKindName(connErr.Kind), connErr)
		attempts++
		if connErr.Retryable() {
			if attempts >= loginAttempts {
				return chat.Session{}, connErr
			}
			fmt.Fprintf(os.Stderr, "%v\n", connErr)
			password = ""
			continue
		}
		if attempts >= transientRetries {
			return chat.Session{}, connErr
		}
		fmt.Fprintf(os.Stderr, "%v, retrying in %s\n", connErr, backoff)
		time.Sleep(backoff)
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func promptPassword(username string) (string, error) {
	fmt.Fprintf(os.Stderr, "Password for %s: ", username)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}

func connKindName(kind chat.ConnKind) string {
	switch kind {
	case chat.ConnResolve:
		return "resolve"
	case chat.ConnRefused:
		return "refused"
	case chat.ConnLogin:
		return "login"
	default:
		return "auth"
	}
}

// watchTimezone polls the host timezone and reports changes, so message
// timestamps follow a laptop across timezones without a restart.
func watchTimezone(ctx context.Context) <-chan string {
	out := make(chan string, 1)
	go func() {
		defer close(out)
		last := ""
		ticker := time.NewTicker(timezonePoll)
		defer ticker.Stop()
		for {
			zone := currentTimezone()
			if zone != "" && zone != last {
				last = zone
				select {
				case out <- zone:
				case <-ctx.Done():
					return
				}
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// currentTimezone resolves the host zone name from the TZ variable or
// /etc/timezone, falling back to the runtime's idea of local time.
func currentTimezone() string {
	if tz := os.Getenv("TZ"); tz != "" {
		return tz
	}
	if data, err := os.ReadFile("/etc/timezone"); err == nil {
		if zone := strings.TrimSpace(string(data)); zone != "" {
			return zone
		}
	}
	return time.Now().Location().String()
}

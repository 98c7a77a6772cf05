package events

import "github.com/10jschen/matterhorn/internal/logging"

type AppTracer struct{}

var App = AppTracer{}

func (AppTracer) Start(payload map[string]interface{}) {
	logging.Trace("app.start", payload)
}

func (AppTracer) LoginAttempt(server, team string) {
	logging.Trace("app.login.attempt", map[string]interface{}{"server": server, "team": team})
}

func (AppTracer) LoginFailed(kind string, err error) {
	logging.Trace("app.login.failed", map[string]interface{}{"kind": kind, "error": err.Error()})
}

func (AppTracer) LoggedIn(user, team string) {
	logging.Trace("app.login.ok", map[string]interface{}{"user": user, "team": team})
}

func (AppTracer) Shutdown() {
	logging.Trace("app.shutdown", nil)
}

func (AppTracer) TimezoneChanged(zone string) {
	logging.Trace("app.timezone", map[string]interface{}{"zone": zone})
}

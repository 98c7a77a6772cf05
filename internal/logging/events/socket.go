package events

import "github.com/10jschen/matterhorn/internal/logging"

type SocketTracer struct{}

var Socket = SocketTracer{}

func (SocketTracer) Connected() {
	logging.Trace("socket.connected", nil)
}

func (SocketTracer) Disconnected(err error) {
	payload := map[string]interface{}{}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("socket.disconnected", payload)
}

func (SocketTracer) Event(name string) {
	logging.Trace("socket.event", map[string]interface{}{"event": name})
}

func (SocketTracer) Dropped(name, reason string) {
	logging.Trace("socket.dropped", map[string]interface{}{"event": name, "reason": reason})
}

package events

import "github.com/10jschen/matterhorn/internal/logging"

type UITracer struct{}

var UI = UITracer{}

func (UITracer) ModeChanged(from, to string) {
	logging.Trace("ui.mode", map[string]interface{}{"from": from, "to": to})
}

func (UITracer) ChannelSwitch(channel string) {
	logging.Trace("ui.channel.switch", map[string]interface{}{"channel": channel})
}

func (UITracer) MessageSent(channel string) {
	logging.Trace("ui.message.sent", map[string]interface{}{"channel": channel})
}

func (UITracer) SelectInput(input string, channels, users int) {
	logging.Trace("ui.select.input", map[string]interface{}{
		"input":    input,
		"channels": channels,
		"users":    users,
	})
}

func (UITracer) StateDump(path string) {
	logging.Trace("ui.dump", map[string]interface{}{"path": path})
}

func (UITracer) DisplayError(msg string) {
	logging.Trace("ui.error", map[string]interface{}{"message": msg})
}

package events

import "github.com/10jschen/matterhorn/internal/logging"

type QueueTracer struct{}

var Queue = QueueTracer{}

func (QueueTracer) Enqueued(name string, depth int) {
	logging.Trace("queue.enqueue", map[string]interface{}{"op": name, "depth": depth})
}

func (QueueTracer) Busy(depth int) {
	logging.Trace("queue.busy", map[string]interface{}{"depth": depth})
}

func (QueueTracer) Idle() {
	logging.Trace("queue.idle", nil)
}

func (QueueTracer) Completed(name string) {
	logging.Trace("queue.done", map[string]interface{}{"op": name})
}

func (QueueTracer) Failed(name string, err error) {
	logging.Trace("queue.failed", map[string]interface{}{"op": name, "error": err.Error()})
}

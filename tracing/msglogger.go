package tracing

import (
	"log"

	"github.com/maxmuv/dos/sim/hooking"
)

// MsgLogger is a hook that prints one line per message event.
type MsgLogger struct {
	*log.Logger
}

// NewMsgLogger returns a new MsgLogger which will write into the logger.
func NewMsgLogger(logger *log.Logger) *MsgLogger {
	return &MsgLogger{Logger: logger}
}

// Func writes the message information into the logger.
func (h *MsgLogger) Func(ctx hooking.HookCtx) {
	ev, m, detail, ok := event(ctx)
	if !ok {
		return
	}

	h.Printf("%d,%s,%s,%d,%d,%q,%s,%s\n",
		ctx.Now, domainName(ctx), ev,
		m.From, m.To, m.Text(), detail, m.ID)
}

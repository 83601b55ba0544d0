// Package tracing observes the messages of a simulation through hooks. A
// MsgTracer stores them with a DataRecorder and a MsgLogger prints them.
package tracing

import (
	"fmt"
	"reflect"

	"github.com/maxmuv/dos/sim/hooking"
	"github.com/maxmuv/dos/sim/msg"
	"github.com/maxmuv/dos/sim/network"
	"github.com/maxmuv/dos/sim/process"
	"github.com/maxmuv/dos/sim/simerr"
)

// NamedHookable represent something both have a name and can be hooked
type NamedHookable interface {
	Name() string
	hooking.Hookable
}

// The events a message goes through.
const (
	EventSend      = "send"
	EventDrop      = "drop"
	EventDeliver   = "deliver"
	EventUnclaimed = "unclaimed"
)

// Collect attaches the hook to the domain, unless a hook of the same type is
// already attached.
func Collect(domain NamedHookable, hook hooking.Hook) {
	for _, h := range domain.Hooks() {
		if reflect.TypeOf(h) == reflect.TypeOf(hook) {
			panic(fmt.Sprintf("domain %s already has hook %s",
				domain.Name(), reflect.TypeOf(hook)))
		}
	}

	domain.AcceptHook(hook)
}

// event tells which message event a hook invocation stands for. Invocations
// that do not concern messages yield ok == false.
func event(ctx hooking.HookCtx) (ev string, m *msg.Message, detail string, ok bool) {
	m, ok = ctx.Item.(*msg.Message)
	if !ok {
		return "", nil, "", false
	}

	switch ctx.Pos {
	case network.HookPosSend:
		return EventSend, m, "", true
	case network.HookPosDrop:
		if code, isCode := ctx.Detail.(simerr.Code); isCode {
			detail = code.String()
		}

		return EventDrop, m, detail, true
	case process.HookPosAfterDispatch:
		detail, _ = ctx.Detail.(string)
		return EventDeliver, m, detail, true
	case process.HookPosUnclaimed:
		return EventUnclaimed, m, "", true
	}

	return "", nil, "", false
}

func domainName(ctx hooking.HookCtx) string {
	if named, ok := ctx.Domain.(interface{ Name() string }); ok {
		return named.Name()
	}

	return ""
}

package tracing

import (
	"sync"

	"github.com/maxmuv/dos/datarecording"
	"github.com/maxmuv/dos/sim/hooking"
)

// MsgTableName is the table that holds the message trace.
const MsgTableName = "msg_trace"

// MsgTraceEntry is one row of the message trace.
type MsgTraceEntry struct {
	MsgID        string
	Event        string
	Time         int64
	Location     string
	Src          int
	Dst          int
	SendTime     int64
	DeliveryTime int64
	Text         string
	Detail       string
}

// MsgTracer records every message event it is hooked to. Without a backend it
// only counts the events.
type MsgTracer struct {
	backend datarecording.DataRecorder

	lock   sync.Mutex
	counts map[string]int
}

// NewMsgTracer creates the message trace table in the recorder. The backend
// may be nil.
func NewMsgTracer(backend datarecording.DataRecorder) *MsgTracer {
	if backend != nil {
		backend.CreateTable(MsgTableName, MsgTraceEntry{})
	}

	return &MsgTracer{
		backend: backend,
		counts:  make(map[string]int),
	}
}

// Func records the message event.
func (t *MsgTracer) Func(ctx hooking.HookCtx) {
	ev, m, detail, ok := event(ctx)
	if !ok {
		return
	}

	t.lock.Lock()
	t.counts[ev]++
	t.lock.Unlock()

	if t.backend == nil {
		return
	}

	t.backend.InsertData(MsgTableName, MsgTraceEntry{
		MsgID:        m.ID,
		Event:        ev,
		Time:         ctx.Now,
		Location:     domainName(ctx),
		Src:          m.From,
		Dst:          m.To,
		SendTime:     int64(m.SendTime),
		DeliveryTime: int64(m.DeliveryTime),
		Text:         m.Text(),
		Detail:       detail,
	})
}

// Counts returns how many events of each kind were recorded.
func (t *MsgTracer) Counts() map[string]int {
	t.lock.Lock()
	defer t.lock.Unlock()

	counts := make(map[string]int, len(t.counts))
	for k, v := range t.counts {
		counts[k] = v
	}

	return counts
}

// Flush writes the buffered rows.
func (t *MsgTracer) Flush() {
	if t.backend != nil {
		t.backend.Flush()
	}
}

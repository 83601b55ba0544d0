package process

import (
	"sort"
	"strings"
	"sync"

	"github.com/maxmuv/dos/sim/msg"
	"github.com/maxmuv/dos/sim/simerr"
)

// A Handler reacts to the messages delivered to a process. Handle returns
// true if it claims the message, which stops the message from being offered
// to the handlers registered later. Handlers run on the poll goroutine of
// the process and must not block.
type Handler interface {
	Handle(p *Process, m *msg.Message) bool
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(p *Process, m *msg.Message) bool

// Handle calls f(p, m).
func (f HandlerFunc) Handle(p *Process, m *msg.Message) bool {
	return f(p, m)
}

// A HandlerFactory creates a fresh handler, so that every process keeps its
// own module state.
type HandlerFactory func() Handler

// IsMine tells if a handler that owns the prefix should look at the message
// text. System messages, starting with "*", belong to everyone. Otherwise the
// text must be the prefix, an underscore and at least one more character.
func IsMine(prefix, text string) bool {
	if strings.HasPrefix(text, msg.SystemPrefix) {
		return true
	}

	if len(prefix)+1 >= len(text) {
		return false
	}

	return strings.HasPrefix(text, prefix) && text[len(prefix)] == '_'
}

// Registry maps module names to handler factories.
type Registry struct {
	lock      sync.RWMutex
	factories map[string]HandlerFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]HandlerFactory),
	}
}

// Register adds a module. Registering a name twice yields
// simerr.DuplicateItems.
func (r *Registry) Register(name string, f HandlerFactory) error {
	if f == nil {
		return simerr.ObjectIsNull
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	if _, found := r.factories[name]; found {
		return simerr.DuplicateItems
	}

	r.factories[name] = f

	return nil
}

// New creates a handler of the named module.
func (r *Registry) New(name string) (Handler, error) {
	r.lock.RLock()
	f, found := r.factories[name]
	r.lock.RUnlock()

	if !found {
		return nil, simerr.ItemNotFound
	}

	return f(), nil
}

// Names returns the registered module names in lexical order.
func (r *Registry) Names() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

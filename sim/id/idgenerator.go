// Package id generates the unique identifiers attached to messages.
package id

import (
	"log"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

var (
	generatorMutex        sync.Mutex
	generatorInstantiated bool
	generator             IDGenerator
)

// IDGenerator can generate IDs.
type IDGenerator interface {
	// Generate an ID
	Generate() string
}

// NewIDGenerator returns a sequential generator whose first ID is "1".
func NewIDGenerator() IDGenerator {
	return &sequentialIDGenerator{}
}

// NewParallelIDGenerator returns a generator based on xid. The IDs are
// unique across goroutines and runs but not deterministic.
func NewParallelIDGenerator() IDGenerator {
	return parallelIDGenerator{}
}

// UseSequentialIDGenerator configures the package generator to generate IDs
// in sequence.
func UseSequentialIDGenerator() {
	use(NewIDGenerator())
}

// UseParallelIDGenerator configures the package generator to generate xid
// based IDs.
func UseParallelIDGenerator() {
	use(NewParallelIDGenerator())
}

func use(g IDGenerator) {
	generatorMutex.Lock()
	defer generatorMutex.Unlock()

	if generatorInstantiated {
		log.Panic("cannot change id generator type after using it")
	}

	generator = g
	generatorInstantiated = true
}

// Generate returns a new ID from the package generator. The sequential
// generator is used unless another one was selected before the first call.
func Generate() string {
	generatorMutex.Lock()
	if !generatorInstantiated {
		generator = NewIDGenerator()
		generatorInstantiated = true
	}
	g := generator
	generatorMutex.Unlock()

	return g.Generate()
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	idNumber := atomic.AddUint64(&g.nextID, 1)

	return strconv.FormatUint(idNumber, 10)
}

type parallelIDGenerator struct{}

func (parallelIDGenerator) Generate() string {
	return xid.New().String()
}

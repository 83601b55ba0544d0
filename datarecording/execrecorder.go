package datarecording

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ExecTableName is the table that holds the properties of a run.
const ExecTableName = "exec_info"

// ExecInfo is one property of a run.
type ExecInfo struct {
	Property string
	Value    string
}

// ExecRecorder records how and when the program ran, together with any
// property the caller adds, such as the seed of the run.
type ExecRecorder struct {
	lock     sync.Mutex
	recorder DataRecorder
	entries  []ExecInfo
	ended    bool
}

// NewExecRecorder creates the exec_info table in the recorder.
func NewExecRecorder(recorder DataRecorder) *ExecRecorder {
	recorder.CreateTable(ExecTableName, ExecInfo{})

	return &ExecRecorder{recorder: recorder}
}

// Start logs the start time, the command line and the working directory.
func (e *ExecRecorder) Start() {
	startTime := time.Now().Format("2006-01-02 15:04:05.000000000")
	e.Record("Start Time", startTime)
	e.Record("Command", strings.Join(os.Args, " "))

	cwd, err := os.Getwd()
	if err != nil {
		ex, _ := os.Executable()
		cwd = filepath.Dir(ex)
	}

	e.Record("Working Directory", cwd)
}

// Record adds a property of the run.
func (e *ExecRecorder) Record(property, value string) {
	e.lock.Lock()
	defer e.lock.Unlock()

	e.entries = append(e.entries, ExecInfo{Property: property, Value: value})
}

// End writes all the properties along with the end time. Only the first
// call has an effect.
func (e *ExecRecorder) End() {
	e.lock.Lock()
	defer e.lock.Unlock()

	if e.ended {
		return
	}

	e.ended = true

	endTime := time.Now().Format("2006-01-02 15:04:05.000000000")
	e.entries = append(e.entries, ExecInfo{"End Time", endTime})

	for _, entry := range e.entries {
		e.recorder.InsertData(ExecTableName, entry)
	}

	e.entries = nil

	e.recorder.Flush()
}

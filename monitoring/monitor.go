// Package monitoring turns a running simulation into a web server, so that
// the processes, their queues and the traffic can be inspected live.
package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/maxmuv/dos/monitoring/web"
	"github.com/maxmuv/dos/sim/id"
	"github.com/maxmuv/dos/sim/queueing"
	"github.com/maxmuv/dos/sim/timing"
)

// A Process is what the monitor shows about a simulated node.
type Process interface {
	ID() int
	Name() string
	Alive() bool
	HandlerNames() []string
	Neighbors() []int
	Queue() *queueing.DeliveryQueue
}

// A TrafficCounter counts message events by kind.
type TrafficCounter interface {
	Counts() map[string]int
}

// Monitor can turn a simulation into a server and allows external monitoring
// of the simulation.
type Monitor struct {
	lock        sync.Mutex
	clock       timing.TimeTeller
	processes   []Process
	traffic     TrafficCounter
	portNumber  int
	openBrowser bool

	server *http.Server
	url    string

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes StartServer open the monitoring page in a web browser.
func (m *Monitor) WithBrowser() *Monitor {
	m.openBrowser = true
	return m
}

// RegisterClock registers the clock of the simulation.
func (m *Monitor) RegisterClock(c timing.TimeTeller) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.clock = c
}

// RegisterProcess registers a process to be monitored.
func (m *Monitor) RegisterProcess(p Process) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.processes = append(m.processes, p)
}

// RegisterTrafficCounter sets where the traffic numbers come from.
func (m *Monitor) RegisterTrafficCounter(c TrafficCounter) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.traffic = c
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        id.Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

func (m *Monitor) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/list_processes", m.listProcesses)
	r.HandleFunc("/api/process/{id}", m.listProcessDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/queues", m.listQueues)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/traffic", m.reportTraffic)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts the monitor as a web server and returns its address.
func (m *Monitor) StartServer() string {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	srv := &http.Server{
		Handler:           m.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	m.lock.Lock()
	m.url = url
	m.server = srv
	m.lock.Unlock()

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	go func() {
		err := srv.Serve(listener)
		if !errors.Is(err, http.ErrServerClosed) {
			dieOnErr(err)
		}
	}()

	if m.openBrowser {
		if err := browser.OpenURL(url); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open browser: %v\n", err)
		}
	}

	return url
}

// StopServer shuts the web server down. It can be called right after
// StartServer and more than once.
func (m *Monitor) StopServer() {
	m.lock.Lock()
	srv := m.server
	m.server = nil
	m.lock.Unlock()

	if srv == nil {
		return
	}

	dieOnErr(srv.Close())
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	clock := m.clock
	m.lock.Unlock()

	var now timing.VTimeInTick
	if clock != nil {
		now = clock.Now()
	}

	fmt.Fprintf(w, "{\"now\":%d}", now)
}

type processRsp struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Alive     bool     `json:"alive"`
	QueueLen  int      `json:"queue_len"`
	Handlers  []string `json:"handlers"`
	Neighbors []int    `json:"neighbors"`
}

func snapshot(p Process) processRsp {
	return processRsp{
		ID:        p.ID(),
		Name:      p.Name(),
		Alive:     p.Alive(),
		QueueLen:  p.Queue().Len(),
		Handlers:  p.HandlerNames(),
		Neighbors: p.Neighbors(),
	}
}

func (m *Monitor) listProcesses(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	processes := append([]Process(nil), m.processes...)
	m.lock.Unlock()

	rsp := make([]processRsp, 0, len(processes))
	for _, p := range processes {
		rsp = append(rsp, snapshot(p))
	}

	writeJSON(w, rsp)
}

func (m *Monitor) listProcessDetails(w http.ResponseWriter, r *http.Request) {
	p := m.findProcessOr404(w, mux.Vars(r)["id"])
	if p == nil {
		return
	}

	s := snapshot(p)

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&s)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type fieldReq struct {
	ProcessID string `json:"process_id,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	req := fieldReq{}

	err := json.Unmarshal([]byte(mux.Vars(r)["json"]), &req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	p := m.findProcessOr404(w, req.ProcessID)
	if p == nil {
		return
	}

	s := snapshot(p)

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&s)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	err = serializer.Serialize(w)
	dieOnErr(err)
}

func (m *Monitor) listQueues(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parsePaging(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	m.lock.Lock()
	queues := make([]*queueing.DeliveryQueue, 0, len(m.processes))
	for _, p := range m.processes {
		queues = append(queues, p.Queue())
	}
	m.lock.Unlock()

	type queueRsp struct {
		Queue string `json:"queue"`
		Level int    `json:"level"`
	}

	levels := make([]queueRsp, 0, len(queues))
	for _, q := range queues {
		levels = append(levels, queueRsp{Queue: q.Name(), Level: q.Len()})
	}

	sort.SliceStable(levels, func(i, j int) bool {
		return levels[i].Level > levels[j].Level
	})

	levels = page(levels, limit, offset)

	writeJSON(w, levels)
}

func parsePaging(r *http.Request) (limit, offset int, err error) {
	limitStr := r.URL.Query().Get("limit")
	if limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			return 0, 0, err
		}
	}

	offsetStr := r.URL.Query().Get("offset")
	if offsetStr != "" {
		offset, err = strconv.Atoi(offsetStr)
		if err != nil {
			return 0, 0, err
		}
	}

	if limit < 0 || offset < 0 {
		return 0, 0, errors.New("limit and offset must not be negative")
	}

	return limit, offset, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return items[:0]
	}

	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}

	return items
}

func (m *Monitor) findProcessOr404(w http.ResponseWriter, idStr string) Process {
	var found Process

	nodeID, err := strconv.Atoi(idStr)
	if err == nil {
		m.lock.Lock()
		for _, p := range m.processes {
			if p.ID() == nodeID {
				found = p
			}
		}
		m.lock.Unlock()
	}

	if found == nil {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Process not found"))
		dieOnErr(err)
	}

	return found
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	writeJSON(w, m.progressBars)
}

func (m *Monitor) reportTraffic(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	traffic := m.traffic
	m.lock.Unlock()

	counts := map[string]int{}
	if traffic != nil {
		counts = traffic.Counts()
	}

	writeJSON(w, counts)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memory, err := proc.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memory.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}

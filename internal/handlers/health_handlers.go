package handlers

import (
	"context"
	"errors"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"time"

	"client_manager_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/process"
)

const (
	defaultHeapLimit = 150 * 1024 * 1024
	defaultRSSLimit  = 300 * 1024 * 1024
	healthDBTimeout  = 2 * time.Second
)

// errDatabaseUnreachable replaces the driver error in the public body; the detail goes to the log.
var errDatabaseUnreachable = errors.New("unreachable")

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// CheckStatus is the state of one health check.
type CheckStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Info      map[string]CheckStatus `json:"info"`
	Error     map[string]CheckStatus `json:"error"`
	Timestamp time.Time              `json:"timestamp"`
	Uptime    float64                `json:"uptime"`
}

// HealthHandler reports database reachability and memory use.
type HealthHandler struct {
	db        Pinger
	startedAt time.Time
	heapLimit uint64
	rssLimit  uint64
	rss       func() (uint64, error)
}

// NewHealthHandler creates a HealthHandler with the default memory thresholds.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{
		db:        db,
		startedAt: time.Now(),
		heapLimit: defaultHeapLimit,
		rssLimit:  defaultRSSLimit,
		rss:       processRSS,
	}
}

func processRSS() (uint64, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, err
	}
	mem, err := p.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return mem.RSS, nil
}

// Check handles GET /healthz. Any failing check turns the response into a 503.
func (h *HealthHandler) Check(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		Info:      map[string]CheckStatus{},
		Error:     map[string]CheckStatus{},
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startedAt).Seconds(),
	}
	record := func(name string, err error) {
		if err != nil {
			resp.Error[name] = CheckStatus{Status: "down", Message: err.Error()}
			return
		}
		resp.Info[name] = CheckStatus{Status: "up"}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthDBTimeout)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		utils.LogError(err, "Health check: database ping failed")
		record("database", errDatabaseUnreachable)
	} else {
		record("database", nil)
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	record("memory_heap", checkLimit(ms.HeapAlloc, h.heapLimit))

	rss, err := h.rss()
	if err == nil {
		err = checkLimit(rss, h.rssLimit)
	}
	record("memory_rss", err)

	status := http.StatusOK
	if len(resp.Error) > 0 {
		resp.Status = "error"
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

type limitError struct {
	used, limit uint64
}

func (e limitError) Error() string {
	return "used " + formatMiB(e.used) + " exceeds threshold " + formatMiB(e.limit)
}

func formatMiB(b uint64) string {
	return strconv.FormatUint(b/(1024*1024), 10) + "MiB"
}

func checkLimit(used, limit uint64) error {
	if used > limit {
		return limitError{used: used, limit: limit}
	}
	return nil
}

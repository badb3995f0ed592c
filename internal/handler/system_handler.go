package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-prep/internal/config"
	"github.com/stemsi/exstem-prep/internal/response"
	"github.com/stemsi/exstem-prep/internal/session"
)

const metricsInterval = 7 * time.Second

// StatusSource reports the engine state tag.
type StatusSource interface {
	Status() session.Status
}

// ClientCounter reports connected stream clients.
type ClientCounter interface {
	Len() int
}

// SystemHandler serves health and streams runtime metrics via SSE.
type SystemHandler struct {
	engine      StatusSource
	clients     ClientCounter
	rdb         *redis.Client // nil when the archive queues are not configured
	storeDriver string
	startTime   time.Time
	log         zerolog.Logger
}

func NewSystemHandler(engine StatusSource, clients ClientCounter, rdb *redis.Client, storeDriver string, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		engine:      engine,
		clients:     clients,
		rdb:         rdb,
		storeDriver: storeDriver,
		startTime:   time.Now(),
		log:         log.With().Str("component", "system_handler").Logger(),
	}
}

type systemMetrics struct {
	Timestamp int64  `json:"timestamp"`
	Uptime    string `json:"uptime"`

	// Session
	SessionStatus session.Status `json:"session_status"`
	StoreDriver   string         `json:"store_driver"`
	StreamClients int            `json:"stream_clients"`

	// Go Application
	Goroutines int    `json:"goroutines"`
	HeapAlloc  uint64 `json:"heap_alloc"`
	HeapSys    uint64 `json:"heap_sys"`
	NumGC      uint32 `json:"num_gc"`
	GoVersion  string `json:"go_version"`

	// Worker Queues
	QueueHistory *int64 `json:"queue_history,omitempty"`
	QueueProctor *int64 `json:"queue_proctor,omitempty"`
}

// Health godoc
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"status":         "ok",
		"session_status": h.engine.Status(),
		"uptime":         formatDuration(time.Since(h.startTime)),
	})
}

// SystemMetricsSSE godoc
// GET /api/v1/system/metrics
func (h *SystemHandler) SystemMetricsSSE(c *gin.Context) {
	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	h.log.Debug().Msg("Metrics stream connected")

	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()

	// Send immediately on connect, then every tick
	h.writeMetrics(c)

	for {
		select {
		case <-reqCtx.Done():
			h.log.Debug().Msg("Metrics stream disconnected")
			return
		case <-ticker.C:
			h.writeMetrics(c)
		}
	}
}

func (h *SystemHandler) writeMetrics(c *gin.Context) {
	m := h.collect(c.Request.Context())
	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	c.Writer.Write([]byte("data: "))
	c.Writer.Write(data)
	c.Writer.Write([]byte("\n\n"))
	c.Writer.Flush()
}

func (h *SystemHandler) collect(ctx context.Context) systemMetrics {
	m := systemMetrics{
		Timestamp:     time.Now().Unix(),
		Uptime:        formatDuration(time.Since(h.startTime)),
		SessionStatus: h.engine.Status(),
		StoreDriver:   h.storeDriver,
		StreamClients: h.clients.Len(),
		GoVersion:     runtime.Version(),
		Goroutines:    runtime.NumGoroutine(),
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.HeapAlloc = ms.HeapAlloc
	m.HeapSys = ms.Sys
	m.NumGC = ms.NumGC

	if h.rdb == nil {
		return m
	}

	// ── Worker Queues (pipelined LLEN) ──
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	pipe := h.rdb.Pipeline()
	historyCmd := pipe.LLen(ctx, config.WorkerKey.PersistHistoryQueue)
	proctorCmd := pipe.LLen(ctx, config.WorkerKey.PersistProctorQueue)
	if _, err := pipe.Exec(ctx); err == nil {
		hist, _ := historyCmd.Result()
		proc, _ := proctorCmd.Result()
		m.QueueHistory = &hist
		m.QueueProctor = &proc
	}

	return m
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/hackgods/agent-crm-scheduling/internal/logger"
)

// SimConfig drives a burst of concurrent bookings of the same window for
// one agent. With the booking lock off, more than one booking can win.
type SimConfig struct {
	APIBaseURL string
	AgentID    uuid.UUID
	Date       string
	StartTime  string
	EndTime    string
	Requests   int
	Rounds     int
}

type OperationMetrics struct {
	Total     int64
	Created   int64
	Conflict  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, status int) {
	atomic.AddInt64(&om.Total, 1)
	switch status {
	case http.StatusCreated:
		atomic.AddInt64(&om.Created, 1)
	case http.StatusConflict:
		atomic.AddInt64(&om.Conflict, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)
	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]
	p50 = latencies[percentileIndex(len(latencies), 50)]
	p95 = latencies[percentileIndex(len(latencies), 95)]
	return avg, min, max, p50, p95
}

func percentileIndex(n, p int) int {
	i := n * p / 100
	if i >= n {
		i = n - 1
	}
	return i
}

type Simulator struct {
	config SimConfig
	client *http.Client

	// rounds in which more than one booking of the window succeeded
	doubleBooked int
	metrics      OperationMetrics
}

func main() {
	log := logger.Log

	cfg, err := loadConfig()
	if err != nil {
		log.WithError(err).Fatal("invalid config")
	}

	log.WithFields(logrus.Fields{
		"agent_id": cfg.AgentID,
		"requests": cfg.Requests,
		"rounds":   cfg.Rounds,
	}).Info("simulator starting")

	sim := &Simulator{
		config: cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}

	sim.Run(context.Background())
	sim.PrintReport()
}

func loadConfig() (SimConfig, error) {
	cfg := SimConfig{
		APIBaseURL: strings.TrimRight(getEnv("SIM_API_BASE_URL", "http://localhost:8080"), "/"),
		Date:       getEnv("SIM_DATE", time.Now().AddDate(0, 0, 1).Format("2006-01-02")),
		StartTime:  getEnv("SIM_START_TIME", "10:00"),
		EndTime:    getEnv("SIM_END_TIME", "11:00"),
		Requests:   getInt("SIM_REQUESTS", 20),
		Rounds:     getInt("SIM_ROUNDS", 5),
	}

	raw := os.Getenv("SIM_AGENT_ID")
	if raw == "" {
		return cfg, fmt.Errorf("SIM_AGENT_ID is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return cfg, fmt.Errorf("SIM_AGENT_ID: %w", err)
	}
	cfg.AgentID = id

	if cfg.Requests <= 0 || cfg.Rounds <= 0 {
		return cfg, fmt.Errorf("SIM_REQUESTS and SIM_ROUNDS must be > 0")
	}
	return cfg, nil
}

// Run fires Requests simultaneous bookings per round. Each round moves to the
// next day so earlier winners do not block it.
func (s *Simulator) Run(ctx context.Context) {
	base, err := time.Parse("2006-01-02", s.config.Date)
	if err != nil {
		logger.Log.WithError(err).Fatal("SIM_DATE must be YYYY-MM-DD")
	}

	for round := 0; round < s.config.Rounds; round++ {
		date := base.AddDate(0, 0, round).Format("2006-01-02")

		var created int64
		start := make(chan struct{})
		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < s.config.Requests; i++ {
			g.Go(func() error {
				<-start
				if s.book(gctx, date, i) == http.StatusCreated {
					atomic.AddInt64(&created, 1)
				}
				return nil
			})
		}
		close(start)
		_ = g.Wait()

		if created > 1 {
			s.doubleBooked++
		}
		logger.Log.WithFields(logrus.Fields{
			"round":   round + 1,
			"date":    date,
			"created": created,
		}).Info("round complete")
	}
}

func (s *Simulator) book(ctx context.Context, date string, n int) int {
	body, _ := json.Marshal(map[string]string{
		"title":           fmt.Sprintf("Simulated booking %d", n),
		"appointmentDate": date,
		"startTime":       s.config.StartTime,
		"endTime":         s.config.EndTime,
		"type":            "Meeting",
	})

	url := fmt.Sprintf("%s/api/agents/%s/appointments", s.config.APIBaseURL, s.config.AgentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		s.metrics.Record(0, 0)
		return 0
	}
	req.Header.Set("Content-Type", "application/json")

	began := time.Now()
	resp, err := s.client.Do(req)
	latency := time.Since(began)
	if err != nil {
		s.metrics.Record(latency, 0)
		return 0
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	s.metrics.Record(latency, resp.StatusCode)
	return resp.StatusCode
}

func (s *Simulator) PrintReport() {
	om := &s.metrics
	total := atomic.LoadInt64(&om.Total)

	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Agent: %s\n", s.config.AgentID)
	fmt.Printf("Window: %s-%s, %d rounds x %d requests\n", s.config.StartTime, s.config.EndTime, s.config.Rounds, s.config.Requests)
	fmt.Println()

	if total == 0 {
		return
	}
	created := atomic.LoadInt64(&om.Created)
	conflict := atomic.LoadInt64(&om.Conflict)
	errCount := atomic.LoadInt64(&om.Error)
	avg, min, max, p50, p95 := om.Stats()

	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Created (201): %d (%.1f%%)\n", created, float64(created)/float64(total)*100)
	fmt.Printf("  Conflict (409): %d (%.1f%%)\n", conflict, float64(conflict)/float64(total)*100)
	if errCount > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", errCount, float64(errCount)/float64(total)*100)
	}
	fmt.Printf("  Rounds with more than one booking: %d/%d\n", s.doubleBooked, s.config.Rounds)
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), min.Round(time.Millisecond), max.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Println()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

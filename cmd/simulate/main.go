// simulate drives concurrent booking traffic against a running api-server
// to exercise the slot lock under contention. Many workers fight over a
// deliberately small set of (provider, instant) pairs; the interesting
// output is the success/conflict split and the absence of double bookings.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carebridge/telemed-scheduling/internal/db"
)

type SimConfig struct {
	APIBaseURL  string
	Duration    time.Duration
	Workers     int
	Providers   int
	SlotsPerDay int
	PostgresDSN string
}

type DataPool struct {
	Patients  []uuid.UUID
	Providers []uuid.UUID
	Instants  []time.Time
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	mu        sync.Mutex
	latencies []time.Duration
}

func (om *OperationMetrics) Record(latency time.Duration, status int) {
	atomic.AddInt64(&om.Total, 1)
	switch {
	case status == http.StatusCreated:
		atomic.AddInt64(&om.Success, 1)
	case status == http.StatusConflict:
		atomic.AddInt64(&om.Conflict, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.latencies = append(om.latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.latencies) == 0 {
		return 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.latencies))
	copy(latencies, om.latencies)
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	avg = sum / time.Duration(len(latencies))
	p50 = latencies[len(latencies)*50/100]
	p95 = latencies[min(len(latencies)*95/100, len(latencies)-1)]
	return avg, p50, p95
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("simulator starting")

	cfg := loadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pgPool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pgPool.Close()

	pool, err := loadDataPool(ctx, pgPool, cfg)
	if err != nil {
		log.Fatalf("load data pool: %v", err)
	}
	log.Printf("loaded: %d patients, %d providers, %d instants",
		len(pool.Patients), len(pool.Providers), len(pool.Instants))

	var metrics OperationMetrics
	client := &http.Client{Timeout: 10 * time.Second}

	runCtx, stop := context.WithTimeout(context.Background(), cfg.Duration)
	defer stop()

	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for runCtx.Err() == nil {
				bookOnce(runCtx, client, cfg, pool, rng, &metrics)
			}
		}(int64(w) + time.Now().UnixNano())
	}
	wg.Wait()

	report(&metrics, pgPool)
}

func bookOnce(ctx context.Context, client *http.Client, cfg SimConfig, pool *DataPool, rng *rand.Rand, metrics *OperationMetrics) {
	body, _ := json.Marshal(map[string]any{
		"patient_id":   pool.Patients[rng.Intn(len(pool.Patients))].String(),
		"provider_id":  pool.Providers[rng.Intn(len(pool.Providers))].String(),
		"scheduled_at": pool.Instants[rng.Intn(len(pool.Instants))].Format(time.RFC3339),
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.APIBaseURL+"/appointments", bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			metrics.Record(time.Since(start), 0)
		}
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	metrics.Record(time.Since(start), resp.StatusCode)
}

func loadDataPool(ctx context.Context, pgPool *pgxpool.Pool, cfg SimConfig) (*DataPool, error) {
	pool := &DataPool{}

	rows, err := pgPool.Query(ctx, `
		SELECT id FROM patients
		WHERE profile_complete = true
		LIMIT 500
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		pool.Patients = append(pool.Patients, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	provRows, err := pgPool.Query(ctx, `
		SELECT id FROM providers
		WHERE approval_status = 'approved'
		LIMIT $1
	`, cfg.Providers)
	if err != nil {
		return nil, err
	}
	defer provRows.Close()
	for provRows.Next() {
		var id uuid.UUID
		if err := provRows.Scan(&id); err != nil {
			return nil, err
		}
		pool.Providers = append(pool.Providers, id)
	}
	if err := provRows.Err(); err != nil {
		return nil, err
	}

	if len(pool.Patients) == 0 || len(pool.Providers) == 0 {
		return nil, fmt.Errorf("data pool is empty, run cmd/seed first")
	}

	// Next business day, 30-minute instants starting 09:00 UTC: a small
	// pool so workers collide on purpose.
	day := nextWeekday(time.Now().UTC().AddDate(0, 0, 1))
	for i := 0; i < cfg.SlotsPerDay; i++ {
		pool.Instants = append(pool.Instants,
			time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, time.UTC).Add(time.Duration(i)*30*time.Minute))
	}

	return pool, nil
}

func nextWeekday(t time.Time) time.Time {
	for t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

func report(metrics *OperationMetrics, pgPool *pgxpool.Pool) {
	avg, p50, p95 := metrics.Stats()
	log.Printf("bookings: total=%d success=%d conflict=%d error=%d",
		atomic.LoadInt64(&metrics.Total),
		atomic.LoadInt64(&metrics.Success),
		atomic.LoadInt64(&metrics.Conflict),
		atomic.LoadInt64(&metrics.Error),
	)
	log.Printf("latency: avg=%s p50=%s p95=%s", avg, p50, p95)

	// The whole point: no (provider, instant) pair may hold two active
	// appointments, and no lock rows may linger.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var duplicates int
	err := pgPool.QueryRow(ctx, `
		SELECT count(*) FROM (
			SELECT provider_id, scheduled_at
			FROM appointments
			WHERE status <> 'cancelled'
			GROUP BY provider_id, scheduled_at
			HAVING count(*) > 1
		) d
	`).Scan(&duplicates)
	if err != nil {
		log.Printf("duplicate check failed: %v", err)
	} else {
		log.Printf("double-booked (provider, instant) pairs: %d", duplicates)
	}

	var residualLocks int
	if err := pgPool.QueryRow(ctx, `SELECT count(*) FROM slot_locks`).Scan(&residualLocks); err != nil {
		log.Printf("lock residue check failed: %v", err)
	} else {
		log.Printf("residual slot_locks rows: %d", residualLocks)
	}
}

func loadConfig() SimConfig {
	cfg := SimConfig{
		APIBaseURL:  envOr("API_BASE_URL", "http://127.0.0.1:8080"),
		Duration:    envDuration("SIM_DURATION", 30*time.Second),
		Workers:     envInt("SIM_WORKERS", 32),
		Providers:   envInt("SIM_PROVIDERS", 4),
		SlotsPerDay: envInt("SIM_SLOTS", 16),
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
	}
	if cfg.PostgresDSN == "" {
		log.Fatal("POSTGRES_DSN is required")
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

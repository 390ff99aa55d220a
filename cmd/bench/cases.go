// README: Smoke cases for matchmaking and route optimisation; HTTP, DB, Redis and throughput checks.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
	StatusSkip = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name  string
	Focus string
	Run   func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-7s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}

	return results
}

var seedRows = []string{
	`INSERT INTO searching_pool (id, user_id, tipo_de_usuario, pickup_address, dropoff_address, pickup_lat, pickup_lng, dropoff_lat, dropoff_lng, available_seats, price_per_seat)
	 VALUES ('bench-d1', 'bench-u1', 'driver', 'Plaza de Armas', 'Costanera Center', -33.4378, -70.6505, -33.4172, -70.6064, 3, 1500)
	 ON CONFLICT (id) DO NOTHING`,
	`INSERT INTO searching_pool (id, user_id, tipo_de_usuario, pickup_address, dropoff_address, pickup_lat, pickup_lng, dropoff_lat, dropoff_lng)
	 VALUES ('bench-p1', 'bench-u2', 'passenger', 'Santa Lucia', 'Tobalaba', -33.4400, -70.6450, -33.4180, -70.6010)
	 ON CONFLICT (id) DO NOTHING`,
}

var (
	passengerRequest = map[string]any{
		"user_type":   "passenger",
		"pickup_lat":  -33.4380,
		"pickup_lng":  -70.6500,
		"dropoff_lat": -33.4175,
		"dropoff_lng": -70.6060,
	}
	optimizeRequest = map[string]any{
		"start_point": map[string]any{"lat": -33.4489, "lng": -70.6693},
		"destination": map[string]any{"lat": -33.4172, "lng": -70.6064},
		"passengers": []map[string]any{
			{"id": "p1", "name": "Ana", "pickup_address": "Santa Lucia", "pickup_lat": -33.4400, "pickup_lng": -70.6450},
			{"id": "p2", "name": "Luis", "pickup_address": "Baquedano", "pickup_lat": -33.4372, "pickup_lng": -70.6343},
			{"id": "p3", "name": "Sofia", "pickup_address": "Moneda", "pickup_lat": -33.4429, "pickup_lng": -70.6539},
		},
	}
)

func (r *Runner) cases() []TestCase {
	mm := r.cfg.MatchmakingURL
	opt := r.cfg.OptimizationURL
	return []TestCase{
		{
			Name:  "Env: Postgres connect",
			Focus: "searching pool reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: StatusFail, Note: "db not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				return Result{Status: StatusPass}
			},
		},
		{
			Name:  "Env: Redis connect",
			Focus: "distance cache reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: StatusSkip, Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				return Result{Status: StatusPass}
			},
		},
		{
			Name:  "Migration: apply and seed (optional)",
			Focus: "apply migration SQL and seed searching users",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration {
					return Result{Status: StatusSkip, Note: "apply-migration=false"}
				}
				if r.db == nil {
					return Result{Status: StatusFail, Note: "db not configured"}
				}
				sql, err := os.ReadFile(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				for _, s := range append(splitSQL(string(sql)), seedRows...) {
					if _, err := r.db.Exec(ctx, s); err != nil {
						return Result{Status: StatusFail, Note: err.Error()}
					}
				}
				return Result{Status: StatusPass}
			},
		},
		{
			Name:  "Migration: tables exist",
			Focus: "tables from the migration file exist",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: StatusFail, Note: "db not configured"}
				}
				tables, err := extractTables(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				for _, t := range tables {
					var exists bool
					err := r.db.QueryRow(ctx,
						"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
						t,
					).Scan(&exists)
					if err != nil {
						return Result{Status: StatusFail, Note: err.Error()}
					}
					if !exists {
						return Result{Status: StatusFail, Note: "missing table: " + t}
					}
				}
				return Result{Status: StatusPass}
			},
		},

		httpCase("Health: matchmaking", http.MethodGet, mm+"/health", nil, http.StatusOK),
		httpCase("Health: optimization", http.MethodGet, opt+"/health", nil, http.StatusOK),

		// Matchmaking
		httpCase("Matchmaking: passenger request", http.MethodPost, mm+"/api/matchmaking", passengerRequest, http.StatusOK),
		httpCase("Matchmaking: driver request", http.MethodPost, mm+"/api/matchmaking", map[string]any{
			"user_type":       "driver",
			"pickup_lat":      -33.4380,
			"pickup_lng":      -70.6500,
			"dropoff_lat":     -33.4175,
			"dropoff_lng":     -70.6060,
			"available_seats": 3,
		}, http.StatusOK),
		httpCase("Matchmaking: missing user_type -> 400", http.MethodPost, mm+"/api/matchmaking", map[string]any{"pickup_lat": 1}, http.StatusBadRequest),
		httpCase("Matchmaking: invalid user_type -> 400", http.MethodPost, mm+"/api/matchmaking", map[string]any{"user_type": "admin"}, http.StatusBadRequest),
		httpCase("Matchmaking: status", http.MethodGet, mm+"/api/matchmaking/status", nil, http.StatusOK),

		// Route optimisation
		httpCase("Optimize: three pickups", http.MethodPost, opt+"/api/optimize-route", optimizeRequest, http.StatusOK),
		httpCase("Optimize: missing fields -> 400", http.MethodPost, opt+"/api/optimize-route", map[string]any{}, http.StatusBadRequest),
		httpCase("Optimize: calculate detour", http.MethodPost, opt+"/api/optimize-route/calculate-detour", map[string]any{
			"original_route": map[string]any{"lat": -33.4489, "lng": -70.6693},
			"destination":    map[string]any{"lat": -33.4172, "lng": -70.6064},
			"new_passenger":  map[string]any{"pickup_lat": -33.4400, "pickup_lng": -70.6450},
		}, http.StatusOK),
		httpCase("Optimize: status", http.MethodGet, opt+"/api/optimize-route/status", nil, http.StatusOK),

		// Determinism
		{
			Name:  "Concurrency: identical optimize requests agree",
			Focus: "same input, byte-identical output",
			Run: func(ctx context.Context, r *Runner) Result {
				return concurrentIdentical(ctx, r, opt+"/api/optimize-route", optimizeRequest)
			},
		},

		// Performance
		{
			Name:  "Perf: matchmaking throughput",
			Focus: "pool read plus ranking per request",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, mm+"/api/matchmaking", passengerRequest)
			},
		},
		{
			Name:  "Perf: optimize throughput",
			Focus: "nearest-neighbor sequencing per request",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, opt+"/api/optimize-route", optimizeRequest)
			},
		},
	}
}

func httpCase(name, method, url string, body any, okStatuses ...int) TestCase {
	return TestCase{
		Name:  name,
		Focus: "HTTP API",
		Run: func(ctx context.Context, r *Runner) Result {
			start := time.Now()
			status, _, err := r.do(ctx, method, url, body)
			if err != nil {
				return Result{Status: StatusFail, Note: err.Error()}
			}
			latency := time.Since(start)
			note := fmt.Sprintf("status=%d", status)
			if contains(okStatuses, status) {
				return Result{Status: StatusPass, Latency: latency, Note: note}
			}
			return Result{Status: StatusFail, Latency: latency, Note: note}
		},
	}
}

func (r *Runner) do(ctx context.Context, method, url string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	return resp.StatusCode, out, err
}

func concurrentIdentical(ctx context.Context, r *Runner, url string, payload any) Result {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		bodies = make(map[string]int)
		errs   int
	)
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, body, err := r.do(ctx, http.MethodPost, url, payload)
			mu.Lock()
			defer mu.Unlock()
			if err != nil || status != http.StatusOK {
				errs++
				return
			}
			bodies[string(body)]++
		}()
	}
	wg.Wait()

	if errs > 0 {
		return Result{Status: StatusFail, Note: fmt.Sprintf("errors=%d", errs)}
	}
	if len(bodies) != 1 {
		return Result{Status: StatusFail, Note: fmt.Sprintf("distinct_bodies=%d", len(bodies))}
	}
	return Result{Status: StatusPass, Note: fmt.Sprintf("requests=%d", r.cfg.Concurrency)}
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	end := time.Now().Add(r.cfg.Duration)
	var (
		count, errCount int64
		mu              sync.Mutex
		wg              sync.WaitGroup
	)

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				status, _, err := r.do(ctx, http.MethodPost, url, payload)
				mu.Lock()
				if err != nil || status >= 500 {
					errCount++
				} else {
					count++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: StatusFail, Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: StatusPass, Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

func contains(list []int, v int) bool {
	for _, i := range list {
		if i == v {
			return true
		}
	}
	return false
}

func extractTables(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	re := regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)
	matches := re.FindAllStringSubmatch(string(b), -1)
	tables := make([]string, 0, len(matches))
	for _, m := range matches {
		tables = append(tables, m[1])
	}
	return tables, nil
}

func splitSQL(sql string) []string {
	lines := strings.Split(sql, "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "--") || l == "" {
			continue
		}
		filtered = append(filtered, line)
	}
	cleaned := strings.Join(filtered, "\n")
	parts := strings.Split(cleaned, ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

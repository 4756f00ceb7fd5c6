package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	goSession "github.com/MrEthical07/goSession"
)

func main() {
	var (
		sessions    = flag.Int("sessions", 10000, "number of browser sessions to simulate")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 100000, "operations per phase (login + resolve + decide)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "gsc", "credential key prefix")
	)
	flag.Parse()

	if *sessions <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "sessions, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	platform := httptest.NewServer(stubPlatform())
	defer platform.Close()
	fmt.Printf("using stub platform at %s\n", platform.URL)

	cfg := goSession.DefaultConfig()
	cfg.Platform.BaseURL = platform.URL
	cfg.Credential.RedisPrefix = *prefix
	cfg.Metrics.Enabled = true

	engine, err := goSession.New().
		WithConfig(cfg).
		WithRedis(client).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build failed: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	keys := make([]string, *sessions)
	for i := range keys {
		keys[i] = fmt.Sprintf("sess-%d", i)
	}

	loginStats := runPhase(ctx, *ops, *concurrency, keys, func(ctx context.Context, idx int) error {
		_, err := engine.Login(ctx, accountEmail(idx), "hunter22")
		return err
	})
	resolveStats := runPhase(ctx, *ops, *concurrency, keys, func(ctx context.Context, idx int) error {
		_, err := engine.RefreshSession(ctx)
		return err
	})
	decideStats := runPhase(ctx, *ops, *concurrency, keys, func(ctx context.Context, idx int) error {
		_, err := engine.DecideResolved(ctx, 0)
		return err
	})
	logoutStats := runPhase(ctx, *ops, *concurrency, keys, func(ctx context.Context, idx int) error {
		return engine.Logout(ctx)
	})

	fmt.Println("---- results ----")
	printStats("login", loginStats)
	printStats("resolve", resolveStats)
	printStats("decide", decideStats)
	printStats("logout", logoutStats)

	snapshot := engine.MetricsSnapshot()
	fmt.Printf("metrics: login_success=%d resolve_hit=%d resolve_miss=%d guard_render=%d\n",
		snapshot.Counters[goSession.MetricLoginSuccess],
		snapshot.Counters[goSession.MetricResolveHit],
		snapshot.Counters[goSession.MetricResolveMiss],
		snapshot.Counters[goSession.MetricGuardRender],
	)
}

func runPhase(ctx context.Context, ops, concurrency int, keys []string, op func(ctx context.Context, idx int) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(keys))
				opCtx := goSession.WithSessionKey(ctx, keys[idx])
				t0 := time.Now()
				err := op(opCtx, idx)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

func accountEmail(idx int) string {
	return fmt.Sprintf("user-%d@example.com", idx)
}

// stubPlatform answers the platform endpoints the engine exercises: login
// issuing a bearer token derived from the email, and the current-user probe
// reversing that derivation. Every account is pre-verified.
func stubPlatform() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"token": "tok-" + req.Email,
			"user":  stubUser(req.Email),
		})
	})

	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		const bearer = "Bearer tok-"
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, bearer) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "unauthorized"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"user": stubUser(auth[len(bearer):]),
		})
	})

	return mux
}

func stubUser(email string) map[string]any {
	role := "job_seeker"
	if strings.HasPrefix(email, "user-1") {
		role = "employer"
	}
	return map[string]any{
		"id":         "u-" + email,
		"name":       "Load Tester",
		"email":      email,
		"role":       role,
		"isVerified": true,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

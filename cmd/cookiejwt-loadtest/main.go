package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/cookiejwt"
)

func main() {
	var (
		mode        = flag.String("mode", "signed", "token mode: encrypted, signed or unsecured")
		secret      = flag.String("secret", "loadtest-secret-0123456789abcdef", "cookie secret")
		sessions    = flag.Int("sessions", 1000, "number of distinct session cookies to seed")
		payload     = flag.Int("payload", 256, "bytes of padding per session")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 100000, "operations per phase (get + commit)")
	)
	flag.Parse()

	if *sessions <= 0 || *concurrency <= 0 || *ops <= 0 || *payload < 0 {
		fmt.Fprintln(os.Stderr, "sessions, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	cfg := cookiejwt.DefaultConfig()
	cfg.Cookie.Name = "session"
	cfg.Cookie.Secrets = []string{*secret}
	cfg.Token.RequireSecret = true
	switch *mode {
	case "encrypted":
		cfg.Token.Encrypt = true
	case "signed":
		cfg.Token.Sign = true
	case "unsecured":
		cfg.Cookie.Secrets = nil
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", *mode)
		os.Exit(2)
	}

	storage, err := cookiejwt.New().WithConfig(cfg).WithMetricsEnabled(true).Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build failed: %v\n", err)
		os.Exit(1)
	}
	defer storage.Close()

	ctx := context.Background()
	pad := strings.Repeat("x", *payload)

	headers := make([]string, *sessions)
	fmt.Printf("seeding %d %s sessions...\n", *sessions, storage.Mode().Name())
	startSeed := time.Now()
	for i := 0; i < *sessions; i++ {
		value, err := storage.CommitSession(ctx, seedSession(i, pad))
		if err != nil {
			fmt.Fprintf(os.Stderr, "commit failed: %v\n", err)
			os.Exit(1)
		}
		headers[i] = strings.SplitN(value, ";", 2)[0]
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	getStats := runPhase(*ops, *concurrency, 7919, func(r *rand.Rand, _ int) error {
		sess, err := storage.GetSession(ctx, headers[r.Intn(len(headers))])
		if err == nil && sess.Len() == 0 {
			return fmt.Errorf("session did not load")
		}
		return err
	})
	commitStats := runPhase(*ops, *concurrency, 6151, func(r *rand.Rand, i int) error {
		_, err := storage.CommitSession(ctx, seedSession(r.Intn(*sessions)+i, pad))
		return err
	})

	fmt.Println("---- results ----")
	printStats("get", getStats)
	printStats("commit", commitStats)

	snap := storage.MetricsSnapshot()
	fmt.Printf("metrics: loaded=%d rejected=%d committed=%d oversize=%d\n",
		snap.Counters[cookiejwt.MetricSessionLoaded],
		snap.Counters[cookiejwt.MetricSessionRejected],
		snap.Counters[cookiejwt.MetricSessionCommitted],
		snap.Counters[cookiejwt.MetricSessionCommitOversize],
	)
}

func seedSession(i int, pad string) *cookiejwt.Session {
	return cookiejwt.NewSession(cookiejwt.Data{
		"uid":  fmt.Sprintf("user-%d", i),
		"role": "member",
		"pad":  pad,
	}, "")
}

func runPhase(ops, concurrency int, seed int64, op func(r *rand.Rand, i int) error) phaseStats {
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
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*seed))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(r, i)
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
	return computeStats(time.Since(start), latencies, failures)
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
	return samples[(len(samples)-1)*p/100]
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

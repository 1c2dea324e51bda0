// File: cmd/poolbench/main.go
// Author: fmontorsi
// License: BSD license
//
// Benchmark harness measuring allocate/recycle throughput of the intrusive
// pool against plain heap allocation, over the same churn patterns. Results
// are emitted as one nested JSON document; progress goes to stderr.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/eapache/queue"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/process"
	"github.com/spf13/cobra"

	"github.com/f18m/boost-intrusive-pool/api"
	"github.com/f18m/boost-intrusive-pool/pool"
)

// LargeObject approximates a fat domain object: the envelope plus 1KiB of
// payload, enough for the allocation cost to matter.
type LargeObject struct {
	api.Item
	buf [1024]byte
}

type hLargeObject = api.Handle[LargeObject, *LargeObject]

// allocator abstracts the subject under test: either the intrusive pool or
// the plain heap wrapped into the same handle protocol.
type allocator func() (hLargeObject, error)

func heapAllocate() (hLargeObject, error) {
	return api.NewHandle[LargeObject](&LargeObject{}), nil
}

type runConfig struct {
	name        string
	initialSize int
	growthStep  int
	numItems    int
}

type subjectResult struct {
	DurationNsec        int64   `json:"duration_nsec"`
	DurationNsecPerItem float64 `json:"duration_nsec_per_item"`
	NumItemsFreed       int     `json:"num_items_freed"`
	MaxActiveItems      int     `json:"max_active_items"`
	GrowthSteps         int     `json:"growth_steps,omitempty"`
	FinalCapacity       int     `json:"final_capacity,omitempty"`
	RSSBytes            uint64  `json:"rss_bytes"`
}

type runResult struct {
	InitialSize   int           `json:"initial_size"`
	GrowthStep    int           `json:"growth_step"`
	NumItems      int           `json:"num_items"`
	Pattern       string        `json:"pattern"`
	IntrusivePool subjectResult `json:"intrusive_pool"`
	PlainHeap     subjectResult `json:"plain_heap"`
}

type report struct {
	TimingType string               `json:"timing_type"`
	Runs       map[string]runResult `json:"memory_pool"`
}

var (
	flagItems  int
	flagWindow int
	flagPretty bool
)

func main() {
	root := &cobra.Command{
		Use:   "poolbench",
		Short: "Benchmark the intrusive pool against plain heap allocation",
		Long: "poolbench runs allocate/release churn loops over a set of pool\n" +
			"configurations, once backed by the intrusive pool and once by plain\n" +
			"heap allocation, and prints a nested JSON report of timings and\n" +
			"process memory usage.",
		RunE: runBenchmarks,
	}
	root.Flags().IntVar(&flagItems, "items", 1_000_000, "number of items to allocate per run")
	root.Flags().IntVar(&flagWindow, "window", 10_000, "live-handle window for the fifo churn pattern")
	root.Flags().BoolVar(&flagPretty, "pretty", true, "indent the JSON report")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBenchmarks(cmd *cobra.Command, args []string) error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	configs := []runConfig{
		{name: "run_0", initialSize: 128, growthStep: 64, numItems: flagItems},
		{name: "run_1", initialSize: 1024, growthStep: 128, numItems: flagItems},
		{name: "run_2", initialSize: 128 * 1024, growthStep: 128, numItems: flagItems},
	}

	rep := report{
		TimingType: "wallclock_nsec",
		Runs:       make(map[string]runResult, 2*len(configs)),
	}

	for _, cfg := range configs {
		logger.Info().
			Int("initial_size", cfg.initialSize).
			Int("growth_step", cfg.growthStep).
			Int("num_items", cfg.numItems).
			Msg("running random-order churn")
		rep.Runs[cfg.name] = benchmarkRun(cfg, randomChurn)

		logger.Info().
			Int("initial_size", cfg.initialSize).
			Int("window", flagWindow).
			Msg("running fifo churn")
		fifo := cfg
		fifo.name += "_fifo"
		res := benchmarkRun(fifo, fifoChurn)
		res.Pattern = "fifo"
		rep.Runs[fifo.name] = res
	}

	var (
		out []byte
		err error
	)
	if flagPretty {
		out, err = json.MarshalIndent(rep, "", "  ")
	} else {
		out, err = json.Marshal(rep)
	}
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

type churnLoop func(alloc allocator, numItems int) (freed, maxActive int, err error)

func benchmarkRun(cfg runConfig, loop churnLoop) runResult {
	res := runResult{
		InitialSize: cfg.initialSize,
		GrowthStep:  cfg.growthStep,
		NumItems:    cfg.numItems,
		Pattern:     "random",
	}

	p := pool.New[LargeObject](cfg.initialSize,
		pool.WithGrowthStep[LargeObject](cfg.growthStep))
	start := time.Now()
	freed, maxActive, err := loop(p.Allocate, cfg.numItems)
	elapsed := time.Since(start)
	if err != nil {
		// pool misconfigured for this pattern; report zeros rather than abort
		freed, maxActive = 0, 0
	}
	res.IntrusivePool = subjectResult{
		DurationNsec:        elapsed.Nanoseconds(),
		DurationNsecPerItem: float64(elapsed.Nanoseconds()) / float64(cfg.numItems),
		NumItemsFreed:       freed,
		MaxActiveItems:      maxActive,
		GrowthSteps:         p.GrowthStepsDone(),
		FinalCapacity:       p.Capacity(),
		RSSBytes:            currentRSS(),
	}
	p.Close()

	start = time.Now()
	freed, maxActive, _ = loop(heapAllocate, cfg.numItems)
	elapsed = time.Since(start)
	res.PlainHeap = subjectResult{
		DurationNsec:        elapsed.Nanoseconds(),
		DurationNsecPerItem: float64(elapsed.Nanoseconds()) / float64(cfg.numItems),
		NumItemsFreed:       freed,
		MaxActiveItems:      maxActive,
		RSSBytes:            currentRSS(),
	}
	return res
}

// randomChurn allocates numItems handles and releases roughly one tenth of
// them in pseudo-random order along the way, mirroring a bursty workload
// with uneven object lifetimes.
func randomChurn(alloc allocator, numItems int) (freed, maxActive int, err error) {
	held := make(map[int]hLargeObject)
	for i := 0; i < numItems; i++ {
		h, err := alloc()
		if err != nil {
			return freed, maxActive, err
		}
		held[i] = h

		if i%7 == 0 || i%53 == 0 || i%12345 == 0 {
			k := i / 10
			if old, ok := held[k]; ok {
				old.Release()
				delete(held, k)
				freed++
			}
		}
		if len(held) > maxActive {
			maxActive = len(held)
		}
	}
	for _, h := range held {
		h.Release()
	}
	return freed, maxActive, nil
}

// fifoChurn keeps a bounded window of live handles, always releasing the
// oldest one, the typical shape of a request/response hot path.
func fifoChurn(alloc allocator, numItems int) (freed, maxActive int, err error) {
	held := queue.New()
	for i := 0; i < numItems; i++ {
		h, err := alloc()
		if err != nil {
			return freed, maxActive, err
		}
		held.Add(h)
		if held.Length() > flagWindow {
			held.Remove().(hLargeObject).Release()
			freed++
		}
		if held.Length() > maxActive {
			maxActive = held.Length()
		}
	}
	for held.Length() > 0 {
		held.Remove().(hLargeObject).Release()
	}
	return freed, maxActive, nil
}

func currentRSS() uint64 {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0
	}
	mi, err := proc.MemoryInfo()
	if err != nil || mi == nil {
		return 0
	}
	return mi.RSS
}

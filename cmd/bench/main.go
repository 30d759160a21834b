// Command bench drives the benchmark described in the module's design
// documents: for each lock type and each thread count in {1, 2, 4, 8}, it
// splits a fixed number of total increments evenly across that many
// goroutines, times the run with a monotonic clock, and reports elapsed
// nanoseconds and derived ops/sec.
package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nbtaylor/spinlocks/anderson"
	"github.com/nbtaylor/spinlocks/clh"
	"github.com/nbtaylor/spinlocks/mcs"
	"github.com/nbtaylor/spinlocks/pfrwlock"
	"github.com/nbtaylor/spinlocks/rwlock"
	"github.com/nbtaylor/spinlocks/tasLock"
	"github.com/nbtaylor/spinlocks/ticket"
)

const defaultTotalOps = 10_000_000

var defaultThreadCounts = []int{1, 2, 4, 8}

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var totalOps int
	var threadCounts []int
	var only string

	root := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the lock implementations in this module",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(threadCounts) == 0 {
				threadCounts = defaultThreadCounts
			}
			return run(totalOps, threadCounts, only)
		},
	}
	root.Flags().IntVar(&totalOps, "total-ops", defaultTotalOps, "total lock/unlock cycles to perform per (lock, thread count)")
	root.Flags().IntSliceVar(&threadCounts, "threads", nil, "thread counts to benchmark (default 1,2,4,8)")
	root.Flags().StringVar(&only, "only", "", "benchmark only the named lock (default: all)")

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("bench failed")
	}
}

// bench is one named lock under benchmark. run executes n total
// lock/unlock cycles split across threads goroutines and returns the
// actual total performed, summed from the per-thread shares; when n does
// not divide evenly the remainder is spread over the first shares, so the
// total still equals n.
type bench struct {
	name string
	run  func(threads, n int) (actual int64, elapsed time.Duration)
}

func run(totalOps int, threadCounts []int, only string) error {
	benches := allBenches()

	for _, b := range benches {
		if only != "" && only != b.name {
			continue
		}
		for _, threads := range threadCounts {
			actual, elapsed := b.run(threads, totalOps)
			opsPerSec := float64(actual) * 1e9 / float64(elapsed.Nanoseconds())
			log.Info().
				Str("lock", b.name).
				Int("threads", threads).
				Int64("ops", actual).
				Dur("elapsed", elapsed).
				Float64("ops_per_sec", opsPerSec).
				Msg("benchmark result")
			fmt.Printf("%-10s threads=%-3d ops=%-10d elapsed=%-14s ops/sec=%.0f\n",
				b.name, threads, actual, elapsed, opsPerSec)
		}
	}
	return nil
}

func allBenches() []bench {
	return []bench{
		{"tas", benchTAS},
		{"tatas", benchTATAS},
		{"ticket", benchTicket},
		{"anderson", benchAnderson},
		{"mcs", benchMCS},
		{"clh", benchCLH},
		{"rwlock-write", benchRWLockWrite},
		{"pfrwlock-write", benchPFRWLockWrite},
	}
}

// splitOps returns threads shares of n that sum to the actual total
// performed, rather than assuming n divides evenly.
func splitOps(threads, n int) []int {
	shares := make([]int, threads)
	base := n / threads
	remainder := n % threads
	for i := range shares {
		shares[i] = base
		if i < remainder {
			shares[i]++
		}
	}
	return shares
}

func timeWorkers(threads int, work func(worker int)) time.Duration {
	var wg sync.WaitGroup
	wg.Add(threads)
	start := time.Now()
	for i := 0; i < threads; i++ {
		i := i
		go func() {
			defer wg.Done()
			work(i)
		}()
	}
	wg.Wait()
	return time.Since(start)
}

func sumShares(shares []int) int64 {
	var total int64
	for _, s := range shares {
		total += int64(s)
	}
	return total
}

func benchTAS(threads, n int) (int64, time.Duration) {
	l := tasLock.NewTAS()
	shares := splitOps(threads, n)
	var counter int64
	elapsed := timeWorkers(threads, func(worker int) {
		for j := 0; j < shares[worker]; j++ {
			l.Lock()
			counter++
			l.Unlock()
		}
	})
	return sumShares(shares), elapsed
}

func benchTATAS(threads, n int) (int64, time.Duration) {
	l := tasLock.NewTATAS()
	shares := splitOps(threads, n)
	var counter int64
	elapsed := timeWorkers(threads, func(worker int) {
		for j := 0; j < shares[worker]; j++ {
			l.Lock()
			counter++
			l.Unlock()
		}
	})
	return sumShares(shares), elapsed
}

func benchTicket(threads, n int) (int64, time.Duration) {
	l := ticket.NewLock()
	shares := splitOps(threads, n)
	var counter int64
	elapsed := timeWorkers(threads, func(worker int) {
		for j := 0; j < shares[worker]; j++ {
			l.Lock()
			counter++
			l.Unlock()
		}
	})
	return sumShares(shares), elapsed
}

func benchAnderson(threads, n int) (int64, time.Duration) {
	l := anderson.NewLock(threads)
	shares := splitOps(threads, n)
	var counter int64
	elapsed := timeWorkers(threads, func(worker int) {
		for j := 0; j < shares[worker]; j++ {
			slot := l.Lock()
			counter++
			l.Unlock(slot)
		}
	})
	return sumShares(shares), elapsed
}

func benchMCS(threads, n int) (int64, time.Duration) {
	l := mcs.NewLock()
	shares := splitOps(threads, n)
	var counter int64
	elapsed := timeWorkers(threads, func(worker int) {
		var node mcs.QNode
		for j := 0; j < shares[worker]; j++ {
			l.Lock(&node)
			counter++
			l.Unlock(&node)
		}
	})
	return sumShares(shares), elapsed
}

func benchCLH(threads, n int) (int64, time.Duration) {
	l, err := clh.NewLock()
	if err != nil {
		log.Fatal().Err(err).Msg("clh: failed to initialize lock")
	}
	shares := splitOps(threads, n)
	var counter int64
	elapsed := timeWorkers(threads, func(worker int) {
		h := clh.NewHandle()
		for j := 0; j < shares[worker]; j++ {
			l.Lock(h)
			counter++
			l.Unlock(h)
		}
	})
	return sumShares(shares), elapsed
}

func benchRWLockWrite(threads, n int) (int64, time.Duration) {
	l := rwlock.New()
	shares := splitOps(threads, n)
	var counter int64
	elapsed := timeWorkers(threads, func(worker int) {
		for j := 0; j < shares[worker]; j++ {
			l.Lock()
			counter++
			l.Unlock()
		}
	})
	return sumShares(shares), elapsed
}

func benchPFRWLockWrite(threads, n int) (int64, time.Duration) {
	l := pfrwlock.New()
	shares := splitOps(threads, n)
	var counter int64
	elapsed := timeWorkers(threads, func(worker int) {
		for j := 0; j < shares[worker]; j++ {
			l.Lock()
			counter++
			l.Unlock()
		}
	})
	return sumShares(shares), elapsed
}

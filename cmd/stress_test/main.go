// Command stress_test opens many admin views that all try to commit a
// status change on the same order at once, and checks that the Redis commit
// lock lets only one commit through at a time.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ambikamber/ambikamber.com/internal/adapter/storage"
	"github.com/ambikamber/ambikamber.com/internal/core/domain"
	"github.com/ambikamber/ambikamber.com/internal/core/gate"
)

const (
	redisAddr     = "localhost:6379"
	orderID       = "stress-order"
	totalViews    = 50
	commitLatency = 20 * time.Millisecond
)

func main() {
	ctx := context.Background()

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	defer rdb.Close()

	// Clear previous test data
	rdb.Del(ctx, "lock:order:"+orderID)

	locker := storage.NewRedisAdapter(rdb, 0, 5*time.Second)

	// The backend stand-in tracks how many commits overlap.
	var inFlight, maxInFlight, commits atomic.Int32
	commit := func(ctx context.Context, req domain.TransitionRequest) error {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			m := maxInFlight.Load()
			if n <= m || maxInFlight.CompareAndSwap(m, n) {
				break
			}
		}
		commits.Add(1)
		time.Sleep(commitLatency)
		return nil
	}

	gates := make([]*gate.Gate, totalViews)
	for i := range gates {
		gates[i] = gate.New(gate.OrderPolicy{}, commit,
			gate.WithLocker(locker),
			gate.WithViewID(fmt.Sprintf("view-%d", i)),
		)
		if _, err := gates[i].Open(ctx, orderID, "#STRESS", "pending", "confirmed"); err != nil {
			log.Fatalf("failed to open gate %d: %v", i, err)
		}
	}

	// Counters
	var successCount, busyCount, failCount atomic.Int32

	// Confirm from every view at once
	var wg sync.WaitGroup
	start := time.Now()

	for _, g := range gates {
		wg.Add(1)
		go func(g *gate.Gate) {
			defer wg.Done()

			_, err := g.Continue(ctx)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, gate.ErrEntityBusy):
				busyCount.Add(1)
			default:
				failCount.Add(1)
			}
		}(g)
	}

	wg.Wait()
	elapsed := time.Since(start)

	// Results
	fmt.Println("========== COMMIT LOCK STRESS RESULTS ==========")
	fmt.Printf("Views:              %d\n", totalViews)
	fmt.Printf("Committed:          %d\n", successCount.Load())
	fmt.Printf("Rejected as busy:   %d\n", busyCount.Load())
	fmt.Printf("Other failures:     %d\n", failCount.Load())
	fmt.Printf("Backend calls:      %d\n", commits.Load())
	fmt.Printf("Max overlapping:    %d\n", maxInFlight.Load())
	fmt.Printf("Duration:           %v\n", elapsed)
	fmt.Println("================================================")

	// Assertions
	if maxInFlight.Load() == 1 {
		fmt.Println("PASS: commits never overlapped")
	} else {
		fmt.Printf("FAIL: %d commits overlapped\n", maxInFlight.Load())
	}

	if successCount.Load()+busyCount.Load() == totalViews && commits.Load() == successCount.Load() {
		fmt.Println("PASS: every view either committed or was told the order is busy")
	} else {
		fmt.Printf("FAIL: %d committed, %d busy, %d backend calls\n",
			successCount.Load(), busyCount.Load(), commits.Load())
	}

	if rdb.Exists(ctx, "lock:order:"+orderID).Val() == 0 {
		fmt.Println("PASS: lock released")
	} else {
		fmt.Println("FAIL: lock still held")
	}
}

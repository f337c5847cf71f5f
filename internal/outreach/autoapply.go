package outreach

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// JobPosting is one caller-selected application target.
type JobPosting struct {
	Title   string `json:"title"`
	Company string `json:"company"`
	URL     string `json:"url"`
}

// autoApplier simulates submitting one application per posting. No real
// application protocol exists yet; this stands in for a future integration
// with the same per-target action shape.
type autoApplier struct {
	// mu guards rand, which is shared across dispatch workers.
	mu sync.Mutex
	// rand drives the simulated outcome; injected so tests are deterministic.
	rand *rand.Rand
	// sleep injects the simulated latency; tests replace it with a no-op.
	sleep func(time.Duration)
}

func newAutoApplier() *autoApplier {
	return &autoApplier{
		rand:  rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep: time.Sleep,
	}
}

const applySuccessRate = 0.9

// apply simulates one application with randomized latency and roughly a 90%
// success rate.
func (a *autoApplier) apply(ctx context.Context, posting JobPosting) (string, error) {
	a.mu.Lock()
	delay := time.Duration(200+a.rand.Intn(800)) * time.Millisecond
	succeeded := a.rand.Float64() < applySuccessRate
	a.mu.Unlock()

	a.sleep(delay)

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if succeeded {
		return fmt.Sprintf("applied to %s at %s", posting.Title, posting.Company), nil
	}
	return "", fmt.Errorf("application to %s at %s was rejected", posting.Title, posting.Company)
}

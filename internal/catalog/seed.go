package catalog

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pders01/uriel/internal/debuglog"
)

// SeedReport summarises one seeding run.
type SeedReport struct {
	Skipped   bool // the catalog view was not empty
	Attempted int
	Created   int
	Errors    []error // one per failed draft, in draft order
}

// Failed returns the number of drafts that could not be created.
func (r SeedReport) Failed() int { return len(r.Errors) }

// Seeder inserts sample drafts one create call per draft. A failed create
// never stops the remaining ones.
type Seeder struct {
	remote      Remote
	concurrency int
}

// NewSeeder returns a seeder running at most concurrency creates at once.
// Values below 1 mean sequential.
func NewSeeder(remote Remote, concurrency int) *Seeder {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Seeder{remote: remote, concurrency: concurrency}
}

// Seed attempts every draft and reports the outcome. Running it against a
// non-empty catalog creates duplicates; the store gates it on emptiness.
func (sd *Seeder) Seed(ctx context.Context, drafts []Draft) SeedReport {
	report := SeedReport{Attempted: len(drafts)}
	if len(drafts) == 0 {
		return report
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs = make([]error, len(drafts))
	)
	g.SetLimit(sd.concurrency)

	for i, d := range drafts {
		g.Go(func() error {
			err := d.Validate()
			if err == nil {
				err = sd.remote.Create(ctx, d)
			}
			if err != nil {
				err = wrapKind(ErrCreateFailed, err)
				debuglog.WithFields(map[string]interface{}{
					"op":    "create",
					"title": d.Title,
					"kind":  d.Kind,
				}).Warnf("seed item not created: %v", err)
			}
			mu.Lock()
			errs[i] = err
			mu.Unlock()
			// Never fail the group: the other drafts must still run.
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range errs {
		if err == nil {
			report.Created++
			continue
		}
		report.Errors = append(report.Errors, fmt.Errorf("draft %d (%s): %w", i, drafts[i].Title, err))
	}
	return report
}

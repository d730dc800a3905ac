package seed

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"coursedeck/internal/domain"
	"coursedeck/internal/tablestore"
	"coursedeck/internal/util"
)

const (
	// DefaultCount is used when the caller does not specify a count.
	DefaultCount = 50
	// MaxCount caps one seeding run.
	MaxCount = 200

	defaultBatchSize  = 5
	defaultBatchDelay = 250 * time.Millisecond
)

// ClampCount bounds a requested count to [1, MaxCount].
func ClampCount(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxCount {
		return MaxCount
	}
	return n
}

// Result aggregates a seeding run. Per-record failures never abort the run.
type Result struct {
	Created      int      `json:"created"`
	Errors       int      `json:"errors"`
	ErrorDetails []string `json:"errorDetails,omitempty"`
}

type recordCreator interface {
	CreateRecord(table string, fields map[string]any) (tablestore.Record, error)
}

// Seeder bulk-inserts synthetic sample courses into the external table.
// Requests go out in fixed-size concurrent batches with a pause between
// batches so the external service is not overwhelmed.
type Seeder struct {
	store      recordCreator
	table      string
	batchSize  int
	batchDelay time.Duration
}

// New constructs a seeder targeting the given courses table.
func New(store recordCreator, table string) *Seeder {
	return &Seeder{
		store:      store,
		table:      table,
		batchSize:  defaultBatchSize,
		batchDelay: defaultBatchDelay,
	}
}

// Run creates count synthetic courses owned by ownerID. Each batch fully
// settles, success or failure per record, before the next one starts.
func (s *Seeder) Run(ownerID string, count int) Result {
	count = ClampCount(count)
	result := Result{}
	var mu sync.Mutex

	for start := 0; start < count; start += s.batchSize {
		end := start + s.batchSize
		if end > count {
			end = count
		}
		var g errgroup.Group
		for i := start; i < end; i++ {
			idx := i
			g.Go(func() error {
				fields := tablestore.CourseFields(sampleCourse(ownerID, idx))
				fields["clientRef"] = util.NewID()
				_, err := s.store.CreateRecord(s.table, fields)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					result.Errors++
					result.ErrorDetails = append(result.ErrorDetails, fmt.Sprintf("course %d: %v", idx+1, err))
					return nil
				}
				result.Created++
				return nil
			})
		}
		_ = g.Wait()
		if end < count {
			time.Sleep(s.batchDelay)
		}
	}

	slog.Info("seed run finished", "owner_id", ownerID, "created", result.Created, "errors", result.Errors)
	return result
}

var sampleTitles = []string{
	"Intro to JavaScript",
	"Advanced React Patterns",
	"Machine Learning Foundations",
	"Data Analysis with Python",
	"UI Design Essentials",
	"Brand Strategy Basics",
	"Digital Marketing Bootcamp",
	"Portrait Photography",
	"Startup Finance 101",
	"Go for Backend Engineers",
}

var sampleTags = [][]string{
	{"beginner"},
	{"intermediate", "hands-on"},
	{"advanced"},
	{"beginner", "project-based"},
	nil,
}

func sampleCourse(ownerID string, idx int) domain.Course {
	now := time.Now().UTC()
	title := fmt.Sprintf("%s #%d", sampleTitles[idx%len(sampleTitles)], idx+1)
	category := domain.PreferredCategories[idx%len(domain.PreferredCategories)]
	price := 0.0
	if idx%3 != 0 {
		price = float64(10+rand.Intn(18)*5) + 0.99
	}
	status := domain.StatusPublished
	if idx%7 == 0 {
		status = domain.StatusDraft
	}
	return domain.Course{
		OwnerID:     ownerID,
		Title:       title,
		Description: fmt.Sprintf("Sample course covering %s.", category),
		Price:       price,
		Status:      status,
		Duration:    30 + (idx%8)*15,
		Category:    category,
		Tags:        sampleTags[idx%len(sampleTags)],
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

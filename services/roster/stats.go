package roster

import (
	"sync"
	"time"

	"rosterwatch/lib/timezone"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Statistics accumulates counters over one run. Safe for concurrent
// use by all fetch tasks.
type Statistics struct {
	StartTime time.Time

	mu               sync.Mutex
	playersProcessed int
	requestsMade     int
	retries          int
	successes        int
	failures         map[string]int
}

func NewStatistics() *Statistics {
	return &Statistics{
		StartTime: timezone.Now(),
		failures:  map[string]int{},
	}
}

func (s *Statistics) LogPlayer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playersProcessed++
}

func (s *Statistics) LogRequest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requestsMade++
}

func (s *Statistics) LogRetry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retries++
}

func (s *Statistics) LogSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.successes++
}

func (s *Statistics) LogFailure(class string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[class]++
}

type Totals struct {
	Duration         time.Duration
	PlayersProcessed int
	RequestsMade     int
	Retries          int
	Successes        int
	Failures         map[string]int
}

func (s *Statistics) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()

	failures := make(map[string]int, len(s.failures))
	for class, n := range s.failures {
		failures[class] = n
	}
	return Totals{
		Duration:         timezone.Now().Sub(s.StartTime),
		PlayersProcessed: s.playersProcessed,
		RequestsMade:     s.requestsMade,
		Retries:          s.retries,
		Successes:        s.successes,
		Failures:         failures,
	}
}

// Report renders the run summary as a table for the end-of-run log.
func (s *Statistics) Report() string {
	totals := s.Totals()

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRow(table.Row{"duration", totals.Duration.Round(time.Millisecond)})
	t.AppendRow(table.Row{"players processed", totals.PlayersProcessed})
	t.AppendRow(table.Row{"requests made", totals.RequestsMade})
	t.AppendRow(table.Row{"retries", totals.Retries})
	t.AppendRow(table.Row{"successes", totals.Successes})

	failed := 0
	for _, n := range totals.Failures {
		failed += n
	}
	t.AppendRow(table.Row{"failures", failed})
	for class, n := range totals.Failures {
		t.AppendRow(table.Row{"  " + class, n})
	}

	t.SetStyle(table.StyleRounded)
	return t.Render()
}

package metrics

import (
	"sync"
	"time"
)

// Metrics tracks pipeline activity across runs. All counters are cumulative
// for the process lifetime; a run updates them as it goes.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	ArticlesHarvested      int64
	ArticlesProcessed      int64
	ArticlesPosted         int64
	DuplicatesFiltered     int64
	QualityRejected        int64
	SuccessfulTranslations int64
	FailedTranslations     int64
	SourceFailures         int64
	InsertFailures         int64

	// Timings
	LastRunDuration    time.Duration
	TotalRunDuration   time.Duration
	AverageRunDuration time.Duration
	RunCount           int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddHarvested(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesHarvested += int64(n)
}

func (m *Metrics) IncrementProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesProcessed++
}

func (m *Metrics) IncrementPosted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesPosted++
}

func (m *Metrics) IncrementDuplicatesFiltered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered++
}

func (m *Metrics) IncrementQualityRejected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QualityRejected++
}

func (m *Metrics) IncrementSuccessfulTranslations() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SuccessfulTranslations++
}

func (m *Metrics) IncrementFailedTranslations() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailedTranslations++
}

func (m *Metrics) IncrementSourceFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SourceFailures++
}

func (m *Metrics) IncrementInsertFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InsertFailures++
}

func (m *Metrics) RecordRun(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastRunDuration = duration
	m.TotalRunDuration += duration
	m.RunCount++
	m.AverageRunDuration = m.TotalRunDuration / time.Duration(m.RunCount)
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"articles_harvested":      m.ArticlesHarvested,
		"articles_processed":      m.ArticlesProcessed,
		"articles_posted":         m.ArticlesPosted,
		"duplicates_filtered":     m.DuplicatesFiltered,
		"quality_rejected":        m.QualityRejected,
		"successful_translations": m.SuccessfulTranslations,
		"failed_translations":     m.FailedTranslations,
		"source_failures":         m.SourceFailures,
		"insert_failures":         m.InsertFailures,
		"last_run_duration_ms":    m.LastRunDuration.Milliseconds(),
		"average_run_duration_ms": m.AverageRunDuration.Milliseconds(),
		"runs":                    m.RunCount,
		"last_run_time":           m.LastRunTime.Format(time.RFC3339),
		"last_error_time":         m.LastErrorTime.Format(time.RFC3339),
		"last_error":              m.LastError,
		"is_healthy":              m.IsHealthy,
	}
}

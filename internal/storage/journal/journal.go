// Package journal keeps an append-only WAL of every decision a paper
// session makes, one entry per evaluated tick. The log survives restarts
// and gives an auditable history of what the strategy saw and did.
package journal

import (
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"github.com/fearproto/fearbot/internal/domain"
)

const (
	segmentThreshold = 1000
	maxSegments      = 20

	recordKeyPrefix = "decision_"
)

// Journal persists daily records in a write-ahead log.
type Journal struct {
	wal *gowal.Wal
	mu  sync.Mutex
}

// New opens (or creates) the WAL in the given directory.
func New(dir string) (*Journal, error) {
	if dir == "" {
		return nil, errors.New("journal directory is required")
	}

	wal, err := gowal.NewWAL(gowal.Config{
		Dir:              dir,
		Prefix:           "journal_",
		SegmentThreshold: segmentThreshold,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "init decision journal")
	}
	return &Journal{wal: wal}, nil
}

// Append writes one decision record.
func (j *Journal) Append(record domain.DailyRecord) error {
	if j == nil || j.wal == nil {
		return errors.New("journal is not initialized")
	}
	if record.Date == "" {
		return errors.New("decision record date is required")
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "marshal decision record")
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	next := j.wal.CurrentIndex() + 1
	return j.wal.Write(next, recordKeyPrefix+record.Date, payload)
}

// Records returns every journaled record still retained, oldest first.
// Entries that fail to decode are skipped.
func (j *Journal) Records() ([]domain.DailyRecord, error) {
	if j == nil || j.wal == nil {
		return nil, errors.New("journal is not initialized")
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	var records []domain.DailyRecord
	for msg := range j.wal.Iterator() {
		var record domain.DailyRecord
		if err := json.Unmarshal(msg.Value, &record); err != nil {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// Close flushes and closes the underlying WAL.
func (j *Journal) Close() error {
	if j == nil || j.wal == nil {
		return nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	return j.wal.Close()
}

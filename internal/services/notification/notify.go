package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
)

// HistoryKey is the Redis list holding recent runs, newest first
const HistoryKey = "autovolt:runs"

// HistorySize is the number of runs kept
const HistorySize = 100

// RunEvent describes a finished run
type RunEvent struct {
	RunID      string         `json:"run_id"`
	Mode       string         `json:"mode"`
	Status     string         `json:"status"`
	Start      string         `json:"start,omitempty"`
	End        string         `json:"end,omitempty"`
	Counts     map[string]int `json:"counts,omitempty"`
	Error      string         `json:"error,omitempty"`
	Seed       int64          `json:"seed"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// Service records run events in a bounded history and publishes them to
// NATS. Both Redis and NATS are optional; without Redis the history is
// kept in memory.
type Service struct {
	redis   *redis.Client
	nc      *nats.Conn
	subject string

	mu     sync.RWMutex
	recent []RunEvent
}

// NewService creates a notification service. rdb and nc may be nil.
func NewService(rdb *redis.Client, nc *nats.Conn, subject string) *Service {
	return &Service{redis: rdb, nc: nc, subject: subject}
}

// Notify stores ev and publishes it
func (s *Service) Notify(ctx context.Context, ev RunEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal run event: %w", err)
	}

	if s.redis != nil {
		pipe := s.redis.TxPipeline()
		pipe.LPush(ctx, HistoryKey, data)
		pipe.LTrim(ctx, HistoryKey, 0, HistorySize-1)
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("failed to store run event: %w", err)
		}
	} else {
		s.mu.Lock()
		s.recent = append([]RunEvent{ev}, s.recent...)
		if len(s.recent) > HistorySize {
			s.recent = s.recent[:HistorySize]
		}
		s.mu.Unlock()
	}

	if s.nc != nil {
		if err := s.nc.Publish(s.subject, data); err != nil {
			return fmt.Errorf("failed to publish run event: %w", err)
		}
	}
	return nil
}

// Recent returns up to limit run events, newest first
func (s *Service) Recent(ctx context.Context, limit int) ([]RunEvent, error) {
	if limit <= 0 || limit > HistorySize {
		limit = HistorySize
	}

	if s.redis == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		n := min(limit, len(s.recent))
		return append([]RunEvent(nil), s.recent[:n]...), nil
	}

	items, err := s.redis.LRange(ctx, HistoryKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read run history: %w", err)
	}

	events := make([]RunEvent, 0, len(items))
	for _, item := range items {
		var ev RunEvent
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

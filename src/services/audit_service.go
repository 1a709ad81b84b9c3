package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/souqops/marketplace-admin/src/models"
	"github.com/souqops/marketplace-admin/src/repositories"
)

// MaxAuditPageSize bounds a single audit-log page
const MaxAuditPageSize = 100

// defaultAuditQueueSize bounds the in-flight audit write queue
const defaultAuditQueueSize = 256

// AuditService records privileged actions without slowing the critical path.
// Writes go through a bounded queue drained by a single consumer goroutine;
// if the queue is full the oldest entry is dropped and counted. A failed
// store write is logged, never surfaced to the request that triggered it.
type AuditService struct {
	pool *pgxpool.Pool
	repo repositories.AuditRepository

	queue   chan *models.AuditEntry
	dropped atomic.Uint64

	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

// NewAuditService creates a new audit service
func NewAuditService(pool *pgxpool.Pool) *AuditService {
	return &AuditService{
		pool:  pool,
		queue: make(chan *models.AuditEntry, defaultAuditQueueSize),
	}
}

// NewAuditServiceWithRepo creates a new audit service with a repository (for testing).
// queueSize <= 0 falls back to the default.
func NewAuditServiceWithRepo(repo repositories.AuditRepository, queueSize int) *AuditService {
	if queueSize <= 0 {
		queueSize = defaultAuditQueueSize
	}
	return &AuditService{
		repo:  repo,
		queue: make(chan *models.AuditEntry, queueSize),
	}
}

// Start launches the consumer goroutine
func (s *AuditService) Start() {
	s.startOnce.Do(func() {
		s.wg.Add(1)
		go s.consume()
	})
}

// Stop flushes the queue and stops the consumer. Call before process exit so
// dispatched entries reach the store.
func (s *AuditService) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		close(s.queue)
		s.mu.Unlock()
		s.wg.Wait()
	})
}

// Dropped returns how many entries were discarded because the queue was full
func (s *AuditService) Dropped() uint64 {
	return s.dropped.Load()
}

// Record enqueues an audit entry for the given actor and action. It never
// blocks: when the queue is full the oldest pending entry is dropped to make
// room and the drop is counted.
func (s *AuditService) Record(actor, action string, details models.AuditDetails) {
	payload, err := json.Marshal(details)
	if err != nil {
		log.Error().Err(err).Str("action", action).Msg("failed to encode audit details")
		payload = []byte("{}")
	}

	entry := &models.AuditEntry{
		ID:            uuid.New(),
		AdminUsername: actor,
		Action:        action,
		Details:       payload,
		Timestamp:     time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		log.Warn().Str("action", action).Msg("audit entry recorded after shutdown, dropping")
		s.dropped.Add(1)
		return
	}

	for {
		select {
		case s.queue <- entry:
			return
		default:
		}
		// Queue full: drop the oldest entry to make room
		select {
		case <-s.queue:
			s.dropped.Add(1)
			log.Warn().Uint64("dropped_total", s.dropped.Load()).Msg("audit queue overflow, dropped oldest entry")
		default:
		}
	}
}

// consume drains the queue. Writes use a background context: a client that
// drops its connection mid-request must not cancel an audit write that was
// already dispatched.
func (s *AuditService) consume() {
	defer s.wg.Done()

	for entry := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := s.insert(ctx, entry)
		cancel()
		if err != nil {
			log.Error().Err(err).
				Str("actor", entry.AdminUsername).
				Str("action", entry.Action).
				Msg("failed to write audit entry")
		}
	}
}

func (s *AuditService) insert(ctx context.Context, entry *models.AuditEntry) error {
	if s.repo != nil {
		return s.repo.Insert(ctx, entry)
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO audit_log (id, admin_username, action, details, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, entry.ID, entry.AdminUsername, entry.Action, entry.Details, entry.Timestamp)
	return err
}

// Query returns audit entries newest first. The limit is capped at
// MaxAuditPageSize; offset makes the read restartable.
func (s *AuditService) Query(ctx context.Context, limit, offset int) ([]*models.AuditEntry, error) {
	if limit <= 0 || limit > MaxAuditPageSize {
		limit = MaxAuditPageSize
	}
	if offset < 0 {
		offset = 0
	}

	if s.repo != nil {
		return s.repo.List(ctx, limit, offset)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, admin_username, action, details, created_at
		FROM audit_log
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var entries []*models.AuditEntry
	for rows.Next() {
		entry := &models.AuditEntry{}
		if err := rows.Scan(&entry.ID, &entry.AdminUsername, &entry.Action, &entry.Details, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

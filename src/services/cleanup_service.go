package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// CleanupService prunes login attempts that have aged out of the rolling
// analysis window. The audit log is never pruned.
type CleanupService struct {
	security  *SecurityService
	retention time.Duration
	enabled   bool
	interval  time.Duration
	done      chan bool
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(security *SecurityService, retention time.Duration, enabled bool) *CleanupService {
	return &CleanupService{
		security:  security,
		retention: retention,
		enabled:   enabled,
		interval:  24 * time.Hour, // Run daily
		done:      make(chan bool, 1),
	}
}

// Start starts the cleanup service
func (cs *CleanupService) Start(ctx context.Context) {
	if !cs.enabled {
		log.Info().Msg("cleanup service is disabled")
		return
	}

	go func() {
		ticker := time.NewTicker(cs.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("cleanup service stopped")
				return
			case <-cs.done:
				log.Info().Msg("cleanup service stopped")
				return
			case <-ticker.C:
				cs.cleanup(ctx)
			}
		}
	}()

	log.Info().Dur("retention", cs.retention).Msg("cleanup service started")
}

// Stop stops the cleanup service. Safe to call even when the service was
// never started.
func (cs *CleanupService) Stop() {
	select {
	case cs.done <- true:
	default:
	}
}

func (cs *CleanupService) cleanup(ctx context.Context) {
	deleted, err := cs.security.PurgeOldAttempts(ctx, cs.retention)
	if err != nil {
		log.Error().Err(err).Msg("cleanup error")
		return
	}
	if deleted > 0 {
		log.Info().Int64("deleted", deleted).Msg("purged expired login attempts")
	}
}

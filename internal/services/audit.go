package services

import (
	"context"
	"sync"
	"time"

	"github.com/filestore/backend/internal/events"
	"github.com/filestore/backend/internal/models"
	"github.com/filestore/backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditEntry struct {
	UserID       *uuid.UUID
	Action       string
	ResourceType string
	ResourceID   *uuid.UUID
	Details      map[string]interface{}
	IPAddress    string
	RequestID    string
}

// AuditService persists audit rows off the request path and forwards the
// publishable ones to Publisher, which may be nil.
type AuditService struct {
	DB        *gorm.DB
	Publisher events.Publisher
	queue     chan models.AuditLog
	closeOnce sync.Once
	done      chan struct{}
}

func NewAuditService(db *gorm.DB, publisher events.Publisher) *AuditService {
	s := &AuditService{
		DB:        db,
		Publisher: publisher,
		queue:     make(chan models.AuditLog, 1000),
		done:      make(chan struct{}),
	}
	go s.processQueue()
	return s
}

func (s *AuditService) LogAsync(entry AuditEntry) {
	row := models.AuditLog{
		UserID:       entry.UserID,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		Details:      entry.Details,
		IPAddress:    entry.IPAddress,
		RequestID:    entry.RequestID,
		CreatedAt:    time.Now().UTC(),
	}

	select {
	case s.queue <- row:
	default:
		logger.Warn("audit_queue_full", map[string]interface{}{
			"action":  entry.Action,
			"dropped": true,
		})
	}
}

// Close stops accepting entries and waits for the queue to drain. LogAsync
// must not be called afterwards.
func (s *AuditService) Close() {
	s.closeOnce.Do(func() {
		close(s.queue)
	})
	<-s.done
}

func (s *AuditService) processQueue() {
	defer close(s.done)
	for row := range s.queue {
		if err := s.DB.Create(&row).Error; err != nil {
			logger.Error("audit_log_insert_failed", err, map[string]interface{}{
				"action": row.Action,
			})
			continue
		}
		s.publish(row)
	}
}

func (s *AuditService) publish(row models.AuditLog) {
	if s.Publisher == nil {
		return
	}
	eventType, ok := events.EventTypeForAction(row.Action)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// The producer logs delivery failures itself.
	_ = s.Publisher.Publish(ctx, events.NewEvent(eventType, row.ResourceID, row.UserID, row.Details))
}

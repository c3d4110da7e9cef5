package services

import (
	"context"
	"sync"
	"testing"

	"github.com/filestore/backend/internal/events"
	"github.com/filestore/backend/internal/models"
	"github.com/google/uuid"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event *events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func TestAuditService_PersistsAndPublishes(t *testing.T) {
	db := setupServiceTestDB(t)
	publisher := &recordingPublisher{}
	audit := NewAuditService(db, publisher)

	userID := uuid.New()
	fileID := uuid.New()
	audit.LogAsync(AuditEntry{
		UserID:       &userID,
		Action:       "share.replace",
		ResourceType: "file",
		ResourceID:   &fileID,
		Details:      map[string]interface{}{"count": 2},
		IPAddress:    "127.0.0.1",
	})
	audit.LogAsync(AuditEntry{
		UserID:       &userID,
		Action:       "user.login",
		ResourceType: "user",
		ResourceID:   &userID,
		IPAddress:    "127.0.0.1",
	})
	audit.Close()

	var count int64
	db.Model(&models.AuditLog{}).Count(&count)
	if count != 2 {
		t.Fatalf("expected 2 audit rows, got %d", count)
	}

	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	if len(publisher.events) != 1 {
		t.Fatalf("expected only share.replace to be published, got %d events", len(publisher.events))
	}
	event := publisher.events[0]
	if event.EventType != events.SharesReplaced {
		t.Errorf("expected %s, got %s", events.SharesReplaced, event.EventType)
	}
	if event.ResourceID != fileID.String() || event.ActorID != userID.String() {
		t.Errorf("unexpected event ids: %+v", event)
	}
}

func TestAuditService_NilPublisher(t *testing.T) {
	db := setupServiceTestDB(t)
	audit := NewAuditService(db, nil)

	audit.LogAsync(AuditEntry{Action: "file.upload", ResourceType: "file", IPAddress: "::1"})
	audit.Close()
	audit.Close()

	var count int64
	db.Model(&models.AuditLog{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 audit row, got %d", count)
	}
}

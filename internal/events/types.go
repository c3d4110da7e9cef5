package events

import (
	"time"

	"github.com/filestore/backend/internal/models"
	"github.com/google/uuid"
)

const (
	FileUploaded   = "FILE_UPLOADED"
	FileDownloaded = "FILE_DOWNLOADED"
	FileDeleted    = "FILE_DELETED"
	SharesReplaced = "SHARES_REPLACED"
	UserRegistered = "USER_REGISTERED"
)

// Event is the message published for every audited action.
type Event struct {
	EventType  string                 `json:"eventType"`
	ResourceID string                 `json:"resourceId,omitempty"`
	ActorID    string                 `json:"actorId,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

var eventTypesByAction = map[string]string{
	models.AuditFileUpload:   FileUploaded,
	models.AuditFileDownload: FileDownloaded,
	models.AuditFileDelete:   FileDeleted,
	models.AuditShareReplace: SharesReplaced,
	models.AuditUserRegister: UserRegistered,
}

// EventTypeForAction maps an audit action to its event type. Actions that are
// not published return false.
func EventTypeForAction(action string) (string, bool) {
	eventType, ok := eventTypesByAction[action]
	return eventType, ok
}

func NewEvent(eventType string, resourceID, actorID *uuid.UUID, details map[string]interface{}) *Event {
	event := &Event{
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Details:   details,
	}
	if resourceID != nil {
		event.ResourceID = resourceID.String()
	}
	if actorID != nil {
		event.ActorID = actorID.String()
	}
	return event
}

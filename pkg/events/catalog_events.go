package events

import "time"

const TypeCatalogEntryPersisted = "CATALOG_ENTRY_PERSISTED"

// NewCatalogEntryPersisted builds the event emitted after a catalog entry
// is created or updated through the assistant.
func NewCatalogEntryPersisted(sessionId string, productId int64, name, status string, edited bool) Event {
	return BaseEvent{
		Type: TypeCatalogEntryPersisted,
		Data: map[string]interface{}{
			"session_id": sessionId,
			"product_id": productId,
			"name":       name,
			"status":     status,
			"edited":     edited,
		},
		OccurredAt: time.Now(),
	}
}

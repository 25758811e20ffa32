package billing

import (
	"time"

	"github.com/google/uuid"
)

// LineItem is a single priced entry on a quote.
type LineItem struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// Quote is a priced proposal tied to exactly one lead. Quotes are created by
// the quoting flow and are read-only from this service's perspective.
type Quote struct {
	ID          uuid.UUID
	LeadID      uuid.UUID
	TotalAmount int64
	LineItems   []LineItem
	CreatedAt   time.Time
}

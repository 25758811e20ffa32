package lead

import (
	"time"

	"github.com/google/uuid"
)

// Status represents where a lead sits in the intake funnel.
type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusQuoted    Status = "quoted"
	StatusPaid      Status = "paid"
	StatusClosed    Status = "closed"
)

// Valid reports whether s is a known lead status.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusQuoted, StatusPaid, StatusClosed:
		return true
	}
	return false
}

// Lead is a prospective customer inquiry. Leads are created by the intake
// flow; this service only reads them and moves them to paid after a
// confirmed charge.
type Lead struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     string
	Company   string
	Message   string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

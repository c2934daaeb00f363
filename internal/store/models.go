package store

import "time"

type User struct {
	ID        string
	Credits   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

type LedgerEntry struct {
	ID        string
	UserID    string
	EntryType string
	Amount    int64
	RefType   string
	RefID     string
	CreatedAt time.Time
}

type LedgerFilter struct {
	UserID  string
	RefType string
	RefID   string
	From    *time.Time
	To      *time.Time
}

type Item struct {
	ID        string
	Name      string
	Stackable bool
}

type UserItem struct {
	UserID   string
	ItemID   string
	Quantity int64
}

const (
	TradeStatusPending   = "pending"
	TradeStatusExecuted  = "executed"
	TradeStatusCancelled = "cancelled"
)

type Trade struct {
	ID                string
	InitiatorID       string
	PartnerID         string
	Status            string
	InitiatorLocked   bool
	PartnerLocked     bool
	InitiatorAccepted bool
	PartnerAccepted   bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type TradeItem struct {
	TradeID  string
	OwnerID  string
	ItemID   string
	Quantity int64
}

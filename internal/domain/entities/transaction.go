package entities

import (
	"math/big"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Kind string

const (
	KindRegisterVideo  Kind = "register_video"
	KindPayToView      Kind = "pay_to_view"
	KindWithdraw       Kind = "withdraw"
	KindUpdateMetadata Kind = "update_metadata"
	KindToggleActive   Kind = "toggle_active"
)

func (k Kind) Valid() bool {
	switch k {
	case KindRegisterVideo, KindPayToView, KindWithdraw, KindUpdateMetadata, KindToggleActive:
		return true
	}
	return false
}

// OwnerOnly reports whether the contract restricts the action to the
// video's uploader. The chain enforces it; callers use this to fail early.
func (k Kind) OwnerOnly() bool {
	switch k {
	case KindWithdraw, KindUpdateMetadata, KindToggleActive:
		return true
	}
	return false
}

// CallPayload is one encoded contract call. Value travels separately
// from Data on both backends. A payload may be submitted at most once.
type CallPayload struct {
	Kind       Kind
	Backend    Backend
	Contract   string
	VideoID    uint64
	Data       []byte
	Value      *big.Int
	BuiltAt    time.Time
	ValidUntil time.Time

	submitted atomic.Bool
}

func (p *CallPayload) Expired(now time.Time) bool {
	return !now.Before(p.ValidUntil)
}

// Claim marks the payload as used. It returns false if it was already
// submitted or has expired.
func (p *CallPayload) Claim(now time.Time) bool {
	if p.Expired(now) {
		return false
	}
	return p.submitted.CompareAndSwap(false, true)
}

func (p *CallPayload) Submitted() bool { return p.submitted.Load() }

type TxHandle struct {
	Hash        string
	Backend     Backend
	Contract    string
	SubmittedAt time.Time
}

// PendingTransaction tracks one state-changing call from build to its
// observed effect.
type PendingTransaction struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Kind           string    `gorm:"type:varchar(30);not null"`
	Backend        string    `gorm:"type:varchar(10);not null"`
	Contract       string    `gorm:"type:varchar(100);not null"`
	VideoID        uint64
	Sender         string `gorm:"type:varchar(100)"`
	Payload        []byte `gorm:"type:bytea"`
	Value          string `gorm:"type:numeric(78,0);not null;default:0"`
	ObservedEffect string `gorm:"type:varchar(100)"`
	Baseline       string `gorm:"type:numeric(78,0)"`
	Target         string `gorm:"type:numeric(78,0)"`
	TxHash         string `gorm:"type:varchar(130)"`
	Status         string `gorm:"type:varchar(20);not null;index"`
	SubmittedAt    *time.Time
	ValidUntil     time.Time `gorm:"index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (PendingTransaction) TableName() string { return "pending_transactions" }

func (t *PendingTransaction) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}

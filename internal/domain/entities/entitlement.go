package entities

import (
	"math/big"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EntitlementRecord is a viewer's right to play one video. Rows only
// exist once granted and are never revoked.
type EntitlementRecord struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Viewer      string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_entitlement_pair"`
	Backend     string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_entitlement_pair"`
	Contract    string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_entitlement_pair"`
	VideoID     uint64    `gorm:"not null;uniqueIndex:idx_entitlement_pair"`
	ContentHash string    `gorm:"type:varchar(100);not null"`
	Granted     bool      `gorm:"not null;default:true"`
	TxHash      string    `gorm:"type:varchar(130)"`
	GrantedAt   time.Time
}

func (EntitlementRecord) TableName() string { return "entitlements" }

func (e *EntitlementRecord) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}

// PaymentProof is what the poller observed when it confirmed a purchase.
type PaymentProof struct {
	TxHash      string
	Observed    *big.Int
	ConfirmedAt time.Time
}

// Decide is the authorization rule over already-fetched state: the
// uploader always views, anyone else needs a grant. The active flag is
// deliberately not consulted so deactivation never retracts past grants.
func Decide(video VideoRecord, viewer string, granted bool) bool {
	if SameAddress(viewer, video.Uploader) {
		return true
	}
	return granted
}

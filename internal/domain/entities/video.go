package entities

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"ppv-marketplace/pkg/file"

	"github.com/google/uuid"
)

type Backend string

const (
	BackendEVM Backend = "evm"
	BackendTON Backend = "ton"
)

func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(s))) {
	case BackendEVM:
		return BackendEVM, nil
	case BackendTON:
		return BackendTON, nil
	}
	return "", fmt.Errorf("unknown backend %q", s)
}

// Decimals is the number of fractional digits of the native coin.
func (b Backend) Decimals() int {
	if b == BackendTON {
		return 9
	}
	return 18
}

// ContractRef points at the contract hosting a video record.
type ContractRef struct {
	Backend Backend
	Address string
}

// VideoRecord is one listed video as reported by its contract.
// Price, TotalViews and TotalRevenue are in the chain's smallest unit.
type VideoRecord struct {
	ID                 uint64
	Backend            Backend
	Contract           string
	Uploader           string
	ContentHash        string
	ThumbnailHash      string
	Title              string
	Description        string
	Price              *big.Int
	DisplayTimeSeconds int64
	Active             bool
	TotalViews         *big.Int
	TotalRevenue       *big.Int
}

func (v VideoRecord) Ref() ContractRef {
	return ContractRef{Backend: v.Backend, Address: v.Contract}
}

// DisplayTitle falls back to a 1-based ordinal for untitled records.
func (v VideoRecord) DisplayTitle() string {
	if v.Title != "" {
		return v.Title
	}
	n := v.ID
	if v.Backend == BackendEVM {
		n++
	}
	return fmt.Sprintf("Video %d", n)
}

// SameAddress compares two already-normalized addresses. Case is ignored
// only for hex forms; base64 TON addresses must match exactly.
func SameAddress(a, b string) bool {
	a, b = file.CanonicalAddress(a), file.CanonicalAddress(b)
	return a != "" && a == b
}

// VideoListing is the persisted catalog mirror row. It is advisory only;
// the contract stays the source of truth.
type VideoListing struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Backend       string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_video_chain"`
	Contract      string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_video_chain"`
	ChainVideoID  uint64    `gorm:"not null;uniqueIndex:idx_video_chain"`
	Uploader      string    `gorm:"type:varchar(100);not null"`
	ContentHash   string    `gorm:"type:varchar(100);not null"`
	ThumbnailHash string    `gorm:"type:varchar(100)"`
	Title         string    `gorm:"type:varchar(255)"`
	Description   string    `gorm:"type:text"`
	Price         string    `gorm:"type:numeric(78,0);not null"`
	DisplayTime   int64
	Active        bool
	TotalViews    string `gorm:"type:numeric(78,0);not null;default:0"`
	TotalRevenue  string `gorm:"type:numeric(78,0);not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (VideoListing) TableName() string { return "videos" }

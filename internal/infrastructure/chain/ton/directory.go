package ton

import (
	"bytes"
	"fmt"
	"sync"

	"ppv-marketplace/pkg/errors"

	"github.com/xssnick/tonutils-go/address"
)

// Directory maps TON video ids to their contracts. Every video is its
// own PayPerView contract; ids are 1-based in registration order.
type Directory struct {
	mu       sync.RWMutex
	registry *address.Address
	videos   []*address.Address
}

func NewDirectory(registry string, videos []string) (*Directory, error) {
	d := &Directory{}
	if registry != "" {
		addr, err := address.ParseAddr(registry)
		if err != nil {
			return nil, fmt.Errorf("parse registry address: %w", err)
		}
		d.registry = addr
	}
	for _, v := range videos {
		if _, err := d.Add(v); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Add registers a video contract and returns its id. Adding a known
// contract returns the existing id.
func (d *Directory) Add(contract string) (uint64, error) {
	addr, err := address.ParseAddr(contract)
	if err != nil {
		return 0, errors.ErrInvalidInput(fmt.Errorf("parse video contract %q: %w", contract, err))
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, known := range d.videos {
		if sameAccount(known, addr) {
			return uint64(i + 1), nil
		}
	}
	d.videos = append(d.videos, addr)
	return uint64(len(d.videos)), nil
}

func (d *Directory) Video(id uint64) (*address.Address, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if id == 0 || id > uint64(len(d.videos)) {
		return nil, errors.ErrNotFound(fmt.Errorf("ton video %d", id))
	}
	return d.videos[id-1], nil
}

func (d *Directory) Registry() (*address.Address, error) {
	if d.registry == nil {
		return nil, errors.ErrInvalidInput(fmt.Errorf("ton registry address not configured"))
	}
	return d.registry, nil
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.videos)
}

func sameAccount(a, b *address.Address) bool {
	return a.Workchain() == b.Workchain() && bytes.Equal(a.Data(), b.Data())
}

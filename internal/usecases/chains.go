package usecases

import (
	"fmt"
	"sort"

	"ppv-marketplace/internal/domain/entities"
	"ppv-marketplace/internal/domain/repositories"
	"ppv-marketplace/pkg/errors"
)

// Chains holds the configured backends. Either may be absent.
type Chains map[entities.Backend]repositories.ChainClient

func (c Chains) Get(backend entities.Backend) (repositories.ChainClient, error) {
	client, ok := c[backend]
	if !ok || client == nil {
		return nil, errors.ErrInvalidInput(fmt.Errorf("backend %q is not enabled", backend))
	}
	return client, nil
}

func (c Chains) Backends() []entities.Backend {
	out := make([]entities.Backend, 0, len(c))
	for b := range c {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

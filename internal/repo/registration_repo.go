// Package repo persists registration records as JSON values in the KV
// store. Records are written exactly once with a retention expiry and are
// never updated or deleted afterwards.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/staysign/guestreg/internal/domain"
	"github.com/staysign/guestreg/internal/store"
)

const keyPrefix = "reg:"

type RegistrationRepo interface {
	// Create stores a fully validated record with its retention TTL.
	Create(ctx context.Context, reg *domain.Registration, ttl time.Duration) error

	// GetByID returns the stored record, or nil when no record exists under
	// that identifier.
	GetByID(ctx context.Context, id string) (*domain.Registration, error)
}

type registrationRepo struct {
	kv store.KV
}

func NewRegistrationRepo(kv store.KV) RegistrationRepo {
	return &registrationRepo{kv: kv}
}

func (r *registrationRepo) Create(ctx context.Context, reg *domain.Registration, ttl time.Duration) error {
	data, err := json.Marshal(reg)
	if err != nil {
		return fmt.Errorf("marshal registration: %w", err)
	}

	if err := r.kv.Set(ctx, keyPrefix+reg.ID, data, ttl); err != nil {
		return fmt.Errorf("store registration: %w", err)
	}
	return nil
}

func (r *registrationRepo) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	data, err := r.kv.Get(ctx, keyPrefix+id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load registration: %w", err)
	}

	var reg domain.Registration
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decode registration: %w", err)
	}
	return &reg, nil
}

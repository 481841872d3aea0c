package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/xavierca1/lead-caller/internal/entity"
)

const (
	DefaultRedisPrefix  = "leads"
	redisUpdateAttempts = 5
)

// RedisLeadRepository stores each lead as JSON under its own key, so an
// Update only conflicts with writers of the same lead.
//
//	<prefix>:lead:<id>  lead JSON
//	<prefix>:order      list of ids in creation order
//	<prefix>:by-call    hash of vapi call id to lead id
type RedisLeadRepository struct {
	Client *redis.Client
	Prefix string
}

func NewRedisLeadRepository(client *redis.Client) *RedisLeadRepository {
	return &RedisLeadRepository{Client: client, Prefix: DefaultRedisPrefix}
}

func (r *RedisLeadRepository) leadKey(id string) string { return r.Prefix + ":lead:" + id }
func (r *RedisLeadRepository) orderKey() string         { return r.Prefix + ":order" }
func (r *RedisLeadRepository) byCallKey() string        { return r.Prefix + ":by-call" }

func (r *RedisLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	b, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("database: encode lead: %w", err)
	}
	ok, err := r.Client.SetNX(ctx, r.leadKey(lead.ID), b, 0).Result()
	if err != nil {
		return fmt.Errorf("database: redis setnx: %w", err)
	}
	if !ok {
		return fmt.Errorf("database: lead %s already exists", lead.ID)
	}

	_, err = r.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, r.orderKey(), lead.ID)
		if lead.VapiCallID != "" {
			pipe.HSet(ctx, r.byCallKey(), lead.VapiCallID, lead.ID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("database: redis index lead: %w", err)
	}
	return nil
}

func (r *RedisLeadRepository) Get(ctx context.Context, id string) (*entity.Lead, error) {
	raw, err := r.Client.Get(ctx, r.leadKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database: redis get: %w", err)
	}
	return decodeLead(raw)
}

// FindByCallID goes through the call id index. An index entry left behind by
// a lead whose call id later changed does not match.
func (r *RedisLeadRepository) FindByCallID(ctx context.Context, callID string) (*entity.Lead, error) {
	if callID == "" {
		return nil, entity.ErrLeadNotFound
	}
	id, err := r.Client.HGet(ctx, r.byCallKey(), callID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database: redis hget: %w", err)
	}

	lead, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead.VapiCallID != callID {
		return nil, entity.ErrLeadNotFound
	}
	return lead, nil
}

func (r *RedisLeadRepository) List(ctx context.Context) ([]*entity.Lead, error) {
	ids, err := r.Client.LRange(ctx, r.orderKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("database: redis lrange: %w", err)
	}
	if len(ids) == 0 {
		return []*entity.Lead{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.leadKey(id)
	}
	values, err := r.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("database: redis mget: %w", err)
	}

	leads := make([]*entity.Lead, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		lead, err := decodeLead([]byte(s))
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, nil
}

// Update runs mutate inside WATCH/MULTI on the lead's key and retries when
// another writer changed that lead in between.
func (r *RedisLeadRepository) Update(ctx context.Context, id string, mutate func(*entity.Lead)) (*entity.Lead, error) {
	key := r.leadKey(id)
	var updated *entity.Lead

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return entity.ErrLeadNotFound
		}
		if err != nil {
			return err
		}
		lead, err := decodeLead(raw)
		if err != nil {
			return err
		}

		mutate(lead)
		lead.ID = id

		b, err := json.Marshal(lead)
		if err != nil {
			return fmt.Errorf("database: encode lead: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, 0)
			if lead.VapiCallID != "" {
				pipe.HSet(ctx, r.byCallKey(), lead.VapiCallID, id)
			}
			return nil
		})
		if err == nil {
			updated = lead
		}
		return err
	}

	for attempt := 0; attempt < redisUpdateAttempts; attempt++ {
		err := r.Client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			if errors.Is(err, entity.ErrLeadNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("database: redis update: %w", err)
		}
		return updated, nil
	}
	return nil, fmt.Errorf("database: redis update of lead %s kept conflicting", id)
}

func (r *RedisLeadRepository) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

func decodeLead(raw []byte) (*entity.Lead, error) {
	var lead entity.Lead
	if err := json.Unmarshal(raw, &lead); err != nil {
		return nil, fmt.Errorf("database: decode lead: %w", err)
	}
	return &lead, nil
}

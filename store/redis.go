package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/orayew2002/rollbook/domain"
)

const (
	batchListKey   = "batches"   // List: batch ids in load order
	batchKeyPrefix = "batch:"    // String prefix: batch:{id} -> JSON batch
	defaultPrefix  = "rollbook:" // Prepended to every key
)

// Redis keeps batches in a Redis database.
type Redis struct {
	client *redis.Client
	prefix string
}

// RedisOptions configures the Redis store.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// OpenRedis connects to Redis and checks the connection.
func OpenRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis %s: %w", opts.Addr, err)
	}

	prefix := opts.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Redis{client: client, prefix: prefix}, nil
}

// Close closes the client.
func (s *Redis) Close() error {
	return s.client.Close()
}

func (s *Redis) listKey() string {
	return s.prefix + batchListKey
}

func (s *Redis) batchKey(id string) string {
	return s.prefix + batchKeyPrefix + id
}

type batchJSON struct {
	ID       string       `json:"id"`
	Day      string       `json:"day"`
	Source   string       `json:"source"`
	LoadedAt time.Time    `json:"loaded_at"`
	Records  []recordJSON `json:"records"`
}

type recordJSON struct {
	Name     string `json:"name"`
	ID       string `json:"id"`
	Absences int    `json:"absences"`
	Leaves   int    `json:"leaves"`
}

func encodeBatch(b domain.Batch) ([]byte, error) {
	out := batchJSON{ID: b.ID, Day: string(b.Day), Source: b.Source, LoadedAt: b.LoadedAt}
	for _, r := range b.Records {
		out.Records = append(out.Records, recordJSON{Name: r.Key.Name, ID: r.Key.ID, Absences: r.Absences, Leaves: r.Leaves})
	}
	return json.Marshal(out)
}

func decodeBatch(data []byte) (domain.Batch, error) {
	var in batchJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return domain.Batch{}, err
	}
	b := domain.Batch{ID: in.ID, Day: domain.Day(in.Day), Source: in.Source, LoadedAt: in.LoadedAt}
	for _, r := range in.Records {
		b.Records = append(b.Records, domain.DayRecord{
			Day:      b.Day,
			Key:      domain.StudentKey{Name: r.Name, ID: r.ID},
			Absences: r.Absences,
			Leaves:   r.Leaves,
		})
	}
	return b, nil
}

// SaveBatches stores batches in one MULTI/EXEC transaction.
func (s *Redis) SaveBatches(ctx context.Context, batches []domain.Batch) error {
	encoded := make(map[string][]byte, len(batches))
	for _, b := range batches {
		data, err := encodeBatch(b)
		if err != nil {
			return fmt.Errorf("encode batch %s: %w", b.ID, err)
		}
		encoded[b.ID] = data
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, b := range batches {
			pipe.Set(ctx, s.batchKey(b.ID), encoded[b.ID], 0)
			pipe.RPush(ctx, s.listKey(), b.ID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save batches to redis: %w", err)
	}
	return nil
}

// LoadBatches returns every stored batch in load order.
func (s *Redis) LoadBatches(ctx context.Context) ([]domain.Batch, error) {
	ids, err := s.client.LRange(ctx, s.listKey(), 0, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("list batches: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.batchKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get batches: %w", err)
	}

	batches := make([]domain.Batch, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("batch %s is missing", ids[i])
		}
		b, err := decodeBatch([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("decode batch %s: %w", ids[i], err)
		}
		batches = append(batches, b)
	}

	return batches, nil
}

// Reset deletes every stored batch.
func (s *Redis) Reset(ctx context.Context) error {
	ids, err := s.client.LRange(ctx, s.listKey(), 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("list batches: %w", err)
	}

	keys := []string{s.listKey()}
	for _, id := range ids {
		keys = append(keys, s.batchKey(id))
	}

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete batches: %w", err)
	}
	return nil
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ManadaHerath/realtime-grid-client/internal/grid"
)

const opTimeout = 5 * time.Second

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) Store {
	return &RedisStore{client: client}
}

func metaKey(sessionID string) string {
	return "session:" + sessionID + ":meta"
}

func cellsKey(sessionID string) string {
	return "session:" + sessionID + ":cells"
}

// Save replaces the stored snapshot in one transaction: the meta hash holds
// dimensions and the passthrough fields, the cells hash maps index to view.
func (s *RedisStore) Save(ctx context.Context, snap Snapshot) error {
	if snap.SessionID == "" {
		return ErrMissingSession
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	meta := map[string]interface{}{
		"height":   snap.Height,
		"width":    snap.Width,
		"turn":     string(snap.Turn),
		"players":  string(snap.Players),
		"saved_at": snap.SavedAt.UTC().Format(time.RFC3339Nano),
	}

	cells := make(map[string]interface{}, len(snap.Cells))
	for _, v := range snap.Cells {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		cells[strconv.Itoa(v.Index)] = string(b)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, metaKey(snap.SessionID), cellsKey(snap.SessionID))
		pipe.HSet(ctx, metaKey(snap.SessionID), meta)
		if len(cells) > 0 {
			pipe.HSet(ctx, cellsKey(snap.SessionID), cells)
		}
		return nil
	})
	return err
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	vals, err := s.client.HGetAll(ctx, metaKey(sessionID)).Result()
	if err != nil {
		return Snapshot{}, err
	}
	if len(vals) == 0 {
		return Snapshot{}, ErrSnapshotNotFound
	}

	snap := Snapshot{SessionID: sessionID}
	if snap.Height, err = strconv.Atoi(vals["height"]); err != nil {
		return Snapshot{}, errors.New("invalid snapshot meta: height")
	}
	if snap.Width, err = strconv.Atoi(vals["width"]); err != nil {
		return Snapshot{}, errors.New("invalid snapshot meta: width")
	}
	if v := vals["turn"]; v != "" {
		snap.Turn = json.RawMessage(v)
	}
	if v := vals["players"]; v != "" {
		snap.Players = json.RawMessage(v)
	}
	if v := vals["saved_at"]; v != "" {
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			snap.SavedAt = t
		}
	}

	entries, err := s.client.HGetAll(ctx, cellsKey(sessionID)).Result()
	if err != nil {
		return Snapshot{}, err
	}
	snap.Cells = make([]grid.View, 0, len(entries))
	for k, raw := range entries {
		var v grid.View
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return Snapshot{}, fmt.Errorf("invalid snapshot cell %s: %w", k, err)
		}
		snap.Cells = append(snap.Cells, v)
	}
	sort.Slice(snap.Cells, func(i, j int) bool { return snap.Cells[i].Index < snap.Cells[j].Index })

	return snap, nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return s.client.Del(ctx, metaKey(sessionID), cellsKey(sessionID)).Err()
}

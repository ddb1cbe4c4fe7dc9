// Package records implements list/create/update/delete over a fixed set of
// named collections of free-form JSON records.
package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/hugh/hoteldesk/internal/store"
)

var (
	ErrInvalidTable   = errors.New("invalid table")
	ErrRecordNotFound = errors.New("record not found")
)

// Tables lists the collections clients may touch.
var Tables = []string{"rooms", "guests", "bookings", "invoices", "settings"}

var allowed = func() map[string]bool {
	m := make(map[string]bool, len(Tables))
	for _, t := range Tables {
		m[t] = true
	}
	return m
}()

// Record is an arbitrary JSON object. The server owns its "id" field.
type Record map[string]any

func IsValidTable(name string) bool {
	return allowed[name]
}

type Service struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewService(st store.Store, logger *slog.Logger) *Service {
	return &Service{store: st, logger: logger, now: time.Now}
}

// List returns the stored collection in insertion order, or an empty slice
// if it has never been written.
func (s *Service) List(ctx context.Context, table string) ([]Record, error) {
	if !IsValidTable(table) {
		return nil, ErrInvalidTable
	}

	var list []Record
	if _, err := store.GetJSON(ctx, s.store, store.DataKey(table), &list); err != nil {
		return nil, fmt.Errorf("loading %s: %w", table, err)
	}
	if list == nil {
		list = []Record{}
	}
	return list, nil
}

// Create appends body with a server-assigned id. The id is the creation time
// in milliseconds, bumped past the largest existing id when needed so ids in
// one collection never repeat.
func (s *Service) Create(ctx context.Context, table string, body Record) (Record, error) {
	if !IsValidTable(table) {
		return nil, ErrInvalidTable
	}

	key := store.DataKey(table)
	var created Record
	err := s.store.Update(ctx, func(tx store.Txn) error {
		var list []Record
		if _, err := store.TxnGetJSON(tx, key, &list); err != nil {
			return err
		}

		id := s.now().UnixMilli()
		if max, ok := maxID(list); ok && id <= max {
			id = max + 1
		}

		rec := make(Record, len(body)+1)
		for k, v := range body {
			rec[k] = v
		}
		rec["id"] = id

		list = append(list, rec)
		created = rec
		return store.TxnSetJSON(tx, key, list)
	}, key)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "record created", "table", table, "id", created["id"])

	return created, nil
}

// Update shallow-merges patch onto the record whose id matches. Fields in
// patch win; omitted fields are kept.
func (s *Service) Update(ctx context.Context, table, id string, patch Record) (Record, error) {
	if !IsValidTable(table) {
		return nil, ErrInvalidTable
	}

	key := store.DataKey(table)
	var updated Record
	err := s.store.Update(ctx, func(tx store.Txn) error {
		var list []Record
		if _, err := store.TxnGetJSON(tx, key, &list); err != nil {
			return err
		}

		for i, rec := range list {
			if idString(rec["id"]) != id {
				continue
			}
			for k, v := range patch {
				rec[k] = v
			}
			list[i] = rec
			updated = rec
			return store.TxnSetJSON(tx, key, list)
		}
		return ErrRecordNotFound
	}, key)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "record updated", "table", table, "id", id)

	return updated, nil
}

// Delete removes every record whose id matches and reports how many went.
// Deleting an unknown id is not an error.
func (s *Service) Delete(ctx context.Context, table, id string) (int, error) {
	if !IsValidTable(table) {
		return 0, ErrInvalidTable
	}

	key := store.DataKey(table)
	removed := 0
	err := s.store.Update(ctx, func(tx store.Txn) error {
		removed = 0

		var list []Record
		if _, err := store.TxnGetJSON(tx, key, &list); err != nil {
			return err
		}

		kept := make([]Record, 0, len(list))
		for _, rec := range list {
			if idString(rec["id"]) == id {
				removed++
				continue
			}
			kept = append(kept, rec)
		}
		return store.TxnSetJSON(tx, key, kept)
	}, key)
	if err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "record deleted", "table", table, "id", id, "removed", removed)

	return removed, nil
}

func idString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case json.Number:
		return id.String()
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return fmt.Sprint(id)
	}
}

func maxID(list []Record) (int64, bool) {
	var (
		max   int64
		found bool
	)
	for _, rec := range list {
		n, err := strconv.ParseInt(idString(rec["id"]), 10, 64)
		if err != nil {
			continue
		}
		if !found || n > max {
			max, found = n, true
		}
	}
	return max, found
}

package records_test

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/hugh/hoteldesk/internal/records"
	"github.com/hugh/hoteldesk/internal/store"
	"github.com/hugh/hoteldesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idOf(t *testing.T, rec records.Record) int64 {
	t.Helper()
	n, err := strconv.ParseInt(fmt.Sprint(rec["id"]), 10, 64)
	require.NoError(t, err)
	return n
}

func TestIsValidTable(t *testing.T) {
	for _, name := range []string{"rooms", "guests", "bookings", "invoices", "settings"} {
		assert.True(t, records.IsValidTable(name), name)
	}
	for _, name := range []string{"", "users", "pending", "Rooms", "data_rooms"} {
		assert.False(t, records.IsValidTable(name), name)
	}
}

func TestService_List(t *testing.T) {
	tc := testutil.NewTestContext(t)
	ctx := testutil.TestContext(t)

	t.Run("empty when never written", func(t *testing.T) {
		list, err := tc.RecordService.List(ctx, "guests")
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	})

	t.Run("rejects unknown table", func(t *testing.T) {
		_, err := tc.RecordService.List(ctx, "unknown")
		assert.ErrorIs(t, err, records.ErrInvalidTable)
	})
}

func TestService_CreateThenList(t *testing.T) {
	tc := testutil.NewTestContext(t)
	ctx := testutil.TestContext(t)

	before := time.Now().UnixMilli()
	created, err := tc.RecordService.Create(ctx, "rooms", records.Record{"number": json.Number("101")})
	require.NoError(t, err)

	list, err := tc.RecordService.List(ctx, "rooms")
	require.NoError(t, err)
	require.Len(t, list, 1)

	assert.Equal(t, "101", fmt.Sprint(list[0]["number"]))
	id := idOf(t, list[0])
	assert.GreaterOrEqual(t, id, before)
	assert.Equal(t, idOf(t, created), id)
}

func TestService_CreateOverwritesClientID(t *testing.T) {
	tc := testutil.NewTestContext(t)
	ctx := testutil.TestContext(t)

	created, err := tc.RecordService.Create(ctx, "guests", records.Record{"id": "client-chosen", "name": "An"})
	require.NoError(t, err)
	assert.NotEqual(t, "client-chosen", created["id"])
}

func TestService_CreateAssignsDistinctIDs(t *testing.T) {
	tc := testutil.NewTestContext(t)
	ctx := testutil.TestContext(t)

	// Back-to-back creates routinely land in the same millisecond.
	for i := 0; i < 30; i++ {
		_, err := tc.RecordService.Create(ctx, "bookings", records.Record{"seq": i})
		require.NoError(t, err)
	}

	list, err := tc.RecordService.List(ctx, "bookings")
	require.NoError(t, err)
	require.Len(t, list, 30)

	prev := int64(0)
	for _, rec := range list {
		id := idOf(t, rec)
		assert.Greater(t, id, prev)
		prev = id
	}
}

func TestService_ConcurrentCreatesAreAllKept(t *testing.T) {
	tc := testutil.NewTestContext(t)
	tc.Store.WithMaxRetries(200)
	ctx := testutil.TestContext(t)

	const writers = 10
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := tc.RecordService.Create(ctx, "invoices", records.Record{"n": i})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	list, err := tc.RecordService.List(ctx, "invoices")
	require.NoError(t, err)
	assert.Len(t, list, writers)

	ids := make(map[int64]bool)
	for _, rec := range list {
		ids[idOf(t, rec)] = true
	}
	assert.Len(t, ids, writers)
}

func TestService_Update(t *testing.T) {
	tc := testutil.NewTestContext(t)
	ctx := testutil.TestContext(t)

	created, err := tc.RecordService.Create(ctx, "rooms", records.Record{"number": 101, "status": "free", "floor": 1})
	require.NoError(t, err)
	id := fmt.Sprint(created["id"])

	t.Run("merges patch and keeps other fields", func(t *testing.T) {
		_, err := tc.RecordService.Update(ctx, "rooms", id, records.Record{"status": "occupied", "note": "vip"})
		require.NoError(t, err)

		list, err := tc.RecordService.List(ctx, "rooms")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "occupied", list[0]["status"])
		assert.Equal(t, "vip", list[0]["note"])
		assert.Equal(t, "101", fmt.Sprint(list[0]["number"]))
		assert.Equal(t, "1", fmt.Sprint(list[0]["floor"]))
		assert.Equal(t, id, fmt.Sprint(list[0]["id"]))
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := tc.RecordService.Update(ctx, "rooms", "42", records.Record{"status": "x"})
		assert.ErrorIs(t, err, records.ErrRecordNotFound)
	})

	t.Run("unknown table", func(t *testing.T) {
		_, err := tc.RecordService.Update(ctx, "unknown", id, records.Record{"status": "x"})
		assert.ErrorIs(t, err, records.ErrInvalidTable)
	})
}

func TestService_Delete(t *testing.T) {
	tc := testutil.NewTestContext(t)
	ctx := testutil.TestContext(t)

	keep, err := tc.RecordService.Create(ctx, "guests", records.Record{"name": "Keep"})
	require.NoError(t, err)
	drop, err := tc.RecordService.Create(ctx, "guests", records.Record{"name": "Drop"})
	require.NoError(t, err)

	removed, err := tc.RecordService.Delete(ctx, "guests", fmt.Sprint(drop["id"]))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	list, err := tc.RecordService.List(ctx, "guests")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, fmt.Sprint(keep["id"]), fmt.Sprint(list[0]["id"]))

	t.Run("unknown id is a silent success", func(t *testing.T) {
		removed, err := tc.RecordService.Delete(ctx, "guests", "123")
		require.NoError(t, err)
		assert.Equal(t, 0, removed)
	})

	t.Run("removes every record sharing the id", func(t *testing.T) {
		require.NoError(t, tc.Store.Update(ctx, func(tx store.Txn) error {
			tx.Set(store.DataKey("settings"), []byte(`[{"id":7,"a":1},{"id":"7","a":2},{"id":8}]`))
			return nil
		}, store.DataKey("settings")))

		removed, err := tc.RecordService.Delete(ctx, "settings", "7")
		require.NoError(t, err)
		assert.Equal(t, 2, removed)

		list, err := tc.RecordService.List(ctx, "settings")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "8", fmt.Sprint(list[0]["id"]))
	})

	t.Run("unknown table", func(t *testing.T) {
		_, err := tc.RecordService.Delete(ctx, "unknown", "1")
		assert.ErrorIs(t, err, records.ErrInvalidTable)
	})
}

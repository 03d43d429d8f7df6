package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/crockshine/backend-erp/internal/model"
	"github.com/crockshine/backend-erp/internal/store"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))
	return store.New(db)
}

type recordingPublisher struct {
	mu     sync.Mutex
	fail   map[string]bool
	sent   []Message
	closed bool
}

func (p *recordingPublisher) Publish(_ context.Context, msg Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail[msg.Key] {
		return errors.New("broker unavailable")
	}
	p.sent = append(p.sent, msg)
	return nil
}

func (p *recordingPublisher) Close() error {
	p.closed = true
	return nil
}

func TestRecorderWritesInsideTransaction(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	rec := NewRecorder(s, "erp")

	rollback := errors.New("rollback")
	err := s.WithinTx(ctx, func(tx context.Context) error {
		require.NoError(t, rec.Record(tx, "sales.created", "sale-1", map[string]string{"id": "sale-1"}))
		return rollback
	})
	require.ErrorIs(t, err, rollback)

	pending, err := s.PendingOutboxEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	require.NoError(t, s.WithinTx(ctx, func(tx context.Context) error {
		return rec.Record(tx, "sales.created", "sale-2", map[string]string{"id": "sale-2"})
	}))
	pending, err = s.PendingOutboxEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "erp.sales.created", pending[0].Topic)
	assert.JSONEq(t, `{"id":"sale-2"}`, pending[0].Payload)
}

func TestRelayFlush(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	rec := NewRecorder(s, "")

	for _, key := range []string{"a", "b", "c"} {
		require.NoError(t, rec.Record(ctx, "supply.received", key, map[string]string{"order": key}))
	}

	pub := &recordingPublisher{fail: map[string]bool{"b": true}}
	relay := NewRelay(s, pub, 10, nil)

	n, err := relay.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, pub.sent, 2)
	assert.Equal(t, "supply.received", pub.sent[0].Topic)

	pending, err := s.PendingOutboxEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "b", pending[0].Key)
	assert.Equal(t, 1, pending[0].Attempts)

	pub.fail = nil
	n, err = relay.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = relay.Flush(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

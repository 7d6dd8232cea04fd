package services

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sample-app/config"
)

// newIntegrationStore returns a store confined to a throwaway schema of the
// database named by TEST_DATABASE_URL.
func newIntegrationStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	cfg, err := config.DatabaseConfig{ConnectionString: url}.PoolConfig()
	require.NoError(t, err)
	schema := fmt.Sprintf("sample_app_test_%d", time.Now().UnixNano())
	cfg.ConnConfig.RuntimeParams["search_path"] = schema
	// created_at has no time zone; keep its wall clock in UTC
	cfg.ConnConfig.RuntimeParams["timezone"] = "UTC"

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
		pool.Close()
	})
	return &Store{pool: pool}
}

func TestStoreUnreachableIsConnectError(t *testing.T) {
	s := NewStore(config.DatabaseConfig{
		Host:           "127.0.0.1",
		Port:           "1",
		SSLMode:        "disable",
		ConnectTimeout: time.Second,
	})
	require.NoError(t, s.Err())
	defer s.Close()

	_, err := s.Health(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindConnect, KindOf(err))
	assert.NotEmpty(t, err.Error())

	_, err = s.ListItems(context.Background())
	assert.Equal(t, KindConnect, KindOf(err))
}

func TestStoreInvalidConfigFailsEveryOperation(t *testing.T) {
	s := NewStore(config.DatabaseConfig{ConnectionString: "postgres://%zz"})
	require.Error(t, s.Err())
	defer s.Close()
	ctx := context.Background()

	_, err := s.Health(ctx)
	require.Error(t, err)
	assert.Equal(t, KindConnect, KindOf(err))
	assert.Contains(t, err.Error(), "%zz")

	_, err = s.ListItems(ctx)
	assert.Equal(t, KindConnect, KindOf(err))

	_, err = s.CreateItem(ctx, NewItem{Name: "foo"})
	assert.Equal(t, KindConnect, KindOf(err))
}

func TestStoreHealth(t *testing.T) {
	s := newIntegrationStore(t)

	h, err := s.Health(context.Background())
	require.NoError(t, err)
	assert.Contains(t, h.Version, "PostgreSQL")
	assert.WithinDuration(t, time.Now(), h.Time, time.Minute)
}

func TestStoreListEmptyCreatesTable(t *testing.T) {
	s := newIntegrationStore(t)

	items, err := s.ListItems(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestStoreCreateThenList(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()
	desc := "a thing"
	// a second of slack for clock skew between test host and server
	requested := time.Now().UTC().Add(-time.Second)

	created, err := s.CreateItem(ctx, NewItem{Name: "foo", Description: &desc})
	require.NoError(t, err)
	assert.Positive(t, created.ID)
	assert.False(t, created.CreatedAt.Before(requested), "created_at %s before request %s", created.CreatedAt, requested)
	assert.WithinDuration(t, time.Now(), created.CreatedAt, time.Minute)
	assert.Equal(t, "foo", created.Name)
	require.NotNil(t, created.Description)
	assert.Equal(t, desc, *created.Description)

	items, err := s.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, *created, items[0])
}

func TestStoreListNewestFirst(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()

	a, err := s.CreateItem(ctx, NewItem{Name: "A"})
	require.NoError(t, err)
	b, err := s.CreateItem(ctx, NewItem{Name: "B"})
	require.NoError(t, err)
	assert.Nil(t, a.Description)

	items, err := s.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, b.ID, items[0].ID)
	assert.Equal(t, a.ID, items[1].ID)
}

func TestStoreCreateNameTooLongIsQueryError(t *testing.T) {
	s := newIntegrationStore(t)

	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	_, err := s.CreateItem(context.Background(), NewItem{Name: string(long)})
	require.Error(t, err)
	assert.Equal(t, KindQuery, KindOf(err))
}

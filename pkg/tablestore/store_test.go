package tablestore

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const pibCSV = `anio,pib real,pib nominal
1990,100,120.5
1991,104,
1992,108.25,131
`

func openTestStore(t *testing.T, tables ...string) *Store {
	t.Helper()
	store, err := Open(Config{
		Driver: DriverSQLite,
		DSN:    ":memory:",
		Tables: tables,
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestImportAndLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, "pib_real")

	count, err := store.ImportCSV(ctx, "pib_real", strings.NewReader(pibCSV))
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	tables, err := store.LoadValidatedTables(ctx)
	require.NoError(t, err)
	require.Contains(t, tables, "pib_real")

	ds := tables["pib_real"]
	assert.Equal(t, "anio", ds.LabelColumn)
	assert.Equal(t, []string{"pib_real", "pib_nominal"}, ds.Columns)
	require.Len(t, ds.Rows, 3)
	assert.Equal(t, "1990", ds.Rows[0].Label)
	assert.True(t, ds.Rows[2].Values[0].Valid)
	assert.Equal(t, "108.25", ds.Rows[2].Values[0].Decimal.String())
	assert.False(t, ds.Rows[1].Values[1].Valid, "empty csv cell is stored as NULL")
}

func TestLoadSkipsInvalidAndMissingTables(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, "pib_real", "texto", "no_existe", "bad-name")

	_, err := store.ImportCSV(ctx, "pib_real", strings.NewReader(pibCSV))
	require.NoError(t, err)
	_, err = store.ImportCSV(ctx, "texto", strings.NewReader("anio,valor\n2000,alto\n"))
	require.NoError(t, err)

	tables, err := store.LoadValidatedTables(ctx)
	require.NoError(t, err)
	assert.Len(t, tables, 1)
	assert.Contains(t, tables, "pib_real")
}

func TestLoadTableRejectsUnsafeIdentifier(t *testing.T) {
	store := openTestStore(t)
	_, err := store.LoadTable(context.Background(), `x"; DROP TABLE y; --`)
	require.ErrorIs(t, err, ErrInvalidIdentifier)
}

func TestLoadTableRejectsDuplicateLabels(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	_, err := store.ImportCSV(ctx, "dup", strings.NewReader("anio,valor\n2000,1\n2000,2\n"))
	require.NoError(t, err)

	_, err = store.LoadTable(ctx, "dup")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "repeats row label")
}

func TestCacheServesUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, "pib_real")
	_, err := store.ImportCSV(ctx, "pib_real", strings.NewReader(pibCSV))
	require.NoError(t, err)

	first, err := store.LoadValidatedTables(ctx)
	require.NoError(t, err)
	require.Len(t, first["pib_real"].Rows, 3)

	_, err = store.DB().ExecContext(ctx, `INSERT INTO "pib_real" ("anio", "pib_real", "pib_nominal") VALUES ('1993', 110, 140)`)
	require.NoError(t, err)

	cached, err := store.LoadValidatedTables(ctx)
	require.NoError(t, err)
	assert.Len(t, cached["pib_real"].Rows, 3)

	store.Invalidate()
	fresh, err := store.LoadValidatedTables(ctx)
	require.NoError(t, err)
	assert.Len(t, fresh["pib_real"].Rows, 4)
}

func TestCacheExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, "pib_real")
	_, err := store.ImportCSV(ctx, "pib_real", strings.NewReader(pibCSV))
	require.NoError(t, err)

	now := time.Now()
	store.now = func() time.Time { return now }
	_, err = store.LoadValidatedTables(ctx)
	require.NoError(t, err)

	_, err = store.DB().ExecContext(ctx, `DELETE FROM "pib_real" WHERE "anio" = '1990'`)
	require.NoError(t, err)

	now = now.Add(DefaultTTL + time.Second)
	tables, err := store.LoadValidatedTables(ctx)
	require.NoError(t, err)
	assert.Len(t, tables["pib_real"].Rows, 2)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle", DSN: "x"})
	require.Error(t, err)

	_, err = Open(Config{Driver: DriverSQLite})
	require.Error(t, err)
}

func TestPlaceholdersFollowDriver(t *testing.T) {
	pg := New(nil, Config{Driver: DriverPostgres})
	assert.Equal(t, `INSERT INTO "t" ("a", "b") VALUES ($1, $2)`, pg.insertSQL("t", []string{"a", "b"}))

	lite := New(nil, Config{Driver: DriverSQLite})
	assert.Equal(t, `INSERT INTO "t" ("a", "b") VALUES (?, ?)`, lite.insertSQL("t", []string{"a", "b"}))
}

package migrate

import (
	"context"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridscope/power-telemetry/internal/repository"
)

// testDB connects to the database named by TEST_DB_DSN and applies a fresh
// schema. The tests drop and recreate the devices/power tables, so point the
// DSN at a throwaway database.
func testDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set; skipping database tests")
	}

	db, err := sqlx.Connect("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Reset(context.Background(), db))
	return db
}

func countRows(t *testing.T, db *sqlx.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM `+table))
	return n
}

func timestampColumnType(t *testing.T, db *sqlx.DB) string {
	t.Helper()
	var typ string
	require.NoError(t, db.Get(&typ,
		`SELECT data_type FROM information_schema.columns WHERE table_name = 'power' AND column_name = 'timestamp'`))
	return typ
}

func TestResetIdempotent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	// Dirty the tables, then reset again: same empty state both times.
	_, err := db.Exec(`INSERT INTO devices(id, name) VALUES ('d1', 'Meter 1')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO power(id, device_id, timestamp, power) VALUES ('r1', 'd1', '2024-01-01 10:15:00', 5.0)`)
	require.NoError(t, err)

	require.NoError(t, Reset(ctx, db))

	assert.Equal(t, 0, countRows(t, db, "devices"))
	assert.Equal(t, 0, countRows(t, db, "power"))
	assert.Equal(t, "text", timestampColumnType(t, db))
}

func TestInsertReadingForUnknownDeviceFails(t *testing.T) {
	db := testDB(t)

	_, err := db.Exec(`INSERT INTO power(id, device_id, timestamp, power) VALUES ('r1', 'ghost', '2024-01-01 10:15:00', 5.0)`)
	assert.Error(t, err)
}

func TestConvertTimestamps(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO devices(id, name) VALUES ('d1', 'Meter 1')`)
	require.NoError(t, err)
	for _, row := range []struct {
		id, ts string
		power  float64
	}{
		{"r1", "2024-01-01 10:15:00", 5.0},
		{"r2", "2024-01-01 10:45:00", 7.0},
		{"r3", "2024-01-01 11:05:00", 3.0},
	} {
		_, err = db.Exec(`INSERT INTO power(id, device_id, timestamp, power) VALUES ($1, 'd1', $2, $3)`,
			row.id, row.ts, row.power)
		require.NoError(t, err)
	}

	require.NoError(t, ConvertTimestamps(ctx, db))

	assert.Contains(t, timestampColumnType(t, db), "timestamp")

	// Values round-trip to the instants the text represented.
	var ts time.Time
	require.NoError(t, db.Get(&ts, `SELECT timestamp FROM power WHERE id = 'r1'`))
	assert.True(t, ts.Equal(time.Date(2024, 1, 1, 10, 15, 0, 0, ts.Location())))

	// The two 10:xx readings collapse into one bucket, 11:05 stays separate.
	repos := repository.New(db)
	rows, err := repos.DeviceHourlyPower("d1")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "d1", rows[0].DeviceID)
	assert.Equal(t, 10, rows[0].Hour.Hour())
	assert.Zero(t, rows[0].Hour.Minute())
	assert.Equal(t, 12.0, rows[0].Power)

	assert.Equal(t, 11, rows[1].Hour.Hour())
	assert.Equal(t, 3.0, rows[1].Power)
}

func TestConvertTimestampsBadValueAborts(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO devices(id, name) VALUES ('d1', 'Meter 1')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO power(id, device_id, timestamp, power) VALUES ('r1', 'd1', 'not-a-date', 5.0)`)
	require.NoError(t, err)

	err = ConvertTimestamps(ctx, db)
	require.Error(t, err)

	// Nothing changed: the column is still text and the row survived.
	assert.Equal(t, "text", timestampColumnType(t, db))
	assert.Equal(t, 1, countRows(t, db, "power"))
}

func TestHourlyRollupAcrossDevices(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO devices(id, name) VALUES ('d1', 'Meter 1'), ('d2', 'Meter 2')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO power(id, device_id, timestamp, power) VALUES
		('r1', 'd1', '2024-01-01 10:15:00', 5.0),
		('r2', 'd2', '2024-01-01 10:20:00', 2.5)`)
	require.NoError(t, err)

	require.NoError(t, ConvertTimestamps(ctx, db))

	rows, err := repository.New(db).HourlyPower()
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

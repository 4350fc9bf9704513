package migrate

// Base DDL for the telemetry store. Statements run one at a time because the
// pgx driver rejects multi-statement commands over the extended protocol.
//
// power.timestamp is TEXT here because the historical ingestion path wrote
// readings with string timestamps. ConvertTimestamps performs the one-time
// correction to a native TIMESTAMP column; everything written after the
// conversion goes through the typed column.

// createStatements builds the two tables and the rollup index. devices must
// exist before power: the foreign key on device_id would otherwise fail.
var createStatements = []string{
	// Devices: reference data for known devices, provisioned externally
	// before any reading refers to them.
	`CREATE TABLE devices (
    id   TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    ipv6 TEXT
)`,
	// Power: time-series readings, one row per measurement. No ON DELETE
	// rule: removing a device with readings is an operator decision.
	`CREATE TABLE power (
    id        TEXT PRIMARY KEY,
    device_id TEXT NOT NULL REFERENCES devices(id),
    timestamp TEXT NOT NULL,
    power     FLOAT8 NOT NULL
)`,
	`CREATE INDEX idx_power_device_time ON power(device_id, timestamp)`,
}

// dropStatements removes both tables. power goes first so the foreign key
// on device_id never blocks the drop of devices.
var dropStatements = []string{
	`DROP TABLE IF EXISTS power`,
	`DROP TABLE IF EXISTS devices`,
}

// convertStatements rewrites power.timestamp from TEXT to TIMESTAMP without
// losing rows. Order matters:
//
//  1. add a nullable helper column t
//  2. backfill t by casting the text value; a value that does not parse
//     fails the cast and aborts here, before any type change
//  3. switch the column type using the backfilled values
//  4. drop the helper column
//
// Run inside a single transaction: Postgres DDL is transactional, so a
// failed backfill rolls back the helper column too.
var convertStatements = []string{
	`ALTER TABLE power ADD COLUMN t TIMESTAMP`,
	`UPDATE power SET t = timestamp::TIMESTAMP`,
	`ALTER TABLE power ALTER COLUMN timestamp TYPE TIMESTAMP USING t`,
	`ALTER TABLE power DROP COLUMN t`,
}

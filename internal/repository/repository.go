package repository

import (
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gridscope/power-telemetry/internal/domain"
)

// hourlyRollup groups readings by device and hour-truncated timestamp.
// date_trunc zeroes everything below the hour, so all readings inside the
// same wall-clock hour land in one bucket.
const hourlyRollup = `SELECT device_id, date_trunc('hour', timestamp) AS hour, SUM(power) AS power FROM power GROUP BY device_id, date_trunc('hour', timestamp)`

type Repos struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repos { return &Repos{db: db} }

func (r *Repos) ListDevices() ([]domain.Device, error) {
	var out []domain.Device
	err := r.db.Select(&out, `SELECT id, name, ipv6 FROM devices ORDER BY id`)
	return out, err
}

func (r *Repos) GetDevice(id string) (*domain.Device, error) {
	var out domain.Device
	if err := r.db.Get(&out, `SELECT id, name, ipv6 FROM devices WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repos) CreateDevice(d *domain.Device) error {
	_, err := r.db.Exec(`INSERT INTO devices(id, name, ipv6) VALUES ($1,$2,$3)`,
		d.ID, d.Name, d.IPv6)
	return err
}

func (r *Repos) InsertReading(rd *domain.PowerReading) error {
	if rd.ID == "" {
		rd.ID = uuid.NewString()
	}
	_, err := r.db.Exec(`INSERT INTO power(id, device_id, timestamp, power) VALUES ($1,$2,$3,$4)`,
		rd.ID, rd.DeviceID, rd.Timestamp, rd.Power)
	return err
}

func (r *Repos) ListDeviceReadings(deviceID string, limit int) ([]domain.PowerReading, error) {
	var out []domain.PowerReading
	err := r.db.Select(&out, `SELECT id, device_id, timestamp, power FROM power WHERE device_id = $1 ORDER BY timestamp DESC LIMIT $2`,
		deviceID, limit)
	return out, err
}

// HourlyPower returns the hourly rollup for every device. Only (device, hour)
// pairs with at least one reading produce a row.
func (r *Repos) HourlyPower() ([]domain.HourlyPower, error) {
	var out []domain.HourlyPower
	err := r.db.Select(&out, hourlyRollup)
	return out, err
}

func (r *Repos) DeviceHourlyPower(deviceID string) ([]domain.HourlyPower, error) {
	var out []domain.HourlyPower
	err := r.db.Select(&out, `SELECT device_id, date_trunc('hour', timestamp) AS hour, SUM(power) AS power FROM power WHERE device_id = $1 GROUP BY device_id, date_trunc('hour', timestamp) ORDER BY hour`,
		deviceID)
	return out, err
}

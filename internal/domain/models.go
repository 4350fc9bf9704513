package domain

import "time"

type Device struct {
	ID   string  `db:"id" json:"id"`
	Name string  `db:"name" json:"name"`
	IPv6 *string `db:"ipv6" json:"ipv6,omitempty"`
}

type PowerReading struct {
	ID        string    `db:"id" json:"id"`
	DeviceID  string    `db:"device_id" json:"device_id"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
	Power     float64   `db:"power" json:"power"`
}

// HourlyPower is one row of the hourly rollup: the summed power of a device
// within the hour starting at Hour.
type HourlyPower struct {
	DeviceID string    `db:"device_id" json:"device_id"`
	Hour     time.Time `db:"hour" json:"hour"`
	Power    float64   `db:"power" json:"power"`
}

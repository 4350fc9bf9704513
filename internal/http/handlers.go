package http

import (
	"database/sql"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/gridscope/power-telemetry/internal/domain"
)

const defaultReadingLimit = 100

// Store is the slice of the repository the handlers need.
type Store interface {
	ListDevices() ([]domain.Device, error)
	GetDevice(id string) (*domain.Device, error)
	CreateDevice(d *domain.Device) error
	ListDeviceReadings(deviceID string, limit int) ([]domain.PowerReading, error)
	HourlyPower() ([]domain.HourlyPower, error)
	DeviceHourlyPower(deviceID string) ([]domain.HourlyPower, error)
}

func Register(app *fiber.App, store Store) {
	g := app.Group("/")

	g.Get("devices", func(c *fiber.Ctx) error {
		items, err := store.ListDevices()
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(items)
	})

	g.Post("devices", func(c *fiber.Ctx) error {
		var d domain.Device
		if err := c.BodyParser(&d); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		if d.ID == "" || d.Name == "" {
			return c.Status(400).JSON(fiber.Map{"error": "id and name are required"})
		}
		if err := store.CreateDevice(&d); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(201).JSON(d)
	})

	g.Get("devices/:id", func(c *fiber.Ctx) error {
		d, err := store.GetDevice(c.Params("id"))
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(404).JSON(fiber.Map{"error": "device not found"})
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(d)
	})

	g.Get("devices/:id/power", func(c *fiber.Ctx) error {
		items, err := store.ListDeviceReadings(c.Params("id"), c.QueryInt("limit", defaultReadingLimit))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(items)
	})

	g.Get("devices/:id/power/hourly", func(c *fiber.Ctx) error {
		items, err := store.DeviceHourlyPower(c.Params("id"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(items)
	})

	g.Get("power/hourly", func(c *fiber.Ctx) error {
		items, err := store.HourlyPower()
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(items)
	})
}

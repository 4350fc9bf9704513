package service

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gridscope/power-telemetry/internal/cloud"
	"github.com/gridscope/power-telemetry/internal/domain"
	"github.com/gridscope/power-telemetry/internal/repository"
)

type Services struct {
	Repos    *repository.Repos
	Readings *ReadingService
	Reports  *ReportService
}

func New(db *sqlx.DB) *Services {
	repos := repository.New(db)
	return &Services{
		Repos:    repos,
		Readings: &ReadingService{repos: repos},
		Reports:  &ReportService{repos: repos},
	}
}

// WithCloud attaches the S3/SNS clients used by the report job.
func (s *Services) WithCloud(s3 *cloud.S3Client, sns *cloud.SNSClient) *Services {
	s.Reports.s3 = s3
	s.Reports.sns = sns
	return s
}

type ReadingService struct {
	repos *repository.Repos
}

func (s *ReadingService) FromMQTT(topic string, payload []byte) error {
	rd, err := decodeReading(payload)
	if err != nil {
		return err
	}
	return s.repos.InsertReading(rd)
}

func decodeReading(payload []byte) (*domain.PowerReading, error) {
	var r struct {
		DeviceID  string    `json:"device_id"`
		Timestamp time.Time `json:"timestamp"`
		Power     float64   `json:"power"`
	}
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, err
	}
	return &domain.PowerReading{
		DeviceID:  r.DeviceID,
		Timestamp: r.Timestamp,
		Power:     r.Power,
	}, nil
}

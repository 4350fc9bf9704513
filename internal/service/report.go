package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gridscope/power-telemetry/internal/cloud"
	"github.com/gridscope/power-telemetry/internal/domain"
	"github.com/gridscope/power-telemetry/internal/repository"
)

const hourFormat = "2006-01-02 15:04:05"

// ReportService turns the hourly rollup into one CSV file per device and
// uploads the files to S3.
type ReportService struct {
	repos *repository.Repos
	s3    *cloud.S3Client
	sns   *cloud.SNSClient
}

// Run executes one report pass: query the rollup, group rows per device,
// encode and upload a CSV for each device, then list what the bucket holds.
// Returns the number of files uploaded.
func (s *ReportService) Run() (int, error) {
	if s.s3 == nil {
		return 0, fmt.Errorf("report run requires cloud services (set USE_CLOUD_SERVICES=true)")
	}

	rows, err := s.repos.HourlyPower()
	if err != nil {
		return 0, fmt.Errorf("failed to query hourly rollup: %w", err)
	}

	grouped := groupByDevice(rows)
	now := time.Now().UTC()

	uploaded := 0
	for id, series := range grouped {
		content, err := encodeSeriesCSV(series)
		if err != nil {
			return uploaded, fmt.Errorf("failed to encode report for %s: %w", id, err)
		}

		key := reportKey(id, now)
		if err := s.s3.UploadReport(key, content); err != nil {
			return uploaded, err
		}
		uploaded++
		log.Info().Str("device", id).Str("key", key).Msg("report uploaded")
	}

	keys, err := s.s3.ListReports("")
	if err != nil {
		return uploaded, err
	}
	for _, key := range keys {
		log.Info().Str("key", key).Msg("found report")
	}

	if s.sns != nil {
		if err := s.sns.NotifyReportRun(len(grouped), uploaded); err != nil {
			log.Error().Err(err).Msg("report notification failed")
		}
	}

	return uploaded, nil
}

func groupByDevice(rows []domain.HourlyPower) map[string][]domain.HourlyPower {
	grouped := make(map[string][]domain.HourlyPower)
	for _, row := range rows {
		grouped[row.DeviceID] = append(grouped[row.DeviceID], row)
	}
	for _, series := range grouped {
		sort.Slice(series, func(i, j int) bool { return series[i].Hour.Before(series[j].Hour) })
	}
	return grouped
}

func encodeSeriesCSV(series []domain.HourlyPower) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"hour", "power"}); err != nil {
		return nil, err
	}
	for _, row := range series {
		record := []string{
			row.Hour.Format(hourFormat),
			strconv.FormatFloat(row.Power, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// reportKey names a report object after the run time (to the minute) and
// the device it covers.
func reportKey(deviceID string, now time.Time) string {
	return fmt.Sprintf("%s %s.csv", now.Format("2006-01-02T15:04"), deviceID)
}

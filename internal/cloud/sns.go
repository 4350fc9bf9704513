package cloud

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// SNSClient wraps the AWS SNS client for operational notifications.
type SNSClient struct {
	svc      *sns.Client
	topicArn string
	ctx      context.Context
}

// NewSNSClient creates a new SNS client instance.
func NewSNSClient(region, topicArn string) (*SNSClient, error) {
	ctx := context.Background()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	return &SNSClient{
		svc:      sns.NewFromConfig(cfg),
		topicArn: topicArn,
		ctx:      ctx,
	}, nil
}

// Publish sends a notification to the configured topic.
func (c *SNSClient) Publish(subject, message string) error {
	input := &sns.PublishInput{
		TopicArn: aws.String(c.topicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	}

	_, err := c.svc.Publish(c.ctx, input)
	if err != nil {
		return fmt.Errorf("failed to publish to SNS: %w", err)
	}

	return nil
}

// NotifyReportRun publishes a summary of a finished report run.
func (c *SNSClient) NotifyReportRun(devices, files int) error {
	subject := "Power Telemetry: hourly report run complete"
	message := fmt.Sprintf(
		"Hourly Power Report\n\n"+
			"Devices: %d\n"+
			"Files uploaded: %d\n"+
			"Time: %s\n",
		devices,
		files,
		time.Now().Format(time.RFC3339),
	)

	return c.Publish(subject, message)
}

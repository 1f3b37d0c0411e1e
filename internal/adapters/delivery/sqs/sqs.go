package sqs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pilltrack/internal/adapters/delivery"
	"pilltrack/internal/domain/notifications"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// sendMessageAPI es lo que se usa de *sqs.Client.
type sendMessageAPI interface {
	SendMessage(ctx context.Context, in *awssqs.SendMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.SendMessageOutput, error)
}

type Options struct {
	QueueURL string
	Region   string
	// Endpoint opcional (localstack).
	Endpoint string
}

// Publisher encola cada notificación en SQS para un worker de envío (push/email/SMS).
type Publisher struct {
	client   sendMessageAPI
	queueURL string
}

func New(ctx context.Context, opts Options) (*Publisher, error) {
	if strings.TrimSpace(opts.QueueURL) == "" {
		return nil, errors.New("sqs: queue url required")
	}

	loaders := make([]func(*config.LoadOptions) error, 0, 1)
	if r := strings.TrimSpace(opts.Region); r != "" {
		loaders = append(loaders, config.WithRegion(r))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("sqs: load aws config: %w", err)
	}

	endpoint := strings.TrimSpace(opts.Endpoint)
	client := awssqs.NewFromConfig(cfg, func(o *awssqs.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return newWithClient(client, opts.QueueURL), nil
}

func newWithClient(client sendMessageAPI, queueURL string) *Publisher {
	return &Publisher{client: client, queueURL: queueURL}
}

func (p *Publisher) Publish(ctx context.Context, n notifications.Notification) error {
	payload, err := delivery.Marshal(n)
	if err != nil {
		return fmt.Errorf("sqs: marshal: %w", err)
	}

	_, err = p.client.SendMessage(ctx, &awssqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(payload)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(n.Type)),
			},
			"user_id": {
				DataType:    aws.String("String"),
				StringValue: aws.String(n.UserID),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("sqs: send message: %w", err)
	}
	return nil
}

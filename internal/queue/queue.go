package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"transcode-worker/internal/logging"
	"transcode-worker/internal/metrics"
)

// api is the subset of the SQS client the consumer uses.
type api interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Message is one received queue message.
type Message struct {
	Body          string
	ReceiptHandle string
}

// Options tunes the receive behavior. Zero values fall back to the SQS
// defaults chosen at construction time.
type Options struct {
	PollWait          time.Duration
	VisibilityTimeout time.Duration
	MaxMessages       int
}

// Consumer polls one SQS queue for bucket notification deliveries.
type Consumer struct {
	client     api
	queueURL   string
	waitTime   int32
	visibility int32
	maxMsgs    int32
}

// New builds a Consumer from the default AWS configuration chain. An
// optional endpoint override supports SQS-compatible brokers in development.
func New(ctx context.Context, region, endpoint, queueURL string, opts Options) (*Consumer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := sqs.NewFromConfig(cfg, func(o *sqs.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	return newConsumer(client, queueURL, opts), nil
}

func newConsumer(client api, queueURL string, opts Options) *Consumer {
	c := &Consumer{
		client:     client,
		queueURL:   queueURL,
		waitTime:   20,
		visibility: 900,
		maxMsgs:    10,
	}
	if opts.PollWait > 0 {
		c.waitTime = int32(opts.PollWait / time.Second)
	}
	if opts.VisibilityTimeout > 0 {
		c.visibility = int32(opts.VisibilityTimeout / time.Second)
	}
	if opts.MaxMessages > 0 {
		c.maxMsgs = int32(opts.MaxMessages)
	}
	return c
}

// Receive long-polls the queue once and returns whatever arrived, possibly
// nothing.
func (c *Consumer) Receive(ctx context.Context) ([]Message, error) {
	out, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(c.queueURL),
		MaxNumberOfMessages: c.maxMsgs,
		WaitTimeSeconds:     c.waitTime,
		VisibilityTimeout:   c.visibility,
	})
	if err != nil {
		metrics.QueueReceivesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("receive from %s: %w", c.queueURL, err)
	}

	if len(out.Messages) == 0 {
		metrics.QueueReceivesTotal.WithLabelValues("empty").Inc()
		return nil, nil
	}
	metrics.QueueReceivesTotal.WithLabelValues("messages").Inc()

	messages := make([]Message, 0, len(out.Messages))
	for _, m := range out.Messages {
		messages = append(messages, Message{
			Body:          aws.ToString(m.Body),
			ReceiptHandle: aws.ToString(m.ReceiptHandle),
		})
	}
	return messages, nil
}

// Delete acknowledges messages individually so one bad receipt handle does
// not strand the rest. The first error is returned after all attempts.
func (c *Consumer) Delete(ctx context.Context, messages []Message) error {
	var firstErr error
	for _, m := range messages {
		_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
			QueueUrl:      aws.String(c.queueURL),
			ReceiptHandle: aws.String(m.ReceiptHandle),
		})
		if err != nil {
			logging.Warn("Queue: failed to delete message: %v", err)
			metrics.QueueMessagesTotal.WithLabelValues("retained").Inc()
			if firstErr == nil {
				firstErr = fmt.Errorf("delete message: %w", err)
			}
			continue
		}
		metrics.QueueMessagesTotal.WithLabelValues("deleted").Inc()
	}
	return firstErr
}

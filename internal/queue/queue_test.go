package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"transcode-worker/internal/logging"
)

func init() {
	logging.SetLevel(logging.LevelError)
}

// fakeSQS serves queued batches of messages in order, then empties.
type fakeSQS struct {
	mu         sync.Mutex
	batches    [][]types.Message
	deleted    []string
	receiveErr error
	deleteErr  error

	lastInput *sqs.ReceiveMessageInput
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastInput = params
	if f.receiveErr != nil {
		return nil, f.receiveErr
	}
	if len(f.batches) == 0 {
		return &sqs.ReceiveMessageOutput{}, nil
	}

	batch := f.batches[0]
	f.batches = f.batches[1:]
	return &sqs.ReceiveMessageOutput{Messages: batch}, nil
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	f.deleted = append(f.deleted, aws.ToString(params.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func (f *fakeSQS) deletedHandles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func message(body, handle string) types.Message {
	return types.Message{
		Body:          aws.String(body),
		ReceiptHandle: aws.String(handle),
	}
}

func TestReceive(t *testing.T) {
	fake := &fakeSQS{batches: [][]types.Message{
		{message("body-1", "rh-1"), message("body-2", "rh-2")},
	}}
	consumer := newConsumer(fake, "https://queue.test/q", Options{})

	messages, err := consumer.Receive(context.Background())
	if err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(messages))
	}
	if messages[0].Body != "body-1" || messages[0].ReceiptHandle != "rh-1" {
		t.Errorf("Unexpected first message: %+v", messages[0])
	}
}

func TestReceiveAppliesOptions(t *testing.T) {
	fake := &fakeSQS{}
	consumer := newConsumer(fake, "https://queue.test/q", Options{
		PollWait:          10 * time.Second,
		VisibilityTimeout: 300 * time.Second,
		MaxMessages:       5,
	})

	if _, err := consumer.Receive(context.Background()); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}

	input := fake.lastInput
	if input.WaitTimeSeconds != 10 {
		t.Errorf("Expected wait time 10, got %d", input.WaitTimeSeconds)
	}
	if input.VisibilityTimeout != 300 {
		t.Errorf("Expected visibility 300, got %d", input.VisibilityTimeout)
	}
	if input.MaxNumberOfMessages != 5 {
		t.Errorf("Expected max messages 5, got %d", input.MaxNumberOfMessages)
	}
	if aws.ToString(input.QueueUrl) != "https://queue.test/q" {
		t.Errorf("Unexpected queue URL %s", aws.ToString(input.QueueUrl))
	}
}

func TestReceiveEmpty(t *testing.T) {
	consumer := newConsumer(&fakeSQS{}, "https://queue.test/q", Options{})

	messages, err := consumer.Receive(context.Background())
	if err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("Expected no messages, got %d", len(messages))
	}
}

func TestDelete(t *testing.T) {
	fake := &fakeSQS{}
	consumer := newConsumer(fake, "https://queue.test/q", Options{})

	err := consumer.Delete(context.Background(), []Message{
		{ReceiptHandle: "rh-1"},
		{ReceiptHandle: "rh-2"},
	})
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	deleted := fake.deletedHandles()
	if len(deleted) != 2 || deleted[0] != "rh-1" || deleted[1] != "rh-2" {
		t.Errorf("Expected both handles deleted, got %v", deleted)
	}
}

func TestDeleteReportsFirstError(t *testing.T) {
	fake := &fakeSQS{deleteErr: errors.New("invalid receipt handle")}
	consumer := newConsumer(fake, "https://queue.test/q", Options{})

	err := consumer.Delete(context.Background(), []Message{{ReceiptHandle: "rh-1"}})
	if err == nil {
		t.Error("Expected delete error to propagate")
	}
}

func TestRunDeletesOnSuccess(t *testing.T) {
	fake := &fakeSQS{batches: [][]types.Message{
		{message("body-1", "rh-1")},
	}}
	consumer := newConsumer(fake, "https://queue.test/q", Options{})

	ctx, cancel := context.WithCancel(context.Background())
	var handled [][]string

	done := make(chan struct{})
	go func() {
		defer close(done)
		consumer.Run(ctx, func(_ context.Context, bodies []string) error {
			handled = append(handled, bodies)
			cancel()
			return nil
		})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	if len(handled) != 1 || len(handled[0]) != 1 || handled[0][0] != "body-1" {
		t.Fatalf("Expected one handled delivery, got %v", handled)
	}
	if deleted := fake.deletedHandles(); len(deleted) != 1 || deleted[0] != "rh-1" {
		t.Errorf("Expected message acknowledged, got %v", deleted)
	}
}

func TestRunRetainsOnHandlerError(t *testing.T) {
	fake := &fakeSQS{batches: [][]types.Message{
		{message("body-1", "rh-1")},
	}}
	consumer := newConsumer(fake, "https://queue.test/q", Options{})

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		consumer.Run(ctx, func(_ context.Context, bodies []string) error {
			cancel()
			return errors.New("all records failed")
		})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	if deleted := fake.deletedHandles(); len(deleted) != 0 {
		t.Errorf("Expected no deletions after handler failure, got %v", deleted)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	consumer := newConsumer(&fakeSQS{}, "https://queue.test/q", Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		consumer.Run(ctx, func(_ context.Context, _ []string) error { return nil })
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop on canceled context")
	}
}

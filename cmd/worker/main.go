package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"placement-backend/internal/bootstrap"
	"placement-backend/internal/queue"
	"placement-backend/internal/scheduler"
	"placement-backend/internal/shared/config"
	"placement-backend/internal/shared/metrics"
	"placement-backend/internal/shared/telemetry"
	"placement-backend/internal/workerproc"
)

const (
	defaultSQSRegion          = "us-east-1"
	defaultVisibilitySeconds  = 120
	defaultWorkerConcurrency  = 4
	defaultShutdownTimeoutSec = 30
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}
	defer app.Close()

	sched := scheduler.New(app.Dashboard, cfg.NudgeCron, cfg.NudgeConcurrency)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("start scheduler: %v", err)
	}
	defer sched.Stop()

	switch cfg.QueueBackend {
	case queue.BackendSQS:
		runSQS(ctx, cfg, app.Dashboard)
	case queue.BackendAMQP:
		runAMQP(ctx, cfg, app.Dashboard)
	default:
		log.Printf("worker started queue=inline; running nudge scheduler only")
		<-ctx.Done()
	}
}

func runAMQP(ctx context.Context, cfg config.Config, proc workerproc.Processor) {
	consumer, err := queue.NewAMQPConsumer(cfg.AMQPURL, cfg.AMQPQueue, envInt("PLACEMENT_WORKER_CONCURRENCY", defaultWorkerConcurrency))
	if err != nil {
		log.Fatalf("amqp consumer: %v", err)
	}
	defer consumer.Close()

	log.Printf("worker started queue=amqp name=%s", cfg.AMQPQueue)
	err = consumer.Run(ctx, func(ctx context.Context, body string) error {
		err := workerproc.HandleMessage(ctx, proc, body)
		switch {
		case err == nil:
			metrics.IncQueueMessage(queue.BackendAMQP, "completed")
			return nil
		case workerproc.IsPermanent(err):
			telemetry.Error("worker.job_saved.dropped", map[string]any{"error": err.Error()})
			metrics.IncQueueMessage(queue.BackendAMQP, "dropped")
			return nil
		default:
			telemetry.Error("worker.job_saved.failed", map[string]any{"error": err.Error()})
			metrics.IncQueueMessage(queue.BackendAMQP, "failed")
			return err
		}
	})
	if err != nil {
		log.Printf("amqp consumer stopped: %v", err)
	}
}

func runSQS(ctx context.Context, cfg config.Config, proc workerproc.Processor) {
	queueURL := strings.TrimSpace(cfg.SQSQueueURL)
	if queueURL == "" {
		log.Fatal("PLACEMENT_SQS_QUEUE_URL is required")
	}
	region := cfg.AWSRegion
	if strings.TrimSpace(region) == "" {
		region = defaultSQSRegion
	}

	visibilitySeconds := envInt("PLACEMENT_SQS_VISIBILITY_TIMEOUT_SECONDS", defaultVisibilitySeconds)
	concurrency := envInt("PLACEMENT_WORKER_CONCURRENCY", defaultWorkerConcurrency)
	shutdownTimeout := time.Duration(envInt("PLACEMENT_SHUTDOWN_TIMEOUT_SECONDS", defaultShutdownTimeoutSec)) * time.Second

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		log.Fatalf("load aws config: %v", err)
	}
	var sqsClient sqsAPI = sqs.NewFromConfig(awsCfg)

	sem := make(chan struct{}, max(1, concurrency))
	var wg sync.WaitGroup

	log.Printf("worker started queue=%s concurrency=%d visibility=%ds", queueURL, concurrency, visibilitySeconds)

pollLoop:
	for {
		select {
		case <-ctx.Done():
			break pollLoop
		default:
		}

		resp, err := sqsClient.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(queueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     20,
			VisibilityTimeout:   int32(visibilitySeconds),
			AttributeNames:      []sqstypes.QueueAttributeName{sqstypes.QueueAttributeName("ApproximateReceiveCount")},
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				break pollLoop
			}
			log.Printf("receive message: %v", err)
			continue
		}

		for _, msg := range resp.Messages {
			select {
			case <-ctx.Done():
				break pollLoop
			case sem <- struct{}{}:
			}
			metrics.IncQueueMessage(queue.BackendSQS, "received")
			wg.Add(1)
			go func(m sqstypes.Message) {
				defer wg.Done()
				defer func() { <-sem }()
				handleMessage(ctx, sqsClient, queueURL, proc, m)
			}(msg)
		}
	}

	log.Printf("shutdown requested, waiting up to %s for in-flight jobs", shutdownTimeout)
	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-time.After(shutdownTimeout):
		log.Printf("shutdown timeout reached; exiting with in-flight jobs")
	}
}

type sqsAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// handleMessage runs one delivery. Successful and unrecoverable messages are
// deleted; anything else is left for SQS to redeliver after the visibility timeout.
func handleMessage(ctx context.Context, client sqsAPI, queueURL string, proc workerproc.Processor, msg sqstypes.Message) {
	body := aws.ToString(msg.Body)

	decoded, meta, err := workerproc.ParseMessage(body)
	if err != nil {
		fields := baseFields(msg, queue.Message{})
		fields["body_len"] = meta.BodyLen
		if meta.BodySHA != "" {
			fields["body_sha256"] = meta.BodySHA
		}
		fields["error"] = err.Error()
		var noUser workerproc.ErrMissingUserID
		var noJob workerproc.ErrMissingJobID
		switch {
		case errors.As(err, &noUser):
			fields["request_id"] = noUser.RequestID
			telemetry.Error("worker.job_saved.missing_user", fields)
		case errors.As(err, &noJob):
			fields["request_id"] = noJob.RequestID
			telemetry.Error("worker.job_saved.missing_job", fields)
		default:
			telemetry.Error("worker.job_saved.decode_failed", fields)
		}
		if deleteMessage(ctx, client, queueURL, msg, decoded) {
			metrics.IncQueueMessage(queue.BackendSQS, "dropped")
		}
		return
	}

	telemetry.Info("worker.job_saved.received", baseFields(msg, decoded))

	ctxWithParsed := workerproc.WithParsedMessage(ctx, decoded)
	if err := workerproc.HandleMessage(ctxWithParsed, proc, body); err != nil {
		fields := baseFields(msg, decoded)
		fields["error"] = err.Error()
		if workerproc.IsPermanent(err) {
			telemetry.Error("worker.job_saved.dropped", fields)
			if deleteMessage(ctx, client, queueURL, msg, decoded) {
				metrics.IncQueueMessage(queue.BackendSQS, "dropped")
			}
			return
		}
		telemetry.Error("worker.job_saved.failed", fields)
		metrics.IncQueueMessage(queue.BackendSQS, "failed")
		return
	}

	if deleteMessage(ctx, client, queueURL, msg, decoded) {
		telemetry.Info("worker.job_saved.completed", baseFields(msg, decoded))
		metrics.IncQueueMessage(queue.BackendSQS, "completed")
	}
}

func deleteMessage(ctx context.Context, client sqsAPI, queueURL string, msg sqstypes.Message, decoded queue.Message) bool {
	receipt := aws.ToString(msg.ReceiptHandle)
	if receipt == "" {
		fields := baseFields(msg, decoded)
		fields["error"] = "missing receipt handle"
		telemetry.Error("worker.job_saved.delete_failed", fields)
		return false
	}
	if _, err := client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueURL),
		ReceiptHandle: aws.String(receipt),
	}); err != nil {
		fields := baseFields(msg, decoded)
		fields["error"] = err.Error()
		telemetry.Error("worker.job_saved.delete_failed", fields)
		return false
	}
	return true
}

func baseFields(msg sqstypes.Message, decoded queue.Message) map[string]any {
	fields := map[string]any{
		"user_id":        decoded.UserID,
		"job_id":         decoded.JobID,
		"sqs_message_id": aws.ToString(msg.MessageId),
		"receive_count":  receiveCount(msg),
	}
	if strings.TrimSpace(decoded.RequestID) != "" {
		fields["request_id"] = decoded.RequestID
	}
	return fields
}

func receiveCount(msg sqstypes.Message) int {
	if msg.Attributes == nil {
		return 0
	}
	raw := msg.Attributes["ApproximateReceiveCount"]
	if raw == "" {
		return 0
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return parsed
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}

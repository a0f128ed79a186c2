package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"background-remover/internal/config"
	"background-remover/internal/models"
	"background-remover/internal/services/processor"
	"background-remover/internal/services/rembg"
	"background-remover/internal/services/storage"
)

const queueName = "background_removal"

// ErrQueueFull is returned when the pending backlog reached the configured
// maximum.
var ErrQueueFull = errors.New("queue is full")

// Service dispatches background-removal jobs through a durable RabbitMQ
// queue and runs the worker pool that consumes them. The server starts
// without it if RabbitMQ is unreachable; queue endpoints then report
// unavailable.
type Service struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	registry *Registry
	rembg    *rembg.Client
	opt      *processor.Optimizer
	store    *storage.ArtifactStore
	logger   *zap.Logger
	maxSize  int
	workers  int
}

func NewService(
	cfg config.QueueConfig,
	rembgClient *rembg.Client,
	opt *processor.Optimizer,
	store *storage.ArtifactStore,
	logger *zap.Logger,
) (*Service, error) {
	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &Service{
		conn:     conn,
		channel:  channel,
		registry: NewRegistry(),
		rembg:    rembgClient,
		opt:      opt,
		store:    store,
		logger:   logger,
		maxSize:  cfg.MaxSize,
		workers:  cfg.Workers,
	}, nil
}

// Publish registers the job and places it on the queue. Submissions beyond
// the backlog cap are rejected with ErrQueueFull before anything is
// registered; the capacity check and registration are atomic.
func (s *Service) Publish(job *models.ProcessingJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	if _, ok := s.registry.CreateIfCapacity(job.ID, s.maxSize); !ok {
		return ErrQueueFull
	}

	err = s.channel.Publish(
		"",        // exchange
		queueName, // routing key
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		s.registry.Fail(job.ID, "failed to enqueue job")
		return fmt.Errorf("failed to publish job: %w", err)
	}

	s.logger.Info("Job queued",
		zap.String("job_id", job.ID),
		zap.String("filename", job.Filename))
	return nil
}

// Job returns the status of a submitted job.
func (s *Service) Job(id string) (models.JobStatus, bool) {
	return s.registry.Get(id)
}

// StartPruner bounds registry growth: finished job records are dropped on the
// artifact janitor's retention schedule.
func (s *Service) StartPruner(ctx context.Context, interval, maxAge time.Duration) {
	s.registry.StartPruner(ctx, interval, maxAge, s.logger)
}

// Status reports queue occupancy for GET /queue/status.
func (s *Service) Status() models.QueueStatus {
	pending, active := s.registry.Counts()
	return models.QueueStatus{
		QueueLength:       pending,
		ActiveJobs:        active,
		MaxConcurrentJobs: s.workers,
		MaxQueueSize:      s.maxSize,
		Available:         true,
	}
}

func (s *Service) Close() error {
	if s.channel != nil {
		s.channel.Close()
	}
	if s.conn != nil {
		s.conn.Close()
	}
	return nil
}

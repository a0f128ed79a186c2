package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"background-remover/internal/models"
	"background-remover/internal/services/processor"
)

// StartWorkers launches the consumer goroutines. Each worker runs the same
// validate-free pipeline as the sync endpoints (input was validated at
// submission): background removal, optional optimization, artifact write.
func (s *Service) StartWorkers(ctx context.Context) error {
	for id := 1; id <= s.workers; id++ {
		if err := s.startWorker(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) startWorker(ctx context.Context, workerID int) error {
	msgs, err := s.channel.Consume(
		queueName,                          // queue
		fmt.Sprintf("worker-%d", workerID), // consumer
		false,                              // auto-ack
		false,                              // exclusive
		false,                              // no-local
		false,                              // no-wait
		nil,                                // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	s.logger.Info("Queue worker started", zap.Int("worker_id", workerID))

	go func() {
		for {
			select {
			case <-ctx.Done():
				s.logger.Info("Queue worker stopping", zap.Int("worker_id", workerID))
				return
			case msg, ok := <-msgs:
				if !ok {
					s.logger.Warn("Message channel closed", zap.Int("worker_id", workerID))
					return
				}
				s.processMessage(ctx, msg, workerID)
			}
		}
	}()

	return nil
}

func (s *Service) processMessage(ctx context.Context, msg amqp.Delivery, workerID int) {
	var job models.ProcessingJob
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		s.logger.Error("Failed to unmarshal job",
			zap.Error(err),
			zap.Int("worker_id", workerID))
		msg.Nack(false, false) // don't requeue malformed messages
		return
	}

	s.logger.Info("Processing job",
		zap.String("job_id", job.ID),
		zap.Int("worker_id", workerID))

	if err := s.processJob(ctx, &job); err != nil {
		s.registry.Fail(job.ID, err.Error())
		s.logger.Error("Job processing failed",
			zap.String("job_id", job.ID),
			zap.Error(err))
	} else {
		s.logger.Info("Job completed", zap.String("job_id", job.ID))
	}

	if err := msg.Ack(false); err != nil {
		s.logger.Error("Failed to ack message",
			zap.String("job_id", job.ID),
			zap.Error(err))
	}
}

func (s *Service) processJob(ctx context.Context, job *models.ProcessingJob) error {
	input, err := s.store.Read(job.InputPath)
	if err != nil {
		return fmt.Errorf("failed to read input artifact: %w", err)
	}

	s.registry.SetProcessing(job.ID, "Removing background", 25)
	removed, err := s.rembg.Remove(ctx, input, job.Filename)
	if err != nil {
		return err
	}

	output := removed
	mimetype := "image/png"
	ext := "png"
	var summary *models.OptimizationSummary

	if job.Optimize {
		s.registry.SetProcessing(job.ID, "Optimizing image", 70)

		img, _, err := processor.Decode(removed)
		if err != nil {
			return err
		}

		result, err := s.opt.Optimize(img, len(removed), job.Request)
		if err != nil {
			return err
		}

		output = result.Data
		mimetype = result.Mimetype
		ext = strings.TrimPrefix(result.Mimetype, "image/")

		quality := job.Request.Quality
		if quality == 0 {
			quality = models.DefaultQuality
		}
		summary = &models.OptimizationSummary{
			Format:           ext,
			Quality:          quality,
			Dimensions:       fmt.Sprintf("%dx%d", result.Width, result.Height),
			CompressionRatio: result.CompressionRatio,
		}
	}

	s.registry.SetProcessing(job.ID, "Saving result", 90)
	path, err := s.store.SaveOutput(output, ext)
	if err != nil {
		return err
	}

	resultURL := ""
	if s.store.MirrorEnabled() {
		resultURL, err = s.store.Mirror(ctx, path, mimetype)
		if err != nil {
			// Local artifact is the source of truth; a mirror failure is not fatal.
			s.logger.Warn("Failed to mirror result",
				zap.String("job_id", job.ID),
				zap.Error(err))
			resultURL = ""
		}
	}

	s.registry.Complete(job.ID, path, mimetype, resultURL, summary)
	return nil
}

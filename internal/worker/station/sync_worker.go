package station

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fuelmap-service/internal/domain"
	"github.com/fuelmap-service/internal/domain/repository"
	"github.com/fuelmap-service/internal/usecase"
	"github.com/fuelmap-service/internal/worker"
)

// SyncWorker consumes station update events and keeps the cluster
// index and cached station lists in step with the database.
type SyncWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	stationUC    usecase.StationUsecase
	clusterUC    usecase.ClusterUsecase
	streamName   string
	consumerName string
	maxRetries   int
}

func NewSyncWorker(
	streamRepo repository.StreamRepository,
	stationUC usecase.StationUsecase,
	clusterUC usecase.ClusterUsecase,
	streamName string,
	consumerGroup string,
	maxRetries int,
	logger *zap.Logger,
) *SyncWorker {
	hostname, _ := os.Hostname()
	consumerName := fmt.Sprintf("%s-%s", hostname, uuid.NewString())

	if streamName == "" {
		streamName = domain.StreamStationUpdates
	}

	return &SyncWorker{
		BaseWorker:   worker.NewBaseWorker("station-sync", consumerGroup, logger),
		streamRepo:   streamRepo,
		stationUC:    stationUC,
		clusterUC:    clusterUC,
		streamName:   streamName,
		consumerName: consumerName,
		maxRetries:   maxRetries,
	}
}

func (w *SyncWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting station sync worker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("stream", w.streamName),
		zap.String("consumer_name", w.consumerName))

	if err := w.streamRepo.CreateConsumerGroup(ctx, w.streamName, w.ConsumerGroup()); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	msgChan, err := w.streamRepo.ConsumeStream(ctx, w.streamName, w.ConsumerGroup(), w.consumerName)
	if err != nil {
		return fmt.Errorf("failed to consume stream: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		case msg, ok := <-msgChan:
			if !ok {
				logger.Info("Stream channel closed")
				return nil
			}
			w.handleMessage(ctx, msg)
		}
	}
}

func (w *SyncWorker) handleMessage(ctx context.Context, msg domain.StreamMessage) {
	logger := w.Logger()

	var event domain.StationUpdateEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		logger.Warn("Failed to parse event, skipping",
			zap.String("message_id", msg.ID),
			zap.Error(err))
		// Ack malformed messages so they don't wedge the group.
		w.ack(ctx, msg.ID)
		return
	}

	logger.Info("Station update received",
		zap.String("type", event.Type),
		zap.String("station_id", event.StationID))

	for attempt := 0; ; attempt++ {
		err := w.apply(ctx, &event)
		if err == nil {
			break
		}
		if attempt >= w.maxRetries {
			logger.Error("Giving up on station update",
				zap.String("station_id", event.StationID),
				zap.Int("attempts", attempt+1),
				zap.Error(err))
			break
		}
		logger.Warn("Retrying station update",
			zap.String("station_id", event.StationID),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
		select {
		case <-time.After(time.Second):
		case <-ctx.Done():
			return
		}
	}

	w.ack(ctx, msg.ID)
}

func (w *SyncWorker) apply(ctx context.Context, event *domain.StationUpdateEvent) error {
	if err := w.stationUC.InvalidateCaches(ctx); err != nil {
		return err
	}
	return w.clusterUC.Refresh(ctx)
}

func (w *SyncWorker) ack(ctx context.Context, messageID string) {
	if err := w.streamRepo.AckMessage(ctx, w.streamName, w.ConsumerGroup(), messageID); err != nil {
		w.Logger().Error("Failed to ack message",
			zap.String("message_id", messageID),
			zap.Error(err))
	}
}

package ingestion

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"shipment-tracker/internal/logger"
	"shipment-tracker/internal/metrics"
	"shipment-tracker/internal/usecase/controlunit"
)

const defaultProcessTimeout = 30 * time.Second

// BatchRecorder stores a batch after checking the unit identity.
type BatchRecorder interface {
	RecordBatch(ctx context.Context, tokenUnitID string, req *controlunit.BatchRequest, source string) (*controlunit.BatchResponse, error)
}

// TokenVerifier turns a control-unit token into the unit id it carries.
type TokenVerifier interface {
	ResolveControlUnit(token string) (string, error)
}

// Processor drains queued batch messages with a fixed pool of workers.
// Each message is stored in its own transaction.
type Processor struct {
	recorder BatchRecorder
	verifier TokenVerifier
	metrics  *metrics.IngestionMetrics
	log      *zap.Logger

	workerCount    int
	processTimeout time.Duration

	queue  chan *BatchMessage
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewProcessor(recorder BatchRecorder, verifier TokenVerifier, m *metrics.IngestionMetrics, workerCount, queueSize int) *Processor {
	if workerCount <= 0 {
		workerCount = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Processor{
		recorder:       recorder,
		verifier:       verifier,
		metrics:        m,
		log:            logger.Named("ingestion"),
		workerCount:    workerCount,
		processTimeout: defaultProcessTimeout,
		queue:          make(chan *BatchMessage, queueSize),
		ctx:            ctx,
		cancel:         cancel,
	}
}

func (p *Processor) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	p.log.Info("Ingestion processor started",
		zap.Int("workers", p.workerCount),
		zap.Int("queue_size", cap(p.queue)),
	)
}

// Stop refuses new messages, lets the workers finish what is queued and
// waits for them.
func (p *Processor) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()

	p.log.Info("Ingestion processor stopped")
}

// Submit queues msg without blocking. It returns false and counts a drop
// when the queue is full or the processor is stopped.
func (p *Processor) Submit(msg *BatchMessage) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.metrics.IncDropped()
		return false
	}

	select {
	case p.queue <- msg:
		return true
	default:
		p.metrics.IncDropped()
		p.log.Warn("Ingestion queue full, dropping message",
			zap.String("control_unit_id", msg.ControlUnitID),
		)
		return false
	}
}

func (p *Processor) worker(id int) {
	defer p.wg.Done()

	for msg := range p.queue {
		if err := p.process(msg); err != nil {
			p.log.Warn("Failed to process batch message",
				zap.Int("worker", id),
				zap.String("control_unit_id", msg.ControlUnitID),
				zap.Error(err),
			)
		}
	}
}

func (p *Processor) process(msg *BatchMessage) error {
	unitID, err := p.verifier.ResolveControlUnit(msg.Token)
	if err != nil {
		p.metrics.IncBatch(metrics.SourceMQTT, metrics.ResultRejected)
		return err
	}

	ctx, cancel := context.WithTimeout(p.ctx, p.processTimeout)
	defer cancel()

	resp, err := p.recorder.RecordBatch(ctx, unitID, &msg.BatchRequest, metrics.SourceMQTT)
	if err != nil {
		return err
	}

	p.log.Debug("Batch message stored",
		zap.String("control_unit_id", unitID),
		zap.Int("saved", resp.Saved),
	)
	return nil
}

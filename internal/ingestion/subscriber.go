package ingestion

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"shipment-tracker/internal/config"
	"shipment-tracker/internal/logger"
	pkgmqtt "shipment-tracker/pkg/mqtt"
)

// Subscriber feeds batch messages from the MQTT broker into a Processor.
type Subscriber struct {
	client    *pkgmqtt.Client
	processor *Processor
	topic     string
	qos       byte

	mu      sync.Mutex
	started bool
}

func NewSubscriber(cfg *config.MQTTConfig, processor *Processor) (*Subscriber, error) {
	if cfg == nil || !cfg.Enabled() {
		return nil, errors.New("mqtt broker is not configured")
	}
	if processor == nil {
		return nil, errors.New("processor is required")
	}
	if cfg.ReadingsTopic == "" {
		return nil, errors.New("mqtt readings topic is not configured")
	}
	if cfg.QoS < 0 || cfg.QoS > 2 {
		return nil, fmt.Errorf("invalid mqtt qos %d", cfg.QoS)
	}

	client := pkgmqtt.NewClient(pkgmqtt.DefaultConfig(cfg.Broker, cfg.ClientID, cfg.Username, cfg.Password))
	return &Subscriber{
		client:    client,
		processor: processor,
		topic:     cfg.ReadingsTopic,
		qos:       byte(cfg.QoS),
	}, nil
}

// Start starts the processor, connects and subscribes.
func (s *Subscriber) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.processor.Start()

	if err := s.client.Connect(); err != nil {
		s.processor.Stop()
		return err
	}

	if err := s.client.Subscribe(s.topic, s.qos, s.handleMessage); err != nil {
		s.client.Disconnect()
		s.processor.Stop()
		return err
	}

	s.started = true
	return nil
}

// Stop unsubscribes, disconnects and drains the processor.
func (s *Subscriber) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	if err := s.client.Unsubscribe(s.topic); err != nil {
		logger.Warn("Failed to unsubscribe from MQTT topic", zap.String("topic", s.topic), zap.Error(err))
	}
	s.client.Disconnect()
	s.processor.Stop()
	s.started = false
}

func (s *Subscriber) handleMessage(topic string, payload []byte) {
	msg, err := ParseBatchMessage(payload)
	if err != nil {
		logger.Warn("Invalid batch message",
			zap.String("topic", topic),
			zap.Int("bytes", len(payload)),
			zap.Error(err),
		)
		return
	}

	s.processor.Submit(msg)
}

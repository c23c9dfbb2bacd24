package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ReceiptEvent is emitted by the receipt service after each operation
type ReceiptEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	Source         string                 `json:"source"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of receipt event
type EventType string

const (
	// QualityChecked when a full quality check finishes
	QualityChecked EventType = "quality_checked"
	// QuickChecked when a preview-frame check finishes
	QuickChecked EventType = "quick_checked"
	// StoreMatched when store resolution finishes, matched or not
	StoreMatched EventType = "store_matched"
	// RecognitionCompleted when gate, OCR and resolution all ran
	RecognitionCompleted EventType = "recognition_completed"
	// RecognitionFailed when a recognition request is refused or errors
	RecognitionFailed EventType = "recognition_failed"
	// ImageFetched when a capture is downloaded from its source
	ImageFetched EventType = "image_fetched"
	// ImageFetchFailed when a capture download fails
	ImageFetchFailed EventType = "image_fetch_failed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event ReceiptEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event ReceiptEvent)
}

// LoggingObserver logs receipt events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles receipt events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event ReceiptEvent) {
	fields := logrus.Fields{
		"event_type":      event.EventType,
		"source":          event.Source,
		"processing_time": event.ProcessingTime,
		"success":         event.Success,
	}

	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case QualityChecked:
		entry.Info("Capture quality checked")
	case QuickChecked, ImageFetched:
		entry.Debug("Capture event")
	case StoreMatched:
		entry.Info("Store resolved")
	case RecognitionCompleted:
		entry.Info("Receipt recognized")
	case RecognitionFailed:
		entry.Warn("Receipt recognition failed")
	case ImageFetchFailed:
		entry.Error("Image fetch failed")
	default:
		entry.Info("Receipt event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver collects counters from receipt events
type MetricsObserver struct {
	mu                  sync.RWMutex
	counts              map[EventType]int64
	failures            map[EventType]int64
	goodQuality         int64
	matchTypes          map[string]int64
	totalProcessingTime time.Duration
	timedEvents         int64
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{
		counts:     make(map[EventType]int64),
		failures:   make(map[EventType]int64),
		matchTypes: make(map[string]int64),
	}
}

// OnEvent handles receipt events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event ReceiptEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.counts[event.EventType]++
	if !event.Success {
		o.failures[event.EventType]++
	}
	if event.ProcessingTime > 0 {
		o.totalProcessingTime += event.ProcessingTime
		o.timedEvents++
	}

	if good, ok := event.Metadata["is_good_quality"].(bool); ok && good && event.EventType == QualityChecked {
		o.goodQuality++
	}
	if matchType, ok := event.Metadata["match_type"].(string); ok {
		o.matchTypes[matchType]++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgProcessingTime := time.Duration(0)
	if o.timedEvents > 0 {
		avgProcessingTime = o.totalProcessingTime / time.Duration(o.timedEvents)
	}

	events := make(map[string]int64, len(o.counts))
	for k, v := range o.counts {
		events[string(k)] = v
	}
	failures := make(map[string]int64, len(o.failures))
	for k, v := range o.failures {
		failures[string(k)] = v
	}
	matchTypes := make(map[string]int64, len(o.matchTypes))
	for k, v := range o.matchTypes {
		matchTypes[k] = v
	}

	return map[string]interface{}{
		"events":                 events,
		"failures":               failures,
		"good_quality_captures":  o.goodQuality,
		"match_types":            matchTypes,
		"total_processing_time":  o.totalProcessingTime.String(),
		"avg_processing_time_ms": avgProcessingTime.Milliseconds(),
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() Subject {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers notifies all observers of an event.
// Observers run concurrently and never block the caller.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event ReceiptEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	// Request contexts are cancelled as soon as the handler returns
	ctx = context.WithoutCancel(ctx)

	for _, observer := range observers {
		go func(obs Observer) {
			defer func() {
				if r := recover(); r != nil {
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}

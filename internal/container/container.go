package container

import (
	"fmt"
	"net/http"

	"github.com/tomomini0815/ainance-v2-sub004/internal/analyzer"
	"github.com/tomomini0815/ainance-v2-sub004/internal/config"
	"github.com/tomomini0815/ainance-v2-sub004/internal/factory"
	"github.com/tomomini0815/ainance-v2-sub004/internal/logger"
	"github.com/tomomini0815/ainance-v2-sub004/internal/matcher"
	"github.com/tomomini0815/ainance-v2-sub004/internal/observer"
	"github.com/tomomini0815/ainance-v2-sub004/internal/repository"
	"github.com/tomomini0815/ainance-v2-sub004/internal/service"
	"github.com/tomomini0815/ainance-v2-sub004/internal/storage"
	"github.com/tomomini0815/ainance-v2-sub004/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config         *config.Config
	imageSource    storage.ImageSource
	qualityGate    analyzer.QualityAnalyzer
	storeResolver  *matcher.Resolver
	events         observer.Subject
	metrics        *observer.MetricsObserver
	receiptService service.ReceiptService
	handler        http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	components := factory.NewComponentFactory(cfg)
	storageType := factory.StorageType(cfg.StorageType)

	imageSource, err := components.CreateSource(storageType)
	if err != nil {
		return nil, fmt.Errorf("failed to create image source: %w", err)
	}
	qualityGate, err := components.CreateAnalyzer()
	if err != nil {
		return nil, fmt.Errorf("failed to create quality analyzer: %w", err)
	}
	storeResolver, err := components.CreateResolver()
	if err != nil {
		return nil, fmt.Errorf("failed to create store resolver: %w", err)
	}
	textRecognizer, err := components.CreateRecognizer()
	if err != nil {
		return nil, fmt.Errorf("failed to create text recognizer: %w", err)
	}

	events := observer.NewEventPublisher()
	metrics := observer.NewMetricsObserver()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	captures := repository.NewCaptureRepository(imageSource, components.CreateURLValidator(storageType), cfg.ImageFetchTimeout)
	receiptService := service.NewReceiptService(captures, qualityGate, storeResolver, textRecognizer, events, cfg.AnalysisTimeout)
	handler := transport.NewHandler(receiptService, metrics, cfg)

	return &Container{
		config:         cfg,
		imageSource:    imageSource,
		qualityGate:    qualityGate,
		storeResolver:  storeResolver,
		events:         events,
		metrics:        metrics,
		receiptService: receiptService,
		handler:        handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

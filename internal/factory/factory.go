package factory

import (
	"fmt"

	"github.com/tomomini0815/ainance-v2-sub004/internal/analyzer"
	"github.com/tomomini0815/ainance-v2-sub004/internal/config"
	"github.com/tomomini0815/ainance-v2-sub004/internal/matcher"
	"github.com/tomomini0815/ainance-v2-sub004/internal/recognizer"
	"github.com/tomomini0815/ainance-v2-sub004/internal/storage"
	"github.com/tomomini0815/ainance-v2-sub004/pkg/validation"
)

// StorageType represents different capture source backends
type StorageType string

const (
	// HTTPStorage fetches captures over plain http(s)
	HTTPStorage StorageType = "http"
	// AzureStorage fetches captures from Azure blob storage
	AzureStorage StorageType = "azure"
)

// azureBlobHosts restricts blob URLs to the public Azure endpoints
var azureBlobHosts = []string{".blob.core.windows.net"}

// ComponentFactory builds the configured implementations of each component
type ComponentFactory struct {
	cfg *config.Config
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(cfg *config.Config) *ComponentFactory {
	return &ComponentFactory{cfg: cfg}
}

// CreateSource creates the image source for the given backend
func (f *ComponentFactory) CreateSource(storageType StorageType) (storage.ImageSource, error) {
	switch storageType {
	case HTTPStorage:
		return storage.NewHTTPImageSource(f.cfg.ImageFetchTimeout, f.cfg.MaxRequestBodySize), nil
	case AzureStorage:
		return storage.NewAzureSource(f.cfg.AzureAccountName, f.cfg.AzureAccountKey, f.cfg.MaxRequestBodySize)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// CreateURLValidator creates the capture URL validator for the given backend.
// Blob sources only accept https URLs on blob endpoints unless hosts are configured.
func (f *ComponentFactory) CreateURLValidator(storageType StorageType) *validation.URLValidator {
	hosts := f.cfg.AllowedSourceHosts
	if storageType == AzureStorage {
		if len(hosts) == 0 {
			hosts = azureBlobHosts
		}
		return validation.NewURLValidatorWithOptions([]string{"https"}, hosts)
	}
	if len(hosts) == 0 {
		return validation.NewURLValidator()
	}
	return validation.NewURLValidatorWithOptions([]string{"http", "https"}, hosts)
}

// CreateAnalyzer creates the quality gate with the configured thresholds
func (f *ComponentFactory) CreateAnalyzer() (analyzer.QualityAnalyzer, error) {
	return analyzer.NewQualityAnalyzer(analyzer.DefaultOptions().WithThresholds(f.cfg.Quality))
}

// CreateResolver creates the store resolver. The built-in variations are
// extended from StoreVariationsFile when one is configured.
func (f *ComponentFactory) CreateResolver() (*matcher.Resolver, error) {
	variations := matcher.DefaultVariations()
	if f.cfg.StoreVariationsFile != "" {
		loaded, err := matcher.LoadVariations(f.cfg.StoreVariationsFile)
		if err != nil {
			return nil, err
		}
		variations = loaded
	}
	return matcher.NewResolver(variations, f.cfg.Match)
}

// CreateRecognizer creates the OCR engine for accepted captures
func (f *ComponentFactory) CreateRecognizer() (recognizer.TextRecognizer, error) {
	return recognizer.NewTesseractRecognizer(f.cfg.OCRLanguages)
}

package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomomini0815/ainance-v2-sub004/internal/config"
	apperrors "github.com/tomomini0815/ainance-v2-sub004/internal/errors"
	"github.com/tomomini0815/ainance-v2-sub004/internal/logger"
	"github.com/tomomini0815/ainance-v2-sub004/internal/service"
	"github.com/tomomini0815/ainance-v2-sub004/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// MetricsProvider exposes counters collected from service events
type MetricsProvider interface {
	GetMetrics() map[string]interface{}
}

func NewHandler(svc service.ReceiptService, metrics MetricsProvider, cfg *config.Config) http.Handler {
	r := gin.Default()

	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/health", healthCheck)
	r.GET("/metrics", metricsSnapshot(metrics))
	r.POST("/quality", checkQuality(svc, cfg))
	r.POST("/quality/quick", quickCheck(svc, cfg))
	r.POST("/stores/match", matchStore(svc, cfg))
	r.POST("/receipts/recognize", recognizeReceipt(svc, cfg))

	return r
}

func checkQuality(svc service.ReceiptService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req models.ImageRequest
		if !bindRequest(c, &req) {
			return
		}

		resp, err := svc.CheckQuality(ctx, req)
		if err != nil {
			respondError(c, determineStatusCode(err), "quality check failed", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"source_url":      req.URL,
			"overall_score":   resp.Report.OverallScore,
			"is_good_quality": resp.Report.IsGoodQuality,
			"warnings":        resp.Report.Warnings,
		}).Info("Quality check completed")

		c.JSON(http.StatusOK, resp)
	}
}

func quickCheck(svc service.ReceiptService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req models.ImageRequest
		if !bindRequest(c, &req) {
			return
		}

		result, err := svc.QuickCheck(ctx, req)
		if err != nil {
			respondError(c, determineStatusCode(err), "quick check failed", err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func matchStore(svc service.ReceiptService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req models.StoreMatchRequest
		if !bindRequest(c, &req) {
			return
		}

		resp, err := svc.MatchStore(ctx, req)
		if err != nil {
			respondError(c, determineStatusCode(err), "store match failed", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"known_stores": len(req.KnownStores),
			"store_name":   resp.Match.StoreName,
			"match_type":   resp.Match.MatchType,
			"confidence":   resp.Match.Confidence,
		}).Info("Store match completed")

		c.JSON(http.StatusOK, resp)
	}
}

func recognizeReceipt(svc service.ReceiptService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"user_agent": c.Request.UserAgent(),
			"ip":         c.ClientIP(),
		}).Info("Processing receipt recognition request")

		var req models.RecognizeRequest
		if !bindRequest(c, &req) {
			return
		}

		resp, err := svc.RecognizeReceipt(ctx, req)
		if err != nil {
			respondError(c, determineStatusCode(err), "receipt recognition failed", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"source_url":         req.URL,
			"forced":             req.Force,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
			"overall_score":      resp.Quality.OverallScore,
			"store_name":         resp.Store.Match.StoreName,
			"match_type":         resp.Store.Match.MatchType,
		}).Info("Receipt recognition completed successfully")

		c.JSON(http.StatusOK, resp)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func metricsSnapshot(metrics MetricsProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.JSON(http.StatusOK, gin.H{})
			return
		}
		c.JSON(http.StatusOK, metrics.GetMetrics())
	}
}

// bindRequest decodes the JSON body and responds on failure
func bindRequest(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		respondError(c, http.StatusRequestEntityTooLarge, "request body too large", err)
		return false
	}
	respondError(c, http.StatusBadRequest, "invalid request format", err)
	return false
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err.Err), "request processing failed", err.Err)
		}
	}
}

func determineStatusCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	resp := models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		resp.Message = fmt.Sprintf("%s: %s", message, appErr.Message)
		resp.Details = appErr.Details
	}

	c.AbortWithStatusJSON(code, resp)
}

package transport

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-card-grader/internal/config"
	apperrors "go-card-grader/internal/errors"
	"go-card-grader/internal/logger"
	"go-card-grader/internal/pipeline"
	"go-card-grader/internal/service"
	"go-card-grader/pkg/models"
)

// NewHandler builds the HTTP router.
func NewHandler(svc service.CardAnalysisService, cfg *config.Config) http.Handler {
	r := gin.Default()

	r.Use(requestSizeLimiter(cfg.MaxRequestBodySize))

	r.GET("/health", healthCheck)
	r.POST("/analyze", analyzeCard(svc))

	return r
}

func analyzeCard(svc service.CardAnalysisService) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"user_agent": c.Request.UserAgent(),
			"ip":         c.ClientIP(),
		}).Info("Processing card analysis request")

		var req models.AnalysisRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.WithError(err).WithField("ip", c.ClientIP()).Error("Invalid request format")
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		// Progress events are logged as they happen; the final state of
		// every step also rides along in the response.
		sink := pipeline.ProgressSink(func(step, detail string) {
			logger.WithFields(logrus.Fields{
				"step":   step,
				"detail": detail,
			}).Debug("Analysis progress")
		})

		result, err := svc.Analyze(c.Request.Context(), req, sink)
		if err != nil {
			respondError(c, determineStatusCode(err), "card analysis failed", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"analysis_id":        result.ID,
			"grade":              result.Grade.Grade,
			"card_name":          result.CardDetails.Name,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Card analysis completed successfully")

		c.JSON(http.StatusOK, result)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func determineStatusCode(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return apperrors.GetStatusCode(err)
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

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: message + ": " + err.Error(),
	})
}

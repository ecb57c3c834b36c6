package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"template-service/middleware"
	"template-service/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExportJobHandler enqueues async exports and reports their status. Job
// state lives in Redis; the worker picks jobs off the queue and parks the
// finished file in blob storage.
type ExportJobHandler struct {
	exportService ExportServiceAPI
	redis         *redis.Client
	validator     *RequestValidator
	timeout       time.Duration
}

func NewExportJobHandler(es ExportServiceAPI, rdb *redis.Client, validator *RequestValidator) *ExportJobHandler {
	return &ExportJobHandler{
		exportService: es,
		redis:         rdb,
		validator:     validator,
		timeout:       DefaultContextTimeout,
	}
}

// CreateExportJob queues an export and returns the job ID.
func (h *ExportJobHandler) CreateExportJob(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	id, ok := parseTemplateID(c)
	if !ok {
		return
	}

	opts, err := h.validator.ParseExportJobRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	jobID, err := h.enqueueJob(ctx, userID, id, opts)
	if err != nil {
		zap.L().Error("Failed to enqueue export job", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue export job"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"job_id":  jobID,
		"message": "Export queued for processing",
	})
}

// GetExportJobStatus returns the job status/result stored in Redis.
func (h *ExportJobHandler) GetExportJobStatus(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Job ID required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	jobKey := fmt.Sprintf(services.ExportJobKeyFmt, id)
	val, err := h.redis.Get(ctx, jobKey).Result()
	if err == redis.Nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	if err != nil {
		zap.L().Error("Failed to get export job status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve job status"})
		return
	}

	var jobStatus map[string]interface{}
	if err := json.Unmarshal([]byte(val), &jobStatus); err != nil {
		zap.L().Error("Failed to parse export job status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse job result"})
		return
	}

	c.JSON(http.StatusOK, jobStatus)
}

func (h *ExportJobHandler) enqueueJob(ctx context.Context, userID string, templateID uuid.UUID, opts services.ExportOptions) (string, error) {
	jobID := uuid.New().String()
	jobKey := fmt.Sprintf(services.ExportJobKeyFmt, jobID)

	jobInfo := map[string]interface{}{
		"status":        "pending",
		"created_at":    time.Now().UTC().Format(time.RFC3339),
		"template_id":   templateID.String(),
		"user_id":       userID,
		"only_updated":  opts.OnlyUpdated,
		"dedupe_images": opts.DedupeImages,
	}
	if len(opts.ExtraOverrides) > 0 {
		jobInfo["export_overrides"] = opts.ExtraOverrides
	}
	jobData, err := json.Marshal(jobInfo)
	if err != nil {
		return "", fmt.Errorf("failed to marshal job info: %w", err)
	}

	if err := h.redis.Set(ctx, jobKey, jobData, 24*time.Hour).Err(); err != nil {
		return "", fmt.Errorf("failed to store job metadata: %w", err)
	}
	if err := h.redis.RPush(ctx, services.ExportQueueKey, jobID).Err(); err != nil {
		h.redis.Del(ctx, jobKey)
		return "", fmt.Errorf("failed to enqueue job: %w", err)
	}

	zap.L().Info("export job queued", zap.String("job_id", jobID), zap.String("template", templateID.String()))
	return jobID, nil
}

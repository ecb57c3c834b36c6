package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"template-service/models"
	"template-service/storage"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ExportQueueKey  = "export:queue"
	ExportJobKeyFmt = "export:job:%s"
	exportJobTTL    = 24 * time.Hour
)

// StartExportWorker starts a background worker that consumes export job IDs
// from the Redis queue, builds the export and parks the file in blob storage
// with a presigned download URL in the job status.
func StartExportWorker(ctx context.Context, rdb *redis.Client, exportSvc *ExportService, blob storage.BlobStore) {
	if rdb == nil || exportSvc == nil || blob == nil {
		zap.L().Warn("export worker not started: missing dependencies")
		return
	}

	go func() {
		zap.L().Info("export worker started", zap.String("queue", ExportQueueKey))
		for {
			select {
			case <-ctx.Done():
				zap.L().Info("export worker stopping")
				return
			default:
			}

			// BLPop with no timeout blocks until an item is available
			res, err := rdb.BLPop(ctx, 0*time.Second, ExportQueueKey).Result()
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return
				}
				zap.L().Error("redis BLPop failed", zap.Error(err))
				time.Sleep(500 * time.Millisecond)
				continue
			}
			if len(res) < 2 {
				continue
			}
			processExportJob(ctx, rdb, exportSvc, blob, res[1])
		}
	}()
}

func processExportJob(ctx context.Context, rdb *redis.Client, exportSvc *ExportService, blob storage.BlobStore, jobID string) {
	jobKey := fmt.Sprintf(ExportJobKeyFmt, jobID)

	val, err := rdb.Get(ctx, jobKey).Result()
	if err != nil {
		zap.L().Error("failed to read export job metadata", zap.String("job", jobID), zap.Error(err))
		return
	}
	var meta map[string]interface{}
	if err := json.Unmarshal([]byte(val), &meta); err != nil {
		zap.L().Error("failed to parse export job metadata", zap.String("job", jobID), zap.Error(err))
		return
	}

	meta["status"] = "processing"
	writeJobMeta(ctx, rdb, jobKey, meta)

	templateID, err := uuid.Parse(stringField(meta, "template_id"))
	if err != nil {
		failJob(ctx, rdb, jobKey, meta, fmt.Errorf("invalid template id: %w", err))
		return
	}
	userID := stringField(meta, "user_id")
	opts := ExportOptions{
		OnlyUpdated:    boolField(meta, "only_updated"),
		DedupeImages:   boolField(meta, "dedupe_images"),
		ExtraOverrides: overridesField(meta, "export_overrides"),
	}

	file, err := exportSvc.BuildExport(ctx, userID, templateID, opts)
	if err != nil {
		zap.L().Error("export job failed", zap.String("job", jobID), zap.Error(err))
		failJob(ctx, rdb, jobKey, meta, err)
		return
	}

	resultKey := fmt.Sprintf("exports/%s/%s", jobID, file.Filename)
	if err := blob.Upload(ctx, resultKey, file.Data, file.ContentType); err != nil {
		zap.L().Error("failed to store export result", zap.String("job", jobID), zap.Error(err))
		failJob(ctx, rdb, jobKey, meta, err)
		return
	}

	downloadURL, err := blob.PresignGet(ctx, resultKey, exportJobTTL)
	if err != nil {
		zap.L().Error("failed to presign export result", zap.String("job", jobID), zap.Error(err))
		failJob(ctx, rdb, jobKey, meta, err)
		return
	}

	meta["status"] = "done"
	meta["filename"] = file.Filename
	meta["download_url"] = downloadURL
	writeJobMeta(ctx, rdb, jobKey, meta)
	zap.L().Info("export job finished", zap.String("job", jobID), zap.String("file", file.Filename))
}

func failJob(ctx context.Context, rdb *redis.Client, jobKey string, meta map[string]interface{}, cause error) {
	meta["status"] = "failed"
	meta["error"] = cause.Error()
	writeJobMeta(ctx, rdb, jobKey, meta)
}

func writeJobMeta(ctx context.Context, rdb *redis.Client, jobKey string, meta map[string]interface{}) {
	b, err := json.Marshal(meta)
	if err != nil {
		zap.L().Error("failed to marshal export job metadata", zap.Error(err))
		return
	}
	if err := rdb.Set(ctx, jobKey, b, exportJobTTL).Err(); err != nil {
		zap.L().Error("failed to write export job metadata", zap.Error(err))
	}
}

func stringField(meta map[string]interface{}, key string) string {
	v, _ := meta[key].(string)
	return v
}

// overridesField recovers the request-scoped override map from the job
// metadata by round-tripping the decoded value through JSON.
func overridesField(meta map[string]interface{}, key string) map[string]models.ExportOverride {
	raw, ok := meta[key]
	if !ok || raw == nil {
		return nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		zap.L().Warn("ignoring malformed export overrides in job metadata", zap.Error(err))
		return nil
	}
	var overrides map[string]models.ExportOverride
	if err := json.Unmarshal(b, &overrides); err != nil {
		zap.L().Warn("ignoring malformed export overrides in job metadata", zap.Error(err))
		return nil
	}
	return overrides
}

func boolField(meta map[string]interface{}, key string) bool {
	switch v := meta[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

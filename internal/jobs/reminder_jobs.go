package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"munlink-backend/internal/logger"
)

type pendingUpload struct {
	id     int32
	userID int32
	number string
}

type pendingUploadSource struct {
	kind      string
	label     string
	query     string
	retryPath string
}

var pendingUploadSources = []pendingUploadSource{
	{
		kind:  "document_request",
		label: "document request",
		query: `SELECT id, user_id, request_number FROM document_requests
			WHERE documents_pending = TRUE AND status NOT IN ('completed', 'rejected') AND updated_at < $1
			ORDER BY id`,
		retryPath: "/document-requests/%d/requirements",
	},
	{
		kind:  "application",
		label: "application",
		query: `SELECT id, user_id, application_number FROM applications
			WHERE documents_pending = TRUE AND status NOT IN ('approved', 'rejected') AND updated_at < $1
			ORDER BY id`,
		retryPath: "/applications/%d/documents",
	},
}

// RemindPendingUploads notifies residents whose records still wait for files
// after the configured grace period, pointing at the retry endpoint.
func (jr *JobRunner) RemindPendingUploads() error {
	return jr.runWithRecovery(JobRemindPendingUploads, func(ctx context.Context) error {
		hours := jr.config.Scheduler.PendingUploadHours
		if hours <= 0 {
			hours = 24
		}
		cutoff := jr.now().UTC().Add(-time.Duration(hours) * time.Hour)

		var errs []error
		sent := 0
		for _, src := range pendingUploadSources {
			records, err := jr.pendingUploads(ctx, src.query, cutoff)
			if err != nil {
				errs = append(errs, fmt.Errorf("failed to query pending %s uploads: %w", src.label, err))
				continue
			}
			for _, rec := range records {
				path := fmt.Sprintf(src.retryPath, rec.id)
				msg := fmt.Sprintf("Your %s %s is still waiting for its documents. Upload them to continue processing.", src.label, rec.number)
				err := jr.services.Notifications.Notify(ctx, rec.userID, "Documents still needed", msg, map[string]string{
					"kind":       src.kind,
					"record_id":  fmt.Sprint(rec.id),
					"retry_path": path,
				})
				if err != nil {
					logger.WarnContext(ctx, "Failed to send upload reminder", "kind", src.kind, "recordID", rec.id, "error", err)
					continue
				}
				sent++
			}
		}
		logger.InfoContext(ctx, "Sent pending upload reminders", "count", sent)
		return errors.Join(errs...)
	})
}

func (jr *JobRunner) pendingUploads(ctx context.Context, query string, cutoff time.Time) ([]pendingUpload, error) {
	logger.DatabaseCall("SELECT", query, "cutoff", cutoff)
	rows, err := jr.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []pendingUpload
	for rows.Next() {
		var p pendingUpload
		if err := rows.Scan(&p.id, &p.userID, &p.number); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

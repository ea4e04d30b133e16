package mpa

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	api "MarginSight/api"
	"MarginSight/api/constants"
	"MarginSight/api/mpa/analysisconfig"
	"MarginSight/api/mpa/model"
	"MarginSight/api/mpa/store"
)

type processRequest struct {
	BatchID string `json:"batch_id"`
}

// ProcessBatch runs the full monthly analysis for an uploaded batch. Input
// problems (bad workbooks, missing columns, reconciliation failures) come
// back as 400 with the specific message; anything else is a 500 without
// internal detail. Either way the batch is marked failed with the message
// recorded.
func ProcessBatch(pool *pgxpool.Pool, db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			api.RespondWithError(w, http.StatusMethodNotAllowed, constants.ErrMethodNotAllowed)
			return
		}
		var req processRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BatchID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrBatchIDRequired)
			return
		}
		if _, err := uuid.Parse(req.BatchID); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "batch_id must be a UUID")
			return
		}

		st := store.New(pool)
		batch, err := st.GetBatch(r.Context(), req.BatchID)
		if errors.Is(err, store.ErrBatchNotFound) {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrBatchNotFound)
			return
		}
		if err != nil {
			api.LogError("get batch %s: %v", req.BatchID, err)
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		if batch.ProFormaFilePath == "" || batch.CompensationFilePath == "" ||
			batch.HoursFilePath == "" || batch.ExpensesFilePath == "" || batch.PnLFilePath == "" {
			api.RespondWithError(w, http.StatusBadRequest, "batch is missing one or more input files")
			return
		}

		if err := st.UpdateBatchStatus(r.Context(), batch.ID, constants.BatchStatusProcessing, nil); err != nil {
			api.LogError("mark batch %s processing: %v", batch.ID, err)
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		api.LogInfo("[AUDIT] batch %s (%s): processing started", batch.ID, batch.MonthName)

		failBatch := func(msg string) {
			if err := st.UpdateBatchStatus(r.Context(), batch.ID, constants.BatchStatusFailed, &msg); err != nil {
				api.LogError("mark batch %s failed: %v", batch.ID, err)
			}
		}

		cfg, err := analysisconfig.Load(db)
		if err != nil {
			api.LogError("load analysis config: %v", err)
			failBatch("analysis configuration unavailable")
			api.RespondWithError(w, http.StatusInternalServerError, "analysis configuration unavailable")
			return
		}
		files, err := store.NewFileStoreFromEnv()
		if err != nil {
			api.LogError("file store: %v", err)
			failBatch("file storage unavailable")
			api.RespondWithError(w, http.StatusInternalServerError, "file storage unavailable")
			return
		}

		pipeline := &Pipeline{Files: files, Config: cfg}
		results, validation, logs, err := pipeline.Run(r.Context(), batch)
		if err != nil {
			api.LogError("batch %s failed: %v", batch.ID, err)
			failBatch(err.Error())
			if model.IsInputError(err) {
				api.RespondWithPayload(w, http.StatusBadRequest, map[string]interface{}{
					"success": false,
					"error":   err.Error(),
					"logs":    logs,
				})
				return
			}
			api.RespondWithError(w, http.StatusInternalServerError, "batch processing failed")
			return
		}

		if err := st.SaveResults(r.Context(), batch.ID, results); err != nil {
			api.LogError("save batch %s results: %v", batch.ID, err)
			failBatch("failed to persist results")
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		api.LogInfo("[AUDIT] batch %s (%s): completed, %s", batch.ID, batch.MonthName, validation.Summary())

		api.RespondWithPayload(w, http.StatusOK, map[string]interface{}{
			"batch_id": batch.ID,
			"month":    batch.MonthName,
			"summary":  results.Summary,
			"validation": map[string]interface{}{
				"passed":  validation.Passed(),
				"summary": validation.Summary(),
				"items":   validation.ToItems(),
			},
			"logs": logs,
		})
	}
}

package mpa

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	api "MarginSight/api"
	"MarginSight/api/constants"
	"MarginSight/api/mpa/store"
)

// GetBatchResults returns the persisted analysis for a completed batch.
func GetBatchResults(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batchID := mux.Vars(r)["id"]
		if batchID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrBatchIDRequired)
			return
		}

		st := store.New(pool)
		batch, err := st.GetBatch(r.Context(), batchID)
		if errors.Is(err, store.ErrBatchNotFound) {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrBatchNotFound)
			return
		}
		if err != nil {
			api.LogError("get batch %s: %v", batchID, err)
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		if batch.Status != constants.BatchStatusCompleted {
			api.RespondWithPayload(w, http.StatusOK, map[string]interface{}{
				"batch_id": batch.ID,
				"month":    batch.MonthName,
				"status":   batch.Status,
				"error":    batch.ErrorMessage,
			})
			return
		}

		results, err := st.GetBatchResults(r.Context(), batchID)
		if err != nil {
			api.LogError("read batch %s results: %v", batchID, err)
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		api.RespondWithPayload(w, http.StatusOK, map[string]interface{}{
			"batch_id":            batch.ID,
			"month":               batch.MonthName,
			"status":              batch.Status,
			"processed_at":        batch.ProcessedAt,
			"revenue_centers":     results.RevenueCenters,
			"cost_centers":        results.CostCenters,
			"non_revenue_clients": results.NonRevenueClients,
			"pools":               results.Pools,
			"tagged_revenue":      results.TaggedRevenue,
		})
	}
}

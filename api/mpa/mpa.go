package mpa

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StartMPAService runs the analysis HTTP service.
func StartMPAService(port string, db *sql.DB, pool *pgxpool.Pool) {
	router := mux.NewRouter()

	router.HandleFunc("/mpa/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("MPA Service is active"))
	}).Methods("GET")
	router.Handle("/mpa/process", ProcessBatch(pool, db)).Methods("POST", "OPTIONS")
	router.Handle("/mpa/batches/{id}/results", GetBatchResults(pool)).Methods("GET", "OPTIONS")

	log.Printf("[INFO] MPA service listening on :%s", port)
	log.Fatal(http.ListenAndServe(":"+port, withCORS(router)))
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

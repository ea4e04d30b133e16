package mpa

import (
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"MarginSight/internal/serviceiface"
)

type MPAService struct {
	config map[string]interface{}
	db     *sql.DB
	pool   *pgxpool.Pool
}

func NewMPAService(cfg map[string]interface{}, db *sql.DB, pool *pgxpool.Pool) serviceiface.Service {
	return &MPAService{config: cfg, db: db, pool: pool}
}

func (s *MPAService) Name() string {
	return "mpa"
}

func (s *MPAService) Start() error {
	port := "5143"
	if s.config != nil {
		if v, ok := s.config["port"]; ok && v != nil {
			port = fmt.Sprintf("%v", v)
		}
	}
	go StartMPAService(port, s.db, s.pool)
	return nil
}

func (s *MPAService) Stop() error {
	// Implement stop logic if needed
	return nil
}

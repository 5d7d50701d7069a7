package database

import (
	"database/sql"
)

type PgDmHubRepository struct {
	conn *sql.DB
}

func NewPgDmHubRepository(dsn string) (*PgDmHubRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &PgDmHubRepository{conn: db}, nil
}

func (db *PgDmHubRepository) Ping() error {
	return db.conn.Ping()
}

func (db *PgDmHubRepository) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

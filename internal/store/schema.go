package store

import (
	"context"
	"fmt"
)

// schemaDDL is the full Pantry schema. Statements are idempotent so Migrate can
// run on every startup. The employees and shifts tables carry scheduling data
// for the raw-query surface; Pantry itself only reads them.
var schemaDDL = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,

	`CREATE TABLE IF NOT EXISTS items (
		id          varchar(191) PRIMARY KEY,
		name        text NOT NULL,
		price       integer NOT NULL DEFAULT 0 CHECK (price >= 0),
		description text NOT NULL,
		created_at  timestamptz NOT NULL DEFAULT now(),
		updated_at  timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS item_embeddings (
		id        varchar(191) PRIMARY KEY,
		item_id   varchar(191) REFERENCES items(id) ON DELETE CASCADE,
		content   text NOT NULL,
		embedding vector(1536) NOT NULL,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS item_embeddings_item_id_idx ON item_embeddings (item_id)`,

	`CREATE INDEX IF NOT EXISTS item_embeddings_embedding_idx
		ON item_embeddings USING hnsw (embedding vector_cosine_ops)`,

	`CREATE TABLE IF NOT EXISTS employees (
		id                varchar(191) PRIMARY KEY,
		employee_code     varchar(50) NOT NULL UNIQUE,
		first_name        varchar(100) NOT NULL,
		last_name         varchar(100) NOT NULL,
		email             varchar(255) NOT NULL UNIQUE,
		phone             varchar(20),
		role              varchar(50) NOT NULL,
		department        varchar(50) NOT NULL,
		hourly_rate       numeric(10,2) NOT NULL,
		overtime_rate     numeric(10,2),
		employment_type   varchar(20) NOT NULL,
		employment_status varchar(20) NOT NULL DEFAULT 'active',
		hire_date         timestamptz NOT NULL,
		termination_date  timestamptz,
		max_hours_per_week integer DEFAULT 40,
		can_work_weekends boolean NOT NULL DEFAULT true,
		preferred_shift   varchar(20),
		notes             text,
		created_at        timestamptz NOT NULL DEFAULT now(),
		updated_at        timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS shifts (
		id                   varchar(191) PRIMARY KEY,
		employee_id          varchar(191) NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		shift_date           timestamptz NOT NULL,
		scheduled_start_time timestamptz NOT NULL,
		scheduled_end_time   timestamptz NOT NULL,
		actual_start_time    timestamptz,
		actual_end_time      timestamptz,
		break_duration       integer DEFAULT 0,
		status               varchar(20) NOT NULL DEFAULT 'scheduled',
		shift_type           varchar(20) NOT NULL DEFAULT 'regular',
		role                 varchar(50) NOT NULL,
		station              varchar(100),
		scheduled_hours      numeric(5,2) NOT NULL,
		actual_hours         numeric(5,2),
		hourly_rate          numeric(10,2) NOT NULL,
		total_pay            numeric(10,2),
		sales_generated      numeric(10,2),
		customers_served     integer,
		manager_notes        text,
		created_at           timestamptz NOT NULL DEFAULT now(),
		updated_at           timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS shifts_employee_id_idx ON shifts (employee_id)`,
}

// Migrate applies the Pantry schema.
func Migrate(ctx context.Context, db *DB) error {
	for _, stmt := range schemaDDL {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}

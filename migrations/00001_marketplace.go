package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upMarketplace, downMarketplace)
}

func upMarketplace(ctx context.Context, tx *sql.Tx) error {
	createVideosTable := `
	CREATE TABLE videos (
		id UUID PRIMARY KEY,
		backend VARCHAR(10) NOT NULL,
		contract VARCHAR(100) NOT NULL,
		chain_video_id BIGINT NOT NULL,
		uploader VARCHAR(100) NOT NULL,
		content_hash VARCHAR(100) NOT NULL,
		thumbnail_hash VARCHAR(100),
		title VARCHAR(255),
		description TEXT,
		price NUMERIC(78,0) NOT NULL,
		display_time BIGINT,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		total_views NUMERIC(78,0) NOT NULL DEFAULT 0,
		total_revenue NUMERIC(78,0) NOT NULL DEFAULT 0,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		CONSTRAINT idx_video_chain UNIQUE (backend, contract, chain_video_id)
	);
	`
	if _, err := tx.ExecContext(ctx, createVideosTable); err != nil {
		return fmt.Errorf("could not create videos table: %w", err)
	}

	createEntitlementsTable := `
	CREATE TABLE entitlements (
		id UUID PRIMARY KEY,
		viewer VARCHAR(100) NOT NULL,
		backend VARCHAR(10) NOT NULL,
		contract VARCHAR(100) NOT NULL,
		video_id BIGINT NOT NULL,
		content_hash VARCHAR(100) NOT NULL,
		granted BOOLEAN NOT NULL DEFAULT TRUE,
		tx_hash VARCHAR(130),
		granted_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		CONSTRAINT idx_entitlement_pair UNIQUE (viewer, backend, contract, video_id)
	);
	`
	if _, err := tx.ExecContext(ctx, createEntitlementsTable); err != nil {
		return fmt.Errorf("could not create entitlements table: %w", err)
	}

	createPendingTable := `
	CREATE TABLE pending_transactions (
		id UUID PRIMARY KEY,
		kind VARCHAR(30) NOT NULL,
		backend VARCHAR(10) NOT NULL,
		contract VARCHAR(100) NOT NULL,
		video_id BIGINT,
		sender VARCHAR(100),
		payload BYTEA,
		value NUMERIC(78,0) NOT NULL DEFAULT 0,
		observed_effect VARCHAR(100),
		baseline NUMERIC(78,0),
		target NUMERIC(78,0),
		tx_hash VARCHAR(130),
		status VARCHAR(20) NOT NULL,
		submitted_at TIMESTAMP WITH TIME ZONE,
		valid_until TIMESTAMP WITH TIME ZONE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);
	CREATE INDEX idx_pending_transactions_status ON pending_transactions (status);
	CREATE INDEX idx_pending_transactions_valid_until ON pending_transactions (valid_until);
	`
	if _, err := tx.ExecContext(ctx, createPendingTable); err != nil {
		return fmt.Errorf("could not create pending_transactions table: %w", err)
	}
	return nil
}

func downMarketplace(ctx context.Context, tx *sql.Tx) error {
	dropTables := []string{"pending_transactions", "entitlements", "videos"}
	for _, table := range dropTables {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s;", table)); err != nil {
			return fmt.Errorf("could not drop table %s: %w", table, err)
		}
	}
	return nil
}

package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

var campaignSchemaPostgres = []string{
	`CREATE TABLE IF NOT EXISTS campaigns (
        id TEXT PRIMARY KEY,
        user_id TEXT NOT NULL,
        name TEXT NOT NULL,
        policy TEXT NOT NULL,
        interval_unit TEXT NULL,
        interval_magnitude INTEGER NULL,
        start_at TIMESTAMPTZ NULL,
        status TEXT NOT NULL,
        post_count INTEGER NOT NULL DEFAULT 0,
        created_at TIMESTAMPTZ NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_campaigns_user_created ON campaigns(user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS scheduled_posts (
        id BIGSERIAL PRIMARY KEY,
        campaign_id TEXT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
        post_key TEXT NOT NULL,
        content_id TEXT NOT NULL,
        destination_id TEXT NOT NULL,
        sequence INTEGER NOT NULL,
        scheduled_at TIMESTAMPTZ NOT NULL,
        status TEXT NOT NULL,
        external_ref TEXT NULL,
        error_message TEXT NULL,
        attempts INTEGER NOT NULL DEFAULT 0,
        claimed_at TIMESTAMPTZ NULL,
        created_at TIMESTAMPTZ NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL,
        UNIQUE (campaign_id, sequence)
    )`,
	`CREATE INDEX IF NOT EXISTS idx_scheduled_posts_due ON scheduled_posts(status, scheduled_at)`,
}

// EnsureCampaignSchema creates the campaign tables on PostgreSQL. Safe to call at every startup.
func EnsureCampaignSchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, ddl := range campaignSchemaPostgres {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("ensure campaign schema: %w", err)
		}
	}
	return nil
}

var campaignSchemaMSSQL = []string{
	`IF OBJECT_ID('dbo.campaigns', 'U') IS NULL
CREATE TABLE dbo.[campaigns] (
  id NVARCHAR(64) NOT NULL PRIMARY KEY,
  user_id NVARCHAR(64) NOT NULL,
  name NVARCHAR(255) NOT NULL,
  policy NVARCHAR(16) NOT NULL,
  interval_unit NVARCHAR(16) NULL,
  interval_magnitude INT NULL,
  start_at DATETIMEOFFSET NULL,
  status NVARCHAR(16) NOT NULL,
  post_count INT NOT NULL DEFAULT 0,
  created_at DATETIMEOFFSET NOT NULL,
  updated_at DATETIMEOFFSET NOT NULL
)`,
	`IF OBJECT_ID('dbo.scheduled_posts', 'U') IS NULL
CREATE TABLE dbo.[scheduled_posts] (
  id BIGINT IDENTITY(1,1) NOT NULL PRIMARY KEY,
  campaign_id NVARCHAR(64) NOT NULL REFERENCES dbo.[campaigns](id) ON DELETE CASCADE,
  post_key NVARCHAR(255) NOT NULL,
  content_id NVARCHAR(64) NOT NULL,
  destination_id NVARCHAR(64) NOT NULL,
  sequence INT NOT NULL,
  scheduled_at DATETIMEOFFSET NOT NULL,
  status NVARCHAR(16) NOT NULL,
  external_ref NVARCHAR(512) NULL,
  error_message NVARCHAR(MAX) NULL,
  attempts INT NOT NULL DEFAULT 0,
  claimed_at DATETIMEOFFSET NULL,
  created_at DATETIMEOFFSET NOT NULL,
  updated_at DATETIMEOFFSET NOT NULL,
  CONSTRAINT uq_scheduled_posts_campaign_sequence UNIQUE (campaign_id, sequence)
)`,
}

// EnsureCampaignSchemaMSSQL is the SQL Server counterpart of EnsureCampaignSchema
func EnsureCampaignSchemaMSSQL(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, ddl := range campaignSchemaMSSQL {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("ensure campaign schema (mssql): %w", err)
		}
	}
	return nil
}

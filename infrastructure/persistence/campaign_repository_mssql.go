package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"clipcast/domain/model"
	"clipcast/domain/repository"
)

// CampaignRepositoryMSSQL implements campaign persistence for SQL Server/Azure SQL
type CampaignRepositoryMSSQL struct{ db *sql.DB }

func NewCampaignRepositoryMSSQL(db *sql.DB) *CampaignRepositoryMSSQL {
	return &CampaignRepositoryMSSQL{db: db}
}

var _ repository.ICampaign = (*CampaignRepositoryMSSQL)(nil)

func (r *CampaignRepositoryMSSQL) CreateWithPosts(ctx context.Context, c *model.Campaign, posts []model.ScheduledPost) (err error) {
	stampCampaign(c, posts, time.Now().UTC())

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `INSERT INTO dbo.[campaigns] (`+campaignColumns+`) VALUES (@p1, @p2, @p3, @p4, @p5, @p6, @p7, @p8, @p9, @p10, @p11)`,
		c.ID, c.UserID, c.Name, c.Policy, c.IntervalUnit, c.IntervalMagnitude, c.StartAt, string(c.Status), c.PostCount, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}

	q := `INSERT INTO dbo.[scheduled_posts] (campaign_id, post_key, content_id, destination_id, sequence, scheduled_at, status, attempts, created_at, updated_at)
OUTPUT INSERTED.id
VALUES (@p1, @p2, @p3, @p4, @p5, @p6, @p7, 0, @p8, @p8)`
	for i := range posts {
		p := &posts[i]
		if err = tx.QueryRowContext(ctx, q, c.ID, p.Key, p.ContentID, p.DestinationID, p.Sequence, p.ScheduledAt, string(p.Status), p.CreatedAt).Scan(&p.ID); err != nil {
			return fmt.Errorf("insert post %s: %w", p.Key, err)
		}
	}
	return tx.Commit()
}

func (r *CampaignRepositoryMSSQL) GetCampaign(ctx context.Context, userID, campaignID string) (*model.Campaign, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+campaignColumns+` FROM dbo.[campaigns] WHERE id = @p1 AND user_id = @p2`, campaignID, userID)
	c, err := scanCampaign(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("campaign %s: %w", campaignID, repository.ErrNotFound)
	}
	return c, err
}

func (r *CampaignRepositoryMSSQL) ListCampaigns(ctx context.Context, userID string, limit int) ([]*model.Campaign, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT TOP (@p2) `+campaignColumns+` FROM dbo.[campaigns] WHERE user_id = @p1 ORDER BY created_at DESC`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*model.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *CampaignRepositoryMSSQL) ListPosts(ctx context.Context, campaignID string) ([]model.ScheduledPost, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+postColumns+` FROM dbo.[scheduled_posts] p WHERE p.campaign_id = @p1 ORDER BY p.sequence ASC`, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []model.ScheduledPost
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *CampaignRepositoryMSSQL) FetchDuePosts(ctx context.Context, now time.Time, limit int) ([]model.DuePost, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT TOP (@p2) `+postColumns+`, c.user_id FROM dbo.[scheduled_posts] p
JOIN dbo.[campaigns] c ON c.id = p.campaign_id
WHERE (p.status = 'scheduled' AND p.scheduled_at <= @p1)
   OR (p.status = 'posting' AND (p.claimed_at IS NULL OR p.claimed_at < @p3))
ORDER BY p.scheduled_at ASC, p.sequence ASC`, now, limit, now.Add(-postClaimLease))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDuePosts(rows)
}

func (r *CampaignRepositoryMSSQL) ClaimPost(ctx context.Context, postID int64, attempts int) (bool, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `UPDATE dbo.[scheduled_posts] SET status = 'posting', attempts = attempts + 1, claimed_at = @p1, updated_at = @p1
WHERE id = @p2 AND attempts = @p3
  AND (status = 'scheduled' OR (status = 'posting' AND (claimed_at IS NULL OR claimed_at < @p4)))`,
		now, postID, attempts, now.Add(-postClaimLease))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *CampaignRepositoryMSSQL) MarkPostResult(ctx context.Context, postID int64, status model.PostStatus, externalRef, errMsg *string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE dbo.[scheduled_posts] SET status = @p1, external_ref = @p2, error_message = @p3, updated_at = @p4 WHERE id = @p5`,
		string(status), externalRef, errMsg, time.Now().UTC(), postID)
	return err
}

func (r *CampaignRepositoryMSSQL) CompleteFinishedCampaigns(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE c SET c.status = 'completed', c.updated_at = @p1
FROM dbo.[campaigns] c
WHERE c.status <> 'completed' AND NOT EXISTS (
  SELECT 1 FROM dbo.[scheduled_posts] p WHERE p.campaign_id = c.id AND p.status IN ('scheduled', 'posting'))`, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

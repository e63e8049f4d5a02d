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

const postColumns = `p.id, p.campaign_id, p.post_key, p.content_id, p.destination_id, p.sequence, p.scheduled_at, p.status, p.external_ref, p.error_message, p.attempts, p.created_at, p.updated_at`

const campaignColumns = `id, user_id, name, policy, interval_unit, interval_magnitude, start_at, status, post_count, created_at, updated_at`

// CampaignRepository stores campaigns and scheduled posts on PostgreSQL
type CampaignRepository struct {
	db *sql.DB
}

func NewCampaignRepository(db *sql.DB) *CampaignRepository { return &CampaignRepository{db: db} }

var _ repository.ICampaign = (*CampaignRepository)(nil)

func (r *CampaignRepository) CreateWithPosts(ctx context.Context, c *model.Campaign, posts []model.ScheduledPost) (err error) {
	now := time.Now().UTC()
	stampCampaign(c, posts, now)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `INSERT INTO campaigns (`+campaignColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		c.ID, c.UserID, c.Name, c.Policy, c.IntervalUnit, c.IntervalMagnitude, c.StartAt, string(c.Status), c.PostCount, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}

	q := `INSERT INTO scheduled_posts (campaign_id, post_key, content_id, destination_id, sequence, scheduled_at, status, attempts, created_at, updated_at)
          VALUES ($1,$2,$3,$4,$5,$6,$7,0,$8,$8) RETURNING id`
	for i := range posts {
		p := &posts[i]
		if err = tx.QueryRowContext(ctx, q, c.ID, p.Key, p.ContentID, p.DestinationID, p.Sequence, p.ScheduledAt, string(p.Status), p.CreatedAt).Scan(&p.ID); err != nil {
			return fmt.Errorf("insert post %s: %w", p.Key, err)
		}
	}
	return tx.Commit()
}

func (r *CampaignRepository) GetCampaign(ctx context.Context, userID, campaignID string) (*model.Campaign, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id=$1 AND user_id=$2`, campaignID, userID)
	c, err := scanCampaign(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("campaign %s: %w", campaignID, repository.ErrNotFound)
	}
	return c, err
}

func (r *CampaignRepository) ListCampaigns(ctx context.Context, userID string, limit int) ([]*model.Campaign, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
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

func (r *CampaignRepository) ListPosts(ctx context.Context, campaignID string) ([]model.ScheduledPost, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+postColumns+` FROM scheduled_posts p WHERE p.campaign_id=$1 ORDER BY p.sequence ASC`, campaignID)
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

// postClaimLease is how long a claimed post stays invisible to other dispatchers. A post
// still 'posting' after the lease belongs to a dispatcher that died mid publish.
const postClaimLease = 5 * time.Minute

// FetchDuePosts returns scheduled posts whose time has come and 'posting' posts that are
// unclaimed (immediate campaigns) or whose claim lease expired
func (r *CampaignRepository) FetchDuePosts(ctx context.Context, now time.Time, limit int) ([]model.DuePost, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+postColumns+`, c.user_id FROM scheduled_posts p
        JOIN campaigns c ON c.id = p.campaign_id
        WHERE (p.status='scheduled' AND p.scheduled_at <= $1)
           OR (p.status='posting' AND (p.claimed_at IS NULL OR p.claimed_at < $2))
        ORDER BY p.scheduled_at ASC, p.sequence ASC LIMIT $3`, now, now.Add(-postClaimLease), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDuePosts(rows)
}

// ClaimPost takes the lease on a post. It fails when another dispatcher claimed it since
// it was fetched or still holds a live lease.
func (r *CampaignRepository) ClaimPost(ctx context.Context, postID int64, attempts int) (bool, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `UPDATE scheduled_posts SET status='posting', attempts=attempts+1, claimed_at=$1, updated_at=$1
        WHERE id=$2 AND attempts=$3
          AND (status='scheduled' OR (status='posting' AND (claimed_at IS NULL OR claimed_at < $4)))`,
		now, postID, attempts, now.Add(-postClaimLease))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *CampaignRepository) MarkPostResult(ctx context.Context, postID int64, status model.PostStatus, externalRef, errMsg *string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE scheduled_posts SET status=$1, external_ref=$2, error_message=$3, updated_at=$4 WHERE id=$5`,
		string(status), externalRef, errMsg, time.Now().UTC(), postID)
	return err
}

func (r *CampaignRepository) CompleteFinishedCampaigns(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE campaigns SET status='completed', updated_at=$1
        WHERE status <> 'completed' AND NOT EXISTS (
            SELECT 1 FROM scheduled_posts p WHERE p.campaign_id = campaigns.id AND p.status IN ('scheduled','posting'))`, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// stampCampaign fills server-owned fields on the campaign and its posts before insert
func stampCampaign(c *model.Campaign, posts []model.ScheduledPost, now time.Time) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = c.CreatedAt
	c.PostCount = len(posts)
	for i := range posts {
		posts[i].CampaignID = c.ID
		posts[i].CreatedAt = c.CreatedAt
		posts[i].UpdatedAt = c.CreatedAt
	}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCampaign(s scanner) (*model.Campaign, error) {
	c := &model.Campaign{}
	var unit sql.NullString
	var magnitude sql.NullInt64
	var startAt sql.NullTime
	var status string
	if err := s.Scan(&c.ID, &c.UserID, &c.Name, &c.Policy, &unit, &magnitude, &startAt, &status, &c.PostCount, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Status = model.CampaignStatus(status)
	if unit.Valid {
		v := unit.String
		c.IntervalUnit = &v
	}
	if magnitude.Valid {
		v := int(magnitude.Int64)
		c.IntervalMagnitude = &v
	}
	if startAt.Valid {
		v := startAt.Time
		c.StartAt = &v
	}
	return c, nil
}

func scanPostInto(s scanner, extra ...interface{}) (model.ScheduledPost, error) {
	var p model.ScheduledPost
	var status string
	var externalRef, errMsg sql.NullString
	dest := []interface{}{&p.ID, &p.CampaignID, &p.Key, &p.ContentID, &p.DestinationID, &p.Sequence, &p.ScheduledAt, &status, &externalRef, &errMsg, &p.Attempts, &p.CreatedAt, &p.UpdatedAt}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return p, err
	}
	p.Status = model.PostStatus(status)
	if externalRef.Valid {
		v := externalRef.String
		p.ExternalRef = &v
	}
	if errMsg.Valid {
		v := errMsg.String
		p.ErrorMessage = &v
	}
	return p, nil
}

func scanPost(s scanner) (model.ScheduledPost, error) { return scanPostInto(s) }

func scanDuePosts(rows *sql.Rows) ([]model.DuePost, error) {
	var out []model.DuePost
	for rows.Next() {
		var userID string
		p, err := scanPostInto(rows, &userID)
		if err != nil {
			return nil, err
		}
		out = append(out, model.DuePost{ScheduledPost: p, UserID: userID})
	}
	return out, rows.Err()
}

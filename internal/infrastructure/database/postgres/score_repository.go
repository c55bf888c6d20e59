package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/partscout/partscout/internal/infrastructure/monitoring/logging"
	apperrors "github.com/partscout/partscout/pkg/errors"
	"github.com/partscout/partscout/pkg/types/common"
	"github.com/partscout/partscout/pkg/types/listing"
)

// ScoreRepository persists scoring outcomes in the scores table.
type ScoreRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewScoreRepository constructs a ScoreRepository over an existing pool.
func NewScoreRepository(pool *pgxpool.Pool, logger logging.Logger) *ScoreRepository {
	return &ScoreRepository{pool: pool, logger: logger.Named("score_repo")}
}

const insertScoreSQL = `
INSERT INTO scores (
	id, listing_url, title, category, condition, price,
	fmv_low, fmv_mid, fmv_high, price_signal, score10, risk_flags, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

const selectScoreColumns = `
	id, listing_url, title, category, condition, price,
	fmv_low, fmv_mid, fmv_high, price_signal, score10, risk_flags, created_at`

// Save inserts one score record.
func (r *ScoreRepository) Save(ctx context.Context, rec *listing.ScoreRecord) error {
	flags, err := json.Marshal(rec.RiskFlags)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "encode risk flags")
	}

	_, err = r.pool.Exec(ctx, insertScoreSQL,
		string(rec.ID), rec.ListingURL, rec.Title,
		string(rec.Category), string(rec.Condition), rec.Price,
		rec.FMVLow, rec.FMVMid, rec.FMVHigh,
		string(rec.PriceSignal), rec.Score10, flags, rec.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeScorePersistFailed, "insert score record")
	}
	return nil
}

// FindByID returns one score record, or an ErrCodeScoreNotFound error.
func (r *ScoreRepository) FindByID(ctx context.Context, id common.ID) (*listing.ScoreRecord, error) {
	row := r.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM scores WHERE id = $1", selectScoreColumns),
		string(id))
	rec, err := scanScore(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.New(apperrors.ErrCodeScoreNotFound,
			fmt.Sprintf("score %s not found", id))
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "query score record")
	}
	return rec, nil
}

// FindRecentByURL returns the newest score for a listing URL, or nil when
// the listing has never been scored.
func (r *ScoreRepository) FindRecentByURL(ctx context.Context, url string) (*listing.ScoreRecord, error) {
	row := r.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM scores WHERE listing_url = $1 ORDER BY created_at DESC LIMIT 1",
			selectScoreColumns),
		url)
	rec, err := scanScore(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "query score by url")
	}
	return rec, nil
}

// ListRecent returns the newest records first.
func (r *ScoreRepository) ListRecent(ctx context.Context, limit int) ([]*listing.ScoreRecord, error) {
	rows, err := r.pool.Query(ctx,
		fmt.Sprintf("SELECT %s FROM scores ORDER BY created_at DESC LIMIT $1", selectScoreColumns),
		limit)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "list score records")
	}
	defer rows.Close()

	records := make([]*listing.ScoreRecord, 0, limit)
	for rows.Next() {
		rec, err := scanScore(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "scan score record")
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "iterate score records")
	}
	return records, nil
}

func scanScore(row pgx.Row) (*listing.ScoreRecord, error) {
	var (
		rec      listing.ScoreRecord
		id       string
		category string
		cond     string
		signal   string
		flags    []byte
	)
	err := row.Scan(&id, &rec.ListingURL, &rec.Title, &category, &cond, &rec.Price,
		&rec.FMVLow, &rec.FMVMid, &rec.FMVHigh, &signal, &rec.Score10, &flags, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	rec.ID = common.ID(id)
	rec.Category = listing.Category(category)
	rec.Condition = listing.Condition(cond)
	rec.PriceSignal = listing.PriceSignal(signal)
	if err := json.Unmarshal(flags, &rec.RiskFlags); err != nil {
		return nil, err
	}
	return &rec, nil
}

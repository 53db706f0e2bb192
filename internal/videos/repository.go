package videos

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidforge/gateway/internal/models"
)

// Repository handles video job persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a videos repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new video job row and fills in the assigned id and
// creation time.
func (r *Repository) Create(ctx context.Context, v *models.Video) error {
	const q = `INSERT INTO videos (user_id, filename, original_name, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, v.UserID, v.Filename, v.OriginalName, string(v.Status)).
		Scan(&v.ID, &v.CreatedAt)
}

// ListByUser returns all videos owned by a user, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]models.Video, error) {
	const q = `SELECT id, user_id, filename, original_name, status, COALESCE(zip_path,''), created_at
		FROM videos WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Video
	for rows.Next() {
		var v models.Video
		var status string
		if err := rows.Scan(&v.ID, &v.UserID, &v.Filename, &v.OriginalName, &status, &v.ZipPath, &v.CreatedAt); err != nil {
			return nil, err
		}
		v.Status = models.VideoStatus(status)
		list = append(list, v)
	}
	return list, rows.Err()
}

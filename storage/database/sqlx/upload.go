package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/mikobi/darasa/core"
	"github.com/mikobi/darasa/core/upload"
)

// orderableUploadColumns whitelists the fields a caller may order by;
// anything else falls back to the default ordering.
var orderableUploadColumns = map[string]bool{
	"created_at":  true,
	"upload_date": true,
	"week_number": true,
}

type uploadRepository struct {
	db *sqlx.DB
}

var _ upload.Repository = (*uploadRepository)(nil)

func NewUploadRepository(db *sqlx.DB) *uploadRepository {
	return &uploadRepository{db: db}
}

func (repo uploadRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return upload.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo uploadRepository) CreateUpload(ctx context.Context, up upload.Upload) (upload.Upload, error) {
	up.ID = uuid.New().String()
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO uploads (id, student_id, student_name, image_url, status, upload_date, week_number, reviewed_at, created_at)
		VALUES (:id, :student_id, :student_name, :image_url, :status, :upload_date, :week_number, :reviewed_at, :created_at)`,
		up,
	)
	if err != nil {
		return upload.Upload{}, errors.Wrap(err, "inserting upload")
	}
	return up, nil
}

func (repo uploadRepository) GetUpload(ctx context.Context, id string) (upload.Upload, error) {
	var up upload.Upload
	err := repo.db.GetContext(ctx, &up, `SELECT * FROM uploads WHERE id = $1`, id)
	if err != nil {
		return upload.Upload{}, repo.trapNoRowsErr(err, "getting upload")
	}
	return up, nil
}

func (repo uploadRepository) QueryUploads(ctx context.Context, filter upload.QueryFilter, ordering ...core.DBOrdering) ([]upload.Upload, error) {
	query := new(strings.Builder)
	query.WriteString(`SELECT * FROM uploads`)

	var conds []string
	var args []interface{}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		conds = append(conds, "student_id = ?")
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, "status = ?")
	}
	if len(conds) > 0 {
		query.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	query.WriteString(" ORDER BY " + orderBy(ordering))

	var ups []upload.Upload
	err := repo.db.SelectContext(ctx, &ups, repo.db.Rebind(query.String()), args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying uploads")
	}
	return ups, nil
}

func orderBy(ordering []core.DBOrdering) string {
	clauses := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		if orderableUploadColumns[ord.Field] {
			clauses = append(clauses, ord.String())
		}
	}
	if len(clauses) == 0 {
		return "created_at DESC" // newest first
	}
	return strings.Join(clauses, ", ")
}

func (repo uploadRepository) CountUploads(ctx context.Context, status string) (int, error) {
	var count int
	if err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM uploads WHERE status = $1`, status); err != nil {
		return 0, errors.Wrap(err, "counting uploads")
	}
	return count, nil
}

// ReviewUpload transitions the row out of `pending` and credits the
// student's score in a single transaction. The status write is conditional
// on the row still being `pending`, so concurrent reviews of the same row
// succeed at most once and the score is never credited twice.
func (repo uploadRepository) ReviewUpload(ctx context.Context, id, status string, points int) (upload.Upload, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return upload.Upload{}, errors.Wrap(err, "beginning review tx")
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `
		UPDATE uploads SET status = $1, reviewed_at = $2
		WHERE id = $3 AND status = $4`,
		status, null.TimeFrom(now), id, upload.StatusPending,
	)
	if err != nil {
		return upload.Upload{}, errors.Wrap(err, "transitioning upload status")
	}
	if n, err := res.RowsAffected(); err != nil {
		return upload.Upload{}, errors.Wrap(err, "transitioning upload status")
	} else if n == 0 {
		// row missing or already reviewed; find out which
		var cur string
		if err = tx.GetContext(ctx, &cur, `SELECT status FROM uploads WHERE id = $1`, id); err != nil {
			return upload.Upload{}, repo.trapNoRowsErr(err, "checking upload status")
		}
		return upload.Upload{}, upload.ErrNotPending
	}

	if points != 0 {
		_, err = tx.ExecContext(ctx, `
			UPDATE students SET score = score + $1, updated_at = $2
			WHERE student_id = (SELECT student_id FROM uploads WHERE id = $3)`,
			points, now, id,
		)
		if err != nil {
			return upload.Upload{}, errors.Wrap(err, "crediting student score")
		}
	}

	var up upload.Upload
	if err = tx.GetContext(ctx, &up, `SELECT * FROM uploads WHERE id = $1`, id); err != nil {
		return upload.Upload{}, repo.trapNoRowsErr(err, "reloading upload")
	}

	if err = tx.Commit(); err != nil {
		return upload.Upload{}, errors.Wrap(err, "committing review tx")
	}
	return up, nil
}

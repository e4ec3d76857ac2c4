package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/mikobi/darasa/core/student"
)

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to student.ErrNotFound
func (repo studentRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return student.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	std.ID = uuid.New().String()
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO students (id, student_id, name, email, password_hash, score, created_at, updated_at)
		VALUES (:id, :student_id, :name, :email, :password_hash, :score, :created_at, :updated_at)`,
		std,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

func (repo studentRepository) GetStudentByStudentID(ctx context.Context, studentID string) (student.Student, error) {
	var std student.Student
	err := repo.db.GetContext(ctx, &std, `SELECT * FROM students WHERE student_id = $1`, studentID)
	if err != nil {
		return student.Student{}, repo.trapNoRowsErr(err, "getting student by ID")
	}
	return std, nil
}

func (repo studentRepository) CountStudents(ctx context.Context) (int, error) {
	var count int
	if err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM students`); err != nil {
		return 0, errors.Wrap(err, "counting students")
	}
	return count, nil
}

func (repo studentRepository) TopStudentsByScore(ctx context.Context, limit int) ([]student.RankEntry, error) {
	var entries []student.RankEntry
	err := repo.db.SelectContext(ctx, &entries, `
		SELECT student_id, name, score FROM students
		ORDER BY score DESC, student_id ASC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying top students")
	}
	return entries, nil
}

func (repo studentRepository) UpdateStudentPassword(ctx context.Context, studentID string, hash []byte) error {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE students SET password_hash = $1, updated_at = $2 WHERE student_id = $3`,
		hash, time.Now().UTC(), studentID,
	)
	if err != nil {
		return errors.Wrap(err, "updating student password")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.ErrNotFound
	}
	return nil
}

package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/mikobi/darasa/core/teacher"
)

type teacherRepository struct {
	db *sqlx.DB
}

var _ teacher.Repository = (*teacherRepository)(nil)

func NewTeacherRepository(db *sqlx.DB) *teacherRepository {
	return &teacherRepository{db: db}
}

func (repo teacherRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return teacher.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo teacherRepository) CreateTeacher(ctx context.Context, tch teacher.Teacher) (teacher.Teacher, error) {
	tch.ID = uuid.New().String()
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO teachers (id, teacher_id, name, password_hash, created_at, updated_at)
		VALUES (:id, :teacher_id, :name, :password_hash, :created_at, :updated_at)`,
		tch,
	)
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "inserting teacher")
	}
	return tch, nil
}

func (repo teacherRepository) GetTeacherByTeacherID(ctx context.Context, teacherID string) (teacher.Teacher, error) {
	var tch teacher.Teacher
	err := repo.db.GetContext(ctx, &tch, `SELECT * FROM teachers WHERE teacher_id = $1`, teacherID)
	if err != nil {
		return teacher.Teacher{}, repo.trapNoRowsErr(err, "getting teacher by ID")
	}
	return tch, nil
}

func (repo teacherRepository) UpdateTeacherPassword(ctx context.Context, teacherID string, hash []byte) error {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE teachers SET password_hash = $1, updated_at = $2 WHERE teacher_id = $3`,
		hash, time.Now().UTC(), teacherID,
	)
	if err != nil {
		return errors.Wrap(err, "updating teacher password")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return teacher.ErrNotFound
	}
	return nil
}

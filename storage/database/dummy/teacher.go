package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/mikobi/darasa/core/teacher"
)

type teacherRepository struct {
	db *DB
}

var _ teacher.Repository = (*teacherRepository)(nil)

func NewTeacherRepository(db *DB) *teacherRepository {
	return &teacherRepository{db: db}
}

func (repo *teacherRepository) CreateTeacher(_ context.Context, tch teacher.Teacher) (teacher.Teacher, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.teachers[tch.TeacherID]; ok {
		return teacher.Teacher{}, teacher.ErrTeacherIDExists
	}
	tch.ID = uuid.New().String()
	repo.db.teachers[tch.TeacherID] = &tch
	return tch, nil
}

func (repo *teacherRepository) GetTeacherByTeacherID(_ context.Context, teacherID string) (teacher.Teacher, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if tch, ok := repo.db.teachers[teacherID]; ok {
		return *tch, nil
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) UpdateTeacherPassword(_ context.Context, teacherID string, hash []byte) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	tch, ok := repo.db.teachers[teacherID]
	if !ok {
		return teacher.ErrNotFound
	}
	tch.PasswordHash = hash
	return nil
}

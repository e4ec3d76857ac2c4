package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/mikobi/darasa/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(_ context.Context, std student.Student) (student.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.students[std.StudentID]; ok {
		return student.Student{}, student.ErrStudentIDExists
	}
	std.ID = uuid.New().String()
	repo.db.students[std.StudentID] = &std
	return std, nil
}

func (repo *studentRepository) GetStudentByStudentID(_ context.Context, studentID string) (student.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if std, ok := repo.db.students[studentID]; ok {
		return *std, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) CountStudents(_ context.Context) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return len(repo.db.students), nil
}

func (repo *studentRepository) TopStudentsByScore(_ context.Context, limit int) ([]student.RankEntry, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	entries := make([]student.RankEntry, 0, len(repo.db.students))
	for _, std := range repo.db.students {
		entries = append(entries, student.RankEntry{StudentID: std.StudentID, Name: std.Name, Score: std.Score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].StudentID < entries[j].StudentID
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (repo *studentRepository) UpdateStudentPassword(_ context.Context, studentID string, hash []byte) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	std, ok := repo.db.students[studentID]
	if !ok {
		return student.ErrNotFound
	}
	std.PasswordHash = hash
	return nil
}

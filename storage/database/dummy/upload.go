package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/mikobi/darasa/core"
	"github.com/mikobi/darasa/core/upload"
)

type uploadRepository struct {
	db *DB
}

var _ upload.Repository = (*uploadRepository)(nil)

func NewUploadRepository(db *DB) *uploadRepository {
	return &uploadRepository{db: db}
}

func (repo *uploadRepository) CreateUpload(_ context.Context, up upload.Upload) (upload.Upload, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	up.ID = uuid.New().String()
	repo.db.uploads = append(repo.db.uploads, &up)
	return up, nil
}

func (repo *uploadRepository) get(id string) *upload.Upload {
	for _, up := range repo.db.uploads {
		if up.ID == id {
			return up
		}
	}
	return nil
}

func (repo *uploadRepository) GetUpload(_ context.Context, id string) (upload.Upload, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if up := repo.get(id); up != nil {
		return *up, nil
	}
	return upload.Upload{}, upload.ErrNotFound
}

func (repo *uploadRepository) QueryUploads(_ context.Context, filter upload.QueryFilter, ordering ...core.DBOrdering) ([]upload.Upload, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var ups []upload.Upload
	// walk backwards: newest first by insertion order
	for i := len(repo.db.uploads) - 1; i >= 0; i-- {
		up := repo.db.uploads[i]
		if filter.StudentID != "" && up.StudentID != filter.StudentID {
			continue
		}
		if filter.Status != "" && up.Status != filter.Status {
			continue
		}
		ups = append(ups, *up)
	}
	sortUploads(ups, ordering)
	return ups, nil
}

func sortUploads(ups []upload.Upload, ordering []core.DBOrdering) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at"}} // newest first
	}
	sort.SliceStable(ups, func(i, j int) bool {
		for _, ord := range ordering {
			var less, eq bool
			switch ord.Field {
			case "created_at":
				less, eq = ups[i].CreatedAt.Before(ups[j].CreatedAt), ups[i].CreatedAt.Equal(ups[j].CreatedAt)
			case "upload_date":
				less, eq = ups[i].UploadDate < ups[j].UploadDate, ups[i].UploadDate == ups[j].UploadDate
			case "week_number":
				less, eq = ups[i].WeekNumber < ups[j].WeekNumber, ups[i].WeekNumber == ups[j].WeekNumber
			default:
				continue
			}
			if eq {
				continue
			}
			if ord.Ascending {
				return less
			}
			return !less
		}
		return false
	})
}

func (repo *uploadRepository) CountUploads(_ context.Context, status string) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var count int
	for _, up := range repo.db.uploads {
		if up.Status == status {
			count++
		}
	}
	return count, nil
}

// ReviewUpload mirrors the conditional-update semantics of the real
// repository: the transition only happens when the row is still `pending`,
// and the score credit happens under the same lock.
func (repo *uploadRepository) ReviewUpload(_ context.Context, id, status string, points int) (upload.Upload, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	up := repo.get(id)
	if up == nil {
		return upload.Upload{}, upload.ErrNotFound
	}
	if !up.IsPending() {
		return upload.Upload{}, upload.ErrNotPending
	}

	up.Status = status
	up.ReviewedAt = null.TimeFrom(time.Now().UTC())
	if points != 0 {
		if std, ok := repo.db.students[up.StudentID]; ok {
			std.Score += points
		}
	}
	return *up, nil
}

package dummydb

import (
	"sync"

	"github.com/mikobi/darasa/core/student"
	"github.com/mikobi/darasa/core/teacher"
	"github.com/mikobi/darasa/core/upload"
)

// DB is an in-memory stand-in for the real database, used by tests and by
// local hacking without postgres. One lock guards all tables so the review
// transition and the score credit stay atomic, like the real transaction.
type DB struct {
	mu       sync.RWMutex
	students map[string]*student.Student // keyed by student_id
	teachers map[string]*teacher.Teacher // keyed by teacher_id
	uploads  []*upload.Upload            // insertion order
}

func Open() *DB {
	return &DB{
		students: make(map[string]*student.Student),
		teachers: make(map[string]*teacher.Teacher),
	}
}

package student

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/mikobi/darasa/core"
)

type Student struct {
	ID           string      `json:"id" db:"id"`
	StudentID    string      `json:"student_id" db:"student_id"` // doubles as the login credential
	Name         string      `json:"name" db:"name"`
	Email        null.String `json:"email,omitempty" db:"email"`
	PasswordHash []byte      `json:"-" db:"password_hash"`
	Score        int         `json:"score" db:"score"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"` // UTC
}

func (s *Student) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.PasswordHash = hash
	return nil
}

func (s *Student) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(s.PasswordHash, []byte(pwd))
}

// NewStudent contains information needed to register a new Student.
type NewStudent struct {
	StudentID string `json:"student_id" validate:"required,min=4,alphanum_"`
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"omitempty,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Score     int    `json:"score" validate:"omitempty,min=0"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.StudentID = core.CleanString(ns.StudentID, true /* lower */)
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	return validate.Struct(ns)
}

// RankEntry is one leaderboard row.
type RankEntry struct {
	StudentID string `json:"student_id" db:"student_id"`
	Name      string `json:"name" db:"name"`
	Score     int    `json:"score" db:"score"`
}

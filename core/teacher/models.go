package teacher

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/mikobi/darasa/core"
)

type Teacher struct {
	ID           string    `json:"id" db:"id"`
	TeacherID    string    `json:"teacher_id" db:"teacher_id"` // doubles as the login credential
	Name         string    `json:"name" db:"name"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"` // UTC
}

func (t *Teacher) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	t.PasswordHash = hash
	return nil
}

func (t *Teacher) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(t.PasswordHash, []byte(pwd))
}

// NewTeacher contains information needed to register a new Teacher.
type NewTeacher struct {
	TeacherID string `json:"teacher_id" validate:"required,min=4,alphanum_"`
	Name      string `json:"name" validate:"required"`
	Password  string `json:"password" validate:"required,min=6"`
}

func (nt *NewTeacher) Validate(validate *validator.Validate) error {
	nt.TeacherID = core.CleanString(nt.TeacherID, true /* lower */)
	nt.Name = core.CleanString(nt.Name)
	return validate.Struct(nt)
}

package spreadsheet

import (
	"context"
	"regexp"

	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/model"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/pkg/errors"
)

type Validator struct {
	emailRegex *regexp.Regexp
}

func NewValidator() *Validator {
	return &Validator{
		emailRegex: regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`),
	}
}

func (v *Validator) Validate(ctx context.Context, rows []model.AccountRow) error {
	if len(rows) == 0 {
		return errors.ErrSchemaValidation
	}

	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		if !v.emailRegex.MatchString(row.Email) {
			return errors.ValidationError{
				Field:   "email",
				Value:   row.Email,
				Message: "not a valid email address",
			}
		}
		if seen[row.Email] {
			return errors.ValidationError{
				Field:   "email",
				Value:   row.Email,
				Message: "duplicate email in upload",
			}
		}
		seen[row.Email] = true

		switch model.Role(row.Role) {
		case model.RoleStudent, model.RoleTeacher, model.RoleAdmin:
		default:
			return errors.ValidationError{
				Field:   "role",
				Value:   row.Role,
				Message: "must be one of student, teacher, admin",
			}
		}
	}

	return nil
}

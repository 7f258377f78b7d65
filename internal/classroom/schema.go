package classroom

import (
	"fmt"
	"strings"

	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/model"
)

const (
	studentSchema = "StudentProfile"
	teacherSchema = "TeacherProfile"
)

// SchemaField looks a field up by name ignoring case. Upstream directory
// schemas are inconsistent about key casing (Gender vs gender, SchoolName vs
// schoolname), so exact-match first, then a case-insensitive scan.
func SchemaField(fields map[string]interface{}, name string) string {
	if v, ok := fields[name]; ok {
		return fieldString(v)
	}
	for k, v := range fields {
		if strings.EqualFold(k, name) {
			return fieldString(v)
		}
	}
	return ""
}

func fieldString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

// ApplyCustomSchemas copies the role-specific demographic attributes from a
// directory lookup onto the user. Fields missing from the schema leave the
// user's current value untouched.
func ApplyCustomSchemas(user *model.User, dir *model.DirectoryUser) {
	if dir == nil || dir.CustomSchemas == nil {
		return
	}

	switch user.Role {
	case model.RoleStudent:
		fields, ok := dir.CustomSchemas[studentSchema]
		if !ok {
			return
		}
		setIfPresent(&user.Gender, fields, "gender")
		setIfPresent(&user.District, fields, "district")
		setIfPresent(&user.Grade, fields, "grade")
		setIfPresent(&user.SchoolName, fields, "schoolName")
		setIfPresent(&user.Age, fields, "age")
	case model.RoleTeacher:
		fields, ok := dir.CustomSchemas[teacherSchema]
		if !ok {
			return
		}
		setIfPresent(&user.SchoolName, fields, "schoolName")
		setIfPresent(&user.District, fields, "district")
		setIfPresent(&user.Gender, fields, "gender")
	}
}

func setIfPresent(dst *string, fields map[string]interface{}, name string) {
	if v := SchemaField(fields, name); v != "" {
		*dst = v
	}
}

package spreadsheet

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/model"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/pkg/errors"

	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestParserParse(t *testing.T) {
	p := NewParser()

	t.Run("valid sheet", func(t *testing.T) {
		data := workbook(t, [][]interface{}{
			{"Email", "Given_Name", "Family_Name", "Role", "District", "Grade"},
			{"a@x.com", "Ada", "Lovelace", "Student", "North District", "7"},
			{"b@x.com", "Brian", "Kernighan", "TEACHER", "", ""},
		})

		rows, err := p.Parse(context.Background(), data)
		if err != nil {
			t.Fatalf("Parse() error: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("rows = %d, want 2", len(rows))
		}
		if rows[0].Email != "a@x.com" || rows[0].Role != "student" || rows[0].District != "North District" {
			t.Errorf("row 0 = %+v", rows[0])
		}
		// Roles are normalized to lower case during parsing.
		if rows[1].Role != "teacher" {
			t.Errorf("row 1 role = %q, want teacher", rows[1].Role)
		}
	})

	t.Run("missing required column", func(t *testing.T) {
		data := workbook(t, [][]interface{}{
			{"email", "given_name", "family_name"},
			{"a@x.com", "Ada", "Lovelace"},
		})
		if _, err := p.Parse(context.Background(), data); err == nil {
			t.Fatal("Parse() accepted sheet without role column")
		}
	})

	t.Run("header only", func(t *testing.T) {
		data := workbook(t, [][]interface{}{
			{"email", "given_name", "family_name", "role"},
		})
		_, err := p.Parse(context.Background(), data)
		if !stderrors.Is(err, errors.ErrInvalidFileFormat) {
			t.Errorf("err = %v, want ErrInvalidFileFormat", err)
		}
	})

	t.Run("row without email", func(t *testing.T) {
		data := workbook(t, [][]interface{}{
			{"email", "given_name", "family_name", "role"},
			{"", "Ada", "Lovelace", "student"},
		})
		if _, err := p.Parse(context.Background(), data); err == nil {
			t.Fatal("Parse() accepted row without email")
		}
	})

	t.Run("not a spreadsheet", func(t *testing.T) {
		if _, err := p.Parse(context.Background(), []byte("plain text")); err == nil {
			t.Fatal("Parse() accepted non-xlsx bytes")
		}
	})
}

func TestValidatorValidate(t *testing.T) {
	v := NewValidator()

	valid := func() []model.AccountRow {
		return []model.AccountRow{
			{Email: "a@x.com", Role: "student"},
			{Email: "b@x.com", Role: "teacher"},
		}
	}

	t.Run("valid rows", func(t *testing.T) {
		if err := v.Validate(context.Background(), valid()); err != nil {
			t.Errorf("Validate() error: %v", err)
		}
	})

	t.Run("empty upload", func(t *testing.T) {
		err := v.Validate(context.Background(), nil)
		if !stderrors.Is(err, errors.ErrSchemaValidation) {
			t.Errorf("err = %v, want ErrSchemaValidation", err)
		}
	})

	t.Run("bad email", func(t *testing.T) {
		rows := valid()
		rows[0].Email = "not-an-email"
		assertValidationField(t, v.Validate(context.Background(), rows), "email")
	})

	t.Run("duplicate email", func(t *testing.T) {
		rows := valid()
		rows[1].Email = rows[0].Email
		assertValidationField(t, v.Validate(context.Background(), rows), "email")
	})

	t.Run("unknown role", func(t *testing.T) {
		rows := valid()
		rows[0].Role = "principal"
		assertValidationField(t, v.Validate(context.Background(), rows), "role")
	})
}

func assertValidationField(t *testing.T, err error, field string) {
	t.Helper()
	var verr errors.ValidationError
	if !stderrors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if verr.Field != field {
		t.Errorf("field = %q, want %q", verr.Field, field)
	}
}

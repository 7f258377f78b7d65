package spreadsheet

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/model"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/pkg/errors"

	"github.com/xuri/excelize/v2"
)

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(ctx context.Context, data []byte) ([]model.AccountRow, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.ErrInvalidFileFormat
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	if len(rows) < 2 { // Header + at least one data row
		return nil, errors.ErrInvalidFileFormat
	}

	// Parse header to find column indices
	header := rows[0]
	columnMap := make(map[string]int)
	for i, col := range header {
		columnMap[strings.ToLower(strings.TrimSpace(col))] = i
	}

	requiredColumns := []string{"email", "given_name", "family_name", "role"}
	for _, col := range requiredColumns {
		if _, exists := columnMap[col]; !exists {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	var accounts []model.AccountRow
	for i, row := range rows[1:] { // Skip header
		if len(row) == 0 {
			continue
		}

		account, err := p.parseRow(row, columnMap)
		if err != nil {
			return nil, fmt.Errorf("error parsing row %d: %w", i+2, err)
		}

		accounts = append(accounts, *account)
	}

	return accounts, nil
}

func (p *Parser) parseRow(row []string, columnMap map[string]int) (*model.AccountRow, error) {
	getValue := func(colName string) string {
		if idx, exists := columnMap[colName]; exists && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	email := getValue("email")
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	role := strings.ToLower(getValue("role"))
	if role == "" {
		return nil, fmt.Errorf("role is required")
	}

	return &model.AccountRow{
		Email:      email,
		GivenName:  getValue("given_name"),
		FamilyName: getValue("family_name"),
		Role:       role,
		District:   getValue("district"),
		Grade:      getValue("grade"),
		SchoolName: getValue("school_name"),
	}, nil
}

package spreadsheet

import (
	"context"

	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/model"
)

type ParsingStrategy interface {
	Parse(ctx context.Context, data []byte) ([]model.AccountRow, error)
	Validate(ctx context.Context, rows []model.AccountRow) error
}

type ExcelStrategy struct {
	parser    *Parser
	validator *Validator
}

func NewExcelStrategy() ParsingStrategy {
	return &ExcelStrategy{
		parser:    NewParser(),
		validator: NewValidator(),
	}
}

func (s *ExcelStrategy) Parse(ctx context.Context, data []byte) ([]model.AccountRow, error) {
	return s.parser.Parse(ctx, data)
}

func (s *ExcelStrategy) Validate(ctx context.Context, rows []model.AccountRow) error {
	return s.validator.Validate(ctx, rows)
}

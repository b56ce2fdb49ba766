package in

import (
	"context"

	"prax/internal/modules/archive/dto"
)

type Usecase interface {
	Export(ctx context.Context, path string) (dto.ExportOutput, error)
	Import(ctx context.Context, path string) (dto.ImportOutput, error)
}

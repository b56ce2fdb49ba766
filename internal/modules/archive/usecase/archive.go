package usecase

import (
	"context"

	"prax/internal/modules/archive/dto"
	archivein "prax/internal/modules/archive/port/in"
	"prax/internal/modules/archive/service"
)

type Interactor struct {
	svc *service.ArchiveService
}

var _ archivein.Usecase = (*Interactor)(nil)

func NewInteractor(svc *service.ArchiveService) *Interactor {
	return &Interactor{svc: svc}
}

func (i *Interactor) Export(ctx context.Context, path string) (dto.ExportOutput, error) {
	return i.svc.Export(ctx, path)
}

func (i *Interactor) Import(ctx context.Context, path string) (dto.ImportOutput, error) {
	return i.svc.Import(ctx, path)
}

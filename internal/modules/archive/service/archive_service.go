package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	archivedomain "prax/internal/modules/archive/domain"
	"prax/internal/modules/archive/dto"
	archiveout "prax/internal/modules/archive/port/out"
	"prax/internal/platform/clock"
	"prax/internal/platform/tx"
)

// ArchiveService builds versioned snapshots and restores them atomically.
// Restore is all-or-nothing: validation runs before the transaction, and
// any apply-phase failure rolls back in full.
type ArchiveService struct {
	clock    clock.Clock
	version  string
	source   archiveout.Source
	restorer archiveout.Restorer
	files    archiveout.FileStore
	txm      tx.Manager
	logger   *zap.Logger
}

func NewArchiveService(clk clock.Clock, version string, source archiveout.Source, restorer archiveout.Restorer, files archiveout.FileStore, txm tx.Manager, logger *zap.Logger) *ArchiveService {
	return &ArchiveService{clock: clk, version: version, source: source, restorer: restorer, files: files, txm: txm, logger: logger}
}

func (s *ArchiveService) Export(ctx context.Context, path string) (dto.ExportOutput, error) {
	snapshot, err := s.buildSnapshot(ctx)
	if err != nil {
		return dto.ExportOutput{}, err
	}
	if err := s.files.Write(ctx, path, snapshot); err != nil {
		return dto.ExportOutput{}, err
	}
	s.logger.Info("exported snapshot",
		zap.String("path", path),
		zap.Int("practice_areas", snapshot.Metadata.TotalPracticeAreas),
		zap.Int("sessions", snapshot.Metadata.TotalSessions),
		zap.Int("reflections", snapshot.Metadata.TotalReflections),
	)
	return dto.ExportOutput{
		Path:          path,
		PracticeAreas: snapshot.Metadata.TotalPracticeAreas,
		Sessions:      snapshot.Metadata.TotalSessions,
		Reflections:   snapshot.Metadata.TotalReflections,
	}, nil
}

func (s *ArchiveService) buildSnapshot(ctx context.Context) (archivedomain.Snapshot, error) {
	areas, err := s.source.Areas(ctx)
	if err != nil {
		return archivedomain.Snapshot{}, err
	}
	snapshot := archivedomain.Snapshot{PracticeAreas: []archivedomain.AreaRecord{}}
	totalSessions := 0
	totalReflections := 0
	for _, area := range areas {
		record := archivedomain.NewAreaRecord(area)
		sessions, err := s.source.Sessions(ctx, area.ID)
		if err != nil {
			return archivedomain.Snapshot{}, err
		}
		for _, session := range sessions {
			reflection, found, err := s.source.Reflection(ctx, session.ID)
			if err != nil {
				return archivedomain.Snapshot{}, err
			}
			if found {
				record.Sessions = append(record.Sessions, archivedomain.NewSessionRecord(session, &reflection))
				totalReflections++
			} else {
				record.Sessions = append(record.Sessions, archivedomain.NewSessionRecord(session, nil))
			}
			totalSessions++
		}
		snapshot.PracticeAreas = append(snapshot.PracticeAreas, record)
	}
	snapshot.Metadata = archivedomain.Metadata{
		ExportDate:         s.clock.Now().UTC(),
		AppVersion:         s.version,
		TotalPracticeAreas: len(areas),
		TotalSessions:      totalSessions,
		TotalReflections:   totalReflections,
	}
	return snapshot, nil
}

func (s *ArchiveService) Import(ctx context.Context, path string) (dto.ImportOutput, error) {
	data, err := s.files.Read(ctx, path)
	if err != nil {
		return dto.ImportOutput{}, err
	}
	// Validation is side-effect free; a bad payload never reaches the
	// transaction below.
	snapshot, err := archivedomain.ParseSnapshot(data)
	if err != nil {
		return dto.ImportOutput{}, err
	}

	counts := dto.ImportOutput{}
	err = s.txm.Within(ctx, func(ctx context.Context) error {
		if err := s.restorer.WipeAll(ctx); err != nil {
			return err
		}
		for _, areaRecord := range snapshot.PracticeAreas {
			area, sessions, reflections := areaRecord.Entities()
			if err := s.restorer.InsertArea(ctx, area); err != nil {
				return err
			}
			for _, session := range sessions {
				if err := s.restorer.InsertSession(ctx, session); err != nil {
					return err
				}
			}
			for _, reflection := range reflections {
				if err := s.restorer.InsertReflection(ctx, reflection); err != nil {
					return err
				}
			}
			counts.PracticeAreas++
			counts.Sessions += len(sessions)
			counts.Reflections += len(reflections)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("import rolled back", zap.String("path", path), zap.Error(err))
		return dto.ImportOutput{}, fmt.Errorf("import failed, existing data preserved: %w", err)
	}
	s.logger.Info("imported snapshot",
		zap.String("path", path),
		zap.Int("practice_areas", counts.PracticeAreas),
		zap.Int("sessions", counts.Sessions),
		zap.Int("reflections", counts.Reflections),
	)
	return counts, nil
}

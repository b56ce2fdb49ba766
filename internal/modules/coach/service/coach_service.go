package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"prax/internal/modules/coach/domain"
	"prax/internal/modules/coach/dto"
	coachout "prax/internal/modules/coach/port/out"
	practice "prax/internal/modules/practice/domain"
	apperrors "prax/internal/platform/errors"
)

// CoachService generates reflection prompts. The plugin is strictly
// advisory: any failure on its path resolves to static fallback text,
// never to an error the caller has to handle.
type CoachService struct {
	manifests coachout.ManifestStore
	host      coachout.Host
	source    coachout.ContextSource
	logger    *zap.Logger
}

func NewCoachService(manifests coachout.ManifestStore, host coachout.Host, source coachout.ContextSource, logger *zap.Logger) *CoachService {
	return &CoachService{manifests: manifests, host: host, source: source, logger: logger}
}

func (s *CoachService) GeneratePrompt(ctx context.Context, input dto.PromptInput) (dto.PromptOutput, error) {
	sessionContext, err := s.source.SessionContext(ctx, input.SessionID)
	if err != nil {
		return dto.PromptOutput{}, err
	}
	request := domain.PromptRequest{
		Context:     sessionContext,
		Tone:        practice.CoachingTone(input.Tone),
		Step:        input.Step,
		StepAnswers: input.StepAnswers,
	}
	if err := request.Validate(); err != nil {
		return dto.PromptOutput{}, fmt.Errorf("%w: %s", apperrors.ErrInvalidInput, err)
	}

	text, err := s.pluginPrompt(ctx, request)
	if err != nil {
		s.logger.Debug("coach plugin unavailable, using fallback", zap.Error(err))
		return dto.PromptOutput{
			Text:   domain.FallbackPrompt(request.Tone, request.Step),
			Step:   input.Step,
			Source: "fallback",
		}, nil
	}
	return dto.PromptOutput{Text: text, Step: input.Step, Source: "plugin"}, nil
}

func (s *CoachService) pluginPrompt(ctx context.Context, request domain.PromptRequest) (string, error) {
	manifest, err := s.runnableManifest(ctx)
	if err != nil {
		return "", err
	}
	text, err := s.host.GeneratePrompt(ctx, manifest, request)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrEmptyPrompt
	}
	return text, nil
}

func (s *CoachService) runnableManifest(ctx context.Context) (domain.Manifest, error) {
	manifest, found, err := s.manifests.Load(ctx)
	if err != nil {
		return domain.Manifest{}, err
	}
	if !found {
		return domain.Manifest{}, domain.ErrCoachNotConfigured
	}
	if err := manifest.Validate(); err != nil {
		return domain.Manifest{}, err
	}
	if !manifest.Enabled {
		return domain.Manifest{}, fmt.Errorf("%w: %s", domain.ErrCoachDisabled, manifest.Name)
	}
	if err := checksumMatches(manifest.Binary, manifest.SHA256); err != nil {
		return domain.Manifest{}, err
	}
	return manifest, nil
}

func (s *CoachService) Status(ctx context.Context) (dto.CoachInfo, bool, error) {
	manifest, found, err := s.manifests.Load(ctx)
	if err != nil || !found {
		return dto.CoachInfo{}, false, err
	}
	return dto.CoachInfo{
		Name:    manifest.Name,
		Version: manifest.Version,
		Enabled: manifest.Enabled,
		Binary:  manifest.Binary,
	}, true, nil
}

func (s *CoachService) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	manifest, found, err := s.manifests.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		return []dto.DoctorResult{}, nil
	}
	result := dto.DoctorResult{Name: manifest.Name}
	if err := manifest.Validate(); err != nil {
		result.Error = err.Error()
		return []dto.DoctorResult{result}, nil
	}
	result.BinaryReachable = fileExists(manifest.Binary)
	if result.BinaryReachable {
		result.ChecksumValid = checksumMatches(manifest.Binary, manifest.SHA256) == nil
	}
	switch {
	case !result.BinaryReachable:
		result.Error = fmt.Sprintf("binary does not exist: %s", manifest.Binary)
	case !result.ChecksumValid:
		result.Error = "checksum mismatch"
	case manifest.Enabled && s.host != nil:
		if err := s.host.CheckLifecycle(ctx, manifest); err != nil {
			result.Error = err.Error()
		} else {
			result.LifecycleOK = true
		}
	}
	return []dto.DoctorResult{result}, nil
}

func checksumMatches(path string, expected string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read coach plugin binary: %w", err)
	}
	hash := sha256.Sum256(payload)
	if hex.EncodeToString(hash[:]) != expected {
		return fmt.Errorf("%w: %s", domain.ErrChecksumMismatch, filepath.Base(path))
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

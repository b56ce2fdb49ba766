package service_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"prax/internal/modules/coach/domain"
	"prax/internal/modules/coach/dto"
	"prax/internal/modules/coach/service"
	practice "prax/internal/modules/practice/domain"
	apperrors "prax/internal/platform/errors"
)

type fakeManifestStore struct {
	manifest domain.Manifest
	found    bool
	err      error
}

func (f fakeManifestStore) Load(context.Context) (domain.Manifest, bool, error) {
	return f.manifest, f.found, f.err
}

type fakeHost struct {
	text         string
	err          error
	lifecycleErr error
	calls        int
}

func (f *fakeHost) CheckLifecycle(context.Context, domain.Manifest) error {
	return f.lifecycleErr
}

func (f *fakeHost) GetMetadata(context.Context, domain.Manifest) (domain.Metadata, error) {
	return domain.Metadata{Name: "fake", Version: "0.0.1"}, nil
}

func (f *fakeHost) GeneratePrompt(context.Context, domain.Manifest, domain.PromptRequest) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeSource struct {
	context domain.SessionContext
	err     error
}

func (f fakeSource) SessionContext(context.Context, string) (domain.SessionContext, error) {
	return f.context, f.err
}

func writePluginBinary(t *testing.T) (string, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "coach-plugin")
	payload := []byte("fake coach binary")
	if err := os.WriteFile(path, payload, 0o755); err != nil {
		t.Fatalf("write plugin binary: %v", err)
	}
	sum := sha256.Sum256(payload)
	return path, hex.EncodeToString(sum[:])
}

func journalContext() domain.SessionContext {
	return domain.SessionContext{
		AreaName:      "Guitar",
		AreaType:      "solo_skill",
		SessionIntent: "chord changes",
	}
}

func promptInput() dto.PromptInput {
	return dto.PromptInput{SessionID: "sess-1", Tone: 2, Step: domain.StepLesson}
}

func TestPromptUsesPluginText(t *testing.T) {
	t.Parallel()
	binary, sum := writePluginBinary(t)
	host := &fakeHost{text: "What surprised you about the chord transitions?"}
	svc := service.NewCoachService(
		fakeManifestStore{manifest: domain.Manifest{Name: "coach", Version: "1.0.0", Binary: binary, SHA256: sum, Enabled: true}, found: true},
		host, fakeSource{context: journalContext()}, zap.NewNop(),
	)
	out, err := svc.GeneratePrompt(context.Background(), promptInput())
	if err != nil {
		t.Fatalf("generate prompt: %v", err)
	}
	if out.Source != "plugin" || out.Text != host.text {
		t.Fatalf("expected plugin text, got %+v", out)
	}
}

func TestPromptFallsBackWhenNoCoachConfigured(t *testing.T) {
	t.Parallel()
	host := &fakeHost{text: "should never be used"}
	svc := service.NewCoachService(fakeManifestStore{}, host, fakeSource{context: journalContext()}, zap.NewNop())
	out, err := svc.GeneratePrompt(context.Background(), promptInput())
	if err != nil {
		t.Fatalf("generate prompt: %v", err)
	}
	if out.Source != "fallback" {
		t.Fatalf("expected fallback, got %+v", out)
	}
	if out.Text != domain.FallbackPrompt(practice.ToneSocratic, domain.StepLesson) {
		t.Fatalf("fallback text must be the deterministic static prompt, got %q", out.Text)
	}
	if host.calls != 0 {
		t.Fatalf("host must not be called without a manifest")
	}
}

func TestPromptFallsBackOnHostFailure(t *testing.T) {
	t.Parallel()
	binary, sum := writePluginBinary(t)
	manifest := domain.Manifest{Name: "coach", Version: "1.0.0", Binary: binary, SHA256: sum, Enabled: true}
	for name, host := range map[string]*fakeHost{
		"rpc error":   {err: errors.New("connection refused")},
		"timeout":     {err: domain.ErrCoachTimeout},
		"empty reply": {text: "   "},
	} {
		svc := service.NewCoachService(fakeManifestStore{manifest: manifest, found: true}, host, fakeSource{context: journalContext()}, zap.NewNop())
		out, err := svc.GeneratePrompt(context.Background(), promptInput())
		if err != nil {
			t.Fatalf("%s: coach failures must not propagate: %v", name, err)
		}
		if out.Source != "fallback" || strings.TrimSpace(out.Text) == "" {
			t.Fatalf("%s: expected non-empty fallback, got %+v", name, out)
		}
	}
}

func TestPromptFallsBackOnChecksumMismatch(t *testing.T) {
	t.Parallel()
	binary, _ := writePluginBinary(t)
	host := &fakeHost{text: "tampered binary must never run"}
	manifest := domain.Manifest{Name: "coach", Version: "1.0.0", Binary: binary, SHA256: strings.Repeat("0", 64), Enabled: true}
	svc := service.NewCoachService(fakeManifestStore{manifest: manifest, found: true}, host, fakeSource{context: journalContext()}, zap.NewNop())
	out, err := svc.GeneratePrompt(context.Background(), promptInput())
	if err != nil {
		t.Fatalf("generate prompt: %v", err)
	}
	if out.Source != "fallback" || host.calls != 0 {
		t.Fatalf("mismatched checksum must skip the plugin, got %+v calls=%d", out, host.calls)
	}
}

func TestPromptRejectsInvalidStep(t *testing.T) {
	t.Parallel()
	svc := service.NewCoachService(fakeManifestStore{}, &fakeHost{}, fakeSource{context: journalContext()}, zap.NewNop())
	input := promptInput()
	input.Step = 7
	if _, err := svc.GeneratePrompt(context.Background(), input); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("step 7 must be rejected, got %v", err)
	}
}

func TestPromptPropagatesJournalErrors(t *testing.T) {
	t.Parallel()
	svc := service.NewCoachService(fakeManifestStore{}, &fakeHost{}, fakeSource{err: apperrors.ErrNotFound}, zap.NewNop())
	if _, err := svc.GeneratePrompt(context.Background(), promptInput()); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("journal lookup errors are real errors, got %v", err)
	}
}

func TestDoctorReportsChecksumMismatch(t *testing.T) {
	t.Parallel()
	binary, _ := writePluginBinary(t)
	manifest := domain.Manifest{Name: "coach", Version: "1.0.0", Binary: binary, SHA256: strings.Repeat("0", 64), Enabled: true}
	svc := service.NewCoachService(fakeManifestStore{manifest: manifest, found: true}, &fakeHost{}, fakeSource{}, zap.NewNop())
	results, err := svc.Doctor(context.Background())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}
	if !results[0].BinaryReachable || results[0].ChecksumValid || results[0].Error != "checksum mismatch" {
		t.Fatalf("unexpected doctor result: %+v", results[0])
	}
}

func TestDoctorHealthyCoach(t *testing.T) {
	t.Parallel()
	binary, sum := writePluginBinary(t)
	manifest := domain.Manifest{Name: "coach", Version: "1.0.0", Binary: binary, SHA256: sum, Enabled: true}
	svc := service.NewCoachService(fakeManifestStore{manifest: manifest, found: true}, &fakeHost{}, fakeSource{}, zap.NewNop())
	results, err := svc.Doctor(context.Background())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if len(results) != 1 || !results[0].LifecycleOK || results[0].Error != "" {
		t.Fatalf("expected healthy result, got %+v", results)
	}
}

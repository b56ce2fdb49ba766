package out_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	coachout "prax/internal/modules/coach/adapter/out"
	"prax/internal/modules/coach/domain"
	practice "prax/internal/modules/practice/domain"
)

func TestGRPCHostIntegrationReferenceCoach(t *testing.T) {
	binPath, checksum := buildReferenceCoach(t)
	manifest := domain.Manifest{
		Name:    "reference-coach",
		Version: "1.0.0",
		Binary:  binPath,
		SHA256:  checksum,
		Enabled: true,
	}

	host := coachout.NewGRPCHost()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := host.CheckLifecycle(ctx, manifest); err != nil {
		t.Fatalf("check lifecycle: %v", err)
	}
	metadata, err := host.GetMetadata(ctx, manifest)
	if err != nil {
		t.Fatalf("get metadata: %v", err)
	}
	if metadata.Name != "reference-coach" {
		t.Fatalf("unexpected metadata name: %s", metadata.Name)
	}

	text, err := host.GeneratePrompt(ctx, manifest, domain.PromptRequest{
		Context: domain.SessionContext{
			AreaName:           "Guitar",
			AreaType:           "solo_skill",
			SessionIntent:      "chord changes",
			PreviousNextAction: "slow the metronome down",
		},
		Tone: practice.ToneSocratic,
		Step: domain.StepWhatHappened,
	})
	if err != nil {
		t.Fatalf("generate prompt: %v", err)
	}
	if !strings.Contains(text, "chord changes") {
		t.Fatalf("prompt must reference the session intent, got %q", text)
	}
}

func buildReferenceCoach(t *testing.T) (string, string) {
	t.Helper()
	tmp := t.TempDir()
	binPath := filepath.Join(tmp, "reference-coach")
	cmd := exec.Command("go", "build", "-o", binPath, "./plugins/reference")
	cmd.Dir = repositoryRoot(t)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build reference coach: %v\n%s", err, string(out))
	}
	payload, err := os.ReadFile(binPath)
	if err != nil {
		t.Fatalf("read built plugin: %v", err)
	}
	hash := sha256.Sum256(payload)
	return binPath, hex.EncodeToString(hash[:])
}

func repositoryRoot(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller failed")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "../../../../../"))
}

package out

import (
	"context"

	"prax/internal/modules/coach/domain"
)

// ManifestStore loads the configured coach plugin, if any.
type ManifestStore interface {
	Load(ctx context.Context) (domain.Manifest, bool, error)
}

// Host speaks to the out-of-process coach plugin.
type Host interface {
	CheckLifecycle(ctx context.Context, manifest domain.Manifest) error
	GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error)
	GeneratePrompt(ctx context.Context, manifest domain.Manifest, request domain.PromptRequest) (string, error)
}

// ContextSource resolves the read-only journal excerpt a prompt is built
// from.
type ContextSource interface {
	SessionContext(ctx context.Context, sessionID string) (domain.SessionContext, error)
}

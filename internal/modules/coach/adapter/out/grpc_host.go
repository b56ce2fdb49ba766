package out

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	coachrpc "prax/internal/modules/coach/adapter/out/rpc"
	"prax/internal/modules/coach/domain"
	coachout "prax/internal/modules/coach/port/out"
)

const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 5 * time.Second
)

type GRPCHost struct{}

var _ coachout.Host = (*GRPCHost)(nil)

func NewGRPCHost() *GRPCHost {
	return &GRPCHost{}
}

func (h *GRPCHost) CheckLifecycle(ctx context.Context, manifest domain.Manifest) error {
	client, closeFn, err := h.connect(manifest)
	if err != nil {
		return err
	}
	defer closeFn()

	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()
	if _, err := client.GetMetadata(callCtx); err != nil {
		return fmt.Errorf("get metadata: %w", err)
	}
	return nil
}

func (h *GRPCHost) GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error) {
	client, closeFn, err := h.connect(manifest)
	if err != nil {
		return domain.Metadata{}, err
	}
	defer closeFn()

	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()
	meta, err := client.GetMetadata(callCtx)
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("get metadata: %w", err)
	}
	return domain.Metadata{Name: meta.Name, Version: meta.Version}, nil
}

func (h *GRPCHost) GeneratePrompt(ctx context.Context, manifest domain.Manifest, request domain.PromptRequest) (string, error) {
	client, closeFn, err := h.connect(manifest)
	if err != nil {
		return "", err
	}
	defer closeFn()

	answers := make(map[string]string, len(request.StepAnswers))
	for step, answer := range request.StepAnswers {
		answers[strconv.Itoa(step)] = answer
	}
	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()
	response, err := client.GeneratePrompt(callCtx, &coachrpc.PromptRequest{
		AreaName:           request.Context.AreaName,
		AreaType:           request.Context.AreaType,
		SessionIntent:      request.Context.SessionIntent,
		PreviousNextAction: request.Context.PreviousNextAction,
		CoachingTone:       int32(request.Tone),
		Step:               int32(request.Step),
		StepAnswers:        answers,
	})
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("%w: step %d", domain.ErrCoachTimeout, request.Step)
		}
		return "", fmt.Errorf("generate prompt: %w", err)
	}
	return response.Text, nil
}

func (h *GRPCHost) connect(manifest domain.Manifest) (coachrpc.CoachPluginClient, func(), error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  coachrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          coachrpc.PluginMap(nil),
		Cmd:              exec.Command(manifest.Binary),
		Managed:          true,
		StartTimeout:     defaultStartTimeout,
		Logger:           hclog.New(&hclog.LoggerOptions{Output: io.Discard, Level: hclog.NoLevel}),
	})
	closeFn := func() { client.Kill() }

	rpcClient, err := client.Client()
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("start coach plugin: %w", err)
	}
	raw, err := rpcClient.Dispense(coachrpc.PluginMapKey)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("dispense coach plugin: %w", err)
	}
	typed, ok := raw.(coachrpc.CoachPluginClient)
	if !ok {
		closeFn()
		return nil, nil, fmt.Errorf("coach plugin rpc client type mismatch")
	}
	return typed, closeFn, nil
}

func callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}

// Reference coach plugin. Deterministic prompts built from the session
// context, useful as a wiring check and as a template for real coaches.
package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-plugin"

	coachrpc "prax/internal/modules/coach/adapter/out/rpc"
)

type server struct{}

func (s *server) GetMetadata(_ context.Context, _ *coachrpc.Empty) (*coachrpc.Metadata, error) {
	return &coachrpc.Metadata{Name: "reference-coach", Version: "1.0.0"}, nil
}

func (s *server) GeneratePrompt(_ context.Context, in *coachrpc.PromptRequest) (*coachrpc.PromptResponse, error) {
	intent := strings.TrimSpace(in.SessionIntent)
	if intent == "" {
		intent = "this session"
	}
	var text string
	switch in.Step {
	case 2:
		text = fmt.Sprintf("You set out to work on %q in %s. What actually happened?", intent, in.AreaName)
		if in.PreviousNextAction != "" {
			text += fmt.Sprintf(" Last time you planned to %q — did that come up?", in.PreviousNextAction)
		}
	case 3:
		text = fmt.Sprintf("Given how %q went, what did this session teach you?", intent)
		if answer := in.StepAnswers["2"]; answer != "" {
			text = fmt.Sprintf("You wrote: %q. What is the lesson in that?", firstSentence(answer))
		}
	case 4:
		text = fmt.Sprintf("What is one concrete thing to try next time you practice %s?", in.AreaName)
	default:
		return nil, fmt.Errorf("unknown reflection step: %d", in.Step)
	}
	switch in.CoachingTone {
	case 2:
		text += " Take your time — question your first answer once before writing it down."
	case 3:
		text += " There is no wrong answer here."
	}
	return &coachrpc.PromptResponse{Text: text}, nil
}

func firstSentence(s string) string {
	if i := strings.IndexAny(s, ".!?"); i > 0 {
		return s[:i+1]
	}
	if len(s) > 120 {
		return s[:120]
	}
	return s
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: coachrpc.HandshakeConfig,
		Plugins:         coachrpc.PluginMap(&server{}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}

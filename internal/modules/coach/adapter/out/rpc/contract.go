package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey         = "prax-coach"
	serviceName          = "prax.coach.v1.CoachPlugin"
	jsonCodecName        = "json"
	methodGetMetadata    = "/" + serviceName + "/GetMetadata"
	methodGeneratePrompt = "/" + serviceName + "/GeneratePrompt"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "PRAX_COACH",
	MagicCookieValue: "prax",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type Metadata struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type PromptRequest struct {
	AreaName           string            `json:"area_name"`
	AreaType           string            `json:"area_type"`
	SessionIntent      string            `json:"session_intent"`
	PreviousNextAction string            `json:"previous_next_action"`
	CoachingTone       int32             `json:"coaching_tone"`
	Step               int32             `json:"step"`
	StepAnswers        map[string]string `json:"step_answers"`
}

type PromptResponse struct {
	Text string `json:"text"`
}

type CoachPluginServer interface {
	GetMetadata(ctx context.Context, in *Empty) (*Metadata, error)
	GeneratePrompt(ctx context.Context, in *PromptRequest) (*PromptResponse, error)
}

type CoachPluginClient interface {
	GetMetadata(ctx context.Context) (*Metadata, error)
	GeneratePrompt(ctx context.Context, in *PromptRequest) (*PromptResponse, error)
}

type coachPluginClient struct {
	conn *grpc.ClientConn
}

func NewCoachPluginClient(conn *grpc.ClientConn) CoachPluginClient {
	return &coachPluginClient{conn: conn}
}

func (c *coachPluginClient) GetMetadata(ctx context.Context) (*Metadata, error) {
	out := &Metadata{}
	if err := c.conn.Invoke(ctx, methodGetMetadata, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *coachPluginClient) GeneratePrompt(ctx context.Context, in *PromptRequest) (*PromptResponse, error) {
	out := &PromptResponse{}
	if err := c.conn.Invoke(ctx, methodGeneratePrompt, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterCoachPluginServer(server grpc.ServiceRegistrar, impl CoachPluginServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*CoachPluginServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "GetMetadata",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &Empty{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.GetMetadata(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetMetadata}
					handler := func(ctx context.Context, req any) (any, error) {
						empty, ok := req.(*Empty)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.GetMetadata(ctx, empty)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
			{
				MethodName: "GeneratePrompt",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &PromptRequest{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.GeneratePrompt(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGeneratePrompt}
					handler := func(ctx context.Context, req any) (any, error) {
						inReq, ok := req.(*PromptRequest)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.GeneratePrompt(ctx, inReq)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "schemas/coach-rpc-v1.proto",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl CoachPluginServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterCoachPluginServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewCoachPluginClient(conn), nil
}

func PluginMap(impl CoachPluginServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}

package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Service and method names of the reward network API.
// Messages are google.protobuf.Struct documents; field names are listed on each Server method.
const (
	ServiceName = "rewardnetwork.v1.RewardNetwork"

	RewardAccountForMethod  = "/" + ServiceName + "/RewardAccountFor"
	GetRewardMethod         = "/" + ServiceName + "/GetReward"
	GetAccountSummaryMethod = "/" + ServiceName + "/GetAccountSummary"
)

// RewardNetworkServer is the server API for the RewardNetwork service
type RewardNetworkServer interface {
	RewardAccountFor(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetReward(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAccountSummary(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RewardNetworkServiceDesc describes the RewardNetwork service for grpc.Server.RegisterService
var RewardNetworkServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RewardNetworkServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RewardAccountFor", Handler: unaryHandler(RewardAccountForMethod, RewardNetworkServer.RewardAccountFor)},
		{MethodName: "GetReward", Handler: unaryHandler(GetRewardMethod, RewardNetworkServer.GetReward)},
		{MethodName: "GetAccountSummary", Handler: unaryHandler(GetAccountSummaryMethod, RewardNetworkServer.GetAccountSummary)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rewardnetwork/v1/reward_network.proto",
}

// RegisterRewardNetworkServer registers srv on s
func RegisterRewardNetworkServer(s grpc.ServiceRegistrar, srv RewardNetworkServer) {
	s.RegisterService(&RewardNetworkServiceDesc, srv)
}

type unaryMethod func(RewardNetworkServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RewardNetworkServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(RewardNetworkServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Client calls the RewardNetwork service
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a RewardNetwork client on an established connection
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// RewardAccountFor invokes the RewardAccountFor RPC
func (c *Client) RewardAccountFor(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, RewardAccountForMethod, in, opts...)
}

// GetReward invokes the GetReward RPC
func (c *Client) GetReward(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GetRewardMethod, in, opts...)
}

// GetAccountSummary invokes the GetAccountSummary RPC
func (c *Client) GetAccountSummary(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GetAccountSummaryMethod, in, opts...)
}

func (c *Client) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

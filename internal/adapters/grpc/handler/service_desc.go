package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// AttendanceServiceName は勤怠集計 gRPC サービスの完全修飾名です。
const AttendanceServiceName = "hrms.attendance.v1.AttendanceService"

const (
	getEmployeeStatsMethod = "/" + AttendanceServiceName + "/GetEmployeeStats"
	getDateStatsMethod     = "/" + AttendanceServiceName + "/GetDateStats"
)

// AttendanceServiceServer は AttendanceService のサーバー側インターフェースです。
// メッセージは google.protobuf.Struct で、フィールド名は HTTP API の JSON と揃えています。
type AttendanceServiceServer interface {
	GetEmployeeStats(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetDateStats(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// RegisterAttendanceServiceServer は srv を gRPC サーバーに登録します。
func RegisterAttendanceServiceServer(r grpc.ServiceRegistrar, srv AttendanceServiceServer) {
	r.RegisterService(&attendanceServiceDesc, srv)
}

var attendanceServiceDesc = grpc.ServiceDesc{
	ServiceName: AttendanceServiceName,
	HandlerType: (*AttendanceServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetEmployeeStats", Handler: getEmployeeStatsHandler},
		{MethodName: "GetDateStats", Handler: getDateStatsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "hrms/attendance/v1/attendance.proto",
}

func getEmployeeStatsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AttendanceServiceServer).GetEmployeeStats(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getEmployeeStatsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AttendanceServiceServer).GetEmployeeStats(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func getDateStatsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AttendanceServiceServer).GetDateStats(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getDateStatsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AttendanceServiceServer).GetDateStats(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// AttendanceServiceClient は AttendanceService のクライアントです。
type AttendanceServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewAttendanceServiceClient は AttendanceServiceClient を生成します。
func NewAttendanceServiceClient(cc grpc.ClientConnInterface) *AttendanceServiceClient {
	return &AttendanceServiceClient{cc: cc}
}

// GetEmployeeStats は社員の出勤率を取得します。
func (c *AttendanceServiceClient) GetEmployeeStats(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getEmployeeStatsMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// GetDateStats は指定日の集計を取得します。
func (c *AttendanceServiceClient) GetDateStats(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getDateStatsMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

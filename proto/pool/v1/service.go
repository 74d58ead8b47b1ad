package poolv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "vusd.pool.v1.PoolService"

const (
	PoolService_Deposit_FullMethodName             = "/" + ServiceName + "/Deposit"
	PoolService_Withdraw_FullMethodName            = "/" + ServiceName + "/Withdraw"
	PoolService_Borrow_FullMethodName              = "/" + ServiceName + "/Borrow"
	PoolService_BorrowWithPayment_FullMethodName   = "/" + ServiceName + "/BorrowWithPayment"
	PoolService_Repay_FullMethodName               = "/" + ServiceName + "/Repay"
	PoolService_Liquidate_FullMethodName           = "/" + ServiceName + "/Liquidate"
	PoolService_DepositCollateral_FullMethodName   = "/" + ServiceName + "/DepositCollateral"
	PoolService_WithdrawCollateral_FullMethodName  = "/" + ServiceName + "/WithdrawCollateral"
	PoolService_GetAccount_FullMethodName          = "/" + ServiceName + "/GetAccount"
	PoolService_GetPool_FullMethodName             = "/" + ServiceName + "/GetPool"
	PoolService_UpdateParams_FullMethodName        = "/" + ServiceName + "/UpdateParams"
	PoolService_ManageAllowList_FullMethodName     = "/" + ServiceName + "/ManageAllowList"
	PoolService_Freeze_FullMethodName              = "/" + ServiceName + "/Freeze"
	PoolService_Unfreeze_FullMethodName            = "/" + ServiceName + "/Unfreeze"
	PoolService_CreatePaymentIntent_FullMethodName = "/" + ServiceName + "/CreatePaymentIntent"
	PoolService_GetPaymentIntent_FullMethodName    = "/" + ServiceName + "/GetPaymentIntent"
	PoolService_RecordPaymentEvent_FullMethodName  = "/" + ServiceName + "/RecordPaymentEvent"
	PoolService_ListPaymentIntents_FullMethodName  = "/" + ServiceName + "/ListPaymentIntents"
	PoolService_ListSettlements_FullMethodName     = "/" + ServiceName + "/ListSettlements"
	PoolService_SetPause_FullMethodName            = "/" + ServiceName + "/SetPause"
)

// PoolServiceServer is the server API for PoolService.
type PoolServiceServer interface {
	Deposit(context.Context, *AmountRequest) (*TxResponse, error)
	Withdraw(context.Context, *AmountRequest) (*TxResponse, error)
	Borrow(context.Context, *AmountRequest) (*TxResponse, error)
	BorrowWithPayment(context.Context, *BorrowWithPaymentRequest) (*TxResponse, error)
	Repay(context.Context, *AmountRequest) (*TxResponse, error)
	Liquidate(context.Context, *LiquidateRequest) (*TxResponse, error)
	DepositCollateral(context.Context, *AmountRequest) (*TxResponse, error)
	WithdrawCollateral(context.Context, *AmountRequest) (*TxResponse, error)
	GetAccount(context.Context, *GetAccountRequest) (*GetAccountResponse, error)
	GetPool(context.Context, *GetPoolRequest) (*GetPoolResponse, error)
	UpdateParams(context.Context, *UpdateParamsRequest) (*GetPoolResponse, error)
	ManageAllowList(context.Context, *ManageAllowListRequest) (*ManageAllowListResponse, error)
	Freeze(context.Context, *FreezeRequest) (*FreezeResponse, error)
	Unfreeze(context.Context, *FreezeRequest) (*FreezeResponse, error)
	CreatePaymentIntent(context.Context, *CreatePaymentIntentRequest) (*PaymentIntentResponse, error)
	GetPaymentIntent(context.Context, *GetPaymentIntentRequest) (*PaymentIntentResponse, error)
	RecordPaymentEvent(context.Context, *RecordPaymentEventRequest) (*PaymentIntentResponse, error)
	ListPaymentIntents(context.Context, *ListPaymentIntentsRequest) (*ListPaymentIntentsResponse, error)
	ListSettlements(context.Context, *ListSettlementsRequest) (*ListSettlementsResponse, error)
	SetPause(context.Context, *SetPauseRequest) (*PauseResponse, error)
}

// UnimplementedPoolServiceServer can be embedded for forward compatibility.
type UnimplementedPoolServiceServer struct{}

func (UnimplementedPoolServiceServer) Deposit(context.Context, *AmountRequest) (*TxResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Deposit not implemented")
}

func (UnimplementedPoolServiceServer) Withdraw(context.Context, *AmountRequest) (*TxResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Withdraw not implemented")
}

func (UnimplementedPoolServiceServer) Borrow(context.Context, *AmountRequest) (*TxResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Borrow not implemented")
}

func (UnimplementedPoolServiceServer) BorrowWithPayment(context.Context, *BorrowWithPaymentRequest) (*TxResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method BorrowWithPayment not implemented")
}

func (UnimplementedPoolServiceServer) Repay(context.Context, *AmountRequest) (*TxResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Repay not implemented")
}

func (UnimplementedPoolServiceServer) Liquidate(context.Context, *LiquidateRequest) (*TxResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Liquidate not implemented")
}

func (UnimplementedPoolServiceServer) DepositCollateral(context.Context, *AmountRequest) (*TxResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DepositCollateral not implemented")
}

func (UnimplementedPoolServiceServer) WithdrawCollateral(context.Context, *AmountRequest) (*TxResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method WithdrawCollateral not implemented")
}

func (UnimplementedPoolServiceServer) GetAccount(context.Context, *GetAccountRequest) (*GetAccountResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetAccount not implemented")
}

func (UnimplementedPoolServiceServer) GetPool(context.Context, *GetPoolRequest) (*GetPoolResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetPool not implemented")
}

func (UnimplementedPoolServiceServer) UpdateParams(context.Context, *UpdateParamsRequest) (*GetPoolResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateParams not implemented")
}

func (UnimplementedPoolServiceServer) ManageAllowList(context.Context, *ManageAllowListRequest) (*ManageAllowListResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ManageAllowList not implemented")
}

func (UnimplementedPoolServiceServer) Freeze(context.Context, *FreezeRequest) (*FreezeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Freeze not implemented")
}

func (UnimplementedPoolServiceServer) Unfreeze(context.Context, *FreezeRequest) (*FreezeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Unfreeze not implemented")
}

func (UnimplementedPoolServiceServer) CreatePaymentIntent(context.Context, *CreatePaymentIntentRequest) (*PaymentIntentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreatePaymentIntent not implemented")
}

func (UnimplementedPoolServiceServer) GetPaymentIntent(context.Context, *GetPaymentIntentRequest) (*PaymentIntentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetPaymentIntent not implemented")
}

func (UnimplementedPoolServiceServer) RecordPaymentEvent(context.Context, *RecordPaymentEventRequest) (*PaymentIntentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RecordPaymentEvent not implemented")
}

func (UnimplementedPoolServiceServer) ListPaymentIntents(context.Context, *ListPaymentIntentsRequest) (*ListPaymentIntentsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListPaymentIntents not implemented")
}

func (UnimplementedPoolServiceServer) ListSettlements(context.Context, *ListSettlementsRequest) (*ListSettlementsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListSettlements not implemented")
}

func (UnimplementedPoolServiceServer) SetPause(context.Context, *SetPauseRequest) (*PauseResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SetPause not implemented")
}

// RegisterPoolServiceServer registers srv on s.
func RegisterPoolServiceServer(s grpc.ServiceRegistrar, srv PoolServiceServer) {
	s.RegisterService(&PoolService_ServiceDesc, srv)
}

func _PoolService_Deposit_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(AmountRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PoolServiceServer).Deposit(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PoolService_Deposit_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PoolServiceServer).Deposit(ctx, req.(*AmountRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _PoolService_Withdraw_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(AmountRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PoolServiceServer).Withdraw(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PoolService_Withdraw_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PoolServiceServer).Withdraw(ctx, req.(*AmountRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _PoolService_Borrow_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(AmountRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PoolServiceServer).Borrow(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PoolService_Borrow_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PoolServiceServer).Borrow(ctx, req.(*AmountRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _PoolService_BorrowWithPayment_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(BorrowWithPaymentRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PoolServiceServer).BorrowWithPayment(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PoolService_BorrowWithPayment_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PoolServiceServer).BorrowWithPayment(ctx, req.(*BorrowWithPaymentRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _PoolService_Repay_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(AmountRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PoolServiceServer).Repay(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PoolService_Repay_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PoolServiceServer).Repay(ctx, req.(*AmountRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _PoolService_Liquidate_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(LiquidateRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PoolServiceServer).Liquidate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PoolService_Liquidate_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PoolServiceServer).Liquidate(ctx, req.(*LiquidateRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _PoolService_DepositCollateral_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(AmountRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PoolServiceServer).DepositCollateral(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PoolService_DepositCollateral_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PoolServiceServer).DepositCollateral(ctx, req.(*AmountRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _PoolService_WithdrawCollateral_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(AmountRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PoolServiceServer).WithdrawCollateral(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PoolService_WithdrawCollateral_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PoolServiceServer).WithdrawCollateral(ctx, req.(*AmountRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _PoolService_GetAccount_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetAccountRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PoolServiceServer).GetAccount(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PoolService_GetAccount_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PoolServiceServer).GetAccount(ctx, req.(*GetAccountRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _PoolService_GetPool_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetPoolRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PoolServiceServer).GetPool(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PoolService_GetPool_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PoolServiceServer).GetPool(ctx, req.(*GetPoolRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _PoolService_UpdateParams_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(UpdateParamsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PoolServiceServer).UpdateParams(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PoolService_UpdateParams_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PoolServiceServer).UpdateParams(ctx, req.(*UpdateParamsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _PoolService_ManageAllowList_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ManageAllowListRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PoolServiceServer).ManageAllowList(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PoolService_ManageAllowList_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PoolServiceServer).ManageAllowList(ctx, req.(*ManageAllowListRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _PoolService_Freeze_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(FreezeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PoolServiceServer).Freeze(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PoolService_Freeze_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PoolServiceServer).Freeze(ctx, req.(*FreezeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _PoolService_Unfreeze_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(FreezeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PoolServiceServer).Unfreeze(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PoolService_Unfreeze_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PoolServiceServer).Unfreeze(ctx, req.(*FreezeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _PoolService_CreatePaymentIntent_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CreatePaymentIntentRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PoolServiceServer).CreatePaymentIntent(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PoolService_CreatePaymentIntent_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PoolServiceServer).CreatePaymentIntent(ctx, req.(*CreatePaymentIntentRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _PoolService_GetPaymentIntent_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetPaymentIntentRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PoolServiceServer).GetPaymentIntent(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PoolService_GetPaymentIntent_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PoolServiceServer).GetPaymentIntent(ctx, req.(*GetPaymentIntentRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _PoolService_RecordPaymentEvent_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(RecordPaymentEventRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PoolServiceServer).RecordPaymentEvent(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PoolService_RecordPaymentEvent_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PoolServiceServer).RecordPaymentEvent(ctx, req.(*RecordPaymentEventRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _PoolService_ListSettlements_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ListSettlementsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PoolServiceServer).ListSettlements(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PoolService_ListSettlements_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PoolServiceServer).ListSettlements(ctx, req.(*ListSettlementsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _PoolService_ListPaymentIntents_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ListPaymentIntentsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PoolServiceServer).ListPaymentIntents(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PoolService_ListPaymentIntents_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PoolServiceServer).ListPaymentIntents(ctx, req.(*ListPaymentIntentsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _PoolService_SetPause_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(SetPauseRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PoolServiceServer).SetPause(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PoolService_SetPause_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PoolServiceServer).SetPause(ctx, req.(*SetPauseRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// PoolService_ServiceDesc describes PoolService for grpc.ServiceRegistrar.
var PoolService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PoolServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Deposit", Handler: _PoolService_Deposit_Handler},
		{MethodName: "Withdraw", Handler: _PoolService_Withdraw_Handler},
		{MethodName: "Borrow", Handler: _PoolService_Borrow_Handler},
		{MethodName: "BorrowWithPayment", Handler: _PoolService_BorrowWithPayment_Handler},
		{MethodName: "Repay", Handler: _PoolService_Repay_Handler},
		{MethodName: "Liquidate", Handler: _PoolService_Liquidate_Handler},
		{MethodName: "DepositCollateral", Handler: _PoolService_DepositCollateral_Handler},
		{MethodName: "WithdrawCollateral", Handler: _PoolService_WithdrawCollateral_Handler},
		{MethodName: "GetAccount", Handler: _PoolService_GetAccount_Handler},
		{MethodName: "GetPool", Handler: _PoolService_GetPool_Handler},
		{MethodName: "UpdateParams", Handler: _PoolService_UpdateParams_Handler},
		{MethodName: "ManageAllowList", Handler: _PoolService_ManageAllowList_Handler},
		{MethodName: "Freeze", Handler: _PoolService_Freeze_Handler},
		{MethodName: "Unfreeze", Handler: _PoolService_Unfreeze_Handler},
		{MethodName: "CreatePaymentIntent", Handler: _PoolService_CreatePaymentIntent_Handler},
		{MethodName: "GetPaymentIntent", Handler: _PoolService_GetPaymentIntent_Handler},
		{MethodName: "RecordPaymentEvent", Handler: _PoolService_RecordPaymentEvent_Handler},
		{MethodName: "ListPaymentIntents", Handler: _PoolService_ListPaymentIntents_Handler},
		{MethodName: "ListSettlements", Handler: _PoolService_ListSettlements_Handler},
		{MethodName: "SetPause", Handler: _PoolService_SetPause_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pool/v1/pool.json",
}

// PoolServiceClient is the client API for PoolService.
type PoolServiceClient interface {
	Deposit(ctx context.Context, in *AmountRequest, opts ...grpc.CallOption) (*TxResponse, error)
	Withdraw(ctx context.Context, in *AmountRequest, opts ...grpc.CallOption) (*TxResponse, error)
	Borrow(ctx context.Context, in *AmountRequest, opts ...grpc.CallOption) (*TxResponse, error)
	BorrowWithPayment(ctx context.Context, in *BorrowWithPaymentRequest, opts ...grpc.CallOption) (*TxResponse, error)
	Repay(ctx context.Context, in *AmountRequest, opts ...grpc.CallOption) (*TxResponse, error)
	Liquidate(ctx context.Context, in *LiquidateRequest, opts ...grpc.CallOption) (*TxResponse, error)
	DepositCollateral(ctx context.Context, in *AmountRequest, opts ...grpc.CallOption) (*TxResponse, error)
	WithdrawCollateral(ctx context.Context, in *AmountRequest, opts ...grpc.CallOption) (*TxResponse, error)
	GetAccount(ctx context.Context, in *GetAccountRequest, opts ...grpc.CallOption) (*GetAccountResponse, error)
	GetPool(ctx context.Context, in *GetPoolRequest, opts ...grpc.CallOption) (*GetPoolResponse, error)
	UpdateParams(ctx context.Context, in *UpdateParamsRequest, opts ...grpc.CallOption) (*GetPoolResponse, error)
	ManageAllowList(ctx context.Context, in *ManageAllowListRequest, opts ...grpc.CallOption) (*ManageAllowListResponse, error)
	Freeze(ctx context.Context, in *FreezeRequest, opts ...grpc.CallOption) (*FreezeResponse, error)
	Unfreeze(ctx context.Context, in *FreezeRequest, opts ...grpc.CallOption) (*FreezeResponse, error)
	CreatePaymentIntent(ctx context.Context, in *CreatePaymentIntentRequest, opts ...grpc.CallOption) (*PaymentIntentResponse, error)
	GetPaymentIntent(ctx context.Context, in *GetPaymentIntentRequest, opts ...grpc.CallOption) (*PaymentIntentResponse, error)
	RecordPaymentEvent(ctx context.Context, in *RecordPaymentEventRequest, opts ...grpc.CallOption) (*PaymentIntentResponse, error)
	ListPaymentIntents(ctx context.Context, in *ListPaymentIntentsRequest, opts ...grpc.CallOption) (*ListPaymentIntentsResponse, error)
	ListSettlements(ctx context.Context, in *ListSettlementsRequest, opts ...grpc.CallOption) (*ListSettlementsResponse, error)
	SetPause(ctx context.Context, in *SetPauseRequest, opts ...grpc.CallOption) (*PauseResponse, error)
}

type poolServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewPoolServiceClient returns a client that encodes requests with Codec.
func NewPoolServiceClient(cc grpc.ClientConnInterface) PoolServiceClient {
	return &poolServiceClient{cc: cc}
}

func (c *poolServiceClient) Deposit(ctx context.Context, in *AmountRequest, opts ...grpc.CallOption) (*TxResponse, error) {
	out := new(TxResponse)
	if err := c.cc.Invoke(ctx, PoolService_Deposit_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *poolServiceClient) Withdraw(ctx context.Context, in *AmountRequest, opts ...grpc.CallOption) (*TxResponse, error) {
	out := new(TxResponse)
	if err := c.cc.Invoke(ctx, PoolService_Withdraw_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *poolServiceClient) Borrow(ctx context.Context, in *AmountRequest, opts ...grpc.CallOption) (*TxResponse, error) {
	out := new(TxResponse)
	if err := c.cc.Invoke(ctx, PoolService_Borrow_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *poolServiceClient) BorrowWithPayment(ctx context.Context, in *BorrowWithPaymentRequest, opts ...grpc.CallOption) (*TxResponse, error) {
	out := new(TxResponse)
	if err := c.cc.Invoke(ctx, PoolService_BorrowWithPayment_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *poolServiceClient) Repay(ctx context.Context, in *AmountRequest, opts ...grpc.CallOption) (*TxResponse, error) {
	out := new(TxResponse)
	if err := c.cc.Invoke(ctx, PoolService_Repay_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *poolServiceClient) Liquidate(ctx context.Context, in *LiquidateRequest, opts ...grpc.CallOption) (*TxResponse, error) {
	out := new(TxResponse)
	if err := c.cc.Invoke(ctx, PoolService_Liquidate_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *poolServiceClient) DepositCollateral(ctx context.Context, in *AmountRequest, opts ...grpc.CallOption) (*TxResponse, error) {
	out := new(TxResponse)
	if err := c.cc.Invoke(ctx, PoolService_DepositCollateral_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *poolServiceClient) WithdrawCollateral(ctx context.Context, in *AmountRequest, opts ...grpc.CallOption) (*TxResponse, error) {
	out := new(TxResponse)
	if err := c.cc.Invoke(ctx, PoolService_WithdrawCollateral_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *poolServiceClient) GetAccount(ctx context.Context, in *GetAccountRequest, opts ...grpc.CallOption) (*GetAccountResponse, error) {
	out := new(GetAccountResponse)
	if err := c.cc.Invoke(ctx, PoolService_GetAccount_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *poolServiceClient) GetPool(ctx context.Context, in *GetPoolRequest, opts ...grpc.CallOption) (*GetPoolResponse, error) {
	out := new(GetPoolResponse)
	if err := c.cc.Invoke(ctx, PoolService_GetPool_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *poolServiceClient) UpdateParams(ctx context.Context, in *UpdateParamsRequest, opts ...grpc.CallOption) (*GetPoolResponse, error) {
	out := new(GetPoolResponse)
	if err := c.cc.Invoke(ctx, PoolService_UpdateParams_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *poolServiceClient) ManageAllowList(ctx context.Context, in *ManageAllowListRequest, opts ...grpc.CallOption) (*ManageAllowListResponse, error) {
	out := new(ManageAllowListResponse)
	if err := c.cc.Invoke(ctx, PoolService_ManageAllowList_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *poolServiceClient) Freeze(ctx context.Context, in *FreezeRequest, opts ...grpc.CallOption) (*FreezeResponse, error) {
	out := new(FreezeResponse)
	if err := c.cc.Invoke(ctx, PoolService_Freeze_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *poolServiceClient) Unfreeze(ctx context.Context, in *FreezeRequest, opts ...grpc.CallOption) (*FreezeResponse, error) {
	out := new(FreezeResponse)
	if err := c.cc.Invoke(ctx, PoolService_Unfreeze_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *poolServiceClient) CreatePaymentIntent(ctx context.Context, in *CreatePaymentIntentRequest, opts ...grpc.CallOption) (*PaymentIntentResponse, error) {
	out := new(PaymentIntentResponse)
	if err := c.cc.Invoke(ctx, PoolService_CreatePaymentIntent_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *poolServiceClient) GetPaymentIntent(ctx context.Context, in *GetPaymentIntentRequest, opts ...grpc.CallOption) (*PaymentIntentResponse, error) {
	out := new(PaymentIntentResponse)
	if err := c.cc.Invoke(ctx, PoolService_GetPaymentIntent_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *poolServiceClient) RecordPaymentEvent(ctx context.Context, in *RecordPaymentEventRequest, opts ...grpc.CallOption) (*PaymentIntentResponse, error) {
	out := new(PaymentIntentResponse)
	if err := c.cc.Invoke(ctx, PoolService_RecordPaymentEvent_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *poolServiceClient) ListSettlements(ctx context.Context, in *ListSettlementsRequest, opts ...grpc.CallOption) (*ListSettlementsResponse, error) {
	out := new(ListSettlementsResponse)
	if err := c.cc.Invoke(ctx, PoolService_ListSettlements_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *poolServiceClient) ListPaymentIntents(ctx context.Context, in *ListPaymentIntentsRequest, opts ...grpc.CallOption) (*ListPaymentIntentsResponse, error) {
	out := new(ListPaymentIntentsResponse)
	if err := c.cc.Invoke(ctx, PoolService_ListPaymentIntents_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *poolServiceClient) SetPause(ctx context.Context, in *SetPauseRequest, opts ...grpc.CallOption) (*PauseResponse, error) {
	out := new(PauseResponse)
	if err := c.cc.Invoke(ctx, PoolService_SetPause_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func callOptions(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

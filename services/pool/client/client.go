package client

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	poolv1 "vusdpool/proto/pool/v1"
)

// Client provides a thin wrapper around the pool service gRPC API.
type Client struct {
	conn *grpc.ClientConn
	api  poolv1.PoolServiceClient
}

// Dial initialises a client connection to the pool service endpoint. Without
// options the connection is insecure.
func Dial(_ context.Context, target string, opts ...grpc.DialOption) (*Client, error) {
	if len(opts) == 0 {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

// New wraps an existing connection.
func New(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn, api: poolv1.NewPoolServiceClient(conn)}
}

// Close tears down the underlying connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Raw exposes the service client for advanced usage.
func (c *Client) Raw() poolv1.PoolServiceClient {
	if c == nil {
		return nil
	}
	return c.api
}

// Op names an amount-carrying operation for Submit.
type Op string

const (
	OpDeposit            Op = "deposit"
	OpWithdraw           Op = "withdraw"
	OpBorrow             Op = "borrow"
	OpRepay              Op = "repay"
	OpDepositCollateral  Op = "deposit-collateral"
	OpWithdrawCollateral Op = "withdraw-collateral"
)

// Submit runs one of the single-account operations.
func (c *Client) Submit(ctx context.Context, op Op, account, amount string) (*poolv1.Receipt, error) {
	req := &poolv1.AmountRequest{Account: account, Amount: amount}
	var (
		resp *poolv1.TxResponse
		err  error
	)
	switch op {
	case OpDeposit:
		resp, err = c.api.Deposit(ctx, req)
	case OpWithdraw:
		resp, err = c.api.Withdraw(ctx, req)
	case OpBorrow:
		resp, err = c.api.Borrow(ctx, req)
	case OpRepay:
		resp, err = c.api.Repay(ctx, req)
	case OpDepositCollateral:
		resp, err = c.api.DepositCollateral(ctx, req)
	case OpWithdrawCollateral:
		resp, err = c.api.WithdrawCollateral(ctx, req)
	default:
		return nil, &UnknownOpError{Op: string(op)}
	}
	if err != nil {
		return nil, err
	}
	return resp.Receipt, nil
}

// UnknownOpError reports an Op Submit does not recognise.
type UnknownOpError struct {
	Op string
}

func (e *UnknownOpError) Error() string { return "unknown operation " + e.Op }

// BearerToken attaches a token to every call as "authorization: Bearer".
type BearerToken struct {
	Token string
	// AllowInsecure permits sending the token over a plaintext connection.
	AllowInsecure bool
}

func (b BearerToken) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	token := strings.TrimSpace(b.Token)
	if token == "" {
		return nil, nil
	}
	return map[string]string{"authorization": "Bearer " + token}, nil
}

func (b BearerToken) RequireTransportSecurity() bool { return !b.AllowInsecure }

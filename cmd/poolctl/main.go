package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"google.golang.org/grpc/status"

	poolv1 "vusdpool/proto/pool/v1"
	"vusdpool/services/payments"
	poolclient "vusdpool/services/pool/client"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `Usage: poolctl <command> [flags] [args]

Account operations (require a token):
  deposit|withdraw|borrow|repay <account> <amount>
  deposit-collateral|withdraw-collateral <account> <amount>
  borrow-with-payment <account> <amount> <payment-reference>
  liquidate <liquidator> <liquidatee> <amount>

Queries:
  account <account>
  pool
  history [--op op] [--limit n] [--parquet file] <account>

Administration (require an admin token):
  params --collateral-factor-bps n --liquidation-bonus-bps n --liquidation-threshold-bps n
  allowlist <event> <add|remove> <account>...
  freeze [--reason text] <account>
  unfreeze <account>
  pause|resume <pool|pool.operation>
  payment create [--reference ref] <account> <amount>
  payment get <reference>
  payment list [--limit n] <account>
  payment event [--reason text] <succeeded|failed|canceled> <reference>

Connection flags (every command): --profile --addr --token --token-env --ca
--server-name --plaintext --timeout`)
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 1
	}
	name, rest := strings.ToLower(args[0]), args[1:]
	switch name {
	case string(poolclient.OpDeposit), string(poolclient.OpWithdraw), string(poolclient.OpBorrow),
		string(poolclient.OpRepay), string(poolclient.OpDepositCollateral), string(poolclient.OpWithdrawCollateral):
		return runAmount(poolclient.Op(name), rest, stdout, stderr)
	case "borrow-with-payment":
		return runBorrowWithPayment(rest, stdout, stderr)
	case "liquidate":
		return runLiquidate(rest, stdout, stderr)
	case "account":
		return runAccount(rest, stdout, stderr)
	case "pool":
		return runPool(rest, stdout, stderr)
	case "history":
		return runHistory(rest, stdout, stderr)
	case "params":
		return runParams(rest, stdout, stderr)
	case "allowlist":
		return runAllowList(rest, stdout, stderr)
	case "freeze", "unfreeze":
		return runFreeze(name, rest, stdout, stderr)
	case "pause", "resume":
		return runPause(name, rest, stdout, stderr)
	case "payment":
		return runPayment(rest, stdout, stderr)
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command %q\n", args[0])
		usage(stderr)
		return 1
	}
}

// command bundles a flag set with the shared connection flags.
type command struct {
	fs      *flag.FlagSet
	profile string
	flags   connection
	stdout  io.Writer
	stderr  io.Writer
}

func newCommand(name string, stdout, stderr io.Writer) *command {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	c := &command{fs: fs, stdout: stdout, stderr: stderr}
	fs.StringVar(&c.profile, "profile", "", "TOML profile path (default $"+profileEnv+" or the user config dir)")
	fs.StringVar(&c.flags.Address, "addr", "", "pool service address (default $"+addressEnv+" or "+defaultAddress+")")
	fs.StringVar(&c.flags.Token, "token", "", "bearer token; prefer --token-env or the prompt")
	fs.StringVar(&c.flags.TokenEnv, "token-env", "", "environment variable holding the token (default "+defaultTokenEnv+")")
	fs.StringVar(&c.flags.CAFile, "ca", "", "PEM bundle used to verify the server")
	fs.StringVar(&c.flags.ServerName, "server-name", "", "TLS server name override")
	fs.BoolVar(&c.flags.Plaintext, "plaintext", false, "dial without TLS")
	fs.DurationVar(&c.flags.Timeout, "timeout", 0, "per-call timeout (default 10s)")
	return c
}

func (c *command) parse(args []string, want int, usageLine string) ([]string, bool) {
	if err := c.fs.Parse(args); err != nil {
		return nil, false
	}
	if want >= 0 && c.fs.NArg() != want {
		fmt.Fprintf(c.stderr, "Usage: poolctl %s\n", usageLine)
		return nil, false
	}
	return c.fs.Args(), true
}

// call dials, runs fn under the configured timeout and prints its result.
func (c *command) call(withToken bool, fn func(context.Context, *poolclient.Client) (any, error)) int {
	explicit := c.profile != ""
	path := c.profile
	if !explicit {
		path = defaultProfilePath()
	}
	p, err := loadProfile(path, explicit)
	if err != nil {
		return c.fail(err)
	}
	conn, err := resolve(p, c.flags)
	if err != nil {
		return c.fail(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), conn.Timeout)
	defer cancel()
	client, err := dialPool(ctx, conn, withToken)
	if err != nil {
		return c.fail(err)
	}
	defer client.Close()

	out, err := fn(ctx, client)
	if err != nil {
		return c.fail(err)
	}
	if out == nil {
		return 0
	}
	if err := printJSON(c.stdout, out); err != nil {
		return c.fail(err)
	}
	return 0
}

func (c *command) fail(err error) int {
	if st, ok := status.FromError(err); ok {
		fmt.Fprintf(c.stderr, "Error: %s: %s\n", st.Code(), st.Message())
		return 1
	}
	fmt.Fprintf(c.stderr, "Error: %v\n", err)
	return 1
}

func runAmount(op poolclient.Op, args []string, stdout, stderr io.Writer) int {
	c := newCommand(string(op), stdout, stderr)
	rest, ok := c.parse(args, 2, string(op)+" [flags] <account> <amount>")
	if !ok {
		return 1
	}
	return c.call(true, func(ctx context.Context, client *poolclient.Client) (any, error) {
		return client.Submit(ctx, op, rest[0], rest[1])
	})
}

func runBorrowWithPayment(args []string, stdout, stderr io.Writer) int {
	c := newCommand("borrow-with-payment", stdout, stderr)
	rest, ok := c.parse(args, 3, "borrow-with-payment [flags] <account> <amount> <payment-reference>")
	if !ok {
		return 1
	}
	return c.call(true, func(ctx context.Context, client *poolclient.Client) (any, error) {
		api := client.Raw()
		resp, err := api.BorrowWithPayment(ctx, &poolv1.BorrowWithPaymentRequest{Account: rest[0], Amount: rest[1], PaymentReference: rest[2]})
		if err != nil {
			return nil, err
		}
		return resp.Receipt, nil
	})
}

func runLiquidate(args []string, stdout, stderr io.Writer) int {
	c := newCommand("liquidate", stdout, stderr)
	rest, ok := c.parse(args, 3, "liquidate [flags] <liquidator> <liquidatee> <amount>")
	if !ok {
		return 1
	}
	return c.call(true, func(ctx context.Context, client *poolclient.Client) (any, error) {
		api := client.Raw()
		resp, err := api.Liquidate(ctx, &poolv1.LiquidateRequest{Liquidator: rest[0], Liquidatee: rest[1], Amount: rest[2]})
		if err != nil {
			return nil, err
		}
		return resp.Receipt, nil
	})
}

func runAccount(args []string, stdout, stderr io.Writer) int {
	c := newCommand("account", stdout, stderr)
	rest, ok := c.parse(args, 1, "account [flags] <account>")
	if !ok {
		return 1
	}
	return c.call(false, func(ctx context.Context, client *poolclient.Client) (any, error) {
		api := client.Raw()
		resp, err := api.GetAccount(ctx, &poolv1.GetAccountRequest{Account: rest[0]})
		if err != nil {
			return nil, err
		}
		return resp.Position, nil
	})
}

func runPool(args []string, stdout, stderr io.Writer) int {
	c := newCommand("pool", stdout, stderr)
	if _, ok := c.parse(args, 0, "pool [flags]"); !ok {
		return 1
	}
	return c.call(false, func(ctx context.Context, client *poolclient.Client) (any, error) {
		api := client.Raw()
		resp, err := api.GetPool(ctx, &poolv1.GetPoolRequest{})
		if err != nil {
			return nil, err
		}
		return resp.Pool, nil
	})
}

func runHistory(args []string, stdout, stderr io.Writer) int {
	c := newCommand("history", stdout, stderr)
	var ops stringList
	c.fs.Var(&ops, "op", "restrict to an operation (repeatable)")
	limit := c.fs.Int("limit", 0, "maximum rows (server default 100)")
	parquetPath := c.fs.String("parquet", "", "write the rows to a Parquet file instead of stdout")
	rest, ok := c.parse(args, 1, "history [flags] <account>")
	if !ok {
		return 1
	}
	return c.call(false, func(ctx context.Context, client *poolclient.Client) (any, error) {
		api := client.Raw()
		resp, err := api.ListSettlements(ctx, &poolv1.ListSettlementsRequest{Account: rest[0], Ops: ops, Limit: *limit})
		if err != nil {
			return nil, err
		}
		if *parquetPath == "" {
			return resp.Settlements, nil
		}
		if err := writeSettlementsParquet(*parquetPath, resp.Settlements); err != nil {
			return nil, err
		}
		fmt.Fprintf(stdout, "wrote %d rows to %s\n", len(resp.Settlements), *parquetPath)
		return nil, nil
	})
}

func runParams(args []string, stdout, stderr io.Writer) int {
	c := newCommand("params", stdout, stderr)
	factor := c.fs.Uint64("collateral-factor-bps", 0, "collateral factor in basis points")
	bonus := c.fs.Uint64("liquidation-bonus-bps", 0, "liquidation bonus in basis points (>= 10000)")
	threshold := c.fs.Uint64("liquidation-threshold-bps", 0, "liquidation threshold in basis points")
	if _, ok := c.parse(args, 0, "params [flags]"); !ok {
		return 1
	}
	return c.call(true, func(ctx context.Context, client *poolclient.Client) (any, error) {
		api := client.Raw()
		current, err := api.GetPool(ctx, &poolv1.GetPoolRequest{})
		if err != nil {
			return nil, err
		}
		req := &poolv1.UpdateParamsRequest{
			CollateralFactorBps:     orDefault(*factor, current.Pool.CollateralFactorBps),
			LiquidationBonusBps:     orDefault(*bonus, current.Pool.LiquidationBonusBps),
			LiquidationThresholdBps: orDefault(*threshold, current.Pool.LiquidationThresholdBps),
		}
		resp, err := api.UpdateParams(ctx, req)
		if err != nil {
			return nil, err
		}
		return resp.Pool, nil
	})
}

func runAllowList(args []string, stdout, stderr io.Writer) int {
	c := newCommand("allowlist", stdout, stderr)
	rest, ok := c.parse(args, -1, "allowlist [flags] <event> <add|remove> <account>...")
	if !ok {
		return 1
	}
	if len(rest) < 3 {
		fmt.Fprintln(stderr, "Usage: poolctl allowlist [flags] <event> <add|remove> <account>...")
		return 1
	}
	return c.call(true, func(ctx context.Context, client *poolclient.Client) (any, error) {
		api := client.Raw()
		return api.ManageAllowList(ctx, &poolv1.ManageAllowListRequest{Event: rest[0], Action: strings.ToLower(rest[1]), Accounts: rest[2:]})
	})
}

func runFreeze(name string, args []string, stdout, stderr io.Writer) int {
	c := newCommand(name, stdout, stderr)
	var reason *string
	if name == "freeze" {
		reason = c.fs.String("reason", "", "note stored with the freeze")
	}
	rest, ok := c.parse(args, 1, name+" [flags] <account>")
	if !ok {
		return 1
	}
	return c.call(true, func(ctx context.Context, client *poolclient.Client) (any, error) {
		api := client.Raw()
		if reason == nil {
			return api.Unfreeze(ctx, &poolv1.FreezeRequest{Account: rest[0]})
		}
		return api.Freeze(ctx, &poolv1.FreezeRequest{Account: rest[0], Reason: *reason})
	})
}

func runPause(name string, args []string, stdout, stderr io.Writer) int {
	c := newCommand(name, stdout, stderr)
	rest, ok := c.parse(args, 1, name+" [flags] <pool|pool.operation>")
	if !ok {
		return 1
	}
	return c.call(true, func(ctx context.Context, client *poolclient.Client) (any, error) {
		api := client.Raw()
		return api.SetPause(ctx, &poolv1.SetPauseRequest{Module: rest[0], Paused: name == "pause"})
	})
}

func runPayment(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "Usage: poolctl payment <create|get|list|event> ...")
		return 1
	}
	sub, rest := strings.ToLower(args[0]), args[1:]
	c := newCommand("payment "+sub, stdout, stderr)
	intent := func(resp *poolv1.PaymentIntentResponse, err error) (any, error) {
		if err != nil {
			return nil, err
		}
		return resp.Intent, nil
	}
	switch sub {
	case "create":
		reference := c.fs.String("reference", "", "intent reference (generated when empty)")
		pos, ok := c.parse(rest, 2, "payment create [flags] <account> <amount>")
		if !ok {
			return 1
		}
		return c.call(true, func(ctx context.Context, client *poolclient.Client) (any, error) {
			api := client.Raw()
			return intent(api.CreatePaymentIntent(ctx, &poolv1.CreatePaymentIntentRequest{Reference: *reference, Account: pos[0], Amount: pos[1]}))
		})
	case "get":
		pos, ok := c.parse(rest, 1, "payment get [flags] <reference>")
		if !ok {
			return 1
		}
		return c.call(false, func(ctx context.Context, client *poolclient.Client) (any, error) {
			api := client.Raw()
			return intent(api.GetPaymentIntent(ctx, &poolv1.GetPaymentIntentRequest{Reference: pos[0]}))
		})
	case "list":
		limit := c.fs.Int("limit", 0, "maximum intents (server default 50)")
		pos, ok := c.parse(rest, 1, "payment list [flags] <account>")
		if !ok {
			return 1
		}
		return c.call(false, func(ctx context.Context, client *poolclient.Client) (any, error) {
			api := client.Raw()
			resp, err := api.ListPaymentIntents(ctx, &poolv1.ListPaymentIntentsRequest{Account: pos[0], Limit: *limit})
			if err != nil {
				return nil, err
			}
			return resp.Intents, nil
		})
	case "event":
		reason := c.fs.String("reason", "", "failure reason for failed or canceled events")
		pos, ok := c.parse(rest, 2, "payment event [flags] <succeeded|failed|canceled> <reference>")
		if !ok {
			return 1
		}
		eventType, err := paymentEventType(pos[0])
		if err != nil {
			return c.fail(err)
		}
		return c.call(true, func(ctx context.Context, client *poolclient.Client) (any, error) {
			api := client.Raw()
			return intent(api.RecordPaymentEvent(ctx, &poolv1.RecordPaymentEventRequest{Type: eventType, Reference: pos[1], Reason: *reason}))
		})
	default:
		fmt.Fprintf(stderr, "Unknown payment subcommand %q\n", args[0])
		return 1
	}
}

// paymentEventType accepts the short names as well as the webhook event types.
func paymentEventType(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "succeeded", payments.EventSucceeded:
		return payments.EventSucceeded, nil
	case "failed", payments.EventFailed:
		return payments.EventFailed, nil
	case "canceled", "cancelled", payments.EventCanceled:
		return payments.EventCanceled, nil
	default:
		return "", fmt.Errorf("unknown payment event %q", raw)
	}
}

func printJSON(w io.Writer, v any) error {
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(pretty))
	return err
}

func orDefault(v, fallback uint64) uint64 {
	if v == 0 {
		return fallback
	}
	return v
}

// stringList collects a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*s = append(*s, part)
		}
	}
	return nil
}

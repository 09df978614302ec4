package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/kevin07696/ecommerce-client/internal/adapters/logging"
	"github.com/kevin07696/ecommerce-client/internal/config"
	"github.com/kevin07696/ecommerce-client/pkg/ecommerce"
	pkgerrors "github.com/kevin07696/ecommerce-client/pkg/errors"
)

type options struct {
	currency          string
	amount            string
	card              ecommerce.Card
	token             string
	guid              string
	customerReference string
	terminalDateTime  string
}

func main() {
	var (
		action  = flag.String("action", "", "Operation to run (see usage)")
		envFile = flag.String("env-file", "", "Optional .env file (default .env)")
		timeout = flag.Duration("timeout", 60*time.Second, "Overall deadline for the call")
		opts    options
	)
	flag.StringVar(&opts.currency, "currency", "", "ISO 4217 alpha code, e.g. ISK")
	flag.StringVar(&opts.amount, "amount", "", "Amount with two decimals, e.g. 10.00")
	flag.StringVar(&opts.card.Number, "card", "", "Card number")
	flag.StringVar(&opts.card.ExpiryDateMMYY, "expiry", "", "Card expiry as MMYY")
	flag.StringVar(&opts.card.VerificationCode, "cvc", "", "Card verification code")
	flag.StringVar(&opts.token, "token", "", "Token name")
	flag.StringVar(&opts.guid, "guid", "", "GUID of the original authorization, payment or refund")
	flag.StringVar(&opts.customerReference, "reference", "", "Customer reference")
	flag.StringVar(&opts.terminalDateTime, "terminal-datetime", "", "Terminal timestamp (yyyyMMddHHmmssSSS) of the call to cancel")
	flag.Parse()

	if *action == "" {
		usage()
		os.Exit(1)
	}

	var files []string
	if *envFile != "" {
		files = append(files, *envFile)
	}
	cfg, err := config.LoadFromEnv(files...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logger.Environment, cfg.Logger.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := cfg.ResolveSharedSecret(ctx, logger); err != nil {
		logger.Fatal("Failed to resolve shared secret", zap.Error(err))
	}

	client, err := ecommerce.NewClient(cfg.ClientConfig(), ecommerce.WithLogger(logger))
	if err != nil {
		logger.Fatal("Failed to create client", zap.Error(err))
	}

	result, err := run(ctx, client, *action, opts)
	if err != nil {
		printError(err)
		os.Exit(2)
	}
	printJSON(result)
}

func run(ctx context.Context, c *ecommerce.Client, action string, o options) (any, error) {
	tx := ecommerce.Transaction{
		Currency:          o.currency,
		Amount:            o.amount,
		Card:              o.card,
		Token:             o.token,
		CustomerReference: o.customerReference,
	}

	switch action {
	case "authorize":
		return c.Authorize(ctx, tx)
	case "pay":
		return c.Pay(ctx, tx)
	case "capture":
		return c.CaptureAuthorization(ctx, o.currency, o.amount, o.guid)
	case "refund":
		return c.Refund(ctx, tx)
	case "refund-payment":
		return c.RefundPayment(ctx, o.currency, o.amount, o.guid)
	case "reverse-authorization":
		return c.ReverseAuthorization(ctx, o.guid, o.customerReference)
	case "reverse-payment":
		return c.ReversePayment(ctx, o.guid, o.customerReference)
	case "reverse-refund":
		return c.ReverseRefund(ctx, o.guid, o.customerReference)
	case "cancel-authorization":
		return c.CancelAuthorization(ctx, o.currency, o.amount, o.terminalDateTime)
	case "cancel-payment":
		return c.CancelPayment(ctx, o.currency, o.amount, o.terminalDateTime)
	case "cancel-refund":
		return c.CancelRefund(ctx, o.currency, o.amount, o.terminalDateTime)
	case "token-create":
		return c.CreateToken(ctx, o.token, o.card)
	case "token-update":
		return c.UpdateToken(ctx, o.token, o.card)
	case "token-get":
		return c.GetToken(ctx, o.token)
	case "token-delete":
		return c.DeleteToken(ctx, o.token)
	default:
		return nil, fmt.Errorf("unknown action: %s", action)
	}
}

func usage() {
	fmt.Println("Usage: ecommerce-cli -action=<action> [options]")
	fmt.Println("Actions:")
	fmt.Println("  authorize | pay | refund            - -currency -amount and -card/-expiry[/-cvc] and/or -token")
	fmt.Println("  capture                             - -currency -amount -guid=<authorization guid>")
	fmt.Println("  refund-payment                      - -currency -amount -guid=<payment guid>")
	fmt.Println("  reverse-authorization|payment|refund - -guid [-reference]")
	fmt.Println("  cancel-authorization|payment|refund  - -currency -amount -terminal-datetime")
	fmt.Println("  token-create | token-update          - -token -card -expiry")
	fmt.Println("  token-get | token-delete             - -token")
	fmt.Println()
	flag.PrintDefaults()
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode result: %v\n", err)
	}
}

func printError(err error) {
	var ge *pkgerrors.GatewayError
	if !errors.As(err, &ge) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}

	out := map[string]any{
		"kind":    ge.Kind,
		"message": ge.Message,
	}
	if len(ge.Violations) > 0 {
		out["violations"] = ge.Violations
	}
	if ge.StatusCode != 0 {
		out["status_code"] = ge.StatusCode
	}
	if ge.ErrorMessage != nil {
		out["gateway_error"] = ge.ErrorMessage
	}
	if ge.RawBody != "" {
		out["raw_body"] = ge.RawBody
	}
	if ge.TerminalDateTime != "" {
		out["terminal_date_time"] = ge.TerminalDateTime
	}
	if ge.Err != nil {
		out["cause"] = ge.Err.Error()
	}

	enc := json.NewEncoder(os.Stderr)
	enc.SetIndent("", "  ")
	enc.Encode(out)
}

package cmd

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vibast-solutions/ms-go-comgate/app/comgate"
)

type gatewayCreateOptions struct {
	price    int64
	currency string
	country  string
	label    string
	refID    string
	method   string
	email    string
	lang     string
}

var createOpts gatewayCreateOptions

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Talk to the Comgate API directly",
}

var gatewayCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a single prepare-only transaction and print the redirect",
	Long:  "Create a single prepare-only transaction with the configured merchant. Useful to check credentials against the gateway test mode.",
	Run: func(_ *cobra.Command, _ []string) {
		cfg := mustLoadConfig()
		client, err := comgate.NewClient(comgate.Config{
			BaseURL:     cfg.Comgate.BaseURL,
			Merchant:    cfg.Comgate.Merchant,
			Secret:      cfg.Comgate.Secret,
			Test:        cfg.Comgate.Test,
			HTTPTimeout: cfg.Comgate.HTTPTimeout,
		})
		if err != nil {
			logrus.WithError(err).Fatal("Invalid Comgate configuration")
		}

		if createOpts.country == "" {
			createOpts.country = cfg.Comgate.Country
		}
		if createOpts.method == "" {
			createOpts.method = cfg.Comgate.PaymentMethods
		}
		if createOpts.currency == "" {
			if currencies := cfg.Comgate.SupportedCurrencies(); len(currencies) > 0 {
				createOpts.currency = currencies[0]
			}
		}

		runCommand("gateway_create", func(ctx context.Context) error {
			return createGatewayTransaction(ctx, client, createOpts)
		})
	},
}

func init() {
	rootCmd.AddCommand(gatewayCmd)
	gatewayCmd.AddCommand(gatewayCreateCmd)

	flags := gatewayCreateCmd.Flags()
	flags.Int64Var(&createOpts.price, "price", 1000, "Price in minor units")
	flags.StringVar(&createOpts.currency, "currency", "", "Currency code (defaults to the first configured currency)")
	flags.StringVar(&createOpts.country, "country", "", "Country code (defaults to COMGATE_COUNTRY)")
	flags.StringVar(&createOpts.label, "label", "Test transaction", "Product label shown on the payment page")
	flags.StringVar(&createOpts.refID, "ref-id", "", "Reference id (defaults to a random uuid)")
	flags.StringVar(&createOpts.method, "method", "", "Payment method filter (defaults to COMGATE_PAYMENT_METHODS)")
	flags.StringVar(&createOpts.email, "email", "", "Payer email")
	flags.StringVar(&createOpts.lang, "lang", "", "Payment page language")
}

type transactionCreator interface {
	CreateTransaction(ctx context.Context, req *comgate.TransactionRequest) (*comgate.CreateResult, error)
}

func createGatewayTransaction(ctx context.Context, client transactionCreator, opts gatewayCreateOptions) error {
	if strings.TrimSpace(opts.email) == "" {
		return errors.New("--email is required")
	}
	refID := strings.TrimSpace(opts.refID)
	if refID == "" {
		refID = uuid.NewString()
	}

	req := &comgate.TransactionRequest{
		Country:     strings.ToUpper(opts.country),
		Price:       opts.price,
		Currency:    strings.ToUpper(opts.currency),
		Label:       opts.label,
		RefID:       refID,
		Method:      opts.method,
		Email:       strings.TrimSpace(opts.email),
		PrepareOnly: true,
	}
	if lang := strings.TrimSpace(opts.lang); lang != "" {
		req.Lang = &lang
	}

	result, err := client.CreateTransaction(ctx, req)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"ref_id":   refID,
		"trans_id": result.TransID,
		"redirect": result.Redirect,
	}).Info("Comgate transaction created")
	return nil
}

func runCommand(name string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	runJob(name, func() error { return fn(ctx) })
}

func runJob(name string, fn func() error) {
	start := time.Now()
	err := fn()
	latency := time.Since(start)
	if err != nil {
		logrus.WithError(err).WithField("job", name).WithField("latency", latency.String()).Error("job_failed")
		return
	}
	logrus.WithField("job", name).WithField("latency", latency.String()).Info("job_completed")
}

package comgate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-comgate/app/factory"
)

const DefaultBaseURL = "https://payments.comgate.cz/v1.0/"

type Config struct {
	BaseURL     string
	Merchant    string
	Secret      string
	Test        bool
	HTTPTimeout time.Duration
}

// TransactionRequest describes a create call. Merchant, secret and the test
// flag are taken from the client configuration.
type TransactionRequest struct {
	Country     string
	Price       int64
	Currency    string
	Label       string
	RefID       string
	Method      string
	Email       string
	PrepareOnly bool

	Phone         *string
	Account       *string
	ProductName   *string
	Lang          *string
	Preauth       *bool
	InitRecurring *bool
	Verification  *bool
	EETReport     *bool
	EETData       *string
	Embedded      *bool
}

type CreateResult struct {
	TransID  string
	Redirect string
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     logrus.FieldLogger
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Merchant) == "" {
		return nil, &ConfigurationError{Setting: "merchant"}
	}
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, &ConfigurationError{Setting: "secret"}
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     factory.NewModuleLogger("comgate-client"),
	}, nil
}

// CreateTransaction prepares a redirect based transaction. It performs a
// single attempt; retrying is up to the caller.
func (c *Client) CreateTransaction(ctx context.Context, req *TransactionRequest) (*CreateResult, error) {
	if err := validateTransactionRequest(req); err != nil {
		return nil, err
	}

	l := c.logger.WithFields(logrus.Fields{
		"ref_id":   req.RefID,
		"price":    req.Price,
		"currency": req.Currency,
		"test":     c.cfg.Test,
	})
	l.Info("Creating Comgate transaction")

	values := EncodeParams(c.createParams(req))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("create"), strings.NewReader(values.Encode()))
	if err != nil {
		return nil, &UnavailableError{Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		l.WithError(err).Error("Comgate create request failed")
		return nil, &UnavailableError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		l.WithError(err).Error("Failed to read Comgate response")
		return nil, &UnavailableError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		l.WithField("http_status", resp.StatusCode).Error("Comgate returned non-success status")
		return nil, &UnavailableError{Err: fmt.Errorf("unexpected http status %d: %s", resp.StatusCode, truncate(string(body), 512))}
	}

	result, err := parseCreateResponse(body)
	if err != nil {
		l.WithError(err).Error("Comgate create transaction failed")
		return nil, err
	}

	l.WithField("trans_id", result.TransID).Info("Comgate transaction created")
	return result, nil
}

func (c *Client) Merchant() string {
	return c.cfg.Merchant
}

func (c *Client) createParams(req *TransactionRequest) map[string]any {
	return map[string]any{
		"merchant":      c.cfg.Merchant,
		"test":          c.cfg.Test,
		"country":       req.Country,
		"price":         req.Price,
		"curr":          req.Currency,
		"label":         req.Label,
		"refId":         req.RefID,
		"method":        req.Method,
		"account":       req.Account,
		"email":         req.Email,
		"phone":         req.Phone,
		"name":          req.ProductName,
		"lang":          req.Lang,
		"prepareOnly":   req.PrepareOnly,
		"secret":        c.cfg.Secret,
		"preauth":       req.Preauth,
		"initRecurring": req.InitRecurring,
		"verification":  req.Verification,
		"eetReport":     req.EETReport,
		"eetData":       req.EETData,
		"embedded":      req.Embedded,
	}
}

func (c *Client) endpoint(path string) string {
	return strings.TrimRight(strings.TrimSpace(c.cfg.BaseURL), "/") + "/" + path
}

func validateTransactionRequest(req *TransactionRequest) error {
	if req == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidRequest)
	}
	if !req.PrepareOnly {
		return ErrPrepareOnlyRequired
	}
	if !IsSupportedCountry(req.Country) {
		return fmt.Errorf("%w: unsupported country %q", ErrInvalidRequest, req.Country)
	}
	if !IsSupportedCurrency(req.Currency) {
		return fmt.Errorf("%w: unsupported currency %q", ErrInvalidRequest, req.Currency)
	}
	if req.Lang != nil && !IsSupportedLang(*req.Lang) {
		return fmt.Errorf("%w: unsupported lang %q", ErrInvalidRequest, *req.Lang)
	}
	if req.Price <= 0 {
		return fmt.Errorf("%w: price must be > 0", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.RefID) == "" {
		return fmt.Errorf("%w: refId is required", ErrInvalidRequest)
	}
	return nil
}

func parseCreateResponse(body []byte) (*CreateResult, error) {
	content, err := url.ParseQuery(strings.TrimSpace(string(body)))
	if err != nil {
		return nil, &UnavailableError{Err: fmt.Errorf("malformed response body: %w", err)}
	}

	codeRaw := strings.TrimSpace(content.Get("code"))
	if codeRaw == "" {
		return nil, &UnavailableError{Err: errors.New("response code is missing")}
	}
	code, err := strconv.Atoi(codeRaw)
	if err != nil {
		return nil, &UnavailableError{Err: fmt.Errorf("malformed response code %q", codeRaw)}
	}

	if code != 0 {
		return nil, &RejectedError{
			Code:           code,
			Message:        RejectionMessage(code),
			GatewayMessage: strings.TrimSpace(content.Get("message")),
		}
	}

	transID := strings.TrimSpace(content.Get("transId"))
	redirect := strings.TrimSpace(content.Get("redirect"))
	if transID == "" || redirect == "" {
		return nil, &UnavailableError{Err: errors.New("response is missing transId or redirect")}
	}

	return &CreateResult{TransID: transID, Redirect: redirect}, nil
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max]
}

package types

type InitiatePaymentRequest struct {
	RequestId     string  `json:"request_id,omitempty"`
	OrderToken    string  `json:"order_token"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency,omitempty"`
	CustomerEmail string  `json:"customer_email,omitempty"`
}

func (r *InitiatePaymentRequest) GetRequestId() string     { return r.RequestId }
func (r *InitiatePaymentRequest) GetOrderToken() string    { return r.OrderToken }
func (r *InitiatePaymentRequest) GetAmount() float64       { return r.Amount }
func (r *InitiatePaymentRequest) GetCurrency() string      { return r.Currency }
func (r *InitiatePaymentRequest) GetCustomerEmail() string { return r.CustomerEmail }

type GetOrderPaymentRequest struct {
	OrderToken string `json:"order_token"`
}

func (r *GetOrderPaymentRequest) GetOrderToken() string { return r.OrderToken }

type HandleStatusNotificationRequest struct {
	RequestId string `json:"request_id,omitempty"`
	Payload   string `json:"payload"`
}

func (r *HandleStatusNotificationRequest) GetRequestId() string { return r.RequestId }
func (r *HandleStatusNotificationRequest) GetPayload() string   { return r.Payload }

type GatewayResponse struct {
	Success       bool    `json:"success"`
	Kind          string  `json:"kind"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	TransactionId *string `json:"transaction_id,omitempty"`
	RedirectUrl   *string `json:"redirect_url,omitempty"`
	Error         *string `json:"error,omitempty"`
}

type Payment struct {
	Token         string  `json:"token"`
	Gateway       string  `json:"gateway"`
	TotalCents    int64   `json:"total_cents"`
	CapturedCents int64   `json:"captured_cents"`
	Currency      string  `json:"currency"`
	CustomerEmail string  `json:"customer_email"`
	ChargeStatus  string  `json:"charge_status"`
	IsActive      bool    `json:"is_active"`
	PspReference  *string `json:"psp_reference,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

type Transaction struct {
	Kind          string  `json:"kind"`
	IsSuccess     bool    `json:"is_success"`
	AmountCents   int64   `json:"amount_cents"`
	Currency      string  `json:"currency"`
	TransactionId string  `json:"transaction_id"`
	Error         *string `json:"error,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

type OrderPaymentResponse struct {
	OrderToken    string         `json:"order_token"`
	PaymentStatus string         `json:"payment_status"`
	RedirectUrl   string         `json:"redirect_url,omitempty"`
	TransactionId string         `json:"transaction_id,omitempty"`
	Payment       *Payment       `json:"payment,omitempty"`
	Transactions  []*Transaction `json:"transactions"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

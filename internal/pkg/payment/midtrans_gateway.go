package payment

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

var ErrGatewayNotConfigured = errors.New("payment gateway is not configured")

type ChargeRequest struct {
	OrderID       string
	Amount        int64
	ItemName      string
	QuestionCount int64
	CustomerName  string
	CustomerEmail string
	FinishURL     string
}

type ChargeSession struct {
	Token       string
	RedirectURL string
}

// Gateway creates hosted payment pages and authenticates their callbacks.
type Gateway interface {
	CreateCharge(ctx context.Context, req ChargeRequest) (*ChargeSession, error)
	VerifySignature(orderID, statusCode, grossAmount, signature string) bool
}

type MidtransGateway struct {
	serverKey string
	client    snap.Client
}

func NewMidtransGateway(serverKey string, isProduction bool) *MidtransGateway {
	env := midtrans.Sandbox
	if isProduction {
		env = midtrans.Production
	}

	g := &MidtransGateway{serverKey: serverKey}
	g.client.New(serverKey, env)
	return g
}

func (g *MidtransGateway) CreateCharge(ctx context.Context, req ChargeRequest) (*ChargeSession, error) {
	if g.serverKey == "" {
		return nil, ErrGatewayNotConfigured
	}

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderID,
			GrossAmt: req.Amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.CustomerName,
			Email: req.CustomerEmail,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    "QUESTIONS",
				Price: req.Amount,
				Qty:   1,
				Name:  fmt.Sprintf("%s (%d questions)", req.ItemName, req.QuestionCount),
			},
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: true,
		},
		EnabledPayments: snap.AllSnapPaymentType,
	}
	if req.FinishURL != "" {
		snapReq.Callbacks = &snap.Callbacks{Finish: req.FinishURL}
	}

	resp, midErr := g.client.CreateTransaction(snapReq)
	if midErr != nil {
		return nil, fmt.Errorf("midtrans error: %v", midErr.GetMessage())
	}
	return &ChargeSession{Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

// VerifySignature checks SHA512(order_id + status_code + gross_amount + server_key).
func (g *MidtransGateway) VerifySignature(orderID, statusCode, grossAmount, signature string) bool {
	if g.serverKey == "" || signature == "" {
		return false
	}
	expected := Signature(orderID, statusCode, grossAmount, g.serverKey)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}

func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

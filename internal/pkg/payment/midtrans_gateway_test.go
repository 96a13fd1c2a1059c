package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	g := NewMidtransGateway("server-key", false)
	sig := Signature("DOCQA-1", "200", "100.00", "server-key")

	assert.Len(t, sig, 128)
	assert.True(t, g.VerifySignature("DOCQA-1", "200", "100.00", sig))
	assert.False(t, g.VerifySignature("DOCQA-1", "200", "999.00", sig))
	assert.False(t, g.VerifySignature("DOCQA-1", "200", "100.00", ""))
	assert.False(t, NewMidtransGateway("", false).VerifySignature("DOCQA-1", "200", "100.00", Signature("DOCQA-1", "200", "100.00", "")))
}

func TestCreateCharge_RequiresServerKey(t *testing.T) {
	_, err := NewMidtransGateway("", false).CreateCharge(context.Background(), ChargeRequest{OrderID: "x", Amount: 1})
	assert.ErrorIs(t, err, ErrGatewayNotConfigured)
}

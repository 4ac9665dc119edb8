package security

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWebhookSignatureVerifies(t *testing.T) {
	body := []byte(`{"id":"evt_1","type":"invoice.payment_succeeded"}`)
	sig := SignWebhookBody("whsec_test", body)

	require.True(t, VerifyWebhookSignature("whsec_test", body, sig))
}

func TestWebhookSignatureRejectsTamperedBody(t *testing.T) {
	body := []byte(`{"id":"evt_1"}`)
	sig := SignWebhookBody("whsec_test", body)

	require.False(t, VerifyWebhookSignature("whsec_test", []byte(`{"id":"evt_2"}`), sig))
}

func TestWebhookSignatureRejectsWrongSecret(t *testing.T) {
	body := []byte(`{"id":"evt_1"}`)
	sig := SignWebhookBody("whsec_test", body)

	require.False(t, VerifyWebhookSignature("whsec_other", body, sig))
}

func TestWebhookSignatureRejectsEmpty(t *testing.T) {
	require.False(t, VerifyWebhookSignature("whsec_test", []byte("body"), ""))
}

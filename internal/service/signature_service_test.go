package service

import (
	"testing"
	"time"

	"experience-gift-fulfillment/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test_secret"

func newTestVerifier() *HMACSignatureService {
	return NewHMACSignatureService(testSecret, 5*time.Minute)
}

func TestSignature_ValidRoundTrip(t *testing.T) {
	v := newTestVerifier()
	body := []byte(`{"id":"evt_1","type":"payment.completed"}`)

	header := v.Sign(time.Now().Unix(), body)
	assert.NoError(t, v.Verify(body, header))
}

func TestSignature_TamperedBody(t *testing.T) {
	v := newTestVerifier()
	body := []byte(`{"amount":100}`)

	header := v.Sign(time.Now().Unix(), body)

	err := v.Verify([]byte(`{"amount":999}`), header)
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "SEC_001", appErr.Code)
}

func TestSignature_WrongSecret(t *testing.T) {
	v := newTestVerifier()
	other := NewHMACSignatureService("whsec_other", 5*time.Minute)
	body := []byte(`{}`)

	header := other.Sign(time.Now().Unix(), body)

	err := v.Verify(body, header)
	require.Error(t, err)
	assert.Equal(t, "SEC_001", err.(*apperror.AppError).Code)
}

func TestSignature_StaleTimestamp(t *testing.T) {
	v := newTestVerifier()
	body := []byte(`{}`)

	// Signed 10 minutes ago, skew window is 5.
	header := v.Sign(time.Now().Add(-10*time.Minute).Unix(), body)

	err := v.Verify(body, header)
	require.Error(t, err)
	assert.Equal(t, "SEC_002", err.(*apperror.AppError).Code)
}

func TestSignature_FutureTimestamp(t *testing.T) {
	v := newTestVerifier()
	body := []byte(`{}`)

	header := v.Sign(time.Now().Add(10*time.Minute).Unix(), body)

	err := v.Verify(body, header)
	require.Error(t, err)
	assert.Equal(t, "SEC_002", err.(*apperror.AppError).Code)
}

func TestSignature_MissingHeader(t *testing.T) {
	v := newTestVerifier()

	err := v.Verify([]byte(`{}`), "")
	require.Error(t, err)
	assert.Equal(t, "SEC_003", err.(*apperror.AppError).Code)
}

func TestSignature_MalformedHeader(t *testing.T) {
	v := newTestVerifier()

	for _, header := range []string{
		"garbage",
		"t=notanumber,v1=abc",
		"v1=abcdef",
		"t=1700000000",
	} {
		err := v.Verify([]byte(`{}`), header)
		require.Error(t, err, "header=%s", header)
		assert.Equal(t, "SEC_001", err.(*apperror.AppError).Code, "header=%s", header)
	}
}

func TestSignature_ExactRawBytesMatter(t *testing.T) {
	v := newTestVerifier()

	// Semantically identical JSON, different bytes: must fail.
	signed := []byte(`{"a":1,"b":2}`)
	reserialized := []byte(`{"b":2,"a":1}`)

	header := v.Sign(time.Now().Unix(), signed)
	assert.NoError(t, v.Verify(signed, header))
	assert.Error(t, v.Verify(reserialized, header))
}

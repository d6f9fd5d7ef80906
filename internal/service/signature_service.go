package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"experience-gift-fulfillment/pkg/apperror"
)

// HMACSignatureService implements ports.SignatureVerifier using HMAC-SHA256
// over the raw request body, bound to a sender-supplied timestamp.
//
// Header format: t=<unix seconds>,v1=<lowercase hex digest>
// Signed payload: "<t>.<raw body bytes>"
type HMACSignatureService struct {
	secret []byte
	skew   time.Duration
	now    func() time.Time
}

// NewHMACSignatureService creates a signature verifier with the shared
// webhook secret and the allowed clock skew window.
func NewHMACSignatureService(secret string, skew time.Duration) *HMACSignatureService {
	return &HMACSignatureService{
		secret: []byte(secret),
		skew:   skew,
		now:    time.Now,
	}
}

// Sign computes the signature header value for the given timestamp and body.
func (s *HMACSignatureService) Sign(timestamp int64, rawBody []byte) string {
	return fmt.Sprintf("t=%d,v1=%s", timestamp, s.digest(timestamp, rawBody))
}

// Verify checks the signature header against the exact raw body bytes.
// Uses constant-time comparison to prevent timing attacks.
func (s *HMACSignatureService) Verify(rawBody []byte, signatureHeader string) error {
	if signatureHeader == "" {
		return apperror.ErrMissingSignature()
	}

	timestamp, provided, err := parseSignatureHeader(signatureHeader)
	if err != nil {
		return apperror.ErrInvalidSignature()
	}

	drift := s.now().Unix() - timestamp
	if drift < 0 {
		drift = -drift
	}
	if time.Duration(drift)*time.Second > s.skew {
		return apperror.ErrSignatureExpired()
	}

	expected := s.digest(timestamp, rawBody)
	if !hmac.Equal([]byte(expected), []byte(provided)) {
		return apperror.ErrInvalidSignature()
	}
	return nil
}

func (s *HMACSignatureService) digest(timestamp int64, rawBody []byte) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(rawBody)
	return hex.EncodeToString(mac.Sum(nil))
}

// parseSignatureHeader splits "t=<unix>,v1=<hex>" into its parts.
func parseSignatureHeader(header string) (timestamp int64, signature string, err error) {
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			return 0, "", fmt.Errorf("malformed signature element %q", part)
		}
		switch key {
		case "t":
			timestamp, err = strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, "", fmt.Errorf("parsing timestamp: %w", err)
			}
		case "v1":
			signature = value
		}
	}
	if timestamp == 0 || signature == "" {
		return 0, "", fmt.Errorf("signature header missing t or v1 element")
	}
	return timestamp, signature, nil
}

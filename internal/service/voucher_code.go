package service

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const (
	codePrefix    = "XTG-"
	codeRandomLen = 8

	// Unambiguous uppercase alphanumerics: no 0/O or 1/I. 32 symbols, so a
	// byte modulo the alphabet length stays uniform.
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// SecureCodeGenerator implements ports.CodeGenerator using crypto/rand.
// Codes are redeemable value, so math/rand is not acceptable here.
type SecureCodeGenerator struct{}

// NewSecureCodeGenerator creates a new voucher code generator.
func NewSecureCodeGenerator() *SecureCodeGenerator {
	return &SecureCodeGenerator{}
}

// Generate produces a 12-character code of the form XTG-XXXXXXXX.
func (g *SecureCodeGenerator) Generate() (string, error) {
	buf := make([]byte, codeRandomLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}

	var b strings.Builder
	b.Grow(len(codePrefix) + codeRandomLen)
	b.WriteString(codePrefix)
	for _, v := range buf {
		b.WriteByte(codeAlphabet[int(v)%len(codeAlphabet)])
	}
	return b.String(), nil
}

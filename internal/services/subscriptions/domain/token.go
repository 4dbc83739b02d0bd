package domain

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// TokenLength is the size of a subscription token, about 148 bits over 62 symbols
const TokenLength = 25

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// randRead is the entropy seam
var randRead = rand.Read

// GenerateToken returns TokenLength characters drawn uniformly from [A-Za-z0-9]
func GenerateToken() (string, error) {
	// 248 is the largest multiple of 62 below 256, bytes at or above it are rejected
	const limit = 256 - 256%len(tokenAlphabet)

	out := make([]byte, 0, TokenLength)
	buf := make([]byte, TokenLength*2)
	for len(out) < TokenLength {
		if _, err := randRead(buf); err != nil {
			return "", fmt.Errorf("read entropy: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, tokenAlphabet[int(b)%len(tokenAlphabet)])
			if len(out) == TokenLength {
				break
			}
		}
	}
	return string(out), nil
}

// PlausibleToken reports whether s could have come from GenerateToken's alphabet,
// anything else (empty, bad encoding, NUL) is unknown without asking the store
func PlausibleToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(tokenAlphabet, rune(s[i])) {
			return false
		}
	}
	return true
}

package common

import (
	"context"
	"encoding/hex"
	"net/url"
	"strings"
	"time"
)

func IsValidURL(input string) bool {
	_, err := url.ParseRequestURI(input)

	return err == nil
}

func IsValidHTTPURL(input string) bool {
	u, err := url.ParseRequestURI(input)

	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func DecodeHex(s string) ([]byte, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}

	return hex.DecodeString(s)
}

// RetryForever calls fn every interval until it succeeds or ctx is done.
func RetryForever(ctx context.Context, interval time.Duration, fn func(context.Context) error) error {
	if err := fn(ctx); err == nil {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := fn(ctx); err == nil {
				return nil
			}
		}
	}
}

package upstream

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"
)

// Signature headers required by the OTP messaging provider.
const (
	HeaderAPITimestamp = "X-API-Timestamp"
	HeaderAPIHash      = "X-API-Hash"
)

// Signature computes the messaging provider's request signature:
// HMAC-SHA256 over the decimal Unix-timestamp string, hex encoded.
// The transform is fixed by the provider's contract and covered by tests.
func Signature(secret, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	return hex.EncodeToString(mac.Sum(nil))
}

// SignRequest stamps the request with the timestamp and signature headers
// the messaging provider verifies. now is injected so tests can pin it.
func SignRequest(req *http.Request, secret string, now time.Time) {
	ts := strconv.FormatInt(now.Unix(), 10)
	req.Header.Set(HeaderAPITimestamp, ts)
	req.Header.Set(HeaderAPIHash, Signature(secret, ts))
}

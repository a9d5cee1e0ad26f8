package bybit

// auth.go: Bybit v5 request signing.
//
// Every private endpoint needs an HMAC-SHA256 over
//   timestamp + apiKey + recvWindow + queryString
// keyed with the API secret, hex encoded (X-BAPI-SIGN-TYPE 2).

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/alejandrodnm/spotjournal/internal/domain"
)

// signer holds the credentials for one sync. It is never cached on the Client:
// keys arrive per request from the HTTP API.
type signer struct {
	apiKey    string
	apiSecret string
}

func newSigner(creds domain.Credentials) signer {
	t := creds.Trimmed()
	return signer{apiKey: t.APIKey, apiSecret: t.APISecret}
}

// Sign returns the hex HMAC-SHA256 signature for a GET request.
func Sign(apiSecret, apiKey string, timestampMs int64, recvWindow int, query string) string {
	payload := strconv.FormatInt(timestampMs, 10) + apiKey + strconv.Itoa(recvWindow) + query
	mac := hmac.New(sha256.New, []byte(apiSecret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// headers returns the authenticated headers for a request signed at now.
func (s signer) headers(now time.Time, recvWindow int, query string) map[string]string {
	ts := now.UnixMilli()
	return map[string]string{
		"X-BAPI-API-KEY":     s.apiKey,
		"X-BAPI-SIGN":        Sign(s.apiSecret, s.apiKey, ts, recvWindow, query),
		"X-BAPI-SIGN-TYPE":   "2",
		"X-BAPI-TIMESTAMP":   strconv.FormatInt(ts, 10),
		"X-BAPI-RECV-WINDOW": strconv.Itoa(recvWindow),
	}
}

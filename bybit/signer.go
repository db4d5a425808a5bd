package bybit

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"github.com/lukasz-zimnoch/ladder"
)

// signTypeHMAC is the X-BAPI-SIGN-TYPE value for HMAC-SHA256 signatures.
const signTypeHMAC = "2"

// Sign computes hex(HMAC-SHA256(secret, timestamp + apiKey + recvWindow + body)).
func Sign(
	timestamp string,
	apiKey string,
	recvWindow string,
	body []byte,
	secret string,
) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte(apiKey))
	mac.Write([]byte(recvWindow))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

type Signer struct {
	apiKey     string
	secretKey  string
	recvWindow string
}

func NewSigner(apiKey, secretKey, recvWindow string) *Signer {
	return &Signer{
		apiKey:     apiKey,
		secretKey:  secretKey,
		recvWindow: recvWindow,
	}
}

func (s *Signer) Sign(timestamp string, body []byte) string {
	return Sign(timestamp, s.apiKey, s.recvWindow, body, s.secretKey)
}

// SignPayload serializes the payload once and signs those exact bytes.
// The returned body must be sent as-is; re-encoding it would break the
// signature.
func (s *Signer) SignPayload(
	timestamp string,
	payload interface{},
) ([]byte, string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, "", ladder.NewError(ladder.KindSerialization, "sign payload", err)
	}

	return body, s.Sign(timestamp, body), nil
}

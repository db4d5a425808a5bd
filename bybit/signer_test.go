package bybit

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"github.com/lukasz-zimnoch/ladder"
	"testing"
)

const (
	testApiKey     = "test-api-key"
	testSecretKey  = "test-secret-key"
	testRecvWindow = "10000"
	testTimestamp  = "1700000000000"
)

func TestSign(t *testing.T) {
	body := []byte(`{"category":"linear","request":[]}`)

	mac := hmac.New(sha256.New, []byte(testSecretKey))
	mac.Write([]byte(testTimestamp + testApiKey + testRecvWindow + string(body)))
	expectedSignature := hex.EncodeToString(mac.Sum(nil))

	actualSignature := Sign(
		testTimestamp,
		testApiKey,
		testRecvWindow,
		body,
		testSecretKey,
	)

	if actualSignature != expectedSignature {
		t.Errorf(
			"unexpected signature\n"+
				"expected: [%v]\n"+
				"actual:   [%v]",
			expectedSignature,
			actualSignature,
		)
	}

	if len(actualSignature) != 64 {
		t.Errorf(
			"unexpected signature length\n"+
				"expected: [%v]\n"+
				"actual:   [%v]",
			64,
			len(actualSignature),
		)
	}
}

func TestSign_Deterministic(t *testing.T) {
	signer := NewSigner(testApiKey, testSecretKey, testRecvWindow)
	body := []byte(`{"category":"linear"}`)

	first := signer.Sign(testTimestamp, body)
	second := signer.Sign(testTimestamp, body)

	if first != second {
		t.Errorf(
			"signatures differ for identical input\n"+
				"first:  [%v]\n"+
				"second: [%v]",
			first,
			second,
		)
	}
}

func TestSign_SensitiveToEveryInput(t *testing.T) {
	body := []byte(`{"category":"linear"}`)
	reference := Sign(testTimestamp, testApiKey, testRecvWindow, body, testSecretKey)

	var variants = map[string]string{
		"timestamp": Sign("1700000000001", testApiKey, testRecvWindow, body, testSecretKey),
		"api key":   Sign(testTimestamp, "other-key", testRecvWindow, body, testSecretKey),
		"window":    Sign(testTimestamp, testApiKey, "5000", body, testSecretKey),
		"body":      Sign(testTimestamp, testApiKey, testRecvWindow, []byte(`{}`), testSecretKey),
		"secret":    Sign(testTimestamp, testApiKey, testRecvWindow, body, "other-secret"),
	}

	for input, signature := range variants {
		if signature == reference {
			t.Errorf("signature does not depend on %v", input)
		}
	}
}

func TestSigner_SignPayload(t *testing.T) {
	signer := NewSigner(testApiKey, testSecretKey, testRecvWindow)

	body, signature, err := signer.SignPayload(
		testTimestamp,
		&batchRequest{
			Category: CategoryLinear,
			Request:  []cancelEntry{{Symbol: "BEAMUSDT", OrderID: "1"}},
		},
	)
	if err != nil {
		t.Fatal(err)
	}

	expectedBody := `{"category":"linear","request":[{"symbol":"BEAMUSDT","orderId":"1"}]}`
	if string(body) != expectedBody {
		t.Errorf(
			"unexpected body\n"+
				"expected: [%v]\n"+
				"actual:   [%s]",
			expectedBody,
			body,
		)
	}

	if signature != signer.Sign(testTimestamp, body) {
		t.Errorf("signature does not cover the returned body")
	}
}

func TestSigner_SignPayload_Unserializable(t *testing.T) {
	signer := NewSigner(testApiKey, testSecretKey, testRecvWindow)

	_, _, err := signer.SignPayload(testTimestamp, make(chan int))

	if !ladder.IsKind(err, ladder.KindSerialization) {
		t.Errorf("unexpected error: [%v]", err)
	}
}

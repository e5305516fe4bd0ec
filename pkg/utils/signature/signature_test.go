package signature_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/m-mizutani/ghtrigger/pkg/utils/signature"
	"github.com/m-mizutani/gt"
)

func TestSign(t *testing.T) {
	body := []byte(`{"zen":"Keep it logically awesome."}`)
	secret := "test-secret"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	gt.Value(t, signature.Sign(body, secret)).Equal(want)
	gt.True(t, strings.HasPrefix(signature.Sign(nil, secret), signature.Prefix))
}

func TestVerify(t *testing.T) {
	secret := "test-secret"
	body := []byte(`{"action":"opened","number":42}`)
	valid := signature.Sign(body, secret)

	tests := []struct {
		name      string
		body      []byte
		secret    string
		signature string
		want      bool
	}{
		{
			name:      "valid signature",
			body:      body,
			secret:    secret,
			signature: valid,
			want:      true,
		},
		{
			name:      "tampered body",
			body:      []byte(`{"action":"opened","number":43}`),
			secret:    secret,
			signature: valid,
			want:      false,
		},
		{
			name:      "whitespace difference in body",
			body:      []byte(`{"action": "opened", "number": 42}`),
			secret:    secret,
			signature: valid,
			want:      false,
		},
		{
			name:      "wrong secret",
			body:      body,
			secret:    "other-secret",
			signature: valid,
			want:      false,
		},
		{
			name:      "missing signature",
			body:      body,
			secret:    secret,
			signature: "",
			want:      false,
		},
		{
			name:      "missing prefix",
			body:      body,
			secret:    secret,
			signature: strings.TrimPrefix(valid, signature.Prefix),
			want:      false,
		},
		{
			name:      "malformed hex",
			body:      body,
			secret:    secret,
			signature: "sha256=not-hex",
			want:      false,
		},
		{
			name:      "empty secret",
			body:      body,
			secret:    "",
			signature: signature.Sign(body, ""),
			want:      false,
		},
		{
			name:      "empty body",
			body:      []byte{},
			secret:    secret,
			signature: signature.Sign([]byte{}, secret),
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, signature.Verify(tt.body, tt.secret, tt.signature)).Equal(tt.want)
		})
	}
}

func TestVerify_AnyBody(t *testing.T) {
	secret := "round-trip"
	bodies := [][]byte{
		[]byte("a"),
		[]byte(`{"ref":"refs/heads/main"}`),
		[]byte("\x00\x01\x02\xff"),
		[]byte(strings.Repeat("x", 4096)),
	}

	for i, b := range bodies {
		gt.True(t, signature.Verify(b, secret, signature.Sign(b, secret)))

		other := bodies[(i+1)%len(bodies)]
		gt.False(t, signature.Verify(other, secret, signature.Sign(b, secret)))
	}
}

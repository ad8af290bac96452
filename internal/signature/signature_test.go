package signature_test

import (
	"testing"

	"github.com/craftkart/order-service/internal/entities"
	"github.com/craftkart/order-service/internal/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigner_Verify(t *testing.T) {
	signer := signature.New("shared-secret")
	body := []byte(`{"order_id":"fr-1","status":"SUCCESS"}`)
	valid := signer.Sign(body)

	testCases := []struct {
		name      string
		body      []byte
		signature string
		wantErr   bool
	}{
		{
			name:      "valid signature round-trips",
			body:      body,
			signature: valid,
		},
		{
			name:      "signature with surrounding whitespace",
			body:      body,
			signature: "  " + valid + "\n",
		},
		{
			name:      "missing signature",
			body:      body,
			signature: "",
			wantErr:   true,
		},
		{
			name:      "single byte of body altered after signing",
			body:      []byte(`{"order_id":"fr-2","status":"SUCCESS"}`),
			signature: valid,
			wantErr:   true,
		},
		{
			name:      "signature computed over a different key",
			body:      body,
			signature: signature.New("other-secret").Sign(body),
			wantErr:   true,
		},
		{
			name:      "signature is not base64",
			body:      body,
			signature: "not-base64!!!",
			wantErr:   true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := signer.Verify(tc.body, tc.signature)
			if tc.wantErr {
				assert.ErrorIs(t, err, entities.ErrInvalidSignature)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSigner_SignDeterministic(t *testing.T) {
	signer := signature.New("shared-secret")
	body := []byte(`{"id":1}`)
	assert.Equal(t, signer.Sign(body), signer.Sign(body))
	assert.NotEqual(t, signer.Sign(body), signer.Sign([]byte(`{"id":2}`)))
}

package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey = "0123456789abcdef0123456789abcdef" // 32 bytes
	testIV  = "abcdef9876543210"                 // 16 bytes
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	codec, err := NewCodec(testKey, testIV)
	require.NoError(t, err)
	return codec
}

func TestNewCodecRejectsBadKeyMaterial(t *testing.T) {
	_, err := NewCodec("short", testIV)
	assert.Error(t, err)

	_, err = NewCodec(testKey, "bad-iv")
	assert.Error(t, err)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	for _, plain := range []string{
		"a",
		"hello world",
		`{"guid":"b2fca4b5-47a8-4d3a-9d55-1a9f1e25f7a1","name":"Acme"}`,
		"exactly sixteen!", // one full block, exercises the extra padding block
	} {
		encrypted, err := codec.Encrypt(plain)
		require.NoError(t, err)
		assert.NotEqual(t, plain, encrypted)

		decrypted, err := codec.Decrypt(encrypted)
		require.NoError(t, err)
		assert.Equal(t, plain, decrypted)
	}
}

func TestEncryptIsDeterministic(t *testing.T) {
	codec := newTestCodec(t)

	first, err := codec.Encrypt("same input")
	require.NoError(t, err)
	second, err := codec.Encrypt("same input")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDecryptRejectsMalformedInput(t *testing.T) {
	codec := newTestCodec(t)

	for name, input := range map[string]string{
		"not base64":        "!!not-base64!!",
		"wrong block size":  "YWJj", // "abc", 3 bytes
		"garbage plaintext": "YWJjZGVmZ2hpamtsbW5vcA==",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Decrypt(input)
			assert.ErrorIs(t, err, ErrMalformedPayload)
		})
	}
}

func TestEmptyPayloads(t *testing.T) {
	codec := newTestCodec(t)

	_, err := codec.Encrypt("")
	assert.ErrorIs(t, err, ErrEmptyPayload)

	_, err = codec.Decrypt("")
	assert.ErrorIs(t, err, ErrEmptyPayload)
}

func TestSerializeAndEncryptRoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	type payload struct {
		Name string `json:"name"`
		Seq  int    `json:"seq"`
	}

	encrypted, err := codec.SerializeAndEncrypt(payload{Name: "Acme", Seq: 3})
	require.NoError(t, err)

	var got payload
	require.NoError(t, codec.DecryptAndDeserialize(encrypted, &got))
	assert.Equal(t, payload{Name: "Acme", Seq: 3}, got)
}

func TestDecryptAndDeserializeRejectsNonJSONPlaintext(t *testing.T) {
	codec := newTestCodec(t)

	encrypted, err := codec.Encrypt("not json at all")
	require.NoError(t, err)

	var got map[string]any
	assert.ErrorIs(t, codec.DecryptAndDeserialize(encrypted, &got), ErrMalformedPayload)
}

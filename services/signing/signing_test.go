package signing

import (
	"crypto/ed25519"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSeed() []byte {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}
	return seed
}

func TestParseAgentKeyRoundTrip(t *testing.T) {
	seed := testSeed()
	keyString := FormatAgentKey("agent_123", seed)

	identity, err := ParseAgentKey(keyString)
	require.NoError(t, err)

	assert.Equal(t, "agent_123", identity.AgentID)
	assert.Equal(t, ed25519.NewKeyFromSeed(seed).Public(), identity.Public())
}

func TestParseAgentKeyErrors(t *testing.T) {
	encode := func(payload string) string {
		return AgentKeyPrefix + base64.StdEncoding.EncodeToString([]byte(payload))
	}

	tests := []struct {
		name      string
		keyString string
		wantMsg   string
	}{
		{
			name:      "missing prefix",
			keyString: "sk_live_deadbeef",
			wantMsg:   "must start with",
		},
		{
			name:      "invalid base64 payload",
			keyString: AgentKeyPrefix + "!!!not-base64!!!",
			wantMsg:   "not valid base64",
		},
		{
			name:      "missing separator",
			keyString: encode("agent_123_no_separator"),
			wantMsg:   "missing ':' separator",
		},
		{
			name:      "empty agent id",
			keyString: encode(":deadbeef"),
			wantMsg:   "empty agent_id",
		},
		{
			name:      "key material not hex",
			keyString: encode("agent_123:zzzz"),
			wantMsg:   "not valid hex",
		},
		{
			name:      "seed too short",
			keyString: encode("agent_123:deadbeef"),
			wantMsg:   "must be 32 bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := ParseAgentKey(tt.keyString)
			require.Error(t, err)
			assert.Nil(t, identity)
			assert.ErrorIs(t, err, ErrCredentialFormat)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParseAgentKeyFirstViolationWins(t *testing.T) {
	// Empty agent id AND bad hex: the separator checks run first, so the
	// reported violation is the empty agent id.
	keyString := AgentKeyPrefix + base64.StdEncoding.EncodeToString([]byte(":zzzz"))

	_, err := ParseAgentKey(keyString)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty agent_id")
}

func TestCanonicalize(t *testing.T) {
	t.Run("sorts keys at every level", func(t *testing.T) {
		got, err := Canonicalize(map[string]any{
			"vendor_id":    "openai",
			"amount_cents": 2500,
			"nested":       map[string]any{"b": 2, "a": 1},
		})
		require.NoError(t, err)
		assert.Equal(t, `{"amount_cents":2500,"nested":{"a":1,"b":2},"vendor_id":"openai"}`, string(got))
	})

	t.Run("no insignificant whitespace", func(t *testing.T) {
		got, err := Canonicalize(map[string]any{"a": []int{1, 2, 3}})
		require.NoError(t, err)
		assert.Equal(t, `{"a":[1,2,3]}`, string(got))
	})

	t.Run("construction order does not matter", func(t *testing.T) {
		first, err := Canonicalize(map[string]any{"a": 1, "b": "x", "c": true})
		require.NoError(t, err)

		m := map[string]any{}
		m["c"] = true
		m["b"] = "x"
		m["a"] = 1
		second, err := Canonicalize(m)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("idempotent for repeated calls", func(t *testing.T) {
		payload := map[string]any{"intent_id": "i_1", "amount_cents": int64(50000), "ttl_seconds": 300}
		first, err := Canonicalize(payload)
		require.NoError(t, err)
		for i := 0; i < 50; i++ {
			again, err := Canonicalize(payload)
			require.NoError(t, err)
			require.Equal(t, first, again)
		}
	})
}

func TestSign(t *testing.T) {
	identity, err := ParseAgentKey(FormatAgentKey("agent_123", testSeed()))
	require.NoError(t, err)

	message := []byte(`{"amount_cents":2500,"vendor_id":"openai"}`)

	t.Run("deterministic", func(t *testing.T) {
		first := Sign(message, identity)
		for i := 0; i < 10; i++ {
			require.Equal(t, first, Sign(message, identity))
		}
	})

	t.Run("verifiable with the public key", func(t *testing.T) {
		signature := Sign(message, identity)
		raw, err := base64.StdEncoding.DecodeString(signature)
		require.NoError(t, err)
		assert.True(t, ed25519.Verify(identity.Public(), message, raw))
	})

	t.Run("different messages produce different signatures", func(t *testing.T) {
		assert.NotEqual(t, Sign(message, identity), Sign([]byte("other"), identity))
	})
}

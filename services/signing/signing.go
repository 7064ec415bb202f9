// Package signing implements the Kora agent credential format and the
// detached Ed25519 signatures that authenticate spend-capable requests.
//
// Credential format: kora_agent_sk_<base64(agent_id:private_key_hex)>.
// The signed payload is canonical JSON (RFC 8785) so the service can
// reconstruct the exact bytes independently and verify the signature.
package signing

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gowebpki/jcs"
)

// AgentKeyPrefix is the fixed prefix of every agent secret key string.
const AgentKeyPrefix = "kora_agent_sk_"

// ErrCredentialFormat is returned by ParseAgentKey for any malformed
// credential. Wrapped errors carry the specific violation.
var ErrCredentialFormat = errors.New("invalid agent key")

// AgentIdentity is an agent id plus its Ed25519 signing key, derived once
// from a credential string and immutable afterwards.
type AgentIdentity struct {
	AgentID string

	key ed25519.PrivateKey
}

// ParseAgentKey parses a Kora agent secret key string into an identity.
// Checks run in order and the first violation determines the error: prefix,
// base64 payload, ':' separator, non-empty agent id, hex key material,
// 32-byte seed length.
func ParseAgentKey(keyString string) (*AgentIdentity, error) {
	if !strings.HasPrefix(keyString, AgentKeyPrefix) {
		return nil, fmt.Errorf("%w: must start with %q", ErrCredentialFormat, AgentKeyPrefix)
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(keyString, AgentKeyPrefix))
	if err != nil {
		return nil, fmt.Errorf("%w: payload is not valid base64: %v", ErrCredentialFormat, err)
	}

	agentID, privateHex, found := strings.Cut(string(decoded), ":")
	if !found {
		return nil, fmt.Errorf("%w: payload missing ':' separator", ErrCredentialFormat)
	}
	if agentID == "" {
		return nil, fmt.Errorf("%w: empty agent_id", ErrCredentialFormat)
	}

	seed, err := hex.DecodeString(privateHex)
	if err != nil {
		return nil, fmt.Errorf("%w: private key is not valid hex: %v", ErrCredentialFormat, err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: private key must be %d bytes, got %d", ErrCredentialFormat, ed25519.SeedSize, len(seed))
	}

	return &AgentIdentity{
		AgentID: agentID,
		key:     ed25519.NewKeyFromSeed(seed),
	}, nil
}

// FormatAgentKey packs an agent id and a 32-byte seed into the credential
// string accepted by ParseAgentKey.
func FormatAgentKey(agentID string, seed []byte) string {
	payload := agentID + ":" + hex.EncodeToString(seed)
	return AgentKeyPrefix + base64.StdEncoding.EncodeToString([]byte(payload))
}

// Public returns the verification half of the identity's key.
func (a *AgentIdentity) Public() ed25519.PublicKey {
	return a.key.Public().(ed25519.PublicKey)
}

// Canonicalize serializes v as RFC 8785 canonical JSON: keys sorted
// lexicographically at every nesting level, no insignificant whitespace, a
// single unambiguous number encoding. Structurally equal inputs always
// produce byte-identical output regardless of construction order.
func Canonicalize(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonicalize: marshal failed: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalize: transform failed: %w", err)
	}
	return canonical, nil
}

// Sign produces the deterministic Ed25519 signature over message and returns
// it base64-encoded. Signing is stateless; the same message and key always
// yield the same signature.
func Sign(message []byte, identity *AgentIdentity) string {
	return base64.StdEncoding.EncodeToString(ed25519.Sign(identity.key, message))
}

// Package formsg decrypts FormSG submission envelopes.
//
// FormSG encrypts each submission with an ephemeral keypair using NaCl box
// (x25519-xsalsa20-poly1305) against the form's public key. The webhook
// delivers the envelope as "<submissionPublicKey>;<nonce>:<ciphertext>",
// all three parts base64-encoded. Holding the form's secret key is enough
// to open it; the plaintext is the submission responses as JSON.
package formsg

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/nacl/box"
)

var (
	// ErrMalformedContent means the envelope does not have the expected
	// pubkey;nonce:ciphertext shape or a part is not valid base64.
	ErrMalformedContent = errors.New("malformed encrypted content")
	// ErrDecryptionFailed means the box could not be opened with the
	// configured secret key.
	ErrDecryptionFailed = errors.New("decryption failed")
)

// Decrypter opens an encrypted submission envelope. Implementations may fail
// for corrupt envelopes or key mismatches; callers treat the operation as
// opaque.
type Decrypter interface {
	Decrypt(encryptedContent string) (json.RawMessage, error)
}

// BoxDecrypter decrypts envelopes with the form's NaCl secret key.
type BoxDecrypter struct {
	secretKey [32]byte
}

// NewBoxDecrypter parses a base64-encoded 32-byte secret key. The key must be
// supplied externally; there is no default.
func NewBoxDecrypter(secretKeyBase64 string) (*BoxDecrypter, error) {
	raw, err := base64.StdEncoding.DecodeString(secretKeyBase64)
	if err != nil {
		return nil, fmt.Errorf("secret key is not valid base64: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("secret key must be 32 bytes, got %d", len(raw))
	}
	d := &BoxDecrypter{}
	copy(d.secretKey[:], raw)
	return d, nil
}

func (d *BoxDecrypter) Decrypt(encryptedContent string) (json.RawMessage, error) {
	pubPart, rest, ok := strings.Cut(encryptedContent, ";")
	if !ok {
		return nil, fmt.Errorf("%w: missing ';' separator", ErrMalformedContent)
	}
	noncePart, cipherPart, ok := strings.Cut(rest, ":")
	if !ok {
		return nil, fmt.Errorf("%w: missing ':' separator", ErrMalformedContent)
	}

	pub, err := base64.StdEncoding.DecodeString(pubPart)
	if err != nil || len(pub) != 32 {
		return nil, fmt.Errorf("%w: bad submission public key", ErrMalformedContent)
	}
	nonce, err := base64.StdEncoding.DecodeString(noncePart)
	if err != nil || len(nonce) != 24 {
		return nil, fmt.Errorf("%w: bad nonce", ErrMalformedContent)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(cipherPart)
	if err != nil {
		return nil, fmt.Errorf("%w: bad ciphertext", ErrMalformedContent)
	}

	var peersPub [32]byte
	var boxNonce [24]byte
	copy(peersPub[:], pub)
	copy(boxNonce[:], nonce)

	plaintext, ok := box.Open(nil, ciphertext, &boxNonce, &peersPub, &d.secretKey)
	if !ok {
		return nil, ErrDecryptionFailed
	}
	if !json.Valid(plaintext) {
		return nil, fmt.Errorf("%w: plaintext is not JSON", ErrDecryptionFailed)
	}
	return json.RawMessage(plaintext), nil
}

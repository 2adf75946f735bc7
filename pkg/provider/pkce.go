package provider

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"golang.org/x/oauth2"
)

// statePayload travels through the OAuth round trip so the callback can
// recover the PKCE verifier without server-side storage.
type statePayload struct {
	Verifier string `json:"verifier"`
	Nonce    string `json:"nonce"`
}

func encodeState(verifier, nonce string) string {
	raw, _ := json.Marshal(statePayload{Verifier: verifier, Nonce: nonce})
	return base64.RawURLEncoding.EncodeToString(raw)
}

func verifierFromState(state string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(state)
	if err != nil {
		return "", fmt.Errorf("decode state: %w", err)
	}
	var payload statePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("unmarshal state: %w", err)
	}
	if payload.Verifier == "" {
		return "", fmt.Errorf("state carries no verifier")
	}
	return payload.Verifier, nil
}

func newVerifier() string {
	return oauth2.GenerateVerifier()
}

package tokencache

import (
	"encoding/json"
	"fmt"

	"github.com/syncwave/zkwallet-go/pkg/token"
)

// MarshalTokens serializes a token list to JSON bytes.
func MarshalTokens(tokens []*token.Token) ([]byte, error) {
	if tokens == nil {
		return nil, fmt.Errorf("cannot marshal nil token list")
	}
	data, err := json.Marshal(tokens)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal token list: %w", err)
	}
	return data, nil
}

// UnmarshalTokens deserializes a token list from JSON bytes.
func UnmarshalTokens(data []byte) ([]*token.Token, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot unmarshal empty data")
	}
	var tokens []*token.Token
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token list: %w", err)
	}
	return tokens, nil
}

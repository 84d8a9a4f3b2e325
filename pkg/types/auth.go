package types

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ChangePubKeyAuthType tags the ChangePubKey authorization union. Exactly one
// mode is attached to a ChangePubKey transaction.
type ChangePubKeyAuthType string

const (
	ChangePubKeyAuthTypeOnchain ChangePubKeyAuthType = "Onchain"
	ChangePubKeyAuthTypeECDSA   ChangePubKeyAuthType = "ECDSA"
	ChangePubKeyAuthTypeCREATE2 ChangePubKeyAuthType = "CREATE2"
	// ChangePubKeyAuthTypeECDSALegacy signs a legacy-format message; its
	// signature lives at the transaction level, not inside the auth data.
	ChangePubKeyAuthTypeECDSALegacy ChangePubKeyAuthType = "ECDSALegacyMessage"
)

// ChangePubKeyAuthData is the authorization payload attached to a
// ChangePubKey transaction. The legacy message mode attaches no auth data.
type ChangePubKeyAuthData interface {
	AuthType() ChangePubKeyAuthType
}

// ChangePubKeyOnchainAuth defers authorization to a separate on-chain call.
type ChangePubKeyOnchainAuth struct{}

func (a *ChangePubKeyOnchainAuth) AuthType() ChangePubKeyAuthType {
	return ChangePubKeyAuthTypeOnchain
}

func (a *ChangePubKeyOnchainAuth) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type ChangePubKeyAuthType `json:"type"`
	}{ChangePubKeyAuthTypeOnchain})
}

// ChangePubKeyECDSAAuth carries an ECDSA signature over the canonical
// authorization payload, plus the hash of the batch the ChangePubKey was
// signed for (zero hash outside of batches).
type ChangePubKeyECDSAAuth struct {
	EthSignature string      `json:"ethSignature"`
	BatchHash    common.Hash `json:"batchHash"`
}

func (a *ChangePubKeyECDSAAuth) AuthType() ChangePubKeyAuthType {
	return ChangePubKeyAuthTypeECDSA
}

func (a *ChangePubKeyECDSAAuth) MarshalJSON() ([]byte, error) {
	type alias ChangePubKeyECDSAAuth
	return json.Marshal(&struct {
		Type ChangePubKeyAuthType `json:"type"`
		*alias
	}{ChangePubKeyAuthTypeECDSA, (*alias)(a)})
}

// ChangePubKeyCREATE2Auth proves key ownership through CREATE2 deployment
// data; no signature is involved.
type ChangePubKeyCREATE2Auth struct {
	CreatorAddress common.Address `json:"creatorAddress"`
	SaltArg        common.Hash    `json:"saltArg"`
	CodeHash       common.Hash    `json:"codeHash"`
}

func (a *ChangePubKeyCREATE2Auth) AuthType() ChangePubKeyAuthType {
	return ChangePubKeyAuthTypeCREATE2
}

func (a *ChangePubKeyCREATE2Auth) MarshalJSON() ([]byte, error) {
	type alias ChangePubKeyCREATE2Auth
	return json.Marshal(&struct {
		Type ChangePubKeyAuthType `json:"type"`
		*alias
	}{ChangePubKeyAuthTypeCREATE2, (*alias)(a)})
}

// UnmarshalChangePubKeyAuthData decodes the tagged auth-data union.
func UnmarshalChangePubKeyAuthData(data []byte) (ChangePubKeyAuthData, error) {
	var tag struct {
		Type ChangePubKeyAuthType `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, fmt.Errorf("failed to read auth data type tag: %w", err)
	}

	switch tag.Type {
	case ChangePubKeyAuthTypeOnchain:
		return &ChangePubKeyOnchainAuth{}, nil
	case ChangePubKeyAuthTypeECDSA:
		var auth ChangePubKeyECDSAAuth
		if err := json.Unmarshal(data, &auth); err != nil {
			return nil, err
		}
		return &auth, nil
	case ChangePubKeyAuthTypeCREATE2:
		var auth ChangePubKeyCREATE2Auth
		if err := json.Unmarshal(data, &auth); err != nil {
			return nil, err
		}
		return &auth, nil
	default:
		return nil, fmt.Errorf("unsupported auth data type: %s", tag.Type)
	}
}

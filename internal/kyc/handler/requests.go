package handler

import (
	"bytes"
	"encoding/json"
	"strings"

	dErrors "kycgate/pkg/domain-errors"
)

// EnrollRequest is the body of POST /user/{uuid}/kyc. KYCData is the
// provider payload and is validated by the provider adapter.
type EnrollRequest struct {
	EthereumWallet string          `json:"ethereumWallet"`
	KYCData        json.RawMessage `json:"kycData"`
}

func (r *EnrollRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.EthereumWallet = strings.TrimSpace(r.EthereumWallet)
	if r.EthereumWallet == "" {
		return dErrors.New(dErrors.CodeValidation, "ethereumWallet is required")
	}
	if len(bytes.TrimSpace(r.KYCData)) == 0 || bytes.Equal(bytes.TrimSpace(r.KYCData), []byte("null")) {
		return dErrors.New(dErrors.CodeValidation, "kycData is required")
	}
	return nil
}

// EnrollResponse acknowledges an accepted enrollment.
type EnrollResponse struct {
	ApplicationID string `json:"application_id"`
	Status        string `json:"status"`
	Message       string `json:"message"`
}

// CallbackRequest is the provider's document verification callback. The
// provider posts either a form or JSON, and numbers may arrive quoted.
type CallbackRequest struct {
	ReferenceID   flexValue `json:"reference_id"`
	Score         flexValue `json:"score"`
	ScoreComplete flexValue `json:"score_complete"`
}

func (r *CallbackRequest) Validate() error {
	if strings.TrimSpace(string(r.ReferenceID)) == "" {
		return dErrors.New(dErrors.CodeValidation, "reference_id is required")
	}
	return nil
}

// flexValue accepts a JSON string or number.
type flexValue string

func (v *flexValue) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = flexValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = flexValue(n.String())
	return nil
}

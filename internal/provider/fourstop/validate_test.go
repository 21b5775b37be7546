package fourstop

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "kycgate/pkg/domain-errors"
)

func validPayload(t *testing.T, mutate ...func(map[string]any)) json.RawMessage {
	t.Helper()
	doc := map[string]any{
		"data":        base64.StdEncoding.EncodeToString([]byte("passport-scan")),
		"contentType": "image/png",
		"filename":    "passport.png",
	}
	payload := map[string]any{
		"customer_information": map[string]any{
			"firstName":   "Ada",
			"lastName":    "Lovelace",
			"address1":    "12 St James's Square",
			"city":        "London",
			"country":     "GB",
			"postal_code": "SW1Y 4JH",
			"phone1":      447700900123,
			"dob":         "1985-12-10",
			"gender":      "F",
			"id_values":   []map[string]any{{"type": "passport", "value": "123456789"}},
		},
		"doc_images": map[string]any{"doc": doc},
	}
	for _, m := range mutate {
		m(payload)
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return raw
}

func customer(p map[string]any) map[string]any {
	return p["customer_information"].(map[string]any)
}

func TestDecode(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		data, err := Decode(validPayload(t))
		require.NoError(t, err)
		assert.Equal(t, "447700900123", data.CustomerInformation.Phone1.String())
		assert.Equal(t, []byte("passport-scan"), data.DocImages.Doc.Data)
	})

	tests := []struct {
		name    string
		mutate  func(map[string]any)
		message string
	}{
		{"missing customer information", func(p map[string]any) { delete(p, "customer_information") }, "customer information"},
		{"blank first name", func(p map[string]any) { customer(p)["firstName"] = "  " }, "first name"},
		{"blank last name", func(p map[string]any) { customer(p)["lastName"] = "" }, "last name"},
		{"blank country", func(p map[string]any) { customer(p)["country"] = "" }, "country"},
		{"bad dob", func(p map[string]any) { customer(p)["dob"] = "10/12/1985" }, "date of birth"},
		{"bad gender", func(p map[string]any) { customer(p)["gender"] = "x" }, "gender"},
		{"bad phone", func(p map[string]any) { customer(p)["phone1"] = "call me" }, "phone"},
		{"blank postal code", func(p map[string]any) { customer(p)["postal_code"] = "" }, "postal code"},
		{"missing doc images", func(p map[string]any) { delete(p, "doc_images") }, "doc_images"},
		{"missing doc", func(p map[string]any) { p["doc_images"] = map[string]any{} }, "doc is missing"},
		{"doc2 without content type", func(p map[string]any) {
			p["doc_images"].(map[string]any)["doc2"] = map[string]any{"data": "aGk=", "filename": "b.png"}
		}, "doc2.contentType"},
		{"oversized doc", func(p map[string]any) {
			big := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("x", maxDocBytes+1)))
			p["doc_images"].(map[string]any)["doc"].(map[string]any)["data"] = big
		}, "doc.data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(validPayload(t, tt.mutate))
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.Contains(t, err.Error(), tt.message)
		})
	}

	t.Run("not json", func(t *testing.T) {
		_, err := Decode(json.RawMessage(`{"customer_information":`))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("doc data not base64", func(t *testing.T) {
		_, err := Decode(validPayload(t, func(p map[string]any) {
			p["doc_images"].(map[string]any)["doc"].(map[string]any)["data"] = "%%%"
		}))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

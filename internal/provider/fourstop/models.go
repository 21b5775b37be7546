package fourstop

import (
	"bytes"
	"encoding/json"
	"strconv"
)

const providerID = "4stop"

// EnrollmentData is the provider specific half of an enrollment request.
type EnrollmentData struct {
	CustomerInformation *CustomerInformation `json:"customer_information"`
	DocImages           *DocImages           `json:"doc_images"`
}

type CustomerInformation struct {
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Address1   string    `json:"address1"`
	Address2   string    `json:"address2,omitempty"`
	City       string    `json:"city"`
	Province   string    `json:"province,omitempty"`
	Country    string    `json:"country"`
	PostalCode string    `json:"postal_code"`
	Phone1     flexText  `json:"phone1"`
	Phone2     flexText  `json:"phone2,omitempty"`
	DOB        string    `json:"dob"`
	Gender     string    `json:"gender"`
	IDValues   []IDValue `json:"id_values"`
}

type IDValue struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// DocImages holds up to four identity document scans. Only Doc is required.
type DocImages struct {
	Doc  *DocImage `json:"doc"`
	Doc2 *DocImage `json:"doc2,omitempty"`
	Doc3 *DocImage `json:"doc3,omitempty"`
	Doc4 *DocImage `json:"doc4,omitempty"`
}

// DocImage carries decoded file bytes; on the wire Data is base64.
type DocImage struct {
	Data        []byte `json:"data"`
	ContentType string `json:"contentType"`
	Filename    string `json:"filename"`
}

type namedDoc struct {
	field string
	doc   *DocImage
}

func (d *DocImages) named() []namedDoc {
	return []namedDoc{{"doc", d.Doc}, {"doc2", d.Doc2}, {"doc3", d.Doc3}, {"doc4", d.Doc4}}
}

// flexText accepts either a JSON string or a JSON number. Clients send
// phone numbers both ways and 4Stop returns numeric ids.
type flexText string

func (f *flexText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexText(n.String())
	return nil
}

func (f flexText) String() string { return string(f) }

type registrationResponse struct {
	Status          int      `json:"status"`
	ID              flexText `json:"id"`
	Rec             string   `json:"rec"`
	ConfidenceLevel float64  `json:"confidence_level"`
	Description     string   `json:"description"`
}

type docVerificationResponse struct {
	Status      int      `json:"status"`
	ReferenceID flexText `json:"reference_id"`
	Description string   `json:"description"`
}

func statusText(status int, description string) string {
	return "status " + strconv.Itoa(status) + ": " + description
}

package fourstop

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	dErrors "kycgate/pkg/domain-errors"
)

const maxDocBytes = 5 * 1000 * 1000

var (
	phonePattern      = regexp.MustCompile(`^\+?[0-9]{6,15}$`)
	postalCodePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 \-]{1,9}$`)
)

// Decode parses and validates an enrollment payload. Any failure is a
// validation error naming the offending field.
func Decode(raw json.RawMessage) (*EnrollmentData, error) {
	if len(raw) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "kyc data cannot be empty")
	}
	var data EnrollmentData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "kyc data is not valid json")
	}
	if err := Validate(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Validate checks the fields 4Stop requires before registration.
func Validate(data *EnrollmentData) error {
	ci := data.CustomerInformation
	if ci == nil {
		return invalid("customer information cannot be empty")
	}
	if blank(ci.FirstName) {
		return invalid("first name cannot be empty")
	}
	if blank(ci.LastName) {
		return invalid("last name cannot be empty")
	}
	if blank(ci.Country) {
		return invalid("country of residence cannot be empty")
	}
	if _, err := time.Parse(time.DateOnly, strings.TrimSpace(ci.DOB)); err != nil {
		return invalid("date of birth cannot be empty and it must be in YYYY-MM-DD format")
	}
	if g := strings.ToLower(strings.TrimSpace(ci.Gender)); g != "m" && g != "f" {
		return invalid("gender must be m or f")
	}
	if !phonePattern.MatchString(strings.TrimSpace(ci.Phone1.String())) {
		return invalid("at least 1 phone should be provided")
	}
	if !postalCodePattern.MatchString(strings.TrimSpace(ci.PostalCode)) {
		return invalid("postal code cannot be empty")
	}

	if data.DocImages == nil {
		return invalid("doc_images cannot be empty")
	}
	for _, nd := range data.DocImages.named() {
		if err := validateDoc(nd.field, nd.doc, nd.field != "doc"); err != nil {
			return err
		}
	}
	return nil
}

func validateDoc(field string, doc *DocImage, optional bool) error {
	if doc == nil {
		if optional {
			return nil
		}
		return invalid(fmt.Sprintf("%s is missing and it is not optional", field))
	}
	if blank(doc.ContentType) {
		return invalid(fmt.Sprintf("%s.contentType cannot be empty", field))
	}
	if blank(doc.Filename) {
		return invalid(fmt.Sprintf("%s.filename cannot be empty", field))
	}
	if len(doc.Data) == 0 || len(doc.Data) > maxDocBytes {
		return invalid(fmt.Sprintf("%s.data cannot be empty and file size should be less than 5MB", field))
	}
	return nil
}

func invalid(msg string) error {
	return dErrors.New(dErrors.CodeValidation, msg)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

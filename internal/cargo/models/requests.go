package models

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/asaskevich/govalidator"

	dErrors "ishemalink/pkg/domain-errors"
)

// maxWeightKg is the largest value a NUMERIC(10, 2) column holds.
const maxWeightKg = 99999999.99

type CreateRequest struct {
	ManifestID     string      `json:"manifest_id"`
	TINNumber      string      `json:"tin_number"`
	PassportNumber string      `json:"passport_number"`
	Destination    Destination `json:"destination_country"`
	WeightKg       json.Number `json:"weight_kg"`

	weight string
}

func (r *CreateRequest) Normalize() {
	r.ManifestID = strings.TrimSpace(r.ManifestID)
	r.TINNumber = strings.TrimSpace(r.TINNumber)
	r.PassportNumber = strings.TrimSpace(r.PassportNumber)
	r.Destination = Destination(strings.ToUpper(strings.TrimSpace(string(r.Destination))))
}

func (r *CreateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	verr := dErrors.New(dErrors.CodeValidation, "invalid cargo declaration")

	if r.ManifestID == "" {
		verr.WithField("manifest_id", "this field is required")
	} else if !govalidator.StringLength(r.ManifestID, "1", "50") {
		verr.WithField("manifest_id", "must be at most 50 characters")
	}

	if r.TINNumber != "" && (!govalidator.IsAlphanumeric(r.TINNumber) || !govalidator.StringLength(r.TINNumber, "1", "20")) {
		verr.WithField("tin_number", "must be at most 20 alphanumeric characters")
	}
	if r.PassportNumber != "" && !govalidator.StringLength(r.PassportNumber, "1", "20") {
		verr.WithField("passport_number", "must be at most 20 characters")
	}

	switch {
	case r.Destination == "":
		verr.WithField("destination_country", "this field is required")
	case !r.Destination.IsValid():
		verr.WithField("destination_country", "must be one of UG, KE, TZ, CD")
	case r.Destination.RequiresTIN() && r.TINNumber == "":
		verr.WithField("tin_number", "shipments to Kenya require a valid TIN number")
	}

	if r.WeightKg == "" {
		verr.WithField("weight_kg", "this field is required")
	} else if w, err := strconv.ParseFloat(r.WeightKg.String(), 64); err != nil || w <= 0 || w > maxWeightKg {
		verr.WithField("weight_kg", "must be a positive number of kilograms")
	} else {
		r.weight = strconv.FormatFloat(w, 'f', 2, 64)
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// Weight is the declared weight rounded to two decimals. Call after Validate.
func (r *CreateRequest) Weight() string {
	return r.weight
}

package models

import (
	"net/url"
	"strconv"
	"strings"

	id "ishemalink/pkg/domain"
	dErrors "ishemalink/pkg/domain-errors"
)

type CreateRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Sector      string `json:"sector"`
	DriverID    string `json:"driver_id,omitempty"`
	CargoValue  string `json:"cargo_value,omitempty"`
}

func (r *CreateRequest) Normalize() {
	r.Origin = strings.TrimSpace(r.Origin)
	r.Destination = strings.TrimSpace(r.Destination)
	r.Sector = strings.TrimSpace(r.Sector)
	r.DriverID = strings.TrimSpace(r.DriverID)
	r.CargoValue = strings.TrimSpace(r.CargoValue)
}

func (r *CreateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	verr := dErrors.New(dErrors.CodeValidation, "invalid shipment")
	if r.Origin == "" {
		verr.WithField("origin", "this field is required")
	} else if len(r.Origin) > 100 {
		verr.WithField("origin", "must be at most 100 characters")
	}
	if r.Destination == "" {
		verr.WithField("destination", "this field is required")
	} else if len(r.Destination) > 100 {
		verr.WithField("destination", "must be at most 100 characters")
	}
	if r.DriverID != "" {
		if _, err := id.ParseUserID(r.DriverID); err != nil {
			verr.WithField("driver_id", "must be a user id")
		}
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// ParsedDriverID returns nil when no driver was named. Call after Validate.
func (r *CreateRequest) ParsedDriverID() *id.UserID {
	if r.DriverID == "" {
		return nil
	}
	driver, _ := id.ParseUserID(r.DriverID)
	return &driver
}

type UpdateStatusRequest struct {
	Status   string `json:"status"`
	Location string `json:"location"`
}

func (r *UpdateStatusRequest) Normalize() {
	r.Status = strings.ToUpper(strings.TrimSpace(r.Status))
	r.Location = strings.TrimSpace(r.Location)
	if r.Location == "" {
		r.Location = DefaultLocation
	}
}

func (r *UpdateStatusRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if !Status(r.Status).IsValid() {
		return dErrors.Field("status", "must be one of PENDING, IN_TRANSIT, DELIVERED, FAILED")
	}
	return nil
}

// ParseFilter reads status, destination, search, page and page_size from a
// query string. page_size above the maximum is clamped.
func ParseFilter(q url.Values) (Filter, error) {
	f := Filter{
		Status:      Status(strings.ToUpper(strings.TrimSpace(q.Get("status")))),
		Destination: strings.TrimSpace(q.Get("destination")),
		Search:      strings.TrimSpace(q.Get("search")),
		Page:        1,
		PageSize:    DefaultPageSize,
	}
	if f.Status != "" && !f.Status.IsValid() {
		return Filter{}, dErrors.Field("status", "unknown status")
	}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Filter{}, dErrors.Field("page", "must be a positive integer")
		}
		f.Page = n
	}
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Filter{}, dErrors.Field("page_size", "must be a positive integer")
		}
		f.PageSize = min(n, MaxPageSize)
	}
	return f, nil
}

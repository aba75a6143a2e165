package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "ishemalink/pkg/domain-errors"
)

func TestCreateRequestValidate(t *testing.T) {
	valid := func() *CreateRequest {
		return &CreateRequest{
			ManifestID:  "C-2024-0001",
			TINNumber:   "TIN100200",
			Destination: "ug",
			WeightKg:    json.Number("1250.5"),
		}
	}

	tests := []struct {
		name   string
		mutate func(r *CreateRequest)
		field  string
	}{
		{name: "missing manifest", mutate: func(r *CreateRequest) { r.ManifestID = "" }, field: "manifest_id"},
		{name: "unknown destination", mutate: func(r *CreateRequest) { r.Destination = "RW" }, field: "destination_country"},
		{name: "kenya without TIN", mutate: func(r *CreateRequest) { r.Destination = "KE"; r.TINNumber = "" }, field: "tin_number"},
		{name: "zero weight", mutate: func(r *CreateRequest) { r.WeightKg = "0" }, field: "weight_kg"},
		{name: "negative weight", mutate: func(r *CreateRequest) { r.WeightKg = "-3" }, field: "weight_kg"},
		{name: "weight beyond column precision", mutate: func(r *CreateRequest) { r.WeightKg = "100000000" }, field: "weight_kg"},
		{name: "punctuated TIN", mutate: func(r *CreateRequest) { r.TINNumber = "TIN-1" }, field: "tin_number"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := valid()
			tc.mutate(r)
			r.Normalize()
			err := r.Validate()
			require.Error(t, err)
			de, ok := dErrors.As(err)
			require.True(t, ok)
			assert.Contains(t, de.Fields, tc.field)
		})
	}

	t.Run("valid declaration", func(t *testing.T) {
		r := valid()
		r.Normalize()
		require.NoError(t, r.Validate())
		assert.Equal(t, DestinationUganda, r.Destination)
		assert.Equal(t, "1250.50", r.Weight())
	})

	t.Run("TIN is optional outside Kenya", func(t *testing.T) {
		r := valid()
		r.TINNumber = ""
		r.Destination = "TZ"
		r.Normalize()
		assert.NoError(t, r.Validate())
	})
}

package scan

import (
	"testing"

	custom_error "github.com/DavisKoreal/Emay/pkg/errors"
	"github.com/DavisKoreal/Emay/pkg/metadata"
	"github.com/DavisKoreal/Emay/pkg/models"

	"github.com/stretchr/testify/assert"
)

func TestParsePayload(t *testing.T) {
	tests := []struct {
		name          string
		payload       string
		expectedImei  string
		expectedModel string
		wantErr       bool
	}{
		{
			name:         "bare imei",
			payload:      "358382749104927",
			expectedImei: "358382749104927",
		},
		{
			name:          "combined imei and model",
			payload:       "358382749104927 iPhone 15 Pro Max",
			expectedImei:  "358382749104927",
			expectedModel: "iPhone 15 Pro Max",
		},
		{
			name:          "17 digit imei with model",
			payload:       "35838274910492712 Galaxy S25",
			expectedImei:  "35838274910492712",
			expectedModel: "Galaxy S25",
		},
		{name: "garbage", payload: "abc123", wantErr: true},
		{name: "imei too short", payload: "12345678901234", wantErr: true},
		{name: "imei too long bare", payload: "123456789012345678", wantErr: true},
		{name: "empty payload", payload: "", wantErr: true},
		{name: "model without imei", payload: "iPhone 15 Pro", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate, err := ParsePayload(tt.payload, "qr")

			if tt.wantErr {
				assert.Error(t, err)
				_, ok := err.(*custom_error.UnrecognizedPayloadError)
				assert.True(t, ok, "expected UnrecognizedPayloadError, got %T", err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.expectedImei, candidate.Imei)
			assert.Equal(t, tt.expectedModel, candidate.Model)
		})
	}
}

func TestParsePayloadSymbologyIsIgnored(t *testing.T) {
	for _, symbology := range []string{"qr", "code128", ""} {
		candidate, err := ParsePayload("358382749104927", symbology)
		assert.NoError(t, err)
		assert.Equal(t, "358382749104927", candidate.Imei)
	}
}

type stubCache struct {
	records map[string]models.InventoryRecord
}

func (s *stubCache) Lookup(imei string) (models.InventoryRecord, bool) {
	record, ok := s.records[imei]
	return record, ok
}

func TestResolve(t *testing.T) {
	existing := models.InventoryRecord{
		Imei:   "358382749104927",
		Model:  "iPhone 15 Pro Max",
		Status: metadata.StatusInStock,
	}
	cache := &stubCache{records: map[string]models.InventoryRecord{existing.Imei: existing}}

	t.Run("known imei resolves to update form", func(t *testing.T) {
		resolution := Resolve(Candidate{Imei: existing.Imei}, cache)
		assert.Equal(t, ActionUpdate, resolution.Action)
		assert.NotNil(t, resolution.Record)
		assert.Equal(t, existing.Model, resolution.Record.Model)
	})

	t.Run("unknown imei resolves to create form", func(t *testing.T) {
		resolution := Resolve(Candidate{Imei: "123456789012345", Model: "Pixel 9"}, cache)
		assert.Equal(t, ActionCreate, resolution.Action)
		assert.Nil(t, resolution.Record)
		assert.Equal(t, "Pixel 9", resolution.Candidate.Model)
	})
}

package scan

import (
	"regexp"
	"strings"

	custom_error "github.com/DavisKoreal/Emay/pkg/errors"
	"github.com/DavisKoreal/Emay/pkg/models"
)

// Supported payload shapes: a bare IMEI, or an IMEI followed by a
// single space and the model name.
var (
	bareImeiPattern = regexp.MustCompile(`^\d{15,17}$`)
	combinedPattern = regexp.MustCompile(`^(\d{15,17}) (.+)$`)
)

// Candidate is the IMEI/model pair extracted from a decoded barcode.
// Model is empty for bare-IMEI payloads and must be filled manually.
type Candidate struct {
	Imei  string `json:"imei"`
	Model string `json:"model"`
}

// ParsePayload converts raw decoded barcode text into a candidate. The
// symbology tag is carried by the scanner but does not affect parsing.
func ParsePayload(text, symbology string) (Candidate, error) {
	trimmed := strings.TrimSpace(text)

	if bareImeiPattern.MatchString(trimmed) {
		return Candidate{Imei: trimmed}, nil
	}

	if match := combinedPattern.FindStringSubmatch(trimmed); match != nil {
		return Candidate{Imei: match[1], Model: match[2]}, nil
	}

	return Candidate{}, &custom_error.UnrecognizedPayloadError{Payload: text}
}

// Action tells the UI which form to present for a recognized payload.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
)

// Resolution pairs the parsed candidate with the form the UI should
// open: a create form prefilled from the candidate, or an update form
// prefilled from the existing record.
type Resolution struct {
	Action    Action                  `json:"action"`
	Candidate Candidate               `json:"candidate"`
	Record    *models.InventoryRecord `json:"record,omitempty"`
}

// RecordLookup answers IMEI lookups from the cached record set; no
// network round trip happens during resolution.
type RecordLookup interface {
	Lookup(imei string) (models.InventoryRecord, bool)
}

// Resolve decides between the create and update forms for a candidate.
func Resolve(candidate Candidate, cache RecordLookup) Resolution {
	if record, ok := cache.Lookup(candidate.Imei); ok {
		return Resolution{
			Action:    ActionUpdate,
			Candidate: candidate,
			Record:    &record,
		}
	}

	return Resolution{
		Action:    ActionCreate,
		Candidate: candidate,
	}
}

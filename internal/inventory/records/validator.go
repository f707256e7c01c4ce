package records

import (
	"regexp"
	"strings"

	custom_error "github.com/DavisKoreal/Emay/pkg/errors"
	"github.com/DavisKoreal/Emay/pkg/metadata"
	"github.com/DavisKoreal/Emay/pkg/models"
)

var imeiPattern = regexp.MustCompile(`^\d{15,17}$`)

// ValidImei reports whether s is a well-formed IMEI: digits only,
// 15 to 17 of them.
func ValidImei(s string) bool {
	return imeiPattern.MatchString(s)
}

// ImeiExistsFunc answers the advisory duplicate check against the
// cached record set. The store remains the authority on duplicates.
type ImeiExistsFunc func(imei string) bool

// ValidateDraft checks a form draft and returns the normalized record.
// It is a pure function with no side effects; rules are applied in
// order and the first failing rule wins:
//
//  1. model must be non-empty
//  2. imei must be 15-17 digits
//  3. when status is not in_stock, both counterparty fields are required
//  4. when creating, the imei must not already be in the cached set
func ValidateDraft(draft models.RecordDraft, creating bool, exists ImeiExistsFunc) (models.InventoryRecord, error) {
	model := strings.TrimSpace(draft.Model)
	if model == "" {
		return models.InventoryRecord{}, &custom_error.ValidationError{
			Reason: custom_error.ReasonMissingModel,
			Field:  "model",
		}
	}

	imei := strings.TrimSpace(draft.Imei)
	if !ValidImei(imei) {
		return models.InventoryRecord{}, &custom_error.ValidationError{
			Reason: custom_error.ReasonInvalidImei,
			Field:  "imei",
		}
	}

	statusValue := draft.Status
	if statusValue == "" {
		statusValue = metadata.StatusInStock.String()
	}
	status, err := metadata.NewStatus(statusValue)
	if err != nil {
		return models.InventoryRecord{}, err
	}

	record := models.InventoryRecord{
		Imei:   imei,
		Model:  model,
		Status: status,
	}

	if status.RequiresCounterparty() {
		name := strings.TrimSpace(draft.CounterpartyName)
		contact := strings.TrimSpace(draft.CounterpartyContact)
		if name == "" || contact == "" {
			field := "counterparty_name"
			if name != "" {
				field = "counterparty_contact"
			}
			return models.InventoryRecord{}, &custom_error.ValidationError{
				Reason: custom_error.ReasonMissingCounterpartyInfo,
				Field:  field,
			}
		}
		record.CounterpartyName = name
		record.CounterpartyContact = contact
	}

	if creating && exists != nil && exists(imei) {
		return models.InventoryRecord{}, &custom_error.DuplicateKeyError{Imei: imei}
	}

	return record, nil
}

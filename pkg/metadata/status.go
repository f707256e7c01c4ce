package metadata

import "fmt"

type Status string

const (
	StatusInStock      Status = "in_stock"
	StatusSold         Status = "sold"
	StatusWithRetailer Status = "with_retailer"
)

// AllStatuses in badge display order.
var AllStatuses = []Status{StatusInStock, StatusSold, StatusWithRetailer}

func NewStatus(value string) (Status, error) {
	status := Status(value)
	if !status.isValid() {
		return "", fmt.Errorf("invalid status: %s", value)
	}
	return status, nil
}

func (s Status) isValid() bool {
	switch s {
	case StatusInStock, StatusSold, StatusWithRetailer:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	return string(s)
}

// RequiresCounterparty reports whether records in this status must carry
// counterparty details (the buyer for sold, the retailer for with_retailer).
func (s Status) RequiresCounterparty() bool {
	return s != StatusInStock
}

// DateLabel is the prefix rendered before the record's date_updated.
func (s Status) DateLabel() string {
	switch s {
	case StatusInStock:
		return "Added on"
	case StatusSold:
		return "Sold on"
	case StatusWithRetailer:
		return "Left on"
	default:
		return "Updated on"
	}
}

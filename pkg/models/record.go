package models

import (
	"database/sql"
	"time"

	"github.com/DavisKoreal/Emay/pkg/metadata"
)

// InventoryRecord represents one physical device tracked by a shop.
// The IMEI is the primary key within the shop scope and is immutable
// once the record is created.
type InventoryRecord struct {
	Imei                string          `json:"imei" db:"imei"`
	Model               string          `json:"model" db:"model"`
	Status              metadata.Status `json:"status" db:"status"`
	CounterpartyName    string          `json:"counterparty_name,omitempty" db:"counterparty_name"`
	CounterpartyContact string          `json:"counterparty_contact,omitempty" db:"counterparty_contact"`
	DateUpdated         time.Time       `json:"date_updated" db:"date_updated"`
}

// DateLabel renders the status-dependent prefix shown before DateUpdated
// ("Added on" / "Sold on" / "Left on").
func (r *InventoryRecord) DateLabel() string {
	return r.Status.DateLabel()
}

// FlatInventoryRecord is the raw row shape scanned from the database.
// Counterparty columns are nullable because records written while the
// device was in stock never populated them.
type FlatInventoryRecord struct {
	Imei                string         `db:"imei"`
	Model               string         `db:"model"`
	Status              string         `db:"status"`
	CounterpartyName    sql.NullString `db:"counterparty_name"`
	CounterpartyContact sql.NullString `db:"counterparty_contact"`
	DateUpdated         time.Time      `db:"date_updated"`
}

// Normalize fills defaults for any absent field so the rest of the
// system never sees a partial shape.
func (fr *FlatInventoryRecord) Normalize() InventoryRecord {
	status, err := metadata.NewStatus(fr.Status)
	if err != nil {
		status = metadata.StatusInStock
	}

	return InventoryRecord{
		Imei:                fr.Imei,
		Model:               fr.Model,
		Status:              status,
		CounterpartyName:    fr.CounterpartyName.String,
		CounterpartyContact: fr.CounterpartyContact.String,
		DateUpdated:         fr.DateUpdated,
	}
}

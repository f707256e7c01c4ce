package records

import (
	"database/sql"
	"fmt"

	"github.com/DavisKoreal/Emay/internal/repository"
	custom_error "github.com/DavisKoreal/Emay/pkg/errors"
	"github.com/DavisKoreal/Emay/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
)

// RecordsRepository is the store adapter for inventory records. Every
// operation is scoped by the shop phone number; the (shop, imei) pair is
// the primary key, so the database is the authority on duplicates.
//
// Failures to reach the store surface as UnavailableError; no retries
// are attempted here.
type RecordsRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *RecordsRepository {
	return &RecordsRepository{
		repository: r,
	}
}

func (r *RecordsRepository) CreateRecord(shopPhone string, record models.InventoryRecord) (*models.InventoryRecord, error) {
	row := goqu.Record{
		"shop_phone":   shopPhone,
		"imei":         record.Imei,
		"model":        record.Model,
		"status":       record.Status.String(),
		"date_updated": goqu.L("now()"),
	}
	if record.Status.RequiresCounterparty() {
		row["counterparty_name"] = record.CounterpartyName
		row["counterparty_contact"] = record.CounterpartyContact
	}

	var flat models.FlatInventoryRecord
	query := r.repository.GoquDBWrapper.Insert("inventory_records").
		Rows(row).
		Returning("imei", "model", "status", "counterparty_name", "counterparty_contact", "date_updated")

	found, err := query.Executor().ScanStruct(&flat)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return nil, custom_error.WrapDBError(record.Imei, string(pqErr.Code))
		}
		return nil, &custom_error.UnavailableError{Err: err}
	}
	if !found {
		return nil, &custom_error.UnavailableError{Err: fmt.Errorf("insert returned no row for IMEI %s", record.Imei)}
	}

	stored := flat.Normalize()
	return &stored, nil
}

func (r *RecordsRepository) GetRecord(shopPhone, imei string) (*models.InventoryRecord, error) {
	var flat models.FlatInventoryRecord
	query := r.recordQuery(shopPhone).Where(goqu.Ex{"imei": imei})

	found, err := query.Executor().ScanStruct(&flat)
	if err != nil {
		return nil, &custom_error.UnavailableError{Err: err}
	}
	if !found {
		return nil, &custom_error.NotFoundError{Imei: imei}
	}

	record := flat.Normalize()
	return &record, nil
}

// UpdateRecord merges the non-nil patch fields into the existing record
// and bumps date_updated. The IMEI itself is never patched.
func (r *RecordsRepository) UpdateRecord(shopPhone, imei string, patch models.RecordPatch) (*models.InventoryRecord, error) {
	changes := goqu.Record{
		"date_updated": goqu.L("now()"),
	}
	if patch.Model != nil {
		changes["model"] = *patch.Model
	}
	if patch.Status != nil {
		changes["status"] = *patch.Status
	}
	if patch.CounterpartyName != nil {
		changes["counterparty_name"] = nullable(*patch.CounterpartyName)
	}
	if patch.CounterpartyContact != nil {
		changes["counterparty_contact"] = nullable(*patch.CounterpartyContact)
	}

	var flat models.FlatInventoryRecord
	query := r.repository.GoquDBWrapper.Update("inventory_records").
		Set(changes).
		Where(goqu.Ex{"shop_phone": shopPhone, "imei": imei}).
		Returning("imei", "model", "status", "counterparty_name", "counterparty_contact", "date_updated")

	found, err := query.Executor().ScanStruct(&flat)
	if err != nil {
		return nil, &custom_error.UnavailableError{Err: err}
	}
	if !found {
		return nil, &custom_error.NotFoundError{Imei: imei}
	}

	record := flat.Normalize()
	return &record, nil
}

// DeleteRecord removes the record permanently. No tombstone is kept.
func (r *RecordsRepository) DeleteRecord(shopPhone, imei string) error {
	var deleted string
	query := r.repository.GoquDBWrapper.Delete("inventory_records").
		Where(goqu.Ex{"shop_phone": shopPhone, "imei": imei}).
		Returning("imei")

	found, err := query.Executor().ScanVal(&deleted)
	if err != nil {
		return &custom_error.UnavailableError{Err: err}
	}
	if !found {
		return &custom_error.NotFoundError{Imei: imei}
	}

	return nil
}

// ListAll returns every record in the shop scope. Ordering is applied
// by the list controller, not here.
func (r *RecordsRepository) ListAll(shopPhone string) ([]models.InventoryRecord, error) {
	return r.scanRecords(r.recordQuery(shopPhone))
}

// ListBy returns the shop's records narrowed by the given conditions,
// for callers that filter at the store rather than over the cached set
// (the spreadsheet export does this).
func (r *RecordsRepository) ListBy(shopPhone string, conditions repository.QueryBuilder) ([]models.InventoryRecord, error) {
	aliases := map[string]string{
		"status": "status",
	}

	query := r.recordQuery(shopPhone).Where(conditions.BuildConditions(aliases))
	return r.scanRecords(query)
}

func (r *RecordsRepository) recordQuery(shopPhone string) *goqu.SelectDataset {
	return r.repository.GoquDBWrapper.
		Select("imei", "model", "status", "counterparty_name", "counterparty_contact", "date_updated").
		From("inventory_records").
		Where(goqu.Ex{"shop_phone": shopPhone})
}

func (r *RecordsRepository) scanRecords(query *goqu.SelectDataset) ([]models.InventoryRecord, error) {
	var flatRecords []models.FlatInventoryRecord
	if err := query.Executor().ScanStructs(&flatRecords); err != nil {
		return nil, &custom_error.UnavailableError{Err: err}
	}

	records := make([]models.InventoryRecord, 0, len(flatRecords))
	for _, flat := range flatRecords {
		records = append(records, flat.Normalize())
	}

	return records, nil
}

func nullable(value string) interface{} {
	if value == "" {
		return sql.NullString{}
	}
	return value
}

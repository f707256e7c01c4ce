package googlesheets

import (
	"context"
	"fmt"
	"os"

	"github.com/DavisKoreal/Emay/internal/repository"
	"github.com/DavisKoreal/Emay/pkg/models"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// InventoryLister is the slice of the records repository the export
// needs.
type InventoryLister interface {
	ListAll(shopPhone string) ([]models.InventoryRecord, error)
	ListBy(shopPhone string, conditions repository.QueryBuilder) ([]models.InventoryRecord, error)
}

// ExportService writes a shop's inventory into a Google spreadsheet,
// one row per record.
type ExportService struct {
	sheetsService *sheets.Service
	lister        InventoryLister
}

func NewExportService(sheetsService *sheets.Service, lister InventoryLister) *ExportService {
	return &ExportService{
		sheetsService: sheetsService,
		lister:        lister,
	}
}

// NewSheetsService builds the Sheets client from the
// GOOGLE_SHEETS_CREDENTIALS_JSON environment variable, falling back to
// a local credentials file for development.
func NewSheetsService(ctx context.Context) (*sheets.Service, error) {
	credentialsJSON := os.Getenv("GOOGLE_SHEETS_CREDENTIALS_JSON")
	if credentialsJSON == "" {
		b, err := os.ReadFile("configs/google-credentials.json")
		if err != nil {
			return nil, fmt.Errorf("cannot read Google credentials file: %w", err)
		}
		credentialsJSON = string(b)
	}

	credentials, err := google.CredentialsFromJSON(ctx, []byte(credentialsJSON), sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("cannot load Google credentials: %w", err)
	}

	client := oauth2.NewClient(ctx, credentials.TokenSource)
	sheetsService, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("cannot create Google Sheets client: %w", err)
	}

	return sheetsService, nil
}

var exportHeader = []interface{}{
	"IMEI", "Model", "Status", "Counterparty", "Counterparty contact", "Date",
}

// ExportInventory fetches the shop's records, optionally narrowed to a
// status, and overwrites the spreadsheet starting at A1. Returns the
// number of exported records.
func (s *ExportService) ExportInventory(shopPhone, spreadsheetID, status string) (int, error) {
	var records []models.InventoryRecord
	var err error

	if status != "" {
		conditions := repository.NewQueryBuilder()
		conditions.AddCondition("status", status)
		records, err = s.lister.ListBy(shopPhone, conditions)
	} else {
		records, err = s.lister.ListAll(shopPhone)
	}
	if err != nil {
		return 0, err
	}

	values := BuildExportRows(records)

	body := &sheets.ValueRange{Values: values}
	_, err = s.sheetsService.Spreadsheets.Values.
		Update(spreadsheetID, "A1", body).
		ValueInputOption("RAW").
		Do()
	if err != nil {
		return 0, fmt.Errorf("cannot write spreadsheet: %w", err)
	}

	return len(records), nil
}

// BuildExportRows renders the header plus one row per record, with the
// status-dependent date label in the last column.
func BuildExportRows(records []models.InventoryRecord) [][]interface{} {
	values := make([][]interface{}, 0, len(records)+1)
	values = append(values, exportHeader)

	for _, record := range records {
		values = append(values, []interface{}{
			record.Imei,
			record.Model,
			record.Status.String(),
			record.CounterpartyName,
			record.CounterpartyContact,
			fmt.Sprintf("%s %s", record.DateLabel(), record.DateUpdated.Format("Jan 2, 2006")),
		})
	}

	return values
}

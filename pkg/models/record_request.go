package models

// RecordDraft is the create-form payload as entered by staff, before
// validation. Status defaults to in_stock when left empty.
type RecordDraft struct {
	Imei                string `json:"imei"`
	Model               string `json:"model"`
	Status              string `json:"status"`
	CounterpartyName    string `json:"counterparty_name"`
	CounterpartyContact string `json:"counterparty_contact"`
}

// RecordPatch carries a partial update. Nil fields are left untouched
// by the merge; the IMEI itself cannot be patched.
type RecordPatch struct {
	Model               *string `json:"model"`
	Status              *string `json:"status"`
	CounterpartyName    *string `json:"counterparty_name"`
	CounterpartyContact *string `json:"counterparty_contact"`
}

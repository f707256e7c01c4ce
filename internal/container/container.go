package container

import (
	"database/sql"

	"github.com/DavisKoreal/Emay/internal/inventory/listview"
	"github.com/DavisKoreal/Emay/internal/inventory/records"
	"github.com/DavisKoreal/Emay/internal/repository"
	"github.com/DavisKoreal/Emay/internal/shops"
	"github.com/DavisKoreal/Emay/pkg/security"
)

type Container struct {
	Repository        *repository.Repository
	RecordsRepository *records.RecordsRepository
	ListViews         *listview.Registry
	LoginHandler      *security.LoginHandler
	RecordsHandler    *records.RecordsHandler
	ShopsHandler      *shops.ShopsHandler
}

func NewAppContainer(db *sql.DB) *Container {
	repo := repository.NewRepository(db)
	recordsRepo := records.NewRepository(repo)
	listViews := listview.NewRegistry(recordsRepo)
	loginHandler := security.NewLoginHandler(repo)
	recordsHandler := records.NewRecordsHandler(recordsRepo, listViews)
	shopRepo := shops.NewRepository(repo)
	shopsHandler := shops.NewHandler(shopRepo, listViews)

	return &Container{
		Repository:        repo,
		RecordsRepository: recordsRepo,
		ListViews:         listViews,
		LoginHandler:      loginHandler,
		RecordsHandler:    recordsHandler,
		ShopsHandler:      shopsHandler,
	}
}

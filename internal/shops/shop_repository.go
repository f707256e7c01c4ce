package shops

import (
	"errors"
	"fmt"

	"github.com/DavisKoreal/Emay/internal/repository"
	custom_error "github.com/DavisKoreal/Emay/pkg/errors"
	"github.com/DavisKoreal/Emay/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
)

// ErrShopNotFound is returned when no shop is registered for the phone
// number.
var ErrShopNotFound = errors.New("shop not found")

type ShopRepository interface {
	PersistShop(req models.ShopSignupRequest, hashedPasscode []byte) (*models.Shop, error)
	GetShop(phoneNumber string) (*models.Shop, error)
}

type shopRepositoryImpl struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) ShopRepository {
	return &shopRepositoryImpl{repository: r}
}

// PersistShop inserts the shop and reads the stored row back in one
// transaction, so the returned timestamps are the committed ones.
func (r *shopRepositoryImpl) PersistShop(req models.ShopSignupRequest, hashedPasscode []byte) (*models.Shop, error) {
	var shop models.Shop

	err := repository.WithTransaction(r.repository.GoquDBWrapper, func(tx *goqu.TxDatabase) error {
		insert := tx.Insert("shops").
			Rows(goqu.Record{
				"phone_number":  req.PhoneNumber,
				"name":          req.Name,
				"contact":       req.Contact,
				"passcode_hash": string(hashedPasscode),
				"created_at":    goqu.L("now()"),
				"updated_at":    goqu.L("now()"),
			})

		if _, err := insert.Executor().Exec(); err != nil {
			if pqErr, ok := err.(*pq.Error); ok {
				return custom_error.WrapDBError(req.PhoneNumber, string(pqErr.Code))
			}
			return fmt.Errorf("failed to insert shop: %w", err)
		}

		found, err := tx.
			Select("phone_number", "name", "contact", "passcode_hash", "created_at", "updated_at").
			From("shops").
			Where(goqu.Ex{"phone_number": req.PhoneNumber}).
			Executor().ScanStruct(&shop)
		if err != nil {
			return fmt.Errorf("failed to read back shop: %w", err)
		}
		if !found {
			return ErrShopNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &shop, nil
}

func (r *shopRepositoryImpl) GetShop(phoneNumber string) (*models.Shop, error) {
	var shop models.Shop
	query := r.repository.GoquDBWrapper.
		Select("phone_number", "name", "contact", "passcode_hash", "created_at", "updated_at").
		From("shops").
		Where(goqu.Ex{"phone_number": phoneNumber})

	found, err := query.Executor().ScanStruct(&shop)
	if err != nil {
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}
	if !found {
		return nil, ErrShopNotFound
	}

	return &shop, nil
}

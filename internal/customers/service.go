package customers

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/wholesale-backoffice/internal/repo"
	"github.com/angelmondragon/wholesale-backoffice/pkg/db"
	"github.com/angelmondragon/wholesale-backoffice/pkg/db/models"
	pkgerrors "github.com/angelmondragon/wholesale-backoffice/pkg/errors"
	"github.com/angelmondragon/wholesale-backoffice/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages customers and the admin items granted to their inventories.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*CustomerDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*CustomerDTO, error)
	List(ctx context.Context) ([]CustomerDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*CustomerDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Grant(ctx context.Context, customerID uuid.UUID, input GrantInput) (*InventoryEntryDTO, error)
	Revoke(ctx context.Context, customerID, adminItemID uuid.UUID) error
	ListInventory(ctx context.Context, customerID uuid.UUID) ([]InventoryEntryDTO, error)
}

type service struct {
	db   *gorm.DB
	tx   txRunner
	repo repo.Base[models.Customer]
	logg *logger.Logger
}

func NewService(conn *gorm.DB, tx txRunner, logg *logger.Logger) (Service, error) {
	if conn == nil {
		return nil, errors.New("db required")
	}
	if tx == nil {
		return nil, errors.New("transaction runner required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{db: conn, tx: tx, repo: repo.NewBase[models.Customer](conn), logg: logg}, nil
}

// Create stores the customer together with its (empty) customer inventory.
func (s *service) Create(ctx context.Context, input CreateInput) (*CustomerDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.MissingField("name")
	}
	customer := &models.Customer{
		Name:    name,
		Email:   input.Email,
		Phone:   input.Phone,
		Address: input.Address,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, customer); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "create customer")
		}
		inv := &models.CustomerInventory{CustomerID: customer.ID}
		if err := tx.WithContext(ctx).Create(inv).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "create customer inventory")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithField(ctx, "customer_id", customer.ID.String()), "customer created")
	return s.Get(ctx, customer.ID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*CustomerDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.MissingField("id")
	}
	var customer models.Customer
	err := s.db.WithContext(ctx).Preload("Inventory").Where("id = ?", id).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load customer")
	}
	dto := mapCustomer(customer)
	return &dto, nil
}

func (s *service) List(ctx context.Context) ([]CustomerDTO, error) {
	var rows []models.Customer
	err := s.db.WithContext(ctx).
		Preload("Inventory").
		Order("name ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "list customers")
	}
	out := make([]CustomerDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapCustomer(row))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*CustomerDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.MissingField("id")
	}
	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.MissingField("name")
		}
		updates["name"] = name
	}
	if input.Email != nil {
		updates["email"] = *input.Email
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.Address != nil {
		updates["address"] = *input.Address
	}
	affected, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "update customer")
	}
	if affected == 0 {
		return nil, notFound(id)
	}
	return s.Get(ctx, id)
}

// Delete removes a customer that has never ordered, along with its inventory grants.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.MissingField("id")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		conn := tx.WithContext(ctx)
		var orders int64
		if err := conn.Model(&models.Order{}).Where("customer_id = ?", id).Count(&orders).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "count customer orders")
		}
		if orders > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "customer has orders").
				WithDetails(map[string]any{"customerId": id.String(), "orders": orders})
		}

		inventories := conn.Model(&models.CustomerInventory{}).Select("id").Where("customer_id = ?", id)
		if err := conn.Where("customer_inventory_id IN (?)", inventories).Delete(&models.CustomerInventoryItem{}).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "delete customer inventory items")
		}
		if err := conn.Where("customer_id = ?", id).Delete(&models.CustomerInventory{}).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "delete customer inventory")
		}
		affected, err := s.repo.WithTx(tx).Delete(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "delete customer")
		}
		if affected == 0 {
			return notFound(id)
		}
		return nil
	})
}

func (s *service) Grant(ctx context.Context, customerID uuid.UUID, input GrantInput) (*InventoryEntryDTO, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.MissingField("customerId")
	}
	if input.AdminItemID == uuid.Nil {
		return nil, pkgerrors.MissingField("adminItemId")
	}

	var grant models.CustomerInventoryItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		inv, err := s.inventoryFor(ctx, tx, customerID)
		if err != nil {
			return err
		}
		var item models.InventoryItem
		if err := tx.WithContext(ctx).Where("id = ?", input.AdminItemID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found").
					WithDetails(map[string]any{"adminItemId": input.AdminItemID.String()})
			}
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load inventory item")
		}

		var existing int64
		if err := tx.WithContext(ctx).
			Model(&models.CustomerInventoryItem{}).
			Where("customer_inventory_id = ? AND admin_item_id = ?", inv.ID, item.ID).
			Count(&existing).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "check grant")
		}
		if existing > 0 {
			return alreadyGranted(item.ID)
		}

		grant = models.CustomerInventoryItem{CustomerInventoryID: inv.ID, AdminItemID: item.ID}
		if err := tx.WithContext(ctx).Create(&grant).Error; err != nil {
			if db.IsUniqueViolation(err, "") {
				return alreadyGranted(item.ID)
			}
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "grant inventory item")
		}
		grant.AdminItem = &item
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := mapEntry(grant)
	return &dto, nil
}

func (s *service) Revoke(ctx context.Context, customerID, adminItemID uuid.UUID) error {
	if customerID == uuid.Nil {
		return pkgerrors.MissingField("customerId")
	}
	if adminItemID == uuid.Nil {
		return pkgerrors.MissingField("adminItemId")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		inv, err := s.inventoryFor(ctx, tx, customerID)
		if err != nil {
			return err
		}
		res := tx.WithContext(ctx).
			Where("customer_inventory_id = ? AND admin_item_id = ?", inv.ID, adminItemID).
			Delete(&models.CustomerInventoryItem{})
		if res.Error != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, res.Error, "revoke inventory item")
		}
		if res.RowsAffected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "item is not granted to customer").
				WithDetails(map[string]any{"adminItemId": adminItemID.String()})
		}
		return nil
	})
}

func (s *service) ListInventory(ctx context.Context, customerID uuid.UUID) ([]InventoryEntryDTO, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.MissingField("customerId")
	}
	inv, err := s.inventoryFor(ctx, s.db, customerID)
	if err != nil {
		return nil, err
	}
	var grants []models.CustomerInventoryItem
	err = s.db.WithContext(ctx).
		Preload("AdminItem").
		Where("customer_inventory_id = ?", inv.ID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&grants).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "list customer inventory")
	}
	out := make([]InventoryEntryDTO, 0, len(grants))
	for _, grant := range grants {
		out = append(out, mapEntry(grant))
	}
	return out, nil
}

func (s *service) inventoryFor(ctx context.Context, conn *gorm.DB, customerID uuid.UUID) (*models.CustomerInventory, error) {
	var inv models.CustomerInventory
	err := conn.WithContext(ctx).Where("customer_id = ?", customerID).First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer inventory not found").
				WithDetails(map[string]any{"customerId": customerID.String()})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load customer inventory")
	}
	return &inv, nil
}

func alreadyGranted(itemID uuid.UUID) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeConflict, "item already granted to customer").
		WithDetails(map[string]any{"adminItemId": itemID.String()})
}

func notFound(id uuid.UUID) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found").
		WithDetails(map[string]any{"customerId": id.String()})
}

package service

import (
	"fmt"
	"strings"
	"time"

	"go-carpet-shop/internal/apperror"
	"go-carpet-shop/internal/model"
	"go-carpet-shop/internal/query"
	"go-carpet-shop/internal/repository"
	"go-carpet-shop/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateSupplierRequest struct {
	Name    string               `json:"name" validate:"required"`
	Email   string               `json:"email" validate:"required,email"`
	Phone   string               `json:"phone" validate:"required,phone"`
	Address CreateAddressRequest `json:"address"`
}

type UpdateSupplierRequest struct {
	Name    *string               `json:"name"`
	Email   *string               `json:"email" validate:"omitempty,email"`
	Phone   *string               `json:"phone" validate:"omitempty,phone"`
	Address *UpdateAddressRequest `json:"address"`
}

type CreateMaterialBySupplierRequest struct {
	RawMaterialID uuid.UUID        `json:"raw_material_id" validate:"uuid_required"`
	SupplierID    uuid.UUID        `json:"supplier_id" validate:"uuid_required"`
	Price         *decimal.Decimal `json:"price" validate:"required,gte=0"`
}

type UpdateMaterialBySupplierRequest struct {
	RawMaterialID *uuid.UUID       `json:"raw_material_id"`
	SupplierID    *uuid.UUID       `json:"supplier_id"`
	Price         *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
}

type CreateMaterialOrderRequest struct {
	Status       model.OrderStatus `json:"status" validate:"omitempty,oneof=PEN DEL CAN"`
	DeliveryDate string            `json:"delivery_date" validate:"required,datetime=2006-01-02"`
}

type UpdateMaterialOrderRequest struct {
	Status       *model.OrderStatus `json:"status" validate:"omitempty,oneof=PEN DEL CAN"`
	DeliveryDate *string            `json:"delivery_date" validate:"omitempty,datetime=2006-01-02"`
}

type CreateOrderDetailRequest struct {
	MaterialOrderID      uuid.UUID `json:"material_order_id" validate:"uuid_required"`
	MaterialBySupplierID uuid.UUID `json:"material_by_supplier_id" validate:"uuid_required"`
	Quantity             int       `json:"quantity" validate:"required,gte=1"`
}

type UpdateOrderDetailRequest struct {
	MaterialOrderID      *uuid.UUID `json:"material_order_id"`
	MaterialBySupplierID *uuid.UUID `json:"material_by_supplier_id"`
	Quantity             *int       `json:"quantity" validate:"omitempty,gte=1"`
}

type (
	SupplierService           = CRUD[model.Supplier, CreateSupplierRequest, UpdateSupplierRequest]
	MaterialBySupplierService = CRUD[model.MaterialBySupplier, CreateMaterialBySupplierRequest, UpdateMaterialBySupplierRequest]
	MaterialOrderService      = CRUD[model.MaterialOrder, CreateMaterialOrderRequest, UpdateMaterialOrderRequest]
	OrderDetailService        = CRUD[model.OrderDetail, CreateOrderDetailRequest, UpdateOrderDetailRequest]
)

// SupplyServices groups the services of the supply chains app.
type SupplyServices struct {
	Suppliers           SupplierService
	MaterialBySuppliers MaterialBySupplierService
	MaterialOrders      MaterialOrderService
	OrderDetails        OrderDetailService
}

var (
	supplierSpec = query.Spec{Fields: map[string]query.Field{
		"name":       {Column: "name", Kind: query.String, Lookups: query.Text},
		"email":      {Column: "email", Kind: query.String, Lookups: query.Text},
		"phone":      {Column: "phone", Kind: query.String, Lookups: query.Text},
		"address":    {Column: "address_id", Kind: query.UUID, Lookups: query.Ref},
		"created_at": {Column: "created_at", Kind: query.Time, Lookups: query.Dates},
	}}
	materialBySupplierSpec = query.Spec{Fields: map[string]query.Field{
		"raw_material": {Column: "raw_material_id", Kind: query.UUID, Lookups: query.Ref},
		"supplier":     {Column: "supplier_id", Kind: query.UUID, Lookups: query.Ref},
		"price":        {Column: "price", Kind: query.Decimal, Lookups: query.Range},
	}}
	materialOrderSpec = query.Spec{Fields: map[string]query.Field{
		"status":        {Column: "status", Kind: query.String, Lookups: query.Ref},
		"delivery_date": {Column: "delivery_date", Kind: query.Time, Lookups: query.Dates},
		"created_at":    {Column: "created_at", Kind: query.Time, Lookups: query.Dates},
	}}
	orderDetailSpec = query.Spec{Fields: map[string]query.Field{
		"material_order":       {Column: "material_order_id", Kind: query.UUID, Lookups: query.Ref},
		"material_by_supplier": {Column: "material_by_supplier_id", Kind: query.UUID, Lookups: query.Ref},
		"quantity":             {Column: "quantity", Kind: query.Int, Lookups: query.Range},
	}}
)

var statusLabels = map[model.OrderStatus]string{
	model.OrderPending:   "pending",
	model.OrderDelivered: "delivered",
	model.OrderCancelled: "cancelled",
}

func NewSupplyServices(db *gorm.DB, addresses *AddressServices, notifier Notifier) *SupplyServices {
	return &SupplyServices{
		Suppliers:           newSupplierService(db, addresses),
		MaterialBySuppliers: newMaterialBySupplierCRUD(db),
		MaterialOrders:      newMaterialOrderCRUD(db, notifier),
		OrderDetails:        newOrderDetailCRUD(db, notifier),
	}
}

// supplierService owns the supplier's address: it is created, patched and deleted
// together with the supplier.
type supplierService struct {
	*crud[model.Supplier, CreateSupplierRequest, UpdateSupplierRequest]

	addresses *crud[model.Address, CreateAddressRequest, UpdateAddressRequest]
}

func newSupplierService(db *gorm.DB, addresses *AddressServices) *supplierService {
	s := &supplierService{
		crud:      newCRUD[model.Supplier, CreateSupplierRequest, UpdateSupplierRequest](db, "Supplier", supplierSpec, "Address.Neighborhood.Locality"),
		addresses: addresses.addresses,
	}
	s.guards = []repository.Guard{repository.Restrict(&model.MaterialBySupplier{}, "supplier_id", "supplier offers")}
	return s
}

func (s *supplierService) Create(req *CreateSupplierRequest, actor string) (*model.Supplier, error) {
	var id uuid.UUID
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := apperror.Check(req); err != nil {
			return err
		}
		n, err := productName("name", req.Name)
		if err != nil {
			return err
		}
		addr, err := s.addresses.createTx(tx, &req.Address, actor)
		if err != nil {
			return nest("address", err)
		}
		sup := &model.Supplier{
			Name:      n,
			Email:     normalizeEmail(req.Email),
			Phone:     strings.TrimSpace(req.Phone),
			AddressID: addr.ID,
		}
		stamp(sup, actor)
		if err := s.repo.WithTx(tx).Create(sup); err != nil {
			return err
		}
		id = sup.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

func (s *supplierService) Update(id uuid.UUID, req *UpdateSupplierRequest, actor string) (*model.Supplier, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if !validator.HasAnyField(req) {
			return apperror.Invalid("", "At least one field required")
		}
		if err := apperror.Check(req); err != nil {
			return err
		}
		repo := s.repo.WithTx(tx)
		sup, err := repo.FindByID(id)
		if err != nil {
			return err
		}
		if req.Name != nil {
			if sup.Name, err = productName("name", *req.Name); err != nil {
				return err
			}
		}
		if req.Email != nil {
			sup.Email = normalizeEmail(*req.Email)
		}
		if req.Phone != nil {
			sup.Phone = strings.TrimSpace(*req.Phone)
		}
		if req.Address != nil && validator.HasAnyField(req.Address) {
			if _, err := s.addresses.updateTx(tx, sup.AddressID, req.Address, actor); err != nil {
				return nest("address", err)
			}
		}
		stamp(sup, actor)
		return repo.Save(sup)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

func (s *supplierService) Delete(id uuid.UUID, actor string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		sup, err := s.deleteTx(tx, id)
		if err != nil {
			return err
		}
		_, err = s.addresses.deleteTx(tx, sup.AddressID)
		return err
	})
}

func newMaterialBySupplierCRUD(db *gorm.DB) *crud[model.MaterialBySupplier, CreateMaterialBySupplierRequest, UpdateMaterialBySupplierRequest] {
	s := newCRUD[model.MaterialBySupplier, CreateMaterialBySupplierRequest, UpdateMaterialBySupplierRequest](db, "MaterialBySupplier", materialBySupplierSpec, "RawMaterial", "Supplier")
	s.build = func(tx *gorm.DB, req *CreateMaterialBySupplierRequest, actor string) (*model.MaterialBySupplier, error) {
		if _, err := requireRaw(tx, "raw_material_id", req.RawMaterialID); err != nil {
			return nil, err
		}
		if _, err := repository.NewRepo[model.Supplier](tx, "Supplier").Get("supplier_id", req.SupplierID); err != nil {
			return nil, err
		}
		return &model.MaterialBySupplier{RawMaterialID: req.RawMaterialID, SupplierID: req.SupplierID, Price: *req.Price}, nil
	}
	s.patch = func(tx *gorm.DB, v *model.MaterialBySupplier, req *UpdateMaterialBySupplierRequest) error {
		if req.RawMaterialID != nil {
			if _, err := requireRaw(tx, "raw_material_id", *req.RawMaterialID); err != nil {
				return err
			}
			v.RawMaterialID, v.RawMaterial = *req.RawMaterialID, nil
		}
		if req.SupplierID != nil {
			if _, err := repository.NewRepo[model.Supplier](tx, "Supplier").Get("supplier_id", *req.SupplierID); err != nil {
				return err
			}
			v.SupplierID, v.Supplier = *req.SupplierID, nil
		}
		if req.Price != nil {
			v.Price = *req.Price
		}
		return nil
	}
	s.guards = []repository.Guard{repository.Restrict(&model.OrderDetail{}, "material_by_supplier_id", "order lines")}
	return s
}

func newMaterialOrderCRUD(db *gorm.DB, notifier Notifier) *crud[model.MaterialOrder, CreateMaterialOrderRequest, UpdateMaterialOrderRequest] {
	s := newCRUD[model.MaterialOrder, CreateMaterialOrderRequest, UpdateMaterialOrderRequest](db, "MaterialOrder", materialOrderSpec, "Details.MaterialBySupplier")
	s.build = func(tx *gorm.DB, req *CreateMaterialOrderRequest, actor string) (*model.MaterialOrder, error) {
		date, err := deliveryDate(req.DeliveryDate)
		if err != nil {
			return nil, err
		}
		status := req.Status
		if status == "" {
			status = model.OrderPending
		}
		return &model.MaterialOrder{Status: status, DeliveryDate: date}, nil
	}
	s.patch = func(tx *gorm.DB, v *model.MaterialOrder, req *UpdateMaterialOrderRequest) error {
		if v.Status.Terminal() {
			return apperror.Validation("status", fmt.Sprintf("order is %s and can no longer change", statusLabels[v.Status]))
		}
		if req.Status != nil {
			if !v.Status.CanBecome(*req.Status) {
				return apperror.Validation("status", fmt.Sprintf("cannot move from %s to %s", v.Status, *req.Status))
			}
			v.Status = *req.Status
		}
		if req.DeliveryDate != nil {
			date, err := query.ParseTime(*req.DeliveryDate)
			if err != nil {
				return apperror.Validation("delivery_date", "must be a date in YYYY-MM-DD format")
			}
			v.DeliveryDate = date
		}
		return nil
	}
	// Lines go with their order.
	s.beforeDel = func(tx *gorm.DB, v *model.MaterialOrder) error {
		if err := tx.Where("material_order_id = ?", v.ID).Delete(&model.OrderDetail{}).Error; err != nil {
			return apperror.FromDB(err, "OrderDetail")
		}
		return nil
	}
	s.committed = func(action string, v *model.MaterialOrder) {
		notifier.Publish("order_status", "material_order_"+action, orderPayload(v))
	}
	return s
}

// deliveryDate parses a new order's delivery date, which may not lie in the past.
func deliveryDate(raw string) (time.Time, error) {
	date, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, apperror.Validation("delivery_date", "must be a date in YYYY-MM-DD format")
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if date.Before(today) {
		return time.Time{}, apperror.Validation("delivery_date", "cannot be in the past")
	}
	return date, nil
}

func orderPayload(v *model.MaterialOrder) map[string]interface{} {
	return map[string]interface{}{
		"id":            v.ID,
		"status":        v.Status,
		"delivery_date": v.DeliveryDate.Format(time.DateOnly),
		"total_price":   v.TotalPrice,
	}
}

func newOrderDetailCRUD(db *gorm.DB, notifier Notifier) *crud[model.OrderDetail, CreateOrderDetailRequest, UpdateOrderDetailRequest] {
	s := newCRUD[model.OrderDetail, CreateOrderDetailRequest, UpdateOrderDetailRequest](db, "OrderDetail", orderDetailSpec, "MaterialBySupplier")
	s.build = func(tx *gorm.DB, req *CreateOrderDetailRequest, actor string) (*model.OrderDetail, error) {
		if err := openOrder(tx, "material_order_id", req.MaterialOrderID); err != nil {
			return nil, err
		}
		if _, err := repository.NewRepo[model.MaterialBySupplier](tx, "MaterialBySupplier").Get("material_by_supplier_id", req.MaterialBySupplierID); err != nil {
			return nil, err
		}
		return &model.OrderDetail{
			MaterialOrderID:      req.MaterialOrderID,
			MaterialBySupplierID: req.MaterialBySupplierID,
			Quantity:             req.Quantity,
		}, nil
	}
	s.patch = func(tx *gorm.DB, v *model.OrderDetail, req *UpdateOrderDetailRequest) error {
		if err := openOrder(tx, "material_order_id", v.MaterialOrderID); err != nil {
			return err
		}
		if req.MaterialOrderID != nil {
			if err := openOrder(tx, "material_order_id", *req.MaterialOrderID); err != nil {
				return err
			}
			v.MaterialOrderID = *req.MaterialOrderID
		}
		if req.MaterialBySupplierID != nil {
			if _, err := repository.NewRepo[model.MaterialBySupplier](tx, "MaterialBySupplier").Get("material_by_supplier_id", *req.MaterialBySupplierID); err != nil {
				return err
			}
			v.MaterialBySupplierID, v.MaterialBySupplier = *req.MaterialBySupplierID, nil
		}
		if req.Quantity != nil {
			v.Quantity = *req.Quantity
		}
		return nil
	}
	s.beforeDel = func(tx *gorm.DB, v *model.OrderDetail) error {
		return openOrder(tx, "material_order_id", v.MaterialOrderID)
	}
	s.committed = func(action string, v *model.OrderDetail) {
		notifier.Publish("order_status", "order_detail_"+action, map[string]interface{}{
			"id":                v.ID,
			"material_order_id": v.MaterialOrderID,
			"quantity":          v.Quantity,
		})
	}
	return s
}

// openOrder rejects line mutations on delivered or cancelled orders.
func openOrder(tx *gorm.DB, field string, id uuid.UUID) error {
	order, err := repository.NewRepo[model.MaterialOrder](tx, "MaterialOrder").Get(field, id)
	if err != nil {
		return err
	}
	if order.Status.Terminal() {
		return apperror.Validation(field, fmt.Sprintf("order is %s; its lines can no longer change", statusLabels[order.Status]))
	}
	return nil
}

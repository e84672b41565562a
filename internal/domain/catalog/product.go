package catalog

import (
	"fmt"

	"time"

	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Variation represents a sellable variant of a product (color/size combination).
// Its stock counter must stay consistent with the parent product counter:
// a product with more than one variation carries the sum of its variation
// stocks, a product with exactly one variation mirrors it.
type Variation struct {
	shared.BaseEntity
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Color          string          `gorm:"type:varchar(50)"`
	Size           string          `gorm:"type:varchar(50)"`
	Stock          int64           `gorm:"not null;default:0"`
	WholesalePrice decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (Variation) TableName() string {
	return "product_variations"
}

// Label returns a human-readable attribute label for manifests and errors
func (v *Variation) Label() string {
	switch {
	case v.Color != "" && v.Size != "":
		return fmt.Sprintf("%s / %s", v.Color, v.Size)
	case v.Color != "":
		return v.Color
	case v.Size != "":
		return v.Size
	default:
		return v.ID.String()
	}
}

// Product is the catalog aggregate root. Stock is mutated only through
// Reserve and Release so the product/variation consistency invariant holds
// after every adjustment.
type Product struct {
	shared.BaseAggregateRoot
	SupplierID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name           string          `gorm:"type:varchar(200);not null"`
	Reference      string          `gorm:"type:varchar(50);index"`
	Stock          int64           `gorm:"not null;default:0"`
	WholesalePrice decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`

	Variations []Variation `gorm:"foreignKey:ProductID;references:ID"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product owned by a supplier
func NewProduct(supplierID uuid.UUID, name, reference string, stock int64, wholesalePrice decimal.Decimal) (*Product, error) {
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if stock < 0 {
		return nil, shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}
	if wholesalePrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Wholesale price cannot be negative")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SupplierID:        supplierID,
		Name:              name,
		Reference:         reference,
		Stock:             stock,
		WholesalePrice:    wholesalePrice,
		Variations:        make([]Variation, 0),
	}, nil
}

// AddVariation adds a variation to the product. Adding the first variation
// absorbs the product stock; adding further variations adds their stock to
// the product total.
func (p *Product) AddVariation(color, size string, stock int64, wholesalePrice decimal.Decimal) (*Variation, error) {
	if stock < 0 {
		return nil, shared.NewDomainError("INVALID_STOCK", "Variation stock cannot be negative")
	}
	if wholesalePrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Wholesale price cannot be negative")
	}
	for idx := range p.Variations {
		if p.Variations[idx].Color == color && p.Variations[idx].Size == size {
			return nil, shared.NewDomainError("DUPLICATE_VARIATION", "Variation with same attributes already exists")
		}
	}

	variation := Variation{
		BaseEntity:     shared.NewBaseEntity(),
		ProductID:      p.ID,
		Color:          color,
		Size:           size,
		Stock:          stock,
		WholesalePrice: wholesalePrice,
	}
	p.Variations = append(p.Variations, variation)
	p.syncStock()
	p.UpdatedAt = time.Now()

	return &p.Variations[len(p.Variations)-1], nil
}

// GetVariation returns a variation by its ID, or nil
func (p *Product) GetVariation(variationID uuid.UUID) *Variation {
	for idx := range p.Variations {
		if p.Variations[idx].ID == variationID {
			return &p.Variations[idx]
		}
	}
	return nil
}

// AvailableStock returns the stock counter targeted by a reservation:
// the variation counter when a variation is addressed, otherwise the
// product counter.
func (p *Product) AvailableStock(variationID *uuid.UUID) (int64, error) {
	if variationID == nil {
		if len(p.Variations) > 0 {
			return 0, shared.NewDomainError("VARIATION_REQUIRED", "Product has variations, a variation must be targeted")
		}
		return p.Stock, nil
	}
	variation := p.GetVariation(*variationID)
	if variation == nil {
		return 0, shared.NewDomainError("VARIATION_NOT_FOUND", "Variation does not belong to this product")
	}
	return variation.Stock, nil
}

// Reserve atomically decrements the targeted counter when enough stock is
// available and re-derives the product aggregate counter. No partial effect
// on failure.
func (p *Product) Reserve(variationID *uuid.UUID, qty int64) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Reserve quantity must be positive")
	}

	available, err := p.AvailableStock(variationID)
	if err != nil {
		return err
	}
	if available < qty {
		return p.insufficientStockError(variationID, qty, available)
	}

	if variationID != nil {
		p.GetVariation(*variationID).Stock -= qty
	} else {
		p.Stock -= qty
	}
	p.syncStock()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// Release increments the targeted counter. The caller is responsible for
// bounding the quantity to what was previously reserved.
func (p *Product) Release(variationID *uuid.UUID, qty int64) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Release quantity must be positive")
	}

	if variationID != nil {
		variation := p.GetVariation(*variationID)
		if variation == nil {
			return shared.NewDomainError("VARIATION_NOT_FOUND", "Variation does not belong to this product")
		}
		variation.Stock += qty
	} else {
		if len(p.Variations) > 0 {
			return shared.NewDomainError("VARIATION_REQUIRED", "Product has variations, a variation must be targeted")
		}
		p.Stock += qty
	}
	p.syncStock()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// syncStock re-derives the product counter from the variation counters:
// more than one variation -> sum, exactly one -> mirror, none -> untouched.
func (p *Product) syncStock() {
	switch len(p.Variations) {
	case 0:
		return
	case 1:
		p.Stock = p.Variations[0].Stock
	default:
		var total int64
		for idx := range p.Variations {
			total += p.Variations[idx].Stock
		}
		p.Stock = total
	}
}

// StockConsistent reports whether the product/variation invariant holds
func (p *Product) StockConsistent() bool {
	switch len(p.Variations) {
	case 0:
		return p.Stock >= 0
	case 1:
		return p.Stock == p.Variations[0].Stock && p.Stock >= 0
	default:
		var total int64
		for idx := range p.Variations {
			if p.Variations[idx].Stock < 0 {
				return false
			}
			total += p.Variations[idx].Stock
		}
		return p.Stock == total
	}
}

func (p *Product) insufficientStockError(variationID *uuid.UUID, requested, available int64) *shared.DomainError {
	target := fmt.Sprintf("product %s (%s)", p.Name, p.ID)
	if variationID != nil {
		if v := p.GetVariation(*variationID); v != nil {
			target = fmt.Sprintf("product %s variation %s (%s)", p.Name, v.Label(), v.ID)
		}
	}
	return shared.NewDomainError("INSUFFICIENT_STOCK",
		fmt.Sprintf("Insufficient stock for %s: requested %d, available %d", target, requested, available))
}

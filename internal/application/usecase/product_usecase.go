package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Límites de texto del catálogo.
const (
	MaxNameLength     = 200
	MaxCategoryLength = 100
)

// ProductUseCase casos de uso CRUD del catálogo. La existencia solo se fija al
// crear; después cambia únicamente con movimientos.
type ProductUseCase struct {
	repo repository.ProductRepository
	now  func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// Create crea un producto. Quantity queda también como InitialQuantity.
func (uc *ProductUseCase) Create(ctx context.Context, userID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name, category := strings.TrimSpace(in.Name), strings.TrimSpace(in.Category)
	if err := validateCatalog(name, category, in.BuyPrice, in.SellPrice, in.MinThreshold); err != nil {
		return nil, err
	}
	if in.Quantity < 0 {
		return nil, domain.Invalid("quantity", "no puede ser negativa")
	}

	now := uc.now()
	product := &entity.Product{
		ID:              uuid.New().String(),
		Name:            name,
		Category:        category,
		Quantity:        in.Quantity,
		InitialQuantity: in.Quantity,
		BuyPrice:        in.BuyPrice,
		SellPrice:       in.SellPrice,
		MinThreshold:    in.MinThreshold,
		CreatedBy:       userID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	resp := dto.FromProduct(product)
	return &resp, nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.FromProduct(product)
	return &resp, nil
}

// List devuelve el catálogo en orden de creación.
func (uc *ProductUseCase) List(ctx context.Context) (*dto.ProductListResponse, error) {
	products, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.ProductListResponse{Items: dto.FromProducts(products), Total: len(products)}, nil
}

// Update edita campos de catálogo. No permite modificar la existencia.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Category != nil {
		product.Category = strings.TrimSpace(*in.Category)
	}
	if in.BuyPrice != nil {
		product.BuyPrice = *in.BuyPrice
	}
	if in.SellPrice != nil {
		product.SellPrice = *in.SellPrice
	}
	if in.MinThreshold != nil {
		product.MinThreshold = *in.MinThreshold
	}
	if err := validateCatalog(product.Name, product.Category, product.BuyPrice, product.SellPrice, product.MinThreshold); err != nil {
		return nil, err
	}
	product.UpdatedAt = uc.now()

	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	// releer: la existencia pudo cambiar entre la lectura y la escritura
	return uc.GetByID(ctx, id)
}

// Delete elimina el producto. Sus movimientos quedan en el ledger.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

func validateCatalog(name, category string, buy, sell decimal.Decimal, minThreshold int) error {
	switch {
	case name == "":
		return domain.Invalid("name", "es obligatorio")
	case len([]rune(name)) > MaxNameLength:
		return domain.Invalid("name", "es demasiado largo")
	case category == "":
		return domain.Invalid("category", "es obligatoria")
	case len([]rune(category)) > MaxCategoryLength:
		return domain.Invalid("category", "es demasiado larga")
	case buy.IsNegative():
		return domain.Invalid("buy_price", "no puede ser negativo")
	case sell.IsNegative():
		return domain.Invalid("sell_price", "no puede ser negativo")
	case minThreshold < 0:
		return domain.Invalid("min_threshold", "no puede ser negativo")
	}
	return nil
}

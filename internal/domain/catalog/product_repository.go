package catalog

import "context"

// ProductRepository defines the persistence contract for products
type ProductRepository interface {
	// FindBySKU returns shared.ErrNotFound when no row has the SKU
	FindBySKU(ctx context.Context, sku string) (*Product, error)

	// ExistsBySKU checks whether a row with the SKU exists
	ExistsBySKU(ctx context.Context, sku string) (bool, error)

	// List returns every product ordered by SKU ascending
	List(ctx context.Context) ([]Product, error)

	// Upsert inserts the product or, on SKU conflict, overwrites every column
	Upsert(ctx context.Context, product *Product) error

	// Update overwrites every editable column of the row with the product's SKU
	// and returns the number of affected rows
	Update(ctx context.Context, product *Product) (int64, error)

	// Delete removes the row; deleting an absent SKU is not an error
	Delete(ctx context.Context, sku string) error
}

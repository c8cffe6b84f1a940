package usecase

import "context"

// CategoryLookup resolves category and subcategory existence. The host
// application owns the category lifecycle; the core only consults it.
type CategoryLookup interface {
	CategoryExists(ctx context.Context, category string) (bool, error)
	SubCategoryExists(ctx context.Context, category, subCategory string) (bool, error)
}

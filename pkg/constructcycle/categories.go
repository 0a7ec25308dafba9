package constructcycle

import (
	"context"
)

const categoriesPath = "/products/categories/"

// categoryService implements the CategoryService interface
type categoryService struct {
	client *Client
}

// List retrieves all categories. The backend sends either a bare list or a
// paginated object; both come back as the plain list.
func (s *categoryService) List(ctx context.Context) ([]*Category, error) {
	var page Page[Category]
	if err := s.client.Get(ctx, categoriesPath, &page); err != nil {
		return nil, err
	}
	if page.Results == nil {
		return []*Category{}, nil
	}
	return page.Results, nil
}

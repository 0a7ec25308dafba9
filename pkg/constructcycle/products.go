package constructcycle

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

const (
	productsPath       = "/products/"
	productSearchPath  = "/products/search/"
	myProductsPath     = "/products/my-products/"
	productCreatePath  = "/products/create/"
	uploadedImageField = "uploaded_images"
)

// productService implements the ProductService interface
type productService struct {
	client *Client
}

// List retrieves active products. An empty filter map requests /products/
// with no query string at all.
func (s *productService) List(ctx context.Context, filters map[string]string) (*Page[ProductSummary], error) {
	var result Page[ProductSummary]
	if err := s.client.Get(ctx, withQuery(productsPath, filters), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Query returns a product query builder
func (s *productService) Query() ProductQueryBuilder {
	return &productQueryBuilder{
		client:  s.client,
		filters: make(map[string]string),
	}
}

// Get retrieves a single product
func (s *productService) Get(ctx context.Context, productID int64) (*Product, error) {
	var product Product
	if err := s.client.Get(ctx, fmt.Sprintf("/products/%d/", productID), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Search matches name, description and tags
func (s *productService) Search(ctx context.Context, query string) (*Page[ProductSummary], error) {
	var result Page[ProductSummary]
	path := productSearchPath + "?" + url.Values{"q": {query}}.Encode()
	if err := s.client.Get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Mine lists the seller's own products, inactive ones included
func (s *productService) Mine(ctx context.Context) (*Page[Product], error) {
	var result Page[Product]
	if err := s.client.Get(ctx, myProductsPath, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Create lists a new product
func (s *productService) Create(ctx context.Context, params *CreateProductParams) (*Product, error) {
	if params == nil {
		params = &CreateProductParams{}
	}

	var product Product
	if err := s.client.Post(ctx, productCreatePath, params, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateWithImages lists a new product with photos. The form carries the
// same fields as Create; each image becomes an uploaded_images part.
func (s *productService) CreateWithImages(ctx context.Context, params *CreateProductParams, images ...*ImageUpload) (*Product, error) {
	if params == nil {
		params = &CreateProductParams{}
	}

	files := make([]UploadFile, 0, len(images))
	for _, img := range images {
		if img == nil {
			continue
		}
		files = append(files, UploadFile{Field: uploadedImageField, Name: img.Name, Content: img.Content})
	}

	var product Product
	if err := s.client.Upload(ctx, productCreatePath, productFormFields(params), files, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Update patches a product
func (s *productService) Update(ctx context.Context, productID int64, params *UpdateProductParams) (*Product, error) {
	if params == nil {
		params = &UpdateProductParams{}
	}

	var product Product
	if err := s.client.Patch(ctx, fmt.Sprintf("/products/%d/update/", productID), params, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Delete removes a product
func (s *productService) Delete(ctx context.Context, productID int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/products/%d/delete/", productID), nil)
}

// productFormFields flattens params into multipart fields
func productFormFields(p *CreateProductParams) map[string][]string {
	fields := map[string][]string{
		"name":           {p.Name},
		"description":    {p.Description},
		"category":       {strconv.FormatInt(p.Category, 10)},
		"condition":      {strconv.Itoa(p.Condition)},
		"stock_quantity": {p.StockQuantity.String()},
		"sale_price":     {p.SalePrice.String()},
		"city":           {p.City},
		"district":       {p.District},
	}
	if p.AISuggestedPrice != "" {
		fields["ai_suggested_price"] = []string{p.AISuggestedPrice.String()}
	}
	if len(p.Tags) > 0 {
		fields["tags"] = append([]string(nil), p.Tags...)
	}
	return fields
}

// withQuery appends filters to path as a query string. Empty filters leave
// path untouched.
func withQuery(path string, filters map[string]string) string {
	if len(filters) == 0 {
		return path
	}
	values := make(url.Values, len(filters))
	for k, v := range filters {
		values.Set(k, v)
	}
	return path + "?" + values.Encode()
}

// productQueryBuilder implements ProductQueryBuilder
type productQueryBuilder struct {
	client  *Client
	filters map[string]string
}

// Page selects the result page, starting at 1
func (b *productQueryBuilder) Page(page int) ProductQueryBuilder {
	b.filters["page"] = strconv.Itoa(page)
	return b
}

// Category filters by category ID
func (b *productQueryBuilder) Category(categoryID int64) ProductQueryBuilder {
	b.filters["category"] = strconv.FormatInt(categoryID, 10)
	return b
}

// City filters by city
func (b *productQueryBuilder) City(city string) ProductQueryBuilder {
	b.filters["city"] = city
	return b
}

// Condition filters by condition
func (b *productQueryBuilder) Condition(condition int) ProductQueryBuilder {
	b.filters["condition"] = strconv.Itoa(condition)
	return b
}

// PriceBetween bounds the sale price. An empty bound is left open.
func (b *productQueryBuilder) PriceBetween(min, max string) ProductQueryBuilder {
	if min != "" {
		b.filters["min_price"] = min
	}
	if max != "" {
		b.filters["max_price"] = max
	}
	return b
}

// Search sets the free text filter
func (b *productQueryBuilder) Search(text string) ProductQueryBuilder {
	b.filters["search"] = text
	return b
}

// OrderBy sets ordering, e.g. "sale_price" or "-created_at"
func (b *productQueryBuilder) OrderBy(field string) ProductQueryBuilder {
	b.filters["ordering"] = field
	return b
}

// Filters returns a copy of the filters built so far
func (b *productQueryBuilder) Filters() map[string]string {
	out := make(map[string]string, len(b.filters))
	for k, v := range b.filters {
		out[k] = v
	}
	return out
}

// Execute runs the query
func (b *productQueryBuilder) Execute(ctx context.Context) (*Page[ProductSummary], error) {
	var result Page[ProductSummary]
	if err := b.client.Get(ctx, withQuery(productsPath, b.filters), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Stream returns results page by page as a channel
func (b *productQueryBuilder) Stream(ctx context.Context) (<-chan *ProductSummary, <-chan error) {
	productChan := make(chan *ProductSummary)
	errChan := make(chan error, 1)

	go func() {
		defer close(productChan)
		defer close(errChan)

		page := 1
		if p, err := strconv.Atoi(b.filters["page"]); err == nil && p > 0 {
			page = p
		}

		for {
			// Copy so the caller's builder is not mutated
			filters := b.Filters()
			filters["page"] = strconv.Itoa(page)
			pageBuilder := &productQueryBuilder{client: b.client, filters: filters}

			result, err := pageBuilder.Execute(ctx)
			if err != nil {
				errChan <- err
				return
			}

			for _, product := range result.Results {
				select {
				case <-ctx.Done():
					errChan <- ctx.Err()
					return
				case productChan <- product:
				}
			}

			if !result.HasNext() {
				return
			}
			page++
		}
	}()

	return productChan, errChan
}

package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eshaffer321/constructcycle-go/pkg/constructcycle"
)

func newTestTools(t *testing.T, token string) (*marketplaceTools, *[]string) {
	t.Helper()

	var seen []string
	mux := http.NewServeMux()
	handle := func(pattern, body string, status int) {
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			seen = append(seen, r.URL.RequestURI())
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = io.WriteString(w, body)
		})
	}

	handle("GET /api/v1/products/", `{"count":12,"next":"http://x/?page=2","previous":null,"results":[{"id":3,"name":"Beton Blok","company_name":"Yapı AŞ","condition_display":"Kullanılmamış","sale_price":"40.00","city":"Bursa"}]}`, 200)
	handle("GET /api/v1/products/3/", `{"id":3,"name":"Beton Blok","sale_price":"40.00","stock_quantity":"120","images":[{"image_url":"b.jpg"},{"image_url":"a.jpg","is_primary":true}]}`, 200)
	handle("GET /api/v1/products/404/", `{"detail":"Bulunamadı."}`, 404)
	handle("GET /api/v1/products/categories/", `[{"id":1,"name":"Beton"},{"id":2,"name":"Hazır Beton","parent":1,"parent_name":"Beton"}]`, 200)
	handle("GET /api/v1/orders/my-orders/", `{"count":1,"next":null,"previous":null,"results":[{"id":7,"order_number":"ORD-7","status":"pending","total_amount":"80.00","item_count":2}]}`, 200)
	handle("GET /api/v1/conversations/unread-count/", `{"total_unread":5}`, 200)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := constructcycle.NewClient(&constructcycle.ClientOptions{
		BaseURL: srv.URL + "/api/v1",
		Token:   token,
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	return &marketplaceTools{client: client}, &seen
}

func TestListProductsTool(t *testing.T) {
	tools, seen := newTestTools(t, "")
	used := 1

	_, output, err := tools.ListProducts(context.Background(), nil, ListProductsInput{
		City:      "Bursa",
		Condition: &used,
		MaxPrice:  "50",
	})
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}

	if want := "/api/v1/products/?city=Bursa&condition=1&max_price=50&page=1"; (*seen)[0] != want {
		t.Errorf("request = %s, want %s", (*seen)[0], want)
	}
	if output.Total != 12 || !output.HasMore || output.Page != 1 {
		t.Errorf("unexpected paging: %+v", output)
	}
	if len(output.Products) != 1 || output.Products[0].Company != "Yapı AŞ" || output.Products[0].Price != "40.00" {
		t.Errorf("unexpected products: %+v", output.Products)
	}
}

func TestGetProductTool(t *testing.T) {
	tools, _ := newTestTools(t, "")

	_, output, err := tools.GetProduct(context.Background(), nil, GetProductInput{ID: 3})
	if err != nil {
		t.Fatalf("GetProduct failed: %v", err)
	}
	if output.Stock != "120" {
		t.Errorf("stock = %q, want 120", output.Stock)
	}
	if len(output.Images) != 2 || output.Images[0] != "a.jpg" {
		t.Errorf("primary image should come first: %v", output.Images)
	}

	_, _, err = tools.GetProduct(context.Background(), nil, GetProductInput{ID: 404})
	if !errors.Is(err, constructcycle.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if _, _, err := tools.GetProduct(context.Background(), nil, GetProductInput{}); err == nil {
		t.Error("expected an error for a missing id")
	}
}

func TestListCategoriesTool(t *testing.T) {
	tools, _ := newTestTools(t, "")

	_, output, err := tools.ListCategories(context.Background(), nil, ListCategoriesInput{})
	if err != nil {
		t.Fatalf("ListCategories failed: %v", err)
	}
	if output.Count != 2 || output.Categories[1].Parent != "Beton" {
		t.Errorf("unexpected categories: %+v", output)
	}
}

func TestAccountToolsNeedSession(t *testing.T) {
	tools, seen := newTestTools(t, "")

	if _, _, err := tools.MyOrders(context.Background(), nil, MyOrdersInput{}); !errors.Is(err, constructcycle.ErrNotAuthenticated) {
		t.Errorf("MyOrders: expected ErrNotAuthenticated, got %v", err)
	}
	if _, _, err := tools.UnreadCount(context.Background(), nil, UnreadCountInput{}); !errors.Is(err, constructcycle.ErrNotAuthenticated) {
		t.Errorf("UnreadCount: expected ErrNotAuthenticated, got %v", err)
	}
	if len(*seen) != 0 {
		t.Errorf("no request should be sent without a session, saw %v", *seen)
	}
}

func TestAccountTools(t *testing.T) {
	tools, _ := newTestTools(t, "tok")

	_, orders, err := tools.MyOrders(context.Background(), nil, MyOrdersInput{})
	if err != nil {
		t.Fatalf("MyOrders failed: %v", err)
	}
	if orders.Count != 1 || orders.Orders[0].OrderNumber != "ORD-7" || orders.Orders[0].Items != 2 {
		t.Errorf("unexpected orders: %+v", orders)
	}

	_, unread, err := tools.UnreadCount(context.Background(), nil, UnreadCountInput{})
	if err != nil {
		t.Fatalf("UnreadCount failed: %v", err)
	}
	if unread.Unread != 5 {
		t.Errorf("unread = %d, want 5", unread.Unread)
	}
}

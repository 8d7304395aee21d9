package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"bitbucket.org/mmdatafocus/teahouse_backend/models"
	"github.com/shopspring/decimal"
)

func init() {
	register(&Tool{
		Name:        "create_product",
		Description: "Add a product to the catalog with a unique code.",
		Handler:     createProduct,
	})
	register(&Tool{
		Name:        "get_products",
		Description: "List active products, optionally by category or keyword.",
		Handler:     getProducts,
	})
	register(&Tool{
		Name:        "update_product",
		Description: "Update a product's catalog entry by id.",
		Handler:     updateProduct,
	})
}

type productArgs struct {
	Name        string          `json:"name" validate:"required"`
	Code        string          `json:"code" validate:"required"`
	Category    string          `json:"category" validate:"required"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	Unit        string          `json:"unit" validate:"required"`
	Description string          `json:"description"`
}

func (a *productArgs) toInput() *models.NewProduct {
	return &models.NewProduct{
		Name:        a.Name,
		Code:        a.Code,
		Category:    a.Category,
		Price:       a.Price,
		CostPrice:   a.CostPrice,
		Unit:        a.Unit,
		Description: a.Description,
	}
}

func createProduct(ctx context.Context, args json.RawMessage) (string, error) {
	var a productArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	product, err := models.CreateProduct(ctx, a.toInput())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Product %q (%s) added at %s per %s (id %d).",
		product.Name, product.Code, product.Price.StringFixed(2), product.Unit, product.ID), nil
}

type getProductsArgs struct {
	Category string `json:"category"`
	Keyword  string `json:"keyword"`
	Limit    int    `json:"limit"`
}

func getProducts(ctx context.Context, args json.RawMessage) (string, error) {
	var a getProductsArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	var category, keyword *string
	if len(a.Category) > 0 {
		category = &a.Category
	}
	if len(a.Keyword) > 0 {
		keyword = &a.Keyword
	}

	products, err := models.GetProducts(ctx, category, keyword, a.Limit)
	if err != nil {
		return "", err
	}
	if len(products) == 0 {
		return "No products found.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d product(s):\n", len(products))
	for _, p := range products {
		fmt.Fprintf(&b, "- [%d] %s %s (%s), %s per %s\n",
			p.ID, p.Code, p.Name, p.Category, p.Price.StringFixed(2), p.Unit)
	}
	return b.String(), nil
}

type updateProductArgs struct {
	Id int `json:"id" validate:"required"`
	productArgs
}

func updateProduct(ctx context.Context, args json.RawMessage) (string, error) {
	var a updateProductArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	product, err := models.UpdateProduct(ctx, a.Id, a.toInput())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Product %d updated: %s at %s.", product.ID, product.Name, product.Price.StringFixed(2)), nil
}

package handlers

import (
	"fmt"
	"io"

	"github.com/cardona-dev/bean-quick/internal/middleware"
	"github.com/cardona-dev/bean-quick/internal/models"
	"github.com/cardona-dev/bean-quick/internal/services"
	"github.com/cardona-dev/bean-quick/internal/storage"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// ProductHandler serves the catalog management of a company.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the product routes. Must be mounted behind RequireCompany.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleList)
	productRoutes.Post("/", h.HandleCreate)
	productRoutes.Get("/:id", h.HandleGet)
	productRoutes.Put("/:id", h.HandleUpdate)
	productRoutes.Delete("/:id", h.HandleDelete)
	productRoutes.Post("/:id/image", h.HandleUploadImage)
	productRoutes.Patch("/:id/stock", h.HandleAdjustStock)
}

// productView adds the public image address to a product.
type productView struct {
	models.Product
	ImageURL string `json:"image_url,omitempty"`
}

func newProductView(s *services.ProductService, p models.Product) productView {
	v := productView{Product: p}
	if p.ImagePath != "" {
		v.ImageURL = s.ImageURL(p.ImagePath)
	}
	return v
}

func productViews(s *services.ProductService, products []models.Product) []productView {
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, newProductView(s, p))
	}
	return views
}

type productRequest struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"gte=0"`
}

func (r productRequest) input() services.ProductInput {
	return services.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
	}
}

func (h *ProductHandler) HandleList(c *fiber.Ctx) error {
	products, err := h.service.ListByCompany(c.UserContext(), middleware.CompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(productViews(h.service, products))
}

func (h *ProductHandler) HandleGet(c *fiber.Ctx) error {
	product, err := h.service.Get(c.UserContext(), middleware.CompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(newProductView(h.service, *product))
}

func (h *ProductHandler) HandleCreate(c *fiber.Ctx) error {
	var req productRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}
	product, err := h.service.Create(c.UserContext(), middleware.CompanyID(c), req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newProductView(h.service, *product))
}

func (h *ProductHandler) HandleUpdate(c *fiber.Ctx) error {
	var req productRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}
	product, err := h.service.Update(c.UserContext(), middleware.CompanyID(c), c.Params("id"), req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(newProductView(h.service, *product))
}

func (h *ProductHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), middleware.CompanyID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleUploadImage accepts a multipart "image" field.
func (h *ProductHandler) HandleUploadImage(c *fiber.Ctx) error {
	data, ok, err := readUpload(c, "image")
	if !ok {
		return err
	}

	product, err := h.service.SetImage(c.UserContext(), middleware.CompanyID(c), c.Params("id"), data)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(newProductView(h.service, *product))
}

// readUpload loads a multipart file field. One byte past the storage limit is
// read so that oversized files are still rejected by storage.
func readUpload(c *fiber.Ctx, field string) ([]byte, bool, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": fmt.Sprintf("Field '%s' is required", field),
			"error":   err.Error(),
		})
	}
	file, err := header.Open()
	if err != nil {
		return nil, false, respondError(c, err)
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, storage.MaxImageSize+1))
	if err != nil {
		return nil, false, respondError(c, err)
	}
	return data, true, nil
}

type stockRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// HandleAdjustStock restocks or withdraws units of a product.
func (h *ProductHandler) HandleAdjustStock(c *fiber.Ctx) error {
	var req stockRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}
	stock, err := h.service.AdjustStock(c.UserContext(), middleware.CompanyID(c), c.Params("id"), req.Delta)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"product_id": c.Params("id"), "stock": stock})
}

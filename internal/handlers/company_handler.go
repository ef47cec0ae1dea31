package handlers

import (
	"github.com/cardona-dev/bean-quick/internal/middleware"
	"github.com/cardona-dev/bean-quick/internal/models"
	"github.com/cardona-dev/bean-quick/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CompanyHandler serves company registration, admin approval, client browsing
// and the profile of the signed-in company.
type CompanyHandler struct {
	companies *services.CompanyService
	products  *services.ProductService
	validate  *validator.Validate
}

func NewCompanyHandler(companies *services.CompanyService, products *services.ProductService) *CompanyHandler {
	return &CompanyHandler{
		companies: companies,
		products:  products,
		validate:  validator.New(),
	}
}

// RegisterRoutes registers the public registration endpoint.
func (h *CompanyHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/companies/requests", h.HandleRequest)
}

// RegisterClientRoutes registers browsing of approved companies.
func (h *CompanyHandler) RegisterClientRoutes(router fiber.Router) {
	companyRoutes := router.Group("/companies")
	companyRoutes.Get("/", h.HandleListApproved)
	companyRoutes.Get("/:id", h.HandleGetApproved)
	companyRoutes.Get("/:id/products", h.HandleListProducts)
}

// RegisterAdminRoutes registers the approval workflow.
func (h *CompanyHandler) RegisterAdminRoutes(router fiber.Router) {
	companyRoutes := router.Group("/companies")
	companyRoutes.Get("/pending", h.HandleListPending)
	companyRoutes.Post("/:id/approve", h.HandleApprove)
	companyRoutes.Post("/:id/reject", h.HandleReject)
}

// RegisterCompanyRoutes registers the profile of the caller's company. Must be
// mounted behind RequireCompany.
func (h *CompanyHandler) RegisterCompanyRoutes(router fiber.Router) {
	profileRoutes := router.Group("/profile")
	profileRoutes.Get("/", h.HandleGetProfile)
	profileRoutes.Put("/", h.HandleUpdateProfile)
	profileRoutes.Post("/logo", h.HandleUploadLogo)
}

// companyView adds the public logo address to a company.
type companyView struct {
	models.Company
	LogoURL string `json:"logo_url,omitempty"`
}

func (h *CompanyHandler) view(company *models.Company) companyView {
	return companyView{Company: *company, LogoURL: h.companies.LogoURL(company.LogoPath)}
}

type companyRequest struct {
	OwnerName   string `json:"owner_name" validate:"required,min=2,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	CompanyName string `json:"company_name" validate:"required,max=255"`
	TaxID       string `json:"tax_id" validate:"max=50"`
	Address     string `json:"address" validate:"max=255"`
	Phone       string `json:"phone" validate:"max=30"`
	Description string `json:"description"`
}

// HandleRequest creates the owner account and a pending company.
func (h *CompanyHandler) HandleRequest(c *fiber.Ctx) error {
	var req companyRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	company, err := h.companies.RequestRegistration(c.UserContext(), services.CompanyRequest{
		OwnerName:   req.OwnerName,
		Email:       req.Email,
		Password:    req.Password,
		CompanyName: req.CompanyName,
		TaxID:       req.TaxID,
		Address:     req.Address,
		Phone:       req.Phone,
		Description: req.Description,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Company request submitted, awaiting approval",
		"company": company,
	})
}

func (h *CompanyHandler) HandleListApproved(c *fiber.Ctx) error {
	companies, err := h.companies.ListApproved(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(companies)
}

func (h *CompanyHandler) HandleGetApproved(c *fiber.Ctx) error {
	company, err := h.companies.GetApproved(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(company)
}

// HandleListProducts lists the catalog of an approved company.
func (h *CompanyHandler) HandleListProducts(c *fiber.Ctx) error {
	products, err := h.products.ListForCustomers(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(productViews(h.products, products))
}

func (h *CompanyHandler) HandleListPending(c *fiber.Ctx) error {
	companies, err := h.companies.ListPending(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(companies)
}

func (h *CompanyHandler) HandleApprove(c *fiber.Ctx) error {
	company, err := h.companies.Approve(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Company approved", "company": company})
}

func (h *CompanyHandler) HandleReject(c *fiber.Ctx) error {
	company, err := h.companies.Reject(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Company rejected", "company": company})
}

type profileRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Address     string `json:"address" validate:"max=255"`
	Phone       string `json:"phone" validate:"max=30"`
	Description string `json:"description"`
}

func (h *CompanyHandler) HandleGetProfile(c *fiber.Ctx) error {
	company, err := h.companies.GetProfile(c.UserContext(), middleware.CompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.view(company))
}

// HandleUpdateProfile replaces the editable profile fields.
func (h *CompanyHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req profileRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}
	company, err := h.companies.UpdateProfile(c.UserContext(), middleware.CompanyID(c), services.ProfileInput{
		Name:        req.Name,
		Address:     req.Address,
		Phone:       req.Phone,
		Description: req.Description,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Company profile updated", "company": h.view(company)})
}

// HandleUploadLogo accepts a multipart "logo" field.
func (h *CompanyHandler) HandleUploadLogo(c *fiber.Ctx) error {
	data, ok, err := readUpload(c, "logo")
	if !ok {
		return err
	}
	company, err := h.companies.SetLogo(c.UserContext(), middleware.CompanyID(c), data)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.view(company))
}

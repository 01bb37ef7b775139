package handler

import (
	"io"

	"github.com/gin-gonic/gin"
	problem "github.com/s10-intake/intake-api/pkg/intake_api/helpers/problem"
	"github.com/s10-intake/intake-api/pkg/intake_api/models"
	"github.com/s10-intake/intake-api/pkg/intake_api/services"
)

// IntakeController binds HTTP requests to the template and submission services
type IntakeController struct {
	Templates   *services.TemplateService
	Submissions *services.SubmissionService
}

// NewIntakeController creates a new controller
func NewIntakeController(templates *services.TemplateService, submissions *services.SubmissionService) *IntakeController {
	return &IntakeController{Templates: templates, Submissions: submissions}
}

// UploadTemplate handles POST /upload-template
func (c *IntakeController) UploadTemplate(ctx *gin.Context) (*models.UploadTemplateResponse, error) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return nil, problem.NewBadRequest("file", "missing multipart file field 'file'")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, problem.NewInternalServerError(err.Error())
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, problem.NewInternalServerError(err.Error())
	}

	contentType := fileHeader.Header.Get("Content-Type")
	return c.Templates.UploadTemplate(ctx.Request.Context(), fileHeader.Filename, contentType, content)
}

// ListTemplates handles GET /templates
func (c *IntakeController) ListTemplates(ctx *gin.Context) ([]models.Template, error) {
	return c.Templates.ListTemplates(ctx.Request.Context())
}

// RetrieveTemplate handles GET /templates/:id
func (c *IntakeController) RetrieveTemplate(ctx *gin.Context, params *models.RetrieveTemplateRequest) (*models.Template, error) {
	template, err := c.Templates.RetrieveTemplate(ctx.Request.Context(), params.Id)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, problem.NewNotFound(params.Id, "Template not found")
	}
	return template, nil
}

// CreatePackage handles POST /packages
func (c *IntakeController) CreatePackage(ctx *gin.Context, body *models.CreatePackageInput) (*models.Package, error) {
	return c.Templates.CreatePackage(ctx.Request.Context(), body)
}

// ListPackages handles GET /packages
func (c *IntakeController) ListPackages(ctx *gin.Context) ([]models.Package, error) {
	return c.Templates.ListPackages(ctx.Request.Context())
}

// ReceiveWebhook handles POST /formsg-webhook
func (c *IntakeController) ReceiveWebhook(ctx *gin.Context, body *models.WebhookEnvelope) (*models.WebhookResponse, error) {
	return c.Submissions.HandleSubmission(ctx.Request.Context(), body)
}

// ListSubmissions handles GET /submissions
func (c *IntakeController) ListSubmissions(ctx *gin.Context) ([]models.FormSubmission, error) {
	return c.Submissions.ListSubmissions(ctx.Request.Context())
}

package frontend

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sustaina/shipping-risk-brain/internal/assessment"
	"github.com/sustaina/shipping-risk-brain/internal/certificate"
	"github.com/sustaina/shipping-risk-brain/internal/report"
	"github.com/sustaina/shipping-risk-brain/internal/riskmodel"
	"github.com/sustaina/shipping-risk-brain/internal/security"
	"github.com/sustaina/shipping-risk-brain/internal/session"
)

// Evaluator is the part of assessment.Service the pages need
type Evaluator interface {
	Evaluate(ctx context.Context, profile riskmodel.VesselProfile, asOf time.Time) (riskmodel.VesselProfile, riskmodel.RiskOutput, error)
	IssueCertificate(ctx context.Context, req assessment.CertificateRequest) (*assessment.Issued, error)
	Reference() riskmodel.Reference
	Currency() string
	DefaultValidityDays() int
}

// Handler serves the HTML form, the dashboard and the form download
type Handler struct {
	svc  Evaluator
	tmpl *template.Template
}

// NewHandler creates a page handler
func NewHandler(svc Evaluator, tmpl *template.Template) *Handler {
	return &Handler{svc: svc, tmpl: tmpl}
}

// Register mounts the pages on r. download runs before the form download.
func (h *Handler) Register(r gin.IRoutes, download ...gin.HandlerFunc) error {
	static, err := StaticFS()
	if err != nil {
		return err
	}
	r.StaticFS("/static", http.FS(static))
	r.GET("/", h.ShowForm)
	r.POST("/", h.Submit)
	r.POST("/certificate.pdf", append(download, h.Download)...)
	return nil
}

func (h *Handler) page(c *gin.Context, form ProfileForm) PageData {
	return PageData{
		Nonce:     h.nonce(c),
		Form:      form,
		Reference: h.svc.Reference(),
		Currency:  h.svc.Currency(),
	}
}

func (h *Handler) nonce(c *gin.Context) string {
	if nonce := security.GetNonce(c); nonce != "" {
		return nonce
	}
	nonce, err := security.GenerateNonce()
	if err != nil {
		slog.Error("Failed to generate nonce", "error", err)
		return ""
	}
	return nonce
}

func (h *Handler) render(c *gin.Context, name string, status int, data PageData) {
	if err := RenderPage(c, h.tmpl, name, status, data); err != nil {
		slog.Error("Failed to render page", "template", name, "error", err, "path", c.Request.URL.Path)
		renderError(c)
	}
}

// ShowForm renders the input collector with the default profile
func (h *Handler) ShowForm(c *gin.Context) {
	form := FormFromProfile(riskmodel.DefaultProfile(), h.svc.DefaultValidityDays())
	h.render(c, formTemplate, http.StatusOK, h.page(c, form))
}

// bind reads the form; on failure it renders the form with a 400 and
// reports false
func (h *Handler) bind(c *gin.Context) (ProfileForm, bool) {
	var form ProfileForm
	if err := c.ShouldBind(&form); err != nil {
		data := h.page(c, form)
		data.Message = "Numeric fields must be whole numbers."
		h.render(c, formTemplate, http.StatusBadRequest, data)
		return form, false
	}
	if form.ValidityDays == 0 {
		form.ValidityDays = h.svc.DefaultValidityDays()
	}
	return form, true
}

// invalid re-renders the form for input problems and reports whether err was one
func (h *Handler) invalid(c *gin.Context, form ProfileForm, err error) bool {
	data := h.page(c, form)

	var verr *riskmodel.ValidationError
	var kerr *riskmodel.InvalidKeyError
	switch {
	case errors.As(err, &verr):
		data.Errors = verr.Fields
		data.Message = "Please correct the highlighted fields."
	case errors.As(err, &kerr):
		data.Errors = map[string]string{kerr.Table: "unknown value " + kerr.Key}
		data.Message = kerr.Error()
	default:
		return false
	}

	h.render(c, formTemplate, http.StatusBadRequest, data)
	return true
}

// Submit evaluates the form and renders the dashboard
func (h *Handler) Submit(c *gin.Context) {
	form, ok := h.bind(c)
	if !ok {
		return
	}

	profile, output, err := h.svc.Evaluate(c.Request.Context(), form.Profile(), time.Time{})
	if err != nil {
		if !h.invalid(c, form, err) {
			_ = c.Error(err)
		}
		return
	}

	dashboard := report.NewDashboard(profile, output, h.svc.Currency())
	data := h.page(c, FormFromProfile(profile, form.ValidityDays))
	data.Dashboard = &dashboard
	h.render(c, dashboardTemplate, http.StatusOK, data)
}

// Download renders the certificate for the submitted form
func (h *Handler) Download(c *gin.Context) {
	form, ok := h.bind(c)
	if !ok {
		return
	}

	issued, err := h.svc.IssueCertificate(c.Request.Context(), assessment.CertificateRequest{
		Profile:      form.Profile(),
		ValidityDays: form.ValidityDays,
		IssuedTo:     session.UserFrom(c),
		ClientIP:     c.ClientIP(),
	})
	if err != nil {
		if !h.invalid(c, form, err) {
			_ = c.Error(err)
		}
		return
	}

	security.SetAttachment(c, certificate.FileName)
	c.Header("X-Certificate-ID", issued.Certificate.ID)
	c.Data(http.StatusOK, "application/pdf", issued.Document)
}

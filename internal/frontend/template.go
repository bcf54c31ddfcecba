package frontend

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sustaina/shipping-risk-brain/internal/report"
	"github.com/sustaina/shipping-risk-brain/internal/riskmodel"
)

const (
	formTemplate      = "form.html"
	dashboardTemplate = "dashboard.html"
)

// fieldProblem is the argument of the "error" template
type fieldProblem struct {
	Errors map[string]string
	Field  string
}

var templateFuncs = template.FuncMap{
	"fieldError": func(data PageData, field string) fieldProblem {
		return fieldProblem{Errors: data.Errors, Field: field}
	},
	"noLevers": func() string { return report.NoLeversText },
	"assumptions": func() []string {
		return report.Assumptions
	},
}

// LoadTemplates parses the embedded page templates
func LoadTemplates() (*template.Template, error) {
	tmpl, err := template.New("pages").Funcs(templateFuncs).ParseFS(assets, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

// PageData is shared by the form and dashboard pages
type PageData struct {
	Nonce     string
	Form      ProfileForm
	Errors    map[string]string
	Message   string
	Reference riskmodel.Reference
	Dashboard *report.Dashboard
	Currency  string
}

// RenderPage executes name into a buffer and writes it with no-cache headers
func RenderPage(c *gin.Context, tmpl *template.Template, name string, status int, data PageData) error {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")

	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
	return nil
}

// renderError is used when a page itself cannot be produced
func renderError(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to render page"})
}

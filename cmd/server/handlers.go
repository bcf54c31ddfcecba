package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sustaina/shipping-risk-brain/internal/assessment"
	"github.com/sustaina/shipping-risk-brain/internal/certificate"
	"github.com/sustaina/shipping-risk-brain/internal/errors"
	"github.com/sustaina/shipping-risk-brain/internal/report"
	"github.com/sustaina/shipping-risk-brain/internal/riskmodel"
	"github.com/sustaina/shipping-risk-brain/internal/security"
	"github.com/sustaina/shipping-risk-brain/internal/session"
)

// EvaluateRequest is the body of the evaluate endpoint
type EvaluateRequest struct {
	Profile riskmodel.VesselProfile `json:"profile"`
	AsOf    string                  `json:"as_of,omitempty" example:"2025-03-14"`
}

// EvaluateResponse pairs the sanitized profile with its output
type EvaluateResponse struct {
	Profile   riskmodel.VesselProfile `json:"profile"`
	Output    riskmodel.RiskOutput    `json:"output"`
	Dashboard report.Dashboard        `json:"dashboard"`
}

// CertificateRequest is the body of the certificate endpoints
type CertificateRequest struct {
	Profile      riskmodel.VesselProfile `json:"profile"`
	ValidityDays int                     `json:"validity_days,omitempty" example:"90"`
	AsOf         string                  `json:"as_of,omitempty" example:"2025-03-14"`
}

func invalidAsOf(err error) *errors.AppError {
	appErr := errors.NewValidationError("Invalid as_of date", err)
	appErr.Fields = map[string]string{"as_of": "must be YYYY-MM-DD or RFC 3339"}
	return appErr
}

// handleReference returns vocabularies and tables
//
//	@Summary		Model reference
//	@Description	Vocabularies with display labels and the reference tables used for scoring.
//	@Tags			model
//	@Produce		json
//	@Success		200	{object}	riskmodel.Reference
//	@Router			/api/v1/reference [get]
func (a *app) handleReference(c *gin.Context) {
	c.JSON(http.StatusOK, a.svc.Reference())
}

// handleEvaluate scores a profile
//
//	@Summary		Evaluate a vessel profile
//	@Description	Scores a declared vessel profile. as_of defaults to today.
//	@Tags			model
//	@Accept			json
//	@Produce		json
//	@Param			request	body		EvaluateRequest	true	"Profile and optional date"
//	@Success		200		{object}	EvaluateResponse
//	@Failure		400		{object}	errors.ErrorResponse
//	@Router			/api/v1/evaluate [post]
func (a *app) handleEvaluate(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.NewValidationError("Invalid request body", err))
		return
	}

	asOf, err := parseAsOf(req.AsOf)
	if err != nil {
		_ = c.Error(invalidAsOf(err))
		return
	}

	profile, output, err := a.svc.Evaluate(c.Request.Context(), req.Profile, asOf)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, EvaluateResponse{
		Profile:   profile,
		Output:    output,
		Dashboard: report.NewDashboard(profile, output, a.svc.Currency()),
	})
}

func (a *app) bindCertificateRequest(c *gin.Context) (assessment.CertificateRequest, bool) {
	var req CertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.NewValidationError("Invalid request body", err))
		return assessment.CertificateRequest{}, false
	}

	asOf, err := parseAsOf(req.AsOf)
	if err != nil {
		_ = c.Error(invalidAsOf(err))
		return assessment.CertificateRequest{}, false
	}

	return assessment.CertificateRequest{
		Profile:      req.Profile,
		ValidityDays: req.ValidityDays,
		AsOf:         asOf,
		IssuedTo:     session.UserFrom(c),
		ClientIP:     c.ClientIP(),
	}, true
}

// handleCertificate renders a certificate document
//
//	@Summary		Download a certificate
//	@Description	Evaluates the profile and returns a one-page PDF certificate.
//	@Tags			certificate
//	@Accept			json
//	@Produce		application/pdf
//	@Param			request	body		CertificateRequest	true	"Profile, validity and optional date"
//	@Success		200		{file}		binary
//	@Header			200		{string}	X-Certificate-ID	"Certificate identifier"
//	@Failure		400		{object}	errors.ErrorResponse
//	@Failure		429		{object}	errors.ErrorResponse
//	@Failure		500		{object}	errors.ErrorResponse
//	@Router			/api/v1/certificate [post]
func (a *app) handleCertificate(c *gin.Context) {
	req, ok := a.bindCertificateRequest(c)
	if !ok {
		return
	}

	issued, err := a.svc.IssueCertificate(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	security.SetAttachment(c, certificate.FileName)
	c.Header("X-Certificate-ID", issued.Certificate.ID)
	c.Data(http.StatusOK, "application/pdf", issued.Document)
}

// handlePreview returns certificate metadata without a document
//
//	@Summary		Preview a certificate
//	@Description	Builds the certificate metadata without rendering a document.
//	@Tags			certificate
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CertificateRequest	true	"Profile, validity and optional date"
//	@Success		200		{object}	certificate.Certificate
//	@Failure		400		{object}	errors.ErrorResponse
//	@Router			/api/v1/certificate/preview [post]
func (a *app) handlePreview(c *gin.Context) {
	req, ok := a.bindCertificateRequest(c)
	if !ok {
		return
	}

	cert, err := a.svc.Preview(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, cert)
}

// handleVerify looks up a certificate ID
//
//	@Summary		Verify a certificate
//	@Description	Looks up a certificate identifier in the issuance log.
//	@Tags			certificate
//	@Produce		json
//	@Param			id	path		string	true	"Certificate ID"
//	@Success		200	{object}	database.Verification
//	@Failure		404	{object}	errors.ErrorResponse
//	@Router			/verify/{id} [get]
func (a *app) handleVerify(c *gin.Context) {
	id := c.Param("id")

	v, err := a.svc.Verify(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !v.Found {
		_ = c.Error(errors.NewNotFoundError("certificate", id))
		return
	}

	c.JSON(http.StatusOK, v)
}

// handleIssuances lists recent issuances
//
//	@Summary		Recent issuances
//	@Description	Most recent issuance log entries. Requires a session.
//	@Tags			certificate
//	@Produce		json
//	@Param			limit	query		int	false	"Maximum entries (1-100)"
//	@Success		200		{array}		database.Issuance
//	@Failure		401		{object}	errors.ErrorResponse
//	@Router			/api/v1/issuances [get]
func (a *app) handleIssuances(c *gin.Context) {
	limit := 20
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	issuances, err := a.issuances.Recent(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(errors.NewInternalError("Failed to list issuances", err))
		return
	}

	c.JSON(http.StatusOK, issuances)
}

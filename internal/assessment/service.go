package assessment

import (
	"context"
	"errors"
	"time"

	"github.com/sustaina/shipping-risk-brain/internal/certificate"
	"github.com/sustaina/shipping-risk-brain/internal/database"
	"github.com/sustaina/shipping-risk-brain/internal/monitoring"
	"github.com/sustaina/shipping-risk-brain/internal/report"
	"github.com/sustaina/shipping-risk-brain/internal/riskmodel"
	"github.com/sustaina/shipping-risk-brain/internal/security"
)

// IssuanceLog records issued certificates and answers verification lookups
type IssuanceLog interface {
	RecordIssuance(ctx context.Context, cert certificate.Certificate, document []byte, ipAddress string) (*database.Issuance, error)
	Verify(ctx context.Context, certificateID string) (*database.Verification, error)
}

// Options configures a Service
type Options struct {
	Currency            string
	DefaultValidityDays int
	Certificate         certificate.Options
}

// CertificateRequest asks for one certificate
type CertificateRequest struct {
	Profile      riskmodel.VesselProfile
	ValidityDays int
	AsOf         time.Time
	IssuedTo     string
	ClientIP     string
}

// Issued is a certificate together with its rendered document
type Issued struct {
	Certificate certificate.Certificate
	Document    []byte
	Dashboard   report.Dashboard
}

// Service runs evaluations and issues certificates for the HTTP and HTML
// surfaces. A nil IssuanceLog disables verification.
type Service struct {
	model    *riskmodel.Model
	renderer *report.PDFRenderer
	guard    *security.SecurityMiddleware
	log      IssuanceLog
	metrics  *monitoring.Metrics
	logger   *monitoring.Logger
	opts     Options
	now      func() time.Time
}

// NewService wires the evaluation pipeline
func NewService(model *riskmodel.Model, guard *security.SecurityMiddleware, log IssuanceLog, metrics *monitoring.Metrics, logger *monitoring.Logger, opts Options) *Service {
	if opts.DefaultValidityDays == 0 {
		opts.DefaultValidityDays = certificate.DefaultValidityDays
	}
	if opts.Currency == "" {
		opts.Currency = report.DefaultCurrency
	}
	return &Service{
		model:    model,
		renderer: report.NewPDFRenderer(opts.Currency),
		guard:    guard,
		log:      log,
		metrics:  metrics,
		logger:   logger,
		opts:     opts,
		now:      time.Now,
	}
}

// Currency is the reporting currency
func (s *Service) Currency() string {
	return s.opts.Currency
}

// DefaultValidityDays is used when a request leaves validity unset
func (s *Service) DefaultValidityDays() int {
	return s.opts.DefaultValidityDays
}

// Reference describes vocabularies and tables
func (s *Service) Reference() riskmodel.Reference {
	return s.model.Reference()
}

// resolveAsOf defaults a zero date to now
func (s *Service) resolveAsOf(asOf time.Time) time.Time {
	if asOf.IsZero() {
		return s.now()
	}
	return asOf
}

// Prepare sanitizes free text and validates the profile for asOf
func (s *Service) Prepare(profile riskmodel.VesselProfile, asOf time.Time) (riskmodel.VesselProfile, error) {
	profile = s.guard.SanitizeProfile(profile)

	fields := s.guard.ValidateProfileText(profile)
	if err := profile.Validate(asOf); err != nil {
		var verr *riskmodel.ValidationError
		if errors.As(err, &verr) {
			for k, v := range verr.Fields {
				if _, exists := fields[k]; !exists {
					fields[k] = v
				}
			}
		} else {
			return profile, err
		}
	}

	if len(fields) > 0 {
		if s.metrics != nil {
			s.metrics.IncrementValidationFailure()
		}
		return profile, &riskmodel.ValidationError{Fields: fields}
	}
	return profile, nil
}

// Evaluate validates profile and scores it as of asOf (now when zero)
func (s *Service) Evaluate(ctx context.Context, profile riskmodel.VesselProfile, asOf time.Time) (riskmodel.VesselProfile, riskmodel.RiskOutput, error) {
	if err := ctx.Err(); err != nil {
		return profile, riskmodel.RiskOutput{}, err
	}

	start := time.Now()
	asOf = s.resolveAsOf(asOf)

	profile, err := s.Prepare(profile, asOf)
	if err != nil {
		return profile, riskmodel.RiskOutput{}, err
	}

	output, err := s.model.Evaluate(profile, asOf)
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncrementValidationFailure()
		}
		return profile, riskmodel.RiskOutput{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordEvaluation(string(output.Posture), output.RiskScore)
	}
	if s.logger != nil {
		s.logger.EvaluationLogger(string(profile.ShipType), string(profile.FuelType), output.RiskScore, string(output.Posture), len(output.Levers), time.Since(start))
	}

	return profile, output, nil
}

// Preview evaluates and builds the certificate without rendering it
func (s *Service) Preview(ctx context.Context, req CertificateRequest) (certificate.Certificate, error) {
	asOf := s.resolveAsOf(req.AsOf)
	days := req.ValidityDays
	if days == 0 {
		days = s.opts.DefaultValidityDays
	}
	if err := riskmodel.ValidateValidityDays(days); err != nil {
		if s.metrics != nil {
			s.metrics.IncrementValidationFailure()
		}
		return certificate.Certificate{}, err
	}

	profile, output, err := s.Evaluate(ctx, req.Profile, asOf)
	if err != nil {
		return certificate.Certificate{}, err
	}

	opts := s.opts.Certificate
	opts.IssuedTo = req.IssuedTo
	return certificate.Issue(profile, output, asOf, days, opts)
}

// IssueCertificate evaluates, renders and logs one certificate. A failed
// log write is reported in the logs but does not withhold the document.
func (s *Service) IssueCertificate(ctx context.Context, req CertificateRequest) (*Issued, error) {
	start := time.Now()

	cert, err := s.Preview(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	document, err := s.renderer.RenderBytes(cert)
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncrementRenderFailure()
		}
		return nil, err
	}

	if s.log != nil {
		if _, err := s.log.RecordIssuance(ctx, cert, document, req.ClientIP); err != nil && s.logger != nil {
			s.logger.Error("Failed to record certificate issuance", "certificate_id", cert.ID, "error", err)
		}
	}

	if s.metrics != nil {
		s.metrics.RecordCertificate(len(document))
	}
	if s.logger != nil {
		s.logger.CertificateLogger(cert.ID, cert.ValidityDays, len(document), cert.HasVerification(), false, time.Since(start))
	}

	return &Issued{
		Certificate: cert,
		Document:    document,
		Dashboard:   report.NewDashboard(cert.Profile, cert.Output, s.opts.Currency),
	}, nil
}

// Verify looks up a certificate in the issuance log
func (s *Service) Verify(ctx context.Context, certificateID string) (*database.Verification, error) {
	if s.metrics != nil {
		s.metrics.IncrementVerificationLookup()
	}
	if s.log == nil {
		return &database.Verification{CertificateID: certificateID, Status: database.StatusNotFound, CheckedAt: s.now()}, nil
	}
	return s.log.Verify(ctx, certificateID)
}

package report

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/sustaina/shipping-risk-brain/internal/certificate"
)

// RenderError is a document-generation failure. It is distinct from scoring
// errors and never carries a modified RiskOutput.
type RenderError struct {
	Op  string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("document generation failed (%s): %v", e.Op, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	marginLeft   = 15.0
	footerY      = 284.0
	bodyBottom   = footerY - 2
	contentWidth = pageWidth - 2*marginLeft
	qrImageName  = "verify-qr"
	qrEdge       = 32.0

	verificationHeading = 10.0

	title    = "Sustaina - Risk & Compliance Certificate (MVP)"
	subtitle = "Decision-support certificate for banks, insurers, ports, and counterparties."
	footer   = "Sustaina MVP - certificate generated from the live system state. For accredited verification, use an approved verifier."
)

// PDFRenderer lays out a certificate on A4 using the PDF core fonts, so all
// text goes through SanitizeText. Typical profiles fit one page; long declared
// text continues on a second page with the footer repeated.
type PDFRenderer struct {
	Currency string
	compress bool
}

// NewPDFRenderer creates a renderer that reports money in currency.
func NewPDFRenderer(currency string) *PDFRenderer {
	if currency == "" {
		currency = DefaultCurrency
	}
	return &PDFRenderer{Currency: currency, compress: true}
}

// Render writes the certificate document to w. Nothing is written when layout
// fails.
func (r *PDFRenderer) Render(cert certificate.Certificate, w io.Writer) error {
	doc, err := r.layout(cert)
	if err != nil {
		return err
	}
	if _, err := w.Write(doc); err != nil {
		return &RenderError{Op: "write", Err: err}
	}
	return nil
}

// RenderBytes renders the certificate into memory.
func (r *PDFRenderer) RenderBytes(cert certificate.Certificate) ([]byte, error) {
	return r.layout(cert)
}

func (r *PDFRenderer) layout(cert certificate.Certificate) ([]byte, error) {
	dash := NewDashboard(cert.Profile, cert.Output, r.Currency)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetCreationDate(cert.IssuedAt)
	pdf.SetModificationDate(cert.IssuedAt)
	pdf.SetTitle("Sustaina Certificate "+cert.ID, false)
	pdf.SetCreator("Sustaina", false)
	pdf.SetMargins(marginLeft, 15, marginLeft)
	pdf.SetAutoPageBreak(true, pageHeight-bodyBottom)

	tr := pdf.UnicodeTranslatorFromDescriptor("cp1252")
	text := func(s string) string { return tr(SanitizeText(s)) }

	pdf.SetFooterFunc(func() {
		pdf.SetXY(marginLeft, footerY)
		pdf.SetFont("Helvetica", "I", 7)
		pdf.SetTextColor(90, 90, 90)
		pdf.CellFormat(contentWidth, 4, text(footer), "", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})
	pdf.AddPage()

	// header band
	pdf.SetFillColor(14, 77, 84)
	pdf.Rect(0, 0, pageWidth, 30, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, 8)
	pdf.CellFormat(contentWidth, 8, text(title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetX(marginLeft)
	pdf.CellFormat(contentWidth, 5, text(subtitle), "", 1, "L", false, 0, "")
	if cert.Issuer != "" {
		pdf.SetX(marginLeft)
		pdf.CellFormat(contentWidth, 5, text("Issued by "+cert.Issuer), "", 1, "L", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)

	// identity
	pdf.SetY(36)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentWidth, 6, text("Certificate ID: "+cert.ID), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	issuedTo := fmt.Sprintf("Issued to: %s  |  Vessel: %s  |  IMO: %s",
		cert.Profile.Organization, cert.Profile.VesselName, cert.Profile.IMO)
	pdf.MultiCell(contentWidth, 5, text(issuedTo), "", "L", false)
	if cert.IssuedTo != "" {
		pdf.MultiCell(contentWidth, 5, text("Requested by: "+cert.IssuedTo), "", "L", false)
	}

	section := func(heading string) {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetDrawColor(14, 77, 84)
		pdf.CellFormat(contentWidth, 6, text(heading), "B", 1, "L", false, 0, "")
		pdf.Ln(1)
	}
	line := func(size, height float64, s string) {
		pdf.SetFont("Helvetica", "", size)
		pdf.SetX(marginLeft + 3)
		pdf.MultiCell(contentWidth-3, height, text(s), "", "L", false)
	}

	section("Key Outputs (Modeled)")
	line(10, 5, fmt.Sprintf("Risk score (0-100): %s  |  Posture: %s", dash.Score, dash.PostureLabel))
	for _, m := range dash.Metrics[1:] {
		line(10, 5, m.Label+": "+m.Value)
	}
	line(10, 5, "Validity: "+cert.ValidityText())

	section("Risk Signals (normalized 0-1)")
	for _, s := range dash.Signals {
		line(9, 4.5, s.Name+": "+s.Value)
	}

	section("Improvement Levers")
	for _, l := range dash.LeverLines() {
		line(9, 4.5, "- "+l)
	}

	section("Asset Profile (Declared)")
	for i := 0; i < len(dash.Profile); i += 2 {
		s := dash.Profile[i].Label + ": " + dash.Profile[i].Value
		if i+1 < len(dash.Profile) {
			s += "  |  " + dash.Profile[i+1].Label + ": " + dash.Profile[i+1].Value
		}
		line(9, 4.5, s)
	}

	if len(dash.Voyage) > 0 {
		section("Voyage Snapshot (Declared)")
		s := ""
		for i, v := range dash.Voyage {
			if i > 0 {
				s += "  |  "
			}
			s += v.Label + ": " + v.Value
		}
		line(9, 4.5, s)
	}

	section("Assumptions & Truth (MVP)")
	for _, a := range Assumptions {
		line(8, 4, "- "+a)
	}

	if cert.HasVerification() {
		png, err := QRCodePNG(cert.VerifyURL, DefaultQRSize)
		if err != nil {
			return nil, &RenderError{Op: "qr", Err: err}
		}
		pdf.RegisterImageOptionsReader(qrImageName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))

		// heading and QR stay together
		if pdf.GetY()+verificationHeading+qrEdge > bodyBottom {
			pdf.AddPage()
		}
		section("Verification")
		top := pdf.GetY()
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetX(marginLeft + 3)
		pdf.MultiCell(contentWidth-qrEdge-8, 4, text(cert.VerifyURL), "", "L", false)
		pdf.ImageOptions(qrImageName, pageWidth-marginLeft-qrEdge, top, qrEdge, qrEdge, false,
			fpdf.ImageOptions{ImageType: "PNG"}, 0, cert.VerifyURL)
		pdf.SetY(math.Max(pdf.GetY(), top+qrEdge))
	}

	if y := pdf.GetY(); y > bodyBottom {
		return nil, &RenderError{Op: "layout", Err: fmt.Errorf("content ends at %.1fmm, past the footer", y)}
	}
	if err := pdf.Error(); err != nil {
		return nil, &RenderError{Op: "layout", Err: err}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &RenderError{Op: "output", Err: err}
	}
	return buf.Bytes(), nil
}

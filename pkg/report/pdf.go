package report

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/nfnt/resize"

	"kaavalcircle/pkg/logger"
)

const (
	pageFormat   = "A4"
	imageWidthPt = 400.0
	lineHeight   = 18.0
)

var errSkipImage = errors.New("evidence is not an embeddable image")

// ImageSource loads stored evidence that is referenced by URL.
type ImageSource interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

type Config struct {
	Title         string
	MaxImageWidth uint
	Location      *time.Location
	// FetchTimeout bounds each ImageSource call. Zero means no limit.
	FetchTimeout time.Duration
}

// Complaint is the data printed on a report.
type Complaint struct {
	ID           string
	CreatedAt    time.Time
	Category     string
	Status       string
	Description  string
	Address      string
	Latitude     float64
	Longitude    float64
	CitizenName  string
	CitizenPhone string
	Evidence     []string
}

type Renderer struct {
	config Config
	images ImageSource
	logger *logger.Logger
}

func NewRenderer(config Config, images ImageSource, log *logger.Logger) *Renderer {
	if config.Title == "" {
		config.Title = "Crime Complaint Report"
	}
	if config.MaxImageWidth == 0 {
		config.MaxImageWidth = 1000
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	if log == nil {
		log = logger.NewDiscardLogger()
	}
	return &Renderer{config: config, images: images, logger: log.WithField("component", "report")}
}

// Render lays out the complaint and returns the PDF document bytes.
// Evidence that cannot be embedded is skipped.
func (r *Renderer) Render(ctx context.Context, c *Complaint) ([]byte, error) {
	pdf := fpdf.New("P", "pt", pageFormat, "")
	pdf.SetMargins(50, 50, 50)
	pdf.SetAutoPageBreak(true, 50)
	pdf.SetTitle(r.config.Title, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 30, tr(r.config.Title), "", 1, "C", false, 0, "")
	pdf.Ln(lineHeight)

	pdf.SetFont("Helvetica", "", 14)
	line := func(text string) {
		pdf.MultiCell(0, lineHeight, tr(text), "", "L", false)
	}

	line("Complaint ID: " + c.ID)
	line("Date: " + c.CreatedAt.In(r.config.Location).Format("02 Jan 2006"))
	line("Category: " + c.Category)
	line("Status: " + c.Status)
	if c.CitizenName != "" {
		line("Filed by: " + c.CitizenName)
	}
	if c.CitizenPhone != "" {
		line("Phone: " + c.CitizenPhone)
	}
	pdf.Ln(lineHeight)

	line("Description:")
	line(c.Description)
	pdf.Ln(lineHeight)

	line("Location:")
	line("Address: " + c.Address)
	line(fmt.Sprintf("Coordinates: %v, %v", c.Latitude, c.Longitude))
	pdf.Ln(lineHeight)

	if len(c.Evidence) > 0 {
		line("Evidence:")
		for i, ref := range c.Evidence {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := r.addImage(ctx, pdf, fmt.Sprintf("evidence-%d", i), ref); err != nil {
				r.logger.WithError(err).WithField("index", i).Debug("Skipping evidence in report")
			}
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) addImage(ctx context.Context, pdf *fpdf.Fpdf, name, ref string) error {
	raw, err := r.load(ctx, ref)
	if err != nil {
		return err
	}

	data, width, height, err := r.prepare(raw)
	if err != nil {
		return err
	}

	info := pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "JPG"}, bytes.NewReader(data))
	if pdf.Err() {
		// A broken image poisons the document, so reset before anything else is written.
		pdf.ClearError()
		return errSkipImage
	}
	if info == nil {
		return errSkipImage
	}

	h := imageWidthPt * float64(height) / float64(width)
	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	if pdf.GetY()+lineHeight+h > pageH-bottom {
		pdf.AddPage()
	} else {
		pdf.Ln(lineHeight)
	}

	pageW, _ := pdf.GetPageSize()
	pdf.ImageOptions(name, (pageW-imageWidthPt)/2, pdf.GetY(), imageWidthPt, h, true, fpdf.ImageOptions{ImageType: "JPG"}, 0, "")
	return nil
}

func (r *Renderer) load(ctx context.Context, ref string) ([]byte, error) {
	if strings.HasPrefix(ref, "data:") {
		return decodeImageDataURL(ref)
	}
	if r.images == nil {
		return nil, errSkipImage
	}
	if r.config.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.FetchTimeout)
		defer cancel()
	}
	return r.images.Fetch(ctx, ref)
}

// decodeImageDataURL returns the payload of a base64 image data URL.
func decodeImageDataURL(ref string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok || !strings.HasSuffix(meta, ";base64") || !strings.HasPrefix(meta, "image/") {
		return nil, errSkipImage
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errSkipImage, err)
	}
	return data, nil
}

// prepare decodes PNG, JPEG or GIF evidence, downsizes it to the
// configured width and re-encodes it as JPEG.
func (r *Renderer) prepare(raw []byte) ([]byte, int, int, error) {
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: %v", errSkipImage, err)
	}
	if format != "png" && format != "jpeg" && format != "gif" {
		return nil, 0, 0, errSkipImage
	}

	if uint(img.Bounds().Dx()) > r.config.MaxImageWidth {
		img = resize.Resize(r.config.MaxImageWidth, 0, img, resize.Lanczos3)
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, 0, 0, errSkipImage
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, 0, 0, err
	}
	return buf.Bytes(), b.Dx(), b.Dy(), nil
}

package utils

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSniffImageType(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want ImageFormat
	}{
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00}, ImageFormatPNG},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, ImageFormatJPEG},
		{"gif87", []byte("GIF87a...."), ImageFormatGIF},
		{"gif89", []byte("GIF89a...."), ImageFormatGIF},
		{"bmp", []byte("BM\x00\x00"), ImageFormatBMP},
		{"webp", []byte("RIFF\x10\x00\x00\x00WEBPVP8 "), ImageFormatWEBP},
		{"riff without webp", []byte("RIFF\x10\x00\x00\x00WAVE"), ImageFormatUnknown},
		{"truncated png", []byte{0x89, 0x50, 0x4E}, ImageFormatUnknown},
		{"empty", nil, ImageFormatUnknown},
		{"text", []byte("hello world"), ImageFormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SniffImageType(tt.in); got != tt.want {
				t.Errorf("SniffImageType() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToImageDataURL(t *testing.T) {
	pngB64 := base64.StdEncoding.EncodeToString(append(append([]byte{}, pngMagic...), 0, 0, 0, 13))
	bmpB64 := base64.StdEncoding.EncodeToString([]byte("BM\x36\x00\x00\x00\x00\x00\x00\x00\x36\x00"))

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"raw png", pngB64, "data:image/png;base64," + pngB64},
		{"raw bmp", bmpB64, "data:image/bmp;base64," + bmpB64},
		{"unknown defaults to jpeg", "aGVsbG8gd29ybGQ=", "data:image/jpeg;base64,aGVsbG8gd29ybGQ="},
		{"existing data url kept", "data:image/gif;base64,R0lGODlh", "data:image/gif;base64,R0lGODlh"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToImageDataURL(tt.in); got != tt.want {
				t.Errorf("ToImageDataURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShrinkImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		img.Set(x, 5, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}

	out := ShrinkImage(buf.Bytes(), 10)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("DecodeConfig() error = %v", err)
	}
	if cfg.Width != 10 || cfg.Height != 5 {
		t.Errorf("dimensions = %dx%d, want 10x5", cfg.Width, cfg.Height)
	}

	garbage := []byte("not an image")
	if got := ShrinkImage(garbage, 10); !bytes.Equal(got, garbage) {
		t.Error("undecodable input should be returned unchanged")
	}
}

func TestIsAllowedEvidence(t *testing.T) {
	tests := []struct {
		filename, contentType string
		want                  bool
	}{
		{"photo.JPG", "image/jpeg", true},
		{"scan.pdf", "application/pdf", true},
		{"clip.mov", "video/quicktime", true},
		{"clip.avi", "video/x-msvideo", true},
		{"photo.gif", "image/gif", false},
		{"evil.png", "text/html", false},
		{"notes.txt", "text/plain", false},
	}
	for _, tt := range tests {
		if got := IsAllowedEvidence(tt.filename, tt.contentType); got != tt.want {
			t.Errorf("IsAllowedEvidence(%q, %q) = %v, want %v", tt.filename, tt.contentType, got, tt.want)
		}
	}
}

func TestGenerateObjectKey(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	key := GenerateObjectKey("evidence", "IMG_001.PNG", now)
	pattern := regexp.MustCompile(`^evidence/1700000000123-[0-9a-f-]{36}\.png$`)
	if !pattern.MatchString(key) {
		t.Errorf("GenerateObjectKey() = %q", key)
	}
}

func TestCoordinateKey(t *testing.T) {
	if got := CoordinateKey(80.27, 13.05); got != "80.27,13.05" {
		t.Errorf("CoordinateKey() = %q", got)
	}
	if got := CoordinateKey(-0.5, 0); got != "-0.5,0" {
		t.Errorf("CoordinateKey() = %q", got)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	id := primitive.NewObjectID()
	token, err := GenerateToken(id, "police", "secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := ValidateToken(token, "secret")
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.UserID != id || claims.UserType != "police" {
		t.Errorf("claims = %+v", claims)
	}

	if _, err := ValidateToken(token, "other"); err == nil {
		t.Error("token accepted with wrong secret")
	}
}

func TestErrorResponseEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	NotFoundResponse(c, "Complaint")

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d", w.Code)
	}
	var body APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success || body.Error == nil || body.Error.Code != CodeNotFound || body.Message != "Complaint not found" {
		t.Errorf("body = %+v", body)
	}
	if !c.IsAborted() {
		t.Error("context should be aborted")
	}
}

func TestReportResponseKeepsNullPdf(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ReportResponse(c, http.StatusCreated, map[string]string{"id": "x"}, nil, ErrReportFailed)

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	pdf, present := body["pdf"]
	if !present || pdf != nil {
		t.Errorf("pdf = %v (present %v), want explicit null", pdf, present)
	}
	if body["warning"] != ErrReportFailed {
		t.Errorf("warning = %v", body["warning"])
	}
}

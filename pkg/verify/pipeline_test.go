package verify

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inboxinfotech/chatbot/pkg/config"
)

type stubFaces struct {
	count int
	calls int
}

func (s *stubFaces) Count(image.Image) (int, error) {
	s.calls++
	return s.count, nil
}

type stubOCR struct {
	text  string
	calls int
}

func (s *stubOCR) Extract(context.Context, []byte) (string, error) {
	s.calls++
	return s.text, nil
}

const passportText = `REPUBLIC OF INDIA
Passport
JOHN SMITH
DOB: 12/05/1990
`

func newTestPipeline(faces *stubFaces, ocr *stubOCR) *Pipeline {
	return NewPipeline(config.DefaultSettings().Verify, faces, ocr, zap.NewNop())
}

// uniformPNG is featureless, so its Laplacian variance is zero.
func uniformPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	return encodePNG(t, img)
}

// checkerPNG alternates black and white pixels, maximizing edge response.
func checkerPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if (x+y)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return encodePNG(t, img)
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPipelineRejectsOversizedUpload(t *testing.T) {
	p := newTestPipeline(&stubFaces{count: 1}, &stubOCR{text: passportText})
	big := make([]byte, 10<<20+1)

	v := p.Verify(context.Background(), "id.jpg", big, "John Smith")
	assert.False(t, v.Accepted)
	assert.Equal(t, ReasonTooLarge, v.Reason)
}

func TestPipelineRejectsUnsupportedFormat(t *testing.T) {
	p := newTestPipeline(&stubFaces{count: 1}, &stubOCR{text: passportText})

	v := p.Verify(context.Background(), "id.gif", []byte("gif"), "John Smith")
	assert.Equal(t, ReasonUnsupportedFormat, v.Reason)
}

func TestPipelineRejectsUndecodableImage(t *testing.T) {
	p := newTestPipeline(&stubFaces{count: 1}, &stubOCR{text: passportText})

	v := p.Verify(context.Background(), "id.png", []byte("not a png"), "John Smith")
	assert.Equal(t, ReasonUnreadableImage, v.Reason)
}

func TestPipelineRejectsBlurryImageBeforeOCR(t *testing.T) {
	faces := &stubFaces{count: 1}
	ocr := &stubOCR{text: passportText}
	p := newTestPipeline(faces, ocr)

	v := p.Verify(context.Background(), "id.png", uniformPNG(t), "John Smith")
	assert.Equal(t, ReasonBlurry, v.Reason)
	assert.Zero(t, faces.calls, "face gate must not run on a blurry image")
	assert.Zero(t, ocr.calls, "ocr must not run on a blurry image")
}

func TestPipelineRejectsWhenNoFace(t *testing.T) {
	ocr := &stubOCR{text: passportText}
	p := newTestPipeline(&stubFaces{count: 0}, ocr)

	v := p.Verify(context.Background(), "id.png", checkerPNG(t), "John Smith")
	assert.Equal(t, ReasonNoFace, v.Reason)
	assert.Zero(t, ocr.calls)
}

func TestPipelineRejectsNameMismatch(t *testing.T) {
	p := newTestPipeline(&stubFaces{count: 1}, &stubOCR{text: passportText})

	v := p.Verify(context.Background(), "id.png", checkerPNG(t), "Priya Sharma")
	assert.Equal(t, ReasonNameMismatch, v.Reason)
}

func TestPipelineAcceptsMatchingPassport(t *testing.T) {
	p := newTestPipeline(&stubFaces{count: 1}, &stubOCR{text: passportText})

	v := p.Verify(context.Background(), "id.png", checkerPNG(t), "John Smith")
	require.True(t, v.Accepted, "reason: %s", v.Reason)
	assert.Equal(t, "Passport", v.DocumentType)
	assert.Equal(t, "John Smith", v.Name)
	require.NotNil(t, v.BirthDate)
	assert.Equal(t, time.Date(1990, time.May, 12, 0, 0, 0, 0, time.UTC), *v.BirthDate)
}

func TestPipelineRejectsUnknownDocumentType(t *testing.T) {
	p := newTestPipeline(&stubFaces{count: 1}, &stubOCR{text: "JOHN SMITH\nsome club membership paper"})

	v := p.Verify(context.Background(), "id.png", checkerPNG(t), "John Smith")
	assert.Equal(t, ReasonUnknownType, v.Reason)
}

func TestLaplacianVarianceOrdering(t *testing.T) {
	flat := image.NewGray(image.Rect(0, 0, 32, 32))
	checker := image.NewGray(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			if (x+y)%2 == 0 {
				checker.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	assert.Zero(t, laplacianVariance(flat))
	assert.Greater(t, laplacianVariance(checker), 100.0)
}

func TestClassifyDocument(t *testing.T) {
	types := config.DefaultSettings().Verify.DocumentTypes
	order := []string{"Aadhaar Card", "Driving Licence", "National ID Card", "PAN Card", "Passport"}

	assert.Equal(t, "Passport", classifyDocument("REPUBLIC OF INDIA passport", types, order))
	assert.Equal(t, "Aadhaar Card", classifyDocument("unique identification authority", types, order))
	assert.Equal(t, "PAN Card", classifyDocument("permanent account number card", types, order))
	assert.Equal(t, "", classifyDocument("library card", types, order))
}

func TestExtractNameSkipsBoilerplate(t *testing.T) {
	assert.Equal(t, "John Smith", extractName(passportText))
	assert.Equal(t, "Priya Sharma", extractName("Driving Licence\nPriya Sharma\n12/01/2015"))
	assert.Equal(t, "", extractName("GOVERNMENT OF INDIA\n1234 5678"))
}

func TestNamesMatch(t *testing.T) {
	assert.True(t, namesMatch("John Smith", "john smith"))
	assert.True(t, namesMatch("John Smith", "John Robert Smith"))
	assert.False(t, namesMatch("John Smith", "Priya Sharma"))
	assert.False(t, namesMatch("", "John Smith"))
}

func TestExtractBirthDate(t *testing.T) {
	d := extractBirthDate("DOB: 12/05/1990")
	require.NotNil(t, d)
	assert.Equal(t, 1990, d.Year())

	assert.Nil(t, extractBirthDate("no date here"))
	assert.Nil(t, extractBirthDate("99/99/9999"))
}

package verify

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"sort"
	"strings"

	"code.sajari.com/docconv"
	"go.uber.org/zap"

	"github.com/inboxinfotech/chatbot/pkg/config"
)

// Pipeline runs the document gates in a fixed order, rejecting at the
// first failure. PDFs skip the image-quality gates and go straight to
// text extraction.
type Pipeline struct {
	settings  config.VerifySettings
	faces     FaceDetector
	ocr       TextExtractor
	typeOrder []string
	log       *zap.Logger
}

func NewPipeline(settings config.VerifySettings, faces FaceDetector, ocr TextExtractor, log *zap.Logger) *Pipeline {
	order := make([]string, 0, len(settings.DocumentTypes))
	for name := range settings.DocumentTypes {
		order = append(order, name)
	}
	sort.Strings(order)
	return &Pipeline{settings: settings, faces: faces, ocr: ocr, typeOrder: order, log: log}
}

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// Verify checks the uploaded document against the candidate's stated name.
// Gates run in order: size, format, (images: decode, blur, face), text,
// document type, name, identity match. Birth date extraction never rejects.
func (p *Pipeline) Verify(ctx context.Context, filename string, data []byte, expectedName string) Verdict {
	if int64(len(data)) > p.settings.MaxBytes {
		return rejected(ReasonTooLarge)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	isPDF := ext == ".pdf"
	if !isPDF && !imageExts[ext] {
		return rejected(ReasonUnsupportedFormat)
	}

	var text string
	if isPDF {
		res, err := docconv.Convert(bytes.NewReader(data), "application/pdf", true)
		if err != nil {
			p.log.Warn("pdf conversion failed", zap.Error(err))
			return rejected(ReasonUnreadableImage)
		}
		text = res.Body
	} else {
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return rejected(ReasonUnreadableImage)
		}

		if v := laplacianVariance(toGray(img)); v < p.settings.BlurThreshold {
			p.log.Debug("document rejected as blurry", zap.Float64("variance", v))
			return rejected(ReasonBlurry)
		}

		n, err := p.faces.Count(img)
		if err != nil {
			p.log.Warn("face detection failed", zap.Error(err))
			return rejected(ReasonUnreadableImage)
		}
		if n == 0 {
			return rejected(ReasonNoFace)
		}

		text, err = p.ocr.Extract(ctx, data)
		if err != nil {
			p.log.Warn("ocr failed", zap.Error(err))
			return rejected(ReasonNoText)
		}
	}

	if len(strings.TrimSpace(text)) < minOCRChars {
		return rejected(ReasonNoText)
	}

	docType := classifyDocument(text, p.settings.DocumentTypes, p.typeOrder)
	if docType == "" {
		return rejected(ReasonUnknownType)
	}

	name := extractName(text)
	if name == "" {
		return rejected(ReasonNoName)
	}
	if expectedName != "" && !namesMatch(name, expectedName) {
		p.log.Info("document name mismatch",
			zap.String("extracted", name))
		return rejected(ReasonNameMismatch)
	}

	return Verdict{
		Accepted:     true,
		DocumentType: docType,
		Name:         name,
		BirthDate:    extractBirthDate(text),
	}
}

// MaxRetries exposes the configured rejection allowance to the transport
// layer, which tracks the per-session count.
func (p *Pipeline) MaxRetries() int { return p.settings.MaxRetries }

// MaxBytes is the upload size limit the transport should read up to.
func (p *Pipeline) MaxBytes() int64 { return p.settings.MaxBytes }

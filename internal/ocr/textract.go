package ocr

import (
	"context"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/feichai0017/docintel/internal/errs"
	"github.com/feichai0017/docintel/internal/plugins"
	"github.com/feichai0017/docintel/pkg/logger"
)

// TextractConfig configures the AWS Textract backend.
type TextractConfig struct {
	Region    string
	AccessKey string
	SecretKey string
}

// TextractBackend runs OCR through AWS Textract. Textract only recognizes a
// fixed set of Latin-script languages, which is what the capability set
// declares.
type TextractBackend struct {
	plugins.Base
	client *textract.Client
	log    logger.Logger
}

var textractLanguages = []string{"eng", "spa", "ita", "por", "fra", "deu"}

// NewTextractBackend builds the backend from static credentials.
func NewTextractBackend(ctx context.Context, cfg *TextractConfig, log logger.Logger) (*TextractBackend, error) {
	if log == nil {
		log = logger.NewNop()
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, errs.NewInvalidConfig(err, "config error: cannot build aws config")
	}
	return &TextractBackend{
		client: textract.NewFromConfig(awsCfg),
		log:    log,
	}, nil
}

func (b *TextractBackend) Name() string { return "textract" }

func (b *TextractBackend) SupportedLanguages() []string {
	out := make([]string, len(textractLanguages))
	copy(out, textractLanguages)
	return out
}

func (b *TextractBackend) ProcessImage(ctx context.Context, image []byte, language string) (string, error) {
	if !supportsLanguage(b, language) {
		return "", errs.NewOCR(nil, "ocr: textract does not support language %q", language)
	}

	out, err := b.client.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
		Document: &types.Document{Bytes: image},
	})
	if err != nil {
		return "", errs.NewOCR(err, "ocr: textract request failed")
	}

	var lines []string
	for _, block := range out.Blocks {
		if block.BlockType == types.BlockTypeLine && block.Text != nil {
			lines = append(lines, aws.ToString(block.Text))
		}
	}
	return strings.Join(lines, "\n"), nil
}

func (b *TextractBackend) ProcessFile(ctx context.Context, path string, language string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errs.NewIO(err, "cannot read image file %s", path).WithContext("file", path)
	}
	return b.ProcessImage(ctx, data, language)
}

package ocr

import (
	"context"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
)

// TextractAPI is the slice of the Textract client the engine needs.
type TextractAPI interface {
	DetectDocumentText(ctx context.Context, params *textract.DetectDocumentTextInput, optFns ...func(*textract.Options)) (*textract.DetectDocumentTextOutput, error)
}

// Textract recognizes text with AWS Textract's synchronous
// DetectDocumentText operation.
type Textract struct {
	client TextractAPI
}

// TextractCredentials configures the AWS engine.
type TextractCredentials struct {
	Region    string
	AccessKey string
	SecretKey string
}

// NewTextract builds the AWS engine from static credentials. A missing
// region or key pair leaves the engine unavailable.
func NewTextract(creds TextractCredentials) *Textract {
	if creds.Region == "" || creds.AccessKey == "" || creds.SecretKey == "" {
		return &Textract{}
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(creds.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(creds.AccessKey, creds.SecretKey, ""),
		),
	)
	if err != nil {
		return &Textract{}
	}
	return &Textract{client: textract.NewFromConfig(awsCfg)}
}

// NewTextractWithClient wires an existing client (for testing).
func NewTextractWithClient(client TextractAPI) *Textract {
	return &Textract{client: client}
}

func (t *Textract) Name() string    { return "aws" }
func (t *Textract) Priority() int   { return PriorityAWS }
func (t *Textract) Available() bool { return t.client != nil }

// Recognize submits the image and assembles LINE blocks in order. The
// language hint is ignored; Textract detects language itself.
func (t *Textract) Recognize(ctx context.Context, image []byte, lang string) (*Result, error) {
	out, err := t.client.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
		Document: &types.Document{Bytes: image},
	})
	if err != nil {
		return nil, fmt.Errorf("aws: detecting document text: %w", err)
	}

	var lines []string
	var sum float64
	var count int
	for _, block := range out.Blocks {
		if block.BlockType != types.BlockTypeLine || block.Text == nil {
			continue
		}
		lines = append(lines, *block.Text)
		if block.Confidence != nil {
			sum += float64(*block.Confidence)
			count++
		}
	}

	res := &Result{
		Text:  strings.Join(lines, "\n"),
		Lines: lines,
	}
	if count > 0 {
		res.Confidence = sum / float64(count)
	}
	return res, nil
}

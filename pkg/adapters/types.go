package adapters

import "context"

// DefaultImageMIMEType is assumed when an attachment does not carry a type.
const DefaultImageMIMEType = "image/jpeg"

// Image is a base64 encoded attachment sent alongside a prompt.
type Image struct {
	MIMEType string
	Data     string
}

// MediaType returns the attachment MIME type, falling back to DefaultImageMIMEType.
func (i Image) MediaType() string {
	if i.MIMEType == "" {
		return DefaultImageMIMEType
	}
	return i.MIMEType
}

// DataURI renders the attachment as a data: URI.
func (i Image) DataURI() string {
	return "data:" + i.MediaType() + ";base64," + i.Data
}

// GenerateRequest is a provider-agnostic text generation request.
type GenerateRequest struct {
	Model       string
	Prompt      string
	Image       *Image
	MaxTokens   int
	Temperature float64
}

// GenerateResponse is a provider-agnostic generation response.
type GenerateResponse struct {
	Text         string
	InputTokens  int
	OutputTokens int
	Raw          []byte
}

// Provider is the common interface all LLM adapters must satisfy.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
}

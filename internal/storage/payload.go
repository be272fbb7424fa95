package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
)

// ImageSource resolves an image reference to its encoded bytes. The
// bytes feed both the pixel decoder and the OCR engine, so sources
// return the payload as-is rather than a decoded image.
type ImageSource interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// InlinePayloadSource handles payloads embedded in the request itself:
// data URIs ("data:image/png;base64,....") and bare base64 blobs.
type InlinePayloadSource struct{}

// NewInlinePayloadSource creates an inline payload source.
func NewInlinePayloadSource() ImageSource {
	return &InlinePayloadSource{}
}

// Fetch decodes the inline payload to raw encoded-image bytes.
func (s *InlinePayloadSource) Fetch(_ context.Context, ref string) ([]byte, error) {
	payload := ref
	if strings.HasPrefix(ref, "data:") {
		idx := strings.Index(ref, ",")
		if idx < 0 {
			return nil, fmt.Errorf("malformed data URI: missing payload separator")
		}
		payload = ref[idx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Data URIs may use the URL-safe alphabet
		data, err = base64.URLEncoding.DecodeString(payload)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid base64 payload: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image payload")
	}
	return data, nil
}

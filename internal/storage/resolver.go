package storage

import (
	"context"
	"fmt"
	"strings"
)

// SourceResolver routes an image reference to the source that can fetch
// it: http(s) URLs, azblob references, or inline payloads for
// everything else.
type SourceResolver struct {
	inline ImageSource
	http   ImageSource
	azure  ImageSource // nil when blob storage is not configured
}

// NewSourceResolver wires the sources together. azure may be nil.
func NewSourceResolver(inline, httpSource, azure ImageSource) *SourceResolver {
	return &SourceResolver{inline: inline, http: httpSource, azure: azure}
}

// Fetch resolves the reference to encoded image bytes.
func (r *SourceResolver) Fetch(ctx context.Context, ref string) ([]byte, error) {
	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return r.http.Fetch(ctx, ref)
	case strings.HasPrefix(ref, "azblob://"):
		if r.azure == nil {
			return nil, fmt.Errorf("blob storage is not configured")
		}
		return r.azure.Fetch(ctx, ref)
	default:
		return r.inline.Fetch(ctx, ref)
	}
}

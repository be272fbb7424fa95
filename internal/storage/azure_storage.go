package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// azureSource fetches encoded image bytes from Azure blob storage.
// References look like azblob://container/path/to/card.jpg.
type azureSource struct {
	client *azblob.Client
}

// NewAzureSource creates a blob-backed image source using shared key
// credentials.
func NewAzureSource(accountName, accountKey string) (ImageSource, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, err
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, err
	}

	return &azureSource{client: client}, nil
}

func (s *azureSource) Fetch(ctx context.Context, ref string) ([]byte, error) {
	parsed, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("invalid blob reference: %w", err)
	}
	containerName := parsed.Host
	blobName := parsed.Path
	if len(blobName) > 0 && blobName[0] == '/' {
		blobName = blobName[1:]
	}
	if containerName == "" || blobName == "" {
		return nil, fmt.Errorf("blob reference must name a container and blob: %q", ref)
	}

	resp, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}

	reader := resp.Body
	defer reader.Close()

	return io.ReadAll(reader)
}

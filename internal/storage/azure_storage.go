package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// azureSource implements ImageSource for captures uploaded to blob storage
type azureSource struct {
	client   *azblob.Client
	maxBytes int64
}

// NewAzureSource creates a blob storage image source for one account
func NewAzureSource(accountName, accountKey string, maxBytes int64) (ImageSource, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid azure credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure client: %w", err)
	}

	return &azureSource{client: client, maxBytes: maxBytes}, nil
}

func (s *azureSource) FetchImage(ctx context.Context, blobURL string) ([]byte, error) {
	containerName, blobName, err := ParseBlobURL(blobURL)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, fmt.Errorf("%w: %s/%s", ErrImageNotFound, containerName, blobName)
		}
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.ContentLength != nil && *resp.ContentLength > s.maxBytes {
		return nil, fmt.Errorf("%w: blob is %d bytes", ErrImageTooLarge, *resp.ContentLength)
	}
	return readLimited(resp.Body, s.maxBytes)
}

// ParseBlobURL extracts the container and blob name from a blob URL.
// Both https://acct.blob.core.windows.net/container/path/to/blob and the
// legacy /container?blob=name form are accepted.
func ParseBlobURL(blobURL string) (containerName, blobName string, err error) {
	parts, err := azblob.ParseURL(blobURL)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidSourceURL, err)
	}

	containerName = parts.ContainerName
	blobName = parts.BlobName
	if blobName == "" {
		if parsed, perr := url.Parse(blobURL); perr == nil {
			blobName = strings.TrimSpace(parsed.Query().Get("blob"))
		}
	}

	if containerName == "" || blobName == "" {
		return "", "", fmt.Errorf("%w: %q names no container and blob", ErrInvalidSourceURL, blobURL)
	}
	return containerName, blobName, nil
}

/*
Copyright © 2023 the ERA5 tool authors.
This file is part of the ERA5 tool.

The ERA5 tool is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

The ERA5 tool is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with the ERA5 tool.  If not, see <http://www.gnu.org/licenses/>.
*/

package era5util

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/google/go-cloud/blob"
	"github.com/google/go-cloud/blob/fileblob"
	"github.com/google/go-cloud/blob/gcsblob"
	"github.com/google/go-cloud/blob/s3blob"
	"github.com/google/go-cloud/gcp"

	"github.com/Amanpatni211/era5-tool/internal/zarr"
)

// IsBlob returns whether the given filename represents a blob.
// (i.e., if it starts with `gs://`, 's3://', or 'file://').
func IsBlob(path string) bool {
	return strings.HasPrefix(path, "gs://") || strings.HasPrefix(path, "s3://") || strings.HasPrefix(path, "file://")
}

// OpenStore opens a Zarr hierarchy at the given blob path, where the
// path must be in the format 'provider://bucket/prefix'. The currently
// accepted storage providers are "file" for the local filesystem
// (e.g., for testing), "gs" for Google Cloud Storage, and "s3" for
// AWS S3.
func OpenStore(ctx context.Context, path string) (zarr.Store, error) {
	if strings.HasPrefix(path, "file://") {
		b, err := fileblob.NewBucket(strings.TrimPrefix(path, "file://"))
		if err != nil {
			return nil, fmt.Errorf("era5util: opening store %s: %v", path, err)
		}
		return zarr.NewBucketStore(b, ""), nil
	}
	u, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("era5util: parsing store path %s: %v", path, err)
	}
	b, err := openBucket(ctx, u.Scheme, u.Host)
	if err != nil {
		return nil, err
	}
	return zarr.NewBucketStore(b, strings.TrimPrefix(u.Path, "/")), nil
}

// OpenBucket returns the blob storage bucket specified by bucketName,
// where bucketName must be in the format 'provider://name'.
func OpenBucket(ctx context.Context, bucketName string) (*blob.Bucket, error) {
	u, err := url.Parse(bucketName)
	if err != nil {
		return nil, fmt.Errorf("era5util: parsing bucket name %s: %v", bucketName, err)
	}
	return openBucket(ctx, u.Scheme, u.Hostname())
}

func openBucket(ctx context.Context, scheme, name string) (*blob.Bucket, error) {
	switch scheme {
	case "file":
		return fileblob.NewBucket(name)
	case "gs":
		return gsBucket(ctx, name)
	case "s3":
		return s3Bucket(ctx, name)
	default:
		return nil, fmt.Errorf("era5util: invalid storage provider %s", scheme)
	}
}

// gsBucket opens a Google Cloud Storage bucket. When no default
// credentials are available it falls back to anonymous access, which
// public buckets such as the ARCO ERA5 archive allow.
func gsBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	// See here for information on credentials:
	// https://cloud.google.com/docs/authentication/getting-started
	if creds, err := gcp.DefaultCredentials(ctx); err == nil {
		c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
		if err != nil {
			return nil, err
		}
		return gcsblob.OpenBucket(ctx, name, c)
	}
	c := &gcp.HTTPClient{Client: http.Client{Transport: gcp.DefaultTransport()}}
	return gcsblob.OpenBucket(ctx, name, c)
}

// s3Bucket opens an s3 storage bucket. It assumes the following
// environment variables are set: AWS_REGION, AWS_ACCESS_KEY_ID, and
// AWS_SECRET_ACCESS_KEY.
func s3Bucket(ctx context.Context, name string) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-2"
	}
	c := &aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	}
	s := session.Must(session.NewSession(c))
	return s3blob.OpenBucket(ctx, s, name)
}

// maybeDownload checks if the input is an existing local file. If not,
// and the path is a blob or HTTP URL, it downloads the file and
// returns the path to the downloaded copy. Failures are logged and the
// original path returned.
func maybeDownload(ctx context.Context, path string, log logHook) string {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return path
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return downloadHTTP(path, log)
	}
	if strings.HasPrefix(path, "file://") {
		return strings.TrimPrefix(path, "file://")
	}
	if IsBlob(path) {
		return downloadBlob(ctx, path, log)
	}
	return path
}

// logHook receives progress and error messages during downloads.
type logHook func(msg string)

func downloadHTTP(path string, log logHook) string {
	dir, err := os.MkdirTemp("", "era5")
	if err != nil {
		log(fmt.Sprintf("era5util: creating temporary download directory: %v", err))
		return path
	}
	local := filepath.Join(dir, filepath.Base(path))
	w, err := os.Create(local)
	if err != nil {
		log(fmt.Sprintf("era5util: creating file for download: %v", err))
		return path
	}
	defer w.Close()
	resp, err := http.Get(path)
	if err != nil {
		log(err.Error())
		return path
	}
	defer resp.Body.Close()
	if _, err := io.Copy(w, resp.Body); err != nil {
		log(err.Error())
		return path
	}
	return local
}

func downloadBlob(ctx context.Context, path string, log logHook) string {
	u, err := url.Parse(path)
	if err != nil {
		log(err.Error())
		return path
	}
	bucket, err := OpenBucket(ctx, u.Scheme+"://"+u.Host)
	if err != nil {
		log(err.Error())
		return path
	}
	dir, err := os.MkdirTemp("", "era5")
	if err != nil {
		log(fmt.Sprintf("era5util: creating temporary download directory: %v", err))
		return path
	}
	local := filepath.Join(dir, filepath.Base(u.Path))
	w, err := os.Create(local)
	if err != nil {
		log(fmt.Sprintf("era5util: creating file for download: %v", err))
		return path
	}
	defer w.Close()
	r, err := bucket.NewReader(ctx, strings.TrimPrefix(u.Path, "/"))
	if err != nil {
		log(err.Error())
		return path
	}
	defer r.Close()
	if _, err := io.Copy(w, r); err != nil {
		log(err.Error())
		return path
	}
	return local
}

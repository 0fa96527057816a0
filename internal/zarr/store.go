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

// Package zarr implements the read path for Zarr version 2 array
// hierarchies stored as key-value objects, which is the layout used by the
// ARCO ERA5 reanalysis archive. Only the functionality needed for slicing
// remote arrays is implemented: consolidated metadata, chunk-grid
// arithmetic, and hyperslab reads.
package zarr

import (
	"context"
	"fmt"
	"io/ioutil"
	"log"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/google/go-cloud/blob"
)

// ErrNotFound is returned by a Store when a key does not exist.
var ErrNotFound = fmt.Errorf("zarr: key not found")

// Store is a read-only key-value object store holding a Zarr hierarchy.
type Store interface {
	// Get returns the object stored under the given key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
}

// MemStore is an in-memory Store for testing.
type MemStore map[string][]byte

// Get implements Store.
func (m MemStore) Get(_ context.Context, key string) ([]byte, error) {
	b, ok := m[key]
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}

// BucketStore reads a Zarr hierarchy rooted at Prefix within a blob
// storage bucket. Reads are retried with exponential backoff because
// remote object stores routinely return transient errors.
type BucketStore struct {
	Bucket *blob.Bucket
	Prefix string

	// LogRetries, if true, causes retried reads to be logged.
	LogRetries bool
}

// NewBucketStore creates a BucketStore for the hierarchy rooted at prefix
// within bucket.
func NewBucketStore(bucket *blob.Bucket, prefix string) *BucketStore {
	return &BucketStore{Bucket: bucket, Prefix: strings.Trim(prefix, "/")}
}

// Get implements Store.
func (s *BucketStore) Get(ctx context.Context, key string) ([]byte, error) {
	path := key
	if s.Prefix != "" {
		path = s.Prefix + "/" + key
	}
	var data []byte
	err := backoff.RetryNotify(
		func() error {
			r, err := s.Bucket.NewReader(ctx, path)
			if err != nil {
				return err
			}
			defer r.Close()
			data, err = ioutil.ReadAll(r)
			return err
		},
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4),
		func(err error, d time.Duration) {
			if s.LogRetries {
				log.Printf("zarr: reading %s: %v: retrying in %v", path, err, d)
			}
		},
	)
	if err != nil {
		if isNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("zarr: reading %s: %v", path, err)
	}
	return data, nil
}

// isNotExist reports whether err looks like a missing-object error from
// a storage provider. The go-cloud blob drivers do not share a sentinel,
// so this falls back to string matching.
func isNotExist(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, s := range []string{"not exist", "NotFound", "not found", "404", "NoSuchKey"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

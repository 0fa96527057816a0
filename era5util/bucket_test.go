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
	"os"
	"path/filepath"
	"testing"
)

func TestIsBlob(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"gs://bucket/key", true},
		{"s3://bucket/key", true},
		{"file://dir/key", true},
		{"/local/path", false},
		{"http://example.com/x", false},
	}
	for _, test := range tests {
		if got := IsBlob(test.path); got != test.want {
			t.Errorf("IsBlob(%q) = %v, want %v", test.path, got, test.want)
		}
	}
}

func TestOpenStoreFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".zmetadata"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	store, err := OpenStore(context.Background(), "file://"+dir)
	if err != nil {
		t.Fatal(err)
	}
	b, err := store.Get(context.Background(), ".zmetadata")
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "{}" {
		t.Errorf("read %q", b)
	}
}

func TestOpenStoreBadScheme(t *testing.T) {
	if _, err := OpenStore(context.Background(), "ftp://host/path"); err == nil {
		t.Fatal("expected error for unsupported scheme")
	}
}

func TestMaybeDownloadLocal(t *testing.T) {
	noLog := func(string) {}
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "x.nc")
	if err := os.WriteFile(path, []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := maybeDownload(ctx, path, noLog); got != path {
		t.Errorf("existing local file: got %s", got)
	}
	if got := maybeDownload(ctx, "file://"+path, noLog); got != path {
		t.Errorf("file:// path: got %s, want %s", got, path)
	}
	if got := maybeDownload(ctx, "./does/not/exist.nc", noLog); got != "./does/not/exist.nc" {
		t.Errorf("missing local file: got %s", got)
	}
}

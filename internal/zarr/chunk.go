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

package zarr

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io/ioutil"
	"math"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// gridShape returns the number of chunks along each dimension:
// ceil(shape[i] / chunks[i]).
func gridShape(shape, chunks []int) []int {
	grid := make([]int, len(shape))
	for i := range shape {
		grid[i] = (shape[i] + chunks[i] - 1) / chunks[i]
	}
	return grid
}

// chunkKey returns the storage key for the chunk at the given grid
// coordinates. Scalar (0-dimensional) arrays use the key "0".
func chunkKey(coords []int, separator string) string {
	if len(coords) == 0 {
		return "0"
	}
	parts := make([]string, len(coords))
	for i, c := range coords {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, separator)
}

// decompress reverses the chunk compressor named in the array metadata.
// The numcodecs identifiers "zlib", "gzip" and "zstd" are supported, along
// with uncompressed chunks (a null compressor).
func decompress(m *CompressorMeta, b []byte) ([]byte, error) {
	if m == nil {
		return b, nil
	}
	switch m.ID {
	case "zlib":
		r, err := zlib.NewReader(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("zarr: zlib chunk: %v", err)
		}
		defer r.Close()
		return ioutil.ReadAll(r)
	case "gzip":
		r, err := gzip.NewReader(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("zarr: gzip chunk: %v", err)
		}
		defer r.Close()
		return ioutil.ReadAll(r)
	case "zstd":
		r, err := zstd.NewReader(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("zarr: zstd chunk: %v", err)
		}
		defer r.Close()
		return ioutil.ReadAll(r.IOReadCloser())
	default:
		return nil, fmt.Errorf("zarr: unsupported compressor %q", m.ID)
	}
}

// elemSize returns the storage size in bytes of a NumPy dtype string.
// Only little-endian numeric types appear in the datasets this package
// targets.
func elemSize(dtype string) (int, error) {
	switch dtype {
	case "<f4", "<i4", "<u4":
		return 4, nil
	case "<f8", "<i8", "<u8":
		return 8, nil
	case "<i2", "<u2":
		return 2, nil
	case "|i1", "|u1":
		return 1, nil
	}
	return 0, fmt.Errorf("zarr: unsupported dtype %q", dtype)
}

// decode converts a decompressed chunk into float64 values.
func decode(dtype string, raw []byte) ([]float64, error) {
	size, err := elemSize(dtype)
	if err != nil {
		return nil, err
	}
	if len(raw)%size != 0 {
		return nil, fmt.Errorf("zarr: chunk length %d is not a multiple of element size %d", len(raw), size)
	}
	n := len(raw) / size
	out := make([]float64, n)
	le := binary.LittleEndian
	switch dtype {
	case "<f4":
		for i := 0; i < n; i++ {
			out[i] = float64(math.Float32frombits(le.Uint32(raw[i*4:])))
		}
	case "<f8":
		for i := 0; i < n; i++ {
			out[i] = math.Float64frombits(le.Uint64(raw[i*8:]))
		}
	case "<i4":
		for i := 0; i < n; i++ {
			out[i] = float64(int32(le.Uint32(raw[i*4:])))
		}
	case "<u4":
		for i := 0; i < n; i++ {
			out[i] = float64(le.Uint32(raw[i*4:]))
		}
	case "<i8":
		for i := 0; i < n; i++ {
			out[i] = float64(int64(le.Uint64(raw[i*8:])))
		}
	case "<u8":
		for i := 0; i < n; i++ {
			out[i] = float64(le.Uint64(raw[i*8:]))
		}
	case "<i2":
		for i := 0; i < n; i++ {
			out[i] = float64(int16(le.Uint16(raw[i*2:])))
		}
	case "<u2":
		for i := 0; i < n; i++ {
			out[i] = float64(le.Uint16(raw[i*2:]))
		}
	case "|i1":
		for i := 0; i < n; i++ {
			out[i] = float64(int8(raw[i]))
		}
	case "|u1":
		for i := 0; i < n; i++ {
			out[i] = float64(raw[i])
		}
	}
	return out, nil
}

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
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/ctessum/requestcache"
	"github.com/ctessum/sparse"
)

// defaultCacheSize is the number of decoded chunks kept in memory per
// array when no CacheSize is set.
const defaultCacheSize = 512

// Array is a single Zarr array within a Store.
type Array struct {
	Store Store
	Path  string
	Meta  *ArrayMeta
	Attrs Attrs

	// CacheSize is the maximum number of decoded chunks held in the
	// in-memory chunk cache. Zero means defaultCacheSize.
	CacheSize int

	cacheOnce sync.Once
	cache     *requestcache.Cache
}

// OpenArray opens the array at path within store by reading its .zarray
// and (optionally) .zattrs documents.
func OpenArray(ctx context.Context, store Store, path string) (*Array, error) {
	mb, err := store.Get(ctx, path+"/.zarray")
	if err != nil {
		return nil, fmt.Errorf("zarr: opening array %s: %v", path, err)
	}
	meta, err := ParseArrayMeta(mb)
	if err != nil {
		return nil, err
	}
	a := &Array{Store: store, Path: path, Meta: meta, Attrs: make(Attrs)}
	if ab, err := store.Get(ctx, path+"/.zattrs"); err == nil {
		if a.Attrs, err = parseAttrs(ab); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Shape returns the array shape.
func (a *Array) Shape() []int { return a.Meta.Shape }

// Dimensions returns the dimension names recorded with the array, or nil
// if the store does not follow the xarray convention.
func (a *Array) Dimensions() []string { return a.Attrs.Dimensions() }

// Values reads the entire array. It is intended for coordinate arrays,
// which are small; use Slice for data variables.
func (a *Array) Values(ctx context.Context) ([]float64, error) {
	start := make([]int, len(a.Meta.Shape))
	d, err := a.Slice(ctx, start, a.Meta.Shape)
	if err != nil {
		return nil, err
	}
	return d.Elements, nil
}

// Slice reads the hyperslab [start, stop) and returns it as a dense
// array with shape stop−start. Chunks covering the slab are fetched
// through a deduplicating in-memory cache; chunks missing from the store
// are treated as filled with the array's fill value.
func (a *Array) Slice(ctx context.Context, start, stop []int) (*sparse.DenseArray, error) {
	ndim := len(a.Meta.Shape)
	if len(start) != ndim || len(stop) != ndim {
		return nil, fmt.Errorf("zarr: slice rank %d does not match array rank %d", len(start), ndim)
	}
	outShape := make([]int, ndim)
	for d := 0; d < ndim; d++ {
		if start[d] < 0 || stop[d] > a.Meta.Shape[d] || start[d] >= stop[d] {
			return nil, fmt.Errorf("zarr: slice [%d,%d) out of range for dimension %d of %s (length %d)",
				start[d], stop[d], d, a.Path, a.Meta.Shape[d])
		}
		outShape[d] = stop[d] - start[d]
	}
	out := sparse.ZerosDense(outShape...)

	// Chunk index range covering the slab in each dimension.
	cStart := make([]int, ndim)
	cEnd := make([]int, ndim) // inclusive
	for d := 0; d < ndim; d++ {
		cStart[d] = start[d] / a.Meta.Chunks[d]
		cEnd[d] = (stop[d] - 1) / a.Meta.Chunks[d]
	}

	coords := append([]int{}, cStart...)
	for {
		if err := a.copyChunk(ctx, coords, start, stop, out); err != nil {
			return nil, err
		}
		// Advance the chunk coordinate odometer.
		d := ndim - 1
		for ; d >= 0; d-- {
			coords[d]++
			if coords[d] <= cEnd[d] {
				break
			}
			coords[d] = cStart[d]
		}
		if d < 0 {
			break
		}
	}
	return out, nil
}

// copyChunk copies the part of the chunk at the given grid coordinates
// that overlaps the slab [start, stop) into out.
func (a *Array) copyChunk(ctx context.Context, coords, start, stop []int, out *sparse.DenseArray) error {
	chunk, err := a.chunk(ctx, coords)
	if err != nil {
		return err
	}
	ndim := len(coords)
	chunks := a.Meta.Chunks

	// Overlap of this chunk with the slab, in array coordinates.
	lo := make([]int, ndim)
	hi := make([]int, ndim)
	for d := 0; d < ndim; d++ {
		lo[d] = coords[d] * chunks[d]
		if start[d] > lo[d] {
			lo[d] = start[d]
		}
		hi[d] = (coords[d] + 1) * chunks[d]
		if stop[d] < hi[d] {
			hi[d] = stop[d]
		}
	}

	// Row-major strides within the chunk and within the output.
	chunkStride := strides(chunks)
	outStride := strides(out.Shape)

	// Walk every overlap position in the leading dimensions and copy
	// runs along the final dimension, which is contiguous on both sides.
	idx := append([]int{}, lo...)
	for {
		srcOff := 0
		dstOff := 0
		for d := 0; d < ndim; d++ {
			srcOff += (idx[d] - coords[d]*chunks[d]) * chunkStride[d]
			dstOff += (idx[d] - start[d]) * outStride[d]
		}
		n := hi[ndim-1] - lo[ndim-1]
		copy(out.Elements[dstOff:dstOff+n], chunk[srcOff:srcOff+n])

		d := ndim - 2
		for ; d >= 0; d-- {
			idx[d]++
			if idx[d] < hi[d] {
				break
			}
			idx[d] = lo[d]
		}
		if d < 0 {
			break
		}
	}
	return nil
}

// chunk returns the decoded values of one chunk, reading through the
// chunk cache. Coordinates outside the chunk grid are an error rather
// than a missing-chunk fill.
func (a *Array) chunk(ctx context.Context, coords []int) ([]float64, error) {
	grid := gridShape(a.Meta.Shape, a.Meta.Chunks)
	for d, c := range coords {
		if c < 0 || c >= grid[d] {
			return nil, fmt.Errorf("zarr: chunk %v out of range for grid %v of %s", coords, grid, a.Path)
		}
	}
	a.cacheOnce.Do(func() {
		size := a.CacheSize
		if size <= 0 {
			size = defaultCacheSize
		}
		a.cache = requestcache.NewCache(func(ctx context.Context, request interface{}) (interface{}, error) {
			return a.fetchChunk(ctx, request.([]int))
		}, runtime.GOMAXPROCS(-1),
			requestcache.Deduplicate(), requestcache.Memory(size))
	})
	req := a.cache.NewRequest(ctx, append([]int{}, coords...), a.Path+"/"+chunkKey(coords, a.Meta.DimensionSeparator))
	result, err := req.Result()
	if err != nil {
		return nil, err
	}
	return result.([]float64), nil
}

// fetchChunk retrieves, decompresses and decodes one chunk. Chunks in
// Zarr are stored at full chunk shape even at the array edge.
func (a *Array) fetchChunk(ctx context.Context, coords []int) ([]float64, error) {
	key := a.Path + "/" + chunkKey(coords, a.Meta.DimensionSeparator)
	b, err := a.Store.Get(ctx, key)
	if err == ErrNotFound {
		n := 1
		for _, c := range a.Meta.Chunks {
			n *= c
		}
		fill := a.Meta.Fill()
		vals := make([]float64, n)
		for i := range vals {
			vals[i] = fill
		}
		return vals, nil
	}
	if err != nil {
		return nil, err
	}
	raw, err := decompress(a.Meta.Compressor, b)
	if err != nil {
		return nil, fmt.Errorf("zarr: chunk %s: %v", key, err)
	}
	vals, err := decode(a.Meta.DType, raw)
	if err != nil {
		return nil, fmt.Errorf("zarr: chunk %s: %v", key, err)
	}
	want := 1
	for _, c := range a.Meta.Chunks {
		want *= c
	}
	if len(vals) != want {
		return nil, fmt.Errorf("zarr: chunk %s has %d elements, want %d", key, len(vals), want)
	}
	return vals, nil
}

// strides returns row-major element strides for the given shape.
func strides(shape []int) []int {
	s := make([]int, len(shape))
	stride := 1
	for d := len(shape) - 1; d >= 0; d-- {
		s[d] = stride
		stride *= shape[d]
	}
	return s
}

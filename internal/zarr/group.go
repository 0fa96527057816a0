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
	"sort"
	"strings"
)

// Group is the root of a Zarr hierarchy opened from consolidated
// metadata. Object stores cannot list keys cheaply, so this package
// requires the .zmetadata document that analysis-ready archives publish.
type Group struct {
	Attrs  Attrs
	arrays map[string]*Array
}

// OpenGroup opens the hierarchy rooted at store by reading its
// consolidated .zmetadata document.
func OpenGroup(ctx context.Context, store Store) (*Group, error) {
	b, err := store.Get(ctx, ".zmetadata")
	if err != nil {
		return nil, fmt.Errorf("zarr: no consolidated metadata: %v", err)
	}
	c, err := parseConsolidated(b)
	if err != nil {
		return nil, err
	}
	g := &Group{Attrs: make(Attrs), arrays: make(map[string]*Array)}
	for key, raw := range c.Metadata {
		switch {
		case key == ".zattrs":
			if g.Attrs, err = parseAttrs(raw); err != nil {
				return nil, err
			}
		case strings.HasSuffix(key, "/.zarray"):
			path := strings.TrimSuffix(key, "/.zarray")
			meta, err := ParseArrayMeta(raw)
			if err != nil {
				return nil, fmt.Errorf("zarr: array %s: %v", path, err)
			}
			a := g.arrays[path]
			if a == nil {
				a = &Array{Store: store, Path: path, Attrs: make(Attrs)}
				g.arrays[path] = a
			}
			a.Meta = meta
		case strings.HasSuffix(key, "/.zattrs"):
			path := strings.TrimSuffix(key, "/.zattrs")
			attrs, err := parseAttrs(raw)
			if err != nil {
				return nil, fmt.Errorf("zarr: array %s: %v", path, err)
			}
			a := g.arrays[path]
			if a == nil {
				a = &Array{Store: store, Path: path}
				g.arrays[path] = a
			}
			a.Attrs = attrs
		}
	}
	// Entries with attributes but no .zarray are subgroups; drop them.
	for path, a := range g.arrays {
		if a.Meta == nil {
			delete(g.arrays, path)
		}
	}
	return g, nil
}

// Array returns the named array.
func (g *Group) Array(name string) (*Array, error) {
	a, ok := g.arrays[name]
	if !ok {
		return nil, fmt.Errorf("zarr: no array named %s", name)
	}
	return a, nil
}

// Has reports whether the group contains an array with the given name.
func (g *Group) Has(name string) bool {
	_, ok := g.arrays[name]
	return ok
}

// ArrayNames returns the sorted names of all arrays in the group.
func (g *Group) ArrayNames() []string {
	names := make([]string, 0, len(g.arrays))
	for name := range g.arrays {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

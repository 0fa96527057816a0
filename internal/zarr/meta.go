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
	"encoding/json"
	"fmt"
	"math"
)

// Format is the Zarr storage specification version this package reads.
const Format = 2

// arrayDimsAttr is the xarray convention attribute naming array dimensions.
const arrayDimsAttr = "_ARRAY_DIMENSIONS"

// CompressorMeta describes the numcodecs compressor applied to each chunk.
type CompressorMeta struct {
	ID    string `json:"id"`
	Level int    `json:"level"`
}

// ArrayMeta is the parsed content of a .zarray document.
type ArrayMeta struct {
	ZarrFormat         int             `json:"zarr_format"`
	Shape              []int           `json:"shape"`
	Chunks             []int           `json:"chunks"`
	DType              string          `json:"dtype"`
	Compressor         *CompressorMeta `json:"compressor"`
	FillValue          interface{}     `json:"fill_value"`
	Order              string          `json:"order"`
	DimensionSeparator string          `json:"dimension_separator"`
}

// Attrs is the parsed content of a .zattrs document.
type Attrs map[string]interface{}

// GetString returns the named attribute as a string, or "" if absent.
func (a Attrs) GetString(key string) string {
	if v, ok := a[key].(string); ok {
		return v
	}
	return ""
}

// Dimensions returns the array dimension names from the xarray
// _ARRAY_DIMENSIONS attribute, or nil if the attribute is absent.
func (a Attrs) Dimensions() []string {
	raw, ok := a[arrayDimsAttr].([]interface{})
	if !ok {
		return nil
	}
	dims := make([]string, len(raw))
	for i, d := range raw {
		s, ok := d.(string)
		if !ok {
			return nil
		}
		dims[i] = s
	}
	return dims
}

// ParseArrayMeta parses a .zarray document and validates the fields this
// package relies on.
func ParseArrayMeta(b []byte) (*ArrayMeta, error) {
	m := new(ArrayMeta)
	if err := json.Unmarshal(b, m); err != nil {
		return nil, fmt.Errorf("zarr: parsing .zarray: %v", err)
	}
	if m.ZarrFormat != Format {
		return nil, fmt.Errorf("zarr: unsupported format version %d", m.ZarrFormat)
	}
	if len(m.Shape) != len(m.Chunks) {
		return nil, fmt.Errorf("zarr: shape rank %d != chunk rank %d", len(m.Shape), len(m.Chunks))
	}
	if m.Order != "" && m.Order != "C" {
		return nil, fmt.Errorf("zarr: unsupported element order %q", m.Order)
	}
	if m.DimensionSeparator == "" {
		m.DimensionSeparator = "."
	}
	if _, err := elemSize(m.DType); err != nil {
		return nil, err
	}
	return m, nil
}

// Fill returns the fill value as a float64. Missing chunks are populated
// with this value. JSON represents NaN fills as the string "NaN".
func (m *ArrayMeta) Fill() float64 {
	switch v := m.FillValue.(type) {
	case float64:
		return v
	case string:
		switch v {
		case "NaN":
			return math.NaN()
		case "Infinity":
			return math.Inf(1)
		case "-Infinity":
			return math.Inf(-1)
		}
	}
	return 0
}

// consolidated is the layout of a .zmetadata document
// (zarr_consolidated_format version 1).
type consolidated struct {
	Metadata map[string]json.RawMessage `json:"metadata"`
	Format   int                        `json:"zarr_consolidated_format"`
}

func parseConsolidated(b []byte) (*consolidated, error) {
	c := new(consolidated)
	if err := json.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("zarr: parsing .zmetadata: %v", err)
	}
	if c.Format != 1 {
		return nil, fmt.Errorf("zarr: unsupported consolidated metadata version %d", c.Format)
	}
	return c, nil
}

func parseAttrs(b []byte) (Attrs, error) {
	a := make(Attrs)
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("zarr: parsing .zattrs: %v", err)
	}
	return a, nil
}

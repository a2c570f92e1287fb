/*
Copyright © 2026 the ETStack authors.
This file is part of ETStack.

ETStack is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ETStack is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ETStack.  If not, see <http://www.gnu.org/licenses/>.
*/

package etstack

import (
	"fmt"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
	"github.com/ctessum/sparse"
)

// A Raster provides read access to one single-band georeferenced raster
// file.
type Raster interface {
	// Geometry returns the grid geometry of the raster.
	Geometry() GridGeometry

	// Read reads the raster band into a 2-D array with dimensions
	// [rows, columns]. No-data pixels are passed through unchanged.
	Read() (*sparse.DenseArray, error)

	// Close releases the resources associated with the raster.
	Close() error
}

// A RasterOpener opens raster files by path.
type RasterOpener interface {
	Open(path string) (Raster, error)
}

// GridGeometry describes the georeferencing of a regular raster grid:
// its coordinate reference system, affine transform, and dimensions.
// The affine transform maps the cell index (i, j) (row, column) to the
// coordinates of the cell's upper-left corner:
//
//	x = X0 + j*Dx + i*Rx
//	y = Y0 + j*Ry + i*Dy
//
// For north-up grids Rx and Ry are zero and Dy is negative.
type GridGeometry struct {
	Proj   string  // coordinate reference system definition (e.g. WKT)
	X0, Y0 float64 // coordinates of the grid's upper-left corner
	Dx, Dy float64 // cell size in the x and y directions
	Rx, Ry float64 // row and column rotation terms
	Ny, Nx int     // number of rows and columns
}

// Equal reports whether g and o describe exactly the same grid. All
// fields are compared for exact equality, including the raw coordinate
// reference system strings.
func (g GridGeometry) Equal(o GridGeometry) bool {
	return g.diff(o) == ""
}

// diff returns the name of the first field in which g and o differ, or
// "" if they are equal.
func (g GridGeometry) diff(o GridGeometry) string {
	switch {
	case g.Proj != o.Proj:
		return "CRS"
	case g.X0 != o.X0:
		return "X0"
	case g.Y0 != o.Y0:
		return "Y0"
	case g.Dx != o.Dx:
		return "Dx"
	case g.Dy != o.Dy:
		return "Dy"
	case g.Rx != o.Rx:
		return "Rx"
	case g.Ry != o.Ry:
		return "Ry"
	case g.Ny != o.Ny:
		return "rows"
	case g.Nx != o.Nx:
		return "columns"
	}
	return ""
}

// SpatialReference parses the grid's coordinate reference system
// definition, which may be in WKT or PROJ.4 format.
func (g GridGeometry) SpatialReference() (*proj.SR, error) {
	sr, err := proj.Parse(g.Proj)
	if err != nil {
		return nil, fmt.Errorf("etstack: parsing spatial reference: %v", err)
	}
	return sr, nil
}

// Extent returns the polygon covered by the grid, in the grid's native
// coordinates.
func (g GridGeometry) Extent() geom.Polygon {
	p := func(i, j int) geom.Point {
		return geom.Point{
			X: g.X0 + float64(j)*g.Dx + float64(i)*g.Rx,
			Y: g.Y0 + float64(j)*g.Ry + float64(i)*g.Dy,
		}
	}
	return geom.Polygon{{p(0, 0), p(0, g.Nx), p(g.Ny, g.Nx), p(g.Ny, 0), p(0, 0)}}
}

// An InconsistentGridError reports a file whose grid geometry differs
// from the year's reference geometry.
type InconsistentGridError struct {
	Year      int
	Reference string // path of the file that established the reference geometry
	File      string // path of the offending file
	Field     string // name of the first differing geometry field
}

func (e *InconsistentGridError) Error() string {
	return fmt.Sprintf("etstack: inconsistent grid in year %04d: %s differs from %s in %s",
		e.Year, e.File, e.Reference, e.Field)
}

// validateGrid checks that every file in group shares exactly the same
// grid geometry and returns that geometry. The first file in the group
// establishes the reference.
func (c *Config) validateGrid(group *YearGroup) (GridGeometry, error) {
	var ref GridGeometry
	for k, f := range group.Files {
		r, err := c.Opener.Open(f.Path)
		if err != nil {
			return GridGeometry{}, &PixelReadError{Path: f.Path, Err: err}
		}
		gg := r.Geometry()
		if err := r.Close(); err != nil {
			return GridGeometry{}, &PixelReadError{Path: f.Path, Err: err}
		}
		if k == 0 {
			ref = gg
			continue
		}
		if field := ref.diff(gg); field != "" {
			return GridGeometry{}, &InconsistentGridError{
				Year:      group.Year,
				Reference: group.Files[0].Path,
				File:      f.Path,
				Field:     field,
			}
		}
	}
	return ref, nil
}

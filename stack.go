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

	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
)

// A PixelReadError reports a failure to read pixel data from a raster
// file.
type PixelReadError struct {
	Path string // path of the offending file
	Err  error  // the underlying cause
}

func (e *PixelReadError) Error() string {
	return fmt.Sprintf("etstack: reading pixels from %s: %v", e.Path, e.Err)
}

// A YearStack holds one year of daily rasters stacked into a 3-D array
// with dimensions [time, lat, lon], together with the coordinate
// variables that describe each axis.
type YearStack struct {
	Year int

	// Data holds the stacked pixel values with dimensions
	// [time, lat, lon].
	Data *sparse.DenseArray

	// Days holds the day of year of each time step, in ascending order.
	Days []int

	// Lat and Lon hold the cell-center coordinates of each row and
	// column.
	Lat, Lon []float64

	// Geometry is the shared grid geometry of the source rasters.
	Geometry GridGeometry
}

// readGrid reads the pixel array of one raster file and checks its shape
// against the expected grid dimensions.
func (c *Config) readGrid(f RasterRef, ny, nx int) (*sparse.DenseArray, error) {
	r, err := c.Opener.Open(f.Path)
	if err != nil {
		return nil, &PixelReadError{Path: f.Path, Err: err}
	}
	defer r.Close()
	grid, err := r.Read()
	if err != nil {
		return nil, &PixelReadError{Path: f.Path, Err: err}
	}
	if len(grid.Shape) != 2 || grid.Shape[0] != ny || grid.Shape[1] != nx {
		return nil, &PixelReadError{
			Path: f.Path,
			Err:  fmt.Errorf("pixel array shape %v does not match grid geometry %dx%d", grid.Shape, ny, nx),
		}
	}
	return grid, nil
}

// assemble stacks the files of one year into a 3-D array with dimensions
// [time, lat, lon], where the time steps follow the group's ascending
// day-of-year order. The coordinate vectors hold cell-center
// coordinates derived from the grid geometry gg. No-data pixels are
// passed through unchanged.
func (c *Config) assemble(group *YearGroup, gg GridGeometry) (*YearStack, error) {
	nt, ny, nx := len(group.Files), gg.Ny, gg.Nx
	s := &YearStack{
		Year:     group.Year,
		Data:     sparse.ZerosDense(nt, ny, nx),
		Days:     make([]int, nt),
		Lat:      make([]float64, ny),
		Lon:      make([]float64, nx),
		Geometry: gg,
	}
	for i := range s.Lat {
		s.Lat[i] = gg.Y0 + (float64(i)+0.5)*gg.Dy
	}
	for j := range s.Lon {
		s.Lon[j] = gg.X0 + (float64(j)+0.5)*gg.Dx
	}
	for k, f := range group.Files {
		c.Log.WithFields(logrus.Fields{
			"file": f.Path,
			"day":  f.Day,
		}).Debug("etstack: stacking day")
		grid, err := c.readGrid(f, ny, nx)
		if err != nil {
			return nil, err
		}
		copy(s.Data.Elements[k*ny*nx:(k+1)*ny*nx], grid.Elements)
		s.Days[k] = f.Day
	}
	return s, nil
}

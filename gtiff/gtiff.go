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

// Package gtiff reads single-band GeoTIFF rasters through the GDAL
// library. It requires the GDAL C library to be installed.
package gtiff

import (
	"fmt"
	"sync"

	"github.com/ctessum/sparse"
	"github.com/lukeroth/gdal"
	"github.com/spatialmet/etstack"
)

// registerOnce ensures the GDAL drivers are registered exactly once.
var registerOnce sync.Once

// An Opener opens GeoTIFF rasters using the GDAL library. The zero
// value is ready to use.
type Opener struct{}

// Open opens the single-band GeoTIFF raster at path.
func (o Opener) Open(path string) (etstack.Raster, error) {
	registerOnce.Do(gdal.AllRegister)
	ds, err := gdal.Open(path, gdal.ReadOnly)
	if err != nil {
		return nil, fmt.Errorf("gtiff: %v", err)
	}
	if n := ds.RasterCount(); n != 1 {
		ds.Close()
		return nil, fmt.Errorf("gtiff: raster has %d bands; expected 1", n)
	}
	gt := ds.GeoTransform()
	return &raster{
		ds: ds,
		geometry: etstack.GridGeometry{
			Proj: ds.Projection(),
			X0:   gt[0],
			Dx:   gt[1],
			Rx:   gt[2],
			Y0:   gt[3],
			Ry:   gt[4],
			Dy:   gt[5],
			Ny:   ds.RasterYSize(),
			Nx:   ds.RasterXSize(),
		},
	}, nil
}

// raster wraps an open GDAL dataset.
type raster struct {
	ds       gdal.Dataset
	geometry etstack.GridGeometry
}

// Geometry returns the grid geometry of the raster.
func (r *raster) Geometry() etstack.GridGeometry { return r.geometry }

// Read reads the raster band into a [rows, columns] array. Pixel
// values are converted to float64; no-data values are passed through
// unchanged.
func (r *raster) Read() (*sparse.DenseArray, error) {
	ny, nx := r.geometry.Ny, r.geometry.Nx
	buf := make([]float32, ny*nx)
	band := r.ds.RasterBand(1)
	if err := band.IO(gdal.Read, 0, 0, nx, ny, buf, nx, ny, 0, 0); err != nil {
		return nil, fmt.Errorf("gtiff: %v", err)
	}
	out := sparse.ZerosDense(ny, nx)
	for i, v := range buf {
		out.Elements[i] = float64(v)
	}
	return out, nil
}

// Close closes the underlying GDAL dataset.
func (r *raster) Close() error {
	r.ds.Close()
	return nil
}

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
	"os"
	"path/filepath"
	"sort"

	"github.com/ctessum/cdf"
)

// An OutputWriteError reports a failure to create or write a yearly
// output file.
type OutputWriteError struct {
	Path string // intended path of the output file
	Err  error  // the underlying cause
}

func (e *OutputWriteError) Error() string {
	return fmt.Sprintf("etstack: writing output file %s: %v", e.Path, e.Err)
}

// OutputFilename returns the name of the yearly output file for year.
func OutputFilename(year int) string {
	return fmt.Sprintf("ET_%04d.nc", year)
}

// header creates the NetCDF header for s.
func (c *Config) header(s *YearStack) (*cdf.Header, error) {
	h := cdf.NewHeader(
		[]string{"time", "lat", "lon"},
		[]int{len(s.Days), len(s.Lat), len(s.Lon)},
	)
	h.AddVariable("ET", []string{"time", "lat", "lon"}, []float32{0})
	h.AddVariable("lat", []string{"lat"}, []float64{0.})
	h.AddVariable("lon", []string{"lon"}, []float64{0.})
	h.AddVariable("time", []string{"time"}, []int32{0})
	h.AddVariable("crs", nil, []uint8{0})

	addAttributes(h, "ET", map[string]string{
		"units":        "mm/day",
		"long_name":    "Daily Evapotranspiration",
		"grid_mapping": "crs",
	})
	addAttributes(h, "lat", map[string]string{
		"units":         "degrees_north",
		"standard_name": "latitude",
	})
	addAttributes(h, "lon", map[string]string{
		"units":         "degrees_east",
		"standard_name": "longitude",
	})
	addAttributes(h, "time", map[string]string{
		"long_name": "day of year",
		"calendar":  "standard",
	})
	addAttributes(h, "crs", map[string]string{
		"spatial_ref":  s.Geometry.Proj,
		"GeoTransform": geoTransformAttr(s.Geometry),
	})
	h.AddAttribute("", "title", "Daily evapotranspiration stack")
	h.AddAttribute("", "year", fmt.Sprintf("%04d", s.Year))
	for _, a := range sortKeys(c.OutputAttrs) {
		if a == "title" || a == "year" {
			continue
		}
		h.AddAttribute("", a, c.OutputAttrs[a])
	}
	h.Define()
	for _, err := range h.Check() {
		if err != nil {
			return nil, fmt.Errorf("checking header: %v", err)
		}
	}
	return h, nil
}

// geoTransformAttr formats the grid's affine transform in the
// coefficient order used by the GeoTransform attribute:
// X0 Dx Rx Y0 Ry Dy.
func geoTransformAttr(g GridGeometry) string {
	return fmt.Sprintf("%g %g %g %g %g %g", g.X0, g.Dx, g.Rx, g.Y0, g.Ry, g.Dy)
}

// addAttributes adds attrs to variable v in deterministic order.
func addAttributes(h *cdf.Header, v string, attrs map[string]string) {
	for _, a := range sortKeys(attrs) {
		h.AddAttribute(v, a, attrs[a])
	}
}

func sortKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// writeYear writes s to a NetCDF file named OutputFilename(s.Year) in
// c.OutputDir and returns the path of the written file. The data is
// first written to a temporary file which is renamed into place only
// after a fully successful write, so a failure leaves no partial
// output file behind.
func (c *Config) writeYear(s *YearStack) (string, error) {
	path := filepath.Join(c.OutputDir, OutputFilename(s.Year))
	h, err := c.header(s)
	if err != nil {
		return "", &OutputWriteError{Path: path, Err: err}
	}
	ff, err := os.CreateTemp(c.OutputDir, OutputFilename(s.Year)+".tmp")
	if err != nil {
		return "", &OutputWriteError{Path: path, Err: err}
	}
	tmp := ff.Name()
	if err := writeStack(ff, h, s); err != nil {
		ff.Close()
		os.Remove(tmp)
		return "", &OutputWriteError{Path: path, Err: err}
	}
	if err := ff.Close(); err != nil {
		os.Remove(tmp)
		return "", &OutputWriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", &OutputWriteError{Path: path, Err: err}
	}
	return path, nil
}

// writeStack writes the header and all variables of s to ff.
func writeStack(ff *os.File, h *cdf.Header, s *YearStack) error {
	nt, ny, nx := len(s.Days), len(s.Lat), len(s.Lon)
	if len(s.Data.Elements) != nt*ny*nx {
		return fmt.Errorf("stack has %d elements; expected %d", len(s.Data.Elements), nt*ny*nx)
	}
	f, err := cdf.Create(ff, h)
	if err != nil {
		return fmt.Errorf("creating file: %v", err)
	}
	et := make([]float32, len(s.Data.Elements))
	for i, v := range s.Data.Elements {
		et[i] = float32(v)
	}
	days := make([]int32, len(s.Days))
	for i, d := range s.Days {
		days[i] = int32(d)
	}
	if err := put(f, "ET", et); err != nil {
		return err
	}
	if err := put(f, "lat", s.Lat); err != nil {
		return err
	}
	if err := put(f, "lon", s.Lon); err != nil {
		return err
	}
	if err := put(f, "time", days); err != nil {
		return err
	}
	if err := put(f, "crs", []uint8{0}); err != nil {
		return err
	}
	return cdf.UpdateNumRecs(ff)
}

// put writes data as the full contents of variable v.
func put(f *cdf.File, v string, data interface{}) error {
	end := f.Header.Lengths(v)
	start := make([]int, len(end))
	w := f.Writer(v, start, end)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing variable %s: %v", v, err)
	}
	return nil
}

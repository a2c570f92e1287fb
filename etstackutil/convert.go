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

package etstackutil

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spatialmet/etstack"
)

// Convert converts the daily rasters in inputDir into one NetCDF file
// per acquisition year in outputDir, using op to open the raster files.
// attrs holds extra global attributes to be written to every output
// file. Convert returns an error if any year failed to convert.
func Convert(ctx context.Context, inputDir, outputDir, ext string, workers int, attrs map[string]string, op etstack.RasterOpener) error {
	c := &etstack.Config{
		InputDir:    inputDir,
		OutputDir:   outputDir,
		Ext:         ext,
		Workers:     workers,
		OutputAttrs: attrs,
		Opener:      op,
	}
	results, err := c.Run(ctx)
	if err != nil {
		return err
	}
	var failed []string
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, fmt.Sprintf("%04d", r.Year))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("etstack: %d of %d years failed: %s",
			len(failed), len(results), strings.Join(failed, ", "))
	}
	return nil
}

// Scan lists the acquisition years found in inputDir, the number of
// daily files in each year, and each year's grid geometry, writing the
// report to outChan. It reads only raster metadata, not pixel data, and
// writes no output files.
func Scan(inputDir, ext string, op etstack.RasterOpener, outChan chan string) error {
	if ext == "" {
		ext = ".tif"
	} else if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	next, err := etstack.ScanSource(inputDir, ext)
	if err != nil {
		return err
	}
	groups, failed, skipped := etstack.GroupByYear(next)
	for _, err := range skipped {
		outChan <- fmt.Sprintf("skipping: %v\n", err)
	}
	years := make([]int, 0, len(groups)+len(failed))
	for y := range groups {
		years = append(years, y)
	}
	for y := range failed {
		years = append(years, y)
	}
	sort.Ints(years)
	if len(years) == 0 {
		outChan <- fmt.Sprintf("no raster files found in %s\n", inputDir)
		return nil
	}
	for _, year := range years {
		if err, ok := failed[year]; ok {
			outChan <- fmt.Sprintf("year %04d: %v\n", year, err)
			continue
		}
		g := groups[year]
		r, err := op.Open(g.Files[0].Path)
		if err != nil {
			return fmt.Errorf("etstack: opening %s: %v", g.Files[0].Path, err)
		}
		gg := r.Geometry()
		r.Close()
		crs := gg.Proj
		if sr, err := gg.SpatialReference(); err == nil {
			crs = sr.Name
		} else if len(crs) > 40 {
			crs = crs[:37] + "..."
		}
		b := gg.Extent().Bounds()
		outChan <- fmt.Sprintf("year %04d: %d days (%03d to %03d), %d rows x %d columns (%s), x %g to %g, y %g to %g\n",
			year, len(g.Files), g.Files[0].Day, g.Files[len(g.Files)-1].Day,
			gg.Ny, gg.Nx, crs, b.Min.X, b.Max.X, b.Min.Y, b.Max.Y)
	}
	return nil
}

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

// Package etstack converts directories of daily single-band
// evapotranspiration rasters into yearly NetCDF stacks. Daily files are
// named <YYYY><DDD> after their acquisition date; etstack groups them
// by year, verifies that each year shares a single grid geometry,
// stacks the days in ascending day-of-year order into a
// [time, lat, lon] array, and writes one CF-style NetCDF file per
// year. Years are converted independently, so a failure in one year
// does not affect the others.
package etstack

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Version gives the version number.
const Version = "0.1.0"

// Config holds the configuration for converting one directory of daily
// rasters into yearly NetCDF stacks.
type Config struct {
	// InputDir is the directory holding the daily raster files.
	InputDir string

	// OutputDir is the directory the yearly output files are written
	// to. It defaults to the current directory. The temporary files
	// used during writing are created here as well, so that the final
	// rename never crosses file systems.
	OutputDir string

	// Ext is the file name extension of the daily raster files.
	// It defaults to ".tif".
	Ext string

	// Workers sets the number of years converted concurrently. It
	// defaults to the number of processors.
	Workers int

	// Opener opens the daily raster files.
	Opener RasterOpener

	// OutputAttrs holds extra global attributes to be written to every
	// output file. Keys that collide with the attributes etstack
	// writes itself are ignored.
	OutputAttrs map[string]string

	// Log is the logger to send progress information to. It defaults
	// to the logrus standard logger.
	Log logrus.FieldLogger
}

// withDefaults returns a copy of c with the default values filled in.
func (c *Config) withDefaults() *Config {
	d := *c
	if d.Ext == "" {
		d.Ext = ".tif"
	} else if !strings.HasPrefix(d.Ext, ".") {
		d.Ext = "." + d.Ext
	}
	if d.OutputDir == "" {
		d.OutputDir = "."
	}
	if d.Workers < 1 {
		d.Workers = runtime.GOMAXPROCS(-1)
	}
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	return &d
}

// A YearResult reports the outcome of converting one acquisition year.
type YearResult struct {
	Year int    // the acquisition year
	Days int    // number of time steps in the output file
	Path string // path of the written output file, if successful
	Err  error  // the error that aborted the year, if any
}

// Run converts the daily rasters in c.InputDir into one NetCDF file per
// acquisition year and returns one result per year, ordered by year.
// Files whose names do not parse are skipped with a warning. Each year
// is converted in isolation: an error in one year is recorded in that
// year's result and does not affect the others. Run returns a non-nil
// error only for failures that prevent the conversion as a whole, such
// as an unreadable input directory.
func (c *Config) Run(ctx context.Context) ([]YearResult, error) {
	if c.Opener == nil {
		return nil, fmt.Errorf("etstack: no raster opener configured")
	}
	c = c.withDefaults()
	next, err := ScanSource(c.InputDir, c.Ext)
	if err != nil {
		return nil, err
	}
	groups, failed, skipped := GroupByYear(next)
	for _, err := range skipped {
		c.Log.WithField("reason", err).Warn("etstack: skipping file")
	}
	years := make([]int, 0, len(groups)+len(failed))
	for y := range groups {
		years = append(years, y)
	}
	for y := range failed {
		years = append(years, y)
	}
	sort.Ints(years)
	c.Log.WithField("years", years).Debug("etstack: discovered years")

	results := make([]YearResult, len(years))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < c.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				year := years[i]
				if err := ctx.Err(); err != nil {
					results[i] = YearResult{Year: year, Err: err}
					continue
				}
				if err, ok := failed[year]; ok {
					results[i] = YearResult{Year: year, Err: err}
					continue
				}
				results[i] = c.convertYear(groups[year])
			}
		}()
	}
	for i := range years {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	converted := 0
	for _, r := range results {
		if r.Err != nil {
			c.Log.WithFields(logrus.Fields{
				"year":  r.Year,
				"error": r.Err,
			}).Error("etstack: year failed")
			continue
		}
		converted++
	}
	c.Log.WithFields(logrus.Fields{
		"converted": converted,
		"failed":    len(results) - converted,
	}).Info("etstack: finished")
	return results, nil
}

// convertYear validates, stacks, and writes one year of daily rasters.
func (c *Config) convertYear(group *YearGroup) YearResult {
	c.Log.WithFields(logrus.Fields{
		"year":  group.Year,
		"files": len(group.Files),
	}).Info("etstack: processing year")
	gg, err := c.validateGrid(group)
	if err != nil {
		return YearResult{Year: group.Year, Err: err}
	}
	s, err := c.assemble(group, gg)
	if err != nil {
		return YearResult{Year: group.Year, Err: err}
	}
	path, err := c.writeYear(s)
	if err != nil {
		return YearResult{Year: group.Year, Err: err}
	}
	c.Log.WithFields(logrus.Fields{
		"year": group.Year,
		"days": len(s.Days),
		"path": path,
	}).Info("etstack: wrote year")
	return YearResult{Year: group.Year, Days: len(s.Days), Path: path}
}

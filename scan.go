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
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// A RasterRef identifies one daily raster file and the acquisition date
// parsed from its name.
type RasterRef struct {
	Path string // full path to the raster file
	Year int    // four-digit acquisition year
	Day  int    // day of year in [1, 366]
}

// A DuplicateDayOfYearError reports two files within the same year that
// claim the same day of year.
type DuplicateDayOfYearError struct {
	Year      int
	Day       int
	First     string // path of the file seen first
	Duplicate string // path of the file seen second
}

func (e *DuplicateDayOfYearError) Error() string {
	return fmt.Sprintf("etstack: duplicate day of year %03d in year %04d: %s and %s",
		e.Day, e.Year, e.First, e.Duplicate)
}

// ScanSource lists the regular files in directory dir whose names end in
// ext and returns a function that yields one parse result per call, in
// directory listing order. Files whose names do not parse yield their
// parse error in sequence; the caller decides whether to skip them. After
// the last entry the returned function returns io.EOF.
func ScanSource(dir, ext string) (func() (RasterRef, error), error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("etstack: scanning source directory: %v", err)
	}
	i := 0
	return func() (RasterRef, error) {
		for i < len(entries) {
			entry := entries[i]
			i++
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			if ext != "" && !strings.HasSuffix(name, ext) {
				continue
			}
			year, day, err := ParseFilename(name, ext)
			if err != nil {
				return RasterRef{}, err
			}
			return RasterRef{
				Path: filepath.Join(dir, name),
				Year: year,
				Day:  day,
			}, nil
		}
		return RasterRef{}, io.EOF
	}, nil
}

// A YearGroup holds the daily raster files of one acquisition year,
// ordered by ascending day of year.
type YearGroup struct {
	Year  int
	Files []RasterRef
}

// insert adds f to the group, keeping Files sorted by day of year.
// It returns a DuplicateDayOfYearError if the group already holds a
// file for f's day.
func (g *YearGroup) insert(f RasterRef) error {
	k := sort.Search(len(g.Files), func(i int) bool {
		return g.Files[i].Day >= f.Day
	})
	if k < len(g.Files) && g.Files[k].Day == f.Day {
		return &DuplicateDayOfYearError{
			Year:      g.Year,
			Day:       f.Day,
			First:     g.Files[k].Path,
			Duplicate: f.Path,
		}
	}
	g.Files = append(g.Files, RasterRef{})
	copy(g.Files[k+1:], g.Files[k:])
	g.Files[k] = f
	return nil
}

// GroupByYear consumes the sequence produced by next and partitions the
// files by acquisition year, ordering each group by ascending day of
// year regardless of the order in which next yields them. Parse errors
// yielded by next do not belong to any year and are collected in
// skipped. A duplicate day of year marks the whole year as failed; a
// failed year keeps its error in failed and has no entry in groups.
func GroupByYear(next func() (RasterRef, error)) (groups map[int]*YearGroup, failed map[int]error, skipped []error) {
	groups = make(map[int]*YearGroup)
	failed = make(map[int]error)
	for {
		f, err := next()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		if _, ok := failed[f.Year]; ok {
			continue
		}
		g, ok := groups[f.Year]
		if !ok {
			g = &YearGroup{Year: f.Year}
			groups[f.Year] = g
		}
		if err := g.insert(f); err != nil {
			failed[f.Year] = err
			delete(groups, f.Year)
		}
	}
	return groups, failed, skipped
}

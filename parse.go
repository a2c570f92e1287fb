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
	"path/filepath"
	"strconv"
	"strings"
)

// An InvalidFilenameError reports a candidate file whose name does not
// follow the <YYYY><DDD> naming pattern.
type InvalidFilenameError struct {
	Name string // base name of the offending file
}

func (e *InvalidFilenameError) Error() string {
	return fmt.Sprintf("etstack: invalid raster file name %q: expected 7 digits (YYYYDDD)", e.Name)
}

// An InvalidDayOfYearError reports a file name whose day-of-year field
// lies outside [1, 366].
type InvalidDayOfYearError struct {
	Name string // base name of the offending file
	Day  int    // the out-of-range day-of-year value
}

func (e *InvalidDayOfYearError) Error() string {
	return fmt.Sprintf("etstack: invalid day of year %03d in file name %q: must be in [1, 366]", e.Day, e.Name)
}

// ParseFilename extracts the acquisition year and day of year from the
// name of a daily raster file. The file's base name must be exactly seven
// digits followed by ext; the first four digits are the year and the last
// three are the day of year. Any four-digit year is accepted, but the day
// of year must lie in [1, 366]: a day field of 000 or above 366 returns
// an InvalidDayOfYearError, and any other malformation returns an
// InvalidFilenameError.
func ParseFilename(name, ext string) (year, day int, err error) {
	base := filepath.Base(name)
	stem := base
	if ext != "" {
		if !strings.HasSuffix(base, ext) {
			return 0, 0, &InvalidFilenameError{Name: base}
		}
		stem = base[:len(base)-len(ext)]
	}
	if len(stem) != 7 {
		return 0, 0, &InvalidFilenameError{Name: base}
	}
	for _, c := range stem {
		if c < '0' || c > '9' {
			return 0, 0, &InvalidFilenameError{Name: base}
		}
	}
	year, _ = strconv.Atoi(stem[:4])
	day, _ = strconv.Atoi(stem[4:])
	if day < 1 || day > 366 {
		return 0, 0, &InvalidDayOfYearError{Name: base, Day: day}
	}
	return year, day, nil
}

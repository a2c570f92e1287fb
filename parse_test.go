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
	"errors"
	"testing"
)

func TestParseFilename(t *testing.T) {
	tests := []struct {
		in        string
		ext       string
		year, day int
		errKind   string // "", "filename", or "day"
	}{
		{"2020001.tif", ".tif", 2020, 1, ""},
		{"2020366.tif", ".tif", 2020, 366, ""},
		{"2020060.tif", ".tif", 2020, 60, ""},
		{"/data/et/2020032.tif", ".tif", 2020, 32, ""},
		{"1999365.dat", ".dat", 1999, 365, ""},
		{"2020001", "", 2020, 1, ""},
		{"0001001.tif", ".tif", 1, 1, ""},
		{"2020000.tif", ".tif", 0, 0, "day"},
		{"2020367.tif", ".tif", 0, 0, "day"},
		{"2020999.tif", ".tif", 0, 0, "day"},
		{"202001.tif", ".tif", 0, 0, "filename"},
		{"20200001.tif", ".tif", 0, 0, "filename"},
		{"2020a01.tif", ".tif", 0, 0, "filename"},
		{"2020001.txt", ".tif", 0, 0, "filename"},
		{"et2020001.tif", ".tif", 0, 0, "filename"},
		{"2020001.tif.bak", ".tif", 0, 0, "filename"},
		{".tif", ".tif", 0, 0, "filename"},
	}
	for _, test := range tests {
		year, day, err := ParseFilename(test.in, test.ext)
		switch test.errKind {
		case "":
			if err != nil {
				t.Errorf("%s: %v", test.in, err)
				continue
			}
			if year != test.year || day != test.day {
				t.Errorf("%s: %d/%d != %d/%d", test.in, year, day, test.year, test.day)
			}
		case "filename":
			var fe *InvalidFilenameError
			if !errors.As(err, &fe) {
				t.Errorf("%s: %v is not an InvalidFilenameError", test.in, err)
			}
		case "day":
			var de *InvalidDayOfYearError
			if !errors.As(err, &de) {
				t.Errorf("%s: %v is not an InvalidDayOfYearError", test.in, err)
			}
		}
	}
}

func TestParseFilenameErrorFields(t *testing.T) {
	_, _, err := ParseFilename("/data/et/2020367.tif", ".tif")
	var de *InvalidDayOfYearError
	if !errors.As(err, &de) {
		t.Fatalf("%v is not an InvalidDayOfYearError", err)
	}
	if de.Name != "2020367.tif" {
		t.Errorf("name %s != 2020367.tif", de.Name)
	}
	if de.Day != 367 {
		t.Errorf("day %d != 367", de.Day)
	}
}

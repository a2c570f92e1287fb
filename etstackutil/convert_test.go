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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ctessum/sparse"
	"github.com/spatialmet/etstack"
)

// fakeRaster is an in-memory raster for testing.
type fakeRaster struct {
	geometry etstack.GridGeometry
	data     *sparse.DenseArray
}

func (r *fakeRaster) Geometry() etstack.GridGeometry    { return r.geometry }
func (r *fakeRaster) Read() (*sparse.DenseArray, error) { return r.data, nil }
func (r *fakeRaster) Close() error                      { return nil }

// fakeOpener opens fakeRasters by path.
type fakeOpener map[string]*fakeRaster

func (o fakeOpener) Open(path string) (etstack.Raster, error) {
	r, ok := o[path]
	if !ok {
		return nil, fmt.Errorf("no raster %s", path)
	}
	return r, nil
}

func testGeometry(ny, nx int) etstack.GridGeometry {
	return etstack.GridGeometry{
		Proj: "+proj=longlat +datum=WGS84 +no_defs",
		X0:   -120,
		Y0:   50,
		Dx:   0.1,
		Dy:   -0.1,
		Ny:   ny,
		Nx:   nx,
	}
}

func testRaster(g etstack.GridGeometry) *fakeRaster {
	return &fakeRaster{geometry: g, data: sparse.ZerosDense(g.Ny, g.Nx)}
}

func writeTestInput(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	writeTestInput(t, dir, "2020001.tif", "2020002.tif")
	g := testGeometry(3, 4)
	op := fakeOpener{
		filepath.Join(dir, "2020001.tif"): testRaster(g),
		filepath.Join(dir, "2020002.tif"): testRaster(g),
	}
	attrs := map[string]string{"institution": "test"}
	if err := Convert(context.Background(), dir, out, ".tif", 1, attrs, op); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(out, "ET_2020.nc")); err != nil {
		t.Error(err)
	}
}

func TestConvertFailedYear(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	writeTestInput(t, dir, "2020001.tif", "2021001.tif", "2021002.tif")
	g := testGeometry(3, 4)
	gBad := g
	gBad.Nx = 5
	op := fakeOpener{
		filepath.Join(dir, "2020001.tif"): testRaster(g),
		filepath.Join(dir, "2021001.tif"): testRaster(g),
		filepath.Join(dir, "2021002.tif"): testRaster(gBad),
	}
	err := Convert(context.Background(), dir, out, ".tif", 1, nil, op)
	if err == nil {
		t.Fatal("expected an error for the failed year")
	}
	if !strings.Contains(err.Error(), "2021") {
		t.Errorf("%v does not name year 2021", err)
	}
	// The good year must still be converted.
	if _, err := os.Stat(filepath.Join(out, "ET_2020.nc")); err != nil {
		t.Error(err)
	}
	if _, err := os.Stat(filepath.Join(out, "ET_2021.nc")); err == nil {
		t.Error("ET_2021.nc should not exist")
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeTestInput(t, dir, "2020001.tif", "2020032.tif", "board.tif")
	g := testGeometry(2, 3)
	op := fakeOpener{
		filepath.Join(dir, "2020001.tif"): testRaster(g),
		filepath.Join(dir, "2020032.tif"): testRaster(g),
	}
	out := make(chan string)
	done := make(chan []string)
	go func() {
		var msgs []string
		for msg := range out {
			msgs = append(msgs, msg)
		}
		done <- msgs
	}()
	err := Scan(dir, ".tif", op, out)
	close(out)
	msgs := <-done
	if err != nil {
		t.Fatal(err)
	}
	report := strings.Join(msgs, "")
	if !strings.Contains(report, "skipping") {
		t.Errorf("report %q does not mention the skipped file", report)
	}
	if !strings.Contains(report, "year 2020: 2 days (001 to 032), 2 rows x 3 columns (longlat)") {
		t.Errorf("unexpected report %q", report)
	}
}

package ncplotutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/cdf"
	ncplot "github.com/darothen/plot-all-in-ncfile"
)

// writeTestNC writes a small netCDF file with one (time, lat, lon)
// variable.
func writeTestNC(t *testing.T, dir string) string {
	t.Helper()

	h := cdf.NewHeader([]string{"time", "lat", "lon"}, []int{2, 2, 3})
	h.AddVariable("time", []string{"time"}, []float64{0})
	h.AddAttribute("time", "units", "hours since 2016-11-28 00:00:00")
	h.AddVariable("lat", []string{"lat"}, []float64{0})
	h.AddVariable("lon", []string{"lon"}, []float64{0})
	h.AddVariable("rr", []string{"time", "lat", "lon"}, []float32{0})
	h.AddAttribute("rr", "long_name", "total precipitation")
	h.AddAttribute("rr", "units", "mm")
	h.Define()

	path := filepath.Join(dir, "data.nc")
	ff, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ff.Close()
	f, err := cdf.Create(ff, h)
	if err != nil {
		t.Fatal(err)
	}

	for _, w := range []struct {
		v    string
		data interface{}
	}{
		{"time", []float64{0, 6}},
		{"lat", []float64{-30, 30}},
		{"lon", []float64{0, 60, 120}},
		{"rr", []float32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 31.5}},
	} {
		end := f.Header.Lengths(w.v)
		start := make([]int, len(end))
		if _, err := f.Writer(w.v, start, end).Write(w.data); err != nil {
			t.Fatalf("writing %s: %v", w.v, err)
		}
	}
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	ncPath := writeTestNC(t, dir)

	cfg := defaultConfig()
	cfg.OutDir = filepath.Join(dir, "plots")
	if err := Run(cfg, ncPath); err != nil {
		t.Fatal(err)
	}

	// One plot per time step, named for the variable and timestamp.
	for _, name := range []string{
		"rr_11282016_0000Z.png",
		"rr_11282016_0600Z.png",
	} {
		if _, err := os.Stat(filepath.Join(cfg.OutDir, name)); err != nil {
			t.Errorf("expected plot file %s: %v", name, err)
		}
	}

	// The colorfile is saved next to the dataset with the inferred
	// settings.
	cfPath := filepath.Join(dir, "data.cf")
	store, err := ncplot.LoadStore(cfPath)
	if err != nil {
		t.Fatal(err)
	}
	cs, ok := store.Get("rr")
	if !ok {
		t.Fatal("colorfile has no entry for rr")
	}
	if cs.Vmin != 0 || cs.Vmax != 31.5 {
		t.Errorf("got vmin %g vmax %g, want 0 and 31.5", cs.Vmin, cs.Vmax)
	}
}

func TestRunReusesColorfile(t *testing.T) {
	dir := t.TempDir()
	ncPath := writeTestNC(t, dir)
	cfPath := filepath.Join(dir, "data.cf")

	// Seed the colorfile with settings that inference would never
	// produce for these data.
	seeded := ncplot.ColorScheme{
		Cmap:   "jet",
		Levels: []float64{0, 50, 100},
		Vmin:   0,
		Vmax:   100,
		Extend: ncplot.ExtendNeither,
	}
	store := ncplot.NewStore()
	store.Put("rr", seeded)
	if err := store.Save(cfPath); err != nil {
		t.Fatal(err)
	}

	cfg := defaultConfig()
	cfg.OutDir = dir
	cfg.Sample = true
	if err := Run(cfg, ncPath); err != nil {
		t.Fatal(err)
	}

	// The cached settings survive the run untouched.
	store, err := ncplot.LoadStore(cfPath)
	if err != nil {
		t.Fatal(err)
	}
	cs, _ := store.Get("rr")
	if cs.Vmax != 100 || cs.Cmap != "jet" {
		t.Errorf("cached scheme was replaced: %+v", cs)
	}
}

func TestRunCorruptColorfile(t *testing.T) {
	dir := t.TempDir()
	ncPath := writeTestNC(t, dir)
	cfPath := filepath.Join(dir, "data.cf")
	if err := os.WriteFile(cfPath, []byte("not a colorfile"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := defaultConfig()
	cfg.OutDir = dir
	cfg.Sample = true
	if err := Run(cfg, ncPath); err != nil {
		t.Fatal(err)
	}

	// The corrupt colorfile was replaced with freshly inferred settings.
	store, err := ncplot.LoadStore(cfPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := store.Get("rr"); !ok {
		t.Error("rewritten colorfile has no entry for rr")
	}
}

func TestRunSelectedVariables(t *testing.T) {
	dir := t.TempDir()
	ncPath := writeTestNC(t, dir)

	cfg := defaultConfig()
	cfg.OutDir = dir
	cfg.Sample = true
	cfg.Variables = []string{"nosuch"}
	if err := Run(cfg, ncPath); err == nil {
		t.Error("expected an error when no requested variable is plottable")
	}

	cfg.Variables = []string{"rr", "nosuch"}
	if err := Run(cfg, ncPath); err != nil {
		t.Errorf("unplottable variables alongside plottable ones should only warn: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "rr_11282016_0000Z.png")); err != nil {
		t.Errorf("expected a plot for rr: %v", err)
	}
}

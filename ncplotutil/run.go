package ncplotutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	ncplot "github.com/darothen/plot-all-in-ncfile"
	"gonum.org/v1/plot/vg"
)

// Run plots every time step of every selected variable in the netCDF
// file at ncPath, consulting (and, if needed, extending) the colorfile
// so that repeated runs keep consistent color scales.
func Run(cfg Config, ncPath string) error {
	d, err := ncplot.OpenDataset(ncPath)
	if err != nil {
		return err
	}
	defer d.Close()

	logger.Info("Input file details:")
	for _, a := range d.GlobalAttrs() {
		logger.Infof("   %s: %s", a, d.Attr("", a))
	}

	store, cfPath := openStore(cfg, ncPath)

	resolver := ncplot.NewCmapResolver()
	resolver.Robust = cfg.Robust
	if cfg.Levels > 1 {
		resolver.NumLevels = cfg.Levels
	}

	mp := ncplot.NewMapPlot()
	mp.Format = cfg.Format
	mp.DPI = cfg.DPI
	if cfg.Width > 0 {
		mp.Width = vg.Length(cfg.Width) * vg.Inch
	}
	if cfg.Borders != "" {
		if mp.Borders, err = ncplot.LoadBorders(cfg.Borders); err != nil {
			return err
		}
	}

	if cfg.OutDir != "" && cfg.OutDir != "." {
		if err := os.MkdirAll(cfg.OutDir, os.ModePerm); err != nil {
			return fmt.Errorf("ncplot: creating output directory: %v", err)
		}
	}

	vars, err := selectVars(d, cfg.Variables)
	if err != nil {
		return err
	}
	for _, v := range vars {
		if err := plotVariable(d, v, cfg, store, resolver, mp); err != nil {
			return err
		}
	}

	if store.Dirty() {
		logger.Info("Saving colormap data")
		if err := store.Save(cfPath); err != nil {
			return err
		}
	}
	return nil
}

// openStore loads the colorfile named in cfg (or derived from the
// dataset path). A missing or corrupt colorfile is not fatal: plotting
// proceeds with fresh inference for every variable, and the colorfile is
// rewritten at the end of the run.
func openStore(cfg Config, ncPath string) (*ncplot.Store, string) {
	path := cfg.Colorfile
	explicit := path != ""
	if path == "" {
		path = ncplot.ColorfilePath(ncPath)
	}
	store, err := ncplot.LoadStore(path)
	switch {
	case err == nil:
		logger.Infof("Loaded colormap settings for %d variables from %s", store.Len(), path)
	case os.IsNotExist(err):
		if explicit {
			logger.Warnf("Could not open colorfile '%s'", path)
		}
		logger.Info("Inferring new colormaps")
		store = ncplot.NewStore()
	default:
		var corrupt *ncplot.CorruptStoreError
		if errors.As(err, &corrupt) {
			logger.Warnf("Colorfile %s could not be decoded; inferring new colormaps", path)
		} else {
			logger.Warnf("Reading colorfile %s: %v; inferring new colormaps", path, err)
		}
		store = ncplot.NewStore()
	}
	return store, path
}

// selectVars returns the plottable variables to draw, restricted to the
// requested names if any were given.
func selectVars(d *ncplot.Dataset, requested []string) ([]string, error) {
	all := d.Vars()
	if len(all) == 0 {
		return nil, fmt.Errorf("ncplot: no plottable variables in file")
	}
	if len(requested) == 0 {
		return all, nil
	}
	plottable := make(map[string]bool, len(all))
	for _, v := range all {
		plottable[v] = true
	}
	var vars []string
	for _, v := range requested {
		if plottable[v] {
			vars = append(vars, v)
		} else {
			logger.Warnf("Variable %s is not plottable; skipping", v)
		}
	}
	if len(vars) == 0 {
		return nil, fmt.Errorf("ncplot: none of the requested variables are plottable")
	}
	return vars, nil
}

func plotVariable(d *ncplot.Dataset, v string, cfg Config, store *ncplot.Store,
	resolver ncplot.Resolver, mp *ncplot.MapPlot) error {

	logger.Infof("Plotting data for variable '%s'...", v)

	data, err := d.ReadVar(v)
	if err != nil {
		return err
	}
	cs := resolver.Resolve(data, v, store)
	logger.Infof("   Colormap settings: cmap=%s vmin=%g vmax=%g levels=%d extend=%s",
		cs.Cmap, cs.Vmin, cs.Vmax, len(cs.Levels), cs.Extend)

	latEdges, lonEdges := d.LatEdges(), d.LonEdges()
	label := d.Label(v)

	for step := 0; step < d.NumSteps(v); step++ {
		slice, err := d.ReadSlice(v, step)
		if err != nil {
			return err
		}
		var title, stamp string
		if ts, ok := d.Time(step); ok {
			title = ts.UTC().Format("01-02-2006 15:04Z")
			stamp = ts.UTC().Format("01022006_1504Z")
		} else {
			title = fmt.Sprintf("%s step %d", v, step)
			stamp = fmt.Sprintf("%03d", step)
		}
		logger.Infof("   %s", title)

		fname := filepath.Join(cfg.OutDir, fmt.Sprintf("%s_%s.%s", v, stamp, cfg.Format))
		f, err := os.Create(fname)
		if err != nil {
			return fmt.Errorf("ncplot: creating plot file: %v", err)
		}
		err = mp.Render(f, slice, latEdges, lonEdges, cs, title, label)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}

		if cfg.Sample {
			break
		}
	}
	return nil
}

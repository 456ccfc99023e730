package ncplotutil

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds the plotting settings. Every field can be set in a TOML
// configuration file; command-line flags override the file.
type Config struct {
	// Colorfile is the colormap cache location. If empty, it defaults to
	// the dataset path with its extension replaced by ".cf".
	Colorfile string

	// Variables restricts plotting to the named variables. If empty, all
	// plottable variables are drawn.
	Variables []string

	// Sample plots only the first time step of each variable.
	Sample bool

	// OutDir is the directory plot files are written to.
	OutDir string

	// Format is the plot file format, "png" or "pdf".
	Format string

	// Width is the figure width in inches.
	Width float64

	// DPI is the raster output resolution.
	DPI int

	// Borders is an optional shapefile with overlay linework
	// (coastlines, administrative boundaries).
	Borders string

	// Robust bases inferred color scales on the 2nd and 98th data
	// percentiles instead of the extremes.
	Robust bool

	// Levels is the target number of level boundaries for inferred
	// color scales.
	Levels int
}

func defaultConfig() Config {
	return Config{
		OutDir: ".",
		Format: "png",
		Width:  8,
		DPI:    150,
		Levels: 21,
	}
}

// ReadConfigFile reads and parses a TOML configuration file, filling in
// defaults for unset fields.
func ReadConfigFile(filename string) (Config, error) {
	cfg := defaultConfig()
	if filename == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(os.ExpandEnv(filename), &cfg); err != nil {
		return cfg, fmt.Errorf("ncplot: reading configuration file %s: %v", filename, err)
	}
	return cfg, nil
}

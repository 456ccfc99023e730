/*
Copyright © 2016 the ncplot authors.
This file is part of ncplot.

ncplot is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ncplot is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ncplot.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package ncplotutil wires the ncplot library into a command-line tool.
package ncplotutil

import (
	"fmt"
	"time"

	ncplot "github.com/darothen/plot-all-in-ncfile"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var logger = logrus.StandardLogger()

func init() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		DisableSorting:  true,
	})

	Root.AddCommand(versionCmd)

	Root.Flags().StringVarP(&colorfile, "colorfile", "c", "",
		"File containing the colormap settings cached on a previous run. "+
			"If not supplied, defaults to the netCDF file path with the extension changed to '.cf'.")
	Root.Flags().StringSliceVarP(&variables, "variables", "v", nil,
		"Variables to try to plot; if not supplied, will plot all 2D variables in the file.")
	Root.Flags().BoolVar(&sample, "sample", false,
		"Only plot the first time step for each variable.")
	Root.Flags().StringVarP(&outDir, "outdir", "o", "",
		"Directory to write plot files to.")
	Root.Flags().StringVar(&format, "format", "",
		"Plot file format ('png' or 'pdf').")
	Root.Flags().Float64Var(&width, "width", 0,
		"Figure width in inches.")
	Root.Flags().IntVar(&dpi, "dpi", 0,
		"Raster output resolution in dots per inch.")
	Root.Flags().StringVar(&borders, "borders", "",
		"Shapefile with overlay linework (e.g. coastlines or state boundaries).")
	Root.Flags().BoolVar(&robust, "robust", false,
		"Base inferred color scales on the 2nd and 98th data percentiles instead of the extremes.")
	Root.Flags().IntVar(&levels, "levels", 0,
		"Target number of level boundaries for inferred color scales.")
	Root.PersistentFlags().StringVar(&configFile, "config", "",
		"Configuration file location.")
}

// These variables hold the command-line flag values.
var (
	configFile string
	colorfile  string
	variables  []string
	sample     bool
	outDir     string
	format     string
	width      float64
	dpi        int
	borders    string
	robust     bool
	levels     int
)

// Root is the main command.
var Root = &cobra.Command{
	Use:   "ncplot netcdf-file",
	Short: "Plot snapshots of the variables in a netCDF file.",
	Long: `ncplot renders a map plot for each time step of each (or each selected)
variable in a netCDF file.

To help produce consistent plot formats, ncplot serializes colormap
settings. By default it saves a "colorfile" with the same name as the
netCDF file being plotted, mapping each variable name in the file to the
colormap settings inferred during the plotting process. Later runs reuse
the cached settings so that plots of the same dataset keep the same
color scales even when the data change.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := ReadConfigFile(configFile)
		if err != nil {
			return err
		}
		mergeFlags(cmd, &cfg)
		return Run(cfg, args[0])
	},
	DisableAutoGenTag: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ncplot v%s\n", ncplot.Version)
	},
	DisableAutoGenTag: true,
}

// mergeFlags overrides cfg with any flags that were set on the command
// line.
func mergeFlags(cmd *cobra.Command, cfg *Config) {
	if cmd.Flags().Changed("colorfile") {
		cfg.Colorfile = colorfile
	}
	if cmd.Flags().Changed("variables") {
		cfg.Variables = variables
	}
	if cmd.Flags().Changed("sample") {
		cfg.Sample = sample
	}
	if cmd.Flags().Changed("outdir") {
		cfg.OutDir = outDir
	}
	if cmd.Flags().Changed("format") {
		cfg.Format = format
	}
	if cmd.Flags().Changed("width") {
		cfg.Width = width
	}
	if cmd.Flags().Changed("dpi") {
		cfg.DPI = dpi
	}
	if cmd.Flags().Changed("borders") {
		cfg.Borders = borders
	}
	if cmd.Flags().Changed("robust") {
		cfg.Robust = robust
	}
	if cmd.Flags().Changed("levels") {
		cfg.Levels = levels
	}
}

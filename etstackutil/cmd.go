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

// Package etstackutil provides the command-line interface for ETStack.
package etstackutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmet/etstack"
	"github.com/spatialmet/etstack/gtiff"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to ETStack.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "verbose",
			usage: `
              verbose enables debug-level log output, including one log
              line per raster file processed.`,
			shorthand:  "v",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "InputDir",
			usage: `
              InputDir is the directory holding the daily raster files.
              File names must follow the <YYYY><DDD> naming pattern,
              for example 2020032.tif for day 32 of 2020.`,
			shorthand:  "i",
			defaultVal: ".",
			flagsets:   []*pflag.FlagSet{convertCmd.Flags(), scanCmd.Flags()},
		},
		{
			name: "OutputDir",
			usage: `
              OutputDir is the directory the yearly NetCDF files are
              written to. One file named ET_<YYYY>.nc is written per
              acquisition year found in InputDir.`,
			shorthand:  "o",
			defaultVal: ".",
			flagsets:   []*pflag.FlagSet{convertCmd.Flags()},
		},
		{
			name: "Ext",
			usage: `
              Ext is the file name extension of the daily raster files.
              Files in InputDir with a different extension are ignored.`,
			defaultVal: ".tif",
			flagsets:   []*pflag.FlagSet{convertCmd.Flags(), scanCmd.Flags()},
		},
		{
			name: "Workers",
			usage: `
              Workers sets the number of years converted concurrently.
              The default of zero means one worker per processor.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{convertCmd.Flags()},
		},
		{
			name: "OutputAttrs",
			usage: `
              OutputAttrs specifies extra global attributes to be written
              to every output file, for example provenance information
              such as the institution or source of the input data.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{convertCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("ETSTACK")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := string(b.Bytes())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(convertCmd)
	Root.AddCommand(scanCmd)
}

// outChan returns a channel printing to standard output.
func outChan() chan string {
	outChan := make(chan string)
	go func() {
		for {
			msg := <-outChan
			fmt.Printf(msg)
		}
	}()
	return outChan
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("etstack: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "etstack",
	Short: "Convert daily evapotranspiration rasters to yearly NetCDF stacks.",
	Long: `ETStack converts directories of daily single-band evapotranspiration
rasters into yearly NetCDF stacks. Daily files named <YYYY><DDD> after their
acquisition date are grouped by year and stacked in ascending day-of-year
order into one CF-style NetCDF file per year.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'ETSTACK_var' where 'var' is
the name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		if err := setConfig(); err != nil {
			return err
		}
		if Cfg.GetBool("verbose") {
			logrus.SetLevel(logrus.DebugLevel)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of ETStack.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ETStack v%s\n", etstack.Version)
	},
	DisableAutoGenTag: true,
}

// convertCmd is a command that converts the daily rasters in InputDir
// into yearly NetCDF stacks in OutputDir.
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert daily rasters to yearly NetCDF stacks.",
	Long: `convert groups the daily raster files in InputDir by acquisition year
and writes one NetCDF file per year to OutputDir. Years are converted
independently: a failure in one year does not affect the others, and
convert reports an error if any year failed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Convert(cmd.Context(),
			os.ExpandEnv(Cfg.GetString("InputDir")),
			os.ExpandEnv(Cfg.GetString("OutputDir")),
			Cfg.GetString("Ext"),
			Cfg.GetInt("Workers"),
			GetStringMapString("OutputAttrs", Cfg),
			gtiff.Opener{})
	},
	DisableAutoGenTag: true,
}

// scanCmd is a command that previews a conversion without writing any
// output.
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List the years and grids found in the input directory.",
	Long: `scan lists the acquisition years found in InputDir, the number of
daily files in each year, and each year's grid geometry, without reading
pixel data or writing any output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outChan := outChan()
		return Scan(os.ExpandEnv(Cfg.GetString("InputDir")),
			Cfg.GetString("Ext"), gtiff.Opener{}, outChan)
	},
	DisableAutoGenTag: true,
}

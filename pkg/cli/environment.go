/*
Copyright SUSE LLC.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

/*
Package cli describes the operating environment of the depsolver CLI.

Settings are read, from lowest to highest precedence, from built-in
defaults, the TOML configuration file, the process environment (with a
.env file in the working directory filling in unset variables) and
command line flags.
*/
package cli

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/rancher-sandbox/depsolver/internal/sat"
	"github.com/rancher-sandbox/depsolver/pkg/depsolverpath"
)

const (
	envPrefix = "DEPSOLVER_"
	// ConfigEnvVar names the configuration file to read instead of the
	// default one.
	ConfigEnvVar = envPrefix + "CONFIG"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// EnvSettings describes all of the environment settings.
type EnvSettings struct {
	// ConfigFile is the TOML configuration file the settings were read from.
	ConfigFile string
	// Debug indicates whether or not depsolver is running in Debug mode.
	Debug bool
	// NoColors disables coloured output.
	NoColors bool
	// NoEmojis disables emojis in messages.
	NoEmojis bool
	// Solver is the command line of the external MaxSAT solver. Empty means
	// the built-in one.
	Solver string
	// Timeout is the wall clock ceiling of one solver run.
	Timeout time.Duration
	// CPUTime is the CPU time ceiling of one solver run.
	CPUTime time.Duration
	// MaxMemory is the address space ceiling of one solver run.
	MaxMemory ByteSize
	// Criteria overrides the optimisation criteria of the constraints file.
	Criteria string
	// LogFormat is "text" or "json".
	LogFormat string
	// Jobs is the number of problems solved concurrently by batch runs.
	Jobs int

	loadErrs []string
}

// setting binds a key to its field. The key names the TOML entry, the
// flag, and, upper-cased with the prefix, the environment variable.
type setting struct {
	key string
	set func(s *EnvSettings, v string) error
	get func(s *EnvSettings) string
}

var settings = []setting{
	{"debug", func(s *EnvSettings, v string) (err error) {
		s.Debug, err = strconv.ParseBool(v)
		return
	}, func(s *EnvSettings) string { return strconv.FormatBool(s.Debug) }},
	{"no-color", func(s *EnvSettings, v string) (err error) {
		s.NoColors, err = strconv.ParseBool(v)
		return
	}, func(s *EnvSettings) string { return strconv.FormatBool(s.NoColors) }},
	{"no-emoji", func(s *EnvSettings, v string) (err error) {
		s.NoEmojis, err = strconv.ParseBool(v)
		return
	}, func(s *EnvSettings) string { return strconv.FormatBool(s.NoEmojis) }},
	{"solver", func(s *EnvSettings, v string) error {
		s.Solver = v
		return nil
	}, func(s *EnvSettings) string { return s.Solver }},
	{"timeout", func(s *EnvSettings, v string) (err error) {
		s.Timeout, err = time.ParseDuration(v)
		return
	}, func(s *EnvSettings) string { return s.Timeout.String() }},
	{"cpu-time", func(s *EnvSettings, v string) (err error) {
		s.CPUTime, err = time.ParseDuration(v)
		return
	}, func(s *EnvSettings) string { return s.CPUTime.String() }},
	{"max-memory", func(s *EnvSettings, v string) error {
		return s.MaxMemory.Set(v)
	}, func(s *EnvSettings) string { return s.MaxMemory.String() }},
	{"criteria", func(s *EnvSettings, v string) error {
		s.Criteria = v
		return nil
	}, func(s *EnvSettings) string { return s.Criteria }},
	{"log-format", func(s *EnvSettings, v string) error {
		s.LogFormat = v
		return nil
	}, func(s *EnvSettings) string { return s.LogFormat }},
	{"jobs", func(s *EnvSettings, v string) (err error) {
		s.Jobs, err = strconv.Atoi(v)
		return
	}, func(s *EnvSettings) string { return strconv.Itoa(s.Jobs) }},
}

func envVarName(key string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// New returns the settings from defaults, configuration file and
// environment. Problems found on the way are reported by Validate.
func New() *EnvSettings {
	env := &EnvSettings{
		Timeout:   5 * time.Minute,
		LogFormat: LogFormatText,
		Jobs:      4,
	}
	// a missing .env file is fine, a broken one is not
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		env.loadErrs = append(env.loadErrs, ".env: "+err.Error())
	}

	env.ConfigFile = os.Getenv(ConfigEnvVar)
	explicit := env.ConfigFile != ""
	if !explicit {
		env.ConfigFile = depsolverpath.ConfigFile()
	}
	if err := env.loadConfigFile(explicit); err != nil {
		env.loadErrs = append(env.loadErrs, err.Error())
	}

	for _, st := range settings {
		v, ok := os.LookupEnv(envVarName(st.key))
		if !ok {
			continue
		}
		if err := st.set(env, v); err != nil {
			env.loadErrs = append(env.loadErrs, fmt.Sprintf("%s=%q: %s", envVarName(st.key), v, err))
		}
	}
	return env
}

func (s *EnvSettings) loadConfigFile(explicit bool) error {
	if _, err := os.Stat(s.ConfigFile); err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return errors.Wrapf(err, "couldn't load configuration file")
	}
	tree, err := toml.LoadFile(s.ConfigFile)
	if err != nil {
		return errors.Wrapf(err, "couldn't parse configuration file %s", s.ConfigFile)
	}

	known := map[string]setting{}
	for _, st := range settings {
		known[st.key] = st
	}
	keys := tree.Keys()
	sort.Strings(keys)
	for _, key := range keys {
		st, ok := known[key]
		if !ok {
			return errors.Errorf("%s: unknown setting %q", s.ConfigFile, key)
		}
		v := fmt.Sprint(tree.Get(key))
		if err := st.set(s, v); err != nil {
			return errors.Wrapf(err, "%s: %s", s.ConfigFile, key)
		}
	}
	return nil
}

// AddFlags binds flags to the given flagset.
func (s *EnvSettings) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&s.Debug, "debug", s.Debug, "enable verbose output")
	fs.BoolVar(&s.NoColors, "no-color", s.NoColors, "disable colors")
	fs.BoolVar(&s.NoEmojis, "no-emoji", s.NoEmojis, "disable emojis")
	fs.StringVar(&s.Solver, "solver", s.Solver, "command line of the MaxSAT solver to run, the built-in one if empty")
	fs.DurationVar(&s.Timeout, "timeout", s.Timeout, "wall clock limit of a solver run, 0 for none")
	fs.DurationVar(&s.CPUTime, "cpu-time", s.CPUTime, "CPU time limit of a solver run, 0 for none")
	fs.Var(&s.MaxMemory, "max-memory", "memory limit of a solver run, like 512MiB, 0 for none")
	fs.StringVar(&s.Criteria, "criteria", s.Criteria, "optimisation criteria, like -removed,-new; \"none\" for any solution")
	fs.StringVar(&s.LogFormat, "log-format", s.LogFormat, "log format: text or json")
	fs.IntVarP(&s.Jobs, "jobs", "j", s.Jobs, "number of problems solved concurrently by batch")
}

// EnvVars returns the current settings keyed by environment variable.
func (s *EnvSettings) EnvVars() map[string]string {
	envvars := map[string]string{ConfigEnvVar: s.ConfigFile}
	for _, st := range settings {
		envvars[envVarName(st.key)] = st.get(s)
	}
	return envvars
}

// Validate returns the problems found while loading the settings, and
// checks the values.
func (s *EnvSettings) Validate() error {
	errs := append([]string{}, s.loadErrs...)
	if s.LogFormat != LogFormatText && s.LogFormat != LogFormatJSON {
		errs = append(errs, fmt.Sprintf("unknown log format %q", s.LogFormat))
	}
	if s.Jobs < 1 {
		errs = append(errs, fmt.Sprintf("jobs must be at least 1, got %d", s.Jobs))
	}
	if s.Timeout < 0 || s.CPUTime < 0 {
		errs = append(errs, "time limits can't be negative")
	}
	if len(errs) > 0 {
		return errors.Errorf("invalid settings: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Limits returns the resource ceilings of one solver run.
func (s *EnvSettings) Limits() sat.Limits {
	return sat.Limits{
		Timeout:   s.Timeout,
		CPUTime:   s.CPUTime,
		MaxMemory: int64(s.MaxMemory),
	}
}

// ByteSize is a memory size flag accepting human readable sizes such as
// "512MiB" or "2g".
type ByteSize int64

func (b *ByteSize) String() string {
	if *b == 0 {
		return "0"
	}
	return units.BytesSize(float64(*b))
}

func (b *ByteSize) Set(s string) error {
	n, err := units.RAMInBytes(s)
	if err != nil {
		return err
	}
	if n < 0 {
		return errors.Errorf("negative size %q", s)
	}
	*b = ByteSize(n)
	return nil
}

func (b *ByteSize) Type() string {
	return "size"
}

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

package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Masterminds/log-go"
	logcli "github.com/Masterminds/log-go/impl/cli"
	loglogrus "github.com/Masterminds/log-go/impl/logrus"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rancher-sandbox/depsolver/internal/pkg"
	"github.com/rancher-sandbox/depsolver/internal/sat"
	"github.com/rancher-sandbox/depsolver/internal/solver"
	"github.com/rancher-sandbox/depsolver/pkg/cli"
	"github.com/rancher-sandbox/depsolver/pkg/eyecandy"
)

var settings = cli.New()

// Exit codes.
const (
	exitFailure = 1 // anything else, including sequencing bugs
	exitUnsat   = 2 // no configuration satisfies the request
	exitSolver  = 3 // the solver failed or hit a resource ceiling
	exitInput   = 4 // invalid model or contradictory request
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, err := newRootCmd(os.Stdout, os.Args[1:])
	if err != nil {
		log.Error(err)
		os.Exit(exitFailure)
	}

	if err := cmd.ExecuteContext(ctx); err != nil {
		log.Error(eyecandy.ESPrintf(settings.NoEmojis, ":boom: %s", err))
		stop()
		os.Exit(exitCode(err))
	}
}

// unsatError is returned by commands after printing an UNSAT result.
type unsatError struct {
	inconsistencies []string
}

func (e *unsatError) Error() string {
	msg := "no configuration satisfies the request"
	if len(e.inconsistencies) > 0 {
		msg += ":"
		for _, i := range e.inconsistencies {
			msg += "\n  " + i
		}
	}
	return msg
}

func exitCode(err error) int {
	var (
		ue *unsatError
		sf *sat.SolverFailure
		me *pkg.ModelError
		rc *solver.RequestConflict
	)
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ue):
		return exitUnsat
	case errors.As(err, &sf):
		return exitSolver
	case errors.As(err, &me), errors.As(err, &rc):
		return exitInput
	}
	return exitFailure
}

// newLogger returns the logger for the settings: plain text on the
// terminal, or logrus JSON entries on errOut.
func newLogger(out, errOut io.Writer) log.Logger {
	if settings.LogFormat == cli.LogFormatJSON {
		l := logrus.New()
		l.SetOutput(errOut)
		l.SetFormatter(&logrus.JSONFormatter{})
		l.SetLevel(logrus.InfoLevel)
		if settings.Debug {
			l.SetLevel(logrus.DebugLevel)
		}
		return loglogrus.New(l)
	}

	l := logcli.NewStandard()
	l.InfoOut = out
	l.WarnOut = errOut
	l.ErrorOut = errOut
	l.DebugOut = errOut
	l.Level = log.InfoLevel
	if settings.Debug {
		l.Level = log.DebugLevel
	}
	return l
}

// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dashpay/dashcore-lib/internal/version"
	"github.com/dashpay/dashcore-lib/mnlist/store"
)

// mnlistctlMain is the real main function for mnlistctl.  It is necessary to
// work around the fact that deferred functions do not run when os.Exit() is
// called.
func mnlistctlMain() error {
	// Load configuration and parse command line.  This function also
	// initializes logging and configures it accordingly.
	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	cfg, args, err := loadConfig(appName, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		var e errSuppressUsage
		if !errors.As(err, &e) {
			fmt.Fprintf(os.Stderr, "Use %s -h to show usage\n", appName)
		}
		return err
	}
	defer func() {
		if logRotator != nil {
			logRotator.Close()
		}
	}()

	if len(args) == 0 {
		err := errors.New("no command specified")
		fmt.Fprintf(os.Stderr, "%v\n\n%s\n", err, commandsUsage)
		return err
	}

	ctx := shutdownListener()

	ctlLog.Debugf("Version %s (Go version %s)", version.String(),
		runtime.Version())
	ctlLog.Debugf("Opening masternode list database in %s", cfg.DataDir)
	db, err := store.OpenDB(cfg.DataDir)
	if err != nil {
		ctlLog.Errorf("%v", err)
		return err
	}
	defer db.Close()

	c := &cmdContext{cfg: cfg, db: db, w: os.Stdout}
	if err := runCommand(ctx, c, args[0], args[1:]); err != nil {
		ctlLog.Errorf("%v", err)
		return err
	}
	return nil
}

func main() {
	if err := mnlistctlMain(); err != nil {
		os.Exit(1)
	}
}

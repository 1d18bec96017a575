// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Mnlistctl maintains a persistent window of deterministic masternode lists built
from masternode list diffs and verifies chain locks and instant locks against
it.

Usage:

	mnlistctl [OPTIONS] <command> [<args...>]

Application Options:

	-V, --version          Display version information and exit
	-C, --configfile=      Path to configuration file
	-b, --datadir=         Directory to store the masternode list database
	    --logdir=          Directory to log output
	    --nofilelogging    Disable file logging
	-d, --debuglevel=      Logging level for all subsystems {trace, debug,
	                       info, warn, error, critical} -- You may also specify
	                       <subsystem>=<level>,<subsystem2>=<level>,... to set
	                       the log level for individual subsystems -- Use show
	                       to list available subsystems (info)
	    --testnet          Use the test network
	    --regnet           Use the regression test network
	    --devnet=          Use the named development network
	    --maxdiffs=        Number of diffs kept above the base masternode list
	                       (100)
	    --cachesize=       Number of replayed masternode lists kept in memory
	                       (16)
	    --pver=            Protocol version of the diffs passed to the load
	                       command (70228)

Commands:

	load <file>          Apply the hex encoded diffs of file, one per line
	info                 Show the heights of the stored masternode lists
	list [height]        Show the masternodes of the list at height or the tip
	quorums [height]     Show the quorums of the list at height or the tip
	verify-quorums       Verify the signatures of the quorums of the tip list
	verify-clsig <hex>   Verify a serialized chain lock
	verify-islock <hex>  Verify a serialized instant lock

The first diff loaded into an empty database must be a diff from the empty
list.  Diffs loaded later must extend the stored tip.
*/
package main

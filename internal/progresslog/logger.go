// Copyright (c) 2015-2021 The Decred developers
// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package progresslog

import (
	"sync"
	"time"

	"github.com/dashpay/dashcore-lib/wire"
	"github.com/decred/slog"
)

// logInterval is the minimum time between two progress messages.
const logInterval = 10 * time.Second

// pickNoun returns the singular or plural form of a noun depending on the
// provided count.
func pickNoun(n uint64, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}

// DiffLogger provides periodic logging of progress towards some action
// involving masternode list diffs such as loading them into a store.
type DiffLogger struct {
	sync.Mutex
	subsystemLogger slog.Logger
	progressAction  string

	// lastLogTime tracks the last time a log statement was shown.
	lastLogTime time.Time

	// These fields accumulate information about diffs between log
	// statements.
	receivedDiffs          uint64
	receivedMNs            uint64
	receivedDeletedMNs     uint64
	receivedQuorums        uint64
	receivedDeletedQuorums uint64
}

// New returns a new diff progress logger.
func New(progressAction string, logger slog.Logger) *DiffLogger {
	return &DiffLogger{
		lastLogTime:     time.Now(),
		progressAction:  progressAction,
		subsystemLogger: logger,
	}
}

// LogProgress accumulates details for the provided diff which leads to the
// block at height and periodically (every 10 seconds) logs an information
// message to show progress to the user along with duration and totals
// included.
//
// The force flag may be used to force a log message to be shown regardless of
// the time the last one was shown.
//
// The progress message is templated as follows:
//
//	{progressAction} {numProcessed} {diffs|diff} in the last {timePeriod}
//	({numMNs} {masternodes|masternode} updated, {numDeleted} removed,
//	{numQuorums} {quorums|quorum} formed, {numDeletedQuorums} removed,
//	height {lastHeight})
func (l *DiffLogger) LogProgress(diff *wire.MsgMnListDiff, height uint32, forceLog bool) {
	l.Lock()
	defer l.Unlock()

	l.receivedDiffs++
	l.receivedMNs += uint64(len(diff.MNList))
	l.receivedDeletedMNs += uint64(len(diff.DeletedMNs))
	l.receivedQuorums += uint64(len(diff.NewQuorums))
	l.receivedDeletedQuorums += uint64(len(diff.DeletedQuorums))
	now := time.Now()
	duration := now.Sub(l.lastLogTime)
	if !forceLog && duration < logInterval {
		return
	}

	l.subsystemLogger.Infof("%s %d %s in the last %0.2fs (%d %s updated, "+
		"%d removed, %d %s formed, %d removed, height %d)",
		l.progressAction, l.receivedDiffs,
		pickNoun(l.receivedDiffs, "diff", "diffs"), duration.Seconds(),
		l.receivedMNs, pickNoun(l.receivedMNs, "masternode", "masternodes"),
		l.receivedDeletedMNs, l.receivedQuorums,
		pickNoun(l.receivedQuorums, "quorum", "quorums"),
		l.receivedDeletedQuorums, height)

	l.receivedDiffs = 0
	l.receivedMNs = 0
	l.receivedDeletedMNs = 0
	l.receivedQuorums = 0
	l.receivedDeletedQuorums = 0
	l.lastLogTime = now
}

// SetLastLogTime updates the last time data was logged to the provided time.
func (l *DiffLogger) SetLastLogTime(time time.Time) {
	l.Lock()
	l.lastLogTime = time
	l.Unlock()
}

// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dashpay/dashcore-lib/dashutil"
	"github.com/dashpay/dashcore-lib/internal/progresslog"
	"github.com/dashpay/dashcore-lib/locks"
	"github.com/dashpay/dashcore-lib/mnlist"
	"github.com/dashpay/dashcore-lib/mnlist/store"
	"github.com/dashpay/dashcore-lib/wire"
	"github.com/syndtr/goleveldb/leveldb"
)

// commandsUsage describes the commands understood by mnlistctl.
const commandsUsage = `Commands:
  load <file>          Apply the hex encoded diffs of file, one per line
  info                 Show the heights of the stored masternode lists
  list [height]        Show the masternodes of the list at height or the tip
  quorums [height]     Show the quorums of the list at height or the tip
  verify-quorums       Verify the signatures of the quorums of the tip list
  verify-clsig <hex>   Verify a serialized chain lock
  verify-islock <hex>  Verify a serialized instant lock`

// cmdContext houses the state shared by the command handlers.
type cmdContext struct {
	cfg *config
	db  *leveldb.DB
	w   io.Writer
}

// storeConfig returns the store configuration described by the options.
func (c *cmdContext) storeConfig() *store.Config {
	return &store.Config{
		Params:    c.cfg.params,
		MaxDiffs:  c.cfg.MaxDiffs,
		CacheSize: c.cfg.CacheSize,
		DB:        c.db,
	}
}

// commandHandler describes a callback function used to handle a command.
type commandHandler func(ctx context.Context, c *cmdContext, args []string) error

// command describes a command along with the range of arguments it accepts.
type command struct {
	minArgs int
	maxArgs int
	handler commandHandler
}

// commands maps command names to their handlers.
var commands = map[string]command{
	"load":           {1, 1, handleLoad},
	"info":           {0, 0, handleInfo},
	"list":           {0, 1, handleList},
	"quorums":        {0, 1, handleQuorums},
	"verify-quorums": {0, 0, handleVerifyQuorums},
	"verify-clsig":   {1, 1, handleVerifyCLSig},
	"verify-islock":  {1, 1, handleVerifyISLock},
}

// runCommand runs the named command with the passed arguments.
func runCommand(ctx context.Context, c *cmdContext, name string, args []string) error {
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q\n\n%s", name, commandsUsage)
	}
	if len(args) < cmd.minArgs || len(args) > cmd.maxArgs {
		return fmt.Errorf("wrong number of arguments for command %q\n\n%s",
			name, commandsUsage)
	}
	return cmd.handler(ctx, c, args)
}

// readDiffs reads the hex encoded diffs of r, one per line.  Empty lines and
// lines starting with # are skipped.
func readDiffs(r io.Reader, pver uint32) ([]*wire.MsgMnListDiff, error) {
	// A hex encoded diff may be as large as twice the maximum message
	// payload.
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 2*wire.MaxMessagePayload+2)

	var diffs []*wire.MsgMnListDiff
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		b, err := hex.DecodeString(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		diff, err := wire.MsgMnListDiffFromBytes(b, pver)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		diffs = append(diffs, diff)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return diffs, nil
}

// openStore loads the store from the database.  A nil store is returned when
// the database holds no masternode lists.
func openStore(c *cmdContext) (*store.Store, error) {
	s, err := store.Load(c.storeConfig())
	if errors.Is(err, store.ErrStoreEmpty) {
		return nil, nil
	}
	return s, err
}

// mustOpenStore loads the store from the database and fails when it holds no
// masternode lists.
func mustOpenStore(c *cmdContext) (*store.Store, error) {
	s, err := openStore(c)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errors.New("no masternode lists stored -- use the " +
			"load command first")
	}
	return s, nil
}

// handleLoad applies the diffs of the file to the stored lists.  The first
// diff of the file initializes the store when it is empty.
func handleLoad(ctx context.Context, c *cmdContext, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	diffs, err := readDiffs(f, c.cfg.ProtocolVersion)
	f.Close()
	if err != nil {
		return fmt.Errorf("unable to read diffs from %s: %w", args[0], err)
	}
	if len(diffs) == 0 {
		return fmt.Errorf("no diffs in %s", args[0])
	}

	s, err := openStore(c)
	if err != nil {
		return err
	}

	progress := progresslog.New("Applied", ctlLog)
	for i, diff := range diffs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if s == nil {
			s, err = store.New(c.storeConfig(), diff)
		} else {
			err = s.AddDiff(diff)
		}
		if err != nil {
			return fmt.Errorf("unable to apply diff for block %v: %w",
				diff.BlockHash, err)
		}
		progress.LogProgress(diff, s.TipHeight(), i == len(diffs)-1)
	}

	fmt.Fprintf(c.w, "Tip %v at height %d\n", s.TipHash(), s.TipHeight())
	return nil
}

// handleInfo shows the range of heights of the stored lists.
func handleInfo(_ context.Context, c *cmdContext, _ []string) error {
	s, err := mustOpenStore(c)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.w, "Network:     %s\n", s.Params().Name)
	fmt.Fprintf(c.w, "Base height: %d\n", s.BaseHeight())
	fmt.Fprintf(c.w, "Tip height:  %d\n", s.TipHeight())
	fmt.Fprintf(c.w, "Tip hash:    %v\n", s.TipHash())
	fmt.Fprintf(c.w, "Diffs:       %d\n", s.NumDiffs())
	return nil
}

// listAt returns the list at the height given by the optional argument or the
// tip list.
func listAt(s *store.Store, args []string) (*mnlist.MnList, error) {
	if len(args) == 0 {
		return s.CurrentMnList(), nil
	}
	height, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid height %q: %w", args[0], err)
	}
	return s.MnListByHeight(uint32(height))
}

// handleList shows the masternodes of a list.
func handleList(_ context.Context, c *cmdContext, args []string) error {
	s, err := mustOpenStore(c)
	if err != nil {
		return err
	}
	l, err := listAt(s, args)
	if err != nil {
		return err
	}

	params := s.Params()
	fmt.Fprintf(c.w, "Masternode list at height %d (block %v)\n", l.Height(),
		l.BlockHash())
	for _, e := range l.Entries() {
		fmt.Fprintf(c.w, "%v %v valid=%t type=%v voting=%s", e.ProRegTxHash,
			e.Service, e.IsValid, e.Type, dashutil.VotingAddress(e, params))
		if e.Platform != nil {
			fmt.Fprintf(c.w, " platform=%s:%d", e.Platform.NodeIDString(),
				e.Platform.HTTPPort)
		}
		fmt.Fprintln(c.w)
	}
	fmt.Fprintf(c.w, "%d masternodes, %d valid\n", l.Len(),
		len(l.ValidMasternodes()))

	payload, err := l.CbTx().CbTx()
	if err != nil {
		return err
	}
	if payload.Version >= 3 {
		fmt.Fprintf(c.w, "Credit pool balance: %v\n",
			dashutil.Amount(payload.CreditPoolBalance))
	}
	return nil
}

// handleQuorums shows the quorums of a list.
func handleQuorums(_ context.Context, c *cmdContext, args []string) error {
	s, err := mustOpenStore(c)
	if err != nil {
		return err
	}
	l, err := listAt(s, args)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.w, "Quorums at height %d (block %v)\n", l.Height(),
		l.BlockHash())
	for _, q := range l.Quorums() {
		key := wire.QuorumKey{LLMQType: q.LLMQType, QuorumHash: q.QuorumHash}
		state, _ := l.QuorumState(key)
		fmt.Fprintf(c.w, "%v %v signers=%d valid=%d verified=%t "+
			"outdated=%t\n", q.LLMQType, q.QuorumHash, q.SignersCount,
			q.ValidMembersCount, state.IsVerified(), q.IsOutdated())
	}
	return nil
}

// handleVerifyQuorums verifies the signatures of the quorums of the tip list
// against the lists at their quorum blocks.
func handleVerifyQuorums(ctx context.Context, c *cmdContext, _ []string) error {
	s, err := mustOpenStore(c)
	if err != nil {
		return err
	}
	l := s.CurrentMnList()
	invalid, err := l.VerifyQuorums(ctx, s.MnListByHash)
	if err != nil {
		return err
	}
	for _, key := range invalid {
		fmt.Fprintf(c.w, "Quorum %v %v has invalid signatures\n",
			key.LLMQType, key.QuorumHash)
	}
	fmt.Fprintf(c.w, "%d of %d quorums valid\n", len(l.Quorums())-len(invalid),
		len(l.Quorums()))
	return nil
}

// printResult writes whether the lock is valid.
func printResult(w io.Writer, kind locks.Kind, hash fmt.Stringer, valid bool) {
	result := "invalid"
	if valid {
		result = "valid"
	}
	fmt.Fprintf(w, "%v %v: %s\n", kind, hash, result)
}

// handleVerifyCLSig verifies a serialized chain lock.
func handleVerifyCLSig(ctx context.Context, c *cmdContext, args []string) error {
	b, err := hex.DecodeString(args[0])
	if err != nil {
		return err
	}
	clsig, err := wire.MsgCLSigFromBytes(b)
	if err != nil {
		return err
	}
	s, err := mustOpenStore(c)
	if err != nil {
		return err
	}
	valid, err := locks.VerifyChainLock(ctx, s, nil, clsig)
	if err != nil {
		return err
	}
	printResult(c.w, locks.ChainLock, clsig.Hash(), valid)
	return nil
}

// handleVerifyISLock verifies a serialized instant lock.
func handleVerifyISLock(ctx context.Context, c *cmdContext, args []string) error {
	b, err := hex.DecodeString(args[0])
	if err != nil {
		return err
	}
	islock, err := wire.MsgISLockFromBytes(b)
	if err != nil {
		return err
	}
	s, err := mustOpenStore(c)
	if err != nil {
		return err
	}
	valid, err := locks.VerifyInstantLock(ctx, s, nil, islock)
	if err != nil {
		return err
	}
	printResult(c.w, locks.InstantLock, islock.Hash(), valid)
	return nil
}

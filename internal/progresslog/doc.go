// Copyright (c) 2020 The Decred developers
// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package progresslog provides periodic logging for masternode list diff
processing.

## Feature Overview

- Maintains cumulative totals about diffs between each logging interval
  - Total number of diffs
  - Total number of added and removed masternodes
  - Total number of formed and removed quorums
- Logs all cumulative data every 10 seconds
- Immediately logs any outstanding data when forced
*/
package progresslog

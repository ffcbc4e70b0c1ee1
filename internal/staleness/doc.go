// Package staleness classifies services by whether their registry carries a
// recent "sc-<YYYYMMDD>-<sha>" tag.
//
// Services without a qualifying tag are stale and feed remediation. Matches
// keep registry listing order; the first match is reported as the latest.
package staleness

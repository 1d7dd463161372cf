// Package cfg provides control-flow-graph canonicalization utilities.
//
// Inlining splits caller blocks at every spliced call site, leaving
// chains of trivially-split blocks behind. MergeBlocks re-merges a
// block with its sole successor when that successor has no other
// predecessors, restoring a canonical CFG before later passes run.
package cfg

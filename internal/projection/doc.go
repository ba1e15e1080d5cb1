// Package projection turns a raw collection snapshot into the views the lists
// are rendered from: search filtering, multi-key sorting, completion
// partitioning, grouping by store or recipient, and the derived counters.
//
// Every function is pure. Inputs are never mutated and outputs are freshly
// allocated, so a snapshot can be projected concurrently by any number of
// callers. The pipeline order is always filter, sort, partition, group.
package projection

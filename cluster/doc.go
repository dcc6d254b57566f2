// Package cluster implements the three clustering strategies the pipeline
// runs over a projection (or the raw embedding matrix): density-based with
// a noise sentinel, k-means with automatic cluster-count selection by
// silhouette score, and agglomerative clustering with Ward linkage.
//
// All strategies are deterministic for a fixed input and seed, and every
// label assignment preserves row order: label i belongs to record i.
package cluster

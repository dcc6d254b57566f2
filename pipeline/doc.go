// Package pipeline orchestrates the full clustering run: corpus load,
// batched embedding, dimensionality reduction, the three clustering
// strategies, LLM keyword labeling, and output writing.
//
// Every expensive stage persists its artifact to the storage.ArtifactStore
// together with a provenance document describing the inputs it was computed
// from. On the next run a stage's artifact is reused only when the stored
// provenance matches the current inputs exactly; any mismatch, missing key,
// or parse failure counts as a cache miss and the stage recomputes. The
// labeling stage additionally checkpoints after every cluster so an
// interrupted run resumes mid-strategy.
package pipeline

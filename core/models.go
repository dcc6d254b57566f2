package core

import "slices"

// NoiseLabel is the reserved cluster id for points the density-based
// strategy leaves unassigned. It is negative so it can never collide with
// the non-negative ids produced by the partitioning and hierarchical
// strategies.
const NoiseLabel = -1

// Record represents a single deduplicated bookmark title within a run.
// Id is assigned densely in first-seen order and is the index into every
// downstream parallel array (embeddings, projections, labels). That
// positional alignment must never be broken by filtering or reordering
// after load.
type Record struct {
	Id       int    `json:"id"`
	Title    string `json:"title"`
	Link     string `json:"link"`
	Date     string `json:"date"`
	Source   string `json:"source"`
	DupCount int    `json:"dup_count"`
}

// Matrix holds one row per record, same order as the record list.
type Matrix [][]float32

// Rows returns the number of rows in the matrix.
func (m Matrix) Rows() int {
	return len(m)
}

// Labels holds one cluster id per record, same order as the record list.
type Labels []int

// ClusterIDs returns the sorted set of distinct cluster ids present.
func (l Labels) ClusterIDs() []int {
	seen := map[int]bool{}
	ids := []int{}
	for _, lbl := range l {
		if !seen[lbl] {
			seen[lbl] = true
			ids = append(ids, lbl)
		}
	}
	slices.Sort(ids)
	return ids
}

// ClusterSummary describes one cluster of a label assignment.
//
// LLMKeywords distinguishes "never attempted" (nil) from "attempted but the
// model returned nothing usable" (empty non-nil slice). The labeling stage
// relies on this distinction when deciding what to resume.
type ClusterSummary struct {
	Cluster      int      `json:"cluster"`
	Size         int      `json:"size"`
	SampleTitles []string `json:"sample_titles"`
	// No omitempty: an attempted-but-empty list must survive the JSON
	// round-trip as [] while never-attempted stays null.
	LLMKeywords []string `json:"llm_keywords"`
}

// Attempted reports whether keyword labeling was ever attempted for this
// cluster, regardless of whether it produced keywords.
func (s *ClusterSummary) Attempted() bool {
	return s.LLMKeywords != nil
}

// RunMeta records the provenance of a run's embedding artifact. It is the
// validity key for the embedding cache and doubles as the run-level
// metadata document.
type RunMeta struct {
	Year       int    `json:"year"`
	Model      string `json:"model"`
	Host       string `json:"host"`
	CorpusHash string `json:"corpus_hash"`
	Count      int    `json:"count"`
}

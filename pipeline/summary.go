// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package pipeline

import (
	"github.com/poiesic/topical/core"
)

// sampleTitleCount is how many example titles a cluster summary carries.
const sampleTitleCount = 5

// Summarize builds one summary per cluster id present in labels, in
// ascending id order (the noise cluster, if any, comes first). Sample
// titles keep record order. Summaries are always rebuilt from the current
// records and labels; only their keyword fields are ever resumed.
func Summarize(records []*core.Record, labels core.Labels) []*core.ClusterSummary {
	sizes := map[int]int{}
	samples := map[int][]string{}
	for i, lbl := range labels {
		sizes[lbl]++
		if len(samples[lbl]) < sampleTitleCount {
			samples[lbl] = append(samples[lbl], records[i].Title)
		}
	}

	summaries := []*core.ClusterSummary{}
	for _, id := range labels.ClusterIDs() {
		summaries = append(summaries, &core.ClusterSummary{
			Cluster:      id,
			Size:         sizes[id],
			SampleTitles: samples[id],
		})
	}
	return summaries
}

// clusterTitles collects up to max titles per cluster id, in record order.
func clusterTitles(records []*core.Record, labels core.Labels, max int) map[int][]string {
	titles := map[int][]string{}
	for i, lbl := range labels {
		if len(titles[lbl]) < max {
			titles[lbl] = append(titles[lbl], records[i].Title)
		}
	}
	return titles
}

// summariesComplete reports whether a stored summary document covers the
// current label assignment: the stored cluster-id set must equal the set
// present in labels, and when keyword labeling is requested every entry
// must carry at least one keyword.
func summariesComplete(stored []*core.ClusterSummary, labels core.Labels, requireKeywords bool) bool {
	ids := labels.ClusterIDs()
	if len(stored) != len(ids) {
		return false
	}

	current := map[int]bool{}
	for _, id := range ids {
		current[id] = true
	}
	seen := map[int]bool{}
	for _, summary := range stored {
		if !current[summary.Cluster] || seen[summary.Cluster] {
			return false
		}
		if requireKeywords && len(summary.LLMKeywords) == 0 {
			return false
		}
		seen[summary.Cluster] = true
	}
	return true
}

package rag

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatResponse renders the final markdown response: a question/answer
// header followed by a sources section grouping citations by document.
func FormatResponse(question, answer string, sources []Source) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("**Question:** %s\n", question))
	b.WriteString(fmt.Sprintf("**Answer:** %s\n", answer))
	b.WriteString(SourcesSection(sources))
	return b.String()
}

// SourcesSection renders the citations block. Sources are grouped by
// document name in first-seen order; each line lists the document's distinct
// chunk indices in insertion order and the mean similarity across that
// document's contributing chunks, rendered as a percentage. An empty source
// list yields an empty string.
func SourcesSection(sources []Source) string {
	if len(sources) == 0 {
		return ""
	}

	type docGroup struct {
		chunkIndices  []int
		similaritySum float64
		count         int
	}

	order := make([]string, 0, len(sources))
	groups := make(map[string]*docGroup)

	for _, source := range sources {
		group, ok := groups[source.Name]
		if !ok {
			group = &docGroup{}
			groups[source.Name] = group
			order = append(order, source.Name)
		}

		duplicate := false
		for _, idx := range group.chunkIndices {
			if idx == source.ChunkIndex {
				duplicate = true
				break
			}
		}
		if !duplicate {
			group.chunkIndices = append(group.chunkIndices, source.ChunkIndex)
		}

		group.similaritySum += float64(source.Similarity)
		group.count++
	}

	var b strings.Builder
	b.WriteString("\n**Sources:**\n")
	for _, name := range order {
		group := groups[name]

		indices := make([]string, len(group.chunkIndices))
		for i, idx := range group.chunkIndices {
			indices[i] = strconv.Itoa(idx)
		}

		avg := group.similaritySum / float64(group.count)
		b.WriteString(fmt.Sprintf("- %s (chunks: %s, relevance: %.2f%%)\n",
			name, strings.Join(indices, ", "), avg*100))
	}
	return b.String()
}

package extract

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/qabase/qabase/core"
)

// minPairLength is the minimum rune count for both the question and the
// answer of a labeled pair. Shorter fragments are almost always noise
// from headers or page furniture.
const minPairLength = 5

// minParagraphLength is the minimum rune count for a paragraph to be kept
// by the unlabeled fallback.
const minParagraphLength = 50

// patternStrategy pairs a marker expression, which locates the start of
// each candidate Q&A block, with a pair expression applied to the block.
// Splitting on marker positions first stands in for lookahead, which the
// regexp package does not support.
type patternStrategy struct {
	name   string
	marker *regexp.Regexp
	pair   *regexp.Regexp
}

var patternStrategies = []patternStrategy{
	{
		name:   "q-a-labels",
		marker: regexp.MustCompile(`(?i)Q[.:]`),
		pair:   regexp.MustCompile(`(?is)^Q[.:]\s*(.+?)\s*A[.:]\s*(.+)`),
	},
	{
		name:   "japanese-labels",
		marker: regexp.MustCompile(`質問`),
		pair:   regexp.MustCompile(`(?is)^質問[.:：\s](.+?)\s*回答[.:：\s](.+)`),
	},
	{
		name:   "bracketed-labels",
		marker: regexp.MustCompile(`【質問】`),
		pair:   regexp.MustCompile(`(?is)^【質問】\s*(.+?)\s*【回答】\s*(.+)`),
	},
	{
		name:   "numbered-labels",
		marker: regexp.MustCompile(`(?i)Q[0-9]+`),
		pair:   regexp.MustCompile(`(?is)^Q[0-9]+[.:]\s*(.+?)\s*A[0-9]+[.:]\s*(.+)`),
	},
}

// ExtractPairs scans free-form text for labeled question/answer pairs.
// Every pattern strategy runs over the full text and all hits are kept,
// including duplicates found by more than one strategy. When no strategy
// matches anything, the text falls back to paragraph splitting.
func ExtractPairs(text, source string) []core.QARecord {
	var records []core.QARecord

	for _, strategy := range patternStrategies {
		for _, segment := range segmentByMarker(text, strategy.marker) {
			match := strategy.pair.FindStringSubmatch(segment)
			if match == nil {
				continue
			}

			question := strings.TrimSpace(match[1])
			answer := strings.TrimSpace(match[2])
			if utf8.RuneCountInString(question) <= minPairLength ||
				utf8.RuneCountInString(answer) <= minPairLength {
				continue
			}

			records = append(records, core.QARecord{
				Question: question,
				Answer:   answer,
				Source:   source,
			})
		}
	}

	if len(records) > 0 {
		return records
	}

	return paragraphFallback(text, source)
}

// segmentByMarker splits text into segments that each begin at a marker
// occurrence and end just before the next one.
func segmentByMarker(text string, marker *regexp.Regexp) []string {
	starts := marker.FindAllStringIndex(text, -1)
	if len(starts) == 0 {
		return nil
	}

	segments := make([]string, 0, len(starts))
	for i, loc := range starts {
		end := len(text)
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}
		segments = append(segments, text[loc[0]:end])
	}
	return segments
}

// paragraphFallback treats every sufficiently long paragraph as an answer
// in its own right, with a synthetic question naming its position in the
// document. This keeps unlabeled documents searchable.
func paragraphFallback(text, source string) []core.QARecord {
	var paragraphs []string
	for _, paragraph := range strings.Split(text, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if utf8.RuneCountInString(paragraph) > minParagraphLength {
			paragraphs = append(paragraphs, paragraph)
		}
	}

	records := make([]core.QARecord, 0, len(paragraphs))
	for i, paragraph := range paragraphs {
		records = append(records, core.QARecord{
			Question: fmt.Sprintf("%s - section %d", source, i+1),
			Answer:   paragraph,
			Source:   source,
		})
	}
	return records
}

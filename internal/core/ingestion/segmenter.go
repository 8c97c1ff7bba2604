package ingestion

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mayowa-kalejaiye/docstream/internal/models"
)

// sentenceBoundary marks the end of a sentence: terminal punctuation
// followed by whitespace. Abbreviations and decimal numbers can mis-split;
// that approximation is intentional and matched by the overlap logic below.
var sentenceBoundary = regexp.MustCompile(`([.!?])\s+`)

// overlapSentences is how many trailing sentences of a closed segment seed
// the next one, preserving cross-segment context for retrieval.
const overlapSentences = 3

// Segmenter splits normalized text into overlapping, bounded-size segments
// at sentence boundaries. It is a pure function of its inputs: identical
// text and settings always yield identical segments.
type Segmenter struct {
	maxSize int
}

func NewSegmenter(maxSize int) *Segmenter {
	if maxSize <= 0 {
		maxSize = 2000
	}
	return &Segmenter{maxSize: maxSize}
}

// Segment greedily packs sentences into segments of at most maxSize
// characters. A single sentence longer than maxSize becomes its own
// segment rather than being split mid-sentence. Positions are contiguous
// starting at 1 and segment IDs are "{documentName}_segment_{position}".
func (s *Segmenter) Segment(text, documentName string) []models.Segment {
	var segments []models.Segment

	sentences := splitSentences(text)
	current := ""
	position := 0

	for _, sentence := range sentences {
		// Close the running segment when this sentence would push it past
		// the limit; an empty buffer always accepts the sentence.
		if len(current)+len(sentence) > s.maxSize && current != "" {
			position++
			segments = append(segments, models.Segment{
				ID:       fmt.Sprintf("%s_segment_%d", documentName, position),
				Content:  strings.TrimSpace(current),
				Position: position,
			})

			// Seed the next segment with the last few sentences of the one
			// just closed. The naive ". " split is deliberate.
			parts := strings.Split(current, ". ")
			keep := overlapSentences
			if len(parts) < keep {
				keep = len(parts)
			}
			overlap := strings.Join(parts[len(parts)-keep:], ". ")
			current = overlap + " " + sentence
		} else if current != "" {
			current += " " + sentence
		} else {
			current = sentence
		}
	}

	if strings.TrimSpace(current) != "" {
		position++
		segments = append(segments, models.Segment{
			ID:       fmt.Sprintf("%s_segment_%d", documentName, position),
			Content:  strings.TrimSpace(current),
			Position: position,
		})
	}

	return segments
}

// splitSentences breaks text on sentence boundaries, keeping the terminal
// punctuation with the preceding sentence.
func splitSentences(text string) []string {
	const sep = "\x1f"
	marked := sentenceBoundary.ReplaceAllString(text, "${1}"+sep)
	return strings.Split(marked, sep)
}

package pipeline

import (
	"auto_slide_deck_generator/generator"
)

// State accumulates everything one run produces. It is owned by a single
// Run call and handed back to the caller when the run ends.
type State struct {
	RunID         string
	Topic         string
	PresenterName string
	TemplateName  string

	SubQueries        []string
	SearchResults     []generator.SearchResult
	SlidePlan         generator.SlidePlan
	StructuredContext generator.StructuredContext
	SlideContents     []generator.SlideContent

	OutputPath  string
	OutlinePath string

	// Err is the error that halted the run, if any.
	Err error
	// Notes records contained failures: skipped queries, missing facts,
	// placeholder slides.
	Notes []string
}

func (s *State) note(msg string) {
	s.Notes = append(s.Notes, msg)
}

package generator

// SearchResult 是一次检索返回的网页片段，URL 为去重键。
type SearchResult struct {
	URL     string  `json:"url"`
	Title   string  `json:"title,omitempty"`
	Content string  `json:"content"`
	Score   float64 `json:"score,omitempty"`
}

// SlidePlan is the fixed 7-title outline of a deck.
type SlidePlan struct {
	Title           string   `json:"title"`
	OverviewTitle   string   `json:"overview_title"`
	AgendaPoints    []string `json:"agenda_points"`
	KeyPoints       []string `json:"key_points"`
	ConclusionTitle string   `json:"conclusion_title"`
}

// ContextTitles 返回可接收事实的幻灯片标题：概览 + 关键点。
func (p SlidePlan) ContextTitles() []string {
	titles := make([]string, 0, len(p.KeyPoints)+1)
	titles = append(titles, p.OverviewTitle)
	return append(titles, p.KeyPoints...)
}

// ContextPoint is one distilled fact and where it came from.
type ContextPoint struct {
	Fact   string `json:"fact"`
	Source string `json:"source"`
}

// StructuredContext buckets facts by slide title.
type StructuredContext struct {
	BySlide map[string][]ContextPoint `json:"context_by_slide"`
}

// Points returns the facts assigned to title, nil when the title has none.
func (c StructuredContext) Points(title string) []ContextPoint {
	if c.BySlide == nil {
		return nil
	}
	return c.BySlide[title]
}

// Fact 是模型返回的扁平事实记录，SlideTitle 决定归属。
type Fact struct {
	Fact       string `json:"fact"`
	Source     string `json:"source"`
	SlideTitle string `json:"slide_title"`
}

// SlideContent is the text of one slide. Bullets may carry **bold** and
// __underline__ markers; a two-space indent marks a sub-point.
type SlideContent struct {
	Title      string   `json:"title"`
	Bullets    []string `json:"bullets"`
	References []string `json:"references,omitempty"`
}

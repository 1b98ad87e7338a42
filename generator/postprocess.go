package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const maxReferences = 2

// decodeJSON 去掉可能的代码块围栏后解码，未知字段视为不合规。
func decodeJSON(raw string, out any) error {
	body := stripFence(strings.TrimSpace(raw))
	if body == "" {
		return errors.New("model returned empty output")
	}
	dec := json.NewDecoder(strings.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode model output: %w", err)
	}
	return nil
}

// stripFence removes a ```json ... ``` wrapper some models add in JSON mode.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

type queryList struct {
	Queries []string `json:"queries"`
}

// decodeQueries 校验检索词列表，空白项会被丢弃。
func decodeQueries(raw string) ([]string, error) {
	var ql queryList
	if err := decodeJSON(raw, &ql); err != nil {
		return nil, err
	}
	queries := compact(ql.Queries)
	if len(queries) == 0 {
		return nil, errors.New("model returned no search queries")
	}
	return queries, nil
}

func decodePlan(raw string) (SlidePlan, error) {
	var plan SlidePlan
	if err := decodeJSON(raw, &plan); err != nil {
		return SlidePlan{}, err
	}
	plan.Title = strings.TrimSpace(plan.Title)
	plan.OverviewTitle = strings.TrimSpace(plan.OverviewTitle)
	plan.ConclusionTitle = strings.TrimSpace(plan.ConclusionTitle)
	plan.KeyPoints = compact(plan.KeyPoints)
	plan.AgendaPoints = compact(plan.AgendaPoints)

	switch {
	case plan.Title == "":
		return SlidePlan{}, errors.New("slide plan has no title")
	case plan.OverviewTitle == "":
		return SlidePlan{}, errors.New("slide plan has no overview title")
	case plan.ConclusionTitle == "":
		return SlidePlan{}, errors.New("slide plan has no conclusion title")
	case len(plan.KeyPoints) != 4:
		return SlidePlan{}, fmt.Errorf("slide plan has %d key points, want 4", len(plan.KeyPoints))
	}
	if len(plan.AgendaPoints) == 0 {
		plan.AgendaPoints = append([]string(nil), plan.KeyPoints...)
	}
	return plan, nil
}

type factList struct {
	Facts []Fact `json:"facts"`
}

func decodeFacts(raw string) ([]Fact, error) {
	var fl factList
	if err := decodeJSON(raw, &fl); err != nil {
		return nil, err
	}
	return fl.Facts, nil
}

// decodeSlide 校验单页内容；标题总是使用大纲中的标题。
func decodeSlide(raw, title string) (SlideContent, error) {
	var sc SlideContent
	if err := decodeJSON(raw, &sc); err != nil {
		return SlideContent{}, err
	}
	bullets := make([]string, 0, len(sc.Bullets))
	for _, b := range sc.Bullets {
		// 保留行首两个空格（子要点），只去掉尾部空白。
		if b = strings.TrimRight(b, " \t\r\n"); strings.TrimSpace(b) != "" {
			bullets = append(bullets, b)
		}
	}
	if len(bullets) == 0 {
		return SlideContent{}, errors.New("slide content has no bullets")
	}
	refs := compact(sc.References)
	if len(refs) > maxReferences {
		refs = refs[:maxReferences]
	}
	return SlideContent{Title: title, Bullets: bullets, References: refs}, nil
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

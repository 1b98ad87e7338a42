package generator

import (
	"fmt"
	"strings"
)

// Prompt 表示发送给 LLM 的消息集合。
type Prompt struct {
	System string
	User   string
	// Schema 非空时要求模型按该 JSON schema 输出。
	Schema *Schema
}

const queryExamples = `### Example 1: Technology / Business
Topic: "Applications of AI in Finance"
- "AI use cases in banking and fintech 2025"
- "Algorithmic trading using machine learning"
- "Fraud detection with AI in banking"
- "Statistics on AI reducing financial fraud and risk"
- "Future of AI in finance and fintech"

### Example 2: History
Topic: "British Rule in India"
- "Economic impact of British rule on India"
- "Social reforms during the British Raj"
- "Indian independence movement key events"
- "Legacy of British colonialism in India"

### Example 3: Science / Health
Topic: "CRISPR Gene Editing"
- "How CRISPR-Cas9 works"
- "Ethical concerns of human gene editing"
- "CRISPR applications in medicine and agriculture"
- "Future of CRISPR technology"

### Example 4: Environment / Social Issues
Topic: "Global Water Scarcity"
- "Causes of global water shortages"
- "Impact of water scarcity on communities: health and migration statistics 2024"
- "Solutions for water conservation and management"
- "Countries most affected by water crisis: recent data and future projections"

### Example 5: Digital Economy
Topic: "The Creator Economy"
- "How the creator economy works on YouTube and TikTok"
- "Monetization strategies for content creators 2024/5"
- "Creator economy market size and growth statistics"
- "Future of creator economy and web3 platforms"`

// BuildQueryPrompt 生成检索词扩展提示词。
func BuildQueryPrompt(topic string) Prompt {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Generate search queries that will find broad and reliable information for a presentation on %q.\n\n", topic))
	sb.WriteString("Instructions:\n")
	sb.WriteString("1. Create 4-5 diverse search queries.\n")
	sb.WriteString("2. Cover: causes, impacts, benchmarks/**statistics**, policies/solutions, and future outlook.\n")
	sb.WriteString("3. **Favor broader keywords and simpler questions** over long, academic questions and try to get statistics (accurate numbers) if possible.\n")
	sb.WriteString("4. Focus on core aspects of the topic that are likely to have good search results. Think in terms of keywords you would use on a search engine.\n\n")
	sb.WriteString("---\n")
	sb.WriteString(queryExamples)
	sb.WriteString("\n---\n\n")
	sb.WriteString(fmt.Sprintf("Based on these instructions and examples, generate the search queries for the topic: %q", topic))

	return Prompt{
		System: "You are an expert research assistant.",
		User:   sb.String(),
		Schema: &queriesSchema,
	}
}

// BuildPlanPrompt 生成 7 页大纲提示词；context 为检索片段或兜底文本。
func BuildPlanPrompt(topic, context string) Prompt {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Transform raw information into a compelling and logical 7-slide plan for a content-rich presentation on the topic: '%s'. ", topic))
	sb.WriteString("Each of the four key point slides must be planned to support 4-6 distinct bullet points.\n\n")
	sb.WriteString("Use the following slide-by-slide guide to structure the entire presentation:\n\n")
	sb.WriteString("Slide 1 (Main Title): The title must be engaging and capture the core theme of the presentation.\n")
	sb.WriteString("Slide 2 (Overview): The title should be straightforward (e.g., 'Overview', 'Our Roadmap'). Its content will be the titles of the four key point slides.\n")
	sb.WriteString("Slide 3 (The Hook): The first key point. Should introduce the core concept or the central problem to establish why the topic is important.\n")
	sb.WriteString("Slide 4 (The Build-Up): The second key point. Should explain the key factors, causes, or processes involved.\n")
	sb.WriteString("Slide 5 (The Core Message): The third key point. Must focus on the most significant impacts, real-world applications, or challenges.\n")
	sb.WriteString("Slide 6 (The Outlook): The fourth key point. Should discuss solutions, future trends, or the lasting legacy.\n")
	sb.WriteString("Slide 7 (Conclusion): The title should be conclusive (e.g., 'Key Takeaways', 'The Path Forward'). It summarizes the main message of the presentation.\n\n")
	sb.WriteString("Crucial Rules for All Titles:\n")
	sb.WriteString("- Be Descriptive: Create engaging, descriptive titles that are specific enough to be filled with 4-6 points.\n")
	sb.WriteString("- Avoid Generic Labels: You must not use generic, one-word titles like \"Introduction,\" \"Impact,\" \"Causes,\" \"Data,\" or \"Conclusion.\"\n")
	sb.WriteString("- Format Requirement: All key point and conclusion titles **must** be in a \"Main Title - Subtitle\" format. The hyphen is essential for the design.\n")
	sb.WriteString("- Format Requirement: All key point and conclusion titles **must be less than 7 words**.\n")
	sb.WriteString("- Good Example: Instead of \"Impact,\" a good title is \"Financial Disruption - The Economic Ripple Effect.\"\n")
	sb.WriteString("- Bad Example: \"Causes.\"\n")
	sb.WriteString("- key_points must contain exactly 4 titles; agenda_points repeats them in order.\n\n")
	sb.WriteString("Context:\n")
	sb.WriteString(context)

	return Prompt{
		System: "You are an expert presentation designer.",
		User:   sb.String(),
		Schema: &slidePlanSchema,
	}
}

// BuildDistillPrompt 生成事实提炼与归类提示词。
func BuildDistillPrompt(topic string, titles []string, results []SearchResult) Prompt {
	var sb strings.Builder
	sb.WriteString("Your task is to extract key facts from the provided context and assign each fact to a relevant slide.\n")
	sb.WriteString(fmt.Sprintf("The presentation is on %q and the slide titles are: %s.\n\n", topic, strings.Join(titles, ", ")))
	sb.WriteString("Raw search snippets:\n")
	for _, r := range results {
		sb.WriteString(fmt.Sprintf("Source: %s\nContent: %s\n", r.URL, r.Content))
	}
	sb.WriteString("\nInstructions:\n")
	sb.WriteString("1. Analyze & Synthesize: Read all snippets. Identify the most important facts, statistics, and key points. Synthesize related information from different sources into a single, well-phrased fact. Do not just copy-paste raw sentences.\n")
	sb.WriteString("2. Categorize with Best Fit: Assign each synthesized fact to only one slide title from the provided list, copied exactly. Choose the category that is the most direct and logical fit.\n")
	sb.WriteString("3. Ensure Uniqueness: Your final output must not contain duplicate or repetitive facts. Each fact should represent a distinct piece of information.\n")
	sb.WriteString("4. Attribute Sources Reliably: Every fact must be paired with its source URL. If a specific source is unclear, use the main URL of the document it came from.\n")
	sb.WriteString("5. Discard Irrelevant Info: If a fact does not clearly align with any of the slide titles, do not include it.\n")
	sb.WriteString("6. Include facts, figures and accurate statistics from the search as much as possible. It is strictly important to **not hallucinate**.\n")
	sb.WriteString("7. Return a flat list of these fact objects.\n")

	return Prompt{
		System: "You are an expert data analyst.",
		User:   sb.String(),
		Schema: &factListSchema,
	}
}

// BuildKeyPointPrompt 生成单页关键点内容提示词，只携带该页的事实。
func BuildKeyPointPrompt(topic, title string, points []ContextPoint) Prompt {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("You are creating a slide titled %q for a presentation on %q.\n", title, topic))
	sb.WriteString("Use ONLY the facts provided below for this specific slide. If context is empty, state that.\n\n")
	sb.WriteString(fmt.Sprintf("Context for %q:\n", title))
	for _, p := range points {
		sb.WriteString(fmt.Sprintf("- %s [Source: %s]\n", p.Fact, p.Source))
	}
	sb.WriteString("\nRules:\n")
	sb.WriteString("- Generate 4-5 bullet points based *only* on the provided context [Exact 4 is the best].\n")
	sb.WriteString("- Synthesize, Don't Just List: Where possible, combine multiple related facts from the context into a single, more insightful bullet point.\n")
	sb.WriteString("- Use the \"Two-Part\" Style: Each bullet point **must** use the \"main phrase – clarifying detail\" format.\n")
	sb.WriteString("- Concise but Complete: The entire bullet point (both parts combined) should be strictly 15-20 words.\n")
	sb.WriteString("- To emphasize key terms, wrap them in bold markdown like this: **word** (use this for the main phrase).\n")
	sb.WriteString("- You can create sub-points for more detailed explanations by indenting a line with two spaces.\n")
	sb.WriteString("- Use __underline markdown__ (`__word__`) to emphasize important names or terms (use this for the clarifying phrase).\n")
	sb.WriteString("- From the context, select the 1-2 most relevant source URLs to list as references.\n")

	return Prompt{
		System: "You write concise, well-sourced presentation slides.",
		User:   sb.String(),
		Schema: &slideContentSchema,
	}
}

// BuildConclusionPrompt 生成结论页提示词，使用全部原始检索内容。
func BuildConclusionPrompt(topic, title string, results []SearchResult) Prompt {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("- You are writing the final conclusion slide titled %q for a presentation on %q.\n", title, topic))
	sb.WriteString("- Your task is to write 3-4 final summary statements that encapsulate the presentation's main points.\n")
	sb.WriteString("- Concise but Complete: The entire bullet point should be strictly 13-16 words.\n")
	sb.WriteString("- These must be declarative sentences summarizing key findings.\n")
	sb.WriteString("- Do NOT give instructions, suggestions, or calls to action.\n")
	sb.WriteString("- To emphasize key terms, wrap them in bold markdown like this: **word**.\n")
	sb.WriteString("- Use __underline markdown__ (`__word__`) to emphasize important names or terms.\n")
	sb.WriteString("- Example of a good takeaway: \"AI-driven algorithms now process over 70% of market trades.\"\n")
	sb.WriteString("- Leave references empty.\n\n")
	sb.WriteString("Use the full context to inform your summary:\n")
	for _, r := range results {
		sb.WriteString("- ")
		sb.WriteString(r.Content)
		sb.WriteString("\n")
	}

	return Prompt{
		System: "You write concise, well-sourced presentation slides.",
		User:   sb.String(),
		Schema: &slideContentSchema,
	}
}

// planContext 拼接检索片段；无结果时给出兜底文本，保证规划阶段仍有输入。
func planContext(topic string, results []SearchResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("General knowledge about %s.", topic)
	}
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, r.Content)
	}
	return strings.Join(parts, "\n")
}

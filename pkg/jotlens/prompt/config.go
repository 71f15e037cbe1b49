package prompt

// Placeholder is replaced by the matched keyword or topic in templates.
const Placeholder = "{topic}"

// KeywordSet is a curated word list for the recency layer. A hit in the
// latest entry proposes Template with the first matching keyword.
type KeywordSet struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Template string   `yaml:"template"`
}

// Config holds every prompt pool, template and threshold.
type Config struct {
	Window int      `yaml:"window"` // most recent entries considered
	Base   []string `yaml:"base"`

	KeywordSets []KeywordSet `yaml:"keyword_sets"`

	NoveltyTemplate string `yaml:"novelty_template"`
	NoveltyLimit    int    `yaml:"novelty_limit"` // 0 = unlimited

	HistoryTopK       int     `yaml:"history_top_k"`
	MinMentions       int     `yaml:"min_mentions"`
	MoodThreshold     float64 `yaml:"mood_threshold"`
	PositiveTemplate  string  `yaml:"positive_template"`
	ChallengeTemplate string  `yaml:"challenge_template"`
	NeutralTemplate   string  `yaml:"neutral_template"`

	TrendSpan   int     `yaml:"trend_span"`
	TrendDrop   float64 `yaml:"trend_drop"`
	TrendPrompt string  `yaml:"trend_prompt"`

	MomentumMood         float64 `yaml:"momentum_mood"`
	MomentumProductivity float64 `yaml:"momentum_productivity"`
	MomentumPrompt       string  `yaml:"momentum_prompt"`
}

// DefaultConfig returns the built-in pools and thresholds.
func DefaultConfig() Config {
	return Config{
		Window: 30,
		Base: []string{
			"What's on your mind today?",
			"What was the highlight of your day so far?",
			"Describe a challenge you faced recently and how you handled it.",
			"What's one thing you're looking forward to this week?",
			"Is there anything you've been avoiding? What's one small step you could take on it?",
		},
		KeywordSets: []KeywordSet{
			{
				Name: "problem",
				Keywords: []string{
					"stuck", "problem", "issue", "struggling", "stressed", "overwhelmed",
					"difficult", "frustrated", "worried", "anxious", "blocked", "conflict",
				},
				Template: "You wrote about '{topic}' in your last entry. What's one small step that could ease it?",
			},
			{
				Name: "planning",
				Keywords: []string{
					"plan", "planning", "goal", "goals", "tomorrow", "deadline",
					"schedule", "prepare", "organize", "priorities",
				},
				Template: "Your last entry touched on '{topic}'. What does a realistic first step look like?",
			},
			{
				Name: "reflection",
				Keywords: []string{
					"realized", "learned", "grateful", "noticed", "thinking",
					"wonder", "reflect", "lesson", "understand",
				},
				Template: "You mentioned '{topic}'. How has that shifted the way you see things?",
			},
		},
		NoveltyTemplate:   "'{topic}' came up for the first time in your last entry. What drew your attention to it?",
		HistoryTopK:       5,
		MinMentions:       2,
		MoodThreshold:     0.2,
		PositiveTemplate:  "You've mentioned '{topic}' a few times lately, usually on good days. What about it is working for you?",
		ChallengeTemplate: "'{topic}' keeps coming up, often on harder days. What would make it feel more manageable?",
		NeutralTemplate:   "You've mentioned '{topic}' a few times. What is one aspect you're proud of, and one that you're still thinking about?",
		TrendSpan:         3,
		TrendDrop:         0.15,
		TrendPrompt:       "It seems like focus has been a challenge lately. What is the single biggest obstacle you're facing right now?",

		MomentumMood:         0.3,
		MomentumProductivity: 0.4,
		MomentumPrompt:       "You've been in good spirits, which is great! What might be a fun, low-pressure task you could complete today to build some momentum?",
	}
}

// withDefaults fills unset fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Window <= 0 {
		c.Window = d.Window
	}
	if len(c.Base) == 0 {
		c.Base = d.Base
	}
	if c.KeywordSets == nil {
		c.KeywordSets = d.KeywordSets
	}
	if c.NoveltyTemplate == "" {
		c.NoveltyTemplate = d.NoveltyTemplate
	}
	if c.HistoryTopK <= 0 {
		c.HistoryTopK = d.HistoryTopK
	}
	if c.MinMentions <= 0 {
		c.MinMentions = d.MinMentions
	}
	if c.MoodThreshold <= 0 {
		c.MoodThreshold = d.MoodThreshold
	}
	if c.PositiveTemplate == "" {
		c.PositiveTemplate = d.PositiveTemplate
	}
	if c.ChallengeTemplate == "" {
		c.ChallengeTemplate = d.ChallengeTemplate
	}
	if c.NeutralTemplate == "" {
		c.NeutralTemplate = d.NeutralTemplate
	}
	if c.TrendSpan <= 0 {
		c.TrendSpan = d.TrendSpan
	}
	if c.TrendDrop <= 0 {
		c.TrendDrop = d.TrendDrop
	}
	if c.TrendPrompt == "" {
		c.TrendPrompt = d.TrendPrompt
	}
	if c.MomentumMood <= 0 {
		c.MomentumMood = d.MomentumMood
	}
	if c.MomentumProductivity <= 0 {
		c.MomentumProductivity = d.MomentumProductivity
	}
	if c.MomentumPrompt == "" {
		c.MomentumPrompt = d.MomentumPrompt
	}
	return c
}

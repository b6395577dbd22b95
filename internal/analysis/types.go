// Package analysis computes statistical summaries over a normalized
// message stream: overview counters, word/emoji frequency, time-of-day
// activity, response latency, and a placeholder sentiment score. Every
// function is deterministic over its input and tolerates
// empty input by returning zeroed structures, with the single documented
// exception of the two-party Overview requirement.
package analysis

import "time"

// ResponseCutoff excludes gaps of an hour or more from response-time
// statistics: a reply that long after the previous message is not a reply.
const ResponseCutoff = time.Hour

// SenderStat is the per-sender slice of the overview.
type SenderStat struct {
	Name     string `json:"name"`
	Messages int    `json:"messages"`
	Words    int    `json:"words"`
}

// Overview summarizes the conversation as a whole. Per-sender stats cover
// only the first two distinct senders encountered; the totals cover
// everyone.
type Overview struct {
	TotalMessages      int           `json:"total_messages"`
	TotalWords         int           `json:"total_words"`
	Senders            [2]SenderStat `json:"senders"`
	AvgMessagesPerDay  float64       `json:"avg_messages_per_day"`
	MostActiveWeekday  string        `json:"most_active_weekday"`
	AvgResponseSeconds float64       `json:"avg_response_seconds"`
}

// Frequency is one entry of a top-K ranking.
type Frequency struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

// SenderText is the per-sender portion of the text analysis.
type SenderText struct {
	TopWords  []Frequency `json:"top_words"`
	TopEmojis []Frequency `json:"top_emojis"`
}

// TextAnalysis ranks word and emoji usage overall and per sender.
type TextAnalysis struct {
	TopWords  []Frequency           `json:"top_words"`
	TopEmojis []Frequency           `json:"top_emojis"`
	PerSender map[string]SenderText `json:"per_sender"`
}

// PeriodShares buckets activity into daytime periods, in percent of dated
// messages: morning 05-12, afternoon 12-17, evening 17-22, night the rest.
type PeriodShares struct {
	Morning   float64 `json:"morning"`
	Afternoon float64 `json:"afternoon"`
	Evening   float64 `json:"evening"`
	Night     float64 `json:"night"`
}

// TimeAnalysis describes when the conversation happens.
type TimeAnalysis struct {
	HourlyHistogram [24]int      `json:"hourly_histogram"`
	MostActiveHour  int          `json:"most_active_hour"`
	MostActiveDay   string       `json:"most_active_day"`
	MostActiveDate  string       `json:"most_active_date"`
	Periods         PeriodShares `json:"periods"`
	// Heatmap counts messages per weekday (Sunday first) per hour.
	Heatmap [7][24]int `json:"heatmap"`
}

// Sentiment is a fixed positive-keyword ratio scaled into [0.7, 0.9].
// This is explicitly a placeholder heuristic, not sentiment modeling.
type Sentiment struct {
	Score         float64 `json:"score"`
	PositiveRatio float64 `json:"positive_ratio"`
}

// Data is the pure aggregate handed to presentation and caching layers.
// Overview is nil when the two-party requirement is not met.
type Data struct {
	Overview *Overview    `json:"overview,omitempty"`
	Text     TextAnalysis `json:"text_analysis"`
	Time     TimeAnalysis `json:"time_analysis"`
	Feeling  Sentiment    `json:"sentiment"`
}

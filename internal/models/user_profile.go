// ABOUTME: User model learned from conversation: facts, interests and communication style
// ABOUTME: Each part is persisted as a JSON preference value under its own key
package models

import "sort"

// Preference keys under which the user model is persisted
const (
	PrefUserFacts          = "user_facts"
	PrefInterests          = "interests"
	PrefCommunicationStyle = "communication_style"
	PrefTotalMessages      = "total_messages"
)

// Formality buckets for communication style
const (
	FormalityCasual  = "casual"
	FormalityNeutral = "neutral"
	FormalityFormal  = "formal"
)

// Verbosity buckets for communication style
const (
	VerbosityBrief    = "brief"
	VerbosityMedium   = "medium"
	VerbosityDetailed = "detailed"
)

// UserFacts holds extracted personal information.
// Likes and Dislikes only grow; the scalar fields are last-write-wins.
type UserFacts struct {
	Name       string   `json:"name,omitempty" yaml:"name,omitempty"`
	Location   string   `json:"location,omitempty" yaml:"location,omitempty"`
	Occupation string   `json:"occupation,omitempty" yaml:"occupation,omitempty"`
	Likes      []string `json:"likes,omitempty" yaml:"likes,omitempty"`
	Dislikes   []string `json:"dislikes,omitempty" yaml:"dislikes,omitempty"`
}

// IsEmpty reports whether no fact has been learned yet
func (f *UserFacts) IsEmpty() bool {
	return f.Name == "" && f.Location == "" && f.Occupation == "" &&
		len(f.Likes) == 0 && len(f.Dislikes) == 0
}

// AddLike appends a liked thing unless it is already known
func (f *UserFacts) AddLike(thing string) bool {
	if contains(f.Likes, thing) {
		return false
	}
	f.Likes = append(f.Likes, thing)
	return true
}

// AddDislike appends a disliked thing unless it is already known
func (f *UserFacts) AddDislike(thing string) bool {
	if contains(f.Dislikes, thing) {
		return false
	}
	f.Dislikes = append(f.Dislikes, thing)
	return true
}

// Interests maps a topic to the number of messages that mentioned it
type Interests map[string]int

// TopicCount pairs a topic with its mention count
type TopicCount struct {
	Topic string `json:"topic" yaml:"topic"`
	Count int    `json:"count" yaml:"count"`
}

// Top returns the n most mentioned topics, ties broken alphabetically
func (in Interests) Top(n int) []TopicCount {
	out := make([]TopicCount, 0, len(in))
	for topic, count := range in {
		out = append(out, TopicCount{Topic: topic, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Topic < out[j].Topic
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// CommunicationStyle is the fingerprint of how the user writes
type CommunicationStyle struct {
	Formality        string   `json:"formality" yaml:"formality"`
	Verbosity        string   `json:"verbosity" yaml:"verbosity"`
	EmojiUsage       bool     `json:"emoji_usage" yaml:"emoji_usage"`
	AvgMessageLength float64  `json:"avg_message_length" yaml:"avg_message_length"`
	CommonPhrases    []string `json:"common_phrases" yaml:"common_phrases"`
}

// DefaultCommunicationStyle returns the style assumed before any message is seen
func DefaultCommunicationStyle() CommunicationStyle {
	return CommunicationStyle{
		Formality:     FormalityNeutral,
		Verbosity:     VerbosityMedium,
		CommonPhrases: []string{},
	}
}

// UserProfile is a read-only snapshot of everything learned about a user
type UserProfile struct {
	UserID        string             `json:"user_id" yaml:"user_id"`
	Facts         UserFacts          `json:"facts" yaml:"facts"`
	Interests     Interests          `json:"interests" yaml:"interests"`
	Style         CommunicationStyle `json:"communication_style" yaml:"communication_style"`
	TotalMessages int                `json:"total_messages" yaml:"total_messages"`
}

// contains checks if a string slice contains a specific string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

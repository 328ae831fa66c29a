// ABOUTME: UserMemory learns facts, interests and communication style from every message
// ABOUTME: Answers direct memory questions and persists the model through a PreferenceStore
package core

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/harper/yaan/internal/models"
	"github.com/harper/yaan/internal/storage"
	"go.uber.org/zap"
)

const (
	phraseBufferLimit = 50
	phraseKeep        = 20
	sessionTopicLimit = 5
)

var (
	casualIndicators = []*regexp.Regexp{
		regexp.MustCompile(`\b(hey|hi|sup|yo|yeah|yep|nah|gonna|wanna|gotta)\b`),
		regexp.MustCompile(`!{2,}`),
		regexp.MustCompile(`\blol\b|\blmao\b|\bhaha\b`),
	}
	formalIndicators = []*regexp.Regexp{
		regexp.MustCompile(`\b(greetings|please|thank you|could you|would you|sir|madam)\b`),
		regexp.MustCompile(`\b(kindly|appreciate|grateful)\b`),
	}

	emojiPattern = regexp.MustCompile(`[\x{1F600}-\x{1F64F}\x{1F300}-\x{1F5FF}\x{1F680}-\x{1F6FF}\x{1F1E0}-\x{1F1FF}]`)
)

// topicKeywords is checked by substring; a message may hit several topics
var topicKeywords = []struct {
	topic    string
	keywords []string
}{
	{"programming", []string{"code", "program", "script", "python", "java", "javascript", "function", "debug"}},
	{"work", []string{"work", "job", "office", "project", "meeting", "deadline", "boss"}},
	{"technology", []string{"computer", "system", "software", "hardware", "tech", "ai", "ml"}},
	{"personal", []string{"i am", "i like", "i love", "i want", "my", "me"}},
	{"entertainment", []string{"movie", "game", "music", "video", "watch", "play"}},
	{"learning", []string{"learn", "study", "teach", "tutorial", "course", "understand"}},
	{"health", []string{"exercise", "health", "fitness", "sleep", "diet"}},
	{"hobbies", []string{"hobby", "interest", "enjoy", "fun", "leisure"}},
}

// ExtractTopics returns every topic whose keyword cluster appears in message
func ExtractTopics(message string) []string {
	lower := strings.ToLower(message)
	var topics []string
	for _, tk := range topicKeywords {
		for _, kw := range tk.keywords {
			if strings.Contains(lower, kw) {
				topics = append(topics, tk.topic)
				break
			}
		}
	}
	return topics
}

// UserMemory is the in-process view of one user's learned profile
type UserMemory struct {
	prefs    storage.PreferenceStore
	userID   string
	rng      RandomSource
	logger   *zap.Logger
	scrubber *FactScrubber

	facts         models.UserFacts
	interests     models.Interests
	style         models.CommunicationStyle
	totalMessages int
	sessionTopics []string
}

// NewUserMemory loads the persisted profile for userID
func NewUserMemory(ctx context.Context, prefs storage.PreferenceStore, userID string, rng RandomSource, logger *zap.Logger) (*UserMemory, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &UserMemory{
		prefs:    prefs,
		userID:   userID,
		rng:      rng,
		logger:   logger,
		scrubber: NewFactScrubber(),
	}
	if err := m.load(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *UserMemory) load(ctx context.Context) error {
	m.reset()

	if _, err := m.prefs.GetPreference(ctx, m.userID, models.PrefUserFacts, &m.facts); err != nil {
		return fmt.Errorf("failed to load user facts: %w", err)
	}
	if _, err := m.prefs.GetPreference(ctx, m.userID, models.PrefInterests, &m.interests); err != nil {
		return fmt.Errorf("failed to load interests: %w", err)
	}
	if _, err := m.prefs.GetPreference(ctx, m.userID, models.PrefCommunicationStyle, &m.style); err != nil {
		return fmt.Errorf("failed to load communication style: %w", err)
	}
	if _, err := m.prefs.GetPreference(ctx, m.userID, models.PrefTotalMessages, &m.totalMessages); err != nil {
		return fmt.Errorf("failed to load message count: %w", err)
	}
	if m.interests == nil {
		m.interests = models.Interests{}
	}

	m.logger.Debug("user memory loaded",
		zap.String("user", m.userID),
		zap.Int("interests", len(m.interests)),
		zap.Int("total_messages", m.totalMessages))
	return nil
}

func (m *UserMemory) reset() {
	m.facts = models.UserFacts{}
	m.interests = models.Interests{}
	m.style = models.DefaultCommunicationStyle()
	m.totalMessages = 0
	m.sessionTopics = nil
}

// Analyze runs every extractor over message and updates the in-memory profile.
// The message counter is persisted immediately; the rest waits for Save.
func (m *UserMemory) Analyze(ctx context.Context, message string) error {
	n, err := m.prefs.IncrementCounter(ctx, m.userID, models.PrefTotalMessages)
	if err != nil {
		return fmt.Errorf("failed to count message: %w", err)
	}
	m.totalMessages = n

	m.updateAverageLength(len(strings.Fields(message)))
	m.detectFormality(message)
	m.detectEmoji(message)
	m.trackPhrases(message)

	topics := ExtractTopics(message)
	m.sessionTopics = append(m.sessionTopics, topics...)
	for _, topic := range topics {
		m.interests[topic]++
	}

	for _, f := range m.scrubber.Apply(&m.facts, m.scrubber.Extract(message)) {
		m.logger.Info("learned user fact", zap.String("field", string(f.Field)), zap.String("value", f.Value))
	}
	return nil
}

func (m *UserMemory) updateAverageLength(tokens int) {
	n := float64(m.totalMessages)
	if n < 1 {
		n = 1
	}
	avg := (m.style.AvgMessageLength*(n-1) + float64(tokens)) / n
	m.style.AvgMessageLength = math.Round(avg*100) / 100

	switch {
	case avg < 5:
		m.style.Verbosity = models.VerbosityBrief
	case avg > 15:
		m.style.Verbosity = models.VerbosityDetailed
	default:
		m.style.Verbosity = models.VerbosityMedium
	}
}

func (m *UserMemory) detectFormality(message string) {
	lower := strings.ToLower(message)
	casual, formal := 0, 0
	for _, p := range casualIndicators {
		if p.MatchString(lower) {
			casual++
		}
	}
	for _, p := range formalIndicators {
		if p.MatchString(lower) {
			formal++
		}
	}

	switch {
	case casual > formal:
		m.style.Formality = models.FormalityCasual
	case formal > casual:
		m.style.Formality = models.FormalityFormal
	default:
		m.style.Formality = models.FormalityNeutral
	}
}

func (m *UserMemory) detectEmoji(message string) {
	if emojiPattern.MatchString(message) {
		m.style.EmojiUsage = true
	}
}

func (m *UserMemory) trackPhrases(message string) {
	words := strings.Fields(strings.ToLower(message))
	for i := 0; i+1 < len(words); i++ {
		m.style.CommonPhrases = append(m.style.CommonPhrases, words[i]+" "+words[i+1])
	}
	if len(m.style.CommonPhrases) > phraseBufferLimit {
		m.style.CommonPhrases = mostCommon(m.style.CommonPhrases, phraseKeep)
	}
}

// mostCommon returns the n most frequent entries, ties kept in first-seen order
func mostCommon(items []string, n int) []string {
	counts := make(map[string]int)
	var order []string
	for _, it := range items {
		if counts[it] == 0 {
			order = append(order, it)
		}
		counts[it]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}
	return order
}

// RelevantMemory answers direct questions about what is known; ok is false when nothing applies
func (m *UserMemory) RelevantMemory(query string) (string, bool) {
	q := strings.ToLower(query)

	if strings.Contains(q, "my name") || strings.Contains(q, "who am i") {
		if m.facts.Name != "" {
			return fmt.Sprintf("Your name is %s.", m.facts.Name), true
		}
	}

	if strings.Contains(q, "where") && (strings.Contains(q, "live") || strings.Contains(q, "from")) {
		if m.facts.Location != "" {
			return fmt.Sprintf("You mentioned you're from %s.", m.facts.Location), true
		}
	}

	if strings.Contains(q, "what do i") && strings.Contains(q, "like") {
		if len(m.facts.Likes) > 0 {
			return fmt.Sprintf("You've mentioned you like: %s.", strings.Join(m.facts.Likes, ", ")), true
		}
	}

	if strings.Contains(q, "what were we talking about") || strings.Contains(q, "what did we discuss") {
		if recent := m.recentTopics(); len(recent) > 0 {
			return fmt.Sprintf("We've been discussing: %s.", strings.Join(recent, ", ")), true
		}
	}

	return "", false
}

// recentTopics returns the distinct topics among the last few session mentions
func (m *UserMemory) recentTopics() []string {
	topics := m.sessionTopics
	if len(topics) > sessionTopicLimit {
		topics = topics[len(topics)-sessionTopicLimit:]
	}
	seen := make(map[string]bool)
	var out []string
	for _, t := range topics {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// Save persists facts, interests and style
func (m *UserMemory) Save(ctx context.Context) error {
	if err := m.prefs.SetPreference(ctx, m.userID, models.PrefUserFacts, m.facts); err != nil {
		return fmt.Errorf("failed to save user facts: %w", err)
	}
	if err := m.prefs.SetPreference(ctx, m.userID, models.PrefInterests, m.interests); err != nil {
		return fmt.Errorf("failed to save interests: %w", err)
	}
	if err := m.prefs.SetPreference(ctx, m.userID, models.PrefCommunicationStyle, m.style); err != nil {
		return fmt.Errorf("failed to save communication style: %w", err)
	}
	m.logger.Debug("memory saved",
		zap.Bool("has_facts", !m.facts.IsEmpty()),
		zap.Int("interests", len(m.interests)))
	return nil
}

// Forget wipes everything learned about the user, in memory and in storage
func (m *UserMemory) Forget(ctx context.Context) error {
	m.reset()
	if err := m.prefs.DeletePreferences(ctx, m.userID, models.PrefTotalMessages); err != nil {
		return fmt.Errorf("failed to reset message count: %w", err)
	}
	if err := m.Save(ctx); err != nil {
		return err
	}
	m.logger.Info("user memory cleared", zap.String("user", m.userID))
	return nil
}

// Summary describes what has been learned so far
func (m *UserMemory) Summary() string {
	if m.facts.IsEmpty() && len(m.interests) == 0 {
		return "I'm still learning about you! Keep chatting with me so I can understand your preferences better."
	}

	var parts []string
	if m.facts.Name != "" {
		parts = append(parts, "• Your name: "+m.facts.Name)
	}
	if m.facts.Location != "" {
		parts = append(parts, "• Location: "+m.facts.Location)
	}
	if m.facts.Occupation != "" {
		parts = append(parts, "• Occupation: "+m.facts.Occupation)
	}
	if top := m.interests.Top(3); len(top) > 0 {
		names := make([]string, len(top))
		for i, tc := range top {
			names[i] = tc.Topic
		}
		parts = append(parts, "• Main interests: "+strings.Join(names, ", "))
	}
	parts = append(parts, "• Communication style: "+m.style.Formality)
	if len(m.facts.Likes) > 0 {
		likes := m.facts.Likes
		if len(likes) > 3 {
			likes = likes[:3]
		}
		parts = append(parts, "• You like: "+strings.Join(likes, ", "))
	}

	return "Here's what I've learned about you:\n\n" + strings.Join(parts, "\n")
}

// PersonalizedGreeting greets the user by name in their preferred register
func (m *UserMemory) PersonalizedGreeting() string {
	name := m.facts.Name
	if name == "" {
		name = "there"
	}

	var options []string
	switch m.style.Formality {
	case models.FormalityCasual:
		options = []string{"Hey " + name + "!", "Hi " + name + "!", "What's up " + name + "?"}
	case models.FormalityFormal:
		options = []string{"Good day, " + name + ".", "Greetings, " + name + ".", "Hello, " + name + "."}
	default:
		options = []string{"Hello " + name + "!", "Hi " + name + "!", "Hey there " + name + "!"}
	}
	return pick(m.rng, options)
}

// Name returns the learned name or an empty string
func (m *UserMemory) Name() string {
	return m.facts.Name
}

// MessageCount returns how many messages have been analyzed for this user
func (m *UserMemory) MessageCount() int {
	return m.totalMessages
}

// Profile returns a snapshot of the learned model
func (m *UserMemory) Profile() models.UserProfile {
	interests := make(models.Interests, len(m.interests))
	for k, v := range m.interests {
		interests[k] = v
	}
	style := m.style
	style.CommonPhrases = append([]string(nil), m.style.CommonPhrases...)
	facts := m.facts
	facts.Likes = append([]string(nil), m.facts.Likes...)
	facts.Dislikes = append([]string(nil), m.facts.Dislikes...)

	return models.UserProfile{
		UserID:        m.userID,
		Facts:         facts,
		Interests:     interests,
		Style:         style,
		TotalMessages: m.totalMessages,
	}
}

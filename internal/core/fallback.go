// ABOUTME: Keyword responder for messages that match no intent
// ABOUTME: Scans for topic clusters in a fixed order and always returns some reply
package core

import "strings"

type keywordCluster struct {
	words   []string
	replies []string
}

// keywordClusters are checked in order; the first cluster with a word in the message answers
var keywordClusters = []keywordCluster{
	{[]string{"love", "like", "favorite"}, []string{
		"I appreciate the sentiment! I'm here to help you with tasks and information. What can I do for you?",
	}},
	{[]string{"how are you", "how do you feel"}, []string{
		"I'm functioning perfectly, thank you for asking! How can I assist you today?",
	}},
	{[]string{"create", "make"}, []string{
		"I can help with various tasks! Try asking me about time, date, system info, calculations, or just chat. What would you like to do?",
	}},
	{[]string{"learn", "teach"}, []string{
		"I'm continuously learning and improving! Right now I can help with time, dates, system monitoring, math, and conversation. Type 'help' to see all my capabilities.",
	}},
	{[]string{"where", "location", "place"}, []string{
		"I don't have access to location services yet. I can help with other things though - try asking about time, system info, or calculations!",
	}},
	{[]string{"why"}, []string{
		"That's a great question! While I don't have that specific information, I can help you with time, dates, system info, and more. What would you like to know?",
		"Interesting question! I'm still learning about complex topics. Try asking me something about your system or request calculations.",
	}},
	{[]string{"code", "program", "script"}, []string{
		"I can help with technical questions! I know about system information, can do calculations, and provide helpful information. What do you need?",
	}},
}

var questionReplies = []string{
	"I don't have that specific information yet, but I'm always learning! Try asking me about time, date, system status, or calculations.",
	"Great question! While I don't know the answer to that, I can help you with system information, calculations, and more. Type 'help' to see what I can do.",
	"Hmm, I'm not sure about that one. I'm best at helping with system tasks, calculations, and providing information about time and dates. What can I help you with?",
}

var generalReplies = []string{
	"I'm not quite sure what you mean. Could you rephrase that, or try asking me about time, system info, or calculations?",
	"Interesting! I'm still learning about that topic. I can help you with time, dates, system monitoring, and math though. What would you like?",
	"I don't fully understand that yet. Type 'help' to see what I can assist you with!",
	"Could you rephrase that? I'm best at helping with specific tasks like checking the time, system stats, or doing calculations.",
}

var questionStarts = []string{"what", "when", "where", "who", "how", "why", "can", "could", "would", "should"}

// keywordReply answers a message no intent matched
func keywordReply(text string, rng RandomSource) string {
	lower := strings.ToLower(text)

	for _, cluster := range keywordClusters {
		if containsAny(lower, cluster.words) {
			return pick(rng, cluster.replies)
		}
	}

	if isQuestion(text, lower) {
		return pick(rng, questionReplies)
	}
	return pick(rng, generalReplies)
}

func isQuestion(text, lower string) bool {
	if strings.Contains(text, "?") {
		return true
	}
	for _, w := range questionStarts {
		if strings.HasPrefix(lower, w) {
			return true
		}
	}
	return false
}

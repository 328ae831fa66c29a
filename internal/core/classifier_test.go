// ABOUTME: Tests for intent classification
// ABOUTME: Covers the taxonomy order, normalization and handler coverage
package core

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		text string
		want Intent
	}{
		{"remind me to call John tomorrow at 3pm", IntentCreateReminder},
		{"set a reminder for the dentist", IntentCreateReminder},
		{"add todo: buy milk", IntentCreateTodo},
		{"todo: buy milk", IntentCreateTodo},
		{"complete todo 3", IntentCompleteTask},
		{"todo 3 done", IntentCompleteTask},
		{"delete reminder 2", IntentDeleteTask},
		{"show my reminders", IntentShowReminders},
		{"list my tasks", IntentShowTodos},
		{"task summary", IntentTaskSummary},
		{"stop asking questions", IntentToggleQuestions},
		{"forget everything", IntentForgetMe},
		{"what do you know about me", IntentMemoryQuery},
		{"learning summary", IntentLearningSummary},
		{"hello there", IntentGreeting},
		{"Hi!", IntentGreeting},
		{"good night", IntentFarewell},
		{"bye", IntentFarewell},
		{"what's the time", IntentTime},
		{"what time is it", IntentTime},
		{"what is the date", IntentDate},
		{"how's the weather", IntentWeather},
		{"system status", IntentSystemInfo},
		{"explain this code", IntentCodeHelp},
		{"i'm getting an error", IntentDebugError},
		{"what can you do", IntentCapabilities},
		{"help", IntentCapabilities},
		{"what's your name", IntentNameQuery},
		{"thanks a lot", IntentThanks},
		{"yes", IntentAffirmation},
		{"nope", IntentNegation},
		{"tell me a joke", IntentJoke},
		{"what is 5 + 3", IntentCalculation},
		{"open spotify", IntentOpenApp},
		{"what is recursion", IntentCodeExplain},
		{"blorp", IntentNone},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := Classify(tt.text); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestClassify_Empty(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		if got := Classify(text); got != IntentNone {
			t.Errorf("Classify(%q) = %q, want none", text, got)
		}
	}
}

func TestClassify_Greetings(t *testing.T) {
	for _, text := range []string{"hello", "HELLO", "  hey  ", "hi there", "good morning", "good evening", "how are you", "what's up", "yo"} {
		if got := Classify(text); got != IntentGreeting {
			t.Errorf("Classify(%q) = %q, want greeting", text, got)
		}
	}
}

func TestClassify_CommandsBeatConversation(t *testing.T) {
	tests := []struct {
		text string
		want Intent
	}{
		{"remind me to say hello", IntentCreateReminder},
		{"add todo: say thanks to the team", IntentCreateTodo},
		{"remind me about the weather report", IntentCreateReminder},
	}
	for _, tt := range tests {
		if got := Classify(tt.text); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestIntents_EveryIntentHasAHandler(t *testing.T) {
	intents := Intents()
	if len(intents) != 28 {
		t.Errorf("Intents() = %d entries, want 28", len(intents))
	}

	seen := make(map[Intent]bool)
	for _, intent := range intents {
		if intent == IntentNone {
			t.Error("taxonomy contains the empty intent")
		}
		if seen[intent] {
			t.Errorf("intent %q appears twice", intent)
		}
		seen[intent] = true
		if _, ok := handlersByIntent[intent]; !ok {
			t.Errorf("intent %q has no handler", intent)
		}
	}
}

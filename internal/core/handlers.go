// ABOUTME: Intent handlers of the Dispatcher, one method per taxonomy row
// ABOUTME: Task, memory and learning handlers go through storage; the rest are pure text
package core

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/harper/yaan/internal/models"
)

var (
	calcPattern      = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*([+\-*/])\s*(\d+(?:\.\d+)?)`)
	openAppPattern   = regexp.MustCompile(`(?i)(open|launch|start|run) (.+)`)
	codeBlockPattern = regexp.MustCompile("(?s)```\\w*\\n(.*?)```")
	disableWords     = regexp.MustCompile(`(?i)\b(stop|disable|turn off|off|don't|do not)\b`)
	enableWords      = regexp.MustCompile(`(?i)\b(enable|turn on|start|begin|on)\b`)
)

var (
	codeIndicators = []string{"def ", "class ", "function ", "for ", "while ", "if ", "import ", "include ", "void ", "int ", "public ", "private"}
	problemWords   = []string{"error", "bug", "issue", "problem", "wrong", "crash"}
	failureWords   = []string{"error", "exception", "bug", "crash", "issue", "problem", "fail"}
	conceptPhrases = []string{"what is", "explain", "tell me about", "what are"}
)

var jokes = []string{
	"Why do programmers prefer dark mode? Because light attracts bugs! 🐛",
	"Why did the developer go broke? Because he used up all his cache! 💰",
	"What's a computer's favorite snack? Microchips! 🍪",
	"Why don't robots ever panic? Because they have nerves of steel! 🤖",
	"How do you comfort a JavaScript bug? You console it! 😄",
}

const capabilitiesText = `I can assist you with:

🕐 Time & Date - "What time is it?" or "What's today's date?"
💻 System Info - "How's my system?" or "Check system status"
🗣️ Conversation - I can chat about various topics
🧮 Math - "Calculate 25 * 4" or simple arithmetic
😄 Entertainment - "Tell me a joke"

💻 Code Help - "Explain this code: def hello()..."
🐛 Debug Errors - "Debug this error: TypeError..." or "Fix my code"
📚 Programming Concepts - "What is recursion?" or "Explain loops"
🔍 Error Analysis - Share error messages and I'll explain the cause and solution

⏰ Reminders - "Remind me to call John tomorrow at 3pm"
✅ Todos - "Add todo: finish project #work" or "Create task: review code urgent"
📋 Task Management - "Show my reminders", "Complete todo 1", "Task summary"

🧠 Memory - I learn about you! Ask "What do you know about me?"
🎓 Proactive Learning - I'll ask a few questions to understand you better ("learning summary", "stop asking questions")
🌤️ Weather - Coming soon when online
🚀 Open Apps - Launch applications (in development)

I learn about your preferences, coding style, and communication patterns as we talk!
Just speak naturally, and I'll do my best to understand and help!`

const debugPrompt = "I can help debug your code! Please share:\n\n" +
	"1. **The error message** you're getting (copy-paste it)\n" +
	"2. **The code** that's causing the error\n" +
	"3. **What you expected** to happen\n\n" +
	"**Example:**\n```\nI'm getting this error:\nTypeError: unsupported operand type(s) for +: 'int' and 'str'\n\nCode:\nx = 5\ny = \"10\"\nresult = x + y\n```\n\n" +
	"I'll analyze it and help you fix it!"

// apologyFor is the reply when a handler's storage call fails
func apologyFor(intent Intent) string {
	switch intent {
	case IntentCreateReminder:
		return "I encountered an issue creating the reminder. Please try again."
	case IntentCreateTodo:
		return "I encountered an issue creating the todo. Please try again."
	case IntentShowReminders:
		return "I encountered an issue retrieving your reminders. Please try again."
	case IntentShowTodos:
		return "I encountered an issue retrieving your todos. Please try again."
	case IntentCompleteTask:
		return "I encountered an issue completing the task. Please try again."
	case IntentDeleteTask:
		return "I encountered an issue deleting the task. Please try again."
	case IntentTaskSummary:
		return "I encountered an issue retrieving your task summary. Please try again."
	case IntentToggleQuestions:
		return "I encountered an issue updating question settings. Please try again."
	case IntentLearningSummary:
		return "I encountered an issue retrieving the learning summary. Please try again."
	case IntentForgetMe:
		return "I encountered an issue clearing my memory. Please try again."
	default:
		return apology
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// CreateReminder parses and stores a reminder
func (d *Dispatcher) CreateReminder(ctx context.Context, text string) (string, error) {
	r, err := d.tasks.CreateReminderFromText(ctx, text)
	if errors.Is(err, ErrNoTitle) {
		return "I couldn't understand the reminder. Try something like 'remind me to call John tomorrow at 3pm'", nil
	}
	if err != nil {
		return "", err
	}

	due := ""
	if r.DueDate != "" {
		due = " for " + r.DueDate
		if r.DueTime != "" {
			due += " at " + r.DueTime
		}
	}
	return fmt.Sprintf("✅ Reminder created%s!\n%s %s", due, r.Priority.Marker(), r.Title), nil
}

// CreateTodo parses and stores a todo
func (d *Dispatcher) CreateTodo(ctx context.Context, text string) (string, error) {
	t, err := d.tasks.CreateTodoFromText(ctx, text)
	if errors.Is(err, ErrNoTitle) {
		return "I couldn't understand the todo. Try something like 'add todo: finish project #work' or 'create task: buy groceries urgent'", nil
	}
	if err != nil {
		return "", err
	}

	tags := ""
	if len(t.Tags) > 0 {
		tags = " #" + strings.Join(t.Tags, " #")
	}
	return fmt.Sprintf("✅ Todo added!\n%s %s%s", t.Priority.Marker(), t.Title, tags), nil
}

// CompleteTask marks "reminder N" or "todo N" completed
func (d *Dispatcher) CompleteTask(ctx context.Context, text string) (string, error) {
	return d.changeTask(ctx, text, "complete", d.tasks.Complete, "marked as complete!")
}

// DeleteTask removes "reminder N" or "todo N"
func (d *Dispatcher) DeleteTask(ctx context.Context, text string) (string, error) {
	return d.changeTask(ctx, text, "delete", d.tasks.Delete, "deleted.")
}

func (d *Dispatcher) changeTask(ctx context.Context, text, verb string, apply func(context.Context, TaskRef) (bool, error), done string) (string, error) {
	ref, ok := ParseTaskRef(text)
	if !ok {
		return fmt.Sprintf("Please specify which task to %s. Example: '%s reminder 1' or '%s todo 3'", verb, verb, verb), nil
	}
	if ref.Kind == TaskKindUnknown {
		return fmt.Sprintf("Please specify 'reminder' or 'todo'. Example: '%s reminder 1' or '%s todo 3'", verb, verb), nil
	}

	found, err := apply(ctx, ref)
	if err != nil {
		return "", err
	}

	label, list := "Reminder", "reminders"
	if ref.Kind == TaskKindTodo {
		label, list = "Todo", "todos"
	}
	if !found {
		return fmt.Sprintf("Couldn't find %s #%d. Check your list with 'show %s'.", strings.ToLower(label), ref.ID, list), nil
	}
	marker := "✅"
	if verb == "delete" {
		marker = "🗑️"
	}
	return fmt.Sprintf("%s %s #%d %s", marker, label, ref.ID, done), nil
}

// ShowReminders lists pending reminders
func (d *Dispatcher) ShowReminders(ctx context.Context, _ string) (string, error) {
	reminders, err := d.tasks.Reminders(ctx, models.StatusPending)
	if err != nil {
		return "", err
	}
	if len(reminders) == 0 {
		return "You have no pending reminders. Add one with 'remind me to [task]'!", nil
	}
	return "📋 Your Reminders:\n\n" + FormatReminders(reminders), nil
}

// ShowTodos lists pending todos
func (d *Dispatcher) ShowTodos(ctx context.Context, _ string) (string, error) {
	todos, err := d.tasks.Todos(ctx, models.StatusPending)
	if err != nil {
		return "", err
	}
	if len(todos) == 0 {
		return "You have no pending todos. Add one with 'add todo: [task]'!", nil
	}
	return "✅ Your Todos:\n\n" + FormatTodos(todos), nil
}

// TaskSummary counts pending and completed tasks
func (d *Dispatcher) TaskSummary(ctx context.Context, _ string) (string, error) {
	counts, err := d.tasks.Counts(ctx)
	if err != nil {
		return "", err
	}
	return FormatTaskSummary(counts), nil
}

// ToggleQuestions turns proactive questions on or off
func (d *Dispatcher) ToggleQuestions(ctx context.Context, text string) (string, error) {
	var want *bool
	switch {
	case disableWords.MatchString(text):
		off := false
		want = &off
	case enableWords.MatchString(text):
		on := true
		want = &on
	}

	enabled, err := d.scheduler.Toggle(ctx, want)
	if err != nil {
		return "", err
	}
	switch {
	case want != nil && !enabled:
		return "✅ I've disabled proactive learning questions. I won't ask you questions to learn anymore. You can re-enable them anytime by saying 'enable learning questions'.", nil
	case want != nil:
		return "✅ I've enabled proactive learning questions. I'll occasionally ask you questions to learn more about your preferences and help you better. You can disable them anytime by saying 'stop asking questions'.", nil
	case enabled:
		return "✅ Proactive learning questions are now ON.", nil
	default:
		return "✅ Proactive learning questions are now OFF.", nil
	}
}

// ForgetMe wipes the user model
func (d *Dispatcher) ForgetMe(ctx context.Context, _ string) (string, error) {
	if err := d.memory.Forget(ctx); err != nil {
		return "", err
	}
	return "I've cleared all my memories about you. We can start fresh! Feel free to tell me about yourself again.", nil
}

// MemoryQuery summarizes what has been learned
func (d *Dispatcher) MemoryQuery(_ context.Context, _ string) (string, error) {
	return d.memory.Summary(), nil
}

// LearningSummary reports proactive question progress
func (d *Dispatcher) LearningSummary(ctx context.Context, _ string) (string, error) {
	sum, err := d.scheduler.Summary(ctx, 5)
	if err != nil {
		return "", err
	}
	return FormatLearningSummary(sum, d.scheduler.Categories()), nil
}

// Greeting greets by name when known, otherwise by time of day
func (d *Dispatcher) Greeting(_ context.Context, _ string) (string, error) {
	if d.memory.Name() != "" {
		return d.memory.PersonalizedGreeting(), nil
	}

	timeGreeting := "Good evening"
	switch hour := d.now().Hour(); {
	case hour < 12:
		timeGreeting = "Good morning"
	case hour < 18:
		timeGreeting = "Good afternoon"
	}

	recent := d.history
	if len(recent) > 6 {
		recent = recent[len(recent)-6:]
	}
	hellos := 0
	for _, turn := range recent {
		if turn.Role == models.RoleUser && strings.Contains(strings.ToLower(turn.Content), "hello") {
			hellos++
		}
	}
	if hellos > 1 {
		return pick(d.rng, []string{
			"Hello again! What else can I help you with?",
			"Still here! What do you need?",
			"Yes, how can I assist you?",
		}), nil
	}

	return pick(d.rng, []string{
		timeGreeting + "! How can I help you today?",
		timeGreeting + "! What can I do for you?",
		"Hello! Ready to assist you.",
		"Hi there! How may I help?",
	}), nil
}

// Farewell says goodbye by name
func (d *Dispatcher) Farewell(_ context.Context, _ string) (string, error) {
	name := d.memory.Name()
	if name == "" {
		name = d.userName
	}
	if name == "" {
		return "Goodbye! Have a great day!", nil
	}
	return fmt.Sprintf("Goodbye, %s! Have a great day!", name), nil
}

// Time tells the current time
func (d *Dispatcher) Time(_ context.Context, _ string) (string, error) {
	return "The current time is " + d.now().Format("03:04 PM"), nil
}

// Date tells today's date
func (d *Dispatcher) Date(_ context.Context, _ string) (string, error) {
	return "Today is " + d.now().Format("Monday, January 02, 2006"), nil
}

// Weather is unavailable offline
func (d *Dispatcher) Weather(_ context.Context, _ string) (string, error) {
	return "I can't check the weather while offline. Please connect to the internet for weather updates.", nil
}

// SystemInfo reports the host platform and the assistant's own resource use
func (d *Dispatcher) SystemInfo(_ context.Context, _ string) (string, error) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return fmt.Sprintf(`System Status:
- OS: %s %s
- CPUs: %d
- Goroutines: %d
- Assistant memory: %s in use (%s reserved)
- Runtime: %s`,
		runtime.GOOS, runtime.GOARCH,
		runtime.NumCPU(),
		runtime.NumGoroutine(),
		humanize.Bytes(ms.HeapAlloc), humanize.Bytes(ms.Sys),
		runtime.Version()), nil
}

// CodeHelp explains code pasted into the message
func (d *Dispatcher) CodeHelp(_ context.Context, text string) (string, error) {
	lower := strings.ToLower(text)
	if !containsAny(lower, codeIndicators) {
		return "Please share the code you need help with, and I'll explain it or help debug any issues!", nil
	}

	explanation := d.coding.ExplainCode(text)
	if containsAny(lower, problemWords) {
		return explanation + "\n\n" + d.coding.DebugHelp(text, ""), nil
	}
	return explanation, nil
}

// DebugError separates error text from code and explains the error
func (d *Dispatcher) DebugError(_ context.Context, text string) (string, error) {
	errorMsg, code := splitErrorAndCode(text)
	if code != "" || containsAny(strings.ToLower(text), failureWords) {
		return d.coding.DebugHelp(errorMsg, code), nil
	}
	return debugPrompt, nil
}

// splitErrorAndCode pulls code out of a fenced block, or guesses code lines by punctuation
func splitErrorAndCode(text string) (errorMsg, code string) {
	if m := codeBlockPattern.FindStringSubmatchIndex(text); m != nil {
		code = strings.TrimSpace(text[m[2]:m[3]])
		errorMsg = strings.TrimSpace(text[:m[0]] + text[m[1]:])
		return errorMsg, code
	}

	errorMsg = text
	if !strings.ContainsAny(text, ":{") && !strings.Contains(text, "def ") && !strings.Contains(text, "function ") {
		return errorMsg, ""
	}

	var codeLines, errorLines []string
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		isErrorLine := strings.HasPrefix(lower, "error") || strings.HasPrefix(lower, "exception") || strings.HasPrefix(lower, "traceback")
		if strings.ContainsAny(line, "(){};:=") && !isErrorLine {
			codeLines = append(codeLines, line)
		} else {
			errorLines = append(errorLines, line)
		}
	}
	if len(codeLines) > 0 {
		code = strings.Join(codeLines, "\n")
	}
	if len(errorLines) > 0 {
		errorMsg = strings.TrimSpace(strings.Join(errorLines, "\n"))
	}
	return errorMsg, code
}

// Capabilities lists what the assistant can do
func (d *Dispatcher) Capabilities(_ context.Context, _ string) (string, error) {
	return capabilitiesText, nil
}

// NameQuery introduces the assistant
func (d *Dispatcher) NameQuery(_ context.Context, _ string) (string, error) {
	return "I'm YAAN - Your AI Assistant Network. I'm here to help you with various tasks and answer your questions.", nil
}

// Thanks acknowledges gratitude
func (d *Dispatcher) Thanks(_ context.Context, _ string) (string, error) {
	return pick(d.rng, []string{
		"You're welcome!",
		"Happy to help!",
		"Anytime!",
		"My pleasure!",
		"Glad I could assist!",
	}), nil
}

// Affirmation continues after a yes
func (d *Dispatcher) Affirmation(_ context.Context, _ string) (string, error) {
	if d.lastIntent != IntentNone {
		return "Great! What would you like to do next?", nil
	}
	return "Alright! How can I help you?", nil
}

// Negation accepts a no
func (d *Dispatcher) Negation(_ context.Context, _ string) (string, error) {
	return "No problem. Is there anything else I can help you with?", nil
}

// Joke tells a programming joke
func (d *Dispatcher) Joke(_ context.Context, _ string) (string, error) {
	return pick(d.rng, jokes), nil
}

// Calculation evaluates a single "a op b" expression
func (d *Dispatcher) Calculation(_ context.Context, text string) (string, error) {
	m := calcPattern.FindStringSubmatch(text)
	if m == nil {
		return "I can help with simple calculations like '25 + 17' or '100 / 4'. Try asking me!", nil
	}
	a, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return "Sorry, I couldn't calculate that. Try a simpler expression like '10 + 5'.", nil
	}
	b, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return "Sorry, I couldn't calculate that. Try a simpler expression like '10 + 5'.", nil
	}

	var result float64
	switch m[2] {
	case "+":
		result = a + b
	case "-":
		result = a - b
	case "*":
		result = a * b
	case "/":
		if b == 0 {
			return "Cannot divide by zero!", nil
		}
		result = a / b
	}

	expr := fmt.Sprintf("%s %s %s", formatNumber(a), m[2], formatNumber(b))
	if result == float64(int64(result)) {
		return fmt.Sprintf("%s = %d", expr, int64(result)), nil
	}
	return fmt.Sprintf("%s = %.2f", expr, result), nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// OpenApp acknowledges a launch request
func (d *Dispatcher) OpenApp(_ context.Context, text string) (string, error) {
	if m := openAppPattern.FindStringSubmatch(text); m != nil {
		return fmt.Sprintf("I'll try to open %s for you. (Feature coming soon)", strings.TrimSpace(m[2])), nil
	}
	return "Which application would you like to open?", nil
}

// CodeExplain looks a programming concept up in the glossary
func (d *Dispatcher) CodeExplain(_ context.Context, text string) (string, error) {
	concept := strings.ToLower(text)
	for _, phrase := range conceptPhrases {
		if i := strings.LastIndex(concept, phrase); i >= 0 {
			concept = strings.TrimSpace(concept[i+len(phrase):])
			break
		}
	}
	concept = strings.TrimSpace(strings.TrimRight(concept, "?"))

	if concept == "" {
		return "What programming concept would you like me to explain? For example, try asking 'explain loops' or 'what is recursion?'", nil
	}
	if explanation, ok := d.coding.ExplainConcept(concept); ok {
		return explanation, nil
	}
	return fmt.Sprintf("I don't have a detailed explanation for '%s' yet, but I can help with:\n\n"+
		"• Variables, functions, loops, arrays\n"+
		"• Classes, objects, recursion\n"+
		"• Algorithms, APIs, async programming\n"+
		"• Specific programming languages\n"+
		"• Code debugging and optimization\n\n"+
		"Try asking about these topics, or share some code for me to explain!", concept), nil
}

// ABOUTME: IntentClassifier maps a message to an intent through an ordered pattern taxonomy
// ABOUTME: Every taxonomy row names the Handlers method that answers it
package core

import (
	"context"
	"regexp"
	"strings"
)

// Intent is the symbolic classification of a message
type Intent string

const (
	IntentNone            Intent = ""
	IntentCreateReminder  Intent = "create_reminder"
	IntentCreateTodo      Intent = "create_todo"
	IntentCompleteTask    Intent = "complete_task"
	IntentDeleteTask      Intent = "delete_task"
	IntentShowReminders   Intent = "show_reminders"
	IntentShowTodos       Intent = "show_todos"
	IntentTaskSummary     Intent = "task_summary"
	IntentToggleQuestions Intent = "toggle_questions"
	IntentForgetMe        Intent = "forget_me"
	IntentMemoryQuery     Intent = "memory_query"
	IntentLearningSummary Intent = "learning_summary"
	IntentGreeting        Intent = "greeting"
	IntentFarewell        Intent = "farewell"
	IntentTime            Intent = "time"
	IntentDate            Intent = "date"
	IntentWeather         Intent = "weather"
	IntentSystemInfo      Intent = "system_info"
	IntentCodeHelp        Intent = "code_help"
	IntentDebugError      Intent = "debug_error"
	IntentCapabilities    Intent = "capabilities"
	IntentNameQuery       Intent = "name_query"
	IntentThanks          Intent = "thanks"
	IntentAffirmation     Intent = "affirmation"
	IntentNegation        Intent = "negation"
	IntentJoke            Intent = "joke"
	IntentCalculation     Intent = "calculation"
	IntentOpenApp         Intent = "open_app"
	IntentCodeExplain     Intent = "code_explain"
)

// Handlers answers every intent in the taxonomy.
// Each method receives the original, unnormalized message.
type Handlers interface {
	CreateReminder(ctx context.Context, text string) (string, error)
	CreateTodo(ctx context.Context, text string) (string, error)
	CompleteTask(ctx context.Context, text string) (string, error)
	DeleteTask(ctx context.Context, text string) (string, error)
	ShowReminders(ctx context.Context, text string) (string, error)
	ShowTodos(ctx context.Context, text string) (string, error)
	TaskSummary(ctx context.Context, text string) (string, error)
	ToggleQuestions(ctx context.Context, text string) (string, error)
	ForgetMe(ctx context.Context, text string) (string, error)
	MemoryQuery(ctx context.Context, text string) (string, error)
	LearningSummary(ctx context.Context, text string) (string, error)
	Greeting(ctx context.Context, text string) (string, error)
	Farewell(ctx context.Context, text string) (string, error)
	Time(ctx context.Context, text string) (string, error)
	Date(ctx context.Context, text string) (string, error)
	Weather(ctx context.Context, text string) (string, error)
	SystemInfo(ctx context.Context, text string) (string, error)
	CodeHelp(ctx context.Context, text string) (string, error)
	DebugError(ctx context.Context, text string) (string, error)
	Capabilities(ctx context.Context, text string) (string, error)
	NameQuery(ctx context.Context, text string) (string, error)
	Thanks(ctx context.Context, text string) (string, error)
	Affirmation(ctx context.Context, text string) (string, error)
	Negation(ctx context.Context, text string) (string, error)
	Joke(ctx context.Context, text string) (string, error)
	Calculation(ctx context.Context, text string) (string, error)
	OpenApp(ctx context.Context, text string) (string, error)
	CodeExplain(ctx context.Context, text string) (string, error)
}

type handlerFunc func(h Handlers, ctx context.Context, text string) (string, error)

type taxonomyRow struct {
	intent   Intent
	patterns []string
	handle   handlerFunc
}

// taxonomy is matched top to bottom; the first row with any matching pattern wins.
// Task and memory commands sit above the conversational rows so that
// "remind me to say hello" is a reminder and not a greeting.
var taxonomy = []taxonomyRow{
	{IntentCreateReminder, []string{
		`remind me (to|about|at)\b`,
		`(set|create|add) (a )?reminder`,
	}, Handlers.CreateReminder},
	{IntentCreateTodo, []string{
		`(add|create|make) (a |an )?todo`,
		`(add|create|make) (a |an )?task\b`,
		`^todo:\s`,
		`^task:\s`,
	}, Handlers.CreateTodo},
	{IntentCompleteTask, []string{
		`(complete|finish|done|mark) (reminder|todo|task) (\d+)`,
		`(reminder|todo|task) (\d+) (complete|done|finished)`,
	}, Handlers.CompleteTask},
	{IntentDeleteTask, []string{
		`(delete|remove|clear) (reminder|todo|task) (\d+)`,
	}, Handlers.DeleteTask},
	{IntentShowReminders, []string{
		`(show|list|get|display|view) (my |all )?reminders?`,
		`what are my reminders?`,
		`any reminders?`,
	}, Handlers.ShowReminders},
	{IntentShowTodos, []string{
		`(show|list|get|display|view) (my |all )?todos?`,
		`(show|list|get|display|view) (my |all )?tasks?`,
		`what are my (todos|tasks)`,
	}, Handlers.ShowTodos},
	{IntentTaskSummary, []string{
		`(task|todo|reminder) summary`,
		`how many (tasks|todos|reminders)`,
	}, Handlers.TaskSummary},
	{IntentToggleQuestions, []string{
		`(stop|disable|turn off|enable|turn on) (asking )?(questions|learning)`,
		`(don't|do not) ask me questions`,
		`(start|begin) asking questions`,
	}, Handlers.ToggleQuestions},
	{IntentForgetMe, []string{
		`forget (everything|all|me)`,
		`(clear|delete|erase) (my |your )?memory`,
		`(reset|remove) my (data|information)`,
	}, Handlers.ForgetMe},
	{IntentMemoryQuery, []string{
		`what (do you know|have you learned) about me`,
		`what do you remember`,
		`tell me what you know about me`,
		`(what'?s|what is|tell me) my name`,
		`who am i\b`,
		`what are my (interests|likes)`,
	}, Handlers.MemoryQuery},
	{IntentLearningSummary, []string{
		`learning (summary|progress|stats)`,
		`(show|what) (have )?(you )?learned`,
		`how much do you know`,
	}, Handlers.LearningSummary},
	{IntentGreeting, []string{
		`^(hello|hi|hey|greetings|sup|yo)\b`,
		`good (morning|afternoon|evening)`,
		`how (are you|is it going)`,
		`what'?s up`,
	}, Handlers.Greeting},
	{IntentFarewell, []string{
		`\b(goodbye|bye|see you|farewell|later)\b`,
		`\b(exit|quit|close)\b`,
		`good night`,
		`catch you`,
	}, Handlers.Farewell},
	{IntentTime, []string{
		`what (is |'s )?the time`,
		`what time is it`,
		`\bthe time\b`,
		`current time`,
		`time (now|right now)`,
	}, Handlers.Time},
	{IntentDate, []string{
		`what (is |'s )?the date`,
		`today'?s date`,
		`what day is (it|today)`,
	}, Handlers.Date},
	{IntentWeather, []string{
		`the weather`,
		`weather (forecast|today|tomorrow|like)`,
		`(is it|will it) (rain|snow|be sunny|sunny)`,
	}, Handlers.Weather},
	{IntentSystemInfo, []string{
		`system (info|information|status|stats)`,
		`(cpu|memory|ram|disk) (usage|info|status)`,
		`how (is|'s) (my |the )?system`,
		`(check|show) (system|performance)`,
	}, Handlers.SystemInfo},
	{IntentCodeHelp, []string{
		`(help|assist|explain) (with |me with )?(the |this |my )?code`,
		`(debug|fix|solve) (this |my )?code`,
		`what (does|is) this code`,
		`(explain|analyze|review) (this )?code`,
		`code (template|example|snippet)`,
	}, Handlers.CodeHelp},
	{IntentDebugError, []string{
		`(debug|fix|solve) (this |my |the )?(error|bug|issue|problem)`,
		`(error|exception|crash|bug) (in|with|on)\b`,
		`(getting|got|received) (an |this )?error`,
		`(explain|help with|fix) (this |my |the )?error`,
		`why (is|does|am|getting)\b`,
		`(syntax|type|runtime|logic|null|undefined|reference) ?error`,
	}, Handlers.DebugError},
	{IntentCapabilities, []string{
		`what (can|do) you (do|know)`,
		`\b(help|commands|capabilities|features)\b`,
		`how (can|do) you (help|assist)`,
	}, Handlers.Capabilities},
	{IntentNameQuery, []string{
		`(what'?s |who'?s |tell me )?your name`,
		`who are you`,
		`what are you`,
	}, Handlers.NameQuery},
	{IntentThanks, []string{
		`^(thanks|thank you|thx|ty)\b`,
		`\b(appreciate|grateful)\b`,
	}, Handlers.Thanks},
	{IntentAffirmation, []string{
		`^(yes|yeah|yep|sure|okay|ok|alright)\b`,
		`sounds good`,
	}, Handlers.Affirmation},
	{IntentNegation, []string{
		`^(no|nope|nah|not really)\b`,
	}, Handlers.Negation},
	{IntentJoke, []string{
		`(tell|make) (me )?(a )?joke`,
		`something funny`,
		`make me laugh`,
	}, Handlers.Joke},
	{IntentCalculation, []string{
		`(calculate|compute) (.+)`,
		`\d+\s*[+\-*/]\s*\d+`,
		`what('?s| is) \d+`,
	}, Handlers.Calculation},
	{IntentOpenApp, []string{
		`^(please )?(open|launch|start|run) (.+)`,
	}, Handlers.OpenApp},
	{IntentCodeExplain, []string{
		`explain (what is |the concept of )?(\w+)`,
		`what (is|are) (\w+)`,
	}, Handlers.CodeExplain},
}

type compiledRow struct {
	intent   Intent
	patterns []*regexp.Regexp
	handle   handlerFunc
}

var (
	compiledTaxonomy = compileTaxonomy(taxonomy)
	handlersByIntent = indexHandlers(compiledTaxonomy)
)

func compileTaxonomy(rows []taxonomyRow) []compiledRow {
	out := make([]compiledRow, len(rows))
	for i, row := range rows {
		out[i] = compiledRow{intent: row.intent, patterns: compileAll(row.patterns...), handle: row.handle}
	}
	return out
}

func indexHandlers(rows []compiledRow) map[Intent]handlerFunc {
	out := make(map[Intent]handlerFunc, len(rows))
	for _, row := range rows {
		out[row.intent] = row.handle
	}
	return out
}

// Classify returns the first intent whose patterns match text, or IntentNone
func Classify(text string) Intent {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return IntentNone
	}
	for _, row := range compiledTaxonomy {
		for _, p := range row.patterns {
			if p.MatchString(normalized) {
				return row.intent
			}
		}
	}
	return IntentNone
}

// Intents lists the taxonomy in match order
func Intents() []Intent {
	out := make([]Intent, len(compiledTaxonomy))
	for i, row := range compiledTaxonomy {
		out[i] = row.intent
	}
	return out
}

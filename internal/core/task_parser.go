// ABOUTME: Natural-language extraction of reminders and todos
// ABOUTME: Pulls priority, relative date, clock time, category, tags and title out of free text
package core

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/harper/yaan/internal/models"
)

// ErrNoTitle is returned when a reminder or todo text yields no title
var ErrNoTitle = errors.New("no task title found")

var (
	// high is checked first, so "not urgent" lands on high through the bare "urgent" match
	highPriorityPattern = regexp.MustCompile(`(?i)\b(urgent|important|high priority)\b`)
	lowPriorityPattern  = regexp.MustCompile(`(?i)\b(low priority|not urgent)\b`)

	clockPattern = regexp.MustCompile(`(?i)\bat (\d{1,2}):?(\d{2})?\s*(am|pm)?`)

	reminderTitlePattern    = regexp.MustCompile(`(?i)remind me (?:to|about) (.+?)(?:\s+(?:tomorrow|today|at|on|next)\b|$)`)
	reminderFallbackPattern = regexp.MustCompile(`(?i)remind me (.+)`)

	categoryPattern     = regexp.MustCompile(`(?i)category:?\s*(\w+)`)
	tagPattern          = regexp.MustCompile(`#(\w+)`)
	todoTitlePattern    = regexp.MustCompile(`(?i)(?:add|create|make)(?: a| an)? (?:todo|task):?\s*(.+?)(?:\s+category:|$)`)
	todoFallbackPattern = regexp.MustCompile(`(?i)(?:todo|task):?\s*(.+)`)
)

// relativeDates is checked in order; the first phrase found wins
var relativeDates = []struct {
	phrase string
	days   int
}{
	{"tomorrow", 1},
	{"today", 0},
	{"next week", 7},
}

// ParsePriority returns the priority implied by keywords in text
func ParsePriority(text string) models.Priority {
	switch {
	case highPriorityPattern.MatchString(text):
		return models.PriorityHigh
	case lowPriorityPattern.MatchString(text):
		return models.PriorityLow
	default:
		return models.PriorityMedium
	}
}

// ParseRelativeDate maps today/tomorrow/next week to a YYYY-MM-DD date relative to now
func ParseRelativeDate(text string, now time.Time) string {
	lower := strings.ToLower(text)
	for _, rd := range relativeDates {
		if strings.Contains(lower, rd.phrase) {
			return now.AddDate(0, 0, rd.days).Format("2006-01-02")
		}
	}
	return ""
}

// ParseClockTime finds "at H[:MM][am|pm]" and normalizes it to 24-hour HH:MM.
// Out-of-range times yield "".
func ParseClockTime(text string) string {
	m := clockPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return ""
	}
	minute := 0
	if m[2] != "" {
		if minute, err = strconv.Atoi(m[2]); err != nil {
			return ""
		}
	}

	switch strings.ToLower(m[3]) {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}

	if hour > 23 || minute > 59 {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// ParseReminder extracts a reminder from text such as "remind me to call John tomorrow at 3pm"
func ParseReminder(text string, now time.Time) (*models.Reminder, error) {
	r := &models.Reminder{
		Priority: ParsePriority(text),
		DueDate:  ParseRelativeDate(text, now),
		DueTime:  ParseClockTime(text),
		Status:   models.StatusPending,
	}

	if m := reminderTitlePattern.FindStringSubmatch(text); m != nil {
		r.Title = strings.TrimSpace(m[1])
	} else if m := reminderFallbackPattern.FindStringSubmatch(text); m != nil {
		r.Title = strings.TrimSpace(m[1])
	}

	if r.Title == "" {
		return nil, ErrNoTitle
	}
	return r, nil
}

// ParseTodo extracts a todo from text such as "add todo: finish docs #work"
func ParseTodo(text string) (*models.Todo, error) {
	t := &models.Todo{
		Priority: ParsePriority(text),
		Status:   models.StatusPending,
	}

	if m := categoryPattern.FindStringSubmatch(text); m != nil {
		t.Category = m[1]
	}

	for _, m := range tagPattern.FindAllStringSubmatch(text, -1) {
		t.Tags = append(t.Tags, m[1])
	}

	if m := todoTitlePattern.FindStringSubmatch(text); m != nil {
		t.Title = stripTags(m[1])
	} else if m := todoFallbackPattern.FindStringSubmatch(text); m != nil {
		t.Title = stripTags(m[1])
	}

	if t.Title == "" {
		return nil, ErrNoTitle
	}
	return t, nil
}

func stripTags(s string) string {
	return strings.Join(strings.Fields(tagPattern.ReplaceAllString(s, "")), " ")
}

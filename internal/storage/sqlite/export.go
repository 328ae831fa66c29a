// ABOUTME: Export functionality for a user's assistant data
// ABOUTME: Supports YAML, JSON and Markdown export formats
package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harper/yaan/internal/models"
	"gopkg.in/yaml.v3"
)

const exportConversationLimit = 1000

// ExportData represents the complete exportable data structure
type ExportData struct {
	Version       string                  `yaml:"version" json:"version"`
	ExportedAt    string                  `yaml:"exported_at" json:"exported_at"`
	Tool          string                  `yaml:"tool" json:"tool"`
	Profile       models.UserProfile      `yaml:"profile" json:"profile"`
	Settings      models.LearningSettings `yaml:"learning_settings" json:"learning_settings"`
	Reminders     []models.Reminder       `yaml:"reminders,omitempty" json:"reminders,omitempty"`
	Todos         []models.Todo           `yaml:"todos,omitempty" json:"todos,omitempty"`
	Questions     []models.AskedQuestion  `yaml:"questions,omitempty" json:"questions,omitempty"`
	Conversations []models.Exchange       `yaml:"conversations,omitempty" json:"conversations,omitempty"`
}

// Export collects everything stored for a user
func (s *Storage) Export(ctx context.Context, userID string) (*ExportData, error) {
	data := &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now().Format(time.RFC3339),
		Tool:       "yaan",
	}

	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	data.Profile = *profile

	if data.Settings, err = s.LearningSettings(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to get learning settings: %w", err)
	}
	if data.Reminders, err = s.ListReminders(ctx, userID, models.StatusAll); err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	if data.Todos, err = s.ListTodos(ctx, userID, models.StatusAll); err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	if data.Questions, err = s.RecentQuestions(ctx, userID, exportConversationLimit); err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	if data.Conversations, err = s.RecentConversations(ctx, userID, exportConversationLimit); err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	return data, nil
}

// Profile assembles the persisted user model into a snapshot
func (s *Storage) Profile(ctx context.Context, userID string) (*models.UserProfile, error) {
	profile := &models.UserProfile{
		UserID:    userID,
		Interests: models.Interests{},
		Style:     models.DefaultCommunicationStyle(),
	}

	if _, err := s.GetPreference(ctx, userID, models.PrefUserFacts, &profile.Facts); err != nil {
		return nil, err
	}
	if _, err := s.GetPreference(ctx, userID, models.PrefInterests, &profile.Interests); err != nil {
		return nil, err
	}
	if _, err := s.GetPreference(ctx, userID, models.PrefCommunicationStyle, &profile.Style); err != nil {
		return nil, err
	}
	if _, err := s.GetPreference(ctx, userID, models.PrefTotalMessages, &profile.TotalMessages); err != nil {
		return nil, err
	}
	return profile, nil
}

// ExportToYAML exports a user's data to a YAML file
func (s *Storage) ExportToYAML(ctx context.Context, userID, outputPath string) error {
	return s.exportTo(ctx, userID, outputPath, func(w io.Writer, data *ExportData) error {
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(data); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return encoder.Close()
	})
}

// ExportToJSON exports a user's data to a JSON file
func (s *Storage) ExportToJSON(ctx context.Context, userID, outputPath string) error {
	return s.exportTo(ctx, userID, outputPath, func(w io.Writer, data *ExportData) error {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(data); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil
	})
}

// ExportToMarkdown exports a user's data to a Markdown file
func (s *Storage) ExportToMarkdown(ctx context.Context, userID, outputPath string) error {
	return s.exportTo(ctx, userID, outputPath, writeMarkdown)
}

func (s *Storage) exportTo(ctx context.Context, userID, outputPath string, write func(io.Writer, *ExportData) error) error {
	data, err := s.Export(ctx, userID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(outputPath) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return write(file, data)
}

func writeMarkdown(w io.Writer, data *ExportData) error {
	_, _ = fmt.Fprintf(w, "# Assistant Export - %s\n\n", time.Now().Format("2006-01-02"))
	_, _ = fmt.Fprintf(w, "Generated: %s\n\n", data.ExportedAt)

	facts := data.Profile.Facts
	_, _ = fmt.Fprintln(w, "## Profile")
	_, _ = fmt.Fprintln(w)
	if facts.Name != "" {
		_, _ = fmt.Fprintf(w, "- **Name:** %s\n", facts.Name)
	}
	if facts.Location != "" {
		_, _ = fmt.Fprintf(w, "- **Location:** %s\n", facts.Location)
	}
	if facts.Occupation != "" {
		_, _ = fmt.Fprintf(w, "- **Occupation:** %s\n", facts.Occupation)
	}
	if len(facts.Likes) > 0 {
		_, _ = fmt.Fprintf(w, "- **Likes:** %s\n", strings.Join(facts.Likes, ", "))
	}
	if len(facts.Dislikes) > 0 {
		_, _ = fmt.Fprintf(w, "- **Dislikes:** %s\n", strings.Join(facts.Dislikes, ", "))
	}
	_, _ = fmt.Fprintf(w, "- **Style:** %s, %s\n", data.Profile.Style.Formality, data.Profile.Style.Verbosity)
	_, _ = fmt.Fprintf(w, "- **Messages:** %d\n", data.Profile.TotalMessages)
	_, _ = fmt.Fprintln(w)

	if len(data.Profile.Interests) > 0 {
		_, _ = fmt.Fprintln(w, "## Interests")
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, "| Topic | Mentions |")
		_, _ = fmt.Fprintln(w, "|-------|----------|")
		for _, tc := range data.Profile.Interests.Top(-1) {
			_, _ = fmt.Fprintf(w, "| %s | %d |\n", tc.Topic, tc.Count)
		}
		_, _ = fmt.Fprintln(w)
	}

	if len(data.Reminders) > 0 {
		_, _ = fmt.Fprintln(w, "## Reminders")
		_, _ = fmt.Fprintln(w)
		for _, r := range data.Reminders {
			_, _ = fmt.Fprintf(w, "- [%s] #%d %s (%s)", checkbox(r.Status), r.ID, r.Title, r.Priority)
			if r.DueDate != "" {
				_, _ = fmt.Fprintf(w, " due %s %s", r.DueDate, r.DueTime)
			}
			_, _ = fmt.Fprintln(w)
		}
		_, _ = fmt.Fprintln(w)
	}

	if len(data.Todos) > 0 {
		_, _ = fmt.Fprintln(w, "## Todos")
		_, _ = fmt.Fprintln(w)
		for _, t := range data.Todos {
			_, _ = fmt.Fprintf(w, "- [%s] #%d %s (%s)", checkbox(t.Status), t.ID, t.Title, t.Priority)
			if len(t.Tags) > 0 {
				_, _ = fmt.Fprintf(w, " #%s", strings.Join(t.Tags, " #"))
			}
			_, _ = fmt.Fprintln(w)
		}
		_, _ = fmt.Fprintln(w)
	}

	if len(data.Conversations) > 0 {
		_, _ = fmt.Fprintln(w, "## Conversations")
		_, _ = fmt.Fprintln(w)
		for _, ex := range data.Conversations {
			_, _ = fmt.Fprintf(w, "**User:** %s\n\n", ex.Input)
			_, _ = fmt.Fprintf(w, "**Assistant:** %s\n\n", ex.Response)
			_, _ = fmt.Fprintln(w, "---")
			_, _ = fmt.Fprintln(w)
		}
	}

	return nil
}

func checkbox(status models.TaskStatus) string {
	if status == models.StatusCompleted {
		return "x"
	}
	return " "
}

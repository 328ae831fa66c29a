// ABOUTME: SQLite database schema for assistant storage
// ABOUTME: Preferences, conversation log, reminders, todos, tags and proactive questions
package sqlite

// Schema contains all SQL statements for database initialization
const Schema = `
-- Per-user JSON preferences (facts, interests, style, counters)
CREATE TABLE IF NOT EXISTS preferences (
    user_id TEXT NOT NULL,
    key TEXT NOT NULL,
    value TEXT NOT NULL,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (user_id, key)
);

-- Append-only conversation log
CREATE TABLE IF NOT EXISTS conversations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    turn_id TEXT NOT NULL UNIQUE,
    user_id TEXT NOT NULL,
    user_input TEXT NOT NULL,
    assistant_response TEXT NOT NULL,
    created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS reminders (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT,
    due_date TEXT,
    due_time TEXT,
    priority TEXT NOT NULL DEFAULT 'medium',
    status TEXT NOT NULL DEFAULT 'pending',
    created_at DATETIME NOT NULL,
    completed_at DATETIME
);

CREATE TABLE IF NOT EXISTS todos (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT,
    due_date TEXT,
    priority TEXT NOT NULL DEFAULT 'medium',
    status TEXT NOT NULL DEFAULT 'pending',
    category TEXT,
    created_at DATETIME NOT NULL,
    completed_at DATETIME
);

CREATE TABLE IF NOT EXISTS todo_tags (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    todo_id INTEGER NOT NULL REFERENCES todos(id) ON DELETE CASCADE,
    tag TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS asked_questions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL,
    category TEXT NOT NULL,
    question TEXT NOT NULL,
    asked_at DATETIME NOT NULL,
    answered BOOLEAN NOT NULL DEFAULT 0,
    answer TEXT,
    answered_at DATETIME
);

CREATE TABLE IF NOT EXISTS learning_settings (
    user_id TEXT PRIMARY KEY,
    questions_enabled BOOLEAN NOT NULL,
    questions_per_day INTEGER NOT NULL,
    min_messages_before_question INTEGER NOT NULL,
    last_question_time DATETIME NOT NULL
);

-- Indexes for efficient querying
CREATE INDEX IF NOT EXISTS idx_conversations_user ON conversations(user_id, id);
CREATE INDEX IF NOT EXISTS idx_reminders_user_status ON reminders(user_id, status);
CREATE INDEX IF NOT EXISTS idx_todos_user_status ON todos(user_id, status);
CREATE INDEX IF NOT EXISTS idx_todo_tags_todo ON todo_tags(todo_id);
CREATE INDEX IF NOT EXISTS idx_questions_user_asked ON asked_questions(user_id, asked_at);
`

// SchemaVersion is the current schema version for migrations
const SchemaVersion = 1

// taskOrder sorts by priority (high, medium, low), then due date with undated last
const taskOrder = `
	ORDER BY
		CASE priority WHEN 'high' THEN 1 WHEN 'medium' THEN 2 WHEN 'low' THEN 3 ELSE 4 END,
		due_date IS NULL,
		due_date ASC,
		id ASC`

// ABOUTME: CodingAssistant answers programming questions offline with pattern heuristics
// ABOUTME: Detects languages, outlines code structure, explains common errors and concepts
package core

import (
	"fmt"
	"regexp"
	"strings"
)

type languagePatterns struct {
	name     string
	patterns []*regexp.Regexp
}

// languages are scored in this order; the first highest score wins
var languages = []languagePatterns{
	{"python", compileAll(`(?i)\bdef\s+\w+\s*\(`, `(?i)\bimport\s+\w+`, `(?i)\bprint\s*\(`, `(?i)\bif\s+.+:`, `(?i)\.py\b`)},
	{"javascript", compileAll(`(?i)\bfunction\s+\w+\s*\(`, `(?i)\bconst\s+\w+`, `(?i)\blet\s+\w+`, `(?i)\bconsole\.log\s*\(`, `(?i)\.js\b`)},
	{"java", compileAll(`(?i)\bpublic\s+class\s+\w+`, `(?i)\bprivate\s+\w+`, `(?i)\bSystem\.out\.println`, `(?i)\.java\b`)},
	{"cpp", compileAll(`(?i)#include\s*<`, `(?i)\bstd::`, `(?i)\bcout\s*<<`, `(?i)\.cpp\b`)},
	{"c", compileAll(`(?i)#include\s*<`, `(?i)\bprintf\s*\(`, `(?i)\.c\b`)},
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

type knownError struct {
	name     string
	solution string
}

// commonErrors are matched by name in this order
var commonErrors = []struct {
	language string
	errors   []knownError
}{
	{"python", []knownError{
		{"IndentationError", "Check your indentation. Python requires consistent spacing (use 4 spaces)."},
		{"NameError", "Variable not defined. Make sure you've declared the variable before using it."},
		{"TypeError", "Wrong data type operation. Check if you're using the right types together."},
		{"SyntaxError", "Code syntax is incorrect. Check for missing colons, parentheses, or quotes."},
		{"IndexError", "List index out of range. Check your list boundaries."},
		{"KeyError", "Dictionary key doesn't exist. Use .get() method or check if key exists."},
	}},
	{"javascript", []knownError{
		{"ReferenceError", "Variable is not defined. Declare it with let, const, or var."},
		{"TypeError", "Cannot read property of undefined. Check if object/variable exists first."},
		{"SyntaxError", "Syntax error. Check for missing semicolons, brackets, or parentheses."},
	}},
	{"general", []knownError{
		{"logic_error", "Code runs but gives wrong results. Review your algorithm step by step."},
		{"infinite_loop", "Program hangs. Check your loop conditions and ensure they can exit."},
		{"null_pointer", "Trying to access null/undefined. Always check if object exists first."},
	}},
}

const debuggingTips = `**Debugging Tips:**

1. **Read the error message carefully** - It usually tells you what went wrong and where
2. **Check the line number** - The error location is your starting point
3. **Print/log variables** - See what values they have at different points
4. **Use a debugger** - Step through code line by line
5. **Google the error** - Others have likely faced the same issue
6. **Rubber duck debugging** - Explain your code line by line to find the issue

Share the error message and relevant code, and I'll help you figure it out!`

type template struct {
	name string
	code string
}

var codeTemplates = []struct {
	language  string
	templates []template
}{
	{"python", []template{
		{"function", "def function_name(parameters):\n    \"\"\"Docstring describing the function\"\"\"\n    # Your code here\n    return result"},
		{"class", "class ClassName:\n    def __init__(self, parameters):\n        self.attribute = parameters\n    \n    def method(self):\n        # Your code here\n        pass"},
		{"file_read", "with open('filename.txt', 'r') as file:\n    content = file.read()\n    # Process content"},
		{"try_except", "try:\n    # Code that might raise an exception\n    pass\nexcept Exception as e:\n    print(f'Error: {e}')"},
		{"list_comprehension", "[expression for item in iterable if condition]"},
		{"dictionary", "my_dict = {'key1': 'value1', 'key2': 'value2'}"},
	}},
	{"javascript", []template{
		{"function", "function functionName(parameters) {\n    // Your code here\n    return result;\n}"},
		{"arrow_function", "const functionName = (parameters) => {\n    // Your code here\n    return result;\n}"},
		{"promise", "const myPromise = new Promise((resolve, reject) => {\n    // Async operation\n    if (success) {\n        resolve(result);\n    } else {\n        reject(error);\n    }\n});"},
		{"async_await", "async function fetchData() {\n    try {\n        const response = await fetch(url);\n        const data = await response.json();\n        return data;\n    } catch (error) {\n        console.error('Error:', error);\n    }\n}"},
	}},
	{"java", []template{
		{"class", "public class ClassName {\n    private int attribute;\n    \n    public ClassName(int attribute) {\n        this.attribute = attribute;\n    }\n    \n    public void method() {\n        // Your code here\n    }\n}"},
		{"main", "public static void main(String[] args) {\n    // Your code here\n}"},
	}},
	{"cpp", []template{
		{"function", "returnType functionName(parameters) {\n    // Your code here\n    return result;\n}"},
		{"class", "class ClassName {\nprivate:\n    int attribute;\npublic:\n    ClassName(int attr) : attribute(attr) {}\n    void method() {\n        // Your code here\n    }\n};"},
	}},
}

// concepts are matched by substring in this order
var concepts = []struct {
	key         string
	explanation string
}{
	{"variable", "A **variable** is a named container that stores a value. Think of it as a labeled box where you can put data. Example: `x = 5` creates a variable 'x' and stores the value 5 in it."},
	{"function", "A **function** is a reusable block of code that performs a specific task. It can take inputs (parameters) and return outputs. Functions help organize code and avoid repetition."},
	{"loop", "A **loop** repeats a block of code multiple times. Common types:\n• **for loop**: Iterate a specific number of times\n• **while loop**: Repeat while a condition is true"},
	{"array", "An **array** (or list) is an ordered collection of items. Each item has an index (position). Example: `[1, 2, 3, 4]` - you can access items by their position."},
	{"object", "An **object** stores data as key-value pairs. It's like a dictionary where each piece of data has a name (key). Example: `{name: 'John', age: 30}`"},
	{"recursion", "**Recursion** is when a function calls itself. Useful for problems that can be broken into smaller similar problems. Must have a base case to stop!"},
	{"algorithm", "An **algorithm** is a step-by-step procedure to solve a problem. Like a recipe - you follow specific steps to get the desired result."},
	{"api", "An **API** (Application Programming Interface) is a way for programs to communicate with each other. It defines what requests you can make and what responses you'll get."},
	{"class", "A **class** is a blueprint for creating objects. It defines properties (attributes) and behaviors (methods) that objects of that type will have."},
	{"async", "**Asynchronous** programming allows code to run without blocking. Operations happen in the background while other code continues executing. Essential for handling I/O operations efficiently."},
}

var (
	outputPattern    = regexp.MustCompile(`(?i)(print|console\.log|cout)`)
	readPattern      = regexp.MustCompile(`(?i)(read|open|file)`)
	writePattern     = regexp.MustCompile(`(?i)(write|save)`)
	docstringPattern = regexp.MustCompile(`""".*?"""`)
	printCallPattern = regexp.MustCompile(`\bprint\s*\(`)
	mainGuardPattern = regexp.MustCompile(`if __name__ == ["']__main__["']:`)
	commentPattern   = regexp.MustCompile(`#.*|//.*|/\*.*\*/`)
	loopPattern      = regexp.MustCompile(`\b(for|while)\b`)
	ifPattern        = regexp.MustCompile(`\bif\b`)
	funcPattern      = regexp.MustCompile(`\b(def|function)\b`)
)

// CodingAssistant holds no state; the zero value is ready to use
type CodingAssistant struct{}

// NewCodingAssistant creates a CodingAssistant
func NewCodingAssistant() *CodingAssistant {
	return &CodingAssistant{}
}

// DetectLanguage scores each language's patterns and returns the best, or "" when nothing matches
func (a *CodingAssistant) DetectLanguage(code string) string {
	best, bestScore := "", 0
	for _, lang := range languages {
		score := 0
		for _, p := range lang.patterns {
			if p.MatchString(code) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = lang.name, score
		}
	}
	return best
}

// ExplainCode lists the structural features found in code
func (a *CodingAssistant) ExplainCode(code string) string {
	var parts []string

	if lang := a.DetectLanguage(code); lang != "" {
		parts = append(parts, fmt.Sprintf("This appears to be %s code.", strings.ToUpper(lang)))
	}
	if strings.Contains(code, "def ") || strings.Contains(code, "function ") {
		parts = append(parts, "• Defines a function")
	}
	if strings.Contains(code, "class ") {
		parts = append(parts, "• Defines a class")
	}
	if strings.Contains(code, "for ") || strings.Contains(code, "while ") {
		parts = append(parts, "• Contains a loop")
	}
	if strings.Contains(code, "if ") {
		parts = append(parts, "• Has conditional logic (if statements)")
	}
	if strings.Contains(code, "import ") || strings.Contains(code, "include") {
		parts = append(parts, "• Imports external libraries/modules")
	}
	if strings.Contains(code, "return ") {
		parts = append(parts, "• Returns a value")
	}
	if outputPattern.MatchString(code) {
		parts = append(parts, "• Outputs/prints data")
	}
	if readPattern.MatchString(code) {
		parts = append(parts, "• Reads from a file")
	}
	if writePattern.MatchString(code) {
		parts = append(parts, "• Writes to a file")
	}

	if len(parts) == 0 {
		return "I can see this is code, but I need more context to explain it fully. Can you provide more details about what it should do?"
	}
	return strings.Join(parts, "\n")
}

// DebugHelp explains a recognized error type or falls back to general tips
func (a *CodingAssistant) DebugHelp(errorMessage, code string) string {
	lower := strings.ToLower(errorMessage)
	for _, group := range commonErrors {
		for _, e := range group.errors {
			if !strings.Contains(lower, strings.ToLower(e.name)) {
				continue
			}
			response := fmt.Sprintf("**%s**\n\n%s", e.name, e.solution)
			if code != "" {
				if lang := a.DetectLanguage(code); lang != "" {
					response += "\n\nDetected language: " + strings.ToUpper(lang)
				}
			}
			return response
		}
	}
	return debuggingTips
}

// SuggestImprovements returns style suggestions for code
func (a *CodingAssistant) SuggestImprovements(code string) []string {
	var suggestions []string

	switch a.DetectLanguage(code) {
	case "python":
		if !docstringPattern.MatchString(code) && strings.Contains(code, "def ") {
			suggestions = append(suggestions, "Add docstrings to your functions for better documentation")
		}
		if strings.Contains(code, "except:") {
			suggestions = append(suggestions, "Avoid bare except clauses. Specify the exception type: except ValueError:")
		}
		if printCallPattern.MatchString(code) {
			suggestions = append(suggestions, "Consider using logging instead of print for production code")
		}
		if !mainGuardPattern.MatchString(code) && len(code) > 200 {
			suggestions = append(suggestions, "Add if __name__ == '__main__': guard for script execution")
		}
	case "javascript":
		if strings.Contains(code, "var ") {
			suggestions = append(suggestions, "Use 'const' or 'let' instead of 'var' for better scoping")
		}
		if strings.Contains(code, "==") {
			suggestions = append(suggestions, "Use '===' for strict equality comparison")
		}
	}

	if len(strings.Split(code, "\n")) > 50 {
		suggestions = append(suggestions, "Consider breaking this into smaller functions for better readability")
	}
	if !commentPattern.MatchString(code) {
		suggestions = append(suggestions, "Add comments to explain complex logic")
	}

	if len(suggestions) == 0 {
		return []string{"Code looks good! Keep it clean and readable."}
	}
	return suggestions
}

// AnalyzeComplexity counts lines, functions, loops and conditionals
func (a *CodingAssistant) AnalyzeComplexity(code string) string {
	lines := 0
	for _, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			lines++
		}
	}
	loops := len(loopPattern.FindAllString(code, -1))
	conditionals := len(ifPattern.FindAllString(code, -1))
	functions := len(funcPattern.FindAllString(code, -1))

	var b strings.Builder
	fmt.Fprintf(&b, "**Code Complexity Analysis:**\n\n• Lines of code: %d\n• Functions: %d\n• Loops: %d\n• Conditionals: %d\n",
		lines, functions, loops, conditionals)

	if loops > 3 {
		b.WriteString("\n⚠️ High loop count - consider optimizing")
	}
	if conditionals > 5 {
		b.WriteString("\n⚠️ Many conditionals - consider refactoring to reduce complexity")
	}
	if lines > 100 {
		b.WriteString("\n⚠️ Long code - consider breaking into smaller functions")
	}
	if loops <= 3 && conditionals <= 5 && lines <= 100 {
		b.WriteString("\n✓ Complexity looks reasonable")
	}
	return b.String()
}

// Template returns a fenced code template, ok is false when the language or name is unknown
func (a *CodingAssistant) Template(name, language string) (string, bool) {
	lang := strings.ToLower(language)
	for _, group := range codeTemplates {
		if group.language != lang {
			continue
		}
		for _, t := range group.templates {
			if t.name == name {
				return fmt.Sprintf("```%s\n%s\n```", lang, t.code), true
			}
		}
	}
	return "", false
}

// ListTemplates names the available templates
func (a *CodingAssistant) ListTemplates() string {
	var b strings.Builder
	b.WriteString("**Available Templates by Language:**\n\n")
	for _, group := range codeTemplates {
		names := make([]string, len(group.templates))
		for i, t := range group.templates {
			names[i] = t.name
		}
		fmt.Fprintf(&b, "**%s:** %s\n", strings.ToUpper(group.language), strings.Join(names, ", "))
	}
	return b.String()
}

// ExplainConcept returns the glossary entry mentioned in concept
func (a *CodingAssistant) ExplainConcept(concept string) (string, bool) {
	lower := strings.ToLower(concept)
	for _, c := range concepts {
		if strings.Contains(lower, c.key) {
			return c.explanation, true
		}
	}
	return "", false
}

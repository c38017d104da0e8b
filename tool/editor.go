package tool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// EditorToolName is the name the file editor tool is registered under.
const EditorToolName = "str_replace_editor"

// EditorOption configures the file editor tool.
type EditorOption func(*editorConfig)

type editorConfig struct {
	basePath    string
	maxFileSize int64
	limits      Limits
}

// WithBasePath resolves relative paths against dir and rejects paths that
// escape it. Without a base path every path must be absolute.
func WithBasePath(dir string) EditorOption {
	return func(c *editorConfig) {
		c.basePath = dir
	}
}

// WithMaxFileSize sets the largest file the editor will read. Default is 10MB.
func WithMaxFileSize(n int64) EditorOption {
	return func(c *editorConfig) {
		c.maxFileSize = n
	}
}

// WithEditorLimits overrides truncation of view output.
func WithEditorLimits(l Limits) EditorOption {
	return func(c *editorConfig) {
		c.limits = l
	}
}

type editorArgs struct {
	Command    string  `json:"command" desc:"The command to run" enum:"view,create,str_replace,insert,undo_edit"`
	Path       string  `json:"path" desc:"Absolute path to the file or directory"`
	FileText   *string `json:"file_text" desc:"Content of the file to be created. Required for create"`
	OldStr     *string `json:"old_str" desc:"Exact text to replace. It must match exactly one location. Required for str_replace"`
	NewStr     *string `json:"new_str" desc:"Replacement text for str_replace, or the text to insert for insert"`
	InsertLine *int    `json:"insert_line" desc:"Line number after which new_str is inserted. 0 inserts at the top. Required for insert"`
	ViewRange  []int   `json:"view_range,omitempty" desc:"Optional [start, end] line range for view. end of -1 means the end of the file"`
}

type editor struct {
	cfg *editorConfig

	mu      sync.Mutex
	history map[string][]string
}

// NewFileEditorTool creates the str_replace_editor tool for viewing,
// creating and editing files. Each edit can be reverted with undo_edit.
func NewFileEditorTool(opts ...EditorOption) Registration {
	cfg := &editorConfig{
		maxFileSize: 10 * 1024 * 1024,
		limits:      Limits{MaxLines: DefaultMaxOutputLines, MaxBytes: DefaultMaxOutputBytes},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	e := &editor{cfg: cfg, history: make(map[string][]string)}

	return Func(EditorToolName,
		"View, create and edit files. view shows a file with line numbers or lists a directory. "+
			"create writes a new file. str_replace replaces one exact occurrence of old_str. "+
			"insert adds new_str after insert_line. undo_edit reverts the last edit to a file.",
		e.run)
}

func (e *editor) run(ctx context.Context, args editorArgs) (string, error) {
	path, err := e.resolve(args.Path)
	if err != nil {
		return "", err
	}

	switch args.Command {
	case "view":
		return e.view(path, args.ViewRange)
	case "create":
		if args.FileText == nil {
			return "", errors.New("file_text is required for create")
		}
		return e.create(path, *args.FileText)
	case "str_replace":
		if args.OldStr == nil {
			return "", errors.New("old_str is required for str_replace")
		}
		newStr := ""
		if args.NewStr != nil {
			newStr = *args.NewStr
		}
		return e.replace(path, *args.OldStr, newStr)
	case "insert":
		if args.InsertLine == nil {
			return "", errors.New("insert_line is required for insert")
		}
		if args.NewStr == nil {
			return "", errors.New("new_str is required for insert")
		}
		return e.insert(path, *args.InsertLine, *args.NewStr)
	case "undo_edit":
		return e.undo(path)
	default:
		return "", fmt.Errorf("unknown command %q; allowed commands are view, create, str_replace, insert, undo_edit", args.Command)
	}
}

func (e *editor) resolve(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("path is required")
	}
	if e.cfg.basePath == "" {
		if !filepath.IsAbs(path) {
			return "", fmt.Errorf("path %q is not absolute", path)
		}
		return filepath.Clean(path), nil
	}

	base := filepath.Clean(e.cfg.basePath)
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(base, full)
	}
	full = filepath.Clean(full)
	rel, err := filepath.Rel(base, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is outside base path %q", path, base)
	}
	return full, nil
}

func (e *editor) read(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > e.cfg.maxFileSize {
		return "", fmt.Errorf("file size %d exceeds maximum %d", info.Size(), e.cfg.maxFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(string(data), "\r\n", "\n"), nil
}

func (e *editor) view(path string, viewRange []int) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		if len(viewRange) > 0 {
			return "", errors.New("view_range is not allowed for directories")
		}
		return e.listDir(path)
	}

	content, err := e.read(path)
	if err != nil {
		return "", err
	}
	lines := strings.Split(content, "\n")

	start, end := 1, len(lines)
	if len(viewRange) > 0 {
		if len(viewRange) != 2 {
			return "", errors.New("view_range must have exactly two elements")
		}
		start = viewRange[0]
		if viewRange[1] != -1 {
			end = viewRange[1]
		}
		if start < 1 || start > len(lines) {
			return "", fmt.Errorf("view_range start %d is outside the file's %d lines", start, len(lines))
		}
		if end < start || end > len(lines) {
			return "", fmt.Errorf("view_range end %d must be between %d and %d", end, start, len(lines))
		}
	}

	text, cut := e.cfg.limits.truncate(numbered(lines[start-1:end], start))
	header := fmt.Sprintf("Here's the result of running `cat -n` on %s:\n", path)
	if cut {
		return header + text + "\n[Output truncated. Use view_range to see more.]", nil
	}
	return header + text, nil
}

func (e *editor) listDir(root string) (string, error) {
	var entries []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if p == root {
			return nil
		}
		rel, _ := filepath.Rel(root, p)
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		depth := strings.Count(rel, string(filepath.Separator)) + 1
		if d.IsDir() && depth >= 2 {
			entries = append(entries, p+"/")
			return filepath.SkipDir
		}
		if d.IsDir() {
			entries = append(entries, p+"/")
		} else {
			entries = append(entries, p)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	sort.Strings(entries)

	text, _ := e.cfg.limits.truncate(strings.Join(entries, "\n"))
	return fmt.Sprintf("Here's the files and directories up to 2 levels deep in %s, excluding hidden items:\n%s", root, text), nil
}

func (e *editor) create(path, text string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("file already exists at %s; use str_replace to edit it", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", err
	}
	return fmt.Sprintf("File created successfully at: %s", path), nil
}

func (e *editor) replace(path, oldStr, newStr string) (string, error) {
	if oldStr == "" {
		return "", errors.New("old_str must not be empty")
	}
	content, err := e.read(path)
	if err != nil {
		return "", err
	}

	switch n := strings.Count(content, oldStr); n {
	case 0:
		return "", fmt.Errorf("no replacement was performed: old_str did not appear verbatim in %s", path)
	case 1:
	default:
		return "", fmt.Errorf("no replacement was performed: old_str appears %d times in %s (lines %s); make it unique",
			n, path, strings.Join(occurrenceLines(content, oldStr), ", "))
	}

	updated := strings.Replace(content, oldStr, newStr, 1)
	if err := e.write(path, updated); err != nil {
		return "", err
	}

	line := strings.Count(content[:strings.Index(content, oldStr)], "\n") + 1
	return fmt.Sprintf("The file %s has been edited. %s", path, snippet(updated, line, strings.Count(newStr, "\n"))), nil
}

func (e *editor) insert(path string, after int, text string) (string, error) {
	content, err := e.read(path)
	if err != nil {
		return "", err
	}
	lines := strings.Split(content, "\n")
	if after < 0 || after > len(lines) {
		return "", fmt.Errorf("insert_line %d must be between 0 and %d", after, len(lines))
	}

	inserted := strings.Split(text, "\n")
	out := make([]string, 0, len(lines)+len(inserted))
	out = append(out, lines[:after]...)
	out = append(out, inserted...)
	out = append(out, lines[after:]...)

	updated := strings.Join(out, "\n")
	if err := e.write(path, updated); err != nil {
		return "", err
	}
	return fmt.Sprintf("The file %s has been edited. %s", path, snippet(updated, after+1, len(inserted)-1)), nil
}

func (e *editor) undo(path string) (string, error) {
	e.mu.Lock()
	stack := e.history[path]
	if len(stack) == 0 {
		e.mu.Unlock()
		return "", fmt.Errorf("no edit history found for %s", path)
	}
	prev := stack[len(stack)-1]
	e.history[path] = stack[:len(stack)-1]
	e.mu.Unlock()

	if err := os.WriteFile(path, []byte(prev), 0o644); err != nil {
		return "", err
	}
	return fmt.Sprintf("Last edit to %s undone successfully.", path), nil
}

// write saves the file's current bytes on the undo stack, then writes
// after. Files that use CRLF line endings keep them.
func (e *editor) write(path, after string) error {
	before, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if bytes.Contains(before, []byte("\r\n")) {
		after = strings.ReplaceAll(after, "\n", "\r\n")
	}
	if err := os.WriteFile(path, []byte(after), 0o644); err != nil {
		return err
	}
	e.mu.Lock()
	e.history[path] = append(e.history[path], string(before))
	e.mu.Unlock()
	return nil
}

func numbered(lines []string, first int) string {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%6d\t%s", first+i, line)
	}
	return b.String()
}

// snippet shows a few lines around an edit starting at line and spanning extra
// additional lines.
func snippet(content string, line, extra int) string {
	const around = 4
	lines := strings.Split(content, "\n")
	start := max(line-around, 1)
	end := min(line+extra+around, len(lines))
	return fmt.Sprintf("Here's a snippet of the edited file:\n%s\nReview the changes and make sure they are as expected.",
		numbered(lines[start-1:end], start))
}

func occurrenceLines(content, sub string) []string {
	var lines []string
	offset := 0
	for {
		i := strings.Index(content[offset:], sub)
		if i < 0 {
			return lines
		}
		lines = append(lines, fmt.Sprint(strings.Count(content[:offset+i], "\n")+1))
		offset += i + len(sub)
	}
}

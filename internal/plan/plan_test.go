package plan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/golem/internal/models"
)

// --- fakes ---

type fakeFiles struct {
	created map[string]string
	err     error
}

func (f *fakeFiles) CreateFile(path, content string) error {
	if f.err != nil {
		return f.err
	}
	if f.created == nil {
		f.created = make(map[string]string)
	}
	f.created[path] = content
	return nil
}

type fakeRunner struct {
	calls []string
}

func (r *fakeRunner) Run(_ context.Context, command string) models.CommandResult {
	r.calls = append(r.calls, command)
	return models.CommandResult{Command: command, ExitCode: 0, Stdout: "ran: " + command + "\n"}
}

type fakeSearcher struct{}

func (fakeSearcher) Search(_ context.Context, query string) string {
	return "results for " + query
}

func newTestExecutor(files *fakeFiles, runner *fakeRunner) *Executor {
	return NewExecutor(Toolbox{Files: files, Runner: runner, Search: fakeSearcher{}}, nil)
}

// --- codec ---

func TestParse_PlainTextIsNotAPlan(t *testing.T) {
	for _, raw := range []string{
		"Sure, here's your answer.",
		"",
		"   ",
		"plan: do things",
	} {
		p, ok := Parse(raw)
		assert.False(t, ok, "raw=%q", raw)
		assert.Nil(t, p)
	}
}

func TestParse_MalformedJSONFallsThrough(t *testing.T) {
	p, ok := Parse(`{"type": "plan", "actions": [`)
	assert.False(t, ok)
	assert.Nil(t, p)
}

func TestParse_NonPlanJSONFallsThrough(t *testing.T) {
	p, ok := Parse(`{"type": "chat", "text": "hello"}`)
	assert.False(t, ok)
	assert.Nil(t, p)
}

func TestParse_ValidPlan(t *testing.T) {
	p, ok := Parse(`{
		"type": "plan",
		"actions": [
			{"tool": "create_file", "path": "a.txt", "content": "hi"},
			{"tool": "run_command", "command": "ls"},
			{"tool": "web_search", "query": "golang"},
			{"tool": "reply", "text": "done"}
		]
	}`)
	require.True(t, ok)
	require.Len(t, p.Actions, 4)
	assert.IsType(t, CreateFile{}, p.Actions[0])
	assert.IsType(t, RunCommand{}, p.Actions[1])
	assert.IsType(t, WebSearch{}, p.Actions[2])
	assert.IsType(t, Reply{}, p.Actions[3])
}

func TestParse_UnknownToolBecomesInvalid(t *testing.T) {
	p, ok := Parse(`{"type":"plan","actions":[{"tool":"teleport","dest":"moon"}]}`)
	require.True(t, ok)
	require.Len(t, p.Actions, 1)

	inv, isInvalid := p.Actions[0].(Invalid)
	require.True(t, isInvalid)
	assert.Contains(t, inv.Msg, "unknown tool")
	assert.Contains(t, inv.Msg, "teleport")
}

func TestParse_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		action  string
		wantMsg string
	}{
		{`{"tool":"create_file","content":"x"}`, "create_file missing 'path'"},
		{`{"tool":"run_command"}`, "run_command missing 'command'"},
		{`{"tool":"web_search"}`, "web_search missing 'query'"},
	}
	for _, tt := range tests {
		t.Run(tt.wantMsg, func(t *testing.T) {
			p, ok := Parse(fmt.Sprintf(`{"type":"plan","actions":[%s]}`, tt.action))
			require.True(t, ok)
			require.Len(t, p.Actions, 1)

			inv, isInvalid := p.Actions[0].(Invalid)
			require.True(t, isInvalid)
			assert.Equal(t, tt.wantMsg, inv.Msg)
		})
	}
}

// --- executor ---

func TestExecute_ReplyRoundTrip(t *testing.T) {
	p, ok := Parse(`{"type":"plan","actions":[{"tool":"reply","text":"hello"}]}`)
	require.True(t, ok)

	out := newTestExecutor(&fakeFiles{}, &fakeRunner{}).Execute(context.Background(), p)
	assert.Equal(t, "hello", out)
}

func TestExecute_InvalidActionDoesNotAbort(t *testing.T) {
	p, ok := Parse(`{"type":"plan","actions":[
		{"tool":"create_file"},
		{"tool":"reply","text":"still here"}
	]}`)
	require.True(t, ok)

	out := newTestExecutor(&fakeFiles{}, &fakeRunner{}).Execute(context.Background(), p)
	assert.Contains(t, out, "create_file missing 'path'")
	assert.Contains(t, out, "still here")
}

func TestExecute_RunsActionsInOrder(t *testing.T) {
	runner := &fakeRunner{}
	files := &fakeFiles{}
	p, ok := Parse(`{"type":"plan","actions":[
		{"tool":"run_command","command":"first"},
		{"tool":"create_file","path":"f.txt","content":"body"},
		{"tool":"run_command","command":"second"}
	]}`)
	require.True(t, ok)

	out := newTestExecutor(files, runner).Execute(context.Background(), p)

	assert.Equal(t, []string{"first", "second"}, runner.calls)
	assert.Equal(t, "body", files.created["f.txt"])
	assert.Less(t, indexOf(t, out, "first"), indexOf(t, out, "Created: f.txt"))
	assert.Less(t, indexOf(t, out, "Created: f.txt"), indexOf(t, out, "second"))
}

func TestExecute_FileErrorIsInlineResult(t *testing.T) {
	files := &fakeFiles{err: errors.New("disk full")}
	p, ok := Parse(`{"type":"plan","actions":[
		{"tool":"create_file","path":"f.txt","content":"x"},
		{"tool":"reply","text":"after"}
	]}`)
	require.True(t, ok)

	out := newTestExecutor(files, &fakeRunner{}).Execute(context.Background(), p)
	assert.Contains(t, out, "Failed to create f.txt")
	assert.Contains(t, out, "disk full")
	assert.Contains(t, out, "after")
}

func TestExecute_EmptyReplyContributesNothing(t *testing.T) {
	p, ok := Parse(`{"type":"plan","actions":[
		{"tool":"reply","text":""},
		{"tool":"reply","text":"only this"}
	]}`)
	require.True(t, ok)

	out := newTestExecutor(&fakeFiles{}, &fakeRunner{}).Execute(context.Background(), p)
	assert.Equal(t, "only this", out)
}

func TestExecute_WebSearch(t *testing.T) {
	p, ok := Parse(`{"type":"plan","actions":[{"tool":"web_search","query":"news"}]}`)
	require.True(t, ok)

	out := newTestExecutor(&fakeFiles{}, &fakeRunner{}).Execute(context.Background(), p)
	assert.Equal(t, "results for news", out)
}

func TestExecute_NilSearcherDegrades(t *testing.T) {
	e := NewExecutor(Toolbox{Files: &fakeFiles{}, Runner: &fakeRunner{}}, nil)
	p, ok := Parse(`{"type":"plan","actions":[{"tool":"web_search","query":"news"}]}`)
	require.True(t, ok)

	out := e.Execute(context.Background(), p)
	assert.Contains(t, out, "not configured")
}

func indexOf(t *testing.T, haystack, needle string) int {
	t.Helper()
	idx := strings.Index(haystack, needle)
	require.GreaterOrEqual(t, idx, 0, "%q not found in %q", needle, haystack)
	return idx
}

package review

import (
	"context"
	"testing"
	"time"

	waguard "github.com/sociovia/waguard"
	"github.com/sociovia/waguard/checkers"
)

func TestNew(t *testing.T) {
	c := New(DefaultConfig())

	if c == nil {
		t.Fatal("New() returned nil")
	}

	if c.Name() != "review" {
		t.Errorf("Name() = %q, want %q", c.Name(), "review")
	}
}

func TestChecker_Capabilities(t *testing.T) {
	c := New(DefaultConfig())
	caps := c.Capabilities()

	if len(caps) != 3 {
		t.Errorf("Capabilities() returned %d items, want 3", len(caps))
	}

	// Human review is async only
	for _, cap := range caps {
		if len(cap.Modes) != 1 || cap.Modes[0] != checkers.ModeAsync {
			t.Errorf("Capability for %v should only support async mode", cap.Kind)
		}
	}
}

func TestChecker_Check(t *testing.T) {
	c := New(DefaultConfig())

	req := checkers.CheckRequest{
		Content: waguard.Content{
			ContentID: "c_123",
			Kind:      waguard.KindText,
			Text:      "test content",
		},
		Tpl: waguard.TemplateContext{
			TemplateName: "order_update",
			Category:     waguard.CategoryUtility,
		},
	}

	resp, err := c.Check(context.Background(), req)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	if resp.Mode != checkers.ModeAsync {
		t.Errorf("Check().Mode = %v, want async", resp.Mode)
	}

	if resp.TaskID == "" {
		t.Error("Check().TaskID is empty")
	}

	// Task should be in pending state
	task, err := c.store.GetTask(context.Background(), resp.TaskID)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}

	if task == nil {
		t.Fatal("Task not found in store")
	}

	if task.Done {
		t.Error("Task should not be done yet")
	}
}

func TestChecker_Query_NotFound(t *testing.T) {
	c := New(DefaultConfig())

	resp, err := c.Query(context.Background(), "nonexistent_task")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if resp.Done {
		t.Error("Query() for nonexistent task should return Done=false")
	}
}

func TestChecker_Query_Pending(t *testing.T) {
	c := New(DefaultConfig())

	req := checkers.CheckRequest{
		Content: waguard.Content{
			ContentID: "c_123",
			Kind:      waguard.KindText,
		},
	}

	checkResp, _ := c.Check(context.Background(), req)

	resp, err := c.Query(context.Background(), checkResp.TaskID)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if resp.Done {
		t.Error("Query() should return Done=false for pending task")
	}
}

func TestChecker_SubmitOutcome(t *testing.T) {
	c := New(DefaultConfig())

	req := checkers.CheckRequest{
		Content: waguard.Content{
			ContentID: "c_123",
			Kind:      waguard.KindText,
		},
	}

	checkResp, _ := c.Check(context.Background(), req)

	outcome := ReviewOutcome{
		TaskID:     checkResp.TaskID,
		Decision:   waguard.DecisionBlock,
		ReviewerID: "reviewer_1",
		Comment:    "Blocked for policy violation",
		Findings: []waguard.Finding{
			{Code: "fraud", Message: "Advance fee scam wording"},
		},
	}

	if err := c.SubmitOutcome(context.Background(), checkResp.TaskID, outcome); err != nil {
		t.Fatalf("SubmitOutcome() error = %v", err)
	}

	resp, err := c.Query(context.Background(), checkResp.TaskID)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if !resp.Done {
		t.Error("Query() should return Done=true after SubmitOutcome")
	}

	if resp.Result == nil {
		t.Fatal("Query().Result is nil")
	}

	if resp.Result.Decision != waguard.DecisionBlock {
		t.Errorf("Query().Result.Decision = %v, want Block", resp.Result.Decision)
	}

	if resp.Result.Confidence != 1.0 {
		t.Errorf("Query().Result.Confidence = %v, want 1.0", resp.Result.Confidence)
	}
}

func TestChecker_Query_Timeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultTimeout = 1 * time.Millisecond
	c := New(cfg)

	req := checkers.CheckRequest{
		Content: waguard.Content{
			ContentID: "c_123",
			Kind:      waguard.KindText,
		},
	}

	checkResp, _ := c.Check(context.Background(), req)

	time.Sleep(10 * time.Millisecond)

	resp, err := c.Query(context.Background(), checkResp.TaskID)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if !resp.Done {
		t.Error("Query() should return Done=true for timed out task")
	}

	if resp.Result == nil {
		t.Fatal("Query().Result is nil")
	}

	if resp.Result.Decision != waguard.DecisionReview {
		t.Errorf("Query().Result.Decision = %v, want Review (for timeout)", resp.Result.Decision)
	}
}

func TestChecker_GetPendingTasks(t *testing.T) {
	c := New(DefaultConfig())

	for i := 0; i < 5; i++ {
		req := checkers.CheckRequest{
			Content: waguard.Content{
				ContentID: "c_" + string(rune('0'+i)),
				Kind:      waguard.KindText,
			},
		}
		c.Check(context.Background(), req)
	}

	tasks, err := c.GetPendingTasks(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetPendingTasks() error = %v", err)
	}

	if len(tasks) != 5 {
		t.Errorf("GetPendingTasks() returned %d tasks, want 5", len(tasks))
	}
}

func TestChecker_GetPendingTasks_Limit(t *testing.T) {
	c := New(DefaultConfig())

	for i := 0; i < 10; i++ {
		req := checkers.CheckRequest{
			Content: waguard.Content{
				ContentID: "c_" + string(rune('0'+i)),
				Kind:      waguard.KindText,
			},
		}
		c.Check(context.Background(), req)
	}

	tasks, err := c.GetPendingTasks(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetPendingTasks() error = %v", err)
	}

	if len(tasks) != 3 {
		t.Errorf("GetPendingTasks() returned %d tasks, want 3", len(tasks))
	}
}

func TestChecker_WithHandler(t *testing.T) {
	c := New(DefaultConfig())

	handlerCalled := false
	c.WithHandler(func(ctx context.Context, task ReviewTask) error {
		handlerCalled = true
		return nil
	})

	req := checkers.CheckRequest{
		Content: waguard.Content{
			ContentID: "c_123",
			Kind:      waguard.KindText,
		},
	}

	c.Check(context.Background(), req)

	if !handlerCalled {
		t.Error("Handler was not called on Check")
	}
}

func TestChecker_ParseCallback(t *testing.T) {
	c := New(DefaultConfig())

	body := []byte(`{
		"task_id": "review_123",
		"decision": "block",
		"reviewer_id": "admin",
		"comment": "Policy violation",
		"findings": [{"code": "fraud", "message": "Scam wording"}]
	}`)

	data, err := c.ParseCallback(context.Background(), body)
	if err != nil {
		t.Fatalf("ParseCallback() error = %v", err)
	}

	if data.TaskID != "review_123" {
		t.Errorf("ParseCallback().TaskID = %q, want %q", data.TaskID, "review_123")
	}

	if !data.Done {
		t.Error("ParseCallback().Done = false, want true")
	}

	if data.Result.Decision != waguard.DecisionBlock {
		t.Errorf("ParseCallback().Result.Decision = %v, want Block", data.Result.Decision)
	}
}

func TestChecker_Translator(t *testing.T) {
	c := New(DefaultConfig())

	translator := c.Translator()
	if translator == nil {
		t.Fatal("Translator() returned nil")
	}

	if translator.Checker() != "review" {
		t.Errorf("Translator().Checker() = %q, want %q", translator.Checker(), "review")
	}
}

func TestCalculatePriority(t *testing.T) {
	tests := []struct {
		category waguard.Category
		expected int
	}{
		{waguard.CategoryAuthentication, 10},
		{waguard.CategoryUtility, 8},
		{waguard.CategoryMarketing, 6},
		{waguard.Category("UNKNOWN"), 5},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			tpl := waguard.TemplateContext{Category: tt.category}
			result := calculatePriority(tpl)
			if result != tt.expected {
				t.Errorf("calculatePriority(%v) = %d, want %d", tt.category, result, tt.expected)
			}
		})
	}
}

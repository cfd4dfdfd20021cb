package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/sysprobe/internal/scan"
)

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Expected Model, got %T", next)
	}
	return model, cmd
}

func TestNewModel(t *testing.T) {
	model := NewModel("quick")

	if model.mode != "quick" {
		t.Errorf("Expected mode 'quick', got '%s'", model.mode)
	}
	if model.quitting {
		t.Error("Expected quitting to be false by default")
	}
	if model.Report() != nil {
		t.Error("Expected no report before the scan completes")
	}
	if model.Init() == nil {
		t.Error("Expected Init to start the spinner")
	}
}

func TestProgressMessages(t *testing.T) {
	model := NewModel("quick")

	model, _ = update(t, model, ProgressMsg{Current: 0, Total: 3, Label: "CPU"})
	if model.label != "CPU" || model.total != 3 {
		t.Errorf("Unexpected state after first event: label=%q total=%d", model.label, model.total)
	}
	if len(model.completed) != 0 {
		t.Errorf("Expected no completed probes, got %v", model.completed)
	}

	model, _ = update(t, model, ResultMsg{Result: scan.NewResult("CPU", scan.CategoryHardware)})
	model, _ = update(t, model, ProgressMsg{Current: 1, Total: 3, Label: "Memory"})
	model, _ = update(t, model, ResultMsg{Result: scan.NewResult("Memory", scan.CategoryHardware)})
	model, _ = update(t, model, ProgressMsg{Current: 2, Total: 3, Label: "Firewall"})

	if len(model.completed) != 2 || model.completed[1].ProbeName != "Memory" {
		t.Errorf("Expected completed CPU,Memory, got %d results", len(model.completed))
	}

	view := model.View()
	if !strings.Contains(view, "Firewall") {
		t.Error("View should show the running probe")
	}
	if !strings.Contains(view, "2/3") {
		t.Error("View should show the probe counter")
	}
	if !strings.Contains(view, "Mode: quick") {
		t.Error("View should show the mode")
	}
}

func TestLiveListMarksOutcome(t *testing.T) {
	model := NewModel("quick")
	model, _ = update(t, model, ProgressMsg{Current: 3, Total: 4, Label: "Disk Usage"})

	hot := scan.NewResult("Memory", scan.CategoryHardware).Add(
		scan.NewFinding(scan.CategoryHardware, "RAM", "97%", scan.SeverityCritical),
	)
	results := []*scan.Result{
		scan.NewResult("CPU", scan.CategoryHardware).Add(
			scan.NewFinding(scan.CategoryHardware, "Load", "12%", scan.SeverityPass),
		),
		hot,
		scan.FailedResult("Firewall", scan.CategorySecurity, scan.UnavailableMessage),
	}
	for _, r := range results {
		model, _ = update(t, model, ResultMsg{Result: r})
	}

	lines := strings.Split(model.View(), "\n")
	marker := func(name string) string {
		for _, line := range lines {
			if strings.HasSuffix(line, name) {
				return strings.TrimSpace(strings.TrimSuffix(line, name))
			}
		}
		t.Fatalf("%s not listed:\n%s", name, model.View())
		return ""
	}

	if got := marker("CPU"); got != "✓" {
		t.Errorf("CPU marker = %q, want ✓", got)
	}
	if got := marker("Memory"); got != "!" {
		t.Errorf("Memory marker = %q, want !", got)
	}
	if got := marker("Firewall"); got != "✗" {
		t.Errorf("Firewall marker = %q, want ✗", got)
	}
}

func TestScanCompleteMessage(t *testing.T) {
	report := scan.NewReport("quick")
	ok := scan.NewResult("CPU", scan.CategoryHardware).Add(
		scan.NewFinding(scan.CategoryHardware, "Hot", "91C", scan.SeverityCritical),
	)
	_ = report.AddResult(ok)
	_ = report.AddResult(scan.FailedResult("Firewall", scan.CategorySecurity, scan.UnavailableMessage))
	_ = report.AddResult(scan.NewResult("Memory", scan.CategoryHardware).Add(
		scan.NewFinding(scan.CategoryHardware, "RAM", "40%", scan.SeverityPass),
	))
	report.Finalize()

	model := NewModel("quick")
	model, cmd := update(t, model, ScanCompleteMsg{Report: report})

	if cmd == nil {
		t.Fatal("Expected quit command after completion")
	}
	if model.Report() != report {
		t.Error("Report not stored")
	}
	if model.Aborted() {
		t.Error("A completed scan is not aborted")
	}

	view := model.View()
	for _, want := range []string{"Scan complete", "Critical: 1", "Probes:   3 (1 failed)", "CPU", "Firewall"} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "Memory") {
		t.Error("Probes without issues should not be listed")
	}
}

func TestQuitCancelsScan(t *testing.T) {
	cancelled := false
	model := NewModel("full").WithCancel(func() { cancelled = true })
	model, _ = update(t, model, ProgressMsg{Current: 0, Total: 5, Label: "CPU"})

	model, cmd := update(t, model, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if !cancelled {
		t.Error("Expected cancel to be called")
	}
	if !model.Aborted() {
		t.Error("Expected model to be aborted")
	}
	if !strings.Contains(model.View(), "Scan aborted.") {
		t.Error("View should report the abort")
	}
}

func TestCtrlCAfterCompletion(t *testing.T) {
	report := scan.NewReport("quick")
	report.Finalize()

	cancelled := false
	model := NewModel("quick").WithCancel(func() { cancelled = true })
	model, _ = update(t, model, ScanCompleteMsg{Report: report})
	model, _ = update(t, model, tea.KeyMsg{Type: tea.KeyCtrlC})

	if cancelled || model.Aborted() {
		t.Error("Quitting after completion should not cancel")
	}
}

func TestWindowSize(t *testing.T) {
	model, _ := update(t, NewModel("quick"), tea.WindowSizeMsg{Width: 100, Height: 40})
	if !model.ready || model.width != 100 || model.height != 40 {
		t.Errorf("Unexpected size state: ready=%v %dx%d", model.ready, model.width, model.height)
	}
}

func TestNewModeForm(t *testing.T) {
	selected := "quick"
	form, err := NewModeForm([]ModeOption{{Name: "quick", Label: "Quick"}, {Name: "full"}}, &selected)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if form == nil {
		t.Fatal("Expected a form")
	}

	if _, err := NewModeForm(nil, &selected); err == nil {
		t.Error("Expected error when no modes are given")
	}
}

func TestPromptForSelectNoOptions(t *testing.T) {
	if _, err := PromptForSelect("Choose:", []string{}, ""); err == nil {
		t.Error("expected error when no options provided, got nil")
	}
}

func TestShouldPromptInCI(t *testing.T) {
	for _, key := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "true")
			if ShouldPrompt() {
				t.Errorf("ShouldPrompt() = true with %s set", key)
			}
		})
	}
}

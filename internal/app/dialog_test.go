package app_test

import (
	"context"
	"strings"
	"testing"

	"bodytrack/internal/adapter/memory"
	"bodytrack/internal/app"
	"bodytrack/internal/domain"
	"bodytrack/internal/logger"
)

const userID = int64(42)

type harness struct {
	t        *testing.T
	d        *app.Dialog
	db       *memory.DB
	sessions *memory.SessionStore
	renderer *fakeRenderer
}

func newHarness(t *testing.T, pageSize int) *harness {
	t.Helper()
	db := memory.New()
	sessions := memory.NewSessionStore(0)
	r := &fakeRenderer{}
	d := app.NewDialog(
		app.NewEntryService(db),
		app.NewProfileService(db),
		app.NewStatsService(db, db, r),
		sessions,
		logger.Nop(),
		pageSize,
	)
	return &harness{t: t, d: d, db: db, sessions: sessions, renderer: r}
}

func (h *harness) send(text string) []app.Response {
	h.t.Helper()
	out, err := h.d.Handle(context.Background(), app.Event{UserID: userID, Text: text})
	if err != nil {
		h.t.Fatalf("Handle(%q): %v", text, err)
	}
	return out
}

func (h *harness) press(payload string) []app.Response {
	h.t.Helper()
	out, err := h.d.Handle(context.Background(), app.Event{UserID: userID, Payload: payload})
	if err != nil {
		h.t.Fatalf("Handle(%q): %v", payload, err)
	}
	return out
}

func (h *harness) step() domain.Step {
	h.t.Helper()
	s, err := h.sessions.Load(context.Background(), userID)
	if err != nil {
		h.t.Fatalf("Load: %v", err)
	}
	return s.Step
}

func (h *harness) add(date string, weight float64, fat *float64) int64 {
	h.t.Helper()
	d, _ := domain.ParseDay(date)
	id, err := h.db.AddEntry(context.Background(), userID, d, weight, fat)
	if err != nil {
		h.t.Fatalf("AddEntry: %v", err)
	}
	return id
}

func (h *harness) entries() []domain.Entry {
	h.t.Helper()
	list, err := h.db.ListRecentEntries(context.Background(), userID, 0)
	if err != nil {
		h.t.Fatalf("ListRecentEntries: %v", err)
	}
	return list
}

func texts(rs []app.Response) string {
	var parts []string
	for _, r := range rs {
		parts = append(parts, r.Text)
	}
	return strings.Join(parts, "\n")
}

func expectText(t *testing.T, rs []app.Response, want string) {
	t.Helper()
	if got := texts(rs); !strings.Contains(got, want) {
		t.Fatalf("expected %q in responses:\n%s", want, got)
	}
}

func TestAddFlow_SaveThenReplace(t *testing.T) {
	h := newHarness(t, 5)

	expectText(t, h.send(app.BtnAddEntry), "Send weight")
	expectText(t, h.send("82.3"), "fat %")
	out := h.send("skip")
	expectText(t, out, "Pick the date")
	if out[0].Keyboard == nil || !out[0].Keyboard.Inline {
		t.Fatal("expected inline calendar")
	}

	out = h.press("DP|add|pick|2024-01-05")
	expectText(t, out, "82.3 kg")
	if h.step() != domain.StepIdle {
		t.Fatalf("expected idle after save, got %q", h.step())
	}

	day, _ := domain.ParseDay("2024-01-05")
	e, _ := h.db.EntryByDate(context.Background(), userID, day)
	if e == nil || e.FatPct != nil || e.FatWeightKg != nil {
		t.Fatalf("expected entry without fat data, got %+v", e)
	}
	original := e.ID

	h.send(app.BtnAddEntry)
	h.send("80")
	h.send("20")
	expectText(t, h.press("DP|add|pick|2024-01-05"), "already exists")
	if h.step() != domain.StepAddConfirm {
		t.Fatalf("expected confirm step, got %q", h.step())
	}

	expectText(t, h.press("DUP|add|replace|"), "Entry saved")
	list := h.entries()
	if len(list) != 1 {
		t.Fatalf("expected exactly one entry, got %d", len(list))
	}
	if list[0].ID != original || list[0].WeightKg != 80 || list[0].FatPct == nil || *list[0].FatPct != 20 {
		t.Errorf("unexpected entry after replace: %+v", list[0])
	}
	if list[0].FatWeightKg == nil || *list[0].FatWeightKg != 16 {
		t.Errorf("expected recomputed fat weight 16, got %v", list[0].FatWeightKg)
	}
}

func TestAddFlow_ConflictKeepAndDifferent(t *testing.T) {
	h := newHarness(t, 5)
	h.add("2024-01-05", 90, nil)

	h.send(app.BtnAddEntry)
	h.send("80")
	h.send(app.BtnSkipFat)
	h.press("DP|add|pick|2024-01-05")

	out := h.press("DUP|add|different|")
	expectText(t, out, "Pick the date")
	if h.step() != domain.StepAddDate {
		t.Fatalf("expected date step, got %q", h.step())
	}

	h.press("DP|add|pick|2024-01-05")
	expectText(t, h.press("DUP|add|keep|"), "Kept the existing entry")
	list := h.entries()
	if len(list) != 1 || list[0].WeightKg != 90 {
		t.Fatalf("expected untouched entry, got %+v", list)
	}
	if h.step() != domain.StepIdle {
		t.Errorf("expected idle, got %q", h.step())
	}
}

func TestAddFlow_TypedDate(t *testing.T) {
	h := newHarness(t, 5)
	h.send(app.BtnAddEntry)
	h.send("81,5")
	h.send("18,5")
	expectText(t, h.send("yesterday"), "YYYY-MM-DD")
	expectText(t, h.send("2024-02-29"), "Entry saved: 2024-02-29 81.5 kg and fat 18.5%")
}

func TestAddFlow_ValidationRePrompts(t *testing.T) {
	h := newHarness(t, 5)
	h.send(app.BtnAddEntry)

	expectText(t, h.send("abc"), "valid weight")
	expectText(t, h.send("-3"), "valid weight")
	if h.step() != domain.StepAddWeight {
		t.Fatalf("expected to stay at weight step, got %q", h.step())
	}
	h.send("80")
	expectText(t, h.send("150"), "between 0 and 100")
	if h.step() != domain.StepAddFat {
		t.Fatalf("expected to stay at fat step, got %q", h.step())
	}
}

func TestCancelFromAnywhere(t *testing.T) {
	steps := []struct {
		name  string
		setup []string
	}{
		{"weight", []string{app.BtnAddEntry}},
		{"fat", []string{app.BtnAddEntry, "80"}},
		{"date", []string{app.BtnAddEntry, "80", "skip"}},
		{"height", []string{app.BtnSetHeight}},
		{"goal", []string{app.BtnAddGoal, "75"}},
	}
	for _, tc := range steps {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, 5)
			for _, s := range tc.setup {
				h.send(s)
			}
			expectText(t, h.send(app.BtnCancel), "Cancelled. Choose next action.")
			if h.step() != domain.StepIdle {
				t.Errorf("expected idle, got %q", h.step())
			}
			if len(h.entries()) != 0 {
				t.Error("cancel must not write entries")
			}
		})
	}
}

func TestEditFlow_UpdateSameDate(t *testing.T) {
	h := newHarness(t, 5)
	id := h.add("2024-01-01", 80, ptr(20))

	out := h.send(app.BtnEditEntries)
	expectText(t, out, "Pick an entry")
	expectText(t, h.press("ES|edit|pick|0"), "Send weight")
	h.send("79")
	out = h.send("19")
	kb := out[0].Keyboard
	if kb == nil || kb.Rows[len(kb.Rows)-1][0].Text != "Keep 2024-01-01" {
		t.Fatal("expected keep-date shortcut when editing")
	}

	expectText(t, h.press("DP|edit|pick|2024-01-01"), "Entry updated")
	list := h.entries()
	if len(list) != 1 || list[0].ID != id || list[0].WeightKg != 79 {
		t.Fatalf("unexpected entries after edit: %+v", list)
	}
	if list[0].FatWeightKg == nil || !almostEqual(*list[0].FatWeightKg, 15.01, 1e-9) {
		t.Errorf("expected recomputed fat weight, got %v", list[0].FatWeightKg)
	}
}

func TestEditFlow_ReplaceRemovesEditedEntry(t *testing.T) {
	h := newHarness(t, 5)
	target := h.add("2024-01-01", 80, nil)
	h.add("2024-01-02", 81, nil)

	h.send(app.BtnEditEntries)
	h.press("ES|edit|pick|0") // newest first: 2024-01-02
	h.send("70")
	h.send("skip")
	expectText(t, h.press("DP|edit|pick|2024-01-01"), "already exists")
	h.press("DUP|edit|replace|")

	list := h.entries()
	if len(list) != 1 {
		t.Fatalf("expected one entry after replace, got %+v", list)
	}
	if list[0].ID != target || list[0].WeightKg != 70 || list[0].Day() != "2024-01-01" {
		t.Errorf("unexpected survivor %+v", list[0])
	}
}

func TestEditFlow_EntryDeletedMeanwhile(t *testing.T) {
	h := newHarness(t, 5)
	id := h.add("2024-01-01", 80, nil)

	h.send(app.BtnEditEntries)
	h.press("ES|edit|pick|0")
	h.send("79")
	h.send("skip")
	if ok, _ := h.db.DeleteEntry(context.Background(), id, userID); !ok {
		t.Fatal("setup delete failed")
	}
	expectText(t, h.press("DP|edit|pick|2024-01-03"), "Could not update entry.")
	if h.step() != domain.StepIdle {
		t.Errorf("expected idle, got %q", h.step())
	}
}

func TestBrowse_PagingAndDelete(t *testing.T) {
	h := newHarness(t, 2)
	h.add("2024-01-01", 80, nil)
	h.add("2024-01-02", 81, nil)
	h.add("2024-01-03", 82, nil)

	expectText(t, h.send(app.BtnEditEntries), "page 1/2")
	out := h.press("ES|edit|page|1")
	expectText(t, out, "page 2/2")
	if !out[0].Edit {
		t.Error("expected paging to edit the list in place")
	}

	out = h.press("ES|edit|delete|2")
	expectText(t, out, "Deleted 2024-01-01")
	expectText(t, out, "page 1/1")
	if len(h.entries()) != 2 {
		t.Fatalf("expected 2 entries left, got %d", len(h.entries()))
	}
	if h.step() != domain.StepEditChoosing {
		t.Errorf("expected to stay in browse, got %q", h.step())
	}
}

func TestBrowse_DeleteLastEntryEndsFlow(t *testing.T) {
	h := newHarness(t, 5)
	h.add("2024-01-01", 80, nil)

	h.send(app.BtnEditEntries)
	expectText(t, h.press("ES|edit|delete|0"), "No entries left")
	if h.step() != domain.StepIdle {
		t.Errorf("expected idle, got %q", h.step())
	}
}

func TestBrowse_StaleIndex(t *testing.T) {
	h := newHarness(t, 5)
	h.add("2024-01-01", 80, nil)

	h.send(app.BtnEditEntries)
	expectText(t, h.press("ES|edit|pick|9"), "no longer in the list")
	expectText(t, h.send("7"), "no longer in the list")
	if h.step() != domain.StepEditChoosing {
		t.Errorf("expected to stay in browse, got %q", h.step())
	}
	expectText(t, h.send("1"), "Editing 2024-01-01")
}

func TestBrowse_Empty(t *testing.T) {
	h := newHarness(t, 5)
	expectText(t, h.send(app.BtnEditEntries), "No entries yet")
	if h.step() != domain.StepIdle {
		t.Errorf("expected idle, got %q", h.step())
	}
}

func TestInconsistentStateResets(t *testing.T) {
	h := newHarness(t, 5)
	ctx := context.Background()
	if err := h.sessions.Save(ctx, &domain.Session{UserID: userID, Step: domain.StepAddFat}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	expectText(t, h.send("20"), "Something went wrong, please start again.")
	if h.step() != domain.StepIdle {
		t.Errorf("expected idle, got %q", h.step())
	}

	// Weight and fat present but date step reached from a stale blob without FatSet.
	w := 80.0
	_ = h.sessions.Save(ctx, &domain.Session{UserID: userID, Step: domain.StepAddDate, WeightKg: &w})
	expectText(t, h.press("DP|add|pick|2024-01-01"), "Something went wrong")
	if len(h.entries()) != 0 {
		t.Error("inconsistent state must not write entries")
	}
}

func TestStaleButtonsAreIgnored(t *testing.T) {
	h := newHarness(t, 5)
	for _, payload := range []string{"DP|add|pick|2024-01-01", "DUP|edit|replace|", "ES|edit|delete|0", "garbage", "XX|a|b|c"} {
		out := h.press(payload)
		if len(out) != 1 || out[0].Notice == "" || out[0].Text != "" {
			t.Errorf("%q: expected a notice only, got %+v", payload, out)
		}
	}
	if h.step() != domain.StepIdle {
		t.Errorf("expected idle, got %q", h.step())
	}
}

func TestCalendarNavigation(t *testing.T) {
	h := newHarness(t, 5)
	h.send(app.BtnAddEntry)
	h.send("80")
	h.send("skip")

	out := h.press("DP|add|nav|2023-12-01")
	if len(out) != 1 || !out[0].Edit {
		t.Fatalf("expected in-place calendar update, got %+v", out)
	}
	if got := out[0].Keyboard.Rows[0][0].Text; got != "December 2023" {
		t.Errorf("header = %q", got)
	}
	if h.step() != domain.StepAddDate {
		t.Errorf("navigation must not change step, got %q", h.step())
	}
}

func TestHeightAndGoal(t *testing.T) {
	h := newHarness(t, 5)
	ctx := context.Background()

	expectText(t, h.send("/start"), "Hi!")
	if p, _ := h.db.GetUser(ctx, userID); p == nil {
		t.Fatal("expected /start to create the profile")
	}

	h.send(app.BtnSetHeight)
	expectText(t, h.send("300"), "between 50 and 250")
	expectText(t, h.send("180"), "Height saved: 180.0 cm")

	h.send(app.BtnAddGoal)
	h.send("80")
	out := h.send("20")
	expectText(t, out, "Goal: 80.0 kg @ 20.0% (fat 16.00 kg)")

	var editGoal bool
	for _, row := range out[0].Keyboard.Rows {
		for _, b := range row {
			if b.Text == app.BtnEditGoal {
				editGoal = true
			}
		}
	}
	if !editGoal {
		t.Error("expected main menu to offer Edit goal")
	}

	p, _ := h.db.GetUser(ctx, userID)
	if p.HeightCm == nil || *p.HeightCm != 180 || !p.HasGoal() {
		t.Errorf("unexpected profile %+v", p)
	}
}

func TestStats(t *testing.T) {
	h := newHarness(t, 5)

	out := h.send(app.BtnStats)
	if len(out) != 1 || string(out[0].Image) != "placeholder" {
		t.Fatalf("expected placeholder chart, got %+v", out)
	}

	h.add("2024-01-01", 80, ptr(20))
	h.add("2024-01-09", 78, ptr(19))
	out = h.send(app.BtnStats)
	if string(out[0].Image) != "dashboard" {
		t.Fatalf("expected dashboard chart, got %q", out[0].Image)
	}
	expectText(t, out, "Current fat weight: 14.82 kg")
}

func TestIdleTextShowsMenu(t *testing.T) {
	h := newHarness(t, 5)
	out := h.send("hello")
	expectText(t, out, "Choose an action.")
	if out[0].Keyboard == nil || out[0].Keyboard.Inline {
		t.Error("expected reply keyboard main menu")
	}
}

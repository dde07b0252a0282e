package board

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"whiteboard/core"
)

func sequentialIDs() IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("el-%d", n)
	}
}

func mustElement(t *testing.T, s *Session, id string) core.Element {
	t.Helper()
	for _, el := range s.Snapshot().Elements {
		if el.ID == id {
			return el
		}
	}
	t.Fatalf("element %s not found", id)
	return core.Element{}
}

func onlyElement(t *testing.T, s *Session) core.Element {
	t.Helper()
	els := s.Snapshot().Elements
	if len(els) != 1 {
		t.Fatalf("expected 1 element, got %d", len(els))
	}
	return els[0]
}

func TestNewSession_Defaults(t *testing.T) {
	s := NewSession()
	if s.Mode() != ToolMove {
		t.Errorf("Mode() = %s, want move", s.Mode())
	}
	if s.CursorHint() != CursorDefault {
		t.Errorf("CursorHint() = %s, want default", s.CursorHint())
	}
	if s.State() != StateIdle {
		t.Errorf("State() = %s, want idle", s.State())
	}
	if s.Dirty() {
		t.Error("new session should be clean")
	}
}

func TestScenarioA_CreateSquare(t *testing.T) {
	s := NewSession()
	s.SelectTool(ToolSquare)
	s.PointerDown(core.Point{X: 50, Y: 50}, "")

	el := onlyElement(t, s)
	if el.Kind() != core.KindShape || el.Variant() != core.VariantSquare {
		t.Errorf("kind = %s/%s, want shape/square", el.Kind(), el.Variant())
	}
	if el.Size != (core.Size{Width: 100, Height: 100}) {
		t.Errorf("size = %+v, want 100x100", el.Size)
	}
	if el.Position != (core.Point{X: 50, Y: 50}) {
		t.Errorf("position = %+v, want (50,50)", el.Position)
	}
	if !s.Dirty() {
		t.Error("creation should mark dirty")
	}
}

func TestScenarioB_DragSquare(t *testing.T) {
	s := NewSession(WithIDGenerator(sequentialIDs()))
	s.SelectTool(ToolSquare)
	s.PointerDown(core.Point{X: 50, Y: 50}, "")
	s.SelectTool(ToolMove)

	s.PointerDown(core.Point{X: 100, Y: 100}, "el-1")
	if s.State() != StateDragging {
		t.Fatalf("State() = %s, want dragging", s.State())
	}
	s.PointerMove(core.Point{X: 300, Y: 300})
	s.PointerUp()

	el := mustElement(t, s, "el-1")
	if el.Position != (core.Point{X: 250, Y: 250}) {
		t.Errorf("position = %+v, want (250,250)", el.Position)
	}
	if s.State() != StateIdle {
		t.Errorf("State() = %s, want idle", s.State())
	}
	if _, ok := s.ActiveElement(); ok {
		t.Error("active element should be cleared after pointer up")
	}
}

func TestScenarioC_EditText(t *testing.T) {
	s := NewSession(WithIDGenerator(sequentialIDs()))
	s.SelectTool(ToolText)
	s.PointerDown(core.Point{X: 10, Y: 10}, "")
	s.SelectTool(ToolMove)

	if !s.BeginEdit("el-1") {
		t.Fatal("BeginEdit() rejected a text element")
	}
	s.Commit("el-1", "hello")

	el := mustElement(t, s, "el-1")
	if got := el.Content.(core.TextContent).Text; got != "hello" {
		t.Errorf("text = %q, want hello", got)
	}
}

func TestScenarioD_RemoveUnknown(t *testing.T) {
	s := NewSession(WithSnapshot(core.NewSnapshot([]core.Element{
		core.DefaultElement("a", core.VariantArrow, core.Point{}),
	})))
	before := s.Snapshot()

	s.Do(func(doc *Document) {
		doc.Remove("nope")
	})

	if s.Dirty() {
		t.Error("dirty changed after removing unknown id")
	}
	if !reflect.DeepEqual(before, s.Snapshot()) {
		t.Error("document changed after removing unknown id")
	}
}

func TestScenarioE_SaveFailureKeepsDirty(t *testing.T) {
	boom := errors.New("disk on fire")
	s := NewSession(WithPersister(PersisterFunc(func(ctx context.Context, snap core.Snapshot) error {
		return boom
	})))
	s.SelectTool(ToolCircle)
	s.PointerDown(core.Point{}, "")

	err := s.Save(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Save() error = %v, want wrapped %v", err, boom)
	}
	if !s.Dirty() {
		t.Error("dirty should remain true after a failed save")
	}
}

func TestSave_SuccessMarksSaved(t *testing.T) {
	var saved []core.Snapshot
	s := NewSession(WithPersister(PersisterFunc(func(ctx context.Context, snap core.Snapshot) error {
		saved = append(saved, snap)
		return nil
	})))
	s.SelectTool(ToolImage)
	s.PointerDown(core.Point{X: 1, Y: 2}, "")

	if err := s.Save(context.Background()); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if s.Dirty() {
		t.Error("Save() should clear dirty")
	}
	if len(saved) != 1 || len(saved[0].Elements) != 1 {
		t.Fatalf("persister received %+v", saved)
	}
}

func TestSave_NoPersister(t *testing.T) {
	s := NewSession()
	if err := s.Save(context.Background()); !errors.Is(err, ErrNoPersister) {
		t.Errorf("Save() error = %v, want ErrNoPersister", err)
	}
}

func TestSave_EditDuringSaveStaysDirty(t *testing.T) {
	var s *Session
	s = NewSession(WithIDGenerator(sequentialIDs()), WithPersister(PersisterFunc(func(ctx context.Context, snap core.Snapshot) error {
		s.SelectTool(ToolArrow)
		s.PointerDown(core.Point{X: 5, Y: 5}, "")
		return nil
	})))

	if err := s.Save(context.Background()); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if !s.Dirty() {
		t.Error("an edit made while saving must keep the document dirty")
	}
}

func TestSave_ShortcutTriggersSave(t *testing.T) {
	calls := 0
	s := NewSession(WithPersister(PersisterFunc(func(ctx context.Context, snap core.Snapshot) error {
		calls++
		return nil
	})))
	s.SelectTool(ToolSquare)
	s.PointerDown(core.Point{}, "")

	for _, k := range []Key{{Key: "s", Ctrl: true}, {Key: "S", Meta: true}} {
		handled, err := s.KeyDown(context.Background(), k)
		if err != nil || !handled {
			t.Fatalf("KeyDown(%+v) = %v, %v", k, handled, err)
		}
	}
	if calls != 2 {
		t.Errorf("persister calls = %d, want 2", calls)
	}
	if handled, _ := s.KeyDown(context.Background(), Key{Key: "s"}); handled {
		t.Error("plain s should not be a shortcut")
	}
}

func TestIDs_UniqueAfterRemovals(t *testing.T) {
	repeating := []string{"x", "x", "y", "x", "z"}
	i := 0
	s := NewSession(WithIDGenerator(func() string {
		id := repeating[i%len(repeating)]
		i++
		return id
	}))
	s.SelectTool(ToolSquare)

	seen := map[string]bool{}
	for n := 0; n < 3; n++ {
		s.PointerDown(core.Point{X: float64(n), Y: 0}, "")
		for _, el := range s.Snapshot().Elements {
			if seen[el.ID] {
				continue
			}
			seen[el.ID] = true
			s.Do(func(doc *Document) { doc.Remove(el.ID) })
		}
	}
	if len(seen) != 3 {
		t.Errorf("distinct ids = %d (%v), want 3", len(seen), seen)
	}
}

func TestIDs_DefaultGeneratorUnique(t *testing.T) {
	s := NewSession()
	s.SelectTool(ToolText)
	for n := 0; n < 200; n++ {
		s.PointerDown(core.Point{}, "")
	}
	seen := map[string]bool{}
	for _, el := range s.Snapshot().Elements {
		if seen[el.ID] {
			t.Fatalf("duplicate id %s", el.ID)
		}
		seen[el.ID] = true
	}
}

func TestDrag_PathIndependent(t *testing.T) {
	paths := [][]core.Point{
		{{X: 130, Y: 170}},
		{{X: 101, Y: 99}, {X: -40, Y: 500}, {X: 130, Y: 170}},
		{{X: 110, Y: 110}, {X: 120, Y: 130}, {X: 125, Y: 150}, {X: 130, Y: 170}},
	}
	for i, path := range paths {
		t.Run(fmt.Sprintf("path-%d", i), func(t *testing.T) {
			s := NewSession(WithSnapshot(core.NewSnapshot([]core.Element{
				core.DefaultElement("a", core.VariantCircle, core.Point{X: 60, Y: 80}),
			})))
			s.PointerDown(core.Point{X: 100, Y: 100}, "a")
			for _, p := range path {
				s.PointerMove(p)
			}
			s.PointerUp()

			want := core.Point{X: 60 + 30, Y: 80 + 70}
			if got := mustElement(t, s, "a").Position; got != want {
				t.Errorf("position = %+v, want %+v", got, want)
			}
		})
	}
}

func TestDrag_NoClamping(t *testing.T) {
	s := NewSession(WithSnapshot(core.NewSnapshot([]core.Element{
		core.DefaultElement("a", core.VariantSquare, core.Point{X: 10, Y: 10}),
	})))
	s.PointerDown(core.Point{X: 20, Y: 20}, "a")
	s.PointerMove(core.Point{X: -500, Y: -700})
	s.PointerLeave()

	if got := mustElement(t, s, "a").Position; got != (core.Point{X: -510, Y: -710}) {
		t.Errorf("position = %+v, want (-510,-710)", got)
	}
	if s.State() != StateIdle {
		t.Errorf("pointer leave should end drag, state = %s", s.State())
	}
}

func TestDrag_ReturnToStartStillDirty(t *testing.T) {
	s := NewSession(WithSnapshot(core.NewSnapshot([]core.Element{
		core.DefaultElement("a", core.VariantSquare, core.Point{X: 10, Y: 10}),
	})))
	before := s.Snapshot()

	s.PointerDown(core.Point{X: 15, Y: 15}, "a")
	s.PointerMove(core.Point{X: 60, Y: 90})
	s.PointerMove(core.Point{X: 15, Y: 15})
	s.PointerUp()

	if !reflect.DeepEqual(before, s.Snapshot()) {
		t.Error("snapshot differs after a drag back to the start")
	}
	if !s.Dirty() {
		t.Error("dirty should be true after mutating calls")
	}
}

func TestDrag_MoveWithoutPressIsIgnored(t *testing.T) {
	s := NewSession(WithSnapshot(core.NewSnapshot([]core.Element{
		core.DefaultElement("a", core.VariantSquare, core.Point{}),
	})))
	s.PointerMove(core.Point{X: 50, Y: 50})
	if s.Dirty() {
		t.Error("move without drag mutated the document")
	}
}

func TestDrag_ElementRemovedMidGesture(t *testing.T) {
	s := NewSession(WithSnapshot(core.NewSnapshot([]core.Element{
		core.DefaultElement("a", core.VariantSquare, core.Point{}),
	})))
	s.PointerDown(core.Point{X: 5, Y: 5}, "a")
	s.Do(func(doc *Document) { doc.Remove("a") })

	s.PointerMove(core.Point{X: 50, Y: 50})
	s.PointerUp()

	if n := len(s.Snapshot().Elements); n != 0 {
		t.Errorf("removed element reappeared, %d elements", n)
	}
}

func TestDrag_PressOnEmptyCanvasInMoveMode(t *testing.T) {
	s := NewSession()
	s.PointerDown(core.Point{X: 5, Y: 5}, "")
	if s.State() != StateIdle || s.Dirty() {
		t.Errorf("press on empty canvas changed state: %s dirty=%v", s.State(), s.Dirty())
	}
}

// Creation tools create on top of existing elements instead of selecting them.
func TestCreate_OverExistingElementCreatesNew(t *testing.T) {
	s := NewSession(WithSnapshot(core.NewSnapshot([]core.Element{
		core.DefaultElement("a", core.VariantSquare, core.Point{}),
	})))
	s.SelectTool(ToolCircle)
	s.PointerDown(core.Point{X: 50, Y: 50}, "a")

	els := s.Snapshot().Elements
	if len(els) != 2 {
		t.Fatalf("elements = %d, want 2", len(els))
	}
	if els[1].Variant() != core.VariantCircle || els[1].Position != (core.Point{X: 50, Y: 50}) {
		t.Errorf("new element = %+v", els[1])
	}
	if s.State() != StateIdle {
		t.Errorf("creation should not start a drag, state = %s", s.State())
	}
	if got := mustElement(t, s, "a").Position; got != (core.Point{}) {
		t.Errorf("existing element moved to %+v", got)
	}
}

func TestEraser_RemovesPressedElement(t *testing.T) {
	s := NewSession(WithSnapshot(core.NewSnapshot([]core.Element{
		core.DefaultElement("a", core.VariantSquare, core.Point{}),
		core.DefaultElement("b", core.VariantSquare, core.Point{X: 300}),
	})))
	s.SelectTool(ToolEraser)

	s.PointerDown(core.Point{X: 600, Y: 600}, "")
	if s.Dirty() {
		t.Error("eraser on empty canvas mutated the document")
	}
	s.PointerDown(core.Point{X: 10, Y: 10}, "a")
	els := s.Snapshot().Elements
	if len(els) != 1 || els[0].ID != "b" {
		t.Errorf("elements after erase = %+v", els)
	}
}

func TestDeleteKey_RemovesActiveElement(t *testing.T) {
	for _, key := range []string{"Delete", "Backspace"} {
		t.Run(key, func(t *testing.T) {
			s := NewSession(WithSnapshot(core.NewSnapshot([]core.Element{
				core.DefaultElement("a", core.VariantSquare, core.Point{}),
			})))
			s.PointerDown(core.Point{X: 1, Y: 1}, "a")

			handled, err := s.KeyDown(context.Background(), Key{Key: key})
			if err != nil || !handled {
				t.Fatalf("KeyDown() = %v, %v", handled, err)
			}
			if len(s.Snapshot().Elements) != 0 {
				t.Error("active element not removed")
			}
			if _, ok := s.ActiveElement(); ok || s.State() != StateIdle {
				t.Errorf("session not reset, state = %s", s.State())
			}

			s.PointerMove(core.Point{X: 40, Y: 40})
			if len(s.Snapshot().Elements) != 0 {
				t.Error("move after delete resurrected element")
			}
		})
	}
}

func TestDeleteKey_WithoutActiveElement(t *testing.T) {
	s := NewSession(WithSnapshot(core.NewSnapshot([]core.Element{
		core.DefaultElement("a", core.VariantSquare, core.Point{}),
	})))
	handled, _ := s.KeyDown(context.Background(), Key{Key: "Delete"})
	if handled || s.Dirty() {
		t.Error("Delete without active element should do nothing")
	}
}

func TestDeleteActive(t *testing.T) {
	s := NewSession(WithSnapshot(core.NewSnapshot([]core.Element{
		core.DefaultElement("a", core.VariantArrow, core.Point{}),
	})))
	if s.DeleteActive() {
		t.Error("DeleteActive() with nothing active returned true")
	}
	s.PointerDown(core.Point{X: 1, Y: 1}, "a")
	if !s.DeleteActive() {
		t.Error("DeleteActive() did not remove the dragged element")
	}
}

func TestDoubleClick_OnlyTextBearingKinds(t *testing.T) {
	cases := []struct {
		variant core.Variant
		want    bool
	}{
		{core.VariantText, true},
		{core.VariantCard, true},
		{core.VariantSquare, false},
		{core.VariantCircle, false},
		{core.VariantArrow, false},
		{core.VariantImage, false},
	}
	for _, tc := range cases {
		t.Run(tc.variant.String(), func(t *testing.T) {
			s := NewSession(WithSnapshot(core.NewSnapshot([]core.Element{
				core.DefaultElement("a", tc.variant, core.Point{}),
			})))
			if got := s.DoubleClick("a"); got != tc.want {
				t.Errorf("DoubleClick() = %v, want %v", got, tc.want)
			}
			wantState := StateIdle
			if tc.want {
				wantState = StateEditingText
			}
			if s.State() != wantState {
				t.Errorf("State() = %s, want %s", s.State(), wantState)
			}
		})
	}
}

func TestDoubleClick_RequiresMoveMode(t *testing.T) {
	s := NewSession(WithSnapshot(core.NewSnapshot([]core.Element{
		core.DefaultElement("a", core.VariantText, core.Point{}),
	})))
	s.SelectTool(ToolText)
	if s.DoubleClick("a") {
		t.Error("DoubleClick() entered edit mode outside Move mode")
	}
}

func TestEdit_LiveCommitOnEveryChange(t *testing.T) {
	s := NewSession(WithSnapshot(core.NewSnapshot([]core.Element{
		core.DefaultElement("a", core.VariantText, core.Point{}),
	})))
	s.DoubleClick("a")
	s.EditText("h")
	if got := mustElement(t, s, "a").Content.(core.TextContent).Text; got != "h" {
		t.Errorf("text = %q, want live value h", got)
	}
	s.EditText("hi")
	s.Blur()

	if got := mustElement(t, s, "a").Content.(core.TextContent).Text; got != "hi" {
		t.Errorf("text = %q, want hi", got)
	}
	if s.State() != StateIdle {
		t.Errorf("State() = %s, want idle after blur", s.State())
	}
}

func TestEdit_DeferredFlushesOnBlur(t *testing.T) {
	s := NewSession(WithDeferredText(), WithSnapshot(core.NewSnapshot([]core.Element{
		core.DefaultElement("a", core.VariantText, core.Point{}),
	})))
	s.DoubleClick("a")
	s.EditText("draft")
	if got := mustElement(t, s, "a").Content.(core.TextContent).Text; got != core.DefaultText {
		t.Errorf("deferred edit written early: %q", got)
	}
	s.EditText("final")
	s.Blur()

	if got := mustElement(t, s, "a").Content.(core.TextContent).Text; got != "final" {
		t.Errorf("text = %q, want final", got)
	}
}

func TestEdit_DeferredFlushedBySave(t *testing.T) {
	var got core.Snapshot
	s := NewSession(
		WithDeferredText(),
		WithSnapshot(core.NewSnapshot([]core.Element{core.DefaultElement("a", core.VariantText, core.Point{})})),
		WithPersister(PersisterFunc(func(ctx context.Context, snap core.Snapshot) error {
			got = snap
			return nil
		})),
	)
	s.DoubleClick("a")
	s.EditText("typed")
	if _, err := s.KeyDown(context.Background(), Key{Key: "s", Ctrl: true}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if text := got.Elements[0].Content.(core.TextContent).Text; text != "typed" {
		t.Errorf("saved text = %q, want typed", text)
	}
	if s.State() != StateEditingText {
		t.Errorf("save should not leave edit mode, state = %s", s.State())
	}
}

func TestEdit_CardEditsTitle(t *testing.T) {
	s := NewSession(WithSnapshot(core.NewSnapshot([]core.Element{
		core.DefaultElement("c", core.VariantCard, core.Point{}),
	})))
	s.DoubleClick("c")
	s.EditText("Roadmap")
	s.Blur()

	card := mustElement(t, s, "c").Content.(core.CardContent)
	if card.Title != "Roadmap" {
		t.Errorf("title = %q, want Roadmap", card.Title)
	}
}

func TestEdit_DragStartOnEditedElementRejected(t *testing.T) {
	s := NewSession(WithSnapshot(core.NewSnapshot([]core.Element{
		core.DefaultElement("a", core.VariantText, core.Point{}),
	})))
	s.DoubleClick("a")
	s.PointerDown(core.Point{X: 5, Y: 5}, "a")

	if s.State() != StateEditingText {
		t.Errorf("State() = %s, want editing-text", s.State())
	}
	if _, ok := s.ActiveElement(); ok {
		t.Error("drag started on element under edit")
	}
}

func TestEdit_PressElsewhereEndsEdit(t *testing.T) {
	s := NewSession(WithDeferredText(), WithSnapshot(core.NewSnapshot([]core.Element{
		core.DefaultElement("a", core.VariantText, core.Point{}),
		core.DefaultElement("b", core.VariantSquare, core.Point{X: 400}),
	})))
	s.DoubleClick("a")
	s.EditText("kept")
	s.PointerDown(core.Point{X: 410, Y: 10}, "b")

	if s.State() != StateDragging {
		t.Errorf("State() = %s, want dragging", s.State())
	}
	if got := mustElement(t, s, "a").Content.(core.TextContent).Text; got != "kept" {
		t.Errorf("text = %q, want kept", got)
	}
}

func TestEdit_DoubleClickSwitchesTarget(t *testing.T) {
	s := NewSession(WithDeferredText(), WithSnapshot(core.NewSnapshot([]core.Element{
		core.DefaultElement("a", core.VariantText, core.Point{}),
		core.DefaultElement("b", core.VariantText, core.Point{X: 400}),
		core.DefaultElement("sq", core.VariantSquare, core.Point{X: 800}),
	})))
	s.DoubleClick("a")
	s.EditText("first")

	if !s.DoubleClick("b") {
		t.Fatal("DoubleClick() on second text element was ignored")
	}
	if got, _ := s.EditTarget(); got != "b" {
		t.Errorf("EditTarget() = %q, want b", got)
	}
	if got := mustElement(t, s, "a").Content.(core.TextContent).Text; got != "first" {
		t.Errorf("previous edit not flushed: %q", got)
	}

	s.EditText("second")
	if s.DoubleClick("sq") {
		t.Error("DoubleClick() on a square should not switch the edit")
	}
	if got, _ := s.EditTarget(); got != "b" {
		t.Errorf("EditTarget() = %q, want b after double-click on square", got)
	}
	if !s.DoubleClick("b") || s.State() != StateEditingText {
		t.Errorf("DoubleClick() on the element under edit should keep editing, state = %s", s.State())
	}
	s.Blur()
	if got := mustElement(t, s, "b").Content.(core.TextContent).Text; got != "second" {
		t.Errorf("text = %q, want second", got)
	}
}

func TestEdit_DeleteKeyIsTextKeystroke(t *testing.T) {
	s := NewSession(WithSnapshot(core.NewSnapshot([]core.Element{
		core.DefaultElement("a", core.VariantText, core.Point{}),
	})))
	s.DoubleClick("a")
	handled, _ := s.KeyDown(context.Background(), Key{Key: "Backspace"})
	if handled {
		t.Error("Backspace while editing should not be a shortcut")
	}
	if len(s.Snapshot().Elements) != 1 {
		t.Error("element removed while editing")
	}
}

func TestLoad_ResetsGesture(t *testing.T) {
	s := NewSession(WithSnapshot(core.NewSnapshot([]core.Element{
		core.DefaultElement("a", core.VariantSquare, core.Point{}),
	})))
	s.PointerDown(core.Point{X: 1, Y: 1}, "a")
	s.Load(core.NewSnapshot([]core.Element{core.DefaultElement("z", core.VariantText, core.Point{})}))

	if s.State() != StateIdle || s.Dirty() {
		t.Errorf("Load() left state=%s dirty=%v", s.State(), s.Dirty())
	}
	if got := onlyElement(t, s).ID; got != "z" {
		t.Errorf("element = %s, want z", got)
	}
}

func TestSessions_Independent(t *testing.T) {
	a := NewSession()
	b := NewSession()
	a.SelectTool(ToolSquare)
	a.PointerDown(core.Point{}, "")

	if b.Mode() != ToolMove {
		t.Error("tool leaked between sessions")
	}
	if len(b.Snapshot().Elements) != 0 {
		t.Error("elements leaked between sessions")
	}
}

func TestStatus_Consistent(t *testing.T) {
	s := NewSession(WithIDGenerator(sequentialIDs()))
	s.SelectTool(ToolArrow)
	s.PointerDown(core.Point{}, "")

	st := s.Status()
	if st.Mode != ToolArrow || st.Cursor != CursorCrosshair || st.State != "idle" || !st.Dirty {
		t.Errorf("Status() = %+v", st)
	}
	if len(st.Snapshot.Elements) != 1 {
		t.Errorf("status snapshot has %d elements", len(st.Snapshot.Elements))
	}
}

func TestSession_ConcurrentEvents(t *testing.T) {
	s := NewSession(WithSnapshot(core.NewSnapshot([]core.Element{
		core.DefaultElement("a", core.VariantSquare, core.Point{}),
	})))
	s.PointerDown(core.Point{}, "a")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.PointerMove(core.Point{X: float64(i), Y: float64(i)})
			_ = s.Status()
		}(i)
	}
	wg.Wait()
	s.PointerUp()

	pos := mustElement(t, s, "a").Position
	if pos.X != pos.Y || pos.X < 0 || pos.X >= 50 {
		t.Errorf("position %+v is not one of the delivered moves", pos)
	}
}

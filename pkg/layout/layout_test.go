package layout

import (
	"context"
	"encoding/json"
	"image"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/tavola/pkg/catalog"
	"github.com/matzehuels/tavola/pkg/errors"
	"github.com/matzehuels/tavola/pkg/fonts"
	"github.com/matzehuels/tavola/pkg/render"
)

func item(name string, w, h int) catalog.Item {
	return catalog.New(name, image.NewNRGBA(image.Rect(0, 0, w, h)))
}

func grouped(name, group string, w, h int) catalog.Item {
	return item(name, w, h).WithMeta(catalog.Metadata{"Sito": group}).WithGroup(group)
}

func squares(n, side int) []catalog.Item {
	out := make([]catalog.Item, n)
	for i := range out {
		out[i] = item("img"+string(rune('a'+i))+".png", side, side)
	}
	return out
}

func pageConfig(w, h, margin, spacing int) PageConfig {
	return PageConfig{Size: render.Size{Width: w, Height: h}, Margin: margin, Spacing: spacing}
}

func place(t *testing.T, s Strategy, items []catalog.Item, cfg PageConfig) (*Plan, Stats) {
	t.Helper()
	plan := new(Plan)
	stats, err := s.Place(context.Background(), items, cfg, plan)
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}
	return plan, stats
}

func entriesOn(plan *Plan, page int) []PlanEntry {
	var out []PlanEntry
	for _, e := range plan.Placements {
		if e.Page == page {
			out = append(out, e)
		}
	}
	return out
}

func checkNoOverlap(t *testing.T, plan *Plan) {
	t.Helper()
	for p := 0; p < plan.Pages; p++ {
		es := entriesOn(plan, p)
		for i, a := range es {
			for _, b := range es[i+1:] {
				if a.Rect().Overlaps(b.Rect()) {
					t.Errorf("page %d: %s %v overlaps %s %v", p, a.Name, a.Rect(), b.Name, b.Rect())
				}
			}
		}
	}
}

func TestScenarioAGrid(t *testing.T) {
	plan, stats := place(t, &Grid{Rows: 4, Cols: 3}, squares(12, 100), pageConfig(300, 400, 0, 0))
	if plan.Pages != 1 || stats.Pages != 1 {
		t.Fatalf("pages = %d, want 1", plan.Pages)
	}
	for i, e := range plan.Placements {
		want := image.Rect((i%3)*100, (i/3)*100, (i%3)*100+100, (i/3)*100+100)
		if e.Rect() != want {
			t.Errorf("item %d at %v, want %v", i, e.Rect(), want)
		}
	}
}

func TestScenarioBPuzzle(t *testing.T) {
	plan, _ := place(t, &Puzzle{Grouped: true}, squares(12, 100), pageConfig(300, 400, 0, 0))
	if plan.Pages != 1 {
		t.Fatalf("pages = %d, want 1", plan.Pages)
	}
	if len(plan.Placements) != 12 {
		t.Errorf("placements = %d, want 12", len(plan.Placements))
	}
	content := image.Rect(0, 0, 300, 400)
	for _, e := range plan.Placements {
		if !e.Rect().In(content) {
			t.Errorf("%s at %v outside content", e.Name, e.Rect())
		}
	}
	checkNoOverlap(t, plan)
}

func TestScenarioCNaturalSort(t *testing.T) {
	var items []catalog.Item
	for _, n := range []string{"img2", "img10", "img1", "img20", "img3"} {
		items = append(items, item(n, 1, 1))
	}
	got := names(Sort(items, SortNatural, SortNone))
	if diff := cmp.Diff([]string{"img1", "img2", "img3", "img10", "img20"}, got); diff != "" {
		t.Errorf("natural order mismatch (-want +got):\n%s", diff)
	}
}

func TestScenarioDGroupNewPage(t *testing.T) {
	items := []catalog.Item{
		grouped("a1", "A", 100, 100), grouped("a2", "A", 100, 100), grouped("a3", "A", 100, 100),
		grouped("b1", "B", 100, 100), grouped("b2", "B", 100, 100),
	}
	cfg := pageConfig(600, 400, 0, 0)
	cfg.GroupBreak = true
	cfg.BreakType = BreakNewPage

	plan, _ := place(t, &Grid{Rows: 1, Cols: 5}, items, cfg)
	if plan.Pages != 2 {
		t.Fatalf("pages = %d, want 2", plan.Pages)
	}
	if diff := cmp.Diff([]string{"a1", "a2", "a3"}, entryNames(entriesOn(plan, 0))); diff != "" {
		t.Errorf("page 1 mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b1", "b2"}, entryNames(entriesOn(plan, 1))); diff != "" {
		t.Errorf("page 2 mismatch (-want +got):\n%s", diff)
	}

	cfg.GroupBreak = false
	plan, _ = place(t, &Grid{Rows: 1, Cols: 5}, items, cfg)
	if plan.Pages != 1 {
		t.Errorf("without grouping pages = %d, want 1", plan.Pages)
	}
}

func TestScenarioEOversizePuzzle(t *testing.T) {
	items := append(squares(3, 100), item("huge.png", 600, 500))
	plan, stats := place(t, &Puzzle{}, items, pageConfig(300, 400, 0, 0))

	if plan.Pages != 2 {
		t.Fatalf("pages = %d, want 2", plan.Pages)
	}
	if diff := cmp.Diff([]string{"huge.png"}, stats.Fallbacks); diff != "" {
		t.Errorf("fallbacks mismatch (-want +got):\n%s", diff)
	}
	last := entriesOn(plan, 1)
	if len(last) != 1 || last[0].Name != "huge.png" {
		t.Fatalf("page 2 = %+v, want huge.png alone", last)
	}
	if want := image.Rect(0, 75, 300, 325); last[0].Rect() != want {
		t.Errorf("fallback rect = %v, want %v", last[0].Rect(), want)
	}
	for _, e := range entriesOn(plan, 0) {
		if e.Name == "huge.png" {
			t.Error("oversize item should not be packed into a bin")
		}
	}
}

func TestGridDividers(t *testing.T) {
	items := []catalog.Item{
		grouped("a1", "A", 100, 100), grouped("a2", "A", 100, 100),
		grouped("b1", "B", 100, 100), grouped("b2", "B", 100, 100),
	}
	cfg := pageConfig(300, 600, 0, 0)
	cfg.GroupBreak = true
	cfg.BreakType = BreakDivider
	cfg.DividerThickness = 2
	cfg.DividerWidthPercent = 50

	plan, stats := place(t, &Grid{Rows: 4, Cols: 3}, items, cfg)
	if plan.Pages != 1 || stats.Dividers != 1 {
		t.Fatalf("pages = %d, dividers = %d, want 1 and 1", plan.Pages, stats.Dividers)
	}
	// Content 100 + (100 + 2 + 2*15) = 232, centered in 600.
	d := plan.Dividers[0]
	if d.Y != 300 || d.X0 != 75 || d.X1 != 225 {
		t.Errorf("divider = %+v, want y=300 x=75..225", d)
	}
	if d.Label != "" {
		t.Errorf("label = %q, want none without group headers", d.Label)
	}
	ys := map[string]int{}
	for _, e := range plan.Placements {
		ys[e.Name] = e.Y
		if e.X != 50 && e.X != 150 {
			t.Errorf("%s x = %d, want row centered at 50 or 150", e.Name, e.X)
		}
	}
	if ys["a1"] != 184 || ys["b1"] != 316 {
		t.Errorf("row y = %d, %d, want 184, 316", ys["a1"], ys["b1"])
	}
}

func TestGridGroupHeaders(t *testing.T) {
	items := []catalog.Item{grouped("a", "Ostia", 50, 50), grouped("b", "Pompei", 50, 50)}
	cfg := pageConfig(300, 600, 0, 0)
	cfg.GroupBreak = true
	cfg.BreakType = BreakDivider
	cfg.GroupHeaders = true

	plan, _ := place(t, &Grid{Rows: 4, Cols: 3}, items, cfg)
	if len(plan.Dividers) != 1 || plan.Dividers[0].Label != "Pompei" {
		t.Errorf("dividers = %+v, want one labelled Pompei", plan.Dividers)
	}
}

func TestGridFallbackInline(t *testing.T) {
	items := []catalog.Item{item("a", 100, 100), item("tall", 100, 500), item("b", 100, 100)}
	plan, stats := place(t, &Grid{Rows: 4, Cols: 3}, items, pageConfig(300, 400, 0, 0))

	if plan.Pages != 3 {
		t.Fatalf("pages = %d, want 3", plan.Pages)
	}
	got := []string{entriesOn(plan, 0)[0].Name, entriesOn(plan, 1)[0].Name, entriesOn(plan, 2)[0].Name}
	if diff := cmp.Diff([]string{"a", "tall", "b"}, got); diff != "" {
		t.Errorf("page order mismatch (-want +got):\n%s", diff)
	}
	if want := image.Rect(110, 0, 190, 400); entriesOn(plan, 1)[0].Rect() != want {
		t.Errorf("fallback rect = %v, want %v", entriesOn(plan, 1)[0].Rect(), want)
	}
	if len(stats.Fallbacks) != 1 {
		t.Errorf("fallbacks = %v, want [tall]", stats.Fallbacks)
	}
}

func TestGridForcedWideRow(t *testing.T) {
	items := []catalog.Item{item("a", 100, 50), item("wide", 280, 50), item("b", 100, 50)}
	plan, _ := place(t, &Grid{Rows: 4, Cols: 3}, items, pageConfig(300, 400, 20, 0))

	byName := map[string]PlanEntry{}
	for _, e := range plan.Placements {
		byName[e.Name] = e
	}
	if byName["wide"].X != 10 {
		t.Errorf("wide x = %d, want 10 (centered, bleeding into the margin)", byName["wide"].X)
	}
	if byName["a"].Y == byName["wide"].Y || byName["b"].Y == byName["wide"].Y {
		t.Error("the wide item should sit alone in its row")
	}
}

func TestGridWiderThanPageFallsBack(t *testing.T) {
	items := []catalog.Item{item("a", 100, 50), item("huge", 520, 50)}
	plan, stats := place(t, &Grid{Rows: 4, Cols: 3}, items, pageConfig(300, 400, 20, 0))

	if diff := cmp.Diff([]string{"huge"}, stats.Fallbacks); diff != "" {
		t.Errorf("fallbacks mismatch (-want +got):\n%s", diff)
	}
	if plan.Pages != 2 {
		t.Fatalf("pages = %d, want 2", plan.Pages)
	}
	if want := image.Rect(20, 187, 280, 212); entriesOn(plan, 1)[0].Rect() != want {
		t.Errorf("fallback rect = %v, want %v", entriesOn(plan, 1)[0].Rect(), want)
	}
}

func TestGridRowFit(t *testing.T) {
	var items []catalog.Item
	for i := 0; i < 60; i++ {
		items = append(items, item("i"+string(rune('A'+i%26))+string(rune('a'+i/26)), 40+(i*37)%150, 30+(i*53)%120))
	}
	cfg := pageConfig(500, 700, 30, 8)
	plan, _ := place(t, &Grid{Rows: 5, Cols: 4}, items, cfg)

	content := cfg.Content()
	for _, e := range plan.Placements {
		if !e.Rect().In(content) {
			t.Errorf("%s at %v outside content %v", e.Name, e.Rect(), content)
		}
	}
	checkNoOverlap(t, plan)
	if c := Verify(items, plan); !c.Complete() {
		t.Errorf("coverage incomplete: %+v", c)
	}
}

func TestGridImagesPerPage(t *testing.T) {
	cfg := pageConfig(1000, 1000, 0, 0)
	cfg.ImagesPerPage = 4
	plan, _ := place(t, &Grid{Rows: 4, Cols: 3}, squares(10, 50), cfg)
	if plan.Pages != 3 {
		t.Errorf("pages = %d, want 3", plan.Pages)
	}
	for p := 0; p < plan.Pages; p++ {
		if n := len(entriesOn(plan, p)); n > 4 {
			t.Errorf("page %d holds %d items, want at most 4", p, n)
		}
	}
}

func TestGridInvalid(t *testing.T) {
	_, err := (&Grid{Rows: 0, Cols: 3}).Place(context.Background(), squares(1, 10), pageConfig(100, 100, 0, 0), new(Plan))
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidInput)
	}
	_, err = (&Grid{Rows: 1, Cols: 1}).Place(context.Background(), nil, pageConfig(100, 100, 60, 0), new(Plan))
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("margin: code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidInput)
	}
}

func TestPageConfigValidateMargin(t *testing.T) {
	tests := []struct {
		name        string
		cfg         PageConfig
		wantErr     bool
		wantContent image.Rectangle
	}{
		{"fits", pageConfig(100, 100, 10, 0), false, image.Rect(10, 10, 90, 90)},
		{"exactly half", pageConfig(100, 200, 50, 0), true, image.Rectangle{}},
		{"past half", pageConfig(100, 100, 60, 0), true, image.Rectangle{}},
		{"past half of height", pageConfig(400, 100, 60, 0), true, image.Rectangle{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr && !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Validate() = %v, want %s", err, errors.ErrCodeInvalidInput)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if got := tt.cfg.Content(); got != tt.wantContent {
				t.Errorf("Content() = %v, want %v", got, tt.wantContent)
			}
		})
	}

	plan := new(Plan)
	if _, err := (&Grid{Rows: 1, Cols: 1}).Place(context.Background(), squares(1, 10), pageConfig(100, 100, 60, 0), plan); err == nil {
		t.Fatal("Place() with oversized margin succeeded")
	}
	if plan.Pages != 0 {
		t.Errorf("pages = %d, want 0", plan.Pages)
	}
}

func TestPuzzleGroupedBins(t *testing.T) {
	items := []catalog.Item{
		grouped("a1", "A", 100, 100), grouped("b1", "B", 100, 100), grouped("a2", "A", 100, 100),
	}
	cfg := pageConfig(400, 400, 0, 0)
	cfg.GroupBreak = true

	plan, _ := place(t, &Puzzle{Grouped: true}, items, cfg)
	if plan.Pages != 2 {
		t.Fatalf("grouped pages = %d, want 2", plan.Pages)
	}
	if diff := cmp.Diff([]string{"a1", "a2"}, entryNames(entriesOn(plan, 0))); diff != "" {
		t.Errorf("first page mismatch (-want +got):\n%s", diff)
	}

	plan, _ = place(t, &Puzzle{Grouped: false}, items, cfg)
	if plan.Pages != 1 {
		t.Errorf("ungrouped pages = %d, want 1", plan.Pages)
	}
}

func TestPuzzleSpacingAndMargin(t *testing.T) {
	cfg := pageConfig(240, 240, 20, 10)
	plan, _ := place(t, &Puzzle{}, squares(4, 90), cfg)
	if plan.Pages != 1 {
		t.Fatalf("pages = %d, want 1", plan.Pages)
	}
	for _, e := range plan.Placements {
		if !e.Rect().In(cfg.Content()) {
			t.Errorf("%s at %v outside content", e.Name, e.Rect())
		}
		if e.W != 90 || e.H != 90 {
			t.Errorf("%s size = %dx%d, want 90x90 without spacing", e.Name, e.W, e.H)
		}
	}
}

func TestMasonryColumns(t *testing.T) {
	items := []catalog.Item{
		item("a", 200, 100), item("b", 100, 300), item("c", 50, 50), item("d", 100, 100),
	}
	plan, _ := place(t, &Masonry{Columns: 3}, items, pageConfig(320, 1000, 10, 0))

	want := map[string]image.Rectangle{
		"a": image.Rect(10, 10, 110, 60),
		"b": image.Rect(110, 10, 210, 310),
		"c": image.Rect(210, 10, 310, 110),
		"d": image.Rect(10, 60, 110, 160),
	}
	for _, e := range plan.Placements {
		if e.Rect() != want[e.Name] {
			t.Errorf("%s at %v, want %v", e.Name, e.Rect(), want[e.Name])
		}
	}
}

func TestMasonryOverflow(t *testing.T) {
	plan, _ := place(t, &Masonry{Columns: 3}, squares(7, 100), pageConfig(320, 300, 10, 0))
	if plan.Pages != 2 {
		t.Fatalf("pages = %d, want 2", plan.Pages)
	}
	if n := len(entriesOn(plan, 0)); n != 6 {
		t.Errorf("first page holds %d, want 6", n)
	}
	if e := entriesOn(plan, 1)[0]; e.X != 10 || e.Y != 10 {
		t.Errorf("second page starts at (%d,%d), want (10,10)", e.X, e.Y)
	}
}

func TestMasonryReservedCaptions(t *testing.T) {
	composer := &render.Composer{Fonts: fonts.NewResolver(), FontSize: 12, Padding: 5}
	m := &Masonry{Columns: 2, ReservedCaptions: composer}
	cfg := pageConfig(420, 2000, 10, 0)

	prepared, err := m.Prepare(context.Background(), []catalog.Item{item("a.png", 50, 50), item("b.png", 400, 100)}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	for _, it := range prepared {
		if it.Width() != 200 {
			t.Errorf("%s width = %d, want 200", it.Name, it.Width())
		}
		if it.Caption == nil || it.Caption.FontSize != 12 {
			t.Errorf("%s should carry a 12pt caption", it.Name)
		}
	}
	again, _ := m.Prepare(context.Background(), prepared, cfg)
	if again[0].Image != prepared[0].Image {
		t.Error("Prepare should leave prepared items untouched")
	}
}

func TestMasonryFallback(t *testing.T) {
	_, stats := place(t, &Masonry{Columns: 1}, []catalog.Item{item("a", 10, 10), item("tall", 10, 100)}, pageConfig(100, 100, 0, 0))
	if diff := cmp.Diff([]string{"tall"}, stats.Fallbacks); diff != "" {
		t.Errorf("fallbacks mismatch (-want +got):\n%s", diff)
	}
}

func TestCoverageAllModes(t *testing.T) {
	var items []catalog.Item
	for i := 0; i < 40; i++ {
		items = append(items, item("img"+string(rune('a'+i%26))+string(rune('0'+i/26))+".png", 30+(i*41)%200, 20+(i*29)%180))
	}
	items = append(items, item("giant.png", 2000, 3000))
	cfg := pageConfig(600, 800, 25, 6)

	for _, s := range []Strategy{&Grid{Rows: 4, Cols: 3}, &Puzzle{Grouped: true}, &Masonry{Columns: 3}} {
		t.Run(string(s.Mode()), func(t *testing.T) {
			plan, _ := place(t, s, items, cfg)
			if c := Verify(items, plan); !c.Complete() || c.Placed != len(items) {
				t.Errorf("coverage = %+v", c)
			}
			checkNoOverlap(t, plan)
		})
	}
}

func TestDeterministicPlacement(t *testing.T) {
	var items []catalog.Item
	for i := 0; i < 20; i++ {
		items = append(items, item("p"+string(rune('a'+i))+".png", 50+(i*13)%70, 40+(i*7)%90))
	}
	cfg := pageConfig(400, 400, 10, 4)
	for _, s := range []Strategy{&Grid{Rows: 3, Cols: 3}, &Puzzle{}, &Masonry{Columns: 2}} {
		sorted := Sort(items, SortRandom, SortNone, WithSeed(7))
		a, _ := place(t, s, sorted, cfg)
		sorted = Sort(items, SortRandom, SortNone, WithSeed(7))
		b, _ := place(t, s, sorted, cfg)
		if diff := cmp.Diff(a, b); diff != "" {
			t.Errorf("%s: seeded runs differ (-a +b):\n%s", s.Mode(), diff)
		}
	}
}

func TestSortMetadata(t *testing.T) {
	items := []catalog.Item{
		item("none.png", 1, 1),
		item("text.png", 1, 1).WithMeta(catalog.Metadata{"US": "abc"}),
		item("ten.png", 1, 1).WithMeta(catalog.Metadata{"US": "10"}),
		item("empty.png", 1, 1).WithMeta(catalog.Metadata{"US": " "}),
		item("nine.png", 1, 1).WithMeta(catalog.Metadata{"US": "9"}),
	}
	got := Sort(items, "US", SortNone)
	if diff := cmp.Diff([]string{"nine.png", "ten.png", "text.png", "empty.png", "none.png"}, names(got)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if got[0].Group != "9" || got[3].Group != "" {
		t.Errorf("groups = %q, %q, want 9 and empty", got[0].Group, got[3].Group)
	}
	if items[0].Name != "none.png" {
		t.Error("Sort must not reorder its input")
	}
}

func TestSortSecondary(t *testing.T) {
	items := []catalog.Item{
		item("c.png", 1, 1).WithMeta(catalog.Metadata{"Sito": "Ostia", "US": "2"}),
		item("a.png", 1, 1).WithMeta(catalog.Metadata{"Sito": "pompei", "US": "1"}),
		item("b.png", 1, 1).WithMeta(catalog.Metadata{"Sito": "Ostia", "US": "1"}),
	}
	got := Sort(items, "Sito", "US")
	if diff := cmp.Diff([]string{"b.png", "c.png", "a.png"}, names(got)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSortBuiltins(t *testing.T) {
	items := []catalog.Item{item("b.png", 1, 1), item("A.png", 1, 1), item("c.png", 1, 1)}
	tests := []struct {
		primary string
		want    []string
	}{
		{SortAlphabetical, []string{"A.png", "b.png", "c.png"}},
		{"", []string{"A.png", "b.png", "c.png"}},
		{"NoSuchColumn", []string{"A.png", "b.png", "c.png"}},
	}
	for _, tt := range tests {
		got := Sort(items, tt.primary, "")
		if diff := cmp.Diff(tt.want, names(got)); diff != "" {
			t.Errorf("Sort(%q) mismatch (-want +got):\n%s", tt.primary, diff)
		}
		for _, it := range got {
			if it.Group != "" {
				t.Errorf("Sort(%q) should not group, got %q", tt.primary, it.Group)
			}
		}
	}
}

func TestSortRandomSeeded(t *testing.T) {
	items := squares(20, 1)
	a := names(Sort(items, SortRandom, "", WithSeed(42)))
	b := names(Sort(items, SortRandom, "", WithSeed(42)))
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("seeded shuffle differs (-a +b):\n%s", diff)
	}
	sorted := slices.Clone(a)
	slices.Sort(sorted)
	if diff := cmp.Diff(names(items), sorted); diff != "" {
		t.Errorf("shuffle is not a permutation (-want +got):\n%s", diff)
	}
}

func TestScale(t *testing.T) {
	items := []catalog.Item{item("a", 101, 51), item("b", 1, 1)}
	same, err := Scale(context.Background(), items, 1)
	if err != nil {
		t.Fatal(err)
	}
	if same[0].Image != items[0].Image {
		t.Error("Scale(1) should return items unchanged")
	}

	half, err := Scale(context.Background(), items, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if half[0].Size() != image.Pt(50, 25) {
		t.Errorf("a scaled = %v, want 50x25", half[0].Size())
	}
	if half[1].Size() != image.Pt(1, 1) {
		t.Errorf("b scaled = %v, want at least 1x1", half[1].Size())
	}

	for _, f := range []float64{0, -1, math.NaN(), MaxScale + 1} {
		if _, err := Scale(context.Background(), items, f); !errors.Is(err, errors.ErrCodeInvalidScale) {
			t.Errorf("Scale(%v) code = %v, want %v", f, errors.GetCode(err), errors.ErrCodeInvalidScale)
		}
	}
}

func TestOptimalScale(t *testing.T) {
	items := squares(10, 100)
	cfg := pageConfig(1000, 1000, 0, 0)
	tests := []struct {
		name string
		s    Strategy
		ipp  int
		want float64
	}{
		{"grid", &Grid{Rows: 2, Cols: 2}, 4, 4.5},
		{"puzzle", &Puzzle{}, 4, math.Sqrt(1e6 * 0.85 / (40000 * 1.15))},
		{"masonry", &Masonry{Columns: 4}, 4, 2.375},
		{"none", &Grid{Rows: 2, Cols: 2}, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OptimalScale(items, cfg, tt.s, tt.ipp); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("OptimalScale() = %v, want %v", got, tt.want)
			}
		})
	}
	if got := OptimalScale(squares(2, 1), cfg, &Puzzle{}, 2); got != MaxOptimalScale {
		t.Errorf("OptimalScale() = %v, want clamp %v", got, MaxOptimalScale)
	}
}

func TestPlanReplay(t *testing.T) {
	items := []catalog.Item{
		grouped("a1", "A", 80, 60), grouped("a2", "A", 60, 80),
		grouped("b1", "B", 70, 70), grouped("b2", "B", 90, 40),
	}
	cfg := pageConfig(400, 500, 20, 5)
	cfg.GroupBreak = true
	cfg.BreakType = BreakDivider

	live := render.NewBook(cfg.Size, cfg.Margin, fonts.NewResolver())
	plan := new(Plan)
	if _, err := (&Grid{Rows: 3, Cols: 3}).Place(context.Background(), items, cfg, Tee(live, plan)); err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(plan)
	if err != nil {
		t.Fatal(err)
	}
	var cached Plan
	if err := json.Unmarshal(data, &cached); err != nil {
		t.Fatal(err)
	}

	replayed := render.NewBook(cfg.Size, cfg.Margin, fonts.NewResolver())
	if err := cached.Replay(items, replayed); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(bookBounds(live), bookBounds(replayed)); diff != "" {
		t.Errorf("replay differs (-live +replayed):\n%s", diff)
	}

	if err := cached.Replay(items[:1], render.NewBook(cfg.Size, 0, fonts.NewResolver())); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("replay with missing item: code = %v, want %v", errors.GetCode(err), errors.ErrCodeNotFound)
	}
}

func TestVerify(t *testing.T) {
	items := squares(3, 1)
	plan := &Plan{Pages: 1, Placements: []PlanEntry{{Name: items[0].Name}, {Name: items[0].Name}, {Name: items[1].Name}}}
	c := Verify(items, plan)
	if c.Complete() {
		t.Error("coverage should be incomplete")
	}
	if diff := cmp.Diff(Coverage{Expected: 3, Placed: 3, Missing: []string{items[2].Name}, Duplicated: []string{items[0].Name}}, c); diff != "" {
		t.Errorf("Verify mismatch (-want +got):\n%s", diff)
	}
}

func TestSuggest(t *testing.T) {
	cfg := pageConfig(2480, 3508, 50, 10)
	cfg.Size.Name = "A4"

	got := Suggest(cfg, Summary{Mode: ModeGrid, Scale: 0.5, Items: 10, Pages: 4, Fallbacks: 2})
	joined := strings.Join(got, "\n")
	for _, want := range []string{"2 image(s)", "0.35", "30px", "5px", "A3", "puzzle"} {
		if !strings.Contains(joined, want) {
			t.Errorf("suggestions missing %q:\n%s", want, joined)
		}
	}

	if got := Suggest(cfg, Summary{Mode: ModePuzzle, Scale: 0.5, Items: 10, Pages: 1}); len(got) != 0 {
		t.Errorf("clean run suggestions = %v, want none", got)
	}

	narrow := Suggest(pageConfig(600, 800, 10, 10), Summary{Mode: ModeMasonry, Columns: 6, Items: 6, Pages: 1})
	if len(narrow) != 1 || !strings.Contains(narrow[0], "columns") {
		t.Errorf("masonry suggestions = %v", narrow)
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(" Puzzle "); err != nil || m != ModePuzzle {
		t.Errorf("ParseMode = %v, %v", m, err)
	}
	if _, err := ParseMode("mosaic"); !errors.Is(err, errors.ErrCodeInvalidMode) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidMode)
	}
}

func names(items []catalog.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func entryNames(es []PlanEntry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Name
	}
	return out
}

func bookBounds(b *render.Book) [][]image.Rectangle {
	var out [][]image.Rectangle
	for _, p := range b.Pages {
		var rs []image.Rectangle
		for _, el := range p.Elements {
			rs = append(rs, el.Bounds())
		}
		out = append(out, rs)
	}
	return out
}

package keyvibes

import "testing"

func TestClassifyKey(t *testing.T) {
	cases := []struct {
		key  Key
		want Category
	}{
		{KeySpace, CategorySpace},
		{KeyEnter, CategoryEnter},
		{KeyBackspace, CategoryBackspace},
		{KeyShift, CategoryModifier},
		{KeyShiftRight, CategoryModifier},
		{KeyCtrl, CategoryModifier},
		{KeyAltRight, CategoryModifier},
		{KeyCmd, CategoryModifier},
		{KeyCapsLock, CategoryModifier},
		{KeyTab, CategoryModifier},
		{KeyEscape, CategoryModifier},
		{KeyUp, CategoryArrow},
		{KeyDown, CategoryArrow},
		{KeyLeft, CategoryArrow},
		{KeyRight, CategoryArrow},
		{KeyHome, CategoryArrow},
		{KeyEnd, CategoryArrow},
		{KeyPageUp, CategoryArrow},
		{KeyPageDown, CategoryArrow},
		{KeyInsert, CategoryArrow},
		{KeyDelete, CategoryArrow},
		{"f1", CategoryFunction},
		{"f5", CategoryFunction},
		{"f12", CategoryFunction},
		{"f24", CategoryFunction},
		{"a", CategoryNormal},
		{"z", CategoryNormal},
		{"7", CategoryNormal},
		{";", CategoryNormal},
	}
	for _, tc := range cases {
		if got := ClassifyKey(tc.key); got != tc.want {
			t.Fatalf("ClassifyKey(%q) = %v, want %v", tc.key, got, tc.want)
		}
	}
}

func TestClassifyKeyFunctionPatternEdges(t *testing.T) {
	cases := []struct {
		key  Key
		want Category
	}{
		{"f", CategoryNormal},
		{"f0", CategoryNormal},
		{"f25", CategoryNormal},
		{"f99", CategoryNormal},
		{"fx", CategoryNormal},
		{"f1x", CategoryNormal},
		{"g5", CategoryNormal},
	}
	for _, tc := range cases {
		if got := ClassifyKey(tc.key); got != tc.want {
			t.Fatalf("ClassifyKey(%q) = %v, want %v", tc.key, got, tc.want)
		}
	}
}

func TestClassifyKeyUnknownNamedKeyFallsBackToNormal(t *testing.T) {
	if got := ClassifyKey("media_play_pause"); got != CategoryNormal {
		t.Fatalf("unknown named key = %v, want %v", got, CategoryNormal)
	}
}

func TestCategoryStringNamesAreStable(t *testing.T) {
	want := []string{"normal", "space", "backspace", "enter", "modifier", "arrow", "function"}
	cats := Categories()
	if len(cats) != len(want) {
		t.Fatalf("Categories() returned %d entries, want %d", len(cats), len(want))
	}
	for i, c := range cats {
		if c.String() != want[i] {
			t.Fatalf("category %d name = %q, want %q", i, c.String(), want[i])
		}
	}
}

func TestParseCategoryRoundTrip(t *testing.T) {
	for _, c := range Categories() {
		got, ok := ParseCategory(c.String())
		if !ok || got != c {
			t.Fatalf("ParseCategory(%q) = %v, %v; want %v, true", c.String(), got, ok, c)
		}
	}
	if _, ok := ParseCategory("bogus"); ok {
		t.Fatalf("ParseCategory(\"bogus\") should not resolve")
	}
}

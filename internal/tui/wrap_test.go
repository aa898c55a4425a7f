package tui

import "testing"

func TestWrapTextBreaksAtSpaces(t *testing.T) {
	got := wrapText("placed 2, asked for 3", 10)
	want := "placed 2,\nasked for\n3"
	if got != want {
		t.Fatalf("wrapText = %q, want %q", got, want)
	}
}

func TestWrapTextBreaksJapaneseByWidth(t *testing.T) {
	got := wrapText("さんこください", 6)
	want := "さんこ\nくださ\nい"
	if got != want {
		t.Fatalf("wrapText = %q, want %q", got, want)
	}
}

func TestWrapTextShortOrUnbounded(t *testing.T) {
	if got := wrapText("正解！", 40); got != "正解！" {
		t.Fatalf("unexpected wrap: %q", got)
	}
	if got := wrapText("a b c", 0); got != "a b c" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestCenterOver(t *testing.T) {
	if got := centerOver("さんこ", 12); got != "   さんこ" {
		t.Fatalf("centerOver = %q", got)
	}
	if got := centerOver("いっぴき", 4); got != "いっぴき" {
		t.Fatalf("centerOver = %q", got)
	}
}

package presenter

import "testing"

func TestSplitArtistTitleWithDelimiter(t *testing.T) {
	artist, title := splitArtistTitle("Rick Astley - Never Gonna Give You Up")
	if artist != "Rick Astley" || title != "Never Gonna Give You Up" {
		t.Fatalf("got artist=%q title=%q", artist, title)
	}
}

func TestSplitArtistTitleWithoutDelimiter(t *testing.T) {
	artist, title := splitArtistTitle("just a title")
	if artist != "" || title != "just a title" {
		t.Fatalf("expected empty artist and full query as title, got artist=%q title=%q", artist, title)
	}
}

package nfo

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"mvlib/internal/sources"
)

const canonicalDoc = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<musicvideo>
  <title>Rio</title>
  <album>Rio</album>
  <studio>EMI</studio>
  <year>1982</year>
  <director>Russell Mulcahy</director>
  <genre>New Wave</genre>
  <artist>Duran Duran</artist>
  <tag>80s</tag>
  <tag>mtv</tag>
  <sources>
    <url ts="2024-01-15T10:30:00Z">http://x/1</url>
    <url ts="2024-01-15T10:35:00Z" failed="true" search="true" channel="UC123">http://x/2</url>
  </sources>
</musicvideo>
`

func TestDecodeCanonical(t *testing.T) {
	rec, err := Decode([]byte(canonicalDoc), "rio.nfo")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if rec.Title != "Rio" || rec.Album != "Rio" || rec.Label != "EMI" || rec.Year != "1982" {
		t.Fatalf("scalars: %+v", rec)
	}
	if !reflect.DeepEqual(rec.Artists, []string{"Duran Duran"}) {
		t.Fatalf("artists = %v", rec.Artists)
	}
	if !reflect.DeepEqual(rec.Tags, []string{"80s", "mtv"}) {
		t.Fatalf("tags = %v", rec.Tags)
	}

	entries := rec.Sources.Entries()
	if len(entries) != 2 {
		t.Fatalf("source entries = %d, want 2", len(entries))
	}
	first := entries[0]
	if first.URL != "http://x/1" || first.Outcome != sources.OutcomeSuccess {
		t.Fatalf("first entry: %+v", first)
	}
	wantTS := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	if !first.Timestamp.Equal(wantTS) {
		t.Fatalf("first ts = %v, want %v", first.Timestamp, wantTS)
	}
	second := entries[1]
	if !second.Outcome.Failed() || second.Discovery != sources.DiscoverySearched || second.Channel != "UC123" {
		t.Fatalf("second entry: %+v", second)
	}
}

func TestDecodeCommaJoinedTags(t *testing.T) {
	doc := `<musicvideo><title>Rio</title><artist>Duran Duran</artist><tag>80s, mtv, synth</tag></musicvideo>`
	rec, err := Decode([]byte(doc), "t.nfo")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(rec.Tags, []string{"80s", "mtv", "synth"}) {
		t.Fatalf("tags = %v", rec.Tags)
	}
}

func TestDecodeSiblingSources(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<musicvideo>
  <title>Rio</title>
  <artist>Duran Duran</artist>
</musicvideo>
<sources>
  <url ts="2024-01-15T10:30:00Z">http://x/1</url>
</sources>
`
	rec, err := Decode([]byte(doc), "sibling.nfo")
	if err != nil {
		t.Fatalf("Decode sibling-sources: %v", err)
	}
	url, ok := rec.Sources.ResolveCurrent()
	if !ok || url != "http://x/1" {
		t.Fatalf("resolve = %q, %v", url, ok)
	}
}

func TestDecodeLegacySourceContainer(t *testing.T) {
	doc := `<musicvideo>
  <title>Rio</title>
  <artist>Duran Duran</artist>
  <source>
    <url index="0">http://x/X</url>
    <url index="1">http://x/Y</url>
    <url index="2">http://x/Z</url>
  </source>
</musicvideo>`
	rec, err := Decode([]byte(doc), "legacy.nfo")
	if err != nil {
		t.Fatal(err)
	}
	entries := rec.Sources.Entries()
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	want := []string{"http://x/X", "http://x/Y", "http://x/Z"}
	for i, url := range want {
		if entries[i].URL != url {
			t.Fatalf("entry %d = %q, want %q", i, entries[i].URL, url)
		}
		if entries[i].Outcome != sources.OutcomeUnknown {
			t.Fatalf("entry %d outcome = %v, want unknown", i, entries[i].Outcome)
		}
		if !entries[i].Timestamp.IsZero() {
			t.Fatalf("entry %d has timestamp %v, want none", i, entries[i].Timestamp)
		}
	}
}

func TestDecodeLegacySourceDocumentOrderWithoutIndex(t *testing.T) {
	doc := `<musicvideo>
  <title>Rio</title>
  <artist>Duran Duran</artist>
  <source>
    <url>http://x/first</url>
    <url>http://x/second</url>
  </source>
</musicvideo>`
	rec, err := Decode([]byte(doc), "legacy.nfo")
	if err != nil {
		t.Fatal(err)
	}
	entries := rec.Sources.Entries()
	if entries[0].URL != "http://x/first" || entries[1].URL != "http://x/second" {
		t.Fatalf("document order not preserved: %+v", entries)
	}
}

func TestDecodePremieredDerivesYear(t *testing.T) {
	doc := `<musicvideo><title>Rio</title><artist>Duran Duran</artist><premiered>1982-05-10</premiered></musicvideo>`
	rec, err := Decode([]byte(doc), "p.nfo")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Year != "1982" {
		t.Fatalf("year = %q, want 1982", rec.Year)
	}
}

func TestDecodeExplicitYearWinsOverPremiered(t *testing.T) {
	doc := `<musicvideo><title>Rio</title><artist>Duran Duran</artist><year>1983</year><premiered>1982-05-10</premiered></musicvideo>`
	rec, err := Decode([]byte(doc), "p.nfo")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Year != "1983" {
		t.Fatalf("year = %q, want 1983", rec.Year)
	}
}

func TestDecodeDropsEmptyURLEntries(t *testing.T) {
	doc := `<musicvideo><title>Rio</title><artist>Duran Duran</artist>
<sources><url ts="2024-01-15T10:30:00Z">   </url><url>http://x/1</url></sources></musicvideo>`
	rec, err := Decode([]byte(doc), "e.nfo")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Sources.Len() != 1 {
		t.Fatalf("entries = %d, want 1 (blank dropped)", rec.Sources.Len())
	}
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode([]byte("<musicvideo><title>Broken"), "broken.nfo")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("err = %v, want ParseError", err)
	}
	if parseErr.Path != "broken.nfo" {
		t.Fatalf("path = %q", parseErr.Path)
	}
}

func TestDecodeNotMusicVideo(t *testing.T) {
	_, err := Decode([]byte("<movie><title>X</title></movie>"), "m.nfo")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("err = %v, want ParseError", err)
	}
}

func TestDecodeMissingMandatoryFields(t *testing.T) {
	doc := `<musicvideo><album>Rio</album></musicvideo>`
	rec, err := Decode([]byte(doc), "m.nfo")
	var missing *MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v, want MissingFieldError", err)
	}
	if rec == nil || rec.Album != "Rio" {
		t.Fatalf("partial record not returned: %+v", rec)
	}
	if len(missing.Fields) != 2 {
		t.Fatalf("fields = %v, want title and artist", missing.Fields)
	}
}

func TestDecodeUnparsableTimestampSortsEarliest(t *testing.T) {
	doc := `<musicvideo><title>Rio</title><artist>Duran Duran</artist>
<sources>
  <url ts="not-a-date">http://x/old</url>
  <url ts="2024-01-15T10:30:00Z">http://x/new</url>
</sources></musicvideo>`
	rec, err := Decode([]byte(doc), "ts.nfo")
	if err != nil {
		t.Fatal(err)
	}
	url, _ := rec.Sources.ResolveCurrent()
	if url != "http://x/new" {
		t.Fatalf("resolve = %q, want the parsable timestamp to win", url)
	}
}

func TestDecodeNaiveIsoformatTimestamp(t *testing.T) {
	doc := `<musicvideo><title>Rio</title><artist>Duran Duran</artist>
<sources><url ts="2024-01-15T10:30:00.123456">http://x/1</url></sources></musicvideo>`
	rec, err := Decode([]byte(doc), "naive.nfo")
	if err != nil {
		t.Fatal(err)
	}
	e := rec.Sources.Entries()[0]
	if e.Timestamp.IsZero() {
		t.Fatal("naive isoformat timestamp not parsed")
	}
}

func TestRoundTrip(t *testing.T) {
	rec := &Record{
		Title:     "Rio",
		Album:     "Rio",
		Label:     "EMI",
		Year:      "1982",
		Artists:   []string{"Duran Duran"},
		Directors: []string{"Russell Mulcahy"},
		Genres:    []string{"New Wave"},
		Tags:      []string{"80s", "mtv"},
	}
	rec.Sources.Append(sources.Entry{
		URL:       "http://x/1",
		Timestamp: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		Outcome:   sources.OutcomeSuccess,
		Index:     sources.NoIndex,
	})
	rec.Sources.Append(sources.Entry{
		URL:       "http://x/2",
		Timestamp: time.Date(2024, 1, 15, 10, 35, 0, 0, time.UTC),
		Outcome:   sources.OutcomeFailed,
		Discovery: sources.DiscoverySearched,
		Channel:   "UC123",
		Index:     sources.NoIndex,
	})

	decoded, err := Decode(Encode(rec), "roundtrip.nfo")
	if err != nil {
		t.Fatalf("decode(encode): %v", err)
	}
	if decoded.Title != rec.Title || decoded.Album != rec.Album ||
		decoded.Label != rec.Label || decoded.Year != rec.Year {
		t.Fatalf("scalars changed: %+v", decoded)
	}
	if !reflect.DeepEqual(decoded.Artists, rec.Artists) ||
		!reflect.DeepEqual(decoded.Directors, rec.Directors) ||
		!reflect.DeepEqual(decoded.Genres, rec.Genres) ||
		!reflect.DeepEqual(decoded.Tags, rec.Tags) {
		t.Fatalf("lists changed: %+v", decoded)
	}
	got := decoded.Sources.Entries()
	want := rec.Sources.Entries()
	if len(got) != len(want) {
		t.Fatalf("entries = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestEncodeStable(t *testing.T) {
	rec, err := Decode([]byte(canonicalDoc), "rio.nfo")
	if err != nil {
		t.Fatal(err)
	}
	first := string(Encode(rec))
	second := string(Encode(rec))
	if first != second {
		t.Fatal("Encode is not byte-stable for an unchanged record")
	}
	if !strings.Contains(first, "\n  <title>") {
		t.Fatalf("output not indented:\n%s", first)
	}
	if !strings.HasPrefix(first, xmlDeclaration) {
		t.Fatalf("missing declaration:\n%s", first)
	}
}

func TestEncodeEscapes(t *testing.T) {
	rec := &Record{
		Title:   `Love & "War" <Live>`,
		Artists: []string{"A&B"},
	}
	rec.Sources.Append(sources.Entry{URL: "http://x/watch?v=1&list=2", Index: sources.NoIndex})
	decoded, err := Decode(Encode(rec), "esc.nfo")
	if err != nil {
		t.Fatalf("decode escaped doc: %v", err)
	}
	if decoded.Title != rec.Title {
		t.Fatalf("title = %q, want %q", decoded.Title, rec.Title)
	}
	if url, _ := decoded.Sources.ResolveCurrent(); url != "http://x/watch?v=1&list=2" {
		t.Fatalf("url = %q", url)
	}
}

func TestEncodeSkipsEmptyValues(t *testing.T) {
	rec := &Record{
		Title:     "Rio",
		Artists:   []string{"Duran Duran", ""},
		Directors: []string{""},
	}
	out := string(Encode(rec))
	if strings.Contains(out, "<director>") {
		t.Fatalf("empty director emitted:\n%s", out)
	}
	if strings.Contains(out, "<studio>") || strings.Contains(out, "<year>") {
		t.Fatalf("empty scalars emitted:\n%s", out)
	}
	if strings.Contains(out, "<sources>") {
		t.Fatalf("empty sources emitted:\n%s", out)
	}
}

func TestArtistRoundTrip(t *testing.T) {
	rec := &ArtistRecord{Name: "Duran Duran", Biography: "Formed in Birmingham, 1978."}
	decoded, err := DecodeArtist(EncodeArtist(rec), "artist.nfo")
	if err != nil {
		t.Fatal(err)
	}
	if *decoded != *rec {
		t.Fatalf("got %+v, want %+v", decoded, rec)
	}
}

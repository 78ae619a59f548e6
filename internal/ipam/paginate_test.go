package ipam

import (
	"net/url"
	"testing"
)

func hostsURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url %q: %v", raw, err)
	}
	return u
}

func cursorOf(t *testing.T, link *string, param string) (string, bool) {
	t.Helper()
	if link == nil {
		t.Fatal("link is nil")
	}
	u := hostsURL(t, *link)
	values := u.Query()
	if _, present := values[param]; !present {
		return "", false
	}
	return values.Get(param), true
}

// five-host sequence: 10.0.0.1 .. 10.0.0.5
func fiveHosts(t *testing.T, used UsedFunc) *HostSequence {
	t.Helper()
	space := mustSpace(t, "10.0.0.0/29")
	return NewHostSequence(space, used).Slice(bi(0), bi(5))
}

func TestPaginateFirstPage(t *testing.T) {
	seq := fiveHosts(t, noneUsed)
	paginator := NewPaginator(2, "start")

	page, err := paginator.Paginate(seq, hostsURL(t, "http://api.test/subnets/7/hosts"))
	if err != nil {
		t.Fatalf("Paginate returned error: %v", err)
	}

	if len(page.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(page.Results))
	}
	if page.Results[0].Address != "10.0.0.1" || page.Results[1].Address != "10.0.0.2" {
		t.Fatalf("unexpected first page: %+v", page.Results)
	}
	if page.Previous != nil {
		t.Fatalf("first page should have no previous link, got %s", *page.Previous)
	}

	cursor, present := cursorOf(t, page.Next, "start")
	if !present || cursor != "10.0.0.3" {
		t.Fatalf("next cursor = %q (present=%v), want 10.0.0.3", cursor, present)
	}
}

func TestPaginateSecondPage(t *testing.T) {
	seq := fiveHosts(t, noneUsed)
	paginator := NewPaginator(2, "start")

	page, err := paginator.Paginate(seq, hostsURL(t, "http://api.test/subnets/7/hosts?start=10.0.0.3"))
	if err != nil {
		t.Fatalf("Paginate returned error: %v", err)
	}

	if len(page.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(page.Results))
	}
	if page.Results[0].Address != "10.0.0.3" || page.Results[1].Address != "10.0.0.4" {
		t.Fatalf("unexpected second page: %+v", page.Results)
	}

	cursor, present := cursorOf(t, page.Next, "start")
	if !present || cursor != "10.0.0.5" {
		t.Fatalf("next cursor = %q (present=%v), want 10.0.0.5", cursor, present)
	}

	// Stepping back from offset 2 lands on page one: the previous link
	// carries no cursor parameter at all.
	if _, present := cursorOf(t, page.Previous, "start"); present {
		t.Fatalf("previous link should drop the cursor parameter, got %s", *page.Previous)
	}
}

func TestPaginateLastPage(t *testing.T) {
	seq := fiveHosts(t, noneUsed)
	paginator := NewPaginator(2, "start")

	page, err := paginator.Paginate(seq, hostsURL(t, "http://api.test/subnets/7/hosts?start=10.0.0.5"))
	if err != nil {
		t.Fatalf("Paginate returned error: %v", err)
	}

	if len(page.Results) != 1 || page.Results[0].Address != "10.0.0.5" {
		t.Fatalf("unexpected last page: %+v", page.Results)
	}
	if page.Next != nil {
		t.Fatalf("last page should have no next link, got %s", *page.Next)
	}

	cursor, present := cursorOf(t, page.Previous, "start")
	if !present || cursor != "10.0.0.3" {
		t.Fatalf("previous cursor = %q (present=%v), want 10.0.0.3", cursor, present)
	}
}

func TestPaginateBadCursorRestartsAtFirstPage(t *testing.T) {
	seq := fiveHosts(t, noneUsed)
	paginator := NewPaginator(2, "start")

	baseline, err := paginator.Paginate(seq, hostsURL(t, "http://api.test/subnets/7/hosts"))
	if err != nil {
		t.Fatalf("Paginate returned error: %v", err)
	}

	for _, cursor := range []string{"bananas", "10.0.9.9", "fd00::1", "10.0.0.0"} {
		u := hostsURL(t, "http://api.test/subnets/7/hosts")
		q := u.Query()
		q.Set("start", cursor)
		u.RawQuery = q.Encode()

		page, err := paginator.Paginate(seq, u)
		if err != nil {
			t.Fatalf("Paginate(%q) returned error: %v", cursor, err)
		}
		if len(page.Results) != len(baseline.Results) {
			t.Fatalf("cursor %q: got %d results, want %d", cursor, len(page.Results), len(baseline.Results))
		}
		for i := range page.Results {
			if page.Results[i] != baseline.Results[i] {
				t.Fatalf("cursor %q: result %d = %+v, want %+v", cursor, i, page.Results[i], baseline.Results[i])
			}
		}
		if page.Previous != nil {
			t.Fatalf("cursor %q: expected no previous link", cursor)
		}
	}
}

func TestPaginateKeepsUnrelatedQueryParams(t *testing.T) {
	seq := fiveHosts(t, noneUsed)
	paginator := NewPaginator(2, "start")

	page, err := paginator.Paginate(seq, hostsURL(t, "http://api.test/subnets/7/hosts?format=json&start=10.0.0.3"))
	if err != nil {
		t.Fatalf("Paginate returned error: %v", err)
	}

	for name, link := range map[string]*string{"next": page.Next, "previous": page.Previous} {
		if link == nil {
			t.Fatalf("%s link missing", name)
		}
		if got := hostsURL(t, *link).Query().Get("format"); got != "json" {
			t.Fatalf("%s link lost unrelated query param, got %q", name, *link)
		}
	}
}

func TestPaginateMarksUsedHosts(t *testing.T) {
	seq := fiveHosts(t, usedSet("10.0.0.2"))
	paginator := NewPaginator(3, "start")

	page, err := paginator.Paginate(seq, hostsURL(t, "http://api.test/subnets/7/hosts"))
	if err != nil {
		t.Fatalf("Paginate returned error: %v", err)
	}

	want := []HostEntry{
		{Address: "10.0.0.1", Used: false},
		{Address: "10.0.0.2", Used: true},
		{Address: "10.0.0.3", Used: false},
	}
	for i, expected := range want {
		if page.Results[i] != expected {
			t.Fatalf("result %d = %+v, want %+v", i, page.Results[i], expected)
		}
	}
}

func TestPaginateDefaults(t *testing.T) {
	paginator := NewPaginator(0, "")
	if paginator.Limit != DefaultPageLimit {
		t.Fatalf("Limit = %d, want %d", paginator.Limit, DefaultPageLimit)
	}
	if paginator.Param != DefaultCursorParam {
		t.Fatalf("Param = %q, want %q", paginator.Param, DefaultCursorParam)
	}
}

package marketdata

import "testing"

func TestParseScrips_FiltersAndNormalizes(t *testing.T) {
	raw := []byte(`[
		{"exch_seg":"NSE","symbol":"TCS-EQ","token":"11536"},
		{"exch_seg":"NSE","symbol":"INFY-EQ","token":"1594"},
		{"exch_seg":"BSE","symbol":"TCS","token":"532540"},
		{"exch_seg":"NFO","symbol":"NIFTY24AUGFUT","token":"53001"}
	]`)
	scrips, err := parseScrips(raw)
	if err != nil {
		t.Fatalf("parseScrips: %v", err)
	}
	// BSE filtered out; NSE and NFO (N-prefixed) kept.
	if len(scrips) != 3 {
		t.Fatalf("len = %d, want 3", len(scrips))
	}
	if scrips[0].Symbol != "TCS-EQ" || scrips[0].Token != "11536" {
		t.Errorf("first scrip = %+v", scrips[0])
	}
}

func TestParseScrips_AlternateFieldNames(t *testing.T) {
	raw := []byte(`{"data":[
		{"exchange":"NSE","tradingsymbol":"tcs-eq","instrument_token":11536}
	]}`)
	scrips, err := parseScrips(raw)
	if err != nil {
		t.Fatalf("parseScrips: %v", err)
	}
	if len(scrips) != 1 {
		t.Fatalf("len = %d, want 1", len(scrips))
	}
	if scrips[0].Symbol != "TCS-EQ" {
		t.Errorf("symbol = %q, want upper-cased TCS-EQ", scrips[0].Symbol)
	}
	if scrips[0].Token != "11536" {
		t.Errorf("numeric token = %q, want 11536", scrips[0].Token)
	}
}

func TestParseScrips_EmptyOrGarbage(t *testing.T) {
	if _, err := parseScrips([]byte(`not json`)); err == nil {
		t.Error("garbage should fail")
	}
	if _, err := parseScrips([]byte(`[{"exch_seg":"BSE","symbol":"X","token":"1"}]`)); err == nil {
		t.Error("a master with no NSE scrips should fail")
	}
}

func TestFindScrip_MatchOrder(t *testing.T) {
	scrips := []Scrip{
		{Symbol: "TCSMART", Token: "1"},
		{Symbol: "TCS-EQ", Token: "11536"},
		{Symbol: "TCS", Token: "99"},
		{Symbol: "INFY-EQ", Token: "1594"},
	}

	// Exact symbol wins over prefix matches.
	if s, ok := findScrip(scrips, "TCS"); !ok || s.Token != "99" {
		t.Errorf("exact: got %+v ok=%v", s, ok)
	}
	// The -EQ variant matches when only it exists.
	if s, ok := findScrip(scrips, "infy"); !ok || s.Token != "1594" {
		t.Errorf("-EQ variant: got %+v ok=%v", s, ok)
	}
	// Prefix fallback.
	if s, ok := findScrip(scrips, "TCSM"); !ok || s.Token != "1" {
		t.Errorf("prefix: got %+v ok=%v", s, ok)
	}
	// Case and whitespace insensitive.
	if s, ok := findScrip(scrips, "  tcs "); !ok || s.Token != "99" {
		t.Errorf("normalized: got %+v ok=%v", s, ok)
	}
	if _, ok := findScrip(scrips, "ZZZ"); ok {
		t.Error("unknown name should not match")
	}
	if _, ok := findScrip(scrips, ""); ok {
		t.Error("empty name should not match")
	}
}

package query

import (
	"net/url"
	"testing"
)

func TestBuild_AlwaysEmitsPagingAndSort(t *testing.T) {
	params := Build(Filter{}, 0, 20)

	if got := params.Get("offset"); got != "0" {
		t.Errorf("offset = %q, want %q", got, "0")
	}
	if got := params.Get("limit"); got != "20" {
		t.Errorf("limit = %q, want %q", got, "20")
	}
	if got := params.Get("sort"); got != "date_new" {
		t.Errorf("sort = %q, want %q", got, "date_new")
	}

	// Empty filter must not leak optional params.
	for _, key := range []string{"city", "q", "price_min", "price_max"} {
		if _, present := params[key]; present {
			t.Errorf("param %q present for empty filter", key)
		}
	}
}

func TestBuild_OptionalParams(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   map[string]string
		absent []string
	}{
		{
			name:   "city only",
			filter: Filter{City: "Москва"},
			want:   map[string]string{"city": "Москва"},
			absent: []string{"q", "price_min", "price_max"},
		},
		{
			name:   "search text is trimmed",
			filter: Filter{SearchText: "  А123ВС  "},
			want:   map[string]string{"q": "А123ВС"},
			absent: []string{"city"},
		},
		{
			name:   "blank search text omitted",
			filter: Filter{SearchText: "   "},
			absent: []string{"q"},
		},
		{
			name:   "price range",
			filter: Filter{PriceMin: 100000, PriceMax: 500000},
			want:   map[string]string{"price_min": "100000", "price_max": "500000"},
		},
		{
			name:   "zero price bounds omitted",
			filter: Filter{PriceMin: 0, PriceMax: 0},
			absent: []string{"price_min", "price_max"},
		},
		{
			name:   "explicit sort",
			filter: Filter{Sort: SortPriceDesc},
			want:   map[string]string{"sort": "price_desc"},
		},
		{
			name:   "unknown sort falls back to date_new",
			filter: Filter{Sort: Sort("mileage_desc")},
			want:   map[string]string{"sort": "date_new"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := Build(tt.filter, 0, 20)

			for key, want := range tt.want {
				if got := params.Get(key); got != want {
					t.Errorf("param %q = %q, want %q", key, got, want)
				}
			}
			for _, key := range tt.absent {
				if _, present := params[key]; present {
					t.Errorf("param %q should be absent", key)
				}
			}
		})
	}
}

func TestBuild_LimitBounds(t *testing.T) {
	tests := []struct {
		name      string
		offset    int
		limit     int
		wantOff   string
		wantLimit string
	}{
		{"negative offset clamped", -5, 20, "0", "20"},
		{"zero limit defaults", 0, 0, "0", "20"},
		{"limit capped", 0, 200, "0", "50"},
		{"load more offset", 40, 20, "40", "20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := Build(Filter{}, tt.offset, tt.limit)
			if got := params.Get("offset"); got != tt.wantOff {
				t.Errorf("offset = %q, want %q", got, tt.wantOff)
			}
			if got := params.Get("limit"); got != tt.wantLimit {
				t.Errorf("limit = %q, want %q", got, tt.wantLimit)
			}
		})
	}
}

func TestBuild_Deterministic(t *testing.T) {
	f := Filter{City: "Казань", SearchText: "BMW", Sort: SortPriceAsc, PriceMin: 1, PriceMax: 2}

	a := Build(f, 20, 20)
	b := Build(f, 20, 20)

	if a.Encode() != b.Encode() {
		t.Errorf("Build not deterministic: %q vs %q", a.Encode(), b.Encode())
	}
}

func TestBuild_DoesNotMutateFilter(t *testing.T) {
	f := Filter{SearchText: "  x  ", Sort: Sort("bogus")}
	_ = Build(f, 0, 20)

	if f.SearchText != "  x  " {
		t.Errorf("SearchText mutated to %q", f.SearchText)
	}
	if f.Sort != Sort("bogus") {
		t.Errorf("Sort mutated to %q", f.Sort)
	}
}

func TestSortNormalize(t *testing.T) {
	tests := []struct {
		in   Sort
		want Sort
	}{
		{SortDateNew, SortDateNew},
		{SortDateOld, SortDateOld},
		{SortPriceAsc, SortPriceAsc},
		{SortPriceDesc, SortPriceDesc},
		{Sort(""), SortDateNew},
		{Sort("DATE_NEW"), SortDateNew},
	}

	for _, tt := range tests {
		if got := tt.in.Normalize(); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// Guard against accidental double-encoding of non-ASCII values.
func TestBuild_EncodesOnce(t *testing.T) {
	params := Build(Filter{City: "Москва"}, 0, 20)
	decoded, err := url.ParseQuery(params.Encode())
	if err != nil {
		t.Fatalf("ParseQuery failed: %v", err)
	}
	if got := decoded.Get("city"); got != "Москва" {
		t.Errorf("round-tripped city = %q, want %q", got, "Москва")
	}
}

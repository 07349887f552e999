package table

import (
	"errors"
	"testing"
)

func TestColumnValidate(t *testing.T) {
	cases := []struct {
		name   string
		column Column
		want   error
	}{
		{"valid", Column{Name: "score", Align: "right", Aggregate: "sum"}, nil},
		{"empty align ok", Column{Name: "score"}, nil},
		{"missing name", Column{Align: "left"}, ErrColumnNameRequired},
		{"bad align", Column{Name: "score", Align: "middle"}, ErrColumnAlignInvalid},
		{"bad aggregate", Column{Name: "score", Aggregate: "avg"}, ErrColumnAggregateInvalid},
		{"negative width", Column{Name: "score", Width: -1}, ErrColumnWidthInvalid},
		{"inverted bounds", Column{Name: "score", MinWidth: 200, MaxWidth: 100}, ErrColumnWidthInvalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.column.Validate()
			if tc.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestValidateOptions(t *testing.T) {
	columns := demoColumns()

	cases := []struct {
		name string
		opts *Options
		want error
	}{
		{"nil opts", nil, nil},
		{"valid", &Options{
			Selection:       SelectionSingle,
			PaginationType:  PaginationJump,
			OnClick:         OnClickSelect,
			DefaultPageSize: 25,
			PageSizeOptions: []int{10, 25, 50},
			GroupBy:         []string{"name"},
			DefaultSorted:   []SortRule{{ID: "score", Desc: true}},
		}, nil},
		{"bad selection", &Options{Selection: "all"}, ErrSelectionInvalid},
		{"bad pagination type", &Options{PaginationType: "infinite"}, ErrPaginationTypeInvalid},
		{"bad onClick", &Options{OnClick: "navigate"}, ErrOnClickInvalid},
		{"page size not offered", &Options{DefaultPageSize: 15, PageSizeOptions: []int{10, 25}}, ErrPageSizeInvalid},
		{"zero page size option", &Options{PageSizeOptions: []int{0}}, ErrPageSizeInvalid},
		{"unknown group column", &Options{GroupBy: []string{"category"}}, ErrOptionColumnUnknown},
		{"unknown sort column", &Options{DefaultSorted: []SortRule{{ID: "rank"}}}, ErrOptionColumnUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateOptions(tc.opts, columns)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestMergeOptions(t *testing.T) {
	base := &Options{
		Sortable:        boolPtr(true),
		Striped:         boolPtr(true),
		DefaultPageSize: 10,
		PageSizeOptions: []int{10, 25},
		Selection:       SelectionNone,
	}
	overlay := &Options{
		Sortable:        boolPtr(false),
		DefaultPageSize: 25,
		Selection:       SelectionMultiple,
	}

	merged := MergeOptions(base, overlay)
	if merged.Sortable == nil || *merged.Sortable {
		t.Fatal("expected overlay to disable sortable")
	}
	if merged.Striped == nil || !*merged.Striped {
		t.Fatal("expected base striped to survive")
	}
	if merged.DefaultPageSize != 25 {
		t.Fatalf("expected overlay page size, got %d", merged.DefaultPageSize)
	}
	if len(merged.PageSizeOptions) != 2 {
		t.Fatalf("expected base page size options, got %v", merged.PageSizeOptions)
	}
	if merged.Selection != SelectionMultiple {
		t.Fatalf("expected overlay selection, got %q", merged.Selection)
	}

	// merging must not alias the base
	*merged.Striped = false
	if !*base.Striped {
		t.Fatal("merge mutated base options")
	}

	if got := MergeOptions(nil, overlay); got == nil || got.Selection != SelectionMultiple {
		t.Fatal("expected overlay clone when base is nil")
	}
	if got := MergeOptions(base, nil); got == nil || got.DefaultPageSize != 10 {
		t.Fatal("expected base clone when overlay is nil")
	}
}

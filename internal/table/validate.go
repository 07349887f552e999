package table

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var columnAggregates = []string{
	"mean", "sum", "max", "min", "median", "count", "unique", "frequency",
}

// Validate checks a single column definition. Cross-column rules (duplicate
// names, option references) are enforced by the service.
func (c Column) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrColumnNameRequired
	}
	if err := validation.ValidateStruct(&c,
		validation.Field(&c.Align, validation.In("left", "center", "right")),
		validation.Field(&c.Aggregate, validation.In(toAnySlice(columnAggregates)...)),
	); err != nil {
		if fieldErrs, ok := err.(validation.Errors); ok {
			if _, bad := fieldErrs["Align"]; bad {
				return ErrColumnAlignInvalid
			}
			if _, bad := fieldErrs["Aggregate"]; bad {
				return ErrColumnAggregateInvalid
			}
		}
		return err
	}
	if c.Width < 0 || c.MinWidth < 0 || c.MaxWidth < 0 {
		return ErrColumnWidthInvalid
	}
	if c.MinWidth > 0 && c.MaxWidth > 0 && c.MinWidth > c.MaxWidth {
		return ErrColumnWidthInvalid
	}
	return nil
}

func validateColumns(columns []Column) error {
	if len(columns) == 0 {
		return ErrDefinitionColumnsRequired
	}
	seen := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		if err := col.Validate(); err != nil {
			return err
		}
		key := canonicalName(col.Name)
		if _, dup := seen[key]; dup {
			return ErrColumnNameDuplicate
		}
		seen[key] = struct{}{}
	}
	return nil
}

func validateOptions(opts *Options, columns []Column) error {
	if opts == nil {
		return nil
	}

	if err := validation.ValidateStruct(opts,
		validation.Field(&opts.Selection, validation.In(SelectionNone, SelectionSingle, SelectionMultiple)),
		validation.Field(&opts.PaginationType, validation.In(PaginationNumbers, PaginationJump, PaginationSimple)),
		validation.Field(&opts.OnClick, validation.In(OnClickExpand, OnClickSelect)),
	); err != nil {
		if fieldErrs, ok := err.(validation.Errors); ok {
			if _, bad := fieldErrs["Selection"]; bad {
				return ErrSelectionInvalid
			}
			if _, bad := fieldErrs["PaginationType"]; bad {
				return ErrPaginationTypeInvalid
			}
			if _, bad := fieldErrs["OnClick"]; bad {
				return ErrOnClickInvalid
			}
		}
		return err
	}

	if opts.DefaultPageSize < 0 || opts.MinRows < 0 {
		return ErrPageSizeInvalid
	}
	for _, size := range opts.PageSizeOptions {
		if size <= 0 {
			return ErrPageSizeInvalid
		}
	}
	if opts.DefaultPageSize > 0 && len(opts.PageSizeOptions) > 0 {
		found := false
		for _, size := range opts.PageSizeOptions {
			if size == opts.DefaultPageSize {
				found = true
				break
			}
		}
		if !found {
			return ErrPageSizeInvalid
		}
	}

	known := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		known[canonicalName(col.Name)] = struct{}{}
	}
	for _, group := range opts.GroupBy {
		if _, ok := known[canonicalName(group)]; !ok {
			return ErrOptionColumnUnknown
		}
	}
	for _, rule := range opts.DefaultSorted {
		if _, ok := known[canonicalName(rule.ID)]; !ok {
			return ErrOptionColumnUnknown
		}
	}
	return nil
}

// MergeOptions layers instance overrides over definition defaults. Pointer
// fields only replace base values when set; slices replace wholesale.
func MergeOptions(base *Options, overlay *Options) *Options {
	if base == nil {
		return cloneOptions(overlay)
	}
	merged := cloneOptions(base)
	if overlay == nil {
		return merged
	}

	mergeBool := func(dst **bool, src *bool) {
		if src != nil {
			*dst = cloneBool(src)
		}
	}
	mergeBool(&merged.Sortable, overlay.Sortable)
	mergeBool(&merged.Filterable, overlay.Filterable)
	mergeBool(&merged.Searchable, overlay.Searchable)
	mergeBool(&merged.Resizable, overlay.Resizable)
	mergeBool(&merged.Pagination, overlay.Pagination)
	mergeBool(&merged.ShowPageSizeOptions, overlay.ShowPageSizeOptions)
	mergeBool(&merged.Expandable, overlay.Expandable)
	mergeBool(&merged.DefaultExpanded, overlay.DefaultExpanded)
	mergeBool(&merged.Striped, overlay.Striped)
	mergeBool(&merged.Highlight, overlay.Highlight)
	mergeBool(&merged.Bordered, overlay.Bordered)
	mergeBool(&merged.Borderless, overlay.Borderless)
	mergeBool(&merged.Outlined, overlay.Outlined)
	mergeBool(&merged.Compact, overlay.Compact)
	mergeBool(&merged.Wrap, overlay.Wrap)
	mergeBool(&merged.FullWidth, overlay.FullWidth)

	if len(overlay.DefaultSorted) > 0 {
		merged.DefaultSorted = append([]SortRule(nil), overlay.DefaultSorted...)
	}
	if len(overlay.GroupBy) > 0 {
		merged.GroupBy = append([]string(nil), overlay.GroupBy...)
	}
	if len(overlay.PageSizeOptions) > 0 {
		merged.PageSizeOptions = append([]int(nil), overlay.PageSizeOptions...)
	}
	if overlay.DefaultPageSize > 0 {
		merged.DefaultPageSize = overlay.DefaultPageSize
	}
	if overlay.MinRows > 0 {
		merged.MinRows = overlay.MinRows
	}
	if overlay.PaginationType != "" {
		merged.PaginationType = overlay.PaginationType
	}
	if overlay.Selection != "" {
		merged.Selection = overlay.Selection
	}
	if overlay.OnClick != "" {
		merged.OnClick = overlay.OnClick
	}
	return merged
}

func toAnySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

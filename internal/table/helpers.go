package table

import (
	"strings"
	"time"
)

func cloneString(src *string) *string {
	if src == nil {
		return nil
	}
	cloned := strings.Clone(*src)
	return &cloned
}

func cloneBool(src *bool) *bool {
	if src == nil {
		return nil
	}
	cloned := *src
	return &cloned
}

func cloneInt(src *int) *int {
	if src == nil {
		return nil
	}
	cloned := *src
	return &cloned
}

func cloneTime(src *time.Time) *time.Time {
	if src == nil {
		return nil
	}
	cloned := *src
	return &cloned
}

func cloneColumns(columns []Column) []Column {
	if columns == nil {
		return nil
	}
	out := make([]Column, len(columns))
	for i, col := range columns {
		cloned := col
		cloned.Sortable = cloneBool(col.Sortable)
		cloned.Filterable = cloneBool(col.Filterable)
		cloned.Searchable = cloneBool(col.Searchable)
		cloned.Resizable = cloneBool(col.Resizable)
		cloned.Show = cloneBool(col.Show)
		if col.Format != nil {
			format := *col.Format
			format.Digits = cloneInt(col.Format.Digits)
			format.Locales = append([]string(nil), col.Format.Locales...)
			cloned.Format = &format
		}
		out[i] = cloned
	}
	return out
}

func cloneOptions(opts *Options) *Options {
	if opts == nil {
		return nil
	}
	cloned := *opts
	cloned.Sortable = cloneBool(opts.Sortable)
	cloned.Filterable = cloneBool(opts.Filterable)
	cloned.Searchable = cloneBool(opts.Searchable)
	cloned.Resizable = cloneBool(opts.Resizable)
	cloned.Pagination = cloneBool(opts.Pagination)
	cloned.ShowPageSizeOptions = cloneBool(opts.ShowPageSizeOptions)
	cloned.Expandable = cloneBool(opts.Expandable)
	cloned.DefaultExpanded = cloneBool(opts.DefaultExpanded)
	cloned.Striped = cloneBool(opts.Striped)
	cloned.Highlight = cloneBool(opts.Highlight)
	cloned.Bordered = cloneBool(opts.Bordered)
	cloned.Borderless = cloneBool(opts.Borderless)
	cloned.Outlined = cloneBool(opts.Outlined)
	cloned.Compact = cloneBool(opts.Compact)
	cloned.Wrap = cloneBool(opts.Wrap)
	cloned.FullWidth = cloneBool(opts.FullWidth)
	cloned.DefaultSorted = append([]SortRule(nil), opts.DefaultSorted...)
	cloned.GroupBy = append([]string(nil), opts.GroupBy...)
	cloned.PageSizeOptions = append([]int(nil), opts.PageSizeOptions...)
	return &cloned
}

func cloneLanguage(lang *Language) *Language {
	if lang == nil {
		return nil
	}
	cloned := *lang
	return &cloned
}

func cloneRows(rows []map[string]any) []map[string]any {
	if rows == nil {
		return nil
	}
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		out[i] = deepCloneMap(row)
	}
	return out
}

func deepCloneMap(input map[string]any) map[string]any {
	if input == nil {
		return nil
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = deepCloneValue(value)
	}
	return out
}

func deepCloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return deepCloneMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = deepCloneValue(item)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(typed))
		for i, item := range typed {
			out[i] = deepCloneMap(item)
		}
		return out
	default:
		return value
	}
}

func cloneDefinition(definition *Definition) *Definition {
	if definition == nil {
		return nil
	}
	cloned := *definition
	cloned.Description = cloneString(definition.Description)
	cloned.Columns = cloneColumns(definition.Columns)
	cloned.Defaults = cloneOptions(definition.Defaults)
	cloned.RowSchema = deepCloneMap(definition.RowSchema)
	cloned.Theme = cloneString(definition.Theme)
	cloned.Language = cloneLanguage(definition.Language)
	cloned.DeletedAt = cloneTime(definition.DeletedAt)
	cloned.Instances = nil
	return &cloned
}

func cloneInstance(instance *Instance) *Instance {
	if instance == nil {
		return nil
	}
	cloned := *instance
	cloned.Data = cloneRows(instance.Data)
	cloned.Overrides = cloneOptions(instance.Overrides)
	cloned.InitialState = deepCloneMap(instance.InitialState)
	cloned.DeletedAt = cloneTime(instance.DeletedAt)
	cloned.Definition = nil
	return &cloned
}

func canonicalName(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

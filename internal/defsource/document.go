package defsource

import (
	"github.com/goliatone/go-datatable/internal/table"
)

// Document is one parsed table definition document: frontmatter describing
// the definition, with the markdown body serving as the table caption.
type Document struct {
	Path        string
	Definition  table.RegisterDefinitionInput
	Caption     string
	CaptionHTML string
}

// documentMeta is the YAML frontmatter envelope. It mirrors the table types
// with explicit yaml tags so document keys match the JSON props the client
// sees.
type documentMeta struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Theme       string         `yaml:"theme"`
	Columns     []columnDoc    `yaml:"columns"`
	Options     *optionsDoc    `yaml:"options"`
	RowSchema   map[string]any `yaml:"rowSchema"`
}

type columnDoc struct {
	Name       string     `yaml:"name"`
	Header     string     `yaml:"header"`
	Sortable   *bool      `yaml:"sortable"`
	Filterable *bool      `yaml:"filterable"`
	Searchable *bool      `yaml:"searchable"`
	Resizable  *bool      `yaml:"resizable"`
	Show       *bool      `yaml:"show"`
	Align      string     `yaml:"align"`
	Width      int        `yaml:"width"`
	MinWidth   int        `yaml:"minWidth"`
	MaxWidth   int        `yaml:"maxWidth"`
	Aggregate  string     `yaml:"aggregate"`
	HTML       bool       `yaml:"html"`
	Markdown   bool       `yaml:"markdown"`
	Format     *formatDoc `yaml:"format"`
}

type formatDoc struct {
	Prefix     string `yaml:"prefix"`
	Suffix     string `yaml:"suffix"`
	Digits     *int   `yaml:"digits"`
	Separators bool   `yaml:"separators"`
	Percent    bool   `yaml:"percent"`
	Currency   string `yaml:"currency"`
}

type optionsDoc struct {
	Sortable        *bool     `yaml:"sortable"`
	Filterable      *bool     `yaml:"filterable"`
	Searchable      *bool     `yaml:"searchable"`
	Resizable       *bool     `yaml:"resizable"`
	Pagination      *bool     `yaml:"pagination"`
	DefaultPageSize int       `yaml:"defaultPageSize"`
	PageSizeOptions []int     `yaml:"pageSizeOptions"`
	PaginationType  string    `yaml:"paginationType"`
	MinRows         int       `yaml:"minRows"`
	Selection       string    `yaml:"selection"`
	OnClick         string    `yaml:"onClick"`
	GroupBy         []string  `yaml:"groupBy"`
	DefaultSorted   []sortDoc `yaml:"defaultSorted"`
	Striped         *bool     `yaml:"striped"`
	Highlight       *bool     `yaml:"highlight"`
	Bordered        *bool     `yaml:"bordered"`
	Compact         *bool     `yaml:"compact"`
	FullWidth       *bool     `yaml:"fullWidth"`
}

type sortDoc struct {
	ID   string `yaml:"id"`
	Desc bool   `yaml:"desc"`
}

func (m documentMeta) toInput() table.RegisterDefinitionInput {
	input := table.RegisterDefinitionInput{
		Name:      m.Name,
		RowSchema: m.RowSchema,
	}
	if m.Description != "" {
		description := m.Description
		input.Description = &description
	}
	if m.Theme != "" {
		theme := m.Theme
		input.Theme = &theme
	}
	for _, col := range m.Columns {
		input.Columns = append(input.Columns, col.toColumn())
	}
	if m.Options != nil {
		input.Defaults = m.Options.toOptions()
	}
	return input
}

func (c columnDoc) toColumn() table.Column {
	column := table.Column{
		Name:       c.Name,
		Header:     c.Header,
		Sortable:   c.Sortable,
		Filterable: c.Filterable,
		Searchable: c.Searchable,
		Resizable:  c.Resizable,
		Show:       c.Show,
		Align:      c.Align,
		Width:      c.Width,
		MinWidth:   c.MinWidth,
		MaxWidth:   c.MaxWidth,
		Aggregate:  c.Aggregate,
		HTML:       c.HTML,
		Markdown:   c.Markdown,
	}
	if c.Format != nil {
		column.Format = &table.Format{
			Prefix:     c.Format.Prefix,
			Suffix:     c.Format.Suffix,
			Digits:     c.Format.Digits,
			Separators: c.Format.Separators,
			Percent:    c.Format.Percent,
			Currency:   c.Format.Currency,
		}
	}
	return column
}

func (o optionsDoc) toOptions() *table.Options {
	options := &table.Options{
		Sortable:        o.Sortable,
		Filterable:      o.Filterable,
		Searchable:      o.Searchable,
		Resizable:       o.Resizable,
		Pagination:      o.Pagination,
		DefaultPageSize: o.DefaultPageSize,
		PageSizeOptions: o.PageSizeOptions,
		PaginationType:  o.PaginationType,
		MinRows:         o.MinRows,
		Selection:       o.Selection,
		OnClick:         o.OnClick,
		GroupBy:         o.GroupBy,
		Striped:         o.Striped,
		Highlight:       o.Highlight,
		Bordered:        o.Bordered,
		Compact:         o.Compact,
		FullWidth:       o.FullWidth,
	}
	for _, rule := range o.DefaultSorted {
		options.DefaultSorted = append(options.DefaultSorted, table.SortRule{ID: rule.ID, Desc: rule.Desc})
	}
	return options
}

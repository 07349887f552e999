package table

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Definition captures a registered table widget type: its column set, default
// behaviour, and the schema row payloads must satisfy.
type Definition struct {
	bun.BaseModel `bun:"table:datatable_definitions,alias:dtd"`

	ID          uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	Name        string         `bun:"name,notnull,unique" json:"name"`
	Description *string        `bun:"description" json:"description,omitempty"`
	Columns     []Column       `bun:"columns,type:jsonb,notnull" json:"columns"`
	Defaults    *Options       `bun:"defaults,type:jsonb" json:"defaults,omitempty"`
	RowSchema   map[string]any `bun:"row_schema,type:jsonb" json:"row_schema,omitempty"`
	Theme       *string        `bun:"theme" json:"theme,omitempty"`
	Language    *Language      `bun:"language,type:jsonb" json:"language,omitempty"`
	DeletedAt   *time.Time     `bun:"deleted_at,nullzero" json:"deleted_at,omitempty"`
	CreatedAt   time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	// Instances is populated when loading definitions with eager relations.
	Instances []*Instance `bun:"rel:has-many,join:id=definition_id" json:"instances,omitempty"`
}

// Instance represents one placement of a table definition: the element it
// renders into, its data rows, and per-placement option overrides.
type Instance struct {
	bun.BaseModel `bun:"table:datatable_instances,alias:dti"`

	ID           uuid.UUID        `bun:",pk,type:uuid" json:"id"`
	DefinitionID uuid.UUID        `bun:"definition_id,notnull,type:uuid" json:"definition_id"`
	ElementID    string           `bun:"element_id,notnull,unique" json:"element_id"`
	Data         []map[string]any `bun:"data,type:jsonb" json:"data,omitempty"`
	DataDigest   string           `bun:"data_digest" json:"data_digest,omitempty"`
	Overrides    *Options         `bun:"overrides,type:jsonb" json:"overrides,omitempty"`
	InitialState map[string]any   `bun:"initial_state,type:jsonb" json:"initial_state,omitempty"`
	DeletedAt    *time.Time       `bun:"deleted_at,nullzero" json:"deleted_at,omitempty"`
	CreatedAt    time.Time        `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time        `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	Definition *Definition `bun:"rel:belongs-to,join:definition_id=id" json:"definition,omitempty"`
}

// Column describes one table column as understood by the client component.
// The server only validates and forwards these toggles; the component owns
// the actual sorting, filtering, and aggregation behaviour.
type Column struct {
	Name       string  `json:"name"`
	Header     string  `json:"header,omitempty"`
	Sortable   *bool   `json:"sortable,omitempty"`
	Filterable *bool   `json:"filterable,omitempty"`
	Searchable *bool   `json:"searchable,omitempty"`
	Resizable  *bool   `json:"resizable,omitempty"`
	Show       *bool   `json:"show,omitempty"`
	Align      string  `json:"align,omitempty"`
	Width      int     `json:"width,omitempty"`
	MinWidth   int     `json:"minWidth,omitempty"`
	MaxWidth   int     `json:"maxWidth,omitempty"`
	Aggregate  string  `json:"aggregate,omitempty"`
	Format     *Format `json:"format,omitempty"`
	HTML       bool    `json:"html,omitempty"`

	// Markdown flags cells for server-side markdown rendering before the
	// payload is serialized. Rendered cells are sent with HTML enabled, so
	// the flag itself never reaches the client.
	Markdown bool `json:"-"`
}

// Format describes client-side cell value formatting.
type Format struct {
	Prefix     string   `json:"prefix,omitempty"`
	Suffix     string   `json:"suffix,omitempty"`
	Digits     *int     `json:"digits,omitempty"`
	Separators bool     `json:"separators,omitempty"`
	Percent    bool     `json:"percent,omitempty"`
	Currency   string   `json:"currency,omitempty"`
	Date       bool     `json:"date,omitempty"`
	Time       bool     `json:"time,omitempty"`
	DateTime   bool     `json:"datetime,omitempty"`
	Locales    []string `json:"locales,omitempty"`
}

// SortRule names a column and direction for default sorting.
type SortRule struct {
	ID   string `json:"id"`
	Desc bool   `json:"desc,omitempty"`
}

// Options carries the table-level behaviour toggles forwarded to the client
// component. Pointer fields distinguish "unset" from explicit false so
// instance overrides can be merged over definition defaults.
type Options struct {
	Sortable            *bool      `json:"sortable,omitempty"`
	Filterable          *bool      `json:"filterable,omitempty"`
	Searchable          *bool      `json:"searchable,omitempty"`
	Resizable           *bool      `json:"resizable,omitempty"`
	DefaultSorted       []SortRule `json:"defaultSorted,omitempty"`
	GroupBy             []string   `json:"groupBy,omitempty"`
	Pagination          *bool      `json:"pagination,omitempty"`
	DefaultPageSize     int        `json:"defaultPageSize,omitempty"`
	PageSizeOptions     []int      `json:"pageSizeOptions,omitempty"`
	ShowPageSizeOptions *bool      `json:"showPageSizeOptions,omitempty"`
	PaginationType      string     `json:"paginationType,omitempty"`
	MinRows             int        `json:"minRows,omitempty"`
	Selection           string     `json:"selection,omitempty"`
	OnClick             string     `json:"onClick,omitempty"`
	Expandable          *bool      `json:"expandable,omitempty"`
	DefaultExpanded     *bool      `json:"defaultExpanded,omitempty"`
	Striped             *bool      `json:"striped,omitempty"`
	Highlight           *bool      `json:"highlight,omitempty"`
	Bordered            *bool      `json:"bordered,omitempty"`
	Borderless          *bool      `json:"borderless,omitempty"`
	Outlined            *bool      `json:"outlined,omitempty"`
	Compact             *bool      `json:"compact,omitempty"`
	Wrap                *bool      `json:"wrap,omitempty"`
	FullWidth           *bool      `json:"fullWidth,omitempty"`
}

// Language overrides the component's built-in UI label strings.
type Language struct {
	SearchPlaceholder  string `json:"searchPlaceholder,omitempty"`
	SearchLabel        string `json:"searchLabel,omitempty"`
	NoData             string `json:"noData,omitempty"`
	PageNext           string `json:"pageNext,omitempty"`
	PagePrevious       string `json:"pagePrevious,omitempty"`
	PageNumbers        string `json:"pageNumbers,omitempty"`
	PageInfo           string `json:"pageInfo,omitempty"`
	PageSizeOptions    string `json:"pageSizeOptions,omitempty"`
	PageJumpLabel      string `json:"pageJumpLabel,omitempty"`
	FilterPlaceholder  string `json:"filterPlaceholder,omitempty"`
	SelectAllRowsLabel string `json:"selectAllRowsLabel,omitempty"`
	SelectRowLabel     string `json:"selectRowLabel,omitempty"`
	DetailsExpandLabel string `json:"detailsExpandLabel,omitempty"`
	GroupExpandLabel   string `json:"groupExpandLabel,omitempty"`
	DefaultGroupHeader string `json:"defaultGroupHeader,omitempty"`
}

// DefaultLanguage returns the label strings used when a definition does not
// override them.
func DefaultLanguage() *Language {
	return &Language{
		SearchPlaceholder:  "Search",
		SearchLabel:        "Search",
		NoData:             "No rows found",
		PageNext:           "Next",
		PagePrevious:       "Previous",
		PageNumbers:        "{page} of {pages}",
		PageInfo:           "{rowStart}–{rowEnd} of {rows} rows",
		PageSizeOptions:    "Show {rows}",
		PageJumpLabel:      "Go to page",
		FilterPlaceholder:  "Filter",
		SelectAllRowsLabel: "Select all rows",
		SelectRowLabel:     "Select row",
		DetailsExpandLabel: "Toggle details",
		GroupExpandLabel:   "Toggle group",
		DefaultGroupHeader: "Grouped",
	}
}

// Selection modes accepted by the client component.
const (
	SelectionNone     = "none"
	SelectionSingle   = "single"
	SelectionMultiple = "multiple"
)

// Pagination layouts accepted by the client component.
const (
	PaginationNumbers = "numbers"
	PaginationJump    = "jump"
	PaginationSimple  = "simple"
)

// Row click behaviours accepted by the client component.
const (
	OnClickExpand = "expand"
	OnClickSelect = "select"
)

package metadata

import "strings"

// Align is the display alignment of a column.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Format tells clients how to render a value.
type Format string

const (
	FormatCurrency   Format = "currency"
	FormatDate       Format = "date"
	FormatTime       Format = "time"
	FormatBadge      Format = "badge"
	FormatNumber     Format = "number"
	FormatForeignKey Format = "foreignkey"
)

// JoinType is the SQL join flavour of a JoinSpec.
type JoinType string

const (
	JoinInner JoinType = "INNER"
	JoinLeft  JoinType = "LEFT"
	JoinRight JoinType = "RIGHT"
	JoinFull  JoinType = "FULL"
)

// Valid reports whether t is a known join type. Empty is valid (LEFT).
func (t JoinType) Valid() bool {
	switch t {
	case "", JoinInner, JoinLeft, JoinRight, JoinFull:
		return true
	}
	return false
}

// FieldSpec is one displayed column. Name is either a primary table column
// or the alias of a joined column.
type FieldSpec struct {
	Name   string `yaml:"name" json:"name"`
	Label  string `yaml:"label" json:"label"`
	Align  Align  `yaml:"align,omitempty" json:"textAlign,omitempty"`
	Format Format `yaml:"format,omitempty" json:"format,omitempty"`
	Ref    string `yaml:"ref,omitempty" json:"primaryId,omitempty"` // local key the value was joined through
	Hidden bool   `yaml:"hidden,omitempty" json:"hidden,omitempty"`
}

// JoinColumn is a column pulled from a joined table under an alias.
type JoinColumn struct {
	Name  string `yaml:"name" json:"name"`
	As    string `yaml:"as" json:"as"`
	Label string `yaml:"label,omitempty" json:"label,omitempty"`
}

// Alias returns As, or Name when no alias is set.
func (c JoinColumn) Alias() string {
	if c.As != "" {
		return c.As
	}
	return c.Name
}

// JoinSpec describes one foreign key join. JoinFrom names the table the join
// hangs off; empty means the primary table.
type JoinSpec struct {
	Table        string       `yaml:"table" json:"table"`
	LocalField   string       `yaml:"localField" json:"localField"`
	ForeignField string       `yaml:"foreignField" json:"foreignField"`
	JoinFrom     string       `yaml:"joinFrom,omitempty" json:"joinFrom,omitempty"`
	JoinType     JoinType     `yaml:"joinType,omitempty" json:"joinType,omitempty"`
	Columns      []JoinColumn `yaml:"columns" json:"columns"`
}

// EffectiveJoinType returns JoinType, defaulting to LEFT.
func (j JoinSpec) EffectiveJoinType() JoinType {
	if j.JoinType == "" {
		return JoinLeft
	}
	return j.JoinType
}

// Chained reports whether the join starts from another joined table.
func (j JoinSpec) Chained(primaryTable string) bool {
	return j.JoinFrom != "" && !strings.EqualFold(j.JoinFrom, primaryTable)
}

// TableDescriptor maps a view name to the table, columns and joins it reads.
// Descriptors are immutable once registered.
type TableDescriptor struct {
	Name              string      `yaml:"name" json:"name"`
	Title             string      `yaml:"title" json:"title"`
	TableName         string      `yaml:"table" json:"tableName"`
	PrimaryKey        string      `yaml:"primaryKey" json:"primaryKey"`
	SearchPlaceholder string      `yaml:"searchPlaceholder,omitempty" json:"searchPlaceholder,omitempty"`
	EmptyMessage      string      `yaml:"emptyMessage,omitempty" json:"emptyMessage,omitempty"`
	Fields            []FieldSpec `yaml:"fields" json:"fields"`
	ForeignKeys       []JoinSpec  `yaml:"foreignKeys,omitempty" json:"foreignKeys,omitempty"`
	SearchFields      []string    `yaml:"searchFields" json:"searchFields"`
}

// Field returns the field spec with the given name.
func (d *TableDescriptor) Field(name string) (FieldSpec, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// ResolveAlias finds the join that provides alias. ok is false when alias
// names a primary table column.
func (d *TableDescriptor) ResolveAlias(alias string) (join JoinSpec, col JoinColumn, ok bool) {
	for _, j := range d.ForeignKeys {
		for _, c := range j.Columns {
			if c.Alias() == alias {
				return j, c, true
			}
		}
	}
	return JoinSpec{}, JoinColumn{}, false
}

// FieldsWithFormat lists field names rendered with any of the given formats.
func (d *TableDescriptor) FieldsWithFormat(formats ...Format) []string {
	var out []string
	for _, f := range d.Fields {
		for _, want := range formats {
			if f.Format == want {
				out = append(out, f.Name)
				break
			}
		}
	}
	return out
}

// ViewRef points a module at a registered view.
type ViewRef struct {
	View  string `yaml:"view" json:"view"`
	Label string `yaml:"label" json:"label"`
}

// Preset is a canned equality filter offered by a module, e.g. CODCOMP = FV.
type Preset struct {
	Table string `yaml:"table" json:"table"`
	Field string `yaml:"field" json:"field"`
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// Module groups views for one business area.
type Module struct {
	Name     string    `yaml:"name" json:"name"`
	Label    string    `yaml:"label" json:"label"`
	Views    []ViewRef `yaml:"views,omitempty" json:"views"`
	Settings []ViewRef `yaml:"settings,omitempty" json:"settings,omitempty"`
	Presets  []Preset  `yaml:"presets,omitempty" json:"presets,omitempty"`
}

// PresetsFor returns the presets that apply to the given table.
func (m *Module) PresetsFor(table string) []Preset {
	var out []Preset
	for _, p := range m.Presets {
		if strings.EqualFold(p.Table, table) {
			out = append(out, p)
		}
	}
	return out
}

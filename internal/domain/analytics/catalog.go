package analytics

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed queries.yaml
var catalogYAML []byte

// ParamType controls how a raw parameter value is parsed and bound.
type ParamType string

const (
	ParamInt    ParamType = "int"
	ParamString ParamType = "string"
	ParamDate   ParamType = "date"
	// ParamYear takes a year and binds it as the four character text used by
	// SUBSTR(match_date, 1, 4) comparisons. "current" means this year.
	ParamYear ParamType = "year"
	// ParamDaysAgo takes a day count and binds the cutoff date that many
	// days before now.
	ParamDaysAgo ParamType = "days_ago"
)

type Param struct {
	Name        string    `yaml:"name" json:"name"`
	Type        ParamType `yaml:"type" json:"type"`
	Default     string    `yaml:"default" json:"default"`
	Min         *int      `yaml:"min" json:"min,omitempty"`
	Max         *int      `yaml:"max" json:"max,omitempty"`
	Enum        []string  `yaml:"enum" json:"enum,omitempty"`
	Description string    `yaml:"description" json:"description,omitempty"`
	// As renames the bound parameter.
	As string `yaml:"as" json:"-"`
}

func (p Param) bindName() string {
	if p.As != "" {
		return p.As
	}
	return p.Name
}

// Definition is one named catalog query.
type Definition struct {
	Name        string  `yaml:"name" json:"name"`
	Tier        Tier    `yaml:"tier" json:"tier"`
	Title       string  `yaml:"title" json:"title"`
	Description string  `yaml:"description" json:"description"`
	TopN        bool    `yaml:"top_n" json:"top_n"`
	Params      []Param `yaml:"params" json:"params"`
	SQL         string  `yaml:"sql" json:"sql"`
	Finalize    string  `yaml:"finalize" json:"-"`
}

// ParamError reports a parameter that could not be bound.
type ParamError struct {
	Query  string
	Param  string
	Reason string
}

func (e *ParamError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("query %s: %s", e.Query, e.Reason)
	}
	return fmt.Sprintf("query %s: parameter %s %s", e.Query, e.Param, e.Reason)
}

// Catalog is the fixed library of analytical queries.
type Catalog struct {
	defs  []Definition
	index map[string]int
}

var namedParam = regexp.MustCompile(`:([A-Za-z_][A-Za-z0-9_]*)`)

// LoadCatalog parses the embedded query library.
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(catalogYAML)
}

// ParseCatalog parses and checks a query library document.
func ParseCatalog(doc []byte) (*Catalog, error) {
	var file struct {
		Queries []Definition `yaml:"queries"`
	}
	if err := yaml.Unmarshal(doc, &file); err != nil {
		return nil, fmt.Errorf("parse query catalog: %w", err)
	}

	c := &Catalog{index: make(map[string]int, len(file.Queries))}
	for _, def := range file.Queries {
		def.SQL = strings.TrimSpace(def.SQL)
		if err := checkDefinition(def); err != nil {
			return nil, err
		}
		if _, dup := c.index[def.Name]; dup {
			return nil, fmt.Errorf("query catalog: duplicate query %s", def.Name)
		}
		c.index[def.Name] = len(c.defs)
		c.defs = append(c.defs, def)
	}
	return c, nil
}

func checkDefinition(def Definition) error {
	if def.Name == "" || def.SQL == "" {
		return fmt.Errorf("query catalog: query %q needs a name and sql", def.Name)
	}
	switch def.Tier {
	case TierBeginner, TierIntermediate, TierAdvanced:
	default:
		return fmt.Errorf("query catalog: query %s has unknown tier %q", def.Name, def.Tier)
	}
	if err := CheckReadOnly(def.SQL); err != nil {
		return fmt.Errorf("query catalog: query %s: %w", def.Name, err)
	}
	if def.Finalize != "" {
		if _, ok := finalizers[def.Finalize]; !ok {
			return fmt.Errorf("query catalog: query %s has unknown finalizer %q", def.Name, def.Finalize)
		}
	}

	bound := make(map[string]struct{}, len(def.Params))
	for _, p := range def.Params {
		switch p.Type {
		case ParamInt, ParamString, ParamDate, ParamYear, ParamDaysAgo:
		default:
			return fmt.Errorf("query catalog: query %s param %s has unknown type %q", def.Name, p.Name, p.Type)
		}
		bound[p.bindName()] = struct{}{}
	}
	for _, m := range namedParam.FindAllStringSubmatch(def.SQL, -1) {
		if _, ok := bound[m[1]]; !ok {
			return fmt.Errorf("query catalog: query %s uses unbound parameter :%s", def.Name, m[1])
		}
	}
	return nil
}

// List returns the definitions in catalog order, optionally for one tier.
func (c *Catalog) List(tier Tier) []Definition {
	out := make([]Definition, 0, len(c.defs))
	for _, def := range c.defs {
		if tier == "" || def.Tier == tier {
			out = append(out, def)
		}
	}
	return out
}

func (c *Catalog) Get(name string) (Definition, bool) {
	i, ok := c.index[strings.TrimSpace(name)]
	if !ok {
		return Definition{}, false
	}
	return c.defs[i], true
}

// Bind validates raw parameter values against the definition and returns
// the named arguments for the SQL. Missing values take their defaults;
// unknown names are rejected.
func (d Definition) Bind(raw map[string]string, now time.Time) (map[string]any, error) {
	known := make(map[string]struct{}, len(d.Params))
	for _, p := range d.Params {
		known[p.Name] = struct{}{}
	}
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := known[name]; !ok {
			return nil, &ParamError{Query: d.Name, Param: name, Reason: "is not accepted"}
		}
	}

	args := make(map[string]any, len(d.Params))
	for _, p := range d.Params {
		value, ok := raw[p.Name]
		value = strings.TrimSpace(value)
		if !ok || value == "" {
			value = p.Default
		}
		bound, err := p.bind(value, now)
		if err != nil {
			return nil, &ParamError{Query: d.Name, Param: p.Name, Reason: err.Error()}
		}
		args[p.bindName()] = bound
	}
	return args, nil
}

func (p Param) bind(value string, now time.Time) (any, error) {
	if len(p.Enum) > 0 && !containsFold(p.Enum, value) {
		return nil, fmt.Errorf("must be one of %s", strings.Join(quoteAll(p.Enum), ", "))
	}

	switch p.Type {
	case ParamString:
		return canonical(p.Enum, value), nil
	case ParamDate:
		if value == "" {
			return "", nil
		}
		t, err := time.Parse("2006-01-02", value)
		if err != nil {
			return nil, fmt.Errorf("must be a date formatted YYYY-MM-DD")
		}
		return t.Format("2006-01-02"), nil
	case ParamYear:
		if strings.EqualFold(value, "current") {
			value = strconv.Itoa(now.Year())
		}
		n, err := p.intInRange(value)
		if err != nil {
			return nil, err
		}
		return fmt.Sprintf("%04d", n), nil
	case ParamDaysAgo:
		n, err := p.intInRange(value)
		if err != nil {
			return nil, err
		}
		return now.UTC().AddDate(0, 0, -n).Format("2006-01-02"), nil
	default:
		n, err := p.intInRange(value)
		if err != nil {
			return nil, err
		}
		return n, nil
	}
}

func (p Param) intInRange(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("must be an integer")
	}
	if p.Min != nil && n < *p.Min {
		return 0, fmt.Errorf("must be >= %d", *p.Min)
	}
	if p.Max != nil && n > *p.Max {
		return 0, fmt.Errorf("must be <= %d", *p.Max)
	}
	return n, nil
}

// Finish applies the definition's finalizer and rounds float columns.
func (d Definition) Finish(result Result) (Result, error) {
	if d.Finalize != "" {
		var err error
		result, err = finalizers[d.Finalize](result)
		if err != nil {
			return Result{}, fmt.Errorf("finalize %s: %w", d.Name, err)
		}
	}
	result.RoundFloats(2)
	return result, nil
}

func containsFold(values []string, v string) bool {
	for _, item := range values {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}

func canonical(values []string, v string) string {
	for _, item := range values {
		if strings.EqualFold(item, v) {
			return item
		}
	}
	return v
}

func quoteAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strconv.Quote(v))
	}
	return out
}

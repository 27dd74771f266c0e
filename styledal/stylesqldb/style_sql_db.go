package stylesqldb

import (
	"database/sql"
	"math"
	"time"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-symbolizer/styledal"
	"github.com/jamesrr39/ownmap-symbolizer/styling"
	"github.com/jamesrr39/ownmap-symbolizer/styling/styleexpr"
	"github.com/jamesrr39/ownmap-symbolizer/symbolizer"
	"github.com/jmoiron/sqlx"
)

var _ styledal.StyleStore = &StyleSQLDB{}

// the same schema serves Postgres and SQLite. Symbolizer properties are stored in their text form.
const schema = `
CREATE TABLE IF NOT EXISTS styles (
	name TEXT PRIMARY KEY,
	filter_mode TEXT NOT NULL,
	comp_op TEXT NOT NULL,
	opacity DOUBLE PRECISION NOT NULL,
	saved_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS style_rules (
	style_name TEXT NOT NULL,
	rule_index INTEGER NOT NULL,
	name TEXT NOT NULL,
	filter_text TEXT NOT NULL,
	else_filter BOOLEAN NOT NULL,
	also_filter BOOLEAN NOT NULL,
	min_scale DOUBLE PRECISION NOT NULL,
	max_scale DOUBLE PRECISION, -- NULL when the rule has no upper scale bound
	PRIMARY KEY (style_name, rule_index)
);

CREATE TABLE IF NOT EXISTS rule_symbolizers (
	style_name TEXT NOT NULL,
	rule_index INTEGER NOT NULL,
	symbolizer_index INTEGER NOT NULL,
	kind TEXT NOT NULL,
	PRIMARY KEY (style_name, rule_index, symbolizer_index)
);

CREATE TABLE IF NOT EXISTS symbolizer_properties (
	style_name TEXT NOT NULL,
	rule_index INTEGER NOT NULL,
	symbolizer_index INTEGER NOT NULL,
	property_index INTEGER NOT NULL,
	name TEXT NOT NULL,
	value TEXT NOT NULL,
	deferred BOOLEAN NOT NULL, -- value is an expression evaluated per feature
	PRIMARY KEY (style_name, rule_index, symbolizer_index, property_index)
)`

type StyleSQLDB struct {
	name string
	db   *sqlx.DB
	// now is replaced in tests
	now func() time.Time
}

// NewStyleSQLDB wraps an open database and creates the tables it needs, if they do not already exist
func NewStyleSQLDB(db *sqlx.DB, name string) (*StyleSQLDB, errorsx.Error) {
	_, err := db.Exec(schema)
	if err != nil {
		return nil, errorsx.Wrap(err, "database", name)
	}

	return &StyleSQLDB{
		name: name,
		db:   db,
		now:  time.Now,
	}, nil
}

func (s *StyleSQLDB) Name() string {
	return s.name
}

func (s *StyleSQLDB) Close() errorsx.Error {
	err := s.db.Close()
	if err != nil {
		return errorsx.Wrap(err)
	}
	return nil
}

// Save stores the style, replacing any stored style of the same name
func (s *StyleSQLDB) Save(style *styling.FeatureTypeStyle) errorsx.Error {
	tx, err := s.db.Beginx()
	if err != nil {
		return errorsx.Wrap(err)
	}
	defer tx.Rollback()

	_, err = deleteStyle(tx, style.Name)
	if err != nil {
		return errorsx.Wrap(err, "style", style.Name)
	}

	compOp := ""
	if style.CompOp != nil {
		compOp = style.CompOp.String()
	}

	_, err = tx.Exec(tx.Rebind(`
		INSERT INTO styles (name, filter_mode, comp_op, opacity, saved_at)
		VALUES (?, ?, ?, ?, ?)`),
		style.Name, style.FilterMode.String(), compOp, style.Opacity, s.now().UTC())
	if err != nil {
		return errorsx.Wrap(err, "style", style.Name)
	}

	for ruleIndex, rule := range style.Rules {
		err := insertRule(tx, style.Name, ruleIndex, rule)
		if err != nil {
			return errorsx.Wrap(err, "style", style.Name, "rule", rule.Name)
		}
	}

	err = tx.Commit()
	if err != nil {
		return errorsx.Wrap(err)
	}

	return nil
}

func insertRule(tx *sqlx.Tx, styleName string, ruleIndex int, rule *styling.Rule) errorsx.Error {
	filter := ""
	if rule.Filter != nil {
		filter = rule.Filter.String()
	}

	var maxScale sql.NullFloat64
	if !math.IsInf(rule.MaxScale, 1) {
		maxScale = sql.NullFloat64{Float64: rule.MaxScale, Valid: true}
	}

	_, err := tx.Exec(tx.Rebind(`
		INSERT INTO style_rules (style_name, rule_index, name, filter_text, else_filter, also_filter, min_scale, max_scale)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		styleName, ruleIndex, rule.Name, filter, rule.ElseFilter, rule.AlsoFilter, rule.MinScale, maxScale)
	if err != nil {
		return errorsx.Wrap(err)
	}

	for symbolizerIndex, sym := range rule.Symbolizers {
		_, err = tx.Exec(tx.Rebind(`
			INSERT INTO rule_symbolizers (style_name, rule_index, symbolizer_index, kind)
			VALUES (?, ?, ?, ?)`),
			styleName, ruleIndex, symbolizerIndex, sym.Kind().String())
		if err != nil {
			return errorsx.Wrap(err)
		}

		for propertyIndex, name := range symbolizer.Keys(sym) {
			key, keyErr := symbolizer.LookupByName(name)
			if keyErr != nil {
				return keyErr
			}
			text, keyErr := symbolizer.FormatProperty(sym, key)
			if keyErr != nil {
				return keyErr
			}

			_, err = tx.Exec(tx.Rebind(`
				INSERT INTO symbolizer_properties (style_name, rule_index, symbolizer_index, property_index, name, value, deferred)
				VALUES (?, ?, ?, ?, ?, ?, ?)`),
				styleName, ruleIndex, symbolizerIndex, propertyIndex, name, text, symbolizer.IsDeferred(sym, key))
			if err != nil {
				return errorsx.Wrap(err, "property", name)
			}
		}
	}

	return nil
}

type styleRowType struct {
	Name       string  `db:"name"`
	FilterMode string  `db:"filter_mode"`
	CompOp     string  `db:"comp_op"`
	Opacity    float64 `db:"opacity"`
}

type ruleRowType struct {
	RuleIndex  int             `db:"rule_index"`
	Name       string          `db:"name"`
	Filter     string          `db:"filter_text"`
	ElseFilter bool            `db:"else_filter"`
	AlsoFilter bool            `db:"also_filter"`
	MinScale   float64         `db:"min_scale"`
	MaxScale   sql.NullFloat64 `db:"max_scale"`
}

type symbolizerRowType struct {
	RuleIndex       int    `db:"rule_index"`
	SymbolizerIndex int    `db:"symbolizer_index"`
	Kind            string `db:"kind"`
}

type propertyRowType struct {
	RuleIndex       int    `db:"rule_index"`
	SymbolizerIndex int    `db:"symbolizer_index"`
	Name            string `db:"name"`
	Value           string `db:"value"`
	Deferred        bool   `db:"deferred"`
}

type symbolizerPosition struct {
	RuleIndex, SymbolizerIndex int
}

func (s *StyleSQLDB) Load(name string) (*styling.FeatureTypeStyle, errorsx.Error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, errorsx.Wrap(err)
	}
	defer tx.Rollback()

	var styleRow styleRowType
	err = tx.Get(&styleRow, tx.Rebind(`SELECT name, filter_mode, comp_op, opacity FROM styles WHERE name = ?`), name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errorsx.Wrap(errorsx.ObjectNotFound, "style", name)
		}
		return nil, errorsx.Wrap(err, "style", name)
	}

	style, styleErr := styleFromRow(styleRow)
	if styleErr != nil {
		return nil, styleErr
	}

	var ruleRows []*ruleRowType
	err = tx.Select(&ruleRows, tx.Rebind(`
		SELECT rule_index, name, filter_text, else_filter, also_filter, min_scale, max_scale
		FROM style_rules
		WHERE style_name = ?
		ORDER BY rule_index`), name)
	if err != nil {
		return nil, errorsx.Wrap(err, "style", name)
	}

	var symbolizerRows []*symbolizerRowType
	err = tx.Select(&symbolizerRows, tx.Rebind(`
		SELECT rule_index, symbolizer_index, kind
		FROM rule_symbolizers
		WHERE style_name = ?
		ORDER BY rule_index, symbolizer_index`), name)
	if err != nil {
		return nil, errorsx.Wrap(err, "style", name)
	}

	var propertyRows []*propertyRowType
	err = tx.Select(&propertyRows, tx.Rebind(`
		SELECT rule_index, symbolizer_index, name, value, deferred
		FROM symbolizer_properties
		WHERE style_name = ?
		ORDER BY rule_index, symbolizer_index, property_index`), name)
	if err != nil {
		return nil, errorsx.Wrap(err, "style", name)
	}

	propertiesByPosition := make(map[symbolizerPosition][]*propertyRowType)
	for _, propertyRow := range propertyRows {
		position := symbolizerPosition{propertyRow.RuleIndex, propertyRow.SymbolizerIndex}
		propertiesByPosition[position] = append(propertiesByPosition[position], propertyRow)
	}

	rulesByIndex := make(map[int]*styling.Rule)
	for _, ruleRow := range ruleRows {
		rule, err := ruleFromRow(ruleRow)
		if err != nil {
			return nil, errorsx.Wrap(err, "style", name)
		}
		rulesByIndex[ruleRow.RuleIndex] = rule
		style.Rules = append(style.Rules, rule)
	}

	for _, symbolizerRow := range symbolizerRows {
		rule, ok := rulesByIndex[symbolizerRow.RuleIndex]
		if !ok {
			return nil, errorsx.Errorf("symbolizer stored for missing rule %d of style %q", symbolizerRow.RuleIndex, name)
		}

		position := symbolizerPosition{symbolizerRow.RuleIndex, symbolizerRow.SymbolizerIndex}
		sym, err := symbolizerFromRows(symbolizerRow.Kind, propertiesByPosition[position])
		if err != nil {
			return nil, errorsx.Wrap(err, "style", name, "rule", rule.Name)
		}
		rule.Symbolizers = append(rule.Symbolizers, sym)
	}

	return style, nil
}

func styleFromRow(row styleRowType) (*styling.FeatureTypeStyle, errorsx.Error) {
	style := styling.NewFeatureTypeStyle(row.Name)
	style.Opacity = row.Opacity

	var err errorsx.Error
	style.FilterMode, err = styling.ParseFilterMode(row.FilterMode)
	if err != nil {
		return nil, errorsx.Wrap(err, "style", row.Name)
	}

	if row.CompOp != "" {
		compOp, err := symbolizer.ParseCompositeOp(row.CompOp)
		if err != nil {
			return nil, errorsx.Wrap(err, "style", row.Name)
		}
		style.CompOp = &compOp
	}

	return style, nil
}

func ruleFromRow(row *ruleRowType) (*styling.Rule, errorsx.Error) {
	rule := styling.NewRule(row.Name)
	rule.ElseFilter = row.ElseFilter
	rule.AlsoFilter = row.AlsoFilter
	rule.MinScale = row.MinScale
	if row.MaxScale.Valid {
		rule.MaxScale = row.MaxScale.Float64
	}

	if row.Filter != "" {
		filter, err := styleexpr.Parse(row.Filter)
		if err != nil {
			return nil, errorsx.Wrap(err, "rule", row.Name)
		}
		rule.Filter = filter
	}

	return rule, nil
}

func symbolizerFromRows(kindName string, propertyRows []*propertyRowType) (symbolizer.Symbolizer, errorsx.Error) {
	kind, err := symbolizer.ParseKind(kindName)
	if err != nil {
		return nil, err
	}

	sym, err := symbolizer.NewEmpty(kind)
	if err != nil {
		return nil, err
	}

	for _, propertyRow := range propertyRows {
		if propertyRow.Deferred {
			err = symbolizer.SetDeferredFromString(sym, propertyRow.Name, propertyRow.Value)
		} else {
			err = symbolizer.SetFromString(sym, propertyRow.Name, propertyRow.Value)
		}
		if err != nil {
			return nil, errorsx.Wrap(err, "property", propertyRow.Name)
		}
	}

	return sym, nil
}

// List gives the stored styles, ordered by name
func (s *StyleSQLDB) List() ([]*styledal.StoredStyleSummary, errorsx.Error) {
	var summaries []*styledal.StoredStyleSummary
	err := s.db.Select(&summaries, `
		SELECT s.name, s.saved_at, COUNT(r.rule_index) AS rule_count
		FROM styles s
		LEFT JOIN style_rules r
		ON r.style_name = s.name
		GROUP BY s.name, s.saved_at
		ORDER BY s.name`)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return summaries, nil
}

func (s *StyleSQLDB) Delete(name string) errorsx.Error {
	tx, err := s.db.Beginx()
	if err != nil {
		return errorsx.Wrap(err)
	}
	defer tx.Rollback()

	found, deleteErr := deleteStyle(tx, name)
	if deleteErr != nil {
		return errorsx.Wrap(deleteErr, "style", name)
	}
	if !found {
		return errorsx.Wrap(errorsx.ObjectNotFound, "style", name)
	}

	err = tx.Commit()
	if err != nil {
		return errorsx.Wrap(err)
	}

	return nil
}

// deleteStyle removes a style and everything stored under it. found is false if there was no such style.
func deleteStyle(tx *sqlx.Tx, name string) (found bool, err errorsx.Error) {
	for _, table := range []string{"symbolizer_properties", "rule_symbolizers", "style_rules"} {
		_, execErr := tx.Exec(tx.Rebind(`DELETE FROM `+table+` WHERE style_name = ?`), name)
		if execErr != nil {
			return false, errorsx.Wrap(execErr, "table", table)
		}
	}

	result, execErr := tx.Exec(tx.Rebind(`DELETE FROM styles WHERE name = ?`), name)
	if execErr != nil {
		return false, errorsx.Wrap(execErr, "table", "styles")
	}

	affected, execErr := result.RowsAffected()
	if execErr != nil {
		return false, errorsx.Wrap(execErr)
	}

	return affected > 0, nil
}

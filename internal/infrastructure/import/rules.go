package sheetimport

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// FieldType represents the expected type of a column
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInt     FieldType = "int"
	TypeDecimal FieldType = "decimal"
)

// FieldRule defines validation rules for one column
type FieldRule struct {
	Column     string
	Required   bool
	Type       FieldType
	MinLength  int
	MaxLength  int
	MinValue   *decimal.Decimal
	MaxValue   *decimal.Decimal
	Unique     bool
	CustomFunc func(value string) error
}

// FieldRuleBuilder provides a fluent API for building field rules
type FieldRuleBuilder struct {
	rule FieldRule
}

// Field starts a rule for column
func Field(column string) *FieldRuleBuilder {
	return &FieldRuleBuilder{rule: FieldRule{Column: column, Type: TypeString}}
}

// Required marks the field as required
func (b *FieldRuleBuilder) Required() *FieldRuleBuilder {
	b.rule.Required = true
	return b
}

// Int sets the field type to integer
func (b *FieldRuleBuilder) Int() *FieldRuleBuilder {
	b.rule.Type = TypeInt
	return b
}

// Decimal sets the field type to decimal
func (b *FieldRuleBuilder) Decimal() *FieldRuleBuilder {
	b.rule.Type = TypeDecimal
	return b
}

// MaxLength sets the maximum length in characters
func (b *FieldRuleBuilder) MaxLength(n int) *FieldRuleBuilder {
	b.rule.MaxLength = n
	return b
}

// MinLength sets the minimum length in characters
func (b *FieldRuleBuilder) MinLength(n int) *FieldRuleBuilder {
	b.rule.MinLength = n
	return b
}

// MinValue sets the inclusive lower bound for numeric fields
func (b *FieldRuleBuilder) MinValue(v decimal.Decimal) *FieldRuleBuilder {
	b.rule.MinValue = &v
	return b
}

// MaxValue sets the inclusive upper bound for numeric fields
func (b *FieldRuleBuilder) MaxValue(v decimal.Decimal) *FieldRuleBuilder {
	b.rule.MaxValue = &v
	return b
}

// Unique rejects repeated values within the file
func (b *FieldRuleBuilder) Unique() *FieldRuleBuilder {
	b.rule.Unique = true
	return b
}

// Custom adds a custom validation function
func (b *FieldRuleBuilder) Custom(fn func(value string) error) *FieldRuleBuilder {
	b.rule.CustomFunc = fn
	return b
}

// Build returns the constructed FieldRule
func (b *FieldRuleBuilder) Build() FieldRule {
	return b.rule
}

// FieldValidator checks rows against a rule set, remembering values of
// unique columns across rows
type FieldValidator struct {
	rules  []FieldRule
	seen   map[string]map[string]int // column -> value -> first row
	errors *ErrorCollection
}

// NewFieldValidator creates a new field validator
func NewFieldValidator(rules []FieldRule, maxErrors int) *FieldValidator {
	return &FieldValidator{
		rules:  rules,
		seen:   make(map[string]map[string]int),
		errors: NewErrorCollection(maxErrors),
	}
}

// ValidateRow validates all fields in a row and reports whether it passed
func (v *FieldValidator) ValidateRow(row *Row) bool {
	valid := true
	for _, rule := range v.rules {
		if !v.validateField(row, rule) {
			valid = false
		}
	}
	return valid
}

func (v *FieldValidator) validateField(row *Row, rule FieldRule) bool {
	value := row.Get(rule.Column)
	fail := func(code, message string) bool {
		v.errors.Add(RowError{Row: row.LineNumber, Column: rule.Column, Code: code, Message: message, Value: value})
		return false
	}

	if value == "" {
		if rule.Required {
			return fail(ErrCodeImportRequiredField, fmt.Sprintf("field '%s' is required", rule.Column))
		}
		return true
	}

	length := utf8.RuneCountInString(value)
	if rule.MaxLength > 0 && length > rule.MaxLength {
		return fail(ErrCodeImportInvalidLength, fmt.Sprintf("length must be at most %d", rule.MaxLength))
	}
	if rule.MinLength > 0 && length < rule.MinLength {
		return fail(ErrCodeImportInvalidLength, fmt.Sprintf("length must be at least %d", rule.MinLength))
	}

	switch rule.Type {
	case TypeInt:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fail(ErrCodeImportInvalidType, "expected int")
		}
		if msg := checkRange(decimal.NewFromInt(n), rule); msg != "" {
			return fail(ErrCodeImportInvalidRange, msg)
		}
	case TypeDecimal:
		d, err := decimal.NewFromString(value)
		if err != nil {
			return fail(ErrCodeImportInvalidType, "expected decimal")
		}
		if msg := checkRange(d, rule); msg != "" {
			return fail(ErrCodeImportInvalidRange, msg)
		}
	}

	if rule.Unique {
		if v.seen[rule.Column] == nil {
			v.seen[rule.Column] = make(map[string]int)
		}
		if first, dup := v.seen[rule.Column][value]; dup {
			return fail(ErrCodeImportDuplicateInFile, fmt.Sprintf("duplicate value '%s' (first seen in row %d)", value, first))
		}
		v.seen[rule.Column][value] = row.LineNumber
	}

	if rule.CustomFunc != nil {
		if err := rule.CustomFunc(value); err != nil {
			return fail(ErrCodeImportValidation, err.Error())
		}
	}
	return true
}

func checkRange(d decimal.Decimal, rule FieldRule) string {
	if rule.MinValue != nil && d.LessThan(*rule.MinValue) {
		return fmt.Sprintf("value must be at least %s", rule.MinValue.String())
	}
	if rule.MaxValue != nil && d.GreaterThan(*rule.MaxValue) {
		return fmt.Sprintf("value must be at most %s", rule.MaxValue.String())
	}
	return ""
}

// Errors returns the collected errors
func (v *FieldValidator) Errors() *ErrorCollection {
	return v.errors
}

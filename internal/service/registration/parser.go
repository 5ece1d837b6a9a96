package registration

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Alijeyrad/myvoice_backend/internal/repo"
)

// Field is a registration SMS field. Fields order by error priority.
type Field int

const (
	FieldMobile Field = iota
	FieldClinic
	FieldSerial
	FieldService
)

var fieldNames = [...]string{
	FieldMobile:  "MOBILE",
	FieldClinic:  "CLINIC",
	FieldSerial:  "SERIAL",
	FieldService: "SERVICE",
}

func (f Field) String() string { return fieldNames[f] }

// ErrorType is the stored category for the error-correction state.
func (f Field) ErrorType() repo.ErrorType {
	switch f {
	case FieldMobile:
		return repo.ErrorTypeMobile
	case FieldClinic:
		return repo.ErrorTypeClinic
	case FieldSerial:
		return repo.ErrorTypeSerial
	default:
		return repo.ErrorTypeService
	}
}

// mobileDigits is the length of a local-format mobile number.
const mobileDigits = 11

// Entry is a successfully parsed registration.
type Entry struct {
	Clinic  *repo.Clinic
	Mobile  string
	Serial  int
	Service *repo.Service
	// Extra is any text after the fourth field.
	Extra string
	Raw   string
}

// ParseError describes why an entry was rejected. Incomplete entries have
// no Fields.
type ParseError struct {
	Incomplete bool
	Fields     []Field

	// SerialToken is the serial as a number when it parses, else as typed.
	SerialToken string
}

func (e *ParseError) Error() string {
	if e.Incomplete {
		return "incomplete entry"
	}
	return "invalid " + joinFields(e.Fields)
}

// Category is the highest-priority failing field.
func (e *ParseError) Category() Field { return e.Fields[0] }

// Reply is the text sent back to the registering phone.
func (e *ParseError) Reply() string {
	if e.Incomplete {
		return IncompleteReply
	}
	return errorReply(e.SerialToken, e.Fields)
}

// Lookup resolves clinic and service codes. Implementations return an error
// satisfying repo.IsNotFound for unknown codes.
type Lookup interface {
	ClinicByCode(ctx context.Context, code int) (*repo.Clinic, error)
	ServiceByCode(ctx context.Context, code int) (*repo.Service, error)
}

func isSeparator(r rune) bool {
	switch r {
	case ' ', '\n', '\r', '\t', '*':
		return true
	}
	return false
}

// Tokenize splits text on runs of separators.
func Tokenize(text string) []string {
	return strings.FieldsFunc(text, isSeparator)
}

var digitConfusables = strings.NewReplacer("i", "1", "I", "1", "o", "0", "O", "0")

// normalizeDigits maps letters commonly typed for 1 and 0.
func normalizeDigits(tok string) string {
	return digitConfusables.Replace(tok)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Parse validates a registration SMS of the form
// "<clinic> <mobile> <serial> <service> [extra...]". Validation problems are
// returned as *ParseError; any other error comes from the lookup.
func Parse(ctx context.Context, lookup Lookup, text string) (*Entry, error) {
	toks := Tokenize(text)
	if len(toks) < 4 {
		return nil, &ParseError{Incomplete: true}
	}

	entry := &Entry{Raw: text, Extra: strings.Join(toks[4:], " ")}
	perr := &ParseError{SerialToken: toks[2]}

	mobile := normalizeDigits(toks[1])
	if len(mobile) == mobileDigits && allDigits(mobile) {
		entry.Mobile = mobile
	} else {
		perr.Fields = append(perr.Fields, FieldMobile)
	}

	clinic, err := resolve(ctx, normalizeDigits(toks[0]), lookup.ClinicByCode)
	if err != nil {
		return nil, fmt.Errorf("looking up clinic: %w", err)
	}
	if clinic == nil {
		perr.Fields = append(perr.Fields, FieldClinic)
	}
	entry.Clinic = clinic

	serial := normalizeDigits(toks[2])
	if n, err := strconv.Atoi(serial); err == nil && allDigits(serial) {
		entry.Serial = n
		perr.SerialToken = strconv.Itoa(n)
	} else {
		perr.Fields = append(perr.Fields, FieldSerial)
	}

	service, err := resolve(ctx, toks[3], lookup.ServiceByCode)
	if err != nil {
		return nil, fmt.Errorf("looking up service: %w", err)
	}
	if service == nil {
		perr.Fields = append(perr.Fields, FieldService)
	}
	entry.Service = service

	if len(perr.Fields) > 0 {
		return nil, perr
	}
	return entry, nil
}

// resolve returns nil, nil when tok is not a known code.
func resolve[T any](ctx context.Context, tok string, find func(context.Context, int) (*T, error)) (*T, error) {
	if !allDigits(tok) {
		return nil, nil
	}
	code, err := strconv.Atoi(tok)
	if err != nil {
		return nil, nil
	}
	v, err := find(ctx, code)
	if repo.IsNotFound(err) {
		return nil, nil
	}
	return v, err
}

// Package aaaerr is the diagnostics substrate: one structured error
// kind per failure the cross-referencer or type checker can report,
// plus the collection type both passes accumulate into.
package aaaerr

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"

	"github.com/aaa-lang/aaa/frontend/ast"
)

// enableDebugErrorPrinting makes errors include their stacktrace when printed
const enableDebugErrorPrinting bool = false
const enableDebugFullStacktrace bool = false

type ErrCode int

const (
	None ErrCode = iota

	// cross-referencer
	CyclicDependency
	ImportNotFound
	IndirectImport
	UnexpectedBuiltin
	CollidingIdentifiables
	UnknownIdentifiable
	InvalidArgument
	InvalidReturnType
	GetFunctionNotFound
	GetFunctionNotAFunction
	UnsupportedForeach

	// type checker
	StackUnderflow
	StackTypes
	ParameterCount
	Condition
	Branch
	While
	FunctionType
	ReturnStack
	UnreachableCode
	UseStackUnderflow
	NameCollision
	GetFieldStackUnderflow
	GetFieldFromNonStruct
	GetFieldNotFound
	SetFieldStackUnderflow
	SetFieldOnNonStruct
	SetFieldNotFound
	SetFieldType
	AssignmentStackSize
	AssignedVariableNotFound
	AssignmentType
	MatchStackUnderflow
	MatchNonEnum
	MatchUnexpectedEnum
	CollidingCaseBlocks
	CollidingDefaultBlocks
	UnhandledEnumVariants
	UnreachableDefault
	InconsistentMatchChildren
	CaseVariableCount
	MemberFunctionWithoutArguments
	MemberFunctionInvalidTarget
	MemberFunctionUnexpectedTarget
	MainFunctionNotFound
	MainNonFunction
	InvalidMainSignature
	CallStackUnderflow
	CallNonFunction
)

type AaaError interface {
	Error() string
	Code() ErrCode
	ast.Positioner

	withStack([]byte) AaaError
	getStack() []byte
}

func FormatWithCode(e AaaError) string {
	if enableDebugErrorPrinting && e.getStack() != nil {
		stack := string(e.getStack())
		if !enableDebugFullStacktrace {
			stack = strings.Split(stack, "\n")[6]
		}
		return fmt.Sprintf("%s:(E%03d) %s", stack, e.Code(), e.Error())
	}
	return fmt.Sprintf("(E%03d) %s", e.Code(), e.Error())
}

func New[E AaaError](err E) AaaError {
	return err.withStack(debug.Stack())
}

type Errors struct {
	errs []AaaError
}

func (r *Errors) With(err ...AaaError) *Errors {
	if r == nil {
		return &Errors{errs: err}
	}
	for _, err := range err {
		r.errs = append(r.errs, err)
	}
	return r
}

func (r *Errors) Merge(err *Errors) *Errors {
	if r == nil {
		return err
	}
	if err == nil {
		return r
	}
	if len(err.errs) == 0 {
		return r
	}
	return r.With(err.errs...)
}

func (r *Errors) Errors() []AaaError {
	if r == nil {
		return nil
	}
	return r.errs
}

func (r *Errors) HasError() bool {
	if r == nil {
		return false
	}
	return len(r.errs) > 0
}

func (r *Errors) Len() int {
	if r == nil {
		return 0
	}
	return len(r.errs)
}

func (r *Errors) LogValue() slog.Value {
	var vals []slog.Attr
	for i, v := range r.errs {
		vals = append(vals, slog.Attr{
			Key: fmt.Sprint("e", i),
			Value: slog.GroupValue(
				slog.Attr{
					Key:   "msg",
					Value: slog.StringValue(FormatWithCode(v)),
				},
			),
		})
	}
	return slog.GroupValue(vals...)
}

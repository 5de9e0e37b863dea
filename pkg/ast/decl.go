package ast

// VarBlockKind is the declarator keyword a variable block opens with.
type VarBlockKind int

// The variable-block kinds the grammar recognizes.
const (
	VarLocal VarBlockKind = iota
	VarInput
	VarOutput
	VarInOut
	VarTemp
	VarGlobal
	VarConfig
	VarExternal
)

// AccessModifier is the visibility qualifier a variable block may carry.
type AccessModifier int

// The access modifiers the grammar recognizes; AccessDefault means none was
// written.
const (
	AccessDefault AccessModifier = iota
	AccessPublic
	AccessPrivate
	AccessProtected
	AccessInternal
)

// VarDecl is one declared variable within a VarBlock: `name : type [:= init] [AT addr]`.
type VarDecl struct {
	Base
	Name        string
	TypeName    string
	ArrayDims   []Range // non-nil for ARRAY[...] OF TypeName
	IsPointer   bool
	PointerKind string // "POINTER_TO", "REF_TO", "REFERENCE_TO"
	IsVariadic  bool
	IsSized     bool // `{sized} T...`
	Initializer Expr
	Address     string // raw text after AT, e.g. "%QX1.0"
	ByRef       bool   // `{ref}` tag on an input
}

// VarBlock is a `VAR ... END_VAR` (or variant) group sharing one kind and
// qualifiers.
type VarBlock struct {
	Base
	Kind     VarBlockKind
	Constant bool
	Retain   bool
	NonRetain bool
	Access   AccessModifier
	Vars     []VarDecl
}

func (*VarBlock) declNode() {}

// POUKind distinguishes the six program-organization-unit forms.
type POUKind int

// The POU kinds the grammar recognizes.
const (
	POUProgram POUKind = iota
	POUFunction
	POUFunctionBlock
	POUClass
	POUAction
	POUMethod
)

// GenericParam is one `<T: NATURE>` clause on a POU header.
type GenericParam struct {
	Name   string
	Nature string
}

// POU is a Program, Function, Function Block, Class, Method, or Action.
type POU struct {
	Base
	Kind       POUKind
	Name       string
	Owner      string // parent POU name, for Action/Method
	Extends    string
	Implements []string
	Generics   []GenericParam
	ReturnType string
	VarBlocks  []*VarBlock
	Body       []Stmt
	Methods    []*POU
}

func (*POU) declNode() {}

// EnumVariant is one `NAME [:= value]` entry in a TYPE ... : (...) END_TYPE.
type EnumVariant struct {
	Name  string
	Value Expr // nil if not explicitly assigned
}

// StructMember is one field of a STRUCT type.
type StructMember struct {
	Name        string
	TypeName    string
	ArrayDims   []Range
	Initializer Expr
}

// TypeDeclKind tags which form a TypeDecl takes.
type TypeDeclKind int

// The user-type declaration forms.
const (
	TypeAlias TypeDeclKind = iota
	TypeStruct
	TypeEnum
	TypeSubrange
)

// TypeDecl is a `TYPE Name : ... END_TYPE` declaration.
type TypeDecl struct {
	Base
	Kind        TypeDeclKind
	Name        string
	BaseType    string // Alias/Subrange/Enum underlying type
	Members     []StructMember
	Variants    []EnumVariant
	Low, High   Expr
	Initializer Expr
}

func (*TypeDecl) declNode() {}

// InterfaceDecl is an `INTERFACE Name [EXTENDS a, b] ... END_INTERFACE`.
type InterfaceDecl struct {
	Base
	Name    string
	Extends []string
	Methods []*POU // method signatures only, Body is empty
}

func (*InterfaceDecl) declNode() {}

// CompilationUnit is everything parsed from a single file.
type CompilationUnit struct {
	Filename   string
	Globals    []*VarBlock
	POUs       []*POU
	Types      []*TypeDecl
	Interfaces []*InterfaceDecl
}

package diag

// catalog is the built-in table of diagnostic codes, their default
// severities, and short descriptions. Grounded directly on
// plc_diagnostics/src/diagnostics/diagnostics_registry.rs's add_diagnostic!
// table.
var catalog = []Entry{
	{"E001", Error, "General error"},
	{"E002", Error, "General IO error"},
	{"E003", Error, "Parameter error"},
	{"E004", Error, "Duplicate symbol"},
	{"E005", Error, "Generic backend error"},
	{"E006", Error, "Missing token"},
	{"E007", Error, "Unexpected token"},
	{"E008", Error, "Invalid range"},
	{"E009", Error, "Mismatched parentheses"},
	{"E010", Error, "Invalid time literal"},
	{"E011", Error, "Invalid number"},
	{"E012", Error, "Missing case condition"},
	{"E013", Warning, "Keywords should contain underscores"},
	{"E014", Warning, "Wrong parentheses type"},
	{"E015", Warning, "POINTER TO is not standard, consider REF_TO instead"},
	{"E016", Warning, "Return types cannot have a default value"},
	{"E017", Error, "Classes cannot contain implementations"},
	{"E018", Error, "Duplicate label"},
	{"E019", Error, "Classes cannot contain VAR_IN_OUT variables"},
	{"E020", Error, "Classes cannot contain a return type"},
	{"E021", Error, "Re-declaration of variable"},
	{"E022", Warning, "Missing action container"},
	{"E023", Warning, "Statement with no effect"},
	{"E024", Warning, "Invalid pragma location"},
	{"E025", Error, "Missing return type"},
	{"E038", Error, "Missing type"},
	{"E042", Warning, "Assignment to reference"},
	{"E047", Warning, "Variable-length arrays are always passed by reference"},
	{"E048", Error, "Unresolved reference"},
	{"E060", Info, "Variable direct access with %"},
	{"E067", Warning, "Implicit typecast"},
	{"E090", Warning, "Incompatible reference assignment"},
	{"E094", Error, "Incompatible types in assignment"},
	{"E095", Error, "Action call without ()"},
	{"E096", Warning, "Integer used as boolean condition"},
	{"E097", Error, "Invalid array range"},
	{"E098", Error, "Invalid REF= assignment"},
	{"E099", Error, "Invalid REFERENCE TO declaration"},
	{"E100", Error, "Immutable variable address"},
	{"E101", Error, "Invalid VAR_CONFIG / template variable declaration"},
	{"E102", Error, "Template variable without hardware binding"},
	{"E103", Error, "Immutable hardware binding"},
	{"E104", Error, "Config variable with incomplete address"},
	{"E105", Error, "CONSTANT keyword not permitted in this POU"},
	{"E106", Warning, "VAR_EXTERNAL has no effect"},
	{"E107", Error, "Missing configuration for template variable"},
	{"E108", Error, "Template variable is configured multiple times"},
	{"E109", Error, "Stateful pointer variable initialized with a temporary value"},
	{"E110", Error, "Invalid POU type for interface implementation"},
	{"E111", Error, "Duplicate interface methods with different signatures"},
	{"E112", Error, "Incomplete interface implementation"},
	{"E113", Warning, "Interface default method implementation"},
	{"E114", Error, "Multiple extensions of the same POU"},
	{"E115", Error, "Property defined in unsupported POU type"},
	{"E116", Error, "Property defined in unsupported variable block"},
	{"E117", Error, "Property with invalid number of GET and/or SET blocks"},
	{"E118", Info, "Follow-up diagnostic to E112"},
	{"E119", Error, "Invalid use of SUPER keyword"},
	{"E120", Error, "Invalid use of THIS keyword"},
	{"E121", Error, "Recursive type alias"},
	{"E122", Error, "Invalid enum base type"},
	{"E123", Error, "Division by zero"},
	{"E124", Error, "Recursive data structure"},
}

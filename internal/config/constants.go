package config

// MaxGenericDepth is the default recursion budget of the instantiation engine.
// Variable and wildcard nodes nested deeper than this fail.
const MaxGenericDepth = 3

// DefaultTries is how often the facade retries a randomized instantiation.
const DefaultTries = 5

// QueryDeclName is the declaring scope of type variables introduced by a
// leading generic declaration in a parsed query, e.g. "<T> List<T>".
const QueryDeclName = "<query>"

// SettingsFileName is the settings file looked up in the working directory.
const SettingsFileName = "geninst.yaml"

// UniverseFileExtensions are the recognized universe file extensions
var UniverseFileExtensions = []string{".yaml", ".yml"}

// Well-known class names
const (
	ObjectClassName       = "java.lang.Object"
	EnumClassName         = "java.lang.Enum"
	StringClassName       = "java.lang.String"
	ClassClassName        = "java.lang.Class"
	VoidClassName         = "java.lang.Void"
	NumberClassName       = "java.lang.Number"
	ComparableClassName   = "java.lang.Comparable"
	CloneableClassName    = "java.lang.Cloneable"
	SerializableClassName = "java.io.Serializable"
)

// PrimitiveWrappers maps primitive class names to their wrapper classes.
var PrimitiveWrappers = map[string]string{
	"boolean": "java.lang.Boolean",
	"char":    "java.lang.Character",
	"byte":    "java.lang.Byte",
	"short":   "java.lang.Short",
	"int":     "java.lang.Integer",
	"long":    "java.lang.Long",
	"float":   "java.lang.Float",
	"double":  "java.lang.Double",
	"void":    "java.lang.Void",
}

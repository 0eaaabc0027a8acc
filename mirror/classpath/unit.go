package classpath

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/naoina/toml"
)

// A declaration unit is one TOML document describing the classes of a package:
//
//	package = "java.util"
//	imports = ["java.io.Serializable"]
//
//	[[class]]
//	name = "List"
//	kind = "interface"
//	modifiers = ["public"]
//	type_params = ["E"]
//	implements = ["Collection<E>"]
//
//	  [[class.method]]
//	  name = "get"
//	  returns = "E"
//	  params = ["int index"]
type unitFile struct {
	Package     string      `toml:"package" validate:"omitempty,qualified_name"`
	Imports     []string    `toml:"imports" validate:"dive,qualified_name"`
	Annotations []string    `toml:"annotations"`
	Classes     []classDecl `toml:"class" validate:"dive"`
}

type classDecl struct {
	Name         string        `toml:"name" validate:"required,qualified_name"`
	Kind         string        `toml:"kind" validate:"omitempty,oneof=class interface enum annotation"`
	Modifiers    []string      `toml:"modifiers"`
	TypeParams   []string      `toml:"type_params"`
	Extends      string        `toml:"extends"`
	Implements   []string      `toml:"implements"`
	Anonymous    bool          `toml:"anonymous"`
	Annotations  []string      `toml:"annotations"`
	Constants    []string      `toml:"constants" validate:"dive,identifier"`
	Fields       []fieldDecl   `toml:"field" validate:"dive"`
	Methods      []methodDecl  `toml:"method" validate:"dive"`
	Constructors []ctorDecl    `toml:"constructor" validate:"dive"`
}

type fieldDecl struct {
	Name        string   `toml:"name" validate:"required,identifier"`
	Type        string   `toml:"type" validate:"required"`
	Modifiers   []string `toml:"modifiers"`
	Constant    string   `toml:"constant"`
	Annotations []string `toml:"annotations"`
}

type methodDecl struct {
	Name        string   `toml:"name" validate:"required,identifier"`
	TypeParams  []string `toml:"type_params"`
	Returns     string   `toml:"returns"`
	Params      []string `toml:"params"`
	Throws      []string `toml:"throws"`
	Receiver    string   `toml:"receiver"`
	Modifiers   []string `toml:"modifiers"`
	Default     string   `toml:"default"`
	Annotations []string `toml:"annotations"`
}

type ctorDecl struct {
	TypeParams  []string `toml:"type_params"`
	Params      []string `toml:"params"`
	Throws      []string `toml:"throws"`
	Modifiers   []string `toml:"modifiers"`
	Annotations []string `toml:"annotations"`
}

// tomlSettings makes TOML keys match the toml struct tags exactly and reports
// unknown keys with the table they appeared in.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("key '%s' is not allowed in %s", field, strings.TrimSuffix(rt.Name(), "Decl"))
	},
}

var unitValidator = newUnitValidator()

func newUnitValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails for empty tags or nil functions.
	_ = v.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
		return isIdentifier(fl.Field().String())
	})
	_ = v.RegisterValidation("qualified_name", func(fl validator.FieldLevel) bool {
		for _, part := range strings.Split(fl.Field().String(), ".") {
			if !isIdentifier(part) && !isAnonymousIndex(part) {
				return false
			}
		}
		return true
	})
	return v
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || r == '$' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

func isAnonymousIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// decodeUnit parses and validates one declaration unit.
func decodeUnit(name string, data []byte) (*unitFile, error) {
	var u unitFile
	if err := tomlSettings.NewDecoder(bytes.NewReader(data)).Decode(&u); err != nil {
		// Add the unit name to errors that carry a line number.
		var lineErr *toml.LineError
		if errors.As(err, &lineErr) {
			return nil, fmt.Errorf("%s, %w", name, err)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if err := unitValidator.Struct(&u); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %s (%q)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return nil, fmt.Errorf("%s: invalid declaration unit: %s", name, strings.Join(msgs, "; "))
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &u, nil
}

package indicator

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// JSON-LD properties read from a test response.
const (
	CommentProperty = "http://schema.org/comment"
	ValueProperty   = "http://semanticscience.org/resource/SIO_000300"
)

//go:embed response.schema.json
var responseSchemaJSON []byte

// responseSchema is the compiled shape every usable response must have.
var responseSchema = mustCompileSchema(responseSchemaJSON, "response.schema.json")

func mustCompileSchema(raw []byte, name string) *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, doc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// ErrUnusableResponse is matched by every *UnusableResponseError.
var ErrUnusableResponse = errors.New("unusable test response")

// UnusableResponseError reports a test call that produced no verdict: a
// transport failure, a non-200 status, a non-JSON body or a body missing
// the expected properties.
type UnusableResponseError struct {
	Interface  string
	StatusCode int
	Reason     string
	Err        error
}

func (e *UnusableResponseError) Error() string {
	var b strings.Builder
	b.WriteString("unusable response")
	if e.Interface != "" {
		fmt.Fprintf(&b, " from %s", e.Interface)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	fmt.Fprintf(&b, ": %s", e.Reason)
	return b.String()
}

func (e *UnusableResponseError) Is(target error) bool {
	return target == ErrUnusableResponse
}

func (e *UnusableResponseError) Unwrap() error {
	return e.Err
}

// Assessment is the verdict carried by a usable response.
type Assessment struct {
	Passed  bool
	Comment string
}

type literal struct {
	Value string `mapstructure:"@value"`
}

type assessmentNode struct {
	Comment []literal `mapstructure:"http://schema.org/comment"`
	Value   []literal `mapstructure:"http://semanticscience.org/resource/SIO_000300"`
}

// Interpret extracts the assessment from one test response.
func Interpret(statusCode int, body []byte) (*Assessment, error) {
	if statusCode != http.StatusOK {
		return nil, &UnusableResponseError{
			StatusCode: statusCode,
			Reason:     fmt.Sprintf("unexpected status %q", statusLine(statusCode)),
		}
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return nil, &UnusableResponseError{StatusCode: statusCode, Reason: "body is not JSON", Err: err}
	}

	if err := responseSchema.Validate(doc); err != nil {
		return nil, &UnusableResponseError{StatusCode: statusCode, Reason: "unexpected response shape", Err: err}
	}

	// The schema guarantees a non-empty array whose first element is an object.
	var node assessmentNode
	if err := mapstructure.Decode(doc.([]any)[0], &node); err != nil {
		return nil, &UnusableResponseError{StatusCode: statusCode, Reason: "decoding assessment", Err: err}
	}

	passed, err := nonZero(node.Value[0].Value)
	if err != nil {
		return nil, &UnusableResponseError{StatusCode: statusCode, Reason: fmt.Sprintf("%s is not an integer", ValueProperty), Err: err}
	}

	return &Assessment{
		Passed:  passed,
		Comment: node.Comment[0].Value,
	}, nil
}

// nonZero reports whether an integer literal is non-zero. Literals outside
// the int64 range are non-zero by magnitude.
func nonZero(s string) (bool, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return value != 0, nil
}

func statusLine(code int) string {
	if text := http.StatusText(code); text != "" {
		return fmt.Sprintf("%d %s", code, text)
	}
	return strconv.Itoa(code)
}

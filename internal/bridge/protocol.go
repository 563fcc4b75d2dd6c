package bridge

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Inbound methods
const (
	MethodReady            = "ready"
	MethodBeginTransfer    = "beginTransfer"
	MethodCompleteTransfer = "completeTransfer"
	MethodPing             = "ping"
)

var (
	ErrUnknownMethod = errors.New("unknown bridge method")
	ErrBadArguments  = errors.New("invalid bridge arguments")
)

// Call is one inbound call from the web surface
type Call struct {
	Method string
	Args   []string
}

// BeginArgs are the arguments of beginTransfer
type BeginArgs struct {
	RefID     string `validate:"required"`
	SourceID  string
	FileName  string `validate:"required"`
	SizeBytes int64  `validate:"gte=0"`
	MIMEType  string
}

// CompleteArgs are the arguments of completeTransfer
type CompleteArgs struct {
	RefID   string `validate:"required"`
	Content string
}

var arity = map[string]int{
	MethodReady:            0,
	MethodBeginTransfer:    5,
	MethodCompleteTransfer: 2,
	MethodPing:             0,
}

var validate = validator.New()

// ParseBegin parses and validates beginTransfer arguments.
// The size must be a base-10 int64.
func ParseBegin(args []string) (BeginArgs, error) {
	if err := checkArity(MethodBeginTransfer, args); err != nil {
		return BeginArgs{}, err
	}

	size, err := strconv.ParseInt(args[3], 10, 64)
	if err != nil {
		return BeginArgs{}, fmt.Errorf("%w: size %q is not a decimal integer", ErrBadArguments, args[3])
	}

	begin := BeginArgs{
		RefID:     args[0],
		SourceID:  args[1],
		FileName:  args[2],
		SizeBytes: size,
		MIMEType:  args[4],
	}
	if err := validate.Struct(begin); err != nil {
		return BeginArgs{}, fmt.Errorf("%w: %v", ErrBadArguments, err)
	}
	return begin, nil
}

// ParseComplete parses and validates completeTransfer arguments
func ParseComplete(args []string) (CompleteArgs, error) {
	if err := checkArity(MethodCompleteTransfer, args); err != nil {
		return CompleteArgs{}, err
	}

	complete := CompleteArgs{RefID: args[0], Content: args[1]}
	if err := validate.Struct(complete); err != nil {
		return CompleteArgs{}, fmt.Errorf("%w: %v", ErrBadArguments, err)
	}
	return complete, nil
}

func checkArity(method string, args []string) error {
	want, ok := arity[method]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
	if len(args) != want {
		return fmt.Errorf("%w: %s takes %d arguments, got %d", ErrBadArguments, method, want, len(args))
	}
	return nil
}

// DeliverTextScript builds the outbound text delivery statement
func DeliverTextScript(b64Text string) string {
	return fmt.Sprintf(`(function() { window.deliverText("%s"); })();`, b64Text)
}

// DeliverFileScript builds the outbound file delivery statement
func DeliverFileScript(b64Name, b64MIME, b64Content string) string {
	return fmt.Sprintf(`(function() { window.deliverFile("%s", "%s", "%s"); })();`, b64Name, b64MIME, b64Content)
}

package functionscmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	invokeFunctionMessageType      = "templatefn.functions.invoke"
	syncStoredFunctionsMessageType = "templatefn.functions.sync_stored"
)

// ResultSink receives the value produced by a successful invocation.
type ResultSink func(name string, result any)

// InvokeFunctionCommand calls a registered template function by name.
type InvokeFunctionCommand struct {
	// Name selects the registered function.
	Name string `json:"name"`
	// Args are passed positionally.
	Args []any `json:"args,omitempty"`
	// OnResult, when set, receives the function result.
	OnResult ResultSink `json:"-"`
}

// Type implements command.Message.
func (InvokeFunctionCommand) Type() string { return invokeFunctionMessageType }

// Validate ensures a function name is present before handlers execute.
func (cmd InvokeFunctionCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Name, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("templatefn.functions.invoke.name_required", "name is required")
			}
			return nil
		})),
	)
}

// SyncStoredFunctionsCommand reloads template-defined functions from storage into
// the registry.
type SyncStoredFunctionsCommand struct {
	// Reason is recorded with the sync log entry.
	Reason string `json:"reason,omitempty"`
}

// Type implements command.Message.
func (SyncStoredFunctionsCommand) Type() string { return syncStoredFunctionsMessageType }

// Validate limits the free-form reason.
func (cmd SyncStoredFunctionsCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Reason, validation.Length(0, 200)),
	)
}
